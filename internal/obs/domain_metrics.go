package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CartOperationsTotal counts cart store mutations by operation and outcome.
	CartOperationsTotal *prometheus.CounterVec
	// CartEntriesDroppedTotal counts persisted cart entries discarded during normalization.
	CartEntriesDroppedTotal prometheus.Counter
	// CartCorruptPayloadTotal counts persisted carts that could not be decoded at all.
	CartCorruptPayloadTotal prometheus.Counter
	// HandoffEnqueuedTotal counts order handoffs accepted for delivery by channel.
	HandoffEnqueuedTotal *prometheus.CounterVec
	// HandoffDeliveriesTotal tracks webhook delivery outcomes for order handoffs.
	HandoffDeliveriesTotal *prometheus.CounterVec
	// HandoffAttemptLatency records delivery attempt latency in milliseconds.
	HandoffAttemptLatency *prometheus.HistogramVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CartOperationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_operations_total",
			Help:      "Count of cart store operations by outcome.",
		}, []string{"op", "result"})
		CartEntriesDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_entries_dropped_total",
			Help:      "Number of persisted cart entries dropped while loading.",
		})
		CartCorruptPayloadTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_corrupt_payload_total",
			Help:      "Number of persisted carts treated as empty because they were unreadable.",
		})
		HandoffEnqueuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handoff_enqueued_total",
			Help:      "Count of order handoffs accepted for delivery.",
		}, []string{"channel"})
		HandoffDeliveriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handoff_deliveries_total",
			Help:      "Count of order handoff delivery outcomes.",
		}, []string{"result"})
		HandoffAttemptLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "handoff_attempt_duration_ms",
			Help:      "Latency for order handoff delivery attempts in milliseconds.",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"result"})

		mustRegisterCollector(reg, CartOperationsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CartOperationsTotal = v
			}
		})
		mustRegisterCollector(reg, CartEntriesDroppedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				CartEntriesDroppedTotal = v
			}
		})
		mustRegisterCollector(reg, CartCorruptPayloadTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				CartCorruptPayloadTotal = v
			}
		})
		mustRegisterCollector(reg, HandoffEnqueuedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				HandoffEnqueuedTotal = v
			}
		})
		mustRegisterCollector(reg, HandoffDeliveriesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				HandoffDeliveriesTotal = v
			}
		})
		mustRegisterCollector(reg, HandoffAttemptLatency, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.HistogramVec); ok {
				HandoffAttemptLatency = v
			}
		})
	})
}

// ObserveCartOperation records one cart operation outcome when metrics are registered.
func ObserveCartOperation(op, result string) {
	if CartOperationsTotal != nil {
		CartOperationsTotal.WithLabelValues(op, result).Inc()
	}
}

// ObserveCartLoad records normalization losses for one load.
func ObserveCartLoad(dropped int, corrupt bool) {
	if dropped > 0 && CartEntriesDroppedTotal != nil {
		CartEntriesDroppedTotal.Add(float64(dropped))
	}
	if corrupt && CartCorruptPayloadTotal != nil {
		CartCorruptPayloadTotal.Inc()
	}
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
