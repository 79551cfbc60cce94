package resilience_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/foodcart/internal/resilience"
)

func init() {
	resilience.MustRegisterMetrics("test", prometheus.NewRegistry())
}

func TestBreakerTransitions(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	breaker := resilience.NewBreaker(resilience.BreakerConfig{
		Target:       "handoff_webhook",
		MinRequests:  2,
		FailureRatio: 0.5,
		OpenFor:      time.Minute,
		Now:          func() time.Time { return now },
	})
	ctx := context.Background()

	require.True(t, breaker.Allow(ctx))
	breaker.Report(ctx, false)
	require.True(t, breaker.Allow(ctx))
	breaker.Report(ctx, false)
	require.Equal(t, resilience.Open, breaker.State())
	require.False(t, breaker.Allow(ctx))
	require.Equal(t, 1.0, testutil.ToFloat64(resilience.BreakerState.WithLabelValues("handoff_webhook")))

	now = now.Add(2 * time.Minute)
	require.True(t, breaker.Allow(ctx), "probe allowed after cool-off")
	require.False(t, breaker.Allow(ctx), "only one probe while half-open")
	breaker.Report(ctx, true)
	require.Equal(t, resilience.Closed, breaker.State())
	require.True(t, breaker.Allow(ctx))

	require.Equal(t, 1.0, testutil.ToFloat64(resilience.BreakerOpenedTotal.WithLabelValues("handoff_webhook")))
	require.Equal(t, 1.0, testutil.ToFloat64(resilience.BreakerTransitions.WithLabelValues("handoff_webhook", "half_open", "closed")))
}

func TestBackoffWithJitter(t *testing.T) {
	base := 100 * time.Millisecond
	require.Equal(t, base, resilience.Backoff(base, 1, 0))
	require.Equal(t, base*4, resilience.Backoff(base, 3, 0))

	d := resilience.Backoff(base, 2, 0.2)
	require.GreaterOrEqual(t, d, base*2-base*2/5)
	require.LessOrEqual(t, d, base*2+base*2/5)
}

func TestHTTPClientRetriesServerErrors(t *testing.T) {
	var calls int32
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(body))
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(srv.Close)

	client := resilience.NewHTTPClient(resilience.ClientConfig{MaxAttempts: 3, BaseBackoff: time.Millisecond})
	req, err := http.NewRequest(http.MethodPost, srv.URL, strings.NewReader(`{"ok":true}`))
	require.NoError(t, err)

	resp, err := client.Do(context.Background(), req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.Equal(t, int32(3), atomic.LoadInt32(&calls))
	require.Equal(t, []string{`{"ok":true}`, `{"ok":true}`, `{"ok":true}`}, bodies)
}

func TestHTTPClientOpenBreakerShortCircuits(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	breaker := resilience.NewBreaker(resilience.BreakerConfig{Target: "short", MinRequests: 1, OpenFor: time.Hour})
	client := resilience.NewHTTPClient(resilience.ClientConfig{MaxAttempts: 5, BaseBackoff: time.Millisecond, Breaker: breaker})
	req, err := http.NewRequest(http.MethodPost, srv.URL, nil)
	require.NoError(t, err)

	_, err = client.Do(context.Background(), req)
	require.ErrorIs(t, err, resilience.ErrOpenCircuit)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
