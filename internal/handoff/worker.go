package handoff

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/foodcart/internal/obs"
	"github.com/noah-isme/foodcart/internal/resilience"
)

// Doer sends one outbound request.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// WebhookDeliverer posts queued handoffs to the store's order webhook.
type WebhookDeliverer struct {
	Client Doer
	URL    string
	Secret string
	Logger *zerolog.Logger
	Now    func() time.Time
}

func (d WebhookDeliverer) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d WebhookDeliverer) logger() zerolog.Logger {
	if d.Logger != nil {
		return *d.Logger
	}
	return zerolog.Nop()
}

// ProcessTask implements asynq.Handler.
func (d WebhookDeliverer) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var msg Message
	if err := json.Unmarshal(task.Payload(), &msg); err != nil {
		d.observe("invalid", time.Time{})
		return fmt.Errorf("decode handoff: %v: %w", err, asynq.SkipRetry)
	}
	return d.Deliver(ctx, msg)
}

// Deliver posts msg as JSON, signing it when a secret is configured.
func (d WebhookDeliverer) Deliver(ctx context.Context, msg Message) error {
	ctx, span := otel.Tracer("handoff.WebhookDeliverer").Start(ctx, "WebhookDeliverer.Deliver")
	defer span.End()
	span.SetAttributes(
		attribute.String("handoff.id", msg.ID),
		attribute.String("handoff.channel", msg.Channel),
		attribute.Int("handoff.items", len(msg.Payload.Items)),
	)
	start := time.Now()
	log := d.logger()

	if d.Client == nil || d.URL == "" {
		d.observe("skipped", start)
		log.Debug().Str("handoff_id", msg.ID).Msg("handoff webhook not configured")
		return nil
	}
	if err := validateURL(d.URL); err != nil {
		span.RecordError(err)
		d.observe("invalid", start)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	body, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		d.observe("invalid", start)
		return fmt.Errorf("encode handoff: %v: %w", err, asynq.SkipRetry)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL, bytes.NewReader(body))
	if err != nil {
		span.RecordError(err)
		d.observe("invalid", start)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	ts := d.now().Unix()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "foodcart-handoff/1.0")
	req.Header.Set("X-Handoff-ID", msg.ID)
	req.Header.Set("X-Idempotency-Key", msg.ID)
	req.Header.Set("X-Timestamp", strconv.FormatInt(ts, 10))
	if d.Secret != "" {
		req.Header.Set("X-Signature", ComputeSignature(d.Secret, ts, msg.ID, body))
	}

	resp, err := d.Client.Do(ctx, req)
	if err != nil {
		span.RecordError(err)
		result := "failed"
		if errors.Is(err, resilience.ErrOpenCircuit) {
			result = "circuit_open"
		}
		d.observe(result, start)
		log.Warn().Err(err).Str("handoff_id", msg.ID).Msg("handoff delivery failed")
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= 300 {
		d.observe("rejected", start)
		err := fmt.Errorf("handoff webhook responded %d", resp.StatusCode)
		span.RecordError(err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	d.observe("delivered", start)
	return nil
}

func (d WebhookDeliverer) observe(result string, start time.Time) {
	if obs.HandoffDeliveriesTotal != nil {
		obs.HandoffDeliveriesTotal.WithLabelValues(result).Inc()
	}
	if !start.IsZero() && obs.HandoffAttemptLatency != nil {
		obs.HandoffAttemptLatency.WithLabelValues(result).Observe(obs.DurationMillis(time.Since(start)))
	}
}

// ComputeSignature returns hex(HMAC-SHA256(secret, ts + "." + id + "." + body)).
func ComputeSignature(secret string, ts int64, id string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(strconv.FormatInt(ts, 10)))
	_, _ = mac.Write([]byte("."))
	_, _ = mac.Write([]byte(id))
	_, _ = mac.Write([]byte("."))
	_, _ = mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func validateURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return errors.New("webhook url must be http or https")
	}
	if parsed.Host == "" {
		return errors.New("webhook url must include host")
	}
	return nil
}

// NewServeMux routes handoff tasks to deliverer.
func NewServeMux(deliverer WebhookDeliverer) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TaskDeliver, deliverer)
	return mux
}
