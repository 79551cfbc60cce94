package resilience

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ClientConfig builds an HTTPClient.
type ClientConfig struct {
	Timeout     time.Duration
	BaseBackoff time.Duration
	MaxAttempts int
	Jitter      float64
	Breaker     *Breaker
}

// HTTPClient retries idempotent deliveries behind a circuit breaker.
type HTTPClient struct {
	Client      *http.Client
	Breaker     *Breaker
	BaseBackoff time.Duration
	MaxAttempts int
	Jitter      float64
}

// NewHTTPClient returns an HTTPClient whose transport emits OpenTelemetry spans.
func NewHTTPClient(cfg ClientConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPClient{
		Client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Breaker:     cfg.Breaker,
		BaseBackoff: cfg.BaseBackoff,
		MaxAttempts: cfg.MaxAttempts,
		Jitter:      cfg.Jitter,
	}
}

// StatusError reports a 5xx response left after the last attempt.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("resilience: upstream responded %d", e.StatusCode)
}

// Do sends req, retrying transport errors and 5xx responses with exponential backoff.
// The body is buffered so every attempt replays it.
func (cl *HTTPClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if cl == nil || cl.Client == nil {
		return nil, errors.New("resilience: http client not configured")
	}
	attempts := cl.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	body, err := bufferBody(req)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if cl.Breaker != nil && !cl.Breaker.Allow(ctx) {
			return nil, ErrOpenCircuit
		}
		resp, err := cl.Client.Do(replay(ctx, req, body))
		ok := err == nil && resp.StatusCode < http.StatusInternalServerError
		if cl.Breaker != nil {
			cl.Breaker.Report(ctx, ok)
		}
		if ok {
			return resp, nil
		}
		if err != nil {
			lastErr = err
		} else {
			lastErr = &StatusError{StatusCode: resp.StatusCode}
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}
		if attempt == attempts {
			break
		}
		timer := time.NewTimer(Backoff(cl.BaseBackoff, attempt, cl.Jitter))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, lastErr
}

func bufferBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	defer func() { _ = req.Body.Close() }()
	return io.ReadAll(req.Body)
}

func replay(ctx context.Context, req *http.Request, body []byte) *http.Request {
	clone := req.Clone(ctx)
	if body != nil {
		clone.Body = io.NopCloser(bytes.NewReader(body))
		clone.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
		clone.ContentLength = int64(len(body))
	}
	return clone
}
