package obs_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/noah-isme/foodcart/internal/obs"
)

func TestInitTracerRejectsUnknownExporter(t *testing.T) {
	_, err := obs.InitTracer(t.Context(), obs.TracingConfig{Exporter: "zipkin"})
	require.Error(t, err)
}

func TestTracingMiddlewareNamesSpanAfterRoute(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := trace.NewTracerProvider(trace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	r := chi.NewRouter()
	r.Use(obs.TracingMiddleware)
	r.Get("/api/v1/carts/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/carts/c-1", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, "GET /api/v1/carts/{id}", spans[0].Name())
	require.Equal(t, "Error", spans[0].Status().Code.String())

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	require.Equal(t, "c-1", attrs["app.resource_id"])
	require.Equal(t, "500", attrs["http.response.status_code"])
}
