package app

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/foodcart/internal/cart"
	"github.com/noah-isme/foodcart/internal/catalog"
	"github.com/noah-isme/foodcart/internal/common"
	"github.com/noah-isme/foodcart/internal/detail"
	"github.com/noah-isme/foodcart/internal/handoff"
	"github.com/noah-isme/foodcart/internal/health"
	"github.com/noah-isme/foodcart/internal/obs"
	"github.com/noah-isme/foodcart/internal/ratelimit"
	"github.com/noah-isme/foodcart/internal/security"
)

// RouterOptions carries optional HTTP instrumentation.
type RouterOptions struct {
	HTTPMetrics *obs.HTTPMetrics
	Tracing     bool
	Metrics     bool
	Pprof       http.Handler
}

// NewRouter mounts every public endpoint on a chi router.
func NewRouter(d *Dependencies, opts RouterOptions) http.Handler {
	cfg := d.Config

	catalogHandler := catalog.NewHandler(catalog.HandlerConfig{Service: d.Catalog, Addons: d.Addons})
	cartHandler := cart.NewHandler(d.Carts)
	detailHandler := detail.NewHandler(detail.HandlerConfig{
		Catalog:   d.Catalog,
		Addons:    d.Addons,
		Store:     d.Carts,
		Validator: d.Validator,
		Logger:    &d.Logger,
	})
	handoffHandler := handoff.NewHandler(handoff.HandlerConfig{
		Store:     d.Carts,
		Messenger: d.Messenger,
		Validator: d.Validator,
		Phone:     cfg.WhatsAppPhone,
		Logger:    &d.Logger,
	})

	probes := map[string]health.Probe{}
	if d.Redis != nil {
		probes["redis"] = health.RedisProbe(d.Redis)
	}
	healthHandler := health.Handler{Probes: probes, Timeout: 500 * time.Millisecond}

	limits := ratelimit.Handler{
		Limiter: d.Limiter,
		OnError: func(err error) { d.Logger.Warn().Err(err).Msg("rate limiter unavailable") },
	}

	// Without Redis the idempotency middleware has nowhere to record responses.
	idem := func(next http.Handler) http.Handler { return next }
	if d.Redis != nil {
		idem = common.Idem{R: d.Redis, TTL: cfg.IdempotencyTTL}.Middleware
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if opts.Tracing {
		r.Use(obs.TracingMiddleware)
	}
	if opts.HTTPMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: opts.HTTPMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: d.Logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg.CORSAllowedOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Idempotency-Key"},
		ExposedHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Idempotent-Replay"},
		MaxAge:         300,
	}))
	r.Use(security.Headers{Enable: cfg.SecurityHeadersEnabled, EnableHSTS: cfg.HSTSEnabled}.Middleware)

	if opts.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}
	if opts.Pprof != nil {
		r.Mount("/debug/pprof", opts.Pprof)
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(limits.Middleware)
		v.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)

		v.Get("/categories", catalogHandler.Categories)
		v.Get("/addons", catalogHandler.Addons)
		v.Get("/products", catalogHandler.Products)
		v.Get("/products/{id}", catalogHandler.ProductDetail)
		v.Post("/products/{id}/quote", detailHandler.Quote)

		v.Route("/carts", func(c chi.Router) {
			c.Get("/{id}", cartHandler.Get)
			c.Post("/{id}/checkout", handoffHandler.Checkout)
			c.Group(func(g chi.Router) {
				g.Use(idem)
				g.Post("/", cartHandler.Create)
				g.Delete("/{id}", cartHandler.Clear)
				g.Post("/{id}/items", detailHandler.AddItem)
				g.Post("/{id}/items/{itemId}/increment", cartHandler.Increment)
				g.Post("/{id}/items/{itemId}/decrement", cartHandler.Decrement)
				g.Delete("/{id}/items/{itemId}", cartHandler.Remove)
				g.Post("/{id}/handoff/whatsapp", handoffHandler.WhatsApp)
			})
		})
	})
	return r
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
