package app

import (
	"context"
	"errors"
	"fmt"

	validator "github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	limiter "github.com/ulule/limiter/v3"

	"github.com/noah-isme/foodcart/internal/addon"
	"github.com/noah-isme/foodcart/internal/cart"
	"github.com/noah-isme/foodcart/internal/catalog"
	"github.com/noah-isme/foodcart/internal/config"
	"github.com/noah-isme/foodcart/internal/handoff"
	"github.com/noah-isme/foodcart/internal/lock"
	"github.com/noah-isme/foodcart/internal/ratelimit"
)

// Dependencies enumerates the services shared by the HTTP handlers.
type Dependencies struct {
	Config     *config.Config
	Logger     zerolog.Logger
	Redis      *redis.Client
	Validator  *validator.Validate
	Limiter    *limiter.Limiter
	TaskClient *asynq.Client
	Catalog    *catalog.Service
	Addons     addon.Catalog
	Carts      *cart.Store
	Messenger  handoff.Messenger
}

// Options toggles optional instrumentation while building Dependencies.
type Options struct {
	RedisTracing bool
	RedisMetrics bool
}

// Build wires every dependency from cfg. Without REDIS_URL carts live in process memory and
// locks, idempotency and the handoff queue are disabled.
func Build(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts Options) (*Dependencies, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	d := &Dependencies{
		Config:    cfg,
		Logger:    logger,
		Validator: validator.New(validator.WithRequiredStructEnabled()),
		Addons:    addon.DefaultCatalog(),
	}

	svc, err := catalog.NewService(catalog.DefaultItems())
	if err != nil {
		return nil, fmt.Errorf("initialise catalog: %w", err)
	}
	d.Catalog = svc

	storeCfg := cart.Config{
		Prefix:      cfg.CartKeyPrefix,
		TTL:         cfg.CartTTL,
		LockTTL:     cfg.CartLockTTL,
		DeliveryFee: cfg.CartDeliveryFee,
		Logger:      &d.Logger,
	}

	if cfg.UsesRedis() {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		d.Redis = redis.NewClient(redisOpts)
		if opts.RedisTracing {
			if err := redisotel.InstrumentTracing(d.Redis); err != nil {
				logger.Error().Err(err).Msg("instrument redis tracing")
			}
		}
		if opts.RedisMetrics {
			if err := redisotel.InstrumentMetrics(d.Redis); err != nil {
				logger.Error().Err(err).Msg("instrument redis metrics")
			}
		}
		if err := d.Redis.Ping(ctx).Err(); err != nil {
			_ = d.Redis.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		storeCfg.Storage = cart.NewRedisStorage(d.Redis)
		storeCfg.Locker = lock.Locker{R: d.Redis, RetryBackoff: cfg.LockRetryBackoff, MaxWait: cfg.CartLockTTL}

		connOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
		if err != nil {
			_ = d.Redis.Close()
			return nil, fmt.Errorf("parse task queue url: %w", err)
		}
		d.TaskClient = asynq.NewClient(connOpt)
		d.Messenger = handoff.Dispatcher{
			Client:   d.TaskClient,
			Queue:    cfg.HandoffQueue,
			MaxRetry: cfg.HandoffMaxRetry,
			Timeout:  cfg.OutboundTimeout,
		}
	} else {
		logger.Warn().Msg("REDIS_URL not set; carts are kept in memory and handoffs are not queued")
		d.Messenger = handoff.NopMessenger{}
	}

	d.Carts = cart.NewStore(storeCfg)

	lim, err := ratelimit.New(cfg.RateLimit, d.Redis, "foodcart:ratelimit")
	if err != nil {
		_ = d.Close()
		return nil, err
	}
	d.Limiter = lim
	return d, nil
}

// Close releases network resources.
func (d *Dependencies) Close() error {
	var errs []error
	if d.TaskClient != nil {
		errs = append(errs, d.TaskClient.Close())
	}
	if d.Redis != nil {
		errs = append(errs, d.Redis.Close())
	}
	return errors.Join(errs...)
}
