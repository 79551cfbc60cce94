package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/foodcart/internal/money"
	"github.com/noah-isme/foodcart/internal/obs"
	"github.com/noah-isme/foodcart/internal/pricing"
)

var (
	// ErrInvalidInput indicates a malformed cart session id.
	ErrInvalidInput = errors.New("invalid cart input")
	// ErrStorage wraps failures of the underlying key-value store.
	ErrStorage = errors.New("cart storage unavailable")
)

const (
	defaultPrefix = "cart"
	defaultTTL    = 7 * 24 * time.Hour
)

// Locker guards a critical section across processes.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// Config wires a Store.
type Config struct {
	Storage     Storage
	Locker      Locker
	Prefix      string
	TTL         time.Duration
	LockTTL     time.Duration
	// DeliveryFee falls back to pricing.DefaultDeliveryFee when zero.
	DeliveryFee money.Money
	Logger      *zerolog.Logger
}

// Store persists one cart per session id and applies every mutation as load, mutate, save.
type Store struct {
	storage     Storage
	locker      Locker
	prefix      string
	ttl         time.Duration
	lockTTL     time.Duration
	deliveryFee money.Money
	logger      zerolog.Logger

	mu sync.Mutex
}

// NewStore constructs a Store. A nil Storage falls back to an in-memory one.
func NewStore(cfg Config) *Store {
	s := &Store{
		storage:     cfg.Storage,
		locker:      cfg.Locker,
		prefix:      strings.TrimSpace(cfg.Prefix),
		ttl:         cfg.TTL,
		lockTTL:     cfg.LockTTL,
		deliveryFee: cfg.DeliveryFee,
		logger:      zerolog.Nop(),
	}
	if s.storage == nil {
		s.storage = NewMemoryStorage()
	}
	if s.prefix == "" {
		s.prefix = defaultPrefix
	}
	if s.ttl <= 0 {
		s.ttl = defaultTTL
	}
	if s.lockTTL <= 0 {
		s.lockTTL = 5 * time.Second
	}
	if s.deliveryFee == 0 {
		s.deliveryFee = pricing.DefaultDeliveryFee
	}
	if s.deliveryFee < 0 {
		s.deliveryFee = 0
	}
	if cfg.Logger != nil {
		s.logger = *cfg.Logger
	}
	return s
}

// DeliveryFee returns the flat fee applied to non-empty carts.
func (s *Store) DeliveryFee() money.Money {
	return s.deliveryFee
}

// Key returns the storage key for a cart session.
func (s *Store) Key(cartID string) string {
	return s.prefix + ":" + cartID
}

func (s *Store) lockKey(cartID string) string {
	return "lock:" + s.Key(cartID)
}

// Load reads the cart for a session. A missing or unreadable payload yields an empty cart.
func (s *Store) Load(ctx context.Context, cartID string) (Cart, error) {
	cartID, err := normalizeID(cartID)
	if err != nil {
		return Cart{}, err
	}
	items, err := s.read(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	return s.snapshot(cartID, items), nil
}

// Exists reports whether anything is persisted for the session.
func (s *Store) Exists(ctx context.Context, cartID string) (bool, error) {
	cartID, err := normalizeID(cartID)
	if err != nil {
		return false, err
	}
	_, ok, err := s.storage.Get(ctx, s.Key(cartID))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return ok, nil
}

// Upsert merges item into the cart. An existing line with the same id accumulates quantity
// and takes every other field from item. Invalid items leave the cart untouched.
func (s *Store) Upsert(ctx context.Context, cartID string, item LineItem, delta int) (Cart, error) {
	if !item.valid() {
		s.logger.Debug().Str("cart_id", cartID).Int("item_id", item.ID).Msg("cart upsert ignored invalid item")
		obs.ObserveCartOperation("upsert", "ignored")
		return s.Load(ctx, cartID)
	}
	item.Note = strings.TrimSpace(item.Note)
	item.Subtitle = strings.TrimSpace(item.Subtitle)
	return s.mutate(ctx, "upsert", cartID, func(items []LineItem) []LineItem {
		return upsertLine(items, item, delta)
	})
}

// Increment raises the quantity of line id by one. Unknown ids are a no-op.
func (s *Store) Increment(ctx context.Context, cartID string, id int) (Cart, error) {
	return s.mutate(ctx, "increment", cartID, func(items []LineItem) []LineItem {
		return adjustLine(items, id, 1)
	})
}

// Decrement lowers the quantity of line id by one, never below 1.
func (s *Store) Decrement(ctx context.Context, cartID string, id int) (Cart, error) {
	return s.mutate(ctx, "decrement", cartID, func(items []LineItem) []LineItem {
		return adjustLine(items, id, -1)
	})
}

// Remove deletes line id. Removing the last line deletes the persisted cart.
func (s *Store) Remove(ctx context.Context, cartID string, id int) (Cart, error) {
	return s.mutate(ctx, "remove", cartID, func(items []LineItem) []LineItem {
		return removeLine(items, id)
	})
}

// Clear drops the whole cart.
func (s *Store) Clear(ctx context.Context, cartID string) error {
	_, err := s.mutate(ctx, "clear", cartID, func([]LineItem) []LineItem { return nil })
	return err
}

// Take removes the cart and returns what it held, in one critical section.
func (s *Store) Take(ctx context.Context, cartID string) (Cart, error) {
	var taken []LineItem
	c, err := s.mutate(ctx, "take", cartID, func(items []LineItem) []LineItem {
		taken = items
		return nil
	})
	if err != nil {
		return Cart{}, err
	}
	c.Items = taken
	return c, nil
}

func (s *Store) mutate(ctx context.Context, op, cartID string, fn func([]LineItem) []LineItem) (Cart, error) {
	ctx, span := otel.Tracer("cart.Store").Start(ctx, "CartStore."+op)
	defer span.End()

	cartID, err := normalizeID(cartID)
	if err != nil {
		obs.ObserveCartOperation(op, "invalid")
		return Cart{}, err
	}
	span.SetAttributes(attribute.String("cart.id", cartID))

	s.mu.Lock()
	defer s.mu.Unlock()

	var out Cart
	critical := func(ctx context.Context) error {
		items, err := s.read(ctx, cartID)
		if err != nil {
			return err
		}
		items = fn(cloneItems(items))
		if err := s.write(ctx, cartID, items); err != nil {
			return err
		}
		out = s.snapshot(cartID, items)
		return nil
	}

	if s.locker != nil {
		err = s.locker.WithLock(ctx, s.lockKey(cartID), s.lockTTL, critical)
	} else {
		err = critical(ctx)
	}
	if err != nil {
		span.RecordError(err)
		obs.ObserveCartOperation(op, "error")
		s.logger.Error().Err(err).Str("cart_id", cartID).Str("op", op).Msg("cart mutation failed")
		return Cart{}, err
	}
	span.SetAttributes(attribute.Int("cart.lines", len(out.Items)))
	obs.ObserveCartOperation(op, "ok")
	return out, nil
}

func (s *Store) read(ctx context.Context, cartID string) ([]LineItem, error) {
	raw, ok, err := s.storage.Get(ctx, s.Key(cartID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if !ok {
		return nil, nil
	}
	res := decodeLines(raw)
	if res.Dropped > 0 || res.Corrupt {
		s.logger.Warn().
			Str("cart_id", cartID).
			Int("dropped", res.Dropped).
			Bool("corrupt", res.Corrupt).
			Msg("cart payload normalized")
		obs.ObserveCartLoad(res.Dropped, res.Corrupt)
	}
	return res.Items, nil
}

func (s *Store) write(ctx context.Context, cartID string, items []LineItem) error {
	key := s.Key(cartID)
	if len(items) == 0 {
		if err := s.storage.Delete(ctx, key); err != nil {
			return fmt.Errorf("%w: %v", ErrStorage, err)
		}
		return nil
	}
	payload, err := encodeLines(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.storage.Set(ctx, key, payload, s.ttl); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

func (s *Store) snapshot(cartID string, items []LineItem) Cart {
	return Cart{ID: cartID, Items: cloneItems(items), DeliveryFee: s.deliveryFee}
}

func normalizeID(cartID string) (string, error) {
	cartID = strings.TrimSpace(cartID)
	if cartID == "" || len(cartID) > 128 || strings.ContainsAny(cartID, ": \t\n") {
		return "", fmt.Errorf("cart id %q: %w", cartID, ErrInvalidInput)
	}
	return cartID, nil
}
