// Package detail models the product detail view: a short-lived configuration of one catalog
// item (addons, note, quantity) that ends with a single commit into the cart.
package detail

import (
	"context"
	"errors"
	"strings"

	"github.com/noah-isme/foodcart/internal/addon"
	"github.com/noah-isme/foodcart/internal/cart"
	"github.com/noah-isme/foodcart/internal/catalog"
	"github.com/noah-isme/foodcart/internal/pricing"
)

var (
	// ErrNoItem is returned when a session is opened or used without an item.
	ErrNoItem = errors.New("detail: no item selected")
	// ErrCommitted is returned when a committed session is configured again.
	ErrCommitted = errors.New("detail: session already committed")
)

// State is the lifecycle position of a Session.
type State int

const (
	Browsing State = iota
	Configuring
	Committed
)

func (s State) String() string {
	switch s {
	case Browsing:
		return "browsing"
	case Configuring:
		return "configuring"
	case Committed:
		return "committed"
	default:
		return "unknown"
	}
}

// Committer receives the configured line.
type Committer interface {
	Upsert(ctx context.Context, cartID string, item cart.LineItem, delta int) (cart.Cart, error)
}

// Session holds the configuration of one item on the detail view.
type Session struct {
	addons    addon.Catalog
	state     State
	item      catalog.Item
	selection *addon.Selection
	note      string
	qty       int
}

// NewSession starts in Browsing. A nil catalog uses the default addon list.
func NewSession(addons addon.Catalog) *Session {
	if addons == nil {
		addons = addon.DefaultCatalog()
	}
	return &Session{addons: addons}
}

// State returns the current lifecycle position.
func (s *Session) State() State {
	return s.state
}

// Item returns the item being configured.
func (s *Session) Item() (catalog.Item, bool) {
	return s.item, s.state != Browsing
}

// Open starts configuring item with an empty selection, quantity 1 and no note.
func (s *Session) Open(item *catalog.Item) error {
	if item == nil {
		return ErrNoItem
	}
	if s.state == Committed {
		return ErrCommitted
	}
	s.item = *item
	s.selection = addon.NewSelection(s.addons)
	s.note = ""
	s.qty = 1
	s.state = Configuring
	return nil
}

func (s *Session) configurable() error {
	switch s.state {
	case Browsing:
		return ErrNoItem
	case Committed:
		return ErrCommitted
	}
	return nil
}

// ToggleAddon flips one addon.
func (s *Session) ToggleAddon(id string) error {
	if err := s.configurable(); err != nil {
		return err
	}
	s.selection.Toggle(id)
	return nil
}

// SetAddon selects or clears one addon explicitly.
func (s *Session) SetAddon(id string, on bool) error {
	if err := s.configurable(); err != nil {
		return err
	}
	s.selection.Set(id, on)
	return nil
}

// SetNote stores the trimmed note. Blank clears it.
func (s *Session) SetNote(note string) error {
	if err := s.configurable(); err != nil {
		return err
	}
	s.note = strings.TrimSpace(note)
	return nil
}

// SetQuantity stores qty, raised to 1 when lower.
func (s *Session) SetQuantity(qty int) error {
	if err := s.configurable(); err != nil {
		return err
	}
	if qty < 1 {
		qty = 1
	}
	s.qty = qty
	return nil
}

// Increase adds one unit.
func (s *Session) Increase() error {
	if err := s.configurable(); err != nil {
		return err
	}
	s.qty++
	return nil
}

// Decrease removes one unit, stopping at 1.
func (s *Session) Decrease() error {
	if err := s.configurable(); err != nil {
		return err
	}
	if s.qty > 1 {
		s.qty--
	}
	return nil
}

// Quantity returns the configured quantity.
func (s *Session) Quantity() int {
	return s.qty
}

// Note returns the configured note.
func (s *Session) Note() string {
	return s.note
}

// Selected returns the chosen addons in catalog order.
func (s *Session) Selected() []addon.Selected {
	if s.selection == nil {
		return nil
	}
	return s.selection.Selected()
}

// Subtitle summarizes the chosen addons, empty when none are selected.
func (s *Session) Subtitle() string {
	if s.selection == nil {
		return ""
	}
	return s.selection.Summary()
}

// Quote prices the current configuration.
func (s *Session) Quote() (pricing.Quote, error) {
	if s.state == Browsing {
		return pricing.Quote{}, ErrNoItem
	}
	return pricing.QuoteFor(s.item.BasePrice, s.selection.Subtotal(), s.qty), nil
}

// LineItem projects the configuration into a cart line.
func (s *Session) LineItem() (cart.LineItem, error) {
	q, err := s.Quote()
	if err != nil {
		return cart.LineItem{}, err
	}
	return cart.LineItem{
		ID:        s.item.ID,
		Name:      s.item.Name,
		UnitPrice: q.UnitPrice,
		Quantity:  q.Quantity,
		Note:      s.note,
		Subtitle:  s.Subtitle(),
		ImageURL:  s.item.ImageURL,
	}, nil
}

// Commit adds the configured line to the cart once and returns the resulting snapshot.
func (s *Session) Commit(ctx context.Context, store Committer, cartID string) (cart.Cart, error) {
	if err := s.configurable(); err != nil {
		return cart.Cart{}, err
	}
	line, err := s.LineItem()
	if err != nil {
		return cart.Cart{}, err
	}
	snap, err := store.Upsert(ctx, cartID, line, line.Quantity)
	if err != nil {
		return cart.Cart{}, err
	}
	s.state = Committed
	return snap, nil
}
