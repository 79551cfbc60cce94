// Package addon models the optional paid modifiers a customer can toggle
// while configuring a catalog item.
package addon

import (
	"strings"

	"github.com/noah-isme/foodcart/internal/money"
)

// Addon is an optional modifier applied on top of an item's base price.
type Addon struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       money.Money `json:"price"`
}

// Selected is the projection of a chosen addon carried into the cart.
type Selected struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Price money.Money `json:"price"`
}

// Catalog is the fixed, ordered list of addons offered in the detail view.
type Catalog []Addon

// DefaultCatalog returns the addons offered for every item.
func DefaultCatalog() Catalog {
	return Catalog{
		{ID: "bacon", Name: "Bacon Extra", Description: "Fatia extra crocante", Price: 400},
		{ID: "cheddar", Name: "Queijo Cheddar", Description: "Extra cremosidade", Price: 300},
		{ID: "maionese", Name: "Maionese Verde", Description: "Maionese da casa", Price: 200},
		{ID: "ovo", Name: "Ovo Frito", Description: "Gema mole", Price: 260},
	}
}

// Get looks up an addon by id.
func (c Catalog) Get(id string) (Addon, bool) {
	for _, a := range c {
		if a.ID == id {
			return a, true
		}
	}
	return Addon{}, false
}

// Selection tracks which addons are toggled for the item being configured.
// The zero value is not usable; call NewSelection.
type Selection struct {
	catalog Catalog
	flags   map[string]bool
}

// NewSelection starts an empty selection against the provided catalog.
func NewSelection(catalog Catalog) *Selection {
	return &Selection{catalog: catalog, flags: map[string]bool{}}
}

// Toggle flips the flag for id. Ids outside the catalog are recorded but never priced.
func (s *Selection) Toggle(id string) {
	s.flags[id] = !s.flags[id]
}

// Set forces the flag for id.
func (s *Selection) Set(id string, on bool) {
	s.flags[id] = on
}

// IsSelected reports the current flag for id.
func (s *Selection) IsSelected(id string) bool {
	return s.flags[id]
}

// Selected returns the chosen addons in catalog order, not selection order.
func (s *Selection) Selected() []Selected {
	out := make([]Selected, 0, len(s.catalog))
	for _, a := range s.catalog {
		if s.flags[a.ID] {
			out = append(out, Selected{ID: a.ID, Name: a.Name, Price: a.Price})
		}
	}
	return out
}

// Subtotal sums the price of the selected catalog addons.
func (s *Selection) Subtotal() money.Money {
	var total money.Money
	for _, a := range s.Selected() {
		total += a.Price
	}
	return total
}

// Summary renders the selected addons as "+ Bacon Extra, + Queijo Cheddar".
// It returns an empty string when nothing is selected.
func (s *Selection) Summary() string {
	selected := s.Selected()
	if len(selected) == 0 {
		return ""
	}
	parts := make([]string, 0, len(selected))
	for _, a := range selected {
		parts = append(parts, "+ "+a.Name)
	}
	return strings.Join(parts, ", ")
}
