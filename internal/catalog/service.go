package catalog

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/noah-isme/foodcart/internal/common"
)

// ErrNotFound indicates the requested item is not on the menu.
var ErrNotFound = errors.New("catalog item not found")

// Group is a category with its items, in menu order.
type Group struct {
	Category string `json:"category"`
	Items    []Item `json:"items"`
}

// Service serves read-only lookups over a fixed list of items.
type Service struct {
	items      []Item
	byID       map[int]int
	categories []string
}

// NewService indexes the provided items. Ids must be positive and unique and prices non-negative.
func NewService(items []Item) (*Service, error) {
	s := &Service{
		items: make([]Item, 0, len(items)),
		byID:  make(map[int]int, len(items)),
	}
	seen := map[string]bool{}
	for _, it := range items {
		if it.ID <= 0 {
			return nil, fmt.Errorf("catalog: item %q has non-positive id %d", it.Name, it.ID)
		}
		if _, dup := s.byID[it.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate item id %d", it.ID)
		}
		if it.BasePrice < 0 {
			return nil, fmt.Errorf("catalog: item %d has negative price", it.ID)
		}
		s.byID[it.ID] = len(s.items)
		s.items = append(s.items, it)
		if !seen[it.Category] {
			seen[it.Category] = true
			s.categories = append(s.categories, it.Category)
		}
	}
	return s, nil
}

// List returns every item in menu order.
func (s *Service) List() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns the item with the given id.
func (s *Service) Get(id int) (Item, error) {
	idx, ok := s.byID[id]
	if !ok {
		return Item{}, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	return s.items[idx], nil
}

// Categories returns category names in first-seen order.
func (s *Service) Categories() []string {
	out := make([]string, len(s.categories))
	copy(out, s.categories)
	return out
}

// ByCategory returns the items of a category. Matching ignores case and surrounding spaces.
func (s *Service) ByCategory(category string) []Item {
	category = strings.TrimSpace(category)
	out := make([]Item, 0)
	for _, it := range s.items {
		if strings.EqualFold(it.Category, category) {
			out = append(out, it)
		}
	}
	return out
}

// Grouped returns the whole menu grouped by category.
func (s *Service) Grouped() []Group {
	groups := make([]Group, 0, len(s.categories))
	for _, c := range s.categories {
		groups = append(groups, Group{Category: c, Items: s.ByCategory(c)})
	}
	return groups
}

// Complements returns every item other than id, offered as siblings in the detail view.
func (s *Service) Complements(id int) []Item {
	out := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}

func notFound(id string, err error) error {
	return &common.AppError{Code: "NOT_FOUND", Message: "product not found", HTTPStatus: http.StatusNotFound, Err: err, Details: map[string]string{"id": id}}
}

func badRequest(field, message string, err error) error {
	return &common.AppError{Code: "BAD_REQUEST", Message: message, HTTPStatus: http.StatusBadRequest, Err: err, Details: map[string]string{"field": field}}
}
