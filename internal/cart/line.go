package cart

import (
	"github.com/noah-isme/foodcart/internal/money"
	"github.com/noah-isme/foodcart/internal/pricing"
)

// LineItem is one persisted cart entry: a catalog item plus its configuration and quantity.
type LineItem struct {
	ID        int         `json:"id"`
	Name      string      `json:"name"`
	UnitPrice money.Money `json:"price"`
	Quantity  int         `json:"qty"`
	Note      string      `json:"note,omitempty"`
	Subtitle  string      `json:"subtitle,omitempty"`
	ImageURL  string      `json:"image"`
}

// LineTotal returns unit price times quantity.
func (li LineItem) LineTotal() money.Money {
	return pricing.LineTotal(li.UnitPrice, li.Quantity)
}

func (li LineItem) valid() bool {
	return li.ID > 0 && li.Name != "" && li.UnitPrice >= 0
}

// Cart is an immutable snapshot of a session's line items in first-added order.
type Cart struct {
	ID          string
	Items       []LineItem
	DeliveryFee money.Money
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Find returns the line with the given id.
func (c Cart) Find(id int) (LineItem, bool) {
	for _, it := range c.Items {
		if it.ID == id {
			return it, true
		}
	}
	return LineItem{}, false
}

// Count returns the total number of units across all lines.
func (c Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Summary computes subtotal, delivery fee and total from the current lines.
func (c Cart) Summary() pricing.Summary {
	items := make([]pricing.Item, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, pricing.Item{Qty: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return pricing.Compute(items, c.DeliveryFee)
}

// Subtotal is the sum of every line total.
func (c Cart) Subtotal() money.Money {
	return c.Summary().Subtotal
}

// Total is the subtotal plus the delivery fee when the cart is non-empty.
func (c Cart) Total() money.Money {
	return c.Summary().Total
}

func cloneItems(items []LineItem) []LineItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

// upsertLine merges item into items by id. Quantity accumulates; every other field takes
// the incoming value.
func upsertLine(items []LineItem, item LineItem, delta int) []LineItem {
	for i, it := range items {
		if it.ID != item.ID {
			continue
		}
		qty := it.Quantity + delta
		if qty < 1 {
			qty = 1
		}
		item.Quantity = qty
		items[i] = item
		return items
	}
	if delta < 1 {
		delta = 1
	}
	item.Quantity = delta
	return append(items, item)
}

func adjustLine(items []LineItem, id, delta int) []LineItem {
	for i, it := range items {
		if it.ID != id {
			continue
		}
		qty := it.Quantity + delta
		if qty < 1 {
			qty = 1
		}
		items[i].Quantity = qty
	}
	return items
}

func removeLine(items []LineItem, id int) []LineItem {
	out := items[:0]
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}
