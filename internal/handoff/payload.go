// Package handoff turns a cart snapshot into an order transfer: a structured payload for the
// checkout step, a human-readable message and its delivery to external channels.
package handoff

import (
	"strings"

	"github.com/noah-isme/foodcart/internal/cart"
	"github.com/noah-isme/foodcart/internal/money"
)

// Line is one ordered item.
type Line struct {
	ID        int         `json:"id"`
	Name      string      `json:"name"`
	Subtitle  string      `json:"subtitle,omitempty"`
	Note      string      `json:"note,omitempty"`
	UnitPrice money.Money `json:"price"`
	Quantity  int         `json:"qty"`
	LineTotal money.Money `json:"lineTotal"`
	ImageURL  string      `json:"image,omitempty"`
}

// Payload is the order handed to the checkout step.
type Payload struct {
	CartID      string      `json:"cartId"`
	Items       []Line      `json:"items"`
	Note        string      `json:"orderObs,omitempty"`
	DeliveryFee money.Money `json:"deliveryFee"`
	Subtotal    money.Money `json:"subtotal"`
	Total       money.Money `json:"total"`
}

// IsEmpty reports whether there is nothing to order.
func (p Payload) IsEmpty() bool {
	return len(p.Items) == 0
}

// Build projects a snapshot and an order-level note into a Payload. Totals are recomputed.
func Build(c cart.Cart, note string) Payload {
	summary := c.Summary()
	p := Payload{
		CartID:      c.ID,
		Items:       make([]Line, 0, len(c.Items)),
		Note:        strings.TrimSpace(note),
		DeliveryFee: summary.DeliveryFee,
		Subtotal:    summary.Subtotal,
		Total:       summary.Total,
	}
	for _, it := range c.Items {
		p.Items = append(p.Items, Line{
			ID:        it.ID,
			Name:      it.Name,
			Subtitle:  it.Subtitle,
			Note:      it.Note,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal(),
			ImageURL:  it.ImageURL,
		})
	}
	return p
}
