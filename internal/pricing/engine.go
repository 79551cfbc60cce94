package pricing

import "github.com/noah-isme/foodcart/internal/money"

// Money represents a monetary value stored in minor units.
type Money = money.Money

// DefaultDeliveryFee is the flat surcharge applied once per non-empty order.
const DefaultDeliveryFee Money = 500

// Item describes a line item used for pricing calculation.
type Item struct {
	Qty       int
	UnitPrice Money
}

// Summary aggregates computed order totals.
type Summary struct {
	Subtotal    Money `json:"subtotal"`
	DeliveryFee Money `json:"deliveryFee"`
	Total       Money `json:"total"`
}

// Quote is the price of one configured item at a given quantity.
type Quote struct {
	UnitPrice Money `json:"unitPrice"`
	Quantity  int   `json:"qty"`
	LineTotal Money `json:"lineTotal"`
}

// UnitPrice combines the base price with the addon subtotal.
func UnitPrice(base, addons Money) Money {
	return base + addons
}

// LineTotal multiplies the unit price by the quantity. Quantities below one count as one.
func LineTotal(unit Money, qty int) Money {
	if qty < 1 {
		qty = 1
	}
	return unit.Mul(qty)
}

// QuoteFor prices a configured item.
func QuoteFor(base, addons Money, qty int) Quote {
	if qty < 1 {
		qty = 1
	}
	unit := UnitPrice(base, addons)
	return Quote{UnitPrice: unit, Quantity: qty, LineTotal: LineTotal(unit, qty)}
}

// Compute calculates order totals. The delivery fee only applies when items is non-empty.
func Compute(items []Item, deliveryFee Money) Summary {
	if len(items) == 0 {
		return Summary{}
	}
	var subtotal Money
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		subtotal += LineTotal(it.UnitPrice, it.Qty)
	}
	if deliveryFee < 0 {
		deliveryFee = 0
	}
	return Summary{
		Subtotal:    subtotal,
		DeliveryFee: deliveryFee,
		Total:       subtotal + deliveryFee,
	}
}
