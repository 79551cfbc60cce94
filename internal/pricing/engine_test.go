package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/foodcart/internal/pricing"
)

func TestQuoteFor(t *testing.T) {
	q := pricing.QuoteFor(3200, 700, 2)
	require.Equal(t, pricing.Money(3900), q.UnitPrice)
	require.Equal(t, pricing.Money(7800), q.LineTotal)
	require.Equal(t, 2, q.Quantity)

	q = pricing.QuoteFor(1200, 0, 0)
	require.Equal(t, 1, q.Quantity)
	require.Equal(t, pricing.Money(1200), q.LineTotal)
}

func TestComputeEmptyCartHasNoFee(t *testing.T) {
	require.Equal(t, pricing.Summary{}, pricing.Compute(nil, pricing.DefaultDeliveryFee))
}

func TestComputeAppliesFeeOnce(t *testing.T) {
	s := pricing.Compute([]pricing.Item{{Qty: 1, UnitPrice: 3200}}, pricing.DefaultDeliveryFee)
	require.Equal(t, pricing.Money(3200), s.Subtotal)
	require.Equal(t, pricing.Money(500), s.DeliveryFee)
	require.Equal(t, pricing.Money(3700), s.Total)

	s = pricing.Compute([]pricing.Item{
		{Qty: 2, UnitPrice: 3900},
		{Qty: 3, UnitPrice: 600},
		{Qty: 1, UnitPrice: 260},
	}, pricing.DefaultDeliveryFee)
	require.Equal(t, pricing.Money(7800+1800+260), s.Subtotal)
	require.Equal(t, s.Subtotal+500, s.Total)
}
