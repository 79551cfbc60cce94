package addon_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/foodcart/internal/addon"
	"github.com/noah-isme/foodcart/internal/money"
)

func TestToggleFlipsFlag(t *testing.T) {
	sel := addon.NewSelection(addon.DefaultCatalog())
	require.False(t, sel.IsSelected("bacon"))
	sel.Toggle("bacon")
	require.True(t, sel.IsSelected("bacon"))
	sel.Toggle("bacon")
	require.False(t, sel.IsSelected("bacon"))
}

func TestSelectedFollowsCatalogOrder(t *testing.T) {
	sel := addon.NewSelection(addon.DefaultCatalog())
	sel.Toggle("ovo")
	sel.Toggle("bacon")
	sel.Toggle("cheddar")

	got := sel.Selected()
	require.Len(t, got, 3)
	require.Equal(t, []string{"bacon", "cheddar", "ovo"}, []string{got[0].ID, got[1].ID, got[2].ID})
	require.Equal(t, money.Money(400+300+260), sel.Subtotal())
	require.Equal(t, "+ Bacon Extra, + Queijo Cheddar, + Ovo Frito", sel.Summary())
}

func TestUnknownIDsAreNotPriced(t *testing.T) {
	sel := addon.NewSelection(addon.DefaultCatalog())
	sel.Toggle("truffle")
	require.True(t, sel.IsSelected("truffle"))
	require.Empty(t, sel.Selected())
	require.Equal(t, money.Money(0), sel.Subtotal())
	require.Equal(t, "", sel.Summary())
}

func TestCatalogGet(t *testing.T) {
	a, ok := addon.DefaultCatalog().Get("maionese")
	require.True(t, ok)
	require.Equal(t, money.Money(200), a.Price)
	_, ok = addon.DefaultCatalog().Get("missing")
	require.False(t, ok)
}
