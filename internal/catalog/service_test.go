package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/foodcart/internal/catalog"
)

func TestNewServiceRejectsInvalidItems(t *testing.T) {
	_, err := catalog.NewService([]catalog.Item{{ID: 1, Name: "a"}, {ID: 1, Name: "b"}})
	require.Error(t, err)

	_, err = catalog.NewService([]catalog.Item{{ID: 0, Name: "zero"}})
	require.Error(t, err)

	_, err = catalog.NewService([]catalog.Item{{ID: 2, Name: "neg", BasePrice: -1}})
	require.Error(t, err)
}

func TestLookups(t *testing.T) {
	svc, err := catalog.NewService(catalog.DefaultItems())
	require.NoError(t, err)

	item, err := svc.Get(1)
	require.NoError(t, err)
	require.Equal(t, "Monster Bacon", item.Name)

	_, err = svc.Get(99)
	require.ErrorIs(t, err, catalog.ErrNotFound)

	require.Equal(t, []string{catalog.CategorySandwiches, catalog.CategoryDrinks, catalog.CategorySides}, svc.Categories())
	require.Len(t, svc.ByCategory("bebidas"), 3)
	require.Empty(t, svc.ByCategory("Sobremesas"))

	groups := svc.Grouped()
	require.Len(t, groups, 3)
	require.Equal(t, catalog.CategorySandwiches, groups[0].Category)
	require.Len(t, groups[0].Items, 4)

	complements := svc.Complements(1)
	require.Len(t, complements, len(catalog.DefaultItems())-1)
	for _, c := range complements {
		require.NotEqual(t, 1, c.ID)
	}
}
