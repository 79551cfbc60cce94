package catalog

import "github.com/noah-isme/foodcart/internal/money"

// Category names used by the storefront menu.
const (
	CategorySandwiches = "Sanduíches"
	CategoryDrinks     = "Bebidas"
	CategorySides      = "Adicionais"
)

// Item is an immutable purchasable product.
type Item struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	BasePrice   money.Money `json:"price"`
	ImageURL    string      `json:"image"`
	Badge       string      `json:"badge,omitempty"`
	Category    string      `json:"category"`
}

// DefaultItems returns the menu served by the storefront.
func DefaultItems() []Item {
	return []Item{
		{
			ID:          1,
			Name:        "Monster Bacon",
			Description: "Hambúrguer artesanal 160g, cheddar, bacon crocante e molho especial.",
			BasePrice:   3200,
			Badge:       "MAIS PEDIDO",
			ImageURL:    "https://images.unsplash.com/photo-1550547660-d9450f859349",
			Category:    CategorySandwiches,
		},
		{
			ID:          2,
			Name:        "Classic Salad",
			Description: "Pão brioche, blend 160g, alface, tomate e maionese.",
			BasePrice:   2800,
			ImageURL:    "https://images.unsplash.com/photo-1568901346375-23c9450c58cd",
			Category:    CategorySandwiches,
		},
		{
			ID:          3,
			Name:        "Monster Bacon Duplo",
			Description: "Dois blends 160g, cheddar em dobro, bacon crocante e molho especial.",
			BasePrice:   4200,
			Badge:       "NOVO",
			ImageURL:    "https://images.unsplash.com/photo-1550547660-d9450f859349",
			Category:    CategorySandwiches,
		},
		{
			ID:          4,
			Name:        "Classic Chicken",
			Description: "Pão brioche, frango empanado, alface e maionese da casa.",
			BasePrice:   2600,
			ImageURL:    "https://images.unsplash.com/photo-1568901346375-23c9450c58cd",
			Category:    CategorySandwiches,
		},
		{
			ID:          7,
			Name:        "Coca-Cola Lata",
			Description: "Refrigerante 350ml",
			BasePrice:   600,
			ImageURL:    "https://blog.somostera.com/hubfs/Blog_free_images/Uma%20lata%20de%20coca%20cola%20em%20cima%20da%20mesa.jpg",
			Category:    CategoryDrinks,
		},
		{
			ID:          8,
			Name:        "Coca-Cola 2L",
			Description: "Garrafa 2L",
			BasePrice:   1400,
			ImageURL:    "https://felicitapizzaria.chefware.com.br/67/0/0/coca-cola-2-litros.jpg",
			Category:    CategoryDrinks,
		},
		{
			ID:          9,
			Name:        "Suco de Laranja",
			Description: "Natural",
			BasePrice:   800,
			ImageURL:    "https://www.sabornamesa.com.br/media/k2/items/cache/b018fd5ec8f1b90a1c8015900c2c2630_XL.jpg",
			Category:    CategoryDrinks,
		},
		{
			ID:          10,
			Name:        "Batata Frita",
			Description: "Porção",
			BasePrice:   1200,
			ImageURL:    "https://swiftbr.vteximg.com.br/arquivos/ids/201377-768-768/622291-batata-airfryer-extra-croc-mccain_3.jpg",
			Category:    CategorySides,
		},
	}
}
