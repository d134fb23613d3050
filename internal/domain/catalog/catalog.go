package catalog

import "strings"

// Product is a catalog entry. Products are loaded once at startup and
// treated as immutable afterwards.
type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Category    string  `json:"category,omitempty"`
	Description string  `json:"description,omitempty"`
}

// Catalog holds the ordered product list and answers lookups over it.
type Catalog struct {
	products []Product
}

func New(products []Product) *Catalog {
	return &Catalog{products: products}
}

// Products returns the catalog contents in load order.
func (c *Catalog) Products() []Product {
	return c.products
}

// FindByID returns the product with the given id.
func (c *Catalog) FindByID(id int) (Product, bool) {
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// FindByName resolves a product from free text. The match is
// case-insensitive and accepts a substring in either direction, so both
// "añade la camiseta azul al carrito" and a partial "camiseta" resolve.
func (c *Catalog) FindByName(text string) (Product, bool) {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return Product{}, false
	}
	for _, p := range c.products {
		name := strings.ToLower(p.Name)
		if strings.Contains(needle, name) || strings.Contains(name, needle) {
			return p, true
		}
	}
	return Product{}, false
}
