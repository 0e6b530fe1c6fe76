package models

// Product represents a digital good in the storefront catalog.
// Prices are display strings carrying a currency prefix, e.g. "₹499".
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       string          `json:"price"`
	SalePrice   string          `json:"salePrice,omitempty"`
	Category    string          `json:"category"`
	Modules     []ContentModule `json:"modules,omitempty"`
}

// OnSale reports whether the sale price overrides the list price.
func (p Product) OnSale() bool {
	return p.SalePrice != ""
}
