package domain

// Product is a catalog entry from the magasin endpoint.
type Product struct {
	ID          int     `json:"id"`
	Ref         string  `json:"ref"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	PriceHT     float64 `json:"price_ht"`
	PriceTTC    float64 `json:"price_ttc"`
	Stock       int     `json:"stock"`
	Weight      float64 `json:"weight"`
	Image       string  `json:"image"`
	CategoryID  int     `json:"category_id"`
	SupplierID  int     `json:"supplier_id"`
}

// Category is a product grouping.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Supplier (fournisseur) is a product source shown on catalog pages.
type Supplier struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
}
