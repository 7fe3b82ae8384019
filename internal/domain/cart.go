package domain

import "math"

// Totals groups the three French price figures. TTC is authoritative
// server-side; HT and TVA are carried for display.
type Totals struct {
	HT  float64 `json:"ht"`
	TVA float64 `json:"tva"`
	TTC float64 `json:"ttc"`
}

// Coherent reports whether ttc == ht + tva within floating tolerance.
func (t Totals) Coherent() bool {
	return math.Abs(t.TTC-(t.HT+t.TVA)) < 1e-6
}

// Cart mirrors the server-owned cart of the authenticated client.
type Cart struct {
	ID     int        `json:"id"`
	Lines  []CartLine `json:"lines"`
	Totals Totals     `json:"totals"`
}

// CartLine is one product entry of a cart. Quantity is always >= 1; a
// decrement that would reach zero removes the line instead.
type CartLine struct {
	ID           int     `json:"id"`
	ProductRef   string  `json:"product_ref"`
	ProductName  string  `json:"product_name"`
	UnitPriceTTC float64 `json:"unit_price_ttc"`
	Quantity     int     `json:"quantity"`
	Image        string  `json:"image"`
	Weight       float64 `json:"weight"`
}

// ItemCount sums line quantities, the figure shown on the cart badge.
func (c Cart) ItemCount() int {
	total := 0
	for _, l := range c.Lines {
		total += l.Quantity
	}
	return total
}

// RecomputedTTC sums line prices locally. Display-only: the server
// total is authoritative for anything persisted or charged.
func (c Cart) RecomputedTTC() float64 {
	var total float64
	for _, l := range c.Lines {
		total += l.UnitPriceTTC * float64(l.Quantity)
	}
	return total
}

// TotalWeight sums line weights, used to build the draft order.
func (c Cart) TotalWeight() float64 {
	var total float64
	for _, l := range c.Lines {
		total += l.Weight * float64(l.Quantity)
	}
	return total
}
