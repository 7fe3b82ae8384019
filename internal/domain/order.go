package domain

import "time"

// OrderStatus is the lifecycle state of a commande, server-controlled.
type OrderStatus string

const (
	StatusEnAttente     OrderStatus = "en_attente"
	StatusConfirmee     OrderStatus = "confirmee"
	StatusEnCours       OrderStatus = "en_cours"
	StatusEnPreparation OrderStatus = "en_preparation"
	StatusEnLivraison   OrderStatus = "en_livraison"
	StatusLivree        OrderStatus = "livree"
	StatusTerminee      OrderStatus = "terminee"
	StatusAnnulee       OrderStatus = "annulee"
)

// Cancellable reports whether the client may request a cancel
// transition. Only waiting and freshly confirmed orders qualify.
func (s OrderStatus) Cancellable() bool {
	return s == StatusEnAttente || s == StatusConfirmee
}

// Order is a server-created commande, immutable client-side except for
// the cancel transition.
type Order struct {
	ID              int         `json:"id"`
	Numero          string      `json:"numero"`
	Date            time.Time   `json:"date"`
	Status          OrderStatus `json:"status"`
	Lines           []OrderLine `json:"lines"`
	DeliveryAddress Address     `json:"delivery_address"`
	BillingAddress  Address     `json:"billing_address"`
	Totals          Totals      `json:"totals"`
	Carrier         *Carrier    `json:"carrier,omitempty"`
}

// OrderLine is a frozen copy of a cart line at order-creation time.
type OrderLine struct {
	ProductRef   string  `json:"product_ref"`
	ProductName  string  `json:"product_name"`
	UnitPriceTTC float64 `json:"unit_price_ttc"`
	Quantity     int     `json:"quantity"`
}

// DraftOrder is the checkout-only order in progress. It lives in local
// storage between checkout steps and is never sent to the server as-is:
// the payment confirmation call creates the real order server-side.
type DraftOrder struct {
	ClientName      string     `json:"client"`
	ClientID        int        `json:"client_id"`
	DeliveryAddress Address    `json:"delivery_address"`
	BillingAddress  Address    `json:"billing_address"`
	Lines           []CartLine `json:"lines"`
	TotalWeight     float64    `json:"total_weight"`
	TotalTTC        float64    `json:"total_ttc"`
	Carrier         *Carrier   `json:"carrier,omitempty"`
	GeoLabel        string     `json:"geo_label,omitempty"`
}

// GrandTotal is the amount actually charged: order total plus the
// selected carrier's price. Zero carrier means no carrier chosen yet.
func (d DraftOrder) GrandTotal() float64 {
	if d.Carrier == nil {
		return d.TotalTTC
	}
	return d.TotalTTC + d.Carrier.Price
}
