package domain

// PaymentIntent is the server-created intent consumed by the payment
// SDK. The client secret never goes back to the storefront API.
type PaymentIntent struct {
	ID           string  `json:"id"`
	ClientSecret string  `json:"client_secret"`
	Amount       float64 `json:"amount"`
}
