package domain

// Carrier (livreur) is a delivery company option with its price.
type Carrier struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	DelayDays int     `json:"delay_days"`
}

// RelayPoint (point relais) is a pickup location.
type RelayPoint struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Address Address `json:"address"`
}
