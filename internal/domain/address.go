package domain

// Address is a delivery or billing address owned by a client. It is
// copied by value into a draft order at checkout time, never referenced.
type Address struct {
	ID         int    `json:"id"`
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Country    string `json:"country"`
}

// Account is the canonical client account as returned by the
// parametre endpoint.
type Account struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone"`
	Addresses []Address `json:"addresses"`
}

// FullName joins first and last name for display and draft orders.
func (a Account) FullName() string {
	switch {
	case a.FirstName == "":
		return a.LastName
	case a.LastName == "":
		return a.FirstName
	default:
		return a.FirstName + " " + a.LastName
	}
}
