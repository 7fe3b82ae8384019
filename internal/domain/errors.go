package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAuthRequired is returned before any network call when an
	// authenticated endpoint is hit without a stored token.
	ErrAuthRequired = errors.New("authentication token missing")
	// ErrSessionExpired is returned after a 401; the session has already
	// been torn down and the caller must not retry. Callers match on the
	// "session a expiré" substring, keep it stable.
	ErrSessionExpired = errors.New("votre session a expiré, veuillez vous reconnecter")
	// ErrClientIDMissing is returned when no client id was given and none
	// is stored in the session.
	ErrClientIDMissing = errors.New("client identifier not found")
	// ErrNoDraftOrder indicates a checkout step was reached with no order
	// in progress in local storage.
	ErrNoDraftOrder = errors.New("no order in progress, please restart checkout")
)

// StockIssue is one line of a structured insufficient-stock error body.
type StockIssue struct {
	Produit           string `json:"produit"`
	QuantiteCommandee int    `json:"quantite_commandee"`
	StockDisponible   int    `json:"stock_disponible"`
}

// APIError is a non-2xx response from the storefront API. Details is
// populated when the server reports per-product stock problems.
type APIError struct {
	Status  int
	Message string
	Details []StockIssue
}

func (e *APIError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	raw, err := json.Marshal(e.Details)
	if err != nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, raw)
}
