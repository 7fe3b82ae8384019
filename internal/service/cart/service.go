// Package cart wraps the panier endpoints. Every mutation is a full
// round-trip: the server owns the cart, the client only mirrors it.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"storefront-client/internal/domain"
	"storefront-client/internal/events"
)

type api interface {
	Do(ctx context.Context, method, endpoint string, body interface{}, requireAuth bool) (json.RawMessage, error)
}

type sessionSource interface {
	Session() (domain.Session, bool, error)
}

type publisher interface {
	Publish(events.Event)
}

// Service is a stateless wrapper over the cart endpoints. After every
// successful mutation it re-fetches the authoritative cart and
// publishes a CartChanged event with the new item count.
type Service struct {
	api      api
	sessions sessionSource
	bus      publisher
}

// New creates the cart service. bus may be nil when nothing listens.
func New(a api, sessions sessionSource, bus publisher) *Service {
	return &Service{api: a, sessions: sessions, bus: bus}
}

type wireCart struct {
	ID       int        `json:"id"`
	Lignes   []wireLine `json:"lignes"`
	TotalHT  float64    `json:"total_ht"`
	TotalTVA float64    `json:"total_tva"`
	TotalTTC float64    `json:"total_ttc"`
}

type wireLine struct {
	ID              int     `json:"id"`
	ProduitRef      string  `json:"produit_ref"`
	ProduitNom      string  `json:"produit_nom"`
	PrixUnitaireTTC float64 `json:"prix_unitaire_ttc"`
	Quantite        int     `json:"quantite"`
	Image           string  `json:"image"`
	Poids           float64 `json:"poids"`
}

func (w wireCart) toDomain() domain.Cart {
	lines := make([]domain.CartLine, 0, len(w.Lignes))
	for _, l := range w.Lignes {
		lines = append(lines, domain.CartLine{
			ID:           l.ID,
			ProductRef:   l.ProduitRef,
			ProductName:  l.ProduitNom,
			UnitPriceTTC: l.PrixUnitaireTTC,
			Quantity:     l.Quantite,
			Image:        l.Image,
			Weight:       l.Poids,
		})
	}
	return domain.Cart{
		ID:     w.ID,
		Lines:  lines,
		Totals: domain.Totals{HT: w.TotalHT, TVA: w.TotalTVA, TTC: w.TotalTTC},
	}
}

func (s *Service) resolveClientID(explicit int) (int, error) {
	if explicit > 0 {
		return explicit, nil
	}
	sess, ok, err := s.sessions.Session()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, domain.ErrClientIDMissing
	}
	return sess.ClientID, nil
}

// Get fetches the authoritative cart.
func (s *Service) Get(ctx context.Context, clientID int) (*domain.Cart, error) {
	id, err := s.resolveClientID(clientID)
	if err != nil {
		return nil, err
	}
	raw, err := s.api.Do(ctx, "GET", fmt.Sprintf("/api/%d/panier/", id), nil, true)
	if err != nil {
		return nil, err
	}
	var w wireCart
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	cart := w.toDomain()
	return &cart, nil
}

// AddProduct adds quantity units of a product, then returns the
// re-fetched cart.
func (s *Service) AddProduct(ctx context.Context, clientID, productID, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}
	id, err := s.resolveClientID(clientID)
	if err != nil {
		return nil, err
	}
	_, err = s.api.Do(ctx, "POST", fmt.Sprintf("/api/%d/panier/", id), map[string]int{
		"produit":  productID,
		"quantite": quantity,
	}, true)
	if err != nil {
		return nil, err
	}
	return s.refresh(ctx, id)
}

// UpdateQuantity sets a line's quantity. A target of zero or less
// removes the line: the update endpoint does not special-case it.
func (s *Service) UpdateQuantity(ctx context.Context, clientID, lineID, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return s.RemoveLine(ctx, clientID, lineID)
	}
	id, err := s.resolveClientID(clientID)
	if err != nil {
		return nil, err
	}
	_, err = s.api.Do(ctx, "PUT", fmt.Sprintf("/api/%d/panier/%d/", id, lineID), map[string]int{
		"quantite": quantity,
	}, true)
	if err != nil {
		return nil, err
	}
	return s.refresh(ctx, id)
}

// RemoveLine deletes one cart line.
func (s *Service) RemoveLine(ctx context.Context, clientID, lineID int) (*domain.Cart, error) {
	id, err := s.resolveClientID(clientID)
	if err != nil {
		return nil, err
	}
	_, err = s.api.Do(ctx, "DELETE", fmt.Sprintf("/api/%d/panier/%d/", id, lineID), nil, true)
	if err != nil {
		return nil, err
	}
	return s.refresh(ctx, id)
}

// ClearError reports a partially cleared cart: there is no bulk-clear
// endpoint, so lines are deleted one by one and a mid-loop failure
// leaves the remainder in place.
type ClearError struct {
	Remaining []string
	Err       error
}

func (e *ClearError) Error() string {
	return fmt.Sprintf("cart partially cleared, still contains %s: %v", strings.Join(e.Remaining, ", "), e.Err)
}

func (e *ClearError) Unwrap() error { return e.Err }

// Clear empties the cart line by line. On a mid-loop failure it still
// re-fetches and reports which products remain via ClearError.
func (s *Service) Clear(ctx context.Context, clientID int) (*domain.Cart, error) {
	id, err := s.resolveClientID(clientID)
	if err != nil {
		return nil, err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var firstErr error
	for _, line := range current.Lines {
		if _, err := s.api.Do(ctx, "DELETE", fmt.Sprintf("/api/%d/panier/%d/", id, line.ID), nil, true); err != nil {
			firstErr = err
			break
		}
	}

	cart, refreshErr := s.refresh(ctx, id)
	if firstErr != nil {
		clearErr := &ClearError{Err: firstErr}
		if cart != nil {
			for _, line := range cart.Lines {
				clearErr.Remaining = append(clearErr.Remaining, line.ProductName)
			}
		}
		return cart, clearErr
	}
	return cart, refreshErr
}

// refresh re-reads the cart after a mutation and notifies observers.
// The mutation call and this fetch are sequential on purpose: reading
// before the mutation is acknowledged would show stale data.
func (s *Service) refresh(ctx context.Context, clientID int) (*domain.Cart, error) {
	cart, err := s.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if s.bus != nil {
		s.bus.Publish(events.CartChanged{ItemCount: cart.ItemCount()})
	}
	return cart, nil
}
