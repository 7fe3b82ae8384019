// Package order wraps the commandes endpoints. Orders are created
// server-side only; the client reads them and may request a cancel.
package order

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront-client/internal/domain"
)

type api interface {
	Do(ctx context.Context, method, endpoint string, body interface{}, requireAuth bool) (json.RawMessage, error)
}

type sessionSource interface {
	Session() (domain.Session, bool, error)
}

// Service is a stateless wrapper over the order endpoints.
type Service struct {
	api      api
	sessions sessionSource
}

// New creates the order service.
func New(a api, sessions sessionSource) *Service {
	return &Service{api: a, sessions: sessions}
}

// wireOrder tolerates the id field variants seen in the wild; the
// variants stop here.
type wireOrder struct {
	ID         *int            `json:"id"`
	CommandeID *int            `json:"commande_id"`
	PK         *int            `json:"pk"`
	Numero     string          `json:"numero"`
	Date       string          `json:"date"`
	Statut     string          `json:"statut"`
	Lignes     []wireOrderLine `json:"lignes"`
	Livraison  wireAddress     `json:"adresse_livraison"`
	Facturation wireAddress    `json:"adresse_facturation"`
	TotalHT    float64         `json:"total_ht"`
	TotalTVA   float64         `json:"total_tva"`
	TotalTTC   float64         `json:"total_ttc"`
	Livreur    *wireCarrier    `json:"livreur"`
}

type wireOrderLine struct {
	ProduitRef      string  `json:"produit_ref"`
	ProduitNom      string  `json:"produit_nom"`
	PrixUnitaireTTC float64 `json:"prix_unitaire_ttc"`
	Quantite        int     `json:"quantite"`
}

type wireAddress struct {
	ID         int    `json:"id"`
	Rue        string `json:"rue"`
	CodePostal string `json:"code_postal"`
	Ville      string `json:"ville"`
	Pays       string `json:"pays"`
}

type wireCarrier struct {
	ID    int     `json:"id"`
	Nom   string  `json:"nom"`
	Prix  float64 `json:"prix"`
	Delai int     `json:"delai"`
}

func (w wireOrder) toDomain() domain.Order {
	o := domain.Order{
		Numero: w.Numero,
		Status: domain.OrderStatus(w.Statut),
		Totals: domain.Totals{HT: w.TotalHT, TVA: w.TotalTVA, TTC: w.TotalTTC},
		DeliveryAddress: domain.Address{
			ID: w.Livraison.ID, Street: w.Livraison.Rue, PostalCode: w.Livraison.CodePostal,
			City: w.Livraison.Ville, Country: w.Livraison.Pays,
		},
		BillingAddress: domain.Address{
			ID: w.Facturation.ID, Street: w.Facturation.Rue, PostalCode: w.Facturation.CodePostal,
			City: w.Facturation.Ville, Country: w.Facturation.Pays,
		},
	}
	switch {
	case w.ID != nil:
		o.ID = *w.ID
	case w.CommandeID != nil:
		o.ID = *w.CommandeID
	case w.PK != nil:
		o.ID = *w.PK
	}
	if t, err := time.Parse(time.RFC3339, w.Date); err == nil {
		o.Date = t
	}
	for _, l := range w.Lignes {
		o.Lines = append(o.Lines, domain.OrderLine{
			ProductRef:   l.ProduitRef,
			ProductName:  l.ProduitNom,
			UnitPriceTTC: l.PrixUnitaireTTC,
			Quantity:     l.Quantite,
		})
	}
	if w.Livreur != nil {
		o.Carrier = &domain.Carrier{ID: w.Livreur.ID, Name: w.Livreur.Nom, Price: w.Livreur.Prix, DelayDays: w.Livreur.Delai}
	}
	return o
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

// List returns the client's order history.
func (s *Service) List(ctx context.Context, clientID int) ([]domain.Order, error) {
	id, err := s.resolveClientID(clientID)
	if err != nil {
		return nil, err
	}
	raw, err := s.api.Do(ctx, "GET", fmt.Sprintf("/api/%d/commandes/", id), nil, true)
	if err != nil {
		return nil, err
	}
	var wires []wireOrder
	if err := json.Unmarshal(raw, &wires); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	orders := make([]domain.Order, 0, len(wires))
	for _, w := range wires {
		orders = append(orders, w.toDomain())
	}
	return orders, nil
}

// Get returns one order.
func (s *Service) Get(ctx context.Context, clientID, orderID int) (*domain.Order, error) {
	id, err := s.resolveClientID(clientID)
	if err != nil {
		return nil, err
	}
	raw, err := s.api.Do(ctx, "GET", fmt.Sprintf("/api/%d/commandes/%d/", id, orderID), nil, true)
	if err != nil {
		return nil, err
	}
	var w wireOrder
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	o := w.toDomain()
	return &o, nil
}

// CreateInput is the order-creation payload. The server is the sole
// authority on stock; a structured stock error surfaces as
// *domain.APIError with Details populated.
type CreateInput struct {
	CartID    int
	CarrierID int
	Total     float64
}

// Create submits the order. Stock failures come back per-line inside
// the returned *domain.APIError, never flattened here.
func (s *Service) Create(ctx context.Context, clientID int, in CreateInput) (*domain.Order, error) {
	id, err := s.resolveClientID(clientID)
	if err != nil {
		return nil, err
	}
	raw, err := s.api.Do(ctx, "POST", fmt.Sprintf("/api/%d/commandes/", id), map[string]interface{}{
		"client_id":  id,
		"panier_id":  in.CartID,
		"livreur_id": in.CarrierID,
		"total":      in.Total,
	}, true)
	if err != nil {
		return nil, err
	}
	var w wireOrder
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decode created order: %w", err)
	}
	o := w.toDomain()
	return &o, nil
}

// Cancel requests the cancel transition. Gated client-side to the
// statuses the server accepts, so an impossible cancel never hits the
// network.
func (s *Service) Cancel(ctx context.Context, clientID, orderID int) (*domain.Order, error) {
	id, err := s.resolveClientID(clientID)
	if err != nil {
		return nil, err
	}
	current, err := s.Get(ctx, id, orderID)
	if err != nil {
		return nil, err
	}
	if !current.Status.Cancellable() {
		return nil, fmt.Errorf("order %s cannot be cancelled in status %s", current.Numero, current.Status)
	}
	raw, err := s.api.Do(ctx, "POST", fmt.Sprintf("/api/%d/commandes/%d/annuler/", id, orderID), nil, true)
	if err != nil {
		return nil, err
	}
	var w wireOrder
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decode cancelled order: %w", err)
	}
	o := w.toDomain()
	return &o, nil
}
