// Package payment wraps the two-call payment contract: create an
// intent for an amount, then confirm it, which is the call that
// actually creates the order server-side.
package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront-client/internal/domain"
)

type api interface {
	Do(ctx context.Context, method, endpoint string, body interface{}, requireAuth bool) (json.RawMessage, error)
}

type sessionSource interface {
	Session() (domain.Session, bool, error)
}

// Service is a stateless wrapper over the payment endpoints.
type Service struct {
	api      api
	sessions sessionSource
}

// New creates the payment service.
func New(a api, sessions sessionSource) *Service {
	return &Service{api: a, sessions: sessions}
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

// PublishableKey fetches the payment SDK's publishable key. Both key
// spellings seen on the wire are accepted here and nowhere else.
func (s *Service) PublishableKey(ctx context.Context) (string, error) {
	raw, err := s.api.Do(ctx, "GET", "/api/paiement/cle-publique/", nil, false)
	if err != nil {
		return "", err
	}
	var body struct {
		ClePublique    string `json:"cle_publique"`
		PublishableKey string `json:"publishable_key"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", fmt.Errorf("decode publishable key: %w", err)
	}
	key := body.ClePublique
	if key == "" {
		key = body.PublishableKey
	}
	if key == "" {
		return "", fmt.Errorf("publishable key missing from response")
	}
	return key, nil
}

// CreateIntent asks the server for a payment intent covering amount.
// The returned client secret feeds the payment SDK, nothing else.
func (s *Service) CreateIntent(ctx context.Context, clientID int, amount float64) (*domain.PaymentIntent, error) {
	id, err := s.resolveClientID(clientID)
	if err != nil {
		return nil, err
	}
	raw, err := s.api.Do(ctx, "POST", fmt.Sprintf("/api/%d/paiement/creer-intent/", id), map[string]float64{
		"montant": amount,
	}, true)
	if err != nil {
		return nil, err
	}
	var body struct {
		IntentID     string  `json:"intent_id"`
		ClientSecret string  `json:"client_secret"`
		Montant      float64 `json:"montant"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode payment intent: %w", err)
	}
	if body.IntentID == "" || body.ClientSecret == "" {
		return nil, fmt.Errorf("payment intent response incomplete")
	}
	return &domain.PaymentIntent{ID: body.IntentID, ClientSecret: body.ClientSecret, Amount: body.Montant}, nil
}

// Confirm finalizes the payment server-side with the chosen carrier.
// This is the call that creates the order; the client must not consider
// the order placed until it succeeds.
func (s *Service) Confirm(ctx context.Context, clientID int, intentID string, carrierID int) (*domain.Order, error) {
	id, err := s.resolveClientID(clientID)
	if err != nil {
		return nil, err
	}
	if intentID == "" {
		return nil, fmt.Errorf("intent id required")
	}
	raw, err := s.api.Do(ctx, "POST", fmt.Sprintf("/api/%d/paiement/confirmer/", id), map[string]interface{}{
		"intent_id":  intentID,
		"livreur_id": carrierID,
	}, true)
	if err != nil {
		return nil, err
	}
	var w confirmedOrder
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decode confirmed order: %w", err)
	}
	o := w.toDomain()
	return &o, nil
}

// confirmedOrder mirrors the order service's wire tolerance for the
// subset of fields the confirmation endpoint returns.
type confirmedOrder struct {
	ID       *int    `json:"id"`
	PK       *int    `json:"pk"`
	Numero   string  `json:"numero"`
	Statut   string  `json:"statut"`
	TotalTTC float64 `json:"total_ttc"`
}

func (w confirmedOrder) toDomain() domain.Order {
	o := domain.Order{
		Numero: w.Numero,
		Status: domain.OrderStatus(w.Statut),
		Totals: domain.Totals{TTC: w.TotalTTC},
	}
	switch {
	case w.ID != nil:
		o.ID = *w.ID
	case w.PK != nil:
		o.ID = *w.PK
	}
	return o
}
