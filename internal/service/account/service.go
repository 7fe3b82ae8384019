// Package account wraps the parametre endpoint and the client's
// address book.
package account

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

// Service is a stateless wrapper over the account endpoints.
type Service struct {
	api      api
	sessions sessionSource
}

// New creates the account service.
func New(a api, sessions sessionSource) *Service {
	return &Service{api: a, sessions: sessions}
}

// wireAccount is the parametre payload; ids and naming stay here.
type wireAccount struct {
	ID        int           `json:"id"`
	Email     string        `json:"email"`
	Prenom    string        `json:"prenom"`
	Nom       string        `json:"nom"`
	Telephone string        `json:"telephone"`
	Adresses  []wireAddress `json:"adresses"`
}

type wireAddress struct {
	ID         int    `json:"id"`
	Rue        string `json:"rue"`
	CodePostal string `json:"code_postal"`
	Ville      string `json:"ville"`
	Pays       string `json:"pays"`
}

func (w wireAccount) toDomain() domain.Account {
	addresses := make([]domain.Address, 0, len(w.Adresses))
	for _, a := range w.Adresses {
		addresses = append(addresses, a.toDomain())
	}
	return domain.Account{
		ID:        w.ID,
		Email:     w.Email,
		FirstName: w.Prenom,
		LastName:  w.Nom,
		Phone:     w.Telephone,
		Addresses: addresses,
	}
}

func (w wireAddress) toDomain() domain.Address {
	return domain.Address{
		ID:         w.ID,
		Street:     w.Rue,
		PostalCode: w.CodePostal,
		City:       w.Ville,
		Country:    w.Pays,
	}
}

// addressToWire maps the camelCase domain form to the snake_case wire
// form expected by every address mutation.
func addressToWire(a domain.Address) map[string]interface{} {
	return map[string]interface{}{
		"rue":         a.Street,
		"code_postal": a.PostalCode,
		"ville":       a.City,
		"pays":        a.Country,
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

// Get fetches account details. clientID <= 0 resolves from the stored
// session; this doubles as the app-start token validation call.
func (s *Service) Get(ctx context.Context, clientID int) (*domain.Account, error) {
	id, err := s.resolveClientID(clientID)
	if err != nil {
		return nil, err
	}
	raw, err := s.api.Do(ctx, "GET", fmt.Sprintf("/api/%d/parametre/", id), nil, true)
	if err != nil {
		return nil, err
	}
	var w wireAccount
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}
	account := w.toDomain()
	return &account, nil
}

// UpdateInput carries editable account fields.
type UpdateInput struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
}

// Update edits the account details.
func (s *Service) Update(ctx context.Context, clientID int, in UpdateInput) (*domain.Account, error) {
	id, err := s.resolveClientID(clientID)
	if err != nil {
		return nil, err
	}
	raw, err := s.api.Do(ctx, "PUT", fmt.Sprintf("/api/%d/parametre/", id), map[string]string{
		"email":     in.Email,
		"prenom":    in.FirstName,
		"nom":       in.LastName,
		"telephone": in.Phone,
	}, true)
	if err != nil {
		return nil, err
	}
	var w wireAccount
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}
	account := w.toDomain()
	return &account, nil
}

// CreateAddress adds an address to the client's book.
func (s *Service) CreateAddress(ctx context.Context, clientID int, a domain.Address) (*domain.Address, error) {
	id, err := s.resolveClientID(clientID)
	if err != nil {
		return nil, err
	}
	raw, err := s.api.Do(ctx, "POST", fmt.Sprintf("/api/%d/adresses/", id), addressToWire(a), true)
	if err != nil {
		return nil, err
	}
	var w wireAddress
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decode address: %w", err)
	}
	addr := w.toDomain()
	return &addr, nil
}

// UpdateAddress edits an existing address.
func (s *Service) UpdateAddress(ctx context.Context, clientID int, a domain.Address) (*domain.Address, error) {
	id, err := s.resolveClientID(clientID)
	if err != nil {
		return nil, err
	}
	if a.ID <= 0 {
		return nil, fmt.Errorf("address id required")
	}
	raw, err := s.api.Do(ctx, "PUT", fmt.Sprintf("/api/%d/adresses/%d/", id, a.ID), addressToWire(a), true)
	if err != nil {
		return nil, err
	}
	var w wireAddress
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decode address: %w", err)
	}
	addr := w.toDomain()
	return &addr, nil
}

// DeleteAddress removes an address from the book.
func (s *Service) DeleteAddress(ctx context.Context, clientID, addressID int) error {
	id, err := s.resolveClientID(clientID)
	if err != nil {
		return err
	}
	_, err = s.api.Do(ctx, "DELETE", fmt.Sprintf("/api/%d/adresses/%d/", id, addressID), nil, true)
	return err
}
