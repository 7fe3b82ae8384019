// Package delivery wraps the livreur and point-relais endpoints, plus
// the external reverse-geocoding service used by the delivery step.
package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront-client/internal/domain"
)

type api interface {
	Do(ctx context.Context, method, endpoint string, body interface{}, requireAuth bool) (json.RawMessage, error)
}

// Service wraps delivery-related calls. The geocoding client is
// separate from the API client: it targets a different host and its
// failures are cosmetic, never blocking checkout.
type Service struct {
	api            api
	geocodeBaseURL string
	geocodeClient  *http.Client
}

// New creates the delivery service.
func New(a api, geocodeBaseURL string) *Service {
	return &Service{
		api:            a,
		geocodeBaseURL: strings.TrimRight(geocodeBaseURL, "/"),
		geocodeClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

type wireCarrier struct {
	ID    int     `json:"id"`
	Nom   string  `json:"nom"`
	Prix  float64 `json:"prix"`
	Delai int     `json:"delai"`
}

// Carriers lists the available delivery companies.
func (s *Service) Carriers(ctx context.Context) ([]domain.Carrier, error) {
	raw, err := s.api.Do(ctx, "GET", "/api/livreur/", nil, true)
	if err != nil {
		return nil, err
	}
	var wires []wireCarrier
	if err := json.Unmarshal(raw, &wires); err != nil {
		return nil, fmt.Errorf("decode carriers: %w", err)
	}
	carriers := make([]domain.Carrier, 0, len(wires))
	for _, w := range wires {
		carriers = append(carriers, domain.Carrier{ID: w.ID, Name: w.Nom, Price: w.Prix, DelayDays: w.Delai})
	}
	return carriers, nil
}

type wireRelay struct {
	ID         int    `json:"id"`
	Nom        string `json:"nom"`
	Rue        string `json:"rue"`
	CodePostal string `json:"code_postal"`
	Ville      string `json:"ville"`
	Pays       string `json:"pays"`
}

// RelayPoints lists pickup locations.
func (s *Service) RelayPoints(ctx context.Context) ([]domain.RelayPoint, error) {
	raw, err := s.api.Do(ctx, "GET", "/api/point-relais/", nil, true)
	if err != nil {
		return nil, err
	}
	var wires []wireRelay
	if err := json.Unmarshal(raw, &wires); err != nil {
		return nil, fmt.Errorf("decode relay points: %w", err)
	}
	relays := make([]domain.RelayPoint, 0, len(wires))
	for _, w := range wires {
		relays = append(relays, domain.RelayPoint{
			ID:   w.ID,
			Name: w.Nom,
			Address: domain.Address{
				Street: w.Rue, PostalCode: w.CodePostal, City: w.Ville, Country: w.Pays,
			},
		})
	}
	return relays, nil
}

// CreateRelayPoint registers a new pickup location choice.
func (s *Service) CreateRelayPoint(ctx context.Context, r domain.RelayPoint) (*domain.RelayPoint, error) {
	raw, err := s.api.Do(ctx, "POST", "/api/point-relais/", map[string]interface{}{
		"nom":         r.Name,
		"rue":         r.Address.Street,
		"code_postal": r.Address.PostalCode,
		"ville":       r.Address.City,
		"pays":        r.Address.Country,
	}, true)
	if err != nil {
		return nil, err
	}
	var w wireRelay
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decode relay point: %w", err)
	}
	return &domain.RelayPoint{
		ID:   w.ID,
		Name: w.Nom,
		Address: domain.Address{
			Street: w.Rue, PostalCode: w.CodePostal, City: w.Ville, Country: w.Pays,
		},
	}, nil
}

// ReverseGeocode turns coordinates into a human-readable address via
// the external geocoding service. Display/record purposes only.
func (s *Service) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lon))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.geocodeBaseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build geocode request: %w", err)
	}
	resp, err := s.geocodeClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocode: status %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read geocode response: %w", err)
	}
	var body struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", fmt.Errorf("decode geocode response: %w", err)
	}
	if body.DisplayName == "" {
		return "", fmt.Errorf("reverse geocode: empty result")
	}
	return body.DisplayName, nil
}
