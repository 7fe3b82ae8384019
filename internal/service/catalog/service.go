// Package catalog wraps the public magasin, categories and
// fournisseurs endpoints. None of them require authentication.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront-client/internal/domain"
)

type api interface {
	Do(ctx context.Context, method, endpoint string, body interface{}, requireAuth bool) (json.RawMessage, error)
}

// Service is a stateless wrapper over the catalog endpoints.
type Service struct {
	api api
}

// New creates the catalog service.
func New(a api) *Service {
	return &Service{api: a}
}

type wireProduct struct {
	ID          int     `json:"id"`
	Ref         string  `json:"ref"`
	Nom         string  `json:"nom"`
	Description string  `json:"description"`
	PrixHT      float64 `json:"prix_ht"`
	PrixTTC     float64 `json:"prix_ttc"`
	Stock       int     `json:"stock"`
	Poids       float64 `json:"poids"`
	Image       string  `json:"image"`
	Categorie   int     `json:"categorie"`
	Fournisseur int     `json:"fournisseur"`
}

func (w wireProduct) toDomain() domain.Product {
	return domain.Product{
		ID:          w.ID,
		Ref:         w.Ref,
		Name:        w.Nom,
		Description: w.Description,
		PriceHT:     w.PrixHT,
		PriceTTC:    w.PrixTTC,
		Stock:       w.Stock,
		Weight:      w.Poids,
		Image:       w.Image,
		CategoryID:  w.Categorie,
		SupplierID:  w.Fournisseur,
	}
}

// Products lists the store catalog.
func (s *Service) Products(ctx context.Context) ([]domain.Product, error) {
	raw, err := s.api.Do(ctx, "GET", "/api/magasin", nil, false)
	if err != nil {
		return nil, err
	}
	var wires []wireProduct
	if err := json.Unmarshal(raw, &wires); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	products := make([]domain.Product, 0, len(wires))
	for _, w := range wires {
		products = append(products, w.toDomain())
	}
	return products, nil
}

// Product finds one catalog entry by id.
func (s *Service) Product(ctx context.Context, id int) (*domain.Product, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Categories lists product categories.
func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	raw, err := s.api.Do(ctx, "GET", "/api/categories", nil, false)
	if err != nil {
		return nil, err
	}
	var wires []struct {
		ID  int    `json:"id"`
		Nom string `json:"nom"`
	}
	if err := json.Unmarshal(raw, &wires); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	categories := make([]domain.Category, 0, len(wires))
	for _, w := range wires {
		categories = append(categories, domain.Category{ID: w.ID, Name: w.Nom})
	}
	return categories, nil
}

// Suppliers lists fournisseurs.
func (s *Service) Suppliers(ctx context.Context) ([]domain.Supplier, error) {
	raw, err := s.api.Do(ctx, "GET", "/api/fournisseurs", nil, false)
	if err != nil {
		return nil, err
	}
	var wires []struct {
		ID    int    `json:"id"`
		Nom   string `json:"nom"`
		Ville string `json:"ville"`
	}
	if err := json.Unmarshal(raw, &wires); err != nil {
		return nil, fmt.Errorf("decode suppliers: %w", err)
	}
	suppliers := make([]domain.Supplier, 0, len(wires))
	for _, w := range wires {
		suppliers = append(suppliers, domain.Supplier{ID: w.ID, Name: w.Nom, City: w.Ville})
	}
	return suppliers, nil
}
