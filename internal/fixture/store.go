// Package fixture is an in-memory implementation of the storefront
// API, faithful to the wire contract the client consumes. It backs
// cmd/fixtureapi for local development and the integration tests.
package fixture

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"storefront-client/internal/domain"
)

type client struct {
	ID           int
	Email        string
	PasswordHash string
	Prenom       string
	Nom          string
	Telephone    string
	Addresses    []address
}

type address struct {
	ID         int
	Rue        string
	CodePostal string
	Ville      string
	Pays       string
}

type product struct {
	ID          int
	Ref         string
	Nom         string
	Description string
	PrixHT      float64
	PrixTTC     float64
	Stock       int
	Poids       float64
	Image       string
	Categorie   int
	Fournisseur int
}

type cartLine struct {
	ID        int
	ProductID int
	Quantite  int
}

type order struct {
	ID        int
	Numero    string
	Date      time.Time
	Statut    domain.OrderStatus
	Lines     []orderLine
	Livraison address
	Facturation address
	TotalTTC  float64
	CarrierID int
}

type orderLine struct {
	Ref      string
	Nom      string
	PrixTTC  float64
	Quantite int
}

type intent struct {
	ID     string
	Secret string
	Amount float64
}

type token struct {
	ClientID  int
	ExpiresAt time.Time
}

type carrier struct {
	ID    int
	Nom   string
	Prix  float64
	Delai int
}

type relay struct {
	ID         int
	Nom        string
	Rue        string
	CodePostal string
	Ville      string
	Pays       string
}

// Store is the fixture's mutable world, guarded by one mutex: the
// fixture favors simplicity over throughput.
type Store struct {
	mu sync.Mutex

	clients    map[int]*client
	tokens     map[string]token
	products   map[int]*product
	categories map[int]string
	suppliers  map[int]struct{ Nom, Ville string }
	carts      map[int][]cartLine
	orders     map[int][]*order
	carriers   []carrier
	relays     []relay
	intents    map[string]*intent

	nextClientID  int
	nextAddressID int
	nextLineID    int
	nextOrderID   int
	nextRelayID   int

	tokenTTL time.Duration
}

// NewStore builds a seeded fixture world with two accounts, a small
// catalog and three carriers. The password for both seed accounts is
// "Motdepasse1".
func NewStore() *Store {
	hash, err := bcrypt.GenerateFromPassword([]byte("Motdepasse1"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("seed password hash: %v", err))
	}

	s := &Store{
		clients:    make(map[int]*client),
		tokens:     make(map[string]token),
		products:   make(map[int]*product),
		categories: map[int]string{1: "épicerie", 2: "boissons", 3: "hygiène"},
		suppliers: map[int]struct{ Nom, Ville string }{
			1: {"Ferme du Vallon", "Annecy"},
			2: {"Brasserie des Cimes", "Chambéry"},
		},
		carts:   make(map[int][]cartLine),
		orders:  make(map[int][]*order),
		intents: make(map[string]*intent),
		carriers: []carrier{
			{ID: 1, Nom: "Colis Express", Prix: 6.90, Delai: 2},
			{ID: 2, Nom: "Relais Eco", Prix: 3.50, Delai: 5},
			{ID: 3, Nom: "Course Verte", Prix: 9.90, Delai: 1},
		},
		relays: []relay{
			{ID: 1, Nom: "Tabac de la Gare", Rue: "2 place de la Gare", CodePostal: "74000", Ville: "Annecy", Pays: "France"},
		},
		nextClientID:  3,
		nextAddressID: 10,
		nextLineID:    1,
		nextOrderID:   1,
		nextRelayID:   2,
		tokenTTL:      48 * time.Hour,
	}

	s.clients[1] = &client{
		ID: 1, Email: "alice@example.com", PasswordHash: string(hash),
		Prenom: "Alice", Nom: "Martin", Telephone: "0601020304",
		Addresses: []address{
			{ID: 1, Rue: "12 rue des Lilas", CodePostal: "74000", Ville: "Annecy", Pays: "France"},
			{ID: 2, Rue: "3 avenue du Lac", CodePostal: "74940", Ville: "Annecy-le-Vieux", Pays: "France"},
		},
	}
	s.clients[2] = &client{
		ID: 2, Email: "bruno@example.com", PasswordHash: string(hash),
		Prenom: "Bruno", Nom: "Lefevre", Telephone: "0605060708",
		Addresses: []address{
			{ID: 3, Rue: "8 chemin des Vignes", CodePostal: "73000", Ville: "Chambéry", Pays: "France"},
		},
	}

	seed := []*product{
		{ID: 1, Ref: "EP-001", Nom: "Miel de montagne", Description: "Pot 500g", PrixHT: 7.50, PrixTTC: 9.00, Stock: 25, Poids: 0.6, Image: "/img/miel.jpg", Categorie: 1, Fournisseur: 1},
		{ID: 2, Ref: "EP-002", Nom: "Confiture de myrtilles", Description: "Pot 350g", PrixHT: 4.58, PrixTTC: 5.50, Stock: 40, Poids: 0.45, Image: "/img/confiture.jpg", Categorie: 1, Fournisseur: 1},
		{ID: 3, Ref: "BO-001", Nom: "Bière blonde artisanale", Description: "Bouteille 33cl", PrixHT: 2.92, PrixTTC: 3.50, Stock: 2, Poids: 0.55, Image: "/img/biere.jpg", Categorie: 2, Fournisseur: 2},
		{ID: 4, Ref: "BO-002", Nom: "Jus de pomme", Description: "Bouteille 1L", PrixHT: 3.33, PrixTTC: 4.00, Stock: 18, Poids: 1.2, Image: "/img/jus.jpg", Categorie: 2, Fournisseur: 1},
		{ID: 5, Ref: "HY-001", Nom: "Savon au lait d'ânesse", Description: "Pain 100g", PrixHT: 5.00, PrixTTC: 6.00, Stock: 60, Poids: 0.12, Image: "/img/savon.jpg", Categorie: 3, Fournisseur: 1},
	}
	for _, p := range seed {
		s.products[p.ID] = p
	}
	return s
}

// Authenticate checks credentials and issues a token.
func (s *Store) Authenticate(email, password string) (string, int, time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		if c.Email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) != nil {
			return "", 0, time.Time{}, false
		}
		t := uuid.NewString()
		expires := time.Now().Add(s.tokenTTL)
		s.tokens[t] = token{ClientID: c.ID, ExpiresAt: expires}
		return t, c.ID, expires, true
	}
	return "", 0, time.Time{}, false
}

// Resolve validates a token and returns the bound client id.
func (s *Store) Resolve(tok string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	meta, ok := s.tokens[tok]
	if !ok {
		return 0, false
	}
	if time.Now().After(meta.ExpiresAt) {
		delete(s.tokens, tok)
		return 0, false
	}
	return meta.ClientID, true
}

// Revoke drops a token on logout.
func (s *Store) Revoke(tok string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, tok)
}

// Register creates an account, refusing duplicate emails.
func (s *Store) Register(email, password, prenom, nom, rue, codePostal, ville, pays string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		if c.Email == email {
			return 0, fmt.Errorf("un compte existe déjà pour cet email")
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}
	id := s.nextClientID
	s.nextClientID++
	c := &client{ID: id, Email: email, PasswordHash: string(hash), Prenom: prenom, Nom: nom}
	if rue != "" {
		addrID := s.nextAddressID
		s.nextAddressID++
		c.Addresses = append(c.Addresses, address{ID: addrID, Rue: rue, CodePostal: codePostal, Ville: ville, Pays: pays})
	}
	s.clients[id] = c
	return id, nil
}

// CartTotals derives the three figures from line prices, with TVA at
// the standard 20% rate. tva is computed as ttc-ht so the coherence
// invariant holds exactly.
func cartTotals(ttc float64) (ht, tva float64) {
	ht = ttc / 1.2
	tva = ttc - ht
	return ht, tva
}
