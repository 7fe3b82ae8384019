package fixture

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"storefront-client/internal/domain"
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Client returns a copy of the account, false when unknown.
func (s *Store) Client(id int) (client, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok {
		return client{}, false
	}
	return *c, true
}

// UpdateClient edits account fields, leaving blanks untouched.
func (s *Store) UpdateClient(id int, email, prenom, nom, telephone string) (client, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok {
		return client{}, false
	}
	if email != "" {
		c.Email = email
	}
	if prenom != "" {
		c.Prenom = prenom
	}
	if nom != "" {
		c.Nom = nom
	}
	if telephone != "" {
		c.Telephone = telephone
	}
	return *c, true
}

// AddAddress appends to the client's address book.
func (s *Store) AddAddress(clientID int, rue, codePostal, ville, pays string) (address, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[clientID]
	if !ok {
		return address{}, false
	}
	a := address{ID: s.nextAddressID, Rue: rue, CodePostal: codePostal, Ville: ville, Pays: pays}
	s.nextAddressID++
	c.Addresses = append(c.Addresses, a)
	return a, true
}

// UpdateAddress edits one address in place.
func (s *Store) UpdateAddress(clientID, addressID int, rue, codePostal, ville, pays string) (address, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[clientID]
	if !ok {
		return address{}, false
	}
	for i := range c.Addresses {
		if c.Addresses[i].ID != addressID {
			continue
		}
		c.Addresses[i].Rue = rue
		c.Addresses[i].CodePostal = codePostal
		c.Addresses[i].Ville = ville
		c.Addresses[i].Pays = pays
		return c.Addresses[i], true
	}
	return address{}, false
}

// DeleteAddress removes one address from the book.
func (s *Store) DeleteAddress(clientID, addressID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[clientID]
	if !ok {
		return false
	}
	for i := range c.Addresses {
		if c.Addresses[i].ID == addressID {
			c.Addresses = append(c.Addresses[:i], c.Addresses[i+1:]...)
			return true
		}
	}
	return false
}

// Products lists the catalog.
func (s *Store) Products() []product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]product, 0, len(s.products))
	for id := 1; id <= len(s.products)+16; id++ {
		if p, ok := s.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out
}

// Categories lists category ids and names in id order.
func (s *Store) Categories() map[int]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]string, len(s.categories))
	for k, v := range s.categories {
		out[k] = v
	}
	return out
}

// Suppliers lists fournisseurs.
func (s *Store) Suppliers() map[int]struct{ Nom, Ville string } {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]struct{ Nom, Ville string }, len(s.suppliers))
	for k, v := range s.suppliers {
		out[k] = v
	}
	return out
}

// Carriers lists delivery companies.
func (s *Store) Carriers() []carrier {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]carrier(nil), s.carriers...)
}

// Relays lists pickup points.
func (s *Store) Relays() []relay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]relay(nil), s.relays...)
}

// AddRelay registers a pickup point.
func (s *Store) AddRelay(nom, rue, codePostal, ville, pays string) relay {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := relay{ID: s.nextRelayID, Nom: nom, Rue: rue, CodePostal: codePostal, Ville: ville, Pays: pays}
	s.nextRelayID++
	s.relays = append(s.relays, r)
	return r
}

// Cart returns the rendered cart for a client.
func (s *Store) Cart(clientID int) (int, []cartLine, []product, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartLocked(clientID)
}

func (s *Store) cartLocked(clientID int) (int, []cartLine, []product, float64) {
	lines := append([]cartLine(nil), s.carts[clientID]...)
	products := make([]product, len(lines))
	var ttc float64
	for i, l := range lines {
		p := s.products[l.ProductID]
		products[i] = *p
		ttc += p.PrixTTC * float64(l.Quantite)
	}
	return clientID, lines, products, round2(ttc)
}

// AddToCart adds quantity units of a product, merging with an
// existing line for the same product.
func (s *Store) AddToCart(clientID, productID, quantite int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[productID]; !ok {
		return fmt.Errorf("produit introuvable")
	}
	if quantite <= 0 {
		return fmt.Errorf("quantité invalide")
	}
	lines := s.carts[clientID]
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantite += quantite
			s.carts[clientID] = lines
			return nil
		}
	}
	s.carts[clientID] = append(lines, cartLine{ID: s.nextLineID, ProductID: productID, Quantite: quantite})
	s.nextLineID++
	return nil
}

// SetLineQuantity replaces a line's quantity. The endpoint does not
// special-case zero; the client is expected to delete instead.
func (s *Store) SetLineQuantity(clientID, lineID, quantite int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if quantite <= 0 {
		return fmt.Errorf("quantité invalide")
	}
	lines := s.carts[clientID]
	for i := range lines {
		if lines[i].ID == lineID {
			lines[i].Quantite = quantite
			s.carts[clientID] = lines
			return nil
		}
	}
	return fmt.Errorf("ligne introuvable")
}

// DeleteLine removes a line from the cart.
func (s *Store) DeleteLine(clientID, lineID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[clientID]
	for i := range lines {
		if lines[i].ID == lineID {
			s.carts[clientID] = append(lines[:i], lines[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("ligne introuvable")
}

// CreateIntent records a payment intent for an amount.
func (s *Store) CreateIntent(amount float64) *intent {
	s.mu.Lock()
	defer s.mu.Unlock()
	in := &intent{
		ID:     "pi_" + uuid.NewString(),
		Secret: "pi_secret_" + uuid.NewString(),
		Amount: amount,
	}
	s.intents[in.ID] = in
	return in
}

// Intent looks a recorded intent up.
func (s *Store) Intent(id string) (*intent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.intents[id]
	return in, ok
}

// Orders lists a client's orders, newest last.
func (s *Store) Orders(clientID int) []*order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*order(nil), s.orders[clientID]...)
}

// Order finds one order by id.
func (s *Store) Order(clientID, orderID int) (*order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders[clientID] {
		if o.ID == orderID {
			return o, true
		}
	}
	return nil, false
}

// CancelOrder applies the cancel transition when the status allows it.
func (s *Store) CancelOrder(clientID, orderID int) (*order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders[clientID] {
		if o.ID != orderID {
			continue
		}
		if !o.Statut.Cancellable() {
			return nil, fmt.Errorf("commande non annulable au statut %s", o.Statut)
		}
		o.Statut = domain.StatusAnnulee
		return o, nil
	}
	return nil, fmt.Errorf("commande introuvable")
}

// CreateOrder validates stock, creates the order, decrements stock and
// empties the cart — all under one lock so the order is created exactly
// once and the stock check cannot race a concurrent confirm.
func (s *Store) CreateOrder(clientID, carrierID int) (*order, []domain.StockIssue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	client, ok := s.clients[clientID]
	if !ok {
		return nil, nil, fmt.Errorf("client introuvable")
	}
	lines := s.carts[clientID]
	if len(lines) == 0 {
		return nil, nil, fmt.Errorf("le panier est vide")
	}
	var chosen *carrier
	for i := range s.carriers {
		if s.carriers[i].ID == carrierID {
			chosen = &s.carriers[i]
			break
		}
	}
	if chosen == nil {
		return nil, nil, fmt.Errorf("livreur introuvable")
	}

	var issues []domain.StockIssue
	for _, l := range lines {
		p := s.products[l.ProductID]
		if p.Stock < l.Quantite {
			issues = append(issues, domain.StockIssue{
				Produit:           p.Nom,
				QuantiteCommandee: l.Quantite,
				StockDisponible:   p.Stock,
			})
		}
	}
	if len(issues) > 0 {
		return nil, issues, nil
	}

	var orderLines []orderLine
	var ttc float64
	for _, l := range lines {
		p := s.products[l.ProductID]
		p.Stock -= l.Quantite
		orderLines = append(orderLines, orderLine{Ref: p.Ref, Nom: p.Nom, PrixTTC: p.PrixTTC, Quantite: l.Quantite})
		ttc += p.PrixTTC * float64(l.Quantite)
	}
	ttc = round2(ttc + chosen.Prix)

	var livraison address
	if len(client.Addresses) > 0 {
		livraison = client.Addresses[0]
	}
	o := &order{
		ID:          s.nextOrderID,
		Numero:      fmt.Sprintf("CMD-%05d", s.nextOrderID),
		Date:        time.Now().UTC(),
		Statut:      domain.StatusEnAttente,
		Lines:       orderLines,
		Livraison:   livraison,
		Facturation: livraison,
		TotalTTC:    ttc,
		CarrierID:   carrierID,
	}
	s.nextOrderID++
	s.orders[clientID] = append(s.orders[clientID], o)
	s.carts[clientID] = nil
	return o, nil, nil
}
