package fixture

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type jsonAddress struct {
	ID         int    `json:"id"`
	Rue        string `json:"rue"`
	CodePostal string `json:"code_postal"`
	Ville      string `json:"ville"`
	Pays       string `json:"pays"`
}

func toJSONAddress(a address) jsonAddress {
	return jsonAddress{ID: a.ID, Rue: a.Rue, CodePostal: a.CodePostal, Ville: a.Ville, Pays: a.Pays}
}

// authRequired validates the Token header and pins the caller to the
// :clientId path segment when present.
func authRequired(data *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tok := strings.TrimPrefix(header, "Token ")
		if header == "" || tok == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentification requise"})
			return
		}
		clientID, ok := data.Resolve(tok)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expirée"})
			return
		}
		if raw := c.Param("clientId"); raw != "" {
			pathID, err := strconv.Atoi(raw)
			if err != nil || pathID != clientID {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "accès refusé"})
				return
			}
		}
		c.Set("clientID", clientID)
		c.Set("token", tok)
		c.Next()
	}
}

func loginHandler(data *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string `json:"email" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email et mot de passe requis"})
			return
		}
		tok, clientID, expires, ok := data.Authenticate(strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "identifiants invalides"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"token":      tok,
			"user_pk":    clientID,
			"expiration": expires.Format(time.RFC3339),
		})
	}
}

func logoutHandler(data *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tok, ok := c.Get("token"); ok {
			data.Revoke(tok.(string))
		}
		c.Status(http.StatusNoContent)
	}
}

func signupHandler(data *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email      string `json:"email" binding:"required"`
			Password   string `json:"password" binding:"required"`
			Prenom     string `json:"prenom"`
			Nom        string `json:"nom"`
			Rue        string `json:"rue"`
			CodePostal string `json:"code_postal"`
			Ville      string `json:"ville"`
			Pays       string `json:"pays"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email et mot de passe requis"})
			return
		}
		id, err := data.Register(strings.ToLower(strings.TrimSpace(req.Email)), req.Password, req.Prenom, req.Nom, req.Rue, req.CodePostal, req.Ville, req.Pays)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": id})
	}
}

func renderClient(cl client) gin.H {
	addresses := make([]jsonAddress, 0, len(cl.Addresses))
	for _, a := range cl.Addresses {
		addresses = append(addresses, toJSONAddress(a))
	}
	return gin.H{
		"id":        cl.ID,
		"email":     cl.Email,
		"prenom":    cl.Prenom,
		"nom":       cl.Nom,
		"telephone": cl.Telephone,
		"adresses":  addresses,
	}
}

func getAccountHandler(data *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, ok := data.Client(c.GetInt("clientID"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "client introuvable"})
			return
		}
		c.JSON(http.StatusOK, renderClient(cl))
	}
}

func updateAccountHandler(data *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email     string `json:"email"`
			Prenom    string `json:"prenom"`
			Nom       string `json:"nom"`
			Telephone string `json:"telephone"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "corps invalide"})
			return
		}
		cl, ok := data.UpdateClient(c.GetInt("clientID"), req.Email, req.Prenom, req.Nom, req.Telephone)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "client introuvable"})
			return
		}
		c.JSON(http.StatusOK, renderClient(cl))
	}
}

type addressRequest struct {
	Rue        string `json:"rue"`
	CodePostal string `json:"code_postal"`
	Ville      string `json:"ville"`
	Pays       string `json:"pays"`
}

func createAddressHandler(data *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "corps invalide"})
			return
		}
		a, ok := data.AddAddress(c.GetInt("clientID"), req.Rue, req.CodePostal, req.Ville, req.Pays)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "client introuvable"})
			return
		}
		c.JSON(http.StatusCreated, toJSONAddress(a))
	}
}

func updateAddressHandler(data *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		addressID, err := strconv.Atoi(c.Param("adresseId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
			return
		}
		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "corps invalide"})
			return
		}
		a, ok := data.UpdateAddress(c.GetInt("clientID"), addressID, req.Rue, req.CodePostal, req.Ville, req.Pays)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "adresse introuvable"})
			return
		}
		c.JSON(http.StatusOK, toJSONAddress(a))
	}
}

func deleteAddressHandler(data *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		addressID, err := strconv.Atoi(c.Param("adresseId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
			return
		}
		if !data.DeleteAddress(c.GetInt("clientID"), addressID) {
			c.JSON(http.StatusNotFound, gin.H{"error": "adresse introuvable"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func productsHandler(data *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		products := data.Products()
		out := make([]gin.H, 0, len(products))
		for _, p := range products {
			out = append(out, gin.H{
				"id":          p.ID,
				"ref":         p.Ref,
				"nom":         p.Nom,
				"description": p.Description,
				"prix_ht":     p.PrixHT,
				"prix_ttc":    p.PrixTTC,
				"stock":       p.Stock,
				"poids":       p.Poids,
				"image":       p.Image,
				"categorie":   p.Categorie,
				"fournisseur": p.Fournisseur,
			})
		}
		c.JSON(http.StatusOK, out)
	}
}

func categoriesHandler(data *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories := data.Categories()
		out := make([]gin.H, 0, len(categories))
		for id := 1; id <= len(categories)+8; id++ {
			if nom, ok := categories[id]; ok {
				out = append(out, gin.H{"id": id, "nom": nom})
			}
		}
		c.JSON(http.StatusOK, out)
	}
}

func suppliersHandler(data *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		suppliers := data.Suppliers()
		out := make([]gin.H, 0, len(suppliers))
		for id := 1; id <= len(suppliers)+8; id++ {
			if sup, ok := suppliers[id]; ok {
				out = append(out, gin.H{"id": id, "nom": sup.Nom, "ville": sup.Ville})
			}
		}
		c.JSON(http.StatusOK, out)
	}
}

func carriersHandler(data *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		carriers := data.Carriers()
		out := make([]gin.H, 0, len(carriers))
		for _, cr := range carriers {
			out = append(out, gin.H{"id": cr.ID, "nom": cr.Nom, "prix": cr.Prix, "delai": cr.Delai})
		}
		c.JSON(http.StatusOK, out)
	}
}

func relaysHandler(data *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		relays := data.Relays()
		out := make([]gin.H, 0, len(relays))
		for _, r := range relays {
			out = append(out, gin.H{"id": r.ID, "nom": r.Nom, "rue": r.Rue, "code_postal": r.CodePostal, "ville": r.Ville, "pays": r.Pays})
		}
		c.JSON(http.StatusOK, out)
	}
}

func createRelayHandler(data *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Nom        string `json:"nom" binding:"required"`
			Rue        string `json:"rue"`
			CodePostal string `json:"code_postal"`
			Ville      string `json:"ville"`
			Pays       string `json:"pays"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "nom requis"})
			return
		}
		r := data.AddRelay(req.Nom, req.Rue, req.CodePostal, req.Ville, req.Pays)
		c.JSON(http.StatusCreated, gin.H{"id": r.ID, "nom": r.Nom, "rue": r.Rue, "code_postal": r.CodePostal, "ville": r.Ville, "pays": r.Pays})
	}
}

func renderCart(data *Store, clientID int) gin.H {
	id, lines, products, ttc := data.Cart(clientID)
	ht, tva := cartTotals(ttc)
	lignes := make([]gin.H, 0, len(lines))
	for i, l := range lines {
		p := products[i]
		lignes = append(lignes, gin.H{
			"id":                l.ID,
			"produit_ref":       p.Ref,
			"produit_nom":       p.Nom,
			"prix_unitaire_ttc": p.PrixTTC,
			"quantite":          l.Quantite,
			"image":             p.Image,
			"poids":             p.Poids,
		})
	}
	return gin.H{
		"id":        id,
		"lignes":    lignes,
		"total_ht":  ht,
		"total_tva": tva,
		"total_ttc": ttc,
	}
}

func getCartHandler(data *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, renderCart(data, c.GetInt("clientID")))
	}
}

func addToCartHandler(data *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Produit  int `json:"produit" binding:"required"`
			Quantite int `json:"quantite" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "produit et quantité requis"})
			return
		}
		if err := data.AddToCart(c.GetInt("clientID"), req.Produit, req.Quantite); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, renderCart(data, c.GetInt("clientID")))
	}
}

func updateCartLineHandler(data *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		lineID, err := strconv.Atoi(c.Param("ligneId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
			return
		}
		var req struct {
			Quantite int `json:"quantite" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantité requise"})
			return
		}
		if err := data.SetLineQuantity(c.GetInt("clientID"), lineID, req.Quantite); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, renderCart(data, c.GetInt("clientID")))
	}
}

func deleteCartLineHandler(data *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		lineID, err := strconv.Atoi(c.Param("ligneId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
			return
		}
		if err := data.DeleteLine(c.GetInt("clientID"), lineID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func renderOrder(data *Store, o *order) gin.H {
	ht, tva := cartTotals(o.TotalTTC)
	lignes := make([]gin.H, 0, len(o.Lines))
	for _, l := range o.Lines {
		lignes = append(lignes, gin.H{
			"produit_ref":       l.Ref,
			"produit_nom":       l.Nom,
			"prix_unitaire_ttc": l.PrixTTC,
			"quantite":          l.Quantite,
		})
	}
	body := gin.H{
		"id":                  o.ID,
		"numero":              o.Numero,
		"date":                o.Date.Format(time.RFC3339),
		"statut":              string(o.Statut),
		"lignes":              lignes,
		"adresse_livraison":   toJSONAddress(o.Livraison),
		"adresse_facturation": toJSONAddress(o.Facturation),
		"total_ht":            ht,
		"total_tva":           tva,
		"total_ttc":           o.TotalTTC,
	}
	for _, cr := range data.Carriers() {
		if cr.ID == o.CarrierID {
			body["livreur"] = gin.H{"id": cr.ID, "nom": cr.Nom, "prix": cr.Prix, "delai": cr.Delai}
		}
	}
	return body
}

func listOrdersHandler(data *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders := data.Orders(c.GetInt("clientID"))
		out := make([]gin.H, 0, len(orders))
		for _, o := range orders {
			out = append(out, renderOrder(data, o))
		}
		c.JSON(http.StatusOK, out)
	}
}

func getOrderHandler(data *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := strconv.Atoi(c.Param("commandeId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
			return
		}
		o, ok := data.Order(c.GetInt("clientID"), orderID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "commande introuvable"})
			return
		}
		c.JSON(http.StatusOK, renderOrder(data, o))
	}
}

func createOrderHandler(data *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			LivreurID int `json:"livreur_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "livreur requis"})
			return
		}
		placeOrder(c, data, req.LivreurID)
	}
}

func cancelOrderHandler(data *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := strconv.Atoi(c.Param("commandeId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
			return
		}
		o, err := data.CancelOrder(c.GetInt("clientID"), orderID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, renderOrder(data, o))
	}
}

func publishableKeyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"cle_publique": "pk_test_fixture"})
	}
}

func createIntentHandler(data *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Montant float64 `json:"montant" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Montant <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "montant invalide"})
			return
		}
		in := data.CreateIntent(req.Montant)
		c.JSON(http.StatusCreated, gin.H{
			"intent_id":     in.ID,
			"client_secret": in.Secret,
			"montant":       in.Amount,
		})
	}
}

func confirmPaymentHandler(data *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			IntentID  string `json:"intent_id" binding:"required"`
			LivreurID int    `json:"livreur_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "intent et livreur requis"})
			return
		}
		if _, ok := data.Intent(req.IntentID); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "intent de paiement inconnu"})
			return
		}
		placeOrder(c, data, req.LivreurID)
	}
}

// placeOrder runs the shared stock check and order creation used by
// both the direct order endpoint and the payment confirmation.
func placeOrder(c *gin.Context, data *Store, carrierID int) {
	o, issues, err := data.CreateOrder(c.GetInt("clientID"), carrierID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(issues) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stock insuffisant", "details": issues})
		return
	}
	c.JSON(http.StatusCreated, renderOrder(data, o))
}
