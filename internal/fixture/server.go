package fixture

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Server wraps the fixture HTTP server setup.
type Server struct {
	httpServer *http.Server
	logger     *log.Logger
}

// New builds a Server serving the full storefront API surface from the
// given in-memory store.
func New(addr string, logger *log.Logger, data *Store) *Server {
	router := BuildRouter(logger, data)

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{
		httpServer: httpSrv,
		logger:     logger,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// BuildRouter wires every endpoint of the storefront API contract.
// Exported so integration tests can mount the router on httptest.
func BuildRouter(logger *log.Logger, data *Store) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.Default())

	api := router.Group("/api")

	api.POST("/login/", loginHandler(data))
	api.POST("/inscription/", signupHandler(data))
	api.GET("/magasin", productsHandler(data))
	api.GET("/categories", categoriesHandler(data))
	api.GET("/fournisseurs", suppliersHandler(data))
	api.GET("/paiement/cle-publique/", publishableKeyHandler())

	authed := api.Group("", authRequired(data))
	authed.POST("/logout/", logoutHandler(data))
	authed.GET("/livreur/", carriersHandler(data))
	authed.GET("/point-relais/", relaysHandler(data))
	authed.POST("/point-relais/", createRelayHandler(data))

	clientScoped := api.Group("/:clientId", authRequired(data))
	clientScoped.GET("/parametre/", getAccountHandler(data))
	clientScoped.PUT("/parametre/", updateAccountHandler(data))
	clientScoped.POST("/adresses/", createAddressHandler(data))
	clientScoped.PUT("/adresses/:adresseId/", updateAddressHandler(data))
	clientScoped.DELETE("/adresses/:adresseId/", deleteAddressHandler(data))
	clientScoped.GET("/panier/", getCartHandler(data))
	clientScoped.POST("/panier/", addToCartHandler(data))
	clientScoped.PUT("/panier/:ligneId/", updateCartLineHandler(data))
	clientScoped.DELETE("/panier/:ligneId/", deleteCartLineHandler(data))
	clientScoped.GET("/commandes/", listOrdersHandler(data))
	clientScoped.GET("/commandes/:commandeId/", getOrderHandler(data))
	clientScoped.POST("/commandes/", createOrderHandler(data))
	clientScoped.POST("/commandes/:commandeId/annuler/", cancelOrderHandler(data))
	clientScoped.POST("/paiement/creer-intent/", createIntentHandler(data))
	clientScoped.POST("/paiement/confirmer/", confirmPaymentHandler(data))

	return router
}
