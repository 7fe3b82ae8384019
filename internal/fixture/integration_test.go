package fixture_test

import (
	"context"
	"errors"
	"log"
	"math"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"storefront-client/internal/apiclient"
	"storefront-client/internal/checkout"
	"storefront-client/internal/domain"
	"storefront-client/internal/events"
	"storefront-client/internal/fixture"
	accountsvc "storefront-client/internal/service/account"
	authsvc "storefront-client/internal/service/auth"
	cartsvc "storefront-client/internal/service/cart"
	deliverysvc "storefront-client/internal/service/delivery"
	ordersvc "storefront-client/internal/service/order"
	paymentsvc "storefront-client/internal/service/payment"
	"storefront-client/internal/state"
	"storefront-client/internal/storage"
)

// harness wires the whole client stack against an httptest server
// running the fixture router, with a real bbolt store in a temp dir.
type harness struct {
	data  *fixture.Store
	store *storage.Store
	bus   *events.Bus

	auth     *authsvc.Service
	accounts *accountsvc.Service
	carts    *cartsvc.Service
	orders   *ordersvc.Service
	delivery *deliverysvc.Service
	payments *paymentsvc.Service

	authState *state.Auth
	cartState *state.Cart
	tunnel    *checkout.Controller

	expiredHooks int
}

// autoConfirmer stands in for the payment SDK.
type autoConfirmer struct {
	status string
}

func (a *autoConfirmer) ConfirmIntent(context.Context, string, string, string) (string, error) {
	return a.status, nil
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := log.New(os.Stderr, "[integration] ", 0)

	h := &harness{data: fixture.NewStore(), bus: events.NewBus()}

	srv := httptest.NewServer(fixture.BuildRouter(logger, h.data))
	t.Cleanup(srv.Close)

	store, err := storage.Open(filepath.Join(t.TempDir(), "storefront.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	h.store = store

	api := apiclient.New(srv.URL, store, logger,
		apiclient.WithSessionExpiredHook(func() { h.expiredHooks++ }))

	h.auth = authsvc.New(api, store)
	h.accounts = accountsvc.New(api, store)
	h.carts = cartsvc.New(api, store, h.bus)
	h.orders = ordersvc.New(api, store)
	h.delivery = deliverysvc.New(api, srv.URL)
	h.payments = paymentsvc.New(api, store)

	h.authState = state.NewAuth(h.auth, h.accounts, store, h.bus, logger)
	h.cartState = state.NewCart(h.carts, store, h.bus, logger)
	h.tunnel = checkout.New(store, h.cartState, h.authState, h.delivery, h.payments,
		&autoConfirmer{status: "succeeded"}, logger)

	return h
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	if err := h.authState.Login(context.Background(), "alice@example.com", "Motdepasse1"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestLoginPersistsSession(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	sess, ok, err := h.store.Session()
	if err != nil || !ok {
		t.Fatalf("stored session: ok=%v err=%v", ok, err)
	}
	if sess.ClientID != 1 || sess.Token == "" {
		t.Errorf("session = %+v", sess)
	}
	if sess.ExpiresAt.IsZero() {
		t.Error("expiration not stored")
	}
	user := h.authState.User()
	if user == nil || user.FullName() != "Alice Martin" || len(user.Addresses) != 2 {
		t.Errorf("user = %+v", user)
	}
}

func TestBadCredentials(t *testing.T) {
	h := newHarness(t)
	err := h.authState.Login(context.Background(), "alice@example.com", "mauvais")
	if !errors.Is(err, authsvc.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	if _, ok, _ := h.store.Session(); ok {
		t.Error("session stored after failed login")
	}
}

func TestCartRoundTripAndTotals(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	ctx := context.Background()

	if err := h.cartState.AddProduct(ctx, 1, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := h.cartState.AddProduct(ctx, 5, 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	cart := h.cartState.Current()
	if len(cart.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(cart.Lines))
	}
	if cart.Totals.TTC != 24 {
		t.Errorf("TTC = %v, want 24", cart.Totals.TTC)
	}
	if !cart.Totals.Coherent() {
		t.Errorf("ttc != ht+tva: %+v", cart.Totals)
	}

	// Same-product adds merge into one line.
	if err := h.cartState.AddProduct(ctx, 1, 1); err != nil {
		t.Fatalf("add again: %v", err)
	}
	cart = h.cartState.Current()
	if len(cart.Lines) != 2 {
		t.Errorf("lines = %d after merge, want 2", len(cart.Lines))
	}
	if h.cartState.ItemCount() != 4 {
		t.Errorf("ItemCount = %d, want 4", h.cartState.ItemCount())
	}

	// Reads do not mutate.
	before := h.cartState.Current()
	if err := h.cartState.Reload(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	after := h.cartState.Current()
	if before.Totals != after.Totals || len(before.Lines) != len(after.Lines) {
		t.Errorf("GET changed the cart: %+v vs %+v", before, after)
	}

	// Quantity zero deletes the line.
	if err := h.cartState.ChangeQuantity(ctx, cart.Lines[1].ID, 0); err != nil {
		t.Fatalf("change quantity: %v", err)
	}
	if got := len(h.cartState.Current().Lines); got != 1 {
		t.Errorf("lines = %d after zero quantity, want 1", got)
	}
}

func TestFullCheckoutFlow(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	ctx := context.Background()

	if err := h.cartState.AddProduct(ctx, 1, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	// Step 1: review.
	cart, err := h.tunnel.ReviewCart(ctx)
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if cart.Totals.TTC != 18 {
		t.Errorf("TTC = %v, want 18", cart.Totals.TTC)
	}

	// Step 2: information.
	user := h.authState.User()
	addr := &user.Addresses[0]
	if err := h.tunnel.SubmitInformation(ctx, addr, addr); err != nil {
		t.Fatalf("submit info: %v", err)
	}

	// Step 3: delivery.
	carriers, err := h.tunnel.Carriers(ctx)
	if err != nil {
		t.Fatalf("carriers: %v", err)
	}
	if len(carriers) != 3 {
		t.Fatalf("carriers = %d, want 3", len(carriers))
	}
	if err := h.tunnel.SelectCarrier(ctx, carriers[1]); err != nil {
		t.Fatalf("select carrier: %v", err)
	}

	draft, err := h.tunnel.Draft()
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	wantTotal := 18 + carriers[1].Price
	if math.Abs(draft.GrandTotal()-wantTotal) > 1e-9 {
		t.Errorf("GrandTotal = %v, want %v", draft.GrandTotal(), wantTotal)
	}

	// Step 4: payment creates the order.
	order, err := h.tunnel.Pay(ctx, "pm_card_visa")
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if order.Numero != "CMD-00001" || order.Status != domain.StatusEnAttente {
		t.Errorf("order = %+v", order)
	}
	if order.Totals.TTC != wantTotal {
		t.Errorf("order TTC = %v, want %v", order.Totals.TTC, wantTotal)
	}

	// Checkout storage cleared, cart emptied server-side.
	if _, err := h.tunnel.Draft(); !errors.Is(err, domain.ErrNoDraftOrder) {
		t.Errorf("draft after pay: err = %v, want ErrNoDraftOrder", err)
	}
	if h.cartState.ItemCount() != 0 {
		t.Errorf("cart count = %d after order, want 0", h.cartState.ItemCount())
	}

	// The order shows up in the history with its carrier.
	orders, err := h.orders.List(ctx, 0)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(orders))
	}
	if orders[0].Carrier == nil || orders[0].Carrier.ID != carriers[1].ID {
		t.Errorf("order carrier = %+v", orders[0].Carrier)
	}
	if !orders[0].Totals.Coherent() {
		t.Errorf("order totals incoherent: %+v", orders[0].Totals)
	}
}

func TestCheckoutInsufficientStock(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	ctx := context.Background()

	// The blonde ale only has 2 in stock; ordering 5 must fail at
	// order time with per-line details, leaving the draft in place.
	if err := h.cartState.AddProduct(ctx, 3, 5); err != nil {
		t.Fatalf("add: %v", err)
	}
	user := h.authState.User()
	addr := &user.Addresses[0]
	if err := h.tunnel.SubmitInformation(ctx, addr, addr); err != nil {
		t.Fatalf("submit info: %v", err)
	}
	carriers, err := h.tunnel.Carriers(ctx)
	if err != nil {
		t.Fatalf("carriers: %v", err)
	}
	if err := h.tunnel.SelectCarrier(ctx, carriers[0]); err != nil {
		t.Fatalf("select carrier: %v", err)
	}

	_, err = h.tunnel.Pay(ctx, "pm_card_visa")
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *domain.APIError", err)
	}
	if apiErr.Message != "stock insuffisant" {
		t.Errorf("message = %q", apiErr.Message)
	}
	if len(apiErr.Details) != 1 {
		t.Fatalf("details = %d, want 1", len(apiErr.Details))
	}
	d := apiErr.Details[0]
	if d.Produit != "Bière blonde artisanale" || d.QuantiteCommandee != 5 || d.StockDisponible != 2 {
		t.Errorf("detail = %+v", d)
	}

	// Nothing ordered, checkout state intact for a retry.
	if orders, _ := h.orders.List(ctx, 0); len(orders) != 0 {
		t.Errorf("orders = %d after stock failure, want 0", len(orders))
	}
	if _, err := h.tunnel.Draft(); err != nil {
		t.Errorf("draft lost after stock failure: %v", err)
	}
	if h.cartState.ItemCount() == 0 {
		t.Error("cart emptied despite failed order")
	}
}

func TestRevokedTokenTearsDownSession(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	ctx := context.Background()

	sess, _, _ := h.store.Session()
	h.data.Revoke(sess.Token)

	err := h.cartState.Reload(ctx)
	if !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
	if _, ok, _ := h.store.Session(); ok {
		t.Error("session still stored after 401")
	}
	if h.expiredHooks != 1 {
		t.Errorf("expired hooks = %d, want 1", h.expiredHooks)
	}
}

func TestOrderCancelFlow(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	ctx := context.Background()

	if err := h.cartState.AddProduct(ctx, 2, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	created, err := h.orders.Create(ctx, 0, ordersvc.CreateInput{CartID: 1, CarrierID: 1, Total: 12.4})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if created.Status != domain.StatusEnAttente {
		t.Fatalf("status = %s", created.Status)
	}

	cancelled, err := h.orders.Cancel(ctx, 0, created.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.StatusAnnulee {
		t.Errorf("status = %s, want annulee", cancelled.Status)
	}

	// Cancelled orders cannot be cancelled again; the gate is local.
	if _, err := h.orders.Cancel(ctx, 0, created.ID); err == nil {
		t.Error("second cancel accepted")
	}
}

func TestAddressBookFlow(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	ctx := context.Background()

	created, err := h.accounts.CreateAddress(ctx, 0, domain.Address{
		Street: "5 quai des Marquisats", PostalCode: "74000", City: "Annecy", Country: "France",
	})
	if err != nil {
		t.Fatalf("create address: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("no id assigned")
	}

	updated, err := h.accounts.UpdateAddress(ctx, 0, domain.Address{
		ID: created.ID, Street: "7 quai des Marquisats", PostalCode: "74000", City: "Annecy", Country: "France",
	})
	if err != nil {
		t.Fatalf("update address: %v", err)
	}
	if updated.Street != "7 quai des Marquisats" {
		t.Errorf("street = %q", updated.Street)
	}

	if err := h.accounts.DeleteAddress(ctx, 0, created.ID); err != nil {
		t.Fatalf("delete address: %v", err)
	}

	account, err := h.accounts.Get(ctx, 0)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	for _, a := range account.Addresses {
		if a.ID == created.ID {
			t.Error("address survived deletion")
		}
	}
}

func TestRegisterThenLogin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	err := h.auth.Register(ctx, authsvc.RegisterInput{
		Email:           "carole@example.com",
		Password:        "Motdepasse2",
		PasswordConfirm: "Motdepasse2",
		FirstName:       "Carole",
		LastName:        "Dupuis",
		Street:          "4 rue du Port",
		PostalCode:      "74000",
		City:            "Annecy",
		Country:         "France",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := h.authState.Login(ctx, "carole@example.com", "Motdepasse2"); err != nil {
		t.Fatalf("login new account: %v", err)
	}
	user := h.authState.User()
	if user.FullName() != "Carole Dupuis" || len(user.Addresses) != 1 {
		t.Errorf("user = %+v", user)
	}
}

func TestCarriersAndRelays(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	ctx := context.Background()

	carriers, err := h.delivery.Carriers(ctx)
	if err != nil {
		t.Fatalf("carriers: %v", err)
	}
	if len(carriers) != 3 || carriers[0].Name != "Colis Express" {
		t.Errorf("carriers = %+v", carriers)
	}

	relays, err := h.delivery.RelayPoints(ctx)
	if err != nil {
		t.Fatalf("relays: %v", err)
	}
	if len(relays) != 1 {
		t.Errorf("relays = %d, want 1", len(relays))
	}

	created, err := h.delivery.CreateRelayPoint(ctx, domain.RelayPoint{
		Name: "Presse du Centre",
		Address: domain.Address{
			Street: "1 rue Royale", PostalCode: "74000", City: "Annecy", Country: "France",
		},
	})
	if err != nil {
		t.Fatalf("create relay: %v", err)
	}
	if created.ID == 0 {
		t.Error("no relay id assigned")
	}
}
