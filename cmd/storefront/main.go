// Command storefront is the terminal front of the shop: it signs in,
// browses the catalog, manages the cart and walks the four checkout
// steps against the remote storefront API.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"storefront-client/internal/apiclient"
	"storefront-client/internal/checkout"
	"storefront-client/internal/config"
	"storefront-client/internal/events"
	"storefront-client/internal/service/account"
	"storefront-client/internal/service/auth"
	"storefront-client/internal/service/cart"
	"storefront-client/internal/service/catalog"
	"storefront-client/internal/service/delivery"
	"storefront-client/internal/service/order"
	"storefront-client/internal/service/payment"
	"storefront-client/internal/state"
	"storefront-client/internal/storage"
	"storefront-client/internal/stripeclient"
)

// app bundles everything a command needs. Built once per invocation.
type app struct {
	cfg    config.Config
	logger *log.Logger
	store  *storage.Store
	bus    *events.Bus

	authSvc     *auth.Service
	accountSvc  *account.Service
	catalogSvc  *catalog.Service
	cartSvc     *cart.Service
	orderSvc    *order.Service
	deliverySvc *delivery.Service
	paymentSvc  *payment.Service

	authState  *state.Auth
	cartState  *state.Cart
	themeState *state.Themes
	tunnel     *checkout.Controller
}

func newApp() (*app, error) {
	cfg := config.FromEnv()
	logger := log.New(os.Stderr, "[storefront] ", log.LstdFlags)

	store, err := storage.Open(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	bus := events.NewBus()
	api := apiclient.New(cfg.APIBaseURL, store, logger,
		apiclient.WithTimeout(cfg.RequestTimeout),
		apiclient.WithSessionExpiredHook(func() {
			fmt.Fprintln(os.Stderr, "session expirée — veuillez vous reconnecter (storefront login)")
		}),
	)

	a := &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		bus:    bus,
	}
	a.authSvc = auth.New(api, store)
	a.accountSvc = account.New(api, store)
	a.catalogSvc = catalog.New(api)
	a.cartSvc = cart.New(api, store, bus)
	a.orderSvc = order.New(api, store)
	a.deliverySvc = delivery.New(api, cfg.GeocodeBaseURL)
	a.paymentSvc = payment.New(api, store)

	a.authState = state.NewAuth(a.authSvc, a.accountSvc, store, bus, logger)
	a.cartState = state.NewCart(a.cartSvc, store, bus, logger)
	a.themeState = state.NewThemes(store)
	a.tunnel = checkout.New(store, a.cartState, a.authState, a.deliverySvc, a.paymentSvc,
		&lazyConfirmer{payments: a.paymentSvc}, logger)

	// Badge analog: print the new item count after each cart mutation.
	bus.Subscribe(events.CartChanged{}.Topic(), func(e events.Event) {
		if change, ok := e.(events.CartChanged); ok {
			fmt.Fprintf(os.Stderr, "panier: %d article(s)\n", change.ItemCount)
		}
	})

	if err := a.themeState.Load(); err != nil {
		logger.Printf("load theme: %v", err)
	}
	return a, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Printf("close local store: %v", err)
	}
}

// requireAuth restores the session (mount-time validation) and fails
// the command when it does not settle authenticated.
func (a *app) requireAuth(ctx context.Context) error {
	if err := a.authState.Load(ctx); err != nil {
		return err
	}
	if !a.authState.Authenticated() {
		return fmt.Errorf("non connecté — utilisez `storefront login`")
	}
	return nil
}

// lazyConfirmer defers the payment SDK setup until the first confirm,
// fetching the publishable key from the backend at that point.
type lazyConfirmer struct {
	payments *payment.Service

	once sync.Once
	sdk  *stripeclient.Client
	err  error
}

func (l *lazyConfirmer) ConfirmIntent(ctx context.Context, intentID, clientSecret, paymentMethod string) (string, error) {
	l.once.Do(func() {
		key, err := l.payments.PublishableKey(ctx)
		if err != nil {
			l.err = err
			return
		}
		l.sdk = stripeclient.New(key)
	})
	if l.err != nil {
		return "", l.err
	}
	return l.sdk.ConfirmIntent(ctx, intentID, clientSecret, paymentMethod)
}

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
