// Package checkout drives the 4-step tunnel: cart, information,
// delivery, payment. Progress lives in local storage as a draft order
// so an interrupted checkout resumes where it stopped.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"

	"storefront-client/internal/domain"
)

// Step identifies a tunnel position.
type Step int

const (
	StepCart Step = iota + 1
	StepInformation
	StepDelivery
	StepPayment
)

func (s Step) String() string {
	switch s {
	case StepCart:
		return "panier"
	case StepInformation:
		return "informations"
	case StepDelivery:
		return "livraison"
	case StepPayment:
		return "paiement"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Guard failures are user-facing messages, raised before any network
// call.
var (
	ErrEmptyCart          = errors.New("le panier est vide")
	ErrAddressesRequired  = errors.New("une adresse de livraison et une adresse de facturation sont requises")
	ErrCarrierRequired    = errors.New("veuillez sélectionner un livreur")
	ErrPaymentNotComplete = errors.New("le paiement n'a pas abouti")
)

type draftStore interface {
	DraftOrder() (*domain.DraftOrder, bool, error)
	SetDraftOrder(domain.DraftOrder) error
	SetSelectedCarrier(domain.Carrier) error
	ClearCheckout() error
}

type cartContainer interface {
	Current() domain.Cart
	Reload(ctx context.Context) error
	Reset()
}

type authContainer interface {
	Authenticated() bool
	User() *domain.Account
}

type deliveryService interface {
	Carriers(ctx context.Context) ([]domain.Carrier, error)
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}

type paymentService interface {
	PublishableKey(ctx context.Context) (string, error)
	CreateIntent(ctx context.Context, clientID int, amount float64) (*domain.PaymentIntent, error)
	Confirm(ctx context.Context, clientID int, intentID string, carrierID int) (*domain.Order, error)
}

// IntentConfirmer is the payment SDK surface the tunnel needs: confirm
// an intent with its client secret and a payment method.
type IntentConfirmer interface {
	ConfirmIntent(ctx context.Context, intentID, clientSecret, paymentMethod string) (string, error)
}

// Controller sequences the tunnel. It is route-driven: each step is a
// method, and each method re-validates its preconditions so direct
// navigation with missing state fails with an explicit message rather
// than crashing.
type Controller struct {
	store     draftStore
	cart      cartContainer
	auth      authContainer
	delivery  deliveryService
	payments  paymentService
	confirmer IntentConfirmer
	logger    *log.Logger
}

// New wires the tunnel.
func New(store draftStore, cart cartContainer, auth authContainer, delivery deliveryService, payments paymentService, confirmer IntentConfirmer, logger *log.Logger) *Controller {
	return &Controller{
		store:     store,
		cart:      cart,
		auth:      auth,
		delivery:  delivery,
		payments:  payments,
		confirmer: confirmer,
		logger:    logger,
	}
}

// ReviewCart is step 1: proceed only with at least one line.
func (c *Controller) ReviewCart(ctx context.Context) (domain.Cart, error) {
	if err := c.cart.Reload(ctx); err != nil {
		return domain.Cart{}, err
	}
	cart := c.cart.Current()
	if len(cart.Lines) == 0 {
		return cart, ErrEmptyCart
	}
	return cart, nil
}

// SubmitInformation is step 2: exactly one delivery and one billing
// address, copied by value into a fresh draft order along with a cart
// snapshot and the computed weight and total. A pure client-side
// guard; the server never sees this step.
func (c *Controller) SubmitInformation(ctx context.Context, delivery, billing *domain.Address) error {
	if delivery == nil || billing == nil {
		return ErrAddressesRequired
	}
	user := c.auth.User()
	if !c.auth.Authenticated() || user == nil {
		return domain.ErrAuthRequired
	}
	cart := c.cart.Current()
	if len(cart.Lines) == 0 {
		return ErrEmptyCart
	}

	draft := domain.DraftOrder{
		ClientName:      user.FullName(),
		ClientID:        user.ID,
		DeliveryAddress: *delivery,
		BillingAddress:  *billing,
		Lines:           append([]domain.CartLine(nil), cart.Lines...),
		TotalWeight:     cart.TotalWeight(),
		TotalTTC:        cart.Totals.TTC,
	}
	return c.store.SetDraftOrder(draft)
}

// Carriers is step 3's data load.
func (c *Controller) Carriers(ctx context.Context) ([]domain.Carrier, error) {
	if _, ok, err := c.store.DraftOrder(); err != nil {
		return nil, err
	} else if !ok {
		return nil, domain.ErrNoDraftOrder
	}
	return c.delivery.Carriers(ctx)
}

// SelectCarrier merges the chosen carrier (and its price) into the
// persisted draft. Advancement past step 3 is blocked until this
// succeeds.
func (c *Controller) SelectCarrier(ctx context.Context, carrier domain.Carrier) error {
	draft, ok, err := c.store.DraftOrder()
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNoDraftOrder
	}
	chosen := carrier
	draft.Carrier = &chosen
	if err := c.store.SetDraftOrder(*draft); err != nil {
		return err
	}
	return c.store.SetSelectedCarrier(chosen)
}

// RecordLocation reverse-geocodes coordinates and stores the label on
// the draft. Purely for display/record purposes: a geocoding failure
// never blocks the tunnel.
func (c *Controller) RecordLocation(ctx context.Context, lat, lon float64) (string, error) {
	draft, ok, err := c.store.DraftOrder()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.ErrNoDraftOrder
	}
	label, err := c.delivery.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		c.logger.Printf("reverse geocode: %v", err)
		return "", err
	}
	draft.GeoLabel = label
	if err := c.store.SetDraftOrder(*draft); err != nil {
		return "", err
	}
	return label, nil
}

// Draft exposes the in-progress order for step rendering. Absence is
// reported as domain.ErrNoDraftOrder, the explicit "no order found,
// please restart" state.
func (c *Controller) Draft() (*domain.DraftOrder, error) {
	draft, ok, err := c.store.DraftOrder()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNoDraftOrder
	}
	return draft, nil
}

// Pay is step 4: compute the grand total, obtain an intent, confirm it
// through the payment SDK, then confirm server-side — the call that
// creates the order. Checkout storage is cleared and the cart
// container reset only after that last call succeeds.
func (c *Controller) Pay(ctx context.Context, paymentMethod string) (*domain.Order, error) {
	draft, err := c.Draft()
	if err != nil {
		return nil, err
	}
	if draft.Carrier == nil {
		return nil, ErrCarrierRequired
	}

	amount := draft.GrandTotal()
	intent, err := c.payments.CreateIntent(ctx, draft.ClientID, amount)
	if err != nil {
		return nil, err
	}

	status, err := c.confirmer.ConfirmIntent(ctx, intent.ID, intent.ClientSecret, paymentMethod)
	if err != nil {
		return nil, err
	}
	if status != "succeeded" && status != "requires_capture" {
		return nil, fmt.Errorf("%w: statut %s", ErrPaymentNotComplete, status)
	}

	order, err := c.payments.Confirm(ctx, draft.ClientID, intent.ID, draft.Carrier.ID)
	if err != nil {
		return nil, err
	}

	if err := c.store.ClearCheckout(); err != nil {
		c.logger.Printf("clear checkout storage: %v", err)
	}
	if err := c.cart.Reload(ctx); err != nil {
		c.logger.Printf("resync cart after order: %v", err)
		c.cart.Reset()
	}
	return order, nil
}
