// Package stripeclient adapts the Stripe SDK to the checkout tunnel.
// It plays the role of the hosted payment element: card data goes to
// Stripe directly, never through the storefront API.
package stripeclient

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	stripeapi "github.com/stripe/stripe-go/v82/client"
)

// Client confirms payment intents with the publishable key fetched
// from the backend.
type Client struct {
	api *stripeapi.API
}

// New builds a Client around a publishable key.
func New(publishableKey string) *Client {
	return &Client{api: stripeapi.New(publishableKey, nil)}
}

// ConfirmIntent confirms a payment intent using its client secret and
// a payment method, and returns the resulting intent status.
func (c *Client) ConfirmIntent(ctx context.Context, intentID, clientSecret, paymentMethod string) (string, error) {
	if intentID == "" || clientSecret == "" {
		return "", fmt.Errorf("intent id and client secret required")
	}
	params := &stripe.PaymentIntentConfirmParams{
		Params:        stripe.Params{Context: ctx},
		PaymentMethod: stripe.String(paymentMethod),
	}
	// stripe-go v82 dropped the typed ClientSecret field on confirm
	// params; AddExtra sends the same client_secret form field.
	params.AddExtra("client_secret", clientSecret)
	intent, err := c.api.PaymentIntents.Confirm(intentID, params)
	if err != nil {
		return "", fmt.Errorf("confirm payment intent: %w", err)
	}
	return string(intent.Status), nil
}
