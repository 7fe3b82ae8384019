package state

import (
	"context"
	"log"
	"sync"

	"storefront-client/internal/domain"
	"storefront-client/internal/events"
)

type cartService interface {
	Get(ctx context.Context, clientID int) (*domain.Cart, error)
	AddProduct(ctx context.Context, clientID, productID, quantity int) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, clientID, lineID, quantity int) (*domain.Cart, error)
	RemoveLine(ctx context.Context, clientID, lineID int) (*domain.Cart, error)
	Clear(ctx context.Context, clientID int) (*domain.Cart, error)
}

type snapshotStore interface {
	SetCartSnapshot(domain.Cart) error
}

// Cart is the single source of truth for the current cart, re-synced
// on every mutation. It reloads when authentication becomes true and
// resets to empty when it becomes false.
type Cart struct {
	mu      sync.Mutex
	cart    domain.Cart
	loading bool
	lastErr string

	svc    cartService
	store  snapshotStore
	logger *log.Logger
}

// NewCart creates the container and subscribes it to authentication
// transitions.
func NewCart(svc cartService, store snapshotStore, bus *events.Bus, logger *log.Logger) *Cart {
	c := &Cart{svc: svc, store: store, logger: logger}
	if bus != nil {
		bus.Subscribe(events.AuthChanged{}.Topic(), func(e events.Event) {
			change, ok := e.(events.AuthChanged)
			if !ok {
				return
			}
			if change.Authenticated {
				if err := c.Reload(context.Background()); err != nil {
					logger.Printf("reload cart after login: %v", err)
				}
			} else {
				c.Reset()
			}
		})
	}
	return c
}

// Current returns a copy of the mirrored cart.
func (c *Cart) Current() domain.Cart {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart
}

// Loading reports whether a round-trip is in flight.
func (c *Cart) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the last mutation error message, empty when the last
// operation succeeded.
func (c *Cart) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// ItemCount sums the mirrored line quantities.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.ItemCount()
}

// Reload fetches the authoritative cart.
func (c *Cart) Reload(ctx context.Context) error {
	return c.run(func() (*domain.Cart, error) {
		return c.svc.Get(ctx, 0)
	})
}

// Reset drops the mirrored cart to empty, not merely stale. Used on
// logout and session expiry.
func (c *Cart) Reset() {
	c.mu.Lock()
	c.cart = domain.Cart{}
	c.lastErr = ""
	c.mu.Unlock()
}

// AddProduct adds quantity units of a product.
func (c *Cart) AddProduct(ctx context.Context, productID, quantity int) error {
	return c.run(func() (*domain.Cart, error) {
		return c.svc.AddProduct(ctx, 0, productID, quantity)
	})
}

// ChangeQuantity sets a line's quantity. A target of zero or less
// removes the line instead of sending the update.
func (c *Cart) ChangeQuantity(ctx context.Context, lineID, quantity int) error {
	if quantity <= 0 {
		return c.RemoveLine(ctx, lineID)
	}
	return c.run(func() (*domain.Cart, error) {
		return c.svc.UpdateQuantity(ctx, 0, lineID, quantity)
	})
}

// RemoveLine deletes one line.
func (c *Cart) RemoveLine(ctx context.Context, lineID int) error {
	return c.run(func() (*domain.Cart, error) {
		return c.svc.RemoveLine(ctx, 0, lineID)
	})
}

// Clear empties the cart. A partial failure keeps the re-fetched
// remainder mirrored and still returns the error.
func (c *Cart) Clear(ctx context.Context) error {
	return c.run(func() (*domain.Cart, error) {
		return c.svc.Clear(ctx, 0)
	})
}

// run wraps a mutation: loading flag, round-trip, error recording.
// Errors are recorded and returned so the caller's UI can also react.
func (c *Cart) run(op func() (*domain.Cart, error)) error {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	cart, err := op()

	c.mu.Lock()
	c.loading = false
	if cart != nil {
		c.cart = *cart
	}
	if err != nil {
		c.lastErr = err.Error()
	} else {
		c.lastErr = ""
	}
	c.mu.Unlock()

	if cart != nil && c.store != nil {
		if serr := c.store.SetCartSnapshot(*cart); serr != nil {
			c.logger.Printf("persist cart snapshot: %v", serr)
		}
	}
	return err
}
