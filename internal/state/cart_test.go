package state

import (
	"context"
	"fmt"
	"testing"

	"storefront-client/internal/domain"
	"storefront-client/internal/events"
)

type stubCartService struct {
	cart *domain.Cart
	err  error
	gets int
}

func (s *stubCartService) Get(context.Context, int) (*domain.Cart, error) {
	s.gets++
	return s.cart, s.err
}

func (s *stubCartService) AddProduct(context.Context, int, int, int) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) UpdateQuantity(context.Context, int, int, int) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) RemoveLine(context.Context, int, int) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) Clear(context.Context, int) (*domain.Cart, error) {
	return s.cart, s.err
}

type stubSnapshotStore struct {
	snapshots []domain.Cart
}

func (s *stubSnapshotStore) SetCartSnapshot(c domain.Cart) error {
	s.snapshots = append(s.snapshots, c)
	return nil
}

func twoItemCart() *domain.Cart {
	return &domain.Cart{
		ID: 1,
		Lines: []domain.CartLine{
			{ID: 10, ProductName: "Savon", Quantity: 2},
		},
		Totals: domain.Totals{HT: 10.83, TVA: 2.17, TTC: 13},
	}
}

func TestReloadMirrorsCart(t *testing.T) {
	svc := &stubCartService{cart: twoItemCart()}
	store := &stubSnapshotStore{}
	c := NewCart(svc, store, nil, stateTestLogger())

	if err := c.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if c.ItemCount() != 2 {
		t.Errorf("ItemCount = %d, want 2", c.ItemCount())
	}
	if c.Err() != "" {
		t.Errorf("Err = %q, want empty", c.Err())
	}
	if len(store.snapshots) != 1 {
		t.Errorf("snapshots = %d, want 1", len(store.snapshots))
	}
}

func TestMutationErrorRecorded(t *testing.T) {
	svc := &stubCartService{err: fmt.Errorf("stock insuffisant")}
	c := NewCart(svc, &stubSnapshotStore{}, nil, stateTestLogger())

	if err := c.AddProduct(context.Background(), 3, 5); err == nil {
		t.Fatal("expected error")
	}
	if c.Err() != "stock insuffisant" {
		t.Errorf("Err = %q", c.Err())
	}
	if c.Loading() {
		t.Error("loading flag stuck after failure")
	}

	// A later success wipes the recorded error.
	svc.err = nil
	svc.cart = twoItemCart()
	if err := c.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if c.Err() != "" {
		t.Errorf("Err = %q after success", c.Err())
	}
}

func TestChangeQuantityZeroRemoves(t *testing.T) {
	empty := &domain.Cart{ID: 1}
	svc := &stubCartService{cart: empty}
	c := NewCart(svc, &stubSnapshotStore{}, nil, stateTestLogger())

	if err := c.ChangeQuantity(context.Background(), 10, 0); err != nil {
		t.Fatalf("ChangeQuantity: %v", err)
	}
	if c.ItemCount() != 0 {
		t.Errorf("ItemCount = %d", c.ItemCount())
	}
}

func TestAuthEventsDriveReloadAndReset(t *testing.T) {
	bus := events.NewBus()
	svc := &stubCartService{cart: twoItemCart()}
	c := NewCart(svc, &stubSnapshotStore{}, bus, stateTestLogger())

	bus.Publish(events.AuthChanged{Authenticated: true})
	if svc.gets != 1 {
		t.Errorf("gets = %d, want reload on login", svc.gets)
	}
	if c.ItemCount() != 2 {
		t.Errorf("ItemCount = %d after login", c.ItemCount())
	}

	bus.Publish(events.AuthChanged{Authenticated: false})
	if c.ItemCount() != 0 {
		t.Errorf("ItemCount = %d after logout, want 0", c.ItemCount())
	}
	if c.Err() != "" {
		t.Errorf("Err = %q after reset", c.Err())
	}
}

func TestResetDropsMirror(t *testing.T) {
	svc := &stubCartService{cart: twoItemCart()}
	c := NewCart(svc, &stubSnapshotStore{}, nil, stateTestLogger())

	if err := c.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	c.Reset()
	if got := c.Current(); len(got.Lines) != 0 || got.ID != 0 {
		t.Errorf("cart after reset = %+v", got)
	}
}
