package events

import "testing"

func TestPublishReachesSubscribers(t *testing.T) {
	bus := NewBus()
	var counts []int
	bus.Subscribe(CartChanged{}.Topic(), func(e Event) {
		if c, ok := e.(CartChanged); ok {
			counts = append(counts, c.ItemCount)
		}
	})

	bus.Publish(CartChanged{ItemCount: 3})
	bus.Publish(CartChanged{ItemCount: 0})

	if len(counts) != 2 || counts[0] != 3 || counts[1] != 0 {
		t.Errorf("counts = %v", counts)
	}
}

func TestTopicsIsolated(t *testing.T) {
	bus := NewBus()
	cartEvents := 0
	authEvents := 0
	bus.Subscribe(CartChanged{}.Topic(), func(Event) { cartEvents++ })
	bus.Subscribe(AuthChanged{}.Topic(), func(Event) { authEvents++ })

	bus.Publish(AuthChanged{Authenticated: true})

	if cartEvents != 0 || authEvents != 1 {
		t.Errorf("cart = %d, auth = %d", cartEvents, authEvents)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := NewBus()
	// Must not panic.
	bus.Publish(CartChanged{ItemCount: 1})
}

func TestSubscriptionOrder(t *testing.T) {
	bus := NewBus()
	var order []int
	bus.Subscribe(AuthChanged{}.Topic(), func(Event) { order = append(order, 1) })
	bus.Subscribe(AuthChanged{}.Topic(), func(Event) { order = append(order, 2) })

	bus.Publish(AuthChanged{})

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("order = %v", order)
	}
}
