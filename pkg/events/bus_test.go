package events

import "testing"

func TestBusPublishReachesSubscribers(t *testing.T) {
	bus := NewBus[PointsChanged]()

	var got []PointsChanged
	release := bus.Subscribe(func(e PointsChanged) {
		got = append(got, e)
	})
	defer release()

	bus.Publish(PointsChanged{Points: 52, Added: 2})
	if len(got) != 1 || got[0].Points != 52 || got[0].Added != 2 {
		t.Fatalf("unexpected events %+v", got)
	}
}

func TestBusUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus[CreditsChanged]()

	count := 0
	release := bus.Subscribe(func(CreditsChanged) { count++ })

	bus.Publish(CreditsChanged{})
	release()
	release() // releasing twice is a no-op
	bus.Publish(CreditsChanged{})

	if count != 1 {
		t.Fatalf("expected exactly one delivery, got %d", count)
	}
	if bus.Len() != 0 {
		t.Fatalf("expected no live subscriptions, got %d", bus.Len())
	}
}

func TestBusDeliversInRegistrationOrder(t *testing.T) {
	bus := NewBus[int]()

	var order []string
	bus.Subscribe(func(int) { order = append(order, "first") })
	bus.Subscribe(func(int) { order = append(order, "second") })

	bus.Publish(1)
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("unexpected delivery order %v", order)
	}
}

func TestBusNilHandlerIsIgnored(t *testing.T) {
	bus := NewBus[int]()
	release := bus.Subscribe(nil)
	release()
	bus.Publish(7)
	if bus.Len() != 0 {
		t.Fatalf("nil handler should not register, got %d", bus.Len())
	}
}

func TestBusUnsubscribeCompactsOrder(t *testing.T) {
	bus := NewBus[int]()

	// Churn must not leave released ids behind.
	for i := 0; i < 100; i++ {
		release := bus.Subscribe(func(int) {})
		release()
	}
	if got := len(bus.order); got != 0 {
		t.Fatalf("expected empty order after churn, got %d entries", got)
	}

	var order []string
	bus.Subscribe(func(int) { order = append(order, "first") })
	middle := bus.Subscribe(func(int) { order = append(order, "middle") })
	bus.Subscribe(func(int) { order = append(order, "last") })
	middle()

	bus.Publish(1)
	if len(order) != 2 || order[0] != "first" || order[1] != "last" {
		t.Fatalf("unexpected delivery order %v", order)
	}
	if got := len(bus.order); got != 2 {
		t.Fatalf("expected two live order entries, got %d", got)
	}
}
