package storage

import (
	"testing"
	"time"
)

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		if !ok {
			t.Fatal("subscription closed unexpectedly")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestHubDeliversInOrder(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	sub := hub.Subscribe()
	defer sub.Close()

	// Nobody is reading yet; Publish must not block.
	for _, date := range []string{"2026-03-01", "2026-03-02", "2026-03-03"} {
		hub.Publish(Event{Kind: EventCompletionChanged, HabitID: "h1", Date: date})
	}

	for _, want := range []string{"2026-03-01", "2026-03-02", "2026-03-03"} {
		if ev := receive(t, sub); ev.Date != want {
			t.Errorf("expected event for %s, got %+v", want, ev)
		}
	}
}

func TestHubFansOut(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	a := hub.Subscribe()
	b := hub.Subscribe()
	defer a.Close()
	defer b.Close()

	hub.Publish(Event{Kind: EventHabitAdded, HabitID: "h1"})

	if ev := receive(t, a); ev.Kind != EventHabitAdded {
		t.Errorf("subscriber a: unexpected event %+v", ev)
	}
	if ev := receive(t, b); ev.Kind != EventHabitAdded {
		t.Errorf("subscriber b: unexpected event %+v", ev)
	}
}

func TestSubscriptionClose(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	sub := hub.Subscribe()
	hub.Publish(Event{Kind: EventHabitDeleted, HabitID: "h1"})
	sub.Close()
	sub.Close()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-sub.Events():
			if !ok {
				// Publishing after close is a no-op for this subscriber.
				hub.Publish(Event{Kind: EventHabitAdded})
				return
			}
		case <-deadline:
			t.Fatal("events channel was not closed")
		}
	}
}

func TestHubCloseEndsSubscriptions(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe()
	hub.Close()

	select {
	case _, ok := <-sub.Events():
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("events channel was not closed")
	}

	late := hub.Subscribe()
	select {
	case _, ok := <-late.Events():
		if ok {
			t.Error("expected closed channel for late subscriber")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("late subscription was not closed")
	}
}
