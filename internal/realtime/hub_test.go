package realtime

import (
	"testing"
	"time"
)

func TestHub(t *testing.T) {
	t.Run("delivers_to_subscriber", func(t *testing.T) {
		hub := NewHub()
		events, unsubscribe := hub.Subscribe(1)
		defer unsubscribe()

		hub.Publish(1, Event{Table: "transactions", Action: ActionInsert, ID: 42})

		select {
		case event := <-events:
			if event.Table != "transactions" || event.Action != ActionInsert || event.ID != 42 {
				t.Errorf("unexpected event %+v", event)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	})

	t.Run("isolates_users", func(t *testing.T) {
		hub := NewHub()
		events, unsubscribe := hub.Subscribe(1)
		defer unsubscribe()

		hub.Publish(2, Event{Table: "transactions", Action: ActionInsert})

		select {
		case event := <-events:
			t.Errorf("received another user's event %+v", event)
		default:
		}
	})

	t.Run("fans_out_to_all_subscribers", func(t *testing.T) {
		hub := NewHub()
		first, unsubFirst := hub.Subscribe(1)
		defer unsubFirst()
		second, unsubSecond := hub.Subscribe(1)
		defer unsubSecond()

		hub.Publish(1, Event{Table: "budgets", Action: ActionUpdate, ID: 7})

		for _, events := range []<-chan Event{first, second} {
			select {
			case event := <-events:
				if event.ID != 7 {
					t.Errorf("unexpected event %+v", event)
				}
			case <-time.After(time.Second):
				t.Fatal("timed out waiting for fan-out")
			}
		}
	})

	t.Run("unsubscribe_closes_channel", func(t *testing.T) {
		hub := NewHub()
		events, unsubscribe := hub.Subscribe(1)

		unsubscribe()

		if _, open := <-events; open {
			t.Error("expected closed channel after unsubscribe")
		}

		// Publishing to a gone subscriber must not panic.
		hub.Publish(1, Event{Table: "assets", Action: ActionDelete, ID: 1})

		// A second unsubscribe is a no-op.
		unsubscribe()
	})

	t.Run("full_buffer_drops_instead_of_blocking", func(t *testing.T) {
		hub := NewHub()
		events, unsubscribe := hub.Subscribe(1)
		defer unsubscribe()

		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := 0; i < 100; i++ {
				hub.Publish(1, Event{Table: "transactions", Action: ActionInsert, ID: uint(i)})
			}
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("publish blocked on a slow subscriber")
		}

		// The buffer holds at most its capacity; the rest were dropped.
		received := 0
		for {
			select {
			case <-events:
				received++
				continue
			default:
			}
			break
		}
		if received == 0 || received > 16 {
			t.Errorf("expected between 1 and 16 buffered events, got %d", received)
		}
	})
}
