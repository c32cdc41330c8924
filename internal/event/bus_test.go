package event

import (
	"sync"
	"testing"
)

func TestBus_SubscribeAndPublish(t *testing.T) {
	bus := NewBus()

	var received []Event
	bus.Subscribe("session.started", func(e Event) {
		received = append(received, e)
	})

	bus.Publish(NewSessionStartedEvent("sess-1", "pick a database", 3, false))

	if len(received) != 1 {
		t.Fatalf("expected 1 event, got %d", len(received))
	}
	started, ok := received[0].(SessionStartedEvent)
	if !ok {
		t.Fatalf("expected SessionStartedEvent, got %T", received[0])
	}
	if started.SessionID != "sess-1" {
		t.Errorf("SessionID = %q, want sess-1", started.SessionID)
	}
	if started.Timestamp().IsZero() {
		t.Error("event timestamp is zero")
	}
}

func TestBus_OnlyMatchingTypeReceives(t *testing.T) {
	bus := NewBus()

	var phaseCount, expertCount int
	bus.Subscribe("phase.started", func(Event) { phaseCount++ })
	bus.Subscribe("expert.responded", func(Event) { expertCount++ })

	bus.Publish(NewPhaseStartedEvent("sess-1", "intelligence", 1, 3))

	if phaseCount != 1 {
		t.Errorf("phase handler called %d times, want 1", phaseCount)
	}
	if expertCount != 0 {
		t.Errorf("expert handler called %d times, want 0", expertCount)
	}
}

func TestBus_SubscribeAll(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.Subscribe("votes.tallied", func(Event) { order = append(order, "specific") })
	bus.SubscribeAll(func(Event) { order = append(order, "wildcard") })

	bus.Publish(NewVotesTalliedEvent("sess-1", 1, 3, []string{"A", "B"}, []string{"A"}))

	if len(order) != 2 || order[0] != "specific" || order[1] != "wildcard" {
		t.Errorf("dispatch order = %v, want [specific wildcard]", order)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	count := 0
	id := bus.Subscribe("session.closed", func(Event) { count++ })

	if !bus.Unsubscribe(id) {
		t.Fatal("Unsubscribe returned false for a live subscription")
	}
	if bus.Unsubscribe(id) {
		t.Error("Unsubscribe returned true for a removed subscription")
	}

	bus.Publish(NewSessionClosedEvent("sess-1", "approach-a", "deadbeef"))
	if count != 0 {
		t.Errorf("handler called %d times after unsubscribe, want 0", count)
	}
}

func TestBus_PanickingHandlerDoesNotBlockOthers(t *testing.T) {
	bus := NewBus()

	called := false
	bus.Subscribe("expert.abstained", func(Event) { panic("boom") })
	bus.Subscribe("expert.abstained", func(Event) { called = true })

	bus.Publish(NewExpertAbstainedEvent("sess-1", "redteam", "logistics", 3))

	if !called {
		t.Error("second handler was not called after first panicked")
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	count := 0
	bus.Subscribe("expert.responded", func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(NewExpertRespondedEvent("sess-1", "assessment", "Response A", "abc"))
		}()
	}
	wg.Wait()

	if count != 10 {
		t.Errorf("handler called %d times, want 10", count)
	}
}

func TestBus_ClearAndCount(t *testing.T) {
	bus := NewBus()
	bus.Subscribe("a", func(Event) {})
	bus.Subscribe("b", func(Event) {})
	bus.SubscribeAll(func(Event) {})

	if got := bus.SubscriptionCount(); got != 3 {
		t.Errorf("SubscriptionCount = %d, want 3", got)
	}

	bus.Clear()
	if got := bus.SubscriptionCount(); got != 0 {
		t.Errorf("SubscriptionCount after Clear = %d, want 0", got)
	}
}
