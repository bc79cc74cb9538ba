package eventbus

import (
	"testing"
)

func TestPublishWithoutSubscribers(t *testing.T) {
	b := NewBus()
	// must not panic or block
	b.Publish("product:created", EntityPayload{Entity: "product", Action: "created", ID: 1})
}

func TestSubscribeAndPublish(t *testing.T) {
	b := NewBus()
	var got []Event
	b.Subscribe("trend:updated", func(evt Event) {
		got = append(got, evt)
	})

	b.Publish("trend:updated", EntityPayload{Entity: "trend", Action: "updated", ID: 7})

	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].Topic != "trend:updated" {
		t.Fatalf("topic = %s", got[0].Topic)
	}
	p, ok := got[0].Payload.(EntityPayload)
	if !ok || p.ID != 7 {
		t.Fatalf("unexpected payload: %#v", got[0].Payload)
	}
	if got[0].Timestamp.IsZero() {
		t.Fatalf("event timestamp not set")
	}
}

func TestPanickingHandlerDoesNotBlockOthers(t *testing.T) {
	b := NewBus()
	delivered := 0
	for i := 0; i < 3; i++ {
		b.Subscribe("app:shutdown", func(Event) { delivered++ })
	}
	b.Subscribe("app:shutdown", func(Event) { panic("bad handler") })

	b.Publish("app:shutdown", LifecyclePayload{Status: "app:shutdown"})

	if delivered != 3 {
		t.Fatalf("expected 3 deliveries, got %d", delivered)
	}
}

func TestUnsubscribe(t *testing.T) {
	b := NewBus()
	calls := 0
	unsub := b.Subscribe("client:connected", func(Event) { calls++ })

	b.Publish("client:connected", ClientPayload{SessionID: "s1"})
	unsub()
	unsub() // second call harmless
	b.Publish("client:connected", ClientPayload{SessionID: "s2"})

	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
	if b.SubscriberCount("client:connected") != 0 {
		t.Fatalf("expected 0 subscribers after unsubscribe")
	}
}

func TestSubscriberAddedDuringFanoutNotInvoked(t *testing.T) {
	b := NewBus()
	lateCalls := 0
	b.Subscribe("database:connected", func(Event) {
		b.Subscribe("database:connected", func(Event) { lateCalls++ })
	})

	b.Publish("database:connected", StoragePayload{State: "connected"})
	if lateCalls != 0 {
		t.Fatalf("late subscriber invoked during its own registration publish")
	}

	b.Publish("database:connected", StoragePayload{State: "connected"})
	if lateCalls != 1 {
		t.Fatalf("late subscriber should receive subsequent publishes, got %d", lateCalls)
	}
}

func TestTopics(t *testing.T) {
	b := NewBus()
	b.Subscribe("b:topic", func(Event) {})
	b.Subscribe("a:topic", func(Event) {})

	topics := b.Topics()
	if len(topics) != 2 || topics[0] != "a:topic" || topics[1] != "b:topic" {
		t.Fatalf("unexpected topics: %v", topics)
	}
}
