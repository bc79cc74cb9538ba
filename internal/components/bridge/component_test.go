package bridge

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/orcaclubpro/trenddrop-sub002/internal/components/realtime"
	"github.com/orcaclubpro/trenddrop-sub002/internal/consts"
	"github.com/orcaclubpro/trenddrop-sub002/internal/eventbus"
)

type fakeTransport struct {
	mu        sync.Mutex
	broadcast []any
	targeted  map[string][]any
	sendOK    bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{targeted: make(map[string][]any), sendOK: true}
}

func (f *fakeTransport) Broadcast(msg any) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcast = append(f.broadcast, msg)
	return 1
}

func (f *fakeTransport) SendToSession(id string, msg any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.targeted[id] = append(f.targeted[id], msg)
	return f.sendOK
}

func (f *fakeTransport) broadcasts() []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]any, len(f.broadcast))
	copy(out, f.broadcast)
	return out
}

func startBridge(t *testing.T, bus *eventbus.Bus, transport Broadcaster) *Component {
	t.Helper()
	c := NewComponent(&Config{MetricsInterval: time.Hour}, bus, transport)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = c.Stop(context.Background()) })
	return c
}

func TestEntityEventBroadcastsSpecificAndGeneric(t *testing.T) {
	bus := eventbus.NewBus()
	transport := newFakeTransport()
	c := startBridge(t, bus, transport)

	bus.Publish(consts.EntityTopic("product", "created"), eventbus.EntityPayload{
		Entity: "product", Action: "created", ID: 42,
	})

	msgs := transport.broadcasts()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 broadcasts, got %d", len(msgs))
	}
	first, ok := msgs[0].(realtime.EntityEventMessage)
	if !ok || first.Type != "product_created" || first.ID != 42 {
		t.Fatalf("unexpected specific message: %#v", msgs[0])
	}
	second, ok := msgs[1].(realtime.EntityEventMessage)
	if !ok || second.Type != realtime.TypeEntityEvent {
		t.Fatalf("unexpected generic message: %#v", msgs[1])
	}

	if snap := c.Monitor().Snapshot(); snap.Messages != 2 {
		t.Fatalf("monitor messages = %d, want 2", snap.Messages)
	}
}

func TestStorageEventsBecomeDatabaseStatus(t *testing.T) {
	bus := eventbus.NewBus()
	transport := newFakeTransport()
	startBridge(t, bus, transport)

	bus.Publish(consts.TOPIC_DB_DISCONNECTED, eventbus.StoragePayload{State: "disconnected", Err: "probe failed"})

	msgs := transport.broadcasts()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 broadcast, got %d", len(msgs))
	}
	msg, ok := msgs[0].(realtime.DatabaseStatusMessage)
	if !ok || msg.Type != realtime.TypeDatabaseStatus || msg.Status != "disconnected" || msg.Error != "probe failed" {
		t.Fatalf("unexpected message: %#v", msgs[0])
	}
}

func TestSnapshotRequestSendsTargetedSnapshot(t *testing.T) {
	bus := eventbus.NewBus()
	transport := newFakeTransport()
	c := startBridge(t, bus, transport)

	c.SetStatusSource(func() map[string]string {
		return map[string]string{"database": "initialized"}
	})
	c.SetSnapshotProvider(snapshotProviderFunc(func(ctx context.Context) (map[string]any, error) {
		return map[string]any{"product": map[string]any{"counts": 3}}, nil
	}))

	bus.Publish(consts.TOPIC_CLIENT_SNAPSHOT_REQ, eventbus.ClientPayload{SessionID: "s1", ClientType: "dashboard"})

	transport.mu.Lock()
	sent := transport.targeted["s1"]
	transport.mu.Unlock()
	if len(sent) != 1 {
		t.Fatalf("expected 1 targeted message, got %d", len(sent))
	}
	msg, ok := sent[0].(realtime.SnapshotMessage)
	if !ok || msg.Type != realtime.TypeSnapshot {
		t.Fatalf("unexpected message: %#v", sent[0])
	}
	if msg.Components["database"] != "initialized" {
		t.Fatalf("components missing: %#v", msg.Components)
	}
	if msg.Entities == nil {
		t.Fatalf("entities missing")
	}
}

type snapshotProviderFunc func(ctx context.Context) (map[string]any, error)

func (f snapshotProviderFunc) Snapshot(ctx context.Context) (map[string]any, error) { return f(ctx) }

func TestClientConnectedRecordsConnection(t *testing.T) {
	bus := eventbus.NewBus()
	transport := newFakeTransport()
	c := startBridge(t, bus, transport)

	bus.Publish(consts.TOPIC_CLIENT_CONNECTED, eventbus.ClientPayload{SessionID: "s1"})

	if snap := c.Monitor().Snapshot(); snap.Connections != 1 {
		t.Fatalf("connections = %d, want 1", snap.Connections)
	}
}

func TestPublishMetricsBroadcastsAndPublishes(t *testing.T) {
	bus := eventbus.NewBus()
	transport := newFakeTransport()
	c := startBridge(t, bus, transport)

	var published []eventbus.Event
	bus.Subscribe(consts.TOPIC_MONITOR_METRICS, func(evt eventbus.Event) {
		published = append(published, evt)
	})

	c.monitor.RecordMessage()
	c.publishMetrics()

	if len(published) != 1 {
		t.Fatalf("expected monitor:metrics event, got %d", len(published))
	}
	msgs := transport.broadcasts()
	last, ok := msgs[len(msgs)-1].(realtime.MetricsMessage)
	if !ok || last.Type != realtime.TypeMetrics || last.Messages != 1 {
		t.Fatalf("unexpected metrics broadcast: %#v", msgs)
	}
}

func TestStopUnsubscribes(t *testing.T) {
	bus := eventbus.NewBus()
	transport := newFakeTransport()
	c := NewComponent(&Config{MetricsInterval: time.Hour}, bus, transport)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	bus.Publish(consts.EntityTopic("trend", "updated"), eventbus.EntityPayload{Entity: "trend", Action: "updated"})
	if len(transport.broadcasts()) != 0 {
		t.Fatalf("stopped bridge must not deliver")
	}
}
