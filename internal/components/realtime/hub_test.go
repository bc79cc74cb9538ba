package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/orcaclubpro/trenddrop-sub002/internal/consts"
	"github.com/orcaclubpro/trenddrop-sub002/internal/eventbus"
)

func newTestHub(t *testing.T, cfg *Config) (*Hub, *eventbus.Bus, *httptest.Server) {
	t.Helper()
	bus := eventbus.NewBus()
	h := NewHub(cfg, bus)
	h.Run()
	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	t.Cleanup(func() {
		srv.Close()
		h.Close()
	})
	return h, bus, srv
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

func TestConnectBroadcastsClientCount(t *testing.T) {
	h, bus, srv := newTestHub(t, nil)

	connected := make(chan eventbus.Event, 1)
	bus.Subscribe(consts.TOPIC_CLIENT_CONNECTED, func(evt eventbus.Event) {
		connected <- evt
	})

	conn := dialWS(t, srv)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg ClientCountMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != TypeClientCount || msg.Count != 1 {
		t.Fatalf("unexpected first frame: %s", data)
	}

	select {
	case evt := <-connected:
		if evt.Payload.(eventbus.ClientPayload).SessionID == "" {
			t.Fatalf("client:connected without session id")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no client:connected event")
	}

	if h.SessionCount() != 1 {
		t.Fatalf("SessionCount = %d, want 1", h.SessionCount())
	}
}

func TestClientConnectTriggersSnapshotRequest(t *testing.T) {
	_, bus, srv := newTestHub(t, nil)

	identified := make(chan eventbus.Event, 1)
	snapshot := make(chan eventbus.Event, 1)
	bus.Subscribe(consts.TOPIC_CLIENT_IDENTIFIED, func(evt eventbus.Event) { identified <- evt })
	bus.Subscribe(consts.TOPIC_CLIENT_SNAPSHOT_REQ, func(evt eventbus.Event) { snapshot <- evt })

	conn := dialWS(t, srv)
	if err := conn.WriteJSON(map[string]string{"type": TypeClientConnect, "clientType": "dashboard"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case evt := <-identified:
		if evt.Payload.(eventbus.ClientPayload).ClientType != "dashboard" {
			t.Fatalf("client type not recorded: %#v", evt.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no client:identified event")
	}
	select {
	case <-snapshot:
	case <-time.After(2 * time.Second):
		t.Fatalf("no client:snapshot_request event")
	}
}

func TestHeartbeatEvictsSilentClient(t *testing.T) {
	cfg := &Config{HeartbeatInterval: 50 * time.Millisecond, WriteTimeout: time.Second}
	h, bus, srv := newTestHub(t, cfg)

	disconnected := make(chan eventbus.Event, 1)
	bus.Subscribe(consts.TOPIC_CLIENT_DISCONNECTED, func(evt eventbus.Event) { disconnected <- evt })

	// never reads, so pings are never answered
	_ = dialWS(t, srv)
	waitFor(t, 2*time.Second, func() bool { return h.SessionCount() == 1 })

	waitFor(t, 3*time.Second, func() bool { return h.SessionCount() == 0 })
	select {
	case <-disconnected:
	case <-time.After(2 * time.Second):
		t.Fatalf("no client:disconnected event after eviction")
	}
}

func TestBroadcastSkipsClosedSession(t *testing.T) {
	// long heartbeat so eviction never interferes
	cfg := &Config{HeartbeatInterval: time.Hour}
	h, _, srv := newTestHub(t, cfg)

	stayer := dialWS(t, srv)
	leaver := dialWS(t, srv)
	waitFor(t, 2*time.Second, func() bool { return h.SessionCount() == 2 })

	_ = leaver.Close()
	waitFor(t, 2*time.Second, func() bool { return h.SessionCount() == 1 })

	// drain the client_count frames so the broadcast below is readable
	drained := make(chan []byte, 16)
	go func() {
		for {
			_, data, err := stayer.ReadMessage()
			if err != nil {
				close(drained)
				return
			}
			drained <- data
		}
	}()

	sent := h.Broadcast(ClientCountMessage{Envelope: NewEnvelope(TypeClientCount), Count: 99})
	if sent != 1 {
		t.Fatalf("Broadcast reached %d sessions, want 1", sent)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case data, ok := <-drained:
			if !ok {
				t.Fatalf("connection closed before broadcast arrived")
			}
			var msg ClientCountMessage
			if json.Unmarshal(data, &msg) == nil && msg.Count == 99 {
				return
			}
		case <-deadline:
			t.Fatalf("broadcast frame never arrived")
		}
	}
}

func TestSendToSessionAbsent(t *testing.T) {
	h := NewHub(nil, eventbus.NewBus())
	if h.SendToSession("nope", ClientCountMessage{}) {
		t.Fatalf("send to unknown session must report failure")
	}
}
