package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/orcaclubpro/trenddrop-sub002/internal/components/logging"
	prom "github.com/orcaclubpro/trenddrop-sub002/internal/components/prometheus"
	"github.com/orcaclubpro/trenddrop-sub002/internal/consts"
	"github.com/orcaclubpro/trenddrop-sub002/internal/eventbus"
)

// Hub maintains the set of live sessions and fans messages out to them.
// The heartbeat loop evicts sessions that missed a full probe interval
// without a pong (half-open/zombie connections).
type Hub struct {
	cfg *Config
	bus *eventbus.Bus

	upgrader websocket.Upgrader

	mutex    sync.RWMutex
	sessions map[string]*Session

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewHub(cfg *Config, bus *eventbus.Bus) *Hub {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.applyDefaults()
	h := &Hub{
		cfg:      cfg,
		bus:      bus,
		sessions: make(map[string]*Session),
		stopCh:   make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	if !cfg.CheckOrigin {
		h.upgrader.CheckOrigin = func(*http.Request) bool { return true }
	}
	return h
}

// Run starts the heartbeat loop. It returns immediately; Close stops it.
func (h *Hub) Run() {
	h.wg.Add(1)
	go h.heartbeatLoop()
}

// ServeWS upgrades an HTTP request into a tracked session.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warnf(r.Context(), "[realtime] upgrade failed: %v", err)
		return
	}

	s := newSession(uuid.NewString(), conn, h.cfg.WriteTimeout)
	conn.SetReadLimit(h.cfg.ReadLimitBytes)
	conn.SetPongHandler(func(string) error {
		s.setAlive(true)
		return nil
	})

	h.mutex.Lock()
	h.sessions[s.ID] = s
	count := len(h.sessions)
	h.mutex.Unlock()

	logging.Infof(r.Context(), "[realtime] session %s connected (%d total)", s.ID, count)
	h.publishClient(consts.TOPIC_CLIENT_CONNECTED, s, nil)
	h.broadcastCount(count)

	h.wg.Add(1)
	go h.readLoop(s)
}

func (h *Hub) readLoop(s *Session) {
	defer h.wg.Done()
	defer h.drop(s, "read closed")

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		s.touch()
		h.handleInbound(s, data)
	}
}

// handleInbound implements the minimal client protocol: a client announces
// its kind via client_connect, which triggers a state snapshot request for
// that session. Every raw frame is republished on the bus so other
// subsystems can react without the transport knowing about them.
func (h *Hub) handleInbound(s *Session, data []byte) {
	var msg InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		logging.Warnf(context.Background(), "[realtime] session %s sent malformed frame: %v", s.ID, err)
		return
	}

	if msg.Type == TypeClientConnect {
		s.setClientType(msg.ClientType)
		h.publishClient(consts.TOPIC_CLIENT_IDENTIFIED, s, nil)
		h.publishClient(consts.TOPIC_CLIENT_SNAPSHOT_REQ, s, nil)
	}
	h.publishClient(consts.TOPIC_CLIENT_MESSAGE, s, data)
}

// heartbeatLoop probes every session once per interval. A session whose
// alive flag is still false from the previous round missed a full interval
// without a pong and is terminated.
func (h *Hub) heartbeatLoop() {
	defer h.wg.Done()
	ticker := time.NewTicker(h.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stopCh:
			return
		case <-ticker.C:
			h.probeSessions()
		}
	}
}

func (h *Hub) probeSessions() {
	h.mutex.RLock()
	snapshot := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		snapshot = append(snapshot, s)
	}
	h.mutex.RUnlock()

	for _, s := range snapshot {
		if !s.isAlive() {
			h.drop(s, "heartbeat timeout")
			continue
		}
		s.setAlive(false)
		if err := s.sendPing(); err != nil {
			h.drop(s, "ping failed")
		}
	}
}

// drop terminates a session and removes it from the broadcastable set.
func (h *Hub) drop(s *Session, reason string) {
	s.close()

	h.mutex.Lock()
	if _, ok := h.sessions[s.ID]; !ok {
		h.mutex.Unlock()
		return
	}
	delete(h.sessions, s.ID)
	count := len(h.sessions)
	h.mutex.Unlock()

	logging.Infof(context.Background(), "[realtime] session %s removed (%s, %d left)", s.ID, reason, count)
	h.publishClient(consts.TOPIC_CLIENT_DISCONNECTED, s, nil)
	h.broadcastCount(count)
}

// Broadcast serializes msg once and sends it to every open session. A
// session failing mid-send is logged and skipped; it never aborts delivery
// to the rest. Returns the number of sessions the message reached.
func (h *Hub) Broadcast(msg any) int {
	data, err := json.Marshal(msg)
	if err != nil {
		logging.Errorf(context.Background(), "[realtime] broadcast marshal failed: %v", err)
		return 0
	}
	return h.broadcastRaw(data)
}

func (h *Hub) broadcastRaw(data []byte) int {
	h.mutex.RLock()
	snapshot := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		snapshot = append(snapshot, s)
	}
	h.mutex.RUnlock()

	sent := 0
	for _, s := range snapshot {
		if err := s.send(data); err != nil {
			logging.Warnf(context.Background(), "[realtime] send to %s failed: %v", s.ID, err)
			continue
		}
		sent++
	}
	return sent
}

// SendToSession is a best-effort targeted send; false means the session is
// absent or no longer open.
func (h *Hub) SendToSession(id string, msg any) bool {
	h.mutex.RLock()
	s, ok := h.sessions[id]
	h.mutex.RUnlock()
	if !ok {
		return false
	}
	data, err := json.Marshal(msg)
	if err != nil {
		logging.Errorf(context.Background(), "[realtime] send marshal failed: %v", err)
		return false
	}
	return s.send(data) == nil
}

// SessionCount returns the number of tracked sessions.
func (h *Hub) SessionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.sessions)
}

func (h *Hub) broadcastCount(count int) {
	msg := ClientCountMessage{Envelope: NewEnvelope(TypeClientCount), Count: count}
	h.Broadcast(msg)
	if m := prom.Default(); m != nil {
		m.SetWSConnections(count)
	}
}

// Close stops the heartbeat, terminates every session and clears the set.
func (h *Hub) Close() {
	close(h.stopCh)

	h.mutex.Lock()
	snapshot := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		snapshot = append(snapshot, s)
	}
	h.sessions = make(map[string]*Session)
	h.mutex.Unlock()

	for _, s := range snapshot {
		s.close()
	}
	h.wg.Wait()
}

func (h *Hub) publishClient(topic string, s *Session, raw []byte) {
	if h.bus == nil {
		return
	}
	h.bus.Publish(topic, eventbus.ClientPayload{
		SessionID:  s.ID,
		ClientType: s.ClientType(),
		Raw:        raw,
	})
}
