package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var errSessionClosed = errors.New("realtime: session closed")

// Session is one live client connection. The hub owns the session set; the
// session owns its connection writes (serialized by writeMu so concurrent
// broadcasts and heartbeats never interleave frames).
type Session struct {
	ID string

	conn *websocket.Conn

	writeMu      sync.Mutex
	stateMu      sync.Mutex
	alive        bool
	closed       bool
	clientType   string
	connectedAt  time.Time
	lastActivity time.Time

	writeTimeout time.Duration
}

func newSession(id string, conn *websocket.Conn, writeTimeout time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		conn:         conn,
		alive:        true,
		connectedAt:  now,
		lastActivity: now,
		writeTimeout: writeTimeout,
	}
}

func (s *Session) isAlive() bool {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.alive
}

func (s *Session) setAlive(alive bool) {
	s.stateMu.Lock()
	s.alive = alive
	if alive {
		s.lastActivity = time.Now()
	}
	s.stateMu.Unlock()
}

func (s *Session) touch() {
	s.stateMu.Lock()
	s.lastActivity = time.Now()
	s.stateMu.Unlock()
}

func (s *Session) setClientType(kind string) {
	s.stateMu.Lock()
	s.clientType = kind
	s.stateMu.Unlock()
}

// ClientType returns the kind the client announced on connect ("" before
// identification).
func (s *Session) ClientType() string {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.clientType
}

// send writes one text frame. A closed session returns errSessionClosed
// instead of writing (no send-after-close).
func (s *Session) send(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.isClosed() {
		return errSessionClosed
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// sendPing writes a ping control frame.
func (s *Session) sendPing() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.isClosed() {
		return errSessionClosed
	}
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.writeTimeout))
}

func (s *Session) isClosed() bool {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.closed
}

// close marks the session dead before closing the connection, so an
// in-flight broadcast observes the flag and skips it.
func (s *Session) close() {
	s.stateMu.Lock()
	if s.closed {
		s.stateMu.Unlock()
		return
	}
	s.closed = true
	s.alive = false
	s.stateMu.Unlock()
	_ = s.conn.Close()
}
