package realtime

import "time"

// Wire message types. Every outbound frame is a JSON object with at least
// {type, timestamp}; inbound frames follow the same envelope.
const (
	TypeClientConnect  = "client_connect"
	TypeClientCount    = "client_count"
	TypeEntityEvent    = "entity_event"
	TypeDatabaseStatus = "database_status"
	TypeAppStatus      = "app_status"
	TypeMetrics        = "metrics"
	TypeSnapshot       = "snapshot"
)

// Envelope is embedded by every outbound message.
type Envelope struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

func NewEnvelope(msgType string) Envelope {
	return Envelope{
		Type:      msgType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ClientCountMessage announces the current number of live sessions.
type ClientCountMessage struct {
	Envelope
	Count int `json:"count"`
}

// EntityEventMessage carries an entity create/update/delete. Type is either
// "<entity>_<action>" (e.g. "product_created") or the generic
// "entity_event".
type EntityEventMessage struct {
	Envelope
	Entity string `json:"entity"`
	Action string `json:"action"`
	ID     int64  `json:"id,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// DatabaseStatusMessage mirrors storage connection state changes; clients
// should treat reads as potentially stale between "disconnected" and
// "reconnected".
type DatabaseStatusMessage struct {
	Envelope
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// AppStatusMessage mirrors application lifecycle transitions.
type AppStatusMessage struct {
	Envelope
	Status    string `json:"status"`
	Component string `json:"component,omitempty"`
	Error     string `json:"error,omitempty"`
}

// MetricsMessage is the monitor's rolling-window snapshot.
type MetricsMessage struct {
	Envelope
	Connections   int64 `json:"connections"`
	Messages      int64 `json:"messages"`
	Errors        int64 `json:"errors"`
	WindowSeconds int64 `json:"window_seconds"`
}

// SnapshotMessage is the current-state view sent to a newly identified
// client.
type SnapshotMessage struct {
	Envelope
	Components map[string]string `json:"components,omitempty"`
	Entities   map[string]any    `json:"entities,omitempty"`
}

// InboundMessage is the minimal parse of a client frame.
type InboundMessage struct {
	Type       string `json:"type"`
	ClientType string `json:"clientType,omitempty"`
}
