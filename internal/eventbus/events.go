package eventbus

import "time"

// Payload is the tagged union of known event families. Handlers switch on
// the concrete type instead of digging through untyped maps.
type Payload interface{ isPayload() }

// EntityPayload announces a create/update/delete on a tracked entity.
type EntityPayload struct {
	Entity string
	Action string
	ID     int64
	Data   any // optional entity body, already serializable
}

// StoragePayload announces a storage connection state change.
type StoragePayload struct {
	State   string // connected | disconnected | reconnected | failed
	Attempt int
	Err     string
}

// LifecyclePayload announces an application or component transition.
type LifecyclePayload struct {
	Component string
	Status    string
	Err       string
}

// ClientPayload carries realtime client activity (identification, raw
// inbound messages, snapshot requests).
type ClientPayload struct {
	SessionID  string
	ClientType string
	Raw        []byte
}

// MetricsPayload is the monitor's periodic rolling-window snapshot.
type MetricsPayload struct {
	Connections int64
	Messages    int64
	Errors      int64
	Window      time.Duration
}

func (EntityPayload) isPayload()    {}
func (StoragePayload) isPayload()   {}
func (LifecyclePayload) isPayload() {}
func (ClientPayload) isPayload()    {}
func (MetricsPayload) isPayload()   {}

// Event is ephemeral: it exists only for the duration of a Publish call's
// fan-out and is never stored.
type Event struct {
	Topic     string
	Timestamp time.Time
	Payload   Payload
}
