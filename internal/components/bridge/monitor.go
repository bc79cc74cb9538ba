package bridge

import (
	"sync"
	"time"

	"github.com/orcaclubpro/trenddrop-sub002/internal/eventbus"
)

// Monitor aggregates connection/message/error counts over a rolling window
// using per-minute buckets. It is an observational side channel: callers
// record counts and periodically snapshot; nothing here can block or fail
// the bridge's delivery path.
type Monitor struct {
	mu      sync.Mutex
	window  time.Duration
	buckets []bucket
	now     func() time.Time
}

type bucket struct {
	minute      int64
	connections int64
	messages    int64
	errors      int64
}

func NewMonitor(window time.Duration) *Monitor {
	if window < time.Minute {
		window = time.Minute
	}
	return &Monitor{
		window:  window,
		buckets: make([]bucket, int(window/time.Minute)),
		now:     time.Now,
	}
}

func (m *Monitor) RecordConnection() { m.record(func(b *bucket) { b.connections++ }) }
func (m *Monitor) RecordMessage()    { m.record(func(b *bucket) { b.messages++ }) }
func (m *Monitor) RecordError()      { m.record(func(b *bucket) { b.errors++ }) }

func (m *Monitor) record(apply func(*bucket)) {
	minute := m.now().Unix() / 60
	m.mu.Lock()
	b := &m.buckets[minute%int64(len(m.buckets))]
	if b.minute != minute {
		*b = bucket{minute: minute}
	}
	apply(b)
	m.mu.Unlock()
}

// Snapshot sums every bucket still inside the window.
func (m *Monitor) Snapshot() eventbus.MetricsPayload {
	minute := m.now().Unix() / 60
	oldest := minute - int64(len(m.buckets)) + 1

	out := eventbus.MetricsPayload{Window: m.window}
	m.mu.Lock()
	for i := range m.buckets {
		b := &m.buckets[i]
		if b.minute < oldest || b.minute > minute {
			continue
		}
		out.Connections += b.connections
		out.Messages += b.messages
		out.Errors += b.errors
	}
	m.mu.Unlock()
	return out
}
