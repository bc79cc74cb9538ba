package bridge

import (
	"testing"
	"time"
)

func TestMonitorCountsWithinWindow(t *testing.T) {
	m := NewMonitor(10 * time.Minute)
	current := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return current }

	m.RecordConnection()
	m.RecordMessage()
	m.RecordMessage()
	m.RecordError()

	snap := m.Snapshot()
	if snap.Connections != 1 || snap.Messages != 2 || snap.Errors != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.Window != 10*time.Minute {
		t.Fatalf("window = %s", snap.Window)
	}
}

func TestMonitorExpiresOldBuckets(t *testing.T) {
	m := NewMonitor(5 * time.Minute)
	current := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return current }

	m.RecordMessage()
	m.RecordMessage()

	// advance just inside the window
	current = current.Add(4 * time.Minute)
	m.RecordMessage()
	if snap := m.Snapshot(); snap.Messages != 3 {
		t.Fatalf("messages = %d, want 3 inside window", snap.Messages)
	}

	// advance until the first bucket falls out
	current = current.Add(2 * time.Minute)
	if snap := m.Snapshot(); snap.Messages != 1 {
		t.Fatalf("messages = %d, want 1 after expiry", snap.Messages)
	}
}

func TestMonitorMinimumWindow(t *testing.T) {
	m := NewMonitor(0)
	if m.window != time.Minute {
		t.Fatalf("window = %s, want 1m floor", m.window)
	}
}
