package core

import (
	"context"
	"errors"
	"testing"

	"github.com/orcaclubpro/trenddrop-sub002/internal/consts"
	"github.com/orcaclubpro/trenddrop-sub002/internal/eventbus"
)

func newLifecycleFixture(t *testing.T) (*Container, *LifecycleManager, *eventbus.Bus) {
	t.Helper()
	c := NewContainer()
	bus := eventbus.NewBus()
	return c, NewLifecycleManager(c, bus), bus
}

func TestStartAllOrderAndShutdownReverse(t *testing.T) {
	c, lm, _ := newLifecycleFixture(t)
	var started, stopped []string

	for _, spec := range []struct {
		name string
		deps []string
	}{
		{"a", nil},
		{"b", []string{"a"}},
		{"c", []string{"b"}},
	} {
		f := newFake(spec.name, spec.deps...)
		f.started = &started
		f.stopped = &stopped
		_ = c.Register(spec.name, f)
	}

	if err := lm.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if len(started) != 3 || started[0] != "a" || started[1] != "b" || started[2] != "c" {
		t.Fatalf("unexpected start order: %v", started)
	}

	lm.StopAll(context.Background())
	if len(stopped) != 3 || stopped[0] != "c" || stopped[1] != "b" || stopped[2] != "a" {
		t.Fatalf("unexpected stop order: %v", stopped)
	}
}

func TestCriticalFailureAbortsAndRollsBack(t *testing.T) {
	c, lm, bus := newLifecycleFixture(t)
	var started, stopped []string

	a := newFake("a")
	a.started = &started
	a.stopped = &stopped
	b := newFake("b", "a")
	b.startErr = errors.New("boom")
	d := newFake("d", "b")
	d.started = &started
	_ = c.Register("a", a)
	_ = c.Register("b", b)
	_ = c.Register("d", d)
	lm.SetCritical("b")

	var failEvents []eventbus.Event
	bus.Subscribe(consts.TOPIC_APP_INIT_FAILED, func(evt eventbus.Event) {
		failEvents = append(failEvents, evt)
	})

	err := lm.StartAll(context.Background())
	if err == nil {
		t.Fatalf("expected error from critical failure")
	}
	if indexOf(started, "d") != -1 {
		t.Fatalf("component after critical failure should not start")
	}
	if indexOf(stopped, "a") == -1 {
		t.Fatalf("started prefix should be rolled back")
	}
	if len(failEvents) == 0 {
		t.Fatalf("expected app:initialization_failed event")
	}
	if st := lm.Status()["b"]; st.Status != StatusFailed {
		t.Fatalf("b status = %s, want failed", st.Status)
	}

	// StartAll never completed, shutdown must be a no-op.
	stopped = stopped[:0]
	lm.StopAll(context.Background())
	if len(stopped) != 0 {
		t.Fatalf("StopAll after failed boot should be a no-op, stopped %v", stopped)
	}
}

func TestNonCriticalFailureSkipsDependents(t *testing.T) {
	c, lm, _ := newLifecycleFixture(t)
	var started []string

	a := newFake("a")
	a.started = &started
	b := newFake("b")
	b.startErr = errors.New("optional down")
	d := newFake("d", "b")
	d.started = &started
	_ = c.Register("a", a)
	_ = c.Register("b", b)
	_ = c.Register("d", d)

	if err := lm.StartAll(context.Background()); err != nil {
		t.Fatalf("non-critical failure should not abort: %v", err)
	}
	if indexOf(started, "a") == -1 {
		t.Fatalf("a should have started")
	}
	if indexOf(started, "d") != -1 {
		t.Fatalf("d depends on failed b, should be skipped")
	}
	statuses := lm.Status()
	if statuses["b"].Status != StatusFailed {
		t.Fatalf("b status = %s, want failed", statuses["b"].Status)
	}
	if statuses["d"].Status != StatusFailed {
		t.Fatalf("d status = %s, want failed (dependency unready)", statuses["d"].Status)
	}
}

func TestCriticalMustBeRegistered(t *testing.T) {
	c, lm, _ := newLifecycleFixture(t)
	_ = c.Register("a", newFake("a"))
	lm.SetCritical("ghost")

	if err := lm.StartAll(context.Background()); err == nil {
		t.Fatalf("expected error for unregistered critical component")
	}
}

func TestStopAllIdempotent(t *testing.T) {
	c, lm, _ := newLifecycleFixture(t)
	var stopped []string
	a := newFake("a")
	a.stopped = &stopped
	_ = c.Register("a", a)

	if err := lm.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	lm.StopAll(context.Background())
	lm.StopAll(context.Background())
	if len(stopped) != 1 {
		t.Fatalf("expected single stop, got %v", stopped)
	}
}

func TestLifecycleEventsPublished(t *testing.T) {
	c, lm, bus := newLifecycleFixture(t)
	_ = c.Register("a", newFake("a"))

	var events []string
	for _, topic := range []string{
		consts.TOPIC_APP_INITIALIZED,
		consts.TOPIC_APP_SHUTDOWN,
		consts.TOPIC_APP_SHUTDOWN_DONE,
		consts.ComponentTopic("a", "initialized"),
	} {
		topic := topic
		bus.Subscribe(topic, func(evt eventbus.Event) {
			events = append(events, evt.Topic)
		})
	}

	if err := lm.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	lm.StopAll(context.Background())

	for _, want := range []string{
		consts.ComponentTopic("a", "initialized"),
		consts.TOPIC_APP_INITIALIZED,
		consts.TOPIC_APP_SHUTDOWN,
		consts.TOPIC_APP_SHUTDOWN_DONE,
	} {
		if indexOf(events, want) == -1 {
			t.Fatalf("missing event %s in %v", want, events)
		}
	}
}
