package core

import (
	"context"
	"strings"
	"testing"
)

type fakeComponent struct {
	*BaseComponent
	startErr error
	started  *[]string
	stopped  *[]string
}

func newFake(name string, deps ...string) *fakeComponent {
	return &fakeComponent{BaseComponent: NewBaseComponent(name, deps...)}
}

func (f *fakeComponent) Start(ctx context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	if f.started != nil {
		*f.started = append(*f.started, f.Name())
	}
	return f.BaseComponent.Start(ctx)
}

func (f *fakeComponent) Stop(ctx context.Context) error {
	if f.stopped != nil {
		*f.stopped = append(*f.stopped, f.Name())
	}
	return f.BaseComponent.Stop(ctx)
}

func indexOf(list []string, v string) int {
	for i, item := range list {
		if item == v {
			return i
		}
	}
	return -1
}

func TestSortComponentsByDependencies(t *testing.T) {
	c := NewContainer()
	if err := c.Register("c", newFake("c", "b")); err != nil {
		t.Fatalf("register c: %v", err)
	}
	if err := c.Register("b", newFake("b", "a")); err != nil {
		t.Fatalf("register b: %v", err)
	}
	if err := c.Register("a", newFake("a")); err != nil {
		t.Fatalf("register a: %v", err)
	}

	ordered, err := c.SortComponentsByDependencies()
	if err != nil {
		t.Fatalf("sort failed: %v", err)
	}
	names := make([]string, 0, len(ordered))
	for _, comp := range ordered {
		names = append(names, comp.Name())
	}
	if indexOf(names, "a") > indexOf(names, "b") || indexOf(names, "b") > indexOf(names, "c") {
		t.Fatalf("unexpected order: %v", names)
	}
}

func TestSortDetectsCycle(t *testing.T) {
	c := NewContainer()
	_ = c.Register("a", newFake("a", "b"))
	_ = c.Register("b", newFake("b", "a"))

	if _, err := c.SortComponentsByDependencies(); err == nil {
		t.Fatalf("expected cycle error")
	} else if !strings.Contains(err.Error(), "circular") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSortMissingDependency(t *testing.T) {
	c := NewContainer()
	_ = c.Register("a", newFake("a", "ghost"))

	if _, err := c.SortComponentsByDependencies(); err == nil {
		t.Fatalf("expected missing dependency error")
	}
}

func TestRegisterKeepsFirst(t *testing.T) {
	c := NewContainer()
	first := newFake("dup")
	second := newFake("dup")
	_ = c.Register("dup", first)
	_ = c.Register("dup", second)

	got, err := c.Resolve("dup")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != Component(first) {
		t.Fatalf("expected first registration to win")
	}
}
