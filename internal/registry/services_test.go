package registry

import (
	"errors"
	"testing"
)

func TestServiceRegistryRegisterAndGet(t *testing.T) {
	r := NewServiceRegistry()
	if err := r.Register("recorder", "v1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := r.Get("recorder")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "v1" {
		t.Fatalf("got %v", got)
	}
	if !r.Has("recorder") {
		t.Fatalf("Has should report registered service")
	}
}

func TestServiceRegistryOverwrite(t *testing.T) {
	r := NewServiceRegistry()
	_ = r.Register("recorder", "v1")
	_ = r.Register("recorder", "v2")

	got, err := r.Get("recorder")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "v2" {
		t.Fatalf("re-registration must overwrite, got %v", got)
	}
	if names := r.Names(); len(names) != 1 {
		t.Fatalf("names = %v", names)
	}
}

func TestServiceRegistryNotFound(t *testing.T) {
	r := NewServiceRegistry()
	if _, err := r.Get("ghost"); !errors.Is(err, ErrServiceNotFound) {
		t.Fatalf("err = %v, want ErrServiceNotFound", err)
	}
}

func TestServiceRegistryRejectsEmpty(t *testing.T) {
	r := NewServiceRegistry()
	if err := r.Register("", "x"); err == nil {
		t.Fatalf("empty name must be rejected")
	}
	if err := r.Register("x", nil); err == nil {
		t.Fatalf("nil service must be rejected")
	}
}
