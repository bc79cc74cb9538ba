package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orcaclubpro/trenddrop-sub002/internal/eventbus"
)

func TestStartRejectsMissingDSN(t *testing.T) {
	c := NewComponent(&Config{DSN: "   "}, eventbus.NewBus())

	start := time.Now()
	err := c.Start(context.Background())
	if !errors.Is(err, ErrMissingDSN) {
		t.Fatalf("err = %v, want ErrMissingDSN", err)
	}
	// configuration error: fails immediately, no retry sleeping
	if time.Since(start) > time.Second {
		t.Fatalf("missing DSN must fail without retrying")
	}
	if got := c.Health().AttemptCount; got != 0 {
		t.Fatalf("AttemptCount = %d, want 0", got)
	}
}

func TestAccessorsBeforeStart(t *testing.T) {
	c := NewComponent(&Config{}, eventbus.NewBus())

	if _, err := c.GetDB(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("GetDB err = %v, want ErrNotInitialized", err)
	}
	if _, err := c.GetSQLDB(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("GetSQLDB err = %v, want ErrNotInitialized", err)
	}
	if h := c.Health(); h.Initialized || h.Connected {
		t.Fatalf("health should be zero before start: %+v", h)
	}
}

func TestRetryBackoffBounds(t *testing.T) {
	cfg := &Config{MinDelay: time.Second, MaxDelay: 30 * time.Second}
	cfg.applyDefaults()
	bo := newRetryBackoff(cfg)

	// base delay doubles from MinDelay and saturates at MaxDelay; each
	// sample may deviate up to ±20%
	base := cfg.MinDelay
	for i := 0; i < 8; i++ {
		d := bo.NextBackOff()
		lo := time.Duration(float64(base) * 0.8)
		hi := time.Duration(float64(base) * 1.2)
		if d < lo || d > hi {
			t.Fatalf("attempt %d: delay %s outside [%s, %s]", i+1, d, lo, hi)
		}
		base *= 2
		if base > cfg.MaxDelay {
			base = cfg.MaxDelay
		}
	}
}

func TestRetryBackoffNeverStops(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	bo := newRetryBackoff(cfg)
	for i := 0; i < 50; i++ {
		if bo.NextBackOff() < 0 {
			t.Fatalf("backoff stopped at attempt %d; attempt cap belongs to the caller", i+1)
		}
	}
}
