package database

import (
	"github.com/cenkalti/backoff/v4"
)

// newRetryBackoff builds the retry delay source: base delay doubles per
// attempt from MinDelay up to MaxDelay, with ±20% jitter so concurrent
// processes don't retry in lockstep.
func newRetryBackoff(cfg *Config) *backoff.ExponentialBackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     cfg.MinDelay,
		MaxInterval:         cfg.MaxDelay,
		Multiplier:          2,
		RandomizationFactor: 0.2,
		MaxElapsedTime:      0, // attempt count is bounded by the caller
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	b.Reset()
	return b
}
