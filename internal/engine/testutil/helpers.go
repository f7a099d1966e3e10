package testutil

import (
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
)

// NopLogger returns a logger that discards everything, for tests that
// don't want log noise.
func NopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// NewTestRNG returns a deterministic RNG seeded for reproducible test
// fixtures that need randomness other than the engine's own coinflip.
func NewTestRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// AssertPanic fails the test unless f panics.
func AssertPanic(t *testing.T, f func(), msgAndArgs ...interface{}) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic but none occurred: %v", msgAndArgs)
		}
	}()
	f()
}
