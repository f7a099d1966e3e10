// Package coinflip provides the single random-number use permitted in the
// engine: choosing which side moves first.
package coinflip

import (
	"golang.org/x/exp/rand"

	"github.com/rgriffin-dev/kriegspiel/internal/engine/core"
)

// Flip returns North or South with equal probability, seeded
// deterministically by seed so a given seed always reproduces the same
// choice. Callers that want true randomness should derive seed from their
// own entropy source (e.g. time or an external RNG), since the engine
// itself never reads the clock or an ambient random source.
func Flip(seed int64) core.Side {
	r := rand.New(rand.NewSource(uint64(seed)))
	if r.Intn(2) == 0 {
		return core.North
	}
	return core.South
}
