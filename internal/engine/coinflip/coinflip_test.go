package coinflip_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rgriffin-dev/kriegspiel/internal/engine/core"
	"github.com/rgriffin-dev/kriegspiel/internal/engine/coinflip"
)

func TestFlip_IsDeterministicForASeed(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		first := coinflip.Flip(seed)
		second := coinflip.Flip(seed)
		assert.Equal(t, first, second)
	}
}

func TestFlip_AlwaysReturnsAValidSide(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		side := coinflip.Flip(seed)
		assert.True(t, side == core.North || side == core.South)
	}
}

func TestFlip_ProducesBothSidesAcrossSeeds(t *testing.T) {
	seenNorth, seenSouth := false, false
	for seed := int64(0); seed < 50; seed++ {
		switch coinflip.Flip(seed) {
		case core.North:
			seenNorth = true
		case core.South:
			seenSouth = true
		}
	}
	assert.True(t, seenNorth)
	assert.True(t, seenSouth)
}
