// Package testutil provides board and unit builders shared by the engine's
// test suites.
package testutil

import (
	"github.com/rgriffin-dev/kriegspiel/internal/engine/core"
)

// NewBoard builds a height x width board with a no-op logger, suitable for
// unit tests that don't care about log output.
func NewBoard(height, width int) *core.Board {
	return core.NewBoard(height, width, NopLogger())
}

// WithArsenals places one arsenal per side, sufficient to keep both sides
// out of the "no arsenals" loss condition, and returns the board for
// chaining.
func WithArsenals(b *core.Board, north, south core.Coordinate) *core.Board {
	must(b.SetTerrain(north, core.ArsenalTerrain(core.North)))
	must(b.SetTerrain(south, core.ArsenalTerrain(core.South)))
	return b
}

// WithUnit places a unit of kind belonging to side at c and returns the
// board for chaining. Panics on placement failure since fixture setup is
// expected to always succeed.
func WithUnit(b *core.Board, c core.Coordinate, kind core.Kind, side core.Side) *core.Board {
	must(b.Place(c, core.NewUnit(kind, side)))
	return b
}

// WithTerrain sets the terrain at c and returns the board for chaining.
func WithTerrain(b *core.Board, c core.Coordinate, t core.Terrain) *core.Board {
	must(b.SetTerrain(c, t))
	return b
}

// StandardSkirmish builds a small board with one arsenal and one mobile
// combat unit per side, positioned far enough apart that they don't
// interact by accident. It is a minimal fixture for tests that only need
// both sides to remain viable (neither loses on the arsenal or
// mobile-unit conditions) while exercising some other rule.
func StandardSkirmish() *core.Board {
	b := NewBoard(10, 10)
	WithArsenals(b, core.NewCoordinate(0, 0), core.NewCoordinate(9, 9))
	WithUnit(b, core.NewCoordinate(0, 1), core.Infantry, core.North)
	WithUnit(b, core.NewCoordinate(9, 8), core.Infantry, core.South)
	return b
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
