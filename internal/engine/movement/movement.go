// Package movement computes legal destinations for a unit and executes a
// chosen move against a board, including the arsenal-destroying entry rule.
package movement

import (
	"github.com/rs/zerolog"

	"github.com/rgriffin-dev/kriegspiel/internal/engine/core"
	"github.com/rgriffin-dev/kriegspiel/internal/engine/network"
)

// Engine executes moves and keeps a board's online map current, recomputing
// it after every mutation that could change which units are online.
type Engine struct {
	logger zerolog.Logger
	solver *network.Solver
}

func NewEngine(logger zerolog.Logger, solver *network.Solver) *Engine {
	return &Engine{logger: logger.With().Str("component", "movement").Logger(), solver: solver}
}

// Result describes the outcome of a successfully executed move.
type Result struct {
	ArsenalDestroyed bool
	DestroyedSide    core.Side
}

// LegalDestinations enumerates every cell a unit at from may move to:
// within the unit's effective Chebyshev radius, on a straight
// 8-direction ray from from (knight-like offsets are never legal, moot for
// every non-mounted kind since their radius is 1), terrain not Mountain,
// and either empty or an enemy Arsenal. Mounted units moving from an
// online cell are further constrained by the early-stop rule.
func LegalDestinations(b *core.Board, from core.Coordinate) []core.Coordinate {
	u, ok := b.UnitAt(from)
	if !ok {
		return nil
	}
	online := b.IsOnline(from, u.Side)
	radius := core.EffectiveMove(u, online)
	if radius == 0 {
		return nil
	}

	var out []core.Coordinate
	for dr := -radius; dr <= radius; dr++ {
		for dc := -radius; dc <= radius; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			to := core.NewCoordinate(from.Row+dr, from.Col+dc)
			if !b.InBounds(to) {
				continue
			}
			if to.ChebyshevDistance(from) > radius {
				continue
			}
			if !isStraightLine(dr, dc) {
				continue
			}
			if !destinationOccupiableTerrain(b, to, u.Side) {
				continue
			}
			if u.Kind.IsMounted() {
				stop, ok := mountedStop(b, from, to, u.Side, online)
				if !ok {
					continue
				}
				to = stop
				if !destinationOccupiableTerrain(b, to, u.Side) {
					continue
				}
			}
			out = append(out, to)
		}
	}
	return dedupe(out)
}

func isStraightLine(dr, dc int) bool {
	return dr == 0 || dc == 0 || core.Abs(dr) == core.Abs(dc)
}

// destinationOccupiableTerrain reports whether to is a legal movement
// target for side: not Mountain, and either empty or an enemy Arsenal.
func destinationOccupiableTerrain(b *core.Board, to core.Coordinate, side core.Side) bool {
	t := b.TerrainAt(to)
	if !t.Traversable() {
		return false
	}
	if _, ok := b.UnitAt(to); ok {
		return false
	}
	if t.Kind == core.Arsenal && t.ArsenalSide == side {
		// A friendly arsenal is not enterable at all (only enemy arsenals
		// are legal targets, and entering one destroys it).
		return false
	}
	return true
}

// mountedStop implements the mounted early-stop rule for a unit moving
// from an online cell along the straight line from-to-to. It returns the
// actual reachable cell (either the requested to, or the first offline cell
// encountered along the path) and whether to is legal at all under the
// rule. When from is offline, the rule does not constrain the path (a
// mounted Relay still moving at its base radius while offline); ok is
// always true in that case since the caller already bounded distance.
func mountedStop(b *core.Board, from, to core.Coordinate, side core.Side, fromOnline bool) (core.Coordinate, bool) {
	if !fromOnline {
		return to, true
	}
	dir, ok := core.DirectionBetween(from, to)
	if !ok {
		return to, false
	}
	cur := from
	for {
		next := cur.Add(dir)
		online := b.IsOnline(next, side)
		if !online {
			// A friendly-online path never contains offline cells before
			// this one, so this is the first offline cell: the unit stops
			// here regardless of what the caller originally requested.
			return next, true
		}
		if next == to {
			return to, true
		}
		cur = next
	}
}

func dedupe(cs []core.Coordinate) []core.Coordinate {
	seen := make(map[core.Coordinate]bool, len(cs))
	out := cs[:0]
	for _, c := range cs {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// IsLegal reports whether to is among from's legal destinations.
func IsLegal(b *core.Board, from, to core.Coordinate) bool {
	for _, c := range LegalDestinations(b, from) {
		if c == to {
			return true
		}
	}
	return false
}

// Execute applies a validated move: relocates the unit, destroying an enemy
// arsenal if to lands on one, then recomputes the online map for both
// sides. Callers (the turn state machine) are responsible for legality
// checks and per-turn budget bookkeeping; Execute itself only enforces
// board-level preconditions (occupancy, terrain, legal destination).
func (e *Engine) Execute(b *core.Board, from, to core.Coordinate) (Result, error) {
	u, ok := b.UnitAt(from)
	if !ok {
		return Result{}, core.ErrNoUnitAt
	}
	if !b.InBounds(to) {
		return Result{}, core.ErrOutOfBounds
	}
	if !IsLegal(b, from, to) {
		return Result{}, core.ErrOutOfRange
	}

	var res Result
	destTerrain := b.TerrainAt(to)
	if destTerrain.Kind == core.Arsenal && destTerrain.ArsenalSide == u.Side.Opponent() {
		res.ArsenalDestroyed = true
		res.DestroyedSide = destTerrain.ArsenalSide
		b.DestroyArsenal(to)
	}

	b.MoveUnit(from, to)
	e.solver.Recompute(b)

	e.logger.Info().
		Str("side", u.Side.String()).
		Str("kind", u.Kind.String()).
		Str("from", from.String()).
		Str("to", to.String()).
		Bool("arsenal_destroyed", res.ArsenalDestroyed).
		Msg("move executed")

	return res, nil
}
