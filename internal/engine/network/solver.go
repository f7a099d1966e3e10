// Package network computes the Lines of Communication status of every unit
// on a board: which units are online (supplied) and which are cut off.
package network

import (
	"github.com/rs/zerolog"

	"github.com/rgriffin-dev/kriegspiel/internal/engine/core"
)

// Solver recomputes online status for a board. It holds only a logger and
// the RelayAdjacencyRebroadcast flag; all working state is local to
// Recompute so a Solver is safe to share.
type Solver struct {
	logger zerolog.Logger

	// RelayAdjacencyRebroadcast controls whether a relay that becomes
	// online through step 3 (adjacency to an already-online unit) then
	// re-broadcasts its own ray in a further pass (step 4). Default true;
	// see the design ledger for the Open Question this resolves.
	RelayAdjacencyRebroadcast bool
}

// NewSolver builds a Solver with the default (spec) behavior.
func NewSolver(logger zerolog.Logger) *Solver {
	return &Solver{
		logger:                    logger.With().Str("component", "network").Logger(),
		RelayAdjacencyRebroadcast: true,
	}
}

// online is the mutable per-side reachability set the passes below build up,
// keyed by cell index into a flat board.
type online struct {
	height, width int
	reached       [2][]bool
}

func newOnline(height, width int) *online {
	return &online{
		height:  height,
		width:   width,
		reached: [2][]bool{make([]bool, height*width), make([]bool, height*width)},
	}
}

func (o *online) idx(c core.Coordinate) int { return c.Row*o.width + c.Col }

func (o *online) mark(side core.Side, c core.Coordinate) bool {
	i := o.idx(c)
	if o.reached[side][i] {
		return false
	}
	o.reached[side][i] = true
	return true
}

func (o *online) isMarked(side core.Side, c core.Coordinate) bool {
	return o.reached[side][o.idx(c)]
}

// Recompute runs the full multi-pass LOC algorithm and installs the result
// on b via b.SetOnlineMap. It is a pure function of the board's current
// terrain and unit placement.
//
// Passes, run per side independently (original_source/board.py):
//
//  1. Arsenal ray propagation: from every surviving arsenal, cast a ray in
//     each of the 8 directions to the board edge. Only a Mountain cell or
//     an enemy non-Relay unit blocks a ray; every other cell along the way
//     (empty, friendly of any kind, or an enemy Relay) is transparent and
//     gets marked online as the ray passes through it.
//  2. Relay propagation: from every already-online friendly relay, cast
//     rays the same way, extending the reached set. Repeated to a fixed
//     point on its own, since one relay's ray can bring a second relay
//     online, which must then cast its own ray in turn (a chain has no
//     guaranteed discovery order).
//  3. Proximity propagation: any friendly unit 8-adjacent to an
//     already-online friendly unit becomes online too. Enemy units and
//     enemy relays never interrupt or contribute to this step; only this
//     side's own online set matters.
//  4. Relay re-propagation: any relay newly reached in step 3 casts its own
//     ray (identical rule to step 2), which can reach further units.
//
// Steps 3 and 4 alternate until neither changes anything (a fixed point):
// a chain of proximity-then-relay hops can cascade arbitrarily far. Whether
// step 4 runs at all is controlled by RelayAdjacencyRebroadcast; step 2's
// own fixed point runs unconditionally, since it covers plain relay chains
// rather than adjacency-activated ones.
func (s *Solver) Recompute(b *core.Board) {
	o := newOnline(b.Height, b.Width)

	for _, side := range []core.Side{core.North, core.South} {
		s.step1ArsenalPropagation(b, o, side)
		for s.relayRepropagation(b, o, side) {
		}
		for {
			changed := s.step3ProximityPropagation(b, o, side)
			if s.RelayAdjacencyRebroadcast {
				changed = s.relayRepropagation(b, o, side) || changed
			}
			if !changed {
				break
			}
		}
	}

	om := &core.OnlineMap{North: o.reached[core.North], South: o.reached[core.South]}
	b.SetOnlineMap(om)
	s.logger.Debug().
		Int("north_online", countTrue(om.North)).
		Int("south_online", countTrue(om.South)).
		Msg("network recomputed")
}

func countTrue(bs []bool) int {
	n := 0
	for _, v := range bs {
		if v {
			n++
		}
	}
	return n
}

// castRay walks from origin in direction d, marking every cell online until
// it meets a blocker: a Mountain, or an enemy unit that isn't a Relay. The
// blocker cell itself is never marked. Friendly units of any kind, enemy
// Relays, and empty cells are all transparent and get marked in stride;
// only Mountain terrain and enemy non-Relay units block propagation.
func (s *Solver) castRay(b *core.Board, o *online, side core.Side, origin core.Coordinate, d core.Direction) {
	for _, c := range core.Ray(origin, d, b.Height, b.Width) {
		if b.TerrainAt(c).BlocksLOC() {
			return
		}
		if u, ok := b.UnitAt(c); ok && u.Side != side && !u.Kind.IsRelay() {
			return
		}
		o.mark(side, c)
	}
}

func (s *Solver) step1ArsenalPropagation(b *core.Board, o *online, side core.Side) {
	for _, a := range b.ArsenalsOf(side) {
		for _, d := range core.Directions8() {
			s.castRay(b, o, side, a, d)
		}
	}
}

func (s *Solver) step2RelayPropagation(b *core.Board, o *online, side core.Side) {
	for _, r := range b.RelaysOf(side) {
		if !o.isMarked(side, r) {
			continue
		}
		for _, d := range core.Directions8() {
			s.castRay(b, o, side, r, d)
		}
	}
}

// step3ProximityPropagation marks every friendly unit 8-adjacent to an
// already-online friendly unit. Returns whether anything new was marked.
func (s *Solver) step3ProximityPropagation(b *core.Board, o *online, side core.Side) bool {
	changed := false
	for _, c := range b.UnitsOf(side) {
		if o.isMarked(side, c) {
			continue
		}
		for _, n := range core.Neighbors8(c, b.Height, b.Width) {
			if b.IsFriendly(n, side) && o.isMarked(side, n) {
				if o.mark(side, c) {
					changed = true
				}
				break
			}
		}
	}
	return changed
}

// relayRepropagation casts rays from every relay that is currently online,
// and reports whether that reached any new cell. Since castRay is idempotent (it can only
// newly mark cells), re-running it for all relays each pass is safe and
// simplifies bookkeeping versus tracking a frontier. Called in a loop to a
// fixed point immediately after step 1 (an arsenal->relayA->relayB chain
// needs repeated passes regardless of RelayAdjacencyRebroadcast, which only
// governs whether step 3's adjacency-activated relays get step 4's
// repropagation), and again, gated by RelayAdjacencyRebroadcast, inside the
// step 3/4 loop below.
func (s *Solver) relayRepropagation(b *core.Board, o *online, side core.Side) bool {
	before := countTrue(o.reached[side])
	s.step2RelayPropagation(b, o, side)
	return countTrue(o.reached[side]) != before
}
