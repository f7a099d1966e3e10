package core

import (
	"fmt"

	"github.com/rs/zerolog"
)

// DefaultHeight and DefaultWidth are the standard board dimensions.
const (
	DefaultHeight = 20
	DefaultWidth  = 25
)

// OnlineMap is the derived per-side online/offline result produced by the
// network solver. Board stores the latest one and never mutates it outside
// a full recompute.
type OnlineMap struct {
	North []bool
	South []bool
}

func newOnlineMap(size int) *OnlineMap {
	return &OnlineMap{North: make([]bool, size), South: make([]bool, size)}
}

func (om *OnlineMap) forSide(s Side) []bool {
	if s == North {
		return om.North
	}
	return om.South
}

// Board is the single mutable value the engine operates on: a terrain
// grid, a unit map, per-side arsenal/relay indices, and the derived
// online map. Board is not safe for concurrent use; callers that want
// parallel search must Clone it.
type Board struct {
	Height, Width int

	terrain []Terrain
	units   map[Coordinate]Unit

	arsenals [2]map[Coordinate]bool
	relays   [2]map[Coordinate]bool

	online *OnlineMap

	// NetworksEnabled mirrors the engine-wide networks_enabled flag.
	// When false every unit is considered online and the solver is
	// never consulted.
	NetworksEnabled bool

	logger zerolog.Logger
}

// NewBoard creates an empty board of the given dimensions, all Flat
// terrain, no units, networks disabled by default.
func NewBoard(height, width int, logger zerolog.Logger) *Board {
	size := height * width
	b := &Board{
		Height:  height,
		Width:   width,
		terrain: make([]Terrain, size),
		units:   make(map[Coordinate]Unit),
		online:  newOnlineMap(size),
		logger:  logger.With().Str("component", "board").Logger(),
	}
	for i := range b.terrain {
		b.terrain[i] = FlatTerrain()
	}
	b.arsenals[North] = make(map[Coordinate]bool)
	b.arsenals[South] = make(map[Coordinate]bool)
	b.relays[North] = make(map[Coordinate]bool)
	b.relays[South] = make(map[Coordinate]bool)
	return b
}

func (b *Board) idx(c Coordinate) int { return c.Row*b.Width + c.Col }

// InBounds reports whether c lies on this board.
func (b *Board) InBounds(c Coordinate) bool { return c.IsValid(b.Height, b.Width) }

// TerrainAt returns the terrain of a cell. Panics if out of bounds; callers
// must check InBounds first, matching the invariant that terrain is only
// ever queried for cells known to exist.
func (b *Board) TerrainAt(c Coordinate) Terrain {
	if !b.InBounds(c) {
		panic(fmt.Sprintf("core: TerrainAt out of bounds: %s", c))
	}
	return b.terrain[b.idx(c)]
}

// SetTerrain sets the terrain of a cell, updating the arsenal index. A cell
// occupied by a unit may not become Mountain.
func (b *Board) SetTerrain(c Coordinate, t Terrain) error {
	if !b.InBounds(c) {
		return ErrCellOutOfBounds
	}
	if t.Kind == Mountain {
		if _, occupied := b.units[c]; occupied {
			return ErrCellOccupied
		}
	}
	old := b.terrain[b.idx(c)]
	if old.Kind == Arsenal {
		delete(b.arsenals[old.ArsenalSide], c)
	}
	b.terrain[b.idx(c)] = t
	if t.Kind == Arsenal {
		b.arsenals[t.ArsenalSide][c] = true
	}
	return nil
}

// DestroyArsenal flips an arsenal cell to Flat terrain, as happens when an
// enemy unit enters it.
func (b *Board) DestroyArsenal(c Coordinate) {
	t := b.TerrainAt(c)
	if t.Kind != Arsenal {
		return
	}
	delete(b.arsenals[t.ArsenalSide], c)
	b.terrain[b.idx(c)] = FlatTerrain()
	b.logger.Info().Str("cell", c.String()).Str("side", t.ArsenalSide.String()).Msg("arsenal destroyed")
}

// UnitAt returns the unit occupying c, if any.
func (b *Board) UnitAt(c Coordinate) (Unit, bool) {
	u, ok := b.units[c]
	return u, ok
}

// Place puts a unit on a cell. Precondition: terrain is not Mountain and
// the cell is unoccupied.
func (b *Board) Place(c Coordinate, u Unit) error {
	if !b.InBounds(c) {
		return ErrCellOutOfBounds
	}
	if !b.TerrainAt(c).Traversable() {
		return ErrCellImpassable
	}
	if _, occupied := b.units[c]; occupied {
		return ErrCellOccupied
	}
	b.units[c] = u
	if u.Kind.IsRelay() {
		b.relays[u.Side][c] = true
	}
	return nil
}

// Remove takes the unit off a cell, returning it.
func (b *Board) Remove(c Coordinate) (Unit, error) {
	u, ok := b.units[c]
	if !ok {
		return Unit{}, ErrNoUnitAt
	}
	delete(b.units, c)
	if u.Kind.IsRelay() {
		delete(b.relays[u.Side], c)
	}
	return u, nil
}

// MoveUnit atomically relocates a unit from one cell to another. It panics
// if the invariants it assumes (a unit at from, none at to, to traversable)
// are violated: those are implementation-bug conditions the movement
// engine must have already excluded by validating first.
func (b *Board) MoveUnit(from, to Coordinate) {
	u, ok := b.units[from]
	if !ok {
		panic(fmt.Sprintf("core: MoveUnit: no unit at %s", from))
	}
	if _, occupied := b.units[to]; occupied {
		panic(fmt.Sprintf("core: MoveUnit: destination %s occupied", to))
	}
	if !b.TerrainAt(to).Traversable() {
		panic(fmt.Sprintf("core: MoveUnit: destination %s impassable", to))
	}
	delete(b.units, from)
	b.units[to] = u
	if u.Kind.IsRelay() {
		delete(b.relays[u.Side], from)
		b.relays[u.Side][to] = true
	}
}

// UnitsOf returns the cells occupied by side's units, in no particular
// order.
func (b *Board) UnitsOf(side Side) []Coordinate {
	out := make([]Coordinate, 0)
	for c, u := range b.units {
		if u.Side == side {
			out = append(out, c)
		}
	}
	return out
}

// ArsenalsOf returns the cells of side's surviving arsenals.
func (b *Board) ArsenalsOf(side Side) []Coordinate {
	out := make([]Coordinate, 0, len(b.arsenals[side]))
	for c := range b.arsenals[side] {
		out = append(out, c)
	}
	return out
}

// RelaysOf returns the cells of side's Relay/SwiftRelay units.
func (b *Board) RelaysOf(side Side) []Coordinate {
	out := make([]Coordinate, 0, len(b.relays[side]))
	for c := range b.relays[side] {
		out = append(out, c)
	}
	return out
}

// IsEnemy reports whether c holds a unit belonging to the opponent of side.
func (b *Board) IsEnemy(c Coordinate, side Side) bool {
	u, ok := b.units[c]
	return ok && u.Side != side
}

// IsFriendly reports whether c holds a unit belonging to side.
func (b *Board) IsFriendly(c Coordinate, side Side) bool {
	u, ok := b.units[c]
	return ok && u.Side == side
}

// IsOnline reports whether the unit occupying c (which must belong to
// side) is online. When NetworksEnabled is false every unit is online.
func (b *Board) IsOnline(c Coordinate, side Side) bool {
	if !b.NetworksEnabled {
		return true
	}
	m := b.online.forSide(side)
	if b.idx(c) < 0 || b.idx(c) >= len(m) {
		return false
	}
	return m[b.idx(c)]
}

// SetOnlineMap installs a freshly computed online map. Called only by the
// network solver, immediately after every mutation that could change
// which units are online.
func (b *Board) SetOnlineMap(om *OnlineMap) {
	b.online = om
}

// RebuildIndices recomputes the arsenal/relay denormalized indices from
// terrain and units from scratch. Used defensively in tests to confirm the
// incrementally maintained indices haven't drifted.
func (b *Board) RebuildIndices() {
	b.arsenals[North] = make(map[Coordinate]bool)
	b.arsenals[South] = make(map[Coordinate]bool)
	for i, t := range b.terrain {
		if t.Kind == Arsenal {
			c := Coordinate{Row: i / b.Width, Col: i % b.Width}
			b.arsenals[t.ArsenalSide][c] = true
		}
	}
	b.relays[North] = make(map[Coordinate]bool)
	b.relays[South] = make(map[Coordinate]bool)
	for c, u := range b.units {
		if u.Kind.IsRelay() {
			b.relays[u.Side][c] = true
		}
	}
}

// Clone returns a deep, independent copy of the board. Callers that want
// concurrent search must clone rather than share.
func (b *Board) Clone() *Board {
	nb := &Board{
		Height:          b.Height,
		Width:           b.Width,
		terrain:         make([]Terrain, len(b.terrain)),
		units:           make(map[Coordinate]Unit, len(b.units)),
		online:          &OnlineMap{North: append([]bool(nil), b.online.North...), South: append([]bool(nil), b.online.South...)},
		NetworksEnabled: b.NetworksEnabled,
		logger:          b.logger,
	}
	copy(nb.terrain, b.terrain)
	for c, u := range b.units {
		nb.units[c] = u
	}
	nb.arsenals[North] = copyCoordSet(b.arsenals[North])
	nb.arsenals[South] = copyCoordSet(b.arsenals[South])
	nb.relays[North] = copyCoordSet(b.relays[North])
	nb.relays[South] = copyCoordSet(b.relays[South])
	return nb
}

func copyCoordSet(s map[Coordinate]bool) map[Coordinate]bool {
	out := make(map[Coordinate]bool, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// CheckInvariants validates that the board's occupancy and arsenal-count
// invariants still hold after a mutation. It never mutates; it is a
// diagnostic used by tests and may be called by callers paranoid about a
// bug in the engine itself.
func (b *Board) CheckInvariants() error {
	for c, u := range b.units {
		if !b.InBounds(c) {
			return fmt.Errorf("unit at out-of-bounds cell %s", c)
		}
		if !b.TerrainAt(c).Traversable() {
			return fmt.Errorf("unit %s at %s stands on impassable terrain", u.Kind, c)
		}
	}
	for side := range []Side{North, South} {
		s := Side(side)
		count := 0
		for _, t := range b.terrain {
			if t.Kind == Arsenal && t.ArsenalSide == s {
				count++
			}
		}
		if count > 2 {
			return fmt.Errorf("side %s has %d arsenals, more than the starting 2", s, count)
		}
	}
	return nil
}
