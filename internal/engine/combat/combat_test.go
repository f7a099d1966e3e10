package combat_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgriffin-dev/kriegspiel/internal/engine/combat"
	"github.com/rgriffin-dev/kriegspiel/internal/engine/core"
	"github.com/rgriffin-dev/kriegspiel/internal/engine/network"
)

func newBoard() *core.Board {
	return core.NewBoard(10, 10, zerolog.Nop())
}

// Four consecutive charging Cavalry stack to 28 attack, well past the
// target's 6 defense, so the outcome is Capture.
func TestAttackPower_ChargeStackCapture(t *testing.T) {
	b := newBoard()
	target := core.NewCoordinate(0, 4)
	require.NoError(t, b.Place(target, core.NewUnit(core.Infantry, core.South)))
	for _, col := range []int{3, 2, 1, 0} {
		require.NoError(t, b.Place(core.NewCoordinate(0, col), core.NewUnit(core.Cavalry, core.North)))
	}

	a := combat.AttackPower(b, core.North, target)
	d := combat.DefensePower(b, target)
	assert.Equal(t, 28, a)
	assert.Equal(t, 6, d)
	assert.Equal(t, combat.Capture, combat.Resolve(a, d))
}

// A charge stack longer than 4 caps its contribution at 4 chargers; the
// 5th Cavalry, though still friendly and on the line, no longer benefits.
func TestAttackPower_ChargeStackCapsAtFour(t *testing.T) {
	b := newBoard()
	target := core.NewCoordinate(0, 6)
	require.NoError(t, b.Place(target, core.NewUnit(core.Infantry, core.South)))
	for _, col := range []int{5, 4, 3, 2, 1} {
		require.NoError(t, b.Place(core.NewCoordinate(0, col), core.NewUnit(core.Cavalry, core.North)))
	}

	a := combat.AttackPower(b, core.North, target)
	// The chain caps at 4 chargers (28); the 5th Cavalry falls outside the
	// charge window and its own range (2) doesn't reach distance 5, so it
	// contributes nothing.
	assert.Equal(t, 28, a)
}

// A single charging Cavalry adjacent to the target yields attack 7 against
// defense 6, which resolves to Retreat rather than Capture.
func TestResolve_SingleChargeIsRetreatNotCapture(t *testing.T) {
	b := newBoard()
	target := core.NewCoordinate(0, 4)
	require.NoError(t, b.Place(target, core.NewUnit(core.Infantry, core.South)))
	require.NoError(t, b.Place(core.NewCoordinate(0, 3), core.NewUnit(core.Cavalry, core.North)))

	a := combat.AttackPower(b, core.North, target)
	d := combat.DefensePower(b, target)
	assert.Equal(t, 7, a)
	assert.Equal(t, 6, d)
	assert.Equal(t, combat.Retreat, combat.Resolve(a, d))
}

// An enemy unit on the attack ray blocks contributions from friendly units
// further out. Unlike the network solver, combat lines stop at enemy Relays
// too.
func TestAttackPower_EnemyUnitBlocksLine(t *testing.T) {
	b := newBoard()
	target := core.NewCoordinate(0, 4)
	require.NoError(t, b.Place(target, core.NewUnit(core.Infantry, core.South)))
	require.NoError(t, b.Place(core.NewCoordinate(0, 3), core.NewUnit(core.Infantry, core.South)))
	require.NoError(t, b.Place(core.NewCoordinate(0, 2), core.NewUnit(core.Infantry, core.North)))

	a := combat.AttackPower(b, core.North, target)
	assert.Equal(t, 0, a)
}

// A Mountain cell on the attack ray terminates it just like an enemy unit,
// even though nothing ever stands on it: a friendly supporter beyond the
// mountain must not contribute.
func TestAttackPower_MountainBlocksLine(t *testing.T) {
	b := newBoard()
	target := core.NewCoordinate(0, 4)
	require.NoError(t, b.Place(target, core.NewUnit(core.Infantry, core.South)))
	require.NoError(t, b.SetTerrain(core.NewCoordinate(0, 3), core.Terrain{Kind: core.Mountain}))
	require.NoError(t, b.Place(core.NewCoordinate(0, 2), core.NewUnit(core.Infantry, core.North)))

	a := combat.AttackPower(b, core.North, target)
	assert.Equal(t, 0, a)
}

// AttackPowerExcluding skips a supporter's contribution entirely, as used
// to enforce RetreatingUnitsCanSupport=false against a unit under a pending
// retreat: the excluded unit still occupies its cell and stays transparent
// to the ray, but adds nothing.
func TestAttackPowerExcluding_SkipsExcludedSupporter(t *testing.T) {
	b := newBoard()
	target := core.NewCoordinate(0, 4)
	supporter := core.NewCoordinate(0, 3)
	require.NoError(t, b.Place(target, core.NewUnit(core.Infantry, core.South)))
	require.NoError(t, b.Place(supporter, core.NewUnit(core.Infantry, core.North)))

	full := combat.AttackPower(b, core.North, target)
	excluded := combat.AttackPowerExcluding(b, core.North, target, func(c core.Coordinate) bool {
		return c == supporter
	})
	assert.Equal(t, 4, full)
	assert.Equal(t, 0, excluded)
}

// DefensePowerExcluding excludes a supporter's contribution but never the
// target's own base defense.
func TestDefensePowerExcluding_SkipsExcludedSupporterOnly(t *testing.T) {
	b := newBoard()
	target := core.NewCoordinate(0, 4)
	supporter := core.NewCoordinate(0, 3)
	require.NoError(t, b.Place(target, core.NewUnit(core.Infantry, core.South)))
	require.NoError(t, b.Place(supporter, core.NewUnit(core.Infantry, core.South)))

	excluded := combat.DefensePowerExcluding(b, target, func(c core.Coordinate) bool {
		return c == supporter
	})
	assert.Equal(t, 6, excluded)
}

// A unit whose effective range doesn't cover the distance to the target
// does not contribute, even though it sits on the line.
func TestAttackPower_OutOfRangeDoesNotContribute(t *testing.T) {
	b := newBoard()
	target := core.NewCoordinate(0, 9)
	require.NoError(t, b.Place(target, core.NewUnit(core.Infantry, core.South)))
	// Infantry range 2, standing 5 cells from the target.
	require.NoError(t, b.Place(core.NewCoordinate(0, 4), core.NewUnit(core.Infantry, core.North)))

	a := combat.AttackPower(b, core.North, target)
	assert.Equal(t, 0, a)
}

// Terrain defense bonus applies to the target but never to a supporter
// standing on the same favorable terrain.
func TestDefensePower_TerrainBonusTargetOnlyNotSupporter(t *testing.T) {
	b := newBoard()
	target := core.NewCoordinate(0, 4)
	require.NoError(t, b.SetTerrain(target, core.Terrain{Kind: core.Fortress}))
	require.NoError(t, b.Place(target, core.NewUnit(core.Infantry, core.South)))
	supporter := core.NewCoordinate(0, 3)
	require.NoError(t, b.SetTerrain(supporter, core.Terrain{Kind: core.Fortress}))
	require.NoError(t, b.Place(supporter, core.NewUnit(core.Infantry, core.South)))

	d := combat.DefensePower(b, target)
	// target: 6 base + 4 fortress; supporter: 6 base, no bonus.
	assert.Equal(t, 6+4+6, d)
}

// Cavalry standing in a Fortress cell cannot charge, and the attack line
// does not pass through it to reach units further out.
func TestAttackPower_CavalryInFortressBreaksLine(t *testing.T) {
	b := newBoard()
	target := core.NewCoordinate(0, 5)
	require.NoError(t, b.Place(target, core.NewUnit(core.Infantry, core.South)))
	fortressCell := core.NewCoordinate(0, 4)
	require.NoError(t, b.SetTerrain(fortressCell, core.Terrain{Kind: core.Fortress}))
	require.NoError(t, b.Place(fortressCell, core.NewUnit(core.Cavalry, core.North)))
	require.NoError(t, b.Place(core.NewCoordinate(0, 3), core.NewUnit(core.Cavalry, core.North)))

	a := combat.AttackPower(b, core.North, target)
	assert.Equal(t, 0, a)
}

func TestPreview_NoEnemyAtTarget(t *testing.T) {
	b := newBoard()
	_, err := combat.Preview(b, core.North, core.NewCoordinate(0, 0))
	assert.ErrorIs(t, err, core.ErrNoEnemyAtTarget)
}

func TestPreview_TargetOutOfRange(t *testing.T) {
	b := newBoard()
	target := core.NewCoordinate(9, 9)
	require.NoError(t, b.Place(target, core.NewUnit(core.Infantry, core.South)))
	require.NoError(t, b.Place(core.NewCoordinate(0, 0), core.NewUnit(core.Infantry, core.North)))

	_, err := combat.Preview(b, core.North, target)
	assert.ErrorIs(t, err, core.ErrTargetOutOfRange)
}

func TestExecute_CaptureRemovesDefender(t *testing.T) {
	b := newBoard()
	target := core.NewCoordinate(0, 4)
	require.NoError(t, b.Place(target, core.NewUnit(core.Infantry, core.South)))
	for _, col := range []int{3, 2, 1, 0} {
		require.NoError(t, b.Place(core.NewCoordinate(0, col), core.NewUnit(core.Cavalry, core.North)))
	}

	e := combat.NewEngine(zerolog.Nop(), network.NewSolver(zerolog.Nop()))
	report, err := e.Execute(b, core.North, target, nil)
	require.NoError(t, err)
	assert.Equal(t, combat.Capture, report.Outcome)
	_, stillThere := b.UnitAt(target)
	assert.False(t, stillThere)
}

func TestExecute_RetreatLeavesDefenderInPlace(t *testing.T) {
	b := newBoard()
	target := core.NewCoordinate(0, 4)
	require.NoError(t, b.Place(target, core.NewUnit(core.Infantry, core.South)))
	require.NoError(t, b.Place(core.NewCoordinate(0, 3), core.NewUnit(core.Cavalry, core.North)))

	e := combat.NewEngine(zerolog.Nop(), network.NewSolver(zerolog.Nop()))
	report, err := e.Execute(b, core.North, target, nil)
	require.NoError(t, err)
	assert.Equal(t, combat.Retreat, report.Outcome)
	_, stillThere := b.UnitAt(target)
	assert.True(t, stillThere)
}
