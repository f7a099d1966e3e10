// Package combat computes attack and defense power for a targeted cell and
// resolves the outcome of an attack.
package combat

import (
	"github.com/rs/zerolog"

	"github.com/rgriffin-dev/kriegspiel/internal/engine/core"
	"github.com/rgriffin-dev/kriegspiel/internal/engine/network"
)

// Outcome classifies the result of comparing attack power to defense power.
type Outcome int

const (
	Neutral Outcome = iota
	Retreat
	Capture
)

func (o Outcome) String() string {
	switch o {
	case Neutral:
		return "Neutral"
	case Retreat:
		return "Retreat"
	case Capture:
		return "Capture"
	default:
		return "Unknown"
	}
}

// Report is the full breakdown of an attack computation, useful both for
// executing an attack and for a non-mutating preview.
type Report struct {
	Target       core.Coordinate
	Attacker     core.Side
	AttackPower  int
	DefensePower int
	Outcome      Outcome
}

// Engine resolves attacks against a board.
type Engine struct {
	logger zerolog.Logger
	solver *network.Solver
}

func NewEngine(logger zerolog.Logger, solver *network.Solver) *Engine {
	return &Engine{logger: logger.With().Str("component", "combat").Logger(), solver: solver}
}

// chargeBonusAttack is a charging Cavalry's attack contribution, replacing
// its base 4.
const chargeBonusAttack = 7

// maxChargeStack is the maximum number of consecutive Cavalry that receive
// the charge bonus on a single ray.
const maxChargeStack = 4

// InRange reports whether any of attacker's units on the board can hit q:
// effective range ≥ Chebyshev distance to q, and q lies on a straight
// 8-direction line from that unit.
func InRange(b *core.Board, attacker core.Side, q core.Coordinate) bool {
	for _, c := range b.UnitsOf(attacker) {
		u, _ := b.UnitAt(c)
		dist := c.ChebyshevDistance(q)
		if dist == 0 {
			continue
		}
		if _, ok := core.DirectionBetween(c, q); !ok {
			continue
		}
		rng := core.EffectiveRange(u, b.IsOnline(c, attacker))
		if rng >= dist {
			return true
		}
	}
	return false
}

// SupportExclusion reports whether the unit standing at c should be skipped
// when totaling attack or defense contributions, even though it would
// otherwise qualify. Used to enforce the RetreatingUnitsCanSupport=false
// ruling: a unit under a pending retreat still occupies its cell but no
// longer lends its power to a support line. A nil SupportExclusion excludes
// nothing.
type SupportExclusion func(core.Coordinate) bool

func (f SupportExclusion) excludes(c core.Coordinate) bool {
	return f != nil && f(c)
}

// AttackPower computes side S's total attack power against target cell q:
// for each of the 8 directions from q outward, walk the ray;
// friendly-to-S units contribute their effective Attack (or the charge
// bonus for a qualifying consecutive Cavalry run starting adjacent to q),
// an enemy-to-S unit or a Mountain terminates that direction. Only units
// with effective range covering the distance to q contribute.
func AttackPower(b *core.Board, attacker core.Side, q core.Coordinate) int {
	return AttackPowerExcluding(b, attacker, q, nil)
}

// AttackPowerExcluding is AttackPower with excluded units skipped as
// contributors, though still present on the board and still able to block
// a ray for other units.
func AttackPowerExcluding(b *core.Board, attacker core.Side, q core.Coordinate, excluded SupportExclusion) int {
	total := 0
	for _, d := range core.Directions8() {
		total += attackContributionOnRay(b, attacker, q, d, excluded)
	}
	return total
}

func attackContributionOnRay(b *core.Board, attacker core.Side, q core.Coordinate, d core.Direction, excluded SupportExclusion) int {
	total := 0
	chargeRun := 0
	chargeActive := true // true while we're still in the unbroken run adjacent to q
	targetTerrain := b.TerrainAt(q)
	chargeBlockedByTarget := targetTerrain.Kind == core.Pass || targetTerrain.Kind == core.Fortress

	for _, c := range core.Ray(q, d, b.Height, b.Width) {
		dist := c.ChebyshevDistance(q)
		if b.TerrainAt(c).BlocksLOC() {
			return total
		}
		u, ok := b.UnitAt(c)
		if !ok {
			chargeActive = false
			continue
		}
		if u.Side != attacker {
			return total
		}
		if u.CanCharge() && b.TerrainAt(c).Kind == core.Fortress {
			// A charging unit in a Fortress may not charge, and the line
			// does not pass through it at all.
			return total
		}
		if excluded.excludes(c) {
			// Present on the board and still transparent to the ray, but
			// contributes nothing and cannot extend a charge chain.
			chargeActive = false
			continue
		}
		online := b.IsOnline(c, attacker)

		if chargeActive && u.CanCharge() && !chargeBlockedByTarget && chargeRun < maxChargeStack {
			// A charging Cavalry's reach comes from the unbroken chain back
			// to the target, not from its own range stat: a charger four
			// cells out still contributes the full bonus even though
			// Cavalry's own range is 2.
			chargeRun++
			if online {
				total += chargeBonusAttack
			}
			continue
		}
		chargeActive = false
		rng := core.EffectiveRange(u, online)
		if rng >= dist {
			total += core.EffectiveAttack(u, online)
		}
	}
	return total
}

// DefensePower computes the total defense of target unit t at cell q,
// belonging to defender D = attacker's opponent: t's own effective defense
// plus q's terrain bonus, plus supporting friendly-to-D units found the
// same way attack contributions are found. Supporters never receive
// terrain bonus.
func DefensePower(b *core.Board, q core.Coordinate) int {
	return DefensePowerExcluding(b, q, nil)
}

// DefensePowerExcluding is DefensePower with excluded supporters skipped;
// the target's own base defense is never excluded, since exclusion applies
// only to the supporting ray-walk, matching AttackPowerExcluding.
func DefensePowerExcluding(b *core.Board, q core.Coordinate, excluded SupportExclusion) int {
	target, ok := b.UnitAt(q)
	if !ok {
		return 0
	}
	defender := target.Side
	online := b.IsOnline(q, defender)
	total := core.EffectiveDefenseAsTarget(target, online) + b.TerrainAt(q).DefenseBonus()

	for _, d := range core.Directions8() {
		total += defenseContributionOnRay(b, defender, q, d, excluded)
	}
	return total
}

func defenseContributionOnRay(b *core.Board, defender core.Side, q core.Coordinate, d core.Direction, excluded SupportExclusion) int {
	total := 0
	for _, c := range core.Ray(q, d, b.Height, b.Width) {
		dist := c.ChebyshevDistance(q)
		if b.TerrainAt(c).BlocksLOC() {
			return total
		}
		u, ok := b.UnitAt(c)
		if !ok {
			continue
		}
		if u.Side != defender {
			return total
		}
		if excluded.excludes(c) {
			continue
		}
		online := b.IsOnline(c, defender)
		rng := core.EffectiveRange(u, online)
		if rng >= dist {
			total += core.EffectiveDefenseAsSupporter(u, online)
		}
	}
	return total
}

// Resolve classifies the outcome from attack and defense power.
func Resolve(attack, defense int) Outcome {
	switch {
	case attack >= defense+2:
		return Capture
	case attack == defense+1:
		return Retreat
	default:
		return Neutral
	}
}

// Preview computes a Report without mutating the board. Supplements the
// spec's mutating make_attack with a read-only query a caller (or a
// collaborator like a search agent) can use to evaluate a candidate attack
// before committing to it.
func Preview(b *core.Board, attacker core.Side, q core.Coordinate) (Report, error) {
	return PreviewExcluding(b, attacker, q, nil)
}

// PreviewExcluding is Preview with excluded supporters skipped on both
// sides of the computation.
func PreviewExcluding(b *core.Board, attacker core.Side, q core.Coordinate, excluded SupportExclusion) (Report, error) {
	target, ok := b.UnitAt(q)
	if !ok {
		return Report{}, core.ErrNoEnemyAtTarget
	}
	if target.Side == attacker {
		return Report{}, core.ErrNoEnemyAtTarget
	}
	if !InRange(b, attacker, q) {
		return Report{}, core.ErrTargetOutOfRange
	}
	a := AttackPowerExcluding(b, attacker, q, excluded)
	dPow := DefensePowerExcluding(b, q, excluded)
	return Report{
		Target:       q,
		Attacker:     attacker,
		AttackPower:  a,
		DefensePower: dPow,
		Outcome:      Resolve(a, dPow),
	}, nil
}

// Execute resolves an attack by attacker against the unit at q and applies
// its outcome: Capture removes the defender immediately; Retreat leaves the
// unit in place for the turn state machine to register as a pending
// retreat; Neutral changes nothing. Execute does not itself touch turn
// budgets or pending-retreat bookkeeping; the turn package owns that.
// excluded lets the caller enforce the RetreatingUnitsCanSupport=false
// ruling; pass nil to exclude nothing.
func (e *Engine) Execute(b *core.Board, attacker core.Side, q core.Coordinate, excluded SupportExclusion) (Report, error) {
	report, err := PreviewExcluding(b, attacker, q, excluded)
	if err != nil {
		return Report{}, err
	}

	if report.Outcome == Capture {
		if _, rmErr := b.Remove(q); rmErr != nil {
			return Report{}, rmErr
		}
		if e.solver != nil {
			e.solver.Recompute(b)
		}
	}

	e.logger.Info().
		Str("attacker", attacker.String()).
		Str("target", q.String()).
		Int("attack", report.AttackPower).
		Int("defense", report.DefensePower).
		Str("outcome", report.Outcome.String()).
		Msg("attack resolved")

	return report, nil
}
