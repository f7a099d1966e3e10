// Package turn implements the turn state machine: phases, per-turn move and
// attack budgets, pending retreats, end-of-turn transitions, and victory
// detection.
package turn

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rgriffin-dev/kriegspiel/internal/engine/combat"
	"github.com/rgriffin-dev/kriegspiel/internal/engine/core"
	"github.com/rgriffin-dev/kriegspiel/internal/engine/movement"
	"github.com/rgriffin-dev/kriegspiel/internal/engine/network"
	"github.com/rgriffin-dev/kriegspiel/internal/events"
)

// Phase is one of the two turn phases.
type Phase int

const (
	Movement Phase = iota
	Battle
)

func (p Phase) String() string {
	if p == Movement {
		return "Movement"
	}
	return "Battle"
}

// Status is the overall game outcome.
type Status int

const (
	Ongoing Status = iota
	NorthWins
	SouthWins
	Draw
)

func (s Status) String() string {
	switch s {
	case NorthWins:
		return "NorthWins"
	case SouthWins:
		return "SouthWins"
	case Draw:
		return "Draw"
	default:
		return "Ongoing"
	}
}

// MaxMovesPerTurn is the default per-turn movement budget, used when a
// GameState is built with a zero-value Config.
const MaxMovesPerTurn = 5

// MaxAttacksPerTurn is the default per-turn attack budget.
const MaxAttacksPerTurn = 1

// Config carries the engine knobs that config.EngineConfig exposes to the
// turn state machine: move/attack budgets and the two open-question rulings
// the network solver and retreat handling need. A zero-value Config does not
// match the defaults: New fills only its zero budget fields, and leaves both
// bools false. Callers should start from DefaultConfig and override
// individual fields.
type Config struct {
	MaxMovesPerTurn           int
	MaxAttacksPerTurn         int
	RelayAdjacencyRebroadcast bool
	RetreatingUnitsCanSupport bool
}

// DefaultConfig returns the engine's built-in defaults, matching
// config.setViperDefaults.
func DefaultConfig() Config {
	return Config{
		MaxMovesPerTurn:           MaxMovesPerTurn,
		MaxAttacksPerTurn:         MaxAttacksPerTurn,
		RelayAdjacencyRebroadcast: true,
		RetreatingUnitsCanSupport: true,
	}
}

// Record is one entry of a game's move/attack history, used for
// post-hoc inspection and logging; it is not consulted by the state
// machine itself.
type Record struct {
	TurnNumber int
	Side       core.Side
	Kind       string
	Detail     string
}

// GameState is the full mutable state of one game: the board plus the turn
// state machine layered on top of it.
type GameState struct {
	ID uuid.UUID

	Board *core.Board

	TurnNumber      int
	SideToMove      core.Side
	Phase           Phase
	MovesThisTurn   map[core.Coordinate]bool
	AttacksThisTurn int
	PendingRetreats map[core.Side]map[core.Coordinate]bool

	Status  Status
	History []Record

	config Config

	movementEngine *movement.Engine
	combatEngine   *combat.Engine
	solver         *network.Solver
	logger         zerolog.Logger
	bus            *events.Bus

	surrendered [2]bool
}

// New builds a fresh GameState around an already set-up board. firstToMove
// is normally chosen by coinflip.Flip. bus may be nil. cfg's zero-valued
// budget fields (MaxMovesPerTurn, MaxAttacksPerTurn) fall back to
// DefaultConfig, since 0 is never a usable budget; the two bool fields are
// taken as given, so a caller wanting the defaults for those should start
// from DefaultConfig() rather than a bare Config{}.
func New(board *core.Board, firstToMove core.Side, logger zerolog.Logger, bus *events.Bus, cfg Config) *GameState {
	cfg = cfg.withDefaults()
	solver := network.NewSolver(logger)
	solver.RelayAdjacencyRebroadcast = cfg.RelayAdjacencyRebroadcast
	solver.Recompute(board)
	return &GameState{
		ID:              uuid.New(),
		Board:           board,
		TurnNumber:      1,
		SideToMove:      firstToMove,
		Phase:           Movement,
		MovesThisTurn:   make(map[core.Coordinate]bool),
		PendingRetreats: map[core.Side]map[core.Coordinate]bool{core.North: {}, core.South: {}},
		Status:          Ongoing,
		config:          cfg,
		movementEngine:  movement.NewEngine(logger, solver),
		combatEngine:    combat.NewEngine(logger, solver),
		solver:          solver,
		logger:          logger.With().Str("component", "turn").Logger(),
		bus:             bus,
	}
}

// withDefaults fills the zero budget fields of cfg (MaxMovesPerTurn,
// MaxAttacksPerTurn) from DefaultConfig; the bool fields are left as given.
func (cfg Config) withDefaults() Config {
	d := DefaultConfig()
	if cfg.MaxMovesPerTurn == 0 {
		cfg.MaxMovesPerTurn = d.MaxMovesPerTurn
	}
	if cfg.MaxAttacksPerTurn == 0 {
		cfg.MaxAttacksPerTurn = d.MaxAttacksPerTurn
	}
	return cfg
}

func (g *GameState) publish(t events.Type, payload interface{}) {
	g.bus.Publish(events.Event{Type: t, Payload: payload})
}

// pendingRetreatCells returns the pending retreat cells for side, sorted
// for determinism isn't required (map order), but returned as a slice for
// callers.
func (g *GameState) pendingRetreatCells(side core.Side) []core.Coordinate {
	out := make([]core.Coordinate, 0, len(g.PendingRetreats[side]))
	for c := range g.PendingRetreats[side] {
		out = append(out, c)
	}
	return out
}

// PendingRetreatsFor returns the cells side must resolve before it may move.
func (g *GameState) PendingRetreatsFor(side core.Side) []core.Coordinate {
	return g.pendingRetreatCells(side)
}

// MakeMove applies a move for the side to move, enforcing phase, ownership,
// and per-turn move-budget preconditions before delegating to the movement
// engine.
func (g *GameState) MakeMove(from, to core.Coordinate) (movement.Result, error) {
	if g.Status != Ongoing {
		return movement.Result{}, core.ErrWrongPhase
	}
	if g.Phase != Movement {
		return movement.Result{}, core.ErrWrongPhase
	}
	if len(g.PendingRetreats[g.SideToMove]) > 0 {
		return movement.Result{}, core.ErrMustRetreatFirst
	}
	if len(g.MovesThisTurn) >= g.config.MaxMovesPerTurn {
		return movement.Result{}, core.ErrOutOfMoveBudget
	}
	if g.MovesThisTurn[from] {
		return movement.Result{}, core.ErrAlreadyMoved
	}
	u, ok := g.Board.UnitAt(from)
	if !ok {
		return movement.Result{}, core.ErrNoUnitAt
	}
	if u.Side != g.SideToMove {
		return movement.Result{}, core.ErrNotYourUnit
	}

	res, err := g.movementEngine.Execute(g.Board, from, to)
	if err != nil {
		return movement.Result{}, err
	}

	g.MovesThisTurn[to] = true
	g.publish(events.TypeUnitMoved, events.UnitMoved{
		Side: u.Side.String(), Kind: u.Kind.String(),
		From: from.String(), To: to.String(), ArsenalEntered: res.ArsenalDestroyed,
	})
	if res.ArsenalDestroyed {
		g.publish(events.TypeArsenalDestroyed, events.ArsenalDestroyed{
			Side: res.DestroyedSide.String(), Cell: to.String(),
		})
		g.Phase = Battle
		g.AttacksThisTurn = g.config.MaxAttacksPerTurn
	}
	g.publishNetwork()
	g.History = append(g.History, Record{
		TurnNumber: g.TurnNumber, Side: u.Side, Kind: "move",
		Detail: from.String() + "->" + to.String(),
	})
	g.checkVictory()
	return res, nil
}

// SwitchToBattle transitions Movement -> Battle without an arsenal-ending
// move.
func (g *GameState) SwitchToBattle() error {
	if g.Status != Ongoing {
		return core.ErrWrongPhase
	}
	if g.Phase != Movement {
		return core.ErrWrongPhase
	}
	if len(g.PendingRetreats[g.SideToMove]) > 0 {
		return core.ErrMustRetreatFirst
	}
	g.Phase = Battle
	return nil
}

// MakeAttack resolves an attack against target during the Battle phase.
func (g *GameState) MakeAttack(target core.Coordinate) (combat.Report, error) {
	if g.Status != Ongoing {
		return combat.Report{}, core.ErrWrongPhase
	}
	if g.Phase != Battle {
		return combat.Report{}, core.ErrWrongPhase
	}
	if g.AttacksThisTurn >= g.config.MaxAttacksPerTurn {
		return combat.Report{}, core.ErrNoAttacksLeft
	}

	report, err := g.combatEngine.Execute(g.Board, g.SideToMove, target, g.supportExclusion())
	if err != nil {
		return combat.Report{}, err
	}
	g.AttacksThisTurn++

	g.publish(events.TypeAttackResolved, events.AttackResolved{
		Attacker: g.SideToMove.String(), Target: target.String(),
		AttackPower: report.AttackPower, DefensePower: report.DefensePower,
		Outcome: report.Outcome.String(),
	})
	if report.Outcome == combat.Retreat {
		defender := g.SideToMove.Opponent()
		g.PendingRetreats[defender][target] = true
	}
	if report.Outcome == combat.Capture {
		g.publishNetwork()
	}
	g.History = append(g.History, Record{
		TurnNumber: g.TurnNumber, Side: g.SideToMove, Kind: "attack",
		Detail: target.String() + ":" + report.Outcome.String(),
	})
	g.checkVictory()
	return report, nil
}

// PassAttack forfeits the entire remaining attack budget for the turn,
// rather than a single slot of it: a player who has decided not to attack
// this turn is done with the battle phase, not merely skipping one attack
// among several.
func (g *GameState) PassAttack() error {
	if g.Status != Ongoing {
		return core.ErrWrongPhase
	}
	if g.Phase != Battle {
		return core.ErrWrongPhase
	}
	if g.AttacksThisTurn >= g.config.MaxAttacksPerTurn {
		return core.ErrNoAttacksLeft
	}
	g.AttacksThisTurn = g.config.MaxAttacksPerTurn
	return nil
}

// supportExclusion returns the SupportExclusion enforcing
// RetreatingUnitsCanSupport=false: a unit under a pending retreat, on
// either side, no longer lends its power to a support line. Returns nil
// (exclude nothing) when the config allows retreating units to support,
// matching the spec's default reading.
func (g *GameState) supportExclusion() combat.SupportExclusion {
	if g.config.RetreatingUnitsCanSupport {
		return nil
	}
	return func(c core.Coordinate) bool {
		return g.PendingRetreats[core.North][c] || g.PendingRetreats[core.South][c]
	}
}

// ResolveRetreat is called by the owning player to choose a destination for
// a pending retreat that the engine could not auto-resolve (more than one
// valid neighbor existed). dest must be an empty, non-Mountain cell
// 8-adjacent to cell.
func (g *GameState) ResolveRetreat(side core.Side, cell, dest core.Coordinate) error {
	if !g.PendingRetreats[side][cell] {
		return core.ErrNoUnitAt
	}
	if !cell.IsAdjacent8(dest) || !g.Board.InBounds(dest) {
		return core.ErrOutOfRange
	}
	if !g.Board.TerrainAt(dest).Traversable() {
		return core.ErrIllegalTerrain
	}
	if _, occupied := g.Board.UnitAt(dest); occupied {
		return core.ErrOccupiedByFriendly
	}
	g.Board.MoveUnit(cell, dest)
	g.solver.Recompute(g.Board)
	delete(g.PendingRetreats[side], cell)
	g.MovesThisTurn[dest] = true
	g.publish(events.TypeUnitRetreated, events.UnitRetreated{
		Side: side.String(), From: cell.String(), To: dest.String(),
	})
	return nil
}

// EndTurn closes out the current side's turn: resolves the next side's
// pending retreats, flips SideToMove, advances TurnNumber on a full round,
// resets phase/budgets, recomputes the network, and checks victory.
func (g *GameState) EndTurn() error {
	if g.Status != Ongoing {
		return core.ErrWrongPhase
	}
	if g.Phase != Battle {
		return core.ErrWrongPhase
	}
	if g.AttacksThisTurn < g.config.MaxAttacksPerTurn {
		return core.ErrTurnNotEndable
	}

	completedSide := g.SideToMove
	nextSide := completedSide.Opponent()
	if completedSide == core.South {
		g.TurnNumber++
	}

	g.SideToMove = nextSide
	g.Phase = Movement
	g.MovesThisTurn = make(map[core.Coordinate]bool)
	g.AttacksThisTurn = 0

	g.resolvePendingRetreats(nextSide)
	g.solver.Recompute(g.Board)
	g.publishNetwork()

	g.publish(events.TypeTurnEnded, events.TurnEnded{
		CompletedSide: completedSide.String(), NextSide: nextSide.String(), TurnNumber: g.TurnNumber,
	})
	g.checkVictory()
	return nil
}

// resolvePendingRetreats auto-resolves every retreat for side that has
// exactly zero or one legal destination; retreats with multiple legal
// destinations are left pending for an explicit ResolveRetreat call.
func (g *GameState) resolvePendingRetreats(side core.Side) {
	for cell := range g.PendingRetreats[side] {
		dests := g.retreatDestinations(cell)
		switch len(dests) {
		case 0:
			u, _ := g.Board.Remove(cell)
			delete(g.PendingRetreats[side], cell)
			g.publish(events.TypeUnitLostNoRetreat, events.UnitLostNoRetreat{
				Side: u.Side.String(), Cell: cell.String(),
			})
		case 1:
			g.Board.MoveUnit(cell, dests[0])
			delete(g.PendingRetreats[side], cell)
			g.MovesThisTurn[dests[0]] = true
			g.publish(events.TypeUnitRetreated, events.UnitRetreated{
				Side: side.String(), From: cell.String(), To: dests[0].String(),
			})
		default:
			// left pending; ResolveRetreat must be called explicitly.
		}
	}
}

func (g *GameState) retreatDestinations(cell core.Coordinate) []core.Coordinate {
	var out []core.Coordinate
	for _, n := range core.Neighbors8(cell, g.Board.Height, g.Board.Width) {
		if !g.Board.TerrainAt(n).Traversable() {
			continue
		}
		if _, occupied := g.Board.UnitAt(n); occupied {
			continue
		}
		out = append(out, n)
	}
	return out
}

// Surrender ends the game immediately in the opponent's favor, unless the
// game already reached a terminal status.
func (g *GameState) Surrender(side core.Side) {
	if g.Status != Ongoing {
		return
	}
	g.surrendered[side] = true
	g.checkVictory()
}

func (g *GameState) publishNetwork() {
	g.publish(events.TypeNetworkRecomputed, events.NetworkRecomputed{
		NorthOnline: countOnline(g.Board, core.North),
		SouthOnline: countOnline(g.Board, core.South),
	})
}

func countOnline(b *core.Board, side core.Side) int {
	n := 0
	for _, c := range b.UnitsOf(side) {
		if b.IsOnline(c, side) {
			n++
		}
	}
	return n
}

// checkVictory evaluates the four loss conditions for both sides and sets
// Status. Simultaneous loss is a Draw.
func (g *GameState) checkVictory() {
	if g.Status != Ongoing {
		return
	}
	northLost := g.sideLost(core.North)
	southLost := g.sideLost(core.South)

	switch {
	case northLost && southLost:
		g.Status = Draw
	case northLost:
		g.Status = SouthWins
	case southLost:
		g.Status = NorthWins
	default:
		return
	}
	g.publish(events.TypeGameEnded, events.GameEnded{Status: g.Status.String()})
}

func (g *GameState) sideLost(side core.Side) bool {
	if g.surrendered[side] {
		return true
	}
	if len(g.Board.ArsenalsOf(side)) == 0 {
		return true
	}
	if !g.hasMobileCombatUnit(side) {
		return true
	}
	if len(g.Board.RelaysOf(side)) == 0 && g.allUnitsOffline(side) {
		return true
	}
	return false
}

func (g *GameState) hasMobileCombatUnit(side core.Side) bool {
	for _, c := range g.Board.UnitsOf(side) {
		u, _ := g.Board.UnitAt(c)
		if u.Kind.IsMobileCombatUnit() {
			return true
		}
	}
	return false
}

func (g *GameState) allUnitsOffline(side core.Side) bool {
	units := g.Board.UnitsOf(side)
	if len(units) == 0 {
		return true
	}
	for _, c := range units {
		if g.Board.IsOnline(c, side) {
			return false
		}
	}
	return true
}
