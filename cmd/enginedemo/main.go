// Command enginedemo runs a bounded, non-interactive simulation of the
// engine: it deploys a small symmetric force for each side, drives turns
// with randomly chosen legal moves and attacks, and logs the outcome of
// each turn until the game ends or a turn cap is reached. It renders
// nothing; it exists to exercise the engine end to end the way a person
// reading its logs could follow a game.
package main

import (
	"flag"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/rgriffin-dev/kriegspiel/internal/config"
	"github.com/rgriffin-dev/kriegspiel/internal/engine/coinflip"
	"github.com/rgriffin-dev/kriegspiel/internal/engine/combat"
	"github.com/rgriffin-dev/kriegspiel/internal/engine/core"
	"github.com/rgriffin-dev/kriegspiel/internal/engine/movement"
	"github.com/rgriffin-dev/kriegspiel/internal/engine/turn"
	"github.com/rgriffin-dev/kriegspiel/internal/events"
	"github.com/rgriffin-dev/kriegspiel/internal/events/subscribers"
)

func main() {
	configPath := flag.String("config", "", "path to a config.yaml overriding engine defaults")
	seed := flag.Int64("seed", time.Now().UnixNano(), "seed for the demo's move/attack selection and first-move coinflip")
	maxTurns := flag.Int("max-turns", 60, "stop the simulation after this many completed turns")
	logLevel := flag.String("log-level", "info", "debug, info, warn, or error")
	flag.Parse()

	setupLogging(*logLevel)
	log := zerolog.New(os.Stdout).With().Timestamp().Str("component", "enginedemo").Logger()

	cfg, err := config.Init(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}

	bus := &events.Bus{}
	bus.Subscribe(subscribers.NewLogger(log))

	rng := rand.New(rand.NewSource(*seed))
	first := coinflip.Flip(*seed)
	log.Info().Int64("seed", *seed).Str("first_to_move", first.String()).Msg("starting demo game")

	board := deploy(cfg.Board.Height, cfg.Board.Width, log)
	board.NetworksEnabled = cfg.Network.Enabled

	turnCfg := turn.Config{
		MaxMovesPerTurn:           cfg.Turn.MaxMovesPerTurn,
		MaxAttacksPerTurn:         cfg.Turn.MaxAttacksPerTurn,
		RelayAdjacencyRebroadcast: cfg.Network.RelayAdjacencyRebroadcast,
		RetreatingUnitsCanSupport: cfg.Turn.RetreatingUnitsCanSupport,
	}
	g := turn.New(board, first, log, bus, turnCfg)

	for turnsPlayed := 0; turnsPlayed < *maxTurns && g.Status == turn.Ongoing; turnsPlayed++ {
		playTurn(g, rng, log)
	}

	log.Info().Str("status", g.Status.String()).Int("turn_number", g.TurnNumber).Msg("demo game finished")
}

func setupLogging(level string) {
	var lvl zerolog.Level
	switch level {
	case "debug":
		lvl = zerolog.DebugLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	default:
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// deploy places a small symmetric garrison for each side: an arsenal
// anchoring a relay and a mixed line of infantry and cavalry in front of
// it, mirrored across the board.
func deploy(height, width int, log zerolog.Logger) *core.Board {
	b := core.NewBoard(height, width, log)
	mid := width / 2

	must(b.SetTerrain(core.NewCoordinate(0, mid), core.ArsenalTerrain(core.North)))
	must(b.Place(core.NewCoordinate(0, mid), core.NewUnit(core.Relay, core.North)))
	must(b.SetTerrain(core.NewCoordinate(height-1, mid), core.ArsenalTerrain(core.South)))
	must(b.Place(core.NewCoordinate(height-1, mid), core.NewUnit(core.Relay, core.South)))

	line := []core.Kind{core.Infantry, core.Infantry, core.Cavalry, core.Infantry, core.Infantry}
	start := mid - len(line)/2
	for i, kind := range line {
		col := start + i
		if col < 0 || col >= width || col == mid {
			continue
		}
		must(b.Place(core.NewCoordinate(1, col), core.NewUnit(kind, core.North)))
		must(b.Place(core.NewCoordinate(height-2, col), core.NewUnit(kind, core.South)))
	}
	return b
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// playTurn drives one full turn for the current side: it spends the move
// budget on randomly chosen legal moves (stopping early if an arsenal
// entry forces the battle phase), then attempts an attack against a
// random in-range enemy before ending the turn.
func playTurn(g *turn.GameState, rng *rand.Rand, log zerolog.Logger) {
	side := g.SideToMove

	for g.Phase == turn.Movement && len(g.PendingRetreatsFor(side)) == 0 {
		from, to, ok := pickRandomMove(g, side, rng)
		if !ok {
			break
		}
		if _, err := g.MakeMove(from, to); err != nil {
			log.Warn().Err(err).Str("side", side.String()).Msg("unexpected move rejection in demo")
			break
		}
		if g.Phase != turn.Movement {
			break
		}
	}

	if g.Status != turn.Ongoing {
		return
	}

	if g.Phase == turn.Movement {
		if err := g.SwitchToBattle(); err != nil {
			log.Warn().Err(err).Msg("could not switch to battle phase")
			return
		}
	}

	if target, ok := pickRandomAttack(g, side, rng); ok {
		if _, err := g.MakeAttack(target); err != nil {
			log.Warn().Err(err).Msg("unexpected attack rejection in demo")
		}
	} else if err := g.PassAttack(); err != nil {
		log.Warn().Err(err).Msg("could not pass the attack")
	}

	if g.Status != turn.Ongoing {
		return
	}
	if err := g.EndTurn(); err != nil {
		log.Warn().Err(err).Msg("could not end turn")
	}

	resolveAnyPendingRetreats(g, side.Opponent(), rng, log)
}

// pickRandomMove chooses a uniformly random (from, to) among every legal
// move available to side's units that have not already moved this turn.
func pickRandomMove(g *turn.GameState, side core.Side, rng *rand.Rand) (core.Coordinate, core.Coordinate, bool) {
	type candidate struct{ from, to core.Coordinate }
	var candidates []candidate

	for _, from := range g.Board.UnitsOf(side) {
		if g.MovesThisTurn[from] {
			continue
		}
		for _, to := range movement.LegalDestinations(g.Board, from) {
			candidates = append(candidates, candidate{from, to})
		}
	}
	if len(candidates) == 0 {
		return core.Coordinate{}, core.Coordinate{}, false
	}
	c := candidates[rng.Intn(len(candidates))]
	return c.from, c.to, true
}

// pickRandomAttack chooses a uniformly random enemy cell that side can
// currently hit.
func pickRandomAttack(g *turn.GameState, side core.Side, rng *rand.Rand) (core.Coordinate, bool) {
	var targets []core.Coordinate
	for _, q := range g.Board.UnitsOf(side.Opponent()) {
		if combat.InRange(g.Board, side, q) {
			targets = append(targets, q)
		}
	}
	if len(targets) == 0 {
		return core.Coordinate{}, false
	}
	return targets[rng.Intn(len(targets))], true
}

// resolveAnyPendingRetreats picks a random legal destination for every
// retreat the state machine could not auto-resolve, so the demo never
// stalls waiting on operator input.
func resolveAnyPendingRetreats(g *turn.GameState, side core.Side, rng *rand.Rand, log zerolog.Logger) {
	for _, cell := range g.PendingRetreatsFor(side) {
		var dests []core.Coordinate
		for _, n := range core.Neighbors8(cell, g.Board.Height, g.Board.Width) {
			if !g.Board.TerrainAt(n).Traversable() {
				continue
			}
			if _, occupied := g.Board.UnitAt(n); occupied {
				continue
			}
			dests = append(dests, n)
		}
		if len(dests) == 0 {
			continue
		}
		dest := dests[rng.Intn(len(dests))]
		if err := g.ResolveRetreat(side, cell, dest); err != nil {
			log.Warn().Err(err).Msg("could not resolve pending retreat")
		}
	}
}
