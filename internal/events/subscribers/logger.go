// Package subscribers provides ready-made events.Subscriber
// implementations.
package subscribers

import (
	"github.com/rs/zerolog"

	"github.com/rgriffin-dev/kriegspiel/internal/events"
)

// Logger publishes every event as a structured zerolog line. It is the
// default subscriber wired by cmd/enginedemo.
type Logger struct {
	log zerolog.Logger
}

// NewLogger builds a Logger subscriber writing through log.
func NewLogger(log zerolog.Logger) *Logger {
	return &Logger{log: log.With().Str("component", "events").Logger()}
}

func (l *Logger) Handle(e events.Event) {
	evt := l.log.Info().Str("event", string(e.Type))
	switch p := e.Payload.(type) {
	case events.UnitMoved:
		evt.Str("side", p.Side).Str("kind", p.Kind).Str("from", p.From).Str("to", p.To).
			Bool("arsenal_entered", p.ArsenalEntered).Msg("unit moved")
	case events.ArsenalDestroyed:
		evt.Str("side", p.Side).Str("cell", p.Cell).Msg("arsenal destroyed")
	case events.AttackResolved:
		evt.Str("attacker", p.Attacker).Str("target", p.Target).
			Int("attack", p.AttackPower).Int("defense", p.DefensePower).
			Str("outcome", p.Outcome).Msg("attack resolved")
	case events.UnitRetreated:
		evt.Str("side", p.Side).Str("from", p.From).Str("to", p.To).Msg("unit retreated")
	case events.UnitLostNoRetreat:
		evt.Str("side", p.Side).Str("cell", p.Cell).Msg("unit lost, no retreat available")
	case events.NetworkRecomputed:
		evt.Int("north_online", p.NorthOnline).Int("south_online", p.SouthOnline).Msg("network recomputed")
	case events.TurnEnded:
		evt.Str("completed_side", p.CompletedSide).Str("next_side", p.NextSide).
			Int("turn_number", p.TurnNumber).Msg("turn ended")
	case events.GameEnded:
		evt.Str("status", p.Status).Msg("game ended")
	case events.ConfigReloaded:
		evt.Str("path", p.Path).Msg("config reloaded")
	default:
		evt.Msg("event")
	}
}
