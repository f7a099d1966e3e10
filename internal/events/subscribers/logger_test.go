package subscribers_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/rgriffin-dev/kriegspiel/internal/events"
	"github.com/rgriffin-dev/kriegspiel/internal/events/subscribers"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestLogger_HandleUnitMoved(t *testing.T) {
	var buf bytes.Buffer
	logSub := subscribers.NewLogger(zerolog.New(&buf))

	logSub.Handle(events.Event{
		Type: events.TypeUnitMoved,
		Payload: events.UnitMoved{
			Side: "North", Kind: "Cavalry", From: "(0,0)", To: "(0,1)", ArsenalEntered: true,
		},
	})

	line := decodeLine(t, &buf)
	require.Equal(t, "unit moved", line["message"])
	require.Equal(t, "events", line["component"])
	require.Equal(t, "North", line["side"])
	require.Equal(t, "Cavalry", line["kind"])
	require.Equal(t, true, line["arsenal_entered"])
}

func TestLogger_HandleAttackResolved(t *testing.T) {
	var buf bytes.Buffer
	logSub := subscribers.NewLogger(zerolog.New(&buf))

	logSub.Handle(events.Event{
		Type: events.TypeAttackResolved,
		Payload: events.AttackResolved{
			Attacker: "North", Target: "(5,5)", AttackPower: 12, DefensePower: 6, Outcome: "Capture",
		},
	})

	line := decodeLine(t, &buf)
	require.Equal(t, "attack resolved", line["message"])
	require.Equal(t, "Capture", line["outcome"])
	require.Equal(t, float64(12), line["attack"])
}

func TestLogger_HandleUnknownPayloadFallsBackToGenericLine(t *testing.T) {
	var buf bytes.Buffer
	logSub := subscribers.NewLogger(zerolog.New(&buf))

	logSub.Handle(events.Event{Type: events.Type("something_else")})

	line := decodeLine(t, &buf)
	require.Equal(t, "event", line["message"])
	require.Equal(t, "something_else", line["event"])
}
