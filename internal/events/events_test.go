package events_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rgriffin-dev/kriegspiel/internal/events"
)

type recordingSubscriber struct {
	received []events.Event
}

func (r *recordingSubscriber) Handle(e events.Event) {
	r.received = append(r.received, e)
}

func TestBus_DeliversToEverySubscriberInOrder(t *testing.T) {
	bus := events.NewBus()
	var order []int
	bus.Subscribe(events.SubscriberFunc(func(events.Event) { order = append(order, 1) }))
	bus.Subscribe(events.SubscriberFunc(func(events.Event) { order = append(order, 2) }))

	bus.Publish(events.Event{Type: events.TypeTurnEnded})

	assert.Equal(t, []int{1, 2}, order)
}

func TestBus_DeliversPayloadUnmodified(t *testing.T) {
	bus := events.NewBus()
	sub := &recordingSubscriber{}
	bus.Subscribe(sub)

	payload := events.UnitMoved{Side: "North", Kind: "Infantry", From: "(0,0)", To: "(0,1)"}
	bus.Publish(events.Event{Type: events.TypeUnitMoved, Payload: payload})

	a := assert.New(t)
	a.Len(sub.received, 1)
	a.Equal(events.TypeUnitMoved, sub.received[0].Type)
	a.Equal(payload, sub.received[0].Payload)
}

func TestNilBus_PublishAndSubscribeAreNoOps(t *testing.T) {
	var bus *events.Bus

	assert.NotPanics(t, func() {
		bus.Subscribe(events.SubscriberFunc(func(events.Event) {
			t.Fatal("subscriber should never be invoked on a nil bus")
		}))
		bus.Publish(events.Event{Type: events.TypeGameEnded})
	})
}
