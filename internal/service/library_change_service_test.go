package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"research-library-be/internal/entity"
	"research-library-be/internal/pkg/logger"
	"research-library-be/pkg/events"
	"research-library-be/pkg/library"
	pktNats "research-library-be/pkg/nats"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBroadcaster struct{ changes []library.Change }

func (b *fakeBroadcaster) Publish(_ context.Context, c library.Change) {
	b.changes = append(b.changes, c)
}

type fakeEvents struct {
	events []events.Event
	err    error
}

func (e *fakeEvents) Publish(_ context.Context, evt events.Event) error {
	e.events = append(e.events, evt)
	return e.err
}

func TestChangeNotifier_PersistentGoesToBus(t *testing.T) {
	hub, bus := &fakeBroadcaster{}, &fakeEvents{}
	n := NewChangeNotifier(hub, bus, logger.NewNopLogger())

	change := library.Change{
		Kind:    entity.KindNote,
		Action:  library.ActionSaved,
		ItemID:  uuid.New(),
		OwnerID: uuid.New(),
		Mode:    library.ModePersistent,
		At:      time.Now().UTC(),
	}
	n.Notify(context.Background(), change)

	require.Len(t, hub.changes, 1)
	require.Len(t, bus.events, 1)
	evt := bus.events[0]
	assert.Equal(t, "LIBRARY_SAVED", evt.EventType())
	assert.Equal(t, "notes", evt.Payload()["kind"])
	assert.Equal(t, change.ItemID.String(), evt.Payload()["item_id"])
	assert.Equal(t, change.At, evt.Timestamp())
	assert.NotEmpty(t, evt.EventID())
}

func TestChangeNotifier_GuestsStayOffTheBus(t *testing.T) {
	hub, bus := &fakeBroadcaster{}, &fakeEvents{}
	n := NewChangeNotifier(hub, bus, logger.NewNopLogger())

	n.Notify(context.Background(), library.Change{Kind: entity.KindDraft, Action: library.ActionDeleted, Mode: library.ModeLocal})

	assert.Len(t, hub.changes, 1)
	assert.Empty(t, bus.events)
}

func TestChangeNotifier_BusFailureIsSwallowed(t *testing.T) {
	bus := &fakeEvents{err: errors.New("nats down")}
	n := NewChangeNotifier(nil, bus, logger.NewNopLogger())

	assert.NotPanics(t, func() {
		n.Notify(context.Background(), library.Change{Action: library.ActionSaved, Mode: library.ModePersistent})
	})
	assert.Len(t, bus.events, 1)
}

type fakeSubscriber struct {
	subject, durable string
	handler          pktNats.EventHandler
}

func (s *fakeSubscriber) Subscribe(_ context.Context, subject, durable string, handler pktNats.EventHandler) error {
	s.subject, s.durable, s.handler = subject, durable, handler
	return nil
}

func TestLibraryActivityService_Subscribes(t *testing.T) {
	sub := &fakeSubscriber{}
	svc := NewLibraryActivityService(sub, logger.NewNopLogger())

	require.NoError(t, svc.Start(context.Background()))
	assert.Equal(t, "events.LIBRARY_>", sub.subject)
	assert.Equal(t, "library-activity", sub.durable)

	err := sub.handler(context.Background(), events.BaseEvent{
		Type: "LIBRARY_DELETED",
		Data: map[string]interface{}{"kind": "sources", "item_id": uuid.NewString()},
	})
	assert.NoError(t, err)

	// Foreign event types are ignored, not failed.
	assert.NoError(t, sub.handler(context.Background(), events.BaseEvent{Type: "USER_CREATED"}))
}
