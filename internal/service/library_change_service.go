package service

import (
	"context"
	"time"

	"research-library-be/internal/pkg/logger"
	"research-library-be/pkg/events"
	"research-library-be/pkg/library"
)

// ChangeBroadcaster fans a change out to live clients (the websocket hub).
type ChangeBroadcaster interface {
	Publish(ctx context.Context, change library.Change)
}

// EventPublisher puts an event on the bus (NATS).
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

const eventPublishTimeout = 3 * time.Second

type changeNotifier struct {
	broadcaster ChangeBroadcaster
	events      EventPublisher
	logger      logger.ILogger
}

// NewChangeNotifier fans library changes out to live clients and, for
// persistent libraries, to the event bus. Either side may be nil.
func NewChangeNotifier(broadcaster ChangeBroadcaster, events EventPublisher, log logger.ILogger) library.Notifier {
	return &changeNotifier{
		broadcaster: broadcaster,
		events:      events,
		logger:      log,
	}
}

func (n *changeNotifier) Notify(ctx context.Context, change library.Change) {
	// The request may finish before the bus answers.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventPublishTimeout)
	defer cancel()

	if n.broadcaster != nil {
		n.broadcaster.Publish(ctx, change)
	}

	if n.events == nil || change.Mode != library.ModePersistent {
		return
	}
	evt := events.NewEvent(events.LibraryEventType(string(change.Action)), map[string]interface{}{
		"kind":     string(change.Kind),
		"action":   string(change.Action),
		"item_id":  change.ItemID.String(),
		"owner_id": change.OwnerID.String(),
		"mode":     string(change.Mode),
	}, change.At)
	// Auxiliary: log and move on.
	if err := n.events.Publish(ctx, evt); err != nil {
		n.logger.Warn("ChangeNotifier", "Failed to publish library event", map[string]interface{}{
			"type":  evt.Type,
			"error": err,
		})
	}
}
