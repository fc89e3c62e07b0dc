package service

import (
	"context"
	"strings"

	"research-library-be/internal/pkg/logger"
	"research-library-be/pkg/events"
	pktNats "research-library-be/pkg/nats"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var libraryActivity = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "library_activity_events_total",
	Help: "Library events consumed from the bus by type and kind",
}, []string{"type", "kind"})

type ILibraryActivityService interface {
	Start(ctx context.Context) error
}

// EventSubscriber is the part of the NATS subscriber the worker needs.
type EventSubscriber interface {
	Subscribe(ctx context.Context, subject, durableName string, handler pktNats.EventHandler) error
}

type libraryActivityService struct {
	subscriber EventSubscriber
	logger     logger.ILogger
}

// NewLibraryActivityService records an audit line for every persistent
// library change that reaches the bus.
func NewLibraryActivityService(subscriber EventSubscriber, log logger.ILogger) ILibraryActivityService {
	return &libraryActivityService{
		subscriber: subscriber,
		logger:     log,
	}
}

func (s *libraryActivityService) Start(ctx context.Context) error {
	subject := pktNats.SubjectPrefix + events.LibraryEventPrefix + ">"
	if err := s.subscriber.Subscribe(ctx, subject, "library-activity", s.handleEvent); err != nil {
		s.logger.Error("LibraryActivity", "Failed to start subscriber", map[string]interface{}{"error": err})
		return err
	}
	s.logger.Info("LibraryActivity", "Listening for library events", map[string]interface{}{"subject": subject})
	return nil
}

func (s *libraryActivityService) handleEvent(ctx context.Context, event events.Event) error {
	if !strings.HasPrefix(event.EventType(), events.LibraryEventPrefix) {
		return nil
	}
	payload := event.Payload()
	kind, _ := payload["kind"].(string)

	libraryActivity.WithLabelValues(event.EventType(), kind).Inc()
	s.logger.Info("LibraryActivity", "Library changed", map[string]interface{}{
		"type":        event.EventType(),
		"kind":        kind,
		"item_id":     payload["item_id"],
		"owner_id":    payload["owner_id"],
		"occurred_at": event.Timestamp(),
	})
	return nil
}
