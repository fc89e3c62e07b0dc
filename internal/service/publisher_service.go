package service

import (
	"context"
	"encoding/json"

	"research-library-be/internal/dto"
	"research-library-be/internal/entity"
	"research-library-be/internal/pkg/logger"
	"research-library-be/pkg/library"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

type IPublisherService interface {
	PublishEnrichSource(ctx context.Context, msg dto.EnrichSourceMessage) error
}

type publisherService struct {
	topicName string
	publisher message.Publisher
}

func NewPublisherService(topicName string, publisher message.Publisher) IPublisherService {
	return &publisherService{
		topicName: topicName,
		publisher: publisher,
	}
}

func (ps *publisherService) PublishEnrichSource(ctx context.Context, payload dto.EnrichSourceMessage) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.SetContext(ctx)
	return ps.publisher.Publish(ps.topicName, msg)
}

// EnrichOnSave returns a source hook that queues metadata enrichment for
// sources saved with a URL and no metadata yet.
func EnrichOnSave(ps IPublisherService, log logger.ILogger) func(ctx context.Context, scope library.Scope, src *entity.Source) {
	return func(ctx context.Context, scope library.Scope, src *entity.Source) {
		if !src.NeedsEnrichment() {
			return
		}
		err := ps.PublishEnrichSource(context.WithoutCancel(ctx), dto.EnrichSourceMessage{
			SourceId: src.Id,
			OwnerId:  scope.Owner,
			Mode:     string(scope.Mode),
			Url:      src.Url,
		})
		if err != nil {
			log.Warn("ENRICH", "Failed to queue enrichment", map[string]interface{}{
				"source_id": src.Id.String(),
				"error":     err.Error(),
			})
		}
	}
}
