package service

import (
	"context"
	"encoding/json"
	"time"

	"research-library-be/internal/dto"
	"research-library-be/internal/entity"
	"research-library-be/internal/pkg/logger"
	"research-library-be/pkg/library"
	"research-library-be/pkg/metadata"

	"github.com/ThreeDotsLabs/watermill/message"
)

const enrichTimeout = 30 * time.Second

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	library    *library.Library
	extractor  MetadataExtractor
	logger     logger.ILogger
}

// NewConsumerService builds the worker that fills in a saved source's
// metadata from its URL.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	lib *library.Library,
	extractor MetadataExtractor,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		library:    lib,
		extractor:  extractor,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage always acks: enrichment is best effort and a failed page
// is recorded on the source instead of retried.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.EnrichSourceMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ENRICH", "Failed to unmarshal message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	scope := library.Scope{Mode: library.Mode(payload.Mode), Owner: payload.OwnerId}
	details := map[string]interface{}{
		"source_id": payload.SourceId.String(),
		"scope":     scope.String(),
		"url":       payload.Url,
	}

	ctx, cancel := context.WithTimeout(ctx, enrichTimeout)
	defer cancel()

	current, err := cs.library.Sources.Get(ctx, scope, payload.SourceId)
	if err != nil {
		details["error"] = err.Error()
		cs.logger.Error("ENRICH", "Failed to load source", details)
		return
	}
	if current == nil || current.Url != payload.Url {
		cs.logger.Info("ENRICH", "Source gone or URL changed, skipping", details)
		return
	}

	md, err := cs.extractor.Extract(ctx, payload.Url)
	if err != nil {
		details["error"] = err.Error()
		cs.logger.Warn("ENRICH", "Metadata extraction failed", details)
		cs.update(ctx, scope, payload, enrichFailedPatch(current, err))
		return
	}

	cs.update(ctx, scope, payload, enrichPatch(current, md))
}

func (cs *consumerService) update(ctx context.Context, scope library.Scope, payload dto.EnrichSourceMessage, patch map[string]interface{}) {
	updated, err := cs.library.Sources.Update(ctx, scope, payload.SourceId, patch)
	if err != nil {
		cs.logger.Error("ENRICH", "Failed to update source", map[string]interface{}{
			"source_id": payload.SourceId.String(),
			"scope":     scope.String(),
			"error":     err.Error(),
		})
		return
	}
	if updated == nil {
		return
	}
	cs.logger.Info("ENRICH", "Source enriched", map[string]interface{}{
		"source_id": payload.SourceId.String(),
		"scope":     scope.String(),
		"status":    patch["metadata"].(map[string]interface{})["enrichment_status"],
	})
}

// enrichPatch records what was extracted under metadata and fills the
// source's own fields only where the user left them empty.
func enrichPatch(src *entity.Source, md *metadata.Metadata) map[string]interface{} {
	meta := copyMeta(src.Metadata)
	meta["enrichment_status"] = "done"
	meta["enriched_at"] = time.Now().UTC().Format(time.RFC3339)
	setIf(meta, "site_name", md.SiteName)
	setIf(meta, "doi", md.Doi)
	setIf(meta, "image", md.Image)
	setIf(meta, "content_type", md.ContentType)
	setIf(meta, "final_url", md.URL)

	patch := map[string]interface{}{"metadata": meta}
	fill := func(field, current, value string) {
		if current == "" && value != "" {
			patch[field] = value
		}
	}
	fill("title", src.Title, md.Title)
	fill("description", src.Description, md.Description)
	fill("publisher", src.Publisher, md.SiteName)
	fill("published_at", src.PublishedAt, md.PublishedAt)
	fill("content", src.Content, md.Text)
	if len(src.Authors) == 0 && len(md.Authors) > 0 {
		patch["authors"] = md.Authors
	}
	// "web" is only the default; a detected type is better.
	if (src.SourceType == "" || src.SourceType == "web") && md.SourceType != "" {
		patch["source_type"] = md.SourceType
	}
	return patch
}

func enrichFailedPatch(src *entity.Source, cause error) map[string]interface{} {
	meta := copyMeta(src.Metadata)
	meta["enrichment_status"] = "failed"
	meta["enrichment_error"] = cause.Error()
	return map[string]interface{}{"metadata": meta}
}

func copyMeta(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in)+6)
	for k, v := range in {
		out[k] = v
	}
	return out
}

func setIf(m map[string]interface{}, key, value string) {
	if value != "" {
		m[key] = value
	}
}
