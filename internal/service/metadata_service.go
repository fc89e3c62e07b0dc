package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"research-library-be/internal/dto"
	"research-library-be/internal/pkg/logger"
	"research-library-be/internal/pkg/serverutils"
	"research-library-be/pkg/metadata"

	"github.com/patrickmn/go-cache"
)

// MetadataExtractor fetches a page and reads what it can from it.
type MetadataExtractor interface {
	Extract(ctx context.Context, url string) (*metadata.Metadata, error)
}

type IMetadataService interface {
	Extract(ctx context.Context, req *dto.ExtractMetadataRequest) (*metadata.Metadata, error)
}

type metadataService struct {
	extractor MetadataExtractor
	results   *cache.Cache
	logger    logger.ILogger
}

func NewMetadataService(extractor MetadataExtractor, resultTTL time.Duration, log logger.ILogger) IMetadataService {
	return &metadataService{
		extractor: extractor,
		results:   cache.New(resultTTL, 2*resultTTL),
		logger:    log,
	}
}

func (s *metadataService) Extract(ctx context.Context, req *dto.ExtractMetadataRequest) (*metadata.Metadata, error) {
	target, err := metadata.NormalizeURL(req.Url)
	if err != nil {
		return nil, serverutils.BadRequest(err.Error())
	}

	if cached, found := s.results.Get(target); found {
		return copyMetadata(cached.(*metadata.Metadata)), nil
	}

	md, err := s.extractor.Extract(ctx, target)
	if err != nil {
		s.logger.Warn("METADATA", "Extraction failed", map[string]interface{}{
			"url":   target,
			"error": err.Error(),
		})
		return nil, classifyExtractError(err)
	}

	s.results.SetDefault(target, md)
	s.logger.Info("METADATA", "Extracted page metadata", map[string]interface{}{
		"url":          md.URL,
		"content_type": md.ContentType,
		"has_doi":      md.Doi != "",
	})
	return copyMetadata(md), nil
}

func copyMetadata(md *metadata.Metadata) *metadata.Metadata {
	copied := *md
	copied.Authors = append([]string(nil), md.Authors...)
	return &copied
}

func classifyExtractError(err error) error {
	var statusErr *metadata.StatusError
	switch {
	case errors.Is(err, metadata.ErrInvalidURL), errors.Is(err, metadata.ErrUnsupportedScheme):
		return serverutils.BadRequest(err.Error())
	case errors.Is(err, metadata.ErrBlockedAddress):
		return serverutils.BadRequest("URL points to an address that cannot be fetched")
	case errors.As(err, &statusErr):
		return serverutils.WrapAppError(http.StatusBadGateway, "page answered with an error", err)
	case errors.Is(err, context.DeadlineExceeded):
		return serverutils.WrapAppError(http.StatusGatewayTimeout, "page took too long to answer", err)
	default:
		return serverutils.WrapAppError(http.StatusBadGateway, "failed to fetch page", err)
	}
}
