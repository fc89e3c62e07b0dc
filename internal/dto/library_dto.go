package dto

import "github.com/google/uuid"

type ListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func NewListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Count: len(items)}
}

type DeleteResponse struct {
	Id uuid.UUID `json:"id"`
}

// ImportResponse counts per kind ("sources", "notes", ...).
type ImportResponse struct {
	Imported map[string]int `json:"imported"`
	Skipped  map[string]int `json:"skipped"`
}

// EnrichSourceMessage asks the enrichment worker to fill in a source's metadata.
type EnrichSourceMessage struct {
	SourceId uuid.UUID `json:"source_id"`
	OwnerId  uuid.UUID `json:"owner_id"`
	Mode     string    `json:"mode"`
	Url      string    `json:"url"`
}
