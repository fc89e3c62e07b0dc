package entity

import "github.com/google/uuid"

type Reference struct {
	Record
	Title         string     `json:"title" validate:"required,max=500"`
	Authors       []string   `json:"authors"`
	Year          int        `json:"year" validate:"omitempty,min=0,max=3000"`
	Doi           string     `json:"doi"`
	Url           string     `json:"url" validate:"omitempty,url"`
	Citation      string     `json:"citation"`
	CitationStyle string     `json:"citation_style" validate:"omitempty,oneof=apa mla chicago harvard ieee"`
	SourceId      *uuid.UUID `json:"source_id"`
}

func (r *Reference) Normalize() {
	if r.CitationStyle == "" {
		r.CitationStyle = "apa"
	}
	if r.Authors == nil {
		r.Authors = []string{}
	}
	if r.SourceId != nil && *r.SourceId == uuid.Nil {
		r.SourceId = nil
	}
}

func NewReference() *Reference { return &Reference{} }

var _ LibraryItem = (*Reference)(nil)
