package entity

import "github.com/google/uuid"

type Note struct {
	Record
	Title    string     `json:"title" validate:"max=500"`
	Content  string     `json:"content" validate:"required"`
	SourceId *uuid.UUID `json:"source_id"`
	Tags     []string   `json:"tags"`
}

func (n *Note) Normalize() {
	if n.Tags == nil {
		n.Tags = []string{}
	}
	if n.SourceId != nil && *n.SourceId == uuid.Nil {
		n.SourceId = nil
	}
}

func NewNote() *Note { return &Note{} }

var _ LibraryItem = (*Note)(nil)
