package entity

import (
	"strings"

	"research-library-be/pkg/richtext"
)

type Draft struct {
	Record
	Title     string `json:"title" validate:"required,max=500"`
	Content   string `json:"content"`
	Status    string `json:"status" validate:"omitempty,oneof=draft review final"`
	WordCount int    `json:"word_count"`
}

// Normalize derives the word count from the flattened content.
func (d *Draft) Normalize() {
	if d.Status == "" {
		d.Status = "draft"
	}
	d.WordCount = len(strings.Fields(richtext.PlainText(d.Content)))
}

func NewDraft() *Draft { return &Draft{} }

var _ LibraryItem = (*Draft)(nil)
