package entity

import "github.com/google/uuid"

type Analysis struct {
	Record
	Title        string      `json:"title" validate:"required,max=500"`
	AnalysisType string      `json:"analysis_type" validate:"omitempty,oneof=summary comparison thematic critique other"`
	Content      string      `json:"content"`
	SourceIds    []uuid.UUID `json:"source_ids"`
}

func (a *Analysis) Normalize() {
	if a.AnalysisType == "" {
		a.AnalysisType = "other"
	}
	if a.SourceIds == nil {
		a.SourceIds = []uuid.UUID{}
	}
}

func NewAnalysis() *Analysis { return &Analysis{} }

var _ LibraryItem = (*Analysis)(nil)
