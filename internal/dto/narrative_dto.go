package dto

import "github.com/google/uuid"

type GenerateNarrativeRequest struct {
	Title        string      `json:"title" validate:"max=500"`
	Style        string      `json:"style" validate:"omitempty,oneof=academic summary essay briefing"`
	SourceIds    []uuid.UUID `json:"source_ids" validate:"max=50"`
	NoteIds      []uuid.UUID `json:"note_ids" validate:"max=100"`
	AnalysisIds  []uuid.UUID `json:"analysis_ids" validate:"max=50"`
	Instructions string      `json:"instructions" validate:"max=2000"`
}

type NarrativeUsage struct {
	Sources  int `json:"sources"`
	Notes    int `json:"notes"`
	Analyses int `json:"analyses"`
}

type GenerateNarrativeResponse struct {
	Narrative string         `json:"narrative"`
	Model     string         `json:"model"`
	Style     string         `json:"style"`
	Used      NarrativeUsage `json:"used"`
}
