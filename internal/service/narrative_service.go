package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"research-library-be/internal/dto"
	"research-library-be/internal/entity"
	"research-library-be/internal/pkg/logger"
	"research-library-be/internal/pkg/serverutils"
	"research-library-be/pkg/library"
	"research-library-be/pkg/llm"
	"research-library-be/pkg/richtext"

	"github.com/google/uuid"
)

const (
	defaultNarrativeStyle = "academic"
	// Per-item cap so one long source cannot crowd the others out.
	narrativeItemChars = 4000
)

var narrativeStyles = map[string]string{
	"academic": "Write in a formal academic register with a clear thesis, structured paragraphs and in-text references to the sources by title.",
	"summary":  "Write a concise summary that captures the main findings and how they relate.",
	"essay":    "Write a flowing essay with an introduction, a developed argument and a conclusion.",
	"briefing": "Write a short briefing with a one-paragraph overview followed by key points.",
}

type INarrativeService interface {
	Generate(ctx context.Context, scope library.Scope, req *dto.GenerateNarrativeRequest) (*dto.GenerateNarrativeResponse, error)
}

type narrativeService struct {
	library   *library.Library
	llm       llm.LLMProvider
	maxTokens int
	logger    logger.ILogger
}

func NewNarrativeService(lib *library.Library, provider llm.LLMProvider, maxTokens int, log logger.ILogger) INarrativeService {
	return &narrativeService{
		library:   lib,
		llm:       provider,
		maxTokens: maxTokens,
		logger:    log,
	}
}

func (s *narrativeService) Generate(ctx context.Context, scope library.Scope, req *dto.GenerateNarrativeRequest) (*dto.GenerateNarrativeResponse, error) {
	if len(req.SourceIds)+len(req.NoteIds)+len(req.AnalysisIds) == 0 {
		return nil, serverutils.BadRequest("select at least one source, note or analysis")
	}

	sources, err := loadAll(ctx, s.library.Sources, scope, req.SourceIds)
	if err != nil {
		return nil, err
	}
	notes, err := loadAll(ctx, s.library.Notes, scope, req.NoteIds)
	if err != nil {
		return nil, err
	}
	analyses, err := loadAll(ctx, s.library.Analyses, scope, req.AnalysisIds)
	if err != nil {
		return nil, err
	}
	if len(sources)+len(notes)+len(analyses) == 0 {
		return nil, serverutils.BadRequest("none of the selected items exist in your library")
	}

	style := req.Style
	if style == "" {
		style = defaultNarrativeStyle
	}

	prompt := buildNarrativePrompt(req, style, sources, notes, analyses)
	opts := []llm.Option{llm.WithTemperature(0.4)}
	if s.maxTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(s.maxTokens))
	}

	narrative, err := s.llm.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: "You are a research assistant who turns a scholar's saved material into coherent prose. Use only the material provided."},
		{Role: llm.RoleUser, Content: prompt},
	}, opts...)
	if err != nil {
		s.logger.Error("NARRATIVE", "LLM generation failed", map[string]interface{}{
			"scope": scope.String(),
			"model": s.llm.ModelName(),
			"error": err.Error(),
		})
		return nil, serverutils.WrapAppError(http.StatusBadGateway, "narrative generation failed", err)
	}

	s.logger.Info("NARRATIVE", "Generated narrative", map[string]interface{}{
		"scope":    scope.String(),
		"style":    style,
		"sources":  len(sources),
		"notes":    len(notes),
		"analyses": len(analyses),
	})

	return &dto.GenerateNarrativeResponse{
		Narrative: strings.TrimSpace(narrative),
		Model:     s.llm.ModelName(),
		Style:     style,
		Used: dto.NarrativeUsage{
			Sources:  len(sources),
			Notes:    len(notes),
			Analyses: len(analyses),
		},
	}, nil
}

// loadAll reads the given ids in order, skipping those not in the library.
func loadAll[T entity.LibraryItem](ctx context.Context, p *library.Provider[T], scope library.Scope, ids []uuid.UUID) ([]T, error) {
	var zero T
	items := make([]T, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		item, err := p.Get(ctx, scope, id)
		if err != nil {
			return nil, err
		}
		if any(item) == any(zero) {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func buildNarrativePrompt(req *dto.GenerateNarrativeRequest, style string, sources []*entity.Source, notes []*entity.Note, analyses []*entity.Analysis) string {
	var b strings.Builder

	if req.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", req.Title)
	}
	fmt.Fprintf(&b, "Style: %s\n%s\n", style, narrativeStyles[style])
	if req.Instructions != "" {
		fmt.Fprintf(&b, "Additional instructions: %s\n", req.Instructions)
	}

	if len(sources) > 0 {
		b.WriteString("\n## Sources\n")
		for i, src := range sources {
			fmt.Fprintf(&b, "\n[S%d] %s", i+1, src.Title)
			if len(src.Authors) > 0 {
				fmt.Fprintf(&b, " by %s", strings.Join(src.Authors, ", "))
			}
			if src.PublishedAt != "" {
				fmt.Fprintf(&b, " (%s)", src.PublishedAt)
			}
			b.WriteString("\n")
			if src.Description != "" {
				fmt.Fprintf(&b, "Description: %s\n", src.Description)
			}
			if body := flatten(src.Content); body != "" {
				b.WriteString(body + "\n")
			}
		}
	}

	if len(notes) > 0 {
		b.WriteString("\n## Notes\n")
		for i, n := range notes {
			title := n.Title
			if title == "" {
				title = "Untitled note"
			}
			fmt.Fprintf(&b, "\n[N%d] %s\n%s\n", i+1, title, flatten(n.Content))
		}
	}

	if len(analyses) > 0 {
		b.WriteString("\n## Analyses\n")
		for i, a := range analyses {
			fmt.Fprintf(&b, "\n[A%d] %s (%s)\n%s\n", i+1, a.Title, a.AnalysisType, flatten(a.Content))
		}
	}

	b.WriteString("\nWrite the narrative now. Cite material with its bracketed label, e.g. [S1].")
	return b.String()
}

func flatten(content string) string {
	text := strings.TrimSpace(richtext.PlainText(content))
	runes := []rune(text)
	if len(runes) > narrativeItemChars {
		return string(runes[:narrativeItemChars]) + "..."
	}
	return text
}
