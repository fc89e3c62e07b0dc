package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"research-library-be/internal/entity"
	"research-library-be/internal/repository/contract"
	"research-library-be/internal/repository/specification"
	"research-library-be/internal/repository/unitofwork"
	"research-library-be/pkg/richtext"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// bodyField is rendered as the markdown body; every other field goes to
// the front matter.
const bodyField = "content"

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// Markdown serializes an item as YAML front matter followed by its content
// converted to markdown.
func Markdown(item entity.LibraryItem) ([]byte, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	fields := map[string]interface{}{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	body, _ := fields[bodyField].(string)
	delete(fields, bodyField)

	var buf bytes.Buffer
	buf.WriteString("---\n")
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(fields); err != nil {
		return nil, err
	}
	encoder.Close()
	buf.WriteString("---\n")

	if body != "" {
		buf.WriteString("\n")
		buf.WriteString(strings.TrimSpace(richtext.Markdown(body)))
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// FileName is "<slug>-<short id>.md"; the id suffix keeps equal titles apart.
func FileName(title string, id uuid.UUID) string {
	slug := strings.Trim(slugUnsafe.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if len(slug) > 60 {
		slug = strings.TrimRight(slug[:60], "-")
	}
	if slug == "" {
		slug = "untitled"
	}
	return fmt.Sprintf("%s-%s.md", slug, id.String()[:8])
}

// Library writes every item the owner has into dir/<kind>/ and returns how
// many files were written per kind.
func Library(ctx context.Context, uow unitofwork.UnitOfWork, owner uuid.UUID, dir string) (map[entity.Kind]int, error) {
	counts := map[entity.Kind]int{}
	steps := []struct {
		kind entity.Kind
		run  func(string) (int, error)
	}{
		{entity.KindSource, func(d string) (int, error) {
			return writeKind(ctx, uow.SourceRepository(), owner, d, func(s *entity.Source) string { return s.Title })
		}},
		{entity.KindNote, func(d string) (int, error) {
			return writeKind(ctx, uow.NoteRepository(), owner, d, func(n *entity.Note) string { return n.Title })
		}},
		{entity.KindReference, func(d string) (int, error) {
			return writeKind(ctx, uow.ReferenceRepository(), owner, d, func(r *entity.Reference) string { return r.Title })
		}},
		{entity.KindAnalysis, func(d string) (int, error) {
			return writeKind(ctx, uow.AnalysisRepository(), owner, d, func(a *entity.Analysis) string { return a.Title })
		}},
		{entity.KindDraft, func(d string) (int, error) {
			return writeKind(ctx, uow.DraftRepository(), owner, d, func(dr *entity.Draft) string { return dr.Title })
		}},
	}

	for _, step := range steps {
		n, err := step.run(filepath.Join(dir, string(step.kind)))
		if err != nil {
			return counts, fmt.Errorf("export %s: %w", step.kind, err)
		}
		counts[step.kind] = n
	}
	return counts, nil
}

func writeKind[T entity.LibraryItem](ctx context.Context, repo contract.LibraryRepository[T], owner uuid.UUID, dir string, title func(T) string) (int, error) {
	items, err := repo.FindAll(ctx, specification.UserOwnedBy{UserID: owner})
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}

	for _, item := range items {
		data, err := Markdown(item)
		if err != nil {
			return 0, err
		}
		path := filepath.Join(dir, FileName(title(item), item.GetId()))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return 0, err
		}
	}
	return len(items), nil
}
