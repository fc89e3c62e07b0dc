package mapper

import (
	"time"

	"research-library-be/internal/entity"
	"research-library-be/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Mapper converts between a domain entity pointer E and its gorm row M.
type Mapper[E entity.LibraryItem, M any] interface {
	ToEntity(m *M) E
	ToModel(e E) *M
}

func record(id, userId uuid.UUID, metadata datatypes.JSONMap, createdAt, updatedAt time.Time) entity.Record {
	md := map[string]interface{}(metadata)
	if md == nil {
		md = map[string]interface{}{}
	}
	return entity.Record{
		Id:        id,
		UserId:    userId,
		Metadata:  md,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

func stringsOrEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// Sources

type SourceMapper struct{}

func NewSourceMapper() *SourceMapper {
	return &SourceMapper{}
}

func (m *SourceMapper) ToEntity(s *model.Source) *entity.Source {
	if s == nil {
		return nil
	}
	return &entity.Source{
		Record:      record(s.Id, s.UserId, s.Metadata, s.CreatedAt, s.UpdatedAt),
		Title:       s.Title,
		Url:         s.Url,
		SourceType:  s.SourceType,
		Authors:     stringsOrEmpty(s.Authors),
		Publisher:   s.Publisher,
		PublishedAt: s.PublishedAt,
		Description: s.Description,
		Content:     s.Content,
	}
}

func (m *SourceMapper) ToModel(s *entity.Source) *model.Source {
	if s == nil {
		return nil
	}
	return &model.Source{
		Id:          s.Id,
		UserId:      s.UserId,
		Title:       s.Title,
		Url:         s.Url,
		SourceType:  s.SourceType,
		Authors:     datatypes.JSONSlice[string](stringsOrEmpty(s.Authors)),
		Publisher:   s.Publisher,
		PublishedAt: s.PublishedAt,
		Description: s.Description,
		Content:     s.Content,
		Metadata:    datatypes.JSONMap(s.Metadata),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// Notes

type NoteMapper struct{}

func NewNoteMapper() *NoteMapper {
	return &NoteMapper{}
}

func (m *NoteMapper) ToEntity(n *model.Note) *entity.Note {
	if n == nil {
		return nil
	}
	return &entity.Note{
		Record:   record(n.Id, n.UserId, n.Metadata, n.CreatedAt, n.UpdatedAt),
		Title:    n.Title,
		Content:  n.Content,
		SourceId: n.SourceId,
		Tags:     stringsOrEmpty(n.Tags),
	}
}

func (m *NoteMapper) ToModel(n *entity.Note) *model.Note {
	if n == nil {
		return nil
	}
	return &model.Note{
		Id:        n.Id,
		UserId:    n.UserId,
		Title:     n.Title,
		Content:   n.Content,
		SourceId:  n.SourceId,
		Tags:      datatypes.JSONSlice[string](stringsOrEmpty(n.Tags)),
		Metadata:  datatypes.JSONMap(n.Metadata),
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

// References

type ReferenceMapper struct{}

func NewReferenceMapper() *ReferenceMapper {
	return &ReferenceMapper{}
}

func (m *ReferenceMapper) ToEntity(r *model.Reference) *entity.Reference {
	if r == nil {
		return nil
	}
	return &entity.Reference{
		Record:        record(r.Id, r.UserId, r.Metadata, r.CreatedAt, r.UpdatedAt),
		Title:         r.Title,
		Authors:       stringsOrEmpty(r.Authors),
		Year:          r.Year,
		Doi:           r.Doi,
		Url:           r.Url,
		Citation:      r.Citation,
		CitationStyle: r.CitationStyle,
		SourceId:      r.SourceId,
	}
}

func (m *ReferenceMapper) ToModel(r *entity.Reference) *model.Reference {
	if r == nil {
		return nil
	}
	return &model.Reference{
		Id:            r.Id,
		UserId:        r.UserId,
		Title:         r.Title,
		Authors:       datatypes.JSONSlice[string](stringsOrEmpty(r.Authors)),
		Year:          r.Year,
		Doi:           r.Doi,
		Url:           r.Url,
		Citation:      r.Citation,
		CitationStyle: r.CitationStyle,
		SourceId:      r.SourceId,
		Metadata:      datatypes.JSONMap(r.Metadata),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// Analyses

type AnalysisMapper struct{}

func NewAnalysisMapper() *AnalysisMapper {
	return &AnalysisMapper{}
}

func (m *AnalysisMapper) ToEntity(a *model.Analysis) *entity.Analysis {
	if a == nil {
		return nil
	}
	sourceIds := []uuid.UUID(a.SourceIds)
	if sourceIds == nil {
		sourceIds = []uuid.UUID{}
	}
	return &entity.Analysis{
		Record:       record(a.Id, a.UserId, a.Metadata, a.CreatedAt, a.UpdatedAt),
		Title:        a.Title,
		AnalysisType: a.AnalysisType,
		Content:      a.Content,
		SourceIds:    sourceIds,
	}
}

func (m *AnalysisMapper) ToModel(a *entity.Analysis) *model.Analysis {
	if a == nil {
		return nil
	}
	return &model.Analysis{
		Id:           a.Id,
		UserId:       a.UserId,
		Title:        a.Title,
		AnalysisType: a.AnalysisType,
		Content:      a.Content,
		SourceIds:    datatypes.JSONSlice[uuid.UUID](a.SourceIds),
		Metadata:     datatypes.JSONMap(a.Metadata),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// Drafts

type DraftMapper struct{}

func NewDraftMapper() *DraftMapper {
	return &DraftMapper{}
}

func (m *DraftMapper) ToEntity(d *model.Draft) *entity.Draft {
	if d == nil {
		return nil
	}
	return &entity.Draft{
		Record:    record(d.Id, d.UserId, d.Metadata, d.CreatedAt, d.UpdatedAt),
		Title:     d.Title,
		Content:   d.Content,
		Status:    d.Status,
		WordCount: d.WordCount,
	}
}

func (m *DraftMapper) ToModel(d *entity.Draft) *model.Draft {
	if d == nil {
		return nil
	}
	return &model.Draft{
		Id:        d.Id,
		UserId:    d.UserId,
		Title:     d.Title,
		Content:   d.Content,
		Status:    d.Status,
		WordCount: d.WordCount,
		Metadata:  datatypes.JSONMap(d.Metadata),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
