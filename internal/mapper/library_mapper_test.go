package mapper

import (
	"testing"
	"time"

	"research-library-be/internal/entity"
	"research-library-be/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceMapper_RoundTrip(t *testing.T) {
	m := NewSourceMapper()
	now := time.Now().UTC().Truncate(time.Second)

	src := &entity.Source{
		Record: entity.Record{
			Id:        uuid.New(),
			UserId:    uuid.New(),
			Metadata:  map[string]interface{}{"doi": "10.1000/xyz"},
			CreatedAt: now,
			UpdatedAt: now,
		},
		Title:   "On Sleep",
		Url:     "https://example.org/sleep",
		Authors: []string{"A. Author"},
	}

	back := m.ToEntity(m.ToModel(src))
	assert.Equal(t, src, back)
}

func TestNoteMapper_NilCollections(t *testing.T) {
	m := NewNoteMapper()
	n := m.ToEntity(&model.Note{Id: uuid.New(), Content: "x"})

	require.NotNil(t, n)
	assert.Equal(t, []string{}, n.Tags)
	assert.Equal(t, map[string]interface{}{}, n.Metadata)
	assert.Nil(t, n.SourceId)

	assert.Nil(t, m.ToEntity(nil))
	assert.Nil(t, m.ToModel(nil))
}

func TestAnalysisMapper_SourceIds(t *testing.T) {
	m := NewAnalysisMapper()
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	row := m.ToModel(&entity.Analysis{Title: "cmp", SourceIds: ids})
	assert.Len(t, row.SourceIds, 2)

	back := m.ToEntity(row)
	assert.Equal(t, ids, back.SourceIds)

	empty := m.ToEntity(&model.Analysis{})
	assert.Equal(t, []uuid.UUID{}, empty.SourceIds)
}
