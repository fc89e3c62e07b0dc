package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BySourceID selects notes/references softly linked to a source.
type BySourceID struct {
	SourceID uuid.UUID
}

func (s BySourceID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source_id = ?", s.SourceID)
}

func (s BySourceID) Matches(row map[string]interface{}) bool {
	return sameValue(row["source_id"], s.SourceID)
}
