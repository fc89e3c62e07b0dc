package specification

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByID filters by ID
type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

func (s ByID) Matches(row map[string]interface{}) bool {
	return sameValue(row["id"], s.ID)
}

// ByIDs filters by a list of IDs
type ByIDs struct {
	IDs []uuid.UUID
}

func (s ByIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id IN ?", s.IDs)
}

func (s ByIDs) Matches(row map[string]interface{}) bool {
	for _, id := range s.IDs {
		if sameValue(row["id"], id) {
			return true
		}
	}
	return false
}

// UserOwnedBy scopes a query to one owner
type UserOwnedBy struct {
	UserID uuid.UUID
}

func (s UserOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

func (s UserOwnedBy) Matches(row map[string]interface{}) bool {
	return sameValue(row["user_id"], s.UserID)
}

// OrderBy applies ordering
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", s.Field, direction))
}

// Pagination
type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.Limit).Offset(s.Offset)
}

// FilterBy Generic equality filter
type FilterBy struct {
	Field string
	Value interface{}
}

func (s FilterBy) Apply(db *gorm.DB) *gorm.DB {
	query := fmt.Sprintf("%s = ?", s.Field)
	return db.Where(query, s.Value)
}

func (s FilterBy) Matches(row map[string]interface{}) bool {
	return sameValue(row[s.Field], s.Value)
}

func Filter(field string, value interface{}) Specification {
	return FilterBy{Field: field, Value: value}
}

// sameValue compares a decoded JSON value with a Go filter value by their
// printed form, which lines up uuid strings and float64 numbers.
func sameValue(rowValue, want interface{}) bool {
	if p, ok := want.(*uuid.UUID); ok {
		if p == nil {
			return rowValue == nil
		}
		want = *p
	}
	if rowValue == nil || want == nil {
		return rowValue == nil && want == nil
	}
	return fmt.Sprint(rowValue) == fmt.Sprint(want)
}
