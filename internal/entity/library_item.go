package entity

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindSource    Kind = "sources"
	KindNote      Kind = "notes"
	KindReference Kind = "references"
	KindAnalysis  Kind = "analyses"
	KindDraft     Kind = "drafts"
)

// Kinds lists every library kind in import/export order.
var Kinds = []Kind{KindSource, KindNote, KindReference, KindAnalysis, KindDraft}

// LibraryItem is implemented by every saved record (pointer receivers).
type LibraryItem interface {
	GetId() uuid.UUID
	SetId(id uuid.UUID)
	GetUserId() uuid.UUID
	SetUserId(id uuid.UUID)
	GetCreatedAt() time.Time
	SetTimestamps(createdAt, updatedAt time.Time)
	GetUpdatedAt() time.Time
}

// Normalizer is implemented by items that derive fields before saving.
type Normalizer interface {
	Normalize()
}

// Record holds the columns every library table shares.
type Record struct {
	Id        uuid.UUID              `json:"id"`
	UserId    uuid.UUID              `json:"user_id"`
	Metadata  map[string]interface{} `json:"metadata"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

func (r *Record) GetId() uuid.UUID        { return r.Id }
func (r *Record) SetId(id uuid.UUID)      { r.Id = id }
func (r *Record) GetUserId() uuid.UUID    { return r.UserId }
func (r *Record) SetUserId(id uuid.UUID)  { r.UserId = id }
func (r *Record) GetCreatedAt() time.Time { return r.CreatedAt }
func (r *Record) GetUpdatedAt() time.Time { return r.UpdatedAt }

func (r *Record) SetTimestamps(createdAt, updatedAt time.Time) {
	r.CreatedAt = createdAt
	r.UpdatedAt = updatedAt
}

// ProtectedFields may never be changed by a patch.
var ProtectedFields = map[string]bool{
	"id":         true,
	"user_id":    true,
	"created_at": true,
	"updated_at": true,
}
