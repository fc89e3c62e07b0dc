package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Library tables share id/user_id/metadata/timestamps. Ids and timestamps are
// assigned by the application so rows can move between the guest store and
// Postgres unchanged.

type Source struct {
	Id          uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	UserId      uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Title       string                      `gorm:"type:varchar(500);not null"`
	Url         string                      `gorm:"type:text"`
	SourceType  string                      `gorm:"type:varchar(32);not null;default:'web'"`
	Authors     datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Publisher   string                      `gorm:"type:varchar(255)"`
	PublishedAt string                      `gorm:"type:varchar(64)"`
	Description string                      `gorm:"type:text"`
	Content     string                      `gorm:"type:text"`
	Metadata    datatypes.JSONMap           `gorm:"type:jsonb"`
	CreatedAt   time.Time                   `gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time                   `gorm:"autoUpdateTime:false;index"`
}

func (Source) TableName() string {
	return "sources"
}

type Note struct {
	Id        uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	UserId    uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Title     string                      `gorm:"type:varchar(500)"`
	Content   string                      `gorm:"type:text"`
	SourceId  *uuid.UUID                  `gorm:"type:uuid;index"`
	Tags      datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Metadata  datatypes.JSONMap           `gorm:"type:jsonb"`
	CreatedAt time.Time                   `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time                   `gorm:"autoUpdateTime:false;index"`
}

func (Note) TableName() string {
	return "notes"
}

type Reference struct {
	Id            uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	UserId        uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Title         string                      `gorm:"type:varchar(500);not null"`
	Authors       datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Year          int
	Doi           string            `gorm:"type:varchar(255);index"`
	Url           string            `gorm:"type:text"`
	Citation      string            `gorm:"type:text"`
	CitationStyle string            `gorm:"type:varchar(16);not null;default:'apa'"`
	SourceId      *uuid.UUID        `gorm:"type:uuid;index"`
	Metadata      datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt     time.Time         `gorm:"autoCreateTime:false"`
	UpdatedAt     time.Time         `gorm:"autoUpdateTime:false;index"`
}

func (Reference) TableName() string {
	return "library_references"
}

type Analysis struct {
	Id           uuid.UUID                      `gorm:"type:uuid;primaryKey"`
	UserId       uuid.UUID                      `gorm:"type:uuid;not null;index"`
	Title        string                         `gorm:"type:varchar(500);not null"`
	AnalysisType string                         `gorm:"type:varchar(32);not null;default:'other'"`
	Content      string                         `gorm:"type:text"`
	SourceIds    datatypes.JSONSlice[uuid.UUID] `gorm:"type:jsonb"`
	Metadata     datatypes.JSONMap              `gorm:"type:jsonb"`
	CreatedAt    time.Time                      `gorm:"autoCreateTime:false"`
	UpdatedAt    time.Time                      `gorm:"autoUpdateTime:false;index"`
}

func (Analysis) TableName() string {
	return "analyses"
}

type Draft struct {
	Id        uuid.UUID         `gorm:"type:uuid;primaryKey"`
	UserId    uuid.UUID         `gorm:"type:uuid;not null;index"`
	Title     string            `gorm:"type:varchar(500);not null"`
	Content   string            `gorm:"type:text"`
	Status    string            `gorm:"type:varchar(16);not null;default:'draft'"`
	WordCount int               `gorm:"not null;default:0"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt time.Time         `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime:false;index"`
}

func (Draft) TableName() string {
	return "drafts"
}

// LibraryModels is the AutoMigrate set.
func LibraryModels() []interface{} {
	return []interface{}{&Source{}, &Note{}, &Reference{}, &Analysis{}, &Draft{}}
}
