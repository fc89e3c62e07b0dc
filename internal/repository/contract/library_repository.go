package contract

import (
	"context"
	"errors"

	"research-library-be/internal/entity"
	"research-library-be/internal/repository/specification"
)

// ErrUnscopedDelete guards against deleting a whole table by accident.
var ErrUnscopedDelete = errors.New("delete requires at least one filter")

// LibraryRepository is the select/upsert/delete surface shared by the hosted
// backend and the guest store. FindOne returns a nil item when nothing matches.
type LibraryRepository[T entity.LibraryItem] interface {
	Upsert(ctx context.Context, item T) error
	Delete(ctx context.Context, specs ...specification.Specification) error
	FindOne(ctx context.Context, specs ...specification.Specification) (T, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]T, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type SourceRepository = LibraryRepository[*entity.Source]
type NoteRepository = LibraryRepository[*entity.Note]
type ReferenceRepository = LibraryRepository[*entity.Reference]
type AnalysisRepository = LibraryRepository[*entity.Analysis]
type DraftRepository = LibraryRepository[*entity.Draft]
