package implementation

import (
	"context"
	"errors"

	"research-library-be/internal/entity"
	"research-library-be/internal/mapper"
	"research-library-be/internal/model"
	"research-library-be/internal/repository/contract"
	"research-library-be/internal/repository/scope"
	"research-library-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LibraryRepositoryImpl[E entity.LibraryItem, M any] struct {
	db     *gorm.DB
	mapper mapper.Mapper[E, M]
}

func NewLibraryRepository[E entity.LibraryItem, M any](db *gorm.DB, m mapper.Mapper[E, M]) contract.LibraryRepository[E] {
	return &LibraryRepositoryImpl[E, M]{
		db:     db,
		mapper: m,
	}
}

func NewSourceRepository(db *gorm.DB) contract.SourceRepository {
	return NewLibraryRepository[*entity.Source, model.Source](db, mapper.NewSourceMapper())
}

func NewNoteRepository(db *gorm.DB) contract.NoteRepository {
	return NewLibraryRepository[*entity.Note, model.Note](db, mapper.NewNoteMapper())
}

func NewReferenceRepository(db *gorm.DB) contract.ReferenceRepository {
	return NewLibraryRepository[*entity.Reference, model.Reference](db, mapper.NewReferenceMapper())
}

func NewAnalysisRepository(db *gorm.DB) contract.AnalysisRepository {
	return NewLibraryRepository[*entity.Analysis, model.Analysis](db, mapper.NewAnalysisMapper())
}

func NewDraftRepository(db *gorm.DB) contract.DraftRepository {
	return NewLibraryRepository[*entity.Draft, model.Draft](db, mapper.NewDraftMapper())
}

func (r *LibraryRepositoryImpl[E, M]) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// Upsert inserts the row or overwrites every column of an existing one.
// Timestamps are taken from the item as-is.
func (r *LibraryRepositoryImpl[E, M]) Upsert(ctx context.Context, item E) error {
	m := r.mapper.ToModel(item)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(m).Error
}

func (r *LibraryRepositoryImpl[E, M]) Delete(ctx context.Context, specs ...specification.Specification) error {
	if len(specs) == 0 {
		return contract.ErrUnscopedDelete
	}
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	return query.Delete(new(M)).Error
}

func (r *LibraryRepositoryImpl[E, M]) FindOne(ctx context.Context, specs ...specification.Specification) (E, error) {
	var zero E
	var m M
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, nil
		}
		return zero, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *LibraryRepositoryImpl[E, M]) FindAll(ctx context.Context, specs ...specification.Specification) ([]E, error) {
	var models []*M
	query := r.applySpecifications(r.db.WithContext(ctx).Scopes(scope.OrderByUpdatedDesc), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]E, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *LibraryRepositoryImpl[E, M]) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(new(M)), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
