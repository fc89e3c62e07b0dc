package unitofwork

import (
	"context"

	"gorm.io/gorm"
)

// gormFactory opens units of work against the persistent database.
type gormFactory struct {
	db *gorm.DB
}

func NewRepositoryFactory(db *gorm.DB) RepositoryFactory {
	return &gormFactory{db: db}
}

// NewUnitOfWork is cheap; ctx is bound by Begin.
func (f *gormFactory) NewUnitOfWork(_ context.Context) UnitOfWork {
	return NewUnitOfWork(f.db)
}
