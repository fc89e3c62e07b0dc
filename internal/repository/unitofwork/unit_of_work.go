package unitofwork

import (
	"context"

	"research-library-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SourceRepository() contract.SourceRepository
	NoteRepository() contract.NoteRepository
	ReferenceRepository() contract.ReferenceRepository
	AnalysisRepository() contract.AnalysisRepository
	DraftRepository() contract.DraftRepository
}
