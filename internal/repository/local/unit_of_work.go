package local

import (
	"context"

	"research-library-be/internal/repository/contract"
	"research-library-be/internal/repository/unitofwork"

	"github.com/dgraph-io/badger/v4"
)

// UnitOfWork runs guest store repositories inside one badger transaction
// between Begin and Commit, and in per-call transactions otherwise.
type UnitOfWork struct {
	db  *badger.DB
	txn *badger.Txn
}

func NewUnitOfWork(db *badger.DB) unitofwork.UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.txn != nil {
		return unitofwork.ErrTxActive
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	u.txn = u.db.NewTransaction(true)
	return nil
}

func (u *UnitOfWork) Commit() error {
	if u.txn == nil {
		return unitofwork.ErrTxInactive
	}
	txn := u.txn
	u.txn = nil
	return txn.Commit()
}

// Rollback discards the open transaction; it does nothing after Commit.
func (u *UnitOfWork) Rollback() error {
	if u.txn == nil {
		return nil
	}
	u.txn.Discard()
	u.txn = nil
	return nil
}

func (u *UnitOfWork) SourceRepository() contract.SourceRepository {
	return NewSourceRepository(u.db, u.txn)
}

func (u *UnitOfWork) NoteRepository() contract.NoteRepository {
	return NewNoteRepository(u.db, u.txn)
}

func (u *UnitOfWork) ReferenceRepository() contract.ReferenceRepository {
	return NewReferenceRepository(u.db, u.txn)
}

func (u *UnitOfWork) AnalysisRepository() contract.AnalysisRepository {
	return NewAnalysisRepository(u.db, u.txn)
}

func (u *UnitOfWork) DraftRepository() contract.DraftRepository {
	return NewDraftRepository(u.db, u.txn)
}

type RepositoryFactory struct {
	db *badger.DB
}

func NewRepositoryFactory(db *badger.DB) unitofwork.RepositoryFactory {
	return &RepositoryFactory{db: db}
}

func (f *RepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return NewUnitOfWork(f.db)
}
