package unitofwork

import (
	"context"
	"errors"

	"research-library-be/internal/repository/contract"
	"research-library-be/internal/repository/implementation"

	"gorm.io/gorm"
)

var (
	ErrTxActive   = errors.New("transaction already started")
	ErrTxInactive = errors.New("no active transaction")
)

// UnitOfWorkImpl hands out gorm repositories bound to the open transaction,
// or to the plain connection when none is open.
type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{db: db}
}

func (u *UnitOfWorkImpl) conn() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return ErrTxActive
	}
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	u.tx = tx
	return nil
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return ErrTxInactive
	}
	tx := u.tx
	u.tx = nil
	return tx.Commit().Error
}

// Rollback is a no-op once the transaction is closed, so it can be deferred
// right after Begin.
func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return nil
	}
	tx := u.tx
	u.tx = nil
	return tx.Rollback().Error
}

func (u *UnitOfWorkImpl) SourceRepository() contract.SourceRepository {
	return implementation.NewSourceRepository(u.conn())
}

func (u *UnitOfWorkImpl) NoteRepository() contract.NoteRepository {
	return implementation.NewNoteRepository(u.conn())
}

func (u *UnitOfWorkImpl) ReferenceRepository() contract.ReferenceRepository {
	return implementation.NewReferenceRepository(u.conn())
}

func (u *UnitOfWorkImpl) AnalysisRepository() contract.AnalysisRepository {
	return implementation.NewAnalysisRepository(u.conn())
}

func (u *UnitOfWorkImpl) DraftRepository() contract.DraftRepository {
	return implementation.NewDraftRepository(u.conn())
}
