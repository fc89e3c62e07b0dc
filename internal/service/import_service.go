package service

import (
	"context"
	"fmt"
	"time"

	"research-library-be/internal/dto"
	"research-library-be/internal/entity"
	"research-library-be/internal/pkg/logger"
	"research-library-be/internal/repository/contract"
	"research-library-be/internal/repository/specification"
	"research-library-be/internal/repository/unitofwork"
	"research-library-be/pkg/library"

	"github.com/google/uuid"
)

type IImportService interface {
	ImportGuestLibrary(ctx context.Context, userId, guestId uuid.UUID) (*dto.ImportResponse, error)
}

type importService struct {
	local      unitofwork.RepositoryFactory
	persistent unitofwork.RepositoryFactory
	library    *library.Library
	notifier   library.Notifier
	logger     logger.ILogger
}

func NewImportService(
	local unitofwork.RepositoryFactory,
	persistent unitofwork.RepositoryFactory,
	lib *library.Library,
	notifier library.Notifier,
	log logger.ILogger,
) IImportService {
	return &importService{
		local:      local,
		persistent: persistent,
		library:    lib,
		notifier:   notifier,
		logger:     log,
	}
}

// moved lists, per kind, the guest ids now owned by the user.
type moved map[entity.Kind][]uuid.UUID

// ImportGuestLibrary copies every guest item into the user's library, keeping
// ids and timestamps, then removes the guest copies. An id that already
// belongs to another user is skipped and left in the guest store. Running it
// again finds nothing to move.
func (s *importService) ImportGuestLibrary(ctx context.Context, userId, guestId uuid.UUID) (*dto.ImportResponse, error) {
	if s.persistent == nil {
		return nil, fmt.Errorf("%w: %s", library.ErrModeUnavailable, library.ModePersistent)
	}

	resp := &dto.ImportResponse{
		Imported: map[string]int{},
		Skipped:  map[string]int{},
	}

	guestUow := s.local.NewUnitOfWork(ctx)
	userUow := s.persistent.NewUnitOfWork(ctx)

	if err := userUow.Begin(ctx); err != nil {
		return nil, s.fail("begin persistent transaction", userId, guestId, err)
	}
	defer userUow.Rollback()

	done := moved{}
	steps := []func() error{
		func() error {
			return importKind(ctx, entity.KindSource, guestUow.SourceRepository(), userUow.SourceRepository(), userId, guestId, resp, done)
		},
		func() error {
			return importKind(ctx, entity.KindNote, guestUow.NoteRepository(), userUow.NoteRepository(), userId, guestId, resp, done)
		},
		func() error {
			return importKind(ctx, entity.KindReference, guestUow.ReferenceRepository(), userUow.ReferenceRepository(), userId, guestId, resp, done)
		},
		func() error {
			return importKind(ctx, entity.KindAnalysis, guestUow.AnalysisRepository(), userUow.AnalysisRepository(), userId, guestId, resp, done)
		},
		func() error {
			return importKind(ctx, entity.KindDraft, guestUow.DraftRepository(), userUow.DraftRepository(), userId, guestId, resp, done)
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, s.fail("copy guest items", userId, guestId, err)
		}
	}

	if err := userUow.Commit(); err != nil {
		return nil, s.fail("commit persistent transaction", userId, guestId, err)
	}

	// The user's copy is committed; a failure from here on leaves duplicates
	// in the guest store, which the next import skips over as already owned.
	if err := s.removeGuestCopies(ctx, guestId, done); err != nil {
		s.logger.Error("IMPORT", "Failed to remove imported guest items", map[string]interface{}{
			"user_id":  userId.String(),
			"guest_id": guestId.String(),
			"error":    err.Error(),
		})
	}

	userScope := library.Persistent(userId)
	guestScope := library.Local(guestId)
	s.library.Invalidate(userScope)
	s.library.Invalidate(guestScope)

	now := time.Now().UTC()
	for kind, ids := range done {
		for _, id := range ids {
			s.notifier.Notify(ctx, library.Change{
				Kind:    kind,
				Action:  library.ActionImported,
				ItemID:  id,
				OwnerID: userId,
				Mode:    library.ModePersistent,
				At:      now,
			})
		}
	}

	s.logger.Info("IMPORT", "Guest library imported", map[string]interface{}{
		"user_id":  userId.String(),
		"guest_id": guestId.String(),
		"imported": resp.Imported,
		"skipped":  resp.Skipped,
	})
	return resp, nil
}

func importKind[T entity.LibraryItem](
	ctx context.Context,
	kind entity.Kind,
	from contract.LibraryRepository[T],
	to contract.LibraryRepository[T],
	userId, guestId uuid.UUID,
	resp *dto.ImportResponse,
	done moved,
) error {
	items, err := from.FindAll(ctx, specification.UserOwnedBy{UserID: guestId})
	if err != nil {
		return err
	}

	imported, skipped := 0, 0
	for _, item := range items {
		existing, err := to.FindOne(ctx, specification.ByID{ID: item.GetId()})
		if err != nil {
			return err
		}
		var zero T
		if any(existing) != any(zero) && existing.GetUserId() != userId {
			skipped++
			continue
		}

		item.SetUserId(userId)
		if err := to.Upsert(ctx, item); err != nil {
			return err
		}
		done[kind] = append(done[kind], item.GetId())
		imported++
	}

	resp.Imported[string(kind)] = imported
	resp.Skipped[string(kind)] = skipped
	return nil
}

func (s *importService) removeGuestCopies(ctx context.Context, guestId uuid.UUID, done moved) error {
	uow := s.local.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	for kind, ids := range done {
		if len(ids) == 0 {
			continue
		}
		specs := []specification.Specification{
			specification.ByIDs{IDs: ids},
			specification.UserOwnedBy{UserID: guestId},
		}
		var err error
		switch kind {
		case entity.KindSource:
			err = uow.SourceRepository().Delete(ctx, specs...)
		case entity.KindNote:
			err = uow.NoteRepository().Delete(ctx, specs...)
		case entity.KindReference:
			err = uow.ReferenceRepository().Delete(ctx, specs...)
		case entity.KindAnalysis:
			err = uow.AnalysisRepository().Delete(ctx, specs...)
		case entity.KindDraft:
			err = uow.DraftRepository().Delete(ctx, specs...)
		}
		if err != nil {
			return err
		}
	}
	return uow.Commit()
}

func (s *importService) fail(step string, userId, guestId uuid.UUID, err error) error {
	s.logger.Error("IMPORT", "Failed to "+step, map[string]interface{}{
		"user_id":  userId.String(),
		"guest_id": guestId.String(),
		"error":    err.Error(),
	})
	return err
}
