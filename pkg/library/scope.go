package library

import (
	"context"
	"errors"
	"fmt"
	"time"

	"research-library-be/internal/entity"
	"research-library-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type Mode string

const (
	// ModePersistent is an authenticated user backed by the hosted database.
	ModePersistent Mode = "persistent"
	// ModeLocal is a guest backed by the embedded store.
	ModeLocal Mode = "local"
)

// Scope identifies whose library a call works on and where it lives.
type Scope struct {
	Mode  Mode
	Owner uuid.UUID
}

func Persistent(userId uuid.UUID) Scope { return Scope{Mode: ModePersistent, Owner: userId} }
func Local(guestId uuid.UUID) Scope     { return Scope{Mode: ModeLocal, Owner: guestId} }

func (s Scope) String() string {
	return fmt.Sprintf("%s:%s", s.Mode, s.Owner)
}

func (s Scope) prefix() string {
	return s.String() + ":"
}

func (s Scope) key(kind entity.Kind, parts ...string) string {
	key := s.prefix() + string(kind)
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

// Backends maps each mode to the repository factory that serves it.
type Backends struct {
	Persistent unitofwork.RepositoryFactory
	Local      unitofwork.RepositoryFactory
}

func (b Backends) unitOfWork(ctx context.Context, mode Mode) (unitofwork.UnitOfWork, error) {
	var factory unitofwork.RepositoryFactory
	switch mode {
	case ModePersistent:
		factory = b.Persistent
	case ModeLocal:
		factory = b.Local
	}
	if factory == nil {
		return nil, fmt.Errorf("%w: %s", ErrModeUnavailable, mode)
	}
	return factory.NewUnitOfWork(ctx), nil
}

var (
	ErrModeUnavailable = errors.New("storage mode not configured")
	ErrProtectedField  = errors.New("field cannot be changed")
	ErrUnknownField    = errors.New("unknown field")
	ErrInvalidPatch    = errors.New("invalid patch")
	ErrForeignItem     = errors.New("item belongs to another owner")
)

type Action string

const (
	ActionSaved    Action = "saved"
	ActionDeleted  Action = "deleted"
	ActionImported Action = "imported"
)

// Change describes one successful mutation.
type Change struct {
	Kind    entity.Kind `json:"kind"`
	Action  Action      `json:"action"`
	ItemID  uuid.UUID   `json:"item_id"`
	OwnerID uuid.UUID   `json:"owner_id"`
	Mode    Mode        `json:"mode"`
	At      time.Time   `json:"at"`
}

func (c Change) Scope() Scope {
	return Scope{Mode: c.Mode, Owner: c.OwnerID}
}

// Notifier receives changes after they are written. Implementations log their
// own failures; a notification never fails the write.
type Notifier interface {
	Notify(ctx context.Context, change Change)
}

type NotifierFunc func(ctx context.Context, change Change)

func (f NotifierFunc) Notify(ctx context.Context, change Change) { f(ctx, change) }

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Change) {}
