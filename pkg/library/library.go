package library

import (
	"context"
	"time"

	"research-library-be/internal/entity"
	"research-library-be/internal/pkg/logger"
	"research-library-be/internal/repository/contract"
	"research-library-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type Options struct {
	Logger   logger.ILogger
	Notifier Notifier

	// Validate checks an item before it is written (struct tags).
	Validate func(interface{}) error

	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logger.NewNopLogger()
	}
	if o.Notifier == nil {
		o.Notifier = nopNotifier{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Library groups the providers of every kind over one shared cache.
type Library struct {
	Sources    *Provider[*entity.Source]
	Notes      *Provider[*entity.Note]
	References *Provider[*entity.Reference]
	Analyses   *Provider[*entity.Analysis]
	Drafts     *Provider[*entity.Draft]

	cache *Cache
}

func New(backends Backends, cache *Cache, opts Options) *Library {
	l := &Library{
		Sources: NewProvider(ProviderConfig[*entity.Source]{
			Kind:    entity.KindSource,
			NewItem: entity.NewSource,
			Repo: func(uow unitofwork.UnitOfWork) contract.LibraryRepository[*entity.Source] {
				return uow.SourceRepository()
			},
		}, backends, cache, opts),
		Notes: NewProvider(ProviderConfig[*entity.Note]{
			Kind:    entity.KindNote,
			NewItem: entity.NewNote,
			Repo: func(uow unitofwork.UnitOfWork) contract.LibraryRepository[*entity.Note] {
				return uow.NoteRepository()
			},
			SourceOf: func(n *entity.Note) *uuid.UUID { return n.SourceId },
		}, backends, cache, opts),
		References: NewProvider(ProviderConfig[*entity.Reference]{
			Kind:    entity.KindReference,
			NewItem: entity.NewReference,
			Repo: func(uow unitofwork.UnitOfWork) contract.LibraryRepository[*entity.Reference] {
				return uow.ReferenceRepository()
			},
			SourceOf: func(r *entity.Reference) *uuid.UUID { return r.SourceId },
		}, backends, cache, opts),
		Analyses: NewProvider(ProviderConfig[*entity.Analysis]{
			Kind:    entity.KindAnalysis,
			NewItem: entity.NewAnalysis,
			Repo: func(uow unitofwork.UnitOfWork) contract.LibraryRepository[*entity.Analysis] {
				return uow.AnalysisRepository()
			},
		}, backends, cache, opts),
		Drafts: NewProvider(ProviderConfig[*entity.Draft]{
			Kind:    entity.KindDraft,
			NewItem: entity.NewDraft,
			Repo: func(uow unitofwork.UnitOfWork) contract.LibraryRepository[*entity.Draft] {
				return uow.DraftRepository()
			},
		}, backends, cache, opts),
		cache: cache,
	}

	// Links to a source are soft: deleting it keeps notes and references but
	// their per-source lookup for it is gone.
	l.Sources.OnDeleted(func(_ context.Context, scope Scope, id uuid.UUID) {
		l.Notes.DropSourceLookup(scope, id)
		l.References.DropSourceLookup(scope, id)
	})
	return l
}

// Invalidate drops every cached entry of the scope.
func (l *Library) Invalidate(scope Scope) {
	l.cache.Invalidate(scope)
}

func (l *Library) Cache() *Cache {
	return l.cache
}
