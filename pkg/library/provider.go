package library

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"research-library-be/internal/entity"
	"research-library-be/internal/pkg/logger"
	"research-library-be/internal/repository/contract"
	"research-library-be/internal/repository/specification"
	"research-library-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const providerModule = "LibraryProvider"

// Provider serves one kind of library item: cached reads, write-through
// mutations and change notifications.
type Provider[T entity.LibraryItem] struct {
	kind     entity.Kind
	newItem  func() T
	repo     func(uow unitofwork.UnitOfWork) contract.LibraryRepository[T]
	sourceOf func(item T) *uuid.UUID

	backends Backends
	cache    *Cache
	notifier Notifier
	validate func(interface{}) error
	logger   logger.ILogger
	now      func() time.Time

	onSaved   []func(ctx context.Context, scope Scope, item T)
	onDeleted []func(ctx context.Context, scope Scope, id uuid.UUID)
}

// ProviderConfig describes one kind to NewProvider.
type ProviderConfig[T entity.LibraryItem] struct {
	Kind    entity.Kind
	NewItem func() T
	Repo    func(uow unitofwork.UnitOfWork) contract.LibraryRepository[T]

	// SourceOf enables ListBySource for kinds that link to a source.
	SourceOf func(item T) *uuid.UUID
}

func NewProvider[T entity.LibraryItem](cfg ProviderConfig[T], backends Backends, cache *Cache, opts Options) *Provider[T] {
	opts = opts.withDefaults()
	return &Provider[T]{
		kind:     cfg.Kind,
		newItem:  cfg.NewItem,
		repo:     cfg.Repo,
		sourceOf: cfg.SourceOf,
		backends: backends,
		cache:    cache,
		notifier: opts.Notifier,
		validate: opts.Validate,
		logger:   opts.Logger,
		now:      opts.Now,
	}
}

func (p *Provider[T]) Kind() entity.Kind { return p.kind }

// OnSaved registers a hook run after every successful save or update.
func (p *Provider[T]) OnSaved(fn func(ctx context.Context, scope Scope, item T)) {
	p.onSaved = append(p.onSaved, fn)
}

// OnDeleted registers a hook run after every successful delete.
func (p *Provider[T]) OnDeleted(fn func(ctx context.Context, scope Scope, id uuid.UUID)) {
	p.onDeleted = append(p.onDeleted, fn)
}

func (p *Provider[T]) listKey(scope Scope) string {
	return scope.key(p.kind, "list")
}

func (p *Provider[T]) itemKey(scope Scope, id uuid.UUID) string {
	return scope.key(p.kind, "item", id.String())
}

func (p *Provider[T]) sourcePrefix(scope Scope) string {
	return scope.key(p.kind, "source") + ":"
}

func (p *Provider[T]) sourceKey(scope Scope, sourceId uuid.UUID) string {
	return p.sourcePrefix(scope) + sourceId.String()
}

func (p *Provider[T]) details(scope Scope, extra map[string]interface{}) map[string]interface{} {
	d := map[string]interface{}{
		"kind":  string(p.kind),
		"mode":  string(scope.Mode),
		"owner": scope.Owner.String(),
	}
	for k, v := range extra {
		d[k] = v
	}
	return d
}

func (p *Provider[T]) fail(scope Scope, operation string, err error, extra map[string]interface{}) error {
	backendErrors.WithLabelValues(string(p.kind), operation).Inc()
	d := p.details(scope, extra)
	d["error"] = err
	p.logger.Error(providerModule, operation+" failed", d)
	return fmt.Errorf("%s %s: %w", operation, p.kind, err)
}

func (p *Provider[T]) repository(ctx context.Context, scope Scope) (contract.LibraryRepository[T], error) {
	uow, err := p.backends.unitOfWork(ctx, scope.Mode)
	if err != nil {
		return nil, err
	}
	return p.repo(uow), nil
}

// List returns the owner's items, most recently updated first.
func (p *Provider[T]) List(ctx context.Context, scope Scope) ([]T, error) {
	v, err := p.cache.load(ctx, scope, p.kind, p.listKey(scope), func(ctx context.Context) (interface{}, error) {
		repo, err := p.repository(ctx, scope)
		if err != nil {
			return nil, err
		}
		items, err := repo.FindAll(ctx, specification.UserOwnedBy{UserID: scope.Owner})
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []T{}
		}
		return items, nil
	})
	if err != nil {
		return nil, p.fail(scope, "list", err, nil)
	}
	return p.cloneList(v.([]T))
}

// Get returns one item, or a nil item when the owner has no such id.
func (p *Provider[T]) Get(ctx context.Context, scope Scope, id uuid.UUID) (T, error) {
	var zero T

	// A cached list already answers the question.
	if v, ok := p.cache.peek(p.listKey(scope)); ok {
		for _, item := range v.([]T) {
			if item.GetId() == id {
				return p.clone(item)
			}
		}
		return zero, nil
	}

	v, err := p.cache.load(ctx, scope, p.kind, p.itemKey(scope, id), func(ctx context.Context) (interface{}, error) {
		repo, err := p.repository(ctx, scope)
		if err != nil {
			return nil, err
		}
		item, err := repo.FindOne(ctx, specification.ByID{ID: id}, specification.UserOwnedBy{UserID: scope.Owner})
		if err != nil {
			return nil, err
		}
		if isAbsent(item) {
			return nil, nil
		}
		return item, nil
	})
	if err != nil {
		return zero, p.fail(scope, "get", err, map[string]interface{}{"id": id.String()})
	}
	if v == nil {
		return zero, nil
	}
	return p.clone(v.(T))
}

// ListBySource returns the owner's items linked to sourceId.
func (p *Provider[T]) ListBySource(ctx context.Context, scope Scope, sourceId uuid.UUID) ([]T, error) {
	if p.sourceOf == nil {
		return nil, fmt.Errorf("%s are not linked to sources", p.kind)
	}
	v, err := p.cache.load(ctx, scope, p.kind, p.sourceKey(scope, sourceId), func(ctx context.Context) (interface{}, error) {
		repo, err := p.repository(ctx, scope)
		if err != nil {
			return nil, err
		}
		items, err := repo.FindAll(ctx,
			specification.UserOwnedBy{UserID: scope.Owner},
			specification.BySourceID{SourceID: sourceId},
		)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []T{}
		}
		return items, nil
	})
	if err != nil {
		return nil, p.fail(scope, "list_by_source", err, map[string]interface{}{"source_id": sourceId.String()})
	}
	return p.cloneList(v.([]T))
}

// Save creates the item (assigning an id when it has none) or replaces the
// owner's item with the same id. created_at survives a replace.
func (p *Provider[T]) Save(ctx context.Context, scope Scope, item T) (T, error) {
	var zero T
	if isAbsent(item) {
		return zero, fmt.Errorf("%w: empty item", ErrInvalidPatch)
	}

	item, err := p.clone(item)
	if err != nil {
		return zero, err
	}

	now := p.timestamp()
	createdAt := now

	repo, err := p.repository(ctx, scope)
	if err != nil {
		return zero, p.fail(scope, "save", err, nil)
	}

	if item.GetId() == uuid.Nil {
		item.SetId(uuid.New())
	} else {
		existing, err := repo.FindOne(ctx, specification.ByID{ID: item.GetId()})
		if err != nil {
			return zero, p.fail(scope, "save", err, map[string]interface{}{"id": item.GetId().String()})
		}
		if !isAbsent(existing) {
			if existing.GetUserId() != scope.Owner {
				return zero, ErrForeignItem
			}
			createdAt = existing.GetCreatedAt()
			if !now.After(existing.GetUpdatedAt()) {
				now = existing.GetUpdatedAt().Add(time.Microsecond)
			}
		}
	}

	item.SetUserId(scope.Owner)
	item.SetTimestamps(createdAt, now)
	return p.write(ctx, scope, item)
}

// Update applies a partial patch keyed by JSON field name and bumps
// updated_at. It returns a nil item when the owner has no such id.
func (p *Provider[T]) Update(ctx context.Context, scope Scope, id uuid.UUID, patch map[string]interface{}) (T, error) {
	var zero T

	for field := range patch {
		if entity.ProtectedFields[field] {
			return zero, fmt.Errorf("%w: %s", ErrProtectedField, field)
		}
	}

	repo, err := p.repository(ctx, scope)
	if err != nil {
		return zero, p.fail(scope, "update", err, nil)
	}
	existing, err := repo.FindOne(ctx, specification.ByID{ID: id}, specification.UserOwnedBy{UserID: scope.Owner})
	if err != nil {
		return zero, p.fail(scope, "update", err, map[string]interface{}{"id": id.String()})
	}
	if isAbsent(existing) {
		return zero, nil
	}

	item, err := p.applyPatch(existing, patch)
	if err != nil {
		return zero, err
	}

	now := p.timestamp()
	if !now.After(existing.GetUpdatedAt()) {
		now = existing.GetUpdatedAt().Add(time.Microsecond)
	}
	item.SetId(existing.GetId())
	item.SetUserId(existing.GetUserId())
	item.SetTimestamps(existing.GetCreatedAt(), now)
	return p.write(ctx, scope, item)
}

func (p *Provider[T]) applyPatch(existing T, patch map[string]interface{}) (T, error) {
	var zero T

	raw, err := json.Marshal(existing)
	if err != nil {
		return zero, err
	}
	fields := map[string]interface{}{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return zero, err
	}
	for field, value := range patch {
		if _, known := fields[field]; !known {
			return zero, fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
		fields[field] = value
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	item := p.newItem()
	dec := json.NewDecoder(bytes.NewReader(merged))
	dec.DisallowUnknownFields()
	if err := dec.Decode(item); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	return item, nil
}

// write normalizes, validates, stores and caches item. The cache is only
// touched after the backend accepted the write.
func (p *Provider[T]) write(ctx context.Context, scope Scope, item T) (T, error) {
	var zero T

	if n, ok := any(item).(entity.Normalizer); ok {
		n.Normalize()
	}
	if p.validate != nil {
		if err := p.validate(item); err != nil {
			return zero, err
		}
	}

	uow, err := p.backends.unitOfWork(ctx, scope.Mode)
	if err != nil {
		return zero, p.fail(scope, "save", err, nil)
	}
	if err := uow.Begin(ctx); err != nil {
		return zero, p.fail(scope, "save", err, nil)
	}
	defer uow.Rollback()

	if err := p.repo(uow).Upsert(ctx, item); err != nil {
		return zero, p.fail(scope, "save", err, map[string]interface{}{"id": item.GetId().String()})
	}
	if err := uow.Commit(); err != nil {
		return zero, p.fail(scope, "save", err, map[string]interface{}{"id": item.GetId().String()})
	}

	cached, err := p.clone(item)
	if err != nil {
		p.Invalidate(scope)
		return item, nil
	}
	p.cacheSaved(scope, cached)

	mutations.WithLabelValues(string(p.kind), string(ActionSaved), string(scope.Mode)).Inc()
	p.logger.Debug(providerModule, "item saved", p.details(scope, map[string]interface{}{"id": item.GetId().String()}))
	p.notify(ctx, scope, ActionSaved, item.GetId())
	for _, fn := range p.onSaved {
		fn(ctx, scope, item)
	}
	return item, nil
}

// Delete removes the owner's item. found is false when there was none.
func (p *Provider[T]) Delete(ctx context.Context, scope Scope, id uuid.UUID) (found bool, err error) {
	repo, err := p.repository(ctx, scope)
	if err != nil {
		return false, p.fail(scope, "delete", err, nil)
	}

	specs := []specification.Specification{
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: scope.Owner},
	}
	count, err := repo.Count(ctx, specs...)
	if err != nil {
		return false, p.fail(scope, "delete", err, map[string]interface{}{"id": id.String()})
	}
	if count == 0 {
		return false, nil
	}
	if err := repo.Delete(ctx, specs...); err != nil {
		return false, p.fail(scope, "delete", err, map[string]interface{}{"id": id.String()})
	}

	p.cacheDeleted(scope, id)

	mutations.WithLabelValues(string(p.kind), string(ActionDeleted), string(scope.Mode)).Inc()
	p.logger.Debug(providerModule, "item deleted", p.details(scope, map[string]interface{}{"id": id.String()}))
	p.notify(ctx, scope, ActionDeleted, id)
	for _, fn := range p.onDeleted {
		fn(ctx, scope, id)
	}
	return true, nil
}

// Invalidate drops every cached entry of the scope, for all kinds.
func (p *Provider[T]) Invalidate(scope Scope) {
	p.cache.Invalidate(scope)
}

// DropSourceLookup forgets the cached per-source list for sourceId.
func (p *Provider[T]) DropSourceLookup(scope Scope, sourceId uuid.UUID) {
	if p.sourceOf == nil {
		return
	}
	p.cache.mutate(scope, func(tx *cacheTx) {
		tx.delete(p.sourceKey(scope, sourceId))
	})
}

func (p *Provider[T]) cacheSaved(scope Scope, item T) {
	id := item.GetId()
	p.cache.mutate(scope, func(tx *cacheTx) {
		tx.update(p.listKey(scope), func(v interface{}) interface{} {
			return upsertInto(v.([]T), item)
		})
		tx.set(p.itemKey(scope, id), item)

		if p.sourceOf == nil {
			return
		}
		var linked string
		if src := p.sourceOf(item); src != nil {
			linked = p.sourceKey(scope, *src)
		}
		for _, key := range tx.keysWithPrefix(p.sourcePrefix(scope)) {
			tx.update(key, func(v interface{}) interface{} {
				if key == linked {
					return upsertInto(v.([]T), item)
				}
				return without(v.([]T), id)
			})
		}
	})
}

func (p *Provider[T]) cacheDeleted(scope Scope, id uuid.UUID) {
	p.cache.mutate(scope, func(tx *cacheTx) {
		tx.update(p.listKey(scope), func(v interface{}) interface{} {
			return without(v.([]T), id)
		})
		tx.delete(p.itemKey(scope, id))

		if p.sourceOf == nil {
			return
		}
		for _, key := range tx.keysWithPrefix(p.sourcePrefix(scope)) {
			tx.update(key, func(v interface{}) interface{} {
				return without(v.([]T), id)
			})
		}
	})
}

func (p *Provider[T]) notify(ctx context.Context, scope Scope, action Action, id uuid.UUID) {
	p.notifier.Notify(ctx, Change{
		Kind:    p.kind,
		Action:  action,
		ItemID:  id,
		OwnerID: scope.Owner,
		Mode:    scope.Mode,
		At:      p.now().UTC(),
	})
}

// timestamp is truncated to what PostgreSQL keeps so cached and stored
// values compare equal.
func (p *Provider[T]) timestamp() time.Time {
	return p.now().UTC().Truncate(time.Microsecond)
}

// Cached values are shared, so callers only ever get deep copies.
func (p *Provider[T]) clone(item T) (T, error) {
	var zero T
	raw, err := json.Marshal(item)
	if err != nil {
		return zero, err
	}
	out := p.newItem()
	if err := json.Unmarshal(raw, out); err != nil {
		return zero, err
	}
	return out, nil
}

func (p *Provider[T]) cloneList(items []T) ([]T, error) {
	out := make([]T, len(items))
	for i, item := range items {
		c, err := p.clone(item)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// upsertInto replaces item in place, or puts it first when it is new.
func upsertInto[T entity.LibraryItem](items []T, item T) []T {
	for i, existing := range items {
		if existing.GetId() == item.GetId() {
			out := make([]T, len(items))
			copy(out, items)
			out[i] = item
			return out
		}
	}
	out := make([]T, 0, len(items)+1)
	out = append(out, item)
	return append(out, items...)
}

func without[T entity.LibraryItem](items []T, id uuid.UUID) []T {
	out := make([]T, 0, len(items))
	for _, existing := range items {
		if existing.GetId() != id {
			out = append(out, existing)
		}
	}
	return out
}

// isAbsent reports a nil item pointer.
func isAbsent[T entity.LibraryItem](item T) bool {
	var zero T
	return any(item) == any(zero)
}
