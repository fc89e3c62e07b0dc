package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"research-library-be/internal/entity"
	"research-library-be/internal/repository/contract"
	"research-library-be/internal/repository/specification"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// Guest items are stored as JSON under <kind>/<owner>/<id>. A second key,
// idx/<kind>/<id>, holds the owner so lookups by id and owner moves do not
// need a scan.

func itemKey(kind entity.Kind, owner, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("%s/%s/%s", kind, owner, id))
}

func ownerPrefix(kind entity.Kind, owner uuid.UUID) []byte {
	return []byte(fmt.Sprintf("%s/%s/", kind, owner))
}

func kindPrefix(kind entity.Kind) []byte {
	return []byte(string(kind) + "/")
}

func indexKey(kind entity.Kind, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("idx/%s/%s", kind, id))
}

type LibraryRepository[E entity.LibraryItem] struct {
	db      *badger.DB
	txn     *badger.Txn
	kind    entity.Kind
	newItem func() E
}

func NewLibraryRepository[E entity.LibraryItem](db *badger.DB, txn *badger.Txn, kind entity.Kind, newItem func() E) contract.LibraryRepository[E] {
	return &LibraryRepository[E]{
		db:      db,
		txn:     txn,
		kind:    kind,
		newItem: newItem,
	}
}

func NewSourceRepository(db *badger.DB, txn *badger.Txn) contract.SourceRepository {
	return NewLibraryRepository(db, txn, entity.KindSource, entity.NewSource)
}

func NewNoteRepository(db *badger.DB, txn *badger.Txn) contract.NoteRepository {
	return NewLibraryRepository(db, txn, entity.KindNote, entity.NewNote)
}

func NewReferenceRepository(db *badger.DB, txn *badger.Txn) contract.ReferenceRepository {
	return NewLibraryRepository(db, txn, entity.KindReference, entity.NewReference)
}

func NewAnalysisRepository(db *badger.DB, txn *badger.Txn) contract.AnalysisRepository {
	return NewLibraryRepository(db, txn, entity.KindAnalysis, entity.NewAnalysis)
}

func NewDraftRepository(db *badger.DB, txn *badger.Txn) contract.DraftRepository {
	return NewLibraryRepository(db, txn, entity.KindDraft, entity.NewDraft)
}

// view/update run fn inside the unit of work's transaction when there is one.
func (r *LibraryRepository[E]) view(fn func(txn *badger.Txn) error) error {
	if r.txn != nil {
		return fn(r.txn)
	}
	return r.db.View(fn)
}

func (r *LibraryRepository[E]) update(fn func(txn *badger.Txn) error) error {
	if r.txn != nil {
		return fn(r.txn)
	}
	return r.db.Update(fn)
}

func (r *LibraryRepository[E]) Upsert(ctx context.Context, item E) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.kind, err)
	}

	id, owner := item.GetId(), item.GetUserId()
	return r.update(func(txn *badger.Txn) error {
		previous, err := ownerOf(txn, r.kind, id)
		if err != nil {
			return err
		}
		if previous != uuid.Nil && previous != owner {
			if err := txn.Delete(itemKey(r.kind, previous, id)); err != nil {
				return err
			}
		}
		if err := txn.Set(itemKey(r.kind, owner, id), payload); err != nil {
			return err
		}
		return txn.Set(indexKey(r.kind, id), owner[:])
	})
}

func ownerOf(txn *badger.Txn, kind entity.Kind, id uuid.UUID) (uuid.UUID, error) {
	item, err := txn.Get(indexKey(kind, id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, err
	}
	var owner uuid.UUID
	err = item.Value(func(val []byte) error {
		owner, err = uuid.FromBytes(val)
		return err
	})
	return owner, err
}

func (r *LibraryRepository[E]) Delete(ctx context.Context, specs ...specification.Specification) error {
	if len(specs) == 0 {
		return contract.ErrUnscopedDelete
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	q, err := parseQuery(specs)
	if err != nil {
		return err
	}

	return r.update(func(txn *badger.Txn) error {
		rows, err := r.collect(txn, q)
		if err != nil {
			return err
		}
		for _, row := range rows {
			id, owner := row.item.GetId(), row.item.GetUserId()
			if err := txn.Delete(itemKey(r.kind, owner, id)); err != nil {
				return err
			}
			if err := txn.Delete(indexKey(r.kind, id)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *LibraryRepository[E]) FindOne(ctx context.Context, specs ...specification.Specification) (E, error) {
	var zero E
	items, err := r.FindAll(ctx, specs...)
	if err != nil || len(items) == 0 {
		return zero, err
	}
	return items[0], nil
}

func (r *LibraryRepository[E]) FindAll(ctx context.Context, specs ...specification.Specification) ([]E, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q, err := parseQuery(specs)
	if err != nil {
		return nil, err
	}

	var rows []storedRow[E]
	err = r.view(func(txn *badger.Txn) error {
		rows, err = r.collect(txn, q)
		return err
	})
	if err != nil {
		return nil, err
	}

	sortRows(rows, q.order)
	rows = paginate(rows, q.page)

	items := make([]E, len(rows))
	for i, row := range rows {
		items[i] = row.item
	}
	return items, nil
}

func (r *LibraryRepository[E]) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	items, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(items)), nil
}

type storedRow[E entity.LibraryItem] struct {
	fields map[string]interface{}
	item   E
}

// collect walks the narrowest key range the query allows and keeps the rows
// every predicate matches.
func (r *LibraryRepository[E]) collect(txn *badger.Txn, q query) ([]storedRow[E], error) {
	var rows []storedRow[E]
	keep := func(raw []byte) error {
		row, err := r.decode(raw)
		if err != nil {
			return err
		}
		if q.matches(row.fields) {
			rows = append(rows, row)
		}
		return nil
	}

	if q.id != nil {
		owner, err := ownerOf(txn, r.kind, *q.id)
		if err != nil || owner == uuid.Nil {
			return nil, err
		}
		item, err := txn.Get(itemKey(r.kind, owner, *q.id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if err := item.Value(keep); err != nil {
			return nil, err
		}
		return rows, nil
	}

	prefix := kindPrefix(r.kind)
	if q.owner != nil {
		prefix = ownerPrefix(r.kind, *q.owner)
	}

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := it.Item().Value(keep); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func (r *LibraryRepository[E]) decode(raw []byte) (storedRow[E], error) {
	row := storedRow[E]{item: r.newItem()}
	if err := json.Unmarshal(raw, row.item); err != nil {
		return row, fmt.Errorf("decode %s: %w", r.kind, err)
	}
	if err := json.Unmarshal(raw, &row.fields); err != nil {
		return row, fmt.Errorf("decode %s: %w", r.kind, err)
	}
	return row, nil
}

func sortRows[E entity.LibraryItem](rows []storedRow[E], order []specification.OrderBy) {
	sort.SliceStable(rows, func(i, j int) bool {
		for _, o := range order {
			c := compareField(rows[i], rows[j], o.Field)
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		// Same default order as the hosted backend: updated_at DESC, id ASC.
		ui, uj := rows[i].item.GetUpdatedAt(), rows[j].item.GetUpdatedAt()
		if !ui.Equal(uj) {
			return ui.After(uj)
		}
		return rows[i].item.GetId().String() < rows[j].item.GetId().String()
	})
}

func compareField[E entity.LibraryItem](a, b storedRow[E], field string) int {
	switch field {
	case "created_at":
		return a.item.GetCreatedAt().Compare(b.item.GetCreatedAt())
	case "updated_at":
		return a.item.GetUpdatedAt().Compare(b.item.GetUpdatedAt())
	}

	av, bv := a.fields[field], b.fields[field]
	if an, ok := av.(float64); ok {
		if bn, ok := bv.(float64); ok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			}
			return 0
		}
	}
	as, bs := fmt.Sprint(av), fmt.Sprint(bv)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	}
	return 0
}
