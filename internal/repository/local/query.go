package local

import (
	"fmt"

	"research-library-be/internal/repository/specification"

	"github.com/google/uuid"
)

// query is the guest store's reading of a specification list. Only the
// equality predicates, ordering and pagination are understood.
type query struct {
	predicates []specification.Predicate
	order      []specification.OrderBy
	page       page

	// id and owner narrow the key range before predicates run.
	id    *uuid.UUID
	owner *uuid.UUID
}

type page struct {
	limit  int
	offset int
}

func parseQuery(specs []specification.Specification) (query, error) {
	var q query
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.OrderBy:
			q.order = append(q.order, s)
		case specification.Pagination:
			q.page = page{limit: s.Limit, offset: s.Offset}
		case specification.Predicate:
			q.predicates = append(q.predicates, s)
			switch p := s.(type) {
			case specification.ByID:
				id := p.ID
				q.id = &id
			case specification.UserOwnedBy:
				owner := p.UserID
				q.owner = &owner
			}
		default:
			return q, fmt.Errorf("guest store: unsupported specification %T", spec)
		}
	}
	return q, nil
}

func (q query) matches(row map[string]interface{}) bool {
	for _, p := range q.predicates {
		if !p.Matches(row) {
			return false
		}
	}
	return true
}

func paginate[T any](rows []T, p page) []T {
	if p.offset > 0 {
		if p.offset >= len(rows) {
			return rows[:0]
		}
		rows = rows[p.offset:]
	}
	if p.limit > 0 && p.limit < len(rows) {
		rows = rows[:p.limit]
	}
	return rows
}
