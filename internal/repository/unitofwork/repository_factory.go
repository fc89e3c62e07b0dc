package unitofwork

import "context"

// RepositoryFactory is one storage backend of the library.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
