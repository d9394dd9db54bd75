package repo

import (
	"context"

	dom "todoapi/internal/domain"
)

// TodoRepo is the store collaborator of the todo service.
// Lookups by id return dom.ErrNotFound when the row does not exist.
type TodoRepo interface {
	Find(ctx context.Context, f dom.TodoFilter) ([]dom.Todo, error)
	Count(ctx context.Context, f dom.TodoFilter) (int64, error)
	Create(ctx context.Context, t dom.Todo) (dom.Todo, error)
	Delete(ctx context.Context, id int64) (dom.Todo, error)
	DeleteWhere(ctx context.Context, f dom.TodoFilter) (int64, error)
	Update(ctx context.Context, id int64, patch dom.TodoPatch) (dom.Todo, error)
	UpdateMany(ctx context.Context, f dom.TodoFilter, patch dom.TodoPatch) (int64, error)
	// Exec runs every write of uow in one transaction and returns the
	// created rows in order. Either all writes commit or none do.
	Exec(ctx context.Context, uow UnitOfWork) ([]dom.Todo, error)
	Ping(ctx context.Context) error
}

// Write is a deferred mutation queued in a UnitOfWork.
type Write interface {
	isWrite()
}

// InsertTodo creates one todo when the unit of work is executed.
type InsertTodo struct {
	Title     string
	Completed bool
}

func (InsertTodo) isWrite() {}

// UnitOfWork is an ordered list of pending writes submitted atomically.
type UnitOfWork []Write

// Add queues w.
func (u *UnitOfWork) Add(w Write) {
	*u = append(*u, w)
}
