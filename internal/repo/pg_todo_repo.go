package repo

import (
	"context"
	"errors"
	"fmt"

	dom "todoapi/internal/domain"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PGXPool is the subset of *pgxpool.Pool used by PGTodoRepo.
type PGXPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

type PGTodoRepo struct {
	db PGXPool
	q  queries
}

func NewPGTodoRepo(db PGXPool) *PGTodoRepo {
	return &PGTodoRepo{db: db, q: newQueries(sq.Dollar)}
}

func (r *PGTodoRepo) Find(ctx context.Context, f dom.TodoFilter) ([]dom.Todo, error) {
	query, args, err := r.q.find(f)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []dom.Todo{}
	for rows.Next() {
		var t dom.Todo
		if err := rows.Scan(&t.ID, &t.Title, &t.Completed); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *PGTodoRepo) Count(ctx context.Context, f dom.TodoFilter) (int64, error) {
	query, args, err := r.q.count(f)
	if err != nil {
		return 0, err
	}
	var n int64
	err = r.db.QueryRow(ctx, query, args...).Scan(&n)
	return n, err
}

func (r *PGTodoRepo) Create(ctx context.Context, t dom.Todo) (dom.Todo, error) {
	query, args, err := r.q.insert(t.Title, t.Completed)
	if err != nil {
		return dom.Todo{}, err
	}
	return scanPGTodo(r.db.QueryRow(ctx, query, args...))
}

func (r *PGTodoRepo) Delete(ctx context.Context, id int64) (dom.Todo, error) {
	query, args, err := r.q.deleteByID(id)
	if err != nil {
		return dom.Todo{}, err
	}
	return scanPGTodo(r.db.QueryRow(ctx, query, args...))
}

func (r *PGTodoRepo) DeleteWhere(ctx context.Context, f dom.TodoFilter) (int64, error) {
	query, args, err := r.q.deleteWhere(f)
	if err != nil {
		return 0, err
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PGTodoRepo) Update(ctx context.Context, id int64, patch dom.TodoPatch) (dom.Todo, error) {
	query, args, err := r.q.update(id, patch)
	if errors.Is(err, errEmptyPatch) {
		query, args, err = r.q.getByID(id)
	}
	if err != nil {
		return dom.Todo{}, err
	}
	return scanPGTodo(r.db.QueryRow(ctx, query, args...))
}

func (r *PGTodoRepo) UpdateMany(ctx context.Context, f dom.TodoFilter, patch dom.TodoPatch) (int64, error) {
	query, args, err := r.q.updateWhere(f, patch)
	if errors.Is(err, errEmptyPatch) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PGTodoRepo) Exec(ctx context.Context, uow UnitOfWork) ([]dom.Todo, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	out := make([]dom.Todo, 0, len(uow))
	for i, w := range uow {
		t, err := r.execWrite(ctx, tx, w)
		if err != nil {
			_ = tx.Rollback(ctx)
			return nil, fmt.Errorf("write %d: %w", i, err)
		}
		out = append(out, t)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

func (r *PGTodoRepo) execWrite(ctx context.Context, tx pgx.Tx, w Write) (dom.Todo, error) {
	ins, err := asInsert(w)
	if err != nil {
		return dom.Todo{}, err
	}
	query, args, err := r.q.insert(ins.Title, ins.Completed)
	if err != nil {
		return dom.Todo{}, err
	}
	return scanPGTodo(tx.QueryRow(ctx, query, args...))
}

func (r *PGTodoRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func scanPGTodo(row pgx.Row) (dom.Todo, error) {
	var t dom.Todo
	if err := row.Scan(&t.ID, &t.Title, &t.Completed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Todo{}, dom.ErrNotFound
		}
		return dom.Todo{}, err
	}
	return t, nil
}
