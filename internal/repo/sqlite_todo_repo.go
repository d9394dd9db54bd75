package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	dom "todoapi/internal/domain"

	sq "github.com/Masterminds/squirrel"
)

// SQLiteTodoRepo implements TodoRepo over database/sql with the modernc
// SQLite driver. The caller owns db.
type SQLiteTodoRepo struct {
	db *sql.DB
	q  queries
}

func NewSQLiteTodoRepo(db *sql.DB) *SQLiteTodoRepo {
	return &SQLiteTodoRepo{db: db, q: newQueries(sq.Question)}
}

func (r *SQLiteTodoRepo) Find(ctx context.Context, f dom.TodoFilter) ([]dom.Todo, error) {
	query, args, err := r.q.find(f)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
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

func (r *SQLiteTodoRepo) Count(ctx context.Context, f dom.TodoFilter) (int64, error) {
	query, args, err := r.q.count(f)
	if err != nil {
		return 0, err
	}
	var n int64
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

func (r *SQLiteTodoRepo) Create(ctx context.Context, t dom.Todo) (dom.Todo, error) {
	query, args, err := r.q.insert(t.Title, t.Completed)
	if err != nil {
		return dom.Todo{}, err
	}
	return scanSQLTodo(r.db.QueryRowContext(ctx, query, args...))
}

func (r *SQLiteTodoRepo) Delete(ctx context.Context, id int64) (dom.Todo, error) {
	query, args, err := r.q.deleteByID(id)
	if err != nil {
		return dom.Todo{}, err
	}
	return scanSQLTodo(r.db.QueryRowContext(ctx, query, args...))
}

func (r *SQLiteTodoRepo) DeleteWhere(ctx context.Context, f dom.TodoFilter) (int64, error) {
	query, args, err := r.q.deleteWhere(f)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SQLiteTodoRepo) Update(ctx context.Context, id int64, patch dom.TodoPatch) (dom.Todo, error) {
	query, args, err := r.q.update(id, patch)
	if errors.Is(err, errEmptyPatch) {
		query, args, err = r.q.getByID(id)
	}
	if err != nil {
		return dom.Todo{}, err
	}
	return scanSQLTodo(r.db.QueryRowContext(ctx, query, args...))
}

func (r *SQLiteTodoRepo) UpdateMany(ctx context.Context, f dom.TodoFilter, patch dom.TodoPatch) (int64, error) {
	query, args, err := r.q.updateWhere(f, patch)
	if errors.Is(err, errEmptyPatch) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SQLiteTodoRepo) Exec(ctx context.Context, uow UnitOfWork) ([]dom.Todo, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	out := make([]dom.Todo, 0, len(uow))
	for i, w := range uow {
		ins, err := asInsert(w)
		if err != nil {
			return nil, fmt.Errorf("write %d: %w", i, err)
		}
		query, args, err := r.q.insert(ins.Title, ins.Completed)
		if err != nil {
			return nil, fmt.Errorf("write %d: %w", i, err)
		}
		t, err := scanSQLTodo(tx.QueryRowContext(ctx, query, args...))
		if err != nil {
			return nil, fmt.Errorf("write %d: %w", i, err)
		}
		out = append(out, t)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

func (r *SQLiteTodoRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func scanSQLTodo(row *sql.Row) (dom.Todo, error) {
	var t dom.Todo
	if err := row.Scan(&t.ID, &t.Title, &t.Completed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dom.Todo{}, dom.ErrNotFound
		}
		return dom.Todo{}, err
	}
	return t, nil
}
