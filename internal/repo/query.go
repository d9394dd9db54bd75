package repo

import (
	"errors"
	"fmt"
	"strings"

	dom "todoapi/internal/domain"

	sq "github.com/Masterminds/squirrel"
)

const todosTable = "todos"

var todoColumns = []string{"id", "title", "completed"}

var errEmptyPatch = errors.New("repo: empty patch")

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// queries builds the SQL shared by every store; only the placeholder
// format differs between dialects.
type queries struct {
	sb sq.StatementBuilderType
}

func newQueries(ph sq.PlaceholderFormat) queries {
	return queries{sb: sq.StatementBuilder.PlaceholderFormat(ph)}
}

// where converts a filter into a predicate. nil when the filter is empty.
func where(f dom.TodoFilter) sq.Sqlizer {
	var and sq.And
	if f.Completed != nil {
		and = append(and, sq.Eq{"completed": *f.Completed})
	}
	if f.Title != "" {
		and = append(and, sq.Expr(`title LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(f.Title)+"%"))
	}
	if f.IDs != nil {
		if len(f.IDs) == 0 {
			and = append(and, sq.Expr("1 = 0"))
		} else {
			and = append(and, sq.Eq{"id": f.IDs})
		}
	}
	if len(and) == 0 {
		return nil
	}
	return and
}

func (q queries) find(f dom.TodoFilter) (string, []any, error) {
	b := q.sb.Select(todoColumns...).From(todosTable).OrderBy("id")
	if w := where(f); w != nil {
		b = b.Where(w)
	}
	return b.ToSql()
}

func (q queries) count(f dom.TodoFilter) (string, []any, error) {
	b := q.sb.Select("COUNT(*)").From(todosTable)
	if w := where(f); w != nil {
		b = b.Where(w)
	}
	return b.ToSql()
}

func (q queries) getByID(id int64) (string, []any, error) {
	return q.sb.Select(todoColumns...).From(todosTable).Where(sq.Eq{"id": id}).ToSql()
}

func (q queries) insert(title string, completed bool) (string, []any, error) {
	return q.sb.Insert(todosTable).
		Columns("title", "completed").
		Values(title, completed).
		Suffix(returning()).
		ToSql()
}

func (q queries) deleteByID(id int64) (string, []any, error) {
	return q.sb.Delete(todosTable).Where(sq.Eq{"id": id}).Suffix(returning()).ToSql()
}

func (q queries) deleteWhere(f dom.TodoFilter) (string, []any, error) {
	b := q.sb.Delete(todosTable)
	if w := where(f); w != nil {
		b = b.Where(w)
	}
	return b.ToSql()
}

func (q queries) update(id int64, p dom.TodoPatch) (string, []any, error) {
	b, err := q.set(q.sb.Update(todosTable), p)
	if err != nil {
		return "", nil, err
	}
	return b.Where(sq.Eq{"id": id}).Suffix(returning()).ToSql()
}

func (q queries) updateWhere(f dom.TodoFilter, p dom.TodoPatch) (string, []any, error) {
	b, err := q.set(q.sb.Update(todosTable), p)
	if err != nil {
		return "", nil, err
	}
	if w := where(f); w != nil {
		b = b.Where(w)
	}
	return b.ToSql()
}

func (q queries) set(b sq.UpdateBuilder, p dom.TodoPatch) (sq.UpdateBuilder, error) {
	if p.Empty() {
		return b, errEmptyPatch
	}
	if p.Title != nil {
		b = b.Set("title", *p.Title)
	}
	if p.Completed != nil {
		b = b.Set("completed", *p.Completed)
	}
	return b, nil
}

func asInsert(w Write) (InsertTodo, error) {
	switch w := w.(type) {
	case InsertTodo:
		return w, nil
	case *InsertTodo:
		return *w, nil
	default:
		return InsertTodo{}, fmt.Errorf("repo: unsupported write %T", w)
	}
}

func returning() string {
	return "RETURNING " + strings.Join(todoColumns, ", ")
}
