package repo

import (
	"testing"

	dom "todoapi/internal/domain"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueries_FindPlaceholders(t *testing.T) {
	f := dom.TodoFilter{Completed: boolPtr(false), Title: "x"}

	query, args, err := newQueries(sq.Question).find(f)
	require.NoError(t, err)
	assert.Equal(t, `SELECT id, title, completed FROM todos WHERE (completed = ? AND title LIKE ? ESCAPE '\') ORDER BY id`, query)
	assert.Equal(t, []any{false, "%x%"}, args)

	query, _, err = newQueries(sq.Dollar).find(f)
	require.NoError(t, err)
	assert.Contains(t, query, "completed = $1 AND title LIKE $2")
}

func TestWhere(t *testing.T) {
	assert.Nil(t, where(dom.TodoFilter{}))

	query, args, err := where(dom.TodoFilter{IDs: []int64{}}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(1 = 0)", query)
	assert.Empty(t, args)

	_, args, err = where(dom.TodoFilter{Title: `50%_off\`}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, []any{`%50\%\_off\\%`}, args)
}

func TestQueries_EmptyPatch(t *testing.T) {
	q := newQueries(sq.Question)

	_, _, err := q.update(1, dom.TodoPatch{})
	assert.ErrorIs(t, err, errEmptyPatch)

	_, _, err = q.updateWhere(dom.TodoFilter{}, dom.TodoPatch{})
	assert.ErrorIs(t, err, errEmptyPatch)
}
