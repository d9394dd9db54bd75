package cache

import (
	"context"
	"testing"
	"time"

	dom "todoapi/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*TodoCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewTodoCache(rdb, time.Minute), mr
}

func TestTodoCache_List(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	done := true
	f := dom.TodoFilter{Completed: &done, Title: "milk"}

	got, err := c.GetList(ctx, 0, f)
	require.NoError(t, err)
	assert.Nil(t, got, "miss")

	want := []dom.Todo{{ID: 1, Title: "Buy milk", Completed: true}}
	require.NoError(t, c.SetList(ctx, 0, f, want))

	got, err = c.GetList(ctx, 0, f)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	other, err := c.GetList(ctx, 0, dom.TodoFilter{Title: "milk"})
	require.NoError(t, err)
	assert.Nil(t, other, "different filter must not share a key")

	mr.FastForward(2 * time.Minute)
	got, err = c.GetList(ctx, 0, f)
	require.NoError(t, err)
	assert.Nil(t, got, "expired")
}

func TestTodoCache_EmptyListIsAHit(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetList(ctx, 0, dom.TodoFilter{}, nil))
	got, err := c.GetList(ctx, 0, dom.TodoFilter{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTodoCache_Remaining(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_, ok, err := c.GetRemaining(ctx, 0)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetRemaining(ctx, 0, 0))
	n, ok, err := c.GetRemaining(ctx, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(0), n)
}

func TestTodoCache_InvalidateAll(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	done := false

	require.NoError(t, c.SetList(ctx, 0, dom.TodoFilter{}, []dom.Todo{{ID: 1, Title: "a"}}))
	require.NoError(t, c.SetList(ctx, 0, dom.TodoFilter{Completed: &done}, []dom.Todo{{ID: 1, Title: "a"}}))
	require.NoError(t, c.SetRemaining(ctx, 0, 1))
	require.NoError(t, mr.Set("unrelated", "keep"))

	require.NoError(t, c.InvalidateAll(ctx))

	assert.ElementsMatch(t, []string{"todo:gen", "unrelated"}, mr.Keys())
	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)
}

func TestTodoCache_StaleGenerationIsNotRead(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	// a reader takes the generation, then a write invalidates before the
	// reader stores what it loaded
	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	require.NoError(t, c.InvalidateAll(ctx))
	require.NoError(t, c.SetList(ctx, gen, dom.TodoFilter{}, []dom.Todo{{ID: 1, Title: "old"}}))
	require.NoError(t, c.SetRemaining(ctx, gen, 1))

	cur, err := c.Generation(ctx)
	require.NoError(t, err)
	require.NotEqual(t, gen, cur)

	got, err := c.GetList(ctx, cur, dom.TodoFilter{})
	require.NoError(t, err)
	assert.Nil(t, got)
	_, ok, err := c.GetRemaining(ctx, cur)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListKey(t *testing.T) {
	yes, no := true, false
	assert.Equal(t, `any:""`, ListKey(dom.TodoFilter{}))
	assert.Equal(t, `true:"Milk"`, ListKey(dom.TodoFilter{Completed: &yes, Title: "Milk"}))
	assert.NotEqual(t, ListKey(dom.TodoFilter{Completed: &no}), ListKey(dom.TodoFilter{}))
	assert.Equal(t, `todo:list:3:true:"Milk"`, listKey(3, dom.TodoFilter{Completed: &yes, Title: "Milk"}))
}
