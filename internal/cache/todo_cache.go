package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	dom "todoapi/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	keyList       = "todo:list:"
	keyRemaining  = "todo:remaining:"
	keyGeneration = "todo:gen"
)

// TodoCache caches filtered todo lists and the remaining count in Redis.
// Entries are keyed by a generation counter that InvalidateAll bumps, so a
// result loaded before a write and stored after it lands under a stale
// generation and is never read back.
type TodoCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTodoCache returns a new TodoCache.
func NewTodoCache(rdb *redis.Client, ttl time.Duration) *TodoCache {
	return &TodoCache{rdb: rdb, ttl: ttl}
}

// Generation returns the current cache generation. Read it before loading
// from the store and pass it to the Get/Set calls for that load.
func (c *TodoCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, keyGeneration).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return gen, err
}

// GetList returns the cached result for f, or nil on a miss.
func (c *TodoCache) GetList(ctx context.Context, gen int64, f dom.TodoFilter) ([]dom.Todo, error) {
	b, err := c.rdb.Get(ctx, listKey(gen, f)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	list := []dom.Todo{}
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetList stores the result for f.
func (c *TodoCache) SetList(ctx context.Context, gen int64, f dom.TodoFilter, list []dom.Todo) error {
	if list == nil {
		list = []dom.Todo{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, listKey(gen, f), b, c.ttl).Err()
}

// GetRemaining returns the cached remaining count; ok is false on a miss.
func (c *TodoCache) GetRemaining(ctx context.Context, gen int64) (n int64, ok bool, err error) {
	n, err = c.rdb.Get(ctx, remainingKey(gen)).Int64()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// SetRemaining stores the remaining count.
func (c *TodoCache) SetRemaining(ctx context.Context, gen int64, n int64) error {
	return c.rdb.Set(ctx, remainingKey(gen), n, c.ttl).Err()
}

// InvalidateAll starts a new generation and drops the cached entries.
func (c *TodoCache) InvalidateAll(ctx context.Context) error {
	if err := c.rdb.Incr(ctx, keyGeneration).Err(); err != nil {
		return err
	}
	for _, pattern := range []string{keyList + "*", keyRemaining + "*"} {
		iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
				return err
			}
		}
		if err := iter.Err(); err != nil {
			return err
		}
	}
	return nil
}

// ListKey identifies a filtered list independent of generation; the service
// uses it to collapse concurrent loads. Titles are kept verbatim because the
// store may match case-sensitively.
func ListKey(f dom.TodoFilter) string {
	completed := "any"
	if f.Completed != nil {
		completed = strconv.FormatBool(*f.Completed)
	}
	return completed + ":" + strconv.Quote(f.Title)
}

func listKey(gen int64, f dom.TodoFilter) string {
	return keyList + strconv.FormatInt(gen, 10) + ":" + ListKey(f)
}

func remainingKey(gen int64) string {
	return keyRemaining + strconv.FormatInt(gen, 10)
}
