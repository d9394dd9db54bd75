package service

import (
	"context"
	"fmt"
	"strings"

	"todoapi/internal/cache"
	dom "todoapi/internal/domain"
	"todoapi/internal/repo"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"
)

type TodoService struct {
	repo          repo.TodoRepo
	cache         *cache.TodoCache
	sf            singleflight.Group
	log           *log.Logger
	maxImportRows int
}

// NewTodoService creates a TodoService. If c is nil, caching is disabled.
// maxImportRows <= 0 disables the import row limit.
func NewTodoService(r repo.TodoRepo, c *cache.TodoCache, logger *log.Logger, maxImportRows int) *TodoService {
	if logger == nil {
		logger = log.Default()
	}
	return &TodoService{repo: r, cache: c, log: logger, maxImportRows: maxImportRows}
}

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{dom.ErrValidation}, args...)...)
}

// List returns every todo matching f, in insertion order.
func (s *TodoService) List(ctx context.Context, f dom.TodoFilter) ([]dom.Todo, error) {
	f.IDs = nil
	if s.cache == nil {
		return s.repo.Find(ctx, f)
	}
	v, err, _ := s.sf.Do("list:"+cache.ListKey(f), func() (interface{}, error) {
		gen, genErr := s.cache.Generation(ctx)
		if genErr == nil {
			if list, err := s.cache.GetList(ctx, gen, f); err == nil && list != nil {
				return list, nil
			}
		}
		list, err := s.repo.Find(ctx, f)
		if err != nil {
			return nil, err
		}
		if genErr == nil {
			_ = s.cache.SetList(ctx, gen, f, list)
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.Todo), nil
}

// Remaining counts todos that are not completed.
func (s *TodoService) Remaining(ctx context.Context) (int64, error) {
	done := false
	f := dom.TodoFilter{Completed: &done}
	if s.cache == nil {
		return s.repo.Count(ctx, f)
	}
	v, err, _ := s.sf.Do("remaining", func() (interface{}, error) {
		gen, genErr := s.cache.Generation(ctx)
		if genErr == nil {
			if n, ok, err := s.cache.GetRemaining(ctx, gen); err == nil && ok {
				return n, nil
			}
		}
		n, err := s.repo.Count(ctx, f)
		if err != nil {
			return nil, err
		}
		if genErr == nil {
			_ = s.cache.SetRemaining(ctx, gen, n)
		}
		return n, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// Add creates a todo with the trimmed title. Blank titles are rejected.
func (s *TodoService) Add(ctx context.Context, title string) (dom.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return dom.Todo{}, validationErr("title must not be empty")
	}
	t, err := s.repo.Create(ctx, dom.Todo{Title: title})
	if err != nil {
		return dom.Todo{}, err
	}
	s.invalidateCache(ctx)
	return t, nil
}

// Remove deletes the todo and returns it as it was stored.
func (s *TodoService) Remove(ctx context.Context, id int64) (dom.Todo, error) {
	t, err := s.repo.Delete(ctx, id)
	if err != nil {
		return dom.Todo{}, err
	}
	s.invalidateCache(ctx)
	return t, nil
}

// RemoveCompleted deletes every completed todo and returns how many went.
func (s *TodoService) RemoveCompleted(ctx context.Context) (int64, error) {
	done := true
	n, err := s.repo.DeleteWhere(ctx, dom.TodoFilter{Completed: &done})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.invalidateCache(ctx)
	}
	return n, nil
}

// Update changes only the supplied fields. The title is stored as given.
func (s *TodoService) Update(ctx context.Context, id int64, patch dom.TodoPatch) (dom.Todo, error) {
	t, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return dom.Todo{}, err
	}
	if !patch.Empty() {
		s.invalidateCache(ctx)
	}
	return t, nil
}

// BatchUpdate sets completed on every listed id. Unknown ids are skipped.
func (s *TodoService) BatchUpdate(ctx context.Context, ids []int64, completed bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := s.repo.UpdateMany(ctx,
		dom.TodoFilter{IDs: ids},
		dom.TodoPatch{Completed: &completed},
	)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.invalidateCache(ctx)
	}
	return n, nil
}

func (s *TodoService) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		if err := s.cache.InvalidateAll(ctx); err != nil {
			s.log.Warn("cache invalidation failed", "err", err)
		}
	}
}
