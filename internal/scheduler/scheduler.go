// Package scheduler implements getNextTask: candidate collection over the
// active todo items, finish-to-start blocking removal, and a priority
// ordering, grounded on the teacher's ready-issue filtering in
// cmd/dependencies.go and expressed as a sort.Slice comparator chain in the
// style of cmd/list.go/cmd/stats_analytics.go.
package scheduler

import (
	"context"
	"sort"

	"github.com/hallowell/workitem/internal/apperr"
	"github.com/hallowell/workitem/internal/models"
	"github.com/hallowell/workitem/internal/store"
)

// Scheduler picks the next eligible task from a Store.
type Scheduler struct {
	store *store.Store
}

// New returns a Scheduler backed by s.
func New(s *store.Store) *Scheduler {
	return &Scheduler{store: s}
}

// GetNextTaskParams scopes and filters the candidate search. IncludeTags and
// ExcludeTags are accepted but are documented no-ops: the data model carries
// no tag column.
type GetNextTaskParams struct {
	ScopeItemID string
	IncludeTags []string
	ExcludeTags []string
}

// GetNextTask returns the highest-priority unblocked todo item in scope, or
// nil if none qualify.
func (s *Scheduler) GetNextTask(ctx context.Context, params GetNextTaskParams) (*models.WorkItem, error) {
	q := s.store.DB()

	var candidates []*models.WorkItem
	if params.ScopeItemID != "" {
		scope, err := s.store.FindByID(ctx, q, params.ScopeItemID, true)
		if err != nil {
			return nil, err
		}
		if scope == nil {
			return nil, nil
		}
		todo := models.StatusTodo
		if scope.Status == models.StatusTodo {
			candidates = append(candidates, scope)
		}
		descendants, err := s.store.FindDescendants(ctx, q, params.ScopeItemID)
		if err != nil {
			return nil, err
		}
		for _, d := range descendants {
			if d.IsActive && d.Status == todo {
				candidates = append(candidates, d)
			}
		}
	} else {
		var err error
		todo := models.StatusTodo
		candidates, err = s.collectAllTodo(ctx, q, &todo)
		if err != nil {
			return nil, err
		}
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	deps, err := s.store.FindDependenciesForSet(ctx, q, ids)
	if err != nil {
		return nil, err
	}

	blockingDeps := map[string][]string{}
	for _, d := range deps {
		if d.DependencyType == models.DependencyFinishToStart {
			blockingDeps[d.WorkItemID] = append(blockingDeps[d.WorkItemID], d.DependsOnID)
		}
	}

	var survivors []*models.WorkItem
	for _, c := range candidates {
		blocked := false
		for _, targetID := range blockingDeps[c.ID] {
			target, err := s.store.FindByID(ctx, q, targetID, true)
			if err != nil {
				return nil, err
			}
			if target == nil || target.Status != models.StatusDone {
				blocked = true
				break
			}
		}
		if !blocked {
			survivors = append(survivors, c)
		}
	}

	if len(survivors) == 0 {
		return nil, nil
	}

	sort.Slice(survivors, func(i, j int) bool {
		return less(survivors[i], survivors[j])
	})

	return survivors[0], nil
}

// less orders a before b: due_date ascending (nulls last), priority
// (high < medium < low), order_key ascending, created_at ascending.
func less(a, b *models.WorkItem) bool {
	if (a.DueDate == nil) != (b.DueDate == nil) {
		return a.DueDate != nil
	}
	if a.DueDate != nil && b.DueDate != nil && !a.DueDate.Equal(*b.DueDate) {
		return a.DueDate.Before(*b.DueDate)
	}

	ra, rb := models.PriorityRank(a.Priority), models.PriorityRank(b.Priority)
	if ra != rb {
		return ra < rb
	}

	if a.OrderKey != b.OrderKey {
		return a.OrderKey < b.OrderKey
	}

	return a.CreatedAt.Before(b.CreatedAt)
}

func (s *Scheduler) collectAllTodo(ctx context.Context, q store.Queryer, status *models.Status) ([]*models.WorkItem, error) {
	roots, err := s.store.FindRoots(ctx, q, true, nil)
	if err != nil {
		return nil, apperr.Storage(err)
	}

	var all []*models.WorkItem
	var walk func(item *models.WorkItem) error
	walk = func(item *models.WorkItem) error {
		if item.Status == *status {
			all = append(all, item)
		}
		children, err := s.store.FindChildren(ctx, q, item.ID, true, nil)
		if err != nil {
			return err
		}
		for _, c := range children {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	for _, r := range roots {
		if err := walk(r); err != nil {
			return nil, err
		}
	}
	return all, nil
}
