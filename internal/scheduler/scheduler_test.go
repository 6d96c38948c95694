package scheduler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hallowell/workitem/internal/config"
	"github.com/hallowell/workitem/internal/models"
	"github.com/hallowell/workitem/internal/mutation"
	"github.com/hallowell/workitem/internal/store"
)

func newTestStack(t *testing.T) (*store.Store, *mutation.Engine, *Scheduler) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "workitem.db")
	s, err := store.Open(context.Background(), config.Config{Driver: "sqlite", Database: dbPath})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, mutation.New(s), New(s)
}

func TestGetNextTask_EmptyReturnsNil(t *testing.T) {
	_, _, sched := newTestStack(t)
	task, err := sched.GetNextTask(context.Background(), GetNextTaskParams{})
	if err != nil {
		t.Fatalf("GetNextTask: %v", err)
	}
	if task != nil {
		t.Fatalf("expected nil with no candidates, got %+v", task)
	}
}

func TestGetNextTask_OrdersByPriorityWithoutDueDates(t *testing.T) {
	_, m, sched := newTestStack(t)
	ctx := context.Background()

	low, err := m.AddWorkItem(ctx, mutation.AddWorkItemInput{Name: "low priority", Priority: models.PriorityLow})
	if err != nil {
		t.Fatalf("add low: %v", err)
	}
	high, err := m.AddWorkItem(ctx, mutation.AddWorkItemInput{Name: "high priority", Priority: models.PriorityHigh})
	if err != nil {
		t.Fatalf("add high: %v", err)
	}
	_ = low

	task, err := sched.GetNextTask(ctx, GetNextTaskParams{})
	if err != nil {
		t.Fatalf("GetNextTask: %v", err)
	}
	if task == nil || task.ID != high.ID {
		t.Fatalf("expected high priority item first, got %+v", task)
	}
}

func TestGetNextTask_DueDateBeatsPriority(t *testing.T) {
	_, m, sched := newTestStack(t)
	ctx := context.Background()

	due := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	urgent, err := m.AddWorkItem(ctx, mutation.AddWorkItemInput{Name: "urgent low", Priority: models.PriorityLow, DueDate: &due})
	if err != nil {
		t.Fatalf("add urgent: %v", err)
	}
	if _, err := m.AddWorkItem(ctx, mutation.AddWorkItemInput{Name: "no due high", Priority: models.PriorityHigh}); err != nil {
		t.Fatalf("add other: %v", err)
	}

	task, err := sched.GetNextTask(ctx, GetNextTaskParams{})
	if err != nil {
		t.Fatalf("GetNextTask: %v", err)
	}
	if task == nil || task.ID != urgent.ID {
		t.Fatalf("expected due-dated item to win regardless of priority, got %+v", task)
	}
}

func TestGetNextTask_SkipsBlockedItems(t *testing.T) {
	_, m, sched := newTestStack(t)
	ctx := context.Background()

	blocker, err := m.AddWorkItem(ctx, mutation.AddWorkItemInput{Name: "blocker"})
	if err != nil {
		t.Fatalf("add blocker: %v", err)
	}
	blocked, err := m.AddWorkItem(ctx, mutation.AddWorkItemInput{Name: "blocked", Priority: models.PriorityHigh})
	if err != nil {
		t.Fatalf("add blocked: %v", err)
	}
	if _, err := m.AddDependencies(ctx, blocked.ID, []mutation.DependencyInput{{DependsOnID: blocker.ID, Type: models.DependencyFinishToStart}}); err != nil {
		t.Fatalf("AddDependencies: %v", err)
	}

	task, err := sched.GetNextTask(ctx, GetNextTaskParams{})
	if err != nil {
		t.Fatalf("GetNextTask: %v", err)
	}
	if task == nil || task.ID != blocker.ID {
		t.Fatalf("expected blocker to be the only unblocked candidate, got %+v", task)
	}

	done := models.StatusDone
	if _, err := m.UpdateFields(ctx, blocker.ID, mutation.FieldPayload{Status: &done}); err != nil {
		t.Fatalf("mark blocker done: %v", err)
	}

	task, err = sched.GetNextTask(ctx, GetNextTaskParams{})
	if err != nil {
		t.Fatalf("GetNextTask after unblock: %v", err)
	}
	if task == nil || task.ID != blocked.ID {
		t.Fatalf("expected previously blocked item to become eligible, got %+v", task)
	}
}

func TestGetNextTask_LinkedDependencyNeverBlocks(t *testing.T) {
	_, m, sched := newTestStack(t)
	ctx := context.Background()

	a, err := m.AddWorkItem(ctx, mutation.AddWorkItemInput{Name: "a"})
	if err != nil {
		t.Fatalf("add a: %v", err)
	}
	b, err := m.AddWorkItem(ctx, mutation.AddWorkItemInput{Name: "b"})
	if err != nil {
		t.Fatalf("add b: %v", err)
	}
	if _, err := m.AddDependencies(ctx, b.ID, []mutation.DependencyInput{{DependsOnID: a.ID, Type: models.DependencyLinked}}); err != nil {
		t.Fatalf("AddDependencies: %v", err)
	}

	task, err := sched.GetNextTask(ctx, GetNextTaskParams{})
	if err != nil {
		t.Fatalf("GetNextTask: %v", err)
	}
	if task == nil {
		t.Fatalf("expected a candidate despite linked dependency, got nil")
	}
}

func TestGetNextTask_ScopeRestrictsToSubtree(t *testing.T) {
	_, m, sched := newTestStack(t)
	ctx := context.Background()

	projectA, err := m.AddWorkItem(ctx, mutation.AddWorkItemInput{Name: "project a", Status: models.StatusInProgress})
	if err != nil {
		t.Fatalf("add project a: %v", err)
	}
	taskA, err := m.AddWorkItem(ctx, mutation.AddWorkItemInput{Name: "task a", ParentID: projectA.ID})
	if err != nil {
		t.Fatalf("add task a: %v", err)
	}
	projectB, err := m.AddWorkItem(ctx, mutation.AddWorkItemInput{Name: "project b", Priority: models.PriorityHigh})
	if err != nil {
		t.Fatalf("add project b: %v", err)
	}
	if _, err := m.AddWorkItem(ctx, mutation.AddWorkItemInput{Name: "task b", ParentID: projectB.ID, Priority: models.PriorityHigh}); err != nil {
		t.Fatalf("add task b: %v", err)
	}

	task, err := sched.GetNextTask(ctx, GetNextTaskParams{ScopeItemID: projectA.ID})
	if err != nil {
		t.Fatalf("GetNextTask: %v", err)
	}
	if task == nil || task.ID != taskA.ID {
		t.Fatalf("expected scope to restrict candidates to project a's subtree, got %+v", task)
	}
}

func TestGetNextTask_NonexistentScopeIsEmpty(t *testing.T) {
	_, _, sched := newTestStack(t)
	task, err := sched.GetNextTask(context.Background(), GetNextTaskParams{ScopeItemID: "missing"})
	if err != nil {
		t.Fatalf("GetNextTask: %v", err)
	}
	if task != nil {
		t.Fatalf("expected nil for nonexistent scope, got %+v", task)
	}
}
