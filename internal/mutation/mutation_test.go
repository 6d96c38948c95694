package mutation

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hallowell/workitem/internal/apperr"
	"github.com/hallowell/workitem/internal/config"
	"github.com/hallowell/workitem/internal/models"
	"github.com/hallowell/workitem/internal/store"
)

func newTestEngine(t *testing.T) (*Engine, *store.Store) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "workitem.db")
	s, err := store.Open(context.Background(), config.Config{Driver: "sqlite", Database: dbPath})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return New(s), s
}

func TestAddWorkItem_RootProject(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	item, err := e.AddWorkItem(ctx, AddWorkItemInput{Name: "launch site"})
	if err != nil {
		t.Fatalf("AddWorkItem: %v", err)
	}
	if item.ParentID != "" || item.Status != models.StatusTodo || item.Priority != models.PriorityMedium {
		t.Fatalf("unexpected defaults: %+v", item)
	}
}

func TestAddWorkItem_RejectsMissingName(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.AddWorkItem(context.Background(), AddWorkItemInput{})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddWorkItem_RejectsChildOfDoneParent(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	parent, err := e.AddWorkItem(ctx, AddWorkItemInput{Name: "project", Status: models.StatusDone})
	if err != nil {
		t.Fatalf("add parent: %v", err)
	}

	_, err = e.AddWorkItem(ctx, AddWorkItemInput{Name: "child", ParentID: parent.ID})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for done parent, got %v", err)
	}
}

func TestAddWorkItem_OrdersChildrenByInsertion(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	parent, err := e.AddWorkItem(ctx, AddWorkItemInput{Name: "project"})
	if err != nil {
		t.Fatalf("add parent: %v", err)
	}
	first, err := e.AddWorkItem(ctx, AddWorkItemInput{Name: "first", ParentID: parent.ID})
	if err != nil {
		t.Fatalf("add first: %v", err)
	}
	second, err := e.AddWorkItem(ctx, AddWorkItemInput{Name: "second", ParentID: parent.ID})
	if err != nil {
		t.Fatalf("add second: %v", err)
	}

	children, err := s.FindChildren(ctx, s.DB(), parent.ID, true, nil)
	if err != nil {
		t.Fatalf("FindChildren: %v", err)
	}
	if len(children) != 2 || children[0].ID != first.ID || children[1].ID != second.ID {
		t.Fatalf("unexpected order: %+v", children)
	}
}

func TestUpdateFields_NoOpWhenUnchanged(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	item, err := e.AddWorkItem(ctx, AddWorkItemInput{Name: "task"})
	if err != nil {
		t.Fatalf("AddWorkItem: %v", err)
	}

	name := item.Name
	updated, err := e.UpdateFields(ctx, item.ID, FieldPayload{Name: &name})
	if err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if !updated.UpdatedAt.Equal(item.UpdatedAt) {
		t.Fatalf("expected no-op to leave updated_at unchanged, got %v vs %v", updated.UpdatedAt, item.UpdatedAt)
	}

	redoable, err := s.FindLastUndoableAction(ctx, s.DB())
	if err != nil {
		t.Fatalf("FindLastUndoableAction: %v", err)
	}
	if redoable != nil && redoable.ActionType == models.ActionUpdateFields {
		t.Fatalf("no-op update should not record a new action")
	}
}

func TestUpdateFields_ChangesStatus(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	item, err := e.AddWorkItem(ctx, AddWorkItemInput{Name: "task"})
	if err != nil {
		t.Fatalf("AddWorkItem: %v", err)
	}

	done := models.StatusDone
	updated, err := e.UpdateFields(ctx, item.ID, FieldPayload{Status: &done})
	if err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if updated.Status != models.StatusDone {
		t.Fatalf("expected status done, got %q", updated.Status)
	}
}

func TestDeleteTask_RejectsRoot(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	root, err := e.AddWorkItem(ctx, AddWorkItemInput{Name: "project"})
	if err != nil {
		t.Fatalf("AddWorkItem: %v", err)
	}

	_, err = e.DeleteTask(ctx, []string{root.ID})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict rejecting root deletion, got %v", err)
	}
}

func TestDeleteProject_CascadesToChildren(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	root, err := e.AddWorkItem(ctx, AddWorkItemInput{Name: "project"})
	if err != nil {
		t.Fatalf("AddWorkItem: %v", err)
	}
	child, err := e.AddWorkItem(ctx, AddWorkItemInput{Name: "task", ParentID: root.ID})
	if err != nil {
		t.Fatalf("AddWorkItem child: %v", err)
	}

	result, err := e.DeleteProject(ctx, root.ID)
	if err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if result.DeletedCount != 2 {
		t.Fatalf("expected 2 deleted, got %d", result.DeletedCount)
	}

	got, err := s.FindByID(ctx, s.DB(), child.ID, true)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got != nil {
		t.Fatalf("expected child inactive after cascade delete")
	}
}

func TestDeleteChildTasks_RequiresExactlyOneSelector(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	root, err := e.AddWorkItem(ctx, AddWorkItemInput{Name: "project"})
	if err != nil {
		t.Fatalf("AddWorkItem: %v", err)
	}

	_, err = e.DeleteChildTasks(ctx, root.ID, nil, false)
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for neither selector set, got %v", err)
	}

	child, err := e.AddWorkItem(ctx, AddWorkItemInput{Name: "task", ParentID: root.ID})
	if err != nil {
		t.Fatalf("AddWorkItem child: %v", err)
	}
	_, err = e.DeleteChildTasks(ctx, root.ID, []string{child.ID}, true)
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for both selectors set, got %v", err)
	}
}

func TestMove_ToStartReordersSiblings(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	root, err := e.AddWorkItem(ctx, AddWorkItemInput{Name: "project"})
	if err != nil {
		t.Fatalf("AddWorkItem: %v", err)
	}
	first, err := e.AddWorkItem(ctx, AddWorkItemInput{Name: "first", ParentID: root.ID})
	if err != nil {
		t.Fatalf("add first: %v", err)
	}
	second, err := e.AddWorkItem(ctx, AddWorkItemInput{Name: "second", ParentID: root.ID})
	if err != nil {
		t.Fatalf("add second: %v", err)
	}

	if _, err := e.MoveItemToStart(ctx, second.ID); err != nil {
		t.Fatalf("MoveItemToStart: %v", err)
	}

	children, err := s.FindChildren(ctx, s.DB(), root.ID, true, nil)
	if err != nil {
		t.Fatalf("FindChildren: %v", err)
	}
	if len(children) != 2 || children[0].ID != second.ID || children[1].ID != first.ID {
		t.Fatalf("unexpected order after move: %+v", children)
	}
}

func TestMove_RejectsSelfReference(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	item, err := e.AddWorkItem(ctx, AddWorkItemInput{Name: "task"})
	if err != nil {
		t.Fatalf("AddWorkItem: %v", err)
	}

	_, err = e.MoveItemAfter(ctx, item.ID, item.ID)
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error moving relative to self, got %v", err)
	}
}

func TestMove_ToStartWhenAlreadyFirstIsNoOp(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	root, err := e.AddWorkItem(ctx, AddWorkItemInput{Name: "project"})
	if err != nil {
		t.Fatalf("AddWorkItem: %v", err)
	}
	first, err := e.AddWorkItem(ctx, AddWorkItemInput{Name: "first", ParentID: root.ID})
	if err != nil {
		t.Fatalf("add first: %v", err)
	}
	if _, err := e.AddWorkItem(ctx, AddWorkItemInput{Name: "second", ParentID: root.ID}); err != nil {
		t.Fatalf("add second: %v", err)
	}

	moved, err := e.MoveItemToStart(ctx, first.ID)
	if err != nil {
		t.Fatalf("MoveItemToStart: %v", err)
	}
	if moved.OrderKey != first.OrderKey {
		t.Fatalf("expected no-op move to leave order key unchanged")
	}
}

func TestPromoteToProject_DetachesFromParent(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	root, err := e.AddWorkItem(ctx, AddWorkItemInput{Name: "project"})
	if err != nil {
		t.Fatalf("AddWorkItem: %v", err)
	}
	child, err := e.AddWorkItem(ctx, AddWorkItemInput{Name: "task", ParentID: root.ID})
	if err != nil {
		t.Fatalf("add child: %v", err)
	}

	promoted, err := e.PromoteToProject(ctx, child.ID)
	if err != nil {
		t.Fatalf("PromoteToProject: %v", err)
	}
	if !promoted.IsRoot() {
		t.Fatalf("expected promoted item to be root, got parent %q", promoted.ParentID)
	}

	edge, err := s.FindDependencyEdge(ctx, s.DB(), root.ID, child.ID)
	if err != nil {
		t.Fatalf("FindDependencyEdge: %v", err)
	}
	if edge == nil || !edge.IsActive || edge.DependencyType != models.DependencyLinked {
		t.Fatalf("expected linked edge from original parent, got %+v", edge)
	}
}

func TestPromoteToProject_RejectsAlreadyRoot(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	root, err := e.AddWorkItem(ctx, AddWorkItemInput{Name: "project"})
	if err != nil {
		t.Fatalf("AddWorkItem: %v", err)
	}

	_, err = e.PromoteToProject(ctx, root.ID)
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error promoting a root, got %v", err)
	}
}

func TestAddDependencies_RejectsSelfDependency(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	item, err := e.AddWorkItem(ctx, AddWorkItemInput{Name: "task"})
	if err != nil {
		t.Fatalf("AddWorkItem: %v", err)
	}

	_, err = e.AddDependencies(ctx, item.ID, []DependencyInput{{DependsOnID: item.ID}})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for self dependency, got %v", err)
	}
}

func TestAddDependencies_RejectsCycle(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	a, err := e.AddWorkItem(ctx, AddWorkItemInput{Name: "a"})
	if err != nil {
		t.Fatalf("add a: %v", err)
	}
	b, err := e.AddWorkItem(ctx, AddWorkItemInput{Name: "b"})
	if err != nil {
		t.Fatalf("add b: %v", err)
	}

	if _, err := e.AddDependencies(ctx, b.ID, []DependencyInput{{DependsOnID: a.ID}}); err != nil {
		t.Fatalf("add b->a: %v", err)
	}

	_, err = e.AddDependencies(ctx, a.ID, []DependencyInput{{DependsOnID: b.ID}})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for cycle, got %v", err)
	}
}

func TestAddDependencies_ThenDelete(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	a, err := e.AddWorkItem(ctx, AddWorkItemInput{Name: "a"})
	if err != nil {
		t.Fatalf("add a: %v", err)
	}
	b, err := e.AddWorkItem(ctx, AddWorkItemInput{Name: "b"})
	if err != nil {
		t.Fatalf("add b: %v", err)
	}

	if _, err := e.AddDependencies(ctx, a.ID, []DependencyInput{{DependsOnID: b.ID}}); err != nil {
		t.Fatalf("AddDependencies: %v", err)
	}
	edge, err := s.FindDependencyEdge(ctx, s.DB(), a.ID, b.ID)
	if err != nil || edge == nil || !edge.IsActive {
		t.Fatalf("expected active edge, got %+v, %v", edge, err)
	}

	if _, err := e.DeleteDependencies(ctx, a.ID, []string{b.ID}); err != nil {
		t.Fatalf("DeleteDependencies: %v", err)
	}
	edge, err = s.FindDependencyEdge(ctx, s.DB(), a.ID, b.ID)
	if err != nil || edge == nil || edge.IsActive {
		t.Fatalf("expected deactivated edge, got %+v, %v", edge, err)
	}
}
