package dispatch

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hallowell/workitem/internal/config"
	"github.com/hallowell/workitem/internal/models"
	"github.com/hallowell/workitem/internal/store"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "workitem.db")
	s, err := store.Open(context.Background(), config.Config{Driver: "sqlite", Database: dbPath})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return New(s)
}

func TestCreateProjectAndAddTask(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	project, err := d.CreateProject(ctx, CreateProjectParams{Name: "launch site"})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	task, err := d.AddTask(ctx, AddTaskParams{ParentWorkItemID: project.ID, Name: "write copy"})
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if task.ParentID != project.ID {
		t.Fatalf("expected parent %s, got %s", project.ID, task.ParentID)
	}

	details, err := d.GetDetails(ctx, GetDetailsParams{WorkItemID: project.ID})
	if err != nil {
		t.Fatalf("GetDetails: %v", err)
	}
	if len(details.Children) != 1 || details.Children[0].ID != task.ID {
		t.Fatalf("expected one child %s, got %+v", task.ID, details.Children)
	}
}

func TestListWorkItemsRejectsConflictingScope(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	_, err := d.ListWorkItems(ctx, ListWorkItemsParams{RootsOnly: true, ParentWorkItemID: "wi-1"})
	if err == nil {
		t.Fatal("expected error for conflicting scope")
	}
	dispErr, ok := err.(*Error)
	if !ok || dispErr.Code != ErrInvalidParams {
		t.Fatalf("expected ErrInvalidParams, got %#v", err)
	}
}

func TestListWorkItemsDefaultsToAll(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	if _, err := d.CreateProject(ctx, CreateProjectParams{Name: "a"}); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if _, err := d.CreateProject(ctx, CreateProjectParams{Name: "b"}); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	items, err := d.ListWorkItems(ctx, ListWorkItemsParams{})
	if err != nil {
		t.Fatalf("ListWorkItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
}

func TestDeleteProjectThenUndoRestores(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	project, err := d.CreateProject(ctx, CreateProjectParams{Name: "launch site"})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	result, err := d.DeleteProject(ctx, DeleteProjectParams{ProjectID: project.ID})
	if err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if result.DeletedCount != 1 {
		t.Fatalf("expected 1 deleted item, got %d", result.DeletedCount)
	}

	if _, err := d.GetDetails(ctx, GetDetailsParams{WorkItemID: project.ID}); err == nil {
		t.Fatal("expected not-found after delete")
	}

	action, err := d.UndoLastAction(ctx)
	if err != nil {
		t.Fatalf("UndoLastAction: %v", err)
	}
	if action == nil {
		t.Fatal("expected an undoable action")
	}

	details, err := d.GetDetails(ctx, GetDetailsParams{WorkItemID: project.ID})
	if err != nil {
		t.Fatalf("GetDetails after undo: %v", err)
	}
	if details.Item.Name != "launch site" {
		t.Fatalf("expected restored item, got %+v", details.Item)
	}
}

func TestAddDependenciesRejectsCycle(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	a, err := d.CreateProject(ctx, CreateProjectParams{Name: "a"})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	b, err := d.CreateProject(ctx, CreateProjectParams{Name: "b"})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	if _, err := d.AddDependencies(ctx, AddDependenciesParams{
		WorkItemID:   b.ID,
		Dependencies: []DependencyParam{{DependsOnWorkItemID: a.ID, DependencyType: models.DependencyFinishToStart}},
	}); err != nil {
		t.Fatalf("AddDependencies: %v", err)
	}

	_, err = d.AddDependencies(ctx, AddDependenciesParams{
		WorkItemID:   a.ID,
		Dependencies: []DependencyParam{{DependsOnWorkItemID: b.ID, DependencyType: models.DependencyFinishToStart}},
	})
	if err == nil {
		t.Fatal("expected cycle rejection")
	}
}

func TestGetNextTaskSkipsBlocked(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	project, err := d.CreateProject(ctx, CreateProjectParams{Name: "launch site"})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if _, err := d.SetStatus(ctx, SetStatusParams{WorkItemID: project.ID, Status: models.StatusInProgress}); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	blocker, err := d.AddTask(ctx, AddTaskParams{ParentWorkItemID: project.ID, Name: "design", Priority: models.PriorityLow})
	if err != nil {
		t.Fatalf("AddTask blocker: %v", err)
	}
	blocked, err := d.AddTask(ctx, AddTaskParams{
		ParentWorkItemID: project.ID,
		Name:             "build",
		Priority:         models.PriorityHigh,
		Dependencies:     []DependencyParam{{DependsOnWorkItemID: blocker.ID, DependencyType: models.DependencyFinishToStart}},
	})
	if err != nil {
		t.Fatalf("AddTask blocked: %v", err)
	}

	next, err := d.GetNextTask(ctx, GetNextTaskParams{ScopeItemID: project.ID})
	if err != nil {
		t.Fatalf("GetNextTask: %v", err)
	}
	if next == nil || next.ID != blocker.ID {
		t.Fatalf("expected blocker %s as next task, got %+v", blocker.ID, next)
	}
	if blocked.ID == "" {
		t.Fatal("blocked task should still have been created")
	}
}
