package undoredo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hallowell/workitem/internal/config"
	"github.com/hallowell/workitem/internal/models"
	"github.com/hallowell/workitem/internal/mutation"
	"github.com/hallowell/workitem/internal/store"
)

func newTestStack(t *testing.T) (*store.Store, *mutation.Engine, *Engine) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "workitem.db")
	s, err := store.Open(context.Background(), config.Config{Driver: "sqlite", Database: dbPath})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, mutation.New(s), New(s)
}

func TestUndoLastAction_RevertsAdd(t *testing.T) {
	s, m, u := newTestStack(t)
	ctx := context.Background()

	item, err := m.AddWorkItem(ctx, mutation.AddWorkItemInput{Name: "project"})
	if err != nil {
		t.Fatalf("AddWorkItem: %v", err)
	}

	reverted, err := u.UndoLastAction(ctx)
	if err != nil {
		t.Fatalf("UndoLastAction: %v", err)
	}
	if reverted == nil || reverted.ActionType != models.ActionAdd {
		t.Fatalf("expected reverted ADD action, got %+v", reverted)
	}

	got, err := s.FindByID(ctx, s.DB(), item.ID, true)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got != nil {
		t.Fatalf("expected item inactive after undo, still found active")
	}
}

func TestUndoLastAction_NoneReturnsNil(t *testing.T) {
	_, _, u := newTestStack(t)
	reverted, err := u.UndoLastAction(context.Background())
	if err != nil {
		t.Fatalf("UndoLastAction: %v", err)
	}
	if reverted != nil {
		t.Fatalf("expected nil with no undoable action, got %+v", reverted)
	}
}

func TestRedoLastUndo_ReappliesAdd(t *testing.T) {
	s, m, u := newTestStack(t)
	ctx := context.Background()

	item, err := m.AddWorkItem(ctx, mutation.AddWorkItemInput{Name: "project"})
	if err != nil {
		t.Fatalf("AddWorkItem: %v", err)
	}
	if _, err := u.UndoLastAction(ctx); err != nil {
		t.Fatalf("UndoLastAction: %v", err)
	}

	redone, err := u.RedoLastUndo(ctx)
	if err != nil {
		t.Fatalf("RedoLastUndo: %v", err)
	}
	if redone == nil || redone.WorkItemID != item.ID {
		t.Fatalf("unexpected redone action: %+v", redone)
	}

	got, err := s.FindByID(ctx, s.DB(), item.ID, true)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got == nil {
		t.Fatalf("expected item active again after redo")
	}
}

func TestUndoRedo_RoundTripsSetStatus(t *testing.T) {
	s, m, u := newTestStack(t)
	ctx := context.Background()

	item, err := m.AddWorkItem(ctx, mutation.AddWorkItemInput{Name: "project"})
	if err != nil {
		t.Fatalf("AddWorkItem: %v", err)
	}
	if _, err := m.SetStatus(ctx, item.ID, models.StatusInProgress); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	if _, err := u.UndoLastAction(ctx); err != nil {
		t.Fatalf("UndoLastAction: %v", err)
	}
	got, err := s.FindByID(ctx, s.DB(), item.ID, true)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got == nil {
		t.Fatalf("expected item still present and active after undoing a status change")
	}
	if got.Status != models.StatusTodo {
		t.Fatalf("expected status reverted to todo, got %q", got.Status)
	}
	if got.Name != "project" {
		t.Fatalf("expected name untouched by partial undo, got %q", got.Name)
	}

	if _, err := u.RedoLastUndo(ctx); err != nil {
		t.Fatalf("RedoLastUndo: %v", err)
	}
	got, err = s.FindByID(ctx, s.DB(), item.ID, true)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Status != models.StatusInProgress {
		t.Fatalf("expected status reapplied to in-progress, got %q", got.Status)
	}
}

func TestUndoRedo_RoundTripsMove(t *testing.T) {
	s, m, u := newTestStack(t)
	ctx := context.Background()

	project, err := m.AddWorkItem(ctx, mutation.AddWorkItemInput{Name: "project"})
	if err != nil {
		t.Fatalf("AddWorkItem project: %v", err)
	}
	first, err := m.AddWorkItem(ctx, mutation.AddWorkItemInput{ParentID: project.ID, Name: "first"})
	if err != nil {
		t.Fatalf("AddWorkItem first: %v", err)
	}
	second, err := m.AddWorkItem(ctx, mutation.AddWorkItemInput{ParentID: project.ID, Name: "second"})
	if err != nil {
		t.Fatalf("AddWorkItem second: %v", err)
	}
	origKey := first.OrderKey

	if _, err := m.MoveItemAfter(ctx, first.ID, second.ID); err != nil {
		t.Fatalf("MoveItemAfter: %v", err)
	}

	if _, err := u.UndoLastAction(ctx); err != nil {
		t.Fatalf("UndoLastAction: %v", err)
	}
	got, err := s.FindByID(ctx, s.DB(), first.ID, true)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.OrderKey != origKey {
		t.Fatalf("expected order_key reverted to %q, got %q", origKey, got.OrderKey)
	}
	if got.Name != "first" {
		t.Fatalf("expected name untouched by partial undo, got %q", got.Name)
	}
}

func TestUndoRedo_RoundTripsPromote(t *testing.T) {
	s, m, u := newTestStack(t)
	ctx := context.Background()

	project, err := m.AddWorkItem(ctx, mutation.AddWorkItemInput{Name: "main"})
	if err != nil {
		t.Fatalf("AddWorkItem project: %v", err)
	}
	sub, err := m.AddWorkItem(ctx, mutation.AddWorkItemInput{ParentID: project.ID, Name: "sub"})
	if err != nil {
		t.Fatalf("AddWorkItem sub: %v", err)
	}

	if _, err := m.PromoteToProject(ctx, sub.ID); err != nil {
		t.Fatalf("PromoteToProject: %v", err)
	}
	promoted, err := s.FindByID(ctx, s.DB(), sub.ID, true)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if !promoted.IsRoot() {
		t.Fatalf("expected sub to be a root after promotion")
	}

	if _, err := u.UndoLastAction(ctx); err != nil {
		t.Fatalf("UndoLastAction: %v", err)
	}
	reverted, err := s.FindByID(ctx, s.DB(), sub.ID, true)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if reverted.ParentID != project.ID {
		t.Fatalf("expected sub reparented back to %q, got %q", project.ID, reverted.ParentID)
	}
	if reverted.Name != "sub" {
		t.Fatalf("expected name untouched by partial undo, got %q", reverted.Name)
	}
}

func TestRedoLastUndo_InvalidatedByNewMutation(t *testing.T) {
	_, m, u := newTestStack(t)
	ctx := context.Background()

	if _, err := m.AddWorkItem(ctx, mutation.AddWorkItemInput{Name: "first"}); err != nil {
		t.Fatalf("add first: %v", err)
	}
	if _, err := u.UndoLastAction(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if _, err := m.AddWorkItem(ctx, mutation.AddWorkItemInput{Name: "second"}); err != nil {
		t.Fatalf("add second: %v", err)
	}

	redone, err := u.RedoLastUndo(ctx)
	if err != nil {
		t.Fatalf("RedoLastUndo: %v", err)
	}
	if redone != nil {
		t.Fatalf("expected redo tail invalidated by intervening mutation, got %+v", redone)
	}
}
