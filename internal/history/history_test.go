package history

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/hallowell/workitem/internal/config"
	"github.com/hallowell/workitem/internal/models"
	"github.com/hallowell/workitem/internal/store"
)

type sqlTx = sql.Tx

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "workitem.db")
	s, err := store.Open(context.Background(), config.Config{Driver: "sqlite", Database: dbPath})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecord_InsertsActionAndSteps(t *testing.T) {
	s := newTestStore(t)
	r := New(s)
	ctx := context.Background()

	var actionID string
	err := s.WithTx(ctx, func(tx *sqlTx) error {
		var err error
		actionID, err = r.Record(ctx, tx, ActionMeta{ActionType: models.ActionAdd, Description: "add work item", WorkItemID: "w1"}, []StepInput{
			{StepType: models.StepUpdate, TableName: "work_items", RecordID: "w1", OldData: `{"is_active":false}`, NewData: `{"is_active":true}`},
		})
		return err
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	action, err := s.FindActionByID(ctx, s.DB(), actionID)
	if err != nil || action == nil {
		t.Fatalf("FindActionByID: %+v, %v", action, err)
	}
	if action.ActionType != models.ActionAdd || action.IsUndone {
		t.Fatalf("unexpected action %+v", action)
	}

	steps, err := s.FindUndoSteps(ctx, s.DB(), actionID)
	if err != nil {
		t.Fatalf("FindUndoSteps: %v", err)
	}
	if len(steps) != 1 || steps[0].StepOrder != 0 {
		t.Fatalf("steps = %+v", steps)
	}
}

func TestRecord_InvalidatesRedoTail(t *testing.T) {
	s := newTestStore(t)
	r := New(s)
	ctx := context.Background()

	var undoneID string
	err := s.WithTx(ctx, func(tx *sqlTx) error {
		var err error
		undoneID, err = r.Record(ctx, tx, ActionMeta{ActionType: models.ActionAdd, WorkItemID: "w1"}, []StepInput{
			{StepType: models.StepUpdate, TableName: "work_items", RecordID: "w1", OldData: "{}", NewData: "{}"},
		})
		return err
	})
	if err != nil {
		t.Fatalf("setup add: %v", err)
	}

	var metaID string
	err = s.WithTx(ctx, func(tx *sqlTx) error {
		var err error
		metaID, err = r.Record(ctx, tx, ActionMeta{ActionType: models.ActionUndo, WorkItemID: "w1"}, nil)
		if err != nil {
			return err
		}
		return s.MarkUndone(ctx, tx, undoneID, true, metaID)
	})
	if err != nil {
		t.Fatalf("setup undo: %v", err)
	}

	redoable, err := s.FindLastRedoableAction(ctx, s.DB())
	if err != nil || redoable == nil || redoable.ID != undoneID {
		t.Fatalf("redoable = %+v, err = %v", redoable, err)
	}

	err = s.WithTx(ctx, func(tx *sqlTx) error {
		_, err := r.Record(ctx, tx, ActionMeta{ActionType: models.ActionAdd, WorkItemID: "w2"}, []StepInput{
			{StepType: models.StepUpdate, TableName: "work_items", RecordID: "w2", OldData: "{}", NewData: "{}"},
		})
		return err
	})
	if err != nil {
		t.Fatalf("new mutation: %v", err)
	}

	redoable, err = s.FindLastRedoableAction(ctx, s.DB())
	if err != nil {
		t.Fatalf("FindLastRedoableAction: %v", err)
	}
	if redoable != nil {
		t.Fatalf("expected redo tail invalidated, got %+v", redoable)
	}
}
