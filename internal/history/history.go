// Package history appends one Action plus N ordered UndoSteps per mutation
// and invalidates the redo tail, inside the caller's transaction.
//
// Grounded on the teacher's issues_logged.go/relations_logged.go pattern of
// "perform the write, marshal before/after JSON, insert one action_log row
// in the same transaction" — generalized here to N ordered UndoStep rows per
// action instead of one built-in before/after pair.
package history

import (
	"context"
	"database/sql"
	"time"

	"github.com/hallowell/workitem/internal/models"
	"github.com/hallowell/workitem/internal/store"
)

// Recorder appends actions and their undo steps via a Store.
type Recorder struct {
	store *store.Store
}

// New returns a Recorder backed by s.
func New(s *store.Store) *Recorder {
	return &Recorder{store: s}
}

// StepInput is a partially-built UndoStep; ActionID and StepOrder are filled
// in by Record.
type StepInput struct {
	StepType  models.StepType
	TableName string
	RecordID  string
	OldData   string
	NewData   string
}

// ActionMeta describes the action being recorded.
type ActionMeta struct {
	ActionType  models.ActionType
	Description string
	WorkItemID  string
}

// Record inserts one Action row and len(steps) UndoStep rows with
// monotonically increasing StepOrder, in that order, then invalidates any
// redo tail made stale by this new mutation. Returns the new action's ID.
func (r *Recorder) Record(ctx context.Context, tx *sql.Tx, meta ActionMeta, steps []StepInput) (string, error) {
	actionID := store.NewID()
	action := &models.Action{
		ID:          actionID,
		Timestamp:   time.Now().UTC(),
		ActionType:  meta.ActionType,
		Description: meta.Description,
		WorkItemID:  meta.WorkItemID,
		IsUndone:    false,
	}
	if err := r.store.InsertAction(ctx, tx, action); err != nil {
		return "", err
	}

	undoSteps := make([]*models.UndoStep, len(steps))
	for i, in := range steps {
		undoSteps[i] = &models.UndoStep{
			ActionID:  actionID,
			StepOrder: i,
			StepType:  in.StepType,
			TableName: in.TableName,
			RecordID:  in.RecordID,
			OldData:   in.OldData,
			NewData:   in.NewData,
		}
	}
	if err := r.store.InsertUndoSteps(ctx, tx, undoSteps); err != nil {
		return "", err
	}

	if meta.ActionType != models.ActionUndo && meta.ActionType != models.ActionRedo {
		if err := r.store.InvalidateRedoTail(ctx, tx, actionID); err != nil {
			return "", err
		}
	}

	return actionID, nil
}
