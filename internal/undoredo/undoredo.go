// Package undoredo implements the undo/redo stack: a single table-agnostic
// replayer keyed on (table_name, record_id), instead of a per-entity-type
// switch. Grounded on the teacher's cmd/undo.go performUndo/undoIssueAction/
// undoDependencyAction shape, generalized to one PK-resolution table
// (store.WriteRow/store.DeleteRow) and extended with a redo half and
// invalidate-on-new-mutation tracking the teacher's single-session undo
// never needed.
package undoredo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hallowell/workitem/internal/eventsink"
	"github.com/hallowell/workitem/internal/history"
	"github.com/hallowell/workitem/internal/models"
	"github.com/hallowell/workitem/internal/store"
)

// Engine applies and reverses UndoSteps against a Store.
type Engine struct {
	store    *store.Store
	recorder *history.Recorder
	sink     eventsink.Sink
}

// New returns an Engine backed by s. Events are discarded until SetSink is
// called.
func New(s *store.Store) *Engine {
	return &Engine{store: s, recorder: history.New(s), sink: eventsink.NoopSink{}}
}

// SetSink installs the Sink UndoLastAction/RedoLastUndo publish to after
// each successful commit.
func (e *Engine) SetSink(sink eventsink.Sink) {
	if sink == nil {
		sink = eventsink.NoopSink{}
	}
	e.sink = sink
}

// UndoLastAction reverts the most recent non-undone, non-meta action and
// returns it, or nil if there is nothing to undo.
func (e *Engine) UndoLastAction(ctx context.Context) (*models.Action, error) {
	var target *models.Action
	var metaID string
	err := e.store.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		target, err = e.store.FindLastUndoableAction(ctx, tx)
		if err != nil {
			return err
		}
		if target == nil {
			return nil
		}

		steps, err := e.store.FindUndoSteps(ctx, tx, target.ID)
		if err != nil {
			return err
		}
		for i := len(steps) - 1; i >= 0; i-- {
			if err := e.applyInverse(ctx, tx, steps[i]); err != nil {
				return err
			}
		}

		metaID, err = e.recorder.Record(ctx, tx, history.ActionMeta{
			ActionType:  models.ActionUndo,
			Description: fmt.Sprintf("undo: %s", target.Description),
			WorkItemID:  target.WorkItemID,
		}, nil)
		if err != nil {
			return err
		}

		return e.store.MarkUndone(ctx, tx, target.ID, true, metaID)
	})
	if err != nil {
		return nil, err
	}
	if target != nil {
		e.sink.Publish(ctx, eventsink.Event{
			ActionID: metaID, ActionType: models.ActionUndo, WorkItemID: target.WorkItemID,
			Description: fmt.Sprintf("undo: %s", target.Description), Timestamp: time.Now().UTC(),
		})
	}
	return target, nil
}

// RedoLastUndo re-applies the most recent undone-but-not-invalidated action
// and returns it, or nil if there is nothing eligible to redo.
func (e *Engine) RedoLastUndo(ctx context.Context) (*models.Action, error) {
	var target *models.Action
	var metaID string
	err := e.store.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		target, err = e.store.FindLastRedoableAction(ctx, tx)
		if err != nil {
			return err
		}
		if target == nil {
			return nil
		}

		steps, err := e.store.FindUndoSteps(ctx, tx, target.ID)
		if err != nil {
			return err
		}
		for _, step := range steps {
			if err := e.applyForward(ctx, tx, step); err != nil {
				return err
			}
		}

		metaID, err = e.recorder.Record(ctx, tx, history.ActionMeta{
			ActionType:  models.ActionRedo,
			Description: fmt.Sprintf("redo: %s", target.Description),
			WorkItemID:  target.WorkItemID,
		}, nil)
		if err != nil {
			return err
		}

		return e.store.MarkUndone(ctx, tx, target.ID, false, "")
	})
	if err != nil {
		return nil, err
	}
	if target != nil {
		e.sink.Publish(ctx, eventsink.Event{
			ActionID: metaID, ActionType: models.ActionRedo, WorkItemID: target.WorkItemID,
			Description: fmt.Sprintf("redo: %s", target.Description), Timestamp: time.Now().UTC(),
		})
	}
	return target, nil
}

// applyInverse replays one step backward: UPDATE restores old_data (a
// partial column write located by the step's RecordID, so a row a forward
// ADD merely deactivated is reactivated the same way any other field is
// reverted), a forward INSERT is undone by deleting the row, a forward
// DELETE is undone by writing new_data over the row through WriteRow. WriteRow
// only updates a row that still exists; a physically deleted row is not
// recreated.
func (e *Engine) applyInverse(ctx context.Context, tx *sql.Tx, step *models.UndoStep) error {
	switch step.StepType {
	case models.StepInsert:
		return e.store.DeleteRow(ctx, tx, step.TableName, step.RecordID)
	case models.StepDelete:
		return e.store.WriteRow(ctx, tx, step.TableName, step.RecordID, step.NewData)
	default: // StepUpdate
		return e.store.WriteRow(ctx, tx, step.TableName, step.RecordID, step.OldData)
	}
}

// applyForward replays one step in its original direction: UPDATE writes
// new_data, a forward INSERT writes new_data over the row through WriteRow
// (which updates an existing row and does not re-insert one removed by
// DeleteRow), a forward DELETE deletes the row again.
func (e *Engine) applyForward(ctx context.Context, tx *sql.Tx, step *models.UndoStep) error {
	switch step.StepType {
	case models.StepInsert:
		return e.store.WriteRow(ctx, tx, step.TableName, step.RecordID, step.NewData)
	case models.StepDelete:
		return e.store.DeleteRow(ctx, tx, step.TableName, step.RecordID)
	default: // StepUpdate
		return e.store.WriteRow(ctx, tx, step.TableName, step.RecordID, step.NewData)
	}
}
