package dispatch

import (
	"context"

	"github.com/hallowell/workitem/internal/models"
)

// UndoLastAction reverts the most recent undoable action, returning it, or
// nil if there is nothing to undo.
func (d *Dispatcher) UndoLastAction(ctx context.Context) (*models.Action, error) {
	action, err := d.undoRedo.UndoLastAction(ctx)
	return action, wrap(err)
}

// RedoLastAction re-applies the most recently undone action, returning it,
// or nil if there is nothing eligible to redo.
func (d *Dispatcher) RedoLastAction(ctx context.Context) (*models.Action, error) {
	action, err := d.undoRedo.RedoLastUndo(ctx)
	return action, wrap(err)
}
