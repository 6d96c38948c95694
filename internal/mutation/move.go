package mutation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hallowell/workitem/internal/apperr"
	"github.com/hallowell/workitem/internal/history"
	"github.com/hallowell/workitem/internal/models"
	"github.com/hallowell/workitem/internal/store"
)

// MoveItemToStart repositions id at the front of its sibling list.
func (e *Engine) MoveItemToStart(ctx context.Context, id string) (*models.WorkItem, error) {
	return e.move(ctx, id, Positioning{InsertAt: "start"}, "")
}

// MoveItemToEnd repositions id at the back of its sibling list.
func (e *Engine) MoveItemToEnd(ctx context.Context, id string) (*models.WorkItem, error) {
	return e.move(ctx, id, Positioning{InsertAt: "end"}, "")
}

// MoveItemAfter repositions id immediately after targetSiblingID.
func (e *Engine) MoveItemAfter(ctx context.Context, id, targetSiblingID string) (*models.WorkItem, error) {
	return e.move(ctx, id, Positioning{InsertAfter: targetSiblingID}, targetSiblingID)
}

// MoveItemBefore repositions id immediately before targetSiblingID.
func (e *Engine) MoveItemBefore(ctx context.Context, id, targetSiblingID string) (*models.WorkItem, error) {
	return e.move(ctx, id, Positioning{InsertBefore: targetSiblingID}, targetSiblingID)
}

func (e *Engine) move(ctx context.Context, id string, pos Positioning, reference string) (*models.WorkItem, error) {
	if reference != "" && reference == id {
		return nil, apperr.Validation("cannot move a work item relative to itself")
	}

	var result *models.WorkItem
	var actionID string
	err := e.store.WithTx(ctx, func(tx *sql.Tx) error {
		item, err := e.store.FindByID(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if item == nil {
			return apperr.NotFoundOrInactive("work item")
		}

		if reference != "" {
			ref, err := e.store.FindByID(ctx, tx, reference, true)
			if err != nil {
				return err
			}
			if ref == nil {
				return apperr.NotFoundOrInactive("reference work item")
			}
			if ref.ParentID != item.ParentID {
				return apperr.Validation("%q is not a sibling of %q", reference, id)
			}
		}

		already, err := e.alreadyAtPosition(ctx, tx, item, pos, reference)
		if err != nil {
			return err
		}
		if already {
			result = item
			return nil
		}

		newKey, err := e.resolveOrderKey(ctx, tx, item.ParentID, pos, id)
		if err != nil {
			return err
		}
		if newKey == item.OrderKey {
			result = item
			return nil
		}

		now := time.Now().UTC()
		oldData := map[string]any{"order_key": item.OrderKey, "updated_at": item.UpdatedAt.UTC().Format(timeLayout)}
		newData := map[string]any{"order_key": newKey, "updated_at": now.UTC().Format(timeLayout)}

		if err := e.store.UpdateFields(ctx, tx, id, map[string]any{"order_key": newKey, "updated_at": now}); err != nil {
			return err
		}

		actionID, err = e.recorder.Record(ctx, tx, history.ActionMeta{
			ActionType:  models.ActionMove,
			Description: fmt.Sprintf("move work item %q", item.Name),
			WorkItemID:  id,
		}, []history.StepInput{
			{StepType: models.StepUpdate, TableName: "work_items", RecordID: id, OldData: marshal(oldData), NewData: marshal(newData)},
		})
		if err != nil {
			return err
		}

		item.OrderKey = newKey
		item.UpdatedAt = now
		result = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	if actionID != "" {
		e.publish(ctx, actionID, models.ActionMove, id, fmt.Sprintf("move work item %q", result.Name))
	}
	return result, nil
}

// alreadyAtPosition reports whether item already sits where pos/reference
// would place it, so a repeated move is a true no-op instead of recomputing
// a fresh (but equivalent) order_key and recording a pointless Action.
func (e *Engine) alreadyAtPosition(ctx context.Context, q store.Queryer, item *models.WorkItem, pos Positioning, reference string) (bool, error) {
	var siblings []*models.WorkItem
	var err error
	if item.ParentID == "" {
		siblings, err = e.store.FindRoots(ctx, q, true, nil)
	} else {
		siblings, err = e.store.FindChildren(ctx, q, item.ParentID, true, nil)
	}
	if err != nil {
		return false, err
	}

	idx := -1
	for i, s := range siblings {
		if s.ID == item.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, nil
	}

	switch {
	case pos.InsertAt == "start":
		return idx == 0, nil
	case pos.InsertAfter != "":
		return idx > 0 && siblings[idx-1].ID == reference, nil
	case pos.InsertBefore != "":
		return idx < len(siblings)-1 && siblings[idx+1].ID == reference, nil
	default: // "end" or unset
		return idx == len(siblings)-1, nil
	}
}
