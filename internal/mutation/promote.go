package mutation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hallowell/workitem/internal/apperr"
	"github.com/hallowell/workitem/internal/history"
	"github.com/hallowell/workitem/internal/models"
)

// PromoteToProject detaches an active non-root item to become a new root
// project, leaving behind a linked dependency from its original parent so
// tree projection (§4.7) can still find it (§4.4.e).
func (e *Engine) PromoteToProject(ctx context.Context, id string) (*models.WorkItem, error) {
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
		if item.IsRoot() {
			return apperr.Validation("%q is already a root project", id)
		}
		originalParentID := item.ParentID

		newKey, err := e.resolveOrderKey(ctx, tx, "", Positioning{InsertAt: "end"}, id)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		oldData := map[string]any{"parent_id": originalParentID, "order_key": item.OrderKey, "updated_at": item.UpdatedAt.UTC().Format(timeLayout)}
		newData := map[string]any{"parent_id": nil, "order_key": newKey, "updated_at": now.UTC().Format(timeLayout)}

		if err := e.store.UpdateFields(ctx, tx, id, map[string]any{"parent_id": "", "order_key": newKey, "updated_at": now}); err != nil {
			return err
		}

		existing, err := e.store.FindDependencyEdge(ctx, tx, originalParentID, id)
		if err != nil {
			return err
		}
		var depOld map[string]any
		if existing != nil {
			depOld = dependencyToFields(existing, existing.IsActive)
		} else {
			depOld = inactiveDependencyStub(&models.Dependency{WorkItemID: originalParentID, DependsOnID: id, DependencyType: models.DependencyLinked})
		}

		dep := &models.Dependency{WorkItemID: originalParentID, DependsOnID: id, DependencyType: models.DependencyLinked, IsActive: true}
		if err := e.store.UpsertDependency(ctx, tx, dep); err != nil {
			return err
		}

		actionID, err = e.recorder.Record(ctx, tx, history.ActionMeta{
			ActionType:  models.ActionPromote,
			Description: fmt.Sprintf("promote %q to a project", item.Name),
			WorkItemID:  id,
		}, []history.StepInput{
			{StepType: models.StepUpdate, TableName: "work_items", RecordID: id, OldData: marshal(oldData), NewData: marshal(newData)},
			{StepType: models.StepUpdate, TableName: "work_item_dependencies", RecordID: originalParentID + ":" + id,
				OldData: marshal(depOld), NewData: marshal(dependencyToFields(dep, true))},
		})
		if err != nil {
			return err
		}

		item.ParentID = ""
		item.OrderKey = newKey
		item.UpdatedAt = now
		result = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	if actionID != "" {
		e.publish(ctx, actionID, models.ActionPromote, id, fmt.Sprintf("promote %q to a project", result.Name))
	}
	return result, nil
}
