package mutation

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hallowell/workitem/internal/apperr"
	"github.com/hallowell/workitem/internal/history"
	"github.com/hallowell/workitem/internal/models"
)

// DeleteResult summarizes a soft-delete cascade (§4.4.c returns a summary,
// not a full item, for deletions).
type DeleteResult struct {
	DeletedCount int
}

// DeleteProject soft-deletes a root project and its entire subtree.
func (e *Engine) DeleteProject(ctx context.Context, projectID string) (DeleteResult, error) {
	var result DeleteResult
	var actionID string
	err := e.store.WithTx(ctx, func(tx *sql.Tx) error {
		item, err := e.store.FindByID(ctx, tx, projectID, true)
		if err != nil {
			return err
		}
		if item == nil {
			return apperr.NotFoundOrInactive("project")
		}
		if !item.IsRoot() {
			return apperr.Validation("%q is not a root project", projectID)
		}

		n, id, err := e.cascadeDelete(ctx, tx, []string{projectID}, models.ActionDeleteSubtree,
			fmt.Sprintf("delete project %q", item.Name))
		if err != nil {
			return err
		}
		result.DeletedCount = n
		actionID = id
		return nil
	})
	if err != nil {
		return DeleteResult{}, err
	}
	if actionID != "" {
		e.publish(ctx, actionID, models.ActionDeleteSubtree, projectID, "delete project")
	}
	return result, nil
}

// DeleteTask soft-deletes each named task and its subtree. Any id that
// names a root is rejected with Conflict; no rows are deleted from the call.
func (e *Engine) DeleteTask(ctx context.Context, workItemIDs []string) (DeleteResult, error) {
	var result DeleteResult
	var actionID string
	err := e.store.WithTx(ctx, func(tx *sql.Tx) error {
		for _, id := range workItemIDs {
			item, err := e.store.FindByID(ctx, tx, id, true)
			if err != nil {
				return err
			}
			if item == nil {
				return apperr.NotFoundOrInactive("work item")
			}
			if item.IsRoot() {
				return apperr.Conflict("cannot delete root project %q via delete_task", id)
			}
		}

		n, id, err := e.cascadeDelete(ctx, tx, workItemIDs, models.ActionDeleteSubtree, "delete tasks")
		if err != nil {
			return err
		}
		result.DeletedCount = n
		actionID = id
		return nil
	})
	if err != nil {
		return DeleteResult{}, err
	}
	if actionID != "" {
		e.publish(ctx, actionID, models.ActionDeleteSubtree, "", "delete tasks")
	}
	return result, nil
}

// DeleteChildTasks soft-deletes a selection of a parent's children and
// their subtrees. Exactly one of childTaskIDs or deleteAllChildren must
// select work.
func (e *Engine) DeleteChildTasks(ctx context.Context, parentID string, childTaskIDs []string, deleteAllChildren bool) (DeleteResult, error) {
	if (len(childTaskIDs) > 0) == deleteAllChildren {
		return DeleteResult{}, apperr.Validation("exactly one of child_task_ids or delete_all_children must select work")
	}

	var result DeleteResult
	var actionID string
	err := e.store.WithTx(ctx, func(tx *sql.Tx) error {
		parent, err := e.store.FindByID(ctx, tx, parentID, true)
		if err != nil {
			return err
		}
		if parent == nil {
			return apperr.NotFoundOrInactive("parent work item")
		}

		targets := childTaskIDs
		if deleteAllChildren {
			children, err := e.store.FindChildren(ctx, tx, parentID, true, nil)
			if err != nil {
				return err
			}
			targets = nil
			for _, c := range children {
				targets = append(targets, c.ID)
			}
			if len(targets) == 0 {
				return nil
			}
		} else {
			for _, id := range targets {
				child, err := e.store.FindByID(ctx, tx, id, true)
				if err != nil {
					return err
				}
				if child == nil || child.ParentID != parentID {
					return apperr.Validation("%q is not an active child of %q", id, parentID)
				}
			}
		}

		n, id, err := e.cascadeDelete(ctx, tx, targets, models.ActionDeleteSubtree,
			fmt.Sprintf("delete children of %q", parent.Name))
		if err != nil {
			return err
		}
		result.DeletedCount = n
		actionID = id
		return nil
	})
	if err != nil {
		return DeleteResult{}, err
	}
	if actionID != "" {
		e.publish(ctx, actionID, models.ActionDeleteSubtree, parentID, "delete child tasks")
	}
	return result, nil
}

// cascadeDelete resolves the transitive descendant set of rootIDs (including
// the roots themselves), deactivates every item in it plus every dependency
// edge touching any deactivated item, and records one Action with one
// UndoStep per affected row.
func (e *Engine) cascadeDelete(ctx context.Context, tx *sql.Tx, rootIDs []string, actionType models.ActionType, description string) (int, string, error) {
	seen := map[string]bool{}
	var affectedIDs []string
	itemsByID := map[string]*models.WorkItem{}

	for _, rootID := range rootIDs {
		root, err := e.store.FindByID(ctx, tx, rootID, true)
		if err != nil {
			return 0, "", err
		}
		if root == nil {
			continue
		}
		if !seen[rootID] {
			seen[rootID] = true
			affectedIDs = append(affectedIDs, rootID)
			itemsByID[rootID] = root
		}

		descendants, err := e.store.FindDescendants(ctx, tx, rootID)
		if err != nil {
			return 0, "", err
		}
		for _, d := range descendants {
			if !d.IsActive || seen[d.ID] {
				continue
			}
			seen[d.ID] = true
			affectedIDs = append(affectedIDs, d.ID)
			itemsByID[d.ID] = d
		}
	}

	if len(affectedIDs) == 0 {
		return 0, "", nil
	}

	edges, err := e.store.FindActiveDependencyEdgesTouching(ctx, tx, affectedIDs)
	if err != nil {
		return 0, "", err
	}

	now := nowUTC()
	var steps []history.StepInput
	for _, id := range affectedIDs {
		item := itemsByID[id]
		oldData := rowToFields(item, true)
		newData := rowToFields(item, false)
		newData["updated_at"] = now.UTC().Format(timeLayout)
		steps = append(steps, history.StepInput{
			StepType: models.StepUpdate, TableName: "work_items", RecordID: id,
			OldData: marshal(oldData), NewData: marshal(newData),
		})
	}
	for _, edge := range edges {
		steps = append(steps, history.StepInput{
			StepType: models.StepUpdate, TableName: "work_item_dependencies",
			RecordID: edge.WorkItemID + ":" + edge.DependsOnID,
			OldData:  marshal(dependencyToFields(edge, true)),
			NewData:  marshal(dependencyToFields(edge, false)),
		})
	}

	if err := e.store.SoftDelete(ctx, tx, affectedIDs, now); err != nil {
		return 0, "", err
	}
	if len(edges) > 0 {
		pairs := make([][2]string, len(edges))
		for i, edge := range edges {
			pairs[i] = [2]string{edge.WorkItemID, edge.DependsOnID}
		}
		if err := e.store.DeactivateDependencies(ctx, tx, pairs); err != nil {
			return 0, "", err
		}
	}

	actionID, err := e.recorder.Record(ctx, tx, history.ActionMeta{
		ActionType:  actionType,
		Description: description,
	}, steps)
	if err != nil {
		return 0, "", err
	}

	return len(affectedIDs), actionID, nil
}
