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

// ChildTaskNode is one node of the tree accepted by AddChildTasks: a task
// plus its own nested children, created depth-first under its parent.
type ChildTaskNode struct {
	Name        string
	Description string
	Status      models.Status
	Priority    models.Priority
	DueDate     *time.Time
	Children    []ChildTaskNode
}

// AddChildTasks creates an entire subtree of tasks under parentID in one
// transaction, appending each node at the end of its parent's sibling list,
// and returns the created items in depth-first order.
func (e *Engine) AddChildTasks(ctx context.Context, parentID string, children []ChildTaskNode) ([]*models.WorkItem, error) {
	if len(children) == 0 {
		return nil, apperr.Validation("child_tasks_tree must contain at least one task")
	}

	var result []*models.WorkItem
	var actionID, description string
	err := e.store.WithTx(ctx, func(tx *sql.Tx) error {
		parent, err := e.store.FindByID(ctx, tx, parentID, true)
		if err != nil {
			return err
		}
		if parent == nil {
			return apperr.NotFoundOrInactive("parent work item")
		}
		if parent.Status == models.StatusDone {
			return apperr.Validation("cannot add a child to a work item whose status is done")
		}

		var steps []history.StepInput
		var created []*models.WorkItem
		for _, child := range children {
			if err := e.insertChildTree(ctx, tx, parentID, child, &created, &steps); err != nil {
				return err
			}
		}

		description = fmt.Sprintf("add %d tasks under %q", len(created), parent.Name)
		actionID, err = e.recorder.Record(ctx, tx, history.ActionMeta{
			ActionType:  models.ActionAdd,
			Description: description,
			WorkItemID:  parentID,
		}, steps)
		if err != nil {
			return err
		}

		result = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.publish(ctx, actionID, models.ActionAdd, parentID, description)
	return result, nil
}

func (e *Engine) insertChildTree(ctx context.Context, tx *sql.Tx, parentID string, node ChildTaskNode, created *[]*models.WorkItem, steps *[]history.StepInput) error {
	if node.Name == "" {
		return apperr.Validation("name is required")
	}
	status := node.Status
	if status == "" {
		status = models.StatusTodo
	}
	if !models.IsValidStatus(status) {
		return apperr.Validation("invalid status %q", status)
	}
	priority := node.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.IsValidPriority(priority) {
		return apperr.Validation("invalid priority %q", priority)
	}

	orderKey, err := e.resolveOrderKey(ctx, tx, parentID, Positioning{InsertAt: "end"}, "")
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	item := &models.WorkItem{
		ID:          store.NewID(),
		ParentID:    parentID,
		Name:        node.Name,
		Description: node.Description,
		Status:      status,
		IsActive:    true,
		Priority:    priority,
		DueDate:     node.DueDate,
		OrderKey:    orderKey,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := e.store.InsertItem(ctx, tx, item); err != nil {
		return err
	}

	*steps = append(*steps, history.StepInput{
		StepType: models.StepUpdate, TableName: "work_items", RecordID: item.ID,
		OldData: marshal(inactiveStub(item)), NewData: marshal(rowToFields(item, true)),
	})
	*created = append(*created, item)

	for _, grandchild := range node.Children {
		if err := e.insertChildTree(ctx, tx, item.ID, grandchild, created, steps); err != nil {
			return err
		}
	}
	return nil
}
