package dispatch

import (
	"context"
	"time"

	"github.com/hallowell/workitem/internal/models"
	"github.com/hallowell/workitem/internal/mutation"
)

// SetNameParams changes a work item's name.
type SetNameParams struct {
	WorkItemID string
	Name       string
}

func (d *Dispatcher) SetName(ctx context.Context, p SetNameParams) (*models.WorkItem, error) {
	item, err := d.mutation.SetName(ctx, p.WorkItemID, p.Name)
	return item, wrap(err)
}

// SetDescriptionParams changes a work item's description.
type SetDescriptionParams struct {
	WorkItemID  string
	Description string
}

func (d *Dispatcher) SetDescription(ctx context.Context, p SetDescriptionParams) (*models.WorkItem, error) {
	item, err := d.mutation.SetDescription(ctx, p.WorkItemID, p.Description)
	return item, wrap(err)
}

// SetStatusParams changes a work item's status.
type SetStatusParams struct {
	WorkItemID string
	Status     models.Status
}

func (d *Dispatcher) SetStatus(ctx context.Context, p SetStatusParams) (*models.WorkItem, error) {
	item, err := d.mutation.SetStatus(ctx, p.WorkItemID, p.Status)
	return item, wrap(err)
}

// SetPriorityParams changes a work item's priority.
type SetPriorityParams struct {
	WorkItemID string
	Priority   models.Priority
}

func (d *Dispatcher) SetPriority(ctx context.Context, p SetPriorityParams) (*models.WorkItem, error) {
	item, err := d.mutation.SetPriority(ctx, p.WorkItemID, p.Priority)
	return item, wrap(err)
}

// SetDueDateParams changes or clears a work item's due date. A nil DueDate
// clears it.
type SetDueDateParams struct {
	WorkItemID string
	DueDate    *time.Time
}

func (d *Dispatcher) SetDueDate(ctx context.Context, p SetDueDateParams) (*models.WorkItem, error) {
	item, err := d.mutation.SetDueDate(ctx, p.WorkItemID, p.DueDate)
	return item, wrap(err)
}

// UpdateTaskParams is the deprecated general-purpose field setter, retained
// for callers that haven't migrated to the single-field verbs. Unset
// pointers leave the corresponding column unchanged; DueDate's double
// pointer distinguishes "leave unchanged" from "clear" the same way
// mutation.FieldPayload does.
type UpdateTaskParams struct {
	WorkItemID  string
	Name        *string
	Description *string
	Status      *models.Status
	Priority    *models.Priority
	DueDate     **time.Time
}

// UpdateTask is the deprecated general field setter named in §6; prefer
// SetName/SetDescription/SetStatus/SetPriority/SetDueDate.
func (d *Dispatcher) UpdateTask(ctx context.Context, p UpdateTaskParams) (*models.WorkItem, error) {
	item, err := d.mutation.UpdateFields(ctx, p.WorkItemID, mutation.FieldPayload{
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		Priority:    p.Priority,
		DueDate:     p.DueDate,
	})
	return item, wrap(err)
}
