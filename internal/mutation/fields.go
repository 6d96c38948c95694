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

// FieldPayload is the general update payload for UpdateFields; nil pointer
// fields are left unchanged, DueDate's double pointer distinguishes "leave
// unchanged" (nil) from "clear" (non-nil pointer to nil).
type FieldPayload struct {
	Name        *string
	Description *string
	Status      *models.Status
	Priority    *models.Priority
	DueDate     **time.Time
}

// UpdateFields applies a partial field change to an active work item
// (§4.4.b). If the payload changes no column, it is a no-op: no Action is
// recorded and the current item is returned.
func (e *Engine) UpdateFields(ctx context.Context, id string, payload FieldPayload) (*models.WorkItem, error) {
	var result *models.WorkItem
	var actionID string
	err := e.store.WithTx(ctx, func(tx *sql.Tx) error {
		current, err := e.store.FindByID(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if current == nil {
			return apperr.NotFoundOrInactive("work item")
		}

		next := *current
		if payload.Name != nil {
			if *payload.Name == "" {
				return apperr.Validation("name is required")
			}
			next.Name = *payload.Name
		}
		if payload.Description != nil {
			next.Description = *payload.Description
		}
		if payload.Status != nil {
			if !models.IsValidStatus(*payload.Status) {
				return apperr.Validation("invalid status %q", *payload.Status)
			}
			next.Status = *payload.Status
		}
		if payload.Priority != nil {
			if !models.IsValidPriority(*payload.Priority) {
				return apperr.Validation("invalid priority %q", *payload.Priority)
			}
			next.Priority = *payload.Priority
		}
		if payload.DueDate != nil {
			next.DueDate = *payload.DueDate
		}

		fields := diffFields(current, &next)
		if len(fields) == 0 {
			result = current
			return nil
		}

		next.UpdatedAt = time.Now().UTC()
		fields["updated_at"] = next.UpdatedAt.UTC().Format(time.RFC3339Nano)

		storeFields := make(map[string]any, len(fields))
		for k, v := range fields {
			storeFields[k] = v
		}
		if err := e.store.UpdateFields(ctx, tx, id, storeFields); err != nil {
			return err
		}

		oldData := map[string]any{"updated_at": current.UpdatedAt.UTC().Format(time.RFC3339Nano)}
		for k, v := range fields {
			oldData[k] = currentFieldValue(current, k)
			_ = v
		}

		actionID, err = e.recorder.Record(ctx, tx, history.ActionMeta{
			ActionType:  models.ActionUpdateFields,
			Description: fmt.Sprintf("update fields on work item %q", next.Name),
			WorkItemID:  id,
		}, []history.StepInput{
			{StepType: models.StepUpdate, TableName: "work_items", RecordID: id,
				OldData: marshal(oldData), NewData: marshal(fields)},
		})
		if err != nil {
			return err
		}

		result = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	if actionID != "" {
		e.publish(ctx, actionID, models.ActionUpdateFields, id, fmt.Sprintf("update fields on work item %q", result.Name))
	}
	return result, nil
}

// diffFields returns the column:value map of exactly the columns that
// changed between before and after, per the HistoryRecorder step-authoring
// convention for forward UPDATE_FIELDS.
func diffFields(before, after *models.WorkItem) map[string]any {
	fields := map[string]any{}
	if before.Name != after.Name {
		fields["name"] = after.Name
	}
	if before.Description != after.Description {
		fields["description"] = after.Description
	}
	if before.Status != after.Status {
		fields["status"] = string(after.Status)
	}
	if before.Priority != after.Priority {
		fields["priority"] = string(after.Priority)
	}
	if !sameDueDate(before.DueDate, after.DueDate) {
		if after.DueDate == nil {
			fields["due_date"] = (*time.Time)(nil)
		} else {
			fields["due_date"] = after.DueDate
		}
	}
	return fields
}

func sameDueDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func currentFieldValue(item *models.WorkItem, col string) any {
	switch col {
	case "name":
		return item.Name
	case "description":
		return item.Description
	case "status":
		return string(item.Status)
	case "priority":
		return string(item.Priority)
	case "due_date":
		if item.DueDate == nil {
			return nil
		}
		return item.DueDate.UTC().Format(time.RFC3339Nano)
	default:
		return nil
	}
}

// SetName, SetDescription, SetStatus, SetPriority, SetDueDate are the
// single-field setters named in §6; each is a thin call into UpdateFields.

func (e *Engine) SetName(ctx context.Context, id, name string) (*models.WorkItem, error) {
	return e.UpdateFields(ctx, id, FieldPayload{Name: &name})
}

func (e *Engine) SetDescription(ctx context.Context, id, description string) (*models.WorkItem, error) {
	return e.UpdateFields(ctx, id, FieldPayload{Description: &description})
}

func (e *Engine) SetStatus(ctx context.Context, id string, status models.Status) (*models.WorkItem, error) {
	return e.UpdateFields(ctx, id, FieldPayload{Status: &status})
}

func (e *Engine) SetPriority(ctx context.Context, id string, priority models.Priority) (*models.WorkItem, error) {
	return e.UpdateFields(ctx, id, FieldPayload{Priority: &priority})
}

// SetDueDate sets the due date, or clears it when dueDate is nil.
func (e *Engine) SetDueDate(ctx context.Context, id string, dueDate *time.Time) (*models.WorkItem, error) {
	return e.UpdateFields(ctx, id, FieldPayload{DueDate: &dueDate})
}
