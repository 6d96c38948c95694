// Package mutation implements every write path over the work-item forest:
// one method per mutation, each opening one transaction, validating against
// current state, performing the change via store.Store, assembling the
// UndoSteps, calling history.Recorder, and committing.
//
// Entry points are grounded on the teacher's write paths: addWorkItem on
// CreateIssueLogged, updateFields on updateIssueAndLog, the soft-delete
// family on DeleteIssue's cascade shape, the move family on
// SetIssuePosition/SwapIssuePositions redirected through orderkey, and
// dependency add/remove on AddDependency/RemoveDependency plus the cycle
// check from internal/dependency.
package mutation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hallowell/workitem/internal/apperr"
	"github.com/hallowell/workitem/internal/eventsink"
	"github.com/hallowell/workitem/internal/history"
	"github.com/hallowell/workitem/internal/models"
	"github.com/hallowell/workitem/internal/orderkey"
	"github.com/hallowell/workitem/internal/store"
)

// Engine wires the mutation entry points to a Store and a history.Recorder.
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

// SetSink installs the Sink mutations publish to after each successful
// commit. Per §5, publication is post-commit and write-only.
func (e *Engine) SetSink(sink eventsink.Sink) {
	if sink == nil {
		sink = eventsink.NoopSink{}
	}
	e.sink = sink
}

// publish notifies the sink of a committed action. Callers invoke this only
// after WithTx has returned nil, never from inside the transaction closure.
func (e *Engine) publish(ctx context.Context, actionID string, actionType models.ActionType, workItemID, description string) {
	e.sink.Publish(ctx, eventsink.Event{
		ActionID: actionID, ActionType: actionType, WorkItemID: workItemID,
		Description: description, Timestamp: nowUTC(),
	})
}

func marshal(v any) string {
	data, _ := json.Marshal(v)
	return string(data)
}

const timeLayout = time.RFC3339Nano

func nowUTC() time.Time {
	return time.Now().UTC()
}

// Positioning directs where a new item or a move lands among its siblings.
// At most one of these is expected to be set; when several are, InsertAfter
// wins, then InsertBefore, then InsertAt.
type Positioning struct {
	InsertAt     string // "start" or "end"; "" means default (end)
	InsertAfter  string // sibling id
	InsertBefore string // sibling id
}

func (p Positioning) isEmpty() bool {
	return p.InsertAt == "" && p.InsertAfter == "" && p.InsertBefore == ""
}

// resolveOrderKey computes the neighbour pair implied by pos under parentID
// (empty for root-level) and returns a fresh order key. excludeID, when
// non-empty, is the item being moved/positioned itself, omitted from edge
// lookups so it can't be mistaken for its own neighbour.
func (e *Engine) resolveOrderKey(ctx context.Context, q store.Queryer, parentID string, pos Positioning, excludeID string) (string, error) {
	switch {
	case pos.InsertAfter != "":
		before, after, err := e.store.FindNeighbourOrderKeys(ctx, q, parentID, pos.InsertAfter, false)
		if err != nil {
			return "", err
		}
		return orderkey.Calculate(before, after)
	case pos.InsertBefore != "":
		before, after, err := e.store.FindNeighbourOrderKeys(ctx, q, parentID, pos.InsertBefore, true)
		if err != nil {
			return "", err
		}
		return orderkey.Calculate(before, after)
	case pos.InsertAt == "start":
		first, err := e.store.FindSiblingEdgeOrderKey(ctx, q, parentID, true, excludeID)
		if err != nil {
			return "", err
		}
		return orderkey.Calculate(nil, first)
	default: // "end" or unset
		last, err := e.store.FindSiblingEdgeOrderKey(ctx, q, parentID, false, excludeID)
		if err != nil {
			return "", err
		}
		return orderkey.Calculate(last, nil)
	}
}

// AddWorkItemInput is the full parameter set for AddWorkItem.
type AddWorkItemInput struct {
	Name         string
	Description  string
	Status       models.Status
	Priority     models.Priority
	DueDate      *time.Time
	ParentID     string
	Dependencies []DependencyInput
	Positioning  Positioning
}

// DependencyInput names one edge to create alongside the new item.
type DependencyInput struct {
	DependsOnID string
	Type        models.DependencyType
}

// AddWorkItem creates a work item (§4.4.a).
func (e *Engine) AddWorkItem(ctx context.Context, in AddWorkItemInput) (*models.WorkItem, error) {
	if in.Name == "" {
		return nil, apperr.Validation("name is required")
	}
	status := in.Status
	if status == "" {
		status = models.StatusTodo
	}
	if !models.IsValidStatus(status) {
		return nil, apperr.Validation("invalid status %q", status)
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.IsValidPriority(priority) {
		return nil, apperr.Validation("invalid priority %q", priority)
	}

	var result *models.WorkItem
	var actionID string
	err := e.store.WithTx(ctx, func(tx *sql.Tx) error {
		var parent *models.WorkItem
		if in.ParentID != "" {
			var err error
			parent, err = e.store.FindByID(ctx, tx, in.ParentID, true)
			if err != nil {
				return err
			}
			if parent == nil {
				return apperr.NotFoundOrInactive("parent work item")
			}
			if parent.Status == models.StatusDone {
				return apperr.Validation("cannot add a child to a work item whose status is done")
			}
		}

		for _, d := range in.Dependencies {
			target, err := e.store.FindByID(ctx, tx, d.DependsOnID, true)
			if err != nil {
				return err
			}
			if target == nil {
				return apperr.Validation("dependency target %q does not exist", d.DependsOnID)
			}
		}

		orderKey, err := e.resolveOrderKey(ctx, tx, in.ParentID, in.Positioning, "")
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		item := &models.WorkItem{
			ID:          store.NewID(),
			ParentID:    in.ParentID,
			Name:        in.Name,
			Description: in.Description,
			Status:      status,
			IsActive:    true,
			Priority:    priority,
			DueDate:     in.DueDate,
			OrderKey:    orderKey,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := e.store.InsertItem(ctx, tx, item); err != nil {
			return err
		}

		steps := []history.StepInput{
			{StepType: models.StepUpdate, TableName: "work_items", RecordID: item.ID,
				OldData: marshal(inactiveStub(item)), NewData: marshal(rowToFields(item, true))},
		}

		for _, d := range in.Dependencies {
			depType := d.Type
			if depType == "" {
				depType = models.DependencyFinishToStart
			}
			dep := &models.Dependency{WorkItemID: item.ID, DependsOnID: d.DependsOnID, DependencyType: depType, IsActive: true}
			if err := e.store.UpsertDependency(ctx, tx, dep); err != nil {
				return err
			}
			steps = append(steps, history.StepInput{
				StepType: models.StepUpdate, TableName: "work_item_dependencies",
				RecordID: item.ID + ":" + d.DependsOnID,
				OldData:  marshal(inactiveDependencyStub(dep)), NewData: marshal(dep),
			})
		}

		actionID, err = e.recorder.Record(ctx, tx, history.ActionMeta{
			ActionType:  models.ActionAdd,
			Description: fmt.Sprintf("add work item %q", item.Name),
			WorkItemID:  item.ID,
		}, steps)
		if err != nil {
			return err
		}

		result = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.publish(ctx, actionID, models.ActionAdd, result.ID, fmt.Sprintf("add work item %q", result.Name))
	return result, nil
}

// inactiveStub returns the JSON shape HistoryRecorder expects as old_data for
// a forward ADD: the would-be row with is_active forced false, so undo's
// generic UPDATE replay flips it back to deleted.
func inactiveStub(item *models.WorkItem) map[string]any {
	return rowToFields(item, false)
}

func rowToFields(item *models.WorkItem, isActive bool) map[string]any {
	var parentID, dueDate any
	if item.ParentID != "" {
		parentID = item.ParentID
	}
	if item.DueDate != nil {
		dueDate = item.DueDate.UTC().Format(time.RFC3339Nano)
	}
	return map[string]any{
		"id": item.ID, "parent_id": parentID, "name": item.Name, "description": item.Description,
		"status": string(item.Status), "is_active": isActive, "priority": string(item.Priority),
		"due_date": dueDate, "order_key": item.OrderKey,
		"created_at": item.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at": item.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func dependencyToFields(dep *models.Dependency, isActive bool) map[string]any {
	return map[string]any{
		"work_item_id": dep.WorkItemID, "depends_on_work_item_id": dep.DependsOnID,
		"dependency_type": string(dep.DependencyType), "is_active": isActive,
	}
}

func inactiveDependencyStub(dep *models.Dependency) map[string]any {
	return dependencyToFields(dep, false)
}
