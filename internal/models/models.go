// Package models defines the core domain types (WorkItem, Dependency, Action,
// UndoStep) and their validation helpers.
package models

import "time"

// Status represents a work item's lifecycle status.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
)

// Priority represents a work item's scheduling priority.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// DependencyType distinguishes a blocking edge from an informational one.
type DependencyType string

const (
	DependencyFinishToStart DependencyType = "finish-to-start"
	DependencyLinked        DependencyType = "linked"
)

// ActionType enumerates the kinds of mutation the history stack records.
type ActionType string

const (
	ActionAdd                ActionType = "ADD"
	ActionUpdateFields       ActionType = "UPDATE_FIELDS"
	ActionDeleteSubtree      ActionType = "DELETE_SUBTREE"
	ActionMove               ActionType = "MOVE"
	ActionPromote            ActionType = "PROMOTE"
	ActionAddDependencies    ActionType = "ADD_DEPENDENCIES"
	ActionDeleteDependencies ActionType = "DELETE_DEPENDENCIES"
	ActionUndo               ActionType = "UNDO_ACTION"
	ActionRedo               ActionType = "REDO_ACTION"
)

// StepType describes the forward operation an UndoStep inverts.
type StepType string

const (
	StepUpdate StepType = "UPDATE"
	StepInsert StepType = "INSERT"
	StepDelete StepType = "DELETE"
)

// WorkItem is the single node type for both projects (roots) and tasks.
type WorkItem struct {
	ID          string     `json:"work_item_id"`
	ParentID    string     `json:"parent_work_item_id,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	IsActive    bool       `json:"is_active"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	OrderKey    string     `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsRoot reports whether the item has no parent, i.e. is a project.
func (w *WorkItem) IsRoot() bool {
	return w.ParentID == ""
}

// Dependency is a typed directed edge between two work items.
type Dependency struct {
	WorkItemID       string         `json:"work_item_id"`
	DependsOnID      string         `json:"depends_on_work_item_id"`
	DependencyType   DependencyType `json:"dependency_type"`
	IsActive         bool           `json:"is_active"`
}

// Action is one user-initiated mutation recorded for undo/redo.
type Action struct {
	ID                string     `json:"action_id"`
	Timestamp         time.Time  `json:"timestamp"`
	ActionType        ActionType `json:"action_type"`
	Description       string     `json:"description"`
	WorkItemID        string     `json:"work_item_id,omitempty"`
	IsUndone          bool       `json:"is_undone"`
	UndoneAtActionID  string     `json:"undone_at_action_id,omitempty"`
}

// UndoStep is one row-level inverse fragment within an Action.
type UndoStep struct {
	ID         int64    `json:"-"`
	ActionID   string   `json:"action_id"`
	StepOrder  int      `json:"step_order"`
	StepType   StepType `json:"step_type"`
	TableName  string   `json:"table_name"`
	RecordID   string   `json:"record_id"`
	OldData    string   `json:"old_data"`
	NewData    string   `json:"new_data"`
}

// IsValidStatus reports whether s is one of the four allowed statuses.
func IsValidStatus(s Status) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

// IsValidPriority reports whether p is one of the three allowed priorities.
func IsValidPriority(p Priority) bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// IsValidDependencyType reports whether t is a recognized dependency type.
func IsValidDependencyType(t DependencyType) bool {
	switch t {
	case DependencyFinishToStart, DependencyLinked:
		return true
	}
	return false
}

// priorityRank orders priorities for scheduling: lower rank sorts first.
func priorityRank(p Priority) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// PriorityRank is the exported form of priorityRank, used by the scheduler's
// ordering comparator.
func PriorityRank(p Priority) int {
	return priorityRank(p)
}
