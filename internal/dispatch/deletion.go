package dispatch

import "context"

// DeleteResult reports how many rows a soft-delete cascade touched.
type DeleteResult struct {
	DeletedCount int
}

// DeleteProjectParams names the root project to soft-delete.
type DeleteProjectParams struct {
	ProjectID string
}

// DeleteProject soft-deletes ProjectID and its entire subtree.
func (d *Dispatcher) DeleteProject(ctx context.Context, p DeleteProjectParams) (DeleteResult, error) {
	r, err := d.mutation.DeleteProject(ctx, p.ProjectID)
	return DeleteResult{DeletedCount: r.DeletedCount}, wrap(err)
}

// DeleteTaskParams names the non-root tasks to soft-delete.
type DeleteTaskParams struct {
	WorkItemIDs []string
}

// DeleteTask soft-deletes each named task and its subtree. Rejects roots.
func (d *Dispatcher) DeleteTask(ctx context.Context, p DeleteTaskParams) (DeleteResult, error) {
	r, err := d.mutation.DeleteTask(ctx, p.WorkItemIDs)
	return DeleteResult{DeletedCount: r.DeletedCount}, wrap(err)
}

// DeleteChildTasksParams selects either specific children or all children of
// ParentWorkItemID; exactly one selector must be set.
type DeleteChildTasksParams struct {
	ParentWorkItemID  string
	ChildTaskIDs      []string
	DeleteAllChildren bool
}

// DeleteChildTasks soft-deletes the selected children of ParentWorkItemID.
func (d *Dispatcher) DeleteChildTasks(ctx context.Context, p DeleteChildTasksParams) (DeleteResult, error) {
	r, err := d.mutation.DeleteChildTasks(ctx, p.ParentWorkItemID, p.ChildTaskIDs, p.DeleteAllChildren)
	return DeleteResult{DeletedCount: r.DeletedCount}, wrap(err)
}
