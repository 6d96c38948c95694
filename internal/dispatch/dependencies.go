package dispatch

import (
	"context"

	"github.com/hallowell/workitem/internal/models"
	"github.com/hallowell/workitem/internal/mutation"
)

// AddDependenciesParams names the edges to create from WorkItemID.
type AddDependenciesParams struct {
	WorkItemID   string
	Dependencies []DependencyParam
}

// AddDependencies upserts the given dependency edges (§4.4.f).
func (d *Dispatcher) AddDependencies(ctx context.Context, p AddDependenciesParams) (*models.WorkItem, error) {
	var deps []mutation.DependencyInput
	for _, dep := range p.Dependencies {
		deps = append(deps, mutation.DependencyInput{DependsOnID: dep.DependsOnWorkItemID, Type: dep.DependencyType})
	}
	item, err := d.mutation.AddDependencies(ctx, p.WorkItemID, deps)
	return item, wrap(err)
}

// DeleteDependenciesParams names the edges to deactivate from WorkItemID.
type DeleteDependenciesParams struct {
	WorkItemID           string
	DependsOnWorkItemIDs []string
}

// DeleteDependencies deactivates the named edges from WorkItemID.
func (d *Dispatcher) DeleteDependencies(ctx context.Context, p DeleteDependenciesParams) (*models.WorkItem, error) {
	item, err := d.mutation.DeleteDependencies(ctx, p.WorkItemID, p.DependsOnWorkItemIDs)
	return item, wrap(err)
}

// PromoteToProjectParams names the item to detach into a new root project.
type PromoteToProjectParams struct {
	WorkItemID string
}

// PromoteToProject detaches WorkItemID to become a new root project (§4.4.e).
func (d *Dispatcher) PromoteToProject(ctx context.Context, p PromoteToProjectParams) (*models.WorkItem, error) {
	item, err := d.mutation.PromoteToProject(ctx, p.WorkItemID)
	return item, wrap(err)
}
