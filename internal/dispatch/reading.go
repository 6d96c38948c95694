package dispatch

import (
	"context"
	"time"

	"github.com/hallowell/workitem/internal/apperr"
	"github.com/hallowell/workitem/internal/models"
	"github.com/hallowell/workitem/internal/scheduler"
	"github.com/hallowell/workitem/internal/tree"
)

// GetDetailsParams names the item to inspect.
type GetDetailsParams struct {
	WorkItemID string
}

// Details bundles a work item with its adjacent edges and children, per §6's
// get_details response shape.
type Details struct {
	Item         *models.WorkItem
	Dependencies []*models.Dependency
	Dependents   []*models.Dependency
	Children     []*models.WorkItem
}

// GetDetails returns the item named by WorkItemID plus its active
// dependencies, dependents, and children.
func (d *Dispatcher) GetDetails(ctx context.Context, p GetDetailsParams) (*Details, error) {
	q := d.store.DB()
	item, err := d.store.FindByID(ctx, q, p.WorkItemID, true)
	if err != nil {
		return nil, wrap(err)
	}
	if item == nil {
		return nil, wrap(apperr.NotFoundOrInactive("work item"))
	}

	deps, err := d.store.FindDependencies(ctx, q, p.WorkItemID, true)
	if err != nil {
		return nil, wrap(err)
	}
	dependents, err := d.store.FindDependents(ctx, q, p.WorkItemID, true)
	if err != nil {
		return nil, wrap(err)
	}
	children, err := d.store.FindChildren(ctx, q, p.WorkItemID, true, nil)
	if err != nil {
		return nil, wrap(err)
	}

	return &Details{Item: item, Dependencies: deps, Dependents: dependents, Children: children}, nil
}

// ListWorkItemsParams scopes and filters a flat listing. RootsOnly and a
// non-empty ParentWorkItemID are mutually exclusive; with neither set, every
// work item matching Status/IsActive is returned. IsActive nil or true keeps
// active items only; false returns active and inactive items alike.
type ListWorkItemsParams struct {
	ParentWorkItemID string
	RootsOnly        bool
	Status           models.Status
	IsActive         *bool
}

// ListWorkItems returns the items selected by p, ordered by (order_key,
// created_at).
func (d *Dispatcher) ListWorkItems(ctx context.Context, p ListWorkItemsParams) ([]*models.WorkItem, error) {
	if p.RootsOnly && p.ParentWorkItemID != "" {
		return nil, wrap(apperr.Validation("roots_only and parent_work_item_id are mutually exclusive"))
	}

	q := d.store.DB()
	activeOnly := p.IsActive == nil || *p.IsActive
	var status *models.Status
	if p.Status != "" {
		status = &p.Status
	}

	var items []*models.WorkItem
	var err error
	switch {
	case p.RootsOnly:
		items, err = d.store.FindRoots(ctx, q, activeOnly, status)
	case p.ParentWorkItemID != "":
		items, err = d.store.FindChildren(ctx, q, p.ParentWorkItemID, activeOnly, status)
	default:
		items, err = d.store.FindAll(ctx, q, activeOnly, status)
	}
	return items, wrap(err)
}

// GetFullTreeParams names the root of the tree to assemble and the
// traversal options governing it.
type GetFullTreeParams struct {
	WorkItemID string
	Options    tree.Options
}

// GetFullTree returns the tree rooted at WorkItemID (§4.7).
func (d *Dispatcher) GetFullTree(ctx context.Context, p GetFullTreeParams) (*tree.Node, error) {
	node, err := d.tree.GetFullTree(ctx, p.WorkItemID, p.Options)
	return node, wrap(err)
}

// ListHistoryParams windows and caps a history listing; StartDate/EndDate
// zero values are unbounded, Limit 0 is unbounded.
type ListHistoryParams struct {
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}

// ListHistory returns actions newest-first within the requested window.
func (d *Dispatcher) ListHistory(ctx context.Context, p ListHistoryParams) ([]*models.Action, error) {
	actions, err := d.store.ListActions(ctx, d.store.DB(), p.StartDate, p.EndDate, p.Limit)
	return actions, wrap(err)
}

// GetNextTaskParams scopes and filters the candidate search (§4.6).
// IncludeTags/ExcludeTags are accepted but are documented no-ops.
type GetNextTaskParams struct {
	ScopeItemID string
	IncludeTags []string
	ExcludeTags []string
}

// GetNextTask returns the highest-priority unblocked todo item in scope, or
// nil if none qualify.
func (d *Dispatcher) GetNextTask(ctx context.Context, p GetNextTaskParams) (*models.WorkItem, error) {
	item, err := d.scheduler.GetNextTask(ctx, scheduler.GetNextTaskParams{
		ScopeItemID: p.ScopeItemID,
		IncludeTags: p.IncludeTags,
		ExcludeTags: p.ExcludeTags,
	})
	return item, wrap(err)
}
