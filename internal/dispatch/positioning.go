package dispatch

import (
	"context"

	"github.com/hallowell/workitem/internal/models"
)

// MoveItemToStartParams names the item to reposition at the front of its
// sibling list.
type MoveItemToStartParams struct {
	WorkItemID string
}

func (d *Dispatcher) MoveItemToStart(ctx context.Context, p MoveItemToStartParams) (*models.WorkItem, error) {
	item, err := d.mutation.MoveItemToStart(ctx, p.WorkItemID)
	return item, wrap(err)
}

// MoveItemToEndParams names the item to reposition at the back of its
// sibling list.
type MoveItemToEndParams struct {
	WorkItemID string
}

func (d *Dispatcher) MoveItemToEnd(ctx context.Context, p MoveItemToEndParams) (*models.WorkItem, error) {
	item, err := d.mutation.MoveItemToEnd(ctx, p.WorkItemID)
	return item, wrap(err)
}

// MoveItemAfterParams repositions WorkItemID immediately after
// TargetSiblingID.
type MoveItemAfterParams struct {
	WorkItemID      string
	TargetSiblingID string
}

func (d *Dispatcher) MoveItemAfter(ctx context.Context, p MoveItemAfterParams) (*models.WorkItem, error) {
	item, err := d.mutation.MoveItemAfter(ctx, p.WorkItemID, p.TargetSiblingID)
	return item, wrap(err)
}

// MoveItemBeforeParams repositions WorkItemID immediately before
// TargetSiblingID.
type MoveItemBeforeParams struct {
	WorkItemID      string
	TargetSiblingID string
}

func (d *Dispatcher) MoveItemBefore(ctx context.Context, p MoveItemBeforeParams) (*models.WorkItem, error) {
	item, err := d.mutation.MoveItemBefore(ctx, p.WorkItemID, p.TargetSiblingID)
	return item, wrap(err)
}
