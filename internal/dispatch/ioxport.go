package dispatch

import (
	"context"

	"github.com/hallowell/workitem/internal/ioxport"
	"github.com/hallowell/workitem/internal/models"
)

// ExportTreeParams names the root of the tree-shaped JSON document to
// assemble.
type ExportTreeParams struct {
	WorkItemID string
}

// ExportTree walks the subtree rooted at WorkItemID into the ioxport.Node
// document shape for serialization by the caller.
func (d *Dispatcher) ExportTree(ctx context.Context, p ExportTreeParams) (*ioxport.Node, error) {
	node, err := ioxport.NewExporter(d.tree).Export(ctx, p.WorkItemID)
	return node, wrap(err)
}

// ImportTreeParams names the parent a document's root attaches under. An
// empty ParentWorkItemID creates a new root project.
type ImportTreeParams struct {
	ParentWorkItemID string
	Root             ioxport.Node
}

// ImportTree replays a tree-shaped JSON document depth-first into the
// forest, returning the created root item.
func (d *Dispatcher) ImportTree(ctx context.Context, p ImportTreeParams) (*models.WorkItem, error) {
	item, err := ioxport.NewImporter(d.mutation).Import(ctx, p.ParentWorkItemID, p.Root)
	return item, wrap(err)
}
