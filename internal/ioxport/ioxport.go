// Package ioxport encodes and decodes the tree-shaped JSON import/export
// format named in §6: a thin adapter that holds no business logic of its
// own, walking TreeReader output on export and replaying MutationEngine
// calls depth-first on import.
package ioxport

import (
	"context"
	"time"

	"github.com/hallowell/workitem/internal/models"
	"github.com/hallowell/workitem/internal/mutation"
	"github.com/hallowell/workitem/internal/tree"
)

// Node is one tree position in the import/export document: a work item's
// fields plus its children array.
type Node struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Status      models.Status   `json:"status"`
	Priority    models.Priority `json:"priority"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	Children    []Node          `json:"children,omitempty"`
}

// Exporter walks a tree.Reader's output into the Node document shape.
type Exporter struct {
	tree *tree.Reader
}

// NewExporter returns an Exporter backed by r.
func NewExporter(r *tree.Reader) *Exporter {
	return &Exporter{tree: r}
}

// Export assembles the document rooted at rootID. Linked (promoted)
// children are excluded: they belong to their own project's export, not
// this one's.
func (x *Exporter) Export(ctx context.Context, rootID string) (*Node, error) {
	root, err := x.tree.GetFullTree(ctx, rootID, tree.Options{})
	if err != nil {
		return nil, err
	}
	node := nodeFromTree(root)
	return &node, nil
}

func nodeFromTree(n *tree.Node) Node {
	node := Node{
		Name:        n.Item.Name,
		Description: n.Item.Description,
		Status:      n.Item.Status,
		Priority:    n.Item.Priority,
		DueDate:     n.Item.DueDate,
	}
	for _, c := range n.Children {
		if c.Linked {
			continue
		}
		node.Children = append(node.Children, nodeFromTree(c))
	}
	return node
}

// Importer replays a Node document into the forest via a MutationEngine.
type Importer struct {
	mutation *mutation.Engine
}

// NewImporter returns an Importer backed by m.
func NewImporter(m *mutation.Engine) *Importer {
	return &Importer{mutation: m}
}

// Import creates root (and its children, depth-first) under parentID.
// An empty parentID creates a new root project.
func (x *Importer) Import(ctx context.Context, parentID string, root Node) (*models.WorkItem, error) {
	item, err := x.mutation.AddWorkItem(ctx, mutation.AddWorkItemInput{
		Name:        root.Name,
		Description: root.Description,
		Status:      root.Status,
		Priority:    root.Priority,
		DueDate:     root.DueDate,
		ParentID:    parentID,
	})
	if err != nil {
		return nil, err
	}
	if len(root.Children) == 0 {
		return item, nil
	}

	if _, err := x.mutation.AddChildTasks(ctx, item.ID, toChildTaskNodes(root.Children)); err != nil {
		return nil, err
	}
	return item, nil
}

func toChildTaskNodes(nodes []Node) []mutation.ChildTaskNode {
	out := make([]mutation.ChildTaskNode, len(nodes))
	for i, n := range nodes {
		out[i] = mutation.ChildTaskNode{
			Name:        n.Name,
			Description: n.Description,
			Status:      n.Status,
			Priority:    n.Priority,
			DueDate:     n.DueDate,
			Children:    toChildTaskNodes(n.Children),
		}
	}
	return out
}
