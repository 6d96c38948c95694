// Package tree assembles full subtrees rooted at a work item, including
// "linked" projection of children promoted out of the branch, grounded on
// the teacher's cmd/tree.go buildTree/buildTreeNodes recursive-fetch shape.
package tree

import (
	"context"
	"sort"

	"github.com/hallowell/workitem/internal/apperr"
	"github.com/hallowell/workitem/internal/models"
	"github.com/hallowell/workitem/internal/store"
)

// Reader assembles tree projections from a Store.
type Reader struct {
	store *store.Store
}

// New returns a Reader backed by s.
func New(s *store.Store) *Reader {
	return &Reader{store: s}
}

// Options controls inactive-row inclusion and traversal depth.
type Options struct {
	IncludeInactiveItems        bool
	IncludeInactiveDependencies bool
	MaxDepth                    int // 0 means the default of 10
}

const defaultMaxDepth = 10

// Node is one tree position: the work item itself, its dependency edges,
// and its children (real children plus any linked projection).
type Node struct {
	Item         *models.WorkItem
	DisplayName  string
	Dependencies []*models.Dependency
	Dependents   []*models.Dependency
	Children     []*Node
	Linked       bool
}

// GetFullTree returns the tree rooted at rootID.
func (r *Reader) GetFullTree(ctx context.Context, rootID string, opts Options) (*Node, error) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = defaultMaxDepth
	}
	q := r.store.DB()

	root, err := r.store.FindByID(ctx, q, rootID, !opts.IncludeInactiveItems)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, apperr.NotFoundOrInactive("work item")
	}
	return r.buildNode(ctx, q, root, 0, opts, false)
}

func (r *Reader) buildNode(ctx context.Context, q store.Queryer, item *models.WorkItem, depth int, opts Options, linked bool) (*Node, error) {
	deps, err := r.store.FindDependencies(ctx, q, item.ID, !opts.IncludeInactiveDependencies)
	if err != nil {
		return nil, err
	}
	dependents, err := r.store.FindDependents(ctx, q, item.ID, !opts.IncludeInactiveDependencies)
	if err != nil {
		return nil, err
	}

	displayName := item.Name
	if linked {
		displayName += " (L)"
	}
	node := &Node{Item: item, DisplayName: displayName, Dependencies: deps, Dependents: dependents, Linked: linked}

	if depth >= opts.MaxDepth {
		return node, nil
	}

	children, err := r.store.FindChildren(ctx, q, item.ID, !opts.IncludeInactiveItems, nil)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(children, func(i, j int) bool {
		if children[i].OrderKey != children[j].OrderKey {
			return children[i].OrderKey < children[j].OrderKey
		}
		return children[i].Name < children[j].Name
	})

	childIDs := map[string]bool{}
	childNodes := make([]*Node, 0, len(children))
	for _, c := range children {
		childIDs[c.ID] = true
		childNode, err := r.buildNode(ctx, q, c, depth+1, opts, linked)
		if err != nil {
			return nil, err
		}
		childNodes = append(childNodes, childNode)
	}

	activeEdges, err := r.store.FindDependencies(ctx, q, item.ID, true)
	if err != nil {
		return nil, err
	}
	var linkedNodes []*Node
	for _, d := range activeEdges {
		if d.DependencyType != models.DependencyLinked {
			continue
		}
		if childIDs[d.DependsOnID] {
			continue
		}
		target, err := r.store.FindByID(ctx, q, d.DependsOnID, true)
		if err != nil {
			return nil, err
		}
		if target == nil {
			continue
		}
		linkedNode, err := r.buildNode(ctx, q, target, depth+1, opts, true)
		if err != nil {
			return nil, err
		}
		linkedNodes = append(linkedNodes, linkedNode)
	}

	// Promoted subtrees are projected back in ahead of all remaining real
	// children, in linked-edge order. The promoted item's former position
	// among its siblings is not recorded, so its "(L)" node always comes
	// first, wherever the item used to sit.
	node.Children = append(linkedNodes, childNodes...)

	return node, nil
}
