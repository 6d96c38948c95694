package tree

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hallowell/workitem/internal/apperr"
	"github.com/hallowell/workitem/internal/config"
	"github.com/hallowell/workitem/internal/mutation"
	"github.com/hallowell/workitem/internal/store"
)

func newTestStack(t *testing.T) (*store.Store, *mutation.Engine, *Reader) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "workitem.db")
	s, err := store.Open(context.Background(), config.Config{Driver: "sqlite", Database: dbPath})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, mutation.New(s), New(s)
}

func TestGetFullTree_NotFound(t *testing.T) {
	_, _, r := newTestStack(t)
	_, err := r.GetFullTree(context.Background(), "missing", Options{})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestGetFullTree_NestsChildren(t *testing.T) {
	_, m, r := newTestStack(t)
	ctx := context.Background()

	root, err := m.AddWorkItem(ctx, mutation.AddWorkItemInput{Name: "project"})
	if err != nil {
		t.Fatalf("AddWorkItem root: %v", err)
	}
	child, err := m.AddWorkItem(ctx, mutation.AddWorkItemInput{Name: "task", ParentID: root.ID})
	if err != nil {
		t.Fatalf("AddWorkItem child: %v", err)
	}

	node, err := r.GetFullTree(ctx, root.ID, Options{})
	if err != nil {
		t.Fatalf("GetFullTree: %v", err)
	}
	if len(node.Children) != 1 || node.Children[0].Item.ID != child.ID {
		t.Fatalf("unexpected children: %+v", node.Children)
	}
	if node.Children[0].DisplayName != "task" {
		t.Fatalf("expected plain display name for direct child, got %q", node.Children[0].DisplayName)
	}
}

func TestGetFullTree_LinkedProjectionSuffixesNames(t *testing.T) {
	_, m, r := newTestStack(t)
	ctx := context.Background()

	root, err := m.AddWorkItem(ctx, mutation.AddWorkItemInput{Name: "project"})
	if err != nil {
		t.Fatalf("AddWorkItem root: %v", err)
	}
	child, err := m.AddWorkItem(ctx, mutation.AddWorkItemInput{Name: "spinoff", ParentID: root.ID})
	if err != nil {
		t.Fatalf("AddWorkItem child: %v", err)
	}
	grandchild, err := m.AddWorkItem(ctx, mutation.AddWorkItemInput{Name: "inner", ParentID: child.ID})
	if err != nil {
		t.Fatalf("AddWorkItem grandchild: %v", err)
	}

	if _, err := m.PromoteToProject(ctx, child.ID); err != nil {
		t.Fatalf("PromoteToProject: %v", err)
	}

	node, err := r.GetFullTree(ctx, root.ID, Options{})
	if err != nil {
		t.Fatalf("GetFullTree: %v", err)
	}
	if len(node.Children) != 1 {
		t.Fatalf("expected one linked child projected back, got %+v", node.Children)
	}
	linkedNode := node.Children[0]
	if linkedNode.DisplayName != "spinoff (L)" || !linkedNode.Linked {
		t.Fatalf("expected linked projection suffix, got %+v", linkedNode)
	}
	if len(linkedNode.Children) != 1 || linkedNode.Children[0].Item.ID != grandchild.ID {
		t.Fatalf("expected projected subtree to include grandchild, got %+v", linkedNode.Children)
	}
	if linkedNode.Children[0].DisplayName != "inner (L)" {
		t.Fatalf("expected linked projection to propagate to descendants, got %q", linkedNode.Children[0].DisplayName)
	}
}

func TestGetFullTree_MaxDepthStopsRecursion(t *testing.T) {
	_, m, r := newTestStack(t)
	ctx := context.Background()

	root, err := m.AddWorkItem(ctx, mutation.AddWorkItemInput{Name: "project"})
	if err != nil {
		t.Fatalf("AddWorkItem root: %v", err)
	}
	child, err := m.AddWorkItem(ctx, mutation.AddWorkItemInput{Name: "task", ParentID: root.ID})
	if err != nil {
		t.Fatalf("AddWorkItem child: %v", err)
	}
	if _, err := m.AddWorkItem(ctx, mutation.AddWorkItemInput{Name: "grandchild", ParentID: child.ID}); err != nil {
		t.Fatalf("AddWorkItem grandchild: %v", err)
	}

	node, err := r.GetFullTree(ctx, root.ID, Options{MaxDepth: 1})
	if err != nil {
		t.Fatalf("GetFullTree: %v", err)
	}
	if len(node.Children) != 1 {
		t.Fatalf("expected one child at depth 1, got %+v", node.Children)
	}
	if len(node.Children[0].Children) != 0 {
		t.Fatalf("expected no grandchildren beyond max depth, got %+v", node.Children[0].Children)
	}
}
