package mutation

import (
	"context"
	"testing"
)

func TestAddChildTasks_CreatesDepthFirst(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	root, err := e.AddWorkItem(ctx, AddWorkItemInput{Name: "project"})
	if err != nil {
		t.Fatalf("AddWorkItem: %v", err)
	}

	created, err := e.AddChildTasks(ctx, root.ID, []ChildTaskNode{
		{Name: "phase 1", Children: []ChildTaskNode{
			{Name: "step 1a"},
			{Name: "step 1b"},
		}},
		{Name: "phase 2"},
	})
	if err != nil {
		t.Fatalf("AddChildTasks: %v", err)
	}
	if len(created) != 4 {
		t.Fatalf("expected 4 created items, got %d", len(created))
	}
	names := []string{created[0].Name, created[1].Name, created[2].Name, created[3].Name}
	want := []string{"phase 1", "step 1a", "step 1b", "phase 2"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("depth-first order mismatch: got %v, want %v", names, want)
		}
	}

	phase1Children, err := s.FindChildren(ctx, s.DB(), created[0].ID, true, nil)
	if err != nil {
		t.Fatalf("FindChildren: %v", err)
	}
	if len(phase1Children) != 2 {
		t.Fatalf("expected phase 1 to have 2 children, got %d", len(phase1Children))
	}
}

func TestAddChildTasks_RejectsEmpty(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	root, err := e.AddWorkItem(ctx, AddWorkItemInput{Name: "project"})
	if err != nil {
		t.Fatalf("AddWorkItem: %v", err)
	}
	_, err = e.AddChildTasks(ctx, root.ID, nil)
	if err == nil {
		t.Fatalf("expected error for empty child task tree")
	}
}
