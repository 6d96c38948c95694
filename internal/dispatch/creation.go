package dispatch

import (
	"context"
	"time"

	"github.com/hallowell/workitem/internal/models"
	"github.com/hallowell/workitem/internal/mutation"
)

// DependencyParam names one dependency edge to create alongside an item.
type DependencyParam struct {
	DependsOnWorkItemID string
	DependencyType      models.DependencyType
}

// CreateProjectParams creates a root project.
type CreateProjectParams struct {
	Name        string
	Description string
}

// CreateProject creates a new root work item.
func (d *Dispatcher) CreateProject(ctx context.Context, p CreateProjectParams) (*models.WorkItem, error) {
	item, err := d.mutation.AddWorkItem(ctx, mutation.AddWorkItemInput{Name: p.Name, Description: p.Description})
	return item, wrap(err)
}

// AddTaskParams creates a task under an existing parent, with optional
// sibling positioning (at most one of InsertAt/InsertAfter/InsertBefore).
type AddTaskParams struct {
	ParentWorkItemID string
	Name             string
	Description      string
	Status           models.Status
	Priority         models.Priority
	DueDate          *time.Time
	Dependencies     []DependencyParam
	InsertAt         string
	InsertAfter      string
	InsertBefore     string
}

// AddTask creates a task under ParentWorkItemID.
func (d *Dispatcher) AddTask(ctx context.Context, p AddTaskParams) (*models.WorkItem, error) {
	var deps []mutation.DependencyInput
	for _, dep := range p.Dependencies {
		deps = append(deps, mutation.DependencyInput{DependsOnID: dep.DependsOnWorkItemID, Type: dep.DependencyType})
	}

	item, err := d.mutation.AddWorkItem(ctx, mutation.AddWorkItemInput{
		Name:         p.Name,
		Description:  p.Description,
		Status:       p.Status,
		Priority:     p.Priority,
		DueDate:      p.DueDate,
		ParentID:     p.ParentWorkItemID,
		Dependencies: deps,
		Positioning:  mutation.Positioning{InsertAt: p.InsertAt, InsertAfter: p.InsertAfter, InsertBefore: p.InsertBefore},
	})
	return item, wrap(err)
}

// ChildTaskTreeParam is one node of the tree accepted by AddChildTasks.
type ChildTaskTreeParam struct {
	Name        string
	Description string
	Status      models.Status
	Priority    models.Priority
	DueDate     *time.Time
	Children    []ChildTaskTreeParam
}

// AddChildTasksParams creates a whole subtree of tasks under one parent.
type AddChildTasksParams struct {
	ParentWorkItemID string
	ChildTasksTree   []ChildTaskTreeParam
}

// AddChildTasks creates the tree of tasks under ParentWorkItemID and
// returns the created items in depth-first order.
func (d *Dispatcher) AddChildTasks(ctx context.Context, p AddChildTasksParams) ([]*models.WorkItem, error) {
	items, err := d.mutation.AddChildTasks(ctx, p.ParentWorkItemID, toChildTaskNodes(p.ChildTasksTree))
	return items, wrap(err)
}

func toChildTaskNodes(params []ChildTaskTreeParam) []mutation.ChildTaskNode {
	nodes := make([]mutation.ChildTaskNode, len(params))
	for i, p := range params {
		nodes[i] = mutation.ChildTaskNode{
			Name:        p.Name,
			Description: p.Description,
			Status:      p.Status,
			Priority:    p.Priority,
			DueDate:     p.DueDate,
			Children:    toChildTaskNodes(p.Children),
		}
	}
	return nodes
}
