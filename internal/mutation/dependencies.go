package mutation

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hallowell/workitem/internal/apperr"
	"github.com/hallowell/workitem/internal/history"
	"github.com/hallowell/workitem/internal/models"
	"github.com/hallowell/workitem/internal/store"
)

// AddDependencies upserts the given (target, dependency_type) pairs for
// workItemID (§4.4.f). Each insert or reactivation produces one UndoStep.
func (e *Engine) AddDependencies(ctx context.Context, workItemID string, deps []DependencyInput) (*models.WorkItem, error) {
	if len(deps) == 0 {
		return nil, apperr.Validation("at least one dependency is required")
	}

	var result *models.WorkItem
	var actionID string
	err := e.store.WithTx(ctx, func(tx *sql.Tx) error {
		item, err := e.store.FindByID(ctx, tx, workItemID, true)
		if err != nil {
			return err
		}
		if item == nil {
			return apperr.NotFoundOrInactive("work item")
		}

		var steps []history.StepInput
		for _, d := range deps {
			if d.DependsOnID == workItemID {
				return apperr.Validation("a work item cannot depend on itself")
			}
			target, err := e.store.FindByID(ctx, tx, d.DependsOnID, true)
			if err != nil {
				return err
			}
			if target == nil {
				return apperr.Validation("dependency target %q does not exist", d.DependsOnID)
			}

			depType := d.Type
			if depType == "" {
				depType = models.DependencyFinishToStart
			}
			if !models.IsValidDependencyType(depType) {
				return apperr.Validation("invalid dependency type %q", depType)
			}

			if depType == models.DependencyFinishToStart {
				cycle, err := e.wouldCreateCycle(ctx, tx, workItemID, d.DependsOnID)
				if err != nil {
					return err
				}
				if cycle {
					return apperr.Validation("adding dependency on %q would create a circular dependency", d.DependsOnID)
				}
			}

			existing, err := e.store.FindDependencyEdge(ctx, tx, workItemID, d.DependsOnID)
			if err != nil {
				return err
			}
			var oldData map[string]any
			if existing != nil {
				oldData = dependencyToFields(existing, existing.IsActive)
			} else {
				oldData = inactiveDependencyStub(&models.Dependency{WorkItemID: workItemID, DependsOnID: d.DependsOnID, DependencyType: depType})
			}

			dep := &models.Dependency{WorkItemID: workItemID, DependsOnID: d.DependsOnID, DependencyType: depType, IsActive: true}
			if err := e.store.UpsertDependency(ctx, tx, dep); err != nil {
				return err
			}

			steps = append(steps, history.StepInput{
				StepType: models.StepUpdate, TableName: "work_item_dependencies",
				RecordID: workItemID + ":" + d.DependsOnID,
				OldData:  marshal(oldData), NewData: marshal(dependencyToFields(dep, true)),
			})
		}

		actionID, err = e.recorder.Record(ctx, tx, history.ActionMeta{
			ActionType:  models.ActionAddDependencies,
			Description: fmt.Sprintf("add dependencies to %q", item.Name),
			WorkItemID:  workItemID,
		}, steps)
		if err != nil {
			return err
		}

		result = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	if actionID != "" {
		e.publish(ctx, actionID, models.ActionAddDependencies, workItemID, fmt.Sprintf("add dependencies to %q", result.Name))
	}
	return result, nil
}

// DeleteDependencies deactivates the named edges from workItemID.
func (e *Engine) DeleteDependencies(ctx context.Context, workItemID string, dependsOnIDs []string) (*models.WorkItem, error) {
	if len(dependsOnIDs) == 0 {
		return nil, apperr.Validation("at least one dependency target is required")
	}

	var result *models.WorkItem
	var actionID string
	err := e.store.WithTx(ctx, func(tx *sql.Tx) error {
		item, err := e.store.FindByID(ctx, tx, workItemID, true)
		if err != nil {
			return err
		}
		if item == nil {
			return apperr.NotFoundOrInactive("work item")
		}

		var steps []history.StepInput
		var pairs [][2]string
		for _, dependsOnID := range dependsOnIDs {
			edge, err := e.store.FindDependencyEdge(ctx, tx, workItemID, dependsOnID)
			if err != nil {
				return err
			}
			if edge == nil || !edge.IsActive {
				return apperr.NotFoundOrInactive("dependency edge")
			}
			steps = append(steps, history.StepInput{
				StepType: models.StepUpdate, TableName: "work_item_dependencies",
				RecordID: workItemID + ":" + dependsOnID,
				OldData:  marshal(dependencyToFields(edge, true)),
				NewData:  marshal(dependencyToFields(edge, false)),
			})
			pairs = append(pairs, [2]string{workItemID, dependsOnID})
		}

		if err := e.store.DeactivateDependencies(ctx, tx, pairs); err != nil {
			return err
		}

		actionID, err = e.recorder.Record(ctx, tx, history.ActionMeta{
			ActionType:  models.ActionDeleteDependencies,
			Description: fmt.Sprintf("delete dependencies from %q", item.Name),
			WorkItemID:  workItemID,
		}, steps)
		if err != nil {
			return err
		}

		result = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	if actionID != "" {
		e.publish(ctx, actionID, models.ActionDeleteDependencies, workItemID, fmt.Sprintf("delete dependencies from %q", result.Name))
	}
	return result, nil
}

// wouldCreateCycle reports whether adding an edge workItemID -> dependsOnID
// would create a cycle in the finish-to-start dependency graph: true iff
// dependsOnID can already (transitively) reach workItemID.
func (e *Engine) wouldCreateCycle(ctx context.Context, q store.Queryer, workItemID, dependsOnID string) (bool, error) {
	visited := map[string]bool{}
	return e.hasPath(ctx, q, dependsOnID, workItemID, visited)
}

func (e *Engine) hasPath(ctx context.Context, q store.Queryer, from, to string, visited map[string]bool) (bool, error) {
	if from == to {
		return true, nil
	}
	if visited[from] {
		return false, nil
	}
	visited[from] = true

	deps, err := e.store.FindDependencies(ctx, q, from, true)
	if err != nil {
		return false, err
	}
	for _, d := range deps {
		found, err := e.hasPath(ctx, q, d.DependsOnID, to, visited)
		if err != nil {
			return false, err
		}
		if found {
			return true, nil
		}
	}
	return false, nil
}
