package store

import (
	"context"

	"github.com/hallowell/workitem/internal/apperr"
	"github.com/hallowell/workitem/internal/models"
)

const dependencyColumns = `work_item_id, depends_on_work_item_id, dependency_type, is_active`

func scanDependency(row interface{ Scan(dest ...any) error }) (*models.Dependency, error) {
	var d models.Dependency
	var isActive int
	if err := row.Scan(&d.WorkItemID, &d.DependsOnID, &d.DependencyType, &isActive); err != nil {
		return nil, err
	}
	d.IsActive = isActive != 0
	return &d, nil
}

func queryDependencies(ctx context.Context, q Queryer, query string, args ...any) ([]*models.Dependency, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	defer rows.Close()

	var deps []*models.Dependency
	for rows.Next() {
		d, err := scanDependency(rows)
		if err != nil {
			return nil, apperr.Storage(err)
		}
		deps = append(deps, d)
	}
	return deps, apperr.Storage(rows.Err())
}

// FindDependencies returns id's outgoing edges (what id depends on).
func (s *Store) FindDependencies(ctx context.Context, q Queryer, id string, activeOnly bool) ([]*models.Dependency, error) {
	query := `SELECT ` + dependencyColumns + ` FROM work_item_dependencies WHERE work_item_id = ?`
	if activeOnly {
		query += ` AND is_active = 1`
	}
	return queryDependencies(ctx, q, query, id)
}

// FindDependents returns id's incoming edges (what depends on id).
func (s *Store) FindDependents(ctx context.Context, q Queryer, id string, activeOnly bool) ([]*models.Dependency, error) {
	query := `SELECT ` + dependencyColumns + ` FROM work_item_dependencies WHERE depends_on_work_item_id = ?`
	if activeOnly {
		query += ` AND is_active = 1`
	}
	return queryDependencies(ctx, q, query, id)
}

// FindDependenciesForSet returns all active outgoing edges whose
// work_item_id is in ids, used by the scheduler's candidate blocking check.
func (s *Store) FindDependenciesForSet(ctx context.Context, q Queryer, ids []string) ([]*models.Dependency, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders, args := inClause(ids)
	query := `SELECT ` + dependencyColumns + ` FROM work_item_dependencies WHERE is_active = 1 AND work_item_id IN (` + placeholders + `)`
	return queryDependencies(ctx, q, query, args...)
}

// FindDependencyEdge returns the single edge (workItemID, dependsOnID), or
// nil if it doesn't exist.
func (s *Store) FindDependencyEdge(ctx context.Context, q Queryer, workItemID, dependsOnID string) (*models.Dependency, error) {
	d, err := scanDependency(q.QueryRowContext(ctx, `SELECT `+dependencyColumns+` FROM work_item_dependencies WHERE work_item_id = ? AND depends_on_work_item_id = ?`, workItemID, dependsOnID))
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return d, nil
}

// UpsertDependency inserts the edge, or reactivates and retypes it if it
// already exists (including when it was soft-deleted).
func (s *Store) UpsertDependency(ctx context.Context, tx Execer, dep *models.Dependency) error {
	_, err := tx.ExecContext(ctx, upsertDependencySQL(s.driver),
		dep.WorkItemID, dep.DependsOnID, string(dep.DependencyType), boolToInt(dep.IsActive),
		string(dep.DependencyType), boolToInt(dep.IsActive))
	if err != nil {
		return apperr.Storage(err)
	}
	return nil
}

func upsertDependencySQL(driver string) string {
	if driver == "mysql" {
		return `INSERT INTO work_item_dependencies (work_item_id, depends_on_work_item_id, dependency_type, is_active)
			VALUES (?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE dependency_type = ?, is_active = ?`
	}
	return `INSERT INTO work_item_dependencies (work_item_id, depends_on_work_item_id, dependency_type, is_active)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (work_item_id, depends_on_work_item_id) DO UPDATE SET dependency_type = excluded.dependency_type, is_active = excluded.is_active`
}

// DeactivateDependencies flips is_active to false for the given edges.
func (s *Store) DeactivateDependencies(ctx context.Context, tx Execer, edges [][2]string) error {
	for _, e := range edges {
		if _, err := tx.ExecContext(ctx, `UPDATE work_item_dependencies SET is_active = 0 WHERE work_item_id = ? AND depends_on_work_item_id = ?`, e[0], e[1]); err != nil {
			return apperr.Storage(err)
		}
	}
	return nil
}

// FindActiveDependencyEdgesTouching returns every currently-active edge
// whose either endpoint is in ids, used to snapshot old state before the
// soft-delete cascade deactivates them.
func (s *Store) FindActiveDependencyEdgesTouching(ctx context.Context, q Queryer, ids []string) ([]*models.Dependency, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders, args := inClause(ids)
	args = append(args, args...)
	query := `SELECT ` + dependencyColumns + ` FROM work_item_dependencies WHERE is_active = 1 AND (work_item_id IN (` + placeholders + `) OR depends_on_work_item_id IN (` + placeholders + `))`
	return queryDependencies(ctx, q, query, args...)
}

// DeactivateDependenciesTouching deactivates every edge whose either
// endpoint is in ids, used by the soft-delete cascade.
func (s *Store) DeactivateDependenciesTouching(ctx context.Context, tx Execer, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders, args := inClause(ids)
	args = append(args, args...)
	query := `UPDATE work_item_dependencies SET is_active = 0 WHERE is_active = 1 AND (work_item_id IN (` + placeholders + `) OR depends_on_work_item_id IN (` + placeholders + `))`
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return apperr.Storage(err)
	}
	return nil
}

func inClause(ids []string) (string, []any) {
	placeholders := ""
	args := make([]any, len(ids))
	for i, id := range ids {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
		args[i] = id
	}
	return placeholders, args
}
