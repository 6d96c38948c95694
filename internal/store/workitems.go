package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hallowell/workitem/internal/apperr"
	"github.com/hallowell/workitem/internal/models"
)

const workItemColumns = `id, parent_id, name, description, status, is_active, priority, due_date, order_key, created_at, updated_at`

func scanWorkItem(row interface{ Scan(dest ...any) error }) (*models.WorkItem, error) {
	var w models.WorkItem
	var parentID, dueDate sql.NullString
	var isActive int
	var createdAt, updatedAt string

	if err := row.Scan(&w.ID, &parentID, &w.Name, &w.Description, &w.Status, &isActive,
		&w.Priority, &dueDate, &w.OrderKey, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	w.ParentID = parentID.String
	w.IsActive = isActive != 0
	w.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	w.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	if dueDate.Valid && dueDate.String != "" {
		t, err := time.Parse(time.RFC3339Nano, dueDate.String)
		if err == nil {
			w.DueDate = &t
		}
	}
	return &w, nil
}

// FindByID returns the work item with id, or nil if absent (or inactive,
// when activeOnly is set).
func (s *Store) FindByID(ctx context.Context, q Queryer, id string, activeOnly bool) (*models.WorkItem, error) {
	query := `SELECT ` + workItemColumns + ` FROM work_items WHERE id = ?`
	if activeOnly {
		query += ` AND is_active = 1`
	}
	item, err := scanWorkItem(q.QueryRowContext(ctx, query, id))
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return item, nil
}

func queryWorkItems(ctx context.Context, q Queryer, query string, args ...any) ([]*models.WorkItem, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	defer rows.Close()

	var items []*models.WorkItem
	for rows.Next() {
		item, err := scanWorkItem(rows)
		if err != nil {
			return nil, apperr.Storage(err)
		}
		items = append(items, item)
	}
	return items, apperr.Storage(rows.Err())
}

// FindChildren returns the active children of parentID ordered by
// (order_key, created_at), optionally filtered by status. An empty
// activeOnly=false call also returns inactive children (used by cascades).
func (s *Store) FindChildren(ctx context.Context, q Queryer, parentID string, activeOnly bool, status *models.Status) ([]*models.WorkItem, error) {
	query := `SELECT ` + workItemColumns + ` FROM work_items WHERE parent_id = ?`
	args := []any{parentID}
	if activeOnly {
		query += ` AND is_active = 1`
	}
	if status != nil {
		query += ` AND status = ?`
		args = append(args, string(*status))
	}
	query += ` ORDER BY order_key ASC, created_at ASC`
	return queryWorkItems(ctx, q, query, args...)
}

// FindAll returns every work item regardless of parent, same
// ordering/filtering as FindChildren. Used by list_work_items when neither
// a parent nor roots_only scopes the query.
func (s *Store) FindAll(ctx context.Context, q Queryer, activeOnly bool, status *models.Status) ([]*models.WorkItem, error) {
	query := `SELECT ` + workItemColumns + ` FROM work_items WHERE 1=1`
	var args []any
	if activeOnly {
		query += ` AND is_active = 1`
	}
	if status != nil {
		query += ` AND status = ?`
		args = append(args, string(*status))
	}
	query += ` ORDER BY order_key ASC, created_at ASC`
	return queryWorkItems(ctx, q, query, args...)
}

// FindRoots returns items with no parent, same ordering/filtering as
// FindChildren.
func (s *Store) FindRoots(ctx context.Context, q Queryer, activeOnly bool, status *models.Status) ([]*models.WorkItem, error) {
	query := `SELECT ` + workItemColumns + ` FROM work_items WHERE (parent_id IS NULL OR parent_id = '')`
	var args []any
	if activeOnly {
		query += ` AND is_active = 1`
	}
	if status != nil {
		query += ` AND status = ?`
		args = append(args, string(*status))
	}
	query += ` ORDER BY order_key ASC, created_at ASC`
	return queryWorkItems(ctx, q, query, args...)
}

// FindDescendants returns the transitive closure of parent_id starting at
// id's children, regardless of active state. id itself is not included.
func (s *Store) FindDescendants(ctx context.Context, q Queryer, id string) ([]*models.WorkItem, error) {
	var all []*models.WorkItem
	frontier := []string{id}
	seen := map[string]bool{}

	for len(frontier) > 0 {
		next := frontier[0]
		frontier = frontier[1:]

		children, err := queryWorkItems(ctx, q, `SELECT `+workItemColumns+` FROM work_items WHERE parent_id = ? ORDER BY order_key ASC, created_at ASC`, next)
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			all = append(all, c)
			frontier = append(frontier, c.ID)
		}
	}
	return all, nil
}

// FindSiblings returns the other active items sharing parentID, excluding id.
func (s *Store) FindSiblings(ctx context.Context, q Queryer, id, parentID string, activeOnly bool) ([]*models.WorkItem, error) {
	query := `SELECT ` + workItemColumns + ` FROM work_items WHERE id != ?`
	args := []any{id}
	if parentID == "" {
		query += ` AND (parent_id IS NULL OR parent_id = '')`
	} else {
		query += ` AND parent_id = ?`
		args = append(args, parentID)
	}
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY order_key ASC, created_at ASC`
	return queryWorkItems(ctx, q, query, args...)
}

// FindSiblingEdgeOrderKey returns the order_key of the first or last active
// sibling under parentID, or nil if the list is empty. excludeID, when
// non-empty, omits that item from consideration (used when moving an item
// that might already sit at the edge being queried).
func (s *Store) FindSiblingEdgeOrderKey(ctx context.Context, q Queryer, parentID string, first bool, excludeID string) (*string, error) {
	dir := "DESC"
	if first {
		dir = "ASC"
	}
	query := fmt.Sprintf(`SELECT order_key FROM work_items WHERE is_active = 1 AND %s`, parentFilter(parentID))
	var args []any
	if parentID != "" {
		args = append(args, parentID)
	}
	if excludeID != "" {
		query += ` AND id != ?`
		args = append(args, excludeID)
	}
	query += fmt.Sprintf(` ORDER BY order_key %s LIMIT 1`, dir)

	var key string
	err := q.QueryRowContext(ctx, query, args...).Scan(&key)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return &key, nil
}

// FindNeighbourOrderKeys returns the (before, after) order_key pair
// bracketing the insertion slot adjacent to referenceID: when before=true,
// the slot immediately preceding referenceID; otherwise immediately
// following it. Either side of the returned pair is nil when no such
// neighbour exists (i.e. referenceID is first or last among its siblings).
func (s *Store) FindNeighbourOrderKeys(ctx context.Context, q Queryer, parentID, referenceID string, before bool) (*string, *string, error) {
	ref, err := s.FindByID(ctx, q, referenceID, true)
	if err != nil {
		return nil, nil, err
	}
	if ref == nil {
		return nil, nil, apperr.NotFoundOrInactive("reference work item")
	}

	var prevQuery, nextQuery string
	args := []any{ref.OrderKey}
	pf := parentFilter(parentID)
	if parentID != "" {
		args = append([]any{parentID}, args...)
	}

	prevQuery = fmt.Sprintf(`SELECT order_key FROM work_items WHERE is_active = 1 AND %s AND order_key < ? ORDER BY order_key DESC LIMIT 1`, pf)
	nextQuery = fmt.Sprintf(`SELECT order_key FROM work_items WHERE is_active = 1 AND %s AND order_key > ? ORDER BY order_key ASC LIMIT 1`, pf)

	prevKey, err := queryOptionalKey(ctx, q, prevQuery, args...)
	if err != nil {
		return nil, nil, err
	}
	nextKey, err := queryOptionalKey(ctx, q, nextQuery, args...)
	if err != nil {
		return nil, nil, err
	}

	if before {
		return prevKey, &ref.OrderKey, nil
	}
	return &ref.OrderKey, nextKey, nil
}

func queryOptionalKey(ctx context.Context, q Queryer, query string, args ...any) (*string, error) {
	var key string
	err := q.QueryRowContext(ctx, query, args...).Scan(&key)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return &key, nil
}

func parentFilter(parentID string) string {
	if parentID == "" {
		return `(parent_id IS NULL OR parent_id = '')`
	}
	return `parent_id = ?`
}

// InsertItem inserts item within tx. Caller sets ID, timestamps, and
// order_key beforehand.
func (s *Store) InsertItem(ctx context.Context, tx Execer, item *models.WorkItem) error {
	var parentID, dueDate any
	if item.ParentID != "" {
		parentID = item.ParentID
	}
	if item.DueDate != nil {
		dueDate = item.DueDate.UTC().Format(time.RFC3339Nano)
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO work_items (id, parent_id, name, description, status, is_active, priority, due_date, order_key, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, parentID, item.Name, item.Description, string(item.Status), boolToInt(item.IsActive),
		string(item.Priority), dueDate, item.OrderKey,
		item.CreatedAt.UTC().Format(time.RFC3339Nano), item.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return apperr.Storage(err)
	}
	return nil
}

// UpdateFields applies a partial column update to the work item with id,
// whether or not it is active; callers check activity beforehand.
// Supported keys: name, description, status, priority, due_date (value of
// type *time.Time, nil clears it), parent_id, order_key, is_active,
// updated_at. Unknown keys are ignored.
func (s *Store) UpdateFields(ctx context.Context, tx Execer, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	var setClauses []string
	var args []any
	for col, val := range fields {
		setClauses = append(setClauses, col+" = ?")
		switch v := val.(type) {
		case *time.Time:
			if v == nil {
				args = append(args, nil)
			} else {
				args = append(args, v.UTC().Format(time.RFC3339Nano))
			}
		case time.Time:
			args = append(args, v.UTC().Format(time.RFC3339Nano))
		case bool:
			args = append(args, boolToInt(v))
		default:
			args = append(args, v)
		}
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE work_items SET %s WHERE id = ?`, strings.Join(setClauses, ", "))
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return apperr.Storage(err)
	}
	return nil
}

// SoftDelete flips is_active to false for every id in ids.
func (s *Store) SoftDelete(ctx context.Context, tx Execer, ids []string, updatedAt time.Time) error {
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `UPDATE work_items SET is_active = 0, updated_at = ? WHERE id = ?`, updatedAt.UTC().Format(time.RFC3339Nano), id); err != nil {
			return apperr.Storage(err)
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
