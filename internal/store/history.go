package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/hallowell/workitem/internal/apperr"
	"github.com/hallowell/workitem/internal/models"
)

const actionColumns = `id, created_at, action_type, description, work_item_id, is_undone, undone_at_action_id`

// actionTimeLayout writes action timestamps with a fixed nine-digit fraction
// so that text order of created_at matches time order.
const actionTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func scanAction(row interface{ Scan(dest ...any) error }) (*models.Action, error) {
	var a models.Action
	var workItemID, undoneAt sql.NullString
	var isUndone int
	var createdAt string

	if err := row.Scan(&a.ID, &createdAt, &a.ActionType, &a.Description, &workItemID, &isUndone, &undoneAt); err != nil {
		return nil, err
	}
	a.Timestamp, _ = time.Parse(time.RFC3339Nano, createdAt)
	a.WorkItemID = workItemID.String
	a.IsUndone = isUndone != 0
	a.UndoneAtActionID = undoneAt.String
	return &a, nil
}

// InsertAction appends one action row.
func (s *Store) InsertAction(ctx context.Context, tx Execer, a *models.Action) error {
	var workItemID, undoneAt any
	if a.WorkItemID != "" {
		workItemID = a.WorkItemID
	}
	if a.UndoneAtActionID != "" {
		undoneAt = a.UndoneAtActionID
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO action_history (id, created_at, action_type, description, work_item_id, is_undone, undone_at_action_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Timestamp.UTC().Format(actionTimeLayout), string(a.ActionType), a.Description, workItemID, boolToInt(a.IsUndone), undoneAt)
	if err != nil {
		return apperr.Storage(err)
	}
	return nil
}

// InsertUndoSteps appends steps, which must already carry monotonically
// increasing StepOrder values.
func (s *Store) InsertUndoSteps(ctx context.Context, tx Execer, steps []*models.UndoStep) error {
	for _, step := range steps {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO undo_steps (action_id, step_order, step_type, table_name, record_id, old_data, new_data)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			step.ActionID, step.StepOrder, string(step.StepType), step.TableName, step.RecordID, step.OldData, step.NewData)
		if err != nil {
			return apperr.Storage(err)
		}
	}
	return nil
}

// FindActionByID returns the action with id, or nil.
func (s *Store) FindActionByID(ctx context.Context, q Queryer, id string) (*models.Action, error) {
	a, err := scanAction(q.QueryRowContext(ctx, `SELECT `+actionColumns+` FROM action_history WHERE id = ?`, id))
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return a, nil
}

// FindLastUndoableAction returns the most recent action eligible for undo:
// not itself undone, and not a meta-action.
func (s *Store) FindLastUndoableAction(ctx context.Context, q Queryer) (*models.Action, error) {
	a, err := scanAction(q.QueryRowContext(ctx, `
		SELECT `+actionColumns+` FROM action_history
		WHERE is_undone = 0 AND action_type NOT IN ('UNDO_ACTION', 'REDO_ACTION')
		ORDER BY created_at DESC LIMIT 1`))
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return a, nil
}

// FindLastRedoableAction returns the most recent action that was undone (not
// invalidated): is_undone=true and undone_at_action_id names an UNDO_ACTION.
func (s *Store) FindLastRedoableAction(ctx context.Context, q Queryer) (*models.Action, error) {
	a, err := scanAction(q.QueryRowContext(ctx, `
		SELECT a.id, a.created_at, a.action_type, a.description, a.work_item_id, a.is_undone, a.undone_at_action_id
		FROM action_history a
		JOIN action_history meta ON meta.id = a.undone_at_action_id
		WHERE a.is_undone = 1 AND meta.action_type = 'UNDO_ACTION'
		ORDER BY a.created_at DESC LIMIT 1`))
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return a, nil
}

// InvalidateRedoTail flips undone_at_action_id to newActionID for every
// action whose undone_at_action_id currently names an UNDO_ACTION, marking
// that whole redo tail ineligible for redo.
func (s *Store) InvalidateRedoTail(ctx context.Context, tx Execer, newActionID string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE action_history SET undone_at_action_id = ?
		WHERE id IN (
			SELECT a.id FROM action_history a
			JOIN action_history meta ON meta.id = a.undone_at_action_id
			WHERE a.is_undone = 1 AND meta.action_type = 'UNDO_ACTION'
		)`, newActionID)
	if err != nil {
		return apperr.Storage(err)
	}
	return nil
}

// MarkUndone flips an action's is_undone flag and undone_at_action_id.
func (s *Store) MarkUndone(ctx context.Context, tx Execer, actionID string, undone bool, undoneAtActionID string) error {
	var undoneAt any
	if undoneAtActionID != "" {
		undoneAt = undoneAtActionID
	}
	_, err := tx.ExecContext(ctx, `UPDATE action_history SET is_undone = ?, undone_at_action_id = ? WHERE id = ?`,
		boolToInt(undone), undoneAt, actionID)
	if err != nil {
		return apperr.Storage(err)
	}
	return nil
}

// FindUndoSteps returns an action's steps ordered ascending by step_order.
func (s *Store) FindUndoSteps(ctx context.Context, q Queryer, actionID string) ([]*models.UndoStep, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, action_id, step_order, step_type, table_name, record_id, old_data, new_data
		FROM undo_steps WHERE action_id = ? ORDER BY step_order ASC`, actionID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	defer rows.Close()

	var steps []*models.UndoStep
	for rows.Next() {
		var step models.UndoStep
		if err := rows.Scan(&step.ID, &step.ActionID, &step.StepOrder, &step.StepType, &step.TableName, &step.RecordID, &step.OldData, &step.NewData); err != nil {
			return nil, apperr.Storage(err)
		}
		steps = append(steps, &step)
	}
	return steps, apperr.Storage(rows.Err())
}

// ListActions returns actions in [startDate, endDate] (either may be zero),
// newest first, capped at limit (0 = unbounded).
func (s *Store) ListActions(ctx context.Context, q Queryer, startDate, endDate time.Time, limit int) ([]*models.Action, error) {
	query := `SELECT ` + actionColumns + ` FROM action_history WHERE 1=1`
	var args []any
	if !startDate.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, startDate.UTC().Format(actionTimeLayout))
	}
	if !endDate.IsZero() {
		query += ` AND created_at <= ?`
		args = append(args, endDate.UTC().Format(actionTimeLayout))
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	defer rows.Close()

	var actions []*models.Action
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, apperr.Storage(err)
		}
		actions = append(actions, a)
	}
	return actions, apperr.Storage(rows.Err())
}
