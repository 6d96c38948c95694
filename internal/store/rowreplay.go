package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hallowell/workitem/internal/apperr"
)

// tableSpec centralizes the primary-key shape of each table the UndoRedo
// replayer touches, keeping the PK-resolution rule auditable in one place
// per the "Generic row replay" design note.
type tableSpec struct {
	pkColumns []string
	columns   []string
}

var tableSpecs = map[string]tableSpec{
	"work_items": {
		pkColumns: []string{"id"},
		columns:   []string{"id", "parent_id", "name", "description", "status", "is_active", "priority", "due_date", "order_key", "created_at", "updated_at"},
	},
	"work_item_dependencies": {
		pkColumns: []string{"work_item_id", "depends_on_work_item_id"},
		columns:   []string{"work_item_id", "depends_on_work_item_id", "dependency_type", "is_active"},
	},
}

// recordIDKey joins a composite primary key into the delimited record_id
// string format used in undo_steps, per §9: "{work_item_id}:{depends_on_work_item_id}".
func recordIDKey(parts ...string) string {
	return strings.Join(parts, ":")
}

func splitRecordID(recordID string, n int) ([]string, error) {
	parts := strings.SplitN(recordID, ":", n)
	if len(parts) != n {
		return nil, apperr.Storage(fmt.Errorf("malformed composite record id %q: want %d parts", recordID, n))
	}
	return parts, nil
}

// WriteRow issues the partial update implied by replaying data (a
// table_name/old_data/new_data triple's JSON payload) into table, locating
// the row by recordID (the table's primary key, per tableSpecs) rather than
// by any column the payload happens to carry. Every StepUpdate step author
// records only the columns it actually changed — "id"/PK columns are never
// among them — so WriteRow only ever SETs columns present in the decoded
// payload, leaving every other column (including ones a partial step never
// mentions) untouched. The row is always expected to already exist: every
// row this replays over was physically inserted by the forward mutation
// that created the UndoStep, and undo/redo only ever flips its columns.
func (s *Store) WriteRow(ctx context.Context, tx Execer, table, recordID, data string) error {
	spec, ok := tableSpecs[table]
	if !ok {
		return apperr.Storage(fmt.Errorf("unknown replay table %q", table))
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return apperr.Storage(fmt.Errorf("unmarshal row data for %s: %w", table, err))
	}

	pkArgs, err := s.pkArgs(spec, recordID)
	if err != nil {
		return err
	}

	setClauses := make([]string, 0, len(spec.columns))
	args := make([]any, 0, len(spec.columns)+len(pkArgs))
	for _, col := range spec.columns {
		if isPKColumn(spec, col) {
			continue
		}
		v, present := fields[col]
		if !present {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = ?", col))
		args = append(args, normalizeReplayValue(v))
	}
	if len(setClauses) == 0 {
		return nil
	}

	whereClauses := make([]string, len(spec.pkColumns))
	for i, col := range spec.pkColumns {
		whereClauses[i] = col + " = ?"
	}
	args = append(args, pkArgs...)

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s`, table, strings.Join(setClauses, ", "), strings.Join(whereClauses, " AND "))
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return apperr.Storage(fmt.Errorf("replay write to %s: %w", table, err))
	}
	return nil
}

// pkArgs resolves recordID into the ordered primary-key arguments named by
// spec.pkColumns, splitting the ":"-delimited composite form for tables
// with more than one PK column.
func (s *Store) pkArgs(spec tableSpec, recordID string) ([]any, error) {
	if len(spec.pkColumns) == 1 {
		return []any{recordID}, nil
	}
	parts, err := splitRecordID(recordID, len(spec.pkColumns))
	if err != nil {
		return nil, err
	}
	args := make([]any, len(parts))
	for i, p := range parts {
		args[i] = p
	}
	return args, nil
}

// DeleteRow deletes the row identified by recordID from table.
func (s *Store) DeleteRow(ctx context.Context, tx Execer, table, recordID string) error {
	spec, ok := tableSpecs[table]
	if !ok {
		return apperr.Storage(fmt.Errorf("unknown replay table %q", table))
	}

	args, err := s.pkArgs(spec, recordID)
	if err != nil {
		return err
	}
	clauses := make([]string, len(spec.pkColumns))
	for i, col := range spec.pkColumns {
		clauses[i] = col + " = ?"
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s`, table, strings.Join(clauses, " AND "))
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return apperr.Storage(err)
	}
	return nil
}

func isPKColumn(spec tableSpec, col string) bool {
	for _, pk := range spec.pkColumns {
		if pk == col {
			return true
		}
	}
	return false
}

// normalizeReplayValue converts a JSON-decoded value (float64 for numbers,
// bool for booleans) into the form the driver expects for INTEGER/TINYINT
// boolean columns.
func normalizeReplayValue(v any) any {
	switch val := v.(type) {
	case bool:
		return boolToInt(val)
	case float64:
		return val
	case nil:
		return nil
	default:
		return val
	}
}
