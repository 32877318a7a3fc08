package db

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// reorderDense reassigns the order column to dense keys 0..n-1 matching
// orderedIDs, as one batched UPDATE. A single statement keeps the write
// atomic with respect to readers; a per-row loop would expose torn orders.
// The caller must have verified orderedIDs against current membership.
func reorderDense(tx *gorm.DB, table, orderColumn string, orderedIDs []uuid.UUID) error {
	if len(orderedIDs) == 0 {
		return nil
	}

	var sb strings.Builder
	args := make([]interface{}, 0, len(orderedIDs)*3)

	fmt.Fprintf(&sb, "UPDATE %s SET %s = CASE id", table, orderColumn)
	for pos, id := range orderedIDs {
		sb.WriteString(" WHEN ? THEN ?")
		args = append(args, id.String(), pos)
	}
	sb.WriteString(" END WHERE id IN (")
	for i, id := range orderedIDs {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("?")
		args = append(args, id.String())
	}
	sb.WriteString(")")

	result := tx.Exec(sb.String(), args...)
	if result.Error != nil {
		return fmt.Errorf("failed to reorder %s: %w", table, MapGormError(result.Error))
	}
	if result.RowsAffected != int64(len(orderedIDs)) {
		return ErrReorderMismatch
	}
	return nil
}

// checkMembership verifies that orderedIDs is exactly the set of ids
// currently present in the given query scope.
func checkMembership(currentIDs []string, orderedIDs []uuid.UUID) error {
	if len(currentIDs) != len(orderedIDs) {
		return ErrReorderMismatch
	}
	current := make(map[string]struct{}, len(currentIDs))
	for _, id := range currentIDs {
		current[id] = struct{}{}
	}
	seen := make(map[string]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		key := id.String()
		if _, ok := current[key]; !ok {
			return ErrReorderMismatch
		}
		if _, dup := seen[key]; dup {
			return ErrReorderMismatch
		}
		seen[key] = struct{}{}
	}
	return nil
}
