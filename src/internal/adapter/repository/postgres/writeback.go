package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/api-sage/payout-reconciler/src/internal/domain"
)

// patchAssignments renders the non-nil fields of a write-back patch as
// SET clauses. Argument numbering starts at next; the caller owns $1.
func patchAssignments(patch domain.WriteBackPatch, next int) ([]string, []any) {
	assignments := make([]string, 0, 8)
	args := make([]any, 0, 8)

	add := func(column string, value any) {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, next))
		args = append(args, value)
		next++
	}

	if patch.Status != nil {
		add("status", string(*patch.Status))
	}
	if patch.Priority != nil {
		add("priority", *patch.Priority)
	}
	if patch.AdminNotes != nil {
		add("admin_notes", *patch.AdminNotes)
	}
	if patch.RejectionReason != nil {
		add("rejection_reason", *patch.RejectionReason)
	}
	if patch.RefundLedgerEntryID != nil {
		add("refund_ledger_entry_id", *patch.RefundLedgerEntryID)
	}
	if patch.ProcessedAt != nil {
		add("processed_at", *patch.ProcessedAt)
	}
	if patch.CompletedAt != nil {
		add("completed_at", *patch.CompletedAt)
	}

	return assignments, args
}

// resolveWriteBackMiss distinguishes a missing record from a failed
// optimistic precondition after an UPDATE matched zero rows.
func resolveWriteBackMiss(ctx context.Context, db *sql.DB, table, originID string) error {
	var status string
	query := fmt.Sprintf(`SELECT status FROM %s WHERE id = $1`, table)
	if err := db.QueryRowContext(ctx, query, originID).Scan(&status); err != nil {
		if err == sql.ErrNoRows {
			return domain.ErrRecordNotFound
		}
		return fmt.Errorf("resolve write-back miss on %s: %w", table, err)
	}
	return domain.ErrStatusConflict
}
