package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/api-sage/payout-reconciler/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/payout-reconciler/src/internal/domain"
	"github.com/api-sage/payout-reconciler/src/internal/logger"
)

// Verify that CanonicalAdapter implements the SourceAdapter contract
var _ repo_interfaces.SourceAdapter = (*CanonicalAdapter)(nil)

// CanonicalAdapter reads the cross-region payout store
// (creator_withdrawal_requests in the biz database).
type CanonicalAdapter struct {
	db *sql.DB
}

func NewCanonicalAdapter(db *sql.DB) *CanonicalAdapter {
	return &CanonicalAdapter{db: db}
}

func (a *CanonicalAdapter) Source() domain.SourceSystem {
	return domain.SourceCanonicalPayoutStore
}

func (a *CanonicalAdapter) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	logger.Info("canonical adapter fetch", nil)

	const query = `
SELECT
	id,
	creator_id,
	creator_name,
	region,
	requested_points,
	bank_name,
	account_number,
	account_holder,
	resident_registration_number,
	paypal_email,
	status,
	priority,
	admin_notes,
	rejection_reason,
	refund_ledger_entry_id,
	created_at,
	processed_at,
	completed_at
FROM creator_withdrawal_requests
ORDER BY created_at`

	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("canonical adapter fetch failed", err, nil)
		return nil, fmt.Errorf("fetch canonical payout rows: %w", err)
	}
	defer rows.Close()

	records := make([]domain.RawRecord, 0, 64)
	for rows.Next() {
		var (
			id, creatorID, region, status                      string
			creatorName                                        sql.NullString
			requestedPoints                                    int64
			priority                                           int
			bankName, accountNumber, accountHolder             sql.NullString
			residentNumber, paypalEmail, notes, reason, refund sql.NullString
			createdAt                                          time.Time
			processedAt, completedAt                           sql.NullTime
		)

		if err := rows.Scan(
			&id,
			&creatorID,
			&creatorName,
			&region,
			&requestedPoints,
			&bankName,
			&accountNumber,
			&accountHolder,
			&residentNumber,
			&paypalEmail,
			&status,
			&priority,
			&notes,
			&reason,
			&refund,
			&createdAt,
			&processedAt,
			&completedAt,
		); err != nil {
			logger.Error("canonical adapter scan failed", err, nil)
			return nil, fmt.Errorf("scan canonical payout row: %w", err)
		}

		payload := domain.CanonicalPayoutRow{
			ID:                         id,
			CreatorID:                  creatorID,
			CreatorName:                creatorName.String,
			Region:                     region,
			RequestedPoints:            requestedPoints,
			BankName:                   bankName.String,
			AccountNumber:              accountNumber.String,
			AccountHolder:              accountHolder.String,
			ResidentRegistrationNumber: residentNumber.String,
			PaypalEmail:                paypalEmail.String,
			Status:                     status,
			Priority:                   priority,
			AdminNotes:                 notes.String,
			RejectionReason:            reason.String,
			RefundLedgerEntryID:        refund.String,
			CreatedAt:                  createdAt,
		}
		if processedAt.Valid {
			value := processedAt.Time
			payload.ProcessedAt = &value
		}
		if completedAt.Valid {
			value := completedAt.Time
			payload.CompletedAt = &value
		}

		records = append(records, domain.RawRecord{
			ID:        payload.ID,
			Source:    domain.SourceCanonicalPayoutStore,
			Canonical: &payload,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate canonical payout rows: %w", err)
	}

	logger.Info("canonical adapter fetch success", logger.Fields{
		"count": len(records),
	})

	return records, nil
}

func (a *CanonicalAdapter) WriteBack(ctx context.Context, originID string, patch domain.WriteBackPatch) error {
	logger.Info("canonical adapter write back", logger.Fields{
		"originId": originID,
	})

	assignments, args := patchAssignments(patch, 2)
	if len(assignments) == 0 {
		return nil
	}

	query := fmt.Sprintf(
		`UPDATE creator_withdrawal_requests SET %s WHERE id = $1`,
		strings.Join(assignments, ", "),
	)
	queryArgs := append([]any{originID}, args...)
	if patch.ExpectedStatus != nil {
		query += fmt.Sprintf(" AND status = $%d", len(queryArgs)+1)
		queryArgs = append(queryArgs, string(*patch.ExpectedStatus))
	}

	result, err := a.db.ExecContext(ctx, query, queryArgs...)
	if err != nil {
		logger.Error("canonical adapter write back failed", err, logger.Fields{
			"originId": originID,
		})
		return fmt.Errorf("write back canonical payout row %q: %w", originID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("write back canonical payout row %q: %w", originID, err)
	}
	if affected == 0 {
		return resolveWriteBackMiss(ctx, a.db, "creator_withdrawal_requests", originID)
	}

	return nil
}
