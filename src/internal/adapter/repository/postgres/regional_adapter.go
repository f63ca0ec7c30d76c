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
	"github.com/google/uuid"
)

// Verify the adapter and promotion contracts
var _ repo_interfaces.SourceAdapter = (*RegionalAdapter)(nil)
var _ repo_interfaces.PromotionRepository = (*RegionalAdapter)(nil)

// RegionalAdapter reads the region-specific withdrawal store
// (withdrawals in the korea database). The store does not record a
// region; every row belongs to the store's own region.
type RegionalAdapter struct {
	db *sql.DB
}

func NewRegionalAdapter(db *sql.DB) *RegionalAdapter {
	return &RegionalAdapter{db: db}
}

func (a *RegionalAdapter) Source() domain.SourceSystem {
	return domain.SourceRegionalWithdrawalStore
}

func (a *RegionalAdapter) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	logger.Info("regional adapter fetch", nil)

	const query = `
SELECT
	id,
	user_id,
	user_name,
	amount,
	bank_name,
	bank_account_number,
	bank_account_holder,
	resident_registration_number,
	status,
	priority,
	admin_notes,
	rejection_reason,
	refund_ledger_entry_id,
	source_entry_id,
	created_at,
	processed_at,
	completed_at
FROM withdrawals
ORDER BY created_at`

	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("regional adapter fetch failed", err, nil)
		return nil, fmt.Errorf("fetch regional withdrawal rows: %w", err)
	}
	defer rows.Close()

	records := make([]domain.RawRecord, 0, 64)
	for rows.Next() {
		var (
			id, userID, status                          string
			userName                                    sql.NullString
			amount                                      int64
			priority                                    int
			bankName, bankAccountNumber, bankHolder     sql.NullString
			residentNumber, notes, reason, refund       sql.NullString
			sourceEntryID                               sql.NullString
			createdAt                                   time.Time
			processedAt, completedAt                    sql.NullTime
		)

		if err := rows.Scan(
			&id,
			&userID,
			&userName,
			&amount,
			&bankName,
			&bankAccountNumber,
			&bankHolder,
			&residentNumber,
			&status,
			&priority,
			&notes,
			&reason,
			&refund,
			&sourceEntryID,
			&createdAt,
			&processedAt,
			&completedAt,
		); err != nil {
			logger.Error("regional adapter scan failed", err, nil)
			return nil, fmt.Errorf("scan regional withdrawal row: %w", err)
		}

		payload := domain.RegionalWithdrawalRow{
			ID:                         id,
			UserID:                     userID,
			UserName:                   userName.String,
			Amount:                     amount,
			BankName:                   bankName.String,
			BankAccountNumber:          bankAccountNumber.String,
			BankAccountHolder:          bankHolder.String,
			ResidentRegistrationNumber: residentNumber.String,
			Status:                     status,
			Priority:                   priority,
			AdminNotes:                 notes.String,
			RejectionReason:            reason.String,
			RefundLedgerEntryID:        refund.String,
			SourceEntryID:              sourceEntryID.String,
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
			ID:       payload.ID,
			Source:   domain.SourceRegionalWithdrawalStore,
			Regional: &payload,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate regional withdrawal rows: %w", err)
	}

	logger.Info("regional adapter fetch success", logger.Fields{
		"count": len(records),
	})

	return records, nil
}

func (a *RegionalAdapter) WriteBack(ctx context.Context, originID string, patch domain.WriteBackPatch) error {
	logger.Info("regional adapter write back", logger.Fields{
		"originId": originID,
	})

	assignments, args := patchAssignments(patch, 2)
	if len(assignments) == 0 {
		return nil
	}

	query := fmt.Sprintf(
		`UPDATE withdrawals SET %s WHERE id = $1`,
		strings.Join(assignments, ", "),
	)
	queryArgs := append([]any{originID}, args...)
	if patch.ExpectedStatus != nil {
		query += fmt.Sprintf(" AND status = $%d", len(queryArgs)+1)
		queryArgs = append(queryArgs, string(*patch.ExpectedStatus))
	}

	result, err := a.db.ExecContext(ctx, query, queryArgs...)
	if err != nil {
		logger.Error("regional adapter write back failed", err, logger.Fields{
			"originId": originID,
		})
		return fmt.Errorf("write back regional withdrawal row %q: %w", originID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("write back regional withdrawal row %q: %w", originID, err)
	}
	if affected == 0 {
		return resolveWriteBackMiss(ctx, a.db, "withdrawals", originID)
	}

	return nil
}

// InsertPromoted writes a first-class withdrawal record for a legacy
// ledger candidate. source_entry_id carries the origin ledger entry id
// and is unique, so a retried promotion lands on the conflict path and
// returns the already-created record id.
func (a *RegionalAdapter) InsertPromoted(ctx context.Context, req domain.WithdrawalRequest) (string, error) {
	logger.Info("regional adapter insert promoted", logger.Fields{
		"sourceEntryId": req.OriginID,
		"creatorId":     req.CreatorID,
	})

	const query = `
INSERT INTO withdrawals (
	id,
	user_id,
	user_name,
	amount,
	bank_name,
	bank_account_number,
	bank_account_holder,
	resident_registration_number,
	status,
	priority,
	admin_notes,
	source_entry_id,
	created_at,
	processed_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
)
ON CONFLICT (source_entry_id) DO NOTHING
RETURNING id`

	newID := uuid.NewString()

	var id string
	err := a.db.QueryRowContext(
		ctx,
		query,
		newID,
		req.CreatorID,
		req.CreatorName,
		req.RequestedAmount,
		req.Method.BankName,
		req.Method.AccountNumber,
		req.Method.AccountHolder,
		req.Method.ResidentRegistrationNumber,
		string(req.Status),
		req.Priority,
		req.AdminNotes,
		req.OriginID,
		req.CreatedAt,
		req.ProcessedAt,
	).Scan(&id)
	if err == sql.ErrNoRows {
		const existing = `SELECT id FROM withdrawals WHERE source_entry_id = $1`
		if err := a.db.QueryRowContext(ctx, existing, req.OriginID).Scan(&id); err != nil {
			return "", fmt.Errorf("load promoted withdrawal for entry %q: %w", req.OriginID, err)
		}
		return id, nil
	}
	if err != nil {
		logger.Error("regional adapter insert promoted failed", err, logger.Fields{
			"sourceEntryId": req.OriginID,
		})
		return "", fmt.Errorf("insert promoted withdrawal for entry %q: %w", req.OriginID, err)
	}

	logger.Info("regional adapter insert promoted success", logger.Fields{
		"withdrawalId":  id,
		"sourceEntryId": req.OriginID,
	})

	return id, nil
}
