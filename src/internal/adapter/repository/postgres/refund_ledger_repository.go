package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/api-sage/payout-reconciler/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/payout-reconciler/src/internal/logger"
	"github.com/google/uuid"
)

// Verify that RefundLedgerRepository implements the ledger contract
var _ repo_interfaces.RefundLedgerRepository = (*RefundLedgerRepository)(nil)

type RefundLedgerRepository struct {
	db *sql.DB
}

func NewRefundLedgerRepository(db *sql.DB) *RefundLedgerRepository {
	return &RefundLedgerRepository{db: db}
}

// RecordRefund credits the requested amount back to the creator's
// point ledger. The unique idempotency key makes a retried call land
// on the conflict path and return the entry created by the first call.
func (r *RefundLedgerRepository) RecordRefund(ctx context.Context, creatorID string, amount int64, reason, idempotencyKey string) (string, error) {
	logger.Info("refund ledger record refund", logger.Fields{
		"creatorId":      creatorID,
		"amount":         amount,
		"idempotencyKey": idempotencyKey,
	})

	const query = `
INSERT INTO point_history (
	id,
	creator_id,
	amount,
	description,
	idempotency_key,
	created_at
) VALUES (
	$1, $2, $3, $4, $5, NOW()
)
ON CONFLICT (idempotency_key) DO NOTHING
RETURNING id`

	var entryID string
	err := r.db.QueryRowContext(
		ctx,
		query,
		uuid.NewString(),
		creatorID,
		amount,
		"[WITHDRAWAL_REFUND] "+reason,
		idempotencyKey,
	).Scan(&entryID)
	if err == sql.ErrNoRows {
		const existing = `SELECT id FROM point_history WHERE idempotency_key = $1`
		if err := r.db.QueryRowContext(ctx, existing, idempotencyKey).Scan(&entryID); err != nil {
			return "", fmt.Errorf("load refund entry for key %q: %w", idempotencyKey, err)
		}
		return entryID, nil
	}
	if err != nil {
		logger.Error("refund ledger record refund failed", err, logger.Fields{
			"creatorId":      creatorID,
			"idempotencyKey": idempotencyKey,
		})
		return "", fmt.Errorf("record refund for creator %q: %w", creatorID, err)
	}

	logger.Info("refund ledger record refund success", logger.Fields{
		"entryId":        entryID,
		"idempotencyKey": idempotencyKey,
	})

	return entryID, nil
}

func (r *RefundLedgerRepository) BalancesByCreator(ctx context.Context) (map[string]int64, error) {
	const query = `SELECT creator_id, COALESCE(SUM(amount), 0) FROM point_history GROUP BY creator_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("refund ledger balances failed", err, nil)
		return nil, fmt.Errorf("sum ledger balances: %w", err)
	}
	defer rows.Close()

	balances := make(map[string]int64)
	for rows.Next() {
		var creatorID string
		var balance int64
		if err := rows.Scan(&creatorID, &balance); err != nil {
			return nil, fmt.Errorf("scan ledger balance: %w", err)
		}
		balances[creatorID] = balance
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger balances: %w", err)
	}

	return balances, nil
}
