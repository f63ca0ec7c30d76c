package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/api-sage/payout-reconciler/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/payout-reconciler/src/internal/domain"
	"github.com/api-sage/payout-reconciler/src/internal/logger"
)

// Verify that LedgerAdapter implements the SourceAdapter contract
var _ repo_interfaces.SourceAdapter = (*LedgerAdapter)(nil)

// LedgerAdapter reads the legacy point ledger (point_history).
// Withdrawals there are debit entries carrying a free-text
// "[WITHDRAWAL]" description; the fixed fetch rule selects exactly
// those, parsing is the normalizer's job.
type LedgerAdapter struct {
	db *sql.DB
}

func NewLedgerAdapter(db *sql.DB) *LedgerAdapter {
	return &LedgerAdapter{db: db}
}

func (a *LedgerAdapter) Source() domain.SourceSystem {
	return domain.SourceLegacyLedger
}

func (a *LedgerAdapter) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	logger.Info("ledger adapter fetch", nil)

	const query = `
SELECT
	id,
	creator_id,
	creator_name,
	amount,
	description,
	processed_marker,
	created_at
FROM point_history
WHERE amount < 0
  AND description LIKE '[WITHDRAWAL]%'
ORDER BY created_at`

	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("ledger adapter fetch failed", err, nil)
		return nil, fmt.Errorf("fetch ledger withdrawal entries: %w", err)
	}
	defer rows.Close()

	records := make([]domain.RawRecord, 0, 64)
	for rows.Next() {
		var (
			id, creatorID            string
			creatorName, description sql.NullString
			processedMarker          sql.NullString
			amount                   int64
			createdAt                time.Time
		)

		if err := rows.Scan(
			&id,
			&creatorID,
			&creatorName,
			&amount,
			&description,
			&processedMarker,
			&createdAt,
		); err != nil {
			logger.Error("ledger adapter scan failed", err, nil)
			return nil, fmt.Errorf("scan ledger withdrawal entry: %w", err)
		}

		payload := domain.LedgerEntryRow{
			ID:              id,
			CreatorID:       creatorID,
			CreatorName:     creatorName.String,
			Amount:          amount,
			Description:     description.String,
			ProcessedMarker: processedMarker.String,
			CreatedAt:       createdAt,
		}

		records = append(records, domain.RawRecord{
			ID:     payload.ID,
			Source: domain.SourceLegacyLedger,
			Ledger: &payload,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger withdrawal entries: %w", err)
	}

	logger.Info("ledger adapter fetch success", logger.Fields{
		"count": len(records),
	})

	return records, nil
}

// WriteBack on the ledger supports only the processed marker; the
// ledger is append-only for every other purpose.
func (a *LedgerAdapter) WriteBack(ctx context.Context, originID string, patch domain.WriteBackPatch) error {
	if patch.ProcessedMarker == nil {
		return nil
	}

	logger.Info("ledger adapter write back", logger.Fields{
		"originId":        originID,
		"processedMarker": *patch.ProcessedMarker,
	})

	const query = `UPDATE point_history SET processed_marker = $2 WHERE id = $1`

	result, err := a.db.ExecContext(ctx, query, originID, *patch.ProcessedMarker)
	if err != nil {
		logger.Error("ledger adapter write back failed", err, logger.Fields{
			"originId": originID,
		})
		return fmt.Errorf("mark ledger entry %q processed: %w", originID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark ledger entry %q processed: %w", originID, err)
	}
	if affected == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}
