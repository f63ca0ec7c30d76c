package repo_interfaces

import (
	"context"

	"github.com/api-sage/payout-reconciler/src/internal/domain"
)

// PromotionRepository writes a first-class withdrawal record for a
// legacy ledger candidate at approval time. The insert is keyed by the
// origin ledger entry id, so a retried promotion returns the record
// created by the first attempt instead of inserting twice.
type PromotionRepository interface {
	InsertPromoted(ctx context.Context, req domain.WithdrawalRequest) (string, error)
}
