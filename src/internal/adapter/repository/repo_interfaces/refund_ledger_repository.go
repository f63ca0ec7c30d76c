package repo_interfaces

import "context"

// RefundLedgerRepository records refund credits in the point ledger.
// RecordRefund is safe to call twice with the same idempotencyKey: the
// second call returns the entry id created by the first without
// double-crediting.
type RefundLedgerRepository interface {
	RecordRefund(ctx context.Context, creatorID string, amount int64, reason, idempotencyKey string) (string, error)
	BalancesByCreator(ctx context.Context) (map[string]int64, error)
}
