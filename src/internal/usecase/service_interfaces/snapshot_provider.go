package service_interfaces

import "github.com/api-sage/payout-reconciler/src/internal/domain"

// SnapshotProvider exposes the canonical withdrawal set built by the
// latest reconciliation pass.
type SnapshotProvider interface {
	Snapshot() domain.Snapshot
	Find(id string) (domain.WithdrawalRequest, bool)
	Replace(oldID string, req domain.WithdrawalRequest) bool
}
