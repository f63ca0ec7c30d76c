package repo_interfaces

import (
	"context"

	"github.com/api-sage/payout-reconciler/src/internal/domain"
)

// IntakeRepository reads the profile-intake table, the only place the
// encrypted resident registration number is captured at
// profile-submission time.
type IntakeRepository interface {
	EncryptedResidentNumbers(ctx context.Context) (map[domain.AccountIdentity]string, error)
	CachedBalances(ctx context.Context) (map[string]int64, error)
}
