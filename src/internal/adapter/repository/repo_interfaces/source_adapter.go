package repo_interfaces

import (
	"context"

	"github.com/api-sage/payout-reconciler/src/internal/domain"
)

// SourceAdapter is the contract every origin store implements: fetch
// raw records tagged with provenance, and write operator-action
// patches back to a single origin record. Adapters carry no business
// logic beyond their fixed fetch rule.
type SourceAdapter interface {
	Source() domain.SourceSystem
	Fetch(ctx context.Context) ([]domain.RawRecord, error)
	WriteBack(ctx context.Context, originID string, patch domain.WriteBackPatch) error
}
