package services

import (
	"fmt"

	"github.com/api-sage/payout-reconciler/src/internal/domain"
	"github.com/api-sage/payout-reconciler/src/internal/logger"
)

type DedupResult struct {
	Requests            []domain.WithdrawalRequest
	DiscardedMigrated   int
	CollapsedDuplicates int
	PromotedCandidates  int
}

// DedupService collapses records that represent the same physical
// withdrawal captured by more than one source.
type DedupService struct{}

func NewDedupService() *DedupService {
	return &DedupService{}
}

// Deduplicate applies three passes: drop legacy entries already
// promoted (origin processed marker set), collapse legacy entries that
// share the heuristic (creator, amount, day) key with a store record,
// and finally drop identity duplicates an adapter may have returned.
//
// The heuristic key is not a real foreign key: two genuine requests
// for the same amount on the same day collapse into one. The survivor
// keeps the collapsed ledger entry ids so operators can review the
// merge instead of the system guessing.
func (s *DedupService) Deduplicate(requests []domain.WithdrawalRequest) DedupResult {
	result := DedupResult{Requests: make([]domain.WithdrawalRequest, 0, len(requests))}

	byKey := make(map[string]int)
	seen := make(map[string]struct{}, len(requests))

	for _, req := range requests {
		if req.Source == domain.SourceLegacyLedger {
			continue
		}

		identity := identityKey(req)
		if _, dup := seen[identity]; dup {
			continue
		}
		seen[identity] = struct{}{}

		byKey[heuristicKey(req)] = len(result.Requests)
		result.Requests = append(result.Requests, req)
	}

	for _, req := range requests {
		if req.Source != domain.SourceLegacyLedger {
			continue
		}

		if req.OriginProcessedMarker != "" {
			result.DiscardedMigrated++
			continue
		}

		identity := identityKey(req)
		if _, dup := seen[identity]; dup {
			continue
		}
		seen[identity] = struct{}{}

		if idx, exists := byKey[heuristicKey(req)]; exists {
			survivor := &result.Requests[idx]
			survivor.CollapsedLedgerIDs = append(survivor.CollapsedLedgerIDs, req.OriginID)
			result.CollapsedDuplicates++
			logger.Info("dedup collapsed legacy entry into store record", logger.Fields{
				"ledgerEntryId": req.OriginID,
				"survivorId":    survivor.ID,
			})
			continue
		}

		// No store record matches: the ledger entry becomes a pending
		// candidate awaiting promotion at approval time.
		req.Status = domain.StatusPending
		result.PromotedCandidates++
		result.Requests = append(result.Requests, req)
	}

	return result
}

// heuristicKey is (creator, amount, calendar day of creation), the
// strongest cross-source link the origin stores offer.
func heuristicKey(req domain.WithdrawalRequest) string {
	return fmt.Sprintf("%s|%d|%s", req.CreatorID, req.RequestedAmount, req.CreatedAt.UTC().Format("2006-01-02"))
}

func identityKey(req domain.WithdrawalRequest) string {
	return string(req.Source) + "|" + req.OriginID
}
