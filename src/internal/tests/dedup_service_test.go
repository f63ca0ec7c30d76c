package services_test

import (
	"testing"
	"time"

	"github.com/api-sage/payout-reconciler/src/internal/domain"
	"github.com/api-sage/payout-reconciler/src/internal/usecase/services"
)

func pendingRequest(source domain.SourceSystem, id, creatorID string, amount int64, createdAt time.Time) domain.WithdrawalRequest {
	return domain.WithdrawalRequest{
		ID:              id,
		Source:          source,
		OriginID:        id,
		Region:          domain.RegionKorea,
		CreatorID:       creatorID,
		RequestedAmount: amount,
		Status:          domain.StatusPending,
		CreatedAt:       createdAt,
	}
}

func TestDedupDiscardsMigratedLedgerEntries(t *testing.T) {
	svc := services.NewDedupService()
	day := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	migrated := pendingRequest(domain.SourceLegacyLedger, "entry-1", "creator-1", 10000, day)
	migrated.OriginProcessedMarker = "w-99"

	result := svc.Deduplicate([]domain.WithdrawalRequest{migrated})
	if len(result.Requests) != 0 {
		t.Fatalf("expected migrated entry to be discarded, got %d requests", len(result.Requests))
	}
	if result.DiscardedMigrated != 1 {
		t.Fatalf("expected 1 discarded migrated entry, got %d", result.DiscardedMigrated)
	}
}

func TestDedupCollapsesHeuristicMatchIntoStoreRecord(t *testing.T) {
	svc := services.NewDedupService()
	day := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	store := pendingRequest(domain.SourceRegionalWithdrawalStore, "w-1", "creator-1", 10000, day)
	// Same creator, amount and calendar day, different clock time.
	ledger := pendingRequest(domain.SourceLegacyLedger, "entry-1", "creator-1", 10000, day.Add(3*time.Hour))

	result := svc.Deduplicate([]domain.WithdrawalRequest{store, ledger})
	if len(result.Requests) != 1 {
		t.Fatalf("expected 1 surviving request, got %d", len(result.Requests))
	}
	if result.CollapsedDuplicates != 1 {
		t.Fatalf("expected 1 collapsed duplicate, got %d", result.CollapsedDuplicates)
	}

	survivor := result.Requests[0]
	if survivor.ID != "w-1" {
		t.Fatalf("expected store record to survive, got %s", survivor.ID)
	}
	if len(survivor.CollapsedLedgerIDs) != 1 || survivor.CollapsedLedgerIDs[0] != "entry-1" {
		t.Fatalf("expected collapsed ledger id entry-1, got %v", survivor.CollapsedLedgerIDs)
	}
}

func TestDedupKeepsUnmatchedLedgerEntryAsCandidate(t *testing.T) {
	svc := services.NewDedupService()
	day := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	store := pendingRequest(domain.SourceRegionalWithdrawalStore, "w-1", "creator-1", 10000, day)
	// Different amount, so no heuristic match.
	ledger := pendingRequest(domain.SourceLegacyLedger, "entry-2", "creator-1", 7000, day)

	result := svc.Deduplicate([]domain.WithdrawalRequest{store, ledger})
	if len(result.Requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(result.Requests))
	}
	if result.PromotedCandidates != 1 {
		t.Fatalf("expected 1 promotion candidate, got %d", result.PromotedCandidates)
	}
}

func TestDedupDropsIdentityDuplicates(t *testing.T) {
	svc := services.NewDedupService()
	day := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	store := pendingRequest(domain.SourceCanonicalPayoutStore, "c-1", "creator-1", 10000, day)

	result := svc.Deduplicate([]domain.WithdrawalRequest{store, store})
	if len(result.Requests) != 1 {
		t.Fatalf("expected identity duplicate to be dropped, got %d requests", len(result.Requests))
	}
}

func TestDedupIsIdempotent(t *testing.T) {
	svc := services.NewDedupService()
	day := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	inputs := []domain.WithdrawalRequest{
		pendingRequest(domain.SourceRegionalWithdrawalStore, "w-1", "creator-1", 10000, day),
		pendingRequest(domain.SourceLegacyLedger, "entry-1", "creator-1", 10000, day),
		pendingRequest(domain.SourceLegacyLedger, "entry-2", "creator-2", 5000, day),
	}

	first := svc.Deduplicate(inputs)
	second := svc.Deduplicate(first.Requests)

	if len(second.Requests) != len(first.Requests) {
		t.Fatalf("expected stable request count, got %d then %d", len(first.Requests), len(second.Requests))
	}
	if second.CollapsedDuplicates != 0 || second.DiscardedMigrated != 0 {
		t.Fatalf("expected no further collapses on second run, got %+v", second)
	}
}
