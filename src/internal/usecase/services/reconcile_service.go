package services

import (
	"context"
	"sync"
	"time"

	"github.com/api-sage/payout-reconciler/src/internal/adapter/http/models"
	"github.com/api-sage/payout-reconciler/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/payout-reconciler/src/internal/commons"
	"github.com/api-sage/payout-reconciler/src/internal/domain"
	"github.com/api-sage/payout-reconciler/src/internal/logger"
	"github.com/api-sage/payout-reconciler/src/internal/usecase/service_interfaces"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Verify that ReconcileService implements the service_interfaces.SnapshotProvider interface
var _ service_interfaces.SnapshotProvider = (*ReconcileService)(nil)

// ReconcileService runs one reconciliation pass: fetch every source
// concurrently, normalize, deduplicate, enrich, and hold the resulting
// canonical set as the current snapshot. A failing source is skipped
// for the pass; the remaining sources still produce a usable, partial
// snapshot.
type ReconcileService struct {
	adapters   []repo_interfaces.SourceAdapter
	normalizer *Normalizer
	dedup      *DedupService
	enricher   *EnrichService

	mu       sync.RWMutex
	snapshot domain.Snapshot
	index    map[string]int
}

func NewReconcileService(
	adapters []repo_interfaces.SourceAdapter,
	normalizer *Normalizer,
	dedup *DedupService,
	enricher *EnrichService,
) *ReconcileService {
	return &ReconcileService{
		adapters:   adapters,
		normalizer: normalizer,
		dedup:      dedup,
		enricher:   enricher,
		index:      map[string]int{},
	}
}

func (s *ReconcileService) Run(ctx context.Context) (commons.Response[models.ReconcileSummary], error) {
	passID := uuid.NewString()
	started := time.Now().UTC()

	logger.Info("reconcile service pass started", logger.Fields{
		"passId":  passID,
		"sources": len(s.adapters),
	})

	var fetchMu sync.Mutex
	raw := make([]domain.RawRecord, 0, 128)
	counts := make(map[domain.SourceSystem]int, len(s.adapters))
	failures := make([]domain.SourceSystem, 0)

	g, groupCtx := errgroup.WithContext(ctx)
	for _, adapter := range s.adapters {
		adapter := adapter
		g.Go(func() error {
			records, err := adapter.Fetch(groupCtx)

			fetchMu.Lock()
			defer fetchMu.Unlock()
			if err != nil {
				// Degraded completeness, not a failed pass.
				logger.Error("reconcile service source fetch failed", err, logger.Fields{
					"passId": passID,
					"source": string(adapter.Source()),
				})
				failures = append(failures, adapter.Source())
				return nil
			}
			counts[adapter.Source()] = len(records)
			raw = append(raw, records...)
			return nil
		})
	}
	_ = g.Wait()

	normalized := s.normalizer.Normalize(raw)
	deduped := s.dedup.Deduplicate(normalized)
	enriched := s.enricher.Enrich(ctx, deduped.Requests)

	snapshot := domain.Snapshot{
		PassID:              passID,
		TakenAt:             started,
		Requests:            deduped.Requests,
		SourceCounts:        counts,
		SourceFailures:      failures,
		DiscardedMigrated:   deduped.DiscardedMigrated,
		CollapsedDuplicates: deduped.CollapsedDuplicates,
		PromotedCandidates:  deduped.PromotedCandidates,
		EnrichedRecords:     enriched,
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.index = make(map[string]int, len(snapshot.Requests))
	for i, req := range snapshot.Requests {
		s.index[req.ID] = i
	}
	s.mu.Unlock()

	summary := models.NewReconcileSummary(snapshot, time.Since(started))

	logger.Info("reconcile service pass complete", logger.Fields{
		"passId":              passID,
		"records":             len(snapshot.Requests),
		"sourceFailures":      len(failures),
		"collapsedDuplicates": snapshot.CollapsedDuplicates,
		"promotedCandidates":  snapshot.PromotedCandidates,
		"durationMs":          time.Since(started).Milliseconds(),
	})

	return commons.SuccessResponse("reconciliation pass complete", summary), nil
}

// Snapshot returns a copy of the current canonical set.
func (s *ReconcileService) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := s.snapshot
	copied.Requests = make([]domain.WithdrawalRequest, len(s.snapshot.Requests))
	copy(copied.Requests, s.snapshot.Requests)
	return copied
}

func (s *ReconcileService) Find(id string) (domain.WithdrawalRequest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.index[id]
	if !ok {
		return domain.WithdrawalRequest{}, false
	}
	return s.snapshot.Requests[idx], true
}

// Replace swaps an entry after an operator action so aggregates and
// exports reflect it without waiting for the next pass. The entry is
// matched by its prior public id, which a legacy promotion replaces
// with the id of the newly created store record.
func (s *ReconcileService) Replace(oldID string, req domain.WithdrawalRequest) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.index[oldID]
	if !ok {
		return false
	}

	s.snapshot.Requests[idx] = req
	if oldID != req.ID {
		delete(s.index, oldID)
	}
	s.index[req.ID] = idx
	return true
}
