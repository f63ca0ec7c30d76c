package models

import (
	"time"

	"github.com/api-sage/payout-reconciler/src/internal/domain"
)

type ReconcileSummary struct {
	PassID              string         `json:"passId"`
	TakenAt             string         `json:"takenAt"`
	DurationMs          int64          `json:"durationMs"`
	SourceCounts        map[string]int `json:"sourceCounts"`
	SourceFailures      []string       `json:"sourceFailures,omitempty"`
	TotalRecords        int            `json:"totalRecords"`
	DiscardedMigrated   int            `json:"discardedMigrated"`
	CollapsedDuplicates int            `json:"collapsedDuplicates"`
	PromotedCandidates  int            `json:"promotedCandidates"`
	EnrichedRecords     int            `json:"enrichedRecords"`
}

func NewReconcileSummary(snapshot domain.Snapshot, elapsed time.Duration) ReconcileSummary {
	counts := make(map[string]int, len(snapshot.SourceCounts))
	for source, count := range snapshot.SourceCounts {
		counts[string(source)] = count
	}

	var failures []string
	for _, source := range snapshot.SourceFailures {
		failures = append(failures, string(source))
	}

	return ReconcileSummary{
		PassID:              snapshot.PassID,
		TakenAt:             snapshot.TakenAt.UTC().Format(time.RFC3339),
		DurationMs:          elapsed.Milliseconds(),
		SourceCounts:        counts,
		SourceFailures:      failures,
		TotalRecords:        len(snapshot.Requests),
		DiscardedMigrated:   snapshot.DiscardedMigrated,
		CollapsedDuplicates: snapshot.CollapsedDuplicates,
		PromotedCandidates:  snapshot.PromotedCandidates,
		EnrichedRecords:     snapshot.EnrichedRecords,
	}
}
