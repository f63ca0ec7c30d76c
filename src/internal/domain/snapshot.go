package domain

import "time"

// Snapshot is the canonical withdrawal set produced by one
// reconciliation pass. Aggregation and export read from it; operator
// actions replace individual entries in place so reads stay current
// between passes.
type Snapshot struct {
	PassID   string
	TakenAt  time.Time
	Requests []WithdrawalRequest

	SourceCounts   map[SourceSystem]int
	SourceFailures []SourceSystem

	DiscardedMigrated   int
	CollapsedDuplicates int
	PromotedCandidates  int
	EnrichedRecords     int
}
