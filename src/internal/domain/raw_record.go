package domain

import "time"

// CanonicalPayoutRow is the raw shape of the cross-region payout store
// (creator_withdrawal_requests).
type CanonicalPayoutRow struct {
	ID                         string
	CreatorID                  string
	CreatorName                string
	Region                     string
	RequestedPoints            int64
	BankName                   string
	AccountNumber              string
	AccountHolder              string
	ResidentRegistrationNumber string
	PaypalEmail                string
	Status                     string
	Priority                   int
	AdminNotes                 string
	RejectionReason            string
	RefundLedgerEntryID        string
	CreatedAt                  time.Time
	ProcessedAt                *time.Time
	CompletedAt                *time.Time
}

// RegionalWithdrawalRow is the raw shape of the region-specific
// withdrawal store (withdrawals). Field names differ from the
// canonical store; the region is implied by the store itself.
type RegionalWithdrawalRow struct {
	ID                         string
	UserID                     string
	UserName                   string
	Amount                     int64
	BankName                   string
	BankAccountNumber          string
	BankAccountHolder          string
	ResidentRegistrationNumber string
	Status                     string
	Priority                   int
	AdminNotes                 string
	RejectionReason            string
	RefundLedgerEntryID        string
	SourceEntryID              string
	CreatedAt                  time.Time
	ProcessedAt                *time.Time
	CompletedAt                *time.Time
}

// LedgerEntryRow is the raw shape of a legacy point ledger entry
// (point_history). Withdrawals exist there only as debit entries with
// a free-text description.
type LedgerEntryRow struct {
	ID          string
	CreatorID   string
	CreatorName string
	// Amount is negative for debits.
	Amount      int64
	Description string
	// ProcessedMarker carries the id of the withdrawal request this
	// entry was promoted into, empty if never promoted.
	ProcessedMarker string
	CreatedAt       time.Time
}

// RawRecord is one record fetched from a source adapter, tagged with
// its provenance. Exactly one of the payload pointers is set,
// matching Source.
type RawRecord struct {
	ID     string
	Source SourceSystem

	Canonical *CanonicalPayoutRow
	Regional  *RegionalWithdrawalRow
	Ledger    *LedgerEntryRow
}
