package domain

import "time"

type SourceSystem string

const (
	SourceCanonicalPayoutStore    SourceSystem = "CANONICAL_PAYOUT_STORE"
	SourceRegionalWithdrawalStore SourceSystem = "REGIONAL_WITHDRAWAL_STORE"
	SourceLegacyLedger            SourceSystem = "LEGACY_LEDGER"
)

type Region string

const (
	RegionKorea Region = "korea"
	RegionJapan Region = "japan"
	RegionUS    Region = "us"
)

// RegionKorea is the only region where points and currency are 1:1 and
// withholding tax applies.
func (r Region) Domestic() bool {
	return r == RegionKorea
}

type WithdrawalStatus string

const (
	StatusPending   WithdrawalStatus = "pending"
	StatusApproved  WithdrawalStatus = "approved"
	StatusCompleted WithdrawalStatus = "completed"
	StatusRejected  WithdrawalStatus = "rejected"
)

type PayoutMethodType string

const (
	PayoutBankTransfer   PayoutMethodType = "bank_transfer"
	PayoutExternalWallet PayoutMethodType = "external_wallet"
)

type PayoutMethod struct {
	Type          PayoutMethodType
	BankName      string
	AccountNumber string
	AccountHolder string
	// ResidentRegistrationNumber is always ciphertext. It is decrypted
	// only in the export path.
	ResidentRegistrationNumber string
	WalletEmail                string
}

// Incomplete reports whether a bank-transfer method is missing the
// fields required for disbursement, e.g. after a failed ledger
// description parse.
func (m PayoutMethod) Incomplete() bool {
	if m.Type != PayoutBankTransfer {
		return false
	}
	return m.BankName == "" || m.AccountNumber == "" || m.AccountHolder == ""
}

type WithdrawalRequest struct {
	ID       string
	Source   SourceSystem
	OriginID string
	Region   Region

	CreatorID   string
	CreatorName string

	RequestedAmount int64
	Method          PayoutMethod

	Status   WithdrawalStatus
	Priority int

	TaxAmount int64
	NetAmount int64

	AdminNotes      string
	RejectionReason string

	// OriginProcessedMarker is the canonical record id written back to
	// the origin ledger entry once it has been promoted.
	OriginProcessedMarker string
	// RefundLedgerEntryID is set exactly once, when the refund for a
	// rejection is recorded. Its presence makes rejection idempotent.
	RefundLedgerEntryID string

	// CollapsedLedgerIDs lists legacy ledger entry ids that were merged
	// into this request by the heuristic dedup key, kept for operator
	// review of false merges.
	CollapsedLedgerIDs []string

	CreatedAt   time.Time
	ProcessedAt *time.Time
	CompletedAt *time.Time
}

func (w WithdrawalRequest) Terminal() bool {
	return w.Status == StatusCompleted || w.Status == StatusRejected
}
