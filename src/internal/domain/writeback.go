package domain

import "time"

// WriteBackPatch is the set of fields an operator action may write
// back to an origin store. Nil fields are left untouched.
//
// ExpectedStatus, when set, is enforced at write time: the update
// applies only if the origin record still holds that status, which
// serializes concurrent operator actions on the same request.
type WriteBackPatch struct {
	ExpectedStatus *WithdrawalStatus

	Status              *WithdrawalStatus
	Priority            *int
	AdminNotes          *string
	RejectionReason     *string
	RefundLedgerEntryID *string
	ProcessedMarker     *string
	ProcessedAt         *time.Time
	CompletedAt         *time.Time
}
