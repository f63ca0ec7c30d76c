package domain

// TaxBreakdown is the withholding result for one request. For the
// domestic region the two components sum to TaxAmount; everywhere else
// all tax fields are zero and NetAmount is the converted payout.
type TaxBreakdown struct {
	TaxAmount               int64
	IncomeTaxComponent      int64
	ResidentSurtaxComponent int64
	NetAmount               int64
}
