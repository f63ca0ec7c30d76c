package service_interfaces

import "github.com/api-sage/payout-reconciler/src/internal/domain"

// TaxCalculator computes the withholding breakdown for one request.
// Must be deterministic: identical inputs always produce identical
// output, so reports can be reproduced for auditing.
type TaxCalculator interface {
	Compute(region domain.Region, requestedAmount int64) domain.TaxBreakdown
}
