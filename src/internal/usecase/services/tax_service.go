package services

import (
	"github.com/api-sage/payout-reconciler/src/internal/domain"
	"github.com/api-sage/payout-reconciler/src/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
)

// Verify that TaxService implements the service_interfaces.TaxCalculator interface
var _ service_interfaces.TaxCalculator = (*TaxService)(nil)

// Domestic withholding: 3.3% aggregate, reported as a 3% income-tax
// component plus a 0.3% resident surtax.
var aggregateWithholdingRate = decimal.RequireFromString("0.033")
var incomeTaxRate = decimal.RequireFromString("0.03")

type TaxService struct {
	// rates maps non-domestic regions to their fixed point-to-currency
	// exchange rate. The domestic region is always 1:1.
	rates map[domain.Region]decimal.Decimal
}

func NewTaxService(rates map[domain.Region]decimal.Decimal) *TaxService {
	if rates == nil {
		rates = map[domain.Region]decimal.Decimal{}
	}
	return &TaxService{rates: rates}
}

func (s *TaxService) Compute(region domain.Region, requestedAmount int64) domain.TaxBreakdown {
	if requestedAmount <= 0 {
		return domain.TaxBreakdown{}
	}

	gross := decimal.NewFromInt(requestedAmount)

	if region.Domestic() {
		tax := gross.Mul(aggregateWithholdingRate).Floor().IntPart()
		incomeTax := gross.Mul(incomeTaxRate).Floor().IntPart()
		// The surtax component is the remainder so the two components
		// always sum to the withheld total.
		return domain.TaxBreakdown{
			TaxAmount:               tax,
			IncomeTaxComponent:      incomeTax,
			ResidentSurtaxComponent: tax - incomeTax,
			NetAmount:               requestedAmount - tax,
		}
	}

	rate, ok := s.rates[region]
	if !ok {
		rate = decimal.NewFromInt(1)
	}

	return domain.TaxBreakdown{
		NetAmount: gross.Mul(rate).Floor().IntPart(),
	}
}
