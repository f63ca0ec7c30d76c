package services

import (
	"context"
	"time"

	"github.com/api-sage/payout-reconciler/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/payout-reconciler/src/internal/domain"
	"github.com/api-sage/payout-reconciler/src/internal/logger"
)

const enrichTimeout = 5 * time.Second

// EnrichService backfills the encrypted resident registration number
// for requests that lack it, by matching bank account identity against
// the profile-intake table. Best-effort: an unmatched request proceeds
// with the field empty and is surfaced to operators as unregistered.
type EnrichService struct {
	intakeRepo repo_interfaces.IntakeRepository
}

func NewEnrichService(intakeRepo repo_interfaces.IntakeRepository) *EnrichService {
	return &EnrichService{intakeRepo: intakeRepo}
}

// Enrich returns the number of requests it filled in. A lookup failure
// degrades to zero enrichment, never a failed pass.
func (s *EnrichService) Enrich(ctx context.Context, requests []domain.WithdrawalRequest) int {
	ctx, cancel := context.WithTimeout(ctx, enrichTimeout)
	defer cancel()

	lookup, err := s.intakeRepo.EncryptedResidentNumbers(ctx)
	if err != nil {
		logger.Error("enrich service intake lookup failed", err, nil)
		return 0
	}
	if len(lookup) == 0 {
		return 0
	}

	enriched := 0
	for i := range requests {
		req := &requests[i]
		if req.Method.Type != domain.PayoutBankTransfer {
			continue
		}
		if req.Method.ResidentRegistrationNumber != "" {
			continue
		}

		identity := domain.NewAccountIdentity(req.Method.AccountHolder, req.Method.AccountNumber)
		if identity.Empty() {
			continue
		}

		if encrypted, ok := lookup[identity]; ok {
			req.Method.ResidentRegistrationNumber = encrypted
			enriched++
		}
	}

	logger.Info("enrich service pass complete", logger.Fields{
		"enriched": enriched,
	})

	return enriched
}
