package services

import (
	"context"
	"sort"

	"github.com/api-sage/payout-reconciler/src/internal/adapter/http/models"
	"github.com/api-sage/payout-reconciler/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/payout-reconciler/src/internal/commons"
	"github.com/api-sage/payout-reconciler/src/internal/domain"
	"github.com/api-sage/payout-reconciler/src/internal/logger"
	"github.com/api-sage/payout-reconciler/src/internal/usecase/service_interfaces"
)

// balanceMismatchTolerance absorbs rounding noise between the summed
// ledger and the cached balance column.
const balanceMismatchTolerance = 1

// AuditService cross-checks outstanding withdrawals against the point
// ledger: a creator whose pending and approved requests exceed their
// actual ledger balance is flagged as overdrawn, and a cached balance
// drifting from the summed ledger is flagged as a mismatch.
type AuditService struct {
	provider     service_interfaces.SnapshotProvider
	refundLedger repo_interfaces.RefundLedgerRepository
	intakeRepo   repo_interfaces.IntakeRepository
}

func NewAuditService(
	provider service_interfaces.SnapshotProvider,
	refundLedger repo_interfaces.RefundLedgerRepository,
	intakeRepo repo_interfaces.IntakeRepository,
) *AuditService {
	return &AuditService{
		provider:     provider,
		refundLedger: refundLedger,
		intakeRepo:   intakeRepo,
	}
}

func (s *AuditService) Report(ctx context.Context) (commons.Response[models.AuditReport], error) {
	snapshot := s.provider.Snapshot()

	actual, err := s.refundLedger.BalancesByCreator(ctx)
	if err != nil {
		logger.Error("audit service ledger balance load failed", err, logger.Fields{
			"passId": snapshot.PassID,
		})
		return commons.ErrorResponse[models.AuditReport]("Failed to load ledger balances", err.Error()), err
	}

	cached, err := s.intakeRepo.CachedBalances(ctx)
	if err != nil {
		logger.Error("audit service cached balance load failed", err, logger.Fields{
			"passId": snapshot.PassID,
		})
		return commons.ErrorResponse[models.AuditReport]("Failed to load cached balances", err.Error()), err
	}

	outstanding := map[string]int64{}
	names := map[string]string{}
	for _, req := range snapshot.Requests {
		if req.Status != domain.StatusPending && req.Status != domain.StatusApproved {
			continue
		}
		outstanding[req.CreatorID] += req.RequestedAmount
		names[req.CreatorID] = req.CreatorName
	}

	creatorIDs := make([]string, 0, len(outstanding))
	for creatorID := range outstanding {
		creatorIDs = append(creatorIDs, creatorID)
	}
	sort.Strings(creatorIDs)

	report := models.AuditReport{
		PassID:          snapshot.PassID,
		CheckedCreators: len(creatorIDs),
	}
	for _, creatorID := range creatorIDs {
		actualBalance := actual[creatorID]
		cachedBalance, hasCached := cached[creatorID]

		overdrawn := outstanding[creatorID] > actualBalance
		mismatch := hasCached && absInt64(actualBalance-cachedBalance) > balanceMismatchTolerance
		if !overdrawn && !mismatch {
			continue
		}

		report.Findings = append(report.Findings, models.AuditFinding{
			CreatorID:       creatorID,
			CreatorName:     names[creatorID],
			OutstandingSum:  outstanding[creatorID],
			ActualBalance:   actualBalance,
			CachedBalance:   cachedBalance,
			Overdrawn:       overdrawn,
			BalanceMismatch: mismatch,
		})
	}

	logger.Info("audit service report built", logger.Fields{
		"passId":   snapshot.PassID,
		"checked":  report.CheckedCreators,
		"findings": len(report.Findings),
	})

	return commons.SuccessResponse("Audit report built", report), nil
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
