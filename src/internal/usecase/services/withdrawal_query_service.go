package services

import (
	"context"
	"sort"
	"strings"

	"github.com/api-sage/payout-reconciler/src/internal/adapter/http/models"
	"github.com/api-sage/payout-reconciler/src/internal/commons"
	"github.com/api-sage/payout-reconciler/src/internal/logger"
	"github.com/api-sage/payout-reconciler/src/internal/usecase/service_interfaces"
)

// WithdrawalQueryService serves operator list views from the current
// snapshot. Filters compose; an empty filter matches everything.
type WithdrawalQueryService struct {
	provider service_interfaces.SnapshotProvider
}

func NewWithdrawalQueryService(provider service_interfaces.SnapshotProvider) *WithdrawalQueryService {
	return &WithdrawalQueryService{provider: provider}
}

func (s *WithdrawalQueryService) List(_ context.Context, request models.ListWithdrawalsRequest) (commons.Response[[]models.WithdrawalResponse], error) {
	if err := request.Validate(); err != nil {
		logger.Error("withdrawal query service validation failed", err, nil)
		return commons.ErrorResponse[[]models.WithdrawalResponse]("Invalid list filters", err.Error()), err
	}

	status := strings.ToLower(strings.TrimSpace(request.Status))
	region := strings.ToLower(strings.TrimSpace(request.Region))
	month := strings.TrimSpace(request.Month)

	snapshot := s.provider.Snapshot()
	responses := make([]models.WithdrawalResponse, 0, len(snapshot.Requests))
	for _, req := range snapshot.Requests {
		if status != "" && string(req.Status) != status {
			continue
		}
		if region != "" && string(req.Region) != region {
			continue
		}
		if month != "" && req.CreatedAt.UTC().Format("2006-01") != month {
			continue
		}
		responses = append(responses, models.NewWithdrawalResponse(req))
	}

	// High priority first, then newest first, id as tiebreaker.
	sort.Slice(responses, func(i, j int) bool {
		if responses[i].Priority != responses[j].Priority {
			return responses[i].Priority > responses[j].Priority
		}
		if responses[i].CreatedAt != responses[j].CreatedAt {
			return responses[i].CreatedAt > responses[j].CreatedAt
		}
		return responses[i].ID < responses[j].ID
	})

	logger.Info("withdrawal query service list served", logger.Fields{
		"passId":  snapshot.PassID,
		"matched": len(responses),
		"status":  status,
		"region":  region,
	})

	return commons.SuccessResponse("Withdrawal requests retrieved", responses), nil
}
