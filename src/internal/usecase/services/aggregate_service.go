package services

import (
	"context"
	"sort"
	"time"

	"github.com/api-sage/payout-reconciler/src/internal/adapter/http/models"
	"github.com/api-sage/payout-reconciler/src/internal/commons"
	"github.com/api-sage/payout-reconciler/src/internal/domain"
	"github.com/api-sage/payout-reconciler/src/internal/logger"
	"github.com/api-sage/payout-reconciler/src/internal/usecase/service_interfaces"
)

// AggregateService folds the current snapshot into per-region and
// per-(region, status) totals. TotalRequested excludes rejected
// requests; those points were refunded and are no longer owed.
type AggregateService struct {
	provider service_interfaces.SnapshotProvider
}

func NewAggregateService(provider service_interfaces.SnapshotProvider) *AggregateService {
	return &AggregateService{provider: provider}
}

func (s *AggregateService) Report(_ context.Context) (commons.Response[models.AggregateReport], error) {
	snapshot := s.provider.Snapshot()

	type statusKey struct {
		region domain.Region
		status domain.WithdrawalStatus
	}

	requested := map[domain.Region]int64{}
	completed := map[domain.Region]int64{}
	statusCounts := map[statusKey]int{}
	statusAmounts := map[statusKey]int64{}

	for _, req := range snapshot.Requests {
		key := statusKey{region: req.Region, status: req.Status}
		statusCounts[key]++
		statusAmounts[key] += req.RequestedAmount

		if req.Status != domain.StatusRejected {
			requested[req.Region] += req.RequestedAmount
		}
		if req.Status == domain.StatusCompleted {
			completed[req.Region] += req.RequestedAmount
		}
	}

	regions := make([]domain.Region, 0, len(requested))
	seen := map[domain.Region]bool{}
	for _, req := range snapshot.Requests {
		if !seen[req.Region] {
			seen[req.Region] = true
			regions = append(regions, req.Region)
		}
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i] < regions[j] })

	report := models.AggregateReport{
		PassID:  snapshot.PassID,
		TakenAt: snapshot.TakenAt.UTC().Format(time.RFC3339),
	}
	for _, region := range regions {
		report.Regions = append(report.Regions, models.RegionAggregate{
			Region:         string(region),
			TotalRequested: requested[region],
			TotalCompleted: completed[region],
			Remaining:      requested[region] - completed[region],
		})
	}

	statusKeys := make([]statusKey, 0, len(statusCounts))
	for key := range statusCounts {
		statusKeys = append(statusKeys, key)
	}
	sort.Slice(statusKeys, func(i, j int) bool {
		if statusKeys[i].region != statusKeys[j].region {
			return statusKeys[i].region < statusKeys[j].region
		}
		return statusKeys[i].status < statusKeys[j].status
	})
	for _, key := range statusKeys {
		report.Statuses = append(report.Statuses, models.StatusAggregate{
			Region: string(key.region),
			Status: string(key.status),
			Count:  statusCounts[key],
			Amount: statusAmounts[key],
		})
	}

	logger.Info("aggregate service report built", logger.Fields{
		"passId":  snapshot.PassID,
		"regions": len(report.Regions),
		"rows":    len(report.Statuses),
	})

	return commons.SuccessResponse("Aggregate report built", report), nil
}
