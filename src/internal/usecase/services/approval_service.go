package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/api-sage/payout-reconciler/src/internal/adapter/http/models"
	"github.com/api-sage/payout-reconciler/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/payout-reconciler/src/internal/commons"
	"github.com/api-sage/payout-reconciler/src/internal/domain"
	"github.com/api-sage/payout-reconciler/src/internal/logger"
	"github.com/api-sage/payout-reconciler/src/internal/usecase/service_interfaces"
)

// ApprovalService drives the request state machine. Every transition
// checks its precondition against the origin store at write time, so
// two operators acting on the same request cannot both win.
type ApprovalService struct {
	provider     service_interfaces.SnapshotProvider
	adapters     map[domain.SourceSystem]repo_interfaces.SourceAdapter
	promotions   repo_interfaces.PromotionRepository
	refundLedger repo_interfaces.RefundLedgerRepository
	notifier     service_interfaces.NotificationService
}

func NewApprovalService(
	provider service_interfaces.SnapshotProvider,
	adapters map[domain.SourceSystem]repo_interfaces.SourceAdapter,
	promotions repo_interfaces.PromotionRepository,
	refundLedger repo_interfaces.RefundLedgerRepository,
	notifier service_interfaces.NotificationService,
) *ApprovalService {
	return &ApprovalService{
		provider:     provider,
		adapters:     adapters,
		promotions:   promotions,
		refundLedger: refundLedger,
		notifier:     notifier,
	}
}

func (s *ApprovalService) Approve(ctx context.Context, request models.ApproveWithdrawalRequest) (commons.Response[models.WithdrawalResponse], error) {
	logger.Info("approval service approve request received", logger.Fields{
		"requestId": request.RequestID,
		"priority":  request.Priority,
	})

	if err := request.Validate(); err != nil {
		logger.Error("approval service approve validation failed", err, logger.Fields{
			"requestId": request.RequestID,
		})
		return commons.ErrorResponse[models.WithdrawalResponse]("Invalid approve request", err.Error()), err
	}

	req, ok := s.provider.Find(request.RequestID)
	if !ok {
		err := domain.ErrRecordNotFound
		logger.Error("approval service approve target missing", err, logger.Fields{
			"requestId": request.RequestID,
		})
		return commons.ErrorResponse[models.WithdrawalResponse]("Withdrawal request not found", err.Error()), err
	}

	if req.Status != domain.StatusPending {
		err := domain.ErrStatusConflict
		logger.Error("approval service approve precondition failed", err, logger.Fields{
			"requestId": request.RequestID,
			"status":    string(req.Status),
		})
		message := "Only pending requests can be approved"
		if req.Terminal() {
			message = "Withdrawal request is already finalized"
		}
		return commons.ErrorResponse[models.WithdrawalResponse](message, err.Error()), err
	}

	now := time.Now().UTC()

	if req.Source == domain.SourceLegacyLedger {
		return s.approveLegacyCandidate(ctx, req, request, now)
	}

	adapter, ok := s.adapters[req.Source]
	if !ok {
		err := fmt.Errorf("no adapter registered for source %s", req.Source)
		logger.Error("approval service approve adapter missing", err, logger.Fields{
			"requestId": request.RequestID,
			"source":    string(req.Source),
		})
		return commons.ErrorResponse[models.WithdrawalResponse]("Source unavailable", err.Error()), err
	}

	expected := domain.StatusPending
	approved := domain.StatusApproved
	patch := domain.WriteBackPatch{
		ExpectedStatus: &expected,
		Status:         &approved,
		Priority:       &request.Priority,
		ProcessedAt:    &now,
	}
	if notes := strings.TrimSpace(request.AdminNotes); notes != "" {
		patch.AdminNotes = &notes
	}

	if err := adapter.WriteBack(ctx, req.OriginID, patch); err != nil {
		logger.Error("approval service approve write-back failed", err, logger.Fields{
			"requestId": request.RequestID,
			"source":    string(req.Source),
		})
		if errors.Is(err, domain.ErrStatusConflict) {
			return commons.ErrorResponse[models.WithdrawalResponse]("Request was changed by another operator", err.Error()), err
		}
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.WithdrawalResponse]("Withdrawal request not found", err.Error()), err
		}
		return commons.ErrorResponse[models.WithdrawalResponse]("Failed to approve withdrawal request", err.Error()), err
	}

	req.Status = domain.StatusApproved
	req.Priority = request.Priority
	if notes := strings.TrimSpace(request.AdminNotes); notes != "" {
		req.AdminNotes = notes
	}
	req.ProcessedAt = &now
	s.provider.Replace(request.RequestID, req)

	logger.Info("approval service approve success", logger.Fields{
		"requestId": request.RequestID,
		"source":    string(req.Source),
	})

	return commons.SuccessResponse("Withdrawal request approved", models.NewWithdrawalResponse(req)), nil
}

// approveLegacyCandidate promotes a ledger-only candidate into a
// first-class regional record, then marks the origin ledger entry so
// later passes discard it. The insert is keyed by the ledger entry id;
// if the marker write is interrupted, the heuristic matcher collapses
// the pair on the next pass, so the window is detectable and recovers
// on its own.
func (s *ApprovalService) approveLegacyCandidate(ctx context.Context, req domain.WithdrawalRequest, request models.ApproveWithdrawalRequest, now time.Time) (commons.Response[models.WithdrawalResponse], error) {
	oldID := req.ID

	promoted := req
	promoted.Status = domain.StatusApproved
	promoted.Priority = request.Priority
	if notes := strings.TrimSpace(request.AdminNotes); notes != "" {
		promoted.AdminNotes = notes
	}
	promoted.ProcessedAt = &now

	newID, err := s.promotions.InsertPromoted(ctx, promoted)
	if err != nil {
		logger.Error("approval service legacy promotion failed", err, logger.Fields{
			"requestId":     request.RequestID,
			"ledgerEntryId": req.OriginID,
		})
		return commons.ErrorResponse[models.WithdrawalResponse]("Failed to promote legacy withdrawal", err.Error()), err
	}

	message := "Legacy withdrawal promoted and approved"

	ledger, ok := s.adapters[domain.SourceLegacyLedger]
	if ok {
		marker := newID
		markerPatch := domain.WriteBackPatch{ProcessedMarker: &marker}
		if err := ledger.WriteBack(ctx, req.OriginID, markerPatch); err != nil {
			// Promotion stands; next pass collapses the unmarked entry.
			logger.Error("approval service origin marker write failed", err, logger.Fields{
				"requestId":     request.RequestID,
				"ledgerEntryId": req.OriginID,
				"promotedId":    newID,
			})
			message = "Legacy withdrawal promoted; origin marker pending next reconciliation"
		}
	}

	promoted.ID = newID
	promoted.Source = domain.SourceRegionalWithdrawalStore
	promoted.OriginProcessedMarker = req.OriginID
	promoted.OriginID = newID
	s.provider.Replace(oldID, promoted)

	logger.Info("approval service legacy promotion success", logger.Fields{
		"requestId":     request.RequestID,
		"promotedId":    newID,
		"ledgerEntryId": req.OriginID,
	})

	return commons.SuccessResponse(message, models.NewWithdrawalResponse(promoted)), nil
}

func (s *ApprovalService) Reject(ctx context.Context, request models.RejectWithdrawalRequest) (commons.Response[models.WithdrawalResponse], error) {
	logger.Info("approval service reject request received", logger.Fields{
		"requestId": request.RequestID,
	})

	if err := request.Validate(); err != nil {
		logger.Error("approval service reject validation failed", err, logger.Fields{
			"requestId": request.RequestID,
		})
		return commons.ErrorResponse[models.WithdrawalResponse]("Invalid reject request", err.Error()), err
	}

	req, ok := s.provider.Find(request.RequestID)
	if !ok {
		err := domain.ErrRecordNotFound
		logger.Error("approval service reject target missing", err, logger.Fields{
			"requestId": request.RequestID,
		})
		return commons.ErrorResponse[models.WithdrawalResponse]("Withdrawal request not found", err.Error()), err
	}

	if req.Status != domain.StatusPending {
		err := domain.ErrStatusConflict
		logger.Error("approval service reject precondition failed", err, logger.Fields{
			"requestId": request.RequestID,
			"status":    string(req.Status),
		})
		message := "Only pending requests can be rejected"
		if req.Terminal() {
			message = "Withdrawal request is already finalized"
		}
		return commons.ErrorResponse[models.WithdrawalResponse](message, err.Error()), err
	}

	now := time.Now().UTC()
	reason := strings.TrimSpace(request.Reason)

	if req.Source != domain.SourceLegacyLedger {
		adapter, ok := s.adapters[req.Source]
		if !ok {
			err := fmt.Errorf("no adapter registered for source %s", req.Source)
			logger.Error("approval service reject adapter missing", err, logger.Fields{
				"requestId": request.RequestID,
				"source":    string(req.Source),
			})
			return commons.ErrorResponse[models.WithdrawalResponse]("Source unavailable", err.Error()), err
		}

		expected := domain.StatusPending
		rejected := domain.StatusRejected
		patch := domain.WriteBackPatch{
			ExpectedStatus:  &expected,
			Status:          &rejected,
			RejectionReason: &reason,
			ProcessedAt:     &now,
		}
		if err := adapter.WriteBack(ctx, req.OriginID, patch); err != nil {
			logger.Error("approval service reject write-back failed", err, logger.Fields{
				"requestId": request.RequestID,
				"source":    string(req.Source),
			})
			if errors.Is(err, domain.ErrStatusConflict) {
				return commons.ErrorResponse[models.WithdrawalResponse]("Request was changed by another operator", err.Error()), err
			}
			if errors.Is(err, domain.ErrRecordNotFound) {
				return commons.ErrorResponse[models.WithdrawalResponse]("Withdrawal request not found", err.Error()), err
			}
			return commons.ErrorResponse[models.WithdrawalResponse]("Failed to reject withdrawal request", err.Error()), err
		}
	}

	req.Status = domain.StatusRejected
	req.RejectionReason = reason
	req.ProcessedAt = &now

	message := "Withdrawal request rejected and points refunded"
	refundID, refundErr := s.refundIfNeeded(ctx, &req, reason)
	if refundErr != nil {
		// The rejection stands. The refund carries its idempotency key,
		// so a later manual retry cannot double-credit.
		logger.Error("approval service refund failed", refundErr, logger.Fields{
			"requestId": request.RequestID,
			"creatorId": req.CreatorID,
		})
		message = "Withdrawal request rejected; refund requires manual reconciliation"
	} else if refundID != "" {
		s.writeRefundReference(ctx, &req, refundID)
	}

	if req.Source == domain.SourceLegacyLedger {
		s.markRejectedLedgerEntry(ctx, req)
	}

	s.provider.Replace(request.RequestID, req)
	s.sendRejectionNotice(ctx, req, reason)

	logger.Info("approval service reject success", logger.Fields{
		"requestId":     request.RequestID,
		"refundEntryId": req.RefundLedgerEntryID,
	})

	return commons.SuccessResponse(message, models.NewWithdrawalResponse(req)), nil
}

// refundIfNeeded credits the withheld points back unless a refund
// entry already exists for this request.
func (s *ApprovalService) refundIfNeeded(ctx context.Context, req *domain.WithdrawalRequest, reason string) (string, error) {
	if req.RefundLedgerEntryID != "" {
		return "", nil
	}

	key := fmt.Sprintf("withdrawal-refund-%s-%s", strings.ToLower(string(req.Source)), req.OriginID)
	entryID, err := s.refundLedger.RecordRefund(ctx, req.CreatorID, req.RequestedAmount, reason, key)
	if err != nil {
		return "", err
	}

	req.RefundLedgerEntryID = entryID
	return entryID, nil
}

// writeRefundReference records the refund entry id on the origin
// record so a later pass sees the refund as already issued.
func (s *ApprovalService) writeRefundReference(ctx context.Context, req *domain.WithdrawalRequest, refundID string) {
	adapter, ok := s.adapters[req.Source]
	if !ok || req.Source == domain.SourceLegacyLedger {
		return
	}

	expected := domain.StatusRejected
	patch := domain.WriteBackPatch{
		ExpectedStatus:      &expected,
		RefundLedgerEntryID: &refundID,
	}
	if err := adapter.WriteBack(ctx, req.OriginID, patch); err != nil {
		logger.Error("approval service refund reference write failed", err, logger.Fields{
			"requestId":     req.ID,
			"refundEntryId": refundID,
		})
	}
}

// markRejectedLedgerEntry stamps a rejected ledger-only candidate so
// later passes stop surfacing it as pending.
func (s *ApprovalService) markRejectedLedgerEntry(ctx context.Context, req domain.WithdrawalRequest) {
	ledger, ok := s.adapters[domain.SourceLegacyLedger]
	if !ok {
		return
	}

	marker := "rejected-" + req.ID
	patch := domain.WriteBackPatch{ProcessedMarker: &marker}
	if err := ledger.WriteBack(ctx, req.OriginID, patch); err != nil {
		logger.Error("approval service rejected marker write failed", err, logger.Fields{
			"requestId":     req.ID,
			"ledgerEntryId": req.OriginID,
		})
	}
}

func (s *ApprovalService) sendRejectionNotice(ctx context.Context, req domain.WithdrawalRequest, reason string) {
	if s.notifier == nil {
		return
	}

	contact := req.Method.WalletEmail
	if contact == "" {
		contact = req.CreatorID
	}
	if err := s.notifier.SendRejectionNotice(ctx, contact, req.CreatorName, reason); err != nil {
		logger.Error("approval service rejection notice failed", err, logger.Fields{
			"requestId": req.ID,
			"creatorId": req.CreatorID,
		})
	}
}

func (s *ApprovalService) Complete(ctx context.Context, request models.CompleteWithdrawalRequest) (commons.Response[models.WithdrawalResponse], error) {
	logger.Info("approval service complete request received", logger.Fields{
		"requestId": request.RequestID,
	})

	if err := request.Validate(); err != nil {
		logger.Error("approval service complete validation failed", err, logger.Fields{
			"requestId": request.RequestID,
		})
		return commons.ErrorResponse[models.WithdrawalResponse]("Invalid complete request", err.Error()), err
	}

	req, ok := s.provider.Find(request.RequestID)
	if !ok {
		err := domain.ErrRecordNotFound
		logger.Error("approval service complete target missing", err, logger.Fields{
			"requestId": request.RequestID,
		})
		return commons.ErrorResponse[models.WithdrawalResponse]("Withdrawal request not found", err.Error()), err
	}

	if req.Status != domain.StatusApproved {
		err := domain.ErrStatusConflict
		logger.Error("approval service complete precondition failed", err, logger.Fields{
			"requestId": request.RequestID,
			"status":    string(req.Status),
		})
		return commons.ErrorResponse[models.WithdrawalResponse]("Only approved requests can be completed", err.Error()), err
	}

	adapter, ok := s.adapters[req.Source]
	if !ok {
		err := fmt.Errorf("no adapter registered for source %s", req.Source)
		logger.Error("approval service complete adapter missing", err, logger.Fields{
			"requestId": request.RequestID,
			"source":    string(req.Source),
		})
		return commons.ErrorResponse[models.WithdrawalResponse]("Source unavailable", err.Error()), err
	}

	now := time.Now().UTC()
	expected := domain.StatusApproved
	completed := domain.StatusCompleted
	patch := domain.WriteBackPatch{
		ExpectedStatus: &expected,
		Status:         &completed,
		CompletedAt:    &now,
	}
	if err := adapter.WriteBack(ctx, req.OriginID, patch); err != nil {
		logger.Error("approval service complete write-back failed", err, logger.Fields{
			"requestId": request.RequestID,
			"source":    string(req.Source),
		})
		if errors.Is(err, domain.ErrStatusConflict) {
			return commons.ErrorResponse[models.WithdrawalResponse]("Request was changed by another operator", err.Error()), err
		}
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.WithdrawalResponse]("Withdrawal request not found", err.Error()), err
		}
		return commons.ErrorResponse[models.WithdrawalResponse]("Failed to complete withdrawal request", err.Error()), err
	}

	req.Status = domain.StatusCompleted
	req.CompletedAt = &now
	s.provider.Replace(request.RequestID, req)

	logger.Info("approval service complete success", logger.Fields{
		"requestId": request.RequestID,
		"source":    string(req.Source),
	})

	return commons.SuccessResponse("Withdrawal request completed", models.NewWithdrawalResponse(req)), nil
}
