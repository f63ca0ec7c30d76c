package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/api-sage/payout-reconciler/src/internal/adapter/http/models"
	"github.com/api-sage/payout-reconciler/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/payout-reconciler/src/internal/domain"
	"github.com/api-sage/payout-reconciler/src/internal/usecase/services"
)

func approvalFixture(req domain.WithdrawalRequest, adapters map[domain.SourceSystem]repo_interfaces.SourceAdapter, promotions promotionRepoStub, refunds refundLedgerStub) *services.ApprovalService {
	provider := snapshotProviderStub{
		findFn: func(id string) (domain.WithdrawalRequest, bool) {
			if id == req.ID {
				return req, true
			}
			return domain.WithdrawalRequest{}, false
		},
	}
	return services.NewApprovalService(provider, adapters, promotions, refunds, notifierStub{})
}

func TestApprovalServiceApproveValidationError(t *testing.T) {
	svc := services.NewApprovalService(snapshotProviderStub{}, nil, promotionRepoStub{}, refundLedgerStub{}, notifierStub{})

	_, err := svc.Approve(context.Background(), models.ApproveWithdrawalRequest{})
	if err == nil {
		t.Fatal("expected validation error for empty approve request")
	}

	_, err = svc.Approve(context.Background(), models.ApproveWithdrawalRequest{RequestID: "w-1", Priority: 11})
	if err == nil {
		t.Fatal("expected validation error for out-of-range priority")
	}
}

func TestApprovalServiceApproveUnknownRequest(t *testing.T) {
	svc := services.NewApprovalService(snapshotProviderStub{}, nil, promotionRepoStub{}, refundLedgerStub{}, notifierStub{})

	_, err := svc.Approve(context.Background(), models.ApproveWithdrawalRequest{RequestID: "missing"})
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestApprovalServiceApproveRequiresPending(t *testing.T) {
	req := domain.WithdrawalRequest{
		ID:       "w-1",
		Source:   domain.SourceRegionalWithdrawalStore,
		OriginID: "w-1",
		Status:   domain.StatusCompleted,
	}
	var wroteBack bool
	adapters := map[domain.SourceSystem]repo_interfaces.SourceAdapter{
		domain.SourceRegionalWithdrawalStore: sourceAdapterStub{
			source: domain.SourceRegionalWithdrawalStore,
			writeBackFn: func(context.Context, string, domain.WriteBackPatch) error {
				wroteBack = true
				return nil
			},
		},
	}

	svc := approvalFixture(req, adapters, promotionRepoStub{}, refundLedgerStub{})
	_, err := svc.Approve(context.Background(), models.ApproveWithdrawalRequest{RequestID: "w-1"})
	if !errors.Is(err, domain.ErrStatusConflict) {
		t.Fatalf("expected ErrStatusConflict, got %v", err)
	}
	if wroteBack {
		t.Fatal("expected no write-back on precondition failure")
	}
}

func TestApprovalServiceApproveWritesBackWithExpectedStatus(t *testing.T) {
	req := domain.WithdrawalRequest{
		ID:       "w-1",
		Source:   domain.SourceRegionalWithdrawalStore,
		OriginID: "w-1",
		Status:   domain.StatusPending,
	}

	var got domain.WriteBackPatch
	adapters := map[domain.SourceSystem]repo_interfaces.SourceAdapter{
		domain.SourceRegionalWithdrawalStore: sourceAdapterStub{
			source: domain.SourceRegionalWithdrawalStore,
			writeBackFn: func(_ context.Context, originID string, patch domain.WriteBackPatch) error {
				if originID != "w-1" {
					t.Fatalf("unexpected origin id %s", originID)
				}
				got = patch
				return nil
			},
		},
	}

	svc := approvalFixture(req, adapters, promotionRepoStub{}, refundLedgerStub{})
	resp, err := svc.Approve(context.Background(), models.ApproveWithdrawalRequest{RequestID: "w-1", Priority: 5, AdminNotes: "rush"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !resp.Success || resp.Data == nil {
		t.Fatal("expected successful response with data")
	}
	if resp.Data.Status != string(domain.StatusApproved) {
		t.Fatalf("expected approved status, got %s", resp.Data.Status)
	}

	if got.ExpectedStatus == nil || *got.ExpectedStatus != domain.StatusPending {
		t.Fatal("expected write-back conditioned on pending status")
	}
	if got.Status == nil || *got.Status != domain.StatusApproved {
		t.Fatal("expected write-back to set approved status")
	}
	if got.Priority == nil || *got.Priority != 5 {
		t.Fatal("expected write-back to set priority 5")
	}
}

func TestApprovalServiceApproveConcurrentLoser(t *testing.T) {
	req := domain.WithdrawalRequest{
		ID:       "w-1",
		Source:   domain.SourceCanonicalPayoutStore,
		OriginID: "w-1",
		Status:   domain.StatusPending,
	}
	adapters := map[domain.SourceSystem]repo_interfaces.SourceAdapter{
		domain.SourceCanonicalPayoutStore: sourceAdapterStub{
			source: domain.SourceCanonicalPayoutStore,
			writeBackFn: func(context.Context, string, domain.WriteBackPatch) error {
				return domain.ErrStatusConflict
			},
		},
	}

	svc := approvalFixture(req, adapters, promotionRepoStub{}, refundLedgerStub{})
	_, err := svc.Approve(context.Background(), models.ApproveWithdrawalRequest{RequestID: "w-1"})
	if !errors.Is(err, domain.ErrStatusConflict) {
		t.Fatalf("expected ErrStatusConflict from losing write, got %v", err)
	}
}

func TestApprovalServiceApprovePromotesLegacyCandidate(t *testing.T) {
	req := domain.WithdrawalRequest{
		ID:              "entry-1",
		Source:          domain.SourceLegacyLedger,
		OriginID:        "entry-1",
		Region:          domain.RegionKorea,
		CreatorID:       "creator-1",
		RequestedAmount: 10000,
		Status:          domain.StatusPending,
	}

	var marker string
	adapters := map[domain.SourceSystem]repo_interfaces.SourceAdapter{
		domain.SourceLegacyLedger: sourceAdapterStub{
			source: domain.SourceLegacyLedger,
			writeBackFn: func(_ context.Context, originID string, patch domain.WriteBackPatch) error {
				if originID != "entry-1" {
					t.Fatalf("unexpected ledger origin id %s", originID)
				}
				if patch.ProcessedMarker != nil {
					marker = *patch.ProcessedMarker
				}
				return nil
			},
		},
	}
	promotions := promotionRepoStub{
		insertPromotedFn: func(_ context.Context, promoted domain.WithdrawalRequest) (string, error) {
			if promoted.Status != domain.StatusApproved {
				t.Fatalf("expected promoted record to be approved, got %s", promoted.Status)
			}
			return "w-new", nil
		},
	}

	var replacedOldID string
	var replacedWith domain.WithdrawalRequest
	provider := snapshotProviderStub{
		findFn: func(id string) (domain.WithdrawalRequest, bool) {
			return req, id == "entry-1"
		},
		replaceFn: func(oldID string, updated domain.WithdrawalRequest) bool {
			replacedOldID = oldID
			replacedWith = updated
			return true
		},
	}

	svc := services.NewApprovalService(provider, adapters, promotions, refundLedgerStub{}, notifierStub{})
	resp, err := svc.Approve(context.Background(), models.ApproveWithdrawalRequest{RequestID: "entry-1", Priority: 2})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !resp.Success {
		t.Fatal("expected successful promotion")
	}

	if marker != "w-new" {
		t.Fatalf("expected origin marker w-new, got %q", marker)
	}
	if replacedOldID != "entry-1" {
		t.Fatalf("expected snapshot replace keyed by entry-1, got %s", replacedOldID)
	}
	if replacedWith.ID != "w-new" || replacedWith.Source != domain.SourceRegionalWithdrawalStore {
		t.Fatalf("expected promoted snapshot entry, got %+v", replacedWith)
	}
}

func TestApprovalServiceRejectRefundsWithIdempotencyKey(t *testing.T) {
	req := domain.WithdrawalRequest{
		ID:              "w-1",
		Source:          domain.SourceRegionalWithdrawalStore,
		OriginID:        "w-1",
		CreatorID:       "creator-1",
		RequestedAmount: 10000,
		Status:          domain.StatusPending,
	}
	adapters := map[domain.SourceSystem]repo_interfaces.SourceAdapter{
		domain.SourceRegionalWithdrawalStore: sourceAdapterStub{source: domain.SourceRegionalWithdrawalStore},
	}

	var gotKey string
	var gotAmount int64
	refunds := refundLedgerStub{
		recordRefundFn: func(_ context.Context, creatorID string, amount int64, _, idempotencyKey string) (string, error) {
			if creatorID != "creator-1" {
				t.Fatalf("unexpected creator id %s", creatorID)
			}
			gotKey = idempotencyKey
			gotAmount = amount
			return "refund-1", nil
		},
	}

	svc := approvalFixture(req, adapters, promotionRepoStub{}, refunds)
	resp, err := svc.Reject(context.Background(), models.RejectWithdrawalRequest{RequestID: "w-1", Reason: "account mismatch"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !resp.Success || resp.Data == nil {
		t.Fatal("expected successful response")
	}
	if resp.Data.RefundLedgerEntryID != "refund-1" {
		t.Fatalf("expected refund entry id on response, got %q", resp.Data.RefundLedgerEntryID)
	}

	want := "withdrawal-refund-regional_withdrawal_store-w-1"
	if gotKey != want {
		t.Fatalf("expected idempotency key %q, got %q", want, gotKey)
	}
	if gotAmount != 10000 {
		t.Fatalf("expected refund of the full requested amount, got %d", gotAmount)
	}
}

func TestApprovalServiceRejectSkipsRefundWhenAlreadyIssued(t *testing.T) {
	req := domain.WithdrawalRequest{
		ID:                  "w-1",
		Source:              domain.SourceRegionalWithdrawalStore,
		OriginID:            "w-1",
		CreatorID:           "creator-1",
		RequestedAmount:     10000,
		Status:              domain.StatusPending,
		RefundLedgerEntryID: "refund-old",
	}
	adapters := map[domain.SourceSystem]repo_interfaces.SourceAdapter{
		domain.SourceRegionalWithdrawalStore: sourceAdapterStub{source: domain.SourceRegionalWithdrawalStore},
	}

	refunds := refundLedgerStub{
		recordRefundFn: func(context.Context, string, int64, string, string) (string, error) {
			t.Fatal("expected no second refund for a request that already has one")
			return "", nil
		},
	}

	svc := approvalFixture(req, adapters, promotionRepoStub{}, refunds)
	if _, err := svc.Reject(context.Background(), models.RejectWithdrawalRequest{RequestID: "w-1", Reason: "dup"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestApprovalServiceRejectSurvivesRefundFailure(t *testing.T) {
	req := domain.WithdrawalRequest{
		ID:              "w-1",
		Source:          domain.SourceRegionalWithdrawalStore,
		OriginID:        "w-1",
		CreatorID:       "creator-1",
		RequestedAmount: 10000,
		Status:          domain.StatusPending,
	}
	adapters := map[domain.SourceSystem]repo_interfaces.SourceAdapter{
		domain.SourceRegionalWithdrawalStore: sourceAdapterStub{source: domain.SourceRegionalWithdrawalStore},
	}
	refunds := refundLedgerStub{
		recordRefundFn: func(context.Context, string, int64, string, string) (string, error) {
			return "", errors.New("ledger unavailable")
		},
	}

	svc := approvalFixture(req, adapters, promotionRepoStub{}, refunds)
	resp, err := svc.Reject(context.Background(), models.RejectWithdrawalRequest{RequestID: "w-1", Reason: "bad account"})
	if err != nil {
		t.Fatalf("expected rejection to stand despite refund failure, got %v", err)
	}
	if !resp.Success {
		t.Fatal("expected successful rejection response")
	}
	if resp.Message != "Withdrawal request rejected; refund requires manual reconciliation" {
		t.Fatalf("expected manual reconciliation message, got %q", resp.Message)
	}
	if resp.Data.Status != string(domain.StatusRejected) {
		t.Fatalf("expected rejected status, got %s", resp.Data.Status)
	}
}

func TestApprovalServiceCompleteRequiresApproved(t *testing.T) {
	req := domain.WithdrawalRequest{
		ID:       "w-1",
		Source:   domain.SourceRegionalWithdrawalStore,
		OriginID: "w-1",
		Status:   domain.StatusPending,
	}
	adapters := map[domain.SourceSystem]repo_interfaces.SourceAdapter{
		domain.SourceRegionalWithdrawalStore: sourceAdapterStub{source: domain.SourceRegionalWithdrawalStore},
	}

	svc := approvalFixture(req, adapters, promotionRepoStub{}, refundLedgerStub{})
	_, err := svc.Complete(context.Background(), models.CompleteWithdrawalRequest{RequestID: "w-1"})
	if !errors.Is(err, domain.ErrStatusConflict) {
		t.Fatalf("expected ErrStatusConflict for pending request, got %v", err)
	}
}

func TestApprovalServiceCompleteSuccess(t *testing.T) {
	req := domain.WithdrawalRequest{
		ID:       "w-1",
		Source:   domain.SourceRegionalWithdrawalStore,
		OriginID: "w-1",
		Status:   domain.StatusApproved,
	}

	var got domain.WriteBackPatch
	adapters := map[domain.SourceSystem]repo_interfaces.SourceAdapter{
		domain.SourceRegionalWithdrawalStore: sourceAdapterStub{
			source: domain.SourceRegionalWithdrawalStore,
			writeBackFn: func(_ context.Context, _ string, patch domain.WriteBackPatch) error {
				got = patch
				return nil
			},
		},
	}

	svc := approvalFixture(req, adapters, promotionRepoStub{}, refundLedgerStub{})
	resp, err := svc.Complete(context.Background(), models.CompleteWithdrawalRequest{RequestID: "w-1"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if resp.Data.Status != string(domain.StatusCompleted) {
		t.Fatalf("expected completed status, got %s", resp.Data.Status)
	}
	if resp.Data.CompletedAt == "" {
		t.Fatal("expected completion timestamp on response")
	}

	if got.ExpectedStatus == nil || *got.ExpectedStatus != domain.StatusApproved {
		t.Fatal("expected write-back conditioned on approved status")
	}
	if got.CompletedAt == nil || time.Since(*got.CompletedAt) > time.Minute {
		t.Fatal("expected a recent completion timestamp in the patch")
	}
}
