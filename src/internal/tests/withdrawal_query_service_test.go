package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/api-sage/payout-reconciler/src/internal/adapter/http/models"
	"github.com/api-sage/payout-reconciler/src/internal/domain"
	"github.com/api-sage/payout-reconciler/src/internal/usecase/services"
)

func querySnapshot() domain.Snapshot {
	august := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	july := time.Date(2026, 7, 2, 9, 0, 0, 0, time.UTC)

	return domain.Snapshot{
		Requests: []domain.WithdrawalRequest{
			{ID: "a", Region: domain.RegionKorea, Status: domain.StatusPending, Priority: 0, CreatedAt: august},
			{ID: "b", Region: domain.RegionKorea, Status: domain.StatusPending, Priority: 5, CreatedAt: july},
			{ID: "c", Region: domain.RegionJapan, Status: domain.StatusApproved, Priority: 0, CreatedAt: august},
			{
				ID: "d", Region: domain.RegionKorea, Status: domain.StatusPending, CreatedAt: august,
				Method: domain.PayoutMethod{
					Type:                       domain.PayoutBankTransfer,
					BankName:                   "KB국민은행",
					AccountNumber:              "1002941050782",
					AccountHolder:              "홍길동",
					ResidentRegistrationNumber: "cipher-1",
				},
			},
		},
	}
}

func TestWithdrawalQueryServiceFilters(t *testing.T) {
	svc := services.NewWithdrawalQueryService(snapshotProviderStub{snapshotFn: querySnapshot})

	resp, err := svc.List(context.Background(), models.ListWithdrawalsRequest{Status: "pending", Region: "korea", Month: "2026-08"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if resp.Data == nil || len(*resp.Data) != 2 {
		t.Fatalf("expected 2 filtered rows, got %+v", resp.Data)
	}
}

func TestWithdrawalQueryServicePriorityOrdering(t *testing.T) {
	svc := services.NewWithdrawalQueryService(snapshotProviderStub{snapshotFn: querySnapshot})

	resp, err := svc.List(context.Background(), models.ListWithdrawalsRequest{})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	rows := *resp.Data
	if rows[0].ID != "b" {
		t.Fatalf("expected highest priority first, got %s", rows[0].ID)
	}
}

func TestWithdrawalQueryServiceNeverExposesResidentNumber(t *testing.T) {
	svc := services.NewWithdrawalQueryService(snapshotProviderStub{snapshotFn: querySnapshot})

	resp, err := svc.List(context.Background(), models.ListWithdrawalsRequest{})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	for _, row := range *resp.Data {
		if row.ID == "d" {
			if row.NationalIDStatus != "registered" {
				t.Fatalf("expected registered status, got %s", row.NationalIDStatus)
			}
			return
		}
	}
	t.Fatal("expected to find request d")
}

func TestWithdrawalQueryServiceInvalidFilter(t *testing.T) {
	svc := services.NewWithdrawalQueryService(snapshotProviderStub{snapshotFn: querySnapshot})

	if _, err := svc.List(context.Background(), models.ListWithdrawalsRequest{Status: "bogus"}); err == nil {
		t.Fatal("expected validation error for unknown status")
	}
}
