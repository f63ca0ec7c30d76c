package services_test

import (
	"testing"
	"time"

	"github.com/api-sage/payout-reconciler/src/internal/domain"
	"github.com/api-sage/payout-reconciler/src/internal/usecase/services"
)

func TestNormalizerLedgerDescriptionParse(t *testing.T) {
	normalizer := services.NewNormalizer(services.NewTaxService(nil))

	records := []domain.RawRecord{
		{
			Source: domain.SourceLegacyLedger,
			Ledger: &domain.LedgerEntryRow{
				ID:          "entry-1",
				CreatorID:   "creator-1",
				CreatorName: "홍길동",
				Amount:      -10000,
				Description: "[WITHDRAWAL] 10,000 | KB국민은행 1002941050782 (홍길동)",
				CreatedAt:   time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC),
			},
		},
	}

	out := normalizer.Normalize(records)
	if len(out) != 1 {
		t.Fatalf("expected 1 normalized request, got %d", len(out))
	}

	req := out[0]
	if req.RequestedAmount != 10000 {
		t.Fatalf("expected amount 10000, got %d", req.RequestedAmount)
	}
	if req.Method.BankName != "KB국민은행" {
		t.Fatalf("unexpected bank name %q", req.Method.BankName)
	}
	if req.Method.AccountNumber != "1002941050782" {
		t.Fatalf("unexpected account number %q", req.Method.AccountNumber)
	}
	if req.Method.AccountHolder != "홍길동" {
		t.Fatalf("unexpected account holder %q", req.Method.AccountHolder)
	}
	if req.Status != domain.StatusPending {
		t.Fatalf("expected pending status, got %s", req.Status)
	}
	if req.TaxAmount != 330 {
		t.Fatalf("expected recomputed tax 330, got %d", req.TaxAmount)
	}
}

func TestNormalizerLedgerParseMissKeepsRecord(t *testing.T) {
	normalizer := services.NewNormalizer(services.NewTaxService(nil))

	records := []domain.RawRecord{
		{
			Source: domain.SourceLegacyLedger,
			Ledger: &domain.LedgerEntryRow{
				ID:          "entry-2",
				CreatorID:   "creator-2",
				CreatorName: "김철수",
				Amount:      -5000,
				Description: "[WITHDRAWAL] manual adjustment",
				CreatedAt:   time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC),
			},
		},
	}

	out := normalizer.Normalize(records)
	if len(out) != 1 {
		t.Fatal("expected parse miss to keep the record, not drop it")
	}

	req := out[0]
	if req.Method.BankName != "" || req.Method.AccountNumber != "" {
		t.Fatalf("expected empty bank fields on parse miss, got %q %q", req.Method.BankName, req.Method.AccountNumber)
	}
	if req.Method.AccountHolder != "김철수" {
		t.Fatalf("expected holder fallback to creator name, got %q", req.Method.AccountHolder)
	}
	if !req.Method.Incomplete() {
		t.Fatal("expected parse miss record to be flagged incomplete")
	}
}

func TestNormalizerProcessingStatusMapsToApproved(t *testing.T) {
	normalizer := services.NewNormalizer(services.NewTaxService(nil))

	records := []domain.RawRecord{
		{
			Source: domain.SourceRegionalWithdrawalStore,
			Regional: &domain.RegionalWithdrawalRow{
				ID:                "w-1",
				UserID:            "creator-3",
				UserName:          "이영희",
				Amount:            20000,
				BankName:          "신한은행",
				BankAccountNumber: "110123456789",
				BankAccountHolder: "이영희",
				Status:            "processing",
				CreatedAt:         time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC),
			},
		},
	}

	out := normalizer.Normalize(records)
	if len(out) != 1 {
		t.Fatalf("expected 1 request, got %d", len(out))
	}
	if out[0].Status != domain.StatusApproved {
		t.Fatalf("expected processing to normalize to approved, got %s", out[0].Status)
	}
	if out[0].Region != domain.RegionKorea {
		t.Fatalf("expected regional records to be korea, got %s", out[0].Region)
	}
}

func TestNormalizerNonDomesticPaypalBecomesWallet(t *testing.T) {
	normalizer := services.NewNormalizer(services.NewTaxService(nil))

	records := []domain.RawRecord{
		{
			Source: domain.SourceCanonicalPayoutStore,
			Canonical: &domain.CanonicalPayoutRow{
				ID:              "c-1",
				CreatorID:       "creator-4",
				CreatorName:     "Jane",
				Region:          "us",
				RequestedPoints: 40000,
				PaypalEmail:     "jane@example.com",
				Status:          "pending",
				CreatedAt:       time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC),
			},
		},
	}

	out := normalizer.Normalize(records)
	if len(out) != 1 {
		t.Fatalf("expected 1 request, got %d", len(out))
	}
	if out[0].Method.Type != domain.PayoutExternalWallet {
		t.Fatalf("expected external wallet method, got %s", out[0].Method.Type)
	}
	if out[0].Method.WalletEmail != "jane@example.com" {
		t.Fatalf("unexpected wallet email %q", out[0].Method.WalletEmail)
	}
	if out[0].TaxAmount != 0 {
		t.Fatalf("expected no withholding outside korea, got %d", out[0].TaxAmount)
	}
}
