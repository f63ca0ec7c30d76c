package services

import (
	"regexp"
	"strings"

	"github.com/api-sage/payout-reconciler/src/internal/domain"
	"github.com/api-sage/payout-reconciler/src/internal/logger"
	"github.com/api-sage/payout-reconciler/src/internal/usecase/service_interfaces"
)

// ledgerDescriptionPattern matches the free-text withdrawal shape the
// legacy ledger uses, e.g.
//
//	[WITHDRAWAL] 10,000 | KB Kookmin 1002941050782 (Hong Gildong)
//
// The format is not versioned upstream; extraction is tolerant and a
// miss yields an incomplete record rather than a dropped one.
var ledgerDescriptionPattern = regexp.MustCompile(`^\[WITHDRAWAL\][^|]*\|\s*(.+?)\s+(\d[\d-]{4,})\s*\(([^)]+)\)\s*$`)

// Normalizer maps every adapter's raw shape into the canonical
// withdrawal representation. Derived tax fields are recomputed here;
// stored values are never trusted.
type Normalizer struct {
	tax service_interfaces.TaxCalculator
}

func NewNormalizer(tax service_interfaces.TaxCalculator) *Normalizer {
	return &Normalizer{tax: tax}
}

func (n *Normalizer) Normalize(records []domain.RawRecord) []domain.WithdrawalRequest {
	out := make([]domain.WithdrawalRequest, 0, len(records))
	for _, record := range records {
		switch record.Source {
		case domain.SourceCanonicalPayoutStore:
			if record.Canonical != nil {
				out = append(out, n.fromCanonical(*record.Canonical))
			}
		case domain.SourceRegionalWithdrawalStore:
			if record.Regional != nil {
				out = append(out, n.fromRegional(*record.Regional))
			}
		case domain.SourceLegacyLedger:
			if record.Ledger != nil {
				out = append(out, n.fromLedger(*record.Ledger))
			}
		}
	}
	return out
}

func (n *Normalizer) fromCanonical(row domain.CanonicalPayoutRow) domain.WithdrawalRequest {
	region := parseRegion(row.Region)

	method := domain.PayoutMethod{
		Type:                       domain.PayoutBankTransfer,
		BankName:                   row.BankName,
		AccountNumber:              row.AccountNumber,
		AccountHolder:              row.AccountHolder,
		ResidentRegistrationNumber: row.ResidentRegistrationNumber,
	}
	if !region.Domestic() && row.PaypalEmail != "" {
		method = domain.PayoutMethod{
			Type:        domain.PayoutExternalWallet,
			WalletEmail: row.PaypalEmail,
		}
	}

	req := domain.WithdrawalRequest{
		ID:                  row.ID,
		Source:              domain.SourceCanonicalPayoutStore,
		OriginID:            row.ID,
		Region:              region,
		CreatorID:           row.CreatorID,
		CreatorName:         row.CreatorName,
		RequestedAmount:     row.RequestedPoints,
		Method:              method,
		Status:              parseStatus(row.Status),
		Priority:            row.Priority,
		AdminNotes:          row.AdminNotes,
		RejectionReason:     row.RejectionReason,
		RefundLedgerEntryID: row.RefundLedgerEntryID,
		CreatedAt:           row.CreatedAt,
		ProcessedAt:         row.ProcessedAt,
		CompletedAt:         row.CompletedAt,
	}
	n.applyTax(&req)
	return req
}

func (n *Normalizer) fromRegional(row domain.RegionalWithdrawalRow) domain.WithdrawalRequest {
	req := domain.WithdrawalRequest{
		ID:          row.ID,
		Source:      domain.SourceRegionalWithdrawalStore,
		OriginID:    row.ID,
		Region:      domain.RegionKorea,
		CreatorID:   row.UserID,
		CreatorName: row.UserName,
		// The regional store renames the bank fields; map them here.
		RequestedAmount: row.Amount,
		Method: domain.PayoutMethod{
			Type:                       domain.PayoutBankTransfer,
			BankName:                   row.BankName,
			AccountNumber:              row.BankAccountNumber,
			AccountHolder:              row.BankAccountHolder,
			ResidentRegistrationNumber: row.ResidentRegistrationNumber,
		},
		Status:                parseStatus(row.Status),
		Priority:              row.Priority,
		AdminNotes:            row.AdminNotes,
		RejectionReason:       row.RejectionReason,
		RefundLedgerEntryID:   row.RefundLedgerEntryID,
		OriginProcessedMarker: row.SourceEntryID,
		CreatedAt:             row.CreatedAt,
		ProcessedAt:           row.ProcessedAt,
		CompletedAt:           row.CompletedAt,
	}
	n.applyTax(&req)
	return req
}

func (n *Normalizer) fromLedger(row domain.LedgerEntryRow) domain.WithdrawalRequest {
	// Ledger withdrawals are debits; the requested amount is the
	// inverted sign.
	amount := -row.Amount

	bankName, accountNumber, accountHolder, ok := parseLedgerDescription(row.Description)
	if !ok {
		logger.Info("normalizer ledger description parse miss", logger.Fields{
			"entryId": row.ID,
		})
	}

	holder := accountHolder
	if holder == "" {
		holder = row.CreatorName
	}

	req := domain.WithdrawalRequest{
		ID:              row.ID,
		Source:          domain.SourceLegacyLedger,
		OriginID:        row.ID,
		Region:          domain.RegionKorea,
		CreatorID:       row.CreatorID,
		CreatorName:     row.CreatorName,
		RequestedAmount: amount,
		Method: domain.PayoutMethod{
			Type:          domain.PayoutBankTransfer,
			BankName:      bankName,
			AccountNumber: accountNumber,
			AccountHolder: holder,
		},
		Status:                domain.StatusPending,
		OriginProcessedMarker: row.ProcessedMarker,
		CreatedAt:             row.CreatedAt,
	}
	n.applyTax(&req)
	return req
}

func (n *Normalizer) applyTax(req *domain.WithdrawalRequest) {
	breakdown := n.tax.Compute(req.Region, req.RequestedAmount)
	req.TaxAmount = breakdown.TaxAmount
	req.NetAmount = breakdown.NetAmount
}

// parseLedgerDescription extracts bank name, account number and
// account holder from a ledger withdrawal description. A failed match
// returns empty fields; the caller emits the record anyway.
func parseLedgerDescription(description string) (bankName, accountNumber, accountHolder string, ok bool) {
	match := ledgerDescriptionPattern.FindStringSubmatch(strings.TrimSpace(description))
	if match == nil {
		return "", "", "", false
	}
	return strings.TrimSpace(match[1]), match[2], strings.TrimSpace(match[3]), true
}

func parseRegion(raw string) domain.Region {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "japan":
		return domain.RegionJapan
	case "us":
		return domain.RegionUS
	default:
		return domain.RegionKorea
	}
}

func parseStatus(raw string) domain.WithdrawalStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "approved", "processing":
		return domain.StatusApproved
	case "completed":
		return domain.StatusCompleted
	case "rejected":
		return domain.StatusRejected
	default:
		return domain.StatusPending
	}
}
