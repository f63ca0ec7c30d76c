package models

import (
	"errors"
	"strings"
	"time"

	"github.com/api-sage/payout-reconciler/src/internal/domain"
)

type ApproveWithdrawalRequest struct {
	RequestID  string `json:"requestId"`
	Priority   int    `json:"priority"`
	AdminNotes string `json:"adminNotes"`
}

func (r ApproveWithdrawalRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.RequestID) == "" {
		errs = append(errs, "requestId is required")
	}
	if r.Priority < 0 || r.Priority > 10 {
		errs = append(errs, "priority must be between 0 and 10")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type RejectWithdrawalRequest struct {
	RequestID string `json:"requestId"`
	Reason    string `json:"reason"`
}

func (r RejectWithdrawalRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.RequestID) == "" {
		errs = append(errs, "requestId is required")
	}
	if strings.TrimSpace(r.Reason) == "" {
		errs = append(errs, "reason is required")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type CompleteWithdrawalRequest struct {
	RequestID string `json:"requestId"`
}

func (r CompleteWithdrawalRequest) Validate() error {
	if strings.TrimSpace(r.RequestID) == "" {
		return errors.New("requestId is required")
	}
	return nil
}

// WithdrawalResponse is the operator-facing shape of a request. The
// resident registration number never leaves the service; only its
// registration state does.
type WithdrawalResponse struct {
	ID                  string   `json:"id"`
	Source              string   `json:"source"`
	Region              string   `json:"region"`
	CreatorID           string   `json:"creatorId"`
	CreatorName         string   `json:"creatorName"`
	RequestedAmount     int64    `json:"requestedAmount"`
	PayoutMethod        string   `json:"payoutMethod"`
	BankName            string   `json:"bankName,omitempty"`
	AccountNumber       string   `json:"accountNumber,omitempty"`
	AccountHolder       string   `json:"accountHolder,omitempty"`
	WalletEmail         string   `json:"walletEmail,omitempty"`
	NationalIDStatus    string   `json:"nationalIdStatus"`
	Status              string   `json:"status"`
	Priority            int      `json:"priority"`
	TaxAmount           int64    `json:"taxAmount"`
	NetAmount           int64    `json:"netAmount"`
	AdminNotes          string   `json:"adminNotes,omitempty"`
	RejectionReason     string   `json:"rejectionReason,omitempty"`
	RefundLedgerEntryID string   `json:"refundLedgerEntryId,omitempty"`
	CollapsedLedgerIDs  []string `json:"collapsedLedgerIds,omitempty"`
	Incomplete          bool     `json:"incomplete"`
	Note                string   `json:"note,omitempty"`
	CreatedAt           string   `json:"createdAt"`
	ProcessedAt         string   `json:"processedAt,omitempty"`
	CompletedAt         string   `json:"completedAt,omitempty"`
}

func NewWithdrawalResponse(req domain.WithdrawalRequest) WithdrawalResponse {
	nationalIDStatus := "unregistered"
	if req.Method.ResidentRegistrationNumber != "" {
		nationalIDStatus = "registered"
	}

	resp := WithdrawalResponse{
		ID:                  req.ID,
		Source:              string(req.Source),
		Region:              string(req.Region),
		CreatorID:           req.CreatorID,
		CreatorName:         req.CreatorName,
		RequestedAmount:     req.RequestedAmount,
		PayoutMethod:        string(req.Method.Type),
		BankName:            req.Method.BankName,
		AccountNumber:       req.Method.AccountNumber,
		AccountHolder:       req.Method.AccountHolder,
		WalletEmail:         req.Method.WalletEmail,
		NationalIDStatus:    nationalIDStatus,
		Status:              string(req.Status),
		Priority:            req.Priority,
		TaxAmount:           req.TaxAmount,
		NetAmount:           req.NetAmount,
		AdminNotes:          req.AdminNotes,
		RejectionReason:     req.RejectionReason,
		RefundLedgerEntryID: req.RefundLedgerEntryID,
		CollapsedLedgerIDs:  req.CollapsedLedgerIDs,
		Incomplete:          req.Method.Incomplete(),
		CreatedAt:           req.CreatedAt.UTC().Format(time.RFC3339),
	}
	if req.ProcessedAt != nil {
		resp.ProcessedAt = req.ProcessedAt.UTC().Format(time.RFC3339)
	}
	if req.CompletedAt != nil {
		resp.CompletedAt = req.CompletedAt.UTC().Format(time.RFC3339)
	}

	return resp
}

type ListWithdrawalsRequest struct {
	Status string
	Region string
	Month  string
}

func (r ListWithdrawalsRequest) Validate() error {
	var errs []string

	switch strings.ToLower(strings.TrimSpace(r.Status)) {
	case "", "pending", "approved", "completed", "rejected":
	default:
		errs = append(errs, "status must be one of pending, approved, completed, rejected")
	}

	switch strings.ToLower(strings.TrimSpace(r.Region)) {
	case "", "korea", "japan", "us":
	default:
		errs = append(errs, "region must be one of korea, japan, us")
	}

	if month := strings.TrimSpace(r.Month); month != "" {
		if _, err := time.Parse("2006-01", month); err != nil {
			errs = append(errs, "month must be formatted as YYYY-MM")
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
