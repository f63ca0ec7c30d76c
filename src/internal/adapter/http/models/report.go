package models

import (
	"errors"
	"strings"
	"time"
)

type RegionAggregate struct {
	Region         string `json:"region"`
	TotalRequested int64  `json:"totalRequested"`
	TotalCompleted int64  `json:"totalCompleted"`
	Remaining      int64  `json:"remaining"`
}

type StatusAggregate struct {
	Region string `json:"region"`
	Status string `json:"status"`
	Count  int    `json:"count"`
	Amount int64  `json:"amount"`
}

// AggregateReport summarizes the current snapshot per region and per
// (region, status) pair. Rows are sorted so identical snapshots always
// produce identical reports.
type AggregateReport struct {
	PassID   string            `json:"passId"`
	TakenAt  string            `json:"takenAt"`
	Regions  []RegionAggregate `json:"regions"`
	Statuses []StatusAggregate `json:"statuses"`
}

type AuditFinding struct {
	CreatorID       string `json:"creatorId"`
	CreatorName     string `json:"creatorName"`
	OutstandingSum  int64  `json:"outstandingSum"`
	ActualBalance   int64  `json:"actualBalance"`
	CachedBalance   int64  `json:"cachedBalance"`
	Overdrawn       bool   `json:"overdrawn"`
	BalanceMismatch bool   `json:"balanceMismatch"`
}

type AuditReport struct {
	PassID          string         `json:"passId"`
	CheckedCreators int            `json:"checkedCreators"`
	Findings        []AuditFinding `json:"findings"`
}

type ExportRequest struct {
	Mode   string
	Region string
	Week   string
}

func (r ExportRequest) Validate() error {
	var errs []string

	switch strings.ToLower(strings.TrimSpace(r.Mode)) {
	case "", "weekly", "full":
	default:
		errs = append(errs, "mode must be weekly or full")
	}

	switch strings.ToLower(strings.TrimSpace(r.Region)) {
	case "", "korea", "japan", "us":
	default:
		errs = append(errs, "region must be one of korea, japan, us")
	}

	if week := strings.TrimSpace(r.Week); week != "" {
		if _, err := time.Parse("2006-01-02", week); err != nil {
			errs = append(errs, "week must be a date formatted as YYYY-MM-DD")
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// ExportRow is one line of the tax-office CSV. NationalID carries the
// decrypted resident registration number, or a marker when it is
// absent or unreadable.
type ExportRow struct {
	Month          string
	Day            string
	Name           string
	NationalID     string
	Gross          int64
	IncomeTax      int64
	ResidentSurtax int64
	Net            int64
	BankName       string
	AccountNumber  string
	Notes          string
}
