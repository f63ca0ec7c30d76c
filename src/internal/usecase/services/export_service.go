package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/api-sage/payout-reconciler/src/internal/adapter/http/models"
	"github.com/api-sage/payout-reconciler/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/payout-reconciler/src/internal/commons"
	"github.com/api-sage/payout-reconciler/src/internal/domain"
	"github.com/api-sage/payout-reconciler/src/internal/logger"
	"github.com/api-sage/payout-reconciler/src/internal/usecase/service_interfaces"
)

const (
	decryptionFailedMarker = "decryption failed"
	unregisteredMarker     = "unregistered"
	invalidChecksumNote    = "resident number failed checksum"
)

var exportHeader = []string{
	"월", "일", "성명", "주민등록번호", "지급총액", "소득세", "주민세", "차인지급액", "은행", "계좌번호", "비고",
}

// ExportService renders the tax-office settlement file. Weekly mode
// covers one Monday-to-Sunday window; full mode covers every
// outstanding domestic request regardless of date.
type ExportService struct {
	provider   service_interfaces.SnapshotProvider
	encryption repo_interfaces.EncryptionService
	tax        service_interfaces.TaxCalculator
	dispatcher service_interfaces.ReportDispatcher
}

func NewExportService(
	provider service_interfaces.SnapshotProvider,
	encryption repo_interfaces.EncryptionService,
	tax service_interfaces.TaxCalculator,
	dispatcher service_interfaces.ReportDispatcher,
) *ExportService {
	return &ExportService{
		provider:   provider,
		encryption: encryption,
		tax:        tax,
		dispatcher: dispatcher,
	}
}

// BuildRows selects the outstanding requests for the export scope and
// resolves each row's resident registration number. One unreadable
// ciphertext degrades that row to a marker, never the whole file.
func (s *ExportService) BuildRows(ctx context.Context, request models.ExportRequest) ([]models.ExportRow, error) {
	if err := request.Validate(); err != nil {
		logger.Error("export service validation failed", err, nil)
		return nil, err
	}

	mode := strings.ToLower(strings.TrimSpace(request.Mode))
	if mode == "" {
		mode = "weekly"
	}
	region := strings.ToLower(strings.TrimSpace(request.Region))

	var windowStart, windowEnd time.Time
	if mode == "weekly" {
		ref := time.Now().UTC()
		if week := strings.TrimSpace(request.Week); week != "" {
			parsed, _ := time.Parse("2006-01-02", week)
			windowStart, windowEnd = weekWindow(parsed)
		} else {
			// Without an explicit date the export covers the previous
			// full week, matching the scheduled Monday report.
			windowStart, windowEnd = weekWindow(ref.AddDate(0, 0, -7))
		}
	}

	snapshot := s.provider.Snapshot()

	selected := make([]domain.WithdrawalRequest, 0, len(snapshot.Requests))
	for _, req := range snapshot.Requests {
		if req.Status != domain.StatusPending && req.Status != domain.StatusApproved {
			continue
		}
		if mode == "full" && !req.Region.Domestic() {
			continue
		}
		if region != "" && string(req.Region) != region {
			continue
		}
		if mode == "weekly" {
			created := req.CreatedAt.UTC()
			if created.Before(windowStart) || !created.Before(windowEnd) {
				continue
			}
		}
		selected = append(selected, req)
	}

	sort.Slice(selected, func(i, j int) bool {
		if !selected[i].CreatedAt.Equal(selected[j].CreatedAt) {
			return selected[i].CreatedAt.Before(selected[j].CreatedAt)
		}
		return selected[i].ID < selected[j].ID
	})

	rows := make([]models.ExportRow, 0, len(selected))
	for _, req := range selected {
		rows = append(rows, s.buildRow(ctx, req))
	}

	logger.Info("export service rows built", logger.Fields{
		"passId": snapshot.PassID,
		"mode":   mode,
		"region": region,
		"rows":   len(rows),
	})

	return rows, nil
}

func (s *ExportService) buildRow(ctx context.Context, req domain.WithdrawalRequest) models.ExportRow {
	breakdown := s.tax.Compute(req.Region, req.RequestedAmount)
	created := req.CreatedAt.UTC()

	var notes []string
	nationalID := unregisteredMarker
	if ciphertext := req.Method.ResidentRegistrationNumber; ciphertext != "" {
		plaintext, err := s.encryption.Decrypt(ctx, ciphertext)
		switch {
		case err != nil || plaintext == "":
			logger.Error("export service resident number decrypt failed", err, logger.Fields{
				"requestId": req.ID,
			})
			nationalID = decryptionFailedMarker
		default:
			nationalID = plaintext
			if !domain.ValidateResidentNumber(plaintext) {
				notes = append(notes, invalidChecksumNote)
			}
		}
	}

	if req.AdminNotes != "" {
		notes = append(notes, req.AdminNotes)
	}

	return models.ExportRow{
		Month:          strconv.Itoa(int(created.Month())),
		Day:            strconv.Itoa(created.Day()),
		Name:           req.Method.AccountHolder,
		NationalID:     nationalID,
		Gross:          req.RequestedAmount,
		IncomeTax:      breakdown.IncomeTaxComponent,
		ResidentSurtax: breakdown.ResidentSurtaxComponent,
		Net:            breakdown.NetAmount,
		BankName:       req.Method.BankName,
		AccountNumber:  req.Method.AccountNumber,
		Notes:          strings.Join(notes, "; "),
	}
}

// RenderCSV writes the rows as an Excel-compatible UTF-8 file. The BOM
// prefix keeps Hangul readable when the file is opened in Excel.
func (s *ExportService) RenderCSV(rows []models.ExportRow) []byte {
	var buf bytes.Buffer
	buf.WriteString("\ufeff")

	writer := csv.NewWriter(&buf)
	_ = writer.Write(exportHeader)
	for _, row := range rows {
		_ = writer.Write([]string{
			row.Month,
			row.Day,
			row.Name,
			row.NationalID,
			strconv.FormatInt(row.Gross, 10),
			strconv.FormatInt(row.IncomeTax, 10),
			strconv.FormatInt(row.ResidentSurtax, 10),
			strconv.FormatInt(row.Net, 10),
			row.BankName,
			row.AccountNumber,
			row.Notes,
		})
	}
	writer.Flush()

	return buf.Bytes()
}

// DispatchWeeklySummary renders the previous week's outstanding
// domestic requests and pushes the summary to the works channel.
// Resident numbers appear masked; the full number only ever reaches
// the CSV download.
func (s *ExportService) DispatchWeeklySummary(ctx context.Context) (commons.Response[string], error) {
	windowStart, windowEnd := weekWindow(time.Now().UTC().AddDate(0, 0, -7))

	snapshot := s.provider.Snapshot()

	var count int
	var gross, tax, net int64
	var lines []string
	for _, req := range snapshot.Requests {
		if req.Status != domain.StatusPending && req.Status != domain.StatusApproved {
			continue
		}
		if !req.Region.Domestic() {
			continue
		}
		created := req.CreatedAt.UTC()
		if created.Before(windowStart) || !created.Before(windowEnd) {
			continue
		}

		breakdown := s.tax.Compute(req.Region, req.RequestedAmount)
		count++
		gross += req.RequestedAmount
		tax += breakdown.TaxAmount
		net += breakdown.NetAmount

		masked := unregisteredMarker
		if ciphertext := req.Method.ResidentRegistrationNumber; ciphertext != "" {
			if plaintext, err := s.encryption.Decrypt(ctx, ciphertext); err == nil && plaintext != "" {
				masked = domain.MaskResidentNumber(plaintext)
			} else {
				masked = decryptionFailedMarker
			}
		}
		lines = append(lines, fmt.Sprintf("- %s (%s) %d원 / %s / %s",
			req.Method.AccountHolder, masked, req.RequestedAmount, req.Method.BankName, req.Method.AccountNumber))
	}

	text := fmt.Sprintf("주간 출금 정산 보고 (%s ~ %s)\n건수: %d / 총액: %d원 / 세액: %d원 / 실지급액: %d원",
		windowStart.Format("2006-01-02"),
		windowEnd.AddDate(0, 0, -1).Format("2006-01-02"),
		count, gross, tax, net)
	if len(lines) > 0 {
		text += "\n" + strings.Join(lines, "\n")
	}

	if err := s.dispatcher.DispatchReport(ctx, text); err != nil {
		logger.Error("export service weekly summary dispatch failed", err, logger.Fields{
			"windowStart": windowStart.Format("2006-01-02"),
		})
		return commons.ErrorResponse[string]("Failed to dispatch weekly summary", err.Error()), err
	}

	logger.Info("export service weekly summary dispatched", logger.Fields{
		"windowStart": windowStart.Format("2006-01-02"),
		"requests":    count,
	})

	return commons.SuccessResponse("Weekly summary dispatched", text), nil
}

// weekWindow returns the half-open Monday-to-Monday UTC window
// containing ref.
func weekWindow(ref time.Time) (time.Time, time.Time) {
	ref = ref.UTC()
	offset := (int(ref.Weekday()) + 6) % 7
	start := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}
