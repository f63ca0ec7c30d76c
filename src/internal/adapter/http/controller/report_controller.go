package controller

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/api-sage/payout-reconciler/src/internal/adapter/http/models"
	"github.com/api-sage/payout-reconciler/src/internal/commons"
)

type AggregateService interface {
	Report(ctx context.Context) (commons.Response[models.AggregateReport], error)
}

type AuditService interface {
	Report(ctx context.Context) (commons.Response[models.AuditReport], error)
}

type ExportService interface {
	BuildRows(ctx context.Context, req models.ExportRequest) ([]models.ExportRow, error)
	RenderCSV(rows []models.ExportRow) []byte
	DispatchWeeklySummary(ctx context.Context) (commons.Response[string], error)
}

// ReportController serves the operator reports. The CSV download is
// the only surface that emits full resident registration numbers, so
// it sits behind a second factor: a bcrypt-checked passphrase on top
// of channel auth.
type ReportController struct {
	aggregates           AggregateService
	audits               AuditService
	exports              ExportService
	exportPassphraseHash string
}

func NewReportController(
	aggregates AggregateService,
	audits AuditService,
	exports ExportService,
	exportPassphraseHash string,
) *ReportController {
	return &ReportController{
		aggregates:           aggregates,
		audits:               audits,
		exports:              exports,
		exportPassphraseHash: exportPassphraseHash,
	}
}

func (c *ReportController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	wrap := func(h http.HandlerFunc) http.Handler {
		if authMiddleware != nil {
			return authMiddleware(h)
		}
		return h
	}
	mux.Handle("/reports/aggregate", wrap(c.aggregate))
	mux.Handle("/reports/audit", wrap(c.audit))
	mux.Handle("/reports/export", wrap(c.export))
	mux.Handle("/reports/weekly-dispatch", wrap(c.weeklyDispatch))
}

func (c *ReportController) aggregate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, commons.ErrorResponse[models.AggregateReport]("method not allowed"))
		return
	}
	logRequest(r, nil)

	response, err := c.aggregates.Report(r.Context())
	if err != nil {
		logError(r, err, nil)
		writeJSON(w, http.StatusInternalServerError, response)
		return
	}

	logResponse(r, http.StatusOK, response.Message, start)
	writeJSON(w, http.StatusOK, response)
}

func (c *ReportController) audit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, commons.ErrorResponse[models.AuditReport]("method not allowed"))
		return
	}
	logRequest(r, nil)

	response, err := c.audits.Report(r.Context())
	if err != nil {
		logError(r, err, nil)
		writeJSON(w, http.StatusInternalServerError, response)
		return
	}

	logResponse(r, http.StatusOK, response.Message, start)
	writeJSON(w, http.StatusOK, response)
}

func (c *ReportController) export(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, commons.ErrorResponse[string]("method not allowed"))
		return
	}

	if c.exportPassphraseHash == "" {
		logError(r, nil, nil)
		writeJSON(w, http.StatusForbidden, commons.ErrorResponse[string]("export passphrase is not configured"))
		return
	}
	passphrase := r.Header.Get("X-Export-Passphrase")
	if err := bcrypt.CompareHashAndPassword([]byte(c.exportPassphraseHash), []byte(passphrase)); err != nil {
		logError(r, err, nil)
		writeJSON(w, http.StatusForbidden, commons.ErrorResponse[string]("export passphrase rejected"))
		return
	}

	req := models.ExportRequest{
		Mode:   r.URL.Query().Get("mode"),
		Region: r.URL.Query().Get("region"),
		Week:   r.URL.Query().Get("week"),
	}
	logRequest(r, req)

	rows, err := c.exports.BuildRows(r.Context(), req)
	if err != nil {
		logError(r, err, nil)
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[string]("failed to build export", err.Error()))
		return
	}

	data := c.exports.RenderCSV(rows)
	filename := fmt.Sprintf("withdrawal-settlement-%s.csv", time.Now().UTC().Format("2006-01-02"))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)

	logResponse(r, http.StatusOK, fmt.Sprintf("%d rows exported", len(rows)), start)
}

func (c *ReportController) weeklyDispatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, commons.ErrorResponse[string]("method not allowed"))
		return
	}
	logRequest(r, nil)

	response, err := c.exports.DispatchWeeklySummary(r.Context())
	if err != nil {
		logError(r, err, nil)
		writeJSON(w, http.StatusInternalServerError, response)
		return
	}

	logResponse(r, http.StatusOK, response.Message, start)
	writeJSON(w, http.StatusOK, response)
}
