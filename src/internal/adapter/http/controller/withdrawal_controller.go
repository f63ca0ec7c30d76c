package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/api-sage/payout-reconciler/src/internal/adapter/http/models"
	"github.com/api-sage/payout-reconciler/src/internal/commons"
	"github.com/api-sage/payout-reconciler/src/internal/domain"
)

type ApprovalService interface {
	Approve(ctx context.Context, req models.ApproveWithdrawalRequest) (commons.Response[models.WithdrawalResponse], error)
	Reject(ctx context.Context, req models.RejectWithdrawalRequest) (commons.Response[models.WithdrawalResponse], error)
	Complete(ctx context.Context, req models.CompleteWithdrawalRequest) (commons.Response[models.WithdrawalResponse], error)
}

type WithdrawalQueryService interface {
	List(ctx context.Context, req models.ListWithdrawalsRequest) (commons.Response[[]models.WithdrawalResponse], error)
}

type WithdrawalController struct {
	approvals ApprovalService
	queries   WithdrawalQueryService
}

func NewWithdrawalController(approvals ApprovalService, queries WithdrawalQueryService) *WithdrawalController {
	return &WithdrawalController{approvals: approvals, queries: queries}
}

func (c *WithdrawalController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	wrap := func(h http.HandlerFunc) http.Handler {
		if authMiddleware != nil {
			return authMiddleware(h)
		}
		return h
	}
	mux.Handle("/withdrawals", wrap(c.list))
	mux.Handle("/withdrawals/approve", wrap(c.approve))
	mux.Handle("/withdrawals/reject", wrap(c.reject))
	mux.Handle("/withdrawals/complete", wrap(c.complete))
}

func (c *WithdrawalController) list(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, commons.ErrorResponse[[]models.WithdrawalResponse]("method not allowed"))
		return
	}

	req := models.ListWithdrawalsRequest{
		Status: r.URL.Query().Get("status"),
		Region: r.URL.Query().Get("region"),
		Month:  r.URL.Query().Get("month"),
	}
	logRequest(r, req)

	response, err := c.queries.List(r.Context(), req)
	if err != nil {
		logError(r, err, nil)
		writeJSON(w, http.StatusBadRequest, response)
		return
	}

	logResponse(r, http.StatusOK, response.Message, start)
	writeJSON(w, http.StatusOK, response)
}

func (c *WithdrawalController) approve(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, commons.ErrorResponse[models.WithdrawalResponse]("method not allowed"))
		return
	}

	var req models.ApproveWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.WithdrawalResponse]("invalid request body", err.Error()))
		return
	}
	logRequest(r, req)

	response, err := c.approvals.Approve(r.Context(), req)
	if err != nil {
		status := actionErrorStatus(err, response.Message)
		logError(r, err, nil)
		writeJSON(w, status, response)
		return
	}

	logResponse(r, http.StatusOK, response.Message, start)
	writeJSON(w, http.StatusOK, response)
}

func (c *WithdrawalController) reject(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, commons.ErrorResponse[models.WithdrawalResponse]("method not allowed"))
		return
	}

	var req models.RejectWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.WithdrawalResponse]("invalid request body", err.Error()))
		return
	}
	logRequest(r, req)

	response, err := c.approvals.Reject(r.Context(), req)
	if err != nil {
		status := actionErrorStatus(err, response.Message)
		logError(r, err, nil)
		writeJSON(w, status, response)
		return
	}

	logResponse(r, http.StatusOK, response.Message, start)
	writeJSON(w, http.StatusOK, response)
}

func (c *WithdrawalController) complete(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, commons.ErrorResponse[models.WithdrawalResponse]("method not allowed"))
		return
	}

	var req models.CompleteWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.WithdrawalResponse]("invalid request body", err.Error()))
		return
	}
	logRequest(r, req)

	response, err := c.approvals.Complete(r.Context(), req)
	if err != nil {
		status := actionErrorStatus(err, response.Message)
		logError(r, err, nil)
		writeJSON(w, status, response)
		return
	}

	logResponse(r, http.StatusOK, response.Message, start)
	writeJSON(w, http.StatusOK, response)
}

func actionErrorStatus(err error, message string) int {
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrStatusConflict):
		return http.StatusConflict
	case strings.HasPrefix(message, "Invalid"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
