package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/api-sage/payout-reconciler/src/internal/adapter/http/models"
	"github.com/api-sage/payout-reconciler/src/internal/commons"
)

type ReconcileService interface {
	Run(ctx context.Context) (commons.Response[models.ReconcileSummary], error)
}

type ReconcileController struct {
	service ReconcileService
}

func NewReconcileController(service ReconcileService) *ReconcileController {
	return &ReconcileController{service: service}
}

func (c *ReconcileController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	handler := http.HandlerFunc(c.run)
	if authMiddleware != nil {
		mux.Handle("/reconcile", authMiddleware(handler))
		return
	}
	mux.Handle("/reconcile", handler)
}

func (c *ReconcileController) run(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, commons.ErrorResponse[models.ReconcileSummary]("method not allowed"))
		return
	}
	logRequest(r, nil)

	response, err := c.service.Run(r.Context())
	if err != nil {
		logError(r, err, nil)
		writeJSON(w, http.StatusInternalServerError, response)
		return
	}

	logResponse(r, http.StatusOK, response.Message, start)
	writeJSON(w, http.StatusOK, response)
}
