package router

import "net/http"

type WithdrawalRouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler)
}

type ReconcileRouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler)
}

type ReportRouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler)
}

func New(
	withdrawalController WithdrawalRouteRegistrar,
	reconcileController ReconcileRouteRegistrar,
	reportController ReportRouteRegistrar,
	authMiddleware func(http.Handler) http.Handler,
) *http.ServeMux {
	mux := http.NewServeMux()
	registerSwaggerRoutes(mux)

	if withdrawalController != nil {
		withdrawalController.RegisterRoutes(mux, authMiddleware)
	}
	if reconcileController != nil {
		reconcileController.RegisterRoutes(mux, authMiddleware)
	}
	if reportController != nil {
		reportController.RegisterRoutes(mux, authMiddleware)
	}

	return mux
}
