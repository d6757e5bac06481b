package router

import "net/http"

type UserRouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler)
}

type LedgerRouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler)
}

func New(
	userController UserRouteRegistrar,
	ledgerController LedgerRouteRegistrar,
	authMiddleware func(http.Handler) http.Handler,
) *http.ServeMux {
	mux := http.NewServeMux()

	if userController != nil {
		userController.RegisterRoutes(mux, authMiddleware)
	}
	if ledgerController != nil {
		ledgerController.RegisterRoutes(mux, authMiddleware)
	}

	return mux
}
