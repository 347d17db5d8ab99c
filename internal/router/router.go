package router

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/autobooks/autobooks-backend/internal/handlers"
	"github.com/autobooks/autobooks-backend/internal/middleware"
)

func NewRouter(deps *handlers.Deps, auth *middleware.Middleware) chi.Router {
	r := chi.NewRouter()

	lm := middleware.NewLoggerMiddleware(deps.Log)
	r.Use(chimiddleware.RequestID)
	r.Use(lm.LoggerMiddleware)
	r.Use(middleware.CORS)
	r.Use(auth.Auth)

	wsh := handlers.NewWorkspaceHandlers(deps)
	bh := handlers.NewBankingHandlers(deps)
	rh := handlers.NewReportsHandlers(deps)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/workspaces", wsh.WorkspaceRoutes())
		r.Mount("/", bh.BankingRoutes())
		r.Mount("/reports", rh.ReportsRoutes())
	})
	return r
}
