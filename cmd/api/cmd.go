package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/autobooks/autobooks-backend/internal/bootstrap"
	"github.com/autobooks/autobooks-backend/internal/config"
	"github.com/autobooks/autobooks-backend/internal/handlers"
	"github.com/autobooks/autobooks-backend/internal/middleware"
	"github.com/autobooks/autobooks-backend/internal/response"
	"github.com/autobooks/autobooks-backend/internal/router"
	"github.com/autobooks/autobooks-backend/internal/services"
	"github.com/autobooks/autobooks-backend/internal/store"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	// stores
	wstore := store.NewWorkspaceStore(bs.DB)
	lstore := store.NewLedgerStore(bs.DB)
	bstore := store.NewBankStore(bs.DB)
	tstore := store.NewTransactionStore(bs.DB)

	// services
	wserv := services.NewWorkspaceService(wstore)
	bserv := services.NewBankingService(bs.Plaid, bs.TokenCipher, wstore, lstore, bstore, tstore)
	rserv := services.NewReportsService(wstore, tstore)

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.WorkspaceSvc = wserv
	deps.BankingSvc = bserv
	deps.ReportsSvc = rserv

	// router
	auth := middleware.NewMiddleware(cfg.SupabaseJWTSecret)
	r := router.NewRouter(deps, auth)
	err = http.ListenAndServe(":"+cfg.Port, r)
	exitOnError("server start failed", err, bs.Log)
}
