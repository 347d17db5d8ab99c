package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/robfig/cron/v3"

	"github.com/autobooks/autobooks-backend/internal/bootstrap"
	"github.com/autobooks/autobooks-backend/internal/config"
	"github.com/autobooks/autobooks-backend/internal/services"
	"github.com/autobooks/autobooks-backend/internal/store"
	"github.com/autobooks/autobooks-backend/pkg/logger"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

// The sync worker re-imports every live connection's trailing transaction
// window on a schedule. Connections are disjoint units of work, so runs need
// no coordination with the API's on-demand syncs.
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
	bserv := services.NewBankingService(bs.Plaid, bs.TokenCipher, wstore, lstore, bstore, tstore)

	c := cron.New()
	_, err = c.AddFunc(cfg.SyncSchedule, func() {
		ctx := logger.ToContext(context.Background(), bs.Log)
		if err := bserv.SyncAllActive(ctx); err != nil {
			bs.Log.Error("scheduled sync run failed", "error", err)
		}
	})
	exitOnError("invalid sync schedule", err, bs.Log)

	bs.Log.Info("sync worker started", "schedule", cfg.SyncSchedule)
	c.Run()
}
