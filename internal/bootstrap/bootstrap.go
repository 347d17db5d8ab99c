package bootstrap

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	plaidclient "github.com/autobooks/autobooks-backend/internal/client/plaid"
	"github.com/autobooks/autobooks-backend/internal/config"
	"github.com/autobooks/autobooks-backend/internal/crypto"
	"github.com/autobooks/autobooks-backend/pkg/logger"
)

type Bootstrap struct {
	Log         *slog.Logger
	DB          *pgxpool.Pool
	Plaid       *plaidclient.Adapter
	TokenCipher *crypto.TokenCipher
}

func Run(cfg *config.Config) (*Bootstrap, error) {
	var err error
	applicationCtx := context.Background()
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.NewStdoutHandler)

	if err = cfg.Validate(); err != nil {
		return bs, err
	}

	bs.DB, err = InitPostgres(applicationCtx, cfg.DatabaseURL)
	if err != nil {
		return bs, err
	}

	bs.Plaid = plaidclient.NewAdapter(cfg.PlaidClientID, cfg.PlaidSecret, cfg.PlaidEnvironment, cfg.PlaidWebhookURL)

	bs.TokenCipher, err = crypto.NewTokenCipher(cfg.TokenCipherKey)
	if err != nil {
		return bs, err
	}

	return bs, nil
}

func (bs *Bootstrap) Close() {
	if bs.DB != nil {
		bs.DB.Close()
	}
}
