package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/autobooks/autobooks-backend/internal/errs"
	"github.com/autobooks/autobooks-backend/internal/models"
)

type ledgerStore struct {
	db *pgxpool.Pool
}

func NewLedgerStore(db *pgxpool.Pool) *ledgerStore {
	return &ledgerStore{db: db}
}

const ledgerColumns = `id::text, workspace_id::text, name, type, payment_account`

func scanLedgerAccount(row pgx.Row) (*models.LedgerAccount, error) {
	var acc models.LedgerAccount
	err := row.Scan(&acc.ID, &acc.WorkspaceID, &acc.Name, &acc.Type, &acc.PaymentAccount)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func (s *ledgerStore) Get(ctx context.Context, accountID string) (*models.LedgerAccount, error) {
	row := s.db.QueryRow(ctx,
		`select `+ledgerColumns+` from ledger_accounts where id = $1 and not deleted`, accountID)
	acc, err := scanLedgerAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NewNotFoundError("ledger account not found")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("ledger.get", err.Error())
	}
	return acc, nil
}

// DefaultPaymentAccount returns the lexicographically-first payment-flagged
// account of the given type in the workspace. The deterministic name
// tie-break is the selection heuristic for newly linked bank accounts.
func (s *ledgerStore) DefaultPaymentAccount(ctx context.Context, workspaceID, accountType string) (*models.LedgerAccount, error) {
	row := s.db.QueryRow(ctx,
		`select `+ledgerColumns+` from ledger_accounts
		 where workspace_id = $1 and type = $2 and payment_account and not deleted
		 order by name limit 1`,
		workspaceID, accountType)
	acc, err := scanLedgerAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NewNotFoundError("no default payment account for type " + accountType)
	}
	if err != nil {
		return nil, errs.NewDatabaseError("ledger.default_payment_account", err.Error())
	}
	return acc, nil
}
