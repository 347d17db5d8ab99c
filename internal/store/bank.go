package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/autobooks/autobooks-backend/internal/errs"
	"github.com/autobooks/autobooks-backend/internal/models"
)

type bankStore struct {
	db *pgxpool.Pool
}

func NewBankStore(db *pgxpool.Pool) *bankStore {
	return &bankStore{db: db}
}

const connectionColumns = `id::text, workspace_id::text, item_id, access_token,
	institution_id, institution_name, status, coalesce(last_error, ''),
	last_synced_at, deleted, created_at, updated_at`

func scanConnection(row pgx.Row) (*models.BankConnection, error) {
	var c models.BankConnection
	err := row.Scan(&c.ID, &c.WorkspaceID, &c.ItemID, &c.AccessToken,
		&c.InstitutionID, &c.InstitutionName, &c.Status, &c.LastError,
		&c.LastSyncedAt, &c.Deleted, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateConnection goes through the create_bank_connection helper so the
// insert is one atomic server-side write.
func (s *bankStore) CreateConnection(ctx context.Context, conn *models.BankConnection) (string, error) {
	var id string
	err := s.db.QueryRow(ctx,
		`select create_bank_connection($1, $2, $3, $4, $5)::text`,
		conn.WorkspaceID, conn.ItemID, conn.AccessToken, conn.InstitutionID, conn.InstitutionName,
	).Scan(&id)
	if err != nil {
		return "", errs.NewDatabaseError("bank.create_connection", err.Error())
	}
	return id, nil
}

// GetConnection only returns live rows; soft-deleted connections read as absent.
func (s *bankStore) GetConnection(ctx context.Context, connectionID string) (*models.BankConnection, error) {
	row := s.db.QueryRow(ctx,
		`select `+connectionColumns+` from bank_connections where id = $1 and not deleted`,
		connectionID)
	conn, err := scanConnection(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NewNotFoundError("bank connection not found")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("bank.get_connection", err.Error())
	}
	return conn, nil
}

func (s *bankStore) ListConnections(ctx context.Context, workspaceID string) ([]*models.BankConnection, error) {
	return s.listConnections(ctx,
		`select `+connectionColumns+` from bank_connections where workspace_id = $1 and not deleted order by created_at`,
		workspaceID)
}

// ListActiveConnections feeds the scheduled sync worker.
func (s *bankStore) ListActiveConnections(ctx context.Context) ([]*models.BankConnection, error) {
	return s.listConnections(ctx,
		`select `+connectionColumns+` from bank_connections where not deleted order by created_at`)
}

func (s *bankStore) listConnections(ctx context.Context, query string, args ...any) ([]*models.BankConnection, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errs.NewDatabaseError("bank.list_connections", err.Error())
	}
	defer rows.Close()

	var conns []*models.BankConnection
	for rows.Next() {
		conn, err := scanConnection(rows)
		if err != nil {
			return nil, errs.NewDatabaseError("bank.list_connections", err.Error())
		}
		conns = append(conns, conn)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewDatabaseError("bank.list_connections", err.Error())
	}
	return conns, nil
}

const accountColumns = `id::text, connection_id::text, external_account_id, name,
	coalesce(official_name, ''), coalesce(subtype, ''), coalesce(mask, ''),
	ledger_account_id::text, opening_balance::text, currency, deleted, created_at`

func scanAccount(row pgx.Row) (*models.BankAccountLink, error) {
	var a models.BankAccountLink
	var balance string
	err := row.Scan(&a.ID, &a.ConnectionID, &a.ExternalAccountID, &a.Name,
		&a.OfficialName, &a.Subtype, &a.Mask,
		&a.LedgerAccountID, &balance, &a.Currency, &a.Deleted, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.OpeningBalance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// LinkAccount persists one account link through the link_bank_account helper.
func (s *bankStore) LinkAccount(ctx context.Context, link *models.BankAccountLink) (string, error) {
	var id string
	err := s.db.QueryRow(ctx,
		`select link_bank_account($1, $2, $3, $4, $5, $6, $7, $8, $9)::text`,
		link.ConnectionID, link.ExternalAccountID, link.Name, link.OfficialName,
		link.Subtype, link.Mask, link.LedgerAccountID,
		link.OpeningBalance.String(), link.Currency,
	).Scan(&id)
	if err != nil {
		return "", errs.NewDatabaseError("bank.link_account", err.Error())
	}
	return id, nil
}

func (s *bankStore) GetAccount(ctx context.Context, accountID string) (*models.BankAccountLink, error) {
	row := s.db.QueryRow(ctx,
		`select `+accountColumns+` from bank_accounts where id = $1 and not deleted`, accountID)
	acc, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NewNotFoundError("bank account not found")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("bank.get_account", err.Error())
	}
	return acc, nil
}

func (s *bankStore) ListAccounts(ctx context.Context, connectionID string) ([]*models.BankAccountLink, error) {
	rows, err := s.db.Query(ctx,
		`select `+accountColumns+` from bank_accounts where connection_id = $1 and not deleted order by created_at`,
		connectionID)
	if err != nil {
		return nil, errs.NewDatabaseError("bank.list_accounts", err.Error())
	}
	defer rows.Close()

	var accounts []*models.BankAccountLink
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, errs.NewDatabaseError("bank.list_accounts", err.Error())
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewDatabaseError("bank.list_accounts", err.Error())
	}
	return accounts, nil
}

// UpdateStatus records the outcome of a sync attempt on the connection row.
// A zero syncedAt leaves last_synced_at untouched (failed attempts keep the
// previous successful timestamp).
func (s *bankStore) UpdateStatus(ctx context.Context, connectionID, status, lastError string, syncedAt time.Time) error {
	var ts *time.Time
	if !syncedAt.IsZero() {
		ts = &syncedAt
	}
	_, err := s.db.Exec(ctx,
		`select update_bank_connection_status($1, $2, $3, $4)`,
		connectionID, status, lastError, ts)
	if err != nil {
		return errs.NewDatabaseError("bank.update_status", err.Error())
	}
	return nil
}

func (s *bankStore) SoftDeleteConnection(ctx context.Context, connectionID string) error {
	tag, err := s.db.Exec(ctx,
		`update bank_connections set deleted = true, updated_at = now() where id = $1 and not deleted`,
		connectionID)
	if err != nil {
		return errs.NewDatabaseError("bank.soft_delete", err.Error())
	}
	if tag.RowsAffected() == 0 {
		return errs.NewNotFoundError("bank connection not found")
	}
	return nil
}
