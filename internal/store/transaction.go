package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/autobooks/autobooks-backend/internal/errs"
	"github.com/autobooks/autobooks-backend/internal/models"
)

type transactionStore struct {
	db *pgxpool.Pool
}

func NewTransactionStore(db *pgxpool.Pool) *transactionStore {
	return &transactionStore{db: db}
}

// Exists reports whether the dedup key is already present. Callers use this
// only to classify imported-vs-updated; correctness of the write itself rests
// on the upsert in import_bank_transaction.
func (s *transactionStore) Exists(ctx context.Context, bankAccountID, externalID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`select exists(select 1 from bank_transactions where bank_account_id = $1 and external_transaction_id = $2)`,
		bankAccountID, externalID).Scan(&exists)
	if err != nil {
		return false, errs.NewDatabaseError("transaction.exists", err.Error())
	}
	return exists, nil
}

// Import upserts one transaction via the import_bank_transaction helper,
// which resolves conflicts on (bank_account_id, external_transaction_id)
// server-side. Safe to call concurrently for the same external transaction.
func (s *transactionStore) Import(ctx context.Context, tx *models.BankTransaction) error {
	location := map[string]string{}
	if tx.City != "" {
		location["city"] = tx.City
	}
	if tx.Region != "" {
		location["region"] = tx.Region
	}
	paymentMeta := map[string]string{}
	if tx.PaymentChannel != "" {
		paymentMeta["channel"] = tx.PaymentChannel
	}
	if tx.PaymentReference != "" {
		paymentMeta["reference"] = tx.PaymentReference
	}

	_, err := s.db.Exec(ctx,
		`select import_bank_transaction($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		tx.BankAccountID, tx.ExternalID, tx.Amount.String(), tx.Date,
		tx.Name, tx.MerchantName, tx.Pending,
		tx.CategoryID, tx.Categories, location, paymentMeta)
	if err != nil {
		return errs.NewDatabaseError("transaction.import", err.Error())
	}
	return nil
}

const transactionColumns = `t.id::text, t.bank_account_id::text, t.external_transaction_id,
	t.amount::text, t.date::text, t.name, coalesce(t.merchant_name, ''), t.pending,
	coalesce(t.category_id, ''), t.categories, t.ledger_account_id::text,
	t.created_at, t.updated_at`

func scanTransaction(row pgx.Row) (*models.BankTransaction, error) {
	var tx models.BankTransaction
	var amount string
	var ledgerAccountID *string
	err := row.Scan(&tx.ID, &tx.BankAccountID, &tx.ExternalID,
		&amount, &tx.Date, &tx.Name, &tx.MerchantName, &tx.Pending,
		&tx.CategoryID, &tx.Categories, &ledgerAccountID,
		&tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return nil, err
	}
	tx.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}
	if ledgerAccountID != nil {
		tx.LedgerAccountID = *ledgerAccountID
	}
	return &tx, nil
}

func (s *transactionStore) Get(ctx context.Context, transactionID string) (*models.BankTransaction, error) {
	row := s.db.QueryRow(ctx,
		`select `+transactionColumns+` from bank_transactions t where t.id = $1`, transactionID)
	tx, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NewNotFoundError("bank transaction not found")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("transaction.get", err.Error())
	}
	return tx, nil
}

// Match links a transaction to a ledger account via match_bank_transaction.
func (s *transactionStore) Match(ctx context.Context, transactionID, ledgerAccountID string) error {
	_, err := s.db.Exec(ctx,
		`select match_bank_transaction($1, $2)`,
		transactionID, ledgerAccountID)
	if err != nil {
		return errs.NewDatabaseError("transaction.match", err.Error())
	}
	return nil
}

// ListForWorkspace returns imported transactions for the workspace inside the
// inclusive [from, to] date window, newest first.
func (s *transactionStore) ListForWorkspace(ctx context.Context, workspaceID, from, to string) ([]*models.BankTransaction, error) {
	rows, err := s.db.Query(ctx,
		`select `+transactionColumns+`
		 from bank_transactions t
		 join bank_accounts a on a.id = t.bank_account_id
		 join bank_connections c on c.id = a.connection_id
		 where c.workspace_id = $1 and not a.deleted and not c.deleted
		   and t.date >= $2 and t.date <= $3
		 order by t.date desc`,
		workspaceID, from, to)
	if err != nil {
		return nil, errs.NewDatabaseError("transaction.list", err.Error())
	}
	defer rows.Close()

	var txs []*models.BankTransaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, errs.NewDatabaseError("transaction.list", err.Error())
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewDatabaseError("transaction.list", err.Error())
	}
	return txs, nil
}
