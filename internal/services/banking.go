package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/autobooks/autobooks-backend/internal/dto"
	"github.com/autobooks/autobooks-backend/internal/errs"
	"github.com/autobooks/autobooks-backend/internal/models"
	"github.com/autobooks/autobooks-backend/pkg/helpers"
	"github.com/autobooks/autobooks-backend/pkg/logger"
)

const (
	// UnknownInstitution is the placeholder used when the institution name
	// lookup fails; connection creation never aborts on display metadata.
	UnknownInstitution = "Unknown Institution"

	// DefaultCurrency is the base currency assumed when the provider omits
	// an ISO code.
	DefaultCurrency = "CAD"

	// syncLookbackDays is the fixed trailing window re-requested on every
	// sync. No cursor is kept between syncs; idempotence rests on the
	// (account link, external transaction id) dedup key.
	syncLookbackDays = 30
)

// --- Dependencies (minimal interfaces scoped to this service) ---

type workspaceBKStore interface {
	Get(ctx context.Context, workspaceID string) (*models.Workspace, error)
}

type ledgerBKStore interface {
	Get(ctx context.Context, accountID string) (*models.LedgerAccount, error)
	DefaultPaymentAccount(ctx context.Context, workspaceID, accountType string) (*models.LedgerAccount, error)
}

type bankBKStore interface {
	CreateConnection(ctx context.Context, conn *models.BankConnection) (string, error)
	GetConnection(ctx context.Context, connectionID string) (*models.BankConnection, error)
	ListConnections(ctx context.Context, workspaceID string) ([]*models.BankConnection, error)
	ListActiveConnections(ctx context.Context) ([]*models.BankConnection, error)
	LinkAccount(ctx context.Context, link *models.BankAccountLink) (string, error)
	GetAccount(ctx context.Context, accountID string) (*models.BankAccountLink, error)
	ListAccounts(ctx context.Context, connectionID string) ([]*models.BankAccountLink, error)
	UpdateStatus(ctx context.Context, connectionID, status, lastError string, syncedAt time.Time) error
	SoftDeleteConnection(ctx context.Context, connectionID string) error
}

type transactionBKStore interface {
	Exists(ctx context.Context, bankAccountID, externalID string) (bool, error)
	Import(ctx context.Context, tx *models.BankTransaction) error
	Get(ctx context.Context, transactionID string) (*models.BankTransaction, error)
	Match(ctx context.Context, transactionID, ledgerAccountID string) error
}

// plaidBKClient is the provider adapter surface used by this service.
type plaidBKClient interface {
	CreateLinkToken(ctx context.Context, uid string) (string, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (dto.ExchangeResult, error)
	GetInstitutionName(ctx context.Context, institutionID string) (string, error)
	GetAccounts(ctx context.Context, accessToken string) ([]dto.ExternalAccount, error)
	GetTransactions(ctx context.Context, accessToken, from, to string) ([]dto.ExternalTransaction, error)
}

type tokenCipher interface {
	Seal(plaintext string) (string, error)
	Open(ciphertext string) (string, error)
}

type bankingService struct {
	plaid      plaidBKClient
	cipher     tokenCipher
	workspaces workspaceBKStore
	ledgers    ledgerBKStore
	banks      bankBKStore
	txs        transactionBKStore
	clockNow   func() time.Time
}

func NewBankingService(plaid plaidBKClient, cipher tokenCipher, workspaces workspaceBKStore, ledgers ledgerBKStore, banks bankBKStore, txs transactionBKStore) *bankingService {
	return &bankingService{
		plaid:      plaid,
		cipher:     cipher,
		workspaces: workspaces,
		ledgers:    ledgers,
		banks:      banks,
		txs:        txs,
		clockNow:   time.Now,
	}
}

// requireWorkspaceOwner re-verifies ownership server-side on every call.
// A client-supplied workspace id is never trusted as proof of authorization.
func (s *bankingService) requireWorkspaceOwner(ctx context.Context, uid, workspaceID string) (*models.Workspace, error) {
	ws, err := s.workspaces.Get(ctx, workspaceID)
	if _, ok := err.(*errs.NotFoundError); ok {
		// absent and foreign workspaces look the same to the caller
		return nil, errs.NewAccessDeniedError("workspace does not belong to caller")
	}
	if err != nil {
		return nil, err
	}
	if ws.UserID != uid {
		return nil, errs.NewAccessDeniedError("workspace does not belong to caller")
	}
	return ws, nil
}

// CreateLinkToken issues a provider link token scoped to the caller. No
// persistent state is written.
func (s *bankingService) CreateLinkToken(ctx context.Context, uid, workspaceID string) (string, error) {
	if _, err := s.requireWorkspaceOwner(ctx, uid, workspaceID); err != nil {
		return "", err
	}

	linkToken, err := s.plaid.CreateLinkToken(ctx, uid)
	if err != nil {
		return "", errs.NewUpstreamError("plaid", err.Error())
	}
	return linkToken, nil
}

// ExchangePublicToken trades the client-obtained public token for a durable
// access token, registers the connection, and links each external account to
// a ledger account. Accounts with no satisfiable default payment account are
// skipped, not failed.
func (s *bankingService) ExchangePublicToken(ctx context.Context, uid, workspaceID, publicToken string, meta dto.LinkMetadata) (dto.ExchangeOutcome, error) {
	outcome := dto.ExchangeOutcome{}
	log := logger.FromContext(ctx)

	ws, err := s.requireWorkspaceOwner(ctx, uid, workspaceID)
	if err != nil {
		return outcome, err
	}

	res, err := s.plaid.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		// also hit when a consumed public token is exchanged twice
		return outcome, errs.NewUpstreamError("plaid", err.Error())
	}

	institutionID := ""
	if meta.Institution != nil {
		institutionID = meta.Institution.InstitutionID
	}

	institutionName := UnknownInstitution
	if institutionID != "" {
		name, err := s.plaid.GetInstitutionName(ctx, institutionID)
		if err != nil {
			log.Warn("institution name lookup failed, using placeholder", "institution_id", institutionID, "error", err)
		} else if name != "" {
			institutionName = name
		}
	}

	sealed, err := s.cipher.Seal(res.AccessToken)
	if err != nil {
		return outcome, err
	}

	connectionID, err := s.banks.CreateConnection(ctx, &models.BankConnection{
		WorkspaceID:     ws.ID,
		ItemID:          res.ItemID,
		AccessToken:     sealed,
		InstitutionID:   institutionID,
		InstitutionName: institutionName,
		Status:          models.ConnectionStatusActive,
	})
	if err != nil {
		return outcome, err
	}
	outcome.ConnectionID = connectionID
	outcome.InstitutionName = institutionName

	accounts, err := s.plaid.GetAccounts(ctx, res.AccessToken)
	if err != nil {
		return outcome, errs.NewUpstreamError("plaid", err.Error())
	}

	for _, acc := range accounts {
		ledger, err := s.ledgers.DefaultPaymentAccount(ctx, ws.ID, classifyAccount(acc.Type))
		if err != nil {
			// per-item skip, the remaining accounts still link
			log.Warn("skipping external account without a default payment ledger account",
				"external_account_id", acc.ExternalID, "account_type", acc.Type, "error", err)
			outcome.Skipped = append(outcome.Skipped, acc.ExternalID)
			continue
		}

		link := &models.BankAccountLink{
			ConnectionID:      connectionID,
			ExternalAccountID: acc.ExternalID,
			Name:              acc.Name,
			OfficialName:      acc.OfficialName,
			Subtype:           acc.Subtype,
			Mask:              acc.Mask,
			LedgerAccountID:   ledger.ID,
			OpeningBalance:    decimal.NewFromFloat(helpers.Value(acc.CurrentBalance)),
			Currency:          helpers.ValueOr(acc.Currency, ws.Currency),
		}
		if link.Currency == "" {
			link.Currency = DefaultCurrency
		}

		accountID, err := s.banks.LinkAccount(ctx, link)
		if err != nil {
			log.Warn("failed to link external account, skipping",
				"external_account_id", acc.ExternalID, "error", err)
			outcome.Skipped = append(outcome.Skipped, acc.ExternalID)
			continue
		}

		outcome.Linked = append(outcome.Linked, dto.LinkedAccount{
			AccountID:         accountID,
			ExternalAccountID: acc.ExternalID,
			Name:              acc.Name,
			Mask:              acc.Mask,
			LedgerAccountID:   ledger.ID,
		})
	}

	log.Info("bank connection registered",
		"connection_id", connectionID,
		"institution", institutionName,
		"linked_accounts", len(outcome.Linked),
		"skipped_accounts", len(outcome.Skipped))
	return outcome, nil
}

// classifyAccount maps a provider account type onto the ledger side the
// linked account posts to: credit and loan accounts are liabilities,
// everything else is an asset.
func classifyAccount(providerType string) string {
	switch providerType {
	case "credit", "loan":
		return models.AccountTypeLiability
	default:
		return models.AccountTypeAsset
	}
}

// SyncTransactions re-imports the trailing window of provider transactions
// for one connection. Per-transaction failures are logged and skipped; a
// provider or procedural failure marks the connection errored.
func (s *bankingService) SyncTransactions(ctx context.Context, uid, connectionID string) (dto.SyncOutcome, error) {
	outcome := dto.SyncOutcome{ConnectionID: connectionID}

	conn, err := s.banks.GetConnection(ctx, connectionID)
	if err != nil {
		return outcome, err
	}
	ws, err := s.workspaces.Get(ctx, conn.WorkspaceID)
	if err != nil {
		return outcome, err
	}
	if ws.UserID != uid {
		return outcome, errs.NewAccessDeniedError("connection does not belong to caller")
	}

	return s.syncConnection(ctx, conn)
}

// SyncAllActive syncs every live connection independently; one connection's
// failure never stops the rest. Used by the scheduled worker.
func (s *bankingService) SyncAllActive(ctx context.Context) error {
	log := logger.FromContext(ctx)

	conns, err := s.banks.ListActiveConnections(ctx)
	if err != nil {
		return err
	}

	log.Info("scheduled sync started", "connection_count", len(conns))
	for _, conn := range conns {
		if _, err := s.syncConnection(ctx, conn); err != nil {
			log.Warn("scheduled sync failed for connection", "connection_id", conn.ID, "error", err)
		}
	}
	log.Info("scheduled sync completed")
	return nil
}

func (s *bankingService) syncConnection(ctx context.Context, conn *models.BankConnection) (dto.SyncOutcome, error) {
	outcome := dto.SyncOutcome{
		ConnectionID:    conn.ID,
		InstitutionName: conn.InstitutionName,
		Accounts:        map[string]dto.AccountSyncCounts{},
	}

	links, err := s.banks.ListAccounts(ctx, conn.ID)
	if err != nil {
		return outcome, err
	}
	if len(links) == 0 {
		return outcome, errs.NewNotFoundError("connection has no linked accounts")
	}

	result, err := s.runSync(ctx, conn, links, &outcome)
	if err != nil {
		// record the failure on the connection so a connections list can
		// surface staleness without re-invoking the provider
		if statusErr := s.banks.UpdateStatus(ctx, conn.ID, models.ConnectionStatusError, err.Error(), time.Time{}); statusErr != nil {
			logger.FromContext(ctx).Error("failed to record sync error on connection",
				"connection_id", conn.ID, "error", statusErr)
		}
		if _, ok := err.(*errs.UpstreamError); ok {
			return outcome, err
		}
		return outcome, errs.NewUpstreamError("sync", err.Error())
	}
	return result, nil
}

func (s *bankingService) runSync(ctx context.Context, conn *models.BankConnection, links []*models.BankAccountLink, outcome *dto.SyncOutcome) (dto.SyncOutcome, error) {
	log := logger.FromContext(ctx)

	accessToken, err := s.cipher.Open(conn.AccessToken)
	if err != nil {
		return *outcome, err
	}

	now := s.clockNow()
	from := now.AddDate(0, 0, -syncLookbackDays).Format(time.DateOnly)
	to := now.Format(time.DateOnly)

	txs, err := s.plaid.GetTransactions(ctx, accessToken, from, to)
	if err != nil {
		return *outcome, errs.NewUpstreamError("plaid", err.Error())
	}

	byExternalID := make(map[string]*models.BankAccountLink, len(links))
	for _, link := range links {
		byExternalID[link.ExternalAccountID] = link
	}

	for _, tx := range txs {
		link, ok := byExternalID[tx.ExternalAccountID]
		if !ok {
			// provider returned an account we never linked
			log.Debug("discarding transaction for unlinked account",
				"external_account_id", tx.ExternalAccountID)
			continue
		}
		outcome.Total++

		// classification only; the write below upserts either way, so a
		// race between this check and the write cannot duplicate rows
		existed, err := s.txs.Exists(ctx, link.ID, tx.ExternalID)
		if err != nil {
			log.Warn("transaction pre-check failed, skipping",
				"external_transaction_id", tx.ExternalID, "error", err)
			continue
		}

		err = s.txs.Import(ctx, &models.BankTransaction{
			BankAccountID:    link.ID,
			ExternalID:       tx.ExternalID,
			Amount:           decimal.NewFromFloat(tx.Amount),
			Date:             tx.Date,
			Name:             tx.Name,
			MerchantName:     tx.MerchantName,
			Pending:          tx.Pending,
			CategoryID:       tx.CategoryID,
			Categories:       tx.Categories,
			City:             tx.City,
			Region:           tx.Region,
			PaymentChannel:   tx.PaymentChannel,
			PaymentReference: tx.PaymentReference,
		})
		if err != nil {
			log.Warn("transaction import failed, skipping",
				"external_transaction_id", tx.ExternalID, "error", err)
			continue
		}

		counts := outcome.Accounts[link.ID]
		if existed {
			counts.Updated++
			outcome.Updated++
		} else {
			counts.Imported++
			outcome.Imported++
		}
		outcome.Accounts[link.ID] = counts
	}

	if err := s.banks.UpdateStatus(ctx, conn.ID, models.ConnectionStatusActive, "", now); err != nil {
		return *outcome, err
	}

	log.Info("transaction sync completed",
		"connection_id", conn.ID,
		"total", outcome.Total,
		"imported", outcome.Imported,
		"updated", outcome.Updated)
	return *outcome, nil
}

// ListConnections returns the caller's connections with their account links.
func (s *bankingService) ListConnections(ctx context.Context, uid, workspaceID string) ([]dto.ConnectionSummary, error) {
	if _, err := s.requireWorkspaceOwner(ctx, uid, workspaceID); err != nil {
		return nil, err
	}

	conns, err := s.banks.ListConnections(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.ConnectionSummary, 0, len(conns))
	for _, conn := range conns {
		accounts, err := s.banks.ListAccounts(ctx, conn.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, dto.ConnectionSummary{
			Connection: conn,
			Accounts:   accounts,
		})
	}
	return summaries, nil
}

// RemoveConnection soft-deletes a connection after verifying ownership.
func (s *bankingService) RemoveConnection(ctx context.Context, uid, connectionID string) error {
	conn, err := s.banks.GetConnection(ctx, connectionID)
	if err != nil {
		return err
	}
	ws, err := s.workspaces.Get(ctx, conn.WorkspaceID)
	if err != nil {
		return err
	}
	if ws.UserID != uid {
		return errs.NewAccessDeniedError("connection does not belong to caller")
	}

	if err := s.banks.SoftDeleteConnection(ctx, connectionID); err != nil {
		return err
	}

	logger.FromContext(ctx).Info("bank connection removed", "connection_id", connectionID)
	return nil
}

// MatchTransaction links an imported transaction to a ledger account in the
// same workspace.
func (s *bankingService) MatchTransaction(ctx context.Context, uid, transactionID, ledgerAccountID string) error {
	tx, err := s.txs.Get(ctx, transactionID)
	if err != nil {
		return err
	}
	account, err := s.banks.GetAccount(ctx, tx.BankAccountID)
	if err != nil {
		return err
	}
	conn, err := s.banks.GetConnection(ctx, account.ConnectionID)
	if err != nil {
		return err
	}
	ws, err := s.workspaces.Get(ctx, conn.WorkspaceID)
	if err != nil {
		return err
	}
	if ws.UserID != uid {
		return errs.NewAccessDeniedError("transaction does not belong to caller")
	}

	ledger, err := s.ledgers.Get(ctx, ledgerAccountID)
	if err != nil {
		return err
	}
	if ledger.WorkspaceID != ws.ID {
		return errs.NewNotFoundError("ledger account not found")
	}

	if err := s.txs.Match(ctx, transactionID, ledgerAccountID); err != nil {
		return err
	}

	logger.FromContext(ctx).Info("bank transaction matched",
		"transaction_id", transactionID, "ledger_account_id", ledgerAccountID)
	return nil
}
