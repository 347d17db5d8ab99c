package dto

import (
	"github.com/autobooks/autobooks-backend/internal/models"
)

// LinkedAccount is one external account successfully linked during exchange.
type LinkedAccount struct {
	AccountID         string `json:"account_id"`
	ExternalAccountID string `json:"external_account_id"`
	Name              string `json:"name"`
	Mask              string `json:"mask,omitempty"`
	LedgerAccountID   string `json:"ledger_account_id"`
}

// ExchangeOutcome is the registrar's result. Skipped lists external account
// ids that could not be linked (no default payment account of the required
// type); they are omitted from Linked, not reported as errors.
type ExchangeOutcome struct {
	ConnectionID    string
	InstitutionName string
	Linked          []LinkedAccount
	Skipped         []string
}

// AccountSyncCounts is the per-account imported/updated breakdown of a sync.
type AccountSyncCounts struct {
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
}

// SyncOutcome reports one sync run over a connection.
type SyncOutcome struct {
	ConnectionID    string
	InstitutionName string
	Total           int
	Imported        int
	Updated         int
	Accounts        map[string]AccountSyncCounts
}

// ConnectionSummary is a connection plus its account links, shaped for
// listing. The sealed access token never appears here.
type ConnectionSummary struct {
	Connection *models.BankConnection   `json:"connection"`
	Accounts   []*models.BankAccountLink `json:"accounts"`
}
