package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ConnectionStatusActive = "active"
	ConnectionStatusError  = "error"
)

// BankConnection is a durable link to one financial institution via the
// banking-data provider. AccessToken holds the sealed provider token and
// must never be serialized to a client.
type BankConnection struct {
	ID              string     `json:"id"`
	WorkspaceID     string     `json:"workspaceId"`
	ItemID          string     `json:"itemId"`
	AccessToken     string     `json:"-"`
	InstitutionID   string     `json:"institutionId"`
	InstitutionName string     `json:"institutionName"`
	Status          string     `json:"status"` // "active" or "error"
	LastError       string     `json:"lastError,omitempty"`
	LastSyncedAt    *time.Time `json:"lastSyncedAt,omitempty"`
	Deleted         bool       `json:"-"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// BankAccountLink maps one external account of a connection to a ledger account.
type BankAccountLink struct {
	ID                string          `json:"id"`
	ConnectionID      string          `json:"connectionId"`
	ExternalAccountID string          `json:"externalAccountId"`
	Name              string          `json:"name"`
	OfficialName      string          `json:"officialName,omitempty"`
	Subtype           string          `json:"subtype,omitempty"`
	Mask              string          `json:"mask,omitempty"`
	LedgerAccountID   string          `json:"ledgerAccountId"`
	OpeningBalance    decimal.Decimal `json:"openingBalance"`
	Currency          string          `json:"currency"`
	Deleted           bool            `json:"-"`
	CreatedAt         time.Time       `json:"createdAt"`
}
