package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankTransaction is one imported provider transaction. It is unique per
// (BankAccountID, ExternalID); re-importing the same external transaction
// updates the row instead of duplicating it.
type BankTransaction struct {
	ID               string          `json:"id"`
	BankAccountID    string          `json:"bankAccountId"`
	ExternalID       string          `json:"externalId"`
	Amount           decimal.Decimal `json:"amount"`
	Date             string          `json:"date"` // YYYY-MM-DD as the provider returns
	Name             string          `json:"name"`
	MerchantName     string          `json:"merchantName,omitempty"`
	Pending          bool            `json:"pending"`
	CategoryID       string          `json:"categoryId,omitempty"`
	Categories       []string        `json:"categories,omitempty"`
	City             string          `json:"city,omitempty"`
	Region           string          `json:"region,omitempty"`
	PaymentChannel   string          `json:"paymentChannel,omitempty"`
	PaymentReference string          `json:"paymentReference,omitempty"`
	LedgerAccountID  string          `json:"ledgerAccountId,omitempty"` // set by matching
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}
