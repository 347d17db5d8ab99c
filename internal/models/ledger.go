package models

const (
	AccountTypeAsset     = "asset"
	AccountTypeLiability = "liability"
	AccountTypeEquity    = "equity"
	AccountTypeIncome    = "income"
	AccountTypeExpense   = "expense"
)

// LedgerAccount is one chart-of-accounts entry within a workspace.
// PaymentAccount marks it eligible as a default account for linked banks.
type LedgerAccount struct {
	ID             string `json:"id"`
	WorkspaceID    string `json:"workspaceId"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	PaymentAccount bool   `json:"paymentAccount"`
}
