package dto

// ExchangeResult is the outcome of a public-token exchange, decoupled from
// the provider SDK's wire schema.
type ExchangeResult struct {
	ItemID      string
	AccessToken string
}

// ExternalAccount is one account the provider reports for an item.
type ExternalAccount struct {
	ExternalID     string
	Name           string
	OfficialName   string
	Type           string // provider account type: depository, credit, loan, investment...
	Subtype        string
	Mask           string
	CurrentBalance *float64
	Currency       *string // ISO code, nil when the provider omits it
}

// ExternalTransaction is one transaction from a windowed provider fetch.
type ExternalTransaction struct {
	ExternalID        string
	ExternalAccountID string
	Amount            float64
	Date              string
	Name              string
	MerchantName      string
	Pending           bool
	CategoryID        string
	Categories        []string
	City              string
	Region            string
	PaymentChannel    string
	PaymentReference  string
}

// LinkMetadata is the provider-supplied metadata the client link widget
// hands back on success.
type LinkMetadata struct {
	Institution *LinkInstitution `json:"institution,omitempty"`
}

type LinkInstitution struct {
	InstitutionID string `json:"institution_id"`
	Name          string `json:"name"`
}

type PlaidEnvironment string

const (
	PlaidSandbox     PlaidEnvironment = "sandbox"
	PlaidDevelopment PlaidEnvironment = "development"
	PlaidProduction  PlaidEnvironment = "production"
)
