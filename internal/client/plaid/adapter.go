package plaidclient

import (
	"context"

	"github.com/plaid/plaid-go/v24/plaid"

	"github.com/autobooks/autobooks-backend/internal/dto"
)

var linkCountryCodes = []plaid.CountryCode{
	plaid.COUNTRYCODE_CA,
	plaid.COUNTRYCODE_US,
}

type Adapter struct {
	client     *plaid.APIClient
	webhookURL string
}

func NewAdapter(clientID, secret string, env dto.PlaidEnvironment, webhookURL string) *Adapter {
	cfg := plaid.NewConfiguration()
	cfg.AddDefaultHeader("PLAID-CLIENT-ID", clientID)
	cfg.AddDefaultHeader("PLAID-SECRET", secret)
	cfg.UseEnvironment(toPlaidEnv(env))

	return &Adapter{
		client:     plaid.NewAPIClient(cfg),
		webhookURL: webhookURL,
	}
}

func (a *Adapter) CreateLinkToken(ctx context.Context, uid string) (string, error) {
	req := plaid.NewLinkTokenCreateRequest(
		"AutoBooks",
		"en",
		linkCountryCodes,
		plaid.LinkTokenCreateRequestUser{ClientUserId: uid},
	)
	req.SetProducts([]plaid.Products{plaid.PRODUCTS_TRANSACTIONS})
	if a.webhookURL != "" {
		req.SetWebhook(a.webhookURL)
	}

	resp, _, err := a.client.PlaidApi.LinkTokenCreate(ctx).LinkTokenCreateRequest(*req).Execute()
	if err != nil {
		return "", err
	}
	return resp.GetLinkToken(), nil
}

// ExchangePublicToken trades a one-time public token for a durable access
// token. A repeated exchange of an already-consumed token fails here and is
// surfaced to the caller, never retried.
func (a *Adapter) ExchangePublicToken(ctx context.Context, publicToken string) (dto.ExchangeResult, error) {
	req := plaid.NewItemPublicTokenExchangeRequest(publicToken)
	resp, _, err := a.client.PlaidApi.ItemPublicTokenExchange(ctx).ItemPublicTokenExchangeRequest(*req).Execute()
	if err != nil {
		return dto.ExchangeResult{}, err
	}
	return dto.ExchangeResult{
		ItemID:      resp.GetItemId(),
		AccessToken: resp.GetAccessToken(),
	}, nil
}

func (a *Adapter) GetInstitutionName(ctx context.Context, institutionID string) (string, error) {
	req := plaid.NewInstitutionsGetByIdRequest(institutionID, linkCountryCodes)
	resp, _, err := a.client.PlaidApi.InstitutionsGetById(ctx).InstitutionsGetByIdRequest(*req).Execute()
	if err != nil {
		return "", err
	}
	inst := resp.GetInstitution()
	return inst.GetName(), nil
}

func (a *Adapter) GetAccounts(ctx context.Context, accessToken string) ([]dto.ExternalAccount, error) {
	req := plaid.NewAccountsGetRequest(accessToken)
	resp, _, err := a.client.PlaidApi.AccountsGet(ctx).AccountsGetRequest(*req).Execute()
	if err != nil {
		return nil, err
	}

	accounts := make([]dto.ExternalAccount, 0, len(resp.GetAccounts()))
	for _, acc := range resp.GetAccounts() {
		balances := acc.GetBalances()
		out := dto.ExternalAccount{
			ExternalID:   acc.GetAccountId(),
			Name:         acc.GetName(),
			OfficialName: acc.GetOfficialName(),
			Type:         string(acc.GetType()),
			Subtype:      string(acc.GetSubtype()),
			Mask:         acc.GetMask(),
		}
		if balances.Current.IsSet() && balances.Current.Get() != nil {
			v := *balances.Current.Get()
			out.CurrentBalance = &v
		}
		if balances.IsoCurrencyCode.IsSet() && balances.IsoCurrencyCode.Get() != nil {
			v := *balances.IsoCurrencyCode.Get()
			out.Currency = &v
		}
		accounts = append(accounts, out)
	}
	return accounts, nil
}

// GetTransactions pulls every transaction in the [from, to] date window,
// following the provider's offset paging until the reported total is reached.
func (a *Adapter) GetTransactions(ctx context.Context, accessToken, from, to string) ([]dto.ExternalTransaction, error) {
	var all []dto.ExternalTransaction

	for {
		req := plaid.NewTransactionsGetRequest(accessToken, from, to)
		opts := plaid.NewTransactionsGetRequestOptions()
		opts.SetCount(500)
		opts.SetOffset(int32(len(all)))
		req.SetOptions(*opts)

		resp, _, err := a.client.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*req).Execute()
		if err != nil {
			return nil, err
		}

		for _, t := range resp.GetTransactions() {
			all = append(all, convertTransaction(t))
		}

		if len(all) >= int(resp.GetTotalTransactions()) || len(resp.GetTransactions()) == 0 {
			break
		}
	}

	return all, nil
}

func convertTransaction(t plaid.Transaction) dto.ExternalTransaction {
	loc := t.GetLocation()
	meta := t.GetPaymentMeta()
	return dto.ExternalTransaction{
		ExternalID:        t.GetTransactionId(),
		ExternalAccountID: t.GetAccountId(),
		Amount:            t.GetAmount(),
		Date:              t.GetDate(),
		Name:              t.GetName(),
		MerchantName:      t.GetMerchantName(),
		Pending:           t.GetPending(),
		CategoryID:        t.GetCategoryId(),
		Categories:        t.GetCategory(),
		City:              loc.GetCity(),
		Region:            loc.GetRegion(),
		PaymentChannel:    t.GetPaymentChannel(),
		PaymentReference:  meta.GetReferenceNumber(),
	}
}

func toPlaidEnv(env dto.PlaidEnvironment) plaid.Environment {
	switch env {
	case dto.PlaidSandbox:
		return plaid.Sandbox
	case dto.PlaidDevelopment:
		return plaid.Development
	default: // dto.PlaidProduction
		return plaid.Production
	}
}
