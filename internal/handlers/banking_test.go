package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/autobooks/autobooks-backend/internal/dto"
	"github.com/autobooks/autobooks-backend/internal/errs"
	"github.com/autobooks/autobooks-backend/internal/middleware"
)

const (
	testWorkspaceID   = "7a5b8a1e-3f7c-4a6d-9d2e-1c8b5e2f4a01"
	testConnectionID  = "9f0c2d4b-6e8a-4c1f-b3d5-7a9e1f2c4b02"
	testTransactionID = "1b3d5f7a-9c0e-4f2b-8d4a-6c8e0a1b2c03"
	testLedgerID      = "2c4e6a8b-0d1f-4a3c-9e5b-7d9f1a2b3c04"
)

// --- stubs ---

type stubBankingService struct {
	linkToken   string
	exchange    dto.ExchangeOutcome
	sync        dto.SyncOutcome
	connections []dto.ConnectionSummary
	err         error

	linkTokenCalled bool
	exchangeCalled  bool
	syncCalled      bool
	removeCalled    bool
	matchCalled     bool
	uid             string
	workspaceID     string
	connectionID    string
	publicToken     string
	meta            dto.LinkMetadata
	transactionID   string
	ledgerAccountID string
}

func (s *stubBankingService) CreateLinkToken(ctx context.Context, uid, workspaceID string) (string, error) {
	s.linkTokenCalled = true
	s.uid, s.workspaceID = uid, workspaceID
	return s.linkToken, s.err
}

func (s *stubBankingService) ExchangePublicToken(ctx context.Context, uid, workspaceID, publicToken string, meta dto.LinkMetadata) (dto.ExchangeOutcome, error) {
	s.exchangeCalled = true
	s.uid, s.workspaceID, s.publicToken, s.meta = uid, workspaceID, publicToken, meta
	return s.exchange, s.err
}

func (s *stubBankingService) SyncTransactions(ctx context.Context, uid, connectionID string) (dto.SyncOutcome, error) {
	s.syncCalled = true
	s.uid, s.connectionID = uid, connectionID
	return s.sync, s.err
}

func (s *stubBankingService) ListConnections(ctx context.Context, uid, workspaceID string) ([]dto.ConnectionSummary, error) {
	s.uid, s.workspaceID = uid, workspaceID
	return s.connections, s.err
}

func (s *stubBankingService) RemoveConnection(ctx context.Context, uid, connectionID string) error {
	s.removeCalled = true
	s.uid, s.connectionID = uid, connectionID
	return s.err
}

func (s *stubBankingService) MatchTransaction(ctx context.Context, uid, transactionID, ledgerAccountID string) error {
	s.matchCalled = true
	s.uid, s.transactionID, s.ledgerAccountID = uid, transactionID, ledgerAccountID
	return s.err
}

type stubResponseHandler struct {
	writeSuccessCalled bool
	writeSuccessStatus int
	writeSuccessData   any

	handleErrorCalled bool
	handleError       error
}

func (s *stubResponseHandler) WriteSuccess(w http.ResponseWriter, r *http.Request, status int, data any) {
	s.writeSuccessCalled = true
	s.writeSuccessStatus = status
	s.writeSuccessData = data

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *stubResponseHandler) WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.WriteHeader(status)
}

func (s *stubResponseHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	s.handleErrorCalled = true
	s.handleError = err
	w.WriteHeader(http.StatusInternalServerError)
}

func authedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := context.WithValue(req.Context(), middleware.UIDKey, "uid-123")
	return req.WithContext(ctx)
}

// --- link token ---

func TestCreateLinkTokenSuccess(t *testing.T) {
	svc := &stubBankingService{linkToken: "link-sandbox-abc"}
	resp := &stubResponseHandler{}
	h := NewBankingHandlers(&Deps{ResponseHandler: resp, BankingSvc: svc})

	req := authedRequest(http.MethodPost, "/plaid/link-token", `{"workspace_id":"`+testWorkspaceID+`"}`)
	rr := httptest.NewRecorder()
	h.CreateLinkToken(rr, req)

	if !svc.linkTokenCalled {
		t.Fatal("expected CreateLinkToken to be called on service")
	}
	if svc.uid != "uid-123" || svc.workspaceID != testWorkspaceID {
		t.Fatalf("service received wrong identifiers: uid=%s workspace=%s", svc.uid, svc.workspaceID)
	}
	if !resp.writeSuccessCalled || resp.writeSuccessStatus != http.StatusOK {
		t.Fatal("WriteSuccess not called with status 200")
	}
	data, ok := resp.writeSuccessData.(map[string]string)
	if !ok || data["link_token"] != "link-sandbox-abc" {
		t.Fatalf("unexpected payload: %+v", resp.writeSuccessData)
	}
}

func TestCreateLinkTokenMissingWorkspaceID(t *testing.T) {
	svc := &stubBankingService{}
	resp := &stubResponseHandler{}
	h := NewBankingHandlers(&Deps{ResponseHandler: resp, BankingSvc: svc})

	req := authedRequest(http.MethodPost, "/plaid/link-token", `{}`)
	rr := httptest.NewRecorder()
	h.CreateLinkToken(rr, req)

	if svc.linkTokenCalled {
		t.Fatal("service must not be called without a workspace id")
	}
	if _, ok := resp.handleError.(*errs.ValidationError); !ok {
		t.Fatalf("expected ValidationError, got %T", resp.handleError)
	}
}

func TestCreateLinkTokenRejectsMalformedID(t *testing.T) {
	svc := &stubBankingService{}
	resp := &stubResponseHandler{}
	h := NewBankingHandlers(&Deps{ResponseHandler: resp, BankingSvc: svc})

	req := authedRequest(http.MethodPost, "/plaid/link-token", `{"workspace_id":"not-a-uuid"}`)
	rr := httptest.NewRecorder()
	h.CreateLinkToken(rr, req)

	if svc.linkTokenCalled {
		t.Fatal("service must not be called with a malformed id")
	}
	if _, ok := resp.handleError.(*errs.ValidationError); !ok {
		t.Fatalf("expected ValidationError, got %T", resp.handleError)
	}
}

// --- exchange ---

func TestExchangeSuccessShape(t *testing.T) {
	svc := &stubBankingService{exchange: dto.ExchangeOutcome{
		ConnectionID:    testConnectionID,
		InstitutionName: "Big Bank",
		Linked: []dto.LinkedAccount{
			{AccountID: "acct-1", ExternalAccountID: "ext-1", Name: "Chequing"},
		},
	}}
	resp := &stubResponseHandler{}
	h := NewBankingHandlers(&Deps{ResponseHandler: resp, BankingSvc: svc})

	body := `{"public_token":"public-xyz","workspace_id":"` + testWorkspaceID + `","metadata":{"institution":{"institution_id":"ins_1","name":"Big Bank"}}}`
	req := authedRequest(http.MethodPost, "/plaid/exchange", body)
	rr := httptest.NewRecorder()
	h.ExchangePublicToken(rr, req)

	if !svc.exchangeCalled {
		t.Fatal("expected ExchangePublicToken to be called")
	}
	if svc.publicToken != "public-xyz" {
		t.Fatalf("wrong public token: %q", svc.publicToken)
	}
	if svc.meta.Institution == nil || svc.meta.Institution.InstitutionID != "ins_1" {
		t.Fatalf("link metadata not forwarded: %+v", svc.meta)
	}

	payload, ok := resp.writeSuccessData.(exchangeResponse)
	if !ok {
		t.Fatalf("unexpected payload type: %T", resp.writeSuccessData)
	}
	if !payload.Success || payload.ConnectionID != testConnectionID || len(payload.LinkedAccounts) != 1 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestExchangeEmptyLinkedAccountsSerializesAsArray(t *testing.T) {
	svc := &stubBankingService{exchange: dto.ExchangeOutcome{
		ConnectionID:    testConnectionID,
		InstitutionName: "Big Bank",
	}}
	resp := &stubResponseHandler{}
	h := NewBankingHandlers(&Deps{ResponseHandler: resp, BankingSvc: svc})

	body := `{"public_token":"public-xyz","workspace_id":"` + testWorkspaceID + `"}`
	req := authedRequest(http.MethodPost, "/plaid/exchange", body)
	rr := httptest.NewRecorder()
	h.ExchangePublicToken(rr, req)

	if !strings.Contains(rr.Body.String(), `"linked_accounts":[]`) {
		t.Fatalf("linked_accounts must encode as an empty array, body: %s", rr.Body.String())
	}
}

func TestExchangeMissingPublicToken(t *testing.T) {
	svc := &stubBankingService{}
	resp := &stubResponseHandler{}
	h := NewBankingHandlers(&Deps{ResponseHandler: resp, BankingSvc: svc})

	req := authedRequest(http.MethodPost, "/plaid/exchange", `{"workspace_id":"`+testWorkspaceID+`"}`)
	rr := httptest.NewRecorder()
	h.ExchangePublicToken(rr, req)

	if svc.exchangeCalled {
		t.Fatal("service must not be called without a public token")
	}
	if _, ok := resp.handleError.(*errs.ValidationError); !ok {
		t.Fatalf("expected ValidationError, got %T", resp.handleError)
	}
}

// --- sync ---

func TestSyncSuccessShape(t *testing.T) {
	svc := &stubBankingService{sync: dto.SyncOutcome{
		ConnectionID:    testConnectionID,
		InstitutionName: "Big Bank",
		Total:           3,
		Imported:        2,
		Updated:         1,
		Accounts: map[string]dto.AccountSyncCounts{
			"acct-1": {Imported: 2, Updated: 1},
		},
	}}
	resp := &stubResponseHandler{}
	h := NewBankingHandlers(&Deps{ResponseHandler: resp, BankingSvc: svc})

	req := authedRequest(http.MethodPost, "/plaid/sync", `{"connection_id":"`+testConnectionID+`"}`)
	rr := httptest.NewRecorder()
	h.SyncTransactions(rr, req)

	if !svc.syncCalled || svc.connectionID != testConnectionID {
		t.Fatalf("sync not called with connection id, got %q", svc.connectionID)
	}

	payload, ok := resp.writeSuccessData.(syncResponse)
	if !ok {
		t.Fatalf("unexpected payload type: %T", resp.writeSuccessData)
	}
	if payload.Results.Total != 3 || payload.Results.Accounts["acct-1"].Imported != 2 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestSyncPropagatesServiceError(t *testing.T) {
	svc := &stubBankingService{err: errs.NewNotFoundError("bank connection not found")}
	resp := &stubResponseHandler{}
	h := NewBankingHandlers(&Deps{ResponseHandler: resp, BankingSvc: svc})

	req := authedRequest(http.MethodPost, "/plaid/sync", `{"connection_id":"`+testConnectionID+`"}`)
	rr := httptest.NewRecorder()
	h.SyncTransactions(rr, req)

	if !resp.handleErrorCalled {
		t.Fatal("expected HandleError to be called")
	}
	if _, ok := resp.handleError.(*errs.NotFoundError); !ok {
		t.Fatalf("expected NotFoundError, got %T", resp.handleError)
	}
}

// --- match ---

func TestMatchTransactionSuccess(t *testing.T) {
	svc := &stubBankingService{}
	resp := &stubResponseHandler{}
	h := NewBankingHandlers(&Deps{ResponseHandler: resp, BankingSvc: svc})

	body := `{"transaction_id":"` + testTransactionID + `","ledger_account_id":"` + testLedgerID + `"}`
	req := authedRequest(http.MethodPost, "/transactions/match", body)
	rr := httptest.NewRecorder()
	h.MatchTransaction(rr, req)

	if !svc.matchCalled || svc.transactionID != testTransactionID || svc.ledgerAccountID != testLedgerID {
		t.Fatalf("match not forwarded, got tx=%q ledger=%q", svc.transactionID, svc.ledgerAccountID)
	}
}

func TestMatchTransactionRequiresBothIDs(t *testing.T) {
	svc := &stubBankingService{}
	resp := &stubResponseHandler{}
	h := NewBankingHandlers(&Deps{ResponseHandler: resp, BankingSvc: svc})

	req := authedRequest(http.MethodPost, "/transactions/match", `{"transaction_id":"`+testTransactionID+`"}`)
	rr := httptest.NewRecorder()
	h.MatchTransaction(rr, req)

	if svc.matchCalled {
		t.Fatal("service must not be called with a missing ledger account id")
	}
	if _, ok := resp.handleError.(*errs.ValidationError); !ok {
		t.Fatalf("expected ValidationError, got %T", resp.handleError)
	}
}

// --- remove ---

func TestRemoveConnectionForwardsID(t *testing.T) {
	svc := &stubBankingService{}
	resp := &stubResponseHandler{}
	h := NewBankingHandlers(&Deps{ResponseHandler: resp, BankingSvc: svc})

	req := authedRequest(http.MethodPost, "/connections/remove", `{"connection_id":"`+testConnectionID+`"}`)
	rr := httptest.NewRecorder()
	h.RemoveConnection(rr, req)

	if !svc.removeCalled || svc.connectionID != testConnectionID {
		t.Fatalf("remove not forwarded, got %q", svc.connectionID)
	}
}
