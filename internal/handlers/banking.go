package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/autobooks/autobooks-backend/internal/dto"
	"github.com/autobooks/autobooks-backend/internal/errs"
	"github.com/autobooks/autobooks-backend/internal/middleware"
	"github.com/autobooks/autobooks-backend/internal/response"
)

type bankingHandlers struct {
	ResponseHandler response.ResponseHandler
	BankingSvc      BankingService
}

func NewBankingHandlers(deps *Deps) *bankingHandlers {
	return &bankingHandlers{
		ResponseHandler: deps.ResponseHandler,
		BankingSvc:      deps.BankingSvc,
	}
}

// BankingRoutes mounts the flow's endpoints. Everything is POST; chi answers
// 405 for other methods.
func (h *bankingHandlers) BankingRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/plaid/link-token", h.CreateLinkToken)
	r.Post("/plaid/exchange", h.ExchangePublicToken)
	r.Post("/plaid/sync", h.SyncTransactions)
	r.Post("/connections/list", h.ListConnections)
	r.Post("/connections/remove", h.RemoveConnection)
	r.Post("/transactions/match", h.MatchTransaction)
	return r
}

// requireID validates a client-supplied id before it reaches a query.
func requireID(field, value string) (string, error) {
	if value == "" {
		return "", errs.NewValidationError(field + " is required")
	}
	if _, err := uuid.Parse(value); err != nil {
		return "", errs.NewValidationError(field + " is not a valid id")
	}
	return value, nil
}

func (h *bankingHandlers) CreateLinkToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		WorkspaceID string `json:"workspace_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	workspaceID, err := requireID("workspace_id", body.WorkspaceID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	uid := middleware.UID(r.Context())
	linkToken, err := h.BankingSvc.CreateLinkToken(r.Context(), uid, workspaceID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, map[string]string{"link_token": linkToken})
}

type exchangeResponse struct {
	Success         bool                `json:"success"`
	ConnectionID    string              `json:"connection_id"`
	InstitutionName string              `json:"institution_name"`
	LinkedAccounts  []dto.LinkedAccount `json:"linked_accounts"`
}

func (h *bankingHandlers) ExchangePublicToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PublicToken string           `json:"public_token"`
		WorkspaceID string           `json:"workspace_id"`
		Metadata    dto.LinkMetadata `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	if body.PublicToken == "" {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("public_token is required"))
		return
	}
	workspaceID, err := requireID("workspace_id", body.WorkspaceID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	uid := middleware.UID(r.Context())
	outcome, err := h.BankingSvc.ExchangePublicToken(r.Context(), uid, workspaceID, body.PublicToken, body.Metadata)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	linked := outcome.Linked
	if linked == nil {
		linked = []dto.LinkedAccount{}
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, exchangeResponse{
		Success:         true,
		ConnectionID:    outcome.ConnectionID,
		InstitutionName: outcome.InstitutionName,
		LinkedAccounts:  linked,
	})
}

type syncResults struct {
	Total    int                              `json:"total"`
	Imported int                              `json:"imported"`
	Updated  int                              `json:"updated"`
	Accounts map[string]dto.AccountSyncCounts `json:"accounts"`
}

type syncResponse struct {
	Success         bool        `json:"success"`
	ConnectionID    string      `json:"connection_id"`
	InstitutionName string      `json:"institution_name"`
	Results         syncResults `json:"results"`
}

func (h *bankingHandlers) SyncTransactions(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ConnectionID string `json:"connection_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	connectionID, err := requireID("connection_id", body.ConnectionID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	uid := middleware.UID(r.Context())
	outcome, err := h.BankingSvc.SyncTransactions(r.Context(), uid, connectionID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, syncResponse{
		Success:         true,
		ConnectionID:    outcome.ConnectionID,
		InstitutionName: outcome.InstitutionName,
		Results: syncResults{
			Total:    outcome.Total,
			Imported: outcome.Imported,
			Updated:  outcome.Updated,
			Accounts: outcome.Accounts,
		},
	})
}

func (h *bankingHandlers) ListConnections(w http.ResponseWriter, r *http.Request) {
	var body struct {
		WorkspaceID string `json:"workspace_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	workspaceID, err := requireID("workspace_id", body.WorkspaceID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	uid := middleware.UID(r.Context())
	summaries, err := h.BankingSvc.ListConnections(r.Context(), uid, workspaceID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, map[string]any{
		"success":     true,
		"connections": summaries,
	})
}

func (h *bankingHandlers) RemoveConnection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ConnectionID string `json:"connection_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	connectionID, err := requireID("connection_id", body.ConnectionID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	uid := middleware.UID(r.Context())
	if err := h.BankingSvc.RemoveConnection(r.Context(), uid, connectionID); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, map[string]bool{"success": true})
}

func (h *bankingHandlers) MatchTransaction(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TransactionID   string `json:"transaction_id"`
		LedgerAccountID string `json:"ledger_account_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	transactionID, err := requireID("transaction_id", body.TransactionID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	ledgerAccountID, err := requireID("ledger_account_id", body.LedgerAccountID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	uid := middleware.UID(r.Context())
	if err := h.BankingSvc.MatchTransaction(r.Context(), uid, transactionID, ledgerAccountID); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, map[string]bool{"success": true})
}
