package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/autobooks/autobooks-backend/internal/dto"
	"github.com/autobooks/autobooks-backend/internal/errs"
	"github.com/autobooks/autobooks-backend/internal/middleware"
	"github.com/autobooks/autobooks-backend/internal/response"
)

type reportsHandlers struct {
	ResponseHandler response.ResponseHandler
	ReportsSvc      ReportsService
}

func NewReportsHandlers(deps *Deps) *reportsHandlers {
	return &reportsHandlers{
		ResponseHandler: deps.ResponseHandler,
		ReportsSvc:      deps.ReportsSvc,
	}
}

func (h *reportsHandlers) ReportsRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/spend", h.SpendSummary)
	return r
}

func (h *reportsHandlers) SpendSummary(w http.ResponseWriter, r *http.Request) {
	var body struct {
		WorkspaceID string  `json:"workspace_id"`
		DateFrom    *string `json:"date_from,omitempty"`
		DateTo      *string `json:"date_to,omitempty"`
		GroupBy     string  `json:"group_by,omitempty"`
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
	result, err := h.ReportsSvc.SpendSummary(r.Context(), uid, dto.SpendSummaryArgs{
		WorkspaceID: workspaceID,
		DateFrom:    body.DateFrom,
		DateTo:      body.DateTo,
		GroupBy:     body.GroupBy,
	})
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, result)
}
