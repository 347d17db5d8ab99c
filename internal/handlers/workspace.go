package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/autobooks/autobooks-backend/internal/middleware"
	"github.com/autobooks/autobooks-backend/internal/models"
	"github.com/autobooks/autobooks-backend/internal/response"
)

type workspaceHandlers struct {
	ResponseHandler response.ResponseHandler
	WorkspaceSvc    WorkspaceService
}

func NewWorkspaceHandlers(deps *Deps) *workspaceHandlers {
	return &workspaceHandlers{
		ResponseHandler: deps.ResponseHandler,
		WorkspaceSvc:    deps.WorkspaceSvc,
	}
}

func (h *workspaceHandlers) WorkspaceRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/ensure", h.Ensure)
	r.Post("/list", h.List)
	return r
}

type workspaceListResponse struct {
	Success    bool                `json:"success"`
	Workspaces []*models.Workspace `json:"workspaces"`
}

// Ensure provisions the caller's default workspace on first login; it takes
// no body, the principal comes from the verified token.
func (h *workspaceHandlers) Ensure(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	email := middleware.Email(r.Context())

	workspaces, err := h.WorkspaceSvc.Ensure(r.Context(), uid, email)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, workspaceListResponse{
		Success:    true,
		Workspaces: workspaces,
	})
}

func (h *workspaceHandlers) List(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())

	workspaces, err := h.WorkspaceSvc.List(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if workspaces == nil {
		workspaces = []*models.Workspace{}
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, workspaceListResponse{
		Success:    true,
		Workspaces: workspaces,
	})
}
