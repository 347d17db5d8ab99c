package response

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/autobooks/autobooks-backend/internal/errs"
	"github.com/autobooks/autobooks-backend/pkg/logger"
)

type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func (h *responseHandler) WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Code:  code,
		Error: message,
	}); err != nil {
		log := logger.FromContext(r.Context())
		log.Error("failed to encode error response", "error", err, "status", status, "code", code)
	}
}

func (h *responseHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	switch e := err.(type) {
	case *errs.UnauthorizedError:
		log.Warn("unauthorized request", "error", e.Message)
		h.WriteError(w, r, http.StatusUnauthorized, "unauthorized", e.Message)

	case *errs.AccessDeniedError:
		log.Warn("access denied", "error", e.Message)
		h.WriteError(w, r, http.StatusForbidden, "access_denied", e.Message)

	case *errs.NotFoundError:
		log.Warn("resource not found", "error", e.Message)
		h.WriteError(w, r, http.StatusNotFound, "not_found", e.Message)

	case *errs.ValidationError:
		log.Warn("validation failed", "error", e.Message)
		h.WriteError(w, r, http.StatusBadRequest, "invalid_request", e.Message)

	case *errs.UpstreamError:
		log.Error("upstream service error",
			"service", e.Service,
			"error", e.Message)
		h.WriteError(w, r, http.StatusInternalServerError, "upstream_error",
			fmt.Sprintf("%s request failed", e.Service))

	case *errs.DatabaseError:
		log.Error("database error",
			"operation", e.Operation,
			"error", e.Message)
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error",
			"An error occurred")

	default:
		log.Error("unexpected error",
			"error", err,
			"type", fmt.Sprintf("%T", err))
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error",
			"An unexpected error occurred")
	}
}
