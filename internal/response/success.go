package response

import (
	"encoding/json"
	"net/http"

	"github.com/autobooks/autobooks-backend/pkg/logger"
)

// WriteSuccess encodes the payload as-is. Endpoint bodies are part of the
// client contract, so no envelope is added here.
func (h *responseHandler) WriteSuccess(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Last-ditch logging; can't return an error now
		log := logger.FromContext(r.Context())
		log.Error("failed to encode success response", "error", err)
	}
}
