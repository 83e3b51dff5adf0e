package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tahmid/codefix/internal/model"
	"github.com/tahmid/codefix/internal/service"
)

// DiagnoseHandler serves one-shot AI diagnosis requests.
type DiagnoseHandler struct {
	diagnoses *service.DiagnoseService
	logger    *slog.Logger
}

// NewDiagnoseHandler creates a DiagnoseHandler.
func NewDiagnoseHandler(diagnoses *service.DiagnoseService, logger *slog.Logger) *DiagnoseHandler {
	return &DiagnoseHandler{
		diagnoses: diagnoses,
		logger:    logger,
	}
}

// HandleDiagnose processes POST /api/diagnose.
func (h *DiagnoseHandler) HandleDiagnose(w http.ResponseWriter, r *http.Request) {
	var req model.DiagnoseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid diagnose request body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "request body must be valid JSON",
		})
		return
	}

	diagnosis, err := h.diagnoses.Diagnose(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"diagnosis": diagnosis})
}
