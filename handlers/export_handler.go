package handlers

import (
	"net/http"

	"github.com/opencourt/rotation-system/services"
)

type ExportHandler struct {
	exportService services.ExportService
}

func NewExportHandler(es services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: es}
}

// ExportSession godoc
// @Summary Export a session snapshot and stats CSV to object storage
// @Tags exports
// @Produce json
// @Param sessionID path int true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{} "object storage not configured"
// @Router /sessions/{sessionID}/export [post]
func (h *ExportHandler) ExportSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.exportService.ExportSession(r.Context(), sessionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"export": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
