package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/bizsuite-hq/bizsuite/internal/api/dto"
	"github.com/bizsuite-hq/bizsuite/internal/domain/services"
)

// importBodyLimit bounds how much of an uploaded backup is read.
const importBodyLimit = 64 << 20

type ExportHandler struct {
	exportSvc *services.ExportService
}

func NewExportHandler(exportSvc *services.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// Export streams a zip backup of all application data.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.exportSvc.Filename()))

	if err := h.exportSvc.Export(w); err != nil {
		// Headers are already out; the truncated zip will fail to open
		// on the client side, which is the best signal left.
		log.Error().Err(err).Msg("Backup export failed mid-stream")
	}
}

// Import restores from a zip backup or a plain settings JSON document,
// decided by content type. Nothing is applied unless the whole payload
// validates.
func (h *ExportHandler) Import(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, importBodyLimit))
	if err != nil {
		dto.BadRequest(w, "failed to read request body")
		return
	}
	if len(body) == 0 {
		dto.BadRequest(w, "empty request body")
		return
	}

	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "application/zip"):
		err = h.exportSvc.ImportArchive(body)
	case strings.HasPrefix(contentType, "application/json"):
		err = h.exportSvc.ImportSettings(body)
	default:
		dto.BadRequest(w, "expected application/zip or application/json")
		return
	}

	if err != nil {
		dto.HandleServiceError(w, err)
		return
	}
	dto.OK(w, map[string]string{"status": "imported"})
}
