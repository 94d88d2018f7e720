package handlers

import (
	"net/http"
	"os"

	"github.com/bizsuite-hq/bizsuite/internal/api/dto"
	"github.com/bizsuite-hq/bizsuite/internal/pkg/config"
)

type HealthHandler struct {
	cfg *config.Config
}

func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	healthy := true

	// The data directory is the only external dependency.
	if info, err := os.Stat(h.cfg.Storage.DataDir); err != nil {
		checks["storage"] = "error: " + err.Error()
		healthy = false
	} else if !info.IsDir() {
		checks["storage"] = "error: data path is not a directory"
		healthy = false
	} else {
		checks["storage"] = "ok"
	}

	status := "healthy"
	statusCode := http.StatusOK
	if !healthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	dto.JSON(w, statusCode, map[string]interface{}{
		"status":  status,
		"service": "bizsuite-api",
		"checks":  checks,
	})
}

func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	dto.JSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if _, err := os.Stat(h.cfg.Storage.DataDir); err != nil {
		dto.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "storage not ready"})
		return
	}
	dto.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
