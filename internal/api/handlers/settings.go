package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bizsuite-hq/bizsuite/internal/api/dto"
	"github.com/bizsuite-hq/bizsuite/internal/domain/models"
	"github.com/bizsuite-hq/bizsuite/internal/domain/services"
)

type SettingsHandler struct {
	settingsSvc *services.SettingsService
}

func NewSettingsHandler(settingsSvc *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsSvc: settingsSvc}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	dto.OK(w, h.settingsSvc.Document())
}

func (h *SettingsHandler) GetSection(w http.ResponseWriter, r *http.Request) {
	section := chi.URLParam(r, "section")

	values, err := h.settingsSvc.Section(section)
	if err != nil {
		dto.HandleServiceError(w, err)
		return
	}
	dto.OK(w, values)
}

// Replace swaps the entire settings document.
func (h *SettingsHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var doc models.SettingsDocument
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		dto.BadRequest(w, "invalid request body")
		return
	}

	if err := h.settingsSvc.Replace(doc); err != nil {
		dto.HandleServiceError(w, err)
		return
	}
	dto.OK(w, h.settingsSvc.Document())
}

// UpdateSection merges values into one section, creating it if needed.
func (h *SettingsHandler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	section := chi.URLParam(r, "section")

	var values dto.UpdateSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		dto.BadRequest(w, "invalid request body")
		return
	}
	if len(values) == 0 {
		dto.BadRequest(w, "no values to update")
		return
	}

	if err := h.settingsSvc.Update(section, values); err != nil {
		dto.HandleServiceError(w, err)
		return
	}

	updated, err := h.settingsSvc.Section(section)
	if err != nil {
		dto.HandleServiceError(w, err)
		return
	}
	dto.OK(w, updated)
}

func (h *SettingsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.settingsSvc.Reset(); err != nil {
		dto.HandleServiceError(w, err)
		return
	}
	dto.OK(w, h.settingsSvc.Document())
}
