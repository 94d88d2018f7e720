package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bizsuite-hq/bizsuite/internal/api/dto"
	"github.com/bizsuite-hq/bizsuite/internal/domain/models"
	"github.com/bizsuite-hq/bizsuite/internal/domain/services"
	"github.com/bizsuite-hq/bizsuite/internal/pkg/validator"
)

type WebhookHandler struct {
	webhookSvc *services.WebhookService
	settings   *services.SettingsService
}

func NewWebhookHandler(webhookSvc *services.WebhookService, settings *services.SettingsService) *WebhookHandler {
	return &WebhookHandler{webhookSvc: webhookSvc, settings: settings}
}

func (h *WebhookHandler) List(w http.ResponseWriter, r *http.Request) {
	entries := h.webhookSvc.List()
	dto.JSONWithMeta(w, http.StatusOK, entries, &dto.Meta{Total: len(entries)})
}

func (h *WebhookHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	cfg, err := h.webhookSvc.Get(key)
	if err != nil {
		dto.HandleServiceError(w, err)
		return
	}
	dto.OK(w, services.WebhookEntry{Key: key, WebhookConfig: cfg})
}

func (h *WebhookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		dto.BadRequest(w, "invalid request body")
		return
	}
	if err := validator.Validate(req); err != nil {
		dto.ValidationErrorResponse(w, err)
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	fields := req.Fields
	if fields == nil {
		fields = []string{}
	}

	cfg := models.WebhookConfig{
		Name:        req.Name,
		URL:         req.URL,
		Description: req.Description,
		Fields:      fields,
		Active:      active,
	}
	if err := h.webhookSvc.Create(req.Key, cfg); err != nil {
		dto.HandleServiceError(w, err)
		return
	}

	created, err := h.webhookSvc.Get(req.Key)
	if err != nil {
		dto.HandleServiceError(w, err)
		return
	}
	dto.Created(w, services.WebhookEntry{Key: req.Key, WebhookConfig: created})
}

func (h *WebhookHandler) Update(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req dto.UpdateWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		dto.BadRequest(w, "invalid request body")
		return
	}
	if err := validator.Validate(req); err != nil {
		dto.ValidationErrorResponse(w, err)
		return
	}

	patch := services.WebhookPatch{
		Name:        req.Name,
		URL:         req.URL,
		Description: req.Description,
		Fields:      req.Fields,
		Active:      req.Active,
	}
	if err := h.webhookSvc.Update(key, patch); err != nil {
		dto.HandleServiceError(w, err)
		return
	}

	updated, err := h.webhookSvc.Get(key)
	if err != nil {
		dto.HandleServiceError(w, err)
		return
	}
	dto.OK(w, services.WebhookEntry{Key: key, WebhookConfig: updated})
}

func (h *WebhookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	if err := h.webhookSvc.Delete(key); err != nil {
		dto.HandleServiceError(w, err)
		return
	}
	dto.NoContent(w)
}

func (h *WebhookHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *WebhookHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *WebhookHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	key := chi.URLParam(r, "key")

	if err := h.webhookSvc.SetActive(key, active); err != nil {
		dto.HandleServiceError(w, err)
		return
	}

	cfg, err := h.webhookSvc.Get(key)
	if err != nil {
		dto.HandleServiceError(w, err)
		return
	}
	dto.OK(w, services.WebhookEntry{Key: key, WebhookConfig: cfg})
}

// Test probes the webhook's configured URL.
func (h *WebhookHandler) Test(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	result, err := h.webhookSvc.Test(r.Context(), key)
	if err != nil {
		dto.HandleServiceError(w, err)
		return
	}
	dto.OK(w, result)
}

// TestURL probes an arbitrary URL, so an endpoint can be tried before a
// webhook is saved. An optional payload overrides the default probe.
func (h *WebhookHandler) TestURL(w http.ResponseWriter, r *http.Request) {
	var req dto.TestWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		dto.BadRequest(w, "invalid request body")
		return
	}
	if err := validator.Validate(req); err != nil {
		dto.ValidationErrorResponse(w, err)
		return
	}

	dto.OK(w, h.webhookSvc.TestURL(r.Context(), req.URL, req.Payload))
}

// Send delivers a payload to the webhook. Accepts a JSON body or a
// multipart form with file attachments.
func (h *WebhookHandler) Send(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var (
		data  map[string]any
		files []models.FileUpload
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var err error
		data, files, err = parseMultipartPayload(r, maxFileSizeMB(h.settings))
		if err != nil {
			dto.BadRequest(w, err.Error())
			return
		}
	} else {
		var req dto.SendWebhookRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			dto.BadRequest(w, "invalid request body")
			return
		}
		if req.Data == nil {
			dto.BadRequest(w, "data is required")
			return
		}
		data = req.Data
	}

	result, err := h.webhookSvc.Send(r.Context(), key, data, files)
	if err != nil {
		dto.HandleServiceError(w, err)
		return
	}
	dto.OK(w, result)
}
