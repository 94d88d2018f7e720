package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bizsuite-hq/bizsuite/internal/api/dto"
	"github.com/bizsuite-hq/bizsuite/internal/domain/models"
	"github.com/bizsuite-hq/bizsuite/internal/domain/services"
	"github.com/bizsuite-hq/bizsuite/internal/pkg/validator"
)

type ProcessHandler struct {
	processSvc *services.ProcessService
}

func NewProcessHandler(processSvc *services.ProcessService) *ProcessHandler {
	return &ProcessHandler{processSvc: processSvc}
}

func (h *ProcessHandler) List(w http.ResponseWriter, r *http.Request) {
	entries := h.processSvc.List()
	dto.JSONWithMeta(w, http.StatusOK, entries, &dto.Meta{Total: len(entries)})
}

func (h *ProcessHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	model, err := h.processSvc.Get(key)
	if err != nil {
		dto.HandleServiceError(w, err)
		return
	}
	dto.OK(w, services.ProcessEntry{Key: key, ProcessModel: model})
}

func (h *ProcessHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProcessModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		dto.BadRequest(w, "invalid request body")
		return
	}
	if err := validator.Validate(req); err != nil {
		dto.ValidationErrorResponse(w, err)
		return
	}

	model := models.ProcessModel{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Nodes:       req.Nodes,
		Connections: req.Connections,
		Webhooks:    req.Webhooks,
		Forms:       req.Forms,
	}
	if model.Nodes == nil {
		model.Nodes = []models.ProcessNode{}
	}
	if model.Connections == nil {
		model.Connections = []models.ProcessEdge{}
	}
	if model.Webhooks == nil {
		model.Webhooks = []string{}
	}
	if model.Forms == nil {
		model.Forms = []string{}
	}

	if err := h.processSvc.Create(req.Key, model); err != nil {
		dto.HandleServiceError(w, err)
		return
	}

	created, err := h.processSvc.Get(req.Key)
	if err != nil {
		dto.HandleServiceError(w, err)
		return
	}
	dto.Created(w, services.ProcessEntry{Key: req.Key, ProcessModel: created})
}

func (h *ProcessHandler) Update(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req dto.UpdateProcessModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		dto.BadRequest(w, "invalid request body")
		return
	}
	if err := validator.Validate(req); err != nil {
		dto.ValidationErrorResponse(w, err)
		return
	}

	patch := services.ProcessPatch{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Nodes:       req.Nodes,
		Connections: req.Connections,
		Webhooks:    req.Webhooks,
		Forms:       req.Forms,
	}
	if err := h.processSvc.Update(key, patch); err != nil {
		dto.HandleServiceError(w, err)
		return
	}

	updated, err := h.processSvc.Get(key)
	if err != nil {
		dto.HandleServiceError(w, err)
		return
	}
	dto.OK(w, services.ProcessEntry{Key: key, ProcessModel: updated})
}

func (h *ProcessHandler) Delete(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	if err := h.processSvc.Delete(key); err != nil {
		dto.HandleServiceError(w, err)
		return
	}
	dto.NoContent(w)
}

func (h *ProcessHandler) Templates(w http.ResponseWriter, r *http.Request) {
	templates := h.processSvc.Templates()
	dto.JSONWithMeta(w, http.StatusOK, templates, &dto.Meta{Total: len(templates)})
}

// UseTemplate instantiates a built-in template as a new model.
func (h *ProcessHandler) UseTemplate(w http.ResponseWriter, r *http.Request) {
	templateID := chi.URLParam(r, "id")

	key, model, err := h.processSvc.Instantiate(templateID)
	if err != nil {
		dto.HandleServiceError(w, err)
		return
	}
	dto.Created(w, services.ProcessEntry{Key: key, ProcessModel: model})
}
