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

type FormHandler struct {
	formSvc  *services.FormService
	settings *services.SettingsService
}

func NewFormHandler(formSvc *services.FormService, settings *services.SettingsService) *FormHandler {
	return &FormHandler{formSvc: formSvc, settings: settings}
}

func (h *FormHandler) List(w http.ResponseWriter, r *http.Request) {
	entries := h.formSvc.List()
	dto.JSONWithMeta(w, http.StatusOK, entries, &dto.Meta{Total: len(entries)})
}

func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	def, err := h.formSvc.Get(key)
	if err != nil {
		dto.HandleServiceError(w, err)
		return
	}
	dto.OK(w, services.FormEntry{Key: key, FormDefinition: def})
}

func (h *FormHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		dto.BadRequest(w, "invalid request body")
		return
	}
	if err := validator.Validate(req); err != nil {
		dto.ValidationErrorResponse(w, err)
		return
	}

	fields := req.Fields
	if fields == nil {
		fields = []models.FieldSpec{}
	}

	def := models.FormDefinition{
		Name:        req.Name,
		Description: req.Description,
		Fields:      fields,
		WebhookKey:  req.WebhookKey,
	}
	if err := h.formSvc.Create(req.Key, def); err != nil {
		dto.HandleServiceError(w, err)
		return
	}

	created, err := h.formSvc.Get(req.Key)
	if err != nil {
		dto.HandleServiceError(w, err)
		return
	}
	dto.Created(w, services.FormEntry{Key: req.Key, FormDefinition: created})
}

func (h *FormHandler) Update(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req dto.UpdateFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		dto.BadRequest(w, "invalid request body")
		return
	}
	if err := validator.Validate(req); err != nil {
		dto.ValidationErrorResponse(w, err)
		return
	}

	patch := services.FormPatch{
		Name:        req.Name,
		Description: req.Description,
		Fields:      req.Fields,
		WebhookKey:  req.WebhookKey,
	}
	if err := h.formSvc.Update(key, patch); err != nil {
		dto.HandleServiceError(w, err)
		return
	}

	updated, err := h.formSvc.Get(key)
	if err != nil {
		dto.HandleServiceError(w, err)
		return
	}
	dto.OK(w, services.FormEntry{Key: key, FormDefinition: updated})
}

func (h *FormHandler) Delete(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	if err := h.formSvc.Delete(key); err != nil {
		dto.HandleServiceError(w, err)
		return
	}
	dto.NoContent(w)
}

func (h *FormHandler) AddField(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var field models.FieldSpec
	if err := json.NewDecoder(r.Body).Decode(&field); err != nil {
		dto.BadRequest(w, "invalid request body")
		return
	}

	if err := h.formSvc.AddField(key, field); err != nil {
		dto.HandleServiceError(w, err)
		return
	}

	def, err := h.formSvc.Get(key)
	if err != nil {
		dto.HandleServiceError(w, err)
		return
	}
	dto.OK(w, services.FormEntry{Key: key, FormDefinition: def})
}

func (h *FormHandler) RemoveField(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	fieldName := chi.URLParam(r, "field")

	if err := h.formSvc.RemoveField(key, fieldName); err != nil {
		dto.HandleServiceError(w, err)
		return
	}
	dto.NoContent(w)
}

// FieldTypes lists the supported field kinds for form editors.
func (h *FormHandler) FieldTypes(w http.ResponseWriter, r *http.Request) {
	types := make([]map[string]string, 0, len(models.FieldTypes))
	for _, t := range models.FieldTypes {
		types = append(types, map[string]string{
			"type":  string(t.Type),
			"label": t.Label,
		})
	}
	dto.OK(w, types)
}

// Submit accepts either a JSON body or a multipart form with file
// attachments and runs the submission pipeline. A rejected submission
// comes back as 422 with per-field errors.
func (h *FormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var (
		data  map[string]any
		files []models.FileUpload
	)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		var err error
		data, files, err = parseMultipartPayload(r, maxFileSizeMB(h.settings))
		if err != nil {
			dto.BadRequest(w, err.Error())
			return
		}
	} else {
		var req dto.SubmitFormRequest
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

	result, err := h.formSvc.Submit(r.Context(), key, data, files)
	if err != nil {
		dto.HandleServiceError(w, err)
		return
	}

	if result.Outcome == models.SubmissionRejected {
		dto.JSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	dto.OK(w, result)
}
