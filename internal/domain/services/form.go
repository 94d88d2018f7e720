package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bizsuite-hq/bizsuite/internal/domain/models"
	"github.com/bizsuite-hq/bizsuite/internal/pkg/logger"
	"github.com/bizsuite-hq/bizsuite/internal/pkg/metrics"
	"github.com/bizsuite-hq/bizsuite/internal/store"
)

// FormEntry pairs a store key with its definition for listings.
type FormEntry struct {
	Key string `json:"key"`
	models.FormDefinition
}

// FormPatch is a partial update; nil fields are left unchanged.
type FormPatch struct {
	Name        *string
	Description *string
	Fields      *[]models.FieldSpec
	WebhookKey  *string
}

// FormService manages form definitions and runs the submission pipeline.
type FormService struct {
	store    *store.Store[models.FormDocument]
	webhooks *WebhookService
}

func NewFormService(s *store.Store[models.FormDocument], webhooks *WebhookService) *FormService {
	return &FormService{store: s, webhooks: webhooks}
}

func (s *FormService) List() []FormEntry {
	var entries []FormEntry
	s.store.View(func(doc models.FormDocument) {
		entries = make([]FormEntry, 0, len(doc))
		for key, def := range doc {
			entries = append(entries, FormEntry{Key: key, FormDefinition: def})
		}
	})
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}

func (s *FormService) Get(key string) (models.FormDefinition, error) {
	var (
		def models.FormDefinition
		ok  bool
	)
	s.store.View(func(doc models.FormDocument) {
		def, ok = doc[key]
	})
	if !ok {
		return models.FormDefinition{}, fmt.Errorf("form %q: %w", key, ErrNotFound)
	}
	return def, nil
}

func (s *FormService) Create(key string, def models.FormDefinition) error {
	if err := s.validateDefinition(def); err != nil {
		return err
	}
	return s.store.Update(func(doc models.FormDocument) (models.FormDocument, error) {
		if _, exists := doc[key]; exists {
			return doc, fmt.Errorf("form %q: %w", key, ErrConflict)
		}
		def.CreatedAt = time.Now().UTC()
		doc[key] = def
		return doc, nil
	})
}

func (s *FormService) Update(key string, patch FormPatch) error {
	return s.store.Update(func(doc models.FormDocument) (models.FormDocument, error) {
		def, exists := doc[key]
		if !exists {
			return doc, fmt.Errorf("form %q: %w", key, ErrNotFound)
		}
		if patch.Name != nil {
			def.Name = *patch.Name
		}
		if patch.Description != nil {
			def.Description = *patch.Description
		}
		if patch.Fields != nil {
			def.Fields = *patch.Fields
		}
		if patch.WebhookKey != nil {
			def.WebhookKey = *patch.WebhookKey
		}
		if err := s.validateDefinition(def); err != nil {
			return doc, err
		}
		doc[key] = def
		return doc, nil
	})
}

func (s *FormService) Delete(key string) error {
	return s.store.Update(func(doc models.FormDocument) (models.FormDocument, error) {
		if _, exists := doc[key]; !exists {
			return doc, fmt.Errorf("form %q: %w", key, ErrNotFound)
		}
		delete(doc, key)
		return doc, nil
	})
}

// AddField appends a field to the form. Field names are unique within a
// form; a duplicate is a conflict, not a replace.
func (s *FormService) AddField(key string, field models.FieldSpec) error {
	if err := validateField(field); err != nil {
		return err
	}
	return s.store.Update(func(doc models.FormDocument) (models.FormDocument, error) {
		def, exists := doc[key]
		if !exists {
			return doc, fmt.Errorf("form %q: %w", key, ErrNotFound)
		}
		for _, f := range def.Fields {
			if f.Name == field.Name {
				return doc, fmt.Errorf("field %q: %w", field.Name, ErrConflict)
			}
		}
		def.Fields = append(def.Fields, field)
		doc[key] = def
		return doc, nil
	})
}

func (s *FormService) RemoveField(key, fieldName string) error {
	return s.store.Update(func(doc models.FormDocument) (models.FormDocument, error) {
		def, exists := doc[key]
		if !exists {
			return doc, fmt.Errorf("form %q: %w", key, ErrNotFound)
		}
		for i, f := range def.Fields {
			if f.Name == fieldName {
				def.Fields = append(def.Fields[:i], def.Fields[i+1:]...)
				doc[key] = def
				return doc, nil
			}
		}
		return doc, fmt.Errorf("field %q: %w", fieldName, ErrNotFound)
	})
}

// Submit runs the pipeline for one submission: required-field checks,
// then either collect (no webhook configured) or forward to the form's
// webhook. A rejected submission never produces an outbound call.
func (s *FormService) Submit(ctx context.Context, key string, data map[string]any, files []models.FileUpload) (models.SubmissionResult, error) {
	def, err := s.Get(key)
	if err != nil {
		return models.SubmissionResult{}, err
	}

	if fieldErrors := validateSubmission(def, data, files); len(fieldErrors) > 0 {
		metrics.FormValidationFailures.WithLabelValues(key).Inc()
		metrics.RecordSubmission(key, models.SubmissionRejected)
		return models.SubmissionResult{
			Outcome:     models.SubmissionRejected,
			FieldErrors: fieldErrors,
		}, nil
	}

	submissionID := uuid.New().String()
	lg := logger.WithFormKey(key).With().Str("submission_id", submissionID).Logger()

	if def.WebhookKey == "" {
		lg.Info().Msg("submission collected, no webhook configured")
		metrics.RecordSubmission(key, models.SubmissionCollected)
		return models.SubmissionResult{
			Outcome:      models.SubmissionCollected,
			SubmissionID: submissionID,
			Data:         data,
		}, nil
	}

	// A webhook key that no longer resolves is stored-data corruption,
	// surfaced at point of use rather than silently dropped.
	if _, err := s.webhooks.Get(def.WebhookKey); err != nil {
		return models.SubmissionResult{}, fmt.Errorf("form %q references webhook %q: %w", key, def.WebhookKey, ErrMalformed)
	}

	payload := make(map[string]any, len(data)+2)
	for k, v := range data {
		payload[k] = v
	}
	payload["form_key"] = key
	payload["form_name"] = def.Name

	delivery, err := s.webhooks.Send(ctx, def.WebhookKey, payload, files)
	if err != nil {
		return models.SubmissionResult{}, err
	}

	lg.Info().
		Bool("delivered", delivery.Success).
		Str("delivery_id", delivery.DeliveryID).
		Msg("submission forwarded")
	metrics.RecordSubmission(key, models.SubmissionForwarded)

	return models.SubmissionResult{
		Outcome:      models.SubmissionForwarded,
		SubmissionID: submissionID,
		Data:         data,
		Delivery:     &delivery,
	}, nil
}

// validateSubmission enforces required fields. A required text value
// must be non-blank after trimming; a required file field must have at
// least one upload addressed to it.
func validateSubmission(def models.FormDefinition, data map[string]any, files []models.FileUpload) []models.FieldError {
	uploads := make(map[string]bool, len(files))
	for _, f := range files {
		uploads[f.Field] = true
	}

	var fieldErrors []models.FieldError
	for _, field := range def.Fields {
		if !field.Required {
			continue
		}

		missing := false
		if field.Type == models.FieldFile {
			missing = !uploads[field.Name]
		} else {
			value, present := data[field.Name]
			if !present || value == nil {
				missing = true
			} else if str, ok := value.(string); ok && strings.TrimSpace(str) == "" {
				missing = true
			}
		}

		if missing {
			fieldErrors = append(fieldErrors, models.FieldError{
				Field:   field.Name,
				Message: fmt.Sprintf("%s is required", field.Label),
			})
		}
	}
	return fieldErrors
}

func (s *FormService) validateDefinition(def models.FormDefinition) error {
	names := make(map[string]struct{}, len(def.Fields))
	for _, field := range def.Fields {
		if err := validateField(field); err != nil {
			return err
		}
		if _, dup := names[field.Name]; dup {
			return fmt.Errorf("duplicate field %q: %w", field.Name, ErrMalformed)
		}
		names[field.Name] = struct{}{}
	}

	if def.WebhookKey != "" {
		if _, err := s.webhooks.Get(def.WebhookKey); err != nil {
			return fmt.Errorf("webhook %q does not exist: %w", def.WebhookKey, ErrMalformed)
		}
	}
	return nil
}

func validateField(field models.FieldSpec) error {
	if field.Name == "" {
		return fmt.Errorf("field with empty name: %w", ErrMalformed)
	}
	if !field.Type.Valid() {
		return fmt.Errorf("field %q has unknown type %q: %w", field.Name, field.Type, ErrMalformed)
	}
	if field.Type.HasOptions() && len(field.Options) == 0 {
		return fmt.Errorf("field %q requires options: %w", field.Name, ErrMalformed)
	}
	if field.Type.HasRange() && field.MinValue != nil && field.MaxValue != nil && *field.MinValue > *field.MaxValue {
		return fmt.Errorf("field %q has min above max: %w", field.Name, ErrMalformed)
	}
	return nil
}
