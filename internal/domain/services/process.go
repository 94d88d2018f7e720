package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bizsuite-hq/bizsuite/internal/domain/models"
	"github.com/bizsuite-hq/bizsuite/internal/store"
)

// ProcessEntry pairs a store key with its model for listings.
type ProcessEntry struct {
	Key string `json:"key"`
	models.ProcessModel
}

// ProcessPatch is a partial update; nil fields are left unchanged.
type ProcessPatch struct {
	Name        *string
	Description *string
	Type        *models.ProcessType
	Nodes       *[]models.ProcessNode
	Connections *[]models.ProcessEdge
	Webhooks    *[]string
	Forms       *[]string
}

// ProcessService manages process models and the built-in template
// catalog. Webhook and form reference lists are resolved against the
// registries whenever a model is written.
type ProcessService struct {
	store    *store.Store[models.ProcessDocument]
	webhooks *WebhookService
	forms    *FormService
}

func NewProcessService(s *store.Store[models.ProcessDocument], webhooks *WebhookService, forms *FormService) *ProcessService {
	return &ProcessService{store: s, webhooks: webhooks, forms: forms}
}

func (s *ProcessService) List() []ProcessEntry {
	var entries []ProcessEntry
	s.store.View(func(doc models.ProcessDocument) {
		entries = make([]ProcessEntry, 0, len(doc))
		for key, model := range doc {
			entries = append(entries, ProcessEntry{Key: key, ProcessModel: model})
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

func (s *ProcessService) Get(key string) (models.ProcessModel, error) {
	var (
		model models.ProcessModel
		ok    bool
	)
	s.store.View(func(doc models.ProcessDocument) {
		model, ok = doc[key]
	})
	if !ok {
		return models.ProcessModel{}, fmt.Errorf("process model %q: %w", key, ErrNotFound)
	}
	return model, nil
}

func (s *ProcessService) Create(key string, model models.ProcessModel) error {
	if err := s.validateModel(model); err != nil {
		return err
	}
	return s.store.Update(func(doc models.ProcessDocument) (models.ProcessDocument, error) {
		if _, exists := doc[key]; exists {
			return doc, fmt.Errorf("process model %q: %w", key, ErrConflict)
		}
		model.CreatedAt = time.Now().UTC()
		doc[key] = model
		return doc, nil
	})
}

func (s *ProcessService) Update(key string, patch ProcessPatch) error {
	return s.store.Update(func(doc models.ProcessDocument) (models.ProcessDocument, error) {
		model, exists := doc[key]
		if !exists {
			return doc, fmt.Errorf("process model %q: %w", key, ErrNotFound)
		}
		if patch.Name != nil {
			model.Name = *patch.Name
		}
		if patch.Description != nil {
			model.Description = *patch.Description
		}
		if patch.Type != nil {
			model.Type = *patch.Type
		}
		if patch.Nodes != nil {
			model.Nodes = *patch.Nodes
		}
		if patch.Connections != nil {
			model.Connections = *patch.Connections
		}
		if patch.Webhooks != nil {
			model.Webhooks = *patch.Webhooks
		}
		if patch.Forms != nil {
			model.Forms = *patch.Forms
		}
		if err := s.validateModel(model); err != nil {
			return doc, err
		}
		doc[key] = model
		return doc, nil
	})
}

func (s *ProcessService) Delete(key string) error {
	return s.store.Update(func(doc models.ProcessDocument) (models.ProcessDocument, error) {
		if _, exists := doc[key]; !exists {
			return doc, fmt.Errorf("process model %q: %w", key, ErrNotFound)
		}
		delete(doc, key)
		return doc, nil
	})
}

// Templates returns the built-in template catalog.
func (s *ProcessService) Templates() []models.ProcessTemplate {
	return models.Templates()
}

// Instantiate creates a new model from a built-in template. The new key
// embeds the creation timestamp so repeated instantiations never
// collide within a second boundary.
func (s *ProcessService) Instantiate(templateID string) (string, models.ProcessModel, error) {
	tpl, ok := models.TemplateByID(templateID)
	if !ok {
		return "", models.ProcessModel{}, fmt.Errorf("template %q: %w", templateID, ErrNotFound)
	}

	now := time.Now()
	key := fmt.Sprintf("%s_model_%s", templateID, now.Format("20060102_150405"))

	model := models.ProcessModel{
		Name:        tpl.Name,
		Description: tpl.Description,
		Type:        tpl.Type,
		Nodes:       tpl.Nodes,
		Connections: tpl.Connections,
		Webhooks:    []string{},
		Forms:       []string{},
		CreatedAt:   now.UTC(),
		Template:    templateID,
	}

	err := s.store.Update(func(doc models.ProcessDocument) (models.ProcessDocument, error) {
		if _, exists := doc[key]; exists {
			return doc, fmt.Errorf("process model %q: %w", key, ErrConflict)
		}
		doc[key] = model
		return doc, nil
	})
	if err != nil {
		return "", models.ProcessModel{}, err
	}

	log.Info().Str("template", templateID).Str("model_key", key).Msg("model created from template")
	return key, model, nil
}

func (s *ProcessService) validateModel(model models.ProcessModel) error {
	if model.Type != "" && !model.Type.Valid() {
		return fmt.Errorf("unknown process type %q: %w", model.Type, ErrMalformed)
	}
	if err := model.Validate(); err != nil {
		return fmt.Errorf("%s: %w", err, ErrMalformed)
	}
	for _, key := range model.Webhooks {
		if _, err := s.webhooks.Get(key); err != nil {
			return fmt.Errorf("model references webhook %q: %w", key, ErrMalformed)
		}
	}
	for _, key := range model.Forms {
		if _, err := s.forms.Get(key); err != nil {
			return fmt.Errorf("model references form %q: %w", key, ErrMalformed)
		}
	}
	return nil
}
