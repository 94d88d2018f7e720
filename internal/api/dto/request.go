package dto

import "github.com/bizsuite-hq/bizsuite/internal/domain/models"

// Webhooks
type CreateWebhookRequest struct {
	Key         string   `json:"key" validate:"required,key"`
	Name        string   `json:"name" validate:"required,min=1,max=100"`
	URL         string   `json:"url" validate:"required,url"`
	Description string   `json:"description,omitempty" validate:"omitempty,max=500"`
	Fields      []string `json:"fields,omitempty"`
	Active      *bool    `json:"active,omitempty"`
}

type UpdateWebhookRequest struct {
	Name        *string   `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	URL         *string   `json:"url,omitempty" validate:"omitempty,url"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=500"`
	Fields      *[]string `json:"fields,omitempty"`
	Active      *bool     `json:"active,omitempty"`
}

type TestWebhookRequest struct {
	URL     string         `json:"url" validate:"required,url"`
	Payload map[string]any `json:"payload,omitempty"`
}

type SendWebhookRequest struct {
	Data map[string]any `json:"data" validate:"required"`
}

// Forms
type CreateFormRequest struct {
	Key         string             `json:"key" validate:"required,key"`
	Name        string             `json:"name" validate:"required,min=1,max=100"`
	Description string             `json:"description,omitempty" validate:"omitempty,max=500"`
	Fields      []models.FieldSpec `json:"fields,omitempty"`
	WebhookKey  string             `json:"webhook_key,omitempty" validate:"omitempty,key"`
}

type UpdateFormRequest struct {
	Name        *string             `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string             `json:"description,omitempty" validate:"omitempty,max=500"`
	Fields      *[]models.FieldSpec `json:"fields,omitempty"`
	WebhookKey  *string             `json:"webhook_key,omitempty"`
}

type SubmitFormRequest struct {
	Data map[string]any `json:"data" validate:"required"`
}

// Process models
type CreateProcessModelRequest struct {
	Key         string               `json:"key" validate:"required,key"`
	Name        string               `json:"name" validate:"required,min=1,max=100"`
	Description string               `json:"description,omitempty" validate:"omitempty,max=500"`
	Type        models.ProcessType   `json:"type,omitempty"`
	Nodes       []models.ProcessNode `json:"nodes,omitempty"`
	Connections []models.ProcessEdge `json:"connections,omitempty"`
	Webhooks    []string             `json:"webhooks,omitempty"`
	Forms       []string             `json:"forms,omitempty"`
}

type UpdateProcessModelRequest struct {
	Name        *string               `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string               `json:"description,omitempty" validate:"omitempty,max=500"`
	Type        *models.ProcessType   `json:"type,omitempty"`
	Nodes       *[]models.ProcessNode `json:"nodes,omitempty"`
	Connections *[]models.ProcessEdge `json:"connections,omitempty"`
	Webhooks    *[]string             `json:"webhooks,omitempty"`
	Forms       *[]string             `json:"forms,omitempty"`
}

// Settings
type UpdateSectionRequest map[string]any
