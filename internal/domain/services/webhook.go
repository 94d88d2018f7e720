package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bizsuite-hq/bizsuite/internal/domain/models"
	"github.com/bizsuite-hq/bizsuite/internal/pkg/httpclient"
	"github.com/bizsuite-hq/bizsuite/internal/pkg/logger"
	"github.com/bizsuite-hq/bizsuite/internal/pkg/metrics"
	"github.com/bizsuite-hq/bizsuite/internal/store"
)

const (
	payloadSource   = "n8n_business_suite"
	testTimeout     = 10 * time.Second
	responseExcerpt = 500
)

// WebhookEntry pairs a registry key with its configuration for listings.
type WebhookEntry struct {
	Key string `json:"key"`
	models.WebhookConfig
}

// WebhookPatch is a partial update; nil fields are left unchanged.
type WebhookPatch struct {
	Name        *string
	URL         *string
	Description *string
	Fields      *[]string
	Active      *bool
}

// WebhookService manages the outbound endpoint registry and performs
// test and delivery calls.
type WebhookService struct {
	store    *store.Store[models.WebhookDocument]
	settings *SettingsService
	client   *httpclient.PooledClient
}

func NewWebhookService(s *store.Store[models.WebhookDocument], settings *SettingsService, client *httpclient.PooledClient) *WebhookService {
	return &WebhookService{store: s, settings: settings, client: client}
}

// List returns all webhooks in insertion order (oldest first, key as the
// tiebreaker).
func (s *WebhookService) List() []WebhookEntry {
	var entries []WebhookEntry
	s.store.View(func(doc models.WebhookDocument) {
		entries = make([]WebhookEntry, 0, len(doc))
		for key, cfg := range doc {
			entries = append(entries, WebhookEntry{Key: key, WebhookConfig: cfg})
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

func (s *WebhookService) Get(key string) (models.WebhookConfig, error) {
	var (
		cfg models.WebhookConfig
		ok  bool
	)
	s.store.View(func(doc models.WebhookDocument) {
		cfg, ok = doc[key]
	})
	if !ok {
		return models.WebhookConfig{}, fmt.Errorf("webhook %q: %w", key, ErrNotFound)
	}
	return cfg, nil
}

func (s *WebhookService) Create(key string, cfg models.WebhookConfig) error {
	return s.store.Update(func(doc models.WebhookDocument) (models.WebhookDocument, error) {
		if _, exists := doc[key]; exists {
			return doc, fmt.Errorf("webhook %q: %w", key, ErrConflict)
		}
		cfg.CreatedAt = time.Now().UTC()
		doc[key] = cfg
		return doc, nil
	})
}

func (s *WebhookService) Update(key string, patch WebhookPatch) error {
	return s.store.Update(func(doc models.WebhookDocument) (models.WebhookDocument, error) {
		cfg, exists := doc[key]
		if !exists {
			return doc, fmt.Errorf("webhook %q: %w", key, ErrNotFound)
		}
		if patch.Name != nil {
			cfg.Name = *patch.Name
		}
		if patch.URL != nil {
			cfg.URL = *patch.URL
		}
		if patch.Description != nil {
			cfg.Description = *patch.Description
		}
		if patch.Fields != nil {
			cfg.Fields = *patch.Fields
		}
		if patch.Active != nil {
			cfg.Active = *patch.Active
		}
		doc[key] = cfg
		return doc, nil
	})
}

func (s *WebhookService) Delete(key string) error {
	return s.store.Update(func(doc models.WebhookDocument) (models.WebhookDocument, error) {
		if _, exists := doc[key]; !exists {
			return doc, fmt.Errorf("webhook %q: %w", key, ErrNotFound)
		}
		delete(doc, key)
		return doc, nil
	})
}

func (s *WebhookService) SetActive(key string, active bool) error {
	return s.store.Update(func(doc models.WebhookDocument) (models.WebhookDocument, error) {
		cfg, exists := doc[key]
		if !exists {
			return doc, fmt.Errorf("webhook %q: %w", key, ErrNotFound)
		}
		cfg.Active = active
		doc[key] = cfg
		return doc, nil
	})
}

// Test sends a connectivity probe to the webhook's configured URL. A
// short timeout and no retries: the operator is waiting on the result.
func (s *WebhookService) Test(ctx context.Context, key string) (models.DeliveryResult, error) {
	cfg, err := s.Get(key)
	if err != nil {
		return models.DeliveryResult{}, err
	}
	return s.TestURL(ctx, cfg.URL, nil), nil
}

// TestURL probes an arbitrary URL, used when the operator wants to try
// an endpoint before saving it. A nil payload sends the default probe.
func (s *WebhookService) TestURL(ctx context.Context, url string, payload map[string]any) models.DeliveryResult {
	if url == "" {
		return models.DeliveryResult{Success: false, Error: "Webhook URL not configured"}
	}

	if payload == nil {
		payload = map[string]any{
			"test":      true,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"message":   "Test webhook from n8n Business Suite",
		}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return models.DeliveryResult{Success: false, Error: err.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, testTimeout)
	defer cancel()

	resp, err := s.client.Post(ctx, url, "application/json", bytes.NewReader(body))
	if err != nil {
		return models.DeliveryResult{Success: false, Error: err.Error(), Attempts: 1}
	}
	defer resp.Body.Close()

	return resultFromResponse(resp, 1)
}

// Send delivers a payload to the named webhook. The payload carries the
// caller's data plus delivery metadata; attachments switch the request
// to multipart form encoding. Retries follow the current settings
// policy. Delivery failures are reported in the result, not as errors:
// the only error return is an unknown key.
func (s *WebhookService) Send(ctx context.Context, key string, data map[string]any, files []models.FileUpload) (models.DeliveryResult, error) {
	var (
		cfg   models.WebhookConfig
		known bool
	)
	s.store.View(func(doc models.WebhookDocument) {
		cfg, known = doc[key]
	})
	if !known {
		return models.DeliveryResult{Success: false, Error: "Webhook not found or inactive"},
			fmt.Errorf("webhook %q: %w", key, ErrNotFound)
	}
	if !cfg.Active {
		return models.DeliveryResult{Success: false, Error: "Webhook not found or inactive"}, nil
	}
	if cfg.URL == "" {
		return models.DeliveryResult{Success: false, Error: "Webhook URL not configured"}, nil
	}

	deliveryID := uuid.New().String()
	lg := logger.WithDeliveryID(deliveryID).With().Str("webhook_key", key).Logger()

	payload := make(map[string]any, len(data)+3)
	for k, v := range data {
		payload[k] = v
	}
	payload["webhook_key"] = key
	payload["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	payload["source"] = payloadSource

	policy := s.settings.DeliveryPolicy()

	start := time.Now()
	result := s.deliver(ctx, lg, cfg.URL, payload, files, policy)
	result.DeliveryID = deliveryID

	status := "success"
	if !result.Success {
		status = "failure"
	}
	metrics.RecordDelivery(key, status, time.Since(start).Seconds())
	if result.Attempts > 1 {
		metrics.WebhookRetriesTotal.WithLabelValues(key).Add(float64(result.Attempts - 1))
	}

	return result, nil
}

// deliver runs the attempt loop. A 4xx response is terminal: the request
// will not get better on retry. Transport errors and 5xx are retried up
// to the policy's attempt count with a fixed delay between tries.
func (s *WebhookService) deliver(ctx context.Context, lg zerolog.Logger, url string, payload map[string]any, files []models.FileUpload, policy DeliveryPolicy) models.DeliveryResult {
	attempts := policy.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr string
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			lg.Warn().Int("attempt", attempt).Msg("retrying webhook delivery")
			select {
			case <-time.After(policy.RetryDelay):
			case <-ctx.Done():
				return models.DeliveryResult{Success: false, Error: ctx.Err().Error(), Attempts: attempt - 1}
			}
		}

		result, retryable := s.attempt(ctx, url, payload, files, policy)
		result.Attempts = attempt
		if result.Success || !retryable {
			return result
		}
		lastErr = result.Error
		if lastErr == "" && result.StatusCode != nil {
			lastErr = fmt.Sprintf("received status %d", *result.StatusCode)
		}
	}

	return models.DeliveryResult{
		Success:  false,
		Error:    fmt.Sprintf("delivery failed after %d attempts: %s", attempts, lastErr),
		Attempts: attempts,
	}
}

// attempt performs one HTTP call. The second return reports whether a
// failure is worth retrying.
func (s *WebhookService) attempt(ctx context.Context, url string, payload map[string]any, files []models.FileUpload, policy DeliveryPolicy) (models.DeliveryResult, bool) {
	ctx, cancel := context.WithTimeout(ctx, policy.Timeout)
	defer cancel()

	var (
		body        io.Reader
		contentType string
	)

	if len(files) > 0 {
		buf := &bytes.Buffer{}
		writer := multipart.NewWriter(buf)
		for k, v := range payload {
			_ = writer.WriteField(k, stringifyField(v))
		}
		for _, f := range files {
			part, err := writer.CreateFormFile(f.Field, f.Filename)
			if err != nil {
				return models.DeliveryResult{Success: false, Error: err.Error()}, false
			}
			if _, err := part.Write(f.Data); err != nil {
				return models.DeliveryResult{Success: false, Error: err.Error()}, false
			}
		}
		if err := writer.Close(); err != nil {
			return models.DeliveryResult{Success: false, Error: err.Error()}, false
		}
		body = buf
		contentType = writer.FormDataContentType()
	} else {
		data, err := json.Marshal(payload)
		if err != nil {
			return models.DeliveryResult{Success: false, Error: err.Error()}, false
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return models.DeliveryResult{Success: false, Error: err.Error()}, false
	}
	for k, v := range policy.DefaultHeaders {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return models.DeliveryResult{Success: false, Error: err.Error()}, true
	}
	defer resp.Body.Close()

	result := resultFromResponse(resp, 0)
	return result, resp.StatusCode >= http.StatusInternalServerError
}

// resultFromResponse reads the response body, keeping only a short
// excerpt. Success is exactly HTTP 200.
func resultFromResponse(resp *http.Response, attempts int) models.DeliveryResult {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, responseExcerpt+1))
	text := string(raw)
	if len(text) > responseExcerpt {
		text = text[:responseExcerpt]
	}
	if text == "" {
		text = "No response"
	}

	status := resp.StatusCode
	return models.DeliveryResult{
		Success:    status == http.StatusOK,
		StatusCode: &status,
		Response:   text,
		Attempts:   attempts,
	}
}

// stringifyField renders a payload value as a multipart form field.
// Scalars keep their natural text form, composites are JSON-encoded.
func stringifyField(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	case nil:
		return ""
	}
	if data, err := json.Marshal(v); err == nil {
		return string(data)
	}
	return fmt.Sprintf("%v", v)
}
