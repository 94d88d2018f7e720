package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizsuite-hq/bizsuite/internal/domain/models"
	"github.com/bizsuite-hq/bizsuite/internal/store"
)

func newTestFormService(t *testing.T, webhooks models.WebhookDocument, forms models.FormDocument) (*FormService, *WebhookService) {
	t.Helper()
	webhookSvc, _ := newTestWebhookService(t, webhooks)
	s := store.New(filepath.Join(t.TempDir(), "forms.json"), func() models.FormDocument { return forms })
	require.NoError(t, s.Load())
	return NewFormService(s, webhookSvc), webhookSvc
}

func contactForm(webhookKey string) models.FormDocument {
	return models.FormDocument{
		"contact": {
			Name: "Contact",
			Fields: []models.FieldSpec{
				{Name: "full_name", Label: "Full Name", Type: models.FieldText, Required: true},
				{Name: "email", Label: "Email Address", Type: models.FieldEmail, Required: true},
				{Name: "notes", Label: "Notes", Type: models.FieldTextarea},
			},
			WebhookKey: webhookKey,
		},
	}
}

func TestFormSubmit(t *testing.T) {
	t.Run("missing required fields reject without an outbound call", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}))
		defer srv.Close()

		svc, _ := newTestFormService(t, webhookDoc("crm", srv.URL, true), contactForm("crm"))

		result, err := svc.Submit(context.Background(), "contact", map[string]any{
			"full_name": "Ada Lovelace",
			"email":     "   ",
		}, nil)
		require.NoError(t, err)

		assert.Equal(t, models.SubmissionRejected, result.Outcome)
		require.Len(t, result.FieldErrors, 1)
		assert.Equal(t, "email", result.FieldErrors[0].Field)
		assert.Equal(t, "Email Address is required", result.FieldErrors[0].Message)
		assert.Equal(t, int32(0), calls.Load())
	})

	t.Run("valid submission is forwarded with form metadata", func(t *testing.T) {
		received := make(chan map[string]any, 1)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			received <- decodeJSONBody(t, r)
			w.Write([]byte("ok"))
		}))
		defer srv.Close()

		svc, _ := newTestFormService(t, webhookDoc("crm", srv.URL, true), contactForm("crm"))

		result, err := svc.Submit(context.Background(), "contact", map[string]any{
			"full_name": "Ada Lovelace",
			"email":     "ada@example.com",
		}, nil)
		require.NoError(t, err)

		assert.Equal(t, models.SubmissionForwarded, result.Outcome)
		assert.NotEmpty(t, result.SubmissionID)
		require.NotNil(t, result.Delivery)
		assert.True(t, result.Delivery.Success)

		body := <-received
		assert.Equal(t, "contact", body["form_key"])
		assert.Equal(t, "Contact", body["form_name"])
		assert.Equal(t, "crm", body["webhook_key"])
		assert.Equal(t, "ada@example.com", body["email"])
	})

	t.Run("no webhook key collects the submission", func(t *testing.T) {
		svc, _ := newTestFormService(t, models.WebhookDocument{}, contactForm(""))

		result, err := svc.Submit(context.Background(), "contact", map[string]any{
			"full_name": "Ada Lovelace",
			"email":     "ada@example.com",
		}, nil)
		require.NoError(t, err)

		assert.Equal(t, models.SubmissionCollected, result.Outcome)
		assert.NotEmpty(t, result.SubmissionID)
		assert.Nil(t, result.Delivery)
	})

	t.Run("dangling webhook key is malformed", func(t *testing.T) {
		svc, _ := newTestFormService(t, models.WebhookDocument{}, contactForm("gone"))

		_, err := svc.Submit(context.Background(), "contact", map[string]any{
			"full_name": "Ada Lovelace",
			"email":     "ada@example.com",
		}, nil)
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("unknown form is not found", func(t *testing.T) {
		svc, _ := newTestFormService(t, models.WebhookDocument{}, models.FormDocument{})
		_, err := svc.Submit(context.Background(), "ghost", map[string]any{}, nil)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("required file field checks uploads", func(t *testing.T) {
		forms := models.FormDocument{
			"upload": {
				Name: "Upload",
				Fields: []models.FieldSpec{
					{Name: "attachment", Label: "Attachment", Type: models.FieldFile, Required: true},
				},
			},
		}
		svc, _ := newTestFormService(t, models.WebhookDocument{}, forms)

		result, err := svc.Submit(context.Background(), "upload", map[string]any{}, nil)
		require.NoError(t, err)
		assert.Equal(t, models.SubmissionRejected, result.Outcome)

		result, err = svc.Submit(context.Background(), "upload", map[string]any{}, []models.FileUpload{
			{Field: "attachment", Filename: "a.pdf", Data: []byte("x")},
		})
		require.NoError(t, err)
		assert.Equal(t, models.SubmissionCollected, result.Outcome)
	})
}

func TestFormDefinitions(t *testing.T) {
	svc, _ := newTestFormService(t, models.DefaultWebhooks(), models.DefaultForms())

	t.Run("defaults are seeded in insertion order", func(t *testing.T) {
		entries := svc.List()
		require.Len(t, entries, 3)
		assert.Equal(t, "contact_form", entries[0].Key)
		assert.Equal(t, "feedback_form", entries[1].Key)
		assert.Equal(t, "booking_form", entries[2].Key)
	})

	t.Run("create validates the webhook reference", func(t *testing.T) {
		err := svc.Create("broken", models.FormDefinition{Name: "Broken", WebhookKey: "nope"})
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("create validates field specs", func(t *testing.T) {
		err := svc.Create("bad_select", models.FormDefinition{
			Name:   "Bad",
			Fields: []models.FieldSpec{{Name: "pick", Label: "Pick", Type: models.FieldSelect}},
		})
		require.ErrorIs(t, err, ErrMalformed)

		err = svc.Create("bad_type", models.FormDefinition{
			Name:   "Bad",
			Fields: []models.FieldSpec{{Name: "x", Label: "X", Type: "hologram"}},
		})
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("add and remove fields", func(t *testing.T) {
		require.NoError(t, svc.Create("simple", models.FormDefinition{Name: "Simple"}))

		field := models.FieldSpec{Name: "email", Label: "Email", Type: models.FieldEmail, Required: true}
		require.NoError(t, svc.AddField("simple", field))
		require.ErrorIs(t, svc.AddField("simple", field), ErrConflict)

		def, err := svc.Get("simple")
		require.NoError(t, err)
		require.Len(t, def.Fields, 1)

		require.NoError(t, svc.RemoveField("simple", "email"))
		require.ErrorIs(t, svc.RemoveField("simple", "email"), ErrNotFound)
	})

	t.Run("update validates the new webhook reference", func(t *testing.T) {
		gone := "does_not_exist"
		err := svc.Update("contact_form", FormPatch{WebhookKey: &gone})
		require.ErrorIs(t, err, ErrMalformed)

		// The failed update must not have been persisted.
		def, err2 := svc.Get("contact_form")
		require.NoError(t, err2)
		assert.Equal(t, "lead_capture", def.WebhookKey)
	})
}

func decodeJSONBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}
