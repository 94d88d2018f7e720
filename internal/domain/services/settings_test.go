package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizsuite-hq/bizsuite/internal/domain/models"
	"github.com/bizsuite-hq/bizsuite/internal/store"
)

func TestSettingsDefaults(t *testing.T) {
	svc := newTestSettings(t)

	general, err := svc.Section("general")
	require.NoError(t, err)
	assert.Equal(t, "n8n Business Suite", general["app_name"])

	assert.Equal(t, "smtp", svc.Get("integrations", "email_service", ""))
	assert.Equal(t, "fallback", svc.Get("integrations", "missing_key", "fallback"))
	assert.Equal(t, "fallback", svc.Get("no_such_section", "key", "fallback"))
}

func TestSettingsUpdate(t *testing.T) {
	svc := newTestSettings(t)

	t.Run("merges into an existing section", func(t *testing.T) {
		require.NoError(t, svc.Update("general", map[string]any{"theme": "dark"}))

		general, err := svc.Section("general")
		require.NoError(t, err)
		assert.Equal(t, "dark", general["theme"])
		assert.Equal(t, "n8n Business Suite", general["app_name"])
	})

	t.Run("creates a missing section", func(t *testing.T) {
		require.NoError(t, svc.Update("plugins", map[string]any{"enabled": true}))

		plugins, err := svc.Section("plugins")
		require.NoError(t, err)
		assert.Equal(t, true, plugins["enabled"])
	})

	t.Run("unknown section read is not found", func(t *testing.T) {
		_, err := svc.Section("nope")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSettingsReset(t *testing.T) {
	svc := newTestSettings(t)

	require.NoError(t, svc.Update("general", map[string]any{"theme": "dark"}))
	require.NoError(t, svc.Reset())

	general, err := svc.Section("general")
	require.NoError(t, err)
	assert.Equal(t, "light", general["theme"])
}

func TestSettingsSchemaUpgrade(t *testing.T) {
	// A document written before sections were added: no schema_version,
	// only a general section with a custom value.
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"general":{"app_name":"Custom Name"}}`), 0o644))

	s := store.New(path, models.DefaultSettings)
	svc := NewSettingsService(s)
	require.NoError(t, svc.Load())

	doc := svc.Document()
	assert.Equal(t, models.SettingsSchemaVersion, doc.SchemaVersion())

	// Operator values survive, missing sections are filled in.
	general, err := svc.Section("general")
	require.NoError(t, err)
	assert.Equal(t, "Custom Name", general["app_name"])

	webhooks, err := svc.Section("webhooks")
	require.NoError(t, err)
	assert.NotNil(t, webhooks["default_headers"])
}

func TestDeliveryPolicy(t *testing.T) {
	svc := newTestSettings(t)

	t.Run("reflects stored values", func(t *testing.T) {
		require.NoError(t, svc.Update("webhooks", map[string]any{
			"timeout":        10,
			"retry_attempts": 7,
			"retry_delay":    1,
		}))

		policy := svc.DeliveryPolicy()
		assert.Equal(t, 10*time.Second, policy.Timeout)
		assert.Equal(t, 7, policy.RetryAttempts)
		assert.Equal(t, time.Second, policy.RetryDelay)
		assert.Equal(t, "application/json", policy.DefaultHeaders["Content-Type"])
	})

	t.Run("mistyped values fall back to defaults", func(t *testing.T) {
		require.NoError(t, svc.Update("webhooks", map[string]any{"timeout": "soon"}))

		policy := svc.DeliveryPolicy()
		assert.Equal(t, 30*time.Second, policy.Timeout)
	})
}

func TestSettingsDocumentIsACopy(t *testing.T) {
	svc := newTestSettings(t)

	doc := svc.Document()
	general := doc.Section("general")
	general["app_name"] = "mutated"

	fresh, err := svc.Section("general")
	require.NoError(t, err)
	assert.Equal(t, "n8n Business Suite", fresh["app_name"])
}
