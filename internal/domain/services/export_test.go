package services

import (
	"archive/zip"
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizsuite-hq/bizsuite/internal/domain/models"
	"github.com/bizsuite-hq/bizsuite/internal/store"
)

type exportFixture struct {
	svc      *ExportService
	settings *store.Store[models.SettingsDocument]
	webhooks *store.Store[models.WebhookDocument]
	forms    *store.Store[models.FormDocument]
	process  *store.Store[models.ProcessDocument]
}

func newExportFixture(t *testing.T) exportFixture {
	t.Helper()
	dir := t.TempDir()

	f := exportFixture{
		settings: store.New(filepath.Join(dir, "app_settings.json"), models.DefaultSettings),
		webhooks: store.New(filepath.Join(dir, "webhooks.json"), models.DefaultWebhooks),
		forms:    store.New(filepath.Join(dir, "custom_forms.json"), models.DefaultForms),
		process:  store.New(filepath.Join(dir, "business_models.json"), models.DefaultModels),
	}
	require.NoError(t, f.settings.Load())
	require.NoError(t, f.webhooks.Load())
	require.NoError(t, f.forms.Load())
	require.NoError(t, f.process.Load())

	f.svc = NewExportService(f.settings, f.webhooks, f.forms, f.process)
	return f
}

func TestExportArchive(t *testing.T) {
	f := newExportFixture(t)

	var buf bytes.Buffer
	require.NoError(t, f.svc.Export(&buf))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, file := range zr.File {
		names[file.Name] = true
	}
	assert.True(t, names["settings.json"])
	assert.True(t, names["webhooks.json"])
	assert.True(t, names["custom_forms.json"])
	assert.True(t, names["business_models.json"])
}

func TestImportRoundTrip(t *testing.T) {
	source := newExportFixture(t)

	// Make the source distinguishable from defaults.
	require.NoError(t, source.webhooks.Update(func(doc models.WebhookDocument) (models.WebhookDocument, error) {
		cfg := doc["lead_capture"]
		cfg.Name = "Exported Name"
		doc["lead_capture"] = cfg
		return doc, nil
	}))

	var buf bytes.Buffer
	require.NoError(t, source.svc.Export(&buf))

	target := newExportFixture(t)
	require.NoError(t, target.svc.ImportArchive(buf.Bytes()))

	target.webhooks.View(func(doc models.WebhookDocument) {
		assert.Equal(t, "Exported Name", doc["lead_capture"].Name)
	})
}

func TestImportRejectsCorruptArchives(t *testing.T) {
	t.Run("not a zip", func(t *testing.T) {
		f := newExportFixture(t)
		require.ErrorIs(t, f.svc.ImportArchive([]byte("definitely not a zip")), ErrMalformed)
	})

	t.Run("zip without recognized entries", func(t *testing.T) {
		f := newExportFixture(t)

		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		entry, err := zw.Create("readme.txt")
		require.NoError(t, err)
		_, err = entry.Write([]byte("hi"))
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		require.ErrorIs(t, f.svc.ImportArchive(buf.Bytes()), ErrMalformed)
	})

	t.Run("one bad document aborts the whole import", func(t *testing.T) {
		f := newExportFixture(t)

		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)

		good, err := zw.Create("webhooks.json")
		require.NoError(t, err)
		_, err = good.Write([]byte(`{"probe":{"name":"Probe","url":"https://example.com","active":true}}`))
		require.NoError(t, err)

		bad, err := zw.Create("custom_forms.json")
		require.NoError(t, err)
		_, err = bad.Write([]byte(`[not json`))
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		require.ErrorIs(t, f.svc.ImportArchive(buf.Bytes()), ErrMalformed)

		// The valid webhooks entry must not have been applied.
		f.webhooks.View(func(doc models.WebhookDocument) {
			_, exists := doc["probe"]
			assert.False(t, exists)
			assert.Len(t, doc, 5)
		})
	})

	t.Run("invalid process graph aborts the import", func(t *testing.T) {
		f := newExportFixture(t)

		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		entry, err := zw.Create("business_models.json")
		require.NoError(t, err)
		_, err = entry.Write([]byte(`{"broken":{"name":"Broken","nodes":[{"id":"a","type":"trigger"}],"connections":[{"from":"a","to":"missing"}]}}`))
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		require.ErrorIs(t, f.svc.ImportArchive(buf.Bytes()), ErrMalformed)

		f.process.View(func(doc models.ProcessDocument) {
			assert.Len(t, doc, 2)
		})
	})
}

func TestImportSettingsJSON(t *testing.T) {
	f := newExportFixture(t)

	t.Run("valid document replaces settings", func(t *testing.T) {
		payload := []byte(`{"general":{"app_name":"Imported"}}`)
		require.NoError(t, f.svc.ImportSettings(payload))

		f.settings.View(func(doc models.SettingsDocument) {
			assert.Equal(t, "Imported", doc.Section("general")["app_name"])
		})
	})

	t.Run("versionless document gets the current schema version", func(t *testing.T) {
		payload := []byte(`{"general":{"app_name":"Versionless"}}`)
		require.NoError(t, f.svc.ImportSettings(payload))

		f.settings.View(func(doc models.SettingsDocument) {
			assert.Equal(t, models.SettingsSchemaVersion, doc.SchemaVersion())
		})
	})

	t.Run("invalid document is rejected", func(t *testing.T) {
		require.ErrorIs(t, f.svc.ImportSettings([]byte(`"just a string"`)), ErrMalformed)
	})
}

func TestImportArchiveStampsSettingsVersion(t *testing.T) {
	f := newExportFixture(t)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entry, err := zw.Create("settings.json")
	require.NoError(t, err)
	_, err = entry.Write([]byte(`{"general":{"app_name":"Old Backup"}}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	require.NoError(t, f.svc.ImportArchive(buf.Bytes()))

	f.settings.View(func(doc models.SettingsDocument) {
		assert.Equal(t, "Old Backup", doc.Section("general")["app_name"])
		assert.Equal(t, models.SettingsSchemaVersion, doc.SchemaVersion())
	})
}
