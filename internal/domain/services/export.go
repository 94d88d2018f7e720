package services

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bizsuite-hq/bizsuite/internal/domain/models"
	"github.com/bizsuite-hq/bizsuite/internal/store"
)

// Archive entry names. These match the on-disk store filenames so a
// backup can also be unpacked by hand into the data directory.
const (
	archiveSettings = "settings.json"
	archiveWebhooks = "webhooks.json"
	archiveForms    = "custom_forms.json"
	archiveModels   = "business_models.json"
)

// ExportService builds full-application backups and restores them. A
// restore is all-or-nothing: every entry is parsed and validated before
// any store is touched.
type ExportService struct {
	settings *store.Store[models.SettingsDocument]
	webhooks *store.Store[models.WebhookDocument]
	forms    *store.Store[models.FormDocument]
	process  *store.Store[models.ProcessDocument]
}

func NewExportService(
	settings *store.Store[models.SettingsDocument],
	webhooks *store.Store[models.WebhookDocument],
	forms *store.Store[models.FormDocument],
	process *store.Store[models.ProcessDocument],
) *ExportService {
	return &ExportService{settings: settings, webhooks: webhooks, forms: forms, process: process}
}

// Filename suggests a download name embedding the export timestamp.
func (s *ExportService) Filename() string {
	return fmt.Sprintf("n8n_business_suite_backup_%s.zip", time.Now().Format("20060102_150405"))
}

// Export writes a zip archive containing all four documents.
func (s *ExportService) Export(w io.Writer) error {
	zw := zip.NewWriter(w)

	entries := []struct {
		name  string
		bytes func() ([]byte, error)
	}{
		{archiveSettings, s.settings.Bytes},
		{archiveWebhooks, s.webhooks.Bytes},
		{archiveForms, s.forms.Bytes},
		{archiveModels, s.process.Bytes},
	}

	for _, entry := range entries {
		data, err := entry.bytes()
		if err != nil {
			return fmt.Errorf("serialize %s: %w", entry.name, err)
		}
		f, err := zw.Create(entry.name)
		if err != nil {
			return fmt.Errorf("create archive entry %s: %w", entry.name, err)
		}
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("write archive entry %s: %w", entry.name, err)
		}
	}

	return zw.Close()
}

// ImportArchive restores stores from a zip backup. Unknown entries are
// ignored; recognized ones are parsed up front so a corrupt archive
// leaves every store as it was.
func (s *ExportService) ImportArchive(data []byte) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("open archive: %w", ErrMalformed)
	}

	staged := make(map[string][]byte)
	for _, f := range zr.File {
		switch f.Name {
		case archiveSettings, archiveWebhooks, archiveForms, archiveModels:
		default:
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("read %s: %w", f.Name, ErrMalformed)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("read %s: %w", f.Name, ErrMalformed)
		}
		staged[f.Name] = content
	}

	if len(staged) == 0 {
		return fmt.Errorf("archive contains no recognized documents: %w", ErrMalformed)
	}

	// Validation pass. Nothing is applied until every staged document
	// parses into its concrete type.
	if raw, ok := staged[archiveSettings]; ok {
		var doc models.SettingsDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("%s: %w", archiveSettings, ErrMalformed)
		}
		stamped, err := stampSettings(doc)
		if err != nil {
			return fmt.Errorf("%s: %w", archiveSettings, err)
		}
		staged[archiveSettings] = stamped
	}
	if raw, ok := staged[archiveWebhooks]; ok {
		var doc models.WebhookDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("%s: %w", archiveWebhooks, ErrMalformed)
		}
	}
	if raw, ok := staged[archiveForms]; ok {
		var doc models.FormDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("%s: %w", archiveForms, ErrMalformed)
		}
	}
	if raw, ok := staged[archiveModels]; ok {
		var doc models.ProcessDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("%s: %w", archiveModels, ErrMalformed)
		}
		for key, model := range doc {
			if err := model.Validate(); err != nil {
				return fmt.Errorf("%s: model %q: %w", archiveModels, key, ErrMalformed)
			}
		}
	}

	// Apply pass.
	apply := []struct {
		name    string
		replace func([]byte) error
	}{
		{archiveSettings, s.settings.Replace},
		{archiveWebhooks, s.webhooks.Replace},
		{archiveForms, s.forms.Replace},
		{archiveModels, s.process.Replace},
	}
	for _, a := range apply {
		raw, ok := staged[a.name]
		if !ok {
			continue
		}
		if err := a.replace(raw); err != nil {
			return err
		}
		log.Info().Str("document", a.name).Msg("imported document from backup")
	}

	return nil
}

// ImportSettings restores only the settings document from a plain JSON
// payload.
func (s *ExportService) ImportSettings(data []byte) error {
	var doc models.SettingsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse settings: %w", ErrMalformed)
	}
	stamped, err := stampSettings(doc)
	if err != nil {
		return fmt.Errorf("parse settings: %w", err)
	}
	return s.settings.Replace(stamped)
}

// stampSettings pins the current schema version on an imported settings
// document, the same way a replace through the settings API does.
func stampSettings(doc models.SettingsDocument) ([]byte, error) {
	doc["schema_version"] = models.SettingsSchemaVersion
	return json.Marshal(doc)
}
