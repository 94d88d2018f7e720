package models

// SettingsSchemaVersion is bumped whenever a default section is added or
// renamed; the settings service upgrades older documents on load.
const SettingsSchemaVersion = 1

// SettingsDocument is the persisted settings tree. Sections are free-form
// maps so callers can store new keys without a schema change; the
// schema_version key lives at the top level next to the sections.
type SettingsDocument map[string]any

// SchemaVersion returns the document's declared version, or 0 when the
// key is missing or not numeric.
func (d SettingsDocument) SchemaVersion() int {
	switch v := d["schema_version"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// Section returns the named section as a map, or nil when absent or not
// an object.
func (d SettingsDocument) Section(name string) map[string]any {
	s, _ := d[name].(map[string]any)
	return s
}

func DefaultSettings() SettingsDocument {
	return SettingsDocument{
		"schema_version": SettingsSchemaVersion,
		"general": map[string]any{
			"app_name":      "n8n Business Suite",
			"theme":         "light",
			"auto_save":     true,
			"notifications": true,
			"language":      "en",
			"timezone":      "UTC",
		},
		"webhooks": map[string]any{
			"timeout":        30,
			"retry_attempts": 3,
			"retry_delay":    5,
			"default_headers": map[string]any{
				"Content-Type": "application/json",
				"User-Agent":   "n8n-business-suite/1.0",
			},
		},
		"forms": map[string]any{
			"max_file_size":            10,
			"allowed_file_types":       []any{"pdf", "jpg", "jpeg", "png", "mp3", "wav", "m4a"},
			"required_field_indicator": "*",
			"validation_enabled":       true,
		},
		"security": map[string]any{
			"enable_csrf":         true,
			"session_timeout":     3600,
			"max_login_attempts":  5,
			"password_min_length": 8,
		},
		"analytics": map[string]any{
			"track_form_submissions": true,
			"track_webhook_calls":    true,
			"retention_days":         90,
			"export_format":          "json",
		},
		"ui": map[string]any{
			"sidebar_expanded":  true,
			"show_tooltips":     true,
			"animation_enabled": true,
			"compact_mode":      false,
		},
		"integrations": map[string]any{
			"n8n_base_url":  "",
			"api_key":       "",
			"slack_webhook": "",
			"email_service": "smtp",
			"smtp_settings": map[string]any{
				"host":     "",
				"port":     587,
				"username": "",
				"password": "",
				"use_tls":  true,
			},
		},
	}
}
