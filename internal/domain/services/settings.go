package services

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bizsuite-hq/bizsuite/internal/domain/models"
	"github.com/bizsuite-hq/bizsuite/internal/store"
)

// SettingsService exposes the application settings document: sectioned
// reads, merge-style updates, and schema upgrades on load.
type SettingsService struct {
	store *store.Store[models.SettingsDocument]
}

func NewSettingsService(s *store.Store[models.SettingsDocument]) *SettingsService {
	return &SettingsService{store: s}
}

// Load reads the document and upgrades it in place when it predates the
// current schema: missing sections are filled from defaults, present
// sections keep their operator values untouched.
func (s *SettingsService) Load() error {
	if err := s.store.Load(); err != nil {
		return err
	}

	var version int
	s.store.View(func(doc models.SettingsDocument) {
		version = doc.SchemaVersion()
	})
	if version >= models.SettingsSchemaVersion {
		return nil
	}

	log.Info().
		Int("from_version", version).
		Int("to_version", models.SettingsSchemaVersion).
		Msg("upgrading settings document")

	return s.store.Update(func(doc models.SettingsDocument) (models.SettingsDocument, error) {
		defaults := models.DefaultSettings()
		for section, value := range defaults {
			if _, ok := doc[section]; !ok {
				doc[section] = value
			}
		}
		doc["schema_version"] = models.SettingsSchemaVersion
		return doc, nil
	})
}

// Document returns a deep copy of the whole settings tree.
func (s *SettingsService) Document() models.SettingsDocument {
	var out models.SettingsDocument
	s.store.View(func(doc models.SettingsDocument) {
		out = copyMap(doc)
	})
	return out
}

// Section returns a deep copy of one named section.
func (s *SettingsService) Section(name string) (map[string]any, error) {
	var section map[string]any
	s.store.View(func(doc models.SettingsDocument) {
		if raw := doc.Section(name); raw != nil {
			section = copyMap(raw)
		}
	})
	if section == nil {
		return nil, fmt.Errorf("settings section %q: %w", name, ErrNotFound)
	}
	return section, nil
}

// Get reads one key from a section, returning fallback when either the
// section or the key is absent.
func (s *SettingsService) Get(section, key string, fallback any) any {
	value := fallback
	s.store.View(func(doc models.SettingsDocument) {
		if sec := doc.Section(section); sec != nil {
			if v, ok := sec[key]; ok {
				value = v
			}
		}
	})
	return value
}

// Update merges values into a section, creating the section when it does
// not exist yet.
func (s *SettingsService) Update(section string, values map[string]any) error {
	return s.store.Update(func(doc models.SettingsDocument) (models.SettingsDocument, error) {
		sec := doc.Section(section)
		if sec == nil {
			sec = make(map[string]any, len(values))
		} else {
			sec = copyMap(sec)
		}
		for k, v := range values {
			sec[k] = v
		}
		doc[section] = sec
		return doc, nil
	})
}

// Replace swaps the entire document. The schema version is forced to the
// current one so a stale payload cannot downgrade the store.
func (s *SettingsService) Replace(doc models.SettingsDocument) error {
	return s.store.Update(func(models.SettingsDocument) (models.SettingsDocument, error) {
		next := copyMap(doc)
		next["schema_version"] = models.SettingsSchemaVersion
		return next, nil
	})
}

// Reset restores factory defaults.
func (s *SettingsService) Reset() error {
	return s.store.Update(func(models.SettingsDocument) (models.SettingsDocument, error) {
		return models.DefaultSettings(), nil
	})
}

// DeliveryPolicy is the outbound webhook behavior derived from the
// webhooks settings section.
type DeliveryPolicy struct {
	Timeout        time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
	DefaultHeaders map[string]string
}

// DeliveryPolicy resolves the current policy, falling back to defaults
// for any missing or mistyped key.
func (s *SettingsService) DeliveryPolicy() DeliveryPolicy {
	policy := DeliveryPolicy{
		Timeout:        30 * time.Second,
		RetryAttempts:  3,
		RetryDelay:     5 * time.Second,
		DefaultHeaders: map[string]string{},
	}

	s.store.View(func(doc models.SettingsDocument) {
		sec := doc.Section("webhooks")
		if sec == nil {
			return
		}
		if v, ok := asInt(sec["timeout"]); ok && v > 0 {
			policy.Timeout = time.Duration(v) * time.Second
		}
		if v, ok := asInt(sec["retry_attempts"]); ok && v > 0 {
			policy.RetryAttempts = v
		}
		if v, ok := asInt(sec["retry_delay"]); ok && v >= 0 {
			policy.RetryDelay = time.Duration(v) * time.Second
		}
		if headers, ok := sec["default_headers"].(map[string]any); ok {
			for k, v := range headers {
				if sv, ok := v.(string); ok {
					policy.DefaultHeaders[k] = sv
				}
			}
		}
	})

	return policy
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	}
	return 0, false
}

// copyMap deep-copies the map values JSON documents can contain: nested
// objects and arrays are cloned, scalars are shared.
func copyMap[M ~map[string]any](m M) M {
	out := make(M, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	}
	return v
}
