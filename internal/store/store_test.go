package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc map[string]string

func testDefaults() testDoc {
	return testDoc{"greeting": "hello"}
}

func TestStoreLoad(t *testing.T) {
	t.Run("missing file seeds defaults and persists", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "doc.json")
		s := New(path, testDefaults)

		require.NoError(t, s.Load())

		s.View(func(doc testDoc) {
			assert.Equal(t, "hello", doc["greeting"])
		})

		// Defaults must hit disk immediately so the next load is stable.
		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		var onDisk testDoc
		require.NoError(t, json.Unmarshal(raw, &onDisk))
		assert.Equal(t, "hello", onDisk["greeting"])
	})

	t.Run("existing file wins over defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "doc.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"greeting":"custom"}`), 0o644))

		s := New(path, testDefaults)
		require.NoError(t, s.Load())

		s.View(func(doc testDoc) {
			assert.Equal(t, "custom", doc["greeting"])
		})
	})

	t.Run("corrupt file falls back to defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "doc.json")
		require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

		s := New(path, testDefaults)
		require.NoError(t, s.Load())

		s.View(func(doc testDoc) {
			assert.Equal(t, "hello", doc["greeting"])
		})

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, json.Valid(raw))
	})
}

func TestStoreUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	s := New(path, testDefaults)
	require.NoError(t, s.Load())

	t.Run("mutation persists", func(t *testing.T) {
		err := s.Update(func(doc testDoc) (testDoc, error) {
			doc["added"] = "yes"
			return doc, nil
		})
		require.NoError(t, err)

		reloaded := New(path, testDefaults)
		require.NoError(t, reloaded.Load())
		reloaded.View(func(doc testDoc) {
			assert.Equal(t, "yes", doc["added"])
		})
	})

	t.Run("error from fn leaves document untouched", func(t *testing.T) {
		err := s.Update(func(doc testDoc) (testDoc, error) {
			return nil, assert.AnError
		})
		require.Error(t, err)

		s.View(func(doc testDoc) {
			assert.Equal(t, "yes", doc["added"])
		})
	})
}

func TestStoreReplace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	s := New(path, testDefaults)
	require.NoError(t, s.Load())

	t.Run("valid payload swaps the document", func(t *testing.T) {
		require.NoError(t, s.Replace([]byte(`{"greeting":"replaced"}`)))
		s.View(func(doc testDoc) {
			assert.Equal(t, "replaced", doc["greeting"])
		})
	})

	t.Run("bad payload is rejected before any state change", func(t *testing.T) {
		require.Error(t, s.Replace([]byte(`[1,2,3]`)))
		s.View(func(doc testDoc) {
			assert.Equal(t, "replaced", doc["greeting"])
		})
	})
}

func TestStoreBytesIndentation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	s := New(path, testDefaults)
	require.NoError(t, s.Load())

	data, err := s.Bytes()
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"greeting\"")
}
