package services

import (
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizsuite-hq/bizsuite/internal/domain/models"
	"github.com/bizsuite-hq/bizsuite/internal/store"
)

func newTestProcessService(t *testing.T, doc models.ProcessDocument) *ProcessService {
	t.Helper()
	webhookSvc, _ := newTestWebhookService(t, models.DefaultWebhooks())
	formStore := store.New(filepath.Join(t.TempDir(), "forms.json"), models.DefaultForms)
	require.NoError(t, formStore.Load())
	formSvc := NewFormService(formStore, webhookSvc)

	s := store.New(filepath.Join(t.TempDir(), "models.json"), func() models.ProcessDocument { return doc })
	require.NoError(t, s.Load())
	return NewProcessService(s, webhookSvc, formSvc)
}

func twoNodeModel() models.ProcessModel {
	return models.ProcessModel{
		Name: "Minimal",
		Type: models.ProcessLeadGeneration,
		Nodes: []models.ProcessNode{
			{ID: "start", Type: models.NodeTrigger, Label: "Start"},
			{ID: "end", Type: models.NodeEnd, Label: "End"},
		},
		Connections: []models.ProcessEdge{{From: "start", To: "end"}},
	}
}

func TestProcessModelValidation(t *testing.T) {
	svc := newTestProcessService(t, models.ProcessDocument{})

	t.Run("valid graph is accepted", func(t *testing.T) {
		require.NoError(t, svc.Create("minimal", twoNodeModel()))
	})

	t.Run("edge to unknown node is malformed", func(t *testing.T) {
		model := twoNodeModel()
		model.Connections = append(model.Connections, models.ProcessEdge{From: "start", To: "nowhere"})
		require.ErrorIs(t, svc.Create("dangling", model), ErrMalformed)
	})

	t.Run("duplicate node ids are malformed", func(t *testing.T) {
		model := twoNodeModel()
		model.Nodes = append(model.Nodes, models.ProcessNode{ID: "start", Type: models.NodeAction, Label: "Again"})
		require.ErrorIs(t, svc.Create("dupes", model), ErrMalformed)
	})

	t.Run("unknown node type is malformed", func(t *testing.T) {
		model := twoNodeModel()
		model.Nodes[0].Type = "teleport"
		require.ErrorIs(t, svc.Create("badnode", model), ErrMalformed)
	})

	t.Run("unknown process type is malformed", func(t *testing.T) {
		model := twoNodeModel()
		model.Type = "time_travel"
		require.ErrorIs(t, svc.Create("badtype", model), ErrMalformed)
	})

	t.Run("resolving registry references are accepted", func(t *testing.T) {
		model := twoNodeModel()
		model.Webhooks = []string{"lead_capture"}
		model.Forms = []string{"contact_form"}
		require.NoError(t, svc.Create("linked", model))
	})

	t.Run("unknown webhook reference is malformed", func(t *testing.T) {
		model := twoNodeModel()
		model.Webhooks = []string{"no_such_webhook"}
		require.ErrorIs(t, svc.Create("badhook", model), ErrMalformed)
	})

	t.Run("unknown form reference is malformed", func(t *testing.T) {
		model := twoNodeModel()
		model.Forms = []string{"no_such_form"}
		require.ErrorIs(t, svc.Create("badform", model), ErrMalformed)
	})

	t.Run("update revalidates registry references", func(t *testing.T) {
		hooks := []string{"no_such_webhook"}
		err := svc.Update("minimal", ProcessPatch{Webhooks: &hooks})
		require.ErrorIs(t, err, ErrMalformed)

		model, err2 := svc.Get("minimal")
		require.NoError(t, err2)
		assert.Empty(t, model.Webhooks)
	})

	t.Run("update revalidates the graph", func(t *testing.T) {
		edges := []models.ProcessEdge{{From: "start", To: "missing"}}
		err := svc.Update("minimal", ProcessPatch{Connections: &edges})
		require.ErrorIs(t, err, ErrMalformed)

		// Failed update must leave the stored model intact.
		model, err2 := svc.Get("minimal")
		require.NoError(t, err2)
		assert.Len(t, model.Connections, 1)
	})
}

func TestProcessDefaults(t *testing.T) {
	svc := newTestProcessService(t, models.DefaultModels())

	entries := svc.List()
	require.Len(t, entries, 2)
	assert.Equal(t, "lead_capture_model", entries[0].Key)
	assert.Equal(t, "support_ticket_model", entries[1].Key)

	// Seeded models must pass full validation, registry references
	// included, or later updates would be rejected.
	for _, e := range entries {
		assert.NoError(t, e.Validate(), e.Key)
		assert.NoError(t, svc.Update(e.Key, ProcessPatch{}), e.Key)
	}
}

func TestProcessTemplates(t *testing.T) {
	svc := newTestProcessService(t, models.ProcessDocument{})

	t.Run("catalog lists six templates", func(t *testing.T) {
		templates := svc.Templates()
		require.Len(t, templates, 6)
		assert.Equal(t, "lead_generation", templates[0].ID)
		assert.Equal(t, "invoice_processing", templates[5].ID)
	})

	t.Run("instantiate creates a timestamped model", func(t *testing.T) {
		key, model, err := svc.Instantiate("lead_generation")
		require.NoError(t, err)

		assert.Regexp(t, regexp.MustCompile(`^lead_generation_model_\d{8}_\d{6}$`), key)
		assert.Equal(t, "Lead Generation Workflow", model.Name)
		assert.Equal(t, "lead_generation", model.Template)
		assert.NotEmpty(t, model.Nodes)
		assert.Empty(t, model.Webhooks)
		assert.Empty(t, model.Forms)

		stored, err := svc.Get(key)
		require.NoError(t, err)
		assert.NoError(t, stored.Validate())
	})

	t.Run("metadata-only template instantiates with an empty graph", func(t *testing.T) {
		key, model, err := svc.Instantiate("customer_support")
		require.NoError(t, err)
		assert.Contains(t, key, "customer_support_model_")
		assert.Empty(t, model.Nodes)
	})

	t.Run("unknown template is not found", func(t *testing.T) {
		_, _, err := svc.Instantiate("ghost")
		require.ErrorIs(t, err, ErrNotFound)
	})
}
