package models

import (
	"fmt"
	"time"
)

// NodeType classifies a process node for rendering and analytics.
type NodeType string

const (
	NodeTrigger      NodeType = "trigger"
	NodeForm         NodeType = "form"
	NodeWebhook      NodeType = "webhook"
	NodeCondition    NodeType = "condition"
	NodeAction       NodeType = "action"
	NodeNotification NodeType = "notification"
	NodeDatabase     NodeType = "database"
	NodeAPI          NodeType = "api"
	NodeEnd          NodeType = "end"
)

// NodeTypes maps every node kind to its display metadata.
var NodeTypes = map[NodeType]struct {
	Icon        string
	Color       string
	Description string
}{
	NodeTrigger:      {"🚀", "#4CAF50", "Process trigger/start"},
	NodeForm:         {"📝", "#2196F3", "Form submission"},
	NodeWebhook:      {"🔗", "#FF9800", "Webhook call"},
	NodeCondition:    {"❓", "#9C27B0", "Decision point"},
	NodeAction:       {"⚡", "#F44336", "Action/task"},
	NodeNotification: {"📧", "#607D8B", "Send notification"},
	NodeDatabase:     {"💾", "#795548", "Database operation"},
	NodeAPI:          {"🌐", "#00BCD4", "API call"},
	NodeEnd:          {"🏁", "#757575", "Process end"},
}

func (t NodeType) Valid() bool {
	_, ok := NodeTypes[t]
	return ok
}

// ProcessType classifies the business process a model describes.
type ProcessType string

const (
	ProcessLeadGeneration     ProcessType = "lead_generation"
	ProcessCustomerOnboarding ProcessType = "customer_onboarding"
	ProcessSupportWorkflow    ProcessType = "support_workflow"
	ProcessSalesPipeline      ProcessType = "sales_pipeline"
	ProcessContentApproval    ProcessType = "content_approval"
	ProcessInvoiceProcessing  ProcessType = "invoice_processing"
	ProcessHROnboarding       ProcessType = "hr_onboarding"
	ProcessProjectManagement  ProcessType = "project_management"
)

// ProcessTypes maps each process kind to its display label.
var ProcessTypes = map[ProcessType]string{
	ProcessLeadGeneration:     "Lead Generation",
	ProcessCustomerOnboarding: "Customer Onboarding",
	ProcessSupportWorkflow:    "Support Workflow",
	ProcessSalesPipeline:      "Sales Pipeline",
	ProcessContentApproval:    "Content Approval",
	ProcessInvoiceProcessing:  "Invoice Processing",
	ProcessHROnboarding:       "HR Onboarding",
	ProcessProjectManagement:  "Project Management",
}

func (t ProcessType) Valid() bool {
	_, ok := ProcessTypes[t]
	return ok
}

// ProcessNode is one step in a model. X and Y are canvas coordinates.
type ProcessNode struct {
	ID    string   `json:"id"`
	Type  NodeType `json:"type"`
	Label string   `json:"label"`
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
}

// ProcessEdge is a directed connection between two node IDs. Condition
// is optional branch metadata, free-form.
type ProcessEdge struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Condition string `json:"condition,omitempty"`
}

// ProcessModel is one named process graph plus weak references to the
// webhooks and forms it uses.
type ProcessModel struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Type        ProcessType   `json:"type"`
	Nodes       []ProcessNode `json:"nodes"`
	Connections []ProcessEdge `json:"connections"`
	Webhooks    []string      `json:"webhooks"`
	Forms       []string      `json:"forms"`
	CreatedAt   time.Time     `json:"created_at"`
	Template    string        `json:"template,omitempty"`
}

// Validate checks graph integrity: node IDs must be unique and every
// edge must reference declared nodes.
func (m ProcessModel) Validate() error {
	ids := make(map[string]struct{}, len(m.Nodes))
	for _, n := range m.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node with empty id")
		}
		if !n.Type.Valid() {
			return fmt.Errorf("node %q has unknown type %q", n.ID, n.Type)
		}
		if _, dup := ids[n.ID]; dup {
			return fmt.Errorf("duplicate node id %q", n.ID)
		}
		ids[n.ID] = struct{}{}
	}
	for _, e := range m.Connections {
		if _, ok := ids[e.From]; !ok {
			return fmt.Errorf("connection references unknown node %q", e.From)
		}
		if _, ok := ids[e.To]; !ok {
			return fmt.Errorf("connection references unknown node %q", e.To)
		}
	}
	return nil
}

// ProcessDocument is the persisted store: model key -> model.
type ProcessDocument map[string]ProcessModel

// ProcessTemplate is a quick-start blueprint. Nodes and Connections may
// be empty when the template only carries descriptive metadata.
type ProcessTemplate struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Complexity    string        `json:"complexity"`
	EstimatedTime string        `json:"estimated_time"`
	Includes      []string      `json:"includes"`
	Type          ProcessType   `json:"type"`
	Nodes         []ProcessNode `json:"nodes,omitempty"`
	Connections   []ProcessEdge `json:"connections,omitempty"`
}

// Templates returns the built-in template catalog in presentation order.
func Templates() []ProcessTemplate {
	return []ProcessTemplate{
		{
			ID:            "lead_generation",
			Name:          "Lead Generation Workflow",
			Description:   "Complete lead capture, qualification, and nurturing process",
			Complexity:    "Intermediate",
			EstimatedTime: "30 minutes",
			Includes:      []string{"Contact forms", "CRM integration", "Email automation", "Lead scoring"},
			Type:          ProcessLeadGeneration,
			Nodes: []ProcessNode{
				{ID: "start", Type: NodeTrigger, Label: "Lead Source", X: 100, Y: 100},
				{ID: "form", Type: NodeForm, Label: "Contact Form", X: 250, Y: 100},
				{ID: "qualify", Type: NodeCondition, Label: "Qualify Lead", X: 400, Y: 100},
				{ID: "crm", Type: NodeWebhook, Label: "Add to CRM", X: 550, Y: 50},
				{ID: "nurture", Type: NodeAction, Label: "Nurture Campaign", X: 550, Y: 150},
				{ID: "end", Type: NodeEnd, Label: "Complete", X: 700, Y: 100},
			},
			Connections: []ProcessEdge{
				{From: "start", To: "form"},
				{From: "form", To: "qualify"},
				{From: "qualify", To: "crm", Condition: "qualified"},
				{From: "qualify", To: "nurture", Condition: "not_qualified"},
				{From: "crm", To: "end"},
				{From: "nurture", To: "end"},
			},
		},
		{
			ID:            "customer_support",
			Name:          "Customer Support Process",
			Description:   "Ticket creation, routing, escalation, and resolution workflow",
			Complexity:    "Advanced",
			EstimatedTime: "45 minutes",
			Includes:      []string{"Ticket forms", "Auto-routing", "SLA tracking", "Customer notifications"},
			Type:          ProcessSupportWorkflow,
		},
		{
			ID:            "sales_pipeline",
			Name:          "Sales Pipeline Management",
			Description:   "Opportunity tracking from lead to close",
			Complexity:    "Advanced",
			EstimatedTime: "60 minutes",
			Includes:      []string{"Opportunity forms", "Stage progression", "Sales notifications", "Reporting"},
			Type:          ProcessSalesPipeline,
		},
		{
			ID:            "onboarding",
			Name:          "Customer Onboarding",
			Description:   "New customer welcome and setup process",
			Complexity:    "Intermediate",
			EstimatedTime: "40 minutes",
			Includes:      []string{"Welcome forms", "Account setup", "Training materials", "Check-ins"},
			Type:          ProcessCustomerOnboarding,
		},
		{
			ID:            "content_approval",
			Name:          "Content Approval Workflow",
			Description:   "Content creation, review, approval, and publishing process",
			Complexity:    "Beginner",
			EstimatedTime: "20 minutes",
			Includes:      []string{"Submission forms", "Review process", "Approval routing", "Publishing"},
			Type:          ProcessContentApproval,
		},
		{
			ID:            "invoice_processing",
			Name:          "Invoice Processing",
			Description:   "Invoice receipt, validation, approval, and payment workflow",
			Complexity:    "Intermediate",
			EstimatedTime: "35 minutes",
			Includes:      []string{"Invoice upload", "Data extraction", "Approval workflow", "Payment processing"},
			Type:          ProcessInvoiceProcessing,
		},
	}
}

// TemplateByID looks up a template from the built-in catalog.
func TemplateByID(id string) (ProcessTemplate, bool) {
	for _, t := range Templates() {
		if t.ID == id {
			return t, true
		}
	}
	return ProcessTemplate{}, false
}

func DefaultModels() ProcessDocument {
	seeded := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	return ProcessDocument{
		"lead_capture_model": {
			Name:        "Lead Capture Process",
			Description: "Complete lead capture and nurturing workflow",
			Type:        ProcessLeadGeneration,
			Nodes: []ProcessNode{
				{ID: "start", Type: NodeTrigger, Label: "Website Visit", X: 100, Y: 100},
				{ID: "form", Type: NodeForm, Label: "Contact Form", X: 250, Y: 100},
				{ID: "webhook", Type: NodeWebhook, Label: "Send to CRM", X: 400, Y: 100},
				{ID: "email", Type: NodeNotification, Label: "Welcome Email", X: 550, Y: 100},
				{ID: "condition", Type: NodeCondition, Label: "Qualified Lead?", X: 400, Y: 250},
				{ID: "sales_notify", Type: NodeNotification, Label: "Notify Sales", X: 550, Y: 200},
				{ID: "nurture", Type: NodeAction, Label: "Add to Nurture", X: 550, Y: 300},
				{ID: "end", Type: NodeEnd, Label: "Process Complete", X: 700, Y: 250},
			},
			Connections: []ProcessEdge{
				{From: "start", To: "form"},
				{From: "form", To: "webhook"},
				{From: "webhook", To: "email"},
				{From: "email", To: "condition"},
				{From: "condition", To: "sales_notify", Condition: "qualified"},
				{From: "condition", To: "nurture", Condition: "not_qualified"},
				{From: "sales_notify", To: "end"},
				{From: "nurture", To: "end"},
			},
			Webhooks:  []string{"lead_capture"},
			Forms:     []string{"contact_form"},
			CreatedAt: seeded,
		},
		"support_ticket_model": {
			Name:        "Support Ticket Workflow",
			Description: "Customer support ticket processing and resolution",
			Type:        ProcessSupportWorkflow,
			Nodes: []ProcessNode{
				{ID: "ticket_created", Type: NodeTrigger, Label: "Ticket Created", X: 100, Y: 100},
				{ID: "categorize", Type: NodeCondition, Label: "Categorize Issue", X: 250, Y: 100},
				{ID: "urgent", Type: NodeAction, Label: "Urgent Queue", X: 400, Y: 50},
				{ID: "normal", Type: NodeAction, Label: "Normal Queue", X: 400, Y: 150},
				{ID: "auto_response", Type: NodeNotification, Label: "Auto Response", X: 550, Y: 100},
				{ID: "assign", Type: NodeAction, Label: "Assign Agent", X: 700, Y: 100},
				{ID: "resolved", Type: NodeCondition, Label: "Resolved?", X: 850, Y: 100},
				{ID: "close", Type: NodeAction, Label: "Close Ticket", X: 1000, Y: 50},
				{ID: "escalate", Type: NodeAction, Label: "Escalate", X: 1000, Y: 150},
				{ID: "end", Type: NodeEnd, Label: "Complete", X: 1150, Y: 100},
			},
			Connections: []ProcessEdge{
				{From: "ticket_created", To: "categorize"},
				{From: "categorize", To: "urgent", Condition: "high_priority"},
				{From: "categorize", To: "normal", Condition: "normal_priority"},
				{From: "urgent", To: "auto_response"},
				{From: "normal", To: "auto_response"},
				{From: "auto_response", To: "assign"},
				{From: "assign", To: "resolved"},
				{From: "resolved", To: "close", Condition: "yes"},
				{From: "resolved", To: "escalate", Condition: "no"},
				{From: "close", To: "end"},
				{From: "escalate", To: "end"},
			},
			Webhooks:  []string{"support_ticket"},
			Forms:     []string{},
			CreatedAt: seeded.Add(time.Second),
		},
	}
}
