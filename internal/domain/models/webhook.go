package models

import "time"

// WebhookConfig is one operator-configured outbound endpoint. Entries are
// keyed by a stable identifier in the registry document; created_at is the
// insertion-order surrogate that survives JSON round-trips.
type WebhookConfig struct {
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	Fields      []string  `json:"fields"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// WebhookDocument is the persisted registry: webhook key -> config.
type WebhookDocument map[string]WebhookConfig

// FileUpload is one captured file attachment for a multipart delivery.
type FileUpload struct {
	Field       string `json:"field"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

// DeliveryResult reports a test or send attempt. Network failures are
// folded into Error; they never escape as faults.
type DeliveryResult struct {
	Success    bool   `json:"success"`
	StatusCode *int   `json:"status_code,omitempty"`
	Response   string `json:"response,omitempty"`
	Error      string `json:"error,omitempty"`
	DeliveryID string `json:"delivery_id,omitempty"`
	Attempts   int    `json:"attempts,omitempty"`
}

func DefaultWebhooks() WebhookDocument {
	seeded := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	at := func(i int) time.Time { return seeded.Add(time.Duration(i) * time.Second) }

	return WebhookDocument{
		"lead_capture": {
			Name:        "Lead Capture",
			URL:         "https://your-n8n-instance.com/webhook/lead-capture",
			Description: "Captures leads from contact forms",
			Fields:      []string{"name", "email", "phone", "company", "message"},
			Active:      true,
			CreatedAt:   at(0),
		},
		"customer_feedback": {
			Name:        "Customer Feedback",
			URL:         "https://your-n8n-instance.com/webhook/feedback",
			Description: "Collects customer feedback and reviews",
			Fields:      []string{"name", "email", "rating", "feedback", "product"},
			Active:      true,
			CreatedAt:   at(1),
		},
		"appointment_booking": {
			Name:        "Appointment Booking",
			URL:         "https://your-n8n-instance.com/webhook/booking",
			Description: "Handles appointment scheduling",
			Fields:      []string{"name", "email", "phone", "service", "date", "time"},
			Active:      true,
			CreatedAt:   at(2),
		},
		"support_ticket": {
			Name:        "Support Ticket",
			URL:         "https://your-n8n-instance.com/webhook/support",
			Description: "Creates support tickets",
			Fields:      []string{"name", "email", "priority", "category", "description"},
			Active:      true,
			CreatedAt:   at(3),
		},
		"newsletter_signup": {
			Name:        "Newsletter Signup",
			URL:         "https://your-n8n-instance.com/webhook/newsletter",
			Description: "Newsletter subscription management",
			Fields:      []string{"email", "name", "preferences", "source"},
			Active:      true,
			CreatedAt:   at(4),
		},
	}
}
