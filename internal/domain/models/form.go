package models

import "time"

// FieldType is the closed set of input kinds a form field can declare.
type FieldType string

const (
	FieldText        FieldType = "text"
	FieldEmail       FieldType = "email"
	FieldNumber      FieldType = "number"
	FieldTextarea    FieldType = "textarea"
	FieldSelect      FieldType = "select"
	FieldMultiSelect FieldType = "multiselect"
	FieldCheckbox    FieldType = "checkbox"
	FieldRadio       FieldType = "radio"
	FieldDate        FieldType = "date"
	FieldTime        FieldType = "time"
	FieldFile        FieldType = "file"
	FieldSlider      FieldType = "slider"
	FieldColor       FieldType = "color"
)

// FieldTypes lists every supported kind with its display label, in the
// order the form editor presents them.
var FieldTypes = []struct {
	Type  FieldType
	Label string
}{
	{FieldText, "Text Input"},
	{FieldEmail, "Email Input"},
	{FieldNumber, "Number Input"},
	{FieldTextarea, "Text Area"},
	{FieldSelect, "Select Dropdown"},
	{FieldMultiSelect, "Multi-Select"},
	{FieldCheckbox, "Checkbox"},
	{FieldRadio, "Radio Buttons"},
	{FieldDate, "Date Picker"},
	{FieldTime, "Time Picker"},
	{FieldFile, "File Upload"},
	{FieldSlider, "Slider"},
	{FieldColor, "Color Picker"},
}

func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldEmail, FieldNumber, FieldTextarea, FieldSelect,
		FieldMultiSelect, FieldCheckbox, FieldRadio, FieldDate, FieldTime,
		FieldFile, FieldSlider, FieldColor:
		return true
	}
	return false
}

// HasOptions reports whether the kind carries an option list.
func (t FieldType) HasOptions() bool {
	return t == FieldSelect || t == FieldMultiSelect || t == FieldRadio
}

// HasRange reports whether the kind carries numeric bounds.
func (t FieldType) HasRange() bool {
	return t == FieldNumber || t == FieldSlider
}

// FieldSpec declares one typed input. Name is unique within its form and
// slice order drives render order, so it must survive round-trips intact.
type FieldSpec struct {
	Name      string    `json:"name"`
	Label     string    `json:"label"`
	Type      FieldType `json:"type"`
	Required  bool      `json:"required"`
	MinValue  *float64  `json:"min_value,omitempty"`
	MaxValue  *float64  `json:"max_value,omitempty"`
	Options   []string  `json:"options,omitempty"`
	FileTypes []string  `json:"file_types,omitempty"`
}

// FormDefinition is one named form. WebhookKey is a weak reference into
// the webhook registry; empty means "collect only, do not forward".
type FormDefinition struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Fields      []FieldSpec `json:"fields"`
	WebhookKey  string      `json:"webhook_key,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// FormDocument is the persisted store: form key -> definition.
type FormDocument map[string]FormDefinition

// FieldError is one required-field violation from the submission pipeline.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Submission outcomes. Rejected submissions never reach the webhook;
// collected ones passed validation but had no webhook configured.
const (
	SubmissionRejected  = "rejected"
	SubmissionCollected = "collected"
	SubmissionForwarded = "forwarded"
)

// SubmissionResult is the terminal state of one submit call.
type SubmissionResult struct {
	Outcome      string          `json:"outcome"`
	SubmissionID string          `json:"submission_id,omitempty"`
	FieldErrors  []FieldError    `json:"field_errors,omitempty"`
	Data         map[string]any  `json:"data,omitempty"`
	Delivery     *DeliveryResult `json:"delivery,omitempty"`
}

func floatPtr(v float64) *float64 { return &v }

func DefaultForms() FormDocument {
	seeded := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	return FormDocument{
		"contact_form": {
			Name:        "Contact Form",
			Description: "Basic contact form for lead capture",
			Fields: []FieldSpec{
				{Name: "full_name", Label: "Full Name", Type: FieldText, Required: true},
				{Name: "email", Label: "Email Address", Type: FieldEmail, Required: true},
				{Name: "phone", Label: "Phone Number", Type: FieldText},
				{Name: "company", Label: "Company", Type: FieldText},
				{Name: "message", Label: "Message", Type: FieldTextarea, Required: true},
			},
			WebhookKey: "lead_capture",
			CreatedAt:  seeded,
		},
		"feedback_form": {
			Name:        "Customer Feedback Form",
			Description: "Collect customer feedback and ratings",
			Fields: []FieldSpec{
				{Name: "customer_name", Label: "Your Name", Type: FieldText, Required: true},
				{Name: "email", Label: "Email", Type: FieldEmail, Required: true},
				{Name: "rating", Label: "Overall Rating", Type: FieldSlider, Required: true, MinValue: floatPtr(1), MaxValue: floatPtr(5)},
				{Name: "product", Label: "Product/Service", Type: FieldSelect, Required: true, Options: []string{"Product A", "Product B", "Service X", "Service Y"}},
				{Name: "feedback", Label: "Your Feedback", Type: FieldTextarea, Required: true},
				{Name: "recommend", Label: "Would you recommend us?", Type: FieldRadio, Required: true, Options: []string{"Yes", "No", "Maybe"}},
			},
			WebhookKey: "customer_feedback",
			CreatedAt:  seeded.Add(time.Second),
		},
		"booking_form": {
			Name:        "Appointment Booking Form",
			Description: "Schedule appointments and consultations",
			Fields: []FieldSpec{
				{Name: "client_name", Label: "Full Name", Type: FieldText, Required: true},
				{Name: "email", Label: "Email", Type: FieldEmail, Required: true},
				{Name: "phone", Label: "Phone Number", Type: FieldText, Required: true},
				{Name: "service", Label: "Service Type", Type: FieldSelect, Required: true, Options: []string{"Consultation", "Meeting", "Demo", "Support"}},
				{Name: "preferred_date", Label: "Preferred Date", Type: FieldDate, Required: true},
				{Name: "preferred_time", Label: "Preferred Time", Type: FieldTime, Required: true},
				{Name: "notes", Label: "Additional Notes", Type: FieldTextarea},
			},
			WebhookKey: "appointment_booking",
			CreatedAt:  seeded.Add(2 * time.Second),
		},
	}
}
