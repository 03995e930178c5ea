package email

// Email is a single outbound message.
type Email struct {
	From     string
	To       []string
	Cc       []string
	Bcc      []string
	ReplyTo  string
	Subject  string
	Body     string
	HTMLBody string
}

// TemplateData is passed to html templates.
type TemplateData map[string]interface{}

// Template names shipped with the service.
const (
	TemplateVerifyEmail         = "verify_email"
	TemplatePasswordReset       = "password_reset"
	TemplateMembershipDecision  = "membership_decision"
	TemplateOpportunityDecision = "opportunity_decision"
	TemplateApplicationReceived = "application_received"
	TemplateApplicationStatus   = "application_status"
)
