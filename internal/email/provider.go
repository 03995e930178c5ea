package email

import "context"

// Provider delivers fully built messages.
type Provider interface {
	Send(ctx context.Context, email *Email) error

	// Validate checks the provider configuration.
	Validate() error

	Close() error
}

// TemplateRenderer renders named html templates.
type TemplateRenderer interface {
	Render(templateName string, data TemplateData) (string, error)

	AddTemplate(name string, template string) error

	LoadTemplates(dirPath string) error
}
