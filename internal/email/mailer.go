package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"memberhub_backend/internal/config"
	"memberhub_backend/internal/logger"
)

// Mailer renders templates and hands messages to a Provider.
type Mailer struct {
	provider  Provider
	renderer  TemplateRenderer
	publicURL string
	// async sends on a goroutine so request handlers do not wait on SMTP.
	async   bool
	timeout time.Duration
}

type MailerOptions struct {
	PublicURL string
	Async     bool
	Timeout   time.Duration
}

func NewMailer(provider Provider, renderer TemplateRenderer, opts MailerOptions) *Mailer {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Mailer{
		provider:  provider,
		renderer:  renderer,
		publicURL: strings.TrimRight(opts.PublicURL, "/"),
		async:     opts.Async,
		timeout:   opts.Timeout,
	}
}

// NewProviderFromConfig picks smtp, ses or log.
func NewProviderFromConfig(ctx context.Context, cfg *config.Config) (Provider, error) {
	switch cfg.Email.Provider {
	case "smtp":
		return NewSMTPProvider(&SMTPConfig{
			Host:      cfg.Email.SMTPHost,
			Port:      cfg.Email.SMTPPort,
			Username:  cfg.Email.SMTPUsername,
			Password:  cfg.Email.SMTPPassword,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
			UseTLS:    cfg.Email.UseTLS,
			Timeout:   30 * time.Second,
		}), nil
	case "ses":
		return NewSESProvider(ctx, &SESConfig{
			Region:    cfg.Email.SESRegion,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
		})
	case "log", "":
		return NewLogProvider(), nil
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.Email.Provider)
	}
}

// Link builds an absolute link into the web app.
func (m *Mailer) Link(path string) string {
	return m.publicURL + path
}

// SendTemplate renders templateName and sends it to one recipient.
func (m *Mailer) SendTemplate(ctx context.Context, to, subject, templateName string, data TemplateData) error {
	html, err := m.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("render %s: %w", templateName, err)
	}
	msg := &Email{To: []string{to}, Subject: subject, HTMLBody: html}

	if !m.async {
		return m.provider.Send(ctx, msg)
	}

	requestID := logger.GetRequestID(ctx)
	go func() {
		sendCtx, cancel := context.WithTimeout(logger.WithRequestID(context.Background(), requestID), m.timeout)
		defer cancel()
		if err := m.provider.Send(sendCtx, msg); err != nil {
			logger.CtxWithError(sendCtx, "failed to send email", err, "template", templateName)
		}
	}()
	return nil
}

// ============================================
// Typed notifications
// ============================================

func (m *Mailer) SendVerification(ctx context.Context, to, name, token string) error {
	return m.SendTemplate(ctx, to, "Confirm your email", TemplateVerifyEmail, TemplateData{
		"Name": name,
		"Link": m.Link("/verify-email?token=" + token),
	})
}

func (m *Mailer) SendPasswordReset(ctx context.Context, to, name, token string, validFor time.Duration) error {
	return m.SendTemplate(ctx, to, "Reset your password", TemplatePasswordReset, TemplateData{
		"Name":     name,
		"Link":     m.Link("/reset-password?token=" + token),
		"ValidFor": validFor.String(),
	})
}

func (m *Mailer) SendMembershipDecision(ctx context.Context, to, name string, approved bool, roles []string, reason string) error {
	subject := "Your membership was approved"
	if !approved {
		subject = "Your membership application"
	}
	return m.SendTemplate(ctx, to, subject, TemplateMembershipDecision, TemplateData{
		"Name":     name,
		"Approved": approved,
		"Roles":    roles,
		"Reason":   reason,
	})
}

func (m *Mailer) SendOpportunityDecision(ctx context.Context, to, name, title string, approved bool, reason string) error {
	return m.SendTemplate(ctx, to, "Update on your opportunity", TemplateOpportunityDecision, TemplateData{
		"Name":     name,
		"Title":    title,
		"Approved": approved,
		"Reason":   reason,
	})
}

func (m *Mailer) SendApplicationReceived(ctx context.Context, to, ownerName, applicantName, title string) error {
	return m.SendTemplate(ctx, to, "New application received", TemplateApplicationReceived, TemplateData{
		"Name":          ownerName,
		"ApplicantName": applicantName,
		"Title":         title,
	})
}

func (m *Mailer) SendApplicationStatus(ctx context.Context, to, name, title, status, note string) error {
	return m.SendTemplate(ctx, to, "Your application status changed", TemplateApplicationStatus, TemplateData{
		"Name":   name,
		"Title":  title,
		"Status": strings.ReplaceAll(status, "_", " "),
		"Note":   note,
	})
}
