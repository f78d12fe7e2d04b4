package auth

import (
	"bytes"
	"context"

	"github.com/gofiber/template/django/v3"
	"github.com/goliatone/go-errors"
)

// MailTemplate names one of the outbound message kinds
type MailTemplate string

const (
	// MailTemplateEmailVerification is sent right after sign-up
	MailTemplateEmailVerification MailTemplate = "email_verification"
	// MailTemplatePasswordReset is sent on a reset-link request
	MailTemplatePasswordReset MailTemplate = "password_reset"
)

// Mail subjects per template kind
const (
	SubjectEmailVerification = "Verify your Email"
	SubjectPasswordReset     = "Reset your password"
)

// TemplateRenderer renders mail bodies from django templates on disk.
// Template files are resolved as <dir>/<kind>.html.
type TemplateRenderer struct {
	engine *django.Engine
}

var _ MailRenderer = (*TemplateRenderer)(nil)

// NewTemplateRenderer loads the mail templates from the given directory
func NewTemplateRenderer(dir string) (*TemplateRenderer, error) {
	engine := django.New(dir, ".html")
	if err := engine.Load(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load mail templates")
	}
	return &TemplateRenderer{engine: engine}, nil
}

// Render produces the message body for a template kind
func (r *TemplateRenderer) Render(kind MailTemplate, binding map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := r.engine.Render(&buf, string(kind), binding); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to render mail template").
			WithMetadata(map[string]any{"template": string(kind)})
	}
	return buf.String(), nil
}

// LogMailer writes outbound messages to the logger instead of delivering
// them. Useful in development and tests.
type LogMailer struct {
	logger Logger
}

var _ Mailer = (*LogMailer)(nil)

// NewLogMailer creates a log-only Mailer
func NewLogMailer(logger Logger) *LogMailer {
	if logger == nil {
		logger = defLogger{}
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, to Recipient, subject, body string) error {
	m.logger.Info("outbound mail", "to", to.Email, "name", to.Name, "subject", subject, "bytes", len(body))
	return nil
}
