package photostream

import (
	"bytes"
	"context"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/django/v3"
	goerrors "github.com/goliatone/go-errors"
)

// Mailer delivers the verification mail. Real delivery is deployment
// specific; the default implementation only logs.
type Mailer interface {
	SendVerification(ctx context.Context, to, username, token string) error
}

// MailSenderFunc is the transport half of TemplateMailer: it takes a
// rendered body and gets it to the recipient.
type MailSenderFunc func(ctx context.Context, to, subject, body string) error

// TemplateMailer renders the verification mail body through a django
// template and hands it to a MailSenderFunc.
type TemplateMailer struct {
	engine  *django.Engine
	sender  MailSenderFunc
	subject string
	baseURL string
	logger  Logger
}

// NewTemplateMailer loads templates from dir and renders
// "verify_email" for each message. baseURL is the public address the
// confirmation link points at.
func NewTemplateMailer(dir, baseURL string, sender MailSenderFunc) (*TemplateMailer, error) {
	engine := django.New(dir, ".html")
	if err := engine.Load(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load mail templates")
	}

	return &TemplateMailer{
		engine:  engine,
		sender:  sender,
		subject: "Confirm your email",
		baseURL: baseURL,
		logger:  defLogger{},
	}, nil
}

// NewTemplateMailerFS is like NewTemplateMailer but reads templates
// from an fs.FS, typically the embedded set from GetTemplatesFS.
func NewTemplateMailerFS(fsys fs.FS, baseURL string, sender MailSenderFunc) (*TemplateMailer, error) {
	engine := django.NewFileSystem(http.FS(fsys), ".html")
	if err := engine.Load(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load mail templates")
	}

	return &TemplateMailer{
		engine:  engine,
		sender:  sender,
		subject: "Confirm your email",
		baseURL: baseURL,
		logger:  defLogger{},
	}, nil
}

func (m *TemplateMailer) WithLogger(l Logger) *TemplateMailer {
	if l != nil {
		m.logger = l
	}
	return m
}

func (m *TemplateMailer) WithSubject(subject string) *TemplateMailer {
	if subject != "" {
		m.subject = subject
	}
	return m
}

func (m *TemplateMailer) SendVerification(ctx context.Context, to, username, token string) error {
	var body bytes.Buffer
	err := m.engine.Render(&body, "verify_email", map[string]any{
		"username":   username,
		"verify_url": m.baseURL + "/auth/verify-email?token=" + token,
		"token":      token,
	})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to render verification mail")
	}

	if m.sender == nil {
		m.logger.Info("verification mail rendered, no sender configured", "to", to)
		return nil
	}

	return m.sender(ctx, to, m.subject, body.String())
}

type noopMailer struct{}

func (noopMailer) SendVerification(context.Context, string, string, string) error {
	return nil
}
