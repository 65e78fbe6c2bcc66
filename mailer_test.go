package photostream_test

import (
	"context"
	"io/fs"
	"testing"

	"github.com/goliatone/go-errors"
	photostream "github.com/goliatone/go-photostream"
	"github.com/stretchr/testify/assert"
)

func newTestMailer(t *testing.T, sender photostream.MailSenderFunc) *photostream.TemplateMailer {
	t.Helper()

	templates, err := fs.Sub(photostream.GetTemplatesFS(), "data/templates")
	if err != nil {
		t.Fatalf("templates sub fs: %v", err)
	}

	mailer, err := photostream.NewTemplateMailerFS(templates, "https://photos.example.com", sender)
	if err != nil {
		t.Fatalf("template mailer: %v", err)
	}

	return mailer
}

func TestTemplateMailerSendVerification(t *testing.T) {
	var gotTo, gotSubject, gotBody string
	mailer := newTestMailer(t, func(ctx context.Context, to, subject, body string) error {
		gotTo = to
		gotSubject = subject
		gotBody = body
		return nil
	})

	err := mailer.SendVerification(context.Background(), "jane@example.com", "jane", "tok-123")
	assert.NoError(t, err)

	assert.Equal(t, "jane@example.com", gotTo)
	assert.Equal(t, "Confirm your email", gotSubject)
	assert.Contains(t, gotBody, "jane")
	assert.Contains(t, gotBody, "https://photos.example.com/auth/verify-email?token=tok-123")
	assert.Contains(t, gotBody, "tok-123")
}

func TestTemplateMailerWithSubject(t *testing.T) {
	var gotSubject string
	mailer := newTestMailer(t, func(ctx context.Context, to, subject, body string) error {
		gotSubject = subject
		return nil
	}).WithSubject("Welcome aboard")

	assert.NoError(t, mailer.SendVerification(context.Background(), "jane@example.com", "jane", "tok"))
	assert.Equal(t, "Welcome aboard", gotSubject)
}

func TestTemplateMailerNoSenderOnlyLogs(t *testing.T) {
	mailer := newTestMailer(t, nil)

	err := mailer.SendVerification(context.Background(), "jane@example.com", "jane", "tok")
	assert.NoError(t, err)
}

func TestTemplateMailerSenderErrors(t *testing.T) {
	boom := errors.New("smtp down", errors.CategoryExternal)
	mailer := newTestMailer(t, func(ctx context.Context, to, subject, body string) error {
		return boom
	})

	err := mailer.SendVerification(context.Background(), "jane@example.com", "jane", "tok")
	assert.Equal(t, boom, err)
}
