package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/xavierca1/lead-pipeline/internal/entity"
	"github.com/xavierca1/lead-pipeline/internal/infra/queue"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*.txt
var templateFS embed.FS

// Dialer is satisfied by *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// RecipientLookup finds the assignee's address. Satisfied by the Redis
// address book filled at sign-in.
type RecipientLookup interface {
	FindByID(ctx context.Context, id string) (*entity.Profile, error)
}

func NewEmailSender(host string, port int, user, password, from string, fallback []string, recipients RecipientLookup) (*EmailSender, error) {
	return newEmailSender(gomail.NewDialer(host, port, user, password), from, fallback, recipients)
}

func newEmailSender(d Dialer, from string, fallback []string, recipients RecipientLookup) (*EmailSender, error) {
	t, err := template.ParseFS(templateFS, "templates/lead_event.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	return &EmailSender{
		From:       from,
		Fallback:   fallback,
		dialer:     d,
		recipients: recipients,
		templates:  t,
	}, nil
}

// NotifyLeadEvent mails the lead's assignee, or the fallback list when the
// assignee has no address on file.
func (s *EmailSender) NotifyLeadEvent(ctx context.Context, event queue.LeadEvent) error {
	to, name := s.recipientsFor(ctx, event.AssignedTo)
	if len(to) == 0 {
		return fmt.Errorf("no recipient for lead %s", event.LeadID)
	}

	subject, body, err := s.Render(LeadEmailData{Recipient: name, Event: event})
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email via SMTP: %w", err)
	}
	return nil
}

// Render executes the subject and body templates.
func (s *EmailSender) Render(data LeadEmailData) (string, string, error) {
	var subject, body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&subject, "subject", data); err != nil {
		return "", "", fmt.Errorf("failed to render subject: %w", err)
	}
	if err := s.templates.ExecuteTemplate(&body, "body", data); err != nil {
		return "", "", fmt.Errorf("failed to render body: %w", err)
	}
	return strings.TrimSpace(subject.String()), body.String(), nil
}

func (s *EmailSender) recipientsFor(ctx context.Context, assignee string) ([]string, string) {
	if s.recipients != nil && assignee != "" {
		if p, err := s.recipients.FindByID(ctx, assignee); err == nil && p.Email != "" {
			return []string{p.Email}, p.Email
		}
	}
	return s.Fallback, ""
}
