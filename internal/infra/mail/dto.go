package mail

import (
	"text/template"

	"github.com/xavierca1/lead-pipeline/internal/infra/queue"
)

// LeadEmailData feeds templates/lead_event.txt.
type LeadEmailData struct {
	Recipient string
	Event     queue.LeadEvent
}

type EmailSender struct {
	From       string
	Fallback   []string
	dialer     Dialer
	recipients RecipientLookup
	templates  *template.Template
}
