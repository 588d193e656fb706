package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransitionDraft holds the values a status change is judged against.
// DocNo, Amount and LostReason are the effective values after the edit
// (current record merged with the submitted form); Edits are the submitted
// field changes, passed through to the resulting patch untouched.
type TransitionDraft struct {
	DocNo      string
	Amount     string
	LostReason string
	Edits      LeadPatch
}

// ValidateTransition checks the entry requirements of the proposed status.
// Every edge between two statuses is allowed; only the data needed to enter
// the target state is enforced. On success the returned patch carries the new
// status and now as last_status_change_at.
func ValidateTransition(current, proposed LeadStatus, draft TransitionDraft, now time.Time) (LeadPatch, error) {
	if _, ok := ParseLeadStatus(string(proposed)); !ok {
		return LeadPatch{}, &ValidationError{Field: "status", Message: "must be one of New, Negotiation, Won, Lost"}
	}

	if err := CheckEntryRequirements(proposed, draft.DocNo, draft.Amount, draft.LostReason); err != nil {
		return LeadPatch{}, err
	}

	patch := draft.Edits
	status := proposed
	changedAt := now
	patch.Status = &status
	patch.LastStatusChangeAt = &changedAt
	return patch, nil
}

// CheckEntryRequirements enforces the fields a lead must carry to be in status.
func CheckEntryRequirements(status LeadStatus, docNo, amount, lostReason string) error {
	switch status {
	case StatusNegotiation:
		if strings.TrimSpace(docNo) == "" {
			return &IncompleteTransitionError{Status: status, Message: "doc_no required for Negotiation"}
		}
	case StatusWon:
		if strings.TrimSpace(docNo) == "" || !isNonNegativeNumber(amount) {
			return &IncompleteTransitionError{Status: status, Message: "doc_no and amount required for Won"}
		}
	case StatusLost:
		if strings.TrimSpace(lostReason) == "" {
			return &IncompleteTransitionError{Status: status, Message: "lost_reason required for Lost"}
		}
	}
	return nil
}

func isNonNegativeNumber(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return false
	}
	return !d.IsNegative()
}
