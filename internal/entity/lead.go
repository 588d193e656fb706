package entity

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	// IMPORTANTE: NÃO adicione imports de usecase ou infra aqui!
)

type LeadStatus string

const (
	StatusNew         LeadStatus = "New"
	StatusNegotiation LeadStatus = "Negotiation"
	StatusWon         LeadStatus = "Won"
	StatusLost        LeadStatus = "Lost"
)

// LeadStatuses is the pipeline order used by listings and reports.
var LeadStatuses = []LeadStatus{StatusNew, StatusNegotiation, StatusWon, StatusLost}

func ParseLeadStatus(raw string) (LeadStatus, bool) {
	for _, s := range LeadStatuses {
		if string(s) == raw {
			return s, true
		}
	}
	return "", false
}

// IsOpen reports whether the lead is still in the pipeline.
func (s LeadStatus) IsOpen() bool {
	return s == StatusNew || s == StatusNegotiation
}

type Lead struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	InquiryDate     string `json:"inquiry_date"`
	ClientName      string `json:"client_name"`
	CompanyName     string `json:"company_name,omitempty"`
	Phone           string `json:"phone"`
	Email           string `json:"email,omitempty"`
	Source          string `json:"source"`
	Channel         string `json:"channel"`
	ProductCategory string `json:"product_category"`
	EnquiringAbout  string `json:"enquiring_about"`
	Notes           string `json:"notes,omitempty"`

	AssignedTo string `json:"assigned_to"`

	Status             LeadStatus `json:"status"`
	LatestUpdate       string     `json:"latest_update,omitempty"`
	LastStatusChangeAt *time.Time `json:"last_status_change_at,omitempty"`
	DeadlineAt         *time.Time `json:"deadline_at,omitempty"`
	AutoLost           bool       `json:"auto_lost"`

	DocNo       string              `json:"doc_no,omitempty"`
	Amount      decimal.NullDecimal `json:"amount"`
	PaymentDone bool                `json:"payment_done"`
	LostReason  string              `json:"lost_reason,omitempty"`
}

// LeadDraft is the intake form submitted on creation.
type LeadDraft struct {
	InquiryDate     string `json:"inquiry_date" validate:"required,datetime=2006-01-02"`
	ClientName      string `json:"client_name" validate:"required"`
	CompanyName     string `json:"company_name"`
	Phone           string `json:"phone" validate:"required,min=7"`
	Email           string `json:"email" validate:"omitempty,email"`
	Source          string `json:"source" validate:"required"`
	Channel         string `json:"channel" validate:"required"`
	ProductCategory string `json:"product_category" validate:"required"`
	EnquiringAbout  string `json:"enquiring_about" validate:"required"`
	Notes           string `json:"notes"`

	Status     string     `json:"status"`
	AssignedTo string     `json:"assigned_to"`
	DeadlineAt *time.Time `json:"deadline_at"`

	DocNo      string `json:"doc_no"`
	Amount     string `json:"amount"`
	LostReason string `json:"lost_reason"`
}

var draftValidator = newDraftValidator()

func newDraftValidator() *validator.Validate {
	v := validator.New()
	// Reporta o nome do campo como aparece no JSON
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// NewLead validates the intake draft and builds an unsaved lead. The id and
// created_at are assigned by the store; assigned_to is resolved by the caller.
func NewLead(draft LeadDraft, now time.Time) (*Lead, error) {
	draft = trimDraft(draft)

	if err := draftValidator.Struct(draft); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return nil, draftFieldError(fieldErrs[0])
		}
		return nil, &ValidationError{Field: "lead", Message: err.Error()}
	}

	status := StatusNew
	if draft.Status != "" {
		parsed, ok := ParseLeadStatus(draft.Status)
		if !ok {
			return nil, &ValidationError{Field: "status", Message: "must be one of New, Negotiation, Won, Lost"}
		}
		status = parsed
	}

	amount, err := ParseAmount(draft.Amount)
	if err != nil {
		return nil, err
	}

	lead := &Lead{
		InquiryDate:     draft.InquiryDate,
		ClientName:      draft.ClientName,
		CompanyName:     draft.CompanyName,
		Phone:           draft.Phone,
		Email:           draft.Email,
		Source:          draft.Source,
		Channel:         draft.Channel,
		ProductCategory: draft.ProductCategory,
		EnquiringAbout:  draft.EnquiringAbout,
		Notes:           draft.Notes,
		AssignedTo:      draft.AssignedTo,
		Status:          status,
		DeadlineAt:      draft.DeadlineAt,
		DocNo:           draft.DocNo,
		Amount:          amount,
		LostReason:      draft.LostReason,
	}

	// Entrar direto num estado avançado exige os mesmos campos de uma transição
	if status != StatusNew {
		if err := CheckEntryRequirements(status, draft.DocNo, draft.Amount, draft.LostReason); err != nil {
			return nil, err
		}
		lead.LastStatusChangeAt = &now
	}

	return lead, nil
}

// Validate checks the invariants every persisted lead must hold.
func (l *Lead) Validate() error {
	if strings.TrimSpace(l.AssignedTo) == "" {
		return &ValidationError{Field: "assigned_to", Message: "is required"}
	}
	if _, ok := ParseLeadStatus(string(l.Status)); !ok {
		return &ValidationError{Field: "status", Message: "must be one of New, Negotiation, Won, Lost"}
	}
	if l.Amount.Valid && l.Amount.Decimal.IsNegative() {
		return &ValidationError{Field: "amount", Message: "must not be negative"}
	}
	return nil
}

// ParseAmount converts a submitted amount. Blank means absent.
func ParseAmount(raw string) (decimal.NullDecimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, &ValidationError{Field: "amount", Message: "must be a number"}
	}
	if d.IsNegative() {
		return decimal.NullDecimal{}, &ValidationError{Field: "amount", Message: "must not be negative"}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

func trimDraft(d LeadDraft) LeadDraft {
	d.InquiryDate = strings.TrimSpace(d.InquiryDate)
	d.ClientName = strings.TrimSpace(d.ClientName)
	d.CompanyName = strings.TrimSpace(d.CompanyName)
	d.Phone = strings.TrimSpace(d.Phone)
	d.Email = strings.TrimSpace(d.Email)
	d.Source = strings.TrimSpace(d.Source)
	d.Channel = strings.TrimSpace(d.Channel)
	d.ProductCategory = strings.TrimSpace(d.ProductCategory)
	d.EnquiringAbout = strings.TrimSpace(d.EnquiringAbout)
	d.Status = strings.TrimSpace(d.Status)
	d.AssignedTo = strings.TrimSpace(d.AssignedTo)
	d.DocNo = strings.TrimSpace(d.DocNo)
	d.LostReason = strings.TrimSpace(d.LostReason)
	return d
}

func draftFieldError(fe validator.FieldError) *ValidationError {
	msg := "is invalid"
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "min":
		msg = "must have at least " + fe.Param() + " characters"
	case "email":
		msg = "must be a valid email"
	case "datetime":
		msg = "must be a valid date (YYYY-MM-DD)"
	}
	return &ValidationError{Field: fe.Field(), Message: msg}
}

// LeadPatch carries the fields of an update. Nil pointers are left untouched
// by the store.
type LeadPatch struct {
	InquiryDate     *string `json:"inquiry_date,omitempty"`
	ClientName      *string `json:"client_name,omitempty"`
	CompanyName     *string `json:"company_name,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	Email           *string `json:"email,omitempty"`
	Source          *string `json:"source,omitempty"`
	Channel         *string `json:"channel,omitempty"`
	ProductCategory *string `json:"product_category,omitempty"`
	EnquiringAbout  *string `json:"enquiring_about,omitempty"`
	Notes           *string `json:"notes,omitempty"`

	AssignedTo *string `json:"assigned_to,omitempty"`

	Status             *LeadStatus `json:"status,omitempty"`
	LatestUpdate       *string     `json:"latest_update,omitempty"`
	LastStatusChangeAt *time.Time  `json:"last_status_change_at,omitempty"`
	DeadlineAt         *time.Time  `json:"deadline_at,omitempty"`

	// ClearDeadline writes NULL to deadline_at; DeadlineAt is ignored when set.
	ClearDeadline bool `json:"-"`

	DocNo       *string              `json:"doc_no,omitempty"`
	Amount      *decimal.NullDecimal `json:"amount,omitempty"`
	PaymentDone *bool                `json:"payment_done,omitempty"`
	LostReason  *string              `json:"lost_reason,omitempty"`
}

// IsEmpty reports whether the patch would change nothing.
func (p LeadPatch) IsEmpty() bool {
	return p == LeadPatch{}
}

// Apply returns a copy of the lead with the patch merged in.
func (p LeadPatch) Apply(l Lead) Lead {
	setString(&l.InquiryDate, p.InquiryDate)
	setString(&l.ClientName, p.ClientName)
	setString(&l.CompanyName, p.CompanyName)
	setString(&l.Phone, p.Phone)
	setString(&l.Email, p.Email)
	setString(&l.Source, p.Source)
	setString(&l.Channel, p.Channel)
	setString(&l.ProductCategory, p.ProductCategory)
	setString(&l.EnquiringAbout, p.EnquiringAbout)
	setString(&l.Notes, p.Notes)
	setString(&l.AssignedTo, p.AssignedTo)
	setString(&l.LatestUpdate, p.LatestUpdate)
	setString(&l.DocNo, p.DocNo)
	setString(&l.LostReason, p.LostReason)
	if p.Status != nil {
		l.Status = *p.Status
	}
	if p.LastStatusChangeAt != nil {
		t := *p.LastStatusChangeAt
		l.LastStatusChangeAt = &t
	}
	switch {
	case p.ClearDeadline:
		l.DeadlineAt = nil
	case p.DeadlineAt != nil:
		t := *p.DeadlineAt
		l.DeadlineAt = &t
	}
	if p.Amount != nil {
		l.Amount = *p.Amount
	}
	if p.PaymentDone != nil {
		l.PaymentDone = *p.PaymentDone
	}
	return l
}

// ValidateIntakeEdits rejects edits that would blank a required intake field.
func (p LeadPatch) ValidateIntakeEdits() error {
	required := []struct {
		field string
		value *string
	}{
		{"inquiry_date", p.InquiryDate},
		{"client_name", p.ClientName},
		{"phone", p.Phone},
		{"source", p.Source},
		{"channel", p.Channel},
		{"product_category", p.ProductCategory},
		{"enquiring_about", p.EnquiringAbout},
		{"assigned_to", p.AssignedTo},
	}
	for _, r := range required {
		if r.value != nil && strings.TrimSpace(*r.value) == "" {
			return &ValidationError{Field: r.field, Message: "is required"}
		}
	}
	if p.InquiryDate != nil {
		if _, err := time.Parse("2006-01-02", strings.TrimSpace(*p.InquiryDate)); err != nil {
			return &ValidationError{Field: "inquiry_date", Message: "must be a valid date (YYYY-MM-DD)"}
		}
	}
	if p.Phone != nil && len(strings.TrimSpace(*p.Phone)) < 7 {
		return &ValidationError{Field: "phone", Message: "must have at least 7 characters"}
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// LeadFilter narrows a lead listing. A nil AssignedTo means every assignee.
type LeadFilter struct {
	AssignedTo []string
	Status     LeadStatus
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) (*Lead, error)
	Update(ctx context.Context, id string, patch LeadPatch) (*Lead, error)
	FindByID(ctx context.Context, id string) (*Lead, error)
	List(ctx context.Context, filter LeadFilter) ([]*Lead, error)
}
