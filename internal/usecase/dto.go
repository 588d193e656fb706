package usecase

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/xavierca1/lead-pipeline/internal/entity"
)

// Session is what the auth provider hands over for the signed-in user.
type Session struct {
	UserID string
	Email  string
}

type CreateLeadInput struct {
	Profile entity.Profile
	Draft   entity.LeadDraft
}

// LeadChanges is the update form. Nil fields were not submitted.
type LeadChanges struct {
	InquiryDate     *string `json:"inquiry_date"`
	ClientName      *string `json:"client_name"`
	CompanyName     *string `json:"company_name"`
	Phone           *string `json:"phone"`
	Email           *string `json:"email"`
	Source          *string `json:"source"`
	Channel         *string `json:"channel"`
	ProductCategory *string `json:"product_category"`
	EnquiringAbout  *string `json:"enquiring_about"`
	Notes           *string `json:"notes"`

	AssignedTo *string `json:"assigned_to"`
	// DeadlineAt is a raw timestamp; "" clears the deadline.
	DeadlineAt *string `json:"deadline_at"`

	Status       *string `json:"status"`
	LatestUpdate *string `json:"latest_update"`
	DocNo        *string `json:"doc_no"`
	Amount       *string `json:"amount"`
	PaymentDone  *bool   `json:"payment_done"`
	LostReason   *string `json:"lost_reason"`
}

type UpdateLeadInput struct {
	Profile entity.Profile
	LeadID  string
	Changes LeadChanges
}

type ListLeadsInput struct {
	Profile entity.Profile
	// Status is "All", empty, or one of the lead statuses.
	Status string
	Search string
}

// LeadView is a lead plus its SLA countdown as of the request.
type LeadView struct {
	*entity.Lead
	SLA entity.SLAView `json:"sla"`
}

type ListLeadsOutput struct {
	Leads     []LeadView `json:"leads"`
	Total     int        `json:"total"`
	FetchedAt time.Time  `json:"fetched_at"`
	Stale     bool       `json:"stale"`
}

type KPI struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

type DashboardOutput struct {
	KPIs []KPI `json:"kpis"`
}

type TeamMember struct {
	ID        string      `json:"id"`
	Role      entity.Role `json:"role"`
	ManagerID string      `json:"manager_id,omitempty"`
	LeadCount int         `json:"lead_count"`
}

// TeamOutput with Access false is the "no access" view.
type TeamOutput struct {
	Access  bool         `json:"access"`
	Members []TeamMember `json:"members"`
}

type SalesCount struct {
	ID    string      `json:"id"`
	Role  entity.Role `json:"role"`
	Count int         `json:"count"`
}

type ReportOutput struct {
	Access   bool                      `json:"access"`
	Total    int                       `json:"total"`
	ByStatus map[entity.LeadStatus]int `json:"by_status"`
	Revenue  decimal.Decimal           `json:"revenue"`
	AutoLost int                       `json:"auto_lost"`
	BySales  []SalesCount              `json:"by_sales"`
}
