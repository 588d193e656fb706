package usecase

import (
	"context"

	"github.com/xavierca1/lead-pipeline/internal/entity"
)

type DashboardUseCase struct {
	Listings *ListLeadsUseCase
}

func NewDashboardUseCase(listings *ListLeadsUseCase) *DashboardUseCase {
	return &DashboardUseCase{Listings: listings}
}

// Execute counts the leads visible to the profile. Overdue means the
// deadline is strictly in the past.
func (uc *DashboardUseCase) Execute(ctx context.Context, p entity.Profile) (*DashboardOutput, error) {
	listing, _, err := uc.Listings.visible(ctx, p)
	if err != nil {
		return nil, err
	}

	now := uc.Listings.Now()
	var negotiation, won, overdue int
	for _, lead := range listing.Leads {
		switch lead.Status {
		case entity.StatusNegotiation:
			negotiation++
		case entity.StatusWon:
			won++
		}
		if entity.IsOverdue(lead.DeadlineAt, now) {
			overdue++
		}
	}

	return &DashboardOutput{KPIs: []KPI{
		{Label: "Total Leads", Value: len(listing.Leads)},
		{Label: "Negotiation", Value: negotiation},
		{Label: "Won", Value: won},
		{Label: "Overdue", Value: overdue},
	}}, nil
}
