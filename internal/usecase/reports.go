package usecase

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/xavierca1/lead-pipeline/internal/entity"
)

type ReportsUseCase struct {
	Leads    entity.LeadRepositoryInterface
	Profiles entity.ProfileRepositoryInterface
}

func NewReportsUseCase(leads entity.LeadRepositoryInterface, profiles entity.ProfileRepositoryInterface) *ReportsUseCase {
	return &ReportsUseCase{Leads: leads, Profiles: profiles}
}

// Execute builds the admin pipeline summary. Anyone else gets the no-access
// view.
func (uc *ReportsUseCase) Execute(ctx context.Context, p entity.Profile) (*ReportOutput, error) {
	if !entity.CanViewReports(p) {
		return &ReportOutput{Access: false}, nil
	}

	leads, err := uc.Leads.List(ctx, entity.LeadFilter{})
	if err != nil {
		return nil, asStoreError("list leads", err)
	}
	profiles, err := uc.Profiles.FindAll(ctx)
	if err != nil {
		return nil, asStoreError("list profiles", err)
	}

	return BuildReport(leads, profiles), nil
}

// BuildReport summarises leads by status, revenue and owner. A lead without
// a status counts as New.
func BuildReport(leads []*entity.Lead, profiles []*entity.Profile) *ReportOutput {
	out := &ReportOutput{
		Access:   true,
		Total:    len(leads),
		ByStatus: make(map[entity.LeadStatus]int, len(entity.LeadStatuses)),
		Revenue:  decimal.Zero,
	}
	for _, s := range entity.LeadStatuses {
		out.ByStatus[s] = 0
	}

	perOwner := make(map[string]int)
	for _, lead := range leads {
		status := lead.Status
		if status == "" {
			status = entity.StatusNew
		}
		out.ByStatus[status]++

		if status == entity.StatusWon && lead.Amount.Valid {
			out.Revenue = out.Revenue.Add(lead.Amount.Decimal)
		}
		if lead.AutoLost {
			out.AutoLost++
		}
		perOwner[lead.AssignedTo]++
	}

	out.BySales = make([]SalesCount, 0, len(profiles))
	for _, p := range profiles {
		out.BySales = append(out.BySales, SalesCount{
			ID:    p.ID,
			Role:  entity.NormalizeRole(string(p.Role)),
			Count: perOwner[p.ID],
		})
	}
	return out
}
