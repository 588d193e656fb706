package usecase

import (
	"context"

	"github.com/xavierca1/lead-pipeline/internal/entity"
)

type TeamUseCase struct {
	Leads    entity.LeadRepositoryInterface
	Profiles entity.ProfileRepositoryInterface
}

func NewTeamUseCase(leads entity.LeadRepositoryInterface, profiles entity.ProfileRepositoryInterface) *TeamUseCase {
	return &TeamUseCase{Leads: leads, Profiles: profiles}
}

// Execute lists the profile's team with per-member lead counts. Sales get
// the no-access view.
func (uc *TeamUseCase) Execute(ctx context.Context, p entity.Profile) (*TeamOutput, error) {
	if !entity.CanViewTeam(p) {
		return &TeamOutput{Access: false}, nil
	}

	team, err := teamFor(ctx, uc.Profiles, p)
	if err != nil {
		return nil, err
	}

	members := entity.TeamOf(p, team)
	if p.Role == entity.RoleManager {
		self := p
		members = append([]*entity.Profile{&self}, members...)
	}

	filter := entity.LeadFilter{}
	if p.Role != entity.RoleAdmin {
		filter.AssignedTo = entity.AssignableTargets(p, team)
	}
	leads, err := uc.Leads.List(ctx, filter)
	if err != nil {
		return nil, asStoreError("list leads", err)
	}

	counts := make(map[string]int, len(members))
	for _, lead := range leads {
		counts[lead.AssignedTo]++
	}

	out := &TeamOutput{Access: true, Members: make([]TeamMember, 0, len(members))}
	for _, m := range members {
		out.Members = append(out.Members, TeamMember{
			ID:        m.ID,
			Role:      entity.NormalizeRole(string(m.Role)),
			ManagerID: m.ManagerID,
			LeadCount: counts[m.ID],
		})
	}
	return out, nil
}
