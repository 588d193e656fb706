package entity

// Access rules are pure functions of the acting profile and the fetched
// relationship data. They gate what the dashboard shows; row-level
// enforcement belongs to the store.

func CanViewAllLeads(p Profile) bool {
	return p.Role.IsPrivileged()
}

func CanViewTeam(p Profile) bool {
	return p.Role.IsPrivileged()
}

func CanViewReports(p Profile) bool {
	return p.Role == RoleAdmin
}

// TeamOf keeps the profiles that belong to p's team: direct reports for a
// manager, everyone for an admin, nobody for sales.
func TeamOf(p Profile, profiles []*Profile) []*Profile {
	switch p.Role {
	case RoleAdmin:
		return profiles
	case RoleManager:
		team := make([]*Profile, 0, len(profiles))
		for _, member := range profiles {
			if member != nil && member.ManagerID == p.ID {
				team = append(team, member)
			}
		}
		return team
	default:
		return nil
	}
}

// AssignableTargets lists the ids p may assign a lead to, self first.
func AssignableTargets(p Profile, team []*Profile) []string {
	targets := []string{p.ID}
	if !p.Role.IsPrivileged() {
		return targets
	}

	seen := map[string]bool{p.ID: true}
	for _, member := range TeamOf(p, team) {
		if member == nil || member.ID == "" || seen[member.ID] {
			continue
		}
		seen[member.ID] = true
		targets = append(targets, member.ID)
	}
	return targets
}

// VisibleAssignees returns the assignee ids whose leads p can see. all is
// true when no restriction applies.
func VisibleAssignees(p Profile, team []*Profile) (ids []string, all bool) {
	switch p.Role {
	case RoleAdmin:
		return nil, true
	case RoleManager:
		return AssignableTargets(p, team), false
	default:
		return []string{p.ID}, false
	}
}

func CanViewLead(p Profile, lead *Lead, team []*Profile) bool {
	if lead == nil {
		return false
	}
	ids, all := VisibleAssignees(p, team)
	if all {
		return true
	}
	return contains(ids, lead.AssignedTo)
}

// CanReassign reports whether p may move a lead to target.
func CanReassign(p Profile, team []*Profile, target string) bool {
	if !p.Role.IsPrivileged() || target == "" {
		return false
	}
	return contains(AssignableTargets(p, team), target)
}

// ResolveAssignee picks the owner of a new lead. Sales always own what they
// create, whatever was submitted. Managers and admins default to themselves
// and may pick any assignable target.
func ResolveAssignee(p Profile, team []*Profile, requested string) (string, error) {
	if !p.Role.IsPrivileged() || requested == "" {
		return p.ID, nil
	}
	if !contains(AssignableTargets(p, team), requested) {
		return "", &AccessDeniedError{Action: "assign lead to " + requested}
	}
	return requested, nil
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
