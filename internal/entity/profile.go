package entity

import (
	"context"
	"strings"
	"time"
)

type Role string

const (
	RoleSales   Role = "sales"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// NormalizeRole maps the loosely stored role column onto the closed set.
// Unknown or absent values fall back to sales.
func NormalizeRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleManager:
		return RoleManager
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleSales
	}
}

func (r Role) IsPrivileged() bool {
	return r == RoleManager || r == RoleAdmin
}

// Profile is a staff member. ManagerID is empty for top-level profiles.
type Profile struct {
	ID        string     `json:"id"`
	Role      Role       `json:"role"`
	ManagerID string     `json:"manager_id,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	Email     string     `json:"email,omitempty"`
}

type ProfileRepositoryInterface interface {
	FindByID(ctx context.Context, id string) (*Profile, error)
	FindByManagerID(ctx context.Context, managerID string) ([]*Profile, error)
	FindAll(ctx context.Context) ([]*Profile, error)
}
