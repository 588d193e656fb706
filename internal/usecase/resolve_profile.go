package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/xavierca1/lead-pipeline/internal/entity"
	"go.uber.org/zap"
)

type ResolveProfileUseCase struct {
	Profiles  entity.ProfileRepositoryInterface
	Directory AddressDirectory
	Logger    *zap.Logger
}

func NewResolveProfileUseCase(profiles entity.ProfileRepositoryInterface, directory AddressDirectory, logger *zap.Logger) *ResolveProfileUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResolveProfileUseCase{Profiles: profiles, Directory: directory, Logger: logger}
}

// Execute maps a signed-in user onto a staff profile. A user without a
// profile row is treated as sales.
func (uc *ResolveProfileUseCase) Execute(ctx context.Context, session Session) (*entity.Profile, error) {
	if strings.TrimSpace(session.UserID) == "" {
		return nil, &entity.ValidationError{Field: "session", Message: "user id is required"}
	}

	profile, err := uc.Profiles.FindByID(ctx, session.UserID)
	if err != nil {
		if !errors.Is(err, entity.ErrProfileNotFound) {
			return nil, asStoreError("find profile", err)
		}
		uc.Logger.Info("profile row missing, falling back to sales", zap.String("user_id", session.UserID))
		profile = &entity.Profile{ID: session.UserID, Role: entity.RoleSales}
	}

	profile.Role = entity.NormalizeRole(string(profile.Role))
	profile.Email = strings.TrimSpace(session.Email)

	if uc.Directory != nil && profile.Email != "" {
		if err := uc.Directory.Remember(ctx, profile.ID, profile.Email); err != nil {
			uc.Logger.Warn("address not remembered", zap.String("user_id", profile.ID), zap.Error(err))
		}
	}
	return profile, nil
}

// teamFor fetches the relationship data the access rules need for p.
// Sales never need it.
func teamFor(ctx context.Context, profiles entity.ProfileRepositoryInterface, p entity.Profile) ([]*entity.Profile, error) {
	var (
		team []*entity.Profile
		err  error
	)
	switch p.Role {
	case entity.RoleManager:
		team, err = profiles.FindByManagerID(ctx, p.ID)
	case entity.RoleAdmin:
		team, err = profiles.FindAll(ctx)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, asStoreError("list team", err)
	}
	for _, member := range team {
		if member != nil {
			member.Role = entity.NormalizeRole(string(member.Role))
		}
	}
	return team, nil
}

func asStoreError(op string, err error) error {
	if entity.IsStoreError(err) {
		return err
	}
	return &entity.StoreError{Op: op, Err: err}
}
