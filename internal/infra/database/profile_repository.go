package database

import (
	"context"
	"database/sql"

	"github.com/xavierca1/lead-pipeline/internal/entity"
)

// The profiles table carries no address; e-mails come from the session.
const profileColumns = `id, role, manager_id, created_at`

type ProfileRepository struct {
	DB *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

func scanProfile(row rowScanner) (*entity.Profile, error) {
	var (
		p             entity.Profile
		role, manager sql.NullString
		createdAt     sql.NullTime
	)
	if err := row.Scan(&p.ID, &role, &manager, &createdAt); err != nil {
		return nil, err
	}

	p.Role = entity.NormalizeRole(role.String)
	p.ManagerID = manager.String
	if createdAt.Valid {
		t := createdAt.Time
		p.CreatedAt = &t
	}
	return &p, nil
}

func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*entity.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	p, err := scanProfile(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, classify("find profile", err, entity.ErrProfileNotFound)
	}
	return p, nil
}

// FindByManagerID lists the direct reports of a manager.
func (r *ProfileRepository) FindByManagerID(ctx context.Context, managerID string) ([]*entity.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE manager_id = $1 ORDER BY created_at`
	return r.list(ctx, "list team", query, managerID)
}

func (r *ProfileRepository) FindAll(ctx context.Context) ([]*entity.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles ORDER BY created_at`
	return r.list(ctx, "list profiles", query)
}

func (r *ProfileRepository) list(ctx context.Context, op, query string, args ...interface{}) ([]*entity.Profile, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err, entity.ErrProfileNotFound)
	}
	defer rows.Close()

	profiles := make([]*entity.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, classify(op, err, entity.ErrProfileNotFound)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err, entity.ErrProfileNotFound)
	}
	return profiles, nil
}
