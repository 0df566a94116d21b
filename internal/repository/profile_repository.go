package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/civicgrid/be-civic-works/internal/apperr"
	"github.com/civicgrid/be-civic-works/internal/database"
)

// ProfileRepository handles actor account persistence.
type ProfileRepository struct {
	db *database.DB
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(db *database.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create inserts a profile row.
func (r *ProfileRepository) Create(ctx context.Context, p *Profile) error {
	query := `
		INSERT INTO profiles (full_name, email, role, area_id, department_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		p.FullName,
		p.Email,
		p.Role,
		p.AreaID,
		p.DepartmentID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to create profile")
	}
	return nil
}

// GetByID retrieves a profile by ID.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*Profile, error) {
	query := `
		SELECT id, full_name, email, role, area_id, department_id, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`

	p := &Profile{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.FullName,
		&p.Email,
		&p.Role,
		&p.AreaID,
		&p.DepartmentID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, apperr.NotFound("profile", id)
	}
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to get profile")
	}
	return p, nil
}

// ListByRole returns profiles holding a role, optionally scoped to a department.
func (r *ProfileRepository) ListByRole(ctx context.Context, role string, departmentID *string) ([]*Profile, error) {
	query := `
		SELECT id, full_name, email, role, area_id, department_id, created_at, updated_at
		FROM profiles
		WHERE role = $1
		  AND ($2::uuid IS NULL OR department_id = $2)
		ORDER BY full_name ASC
	`

	rows, err := r.db.Query(ctx, query, role, departmentID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to list profiles")
	}
	defer rows.Close()

	profiles := make([]*Profile, 0)
	for rows.Next() {
		p := &Profile{}
		err := rows.Scan(
			&p.ID,
			&p.FullName,
			&p.Email,
			&p.Role,
			&p.AreaID,
			&p.DepartmentID,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to scan profile")
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}
