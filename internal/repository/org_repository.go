package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/civicgrid/be-civic-works/internal/apperr"
	"github.com/civicgrid/be-civic-works/internal/database"
)

// OrgRepository handles the organizational reference data: areas, departments
// and municipal officials. Pure persistence; the routing hierarchy this data
// describes is enforced by the services.
type OrgRepository struct {
	db *database.DB
}

// NewOrgRepository creates a new org repository.
func NewOrgRepository(db *database.DB) *OrgRepository {
	return &OrgRepository{db: db}
}

// GetArea retrieves an area by ID.
func (r *OrgRepository) GetArea(ctx context.Context, id string) (*Area, error) {
	query := `SELECT id, name, region, created_at, updated_at FROM areas WHERE id = $1`

	a := &Area{}
	err := r.db.QueryRow(ctx, query, id).Scan(&a.ID, &a.Name, &a.Region, &a.CreatedAt, &a.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, apperr.NotFound("area", id)
	}
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to get area")
	}
	return a, nil
}

// GetDepartment retrieves a department by ID.
func (r *OrgRepository) GetDepartment(ctx context.Context, id string) (*Department, error) {
	query := `SELECT id, area_id, name, category, created_at, updated_at FROM departments WHERE id = $1`

	d := &Department{}
	err := r.db.QueryRow(ctx, query, id).Scan(&d.ID, &d.AreaID, &d.Name, &d.Category, &d.CreatedAt, &d.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, apperr.NotFound("department", id)
	}
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to get department")
	}
	return d, nil
}

// ListDepartmentsByArea returns all departments under an area.
func (r *OrgRepository) ListDepartmentsByArea(ctx context.Context, areaID string) ([]*Department, error) {
	query := `
		SELECT id, area_id, name, category, created_at, updated_at
		FROM departments
		WHERE area_id = $1
		ORDER BY name ASC
	`

	rows, err := r.db.Query(ctx, query, areaID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to list departments")
	}
	defer rows.Close()

	departments := make([]*Department, 0)
	for rows.Next() {
		d := &Department{}
		if err := rows.Scan(&d.ID, &d.AreaID, &d.Name, &d.Category, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to scan department")
		}
		departments = append(departments, d)
	}
	return departments, nil
}

// ListOfficialsByDepartment returns the municipal officials of a department.
func (r *OrgRepository) ListOfficialsByDepartment(ctx context.Context, departmentID string) ([]*MunicipalOfficial, error) {
	query := `
		SELECT id, profile_id, department_id, title, created_at, updated_at
		FROM municipal_officials
		WHERE department_id = $1
		ORDER BY title ASC
	`

	rows, err := r.db.Query(ctx, query, departmentID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to list municipal officials")
	}
	defer rows.Close()

	officials := make([]*MunicipalOfficial, 0)
	for rows.Next() {
		o := &MunicipalOfficial{}
		if err := rows.Scan(&o.ID, &o.ProfileID, &o.DepartmentID, &o.Title, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to scan municipal official")
		}
		officials = append(officials, o)
	}
	return officials, nil
}
