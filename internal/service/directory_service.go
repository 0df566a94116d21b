package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/civicgrid/be-civic-works/internal/apperr"
	"github.com/civicgrid/be-civic-works/internal/policy"
	"github.com/civicgrid/be-civic-works/internal/repository"
)

// DirectoryService handles actor profiles and the organizational reference
// data (areas, departments, officials).
type DirectoryService struct {
	profileRepo *repository.ProfileRepository
	orgRepo     *repository.OrgRepository
	log         zerolog.Logger
}

// NewDirectoryService creates a new directory service.
func NewDirectoryService(
	profileRepo *repository.ProfileRepository,
	orgRepo *repository.OrgRepository,
	log zerolog.Logger,
) *DirectoryService {
	return &DirectoryService{
		profileRepo: profileRepo,
		orgRepo:     orgRepo,
		log:         log,
	}
}

// RegisterProfileRequest represents an account provisioning request.
type RegisterProfileRequest struct {
	FullName     string  `json:"full_name"`
	Email        string  `json:"email"`
	Role         string  `json:"role"`
	AreaID       *string `json:"area_id"`
	DepartmentID *string `json:"department_id"`
}

// RegisterProfile provisions a new actor account.
func (s *DirectoryService) RegisterProfile(ctx context.Context, req *RegisterProfileRequest) (*repository.Profile, error) {
	if strings.TrimSpace(req.FullName) == "" {
		return nil, apperr.InvalidInput("full_name", "full name is required")
	}
	if !strings.Contains(req.Email, "@") {
		return nil, apperr.InvalidInput("email", "a valid email is required")
	}
	role := policy.Role(strings.ToLower(req.Role))
	if !policy.ValidRole(role) {
		return nil, apperr.InvalidInput("role", "unknown role")
	}
	if req.AreaID != nil {
		if _, err := s.orgRepo.GetArea(ctx, *req.AreaID); err != nil {
			return nil, err
		}
	}
	if req.DepartmentID != nil {
		if _, err := s.orgRepo.GetDepartment(ctx, *req.DepartmentID); err != nil {
			return nil, err
		}
	}

	profile := &repository.Profile{
		FullName:     strings.TrimSpace(req.FullName),
		Email:        strings.ToLower(req.Email),
		Role:         string(role),
		AreaID:       req.AreaID,
		DepartmentID: req.DepartmentID,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("profile_id", profile.ID).
		Str("role", profile.Role).
		Msg("Profile registered")

	return profile, nil
}

// GetProfile retrieves a profile by ID.
func (s *DirectoryService) GetProfile(ctx context.Context, id string) (*repository.Profile, error) {
	return s.profileRepo.GetByID(ctx, id)
}

// ListProfilesByRole lists profiles with a role, optionally scoped to a
// department.
func (s *DirectoryService) ListProfilesByRole(ctx context.Context, role string, departmentID *string) ([]*repository.Profile, error) {
	if !policy.ValidRole(policy.Role(role)) {
		return nil, apperr.InvalidInput("role", "unknown role")
	}
	return s.profileRepo.ListByRole(ctx, role, departmentID)
}

// ListDepartments lists the departments within an area.
func (s *DirectoryService) ListDepartments(ctx context.Context, areaID string) ([]*repository.Department, error) {
	if _, err := s.orgRepo.GetArea(ctx, areaID); err != nil {
		return nil, err
	}
	return s.orgRepo.ListDepartmentsByArea(ctx, areaID)
}

// ListOfficials lists the municipal officials of a department.
func (s *DirectoryService) ListOfficials(ctx context.Context, departmentID string) ([]*repository.MunicipalOfficial, error) {
	if _, err := s.orgRepo.GetDepartment(ctx, departmentID); err != nil {
		return nil, err
	}
	return s.orgRepo.ListOfficialsByDepartment(ctx, departmentID)
}
