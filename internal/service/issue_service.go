package service

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/civicgrid/be-civic-works/internal/apperr"
	"github.com/civicgrid/be-civic-works/internal/client"
	"github.com/civicgrid/be-civic-works/internal/database"
	"github.com/civicgrid/be-civic-works/internal/repository"
	"github.com/civicgrid/be-civic-works/internal/workflow"
)

// IssueService handles issue reporting, triage and routing. Routing writes
// the append-only assignment trail and the issue's stage advance in one
// transaction.
type IssueService struct {
	db             *database.DB
	issueRepo      *repository.IssueRepository
	assignmentRepo *repository.AssignmentRepository
	orgRepo        *repository.OrgRepository
	communityRepo  *repository.CommunityRepository
	publisher      *client.NotificationPublisher
	log            zerolog.Logger
}

// NewIssueService creates a new issue service.
func NewIssueService(
	db *database.DB,
	issueRepo *repository.IssueRepository,
	assignmentRepo *repository.AssignmentRepository,
	orgRepo *repository.OrgRepository,
	communityRepo *repository.CommunityRepository,
	publisher *client.NotificationPublisher,
	log zerolog.Logger,
) *IssueService {
	return &IssueService{
		db:             db,
		issueRepo:      issueRepo,
		assignmentRepo: assignmentRepo,
		orgRepo:        orgRepo,
		communityRepo:  communityRepo,
		publisher:      publisher,
		log:            log,
	}
}

// ReportIssueRequest represents a citizen's issue report.
type ReportIssueRequest struct {
	ReporterID  string  `json:"reporter_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Location    *string `json:"location"`
}

// RouteIssueRequest represents a routing decision by an administrator.
type RouteIssueRequest struct {
	IssueID    string  `json:"issue_id"`
	AssigneeID string  `json:"assignee_id"`
	RoutedBy   string  `json:"routed_by"`
	Notes      *string `json:"notes"`
}

// ReportIssue creates a new issue in the reported stage.
func (s *IssueService) ReportIssue(ctx context.Context, req *ReportIssueRequest) (*repository.Issue, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperr.InvalidInput("title", "title is required")
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, apperr.InvalidInput("description", "description is required")
	}
	if req.ReporterID == "" {
		return nil, apperr.InvalidInput("reporter_id", "reporter is required")
	}

	issue := &repository.Issue{
		ReporterID:    req.ReporterID,
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		Category:      strings.ToLower(req.Category),
		Location:      req.Location,
		Status:        workflow.IssueStatusPending,
		WorkflowStage: workflow.IssueStageReported,
	}

	if err := s.issueRepo.Create(ctx, issue); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("issue_id", issue.ID).
		Str("reporter_id", issue.ReporterID).
		Str("category", issue.Category).
		Msg("Issue reported")

	return issue, nil
}

// GetIssue retrieves an issue by ID.
func (s *IssueService) GetIssue(ctx context.Context, id string) (*repository.Issue, error) {
	return s.issueRepo.GetByID(ctx, id)
}

// ListIssues lists issues with filtering and pagination.
func (s *IssueService) ListIssues(ctx context.Context, status *workflow.IssueStatus, stage *workflow.IssueStage, areaID *string, page, pageSize int) ([]*repository.Issue, int64, error) {
	offset := (page - 1) * pageSize
	return s.issueRepo.List(ctx, status, stage, areaID, pageSize, offset)
}

// RouteToArea routes a reported issue to an area for review (admin → area).
// Appends the custody record and advances the issue in one transaction.
func (s *IssueService) RouteToArea(ctx context.Context, req *RouteIssueRequest) error {
	if _, err := s.orgRepo.GetArea(ctx, req.AssigneeID); err != nil {
		return err
	}

	err := s.db.InTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.assignmentRepo.SupersedeActiveTx(ctx, tx, req.IssueID); err != nil {
			return err
		}
		assignment := &repository.IssueAssignment{
			IssueID:      req.IssueID,
			AssignedBy:   req.RoutedBy,
			AssigneeType: "area",
			AssigneeID:   req.AssigneeID,
			Status:       workflow.AssignmentStatusActive,
			Notes:        req.Notes,
		}
		if err := s.assignmentRepo.AppendTx(ctx, tx, assignment); err != nil {
			return err
		}
		return s.issueRepo.AdvanceRouting(ctx, tx, req.IssueID,
			workflow.IssueStageReported, workflow.IssueStageAreaReview,
			workflow.IssueStatusAcknowledged,
			&req.AssigneeID, nil, nil)
	})
	if err != nil {
		return err
	}

	s.log.Info().
		Str("issue_id", req.IssueID).
		Str("area_id", req.AssigneeID).
		Str("routed_by", req.RoutedBy).
		Msg("Issue routed to area")

	s.publisher.PublishWorkflowEvent(ctx, "issue_routed", "issue", req.IssueID, req.RoutedBy,
		[]string{req.AssigneeID}, map[string]any{"assignee_type": "area"})

	return nil
}

// RouteToDepartment routes an issue under area review to a department
// (area → department).
func (s *IssueService) RouteToDepartment(ctx context.Context, req *RouteIssueRequest) error {
	if _, err := s.orgRepo.GetDepartment(ctx, req.AssigneeID); err != nil {
		return err
	}

	err := s.db.InTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.assignmentRepo.SupersedeActiveTx(ctx, tx, req.IssueID); err != nil {
			return err
		}
		assignment := &repository.IssueAssignment{
			IssueID:      req.IssueID,
			AssignedBy:   req.RoutedBy,
			AssigneeType: "department",
			AssigneeID:   req.AssigneeID,
			Status:       workflow.AssignmentStatusActive,
			Notes:        req.Notes,
		}
		if err := s.assignmentRepo.AppendTx(ctx, tx, assignment); err != nil {
			return err
		}
		return s.issueRepo.AdvanceRouting(ctx, tx, req.IssueID,
			workflow.IssueStageAreaReview, workflow.IssueStageDepartmentAssigned,
			workflow.IssueStatusAcknowledged,
			nil, &req.AssigneeID, nil)
	})
	if err != nil {
		return err
	}

	s.log.Info().
		Str("issue_id", req.IssueID).
		Str("department_id", req.AssigneeID).
		Str("routed_by", req.RoutedBy).
		Msg("Issue routed to department")

	s.publisher.PublishWorkflowEvent(ctx, "issue_routed", "issue", req.IssueID, req.RoutedBy,
		[]string{req.AssigneeID}, map[string]any{"assignee_type": "department"})

	return nil
}

// AcknowledgeIssue is the lightweight triage path: an area admin pulls a
// pending issue straight into their own area's review queue without a
// separate routing decision.
func (s *IssueService) AcknowledgeIssue(ctx context.Context, issueID, areaID, acknowledgedBy string) error {
	if _, err := s.orgRepo.GetArea(ctx, areaID); err != nil {
		return err
	}

	if err := s.issueRepo.Acknowledge(ctx, issueID, areaID); err != nil {
		return err
	}

	s.log.Info().
		Str("issue_id", issueID).
		Str("area_id", areaID).
		Str("acknowledged_by", acknowledgedBy).
		Msg("Issue acknowledged")

	return nil
}

// RejectIssue is the administrative side exit to the rejected terminal
// status. The stage ladder is left where it was.
func (s *IssueService) RejectIssue(ctx context.Context, id, rejectedBy string, reason *string) error {
	if reason == nil || strings.TrimSpace(*reason) == "" {
		return apperr.InvalidInput("reason", "rejection reason is required")
	}

	if err := s.issueRepo.Terminate(ctx, id, workflow.IssueStatusRejected, reason); err != nil {
		return err
	}

	s.log.Info().
		Str("issue_id", id).
		Str("rejected_by", rejectedBy).
		Msg("Issue rejected")

	issue, err := s.issueRepo.GetByID(ctx, id)
	if err == nil {
		s.publisher.PublishWorkflowEvent(ctx, "issue_rejected", "issue", id, rejectedBy,
			[]string{issue.ReporterID}, map[string]any{"reason": *reason})
	}

	return nil
}

// CloseIssue is the administrative side exit to the closed terminal status.
func (s *IssueService) CloseIssue(ctx context.Context, id, closedBy string, notes *string) error {
	if err := s.issueRepo.Terminate(ctx, id, workflow.IssueStatusClosed, notes); err != nil {
		return err
	}

	s.log.Info().
		Str("issue_id", id).
		Str("closed_by", closedBy).
		Msg("Issue closed")

	return nil
}

// VoteIssue records one citizen's vote and returns the new vote count.
func (s *IssueService) VoteIssue(ctx context.Context, issueID, voterID string) (int64, error) {
	if _, err := s.issueRepo.GetByID(ctx, issueID); err != nil {
		return 0, err
	}
	if err := s.communityRepo.AddVote(ctx, issueID, voterID); err != nil {
		return 0, err
	}
	return s.communityRepo.CountVotes(ctx, issueID)
}

// GetAssignmentTrail returns the full chain of custody for an issue.
func (s *IssueService) GetAssignmentTrail(ctx context.Context, issueID string) ([]*repository.IssueAssignment, error) {
	return s.assignmentRepo.ListByIssue(ctx, issueID)
}
