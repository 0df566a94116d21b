package service

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/civicgrid/be-civic-works/internal/apperr"
	"github.com/civicgrid/be-civic-works/internal/client"
	"github.com/civicgrid/be-civic-works/internal/database"
	"github.com/civicgrid/be-civic-works/internal/repository"
	"github.com/civicgrid/be-civic-works/internal/workflow"
)

// TenderService handles tender lifecycle operations outside the automated
// cascades: creation (optionally from an unresolved issue), publishing,
// bidding close and administrative cancellation.
type TenderService struct {
	db             *database.DB
	tenderRepo     *repository.TenderRepository
	issueRepo      *repository.IssueRepository
	assignmentRepo *repository.AssignmentRepository
	orgRepo        *repository.OrgRepository
	publisher      *client.NotificationPublisher
	log            zerolog.Logger
}

// NewTenderService creates a new tender service.
func NewTenderService(
	db *database.DB,
	tenderRepo *repository.TenderRepository,
	issueRepo *repository.IssueRepository,
	assignmentRepo *repository.AssignmentRepository,
	orgRepo *repository.OrgRepository,
	publisher *client.NotificationPublisher,
	log zerolog.Logger,
) *TenderService {
	return &TenderService{
		db:             db,
		tenderRepo:     tenderRepo,
		issueRepo:      issueRepo,
		assignmentRepo: assignmentRepo,
		orgRepo:        orgRepo,
		publisher:      publisher,
		log:            log,
	}
}

// CreateTenderRequest represents a create tender request.
type CreateTenderRequest struct {
	DepartmentID    string     `json:"department_id"`
	SourceIssueID   *string    `json:"source_issue_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	EstimatedAmount int64      `json:"estimated_amount"`
	BidDeadline     *time.Time `json:"bid_deadline"`
	CreatedBy       string     `json:"created_by"`
}

// CreateTender creates a draft tender. When raised from an issue, the issue
// is advanced to department_assigned and the custody trail gets a department
// assignment record, all in the same transaction as the tender insert.
func (s *TenderService) CreateTender(ctx context.Context, req *CreateTenderRequest) (*repository.Tender, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperr.InvalidInput("title", "title is required")
	}
	if req.EstimatedAmount <= 0 {
		return nil, apperr.InvalidInput("estimated_amount", "estimated amount must be positive")
	}
	if _, err := s.orgRepo.GetDepartment(ctx, req.DepartmentID); err != nil {
		return nil, err
	}

	createdBy := req.CreatedBy
	tender := &repository.Tender{
		DepartmentID:    req.DepartmentID,
		SourceIssueID:   req.SourceIssueID,
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		EstimatedAmount: req.EstimatedAmount,
		BidDeadline:     req.BidDeadline,
		Status:          workflow.TenderStatusDraft,
		WorkflowStage:   workflow.TenderStageCreated,
		CreatedBy:       &createdBy,
	}

	if req.SourceIssueID == nil {
		if err := s.tenderRepo.Create(ctx, tender); err != nil {
			return nil, err
		}
	} else {
		issue, err := s.issueRepo.GetByID(ctx, *req.SourceIssueID)
		if err != nil {
			return nil, err
		}
		if workflow.IssueStatusTerminal(issue.Status) {
			return nil, apperr.Conflict("cannot raise a tender from a terminal issue")
		}

		err = s.db.InTransaction(ctx, func(tx pgx.Tx) error {
			if err := s.tenderRepo.CreateTx(ctx, tx, tender); err != nil {
				return err
			}
			// Issues routed straight from area review advance to
			// department_assigned when the tender is raised.
			if issue.WorkflowStage == workflow.IssueStageAreaReview {
				if err := s.assignmentRepo.SupersedeActiveTx(ctx, tx, issue.ID); err != nil {
					return err
				}
				assignment := &repository.IssueAssignment{
					IssueID:      issue.ID,
					AssignedBy:   req.CreatedBy,
					AssigneeType: "department",
					AssigneeID:   req.DepartmentID,
					Status:       workflow.AssignmentStatusActive,
				}
				if err := s.assignmentRepo.AppendTx(ctx, tx, assignment); err != nil {
					return err
				}
				return s.issueRepo.AdvanceRouting(ctx, tx, issue.ID,
					workflow.IssueStageAreaReview, workflow.IssueStageDepartmentAssigned,
					workflow.IssueStatusAcknowledged,
					nil, &req.DepartmentID, nil)
			}
			if issue.WorkflowStage != workflow.IssueStageDepartmentAssigned {
				return apperr.Conflict("issue is not at a stage where a tender can be raised")
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	s.log.Info().
		Str("tender_id", tender.ID).
		Str("department_id", tender.DepartmentID).
		Int64("estimated_amount", tender.EstimatedAmount).
		Msg("Tender created")

	return tender, nil
}

// GetTender retrieves a tender by ID.
func (s *TenderService) GetTender(ctx context.Context, id string) (*repository.Tender, error) {
	return s.tenderRepo.GetByID(ctx, id)
}

// ListTenders lists tenders with filtering and pagination.
func (s *TenderService) ListTenders(ctx context.Context, departmentID *string, status *workflow.TenderStatus, page, pageSize int) ([]*repository.Tender, int64, error) {
	offset := (page - 1) * pageSize
	return s.tenderRepo.List(ctx, departmentID, status, pageSize, offset)
}

// PublishTender opens a draft tender for bidding.
func (s *TenderService) PublishTender(ctx context.Context, id, publishedBy string) error {
	if err := s.tenderRepo.Publish(ctx, id); err != nil {
		return err
	}

	s.log.Info().
		Str("tender_id", id).
		Str("published_by", publishedBy).
		Msg("Tender published")

	tender, err := s.tenderRepo.GetByID(ctx, id)
	if err == nil {
		s.publisher.PublishWorkflowEvent(ctx, "tender_published", "tender", id, publishedBy,
			[]string{tender.DepartmentID}, map[string]any{"title": tender.Title})
	}

	return nil
}

// CloseBidding moves an available tender to bidding_closed.
func (s *TenderService) CloseBidding(ctx context.Context, id, closedBy string) error {
	if err := s.tenderRepo.CloseBidding(ctx, id); err != nil {
		return err
	}

	s.log.Info().
		Str("tender_id", id).
		Str("closed_by", closedBy).
		Msg("Tender bidding closed")

	return nil
}

// CancelTender is the administrative side exit off the tender ladder.
// Awarded and completed tenders cannot be cancelled.
func (s *TenderService) CancelTender(ctx context.Context, id, cancelledBy string) error {
	if err := s.tenderRepo.Cancel(ctx, id); err != nil {
		return err
	}

	s.log.Info().
		Str("tender_id", id).
		Str("cancelled_by", cancelledBy).
		Msg("Tender cancelled")

	return nil
}
