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

// WorkService handles work progress reports and the completion verification
// cascade, the workflow engine's second trigger. Approving a completion
// report completes the tender and resolves the source issue atomically;
// approving a start or milestone report only mirrors the tender stage.
type WorkService struct {
	db               *database.DB
	workRepo         *repository.WorkProgressRepository
	tenderRepo       *repository.TenderRepository
	issueRepo        *repository.IssueRepository
	assignmentRepo   *repository.AssignmentRepository
	notificationRepo *repository.NotificationRepository
	publisher        *client.NotificationPublisher
	log              zerolog.Logger
}

// NewWorkService creates a new work service.
func NewWorkService(
	db *database.DB,
	workRepo *repository.WorkProgressRepository,
	tenderRepo *repository.TenderRepository,
	issueRepo *repository.IssueRepository,
	assignmentRepo *repository.AssignmentRepository,
	notificationRepo *repository.NotificationRepository,
	publisher *client.NotificationPublisher,
	log zerolog.Logger,
) *WorkService {
	return &WorkService{
		db:               db,
		workRepo:         workRepo,
		tenderRepo:       tenderRepo,
		issueRepo:        issueRepo,
		assignmentRepo:   assignmentRepo,
		notificationRepo: notificationRepo,
		publisher:        publisher,
		log:              log,
	}
}

// SubmitProgressRequest represents a contractor's progress report.
type SubmitProgressRequest struct {
	TenderID       string   `json:"tender_id"`
	ContractorID   string   `json:"contractor_id"`
	ProgressType   string   `json:"progress_type"`
	Description    string   `json:"description"`
	AttachmentURLs []string `json:"attachment_urls"`
}

// ReviewProgressRequest represents a reviewer's verdict on a report.
type ReviewProgressRequest struct {
	ProgressID string  `json:"progress_id"`
	ReviewedBy string  `json:"reviewed_by"`
	Notes      *string `json:"notes"`
}

// SubmitProgress records a progress report against an awarded tender. Only
// the awarded contractor may report.
func (s *WorkService) SubmitProgress(ctx context.Context, req *SubmitProgressRequest) (*repository.WorkProgress, error) {
	progressType := workflow.ProgressType(strings.ToLower(req.ProgressType))
	if !workflow.ValidProgressType(progressType) {
		return nil, apperr.InvalidInput("progress_type", "must be one of start, milestone, completion")
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, apperr.InvalidInput("description", "description is required")
	}

	tender, err := s.tenderRepo.GetByID(ctx, req.TenderID)
	if err != nil {
		return nil, err
	}
	if tender.Status != workflow.TenderStatusAwarded {
		return nil, apperr.Conflict("tender has no active award")
	}
	if tender.AwardedContractor == nil || *tender.AwardedContractor != req.ContractorID {
		return nil, apperr.New(apperr.CodeUnauthorized, "only the awarded contractor may report progress")
	}

	wp := &repository.WorkProgress{
		TenderID:       req.TenderID,
		ContractorID:   req.ContractorID,
		ProgressType:   progressType,
		Description:    req.Description,
		AttachmentURLs: req.AttachmentURLs,
		Status:         workflow.ProgressStatusSubmitted,
	}

	if err := s.workRepo.Create(ctx, wp); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("progress_id", wp.ID).
		Str("tender_id", wp.TenderID).
		Str("contractor_id", wp.ContractorID).
		Str("progress_type", string(wp.ProgressType)).
		Msg("Work progress submitted")

	return wp, nil
}

// GetProgress retrieves a work progress report by ID.
func (s *WorkService) GetProgress(ctx context.Context, id string) (*repository.WorkProgress, error) {
	return s.workRepo.GetByID(ctx, id)
}

// ListProgress returns all progress reports for a tender.
func (s *WorkService) ListProgress(ctx context.Context, tenderID string) ([]*repository.WorkProgress, error) {
	return s.workRepo.ListByTender(ctx, tenderID)
}

// ApproveProgress approves a report. For completion reports the verification
// cascade fires in the same transaction: tender completed, source issue
// resolved, both stamped with the verification notes. Start and milestone
// approvals only mirror the tender's workflow stage. Re-approving against an
// already completed tender is rejected, never double-applied.
func (s *WorkService) ApproveProgress(ctx context.Context, req *ReviewProgressRequest) (*repository.WorkProgress, error) {
	var wp *repository.WorkProgress

	err := s.db.InTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		wp, err = s.workRepo.GetByIDTx(ctx, tx, req.ProgressID)
		if err != nil {
			return err
		}

		tender, err := s.tenderRepo.GetByIDForUpdate(ctx, tx, wp.TenderID)
		if err != nil {
			return err
		}

		var issueState *workflow.IssueState
		if tender.SourceIssueID != nil {
			issue, err := s.issueRepo.GetByIDTx(ctx, tx, *tender.SourceIssueID)
			if err != nil {
				return err
			}
			issueState = &workflow.IssueState{
				ID:         issue.ID,
				Status:     issue.Status,
				Stage:      issue.WorkflowStage,
				ResolvedAt: issue.ResolvedAt,
			}
		}

		cascade, err := workflow.Transition(workflow.WorkApproved{
			Tender: workflow.TenderState{
				ID:                tender.ID,
				Status:            tender.Status,
				Stage:             tender.WorkflowStage,
				SourceIssueID:     tender.SourceIssueID,
				AwardedContractor: tender.AwardedContractor,
				AwardedAt:         tender.AwardedAt,
				CompletionDate:    tender.CompletionDate,
			},
			Progress: workflow.ProgressState{
				ID:                wp.ID,
				TenderID:          wp.TenderID,
				ContractorID:      wp.ContractorID,
				Type:              wp.ProgressType,
				Status:            workflow.ProgressStatusApproved,
				VerificationNotes: req.Notes,
			},
			PriorProgress: wp.Status,
			Issue:         issueState,
			Now:           time.Now().UTC(),
		})
		if err != nil {
			return err
		}

		// The triggering write itself.
		if err := s.workRepo.ApproveTx(ctx, tx, wp.ID, wp.Status, req.ReviewedBy, req.Notes); err != nil {
			return err
		}

		if cascade.Empty() {
			// Start/milestone approval: mirror the tender stage, nothing else.
			if stage, ok := workflow.StageForProgressType(wp.ProgressType); ok {
				if workflow.CanAdvanceTender(tender.WorkflowStage, stage) {
					return s.tenderRepo.MirrorStageTx(ctx, tx, tender.ID, tender.WorkflowStage, stage)
				}
			}
			return nil
		}

		if err := s.tenderRepo.ApplyPatchTx(ctx, tx, cascade.Tender); err != nil {
			return err
		}
		if cascade.Issue != nil {
			if err := s.issueRepo.ApplyPatchTx(ctx, tx, cascade.Issue); err != nil {
				return err
			}
			// The contractor's custody record is done with.
			if err := s.assignmentRepo.CompleteActiveTx(ctx, tx, cascade.Issue.IssueID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("progress_id", wp.ID).
		Str("tender_id", wp.TenderID).
		Str("progress_type", string(wp.ProgressType)).
		Str("reviewed_by", req.ReviewedBy).
		Msg("Work progress approved")

	if wp.ProgressType == workflow.ProgressTypeCompletion {
		s.notifyCompleted(ctx, wp, req.ReviewedBy)
	}

	return s.workRepo.GetByID(ctx, wp.ID)
}

// RejectProgress rejects a report. No tender or issue state moves backward;
// the contractor submits a fresh report instead.
func (s *WorkService) RejectProgress(ctx context.Context, req *ReviewProgressRequest) error {
	if req.Notes == nil || strings.TrimSpace(*req.Notes) == "" {
		return apperr.InvalidInput("notes", "rejection notes are required")
	}

	if err := s.workRepo.Reject(ctx, req.ProgressID, req.ReviewedBy, req.Notes); err != nil {
		return err
	}

	s.log.Info().
		Str("progress_id", req.ProgressID).
		Str("reviewed_by", req.ReviewedBy).
		Msg("Work progress rejected")

	return nil
}

// notifyCompleted writes the in-app row and publishes the JetStream event
// after a completion cascade has committed. Non-fatal.
func (s *WorkService) notifyCompleted(ctx context.Context, wp *repository.WorkProgress, actorID string) {
	notification := &repository.Notification{
		RecipientID:  wp.ContractorID,
		EventType:    "work_approved",
		ResourceType: strPtr("tender"),
		ResourceID:   &wp.TenderID,
		Message:      "Your completed work was verified and the tender is closed out.",
	}
	if err := s.notificationRepo.Append(ctx, notification); err != nil {
		s.log.Warn().Err(err).
			Str("progress_id", wp.ID).
			Msg("Failed to write completion notification row")
	}

	s.publisher.PublishWorkflowEvent(ctx, "work_approved", "tender", wp.TenderID, actorID,
		[]string{wp.ContractorID}, map[string]any{"progress_id": wp.ID})
}
