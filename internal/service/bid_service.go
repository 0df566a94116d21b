package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/civicgrid/be-civic-works/internal/apperr"
	"github.com/civicgrid/be-civic-works/internal/client"
	"github.com/civicgrid/be-civic-works/internal/database"
	"github.com/civicgrid/be-civic-works/internal/repository"
	"github.com/civicgrid/be-civic-works/internal/workflow"
)

// BidService handles bid submission and the bid acceptance cascade. The
// acceptance path is the workflow engine's first trigger: one transaction
// covers the bid's own transition, the tender award, the source issue
// advance and the sibling rejections. A row lock on the tender serializes
// concurrent acceptances.
type BidService struct {
	db               *database.DB
	bidRepo          *repository.BidRepository
	tenderRepo       *repository.TenderRepository
	issueRepo        *repository.IssueRepository
	assignmentRepo   *repository.AssignmentRepository
	notificationRepo *repository.NotificationRepository
	publisher        *client.NotificationPublisher
	log              zerolog.Logger
}

// NewBidService creates a new bid service.
func NewBidService(
	db *database.DB,
	bidRepo *repository.BidRepository,
	tenderRepo *repository.TenderRepository,
	issueRepo *repository.IssueRepository,
	assignmentRepo *repository.AssignmentRepository,
	notificationRepo *repository.NotificationRepository,
	publisher *client.NotificationPublisher,
	log zerolog.Logger,
) *BidService {
	return &BidService{
		db:               db,
		bidRepo:          bidRepo,
		tenderRepo:       tenderRepo,
		issueRepo:        issueRepo,
		assignmentRepo:   assignmentRepo,
		notificationRepo: notificationRepo,
		publisher:        publisher,
		log:              log,
	}
}

// SubmitBidRequest represents a contractor's bid submission.
type SubmitBidRequest struct {
	TenderID      string  `json:"tender_id"`
	BidderID      string  `json:"bidder_id"`
	Amount        int64   `json:"amount"`
	ProposalNotes *string `json:"proposal_notes"`
}

// AcceptBidRequest represents a department admin accepting a bid.
type AcceptBidRequest struct {
	BidID      string `json:"bid_id"`
	AcceptedBy string `json:"accepted_by"`
}

// SubmitBid submits a bid against an available tender.
func (s *BidService) SubmitBid(ctx context.Context, req *SubmitBidRequest) (*repository.Bid, error) {
	if req.Amount <= 0 {
		return nil, apperr.InvalidInput("amount", "bid amount must be positive")
	}

	tender, err := s.tenderRepo.GetByID(ctx, req.TenderID)
	if err != nil {
		return nil, err
	}
	if tender.Status != workflow.TenderStatusAvailable {
		return nil, apperr.Conflict("tender is not open for bidding")
	}
	if tender.BidDeadline != nil && time.Now().After(*tender.BidDeadline) {
		return nil, apperr.Conflict("bid deadline has passed")
	}

	bid := &repository.Bid{
		TenderID:      req.TenderID,
		BidderID:      req.BidderID,
		Amount:        req.Amount,
		ProposalNotes: req.ProposalNotes,
		Status:        workflow.BidStatusSubmitted,
	}

	if err := s.bidRepo.Create(ctx, bid); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("bid_id", bid.ID).
		Str("tender_id", bid.TenderID).
		Str("bidder_id", bid.BidderID).
		Int64("amount", bid.Amount).
		Msg("Bid submitted")

	return bid, nil
}

// GetBid retrieves a bid by ID.
func (s *BidService) GetBid(ctx context.Context, id string) (*repository.Bid, error) {
	return s.bidRepo.GetByID(ctx, id)
}

// ListBids returns all bids on a tender.
func (s *BidService) ListBids(ctx context.Context, tenderID string) ([]*repository.Bid, error) {
	return s.bidRepo.ListByTender(ctx, tenderID)
}

// WithdrawBid lets a bidder withdraw their own pending bid.
func (s *BidService) WithdrawBid(ctx context.Context, id, bidderID string) error {
	if err := s.bidRepo.Withdraw(ctx, id, bidderID); err != nil {
		return err
	}

	s.log.Info().
		Str("bid_id", id).
		Str("bidder_id", bidderID).
		Msg("Bid withdrawn")

	return nil
}

// AcceptBid accepts a bid and applies the award cascade atomically:
//
//  1. the tender row is locked, serializing concurrent acceptances;
//  2. pre-images of tender, bid and source issue are read under the lock;
//  3. the pure transition function validates and produces the cascade;
//  4. the bid transition, tender award, issue advance, sibling rejections
//     and the contractor custody record are applied in the one transaction.
//
// Any invariant violation aborts the whole transaction; the losing side of a
// concurrent acceptance gets a conflict error.
func (s *BidService) AcceptBid(ctx context.Context, req *AcceptBidRequest) (*repository.Bid, error) {
	var (
		bid           *repository.Bid
		tender        *repository.Tender
		issue         *repository.Issue
		rejectedCount int64
	)

	err := s.db.InTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		bid, err = s.bidRepo.GetByIDTx(ctx, tx, req.BidID)
		if err != nil {
			return err
		}

		// Lock first, then read every pre-image under the lock.
		tender, err = s.tenderRepo.GetByIDForUpdate(ctx, tx, bid.TenderID)
		if err != nil {
			return err
		}

		var issueState *workflow.IssueState
		if tender.SourceIssueID != nil {
			issue, err = s.issueRepo.GetByIDTx(ctx, tx, *tender.SourceIssueID)
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

		cascade, err := workflow.Transition(workflow.BidAccepted{
			Tender: workflow.TenderState{
				ID:                tender.ID,
				Status:            tender.Status,
				Stage:             tender.WorkflowStage,
				SourceIssueID:     tender.SourceIssueID,
				AwardedContractor: tender.AwardedContractor,
				AwardedAt:         tender.AwardedAt,
				CompletionDate:    tender.CompletionDate,
			},
			Bid: workflow.BidState{
				ID:       bid.ID,
				TenderID: bid.TenderID,
				BidderID: bid.BidderID,
				Amount:   bid.Amount,
				Status:   workflow.BidStatusAccepted,
			},
			PriorBid: bid.Status,
			Issue:    issueState,
			Now:      time.Now().UTC(),
		})
		if err != nil {
			return err
		}

		// The triggering write itself.
		if err := s.bidRepo.UpdateStatusTx(ctx, tx, bid.ID, bid.Status, workflow.BidStatusAccepted); err != nil {
			return err
		}

		// The cascade.
		if err := s.tenderRepo.ApplyPatchTx(ctx, tx, cascade.Tender); err != nil {
			return err
		}
		if cascade.Issue != nil {
			if err := s.issueRepo.ApplyPatchTx(ctx, tx, cascade.Issue); err != nil {
				return err
			}
			// Custody: department → contractor.
			if err := s.assignmentRepo.SupersedeActiveTx(ctx, tx, cascade.Issue.IssueID); err != nil {
				return err
			}
			assignment := &repository.IssueAssignment{
				IssueID:      cascade.Issue.IssueID,
				AssignedBy:   req.AcceptedBy,
				AssigneeType: "contractor",
				AssigneeID:   bid.BidderID,
				Status:       workflow.AssignmentStatusActive,
			}
			if err := s.assignmentRepo.AppendTx(ctx, tx, assignment); err != nil {
				return err
			}
		}
		if cascade.RejectSiblings {
			rejectedCount, err = s.bidRepo.RejectSubmittedSiblingsTx(ctx, tx, bid.TenderID, cascade.AcceptedBidID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("bid_id", bid.ID).
		Str("tender_id", bid.TenderID).
		Str("bidder_id", bid.BidderID).
		Str("accepted_by", req.AcceptedBy).
		Int64("awarded_amount", bid.Amount).
		Int64("siblings_rejected", rejectedCount).
		Msg("Bid accepted, tender awarded")

	s.notifyAwarded(ctx, bid, req.AcceptedBy)

	return s.bidRepo.GetByID(ctx, bid.ID)
}

// notifyAwarded writes the in-app row and publishes the JetStream event.
// Both are non-fatal: the award has already committed.
func (s *BidService) notifyAwarded(ctx context.Context, bid *repository.Bid, actorID string) {
	notification := &repository.Notification{
		RecipientID:  bid.BidderID,
		EventType:    "bid_accepted",
		ResourceType: strPtr("tender"),
		ResourceID:   &bid.TenderID,
		Message:      "Your bid was accepted and the tender has been awarded to you.",
	}
	if err := s.notificationRepo.Append(ctx, notification); err != nil {
		s.log.Warn().Err(err).
			Str("bid_id", bid.ID).
			Msg("Failed to write award notification row")
	}

	s.publisher.PublishWorkflowEvent(ctx, "bid_accepted", "tender", bid.TenderID, actorID,
		[]string{bid.BidderID}, map[string]any{"bid_id": bid.ID, "amount": bid.Amount})
}

func strPtr(s string) *string {
	return &s
}
