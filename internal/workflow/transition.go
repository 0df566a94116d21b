package workflow

import (
	"fmt"
	"time"

	"github.com/civicgrid/be-civic-works/internal/apperr"
)

// Event is a tagged workflow trigger: a bid moved into accepted, or a work
// progress report moved into approved.
type Event interface {
	event()
}

// BidAccepted fires when a bid update changes status to accepted from a
// different prior status. Tender and Issue carry pre-images read under the
// tender row lock; Bid carries the post-image.
type BidAccepted struct {
	Tender   TenderState
	Bid      BidState
	PriorBid BidStatus
	Issue    *IssueState // nil when the tender has no source issue
	Now      time.Time
}

// WorkApproved fires when a work progress update changes status to approved
// from a different prior status.
type WorkApproved struct {
	Tender        TenderState
	Progress      ProgressState
	PriorProgress ProgressStatus
	Issue         *IssueState // nil when the tender has no source issue
	Now           time.Time
}

func (BidAccepted) event()  {}
func (WorkApproved) event() {}

// TenderPatch is the set of tender columns a cascade writes.
type TenderPatch struct {
	TenderID          string
	Status            TenderStatus
	Stage             TenderStage
	AwardedContractor *string
	AwardedAmount     *int64
	AwardedAt         *time.Time
	CompletionDate    *time.Time
	VerificationNotes *string
}

// IssuePatch is the set of issue columns a cascade writes.
type IssuePatch struct {
	IssueID              string
	Status               IssueStatus
	Stage                IssueStage
	CurrentAssignee      *string
	ResolvedAt           *time.Time
	FinalResolutionNotes *string
}

// Cascade is the bounded set of dependent writes one triggering write
// produces. The caller applies every non-nil member atomically in the same
// transaction as the trigger.
type Cascade struct {
	Tender *TenderPatch
	Issue  *IssuePatch

	// RejectSiblings asks the caller to force every other submitted bid on
	// the tender to rejected, sparing AcceptedBidID.
	RejectSiblings bool
	AcceptedBidID  string
}

// Empty reports whether the cascade carries no writes at all.
func (c *Cascade) Empty() bool {
	return c.Tender == nil && c.Issue == nil && !c.RejectSiblings
}

// Transition validates an event against the pre-images and returns the
// cascade of patches to apply. It performs no I/O. A conflict error means the
// triggering write must be aborted entirely.
func Transition(ev Event) (*Cascade, error) {
	switch e := ev.(type) {
	case BidAccepted:
		return transitionBidAccepted(e)
	case WorkApproved:
		return transitionWorkApproved(e)
	default:
		return nil, apperr.New(apperr.CodeInternal, fmt.Sprintf("unknown workflow event %T", ev))
	}
}

func transitionBidAccepted(e BidAccepted) (*Cascade, error) {
	if e.Bid.Status != BidStatusAccepted {
		return nil, apperr.Conflict(fmt.Sprintf("bid %s is not accepted (status: %s)", e.Bid.ID, e.Bid.Status))
	}
	if e.PriorBid == BidStatusAccepted {
		return nil, apperr.Conflict(fmt.Sprintf("bid %s was already accepted", e.Bid.ID))
	}
	if e.PriorBid != BidStatusSubmitted && e.PriorBid != BidStatusUnderReview {
		return nil, apperr.Conflict(fmt.Sprintf("bid %s cannot be accepted from status '%s'", e.Bid.ID, e.PriorBid))
	}
	if !TenderAcceptsAward(e.Tender.Status) {
		return nil, apperr.Conflict(fmt.Sprintf("tender %s cannot be awarded from status '%s'", e.Tender.ID, e.Tender.Status))
	}
	if e.Tender.AwardedAt != nil || e.Tender.AwardedContractor != nil {
		return nil, apperr.Conflict(fmt.Sprintf("tender %s already carries an award", e.Tender.ID))
	}
	if !CanAdvanceTender(e.Tender.Stage, TenderStageAwarded) {
		return nil, apperr.Conflict(fmt.Sprintf("tender %s stage cannot move %s -> %s", e.Tender.ID, e.Tender.Stage, TenderStageAwarded))
	}

	now := e.Now
	bidder := e.Bid.BidderID
	amount := e.Bid.Amount

	cascade := &Cascade{
		Tender: &TenderPatch{
			TenderID:          e.Tender.ID,
			Status:            TenderStatusAwarded,
			Stage:             TenderStageAwarded,
			AwardedContractor: &bidder,
			AwardedAmount:     &amount,
			AwardedAt:         &now,
		},
		RejectSiblings: true,
		AcceptedBidID:  e.Bid.ID,
	}

	// No source issue: the issue-side cascade is a documented no-op.
	if e.Issue == nil {
		return cascade, nil
	}

	if IssueStatusTerminal(e.Issue.Status) {
		return nil, apperr.Conflict(fmt.Sprintf("issue %s is terminal (status: %s)", e.Issue.ID, e.Issue.Status))
	}
	if !CanAdvanceIssue(e.Issue.Stage, IssueStageContractorAssigned) {
		return nil, apperr.Conflict(fmt.Sprintf("issue %s stage cannot move %s -> %s", e.Issue.ID, e.Issue.Stage, IssueStageContractorAssigned))
	}

	cascade.Issue = &IssuePatch{
		IssueID:         e.Issue.ID,
		Status:          IssueStatusInProgress,
		Stage:           IssueStageContractorAssigned,
		CurrentAssignee: &bidder,
	}
	return cascade, nil
}

func transitionWorkApproved(e WorkApproved) (*Cascade, error) {
	if e.Progress.Status != ProgressStatusApproved {
		return nil, apperr.Conflict(fmt.Sprintf("work progress %s is not approved (status: %s)", e.Progress.ID, e.Progress.Status))
	}
	if e.PriorProgress == ProgressStatusApproved {
		return nil, apperr.Conflict(fmt.Sprintf("work progress %s was already approved", e.Progress.ID))
	}

	// Milestone and start reports are recorded but never advance tender or
	// issue state through this path.
	if e.Progress.Type != ProgressTypeCompletion {
		return &Cascade{}, nil
	}

	if e.Tender.Status == TenderStatusCompleted || e.Tender.CompletionDate != nil {
		return nil, apperr.Conflict(fmt.Sprintf("tender %s is already completed", e.Tender.ID))
	}
	if e.Tender.Status != TenderStatusAwarded {
		return nil, apperr.Conflict(fmt.Sprintf("tender %s has no active award (status: %s)", e.Tender.ID, e.Tender.Status))
	}
	if !CanAdvanceTender(e.Tender.Stage, TenderStageCompleted) {
		return nil, apperr.Conflict(fmt.Sprintf("tender %s stage cannot move %s -> %s", e.Tender.ID, e.Tender.Stage, TenderStageCompleted))
	}

	now := e.Now
	cascade := &Cascade{
		Tender: &TenderPatch{
			TenderID:          e.Tender.ID,
			Status:            TenderStatusCompleted,
			Stage:             TenderStageCompleted,
			CompletionDate:    &now,
			VerificationNotes: e.Progress.VerificationNotes,
		},
	}

	// Tenders not raised from a citizen report complete with no further
	// propagation.
	if e.Issue == nil {
		return cascade, nil
	}

	if e.Issue.ResolvedAt != nil || e.Issue.Status == IssueStatusResolved {
		return nil, apperr.Conflict(fmt.Sprintf("issue %s is already resolved", e.Issue.ID))
	}
	if IssueStatusTerminal(e.Issue.Status) {
		return nil, apperr.Conflict(fmt.Sprintf("issue %s is terminal (status: %s)", e.Issue.ID, e.Issue.Status))
	}
	if !CanAdvanceIssue(e.Issue.Stage, IssueStageResolved) {
		return nil, apperr.Conflict(fmt.Sprintf("issue %s stage cannot move %s -> %s", e.Issue.ID, e.Issue.Stage, IssueStageResolved))
	}

	cascade.Issue = &IssuePatch{
		IssueID:              e.Issue.ID,
		Status:               IssueStatusResolved,
		Stage:                IssueStageResolved,
		ResolvedAt:           &now,
		FinalResolutionNotes: e.Progress.VerificationNotes,
	}
	return cascade, nil
}
