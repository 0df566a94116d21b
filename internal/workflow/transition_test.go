package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicgrid/be-civic-works/internal/apperr"
)

var testNow = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

func openTender() TenderState {
	issueID := "issue-1"
	return TenderState{
		ID:            "tender-1",
		Status:        TenderStatusAvailable,
		Stage:         TenderStageAvailable,
		SourceIssueID: &issueID,
	}
}

func standaloneTender() TenderState {
	t := openTender()
	t.SourceIssueID = nil
	return t
}

func awardedTender() TenderState {
	contractor := "contractor-1"
	awardedAt := testNow.Add(-48 * time.Hour)
	issueID := "issue-1"
	return TenderState{
		ID:                "tender-1",
		Status:            TenderStatusAwarded,
		Stage:             TenderStageAwarded,
		SourceIssueID:     &issueID,
		AwardedContractor: &contractor,
		AwardedAt:         &awardedAt,
	}
}

func routedIssue() *IssueState {
	return &IssueState{
		ID:     "issue-1",
		Status: IssueStatusAcknowledged,
		Stage:  IssueStageDepartmentAssigned,
	}
}

func acceptedBid() BidState {
	return BidState{
		ID:       "bid-1",
		TenderID: "tender-1",
		BidderID: "contractor-1",
		Amount:   250000,
		Status:   BidStatusAccepted,
	}
}

func approvedCompletion(notes *string) ProgressState {
	return ProgressState{
		ID:                "wp-1",
		TenderID:          "tender-1",
		ContractorID:      "contractor-1",
		Type:              ProgressTypeCompletion,
		Status:            ProgressStatusApproved,
		VerificationNotes: notes,
	}
}

func TestBidAcceptedCascade(t *testing.T) {
	cascade, err := Transition(BidAccepted{
		Tender:   openTender(),
		Bid:      acceptedBid(),
		PriorBid: BidStatusSubmitted,
		Issue:    routedIssue(),
		Now:      testNow,
	})
	require.NoError(t, err)
	require.NotNil(t, cascade.Tender)
	require.NotNil(t, cascade.Issue)

	assert.Equal(t, TenderStatusAwarded, cascade.Tender.Status)
	assert.Equal(t, TenderStageAwarded, cascade.Tender.Stage)
	require.NotNil(t, cascade.Tender.AwardedContractor)
	assert.Equal(t, "contractor-1", *cascade.Tender.AwardedContractor)
	require.NotNil(t, cascade.Tender.AwardedAmount)
	assert.Equal(t, int64(250000), *cascade.Tender.AwardedAmount)
	require.NotNil(t, cascade.Tender.AwardedAt)
	assert.Equal(t, testNow, *cascade.Tender.AwardedAt)

	assert.Equal(t, IssueStatusInProgress, cascade.Issue.Status)
	assert.Equal(t, IssueStageContractorAssigned, cascade.Issue.Stage)
	require.NotNil(t, cascade.Issue.CurrentAssignee)
	assert.Equal(t, "contractor-1", *cascade.Issue.CurrentAssignee)

	assert.True(t, cascade.RejectSiblings)
	assert.Equal(t, "bid-1", cascade.AcceptedBidID)
}

func TestBidAcceptedFromUnderReview(t *testing.T) {
	cascade, err := Transition(BidAccepted{
		Tender:   openTender(),
		Bid:      acceptedBid(),
		PriorBid: BidStatusUnderReview,
		Issue:    routedIssue(),
		Now:      testNow,
	})
	require.NoError(t, err)
	assert.NotNil(t, cascade.Tender)
}

func TestBidAcceptedNoSourceIssue(t *testing.T) {
	cascade, err := Transition(BidAccepted{
		Tender:   standaloneTender(),
		Bid:      acceptedBid(),
		PriorBid: BidStatusSubmitted,
		Issue:    nil,
		Now:      testNow,
	})
	require.NoError(t, err)
	assert.NotNil(t, cascade.Tender)
	assert.Nil(t, cascade.Issue)
	assert.True(t, cascade.RejectSiblings)
}

func TestBidAcceptedAfterBiddingClosed(t *testing.T) {
	tender := openTender()
	tender.Status = TenderStatusBiddingClosed

	cascade, err := Transition(BidAccepted{
		Tender:   tender,
		Bid:      acceptedBid(),
		PriorBid: BidStatusSubmitted,
		Issue:    routedIssue(),
		Now:      testNow,
	})
	require.NoError(t, err)
	assert.Equal(t, TenderStatusAwarded, cascade.Tender.Status)
}

func TestBidAcceptedRejections(t *testing.T) {
	contractor := "someone-else"
	awardedAt := testNow.Add(-time.Hour)

	tests := []struct {
		name   string
		mutate func(*BidAccepted)
	}{
		{
			name: "already accepted bid",
			mutate: func(e *BidAccepted) {
				e.PriorBid = BidStatusAccepted
			},
		},
		{
			name: "rejected bid cannot be accepted",
			mutate: func(e *BidAccepted) {
				e.PriorBid = BidStatusRejected
			},
		},
		{
			name: "withdrawn bid cannot be accepted",
			mutate: func(e *BidAccepted) {
				e.PriorBid = BidStatusWithdrawn
			},
		},
		{
			name: "draft tender cannot be awarded",
			mutate: func(e *BidAccepted) {
				e.Tender.Status = TenderStatusDraft
			},
		},
		{
			name: "cancelled tender cannot be awarded",
			mutate: func(e *BidAccepted) {
				e.Tender.Status = TenderStatusCancelled
			},
		},
		{
			name: "tender already awarded",
			mutate: func(e *BidAccepted) {
				e.Tender.AwardedContractor = &contractor
				e.Tender.AwardedAt = &awardedAt
			},
		},
		{
			name: "award timestamp already set",
			mutate: func(e *BidAccepted) {
				e.Tender.AwardedAt = &awardedAt
			},
		},
		{
			name: "terminal source issue",
			mutate: func(e *BidAccepted) {
				e.Issue.Status = IssueStatusClosed
			},
		},
		{
			name: "issue stage past contractor assignment",
			mutate: func(e *BidAccepted) {
				e.Issue.Stage = IssueStageWorkCompleted
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := BidAccepted{
				Tender:   openTender(),
				Bid:      acceptedBid(),
				PriorBid: BidStatusSubmitted,
				Issue:    routedIssue(),
				Now:      testNow,
			}
			tt.mutate(&ev)

			cascade, err := Transition(ev)
			require.Error(t, err)
			assert.Nil(t, cascade)
			assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err))
		})
	}
}

func TestWorkApprovedCompletionCascade(t *testing.T) {
	notes := "inspected on site, pothole filled"
	issue := routedIssue()
	issue.Status = IssueStatusInProgress
	issue.Stage = IssueStageWorkCompleted

	cascade, err := Transition(WorkApproved{
		Tender:        awardedTender(),
		Progress:      approvedCompletion(&notes),
		PriorProgress: ProgressStatusSubmitted,
		Issue:         issue,
		Now:           testNow,
	})
	require.NoError(t, err)
	require.NotNil(t, cascade.Tender)
	require.NotNil(t, cascade.Issue)

	assert.Equal(t, TenderStatusCompleted, cascade.Tender.Status)
	assert.Equal(t, TenderStageCompleted, cascade.Tender.Stage)
	require.NotNil(t, cascade.Tender.CompletionDate)
	assert.Equal(t, testNow, *cascade.Tender.CompletionDate)
	require.NotNil(t, cascade.Tender.VerificationNotes)
	assert.Equal(t, notes, *cascade.Tender.VerificationNotes)

	assert.Equal(t, IssueStatusResolved, cascade.Issue.Status)
	assert.Equal(t, IssueStageResolved, cascade.Issue.Stage)
	require.NotNil(t, cascade.Issue.ResolvedAt)
	assert.Equal(t, testNow, *cascade.Issue.ResolvedAt)
	require.NotNil(t, cascade.Issue.FinalResolutionNotes)
	assert.Equal(t, notes, *cascade.Issue.FinalResolutionNotes)

	assert.False(t, cascade.RejectSiblings)
}

func TestWorkApprovedCompletionNoSourceIssue(t *testing.T) {
	tender := awardedTender()
	tender.SourceIssueID = nil

	cascade, err := Transition(WorkApproved{
		Tender:        tender,
		Progress:      approvedCompletion(nil),
		PriorProgress: ProgressStatusSubmitted,
		Issue:         nil,
		Now:           testNow,
	})
	require.NoError(t, err)
	assert.NotNil(t, cascade.Tender)
	assert.Nil(t, cascade.Issue)
}

func TestWorkApprovedNonCompletionIsInert(t *testing.T) {
	for _, pt := range []ProgressType{ProgressTypeStart, ProgressTypeMilestone} {
		t.Run(string(pt), func(t *testing.T) {
			progress := approvedCompletion(nil)
			progress.Type = pt

			cascade, err := Transition(WorkApproved{
				Tender:        awardedTender(),
				Progress:      progress,
				PriorProgress: ProgressStatusSubmitted,
				Issue:         routedIssue(),
				Now:           testNow,
			})
			require.NoError(t, err)
			assert.True(t, cascade.Empty())
		})
	}
}

func TestWorkApprovedRejections(t *testing.T) {
	completed := testNow.Add(-24 * time.Hour)
	resolved := testNow.Add(-24 * time.Hour)

	tests := []struct {
		name   string
		mutate func(*WorkApproved)
	}{
		{
			name: "already approved report",
			mutate: func(e *WorkApproved) {
				e.PriorProgress = ProgressStatusApproved
			},
		},
		{
			name: "tender already completed",
			mutate: func(e *WorkApproved) {
				e.Tender.Status = TenderStatusCompleted
			},
		},
		{
			name: "completion date already set",
			mutate: func(e *WorkApproved) {
				e.Tender.CompletionDate = &completed
			},
		},
		{
			name: "tender has no active award",
			mutate: func(e *WorkApproved) {
				e.Tender.Status = TenderStatusAvailable
				e.Tender.AwardedContractor = nil
				e.Tender.AwardedAt = nil
			},
		},
		{
			name: "issue already resolved",
			mutate: func(e *WorkApproved) {
				e.Issue.Status = IssueStatusResolved
				e.Issue.Stage = IssueStageResolved
				e.Issue.ResolvedAt = &resolved
			},
		},
		{
			name: "resolution timestamp already set",
			mutate: func(e *WorkApproved) {
				e.Issue.ResolvedAt = &resolved
			},
		},
		{
			name: "terminal source issue",
			mutate: func(e *WorkApproved) {
				e.Issue.Status = IssueStatusRejected
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issue := routedIssue()
			issue.Status = IssueStatusInProgress
			issue.Stage = IssueStageWorkCompleted

			ev := WorkApproved{
				Tender:        awardedTender(),
				Progress:      approvedCompletion(nil),
				PriorProgress: ProgressStatusSubmitted,
				Issue:         issue,
				Now:           testNow,
			}
			tt.mutate(&ev)

			cascade, err := Transition(ev)
			require.Error(t, err)
			assert.Nil(t, cascade)
			assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err))
		})
	}
}

func TestCascadeEmpty(t *testing.T) {
	assert.True(t, (&Cascade{}).Empty())
	assert.False(t, (&Cascade{Tender: &TenderPatch{}}).Empty())
	assert.False(t, (&Cascade{Issue: &IssuePatch{}}).Empty())
	assert.False(t, (&Cascade{RejectSiblings: true}).Empty())
}
