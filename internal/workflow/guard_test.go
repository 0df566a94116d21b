package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanAdvanceIssue(t *testing.T) {
	tests := []struct {
		name string
		from IssueStage
		to   IssueStage
		want bool
	}{
		{"one step forward", IssueStageReported, IssueStageAreaReview, true},
		{"skip ahead", IssueStageReported, IssueStageContractorAssigned, true},
		{"full ladder jump", IssueStageDepartmentAssigned, IssueStageResolved, true},
		{"same stage", IssueStageAreaReview, IssueStageAreaReview, false},
		{"backward", IssueStageWorkCompleted, IssueStageAreaReview, false},
		{"unknown from", IssueStage("bogus"), IssueStageResolved, false},
		{"unknown to", IssueStageReported, IssueStage("bogus"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAdvanceIssue(tt.from, tt.to))
		})
	}
}

func TestCanAdvanceTender(t *testing.T) {
	tests := []struct {
		name string
		from TenderStage
		to   TenderStage
		want bool
	}{
		{"created to available", TenderStageCreated, TenderStageAvailable, true},
		{"available to awarded", TenderStageAvailable, TenderStageAwarded, true},
		{"awarded to completed", TenderStageAwarded, TenderStageCompleted, true},
		{"same stage", TenderStageAwarded, TenderStageAwarded, false},
		{"backward", TenderStageCompleted, TenderStageAwarded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAdvanceTender(tt.from, tt.to))
		})
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, IssueStatusTerminal(IssueStatusResolved))
	assert.True(t, IssueStatusTerminal(IssueStatusClosed))
	assert.True(t, IssueStatusTerminal(IssueStatusRejected))
	assert.False(t, IssueStatusTerminal(IssueStatusPending))
	assert.False(t, IssueStatusTerminal(IssueStatusInProgress))

	assert.True(t, TenderStatusTerminal(TenderStatusCompleted))
	assert.True(t, TenderStatusTerminal(TenderStatusCancelled))
	assert.False(t, TenderStatusTerminal(TenderStatusAwarded))
}

func TestTenderAcceptsAward(t *testing.T) {
	assert.True(t, TenderAcceptsAward(TenderStatusAvailable))
	assert.True(t, TenderAcceptsAward(TenderStatusBiddingClosed))
	assert.False(t, TenderAcceptsAward(TenderStatusDraft))
	assert.False(t, TenderAcceptsAward(TenderStatusAwarded))
	assert.False(t, TenderAcceptsAward(TenderStatusCompleted))
	assert.False(t, TenderAcceptsAward(TenderStatusCancelled))
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidIssueStatus(IssueStatusPending))
	assert.False(t, ValidIssueStatus(IssueStatus("archived")))

	assert.True(t, ValidProgressType(ProgressTypeCompletion))
	assert.False(t, ValidProgressType(ProgressType("final")))
}

func TestStageForProgressType(t *testing.T) {
	stage, ok := StageForProgressType(ProgressTypeStart)
	assert.True(t, ok)
	assert.Equal(t, TenderStageWorkInProgress, stage)

	stage, ok = StageForProgressType(ProgressTypeMilestone)
	assert.True(t, ok)
	assert.Equal(t, TenderStageWorkCompleted, stage)

	_, ok = StageForProgressType(ProgressTypeCompletion)
	assert.False(t, ok)
}
