package workflow

// Stage ladders. Stages only ever move toward the end of the ladder; the
// rejection/cancellation side exits leave the ladder entirely and are driven
// by explicit administrative operations, never by the automated handlers.

var issueLadder = []IssueStage{
	IssueStageReported,
	IssueStageAreaReview,
	IssueStageDepartmentAssigned,
	IssueStageContractorAssigned,
	IssueStageWorkInProgress,
	IssueStageWorkCompleted,
	IssueStageVerified,
	IssueStageResolved,
}

var tenderLadder = []TenderStage{
	TenderStageCreated,
	TenderStageAvailable,
	TenderStageAwarded,
	TenderStageWorkInProgress,
	TenderStageWorkCompleted,
	TenderStageVerified,
	TenderStageCompleted,
}

var issueStageRank = buildRanks(issueLadder)
var tenderStageRank = buildRanks(tenderLadder)

func buildRanks[S ~string](ladder []S) map[S]int {
	ranks := make(map[S]int, len(ladder))
	for i, s := range ladder {
		ranks[s] = i
	}
	return ranks
}

// CanAdvanceIssue reports whether an issue stage move is strictly forward
// along the ladder. Unknown stages never advance.
func CanAdvanceIssue(from, to IssueStage) bool {
	f, okF := issueStageRank[from]
	t, okT := issueStageRank[to]
	return okF && okT && t > f
}

// CanAdvanceTender reports whether a tender stage move is strictly forward
// along the ladder.
func CanAdvanceTender(from, to TenderStage) bool {
	f, okF := tenderStageRank[from]
	t, okT := tenderStageRank[to]
	return okF && okT && t > f
}

// IssueStatusTerminal reports whether an issue status permits no further
// workflow activity.
func IssueStatusTerminal(s IssueStatus) bool {
	return s == IssueStatusResolved || s == IssueStatusClosed || s == IssueStatusRejected
}

// TenderStatusTerminal reports whether a tender status permits no further
// workflow activity.
func TenderStatusTerminal(s TenderStatus) bool {
	return s == TenderStatusCompleted || s == TenderStatusCancelled
}

// TenderAcceptsAward reports whether a tender is in a pre-award state where a
// bid may still be accepted.
func TenderAcceptsAward(s TenderStatus) bool {
	return s == TenderStatusAvailable || s == TenderStatusBiddingClosed
}

// ValidIssueStatus reports whether s is a member of the closed issue status set.
func ValidIssueStatus(s IssueStatus) bool {
	switch s {
	case IssueStatusPending, IssueStatusAcknowledged, IssueStatusInProgress,
		IssueStatusResolved, IssueStatusClosed, IssueStatusRejected:
		return true
	}
	return false
}

// ValidProgressType reports whether t is a member of the closed progress type set.
func ValidProgressType(t ProgressType) bool {
	switch t {
	case ProgressTypeStart, ProgressTypeMilestone, ProgressTypeCompletion:
		return true
	}
	return false
}

// StageForProgressType maps an approved non-completion progress report to the
// tender stage it mirrors. Completion reports are handled by the transition
// function, not here.
func StageForProgressType(t ProgressType) (TenderStage, bool) {
	switch t {
	case ProgressTypeStart:
		return TenderStageWorkInProgress, true
	case ProgressTypeMilestone:
		return TenderStageWorkCompleted, true
	}
	return "", false
}
