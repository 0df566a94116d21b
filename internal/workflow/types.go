// Package workflow holds the pure workflow core: the status and stage
// vocabularies for issues, tenders, bids and work progress, the forward-only
// stage guard, and the transition function that turns a triggering write into
// the cascade of dependent entity patches. Nothing in this package touches
// the database; services apply the returned patches inside one transaction.
package workflow

import "time"

// IssueStatus is the coarse-grained lifecycle state of an issue.
type IssueStatus string

const (
	IssueStatusPending      IssueStatus = "pending"
	IssueStatusAcknowledged IssueStatus = "acknowledged"
	IssueStatusInProgress   IssueStatus = "in_progress"
	IssueStatusResolved     IssueStatus = "resolved"
	IssueStatusClosed       IssueStatus = "closed"
	IssueStatusRejected     IssueStatus = "rejected"
)

// IssueStage is the canonical forward-progressing phase of an issue,
// distinct from its status.
type IssueStage string

const (
	IssueStageReported           IssueStage = "reported"
	IssueStageAreaReview         IssueStage = "area_review"
	IssueStageDepartmentAssigned IssueStage = "department_assigned"
	IssueStageContractorAssigned IssueStage = "contractor_assigned"
	IssueStageWorkInProgress     IssueStage = "work_in_progress"
	IssueStageWorkCompleted      IssueStage = "work_completed"
	IssueStageVerified           IssueStage = "verified"
	IssueStageResolved           IssueStage = "resolved"
)

// TenderStatus is the coarse-grained lifecycle state of a tender.
type TenderStatus string

const (
	TenderStatusDraft         TenderStatus = "draft"
	TenderStatusAvailable     TenderStatus = "available"
	TenderStatusBiddingClosed TenderStatus = "bidding_closed"
	TenderStatusAwarded       TenderStatus = "awarded"
	TenderStatusCompleted     TenderStatus = "completed"
	TenderStatusCancelled     TenderStatus = "cancelled"
)

// TenderStage is the canonical forward-progressing phase of a tender.
type TenderStage string

const (
	TenderStageCreated        TenderStage = "created"
	TenderStageAvailable      TenderStage = "available"
	TenderStageAwarded        TenderStage = "awarded"
	TenderStageWorkInProgress TenderStage = "work_in_progress"
	TenderStageWorkCompleted  TenderStage = "work_completed"
	TenderStageVerified       TenderStage = "verified"
	TenderStageCompleted      TenderStage = "completed"
)

// BidStatus is the lifecycle state of a contractor's bid.
type BidStatus string

const (
	BidStatusDraft       BidStatus = "draft"
	BidStatusSubmitted   BidStatus = "submitted"
	BidStatusUnderReview BidStatus = "under_review"
	BidStatusAccepted    BidStatus = "accepted"
	BidStatusRejected    BidStatus = "rejected"
	BidStatusWithdrawn   BidStatus = "withdrawn"
)

// ProgressType distinguishes work progress reports. Only completion reports
// drive the tender/issue cascade.
type ProgressType string

const (
	ProgressTypeStart      ProgressType = "start"
	ProgressTypeMilestone  ProgressType = "milestone"
	ProgressTypeCompletion ProgressType = "completion"
)

// ProgressStatus is the review state of a work progress report.
type ProgressStatus string

const (
	ProgressStatusSubmitted   ProgressStatus = "submitted"
	ProgressStatusApproved    ProgressStatus = "approved"
	ProgressStatusRejected    ProgressStatus = "rejected"
	ProgressStatusUnderReview ProgressStatus = "under_review"
)

// AssignmentStatus tracks the state of a routing record. Assignments are
// append-only; status is the only mutable column.
type AssignmentStatus string

const (
	AssignmentStatusActive     AssignmentStatus = "active"
	AssignmentStatusCompleted  AssignmentStatus = "completed"
	AssignmentStatusReassigned AssignmentStatus = "reassigned"
	AssignmentStatusCancelled  AssignmentStatus = "cancelled"
)

// ── State snapshots consumed by the transition function ──────────────────────

// TenderState is the pre-image of a tender as seen at transition time.
type TenderState struct {
	ID                string
	Status            TenderStatus
	Stage             TenderStage
	SourceIssueID     *string
	AwardedContractor *string
	AwardedAt         *time.Time
	CompletionDate    *time.Time
}

// IssueState is the pre-image of the tender's source issue, if any.
type IssueState struct {
	ID         string
	Status     IssueStatus
	Stage      IssueStage
	ResolvedAt *time.Time
}

// BidState is the post-image of the bid that triggered a BidAccepted event.
type BidState struct {
	ID       string
	TenderID string
	BidderID string
	Amount   int64
	Status   BidStatus
}

// ProgressState is the post-image of the work progress report that triggered
// a WorkApproved event.
type ProgressState struct {
	ID                string
	TenderID          string
	ContractorID      string
	Type              ProgressType
	Status            ProgressStatus
	VerificationNotes *string
}
