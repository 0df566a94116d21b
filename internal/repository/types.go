package repository

import (
	"time"

	"github.com/civicgrid/be-civic-works/internal/workflow"
)

// ── Ledger entities kept consistent by the workflow engine ────────────────────

// Issue is a citizen-reported problem moving through the routing ladder.
type Issue struct {
	ID                   string
	ReporterID           string
	Title                string
	Description          string
	Category             string
	Location             *string
	Status               workflow.IssueStatus
	WorkflowStage        workflow.IssueStage
	AssignedArea         *string
	AssignedDepartment   *string
	CurrentAssignee      *string
	ResolvedAt           *time.Time
	FinalResolutionNotes *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Tender is a public work request opened by a department, optionally raised
// to resolve a specific issue.
type Tender struct {
	ID                string
	DepartmentID      string
	SourceIssueID     *string
	Title             string
	Description       string
	EstimatedAmount   int64 // cents
	BidDeadline       *time.Time
	Status            workflow.TenderStatus
	WorkflowStage     workflow.TenderStage
	AwardedContractor *string
	AwardedAmount     *int64
	AwardedAt         *time.Time
	CompletionDate    *time.Time
	VerificationNotes *string
	CreatedBy         *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ── Event entities whose transitions trigger the engine ──────────────────────

// Bid is a contractor's offer against a tender. Unique per (tender, bidder).
type Bid struct {
	ID            string
	TenderID      string
	BidderID      string
	Amount        int64 // cents
	ProposalNotes *string
	Status        workflow.BidStatus
	SubmittedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// WorkProgress is a contractor-submitted report against an awarded tender.
type WorkProgress struct {
	ID                string
	TenderID          string
	ContractorID      string
	ProgressType      workflow.ProgressType
	Description       string
	AttachmentURLs    []string
	Status            workflow.ProgressStatus
	VerifiedBy        *string
	VerifiedAt        *time.Time
	VerificationNotes *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IssueAssignment is one append-only routing record in an issue's chain of
// custody (admin→area, area→department, department→contractor).
type IssueAssignment struct {
	ID           string
	IssueID      string
	AssignedBy   string
	AssigneeType string // area | department | contractor
	AssigneeID   string
	Status       workflow.AssignmentStatus
	Notes        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ── Actors and organizational reference data ─────────────────────────────────

// Profile is an actor account provisioned on signup.
type Profile struct {
	ID           string
	FullName     string
	Email        string
	Role         string
	AreaID       *string
	DepartmentID *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Area is a geographic administrative area.
type Area struct {
	ID        string
	Name      string
	Region    *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Department is a public-works department, optionally scoped to an area.
type Department struct {
	ID        string
	AreaID    *string
	Name      string
	Category  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MunicipalOfficial links a profile to an official title within a department.
type MunicipalOfficial struct {
	ID           string
	ProfileID    string
	DepartmentID *string
	Title        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ── Ancillary entities (mechanical persistence only) ─────────────────────────

// CommunityPost is a public discussion post, optionally attached to an issue.
type CommunityPost struct {
	ID        string
	AuthorID  string
	IssueID   *string
	Title     string
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Feedback is citizen feedback on a resolved issue.
type Feedback struct {
	ID        string
	IssueID   string
	AuthorID  string
	Rating    int
	Comments  *string
	CreatedAt time.Time
}

// IssueVote is one citizen's vote on an issue. Unique per (issue, voter).
type IssueVote struct {
	ID        string
	IssueID   string
	VoterID   string
	CreatedAt time.Time
}

// Notification is an in-app notification row written alongside the JetStream
// publish; delivery transport is a downstream concern.
type Notification struct {
	ID           string
	RecipientID  string
	EventType    string
	ResourceType *string
	ResourceID   *string
	Message      string
	IsRead       bool
	CreatedAt    time.Time
}
