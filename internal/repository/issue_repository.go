package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/civicgrid/be-civic-works/internal/apperr"
	"github.com/civicgrid/be-civic-works/internal/database"
	"github.com/civicgrid/be-civic-works/internal/workflow"
)

const issueColumns = `id, reporter_id, title, description, category, location,
	       status, workflow_stage,
	       assigned_area, assigned_department, current_assignee,
	       resolved_at, final_resolution_notes,
	       created_at, updated_at`

// IssueRepository handles issue data operations.
type IssueRepository struct {
	db *database.DB
}

// NewIssueRepository creates a new issue repository.
func NewIssueRepository(db *database.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

// Create inserts a new issue in the reported stage.
func (r *IssueRepository) Create(ctx context.Context, issue *Issue) error {
	query := `
		INSERT INTO issues (reporter_id, title, description, category, location,
		                    status, workflow_stage)
		VALUES ($1, $2, $3, $4, $5, $6::issue_status, $7::issue_stage)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		issue.ReporterID,
		issue.Title,
		issue.Description,
		issue.Category,
		issue.Location,
		issue.Status,
		issue.WorkflowStage,
	).Scan(&issue.ID, &issue.CreatedAt, &issue.UpdatedAt)

	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to create issue")
	}
	return nil
}

// GetByID retrieves an issue by ID.
func (r *IssueRepository) GetByID(ctx context.Context, id string) (*Issue, error) {
	query := fmt.Sprintf(`SELECT %s FROM issues WHERE id = $1`, issueColumns)

	issue, err := scanIssue(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, apperr.NotFound("issue", id)
	}
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to get issue")
	}
	return issue, nil
}

// GetByIDTx retrieves an issue inside an open transaction, so cascade
// pre-images observe the transaction's snapshot.
func (r *IssueRepository) GetByIDTx(ctx context.Context, tx pgx.Tx, id string) (*Issue, error) {
	query := fmt.Sprintf(`SELECT %s FROM issues WHERE id = $1`, issueColumns)

	issue, err := scanIssue(tx.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, apperr.NotFound("issue", id)
	}
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to get issue")
	}
	return issue, nil
}

// List retrieves issues with optional status/stage/area filters.
func (r *IssueRepository) List(ctx context.Context, status *workflow.IssueStatus, stage *workflow.IssueStage, areaID *string, limit, offset int) ([]*Issue, int64, error) {
	query := fmt.Sprintf(`SELECT %s FROM issues WHERE 1=1`, issueColumns)
	countQuery := `SELECT COUNT(*) FROM issues WHERE 1=1`

	args := []any{}
	argCount := 1

	if status != nil {
		clause := fmt.Sprintf(" AND status = $%d::issue_status", argCount)
		query += clause
		countQuery += clause
		args = append(args, *status)
		argCount++
	}
	if stage != nil {
		clause := fmt.Sprintf(" AND workflow_stage = $%d::issue_stage", argCount)
		query += clause
		countQuery += clause
		args = append(args, *stage)
		argCount++
	}
	if areaID != nil {
		clause := fmt.Sprintf(" AND assigned_area = $%d", argCount)
		query += clause
		countQuery += clause
		args = append(args, *areaID)
		argCount++
	}

	query += " ORDER BY created_at DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1)
	queryArgs := append(args, limit, offset)

	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, apperr.Wrap(err, apperr.CodeInternal, "failed to count issues")
	}

	rows, err := r.db.Query(ctx, query, queryArgs...)
	if err != nil {
		return nil, 0, apperr.Wrap(err, apperr.CodeInternal, "failed to list issues")
	}
	defer rows.Close()

	issues := make([]*Issue, 0)
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, 0, apperr.Wrap(err, apperr.CodeInternal, "failed to scan issue")
		}
		issues = append(issues, issue)
	}
	return issues, total, nil
}

// AdvanceRouting records a routing decision: new stage plus the assignment
// reference it carries. The stage write is guarded with a WHERE clause on the
// expected prior stage so concurrent routing cannot double-apply.
func (r *IssueRepository) AdvanceRouting(ctx context.Context, tx pgx.Tx, id string, fromStage, toStage workflow.IssueStage, status workflow.IssueStatus, areaID, departmentID, assignee *string) error {
	query := `
		UPDATE issues
		SET workflow_stage      = $3::issue_stage,
		    status              = $4::issue_status,
		    assigned_area       = COALESCE($5, assigned_area),
		    assigned_department = COALESCE($6, assigned_department),
		    current_assignee    = COALESCE($7, current_assignee),
		    updated_at          = NOW()
		WHERE id = $1 AND workflow_stage = $2::issue_stage
		RETURNING id
	`

	var returnedID string
	err := tx.QueryRow(ctx, query, id, fromStage, toStage, status, areaID, departmentID, assignee).Scan(&returnedID)
	if err == pgx.ErrNoRows {
		return apperr.Conflict(fmt.Sprintf("issue %s left stage '%s' concurrently", id, fromStage))
	}
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to advance issue routing")
	}
	return nil
}

// ApplyPatchTx applies a workflow cascade patch to an issue inside the
// triggering transaction.
func (r *IssueRepository) ApplyPatchTx(ctx context.Context, tx pgx.Tx, patch *workflow.IssuePatch) error {
	query := `
		UPDATE issues
		SET status                 = $2::issue_status,
		    workflow_stage         = $3::issue_stage,
		    current_assignee       = COALESCE($4, current_assignee),
		    resolved_at            = COALESCE($5, resolved_at),
		    final_resolution_notes = COALESCE($6, final_resolution_notes),
		    updated_at             = NOW()
		WHERE id = $1
		RETURNING id
	`

	var returnedID string
	err := tx.QueryRow(ctx, query,
		patch.IssueID,
		patch.Status,
		patch.Stage,
		patch.CurrentAssignee,
		patch.ResolvedAt,
		patch.FinalResolutionNotes,
	).Scan(&returnedID)

	if err == pgx.ErrNoRows {
		return apperr.NotFound("issue", patch.IssueID)
	}
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to apply issue patch")
	}
	return nil
}

// Terminate moves an issue to a terminal side-exit status (rejected or
// closed) with resolution notes. The stage ladder is left where it was.
func (r *IssueRepository) Terminate(ctx context.Context, id string, status workflow.IssueStatus, notes *string) error {
	query := `
		UPDATE issues
		SET status                 = $2::issue_status,
		    final_resolution_notes = COALESCE($3, final_resolution_notes),
		    updated_at             = NOW()
		WHERE id = $1
		  AND status NOT IN ('resolved', 'closed', 'rejected')
		RETURNING id
	`

	var returnedID string
	err := r.db.QueryRow(ctx, query, id, status, notes).Scan(&returnedID)
	if err == pgx.ErrNoRows {
		return apperr.Conflict(fmt.Sprintf("issue %s not found or already terminal", id))
	}
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to terminate issue")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIssue(row rowScanner) (*Issue, error) {
	issue := &Issue{}
	err := row.Scan(
		&issue.ID,
		&issue.ReporterID,
		&issue.Title,
		&issue.Description,
		&issue.Category,
		&issue.Location,
		&issue.Status,
		&issue.WorkflowStage,
		&issue.AssignedArea,
		&issue.AssignedDepartment,
		&issue.CurrentAssignee,
		&issue.ResolvedAt,
		&issue.FinalResolutionNotes,
		&issue.CreatedAt,
		&issue.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return issue, nil
}

// Acknowledge marks a pending issue acknowledged and moves it into area
// review, stamping the reviewing area.
func (r *IssueRepository) Acknowledge(ctx context.Context, id, areaID string) error {
	query := `
		UPDATE issues
		SET status         = 'acknowledged'::issue_status,
		    workflow_stage = 'area_review'::issue_stage,
		    assigned_area  = $2,
		    updated_at     = NOW()
		WHERE id = $1
		  AND workflow_stage = 'reported'::issue_stage
		  AND status = 'pending'::issue_status
		RETURNING id
	`

	var returnedID string
	err := r.db.QueryRow(ctx, query, id, areaID).Scan(&returnedID)
	if err == pgx.ErrNoRows {
		return apperr.Conflict(fmt.Sprintf("issue %s is not awaiting acknowledgement", id))
	}
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to acknowledge issue")
	}
	return nil
}
