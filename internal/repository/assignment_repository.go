package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/civicgrid/be-civic-works/internal/apperr"
	"github.com/civicgrid/be-civic-works/internal/database"
)

// AssignmentRepository appends and reads the append-only chain of custody for
// issue routing. Rows are never rewritten once created; only status moves
// active -> completed/reassigned/cancelled.
type AssignmentRepository struct {
	db *database.DB
}

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(db *database.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// AppendTx inserts one routing record inside the routing transaction.
func (r *AssignmentRepository) AppendTx(ctx context.Context, tx pgx.Tx, a *IssueAssignment) error {
	query := `
		INSERT INTO issue_assignments (issue_id, assigned_by, assignee_type, assignee_id, status, notes)
		VALUES ($1, $2, $3, $4, $5::assignment_status, $6)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		a.IssueID,
		a.AssignedBy,
		a.AssigneeType,
		a.AssigneeID,
		a.Status,
		a.Notes,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)

	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to append issue assignment")
	}
	return nil
}

// SupersedeActiveTx marks any still-active assignments on the issue as
// reassigned before a new one is appended.
func (r *AssignmentRepository) SupersedeActiveTx(ctx context.Context, tx pgx.Tx, issueID string) error {
	query := `
		UPDATE issue_assignments
		SET status     = 'reassigned'::assignment_status,
		    updated_at = NOW()
		WHERE issue_id = $1
		  AND status = 'active'::assignment_status
	`

	if _, err := tx.Exec(ctx, query, issueID); err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to supersede active assignments")
	}
	return nil
}

// CompleteActiveTx closes out the issue's active assignment once the work it
// carried is done. No-op when nothing is active.
func (r *AssignmentRepository) CompleteActiveTx(ctx context.Context, tx pgx.Tx, issueID string) error {
	query := `
		UPDATE issue_assignments
		SET status     = 'completed'::assignment_status,
		    updated_at = NOW()
		WHERE issue_id = $1
		  AND status = 'active'::assignment_status
	`

	if _, err := tx.Exec(ctx, query, issueID); err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to complete active assignments")
	}
	return nil
}

// ListByIssue returns the full routing trail for an issue oldest-first.
func (r *AssignmentRepository) ListByIssue(ctx context.Context, issueID string) ([]*IssueAssignment, error) {
	query := `
		SELECT id, issue_id, assigned_by, assignee_type, assignee_id, status, notes,
		       created_at, updated_at
		FROM issue_assignments
		WHERE issue_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query, issueID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to list issue assignments")
	}
	defer rows.Close()

	assignments := make([]*IssueAssignment, 0)
	for rows.Next() {
		a := &IssueAssignment{}
		err := rows.Scan(
			&a.ID,
			&a.IssueID,
			&a.AssignedBy,
			&a.AssigneeType,
			&a.AssigneeID,
			&a.Status,
			&a.Notes,
			&a.CreatedAt,
			&a.UpdatedAt,
		)
		if err != nil {
			return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to scan issue assignment")
		}
		assignments = append(assignments, a)
	}
	return assignments, nil
}
