package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/civicgrid/be-civic-works/internal/apperr"
	"github.com/civicgrid/be-civic-works/internal/database"
	"github.com/civicgrid/be-civic-works/internal/workflow"
)

const workProgressColumns = `id, tender_id, contractor_id, progress_type, description,
	       attachment_urls, status,
	       verified_by, verified_at, verification_notes,
	       created_at, updated_at`

// WorkProgressRepository handles work progress report data operations.
type WorkProgressRepository struct {
	db *database.DB
}

// NewWorkProgressRepository creates a new work progress repository.
func NewWorkProgressRepository(db *database.DB) *WorkProgressRepository {
	return &WorkProgressRepository{db: db}
}

// Create inserts a submitted work progress report.
func (r *WorkProgressRepository) Create(ctx context.Context, wp *WorkProgress) error {
	query := `
		INSERT INTO work_progress (tender_id, contractor_id, progress_type,
		                           description, attachment_urls, status)
		VALUES ($1, $2, $3::progress_type, $4, $5, $6::progress_status)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		wp.TenderID,
		wp.ContractorID,
		wp.ProgressType,
		wp.Description,
		wp.AttachmentURLs,
		wp.Status,
	).Scan(&wp.ID, &wp.CreatedAt, &wp.UpdatedAt)

	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to create work progress report")
	}
	return nil
}

// GetByID retrieves a work progress report by ID.
func (r *WorkProgressRepository) GetByID(ctx context.Context, id string) (*WorkProgress, error) {
	query := fmt.Sprintf(`SELECT %s FROM work_progress WHERE id = $1`, workProgressColumns)

	wp, err := scanWorkProgress(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, apperr.NotFound("work_progress", id)
	}
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to get work progress report")
	}
	return wp, nil
}

// GetByIDTx retrieves a work progress report inside an open transaction.
func (r *WorkProgressRepository) GetByIDTx(ctx context.Context, tx pgx.Tx, id string) (*WorkProgress, error) {
	query := fmt.Sprintf(`SELECT %s FROM work_progress WHERE id = $1`, workProgressColumns)

	wp, err := scanWorkProgress(tx.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, apperr.NotFound("work_progress", id)
	}
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to get work progress report")
	}
	return wp, nil
}

// ListByTender returns all progress reports for a tender oldest-first.
func (r *WorkProgressRepository) ListByTender(ctx context.Context, tenderID string) ([]*WorkProgress, error) {
	query := fmt.Sprintf(`SELECT %s FROM work_progress WHERE tender_id = $1 ORDER BY created_at ASC`, workProgressColumns)

	rows, err := r.db.Query(ctx, query, tenderID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to list work progress reports")
	}
	defer rows.Close()

	reports := make([]*WorkProgress, 0)
	for rows.Next() {
		wp, err := scanWorkProgress(rows)
		if err != nil {
			return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to scan work progress report")
		}
		reports = append(reports, wp)
	}
	return reports, nil
}

// ApproveTx stamps a report approved with verifier identity and notes, inside
// the triggering transaction. Guarded on the expected prior status.
func (r *WorkProgressRepository) ApproveTx(ctx context.Context, tx pgx.Tx, id string, from workflow.ProgressStatus, verifiedBy string, notes *string) error {
	query := `
		UPDATE work_progress
		SET status             = 'approved'::progress_status,
		    verified_by        = $3,
		    verified_at        = NOW(),
		    verification_notes = $4,
		    updated_at         = NOW()
		WHERE id = $1 AND status = $2::progress_status
		RETURNING id
	`

	var returnedID string
	err := tx.QueryRow(ctx, query, id, from, verifiedBy, notes).Scan(&returnedID)
	if err == pgx.ErrNoRows {
		return apperr.Conflict(fmt.Sprintf("work progress %s is no longer in status '%s'", id, from))
	}
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to approve work progress report")
	}
	return nil
}

// Reject stamps a report rejected with reviewer identity and notes. Rejection
// never moves the tender or issue backward; the contractor submits a new
// report instead.
func (r *WorkProgressRepository) Reject(ctx context.Context, id, reviewedBy string, notes *string) error {
	query := `
		UPDATE work_progress
		SET status             = 'rejected'::progress_status,
		    verified_by        = $2,
		    verified_at        = NOW(),
		    verification_notes = $3,
		    updated_at         = NOW()
		WHERE id = $1
		  AND status IN ('submitted', 'under_review')
		RETURNING id
	`

	var returnedID string
	err := r.db.QueryRow(ctx, query, id, reviewedBy, notes).Scan(&returnedID)
	if err == pgx.ErrNoRows {
		return apperr.Conflict(fmt.Sprintf("work progress %s is not awaiting review", id))
	}
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to reject work progress report")
	}
	return nil
}

func scanWorkProgress(row rowScanner) (*WorkProgress, error) {
	wp := &WorkProgress{}
	err := row.Scan(
		&wp.ID,
		&wp.TenderID,
		&wp.ContractorID,
		&wp.ProgressType,
		&wp.Description,
		&wp.AttachmentURLs,
		&wp.Status,
		&wp.VerifiedBy,
		&wp.VerifiedAt,
		&wp.VerificationNotes,
		&wp.CreatedAt,
		&wp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return wp, nil
}
