package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/civicgrid/be-civic-works/internal/apperr"
	"github.com/civicgrid/be-civic-works/internal/database"
	"github.com/civicgrid/be-civic-works/internal/workflow"
)

const tenderColumns = `id, department_id, source_issue, title, description,
	       estimated_amount, bid_deadline,
	       status, workflow_stage,
	       awarded_contractor, awarded_amount, awarded_at,
	       completion_date, verification_notes,
	       created_by, created_at, updated_at`

// TenderRepository handles tender data operations.
type TenderRepository struct {
	db *database.DB
}

// NewTenderRepository creates a new tender repository.
func NewTenderRepository(db *database.DB) *TenderRepository {
	return &TenderRepository{db: db}
}

const tenderInsert = `
		INSERT INTO tenders (department_id, source_issue, title, description,
		                     estimated_amount, bid_deadline,
		                     status, workflow_stage, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7::tender_status, $8::tender_stage, $9)
		RETURNING id, created_at, updated_at
	`

// Create inserts a new draft tender.
func (r *TenderRepository) Create(ctx context.Context, tender *Tender) error {
	err := r.db.QueryRow(ctx, tenderInsert,
		tender.DepartmentID,
		tender.SourceIssueID,
		tender.Title,
		tender.Description,
		tender.EstimatedAmount,
		tender.BidDeadline,
		tender.Status,
		tender.WorkflowStage,
		tender.CreatedBy,
	).Scan(&tender.ID, &tender.CreatedAt, &tender.UpdatedAt)

	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to create tender")
	}
	return nil
}

// CreateTx inserts a new draft tender inside an open transaction.
func (r *TenderRepository) CreateTx(ctx context.Context, tx pgx.Tx, tender *Tender) error {
	err := tx.QueryRow(ctx, tenderInsert,
		tender.DepartmentID,
		tender.SourceIssueID,
		tender.Title,
		tender.Description,
		tender.EstimatedAmount,
		tender.BidDeadline,
		tender.Status,
		tender.WorkflowStage,
		tender.CreatedBy,
	).Scan(&tender.ID, &tender.CreatedAt, &tender.UpdatedAt)

	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to create tender")
	}
	return nil
}

// GetByID retrieves a tender by ID.
func (r *TenderRepository) GetByID(ctx context.Context, id string) (*Tender, error) {
	query := fmt.Sprintf(`SELECT %s FROM tenders WHERE id = $1`, tenderColumns)

	tender, err := scanTender(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, apperr.NotFound("tender", id)
	}
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to get tender")
	}
	return tender, nil
}

// GetByIDForUpdate retrieves a tender inside an open transaction and takes an
// exclusive row lock on it. Every award- or completion-path cascade starts
// here so that concurrent transitions on the same tender serialize.
func (r *TenderRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*Tender, error) {
	query := fmt.Sprintf(`SELECT %s FROM tenders WHERE id = $1 FOR UPDATE`, tenderColumns)

	tender, err := scanTender(tx.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, apperr.NotFound("tender", id)
	}
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to lock tender")
	}
	return tender, nil
}

// List retrieves tenders filtered by department and/or status.
func (r *TenderRepository) List(ctx context.Context, departmentID *string, status *workflow.TenderStatus, limit, offset int) ([]*Tender, int64, error) {
	query := fmt.Sprintf(`SELECT %s FROM tenders WHERE 1=1`, tenderColumns)
	countQuery := `SELECT COUNT(*) FROM tenders WHERE 1=1`

	args := []any{}
	argCount := 1

	if departmentID != nil {
		clause := fmt.Sprintf(" AND department_id = $%d", argCount)
		query += clause
		countQuery += clause
		args = append(args, *departmentID)
		argCount++
	}
	if status != nil {
		clause := fmt.Sprintf(" AND status = $%d::tender_status", argCount)
		query += clause
		countQuery += clause
		args = append(args, *status)
		argCount++
	}

	query += " ORDER BY created_at DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1)
	queryArgs := append(args, limit, offset)

	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, apperr.Wrap(err, apperr.CodeInternal, "failed to count tenders")
	}

	rows, err := r.db.Query(ctx, query, queryArgs...)
	if err != nil {
		return nil, 0, apperr.Wrap(err, apperr.CodeInternal, "failed to list tenders")
	}
	defer rows.Close()

	tenders := make([]*Tender, 0)
	for rows.Next() {
		tender, err := scanTender(rows)
		if err != nil {
			return nil, 0, apperr.Wrap(err, apperr.CodeInternal, "failed to scan tender")
		}
		tenders = append(tenders, tender)
	}
	return tenders, total, nil
}

// Publish moves a draft tender to available so contractors can bid.
func (r *TenderRepository) Publish(ctx context.Context, id string) error {
	query := `
		UPDATE tenders
		SET status         = 'available'::tender_status,
		    workflow_stage = 'available'::tender_stage,
		    updated_at     = NOW()
		WHERE id = $1 AND status = 'draft'::tender_status
		RETURNING id
	`

	var returnedID string
	err := r.db.QueryRow(ctx, query, id).Scan(&returnedID)
	if err == pgx.ErrNoRows {
		return apperr.Conflict(fmt.Sprintf("tender %s is not a draft", id))
	}
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to publish tender")
	}
	return nil
}

// CloseBidding moves an available tender to bidding_closed.
func (r *TenderRepository) CloseBidding(ctx context.Context, id string) error {
	query := `
		UPDATE tenders
		SET status     = 'bidding_closed'::tender_status,
		    updated_at = NOW()
		WHERE id = $1 AND status = 'available'::tender_status
		RETURNING id
	`

	var returnedID string
	err := r.db.QueryRow(ctx, query, id).Scan(&returnedID)
	if err == pgx.ErrNoRows {
		return apperr.Conflict(fmt.Sprintf("tender %s is not open for bidding", id))
	}
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to close bidding")
	}
	return nil
}

// Cancel is the administrative side exit off the tender ladder. Awarded and
// completed tenders cannot be cancelled.
func (r *TenderRepository) Cancel(ctx context.Context, id string) error {
	query := `
		UPDATE tenders
		SET status     = 'cancelled'::tender_status,
		    updated_at = NOW()
		WHERE id = $1
		  AND status IN ('draft', 'available', 'bidding_closed')
		RETURNING id
	`

	var returnedID string
	err := r.db.QueryRow(ctx, query, id).Scan(&returnedID)
	if err == pgx.ErrNoRows {
		return apperr.Conflict(fmt.Sprintf("tender %s cannot be cancelled in its current status", id))
	}
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to cancel tender")
	}
	return nil
}

// ApplyPatchTx applies a workflow cascade patch (award or completion) to a
// tender inside the triggering transaction. Callers hold the row lock from
// GetByIDForUpdate, so the patch can never clobber a concurrent transition.
func (r *TenderRepository) ApplyPatchTx(ctx context.Context, tx pgx.Tx, patch *workflow.TenderPatch) error {
	query := `
		UPDATE tenders
		SET status             = $2::tender_status,
		    workflow_stage     = $3::tender_stage,
		    awarded_contractor = COALESCE($4, awarded_contractor),
		    awarded_amount     = COALESCE($5, awarded_amount),
		    awarded_at         = COALESCE($6, awarded_at),
		    completion_date    = COALESCE($7, completion_date),
		    verification_notes = COALESCE($8, verification_notes),
		    updated_at         = NOW()
		WHERE id = $1
		RETURNING id
	`

	var returnedID string
	err := tx.QueryRow(ctx, query,
		patch.TenderID,
		patch.Status,
		patch.Stage,
		patch.AwardedContractor,
		patch.AwardedAmount,
		patch.AwardedAt,
		patch.CompletionDate,
		patch.VerificationNotes,
	).Scan(&returnedID)

	if err == pgx.ErrNoRows {
		return apperr.NotFound("tender", patch.TenderID)
	}
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to apply tender patch")
	}
	return nil
}

// MirrorStageTx advances only the workflow_stage (start/milestone status
// mirrors). The WHERE guard keeps the move strictly forward in the ladder.
func (r *TenderRepository) MirrorStageTx(ctx context.Context, tx pgx.Tx, id string, fromStage, toStage workflow.TenderStage) error {
	query := `
		UPDATE tenders
		SET workflow_stage = $3::tender_stage,
		    updated_at     = NOW()
		WHERE id = $1 AND workflow_stage = $2::tender_stage
		RETURNING id
	`

	var returnedID string
	err := tx.QueryRow(ctx, query, id, fromStage, toStage).Scan(&returnedID)
	if err == pgx.ErrNoRows {
		return apperr.Conflict(fmt.Sprintf("tender %s left stage '%s' concurrently", id, fromStage))
	}
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to mirror tender stage")
	}
	return nil
}

func scanTender(row rowScanner) (*Tender, error) {
	tender := &Tender{}
	err := row.Scan(
		&tender.ID,
		&tender.DepartmentID,
		&tender.SourceIssueID,
		&tender.Title,
		&tender.Description,
		&tender.EstimatedAmount,
		&tender.BidDeadline,
		&tender.Status,
		&tender.WorkflowStage,
		&tender.AwardedContractor,
		&tender.AwardedAmount,
		&tender.AwardedAt,
		&tender.CompletionDate,
		&tender.VerificationNotes,
		&tender.CreatedBy,
		&tender.CreatedAt,
		&tender.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return tender, nil
}
