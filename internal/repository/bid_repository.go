package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/civicgrid/be-civic-works/internal/apperr"
	"github.com/civicgrid/be-civic-works/internal/database"
	"github.com/civicgrid/be-civic-works/internal/workflow"
)

const bidColumns = `id, tender_id, bidder_id, amount, proposal_notes,
	       status, submitted_at, created_at, updated_at`

// uniqueViolation is the Postgres error code for unique constraint breaches.
const uniqueViolation = "23505"

// BidRepository handles bid data operations.
type BidRepository struct {
	db *database.DB
}

// NewBidRepository creates a new bid repository.
func NewBidRepository(db *database.DB) *BidRepository {
	return &BidRepository{db: db}
}

// Create inserts a submitted bid. The (tender, bidder) unique constraint
// surfaces as a conflict error.
func (r *BidRepository) Create(ctx context.Context, bid *Bid) error {
	query := `
		INSERT INTO bids (tender_id, bidder_id, amount, proposal_notes, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5::bid_status, NOW())
		RETURNING id, submitted_at, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		bid.TenderID,
		bid.BidderID,
		bid.Amount,
		bid.ProposalNotes,
		bid.Status,
	).Scan(&bid.ID, &bid.SubmittedAt, &bid.CreatedAt, &bid.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperr.Conflict(fmt.Sprintf("bidder %s already has a bid on tender %s", bid.BidderID, bid.TenderID))
	}
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to create bid")
	}
	return nil
}

// GetByID retrieves a bid by ID.
func (r *BidRepository) GetByID(ctx context.Context, id string) (*Bid, error) {
	query := fmt.Sprintf(`SELECT %s FROM bids WHERE id = $1`, bidColumns)

	bid, err := scanBid(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, apperr.NotFound("bid", id)
	}
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to get bid")
	}
	return bid, nil
}

// GetByIDTx retrieves a bid inside an open transaction. The acceptance path
// reads the pre-image here after the tender row lock is held.
func (r *BidRepository) GetByIDTx(ctx context.Context, tx pgx.Tx, id string) (*Bid, error) {
	query := fmt.Sprintf(`SELECT %s FROM bids WHERE id = $1`, bidColumns)

	bid, err := scanBid(tx.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, apperr.NotFound("bid", id)
	}
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to get bid")
	}
	return bid, nil
}

// ListByTender returns all bids on a tender ordered by submission time.
func (r *BidRepository) ListByTender(ctx context.Context, tenderID string) ([]*Bid, error) {
	query := fmt.Sprintf(`SELECT %s FROM bids WHERE tender_id = $1 ORDER BY submitted_at ASC`, bidColumns)

	rows, err := r.db.Query(ctx, query, tenderID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to list bids")
	}
	defer rows.Close()

	bids := make([]*Bid, 0)
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to scan bid")
		}
		bids = append(bids, bid)
	}
	return bids, nil
}

// UpdateStatusTx moves a bid's status inside a transaction, guarded on the
// expected prior status.
func (r *BidRepository) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id string, from, to workflow.BidStatus) error {
	query := `
		UPDATE bids
		SET status     = $3::bid_status,
		    updated_at = NOW()
		WHERE id = $1 AND status = $2::bid_status
		RETURNING id
	`

	var returnedID string
	err := tx.QueryRow(ctx, query, id, from, to).Scan(&returnedID)
	if err == pgx.ErrNoRows {
		return apperr.Conflict(fmt.Sprintf("bid %s is no longer in status '%s'", id, from))
	}
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to update bid status")
	}
	return nil
}

// Withdraw lets a bidder withdraw their own submitted bid.
func (r *BidRepository) Withdraw(ctx context.Context, id, bidderID string) error {
	query := `
		UPDATE bids
		SET status     = 'withdrawn'::bid_status,
		    updated_at = NOW()
		WHERE id = $1 AND bidder_id = $2
		  AND status IN ('draft', 'submitted', 'under_review')
		RETURNING id
	`

	var returnedID string
	err := r.db.QueryRow(ctx, query, id, bidderID).Scan(&returnedID)
	if err == pgx.ErrNoRows {
		return apperr.Conflict(fmt.Sprintf("bid %s cannot be withdrawn", id))
	}
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to withdraw bid")
	}
	return nil
}

// RejectSubmittedSiblingsTx forces every submitted sibling bid on the tender
// to rejected, sparing the accepted one. Part of the acceptance cascade.
func (r *BidRepository) RejectSubmittedSiblingsTx(ctx context.Context, tx pgx.Tx, tenderID, acceptedBidID string) (int64, error) {
	query := `
		UPDATE bids
		SET status     = 'rejected'::bid_status,
		    updated_at = NOW()
		WHERE tender_id = $1
		  AND id <> $2
		  AND status = 'submitted'::bid_status
	`

	tag, err := tx.Exec(ctx, query, tenderID, acceptedBidID)
	if err != nil {
		return 0, apperr.Wrap(err, apperr.CodeInternal, "failed to reject sibling bids")
	}
	return tag.RowsAffected(), nil
}

func scanBid(row rowScanner) (*Bid, error) {
	bid := &Bid{}
	err := row.Scan(
		&bid.ID,
		&bid.TenderID,
		&bid.BidderID,
		&bid.Amount,
		&bid.ProposalNotes,
		&bid.Status,
		&bid.SubmittedAt,
		&bid.CreatedAt,
		&bid.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return bid, nil
}
