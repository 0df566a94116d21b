package repository

import (
	"context"
	"fmt"

	"github.com/civicgrid/be-civic-works/internal/apperr"
	"github.com/civicgrid/be-civic-works/internal/database"
)

// CommunityRepository handles the ancillary citizen-facing rows: community
// posts, feedback on resolved issues, and issue votes.
type CommunityRepository struct {
	db *database.DB
}

// NewCommunityRepository creates a new community repository.
func NewCommunityRepository(db *database.DB) *CommunityRepository {
	return &CommunityRepository{db: db}
}

// CreatePost inserts a community post.
func (r *CommunityRepository) CreatePost(ctx context.Context, p *CommunityPost) error {
	query := `
		INSERT INTO community_posts (author_id, issue_id, title, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, p.AuthorID, p.IssueID, p.Title, p.Body).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to create community post")
	}
	return nil
}

// ListPosts returns recent posts, optionally scoped to one issue.
func (r *CommunityRepository) ListPosts(ctx context.Context, issueID *string, limit int) ([]*CommunityPost, error) {
	query := `
		SELECT id, author_id, issue_id, title, body, created_at, updated_at
		FROM community_posts
		WHERE ($1::uuid IS NULL OR issue_id = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, issueID, limit)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to list community posts")
	}
	defer rows.Close()

	posts := make([]*CommunityPost, 0)
	for rows.Next() {
		p := &CommunityPost{}
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.IssueID, &p.Title, &p.Body, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to scan community post")
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// CreateFeedback inserts feedback against a resolved issue.
func (r *CommunityRepository) CreateFeedback(ctx context.Context, f *Feedback) error {
	query := `
		INSERT INTO feedback (issue_id, author_id, rating, comments)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, f.IssueID, f.AuthorID, f.Rating, f.Comments).
		Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to create feedback")
	}
	return nil
}

// AddVote records a citizen's vote on an issue. Duplicate votes are silently
// absorbed by the (issue, voter) unique constraint.
func (r *CommunityRepository) AddVote(ctx context.Context, issueID, voterID string) error {
	query := `
		INSERT INTO issue_votes (issue_id, voter_id)
		VALUES ($1, $2)
		ON CONFLICT (issue_id, voter_id) DO NOTHING
	`

	if _, err := r.db.Exec(ctx, query, issueID, voterID); err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to add issue vote")
	}
	return nil
}

// CountVotes returns the vote count for an issue.
func (r *CommunityRepository) CountVotes(ctx context.Context, issueID string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM issue_votes WHERE issue_id = $1`, issueID).Scan(&count)
	if err != nil {
		return 0, apperr.Wrap(err, apperr.CodeInternal, fmt.Sprintf("failed to count votes for issue %s", issueID))
	}
	return count, nil
}
