package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/civicgrid/be-civic-works/internal/apperr"
	"github.com/civicgrid/be-civic-works/internal/repository"
	"github.com/civicgrid/be-civic-works/internal/workflow"
)

// CommunityService handles community posts and feedback on resolved issues.
type CommunityService struct {
	communityRepo *repository.CommunityRepository
	issueRepo     *repository.IssueRepository
	log           zerolog.Logger
}

// NewCommunityService creates a new community service.
func NewCommunityService(
	communityRepo *repository.CommunityRepository,
	issueRepo *repository.IssueRepository,
	log zerolog.Logger,
) *CommunityService {
	return &CommunityService{
		communityRepo: communityRepo,
		issueRepo:     issueRepo,
		log:           log,
	}
}

// CreatePostRequest represents a community post submission.
type CreatePostRequest struct {
	AuthorID string  `json:"author_id"`
	IssueID  *string `json:"issue_id"`
	Title    string  `json:"title"`
	Body     string  `json:"body"`
}

// SubmitFeedbackRequest represents citizen feedback on a resolved issue.
type SubmitFeedbackRequest struct {
	IssueID  string  `json:"issue_id"`
	AuthorID string  `json:"author_id"`
	Rating   int     `json:"rating"`
	Comments *string `json:"comments"`
}

// CreatePost creates a community post, optionally attached to an issue.
func (s *CommunityService) CreatePost(ctx context.Context, req *CreatePostRequest) (*repository.CommunityPost, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperr.InvalidInput("title", "title is required")
	}
	if strings.TrimSpace(req.Body) == "" {
		return nil, apperr.InvalidInput("body", "body is required")
	}
	if req.IssueID != nil {
		if _, err := s.issueRepo.GetByID(ctx, *req.IssueID); err != nil {
			return nil, err
		}
	}

	post := &repository.CommunityPost{
		AuthorID: req.AuthorID,
		IssueID:  req.IssueID,
		Title:    strings.TrimSpace(req.Title),
		Body:     req.Body,
	}
	if err := s.communityRepo.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("post_id", post.ID).
		Str("author_id", post.AuthorID).
		Msg("Community post created")

	return post, nil
}

// ListPosts returns recent posts, optionally scoped to one issue.
func (s *CommunityService) ListPosts(ctx context.Context, issueID *string, limit int) ([]*repository.CommunityPost, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	return s.communityRepo.ListPosts(ctx, issueID, limit)
}

// SubmitFeedback records feedback on a resolved issue. Feedback on an
// unresolved issue is rejected.
func (s *CommunityService) SubmitFeedback(ctx context.Context, req *SubmitFeedbackRequest) (*repository.Feedback, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperr.InvalidInput("rating", "rating must be between 1 and 5")
	}

	issue, err := s.issueRepo.GetByID(ctx, req.IssueID)
	if err != nil {
		return nil, err
	}
	if issue.Status != workflow.IssueStatusResolved {
		return nil, apperr.Conflict("feedback is only accepted on resolved issues")
	}

	feedback := &repository.Feedback{
		IssueID:  req.IssueID,
		AuthorID: req.AuthorID,
		Rating:   req.Rating,
		Comments: req.Comments,
	}
	if err := s.communityRepo.CreateFeedback(ctx, feedback); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("feedback_id", feedback.ID).
		Str("issue_id", feedback.IssueID).
		Int("rating", feedback.Rating).
		Msg("Feedback submitted")

	return feedback, nil
}
