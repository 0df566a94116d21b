package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/civicgrid/be-civic-works/internal/apperr"
	"github.com/civicgrid/be-civic-works/internal/policy"
	"github.com/civicgrid/be-civic-works/internal/service"
	"github.com/civicgrid/be-civic-works/internal/workflow"
)

// HTTPHandler handles HTTP requests. Every mutating endpoint resolves the
// acting user from the X-Actor-ID and X-Actor-Role headers set by the edge
// gateway and checks the policy table before dispatching to a service.
type HTTPHandler struct {
	issues        *service.IssueService
	tenders       *service.TenderService
	bids          *service.BidService
	work          *service.WorkService
	community     *service.CommunityService
	directory     *service.DirectoryService
	notifications *service.NotificationService
	log           zerolog.Logger
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(
	issues *service.IssueService,
	tenders *service.TenderService,
	bids *service.BidService,
	work *service.WorkService,
	community *service.CommunityService,
	directory *service.DirectoryService,
	notifications *service.NotificationService,
	log zerolog.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		issues:        issues,
		tenders:       tenders,
		bids:          bids,
		work:          work,
		community:     community,
		directory:     directory,
		notifications: notifications,
		log:           log.With().Str("handler", "http").Logger(),
	}
}

// actor is the authenticated caller as asserted by the edge gateway.
type actor struct {
	ID   string
	Role policy.Role
}

func (h *HTTPHandler) actorFrom(r *http.Request) (actor, error) {
	a := actor{
		ID:   r.Header.Get("X-Actor-ID"),
		Role: policy.Role(r.Header.Get("X-Actor-Role")),
	}
	if a.ID == "" || !policy.ValidRole(a.Role) {
		return actor{}, apperr.New(apperr.CodeUnauthorized, "missing or invalid actor headers")
	}
	return a, nil
}

// authorize resolves the actor and checks the policy table in one step.
func (h *HTTPHandler) authorize(w http.ResponseWriter, r *http.Request, resource policy.Resource, action policy.Action) (actor, bool) {
	a, err := h.actorFrom(r)
	if err != nil {
		h.writeError(w, err)
		return actor{}, false
	}
	if !policy.Allowed(a.Role, resource, action) {
		h.writeError(w, apperr.New(apperr.CodeUnauthorized, "role is not permitted to perform this action"))
		return actor{}, false
	}
	return a, true
}

func (h *HTTPHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	h.writeJSON(w, apperr.HTTPStatus(err), map[string]string{
		"error": err.Error(),
		"code":  string(apperr.CodeOf(err)),
	})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.InvalidInput("body", "invalid JSON request body")
	}
	return nil
}

func pagination(r *http.Request) (page, pageSize int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 50
	}
	return page, pageSize
}

func optQuery(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

// ── Issues ───────────────────────────────────────────────────────────────────

// ReportIssue handles issue creation by a citizen.
func (h *HTTPHandler) ReportIssue(w http.ResponseWriter, r *http.Request) {
	a, ok := h.authorize(w, r, policy.ResourceIssue, policy.ActionCreate)
	if !ok {
		return
	}

	var req service.ReportIssueRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	req.ReporterID = a.ID

	issue, err := h.issues.ReportIssue(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, issue)
}

// GetIssue handles single issue lookups.
func (h *HTTPHandler) GetIssue(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, policy.ResourceIssue, policy.ActionRead); !ok {
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		h.writeError(w, apperr.InvalidInput("id", "issue id is required"))
		return
	}

	issue, err := h.issues.GetIssue(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, issue)
}

// ListIssues handles filtered issue listings.
func (h *HTTPHandler) ListIssues(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, policy.ResourceIssue, policy.ActionRead); !ok {
		return
	}

	var status *workflow.IssueStatus
	if v := r.URL.Query().Get("status"); v != "" {
		s := workflow.IssueStatus(v)
		if !workflow.ValidIssueStatus(s) {
			h.writeError(w, apperr.InvalidInput("status", "unknown issue status"))
			return
		}
		status = &s
	}
	var stage *workflow.IssueStage
	if v := r.URL.Query().Get("stage"); v != "" {
		s := workflow.IssueStage(v)
		stage = &s
	}
	page, pageSize := pagination(r)

	issues, total, err := h.issues.ListIssues(r.Context(), status, stage, optQuery(r, "area_id"), page, pageSize)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"issues":    issues,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// RouteIssueToArea handles admin-to-area routing decisions.
func (h *HTTPHandler) RouteIssueToArea(w http.ResponseWriter, r *http.Request) {
	a, ok := h.authorize(w, r, policy.ResourceIssue, policy.ActionRoute)
	if !ok {
		return
	}

	var req service.RouteIssueRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	req.RoutedBy = a.ID

	if err := h.issues.RouteToArea(r.Context(), &req); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "routed"})
}

// RouteIssueToDepartment handles area-to-department routing decisions.
func (h *HTTPHandler) RouteIssueToDepartment(w http.ResponseWriter, r *http.Request) {
	a, ok := h.authorize(w, r, policy.ResourceIssue, policy.ActionRoute)
	if !ok {
		return
	}

	var req service.RouteIssueRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	req.RoutedBy = a.ID

	if err := h.issues.RouteToDepartment(r.Context(), &req); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "routed"})
}

// AcknowledgeIssue pulls a pending issue into an area's review queue.
func (h *HTTPHandler) AcknowledgeIssue(w http.ResponseWriter, r *http.Request) {
	a, ok := h.authorize(w, r, policy.ResourceIssue, policy.ActionUpdate)
	if !ok {
		return
	}

	var req struct {
		IssueID string `json:"issue_id"`
		AreaID  string `json:"area_id"`
	}
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.issues.AcknowledgeIssue(r.Context(), req.IssueID, req.AreaID, a.ID); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "acknowledged"})
}

// RejectIssue handles the administrative rejection side exit.
func (h *HTTPHandler) RejectIssue(w http.ResponseWriter, r *http.Request) {
	a, ok := h.authorize(w, r, policy.ResourceIssue, policy.ActionReject)
	if !ok {
		return
	}

	var req struct {
		IssueID string  `json:"issue_id"`
		Reason  *string `json:"reason"`
	}
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.issues.RejectIssue(r.Context(), req.IssueID, a.ID, req.Reason); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

// CloseIssue handles the administrative close side exit.
func (h *HTTPHandler) CloseIssue(w http.ResponseWriter, r *http.Request) {
	a, ok := h.authorize(w, r, policy.ResourceIssue, policy.ActionUpdate)
	if !ok {
		return
	}

	var req struct {
		IssueID string  `json:"issue_id"`
		Notes   *string `json:"notes"`
	}
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.issues.CloseIssue(r.Context(), req.IssueID, a.ID, req.Notes); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

// VoteIssue records one citizen's vote on an issue.
func (h *HTTPHandler) VoteIssue(w http.ResponseWriter, r *http.Request) {
	a, ok := h.authorize(w, r, policy.ResourceIssue, policy.ActionVote)
	if !ok {
		return
	}

	var req struct {
		IssueID string `json:"issue_id"`
	}
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	count, err := h.issues.VoteIssue(r.Context(), req.IssueID, a.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"issue_id": req.IssueID, "votes": count})
}

// GetAssignmentTrail returns the full chain of custody for an issue.
func (h *HTTPHandler) GetAssignmentTrail(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, policy.ResourceAssignment, policy.ActionRead); !ok {
		return
	}

	issueID := r.URL.Query().Get("issue_id")
	if issueID == "" {
		h.writeError(w, apperr.InvalidInput("issue_id", "issue id is required"))
		return
	}

	trail, err := h.issues.GetAssignmentTrail(r.Context(), issueID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"assignments": trail})
}

// ── Tenders ──────────────────────────────────────────────────────────────────

// CreateTender handles tender creation by a department admin.
func (h *HTTPHandler) CreateTender(w http.ResponseWriter, r *http.Request) {
	a, ok := h.authorize(w, r, policy.ResourceTender, policy.ActionCreate)
	if !ok {
		return
	}

	var req service.CreateTenderRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	req.CreatedBy = a.ID

	tender, err := h.tenders.CreateTender(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, tender)
}

// GetTender handles single tender lookups.
func (h *HTTPHandler) GetTender(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, policy.ResourceTender, policy.ActionRead); !ok {
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		h.writeError(w, apperr.InvalidInput("id", "tender id is required"))
		return
	}

	tender, err := h.tenders.GetTender(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tender)
}

// ListTenders handles filtered tender listings.
func (h *HTTPHandler) ListTenders(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, policy.ResourceTender, policy.ActionRead); !ok {
		return
	}

	var status *workflow.TenderStatus
	if v := r.URL.Query().Get("status"); v != "" {
		s := workflow.TenderStatus(v)
		status = &s
	}
	page, pageSize := pagination(r)

	tenders, total, err := h.tenders.ListTenders(r.Context(), optQuery(r, "department_id"), status, page, pageSize)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"tenders":   tenders,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// PublishTender opens a draft tender for bidding.
func (h *HTTPHandler) PublishTender(w http.ResponseWriter, r *http.Request) {
	a, ok := h.authorize(w, r, policy.ResourceTender, policy.ActionUpdate)
	if !ok {
		return
	}

	var req struct {
		TenderID string `json:"tender_id"`
	}
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.tenders.PublishTender(r.Context(), req.TenderID, a.ID); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "published"})
}

// CloseBidding moves an available tender to bidding_closed.
func (h *HTTPHandler) CloseBidding(w http.ResponseWriter, r *http.Request) {
	a, ok := h.authorize(w, r, policy.ResourceTender, policy.ActionUpdate)
	if !ok {
		return
	}

	var req struct {
		TenderID string `json:"tender_id"`
	}
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.tenders.CloseBidding(r.Context(), req.TenderID, a.ID); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "bidding_closed"})
}

// CancelTender handles the administrative cancellation side exit.
func (h *HTTPHandler) CancelTender(w http.ResponseWriter, r *http.Request) {
	a, ok := h.authorize(w, r, policy.ResourceTender, policy.ActionCancel)
	if !ok {
		return
	}

	var req struct {
		TenderID string `json:"tender_id"`
	}
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.tenders.CancelTender(r.Context(), req.TenderID, a.ID); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// ── Bids ─────────────────────────────────────────────────────────────────────

// SubmitBid handles bid submission by a contractor.
func (h *HTTPHandler) SubmitBid(w http.ResponseWriter, r *http.Request) {
	a, ok := h.authorize(w, r, policy.ResourceBid, policy.ActionCreate)
	if !ok {
		return
	}

	var req service.SubmitBidRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	req.BidderID = a.ID

	bid, err := h.bids.SubmitBid(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, bid)
}

// ListBids returns all bids on a tender.
func (h *HTTPHandler) ListBids(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, policy.ResourceBid, policy.ActionRead); !ok {
		return
	}

	tenderID := r.URL.Query().Get("tender_id")
	if tenderID == "" {
		h.writeError(w, apperr.InvalidInput("tender_id", "tender id is required"))
		return
	}

	bids, err := h.bids.ListBids(r.Context(), tenderID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"bids": bids})
}

// AcceptBid triggers the award cascade.
func (h *HTTPHandler) AcceptBid(w http.ResponseWriter, r *http.Request) {
	a, ok := h.authorize(w, r, policy.ResourceBid, policy.ActionAccept)
	if !ok {
		return
	}

	var req service.AcceptBidRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	req.AcceptedBy = a.ID

	bid, err := h.bids.AcceptBid(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, bid)
}

// WithdrawBid lets a bidder withdraw their own pending bid.
func (h *HTTPHandler) WithdrawBid(w http.ResponseWriter, r *http.Request) {
	a, ok := h.authorize(w, r, policy.ResourceBid, policy.ActionWithdraw)
	if !ok {
		return
	}

	var req struct {
		BidID string `json:"bid_id"`
	}
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.bids.WithdrawBid(r.Context(), req.BidID, a.ID); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "withdrawn"})
}

// ── Work progress ────────────────────────────────────────────────────────────

// SubmitProgress handles progress reports by the awarded contractor.
func (h *HTTPHandler) SubmitProgress(w http.ResponseWriter, r *http.Request) {
	a, ok := h.authorize(w, r, policy.ResourceWorkProgress, policy.ActionCreate)
	if !ok {
		return
	}

	var req service.SubmitProgressRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	req.ContractorID = a.ID

	wp, err := h.work.SubmitProgress(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, wp)
}

// ListProgress returns all progress reports for a tender.
func (h *HTTPHandler) ListProgress(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, policy.ResourceWorkProgress, policy.ActionRead); !ok {
		return
	}

	tenderID := r.URL.Query().Get("tender_id")
	if tenderID == "" {
		h.writeError(w, apperr.InvalidInput("tender_id", "tender id is required"))
		return
	}

	reports, err := h.work.ListProgress(r.Context(), tenderID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"work_progress": reports})
}

// ApproveProgress triggers the verification cascade for completion reports.
func (h *HTTPHandler) ApproveProgress(w http.ResponseWriter, r *http.Request) {
	a, ok := h.authorize(w, r, policy.ResourceWorkProgress, policy.ActionApprove)
	if !ok {
		return
	}

	var req service.ReviewProgressRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	req.ReviewedBy = a.ID

	wp, err := h.work.ApproveProgress(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, wp)
}

// RejectProgress rejects a progress report.
func (h *HTTPHandler) RejectProgress(w http.ResponseWriter, r *http.Request) {
	a, ok := h.authorize(w, r, policy.ResourceWorkProgress, policy.ActionReject)
	if !ok {
		return
	}

	var req service.ReviewProgressRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	req.ReviewedBy = a.ID

	if err := h.work.RejectProgress(r.Context(), &req); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

// ── Community ────────────────────────────────────────────────────────────────

// CreatePost handles community post creation.
func (h *HTTPHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	a, ok := h.authorize(w, r, policy.ResourceCommunityPost, policy.ActionCreate)
	if !ok {
		return
	}

	var req service.CreatePostRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	req.AuthorID = a.ID

	post, err := h.community.CreatePost(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, post)
}

// ListPosts returns recent community posts.
func (h *HTTPHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, policy.ResourceCommunityPost, policy.ActionRead); !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	posts, err := h.community.ListPosts(r.Context(), optQuery(r, "issue_id"), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

// SubmitFeedback records feedback on a resolved issue.
func (h *HTTPHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	a, ok := h.authorize(w, r, policy.ResourceFeedback, policy.ActionCreate)
	if !ok {
		return
	}

	var req service.SubmitFeedbackRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	req.AuthorID = a.ID

	feedback, err := h.community.SubmitFeedback(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, feedback)
}

// ── Directory ────────────────────────────────────────────────────────────────

// RegisterProfile provisions an actor account. Registration is open; role
// escalation is guarded upstream.
func (h *HTTPHandler) RegisterProfile(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterProfileRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	profile, err := h.directory.RegisterProfile(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, profile)
}

// GetProfile retrieves a profile by ID.
func (h *HTTPHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	if _, err := h.actorFrom(r); err != nil {
		h.writeError(w, err)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		h.writeError(w, apperr.InvalidInput("id", "profile id is required"))
		return
	}

	profile, err := h.directory.GetProfile(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
}

// ListDepartments lists departments within an area.
func (h *HTTPHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	if _, err := h.actorFrom(r); err != nil {
		h.writeError(w, err)
		return
	}

	areaID := r.URL.Query().Get("area_id")
	if areaID == "" {
		h.writeError(w, apperr.InvalidInput("area_id", "area id is required"))
		return
	}

	departments, err := h.directory.ListDepartments(r.Context(), areaID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"departments": departments})
}

// ListOfficials lists the municipal officials of a department.
func (h *HTTPHandler) ListOfficials(w http.ResponseWriter, r *http.Request) {
	if _, err := h.actorFrom(r); err != nil {
		h.writeError(w, err)
		return
	}

	departmentID := r.URL.Query().Get("department_id")
	if departmentID == "" {
		h.writeError(w, apperr.InvalidInput("department_id", "department id is required"))
		return
	}

	officials, err := h.directory.ListOfficials(r.Context(), departmentID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"officials": officials})
}

// ── Notifications ────────────────────────────────────────────────────────────

// ListNotifications returns the caller's notification inbox.
func (h *HTTPHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	a, ok := h.authorize(w, r, policy.ResourceNotification, policy.ActionRead)
	if !ok {
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	notifications, err := h.notifications.ListNotifications(r.Context(), a.ID, unreadOnly, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}

// MarkNotificationRead flags one of the caller's notifications as read.
func (h *HTTPHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	a, ok := h.authorize(w, r, policy.ResourceNotification, policy.ActionRead)
	if !ok {
		return
	}

	var req struct {
		NotificationID string `json:"notification_id"`
	}
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.notifications.MarkRead(r.Context(), req.NotificationID, a.ID); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}
