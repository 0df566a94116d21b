package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Authorization is checked before any service is touched, so a zero-value
// handler is enough to exercise the denial paths.
func denyTestHandler() *HTTPHandler {
	return NewHTTPHandler(nil, nil, nil, nil, nil, nil, nil, zerolog.Nop())
}

func actorRequest(method, target, actorID, role string, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if actorID != "" {
		req.Header.Set("X-Actor-ID", actorID)
	}
	if role != "" {
		req.Header.Set("X-Actor-Role", role)
	}
	return req
}

func TestMissingActorHeaders(t *testing.T) {
	h := denyTestHandler()

	rec := httptest.NewRecorder()
	h.ReportIssue(rec, actorRequest(http.MethodPost, "/api/v1/issues", "", "", `{}`))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthorized")
}

func TestUnknownRoleRejected(t *testing.T) {
	h := denyTestHandler()

	rec := httptest.NewRecorder()
	h.ReportIssue(rec, actorRequest(http.MethodPost, "/api/v1/issues", "user-1", "mayor", `{}`))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPolicyDenials(t *testing.T) {
	h := denyTestHandler()

	tests := []struct {
		name string
		role string
		call func(w http.ResponseWriter, r *http.Request)
		body string
	}{
		{"citizen cannot accept bids", "citizen", h.AcceptBid, `{"bid_id":"b-1"}`},
		{"contractor cannot accept bids", "contractor", h.AcceptBid, `{"bid_id":"b-1"}`},
		{"contractor cannot approve work", "contractor", h.ApproveProgress, `{"progress_id":"wp-1"}`},
		{"citizen cannot create tenders", "citizen", h.CreateTender, `{"title":"x"}`},
		{"area admin cannot cancel tenders", "area_admin", h.CancelTender, `{"tender_id":"t-1"}`},
		{"department admin cannot submit bids", "department_admin", h.SubmitBid, `{"tender_id":"t-1"}`},
		{"contractor cannot route issues", "contractor", h.RouteIssueToArea, `{"issue_id":"i-1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.call(rec, actorRequest(http.MethodPost, "/", "user-1", tt.role, tt.body))
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	}
}

func TestErrorResponseShape(t *testing.T) {
	h := denyTestHandler()

	rec := httptest.NewRecorder()
	h.AcceptBid(rec, actorRequest(http.MethodPost, "/", "user-1", "citizen", `{}`))

	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"code"`)
	assert.Contains(t, rec.Body.String(), `"error"`)
}
