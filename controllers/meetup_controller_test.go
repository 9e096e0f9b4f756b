package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/villagefriends/network_backend/meetup"
	"github.com/villagefriends/network_backend/models"
	"github.com/villagefriends/network_backend/websocket"
)

type wfProfiles struct {
	byUser   map[string]*models.FamilyProfile
	byFamily map[string]*models.FamilyProfile
}

func (f *wfProfiles) GetByUserID(ctx context.Context, userID string) (*models.FamilyProfile, error) {
	return f.byUser[userID], nil
}

func (f *wfProfiles) GetByID(ctx context.Context, familyID string) (*models.FamilyProfile, error) {
	return f.byFamily[familyID], nil
}

type wfRequests struct {
	byID map[string]*models.MeetupRequest
}

func (f *wfRequests) Insert(ctx context.Context, req *models.MeetupRequest) error {
	f.byID[req.RequestID] = req
	return nil
}

func (f *wfRequests) GetByID(ctx context.Context, requestID string) (*models.MeetupRequest, error) {
	return f.byID[requestID], nil
}

func (f *wfRequests) TransitionStatus(ctx context.Context, requestID, from, to string) (bool, error) {
	req, ok := f.byID[requestID]
	if !ok || req.Status != from {
		return false, nil
	}
	req.Status = to
	return true, nil
}

type wfEvents struct{}

func (wfEvents) Insert(ctx context.Context, event *models.Event) error { return nil }

type wfNotifier struct{}

func (wfNotifier) NotifyMeetupRequest(ctx context.Context, requesterFamilyName, targetUserID, status string) {
}

func respondRouter(t *testing.T) (*gin.Engine, *wfRequests) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	requester := &models.FamilyProfile{FamilyID: "fam_req", UserID: "user_req", FamilyName: "The Parkers"}
	target := &models.FamilyProfile{FamilyID: "fam_tgt", UserID: "user_tgt", FamilyName: "The Nguyens"}
	profiles := &wfProfiles{
		byUser:   map[string]*models.FamilyProfile{"user_req": requester, "user_tgt": target},
		byFamily: map[string]*models.FamilyProfile{"fam_req": requester, "fam_tgt": target},
	}
	requests := &wfRequests{byID: map[string]*models.MeetupRequest{
		"meetup_abc": {
			RequestID:         "meetup_abc",
			RequesterFamilyID: "fam_req",
			TargetFamilyID:    "fam_tgt",
			Status:            models.MeetupPending,
		},
	}}

	wf := meetup.NewWorkflow(profiles, requests, wfEvents{}, wfNotifier{})
	hub := websocket.NewHub(zap.NewNop())
	go hub.Run()
	ctrl := NewMeetupController(wf, nil, nil, hub)

	router := gin.New()
	router.POST("/api/meetups/:id/respond", func(c *gin.Context) {
		c.Set("userID", c.GetHeader("X-Test-User"))
		c.Next()
	}, ctrl.Respond)
	return router, requests
}

func respond(router *gin.Engine, asUser, requestID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/meetups/"+requestID+"/respond", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", asUser)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRespondStatusMapping(t *testing.T) {
	router, _ := respondRouter(t)

	// Invalid status wins even for a nonexistent request.
	w := respond(router, "user_tgt", "meetup_missing", `{"status":"maybe"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// No profile for the caller.
	w = respond(router, "user_ghost", "meetup_abc", `{"status":"accepted"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown request.
	w = respond(router, "user_tgt", "meetup_missing", `{"status":"accepted"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Requester cannot settle their own request.
	w = respond(router, "user_req", "meetup_abc", `{"status":"accepted"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Target accepts.
	w = respond(router, "user_tgt", "meetup_abc", `{"status":"accepted"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"accepted"`)

	// Second response conflicts.
	w = respond(router, "user_tgt", "meetup_abc", `{"status":"declined"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}
