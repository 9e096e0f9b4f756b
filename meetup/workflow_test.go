package meetup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/villagefriends/network_backend/models"
)

type fakeProfiles struct {
	byUser   map[string]*models.FamilyProfile
	byFamily map[string]*models.FamilyProfile
}

func (f *fakeProfiles) GetByUserID(ctx context.Context, userID string) (*models.FamilyProfile, error) {
	return f.byUser[userID], nil
}

func (f *fakeProfiles) GetByID(ctx context.Context, familyID string) (*models.FamilyProfile, error) {
	return f.byFamily[familyID], nil
}

type fakeRequests struct {
	byID     map[string]*models.MeetupRequest
	inserted []*models.MeetupRequest
}

func (f *fakeRequests) Insert(ctx context.Context, req *models.MeetupRequest) error {
	f.inserted = append(f.inserted, req)
	f.byID[req.RequestID] = req
	return nil
}

func (f *fakeRequests) GetByID(ctx context.Context, requestID string) (*models.MeetupRequest, error) {
	return f.byID[requestID], nil
}

func (f *fakeRequests) TransitionStatus(ctx context.Context, requestID, from, to string) (bool, error) {
	req, ok := f.byID[requestID]
	if !ok || req.Status != from {
		return false, nil
	}
	req.Status = to
	return true, nil
}

type fakeEvents struct {
	inserted  []*models.Event
	insertErr error
}

func (f *fakeEvents) Insert(ctx context.Context, event *models.Event) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, event)
	return nil
}

type notice struct {
	familyName string
	userID     string
	status     string
}

type fakeNotifier struct {
	sent chan notice
}

func (f *fakeNotifier) NotifyMeetupRequest(ctx context.Context, requesterFamilyName, targetUserID, status string) {
	f.sent <- notice{familyName: requesterFamilyName, userID: targetUserID, status: status}
}

func newFixture() (*Workflow, *fakeProfiles, *fakeRequests, *fakeEvents, *fakeNotifier) {
	requesterProfile := &models.FamilyProfile{
		FamilyID: "fam_req", UserID: "user_req", FamilyName: "The Parkers",
		City: "Austin", State: "TX", ZipCode: "78701",
	}
	targetProfile := &models.FamilyProfile{
		FamilyID: "fam_tgt", UserID: "user_tgt", FamilyName: "The Nguyens",
		City: "Austin", State: "TX", ZipCode: "78702",
	}
	profiles := &fakeProfiles{
		byUser:   map[string]*models.FamilyProfile{"user_req": requesterProfile, "user_tgt": targetProfile},
		byFamily: map[string]*models.FamilyProfile{"fam_req": requesterProfile, "fam_tgt": targetProfile},
	}
	requests := &fakeRequests{byID: map[string]*models.MeetupRequest{}}
	events := &fakeEvents{}
	notifier := &fakeNotifier{sent: make(chan notice, 4)}
	return NewWorkflow(profiles, requests, events, notifier), profiles, requests, events, notifier
}

func pendingRequest(requests *fakeRequests) *models.MeetupRequest {
	req := &models.MeetupRequest{
		RequestID:           "meetup_abc",
		RequesterFamilyID:   "fam_req",
		RequesterFamilyName: "The Parkers",
		TargetFamilyID:      "fam_tgt",
		ProposedDate:        "2026-09-12",
		ProposedTime:        "10:00",
		Location:            "Zilker Park",
		Message:             "Playground morning?",
		Status:              models.MeetupPending,
	}
	requests.byID[req.RequestID] = req
	return req
}

func awaitNotice(t *testing.T, notifier *fakeNotifier) notice {
	t.Helper()
	select {
	case n := <-notifier.sent:
		return n
	case <-time.After(time.Second):
		t.Fatal("expected a notification")
		return notice{}
	}
}

func TestCreateRequest(t *testing.T) {
	wf, _, requests, _, notifier := newFixture()

	req, err := wf.CreateRequest(context.Background(), "user_req", CreateInput{
		TargetFamilyID: "fam_tgt",
		ProposedDate:   "2026-09-12",
		ProposedTime:   "10:00",
		Location:       "Zilker Park",
	})
	require.NoError(t, err)
	assert.Equal(t, models.MeetupPending, req.Status)
	assert.Equal(t, "fam_req", req.RequesterFamilyID)
	assert.Equal(t, "The Parkers", req.RequesterFamilyName)
	require.Len(t, requests.inserted, 1)

	n := awaitNotice(t, notifier)
	assert.Equal(t, "user_tgt", n.userID)
	assert.Equal(t, "new", n.status)
}

func TestCreateRequestWithoutProfile(t *testing.T) {
	wf, _, _, _, _ := newFixture()

	_, err := wf.CreateRequest(context.Background(), "user_unknown", CreateInput{TargetFamilyID: "fam_tgt"})
	assert.ErrorIs(t, err, ErrProfileRequired)
}

func TestCreateRequestToSelf(t *testing.T) {
	wf, _, _, _, _ := newFixture()

	_, err := wf.CreateRequest(context.Background(), "user_req", CreateInput{TargetFamilyID: "fam_req"})
	assert.ErrorIs(t, err, ErrSelfRequest)
}

func TestCreateRequestMissingTargetStillStands(t *testing.T) {
	wf, _, requests, _, notifier := newFixture()

	req, err := wf.CreateRequest(context.Background(), "user_req", CreateInput{TargetFamilyID: "fam_gone"})
	require.NoError(t, err)
	assert.Equal(t, models.MeetupPending, req.Status)
	require.Len(t, requests.inserted, 1)

	select {
	case <-notifier.sent:
		t.Fatal("no notification expected for a missing target")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRespondAcceptCreatesConfirmedEvent(t *testing.T) {
	wf, _, requests, events, notifier := newFixture()
	pendingRequest(requests)

	req, err := wf.Respond(context.Background(), "user_tgt", "meetup_abc", models.MeetupAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.MeetupAccepted, req.Status)

	require.Len(t, events.inserted, 1)
	event := events.inserted[0]
	assert.Equal(t, models.EventConfirmed, event.Status)
	assert.Equal(t, "fam_req", event.HostFamilyID)
	assert.Equal(t, "The Parkers", event.HostFamilyName)
	assert.Equal(t, "Meetup with The Nguyens", event.Title)
	assert.Equal(t, "Playground morning?", event.Description)
	assert.Equal(t, "2026-09-12", event.EventDate)
	assert.Equal(t, "Zilker Park", event.Location)
	require.NotNil(t, event.MaxAttendees)
	assert.Equal(t, 2, *event.MaxAttendees)
	require.Len(t, event.Attendees, 1)
	assert.Equal(t, "fam_tgt", event.Attendees[0].FamilyID)

	n := awaitNotice(t, notifier)
	assert.Equal(t, "user_req", n.userID)
	assert.Equal(t, models.MeetupAccepted, n.status)
	assert.Equal(t, "The Nguyens", n.familyName)
}

func TestRespondDeclineCreatesNoEvent(t *testing.T) {
	wf, _, requests, events, notifier := newFixture()
	pendingRequest(requests)

	req, err := wf.Respond(context.Background(), "user_tgt", "meetup_abc", models.MeetupDeclined)
	require.NoError(t, err)
	assert.Equal(t, models.MeetupDeclined, req.Status)
	assert.Empty(t, events.inserted)

	n := awaitNotice(t, notifier)
	assert.Equal(t, models.MeetupDeclined, n.status)
}

func TestRespondInvalidStatusCheckedFirst(t *testing.T) {
	wf, _, _, _, _ := newFixture()

	// The status check runs before any lookups, so even a nonexistent
	// request reports the bad status.
	_, err := wf.Respond(context.Background(), "user_tgt", "meetup_missing", "maybe")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestRespondUnknownRequest(t *testing.T) {
	wf, _, _, _, _ := newFixture()

	_, err := wf.Respond(context.Background(), "user_tgt", "meetup_missing", models.MeetupAccepted)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRespondOnlyTargetMay(t *testing.T) {
	wf, _, requests, _, _ := newFixture()
	pendingRequest(requests)

	_, err := wf.Respond(context.Background(), "user_req", "meetup_abc", models.MeetupAccepted)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRespondWithoutProfile(t *testing.T) {
	wf, _, requests, _, _ := newFixture()
	pendingRequest(requests)

	_, err := wf.Respond(context.Background(), "user_unknown", "meetup_abc", models.MeetupAccepted)
	assert.ErrorIs(t, err, ErrProfileRequired)
}

func TestRespondTwiceLoses(t *testing.T) {
	wf, _, requests, events, _ := newFixture()
	pendingRequest(requests)

	_, err := wf.Respond(context.Background(), "user_tgt", "meetup_abc", models.MeetupAccepted)
	require.NoError(t, err)

	_, err = wf.Respond(context.Background(), "user_tgt", "meetup_abc", models.MeetupDeclined)
	assert.ErrorIs(t, err, ErrAlreadyResponded)

	// Exactly one event despite the second attempt.
	assert.Len(t, events.inserted, 1)
}

func TestRespondAcceptEventInsertFailureKeepsStatus(t *testing.T) {
	wf, _, requests, events, notifier := newFixture()
	pendingRequest(requests)
	events.insertErr = errors.New("insert failed")

	_, err := wf.Respond(context.Background(), "user_tgt", "meetup_abc", models.MeetupAccepted)
	require.Error(t, err)

	// The transition commits before the event insert, so the request stays
	// accepted and a retry is rejected.
	assert.Equal(t, models.MeetupAccepted, requests.byID["meetup_abc"].Status)
	_, err = wf.Respond(context.Background(), "user_tgt", "meetup_abc", models.MeetupAccepted)
	assert.ErrorIs(t, err, ErrAlreadyResponded)

	select {
	case <-notifier.sent:
		t.Fatal("no notification expected when the event insert fails")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRespondAcceptMissingRequesterProfile(t *testing.T) {
	wf, profiles, requests, events, notifier := newFixture()
	pendingRequest(requests)
	delete(profiles.byFamily, "fam_req")

	req, err := wf.Respond(context.Background(), "user_tgt", "meetup_abc", models.MeetupAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.MeetupAccepted, req.Status)

	// The event still materializes with a placeholder host name.
	require.Len(t, events.inserted, 1)
	assert.Equal(t, "Unknown", events.inserted[0].HostFamilyName)

	// Nobody left to notify.
	select {
	case <-notifier.sent:
		t.Fatal("no notification expected without a requester profile")
	case <-time.After(50 * time.Millisecond):
	}
}
