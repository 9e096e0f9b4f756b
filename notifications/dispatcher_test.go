package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/villagefriends/network_backend/models"
)

type fakeSubs struct {
	byUser  map[string][]models.PushSubscription
	deleted []uint
}

func (f *fakeSubs) ListByUser(ctx context.Context, userID string) ([]models.PushSubscription, error) {
	return f.byUser[userID], nil
}

func (f *fakeSubs) DeleteByID(ctx context.Context, id uint) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeUsers struct {
	byID map[string]*models.User
}

func (f *fakeUsers) GetByID(ctx context.Context, userID string) (*models.User, error) {
	return f.byID[userID], nil
}

type sentPush struct {
	sub     models.PushSubscription
	payload Payload
}

type fakeClient struct {
	statuses map[string]int // endpoint -> status
	errs     map[string]error
	sent     []sentPush
}

func (f *fakeClient) Send(ctx context.Context, sub models.PushSubscription, payload []byte) (int, error) {
	var p Payload
	if err := json.Unmarshal(payload, &p); err != nil {
		return 0, err
	}
	if err := f.errs[sub.Endpoint]; err != nil {
		return 0, err
	}
	f.sent = append(f.sent, sentPush{sub: sub, payload: p})
	if status, ok := f.statuses[sub.Endpoint]; ok {
		return status, nil
	}
	return http.StatusCreated, nil
}

func sub(id uint, userID, endpoint string) models.PushSubscription {
	return models.PushSubscription{ID: id, UserID: userID, Endpoint: endpoint, P256dh: "k", Auth: "a"}
}

func userWithPrefs(prefs models.NotificationPreferences) *models.User {
	return &models.User{UserID: "u1", Preferences: prefs}
}

func newDispatcher(users *fakeUsers, subs *fakeSubs, client PushClient) *Dispatcher {
	return NewDispatcher(users, subs, client, zap.NewNop())
}

func TestSendToUserFansOut(t *testing.T) {
	subs := &fakeSubs{byUser: map[string][]models.PushSubscription{
		"u1": {sub(1, "u1", "ep1"), sub(2, "u1", "ep2")},
	}}
	client := &fakeClient{}
	d := newDispatcher(&fakeUsers{byID: map[string]*models.User{}}, subs, client)

	d.SendToUser(context.Background(), "u1", Payload{Title: "Hi", Body: "There"})

	require.Len(t, client.sent, 2)
	assert.Equal(t, "Hi", client.sent[0].payload.Title)
	assert.NotEmpty(t, client.sent[0].payload.Icon)
}

func TestSendToUserRemovesGoneSubscriptions(t *testing.T) {
	subs := &fakeSubs{byUser: map[string][]models.PushSubscription{
		"u1": {sub(1, "u1", "dead"), sub(2, "u1", "alive")},
	}}
	client := &fakeClient{statuses: map[string]int{"dead": http.StatusGone}}
	d := newDispatcher(&fakeUsers{byID: map[string]*models.User{}}, subs, client)

	d.SendToUser(context.Background(), "u1", Payload{Title: "Hi"})

	assert.Equal(t, []uint{1}, subs.deleted)
	require.Len(t, client.sent, 2)
}

func TestSendToUserIsolatesFailures(t *testing.T) {
	subs := &fakeSubs{byUser: map[string][]models.PushSubscription{
		"u1": {sub(1, "u1", "broken"), sub(2, "u1", "fine")},
	}}
	client := &fakeClient{errs: map[string]error{"broken": errors.New("dial failed")}}
	d := newDispatcher(&fakeUsers{byID: map[string]*models.User{}}, subs, client)

	d.SendToUser(context.Background(), "u1", Payload{Title: "Hi"})

	require.Len(t, client.sent, 1)
	assert.Equal(t, "fine", client.sent[0].sub.Endpoint)
	assert.Empty(t, subs.deleted)
}

func TestNilClientIsNoOp(t *testing.T) {
	subs := &fakeSubs{byUser: map[string][]models.PushSubscription{
		"u1": {sub(1, "u1", "ep1")},
	}}
	d := newDispatcher(&fakeUsers{byID: map[string]*models.User{}}, subs, nil)

	// Must not panic.
	d.SendToUser(context.Background(), "u1", Payload{Title: "Hi"})
	assert.Empty(t, subs.deleted)
}

func TestUnconfiguredClientIsNoOp(t *testing.T) {
	subs := &fakeSubs{byUser: map[string][]models.PushSubscription{
		"u1": {sub(1, "u1", "ep1")},
	}}
	client := NewWebPushClient("", "", "support@villagefriends.app")
	require.Nil(t, client)
	d := newDispatcher(&fakeUsers{byID: map[string]*models.User{}}, subs, client)

	// Must not panic even though the client passed through an interface.
	d.SendToUser(context.Background(), "u1", Payload{Title: "Hi"})
	assert.Empty(t, subs.deleted)
}

func TestNotifyNewMessageHonorsPreferences(t *testing.T) {
	prefs := models.DefaultNotificationPreferences()
	prefs.Messages = false
	users := &fakeUsers{byID: map[string]*models.User{"u1": userWithPrefs(prefs)}}
	subs := &fakeSubs{byUser: map[string][]models.PushSubscription{
		"u1": {sub(1, "u1", "ep1")},
	}}
	client := &fakeClient{}
	d := newDispatcher(users, subs, client)

	d.NotifyNewMessage(context.Background(), "The Parkers", "u1", "hey")
	assert.Empty(t, client.sent)
}

func TestNotifyNewMessageTruncatesPreview(t *testing.T) {
	users := &fakeUsers{byID: map[string]*models.User{}}
	subs := &fakeSubs{byUser: map[string][]models.PushSubscription{
		"u1": {sub(1, "u1", "ep1")},
	}}
	client := &fakeClient{}
	d := newDispatcher(users, subs, client)

	long := make([]byte, 150)
	for i := range long {
		long[i] = 'x'
	}
	d.NotifyNewMessage(context.Background(), "The Parkers", "u1", string(long))

	require.Len(t, client.sent, 1)
	assert.Len(t, client.sent[0].payload.Body, 103) // 100 chars plus ellipsis
	assert.Equal(t, "New message from The Parkers", client.sent[0].payload.Title)
}

func TestNotifyMeetupRequestTitles(t *testing.T) {
	users := &fakeUsers{byID: map[string]*models.User{}}
	subs := &fakeSubs{byUser: map[string][]models.PushSubscription{
		"u1": {sub(1, "u1", "ep1")},
	}}
	client := &fakeClient{}
	d := newDispatcher(users, subs, client)

	d.NotifyMeetupRequest(context.Background(), "The Parkers", "u1", "new")
	d.NotifyMeetupRequest(context.Background(), "The Parkers", "u1", models.MeetupAccepted)
	d.NotifyMeetupRequest(context.Background(), "The Parkers", "u1", models.MeetupDeclined)
	d.NotifyMeetupRequest(context.Background(), "The Parkers", "u1", "bogus")

	require.Len(t, client.sent, 3)
	assert.Equal(t, "New Meetup Request!", client.sent[0].payload.Title)
	assert.Equal(t, "Meetup Request Accepted!", client.sent[1].payload.Title)
	assert.Equal(t, "Meetup Request Update", client.sent[2].payload.Title)
}

func TestNotifyGroupUpdateSkipsOptedOut(t *testing.T) {
	optedOut := models.DefaultNotificationPreferences()
	optedOut.GroupUpdates = false
	users := &fakeUsers{byID: map[string]*models.User{
		"u1": userWithPrefs(optedOut),
		"u2": userWithPrefs(models.DefaultNotificationPreferences()),
	}}
	subs := &fakeSubs{byUser: map[string][]models.PushSubscription{
		"u1": {sub(1, "u1", "ep1")},
		"u2": {sub(2, "u2", "ep2")},
	}}
	client := &fakeClient{}
	d := newDispatcher(users, subs, client)

	d.NotifyGroupUpdate(context.Background(), "Eastside Co-op", []string{"u1", "u2"}, "announcement", "Field trip")

	require.Len(t, client.sent, 1)
	assert.Equal(t, "ep2", client.sent[0].sub.Endpoint)
	assert.Equal(t, "New announcement in Eastside Co-op", client.sent[0].payload.Title)
}

func TestUnknownUserDefaultsToEnabled(t *testing.T) {
	users := &fakeUsers{byID: map[string]*models.User{}}
	subs := &fakeSubs{byUser: map[string][]models.PushSubscription{
		"ghost": {sub(1, "ghost", "ep1")},
	}}
	client := &fakeClient{}
	d := newDispatcher(users, subs, client)

	d.NotifyNewMessage(context.Background(), "The Parkers", "ghost", "hello")
	assert.Len(t, client.sent, 1)
}
