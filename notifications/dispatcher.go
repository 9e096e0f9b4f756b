// Package notifications delivers web-push notifications. Delivery is best
// effort: failures are logged and contained per recipient, and a permanent
// rejection from the push service removes the dead subscription.
package notifications

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/villagefriends/network_backend/models"
)

// SubscriptionStore owns push subscription records.
type SubscriptionStore interface {
	ListByUser(ctx context.Context, userID string) ([]models.PushSubscription, error)
	DeleteByID(ctx context.Context, id uint) error
}

// UserStore resolves users for preference checks.
type UserStore interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
}

// PushClient sends one payload to one subscription and returns the push
// service's status code.
type PushClient interface {
	Send(ctx context.Context, sub models.PushSubscription, payload []byte) (int, error)
}

// Payload is the JSON document delivered to the service worker.
type Payload struct {
	Title string         `json:"title"`
	Body  string         `json:"body"`
	URL   string         `json:"url"`
	Data  map[string]any `json:"data"`
	Icon  string         `json:"icon"`
	Badge string         `json:"badge"`
}

// Dispatcher fans a notification out to all of a user's subscriptions.
type Dispatcher struct {
	users  UserStore
	subs   SubscriptionStore
	client PushClient
	log    *zap.Logger
}

// NewDispatcher constructs a Dispatcher. A nil client disables delivery
// (VAPID keys not configured) while keeping every call a safe no-op.
func NewDispatcher(users UserStore, subs SubscriptionStore, client PushClient, log *zap.Logger) *Dispatcher {
	return &Dispatcher{users: users, subs: subs, client: client, log: log}
}

// SendToUser pushes the payload to every subscription the user holds. One
// failing subscription never blocks the others; subscriptions the push
// service reports as gone (404/410) are deleted.
func (d *Dispatcher) SendToUser(ctx context.Context, userID string, payload Payload) {
	if d.client == nil {
		d.log.Warn("push not configured, skipping notification", zap.String("user_id", userID))
		return
	}

	subs, err := d.subs.ListByUser(ctx, userID)
	if err != nil {
		d.log.Error("list push subscriptions", zap.String("user_id", userID), zap.Error(err))
		return
	}
	if len(subs) == 0 {
		return
	}

	if payload.Data == nil {
		payload.Data = map[string]any{}
	}
	payload.Icon = "/icons/icon-192x192.png"
	payload.Badge = "/icons/icon-72x72.png"

	body, err := json.Marshal(payload)
	if err != nil {
		d.log.Error("marshal push payload", zap.Error(err))
		return
	}

	for _, sub := range subs {
		status, err := d.client.Send(ctx, sub, body)
		if err != nil {
			d.log.Error("push notification failed",
				zap.String("user_id", userID), zap.Error(err))
			continue
		}
		switch {
		case status == http.StatusNotFound || status == http.StatusGone:
			if err := d.subs.DeleteByID(ctx, sub.ID); err != nil {
				d.log.Error("remove dead subscription", zap.Error(err))
			} else {
				d.log.Info("removed invalid subscription", zap.String("user_id", userID))
			}
		case status >= 400:
			d.log.Error("push service rejected notification",
				zap.String("user_id", userID), zap.Int("status", status))
		default:
			d.log.Info("push notification sent", zap.String("user_id", userID))
		}
	}
}

// prefs returns the user's notification preferences, defaulting to
// all-enabled when the user cannot be resolved.
func (d *Dispatcher) prefs(ctx context.Context, userID string) models.NotificationPreferences {
	user, err := d.users.GetByID(ctx, userID)
	if err != nil || user == nil {
		return models.DefaultNotificationPreferences()
	}
	return user.Preferences
}

// NotifyNewMessage notifies a recipient about a direct message.
func (d *Dispatcher) NotifyNewMessage(ctx context.Context, senderFamilyName, recipientUserID, preview string) {
	if !d.prefs(ctx, recipientUserID).Messages {
		return
	}
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}
	d.SendToUser(ctx, recipientUserID, Payload{
		Title: "New message from " + senderFamilyName,
		Body:  preview,
		URL:   "/messages",
	})
}

// NotifyNewEvent announces a freshly created event to nearby users.
func (d *Dispatcher) NotifyNewEvent(ctx context.Context, eventTitle, hostFamilyName string, userIDs []string) {
	for _, userID := range userIDs {
		if !d.prefs(ctx, userID).Events {
			continue
		}
		d.SendToUser(ctx, userID, Payload{
			Title: "New Event Near You!",
			Body:  hostFamilyName + " is hosting: " + eventTitle,
			URL:   "/events",
		})
	}
}

// NotifyMeetupRequest notifies about a new, accepted or declined meetup
// request. Unknown statuses are dropped.
func (d *Dispatcher) NotifyMeetupRequest(ctx context.Context, requesterFamilyName, targetUserID, status string) {
	if !d.prefs(ctx, targetUserID).MeetupRequests {
		return
	}

	var title, body string
	switch status {
	case "new":
		title = "New Meetup Request!"
		body = requesterFamilyName + " wants to meet up with your family"
	case models.MeetupAccepted:
		title = "Meetup Request Accepted!"
		body = requesterFamilyName + " accepted your meetup request"
	case models.MeetupDeclined:
		title = "Meetup Request Update"
		body = requesterFamilyName + " couldn't make the meetup"
	default:
		return
	}

	d.SendToUser(ctx, targetUserID, Payload{Title: title, Body: body, URL: "/dashboard"})
}

// NotifyGroupUpdate notifies group members about announcements, new
// members or group events.
func (d *Dispatcher) NotifyGroupUpdate(ctx context.Context, groupName string, memberUserIDs []string, updateType, details string) {
	var title string
	switch updateType {
	case "announcement":
		title = "New announcement in " + groupName
	case "new_member":
		title = "New member joined " + groupName
	case "event":
		title = "New event in " + groupName
	default:
		title = "Update in " + groupName
	}

	for _, userID := range memberUserIDs {
		if !d.prefs(ctx, userID).GroupUpdates {
			continue
		}
		d.SendToUser(ctx, userID, Payload{Title: title, Body: details, URL: "/groups"})
	}
}

// SendTest pushes a test notification to the user's own devices.
func (d *Dispatcher) SendTest(ctx context.Context, userID string) {
	d.SendToUser(ctx, userID, Payload{
		Title: "Test Notification",
		Body:  "Push notifications are working!",
		URL:   "/settings",
	})
}
