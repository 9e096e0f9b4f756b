package notifications

import (
	"context"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/villagefriends/network_backend/models"
)

// WebPushClient sends notifications through the Web Push protocol with
// VAPID authentication.
type WebPushClient struct {
	options webpush.Options
}

// NewWebPushClient returns a client for the given VAPID key pair, or a nil
// PushClient when the keys are not configured so the dispatcher degrades to
// a no-op. The return type is the interface so an unconfigured client stays
// a nil interface value rather than a typed nil pointer.
func NewWebPushClient(publicKey, privateKey, subscriberEmail string) PushClient {
	if publicKey == "" || privateKey == "" {
		return nil
	}
	return &WebPushClient{
		options: webpush.Options{
			Subscriber:      "mailto:" + subscriberEmail,
			VAPIDPublicKey:  publicKey,
			VAPIDPrivateKey: privateKey,
			TTL:             30,
		},
	}
}

// Send delivers one payload to one subscription endpoint.
func (c *WebPushClient) Send(ctx context.Context, sub models.PushSubscription, payload []byte) (int, error) {
	target := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}

	opts := c.options
	resp, err := webpush.SendNotificationWithContext(ctx, payload, target, &opts)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
