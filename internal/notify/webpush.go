// Package notify delivers web push notifications to offline users.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"nearchat/internal/domain"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// Config carries the VAPID key pair identifying this server to push
// services.
type Config struct {
	Subject    string
	PublicKey  string
	PrivateKey string
}

// WebPushSender sends VAPID-signed push notifications.
type WebPushSender struct {
	cfg Config
}

func NewWebPushSender(cfg Config) *WebPushSender {
	return &WebPushSender{cfg: cfg}
}

type pushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Send pushes a {title, body} notification to the stored subscription.
func (w *WebPushSender) Send(ctx context.Context, sub domain.PushSubscription, title, body string) error {
	payload, err := json.Marshal(pushPayload{Title: title, Body: body})
	if err != nil {
		return err
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      w.cfg.Subject,
		VAPIDPublicKey:  w.cfg.PublicKey,
		VAPIDPrivateKey: w.cfg.PrivateKey,
		TTL:             3600,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("push service responded %d", resp.StatusCode)
	}
	return nil
}
