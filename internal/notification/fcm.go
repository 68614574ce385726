package notification

import (
	"context"
	"fmt"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/arvindh25/college-event-backend/config"
)

// FCMChannel pushes messages through Firebase Cloud Messaging.
type FCMChannel struct {
	client *messaging.Client
}

// NewFCMChannel initializes the Firebase Admin SDK and returns a push
// channel. Returns (nil, err) when credentials are missing so the caller
// can run with push disabled.
func NewFCMChannel(ctx context.Context, cfg *config.Config) (*FCMChannel, error) {
	credentialsPath := cfg.FCMCredentialsPath
	if credentialsPath == "" {
		credentialsPath = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}
	if credentialsPath == "" {
		return nil, fmt.Errorf("firebase credentials path not configured")
	}
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("firebase credentials file not found: %s", credentialsPath)
	}
	if cfg.FCMProjectID == "" {
		return nil, fmt.Errorf("FCM_PROJECT_ID is required for push notifications")
	}

	app, err := firebase.NewApp(ctx,
		&firebase.Config{ProjectID: cfg.FCMProjectID},
		option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing FCM client: %w", err)
	}
	log.Println("✅ FCM client initialized, project:", cfg.FCMProjectID)
	return &FCMChannel{client: client}, nil
}

// Send delivers one push message to each token. Tokens FCM reports as
// unregistered or malformed are returned so the caller can retire them;
// the hard error is only for full batch failure.
func (f *FCMChannel) Send(ctx context.Context, tokens []string, title, body string, data map[string]string) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	msg := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	resp, err := f.client.SendEachForMulticast(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("sending multicast: %w", err)
	}

	var dead []string
	if resp.FailureCount > 0 {
		log.Printf("⚠️  FCM delivered %d/%d messages", resp.SuccessCount, len(tokens))
		for idx, r := range resp.Responses {
			if r.Error != nil && (messaging.IsUnregistered(r.Error) || messaging.IsInvalidArgument(r.Error)) {
				dead = append(dead, tokens[idx])
			}
		}
	}
	return dead, nil
}
