package notification

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"

	"renterra/internal/domain/repository"
)

// FCMNotifier delivers pushes through Firebase Cloud Messaging, resolving
// each recipient's device token from the user record.
type FCMNotifier struct {
	client   *messaging.Client
	userRepo repository.UserRepository
}

func NewFCMNotifier(client *messaging.Client, userRepo repository.UserRepository) *FCMNotifier {
	return &FCMNotifier{
		client:   client,
		userRepo: userRepo,
	}
}

func (n *FCMNotifier) Notify(ctx context.Context, userID, title, body string, data map[string]string) error {
	user, err := n.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("notify: could not load user %s: %w", userID, err)
	}
	if user.FCMToken == "" {
		// No registered device, nothing to deliver.
		return nil
	}

	msg := &messaging.Message{
		Token: user.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := n.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: failed to send FCM message to %s: %w", userID, err)
	}

	return nil
}
