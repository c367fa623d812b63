package service

import (
	"context"
)

// Notifier delivers a push message to one user. Fire and forget: a failed
// delivery is logged by the caller and never rolls back the state change
// that triggered it.
type Notifier interface {
	Notify(ctx context.Context, userID, title, body string, data map[string]string) error
}
