package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"
)

// AuthClient wraps the Firebase auth client for token verification and
// user lookups outside the middleware.
type AuthClient struct {
	client *auth.Client
}

func NewAuthClient(client *auth.Client) *AuthClient {
	return &AuthClient{
		client: client,
	}
}

func (c *AuthClient) VerifyToken(ctx context.Context, idToken string) (string, error) {
	token, err := c.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", err
	}
	return token.UID, nil
}

func (c *AuthClient) GetUserEmail(ctx context.Context, uid string) (string, error) {
	record, err := c.client.GetUser(ctx, uid)
	if err != nil {
		return "", err
	}
	return record.Email, nil
}
