package client

import (
	"context"

	"github.com/sparkbytes/sparkbytes"
)

// SessionClient provides access to the /session endpoint
type SessionClient struct {
	client *Client
}

// Begin completes a sign-in with an ID token or a failure code from the
// identity provider.
func (c *SessionClient) Begin(ctx context.Context, req sparkbytes.SessionRequest) (sparkbytes.Session, error) {
	var resp sparkbytes.Session
	if err := c.client.doJSON(ctx, "POST", "/session", req, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// End signs the current user out.
func (c *SessionClient) End(ctx context.Context) error {
	return c.client.doJSON(ctx, "DELETE", "/session", nil, nil)
}
