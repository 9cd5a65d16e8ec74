package client

import (
	"context"

	"github.com/sparkbytes/sparkbytes"
)

// UsersClient provides access to the /users endpoint
type UsersClient struct {
	client *Client
}

// Onboard creates the current user's profile.
func (c *UsersClient) Onboard(ctx context.Context, in sparkbytes.ProfileInput) (sparkbytes.UserProfile, error) {
	var resp sparkbytes.UserProfile
	if err := c.client.doJSON(ctx, "POST", "/users", in, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// Update replaces the current user's name, email and dietary preferences.
func (c *UsersClient) Update(ctx context.Context, in sparkbytes.ProfileInput) (sparkbytes.UserProfile, error) {
	var resp sparkbytes.UserProfile
	if err := c.client.doJSON(ctx, "PUT", "/users/me", in, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// Me retrieves the current user's profile.
func (c *UsersClient) Me(ctx context.Context) (sparkbytes.UserProfile, error) {
	var resp sparkbytes.UserProfile
	if err := c.client.doJSON(ctx, "GET", "/users/me", nil, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}
