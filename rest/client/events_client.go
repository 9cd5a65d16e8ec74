package client

import (
	"context"
	"net/url"

	"github.com/sparkbytes/sparkbytes"
)

// EventsClient provides access to the /events endpoint
type EventsClient struct {
	client *Client
}

func filterQuery(filter sparkbytes.EventFilter) string {
	q := url.Values{}
	if filter.Zone != "" {
		q.Set("zone", string(filter.Zone))
	}
	if !filter.Dietary.Empty() {
		q.Set("diet", filter.Dietary.String())
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// List returns the upcoming events for the current user.
func (c *EventsClient) List(ctx context.Context, filter sparkbytes.EventFilter) ([]sparkbytes.Event, error) {
	var resp []sparkbytes.Event
	if err := c.client.doJSON(ctx, "GET", "/events"+filterQuery(filter), nil, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// Mine returns the events the current user created.
func (c *EventsClient) Mine(ctx context.Context) ([]sparkbytes.Event, error) {
	var resp []sparkbytes.Event
	if err := c.client.doJSON(ctx, "GET", "/events/mine", nil, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// Feed downloads the iCalendar feed of the events List would return.
func (c *EventsClient) Feed(ctx context.Context, filter sparkbytes.EventFilter) ([]byte, error) {
	return c.client.do(ctx, "GET", "/events/feed.ics"+filterQuery(filter), nil)
}

// Create posts a new event.
func (c *EventsClient) Create(ctx context.Context, in sparkbytes.EventInput) (sparkbytes.Event, error) {
	var resp sparkbytes.Event
	if err := c.client.doJSON(ctx, "POST", "/events", in, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// Get retrieves one event.
func (c *EventsClient) Get(ctx context.Context, id sparkbytes.EventID) (sparkbytes.Event, error) {
	var resp sparkbytes.Event
	if err := c.client.doJSON(ctx, "GET", "/events/"+url.PathEscape(string(id)), nil, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// Update overwrites an event the current user created.
func (c *EventsClient) Update(ctx context.Context, id sparkbytes.EventID, in sparkbytes.EventInput) (sparkbytes.Event, error) {
	var resp sparkbytes.Event
	if err := c.client.doJSON(ctx, "PUT", "/events/"+url.PathEscape(string(id)), in, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// Delete removes an event the current user created.
func (c *EventsClient) Delete(ctx context.Context, id sparkbytes.EventID) error {
	return c.client.doJSON(ctx, "DELETE", "/events/"+url.PathEscape(string(id)), nil, nil)
}
