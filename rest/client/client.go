// Package client is a Go client for the Spark! Bytes REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/sparkbytes/sparkbytes/errors"
)

// Client provides a client to the Spark! Bytes REST API.
//
// Don't construct a Client directly. Use New() instead.
type Client struct {
	// HTTP is the underlying HTTP client used send requests.
	HTTP *http.Client
	// BaseURL is the HTTP endpoint for the REST API. Can be overridden for tests.
	// It defaults to http://localhost:8080
	BaseURL string
	// JWT is the user credential used to authenticate.
	//
	// In production it's a Firebase ID token. sparkbytes-token can mint one.
	JWT string

	Session *SessionClient
	Users   *UsersClient
	Events  *EventsClient
}

// New constructs a new Client
func New(jwt string) *Client {
	client := &Client{
		HTTP:    http.DefaultClient,
		BaseURL: "http://localhost:8080",
		JWT:     jwt,
	}

	client.Session = &SessionClient{client}
	client.Users = &UsersClient{client}
	client.Events = &EventsClient{client}

	return client
}

// do sends a request and returns the response body. Non-200 responses are
// decoded into errors.
func (c Client) do(ctx context.Context, method, path string, req interface{}) ([]byte, error) {
	var reqBody io.Reader
	if req != nil {
		reqJS, err := json.Marshal(req)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(reqJS)
	}

	r, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return nil, err
	}

	if c.JWT != "" {
		r.Header.Set("Authorization", "Bearer "+c.JWT)
	}

	w, err := c.HTTP.Do(r)
	if err != nil {
		return nil, err
	}
	defer w.Body.Close()

	if status := w.StatusCode; status != http.StatusOK {
		var resp errors.Response
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			return nil, errors.Errorf("status %d", status)
		}
		return nil, resp.ToError()
	}

	return io.ReadAll(w.Body)
}

func (c Client) doJSON(ctx context.Context, method, path string, req interface{}, resp interface{}) error {
	body, err := c.do(ctx, method, path, req)
	if err != nil {
		return err
	}

	if resp != nil {
		if err := json.Unmarshal(body, resp); err != nil {
			return err
		}
	}

	return nil
}
