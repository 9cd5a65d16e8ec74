// Package e2e contains end-to-end tests for Spark! Bytes. They test from the
// rest interface all the way down to the store layer.
package e2e

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sparkbytes/sparkbytes"
	"github.com/sparkbytes/sparkbytes/auth"
	"github.com/sparkbytes/sparkbytes/memstore"
	"github.com/sparkbytes/sparkbytes/rest"
	"github.com/sparkbytes/sparkbytes/rest/client"
	"github.com/sparkbytes/sparkbytes/service"
	"github.com/sparkbytes/sparkbytes/store"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type stubServer struct {
	*httptest.Server
	auth *stubAuth
}

// newStubServer starts a new httptest.Server with a stubbed out service
// backed by memstore. You must call Close on the returned server after
// you're done with it.
func newStubServer(t *testing.T) *stubServer {
	t.Helper()
	return newStubServerWith(t, memstore.New())
}

// backend is a store backend the service can run on.
type backend interface {
	store.Profiles
	store.Events
}

// newStubServerWith is like newStubServer but runs on the given backend.
func newStubServerWith(t *testing.T, db backend) *stubServer {
	t.Helper()

	stub := &stubAuth{}
	svc := stubService(stub, db)
	handler := rest.New(svc, auth.Restrict(stub, svc.Domain), 500*time.Millisecond)

	return &stubServer{httptest.NewServer(handler), stub}
}

// client returns a REST client authenticated as the given user token.
func (s *stubServer) client(token string) *client.Client {
	c := client.New(token)
	c.BaseURL = s.URL
	return c
}

// stubService returns a Service where all the external dependencies have
// been stubbed out.
func stubService(stub *stubAuth, db backend) *service.Service {
	profiles := &store.ProfileStore{Profiles: db}

	return &service.Service{
		Profiles: profiles,
		Events: &store.EventRepository{
			Events:   db,
			Profiles: profiles,
			Clock:    stubTime(testNow),
		},
		Auth:     stub,
		Domain:   "bu.edu",
		Time:     stubTime(testNow),
		Location: time.UTC,
		BaseURL:  "https://sparkbytes.example",
	}
}

// StubTime mocks out the time with a fixed time.
type stubTime time.Time

func (s stubTime) Now() time.Time {
	return time.Time(s)
}

// StubAuth is a fake identity provider that takes the bearer token as the
// current user's id. Its email is "<id>@bu.edu" unless the token is itself an
// email address, eg "mallory@gmail.com".
type stubAuth struct {
	mu        sync.Mutex
	signedOut []string
}

func parseStubToken(token string) auth.Info {
	if i := strings.Index(token, "@"); i >= 0 {
		return auth.Info{ID: token[:i], Email: token}
	}
	return auth.Info{ID: token, Email: token + "@bu.edu"}
}

func (s *stubAuth) FromRequest(r *http.Request) (auth.Info, error) {
	var info auth.Info

	header := r.Header.Get("Authorization")
	if header == "" {
		if cookie, err := r.Cookie(auth.CookieName); err == nil {
			return parseStubToken(cookie.Value), nil
		}
		return info, nil
	}

	authParts := strings.Split(header, " ")
	if len(authParts) != 2 {
		return info, errors.New("malformed Authorization header")
	}

	return parseStubToken(authParts[1]), nil
}

func (s *stubAuth) Verify(ctx context.Context, idToken string) (auth.Info, error) {
	if idToken == "expired" {
		return auth.Info{}, auth.ErrExpired
	}
	return parseStubToken(idToken), nil
}

func (s *stubAuth) SignOut(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signedOut = append(s.signedOut, id)
	return nil
}

func (s *stubAuth) SignedOut() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.signedOut...)
}

func onboard(t *testing.T, c *client.Client, name string, flags ...sparkbytes.Flag) {
	t.Helper()
	_, err := c.Users.Onboard(context.Background(), sparkbytes.ProfileInput{
		Name:    name,
		Dietary: sparkbytes.MustDiet(flags...),
	})
	if err != nil {
		t.Fatalf("Users.Onboard(%s): %v", name, err)
	}
}

func pizza(date string, flags ...sparkbytes.Flag) sparkbytes.EventInput {
	return sparkbytes.EventInput{
		Location:  "GSU Food Court",
		Food:      "Pizza",
		Date:      date,
		Zone:      sparkbytes.Central,
		ExtraInfo: "Bring a plate",
		Dietary:   sparkbytes.MustDiet(flags...),
	}
}
