package service

import (
	"context"
	"time"

	"github.com/sparkbytes/sparkbytes"
	"github.com/sparkbytes/sparkbytes/auth"
	"github.com/sparkbytes/sparkbytes/clock"
	"github.com/sparkbytes/sparkbytes/errors"
	"github.com/sparkbytes/sparkbytes/store"
)

// Service is a programmatic API to Spark! Bytes. It manages access to the
// stores and checks permissions.
type Service struct {
	Profiles *store.ProfileStore
	Events   *store.EventRepository

	Auth auth.Verifier
	// Domain is the email domain users must sign in with, eg "bu.edu".
	// Empty allows any account.
	Domain string

	Time clock.Clock
	// Location is the campus time zone. Event dates without an offset are
	// read in it.
	Location *time.Location

	// BaseURL is the public address of the app, used for links in the
	// calendar feed.
	BaseURL string
}

func (s *Service) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

func (s *Service) now() time.Time {
	if s.Time == nil {
		return time.Now().In(s.location())
	}
	return s.Time.Now().In(s.location())
}

// currentUser returns the signed in user's id or a NotLoggedIn error.
func currentUser(ctx context.Context, op errors.Op) (sparkbytes.UserID, error) {
	id := auth.User(ctx).ID
	if id == "" {
		return "", errors.E(op, errors.NotLoggedIn)
	}
	return sparkbytes.UserID(id), nil
}
