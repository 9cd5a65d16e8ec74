package auth

import (
	"context"
	"errors"
	"net/http"
)

// CookieName is the cookie the browser keeps its ID token in.
const CookieName = "jwt"

// ErrExpired is returned when the user tries to authenticate with an expired token.
var ErrExpired = errors.New("token expired")

// Provider parses requests to extract authorization info.
type Provider interface {
	FromRequest(r *http.Request) (Info, error)
}

// Verifier checks ID tokens handed over after a sign-in and signs users out.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (Info, error)
	// SignOut invalidates the sessions of the user with the given ID.
	SignOut(ctx context.Context, id string) error
}

// Info stores information about the current user
type Info struct {
	ID    string
	Email string
}

// WithContext decorates a context with this auth.Info object. Use auth.User
// to retrieve the auth.Info from the context.
func (i Info) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxMarkerKey, i)
}
