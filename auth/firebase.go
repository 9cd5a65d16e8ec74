package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
)

// ErrRevoked is returned for tokens issued before the user signed out.
var ErrRevoked = errors.New("token revoked")

// FirebaseProvider is an auth provider backed by Firebase Authentication
type FirebaseProvider struct {
	AuthClient *auth.Client
}

// FromRequest parses an Authorization header or Cookie as a Firebase JWT token.
func (f *FirebaseProvider) FromRequest(r *http.Request) (Info, error) {
	tokenStr, err := parseRequest(r)
	if err != nil {
		return Info{}, err
	}
	if tokenStr == "" {
		return Info{}, nil
	}

	return f.Verify(r.Context(), tokenStr)
}

// Verify checks a Firebase ID token and returns the user it was issued to.
func (f *FirebaseProvider) Verify(ctx context.Context, idToken string) (Info, error) {
	token, err := f.AuthClient.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	switch {
	case auth.IsIDTokenExpired(err):
		return Info{}, ErrExpired
	case auth.IsIDTokenRevoked(err):
		return Info{}, ErrRevoked
	case err != nil:
		return Info{}, err
	}

	email, _ := token.Claims["email"].(string)

	return Info{
		ID:    token.UID,
		Email: email,
	}, nil
}

// SignOut revokes the user's refresh tokens. ID tokens issued before now stop
// verifying.
func (f *FirebaseProvider) SignOut(ctx context.Context, id string) error {
	return f.AuthClient.RevokeRefreshTokens(ctx, id)
}

func parseRequest(r *http.Request) (string, error) {
	// An explicit Bearer token wins over the session cookie
	auth := r.Header.Get("Authorization")
	if auth == "" {
		cookie, err := r.Cookie(CookieName)
		if err != nil {
			return "", nil
		}
		return cookie.Value, nil
	}

	authParts := strings.Split(auth, " ")
	if len(authParts) != 2 {
		return "", errors.New("malformed Authorization header")
	}

	authType := authParts[0]
	tokenString := authParts[1]

	if authType != "Bearer" {
		return "", fmt.Errorf("unknown auth type %q", authType)
	}

	return tokenString, nil
}
