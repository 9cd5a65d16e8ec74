package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DevProvider accepts HS256 tokens signed with a shared secret. It stands in
// for Firebase when running locally against the in-memory store.
type DevProvider struct {
	Secret []byte
}

// DevClaims are the claims carried by development tokens.
type DevClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Mint creates a development token for the given user.
func (d *DevProvider) Mint(id, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := DevClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(d.Secret)
}

// FromRequest reads a development token from the jwt cookie or the
// Authorization header.
func (d *DevProvider) FromRequest(r *http.Request) (Info, error) {
	tokenStr, err := parseRequest(r)
	if err != nil {
		return Info{}, err
	}
	if tokenStr == "" {
		return Info{}, nil
	}
	return d.Verify(r.Context(), tokenStr)
}

// Verify parses and validates a development token.
func (d *DevProvider) Verify(ctx context.Context, idToken string) (Info, error) {
	var claims DevClaims
	_, err := jwt.ParseWithClaims(idToken, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return d.Secret, nil
	})
	if errors.Is(err, jwt.ErrTokenExpired) {
		return Info{}, ErrExpired
	}
	if err != nil {
		return Info{}, err
	}
	if claims.Subject == "" {
		return Info{}, errors.New("token has no subject")
	}

	return Info{
		ID:    claims.Subject,
		Email: claims.Email,
	}, nil
}

// SignOut is a no-op. Development tokens simply expire.
func (d *DevProvider) SignOut(ctx context.Context, id string) error {
	return nil
}
