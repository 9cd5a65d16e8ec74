package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrDomain is returned for identities whose email is outside the allowed
// domain.
var ErrDomain = errors.New("email domain not allowed")

// InDomain reports whether email belongs to domain, eg "bu.edu". Subdomains
// don't count. An empty domain allows everything.
func InDomain(email, domain string) bool {
	if domain == "" {
		return true
	}
	domain = strings.ToLower(strings.TrimPrefix(domain, "@"))
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(email)), "@"+domain)
}

// Restrict wraps a provider so that requests from identities outside domain
// resolve to no user and ErrDomain.
func Restrict(p Provider, domain string) Provider {
	return restricted{p, domain}
}

type restricted struct {
	Provider
	domain string
}

func (r restricted) FromRequest(req *http.Request) (Info, error) {
	info, err := r.Provider.FromRequest(req)
	if err != nil || info.ID == "" {
		return info, err
	}
	if !InDomain(info.Email, r.domain) {
		return Info{}, ErrDomain
	}
	return info, nil
}

// Verify passes through to the wrapped provider when it's also a Verifier.
// The domain check for sign-in happens in the service so the user can be
// signed out.
func (r restricted) Verify(ctx context.Context, idToken string) (Info, error) {
	v, ok := r.Provider.(Verifier)
	if !ok {
		return Info{}, errors.New("provider can't verify tokens")
	}
	return v.Verify(ctx, idToken)
}

func (r restricted) SignOut(ctx context.Context, id string) error {
	v, ok := r.Provider.(Verifier)
	if !ok {
		return nil
	}
	return v.SignOut(ctx, id)
}
