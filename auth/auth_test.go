package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestInDomain(t *testing.T) {
	for _, test := range []struct {
		Email, Domain string
		Want          bool
	}{
		{"rhett@bu.edu", "bu.edu", true},
		{"Rhett@BU.EDU", "bu.edu", true},
		{"rhett@bu.edu", "@bu.edu", true},
		{"rhett@cs.bu.edu", "bu.edu", false},
		{"rhett@notbu.edu", "bu.edu", false},
		{"rhett@gmail.com", "bu.edu", false},
		{"", "bu.edu", false},
		{"anyone@gmail.com", "", true},
	} {
		if got := InDomain(test.Email, test.Domain); got != test.Want {
			t.Errorf("InDomain(%q, %q) = %v, want %v", test.Email, test.Domain, got, test.Want)
		}
	}
}

func TestSignInMessagesAreDistinct(t *testing.T) {
	seen := map[string]string{}
	for _, code := range []string{CodePopupClosed, CodePopupBlocked, CodeCancelledPopup, CodeTooManyRequests, "auth/unknown"} {
		msg := SignInMessage(code)
		if msg == "" {
			t.Errorf("SignInMessage(%q) is empty", code)
		}
		if other, ok := seen[msg]; ok {
			t.Errorf("SignInMessage(%q) = SignInMessage(%q) = %q", code, other, msg)
		}
		seen[msg] = code
	}
}

func TestDevProviderRoundTrip(t *testing.T) {
	p := &DevProvider{Secret: []byte("secret")}

	tok, err := p.Mint("user1", "user1@bu.edu", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest("GET", "/events", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	info, err := p.FromRequest(r)
	if err != nil {
		t.Fatalf("FromRequest(): %v", err)
	}
	if got, want := info, (Info{ID: "user1", Email: "user1@bu.edu"}); got != want {
		t.Errorf("FromRequest() = %+v, want %+v", got, want)
	}

	expired, err := p.Mint("user1", "user1@bu.edu", -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Verify(context.Background(), expired); err != ErrExpired {
		t.Errorf("Verify(expired) err = %v, want %v", err, ErrExpired)
	}

	other := &DevProvider{Secret: []byte("other")}
	if _, err := other.Verify(context.Background(), tok); err == nil {
		t.Error("Verify() with wrong secret succeeded")
	}
}

func TestRestrict(t *testing.T) {
	p := &DevProvider{Secret: []byte("secret")}
	restricted := Restrict(p, "bu.edu")

	for _, test := range []struct {
		Email   string
		WantID  string
		WantErr error
	}{
		{"user1@bu.edu", "user1", nil},
		{"user1@gmail.com", "", ErrDomain},
	} {
		tok, err := p.Mint("user1", test.Email, time.Hour)
		if err != nil {
			t.Fatal(err)
		}
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", "Bearer "+tok)

		info, err := restricted.FromRequest(r)
		if err != test.WantErr {
			t.Errorf("%s: err = %v, want %v", test.Email, err, test.WantErr)
		}
		if info.ID != test.WantID {
			t.Errorf("%s: ID = %q, want %q", test.Email, info.ID, test.WantID)
		}
	}

	// anonymous requests pass through untouched
	info, err := restricted.FromRequest(httptest.NewRequest("GET", "/", nil))
	if err != nil || info.ID != "" {
		t.Errorf("anonymous FromRequest() = %+v, %v", info, err)
	}
}

func TestParseRequest(t *testing.T) {
	for _, test := range []struct {
		Name   string
		Header string
		Cookie string
		Want   string
	}{
		{"anonymous", "", "", ""},
		{"cookie", "", "from-cookie", "from-cookie"},
		{"bearer", "Bearer from-header", "", "from-header"},
		{"bearer wins over cookie", "Bearer from-header", "from-cookie", "from-header"},
	} {
		r := httptest.NewRequest("GET", "/events", nil)
		if test.Header != "" {
			r.Header.Set("Authorization", test.Header)
		}
		if test.Cookie != "" {
			r.AddCookie(&http.Cookie{Name: CookieName, Value: test.Cookie})
		}
		got, err := parseRequest(r)
		if err != nil {
			t.Errorf("%s: parseRequest(): %v", test.Name, err)
			continue
		}
		if got != test.Want {
			t.Errorf("%s: parseRequest() = %q, want %q", test.Name, got, test.Want)
		}
	}

	r := httptest.NewRequest("GET", "/events", nil)
	r.Header.Set("Authorization", "Basic abc")
	if _, err := parseRequest(r); err == nil {
		t.Error("parseRequest(Basic) err = nil, want error")
	}
}
