package session

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sparkbytes/sparkbytes/auth"
	"github.com/sparkbytes/sparkbytes/log"
)

// Outcome is the state of a guarded route.
type Outcome int

// Route states. Authorized and Redirecting are terminal.
const (
	Pending Outcome = iota
	Authorized
	Redirecting
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Authorized:
		return "authorized"
	case Redirecting:
		return "redirecting"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Route is the state machine of one guarded mount.
type Route struct {
	mu      sync.Mutex
	outcome Outcome
}

// Step feeds a session state into the route and returns the new outcome.
// Once the route leaves Pending later states are ignored.
func (r *Route) Step(s State) Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.outcome != Pending || s.Resolving {
		return r.outcome
	}
	if s.User == nil {
		r.outcome = Redirecting
	} else {
		r.outcome = Authorized
	}
	return r.outcome
}

// Outcome returns the current outcome.
func (r *Route) Outcome() Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outcome
}

// DefaultWait is how long Guard waits for the session before answering with
// the loading placeholder.
const DefaultWait = 3 * time.Second

// Guard protects page views. Requests without a signed in user are sent to
// Entry.
type Guard struct {
	Auth auth.Provider
	// Entry is the public route signed out users are redirected to.
	Entry string
	// Wait bounds how long a request waits for the session to resolve.
	Wait time.Duration
}

// Protect wraps view. The view only runs for signed in users, with the user
// attached to the request context; everything else about the request is
// passed through.
func (g *Guard) Protect(view http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.FromContext(r.Context())

		cell, errc := Resolve(g.Auth, r)
		gate := Mount(cell)
		defer gate.Unmount()

		wait := g.Wait
		if wait <= 0 {
			wait = DefaultWait
		}
		timer := time.NewTimer(wait)
		defer timer.Stop()

		var route Route
		select {
		case <-gate.Resolved():
			if err := <-errc; err != nil {
				logger.Warn("session resolve failed", zap.Error(err))
			}
		case <-timer.C:
		case <-r.Context().Done():
			return
		}

		state := gate.State()
		switch route.Step(state) {
		case Pending:
			w.Header().Set("Retry-After", "1")
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusAccepted)
			fmt.Fprint(w, "Loading...")

		case Redirecting:
			entry := g.Entry
			if entry == "" {
				entry = "/"
			}
			// No body: nothing of the page is rendered.
			w.Header().Set("Location", entry)
			w.WriteHeader(http.StatusFound)

		case Authorized:
			user := *state.User
			logger = logger.With(zap.String("userid", user.ID))
			ctx := user.WithContext(r.Context())
			ctx = log.ToContext(ctx, logger)
			view.ServeHTTP(w, r.WithContext(ctx))
		}
	})
}
