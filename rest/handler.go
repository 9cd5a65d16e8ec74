// Package rest contains a REST handler for Spark! Bytes. It wraps Service in
// a web-accessible API.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sparkbytes/sparkbytes/auth"
	"github.com/sparkbytes/sparkbytes/errors"
	"github.com/sparkbytes/sparkbytes/log"
	"github.com/sparkbytes/sparkbytes/service"
	"github.com/sparkbytes/sparkbytes/session"
)

// New creates a new REST service wrapping a Spark! Bytes Service. Requests
// are authenticated with provider. Page routes wait up to wait for the
// session before answering with a loading placeholder.
func New(service *service.Service, provider auth.Provider, wait time.Duration) *Handler {
	guard := &session.Guard{
		Auth:  provider,
		Entry: "/",
		Wait:  wait,
	}

	return &Handler{
		Auth: provider,

		SessionHandler: newSessionHandler(service),
		UsersHandler:   newUsersHandler(service),
		EventsHandler:  newEventsHandler(service),
		PagesHandler:   newPagesHandler(service, guard),
	}
}

// Handler is an http.Handler that provides a REST interface for Spark! Bytes.
type Handler struct {
	Auth auth.Provider

	SessionHandler *SessionHandler
	UsersHandler   *UsersHandler
	EventsHandler  *EventsHandler
	PagesHandler   *PagesHandler
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var head string
	head, r.URL.Path = ShiftPath(r.URL.Path)

	switch head {
	case "pages":
		// Pages resolve the session themselves.
		if h.PagesHandler != nil {
			h.PagesHandler.ServeHTTP(w, r)
		} else {
			http.NotFound(w, r)
		}
		return

	case "healthz":
		fmt.Fprintln(w, "ok")
		return

	case "":
		handleJSON(w, r, func(context.Context) (interface{}, error) {
			return entryPage, nil
		})
		return
	}

	// Retrieve the logger from HTTP middleware, if set.
	ctx := r.Context()
	logger := log.FromContext(ctx)

	// Get auth info from the ID token
	user, err := h.Auth.FromRequest(r)
	switch {
	case head == "session" && (err == auth.ErrExpired || err == auth.ErrDomain):
		// Signing in and out verify their own tokens. A stale cookie is
		// replaced or cleared there.
		logger.Info("ignoring stale session cookie", zap.Error(err))
		user = auth.Info{}

	case err == auth.ErrExpired:
		writeErrorResp(w, errors.Response{
			Error:  "auth token expired",
			Status: http.StatusUnauthorized,
		})
		return

	case err == auth.ErrDomain:
		writeErrorResp(w, errors.ResponseForError(errors.E(errors.Rejected, auth.DomainMessage)))
		return

	case err != nil:
		logger.Warn("parse auth failed", zap.Error(err))
	}
	ctx = user.WithContext(ctx)

	// Decorate the logger with the user id
	logger = logger.With(zap.String("userid", user.ID))
	ctx = log.ToContext(ctx, logger)
	r = r.WithContext(ctx)

	switch head {
	case "session":
		if h.SessionHandler != nil {
			h.SessionHandler.ServeHTTP(w, r)
		} else {
			http.NotFound(w, r)
		}

	case "users":
		if h.UsersHandler != nil {
			h.UsersHandler.ServeHTTP(w, r)
		} else {
			http.NotFound(w, r)
		}

	case "events":
		if h.EventsHandler != nil {
			h.EventsHandler.ServeHTTP(w, r)
		} else {
			http.NotFound(w, r)
		}

	default:
		http.NotFound(w, r)
	}
}

// EntryPage is the public landing route. Signed out users are sent here.
type EntryPage struct {
	Name    string `json:"name"`
	SignIn  string `json:"signIn"`
	Pages   string `json:"pages"`
	Message string `json:"message"`
}

var entryPage = EntryPage{
	Name:    "Spark! Bytes",
	SignIn:  "/session",
	Pages:   "/pages/home",
	Message: "Sign in with your university Google account to find free food on campus.",
}

// ShiftPath splits off the first component of p, which will be cleaned of
// relative components before processing. head will never contain a slash and
// tail will always be a rooted path without trailing slash.
func ShiftPath(p string) (head, tail string) {
	p = path.Clean("/" + p)
	i := strings.Index(p[1:], "/") + 1
	if i <= 0 {
		return p[1:], "/"
	}
	return p[1:i], p[i:]
}

func handleJSON(w http.ResponseWriter, r *http.Request, f func(context.Context) (interface{}, error)) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	resp, err := f(ctx)
	if err != nil {
		writeError(w, logger, err)
		return
	}

	js, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		logger.Error("write json failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write(js)
}

// writeError logs err and writes its user-facing response. Store and
// internal failures are logged at error level since their cause isn't shown.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	errResp := errors.ResponseForError(err)
	if errResp.Status >= 500 {
		logger.Error("internal server error", zap.Error(err))
	} else {
		logger.Warn("handler failed", zap.Error(err))
	}
	writeErrorResp(w, errResp)
}

func writeErrorResp(w http.ResponseWriter, resp errors.Response) {
	js, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(resp.Status)
	w.Write(js)
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.E(errors.Invalid, err)
	}
	return nil
}
