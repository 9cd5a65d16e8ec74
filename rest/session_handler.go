package rest

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sparkbytes/sparkbytes"
	"github.com/sparkbytes/sparkbytes/auth"
	"github.com/sparkbytes/sparkbytes/prom"
	"github.com/sparkbytes/sparkbytes/service"
)

// SessionHandler signs users in and out.
type SessionHandler struct {
	http.Handler // router

	service *service.Service
}

func newSessionHandler(service *service.Service) *SessionHandler {
	h := &SessionHandler{
		service: service,
	}

	m := mux.NewRouter()
	m.Handle(
		"/",
		prom.InstrumentHandler("SessionBegin", http.HandlerFunc(h.HandleBegin)),
	).Methods("POST")
	m.Handle(
		"/",
		prom.InstrumentHandler("SessionEnd", http.HandlerFunc(h.HandleEnd)),
	).Methods("DELETE")
	h.Handler = m

	return h
}

// HandleBegin wraps Service.SessionBegin in a REST interface. On success the
// ID token is kept in a cookie so page routes can resolve the session.
func (h *SessionHandler) HandleBegin(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		var req sparkbytes.SessionRequest
		if err := decodeJSON(r, &req); err != nil {
			return nil, err
		}

		sess, err := h.service.SessionBegin(ctx, req)
		if err != nil {
			return nil, err
		}

		http.SetCookie(w, &http.Cookie{
			Name:     auth.CookieName,
			Value:    req.IDToken,
			Path:     "/",
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
		return sess, nil
	})
}

// HandleEnd wraps Service.SessionEnd in a REST interface.
func (h *SessionHandler) HandleEnd(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		if err := h.service.SessionEnd(ctx); err != nil {
			return nil, err
		}

		http.SetCookie(w, &http.Cookie{
			Name:   auth.CookieName,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
		return nil, nil
	})
}
