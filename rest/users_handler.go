package rest

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sparkbytes/sparkbytes"
	"github.com/sparkbytes/sparkbytes/prom"
	"github.com/sparkbytes/sparkbytes/service"
)

// UsersHandler provides a REST interface to the profile functions. Users can
// only see and change their own profile, at /users/me.
type UsersHandler struct {
	http.Handler // router

	service *service.Service
}

func newUsersHandler(service *service.Service) *UsersHandler {
	h := &UsersHandler{
		service: service,
	}

	m := mux.NewRouter()
	m.Handle(
		"/",
		prom.InstrumentHandler("ProfileOnboard", http.HandlerFunc(h.HandleOnboard)),
	).Methods("POST")
	m.Handle(
		"/me",
		prom.InstrumentHandler("ProfileGet", http.HandlerFunc(h.HandleGet)),
	).Methods("GET")
	m.Handle(
		"/me",
		prom.InstrumentHandler("ProfileUpdate", http.HandlerFunc(h.HandleUpdate)),
	).Methods("PUT")
	h.Handler = m

	return h
}

// HandleOnboard wraps Service.ProfileOnboard in a REST interface
func (h *UsersHandler) HandleOnboard(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		var in sparkbytes.ProfileInput
		if err := decodeJSON(r, &in); err != nil {
			return nil, err
		}
		return h.service.ProfileOnboard(ctx, in)
	})
}

// HandleUpdate wraps Service.ProfileUpdate in a REST interface
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		var in sparkbytes.ProfileInput
		if err := decodeJSON(r, &in); err != nil {
			return nil, err
		}
		return h.service.ProfileUpdate(ctx, in)
	})
}

// HandleGet wraps Service.ProfileGet in a REST interface
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		return h.service.ProfileGet(ctx)
	})
}
