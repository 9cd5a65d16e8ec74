package rest

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sparkbytes/sparkbytes"
	"github.com/sparkbytes/sparkbytes/auth"
	"github.com/sparkbytes/sparkbytes/errors"
	"github.com/sparkbytes/sparkbytes/prom"
	"github.com/sparkbytes/sparkbytes/service"
	"github.com/sparkbytes/sparkbytes/session"
)

// PagesHandler serves the view models of the signed in pages. Every route
// is behind a session.Guard: signed out visitors are redirected to the entry
// route before any page data is fetched.
type PagesHandler struct {
	http.Handler

	service *service.Service
}

func newPagesHandler(service *service.Service, guard *session.Guard) *PagesHandler {
	h := &PagesHandler{
		service: service,
	}

	m := mux.NewRouter()
	m.Handle("/home", prom.InstrumentHandler("PageHome", http.HandlerFunc(h.HandleHome))).Methods("GET")
	m.Handle("/events", prom.InstrumentHandler("PageEvents", http.HandlerFunc(h.HandleEvents))).Methods("GET")
	m.Handle("/profile", prom.InstrumentHandler("PageProfile", http.HandlerFunc(h.HandleProfile))).Methods("GET")
	m.Handle("/listing/{id}", prom.InstrumentHandler("PageListing", http.HandlerFunc(h.HandleListing))).Methods("GET")

	h.Handler = guard.Protect(m)

	return h
}

// HomePage is the landing page after sign-in.
type HomePage struct {
	Title           string `json:"title"`
	Message         string `json:"message"`
	Email           string `json:"email"`
	NeedsOnboarding bool   `json:"needsOnboarding"`
}

// EventsPage lists upcoming events with the filter bar state.
type EventsPage struct {
	Filter sparkbytes.EventFilter  `json:"filter"`
	Zones  []sparkbytes.CampusZone `json:"zones"`
	Flags  []string                `json:"flags"`
	Events []sparkbytes.Event       `json:"events"`
}

// ProfilePage shows the user's profile and the events they posted.
type ProfilePage struct {
	Profile sparkbytes.UserProfile `json:"profile"`
	Events  []sparkbytes.Event     `json:"events"`
}

// ListingPage shows a single event.
type ListingPage struct {
	Event sparkbytes.Event `json:"event"`
	// Mine is set when the viewer created the event and may edit it.
	Mine bool `json:"mine"`
}

// HandleHome serves /pages/home.
func (h *PagesHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		page := HomePage{
			Title:   "Welcome to Spark! Bytes",
			Message: "Discover free food and events happening on campus.",
			Email:   auth.User(ctx).Email,
		}

		_, err := h.service.ProfileGet(ctx)
		switch {
		case errors.Is(errors.NotExist, err):
			page.NeedsOnboarding = true
		case err != nil:
			return nil, err
		}
		return page, nil
	})
}

// HandleEvents serves /pages/events.
func (h *PagesHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		filter, err := parseFilter(r)
		if err != nil {
			return nil, err
		}

		events, err := h.service.EventList(ctx, filter)
		if err != nil {
			return nil, err
		}

		flags := make([]string, len(sparkbytes.Flags))
		for i, f := range sparkbytes.Flags {
			flags[i] = f.String()
		}
		return EventsPage{
			Filter: filter,
			Zones:  []sparkbytes.CampusZone{sparkbytes.West, sparkbytes.Central, sparkbytes.East},
			Flags:  flags,
			Events: events,
		}, nil
	})
}

// HandleProfile serves /pages/profile.
func (h *PagesHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		profile, err := h.service.ProfileGet(ctx)
		if err != nil {
			return nil, err
		}
		events, err := h.service.EventsMine(ctx)
		if err != nil {
			return nil, err
		}
		return ProfilePage{Profile: profile, Events: events}, nil
	})
}

// HandleListing serves /pages/listing/{id}.
func (h *PagesHandler) HandleListing(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["id"]

	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		event, err := h.service.EventGet(ctx, sparkbytes.EventID(eventID))
		if err != nil {
			return nil, err
		}
		mine := event.CreatorID == sparkbytes.UserID(auth.User(ctx).ID)
		return ListingPage{Event: event, Mine: mine}, nil
	})
}
