package rest

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sparkbytes/sparkbytes"
	"github.com/sparkbytes/sparkbytes/errors"
	"github.com/sparkbytes/sparkbytes/log"
	"github.com/sparkbytes/sparkbytes/prom"
	"github.com/sparkbytes/sparkbytes/service"
)

// EventsHandler provides a REST interface to the event functions.
type EventsHandler struct {
	http.Handler // router

	service *service.Service
}

func newEventsHandler(service *service.Service) *EventsHandler {
	h := &EventsHandler{
		service: service,
	}

	m := mux.NewRouter()
	m.Handle(
		"/",
		prom.InstrumentHandler("EventList", http.HandlerFunc(h.HandleList)),
	).Methods("GET")
	m.Handle(
		"/",
		prom.InstrumentHandler("EventCreate", http.HandlerFunc(h.HandleCreate)),
	).Methods("POST")
	m.Handle(
		"/mine",
		prom.InstrumentHandler("EventsMine", http.HandlerFunc(h.HandleMine)),
	).Methods("GET")
	m.Handle(
		"/feed.ics",
		prom.InstrumentHandler("EventFeed", http.HandlerFunc(h.HandleFeed)),
	).Methods("GET")
	m.Handle(
		"/{id}",
		prom.InstrumentHandler("EventGet", http.HandlerFunc(h.HandleGet)),
	).Methods("GET")
	m.Handle(
		"/{id}",
		prom.InstrumentHandler("EventUpdate", http.HandlerFunc(h.HandleUpdate)),
	).Methods("PUT")
	m.Handle(
		"/{id}",
		prom.InstrumentHandler("EventDelete", http.HandlerFunc(h.HandleDelete)),
	).Methods("DELETE")

	h.Handler = m

	return h
}

// parseFilter reads the filter bar choices from the query string, eg
// ?zone=west&diet=vegan,glutenFree.
func parseFilter(r *http.Request) (sparkbytes.EventFilter, error) {
	var filter sparkbytes.EventFilter

	if zone := sparkbytes.CampusZone(r.FormValue("zone")); zone != "" {
		if !zone.Valid() {
			return filter, errors.E(errors.Invalid, "unknown campus section "+string(zone))
		}
		filter.Zone = zone
	}

	diet, err := sparkbytes.ParseDiet(r.FormValue("diet"))
	if err != nil {
		return filter, errors.E(errors.Invalid, err)
	}
	filter.Dietary = diet

	return filter, nil
}

// HandleList wraps Service.EventList in a REST interface
func (h *EventsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		filter, err := parseFilter(r)
		if err != nil {
			return nil, err
		}
		return h.service.EventList(ctx, filter)
	})
}

// HandleCreate wraps Service.EventCreate in a REST interface
func (h *EventsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		var in sparkbytes.EventInput
		if err := decodeJSON(r, &in); err != nil {
			return nil, err
		}
		return h.service.EventCreate(ctx, in)
	})
}

// HandleMine wraps Service.EventsMine in a REST interface
func (h *EventsHandler) HandleMine(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		return h.service.EventsMine(ctx)
	})
}

// HandleFeed wraps Service.EventFeed. The response is text/calendar.
func (h *EventsHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, log.FromContext(ctx), err)
		return
	}

	feed, err := h.service.EventFeed(ctx, filter)
	if err != nil {
		writeError(w, log.FromContext(ctx), err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Write(feed)
}

// HandleGet wraps Service.EventGet in a REST interface
func (h *EventsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["id"]

	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		return h.service.EventGet(ctx, sparkbytes.EventID(eventID))
	})
}

// HandleUpdate wraps Service.EventUpdate in a REST interface
func (h *EventsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["id"]

	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		var in sparkbytes.EventInput
		if err := decodeJSON(r, &in); err != nil {
			return nil, err
		}
		return h.service.EventUpdate(ctx, sparkbytes.EventID(eventID), in)
	})
}

// HandleDelete wraps Service.EventDelete in a REST interface
func (h *EventsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["id"]

	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		if err := h.service.EventDelete(ctx, sparkbytes.EventID(eventID)); err != nil {
			return nil, err
		}
		return nil, nil
	})
}
