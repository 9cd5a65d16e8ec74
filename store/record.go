// Package store defines how user and event records are kept in a hosted
// document store, and sequences the writes that touch both collections.
package store

import (
	"time"

	"github.com/sparkbytes/sparkbytes"
)

// Collection names. Records live at users/{userID} and events/{eventID}.
const (
	UsersPath  = "users"
	EventsPath = "events"
)

// ProfileRecord is the document stored at users/{userID}. The ID is the key,
// not a field.
type ProfileRecord struct {
	Name      string               `json:"name"`
	Email     string               `json:"email"`
	Dietary   sparkbytes.Diet      `json:"dietary"`
	Events    []sparkbytes.EventID `json:"events,omitempty"`
	CreatedAt string               `json:"createdAt,omitempty"`
}

// EventRecord is the document stored at events/{eventID}.
type EventRecord struct {
	Location      string                `json:"location"`
	Food          string                `json:"food"`
	Date          string                `json:"date"`
	ExtraInfo     string                `json:"extraInfo"`
	CampusSection sparkbytes.CampusZone `json:"campusSection"`
	Dietary       sparkbytes.Diet       `json:"dietary"`
	Creator       sparkbytes.UserID     `json:"creator"`
	CreatedAt     string                `json:"createdAt"`
}

// Timestamps are written the way browsers print Date.toISOString.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// NewProfileRecord converts a profile to its stored form.
func NewProfileRecord(p sparkbytes.UserProfile) ProfileRecord {
	return ProfileRecord{
		Name:      p.Name,
		Email:     p.Email,
		Dietary:   p.Dietary,
		Events:    p.Events,
		CreatedAt: formatTimestamp(p.CreatedAt),
	}
}

// Profile converts a stored record back into a profile.
func (r ProfileRecord) Profile(id sparkbytes.UserID) sparkbytes.UserProfile {
	events := r.Events
	if events == nil {
		events = []sparkbytes.EventID{}
	}
	return sparkbytes.UserProfile{
		ID:        id,
		Name:      r.Name,
		Email:     r.Email,
		Dietary:   r.Dietary,
		Events:    events,
		CreatedAt: parseTimestamp(r.CreatedAt),
	}
}

// NewEventRecord converts an event to its stored form.
func NewEventRecord(e sparkbytes.Event) EventRecord {
	return EventRecord{
		Location:      e.Location,
		Food:          e.Food,
		Date:          e.Date,
		ExtraInfo:     e.ExtraInfo,
		CampusSection: e.Zone,
		Dietary:       e.Dietary,
		Creator:       e.CreatorID,
		CreatedAt:     formatTimestamp(e.CreatedAt),
	}
}

// Event converts a stored record back into an event.
func (r EventRecord) Event(id sparkbytes.EventID) sparkbytes.Event {
	return sparkbytes.Event{
		ID:        id,
		Location:  r.Location,
		Food:      r.Food,
		Date:      r.Date,
		Zone:      r.CampusSection,
		ExtraInfo: r.ExtraInfo,
		Dietary:   r.Dietary,
		CreatorID: r.Creator,
		CreatedAt: parseTimestamp(r.CreatedAt),
	}
}
