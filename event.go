package sparkbytes

import (
	"fmt"
	"time"
)

// EventID is generated by the event store when an event is created.
type EventID string

// CampusZone is the section of campus an event happens in.
type CampusZone string

// Campus zones.
const (
	West    CampusZone = "west"
	Central CampusZone = "central"
	East    CampusZone = "east"
)

// Valid reports whether z is one of the known zones.
func (z CampusZone) Valid() bool {
	switch z {
	case West, Central, East:
		return true
	}
	return false
}

// Event is a free food listing posted by a user.
type Event struct {
	ID       EventID    `json:"id"`
	Location string     `json:"location"`
	Food     string     `json:"food"`
	Date     string     `json:"date"`
	Zone     CampusZone `json:"campusSection"`
	// ExtraInfo is optional free text shown under the listing.
	ExtraInfo string `json:"extraInfo"`
	Dietary   Diet   `json:"dietary"`

	CreatorID UserID    `json:"creator"`
	CreatedAt time.Time `json:"createdAt"`
}

// EventInput holds the fields of the event form. Creating or updating an
// event always writes every field.
type EventInput struct {
	Location  string     `json:"location"`
	Food      string     `json:"food"`
	Date      string     `json:"date"`
	Zone      CampusZone `json:"campusSection"`
	ExtraInfo string     `json:"extraInfo"`
	Dietary   Diet       `json:"dietary"`
}

// EventFilter narrows an event list with the choices made in the filter bar.
// The zero value doesn't filter anything.
type EventFilter struct {
	// Zone, if set, keeps only events in that zone.
	Zone CampusZone `json:"campusSection"`
	// Dietary keeps only events that have every selected flag. None is
	// ignored.
	Dietary Diet `json:"dietary"`
}

// Input returns the form fields of e.
func (e Event) Input() EventInput {
	return EventInput{
		Location:  e.Location,
		Food:      e.Food,
		Date:      e.Date,
		Zone:      e.Zone,
		ExtraInfo: e.ExtraInfo,
		Dietary:   e.Dietary,
	}
}

// dateLayouts are the accepted forms of Event.Date. The form sends
// "datetime-local" values without a zone.
var dateLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// ParseDate parses an event date. Dates without an offset are read in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
