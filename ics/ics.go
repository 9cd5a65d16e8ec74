// Package ics renders event lists as iCalendar feeds.
package ics

import (
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/sparkbytes/sparkbytes"
)

// DefaultDuration is the length given to events in the feed. Listings only
// carry a start time.
const DefaultDuration = time.Hour

// Feed describes a calendar.
type Feed struct {
	Name string
	// BaseURL, if set, is used to link each event to its listing page.
	BaseURL string
	// Location reads event dates that carry no offset.
	Location *time.Location
	// Stamp is written as DTSTAMP on every event.
	Stamp time.Time
}

// Write renders events to w. Events whose date can't be parsed are skipped.
func (f Feed) Write(w io.Writer, events []sparkbytes.Event) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//Spark! Bytes//Events//EN")
	if f.Name != "" {
		cal.SetXWRCalName(f.Name)
	}

	for _, e := range events {
		start, err := sparkbytes.ParseDate(e.Date, f.Location)
		if err != nil {
			continue
		}

		ve := cal.AddEvent(string(e.ID) + "@sparkbytes")
		ve.SetDtStampTime(f.Stamp)
		if !e.CreatedAt.IsZero() {
			ve.SetCreatedTime(e.CreatedAt)
		}
		ve.SetStartAt(start)
		ve.SetEndAt(start.Add(DefaultDuration))
		ve.SetSummary(summary(e))
		ve.SetLocation(e.Location)
		ve.SetDescription(description(e))
		if f.BaseURL != "" {
			ve.SetURL(strings.TrimSuffix(f.BaseURL, "/") + "/listing/" + string(e.ID))
		}
	}

	_, err := io.WriteString(w, cal.Serialize())
	return err
}

func summary(e sparkbytes.Event) string {
	if e.Location == "" {
		return e.Food
	}
	return e.Food + " @ " + e.Location
}

func description(e sparkbytes.Event) string {
	var lines []string
	if e.Zone != "" {
		lines = append(lines, "Campus: "+string(e.Zone))
	}
	if e.Dietary.Restricted() {
		lines = append(lines, "Dietary: "+e.Dietary.String())
	}
	if e.ExtraInfo != "" {
		lines = append(lines, e.ExtraInfo)
	}
	return strings.Join(lines, "\n")
}
