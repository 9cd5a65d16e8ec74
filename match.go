package sparkbytes

import (
	"sort"
	"time"
)

// Match picks the events to show a viewer and orders them by date.
//
// Events that aren't strictly after now are dropped, as are events whose
// date can't be parsed. If the viewer has dietary restrictions, an event must
// share at least one of them. The filter then narrows by zone and requires
// every selected dietary flag. Dates without an offset are read in now's
// location. Events with equal dates keep their input order.
//
// The input slice is not modified.
func Match(events []Event, viewer Diet, filter EventFilter, now time.Time) []Event {
	type dated struct {
		event Event
		at    time.Time
	}

	loc := now.Location()
	var kept []dated
	for _, e := range events {
		at, err := ParseDate(e.Date, loc)
		if err != nil || !at.After(now) {
			continue
		}
		if viewer.Restricted() && !e.Dietary.SharesAny(viewer) {
			continue
		}
		if filter.Zone != "" && e.Zone != filter.Zone {
			continue
		}
		if !e.Dietary.Covers(filter.Dietary) {
			continue
		}
		kept = append(kept, dated{e, at})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].at.Before(kept[j].at)
	})

	out := make([]Event, len(kept))
	for i, d := range kept {
		out[i] = d.event
	}
	return out
}
