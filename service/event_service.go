package service

import (
	"bytes"
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sparkbytes/sparkbytes"
	"github.com/sparkbytes/sparkbytes/errors"
	"github.com/sparkbytes/sparkbytes/ics"
	"github.com/sparkbytes/sparkbytes/log"
)

// Event form messages.
const (
	msgLocationRequired = "Please enter a location"
	msgFoodRequired     = "Please describe the food"
	msgDateRequired     = "Please pick a date and time"
	msgDateInvalid      = "Please enter the date as YYYY-MM-DDTHH:MM"
	msgZoneInvalid      = "Please choose a campus section: west, central or east"
	msgNeedsOnboarding  = "Please finish signing up before posting an event"
)

func (s *Service) validateEvent(op errors.Op, in sparkbytes.EventInput) error {
	switch {
	case strings.TrimSpace(in.Location) == "":
		return errors.E(op, errors.Invalid, msgLocationRequired)
	case strings.TrimSpace(in.Food) == "":
		return errors.E(op, errors.Invalid, msgFoodRequired)
	case in.Date == "":
		return errors.E(op, errors.Invalid, msgDateRequired)
	case !in.Zone.Valid():
		return errors.E(op, errors.Invalid, msgZoneInvalid)
	}
	if _, err := sparkbytes.ParseDate(in.Date, s.location()); err != nil {
		return errors.E(op, errors.Invalid, msgDateInvalid)
	}
	return nil
}

// EventCreate posts a new event owned by the current user.
func (s *Service) EventCreate(ctx context.Context, in sparkbytes.EventInput) (sparkbytes.Event, error) {
	const op errors.Op = "Service.EventCreate"

	userID, err := currentUser(ctx, op)
	if err != nil {
		return sparkbytes.Event{}, err
	}
	if err := s.validateEvent(op, in); err != nil {
		return sparkbytes.Event{}, err
	}

	id, err := s.Events.Create(ctx, in, userID)
	if err != nil {
		if id == "" && errors.Is(errors.NotExist, err) {
			return sparkbytes.Event{}, errors.E(op, errors.Invalid, userID, msgNeedsOnboarding)
		}
		if id != "" {
			log.FromContext(ctx).Error("event stored but creator profile not updated",
				zap.String("eventid", string(id)), zap.Error(err))
		}
		return sparkbytes.Event{}, errors.E(op, err)
	}

	event, err := s.Events.Get(ctx, id)
	if err != nil {
		return sparkbytes.Event{}, errors.E(op, userID, err)
	}
	return event, nil
}

// EventGet retrieves one event.
func (s *Service) EventGet(ctx context.Context, id sparkbytes.EventID) (sparkbytes.Event, error) {
	const op errors.Op = "Service.EventGet"

	if _, err := currentUser(ctx, op); err != nil {
		return sparkbytes.Event{}, err
	}

	event, err := s.Events.Get(ctx, id)
	if err != nil {
		return sparkbytes.Event{}, errors.E(op, err)
	}
	return event, nil
}

// owned fetches an event and checks the current user created it.
func (s *Service) owned(ctx context.Context, op errors.Op, id sparkbytes.EventID) (sparkbytes.Event, error) {
	userID, err := currentUser(ctx, op)
	if err != nil {
		return sparkbytes.Event{}, err
	}

	event, err := s.Events.Get(ctx, id)
	if err != nil {
		return sparkbytes.Event{}, errors.E(op, userID, err)
	}
	if event.CreatorID != userID {
		return sparkbytes.Event{}, errors.E(op, errors.Permission, userID)
	}
	return event, nil
}

// EventUpdate overwrites the form fields of an event the current user
// created.
func (s *Service) EventUpdate(ctx context.Context, id sparkbytes.EventID, in sparkbytes.EventInput) (sparkbytes.Event, error) {
	const op errors.Op = "Service.EventUpdate"

	existing, err := s.owned(ctx, op, id)
	if err != nil {
		return sparkbytes.Event{}, err
	}
	if err := s.validateEvent(op, in); err != nil {
		return sparkbytes.Event{}, err
	}

	event, err := s.Events.Update(ctx, id, in, existing.CreatorID, existing.CreatedAt)
	if err != nil {
		return sparkbytes.Event{}, errors.E(op, err)
	}
	return event, nil
}

// EventDelete removes an event the current user created.
func (s *Service) EventDelete(ctx context.Context, id sparkbytes.EventID) error {
	const op errors.Op = "Service.EventDelete"

	existing, err := s.owned(ctx, op, id)
	if err != nil {
		return err
	}
	if err := s.Events.Delete(ctx, id, existing.CreatorID); err != nil {
		return errors.E(op, err)
	}
	return nil
}

// EventList returns the upcoming events the current user should see, in date
// order. Users who haven't onboarded get no automatic dietary matching.
func (s *Service) EventList(ctx context.Context, filter sparkbytes.EventFilter) ([]sparkbytes.Event, error) {
	const op errors.Op = "Service.EventList"

	userID, err := currentUser(ctx, op)
	if err != nil {
		return nil, err
	}

	var (
		viewer sparkbytes.Diet
		events []sparkbytes.Event
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profile, err := s.Profiles.Load(gctx, userID)
		if errors.Is(errors.NotExist, err) {
			return nil
		}
		if err != nil {
			return err
		}
		viewer = profile.Dietary
		return nil
	})
	g.Go(func() error {
		var err error
		events, err = s.Events.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.E(op, userID, err)
	}

	return sparkbytes.Match(events, viewer, filter, s.now()), nil
}

// EventsMine returns the events the current user created, oldest first. Ids in
// the profile that no longer resolve are skipped.
func (s *Service) EventsMine(ctx context.Context) ([]sparkbytes.Event, error) {
	const op errors.Op = "Service.EventsMine"

	userID, err := currentUser(ctx, op)
	if err != nil {
		return nil, err
	}

	profile, err := s.Profiles.Load(ctx, userID)
	if err != nil {
		return nil, errors.E(op, err)
	}

	logger := log.FromContext(ctx)
	found := make([]*sparkbytes.Event, len(profile.Events))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range profile.Events {
		i, id := i, id
		g.Go(func() error {
			event, err := s.Events.Get(gctx, id)
			if errors.Is(errors.NotExist, err) {
				logger.Warn("profile references missing event",
					zap.String("userid", string(userID)), zap.String("eventid", string(id)))
				return nil
			}
			if err != nil {
				return err
			}
			found[i] = &event
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.E(op, userID, err)
	}

	events := make([]sparkbytes.Event, 0, len(found))
	for _, e := range found {
		if e != nil {
			events = append(events, *e)
		}
	}
	return events, nil
}

// EventFeed renders the EventList result as an iCalendar feed.
func (s *Service) EventFeed(ctx context.Context, filter sparkbytes.EventFilter) ([]byte, error) {
	const op errors.Op = "Service.EventFeed"

	events, err := s.EventList(ctx, filter)
	if err != nil {
		return nil, errors.E(op, err)
	}

	feed := ics.Feed{
		Name:     "Spark! Bytes",
		BaseURL:  s.BaseURL,
		Location: s.location(),
		Stamp:    s.now(),
	}
	var buf bytes.Buffer
	if err := feed.Write(&buf, events); err != nil {
		return nil, errors.E(op, errors.Internal, err)
	}
	return buf.Bytes(), nil
}
