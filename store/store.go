package store

import (
	"context"
	"time"

	"github.com/sparkbytes/sparkbytes"
	"github.com/sparkbytes/sparkbytes/clock"
	"github.com/sparkbytes/sparkbytes/errors"
)

// Profiles is a backend holding users/{userID}.
//
// Get returns an errors.NotExist error when there's no record. Other
// failures should be errors.Unavailable.
type Profiles interface {
	GetProfile(ctx context.Context, id sparkbytes.UserID) (ProfileRecord, error)
	// PutProfile overwrites the whole record.
	PutProfile(ctx context.Context, id sparkbytes.UserID, rec ProfileRecord) error
	ListProfiles(ctx context.Context) (map[sparkbytes.UserID]ProfileRecord, error)
}

// Events is a backend holding events/{eventID}.
type Events interface {
	// InsertEvent writes rec under a newly generated id.
	InsertEvent(ctx context.Context, rec EventRecord) (sparkbytes.EventID, error)
	GetEvent(ctx context.Context, id sparkbytes.EventID) (EventRecord, error)
	// PutEvent overwrites the whole record.
	PutEvent(ctx context.Context, id sparkbytes.EventID, rec EventRecord) error
	RemoveEvent(ctx context.Context, id sparkbytes.EventID) error
	// ListEvents returns every event ordered by date, ascending.
	ListEvents(ctx context.Context) ([]sparkbytes.Event, error)
}

// ProfileStore reads and writes user profiles.
type ProfileStore struct {
	Profiles Profiles
}

// Load fetches a profile. If the user hasn't finished onboarding the error
// is errors.NotExist.
func (s *ProfileStore) Load(ctx context.Context, id sparkbytes.UserID) (sparkbytes.UserProfile, error) {
	const op errors.Op = "ProfileStore.Load"

	rec, err := s.Profiles.GetProfile(ctx, id)
	if err != nil {
		return sparkbytes.UserProfile{}, errors.E(op, id, err)
	}
	return rec.Profile(id), nil
}

// Save overwrites the profile's record. Fields left empty in p are stored
// empty: callers pass the complete profile.
func (s *ProfileStore) Save(ctx context.Context, p sparkbytes.UserProfile) error {
	const op errors.Op = "ProfileStore.Save"

	if p.ID == "" {
		return errors.E(op, errors.Invalid, "profile has no id")
	}
	if err := s.Profiles.PutProfile(ctx, p.ID, NewProfileRecord(p)); err != nil {
		return errors.E(op, p.ID, err)
	}
	return nil
}

// List returns every profile. It's used by the consistency audit.
func (s *ProfileStore) List(ctx context.Context) ([]sparkbytes.UserProfile, error) {
	const op errors.Op = "ProfileStore.List"

	recs, err := s.Profiles.ListProfiles(ctx)
	if err != nil {
		return nil, errors.E(op, err)
	}
	profiles := make([]sparkbytes.UserProfile, 0, len(recs))
	for id, rec := range recs {
		profiles = append(profiles, rec.Profile(id))
	}
	return profiles, nil
}

// EventRepository reads and writes events and keeps each creator's event
// list in step.
//
// Create and Delete write the event and then the creator's profile as two
// separate steps. If the profile write fails, or another writer changes the
// profile between its read and write, the profile's list and the events
// collection disagree. This is the one place both writes are sequenced.
type EventRepository struct {
	Events   Events
	Profiles *ProfileStore
	Clock    clock.Clock
}

func (r *EventRepository) now() time.Time {
	if r.Clock == nil {
		return time.Now().UTC().Truncate(time.Millisecond)
	}
	return r.Clock.Now().UTC().Truncate(time.Millisecond)
}

// Create stores a new event and appends its id to the creator's profile.
// The creator must have a profile: if Load fails nothing is written and the
// returned id is empty.
func (r *EventRepository) Create(ctx context.Context, in sparkbytes.EventInput, creatorID sparkbytes.UserID) (sparkbytes.EventID, error) {
	const op errors.Op = "EventRepository.Create"

	profile, err := r.Profiles.Load(ctx, creatorID)
	if err != nil {
		return "", errors.E(op, creatorID, err)
	}

	event := eventFromInput(in, creatorID, r.now())
	id, err := r.Events.InsertEvent(ctx, NewEventRecord(event))
	if err != nil {
		return "", errors.E(op, creatorID, err)
	}

	profile.Events = append(profile.Events, id)
	if err := r.Profiles.Save(ctx, profile); err != nil {
		return id, errors.E(op, creatorID, err)
	}

	return id, nil
}

// List returns every event ordered by date.
func (r *EventRepository) List(ctx context.Context) ([]sparkbytes.Event, error) {
	const op errors.Op = "EventRepository.List"

	events, err := r.Events.ListEvents(ctx)
	if err != nil {
		return nil, errors.E(op, err)
	}
	return events, nil
}

// Get fetches one event.
func (r *EventRepository) Get(ctx context.Context, id sparkbytes.EventID) (sparkbytes.Event, error) {
	const op errors.Op = "EventRepository.Get"

	rec, err := r.Events.GetEvent(ctx, id)
	if err != nil {
		return sparkbytes.Event{}, errors.E(op, err)
	}
	return rec.Event(id), nil
}

// Update overwrites an event with new form fields. The creator and the
// original creation time are kept; a zero expectedCreatedAt is replaced by
// the current time.
func (r *EventRepository) Update(ctx context.Context, id sparkbytes.EventID, in sparkbytes.EventInput, creatorID sparkbytes.UserID, expectedCreatedAt time.Time) (sparkbytes.Event, error) {
	const op errors.Op = "EventRepository.Update"

	createdAt := expectedCreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
	}
	event := eventFromInput(in, creatorID, createdAt)
	event.ID = id

	if err := r.Events.PutEvent(ctx, id, NewEventRecord(event)); err != nil {
		return sparkbytes.Event{}, errors.E(op, creatorID, err)
	}
	return event, nil
}

// Delete removes an event and drops its id from the creator's profile.
func (r *EventRepository) Delete(ctx context.Context, id sparkbytes.EventID, creatorID sparkbytes.UserID) error {
	const op errors.Op = "EventRepository.Delete"

	if err := r.Events.RemoveEvent(ctx, id); err != nil {
		return errors.E(op, creatorID, err)
	}

	profile, err := r.Profiles.Load(ctx, creatorID)
	if err != nil {
		return errors.E(op, creatorID, err)
	}
	kept := make([]sparkbytes.EventID, 0, len(profile.Events))
	for _, e := range profile.Events {
		if e != id {
			kept = append(kept, e)
		}
	}
	profile.Events = kept
	if err := r.Profiles.Save(ctx, profile); err != nil {
		return errors.E(op, creatorID, err)
	}

	return nil
}

func eventFromInput(in sparkbytes.EventInput, creatorID sparkbytes.UserID, createdAt time.Time) sparkbytes.Event {
	return sparkbytes.Event{
		Location:  in.Location,
		Food:      in.Food,
		Date:      in.Date,
		Zone:      in.Zone,
		ExtraInfo: in.ExtraInfo,
		Dietary:   in.Dietary,
		CreatorID: creatorID,
		CreatedAt: createdAt,
	}
}
