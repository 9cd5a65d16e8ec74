// Package memstore keeps users and events in process memory. It backs local
// development and tests.
package memstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/sparkbytes/sparkbytes"
	"github.com/sparkbytes/sparkbytes/errors"
	"github.com/sparkbytes/sparkbytes/store"
)

// Store implements store.Profiles and store.Events. Records are kept as
// JSON so callers never share memory with the store, like a hosted store.
type Store struct {
	mu       sync.RWMutex
	profiles map[sparkbytes.UserID][]byte
	events   map[sparkbytes.EventID][]byte

	// Fail, if set, is returned by every call. Tests use it to simulate an
	// unreachable store.
	Fail error
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		profiles: map[sparkbytes.UserID][]byte{},
		events:   map[sparkbytes.EventID][]byte{},
	}
}

func (s *Store) fail() error {
	if s.Fail != nil {
		return errors.E(errors.Unavailable, s.Fail)
	}
	return nil
}

// GetProfile implements store.Profiles.
func (s *Store) GetProfile(ctx context.Context, id sparkbytes.UserID) (store.ProfileRecord, error) {
	var rec store.ProfileRecord
	if err := s.fail(); err != nil {
		return rec, err
	}

	s.mu.RLock()
	js, ok := s.profiles[id]
	s.mu.RUnlock()
	if !ok {
		return rec, errors.E(errors.NotExist)
	}
	if err := json.Unmarshal(js, &rec); err != nil {
		return rec, errors.E(errors.Internal, err)
	}
	return rec, nil
}

// PutProfile implements store.Profiles.
func (s *Store) PutProfile(ctx context.Context, id sparkbytes.UserID, rec store.ProfileRecord) error {
	if err := s.fail(); err != nil {
		return err
	}
	js, err := json.Marshal(rec)
	if err != nil {
		return errors.E(errors.Internal, err)
	}

	s.mu.Lock()
	s.profiles[id] = js
	s.mu.Unlock()
	return nil
}

// ListProfiles implements store.Profiles.
func (s *Store) ListProfiles(ctx context.Context) (map[sparkbytes.UserID]store.ProfileRecord, error) {
	if err := s.fail(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[sparkbytes.UserID]store.ProfileRecord, len(s.profiles))
	for id, js := range s.profiles {
		var rec store.ProfileRecord
		if err := json.Unmarshal(js, &rec); err != nil {
			return nil, errors.E(errors.Internal, err)
		}
		out[id] = rec
	}
	return out, nil
}

// InsertEvent implements store.Events.
func (s *Store) InsertEvent(ctx context.Context, rec store.EventRecord) (sparkbytes.EventID, error) {
	id := sparkbytes.EventID(uuid.NewString())
	if err := s.PutEvent(ctx, id, rec); err != nil {
		return "", err
	}
	return id, nil
}

// GetEvent implements store.Events.
func (s *Store) GetEvent(ctx context.Context, id sparkbytes.EventID) (store.EventRecord, error) {
	var rec store.EventRecord
	if err := s.fail(); err != nil {
		return rec, err
	}

	s.mu.RLock()
	js, ok := s.events[id]
	s.mu.RUnlock()
	if !ok {
		return rec, errors.E(errors.NotExist)
	}
	if err := json.Unmarshal(js, &rec); err != nil {
		return rec, errors.E(errors.Internal, err)
	}
	return rec, nil
}

// PutEvent implements store.Events.
func (s *Store) PutEvent(ctx context.Context, id sparkbytes.EventID, rec store.EventRecord) error {
	if err := s.fail(); err != nil {
		return err
	}
	js, err := json.Marshal(rec)
	if err != nil {
		return errors.E(errors.Internal, err)
	}

	s.mu.Lock()
	s.events[id] = js
	s.mu.Unlock()
	return nil
}

// RemoveEvent implements store.Events. Removing a missing event is not an
// error, as with hosted stores.
func (s *Store) RemoveEvent(ctx context.Context, id sparkbytes.EventID) error {
	if err := s.fail(); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.events, id)
	s.mu.Unlock()
	return nil
}

// ListEvents implements store.Events. There's no index to order by so
// events are sorted here, by date string and then id.
func (s *Store) ListEvents(ctx context.Context) ([]sparkbytes.Event, error) {
	if err := s.fail(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	events := make([]sparkbytes.Event, 0, len(s.events))
	for id, js := range s.events {
		var rec store.EventRecord
		if err := json.Unmarshal(js, &rec); err != nil {
			s.mu.RUnlock()
			return nil, errors.E(errors.Internal, err)
		}
		events = append(events, rec.Event(id))
	}
	s.mu.RUnlock()

	sort.Slice(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		return events[i].ID < events[j].ID
	})
	return events, nil
}
