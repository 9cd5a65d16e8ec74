// Package rtdb stores user and event records in the Firebase Realtime
// Database, the hosted store the web client reads as well.
package rtdb

import (
	"context"

	"firebase.google.com/go/v4/db"
	"firebase.google.com/go/v4/errorutils"

	"github.com/sparkbytes/sparkbytes"
	"github.com/sparkbytes/sparkbytes/errors"
	"github.com/sparkbytes/sparkbytes/store"
)

// rtdbErr converts a database client error into a sparkbytes domain error.
// Apart from missing records every failure, including cancellation and
// rejected credentials, means the database couldn't serve the request.
func rtdbErr(err error) error {
	if err == nil {
		return nil
	}
	if errorutils.IsNotFound(err) {
		return errors.E(errors.NotExist, err)
	}
	return errors.E(errors.Unavailable, err)
}

// Store implements store.Profiles and store.Events over a database client.
type Store struct {
	Client *db.Client
}

func (s *Store) user(id sparkbytes.UserID) *db.Ref {
	return s.Client.NewRef(store.UsersPath).Child(string(id))
}

func (s *Store) event(id sparkbytes.EventID) *db.Ref {
	return s.Client.NewRef(store.EventsPath).Child(string(id))
}

// GetProfile reads users/{id}. A missing record is errors.NotExist.
func (s *Store) GetProfile(ctx context.Context, id sparkbytes.UserID) (store.ProfileRecord, error) {
	var rec *store.ProfileRecord
	if err := s.user(id).Get(ctx, &rec); err != nil {
		return store.ProfileRecord{}, rtdbErr(err)
	}
	if rec == nil {
		return store.ProfileRecord{}, errors.E(errors.NotExist)
	}
	return *rec, nil
}

// PutProfile overwrites users/{id}.
func (s *Store) PutProfile(ctx context.Context, id sparkbytes.UserID, rec store.ProfileRecord) error {
	return rtdbErr(s.user(id).Set(ctx, rec))
}

// ListProfiles reads the whole users collection.
func (s *Store) ListProfiles(ctx context.Context) (map[sparkbytes.UserID]store.ProfileRecord, error) {
	recs := map[sparkbytes.UserID]store.ProfileRecord{}
	if err := s.Client.NewRef(store.UsersPath).Get(ctx, &recs); err != nil {
		return nil, rtdbErr(err)
	}
	return recs, nil
}

// InsertEvent pushes rec under events, which generates a chronologically
// ordered key.
func (s *Store) InsertEvent(ctx context.Context, rec store.EventRecord) (sparkbytes.EventID, error) {
	ref, err := s.Client.NewRef(store.EventsPath).Push(ctx, rec)
	if err != nil {
		return "", rtdbErr(err)
	}
	return sparkbytes.EventID(ref.Key), nil
}

// GetEvent reads events/{id}. A missing record is errors.NotExist.
func (s *Store) GetEvent(ctx context.Context, id sparkbytes.EventID) (store.EventRecord, error) {
	var rec *store.EventRecord
	if err := s.event(id).Get(ctx, &rec); err != nil {
		return store.EventRecord{}, rtdbErr(err)
	}
	if rec == nil {
		return store.EventRecord{}, errors.E(errors.NotExist)
	}
	return *rec, nil
}

// PutEvent overwrites events/{id}.
func (s *Store) PutEvent(ctx context.Context, id sparkbytes.EventID, rec store.EventRecord) error {
	return rtdbErr(s.event(id).Set(ctx, rec))
}

// RemoveEvent deletes events/{id}.
func (s *Store) RemoveEvent(ctx context.Context, id sparkbytes.EventID) error {
	return rtdbErr(s.event(id).Delete(ctx))
}

// ListEvents queries events ordered by the "date" child. The database
// needs an ".indexOn": "date" rule on events to serve this from an index.
func (s *Store) ListEvents(ctx context.Context) ([]sparkbytes.Event, error) {
	nodes, err := s.Client.NewRef(store.EventsPath).OrderByChild("date").GetOrdered(ctx)
	if err != nil {
		return nil, rtdbErr(err)
	}

	events := make([]sparkbytes.Event, 0, len(nodes))
	for _, node := range nodes {
		var rec store.EventRecord
		if err := node.Unmarshal(&rec); err != nil {
			return nil, errors.E(errors.Internal, err)
		}
		events = append(events, rec.Event(sparkbytes.EventID(node.Key())))
	}
	return events, nil
}
