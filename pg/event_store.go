package pg

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/sparkbytes/sparkbytes"
	"github.com/sparkbytes/sparkbytes/errors"
	"github.com/sparkbytes/sparkbytes/store"
)

// EventStore stores event records in a PostgreSQL jsonb column. It
// implements store.Events.
type EventStore struct {
	DB *sql.DB
}

// Init sets up the database schema and creates indices.
func (e *EventStore) Init(ctx context.Context) error {
	const op errors.Op = "EventStore.Init"

	_, err := e.DB.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS events (
		id    VARCHAR(40)  NOT NULL PRIMARY KEY,
		data  jsonb        NOT NULL
	);

	-- ListEvents orders by the event's date string
	CREATE INDEX IF NOT EXISTS event_date_idx ON events ((data->>'date') COLLATE "C");
	`)
	if err != nil {
		return errors.E(op, pgErr(err))
	}

	return nil
}

// InsertEvent stores rec under a new random id.
func (e *EventStore) InsertEvent(ctx context.Context, rec store.EventRecord) (sparkbytes.EventID, error) {
	const op errors.Op = "EventStore.InsertEvent"

	data, err := json.Marshal(rec)
	if err != nil {
		return "", errors.E(errors.Internal, err)
	}

	id := sparkbytes.EventID(uuid.NewString())
	_, err = e.DB.ExecContext(ctx, `
		INSERT INTO events
			(id, data)
		VALUES
			($1, $2)
	`, id, string(data))
	if err != nil {
		return "", errors.E(op, pgErr(err))
	}

	return id, nil
}

// GetEvent finds an event by its ID
func (e *EventStore) GetEvent(ctx context.Context, id sparkbytes.EventID) (store.EventRecord, error) {
	var rec store.EventRecord

	var data []byte
	err := e.DB.QueryRowContext(ctx, `
		SELECT data::text
		FROM events
		WHERE id = $1
	`, id).Scan(&data)
	if err != nil {
		return rec, pgErr(err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, errors.E(errors.Internal, err)
	}

	return rec, nil
}

// PutEvent replaces the event record for id.
func (e *EventStore) PutEvent(ctx context.Context, id sparkbytes.EventID, rec store.EventRecord) error {
	const op errors.Op = "EventStore.PutEvent"

	data, err := json.Marshal(rec)
	if err != nil {
		return errors.E(errors.Internal, err)
	}

	_, err = e.DB.ExecContext(ctx, `
		INSERT INTO events
			(id, data)
		VALUES
			($1, $2)
		ON CONFLICT (id) DO UPDATE
			SET data = $2
	`, id, string(data))
	if err != nil {
		return errors.E(op, pgErr(err))
	}

	return nil
}

// RemoveEvent deletes an event. Deleting a missing event is not an error.
func (e *EventStore) RemoveEvent(ctx context.Context, id sparkbytes.EventID) error {
	_, err := e.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return pgErr(err)
	}
	return nil
}

// ListEvents returns every event ordered by date.
func (e *EventStore) ListEvents(ctx context.Context) ([]sparkbytes.Event, error) {
	const op errors.Op = "EventStore.ListEvents"

	events := []sparkbytes.Event{}

	rows, err := e.DB.QueryContext(ctx, `
	SELECT id, data::text
	FROM events
	ORDER BY data->>'date' COLLATE "C" ASC, id ASC
	`)
	if err != nil {
		return events, errors.E(op, pgErr(err))
	}
	defer rows.Close()

	for rows.Next() {
		var id sparkbytes.EventID
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, pgErr(err)
		}

		var rec store.EventRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return events, errors.E(errors.Internal, err)
		}
		events = append(events, rec.Event(id))
	}
	if err := rows.Err(); err != nil {
		return nil, pgErr(err)
	}

	return events, nil
}
