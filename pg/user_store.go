package pg

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/sparkbytes/sparkbytes"
	"github.com/sparkbytes/sparkbytes/errors"
	"github.com/sparkbytes/sparkbytes/store"
)

// UserStore stores profile records in a PostgreSQL database. It implements
// store.Profiles.
type UserStore struct {
	DB *sql.DB
}

// Init sets up the database schema and creates indices.
func (u *UserStore) Init(ctx context.Context) error {
	const op errors.Op = "UserStore.Init"

	_, err := u.DB.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS users (
		id    TEXT   NOT NULL PRIMARY KEY,
		data  jsonb  NOT NULL
	);
	`)
	if err != nil {
		return errors.E(op, pgErr(err))
	}

	return nil
}

// GetProfile retrieves a profile record by user ID.
func (u *UserStore) GetProfile(ctx context.Context, id sparkbytes.UserID) (store.ProfileRecord, error) {
	var rec store.ProfileRecord

	var data []byte
	err := u.DB.QueryRowContext(ctx, `
		SELECT data::text
		FROM users
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

// PutProfile replaces the profile record for id.
func (u *UserStore) PutProfile(ctx context.Context, id sparkbytes.UserID, rec store.ProfileRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.E(errors.Internal, err)
	}

	_, err = u.DB.ExecContext(ctx, `
		INSERT INTO users
			(id, data)
		VALUES
			($1, $2)
		ON CONFLICT (id) DO UPDATE
			SET data = $2
	`, id, string(data))
	if err != nil {
		return pgErr(err)
	}

	return nil
}

// ListProfiles returns every profile record keyed by user ID.
func (u *UserStore) ListProfiles(ctx context.Context) (map[sparkbytes.UserID]store.ProfileRecord, error) {
	rows, err := u.DB.QueryContext(ctx, `SELECT id, data::text FROM users`)
	if err != nil {
		return nil, pgErr(err)
	}
	defer rows.Close()

	out := map[sparkbytes.UserID]store.ProfileRecord{}
	for rows.Next() {
		var id sparkbytes.UserID
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, pgErr(err)
		}
		var rec store.ProfileRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, errors.E(errors.Internal, err)
		}
		out[id] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, pgErr(err)
	}

	return out, nil
}
