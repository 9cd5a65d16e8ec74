// Package pg stores user and event records as JSON documents in PostgreSQL.
package pg

import (
	"context"
	"database/sql"
	"net"

	"github.com/lib/pq"

	"github.com/sparkbytes/sparkbytes/errors"
)

// pgErr converts an error produced by lib/pq into a sparkbytes domain error.
// All sql statements in package pg should return errors wrapped by pgErr.
func pgErr(err error) error {
	if err == sql.ErrNoRows {
		return errors.E(errors.NotExist)
	}
	if _, ok := err.(net.Error); ok {
		return errors.E(errors.Unavailable, err)
	}

	e, ok := err.(*pq.Error)
	if !ok {
		return err
	}

	switch e.Code.Class() {
	case "08": // connection_exception
		return errors.E(errors.Unavailable, e.Message)
	case "42": // syntax_error_or_access_rule_violation
		if e.Code.Name() == "insufficient_privilege" {
			return errors.E(errors.Unavailable, e.Message)
		}
	}

	switch e.Code.Name() {
	case "unique_violation":
		return errors.E(errors.Exist, e.Message)
	case "query_canceled":
		return errors.E(context.Canceled)
	default:
		return e
	}
}
