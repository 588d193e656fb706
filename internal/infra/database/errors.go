package database

import (
	"database/sql"
	"errors"

	"github.com/xavierca1/lead-pipeline/internal/entity"
)

// classify wraps driver errors as StoreError. notFound replaces
// sql.ErrNoRows; anything else, *pq.Error included, is kept as the cause so
// callers can still reach the SQLSTATE with errors.As.
func classify(op string, err error, notFound error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &entity.StoreError{Op: op, Err: notFound}
	}
	return &entity.StoreError{Op: op, Err: err}
}
