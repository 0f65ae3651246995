package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	dateLayout = "2006-01-02"

	// defaultSearchLimit bounds a search when the caller passes no
	// positive limit.
	defaultSearchLimit = 200
)

// ParseDate parses a YYYY-MM-DD value, mapping malformed input to
// ErrInvalidFormat.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", raw, ErrInvalidFormat)
	}
	return t, nil
}

func fmtDate(t time.Time) string {
	return t.Format(dateLayout)
}

func parseStoredDate(raw string) (time.Time, error) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored date %q: %w", raw, err)
	}
	return t, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultSearchLimit
	}
	return limit
}

// wildcard turns an empty secondary filter into the match-everything
// pattern the search queries expect.
func wildcard(pattern string) string {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return "%"
	}
	return pattern
}

// storageError classifies an engine error: key collisions become
// ErrConflict, everything else is tagged ErrStorage with the driver detail
// kept in the message.
func storageError(op string, err error) error {
	if isConstraint(err) {
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	return fmt.Errorf("%s: %v: %w", op, err, ErrStorage)
}

func isConstraint(err error) bool {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		return serr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}

func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func fromNullable(raw sql.NullString) string {
	if !raw.Valid {
		return ""
	}
	return raw.String
}

func collectStrings(rows *sql.Rows, op string) ([]string, error) {
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, value)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError(op, err)
	}
	return out, nil
}
