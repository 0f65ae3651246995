package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"iter"
)

// RowScanner is the part of *sql.Row and *sql.Rows a decode function needs.
type RowScanner interface {
	Scan(dest ...any) error
}

// DecodeFunc maps one raw result row to a typed record. Every record type
// supplies one; the repositories pass it explicitly to Decoded, Collect
// and One.
type DecodeFunc[T any] func(RowScanner) (T, error)

// Decoded lifts rows into a lazy, forward-only, single-consumption
// sequence of decoded records. A decode or iteration failure is yielded as
// the terminating error element; the sequence is not restartable and the
// rows are closed when iteration stops.
func Decoded[T any](rows *sql.Rows, decode DecodeFunc[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		defer rows.Close()
		for rows.Next() {
			record, err := decode(rows)
			if err != nil {
				var zero T
				yield(zero, fmt.Errorf("decode row: %w", err))
				return
			}
			if !yield(record, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			var zero T
			yield(zero, fmt.Errorf("iterate rows: %v: %w", err, ErrStorage))
		}
	}
}

// Collect drains the decoded sequence into a list.
func Collect[T any](rows *sql.Rows, decode DecodeFunc[T]) ([]T, error) {
	var out []T
	for record, err := range Decoded(rows, decode) {
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

// One decodes a single-row result, mapping the empty result to ErrNotFound.
func One[T any](row *sql.Row, decode DecodeFunc[T]) (T, error) {
	record, err := decode(row)
	if err != nil {
		var zero T
		if errors.Is(err, sql.ErrNoRows) {
			return zero, ErrNotFound
		}
		return zero, fmt.Errorf("decode row: %w", err)
	}
	return record, nil
}
