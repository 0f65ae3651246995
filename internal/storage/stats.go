package storage

import "context"

// Stats is a snapshot of record counts across the store.
type Stats struct {
	Accounts     int
	Flagged      int
	Attendance   int
	Disciplinary int
	Employment   int
}

func decodeStats(row RowScanner) (Stats, error) {
	var stats Stats
	if err := row.Scan(&stats.Accounts, &stats.Flagged, &stats.Attendance, &stats.Disciplinary, &stats.Employment); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// FetchStats counts the rows of every record table in one query.
func FetchStats(ctx context.Context, store *Store) (Stats, error) {
	row := store.engine.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM account) AS accounts,
			(SELECT COUNT(*) FROM account WHERE flagged = 1) AS flagged,
			(SELECT COUNT(*) FROM attendance) AS attendance,
			(SELECT COUNT(*) FROM disciplinary) AS disciplinary,
			(SELECT COUNT(*) FROM employment) AS employment
	`)
	return One(row, decodeStats)
}
