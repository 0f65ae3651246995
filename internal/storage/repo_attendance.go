package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

type attendanceRepository struct {
	engine *Engine
}

func decodeAttendance(row RowScanner) (Attendance, error) {
	var (
		attendance Attendance
		date       string
		note       sql.NullString
	)
	if err := row.Scan(&attendance.Account, &date, &note); err != nil {
		return Attendance{}, err
	}
	parsed, err := parseStoredDate(date)
	if err != nil {
		return Attendance{}, err
	}
	attendance.Date = parsed
	attendance.Note = fromNullable(note)
	return attendance, nil
}

func (r *attendanceRepository) Fetch(ctx context.Context, account string, date time.Time) (*Attendance, error) {
	row := r.engine.db.QueryRowContext(ctx, `
		SELECT account, date, note
		FROM attendance
		WHERE account = ? AND date = ?
	`, strings.TrimSpace(account), fmtDate(date))

	attendance, err := One(row, decodeAttendance)
	if err != nil {
		return nil, err
	}
	return &attendance, nil
}

func (r *attendanceRepository) Search(ctx context.Context, criteria AttendanceSearch, limit int) ([]Attendance, error) {
	rows, err := r.engine.db.QueryContext(ctx, `
		SELECT account, date, note
		FROM attendance
		WHERE account LIKE '%'||?1||'%'
		AND date LIKE ?2
		ORDER BY CASE
			WHEN account LIKE ?1||'%' THEN 0
			ELSE 1
		END ASC, account ASC
		LIMIT ?3
	`, strings.TrimSpace(criteria.Name), wildcard(criteria.Date), clampLimit(limit))
	if err != nil {
		return nil, storageError("search attendance", err)
	}
	return Collect(rows, decodeAttendance)
}

func (r *attendanceRepository) Dates(ctx context.Context) ([]string, error) {
	rows, err := r.engine.db.QueryContext(ctx, `
		SELECT DISTINCT date
		FROM attendance
		ORDER BY date ASC
	`)
	if err != nil {
		return nil, storageError("list attendance dates", err)
	}
	return collectStrings(rows, "list attendance dates")
}

func (r *attendanceRepository) Add(ctx context.Context, attendance *Attendance) error {
	if err := attendance.Validate(); err != nil {
		return err
	}
	_, err := r.engine.db.ExecContext(ctx, `
		INSERT INTO attendance (account, date, note)
		VALUES (?, ?, ?)
	`, strings.TrimSpace(attendance.Account), fmtDate(attendance.Date), nullable(strings.TrimSpace(attendance.Note)))
	if err != nil {
		return storageError("add attendance", err)
	}
	return nil
}

func (r *attendanceRepository) Update(ctx context.Context, previousAccount string, previousDate time.Time, attendance *Attendance) error {
	previousAccount = strings.TrimSpace(previousAccount)
	if previousAccount == "" || previousDate.IsZero() {
		return ErrInvalidAttendance
	}
	if err := attendance.Validate(); err != nil {
		return err
	}

	tx, err := r.engine.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE attendance
		SET account = ?, date = ?, note = ?
		WHERE account = ? AND date = ?
	`, strings.TrimSpace(attendance.Account), fmtDate(attendance.Date), nullable(strings.TrimSpace(attendance.Note)),
		previousAccount, fmtDate(previousDate))
	if err != nil {
		return storageError("update attendance", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return storageError("update attendance: rows affected", err)
	}
	if count == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

func (r *attendanceRepository) Delete(ctx context.Context, account string, date time.Time) error {
	account = strings.TrimSpace(account)
	if account == "" || date.IsZero() {
		return ErrInvalidAttendance
	}

	result, err := r.engine.db.ExecContext(ctx, `
		DELETE FROM attendance WHERE account = ? AND date = ?
	`, account, fmtDate(date))
	if err != nil {
		return storageError("delete attendance", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return storageError("delete attendance: rows affected", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
