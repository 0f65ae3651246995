package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

type employmentRepository struct {
	engine *Engine
}

const employmentColumns = `account, old_company, date_of_dismiss, currently, new_company, total_time`

func decodeEmployment(row RowScanner) (Employment, error) {
	var record Employment
	var date string
	var newCompany, totalTime sql.NullString
	if err := row.Scan(&record.Account, &record.OldCompany, &date, &record.Currently, &newCompany, &totalTime); err != nil {
		return Employment{}, err
	}
	parsed, err := parseStoredDate(date)
	if err != nil {
		return Employment{}, err
	}
	record.DateOfDismiss = parsed
	record.NewCompany = fromNullable(newCompany)
	record.TotalTime = fromNullable(totalTime)
	return record, nil
}

func (r *employmentRepository) Fetch(ctx context.Context, account, oldCompany string, date time.Time) (*Employment, error) {
	row := r.engine.db.QueryRowContext(ctx, `
		SELECT `+employmentColumns+`
		FROM employment
		WHERE account = ? AND old_company = ? AND date_of_dismiss = ?
	`, strings.TrimSpace(account), strings.TrimSpace(oldCompany), fmtDate(date))

	record, err := One(row, decodeEmployment)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *employmentRepository) Search(ctx context.Context, criteria EmploymentSearch, limit int) ([]Employment, error) {
	rows, err := r.engine.db.QueryContext(ctx, `
		SELECT `+employmentColumns+`
		FROM employment
		WHERE account LIKE '%'||?1||'%'
		AND old_company LIKE '%'||?2||'%'
		AND date_of_dismiss LIKE ?3
		ORDER BY CASE
			WHEN account LIKE ?1||'%' THEN 0
			ELSE 1
		END ASC, account ASC
		LIMIT ?4
	`, strings.TrimSpace(criteria.Name), strings.TrimSpace(criteria.OldCompany), wildcard(criteria.Date), clampLimit(limit))
	if err != nil {
		return nil, storageError("search employment", err)
	}
	return Collect(rows, decodeEmployment)
}

func (r *employmentRepository) Dates(ctx context.Context) ([]string, error) {
	rows, err := r.engine.db.QueryContext(ctx, `
		SELECT DISTINCT date_of_dismiss
		FROM employment
		ORDER BY date_of_dismiss DESC
	`)
	if err != nil {
		return nil, storageError("list employment dates", err)
	}
	return collectStrings(rows, "list employment dates")
}

func (r *employmentRepository) Add(ctx context.Context, record *Employment) error {
	if err := record.Validate(); err != nil {
		return err
	}
	_, err := r.engine.db.ExecContext(ctx, `
		INSERT INTO employment (`+employmentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
	`, strings.TrimSpace(record.Account),
		strings.TrimSpace(record.OldCompany),
		fmtDate(record.DateOfDismiss),
		record.Currently,
		nullable(strings.TrimSpace(record.NewCompany)),
		nullable(strings.TrimSpace(record.TotalTime)))
	if err != nil {
		return storageError("add employment", err)
	}
	return nil
}

func (r *employmentRepository) Update(ctx context.Context, previousAccount, previousCompany string, previousDate time.Time, record *Employment) error {
	previousAccount = strings.TrimSpace(previousAccount)
	previousCompany = strings.TrimSpace(previousCompany)
	if previousAccount == "" || previousCompany == "" || previousDate.IsZero() {
		return ErrInvalidEmployment
	}
	if err := record.Validate(); err != nil {
		return err
	}

	tx, err := r.engine.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE employment
		SET account = ?, old_company = ?, date_of_dismiss = ?, currently = ?, new_company = ?, total_time = ?
		WHERE account = ? AND old_company = ? AND date_of_dismiss = ?
	`, strings.TrimSpace(record.Account),
		strings.TrimSpace(record.OldCompany),
		fmtDate(record.DateOfDismiss),
		record.Currently,
		nullable(strings.TrimSpace(record.NewCompany)),
		nullable(strings.TrimSpace(record.TotalTime)),
		previousAccount, previousCompany, fmtDate(previousDate))
	if err != nil {
		return storageError("update employment", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return storageError("update employment: rows affected", err)
	}
	if count == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

func (r *employmentRepository) Delete(ctx context.Context, account, oldCompany string, date time.Time) error {
	account = strings.TrimSpace(account)
	oldCompany = strings.TrimSpace(oldCompany)
	if account == "" || oldCompany == "" || date.IsZero() {
		return ErrInvalidEmployment
	}

	result, err := r.engine.db.ExecContext(ctx, `
		DELETE FROM employment WHERE account = ? AND old_company = ? AND date_of_dismiss = ?
	`, account, oldCompany, fmtDate(date))
	if err != nil {
		return storageError("delete employment", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return storageError("delete employment: rows affected", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
