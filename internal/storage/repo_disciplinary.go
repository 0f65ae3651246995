package storage

import (
	"context"
	"database/sql"
	"strings"
)

type disciplinaryRepository struct {
	engine *Engine
}

const disciplinaryColumns = `account, kind, accuser, consultant, lawyers, facts, occurrence, note, verdict`

func decodeDisciplinary(row RowScanner) (Disciplinary, error) {
	var record Disciplinary
	var accuser, consultant, lawyers, facts, occurrence, note, verdict sql.NullString
	if err := row.Scan(&record.Account, &record.Kind, &accuser, &consultant, &lawyers, &facts, &occurrence, &note, &verdict); err != nil {
		return Disciplinary{}, err
	}
	record.Accuser = fromNullable(accuser)
	record.Consultant = fromNullable(consultant)
	record.Lawyers = fromNullable(lawyers)
	record.Facts = fromNullable(facts)
	record.Occurrence = fromNullable(occurrence)
	record.Note = fromNullable(note)
	record.Verdict = fromNullable(verdict)
	return record, nil
}

func (r *disciplinaryRepository) Fetch(ctx context.Context, account, kind string) (*Disciplinary, error) {
	row := r.engine.db.QueryRowContext(ctx, `
		SELECT `+disciplinaryColumns+`
		FROM disciplinary
		WHERE account = ? AND kind = ?
	`, strings.TrimSpace(account), strings.TrimSpace(kind))

	record, err := One(row, decodeDisciplinary)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *disciplinaryRepository) Search(ctx context.Context, criteria DisciplinarySearch, limit int) ([]Disciplinary, error) {
	rows, err := r.engine.db.QueryContext(ctx, `
		SELECT `+disciplinaryColumns+`
		FROM disciplinary
		WHERE account LIKE '%'||?1||'%'
		AND kind LIKE ?2
		ORDER BY CASE
			WHEN account LIKE ?1||'%' THEN 0
			ELSE 1
		END ASC, account ASC
		LIMIT ?3
	`, strings.TrimSpace(criteria.Name), wildcard(criteria.Kind), clampLimit(limit))
	if err != nil {
		return nil, storageError("search disciplinary", err)
	}
	return Collect(rows, decodeDisciplinary)
}

func (r *disciplinaryRepository) Accounts(ctx context.Context) ([]string, error) {
	rows, err := r.engine.db.QueryContext(ctx, `
		SELECT DISTINCT account
		FROM disciplinary
		ORDER BY account ASC
	`)
	if err != nil {
		return nil, storageError("list disciplinary accounts", err)
	}
	return collectStrings(rows, "list disciplinary accounts")
}

func (r *disciplinaryRepository) Add(ctx context.Context, record *Disciplinary) error {
	if err := record.Validate(); err != nil {
		return err
	}
	_, err := r.engine.db.ExecContext(ctx, `
		INSERT INTO disciplinary (`+disciplinaryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, strings.TrimSpace(record.Account),
		strings.TrimSpace(record.Kind),
		nullable(strings.TrimSpace(record.Accuser)),
		nullable(strings.TrimSpace(record.Consultant)),
		nullable(strings.TrimSpace(record.Lawyers)),
		nullable(strings.TrimSpace(record.Facts)),
		nullable(strings.TrimSpace(record.Occurrence)),
		nullable(strings.TrimSpace(record.Note)),
		nullable(strings.TrimSpace(record.Verdict)))
	if err != nil {
		return storageError("add disciplinary", err)
	}
	return nil
}

func (r *disciplinaryRepository) Update(ctx context.Context, previousAccount, previousKind string, record *Disciplinary) error {
	previousAccount = strings.TrimSpace(previousAccount)
	previousKind = strings.TrimSpace(previousKind)
	if previousAccount == "" || previousKind == "" {
		return ErrInvalidDisciplinary
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
		UPDATE disciplinary
		SET account = ?, kind = ?, accuser = ?, consultant = ?, lawyers = ?, facts = ?, occurrence = ?, note = ?, verdict = ?
		WHERE account = ? AND kind = ?
	`, strings.TrimSpace(record.Account),
		strings.TrimSpace(record.Kind),
		nullable(strings.TrimSpace(record.Accuser)),
		nullable(strings.TrimSpace(record.Consultant)),
		nullable(strings.TrimSpace(record.Lawyers)),
		nullable(strings.TrimSpace(record.Facts)),
		nullable(strings.TrimSpace(record.Occurrence)),
		nullable(strings.TrimSpace(record.Note)),
		nullable(strings.TrimSpace(record.Verdict)),
		previousAccount, previousKind)
	if err != nil {
		return storageError("update disciplinary", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return storageError("update disciplinary: rows affected", err)
	}
	if count == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

func (r *disciplinaryRepository) Delete(ctx context.Context, account, kind string) error {
	account = strings.TrimSpace(account)
	kind = strings.TrimSpace(kind)
	if account == "" || kind == "" {
		return ErrInvalidDisciplinary
	}

	result, err := r.engine.db.ExecContext(ctx, `
		DELETE FROM disciplinary WHERE account = ? AND kind = ?
	`, account, kind)
	if err != nil {
		return storageError("delete disciplinary", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return storageError("delete disciplinary: rows affected", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
