package storage

import (
	"context"
	"database/sql"
	"strings"
)

type accountRepository struct {
	engine *Engine
}

func decodeAccount(row RowScanner) (Account, error) {
	var (
		account    Account
		annotation sql.NullString
	)
	if err := row.Scan(&account.ID, &account.Forename, &account.Surname, &account.Role, &account.Flagged, &annotation); err != nil {
		return Account{}, err
	}
	account.Annotation = fromNullable(annotation)
	return account, nil
}

const accountColumns = `id, forename, surname, role, flagged, annotation`

func (r *accountRepository) Fetch(ctx context.Context, id string) (*Account, error) {
	row := r.engine.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM account
		WHERE id = ?
	`, strings.TrimSpace(id))

	account, err := One(row, decodeAccount)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) Search(ctx context.Context, criteria AccountSearch, limit int) ([]Account, error) {
	rows, err := r.engine.db.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM account
		WHERE (id LIKE '%'||?1||'%'
			OR forename LIKE '%'||?1||'%'
			OR surname LIKE '%'||?1||'%')
		AND role LIKE ?2
		ORDER BY CASE
			WHEN id LIKE ?1||'%' THEN 0
			ELSE 1
		END ASC, id ASC
		LIMIT ?3
	`, strings.TrimSpace(criteria.Name), wildcard(criteria.Role), clampLimit(limit))
	if err != nil {
		return nil, storageError("search accounts", err)
	}
	return Collect(rows, decodeAccount)
}

func (r *accountRepository) Roles(ctx context.Context, name string) ([]string, error) {
	rows, err := r.engine.db.QueryContext(ctx, `
		SELECT DISTINCT role
		FROM account
		WHERE id LIKE '%'||?1||'%'
		ORDER BY role ASC
	`, strings.TrimSpace(name))
	if err != nil {
		return nil, storageError("list account roles", err)
	}
	return collectStrings(rows, "list account roles")
}

func (r *accountRepository) Add(ctx context.Context, account *Account) error {
	if err := account.Validate(); err != nil {
		return err
	}
	_, err := r.engine.db.ExecContext(ctx, `
		INSERT INTO account (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
	`, strings.TrimSpace(account.ID),
		strings.TrimSpace(account.Forename),
		strings.TrimSpace(account.Surname),
		strings.TrimSpace(account.Role),
		account.Flagged,
		nullable(strings.TrimSpace(account.Annotation)))
	if err != nil {
		return storageError("add account", err)
	}
	return nil
}

// Update rewrites the account row and, when the id changes, every
// dependent foreign key, all inside one transaction.
func (r *accountRepository) Update(ctx context.Context, previousID string, account *Account) error {
	previousID = strings.TrimSpace(previousID)
	if previousID == "" {
		return ErrInvalidAccount
	}
	if err := account.Validate(); err != nil {
		return err
	}

	tx, err := r.engine.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE account
		SET id = ?, forename = ?, surname = ?, role = ?, flagged = ?, annotation = ?
		WHERE id = ?
	`, strings.TrimSpace(account.ID),
		strings.TrimSpace(account.Forename),
		strings.TrimSpace(account.Surname),
		strings.TrimSpace(account.Role),
		account.Flagged,
		nullable(strings.TrimSpace(account.Annotation)),
		previousID)
	if err != nil {
		return storageError("update account", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return storageError("update account: rows affected", err)
	}
	if count == 0 {
		return ErrNotFound
	}

	if newID := strings.TrimSpace(account.ID); newID != previousID {
		if err := renameAccountRefs(ctx, tx, previousID, newID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Delete removes the account and all its dependent records inside one
// transaction.
func (r *accountRepository) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidAccount
	}

	tx, err := r.engine.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteAccountRefs(ctx, tx, id); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM account WHERE id = ?`, id)
	if err != nil {
		return storageError("delete account", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return storageError("delete account: rows affected", err)
	}
	if count == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}
