package storage

import (
	"context"
	"strings"

	"github.com/nwrenger/schiller-db/internal/crypto"
)

type credentialRepository struct {
	engine *Engine
}

const credentialColumns = `user, hash, salt, access_account, access_attendance, access_disciplinary`

func decodeCredential(row RowScanner) (Credential, error) {
	var credential Credential
	if err := row.Scan(&credential.User, &credential.Hash, &credential.Salt,
		&credential.AccessAccount, &credential.AccessAttendance, &credential.AccessDisciplinary); err != nil {
		return Credential{}, err
	}
	if !credential.AccessAccount.Valid() || !credential.AccessAttendance.Valid() || !credential.AccessDisciplinary.Valid() {
		return Credential{}, ErrInvalidLogin
	}
	return credential, nil
}

func decodePermissions(row RowScanner) (Permissions, error) {
	var permissions Permissions
	if err := row.Scan(&permissions.AccessAccount, &permissions.AccessAttendance, &permissions.AccessDisciplinary); err != nil {
		return Permissions{}, err
	}
	if !permissions.AccessAccount.Valid() || !permissions.AccessAttendance.Valid() || !permissions.AccessDisciplinary.Valid() {
		return Permissions{}, ErrInvalidLogin
	}
	return permissions, nil
}

func (r *credentialRepository) Fetch(ctx context.Context, user string) (*Credential, error) {
	row := r.engine.db.QueryRowContext(ctx, `
		SELECT `+credentialColumns+`
		FROM credential
		WHERE user = ?
	`, strings.TrimSpace(user))

	credential, err := One(row, decodeCredential)
	if err != nil {
		return nil, err
	}
	return &credential, nil
}

func (r *credentialRepository) Permissions(ctx context.Context, user string) (*Permissions, error) {
	row := r.engine.db.QueryRowContext(ctx, `
		SELECT access_account, access_attendance, access_disciplinary
		FROM credential
		WHERE user = ?
	`, strings.TrimSpace(user))

	permissions, err := One(row, decodePermissions)
	if err != nil {
		return nil, err
	}
	return &permissions, nil
}

func (r *credentialRepository) Users(ctx context.Context) ([]string, error) {
	rows, err := r.engine.db.QueryContext(ctx, `
		SELECT user
		FROM credential
		ORDER BY user ASC
	`)
	if err != nil {
		return nil, storageError("list credential users", err)
	}
	return collectStrings(rows, "list credential users")
}

// Add salts and hashes the password, then inserts the credential. The
// plaintext is never stored.
func (r *credentialRepository) Add(ctx context.Context, login NewCredential) error {
	if err := login.Validate(); err != nil {
		return err
	}

	hash, salt, err := crypto.SaltedHash(strings.TrimSpace(login.Password))
	if err != nil {
		return storageError("add credential: hash password", err)
	}

	_, err = r.engine.db.ExecContext(ctx, `
		INSERT INTO credential (`+credentialColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
	`, strings.TrimSpace(login.User), hash, salt,
		login.AccessAccount, login.AccessAttendance, login.AccessDisciplinary)
	if err != nil {
		return storageError("add credential", err)
	}
	return nil
}

// SetPassword re-salts and re-hashes; the user and permissions are fixed.
func (r *credentialRepository) SetPassword(ctx context.Context, user, password string) error {
	user = strings.TrimSpace(user)
	password = strings.TrimSpace(password)
	if user == "" || password == "" {
		return ErrInvalidLogin
	}

	hash, salt, err := crypto.SaltedHash(password)
	if err != nil {
		return storageError("set credential password: hash password", err)
	}

	result, err := r.engine.db.ExecContext(ctx, `
		UPDATE credential SET hash = ?, salt = ? WHERE user = ?
	`, hash, salt, user)
	if err != nil {
		return storageError("set credential password", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return storageError("set credential password: rows affected", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *credentialRepository) Delete(ctx context.Context, user string) error {
	user = strings.TrimSpace(user)
	if user == "" {
		return ErrInvalidLogin
	}

	result, err := r.engine.db.ExecContext(ctx, `
		DELETE FROM credential WHERE user = ?
	`, user)
	if err != nil {
		return storageError("delete credential", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return storageError("delete credential: rows affected", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
