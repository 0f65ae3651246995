package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ImportAccounts loads a legacy delimited roster file. Each line holds
// id, forename, surname and role separated by sep. New accounts are
// added; existing ones are refreshed from the incoming line. Returns the
// number of lines applied.
func ImportAccounts(ctx context.Context, store *Store, path, sep string) (int, error) {
	if sep == "" {
		return 0, fmt.Errorf("import accounts: empty separator: %w", ErrInvalidFormat)
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("import accounts %s: %w", path, ErrNotFound)
		}
		return 0, fmt.Errorf("import accounts: %w", err)
	}
	defer file.Close()

	applied := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Split(line, sep)
		if len(fields) < 4 {
			return applied, fmt.Errorf("import accounts: short line %q: %w", line, ErrInvalidFormat)
		}

		account := Account{
			ID:       fields[0],
			Forename: fields[1],
			Surname:  fields[2],
			Role:     fields[3],
		}

		err := store.Accounts.Add(ctx, &account)
		if errors.Is(err, ErrConflict) {
			// Refresh the roster fields, keep local flags and annotations.
			existing, fetchErr := store.Accounts.Fetch(ctx, account.ID)
			if fetchErr != nil {
				return applied, fmt.Errorf("import accounts: line %q: %w", line, fetchErr)
			}
			account.Flagged = existing.Flagged
			account.Annotation = existing.Annotation
			err = store.Accounts.Update(ctx, account.ID, &account)
		}
		if err != nil {
			return applied, fmt.Errorf("import accounts: line %q: %w", line, err)
		}
		applied++
	}
	if err := scanner.Err(); err != nil {
		return applied, fmt.Errorf("import accounts: read: %w", err)
	}
	return applied, nil
}
