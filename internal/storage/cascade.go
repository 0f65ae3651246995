package storage

import (
	"context"
	"fmt"
)

// dependent names a table carrying a foreign key to the account table.
type dependent struct {
	table  string
	column string
}

// accountDependents is the static parent→dependent relation for accounts.
// Credentials are deliberately absent: their user column is only
// conventionally synchronized with account ids and is managed by callers.
var accountDependents = []dependent{
	{table: "attendance", column: "account"},
	{table: "disciplinary", column: "account"},
	{table: "employment", column: "account"},
}

// renameAccountRefs rewrites every dependent foreign key from previousID
// to newID inside the caller's transaction. Dependents with no matching
// rows are a no-op, not an error.
func renameAccountRefs(ctx context.Context, tx *Tx, previousID, newID string) error {
	for _, dep := range accountDependents {
		query := fmt.Sprintf(`UPDATE %s SET %s = ? WHERE %s = ?`, dep.table, dep.column, dep.column)
		if _, err := tx.ExecContext(ctx, query, newID, previousID); err != nil {
			return storageError(fmt.Sprintf("cascade rename %s", dep.table), err)
		}
	}
	return nil
}

// deleteAccountRefs removes every dependent row referencing the account
// inside the caller's transaction.
func deleteAccountRefs(ctx context.Context, tx *Tx, id string) error {
	for _, dep := range accountDependents {
		query := fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, dep.table, dep.column)
		if _, err := tx.ExecContext(ctx, query, id); err != nil {
			return storageError(fmt.Sprintf("cascade delete %s", dep.table), err)
		}
	}
	return nil
}
