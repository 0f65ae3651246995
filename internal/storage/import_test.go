package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeRoster(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestImportAccountsAddsNewRows(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	path := writeRoster(t, "a.b|Alice|Brown|clerk\nc.d|Carl|Drew|manager\n")

	count, err := ImportAccounts(ctx, store, path, "|")
	require.NoError(t, err)
	require.Equal(t, 2, count)

	account, err := store.Accounts.Fetch(ctx, "c.d")
	require.NoError(t, err)
	require.Equal(t, "manager", account.Role)
}

func TestImportAccountsSkipsBlankLines(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	path := writeRoster(t, "a.b|Alice|Brown|clerk\n\n\nc.d|Carl|Drew|manager\n")

	count, err := ImportAccounts(context.Background(), store, path, "|")
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestImportAccountsRefreshKeepsLocalFields(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Accounts.Add(ctx, &Account{
		ID:         "a.b",
		Forename:   "Alice",
		Surname:    "Brown",
		Role:       "clerk",
		Flagged:    true,
		Annotation: "pending review",
	}))

	path := writeRoster(t, "a.b|Alice|Brown|manager\n")
	count, err := ImportAccounts(ctx, store, path, "|")
	require.NoError(t, err)
	require.Equal(t, 1, count)

	account, err := store.Accounts.Fetch(ctx, "a.b")
	require.NoError(t, err)
	require.Equal(t, "manager", account.Role)
	require.True(t, account.Flagged)
	require.Equal(t, "pending review", account.Annotation)
}

func TestImportAccountsIsIdempotent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	path := writeRoster(t, "a.b|Alice|Brown|clerk\n")

	for i := 0; i < 2; i++ {
		count, err := ImportAccounts(ctx, store, path, "|")
		require.NoError(t, err)
		require.Equal(t, 1, count)
	}

	stats, err := FetchStats(ctx, store)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Accounts)
}

func TestImportAccountsShortLine(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	path := writeRoster(t, "a.b|Alice|Brown\n")

	_, err := ImportAccounts(context.Background(), store, path, "|")
	require.ErrorIs(t, err, ErrInvalidFormat)
}

func TestImportAccountsEmptySeparator(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	_, err := ImportAccounts(context.Background(), store, "whatever", "")
	require.ErrorIs(t, err, ErrInvalidFormat)
}

func TestImportAccountsMissingFile(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	_, err := ImportAccounts(context.Background(), store, filepath.Join(t.TempDir(), "absent.txt"), "|")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFetchStatsCountsEveryTable(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Accounts.Add(ctx, &Account{ID: "a.b", Forename: "Alice", Surname: "Brown", Role: "clerk", Flagged: true}))
	require.NoError(t, store.Accounts.Add(ctx, &Account{ID: "c.d", Forename: "Carl", Surname: "Drew", Role: "manager"}))
	require.NoError(t, store.Attendance.Add(ctx, &Attendance{Account: "a.b", Date: day(t, "2024-03-01")}))
	require.NoError(t, store.Disciplinary.Add(ctx, &Disciplinary{Account: "a.b", Kind: "tardiness"}))
	require.NoError(t, store.Employment.Add(ctx, &Employment{Account: "c.d", OldCompany: "Acme", DateOfDismiss: day(t, "2023-12-31")}))

	stats, err := FetchStats(ctx, store)
	require.NoError(t, err)
	require.Equal(t, Stats{
		Accounts:     2,
		Flagged:      1,
		Attendance:   1,
		Disciplinary: 1,
		Employment:   1,
	}, stats)
}

func TestFetchStatsEmptyStore(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	stats, err := FetchStats(context.Background(), store)
	require.NoError(t, err)
	require.Equal(t, Stats{}, stats)
}
