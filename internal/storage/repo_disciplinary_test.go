package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisciplinaryAddFetchRoundtrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	record := &Disciplinary{
		Account:    "a.b",
		Kind:       "misconduct",
		Accuser:    "c.d",
		Consultant: "e.f",
		Lawyers:    "Grey & Partners",
		Facts:      "left post unattended",
		Occurrence: "2024-02-20",
		Note:       "first offense",
		Verdict:    "warning",
	}
	require.NoError(t, store.Disciplinary.Add(ctx, record))

	fetched, err := store.Disciplinary.Fetch(ctx, "a.b", "misconduct")
	require.NoError(t, err)
	require.Equal(t, record, fetched)
}

func TestDisciplinaryOptionalFieldsStayEmpty(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Disciplinary.Add(ctx, &Disciplinary{Account: "a.b", Kind: "tardiness"}))

	fetched, err := store.Disciplinary.Fetch(ctx, "a.b", "tardiness")
	require.NoError(t, err)
	require.Empty(t, fetched.Accuser)
	require.Empty(t, fetched.Verdict)
}

func TestDisciplinaryAddValidation(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	for _, invalid := range []*Disciplinary{
		nil,
		{Account: "", Kind: "misconduct"},
		{Account: "1.b", Kind: "misconduct"},
		{Account: "a.b", Kind: " "},
	} {
		require.ErrorIs(t, store.Disciplinary.Add(ctx, invalid), ErrInvalidDisciplinary)
	}
}

func TestDisciplinaryDuplicateKindConflicts(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Disciplinary.Add(ctx, &Disciplinary{Account: "a.b", Kind: "tardiness"}))
	err := store.Disciplinary.Add(ctx, &Disciplinary{Account: "a.b", Kind: "tardiness"})
	require.ErrorIs(t, err, ErrConflict)
}

func TestDisciplinarySearchByKind(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Disciplinary.Add(ctx, &Disciplinary{Account: "a.b", Kind: "tardiness"}))
	require.NoError(t, store.Disciplinary.Add(ctx, &Disciplinary{Account: "a.b", Kind: "misconduct"}))
	require.NoError(t, store.Disciplinary.Add(ctx, &Disciplinary{Account: "c.d", Kind: "misconduct"}))

	results, err := store.Disciplinary.Search(ctx, DisciplinarySearch{Kind: "misconduct"}, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
}

func TestDisciplinaryAccountsListing(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Disciplinary.Add(ctx, &Disciplinary{Account: "c.d", Kind: "tardiness"}))
	require.NoError(t, store.Disciplinary.Add(ctx, &Disciplinary{Account: "a.b", Kind: "tardiness"}))
	require.NoError(t, store.Disciplinary.Add(ctx, &Disciplinary{Account: "a.b", Kind: "misconduct"}))

	accounts, err := store.Disciplinary.Accounts(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a.b", "c.d"}, accounts)
}

func TestDisciplinaryUpdateRewritesRecord(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Disciplinary.Add(ctx, &Disciplinary{Account: "a.b", Kind: "tardiness"}))

	updated := &Disciplinary{Account: "a.b", Kind: "tardiness", Verdict: "dismissed"}
	require.NoError(t, store.Disciplinary.Update(ctx, "a.b", "tardiness", updated))

	fetched, err := store.Disciplinary.Fetch(ctx, "a.b", "tardiness")
	require.NoError(t, err)
	require.Equal(t, "dismissed", fetched.Verdict)
}

func TestDisciplinaryUpdateMissing(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	err := store.Disciplinary.Update(context.Background(), "a.b", "tardiness",
		&Disciplinary{Account: "a.b", Kind: "tardiness"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDisciplinaryDelete(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Disciplinary.Add(ctx, &Disciplinary{Account: "a.b", Kind: "tardiness"}))
	require.NoError(t, store.Disciplinary.Delete(ctx, "a.b", "tardiness"))

	err := store.Disciplinary.Delete(ctx, "a.b", "tardiness")
	require.ErrorIs(t, err, ErrNotFound)
}
