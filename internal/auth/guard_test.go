package auth

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nwrenger/schiller-db/internal/storage"
)

func basicHeader(user, password string) string {
	return basicPrefix + base64.StdEncoding.EncodeToString([]byte(user+":"+password))
}

func newTestGuard(t *testing.T) (*Guard, *storage.Store) {
	t.Helper()
	store, err := storage.MemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	return NewGuard(store.Credentials, nil), store
}

func seedLogin(t *testing.T, store *storage.Store, login storage.NewCredential) {
	t.Helper()
	require.NoError(t, store.Credentials.Add(context.Background(), login))
}

func TestParseBasicAuth(t *testing.T) {
	t.Parallel()

	user, password, err := ParseBasicAuth(basicHeader("admin", "secret"))
	require.NoError(t, err)
	require.Equal(t, "admin", user)
	require.Equal(t, "secret", password)
}

func TestParseBasicAuthPasswordMayContainColon(t *testing.T) {
	t.Parallel()

	_, password, err := ParseBasicAuth(basicHeader("admin", "se:cr:et"))
	require.NoError(t, err)
	require.Equal(t, "se:cr:et", password)
}

func TestParseBasicAuthMalformed(t *testing.T) {
	t.Parallel()

	for _, header := range []string{
		"",
		"Bearer abc",
		"Basic",
		"Basic not-base64!!!",
		basicPrefix + base64.StdEncoding.EncodeToString([]byte("no-colon")),
		basicPrefix + base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, ':', 'x'}),
	} {
		_, _, err := ParseBasicAuth(header)
		require.ErrorIsf(t, err, ErrUnauthorized, "header %q", header)
	}
}

func TestAuthorizeGrantsMatchingCredential(t *testing.T) {
	t.Parallel()

	guard, store := newTestGuard(t)
	seedLogin(t, store, storage.NewCredential{
		User:               "admin",
		Password:           "secret",
		AccessAccount:      storage.PermissionWrite,
		AccessAttendance:   storage.PermissionWrite,
		AccessDisciplinary: storage.PermissionWrite,
	})

	user, err := guard.Authorize(context.Background(), basicHeader("admin", "secret"), Write(ResourceAccount))
	require.NoError(t, err)
	require.Equal(t, "admin", user)
}

func TestAuthorizeRejectsWrongPassword(t *testing.T) {
	t.Parallel()

	guard, store := newTestGuard(t)
	seedLogin(t, store, storage.NewCredential{User: "admin", Password: "secret", AccessAccount: storage.PermissionWrite})

	_, err := guard.Authorize(context.Background(), basicHeader("admin", "wrong"), ReadOnly(ResourceAccount))
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthorizeRejectsUnknownUser(t *testing.T) {
	t.Parallel()

	guard, _ := newTestGuard(t)
	_, err := guard.Authorize(context.Background(), basicHeader("ghost", "secret"), ReadOnly(ResourceAccount))
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthorizePermissionOrdering(t *testing.T) {
	t.Parallel()

	guard, store := newTestGuard(t)
	seedLogin(t, store, storage.NewCredential{
		User:               "clerk",
		Password:           "secret",
		AccessAccount:      storage.PermissionNone,
		AccessAttendance:   storage.PermissionReadOnly,
		AccessDisciplinary: storage.PermissionWrite,
	})

	cases := []struct {
		name     string
		required Required
		allowed  bool
	}{
		{"none denies read", ReadOnly(ResourceAccount), false},
		{"none denies write", Write(ResourceAccount), false},
		{"read-only allows read", ReadOnly(ResourceAttendance), true},
		{"read-only denies write", Write(ResourceAttendance), false},
		{"write allows read", ReadOnly(ResourceDisciplinary), true},
		{"write allows write", Write(ResourceDisciplinary), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := guard.Authorize(context.Background(), basicHeader("clerk", "secret"), tc.required)
			if tc.allowed {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrUnauthorized)
			}
		})
	}
}

func TestAuthorizeAfterCredentialDeletion(t *testing.T) {
	t.Parallel()

	guard, store := newTestGuard(t)
	seedLogin(t, store, storage.NewCredential{User: "temp", Password: "secret", AccessAccount: storage.PermissionWrite})

	header := basicHeader("temp", "secret")
	_, err := guard.Authorize(context.Background(), header, Write(ResourceAccount))
	require.NoError(t, err)

	require.NoError(t, store.Credentials.Delete(context.Background(), "temp"))

	_, err = guard.Authorize(context.Background(), header, Write(ResourceAccount))
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthorizeAfterPasswordChange(t *testing.T) {
	t.Parallel()

	guard, store := newTestGuard(t)
	seedLogin(t, store, storage.NewCredential{User: "admin", Password: "old", AccessAccount: storage.PermissionWrite})

	require.NoError(t, store.Credentials.SetPassword(context.Background(), "admin", "new"))

	_, err := guard.Authorize(context.Background(), basicHeader("admin", "old"), Write(ResourceAccount))
	require.ErrorIs(t, err, ErrUnauthorized)

	user, err := guard.Authorize(context.Background(), basicHeader("admin", "new"), Write(ResourceAccount))
	require.NoError(t, err)
	require.Equal(t, "admin", user)
}
