package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaltedHashRoundtrip(t *testing.T) {
	t.Parallel()

	hash, salt, err := SaltedHash("secret")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotEmpty(t, salt)

	raw, err := base64.StdEncoding.DecodeString(salt)
	require.NoError(t, err)
	require.Len(t, raw, SaltLen)

	require.True(t, Verify("secret", hash, salt))
	require.False(t, Verify("wrong", hash, salt))
}

func TestSaltedHashUsesFreshSalts(t *testing.T) {
	t.Parallel()

	hash1, salt1, err := SaltedHash("secret")
	require.NoError(t, err)
	hash2, salt2, err := SaltedHash("secret")
	require.NoError(t, err)

	require.NotEqual(t, salt1, salt2)
	require.NotEqual(t, hash1, hash2)
}

func TestComputeHashIsDeterministic(t *testing.T) {
	t.Parallel()

	salt := base64.StdEncoding.EncodeToString(make([]byte, SaltLen))

	first, err := ComputeHash(salt, "secret")
	require.NoError(t, err)
	second, err := ComputeHash(salt, "secret")
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestComputeHashRejectsBadSalt(t *testing.T) {
	t.Parallel()

	_, err := ComputeHash("not base64!!!", "secret")
	require.Error(t, err)
}

func TestVerifyFailsClosedOnCorruptSalt(t *testing.T) {
	t.Parallel()

	hash, _, err := SaltedHash("secret")
	require.NoError(t, err)
	require.False(t, Verify("secret", hash, "not base64!!!"))
}

func TestVerifyEmptyPassword(t *testing.T) {
	t.Parallel()

	hash, salt, err := SaltedHash("")
	require.NoError(t, err)
	require.True(t, Verify("", hash, salt))
	require.False(t, Verify("anything", hash, salt))
}
