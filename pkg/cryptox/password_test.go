package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	digest, err := HashPassword("pw123456")
	require.NoError(t, err)
	require.NotEqual(t, "pw123456", digest)
	require.True(t, strings.HasPrefix(digest, "$2"), "expected bcrypt digest, got %q", digest)

	require.True(t, VerifyPassword("pw123456", digest))
	require.False(t, VerifyPassword("pw123457", digest))
}

func TestHashPassword_TooShort(t *testing.T) {
	_, err := HashPassword("short")
	require.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = HashPassword("")
	require.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestHashPassword_SaltedDigestsDiffer(t *testing.T) {
	d1, err := HashPassword("pw123456")
	require.NoError(t, err)
	d2, err := HashPassword("pw123456")
	require.NoError(t, err)
	require.NotEqual(t, d1, d2, "two hashes of the same password must use different salts")
}

func TestVerifyPassword_MalformedInputs(t *testing.T) {
	require.False(t, VerifyPassword("", ""))
	require.False(t, VerifyPassword("pw123456", ""))
	require.False(t, VerifyPassword("", "$2a$10$abcdefg"))
	require.False(t, VerifyPassword("pw123456", "not-a-bcrypt-digest"))
}
