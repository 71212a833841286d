package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testKey = []byte("0123456789abcdef0123456789abcdef") // 32 bytes

func bcryptHash(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestVerify_BcryptScheme_Match(t *testing.T) {
	stored := bcryptHash(t, "s3cret")
	ok, err := Verify(stored, "s3cret", nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_BcryptScheme_Mismatch(t *testing.T) {
	stored := bcryptHash(t, "s3cret")
	ok, err := Verify(stored, "wrong", nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_LegacyScheme_Match(t *testing.T) {
	stored, err := Encrypt("s3cret", testKey)
	require.NoError(t, err)
	require.Len(t, strings.Split(stored, ":"), 2)

	ok, err := Verify(stored, "s3cret", testKey)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_LegacyScheme_Mismatch(t *testing.T) {
	stored, err := Encrypt("s3cret", testKey)
	require.NoError(t, err)

	ok, err := Verify(stored, "wrong", testKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_SchemeSelectedByColonMarker(t *testing.T) {
	// A bcrypt hash never contains a colon, so it must take the hash path
	// even with a legacy key configured.
	stored := bcryptHash(t, "s3cret")
	ok, err := Verify(stored, "s3cret", testKey)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_LegacyScheme_GarbageCiphertext(t *testing.T) {
	_, err := Verify("aabb:not-hex", "anything", testKey)
	assert.Error(t, err)
}
