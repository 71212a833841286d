package listmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntry_DomainPattern(t *testing.T) {
	ok, err := Entry("user@spam.com", "@spam.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEntry_DomainPattern_CaseInsensitive(t *testing.T) {
	ok, err := Entry("user@Spam.COM", "@spam.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEntry_DomainPattern_NoMatch(t *testing.T) {
	ok, err := Entry("user@example.com", "@spam.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEntry_ExactAddress(t *testing.T) {
	ok, err := Entry("alice@example.com", "alice@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEntry_ExactAddress_DomainCaseInsensitive(t *testing.T) {
	ok, err := Entry("alice@EXAMPLE.com", "alice@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEntry_ExactAddress_LocalPartIsExact(t *testing.T) {
	ok, err := Entry("Alice@example.com", "alice@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEntry_Malformed(t *testing.T) {
	for _, entry := range []string{"", "   ", "@", "not-an-address"} {
		_, err := Entry("a@b.com", entry)
		assert.ErrorIs(t, err, ErrMalformedEntry, "entry %q", entry)
	}
}

func TestAny_MatchBeatsMalformedEntry(t *testing.T) {
	ok, err := Any("user@spam.com", []string{"garbage", "@spam.com"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAny_MalformedSurfacesWhenNothingMatches(t *testing.T) {
	ok, err := Any("user@example.com", []string{"garbage", "@spam.com"})
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrMalformedEntry)
}

func TestAny_EmptyList(t *testing.T) {
	ok, err := Any("user@example.com", nil)
	require.NoError(t, err)
	assert.False(t, ok)
}
