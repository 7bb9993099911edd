package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeParseRoundTrip(t *testing.T) {
	id := Encode(3, 1042)
	assert.Equal(t, EncodedID("3-1042"), id)

	ord, backend, err := ParseEncodedID(string(id))
	require.NoError(t, err)
	assert.Equal(t, 3, ord)
	assert.Equal(t, int64(1042), backend)
}

func TestParseEncodedIDRejectsMalformed(t *testing.T) {
	for _, in := range []string{
		"", "1", "1-", "-1", "a-1", "1-b", "1-2-3", "1 - 2", "-1-2", "1.0-2",
	} {
		_, _, err := ParseEncodedID(in)
		var me *MalformedEncodedIDError
		require.ErrorAs(t, err, &me, "input %q", in)
		assert.Equal(t, in, me.Input)
	}
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b", cleanText("a\u00a0\u00a0b"))
	assert.Equal(t, "ab", cleanText("\ue001a\uf8ffb"))
	assert.Equal(t, "one two", cleanText("  one \n\t two  "))
	assert.Equal(t, "", cleanText(""))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "abcde...", truncate("abcdefgh", 5))
	assert.Equal(t, "abcdefgh", truncate("abcdefgh", 0))
}
