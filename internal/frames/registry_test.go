package frames

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrdinalsAreFirstSeen(t *testing.T) {
	r := NewRegistry()

	main := r.RegisterMain("main", "https://example.com")
	assert.Equal(t, 0, main.Ordinal)

	a, err := r.Register("frame-a", "main", "")
	require.NoError(t, err)
	b, err := r.Register("frame-b", "main", "")
	require.NoError(t, err)
	assert.Equal(t, 1, a.Ordinal)
	assert.Equal(t, 2, b.Ordinal)

	// re-registration keeps the original ordinal
	a2, err := r.Register("frame-a", "main", "https://a.example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, a2.Ordinal)
	assert.Equal(t, "https://a.example.com", a2.URL)

	// new frames keep counting, no reuse of ordinals
	c, err := r.Register("frame-c", "frame-a", "")
	require.NoError(t, err)
	assert.Equal(t, 3, c.Ordinal)
}

func TestRegisterMainIdempotent(t *testing.T) {
	r := NewRegistry()
	first := r.RegisterMain("main", "")
	again := r.RegisterMain("main", "https://example.com")
	assert.Equal(t, first.Ordinal, again.Ordinal)
	assert.Equal(t, "https://example.com", again.URL)
}

func TestRegisterUnknownParent(t *testing.T) {
	r := NewRegistry()
	r.RegisterMain("main", "")
	_, err := r.Register("orphan", "nope", "")
	var uf *UnknownFrameError
	require.ErrorAs(t, err, &uf)
	assert.Equal(t, "nope", uf.FrameID)
}

func TestLookups(t *testing.T) {
	r := NewRegistry()
	r.RegisterMain("main", "")
	_, err := r.Register("child", "main", "")
	require.NoError(t, err)

	ord, err := r.OrdinalOf("child")
	require.NoError(t, err)
	assert.Equal(t, 1, ord)

	parent, err := r.ParentOf("child")
	require.NoError(t, err)
	assert.Equal(t, "main", parent)

	_, err = r.OrdinalOf("missing")
	assert.Error(t, err)

	all := r.Frames()
	require.Len(t, all, 2)
	assert.Equal(t, "main", all[0].ID)
	assert.Equal(t, "child", all[1].ID)
}
