package observe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framemap/internal/fusion"
)

func textFinderTree() *fusion.ResolvedTree {
	return &fusion.ResolvedTree{
		Root: &fusion.Node{
			Role: "RootWebArea",
			Name: "Checkout",
			Children: []*fusion.Node{
				{ID: "0-10", BackendID: 10, Role: "button", Name: "Submit order", Tag: "button"},
				{ID: "0-11", BackendID: 11, Role: "link", Name: "Back to cart", Tag: "a"},
				{ID: "0-12", BackendID: 12, Role: "textbox", Name: "Email", Value: "a@b.c", Tag: "input"},
			},
		},
	}
}

func TestTextFinderMatchesAllWords(t *testing.T) {
	f := NewTextFinder(0)

	found, err := f.Find(context.Background(), "submit button", textFinderTree())
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, fusion.EncodedID("0-10"), found[0].ID)
	assert.Equal(t, "button Submit order", found[0].Description)
}

func TestTextFinderCaseInsensitive(t *testing.T) {
	f := NewTextFinder(0)

	found, err := f.Find(context.Background(), "EMAIL", textFinderTree())
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, fusion.EncodedID("0-12"), found[0].ID)
}

func TestTextFinderLimit(t *testing.T) {
	f := NewTextFinder(1)

	// every node's haystack contains a letter both names share
	found, err := f.Find(context.Background(), "t", textFinderTree())
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestTextFinderNoMatch(t *testing.T) {
	f := NewTextFinder(0)

	found, err := f.Find(context.Background(), "nonexistent widget", textFinderTree())
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestTextFinderSkipsStructuralNodes(t *testing.T) {
	f := NewTextFinder(0)

	// the root has no encoded identifier so it is never a candidate
	found, err := f.Find(context.Background(), "checkout", textFinderTree())
	require.NoError(t, err)
	assert.Empty(t, found)
}
