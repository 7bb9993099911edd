package observe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framemap/internal/fusion"
)

func testTree(simplified string) *fusion.ResolvedTree {
	return &fusion.ResolvedTree{
		Root: &fusion.Node{
			ID:   "0-1",
			Role: "RootWebArea",
			Children: []*fusion.Node{
				{ID: "0-7", Role: "button", Name: "Submit"},
			},
		},
		Simplified: simplified,
	}
}

func TestCacheMemoizesByInstructionAndTree(t *testing.T) {
	calls := 0
	f := FinderFunc(func(ctx context.Context, instruction string, tree *fusion.ResolvedTree) ([]Candidate, error) {
		calls++
		return []Candidate{{ID: "0-7", Description: "submit button"}}, nil
	})
	c, err := NewCache(f, 8)
	require.NoError(t, err)

	tree := testTree("v1")
	got, err := c.Find(context.Background(), "click submit", tree)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, fusion.EncodedID("0-7"), got[0].ID)
	assert.Equal(t, 1, calls)

	// same instruction, same tree: served from cache
	_, err = c.Find(context.Background(), "click submit", tree)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	// tree changed: finder consulted again
	_, err = c.Find(context.Background(), "click submit", testTree("v2"))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	// different instruction: finder consulted again
	_, err = c.Find(context.Background(), "click cancel", tree)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestCacheRejectsUnknownCandidates(t *testing.T) {
	f := FinderFunc(func(ctx context.Context, instruction string, tree *fusion.ResolvedTree) ([]Candidate, error) {
		return []Candidate{{ID: "9-9"}}, nil
	})
	c, err := NewCache(f, 8)
	require.NoError(t, err)

	_, err = c.Find(context.Background(), "click", testTree("v1"))
	assert.ErrorContains(t, err, "not present in tree")
}

func TestCacheRejectsMalformedCandidates(t *testing.T) {
	f := FinderFunc(func(ctx context.Context, instruction string, tree *fusion.ResolvedTree) ([]Candidate, error) {
		return []Candidate{{ID: "bogus"}}, nil
	})
	c, err := NewCache(f, 8)
	require.NoError(t, err)

	_, err = c.Find(context.Background(), "click", testTree("v1"))
	var me *fusion.MalformedEncodedIDError
	assert.ErrorAs(t, err, &me)
}

func TestCachePropagatesFinderErrors(t *testing.T) {
	boom := errors.New("model unavailable")
	f := FinderFunc(func(ctx context.Context, instruction string, tree *fusion.ResolvedTree) ([]Candidate, error) {
		return nil, boom
	})
	c, err := NewCache(f, 8)
	require.NoError(t, err)

	_, err = c.Find(context.Background(), "click", testTree("v1"))
	assert.ErrorIs(t, err, boom)
}

func TestInvalidate(t *testing.T) {
	calls := 0
	f := FinderFunc(func(ctx context.Context, instruction string, tree *fusion.ResolvedTree) ([]Candidate, error) {
		calls++
		return nil, nil
	})
	c, err := NewCache(f, 8)
	require.NoError(t, err)

	tree := testTree("v1")
	_, _ = c.Find(context.Background(), "x", tree)
	c.Invalidate()
	_, _ = c.Find(context.Background(), "x", tree)
	assert.Equal(t, 2, calls)
}
