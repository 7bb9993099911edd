// Package observe defines the element-finder boundary: an external reasoning
// component that, given an instruction and a resolved tree, names candidate
// nodes by encoded identifier. The resolution engine only supplies the tree
// and validates what comes back; how candidates are chosen is not its
// concern.
package observe

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"framemap/internal/fusion"
)

// Candidate is one node an element finder proposes for an instruction.
type Candidate struct {
	ID          fusion.EncodedID `yaml:"id" json:"id"`
	Description string           `yaml:"description,omitempty" json:"description,omitempty"`
}

// Finder resolves a natural-language instruction against a resolved tree.
type Finder interface {
	Find(ctx context.Context, instruction string, tree *fusion.ResolvedTree) ([]Candidate, error)
}

// FinderFunc adapts a function to the Finder interface.
type FinderFunc func(ctx context.Context, instruction string, tree *fusion.ResolvedTree) ([]Candidate, error)

func (f FinderFunc) Find(ctx context.Context, instruction string, tree *fusion.ResolvedTree) ([]Candidate, error) {
	return f(ctx, instruction, tree)
}

// Cache memoizes finder results keyed by instruction and tree content, so
// repeated observations of an unchanged page skip the external call.
type Cache struct {
	finder Finder
	lru    *lru.Cache[string, []Candidate]
}

// NewCache wraps a finder with an LRU of the given size.
func NewCache(finder Finder, size int) (*Cache, error) {
	c, err := lru.New[string, []Candidate](size)
	if err != nil {
		return nil, err
	}
	return &Cache{finder: finder, lru: c}, nil
}

func cacheKey(instruction, simplified string) string {
	h := sha256.New()
	h.Write([]byte(instruction))
	h.Write([]byte{0})
	h.Write([]byte(simplified))
	return hex.EncodeToString(h.Sum(nil))
}

// Find returns cached candidates when the instruction and tree match a
// previous call, otherwise consults the finder. Every returned identifier is
// validated against the tree: a finder answering with identifiers the page
// does not contain is an error, not something to pass through.
func (c *Cache) Find(ctx context.Context, instruction string, tree *fusion.ResolvedTree) ([]Candidate, error) {
	key := cacheKey(instruction, tree.Simplified)
	if cached, ok := c.lru.Get(key); ok {
		return cached, nil
	}
	found, err := c.finder.Find(ctx, instruction, tree)
	if err != nil {
		return nil, err
	}
	for _, cand := range found {
		n, err := tree.Lookup(string(cand.ID))
		if err != nil {
			return nil, fmt.Errorf("finder returned %w", err)
		}
		if n == nil {
			return nil, fmt.Errorf("finder returned %s, not present in tree", cand.ID)
		}
	}
	c.lru.Add(key, found)
	return found, nil
}

// Invalidate drops all memoized results.
func (c *Cache) Invalidate() {
	c.lru.Purge()
}
