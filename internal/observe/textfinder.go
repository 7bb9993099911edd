package observe

import (
	"context"
	"strings"

	"framemap/internal/fusion"
)

// NewTextFinder returns a finder that matches instruction words against node
// names, values, and roles, case-insensitively. It is the built-in fallback
// for when no external finder is configured.
func NewTextFinder(limit int) Finder {
	if limit <= 0 {
		limit = 5
	}
	return FinderFunc(func(ctx context.Context, instruction string, tree *fusion.ResolvedTree) ([]Candidate, error) {
		words := strings.Fields(strings.ToLower(instruction))
		if len(words) == 0 {
			return nil, nil
		}
		var out []Candidate
		for _, f := range tree.Flatten() {
			if f.ID == "" {
				continue
			}
			hay := strings.ToLower(f.Name + " " + f.Value + " " + f.Role + " " + f.Tag)
			if !containsAll(hay, words) {
				continue
			}
			out = append(out, Candidate{ID: f.ID, Description: describe(f)})
			if len(out) == limit {
				break
			}
		}
		return out, nil
	})
}

func containsAll(hay string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(hay, w) {
			return false
		}
	}
	return true
}

func describe(f fusion.FlatNode) string {
	if f.Name != "" {
		return f.Role + " " + strings.TrimSpace(f.Name)
	}
	return f.Role
}
