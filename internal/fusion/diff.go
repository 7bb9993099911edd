package fusion

// Change pairs the before and after states of one node whose content moved
// between two resolutions of the same page.
type Change struct {
	ID     EncodedID `json:"id" yaml:"id"`
	Before FlatNode  `json:"before" yaml:"before"`
	After  FlatNode  `json:"after" yaml:"after"`
}

// DiffResult describes how a page changed between two resolutions. Nodes are
// matched by encoded identifier, which is stable while the page does not
// navigate: ordinals persist across resolutions and backend identities
// persist for a node's lifetime.
type DiffResult struct {
	Added   []FlatNode `json:"added,omitempty" yaml:"added,omitempty"`
	Removed []FlatNode `json:"removed,omitempty" yaml:"removed,omitempty"`
	Changed []Change   `json:"changed,omitempty" yaml:"changed,omitempty"`
}

// Empty reports whether the two trees were identical.
func (d DiffResult) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

func signature(f FlatNode) string {
	return f.Role + "\x00" + f.Name + "\x00" + f.Value + "\x00" + f.Tag
}

// Diff compares two resolutions. Structural-only nodes without identifiers
// are ignored; they cannot be matched across snapshots.
func Diff(before, after *ResolvedTree) DiffResult {
	prev := make(map[EncodedID]FlatNode)
	for _, f := range before.Flatten() {
		if f.ID != "" {
			prev[f.ID] = f
		}
	}
	var d DiffResult
	seen := make(map[EncodedID]bool)
	for _, f := range after.Flatten() {
		if f.ID == "" {
			continue
		}
		seen[f.ID] = true
		old, ok := prev[f.ID]
		if !ok {
			d.Added = append(d.Added, f)
			continue
		}
		if signature(old) != signature(f) {
			d.Changed = append(d.Changed, Change{ID: f.ID, Before: old, After: f})
		}
	}
	for _, f := range before.Flatten() {
		if f.ID != "" && !seen[f.ID] {
			d.Removed = append(d.Removed, f)
		}
	}
	return d
}
