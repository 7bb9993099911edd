package fusion

// FlatNode is one row of the flattened tree: the fused node joined with its
// path data, convenient for tabular output and diffing.
type FlatNode struct {
	ID    EncodedID `json:"id,omitempty" yaml:"id,omitempty"`
	Role  string    `json:"role" yaml:"role"`
	Name  string    `json:"name,omitempty" yaml:"name,omitempty"`
	Value string    `json:"value,omitempty" yaml:"value,omitempty"`
	Tag   string    `json:"tag,omitempty" yaml:"tag,omitempty"`
	XPath string    `json:"xpath,omitempty" yaml:"xpath,omitempty"`
	Depth int       `json:"depth" yaml:"depth"`
}

// Flatten lists every fused node depth-first in document order.
func (t *ResolvedTree) Flatten() []FlatNode {
	var out []FlatNode
	t.Walk(func(n *Node, depth int) {
		f := FlatNode{
			ID:    n.ID,
			Role:  n.Role,
			Name:  n.Name,
			Value: n.Value,
			Tag:   n.Tag,
			Depth: depth,
		}
		if n.ID != "" {
			f.XPath = t.XPathMap[n.ID]
		}
		out = append(out, f)
	})
	return out
}

// Interactive lists only actionable nodes: interactive roles plus anything
// carrying an accessible name and an encoded identifier.
func (t *ResolvedTree) Interactive() []FlatNode {
	var out []FlatNode
	for _, f := range t.Flatten() {
		if f.ID == "" {
			continue
		}
		if interactiveRoles[f.Role] || f.Name != "" {
			out = append(out, f)
		}
	}
	return out
}
