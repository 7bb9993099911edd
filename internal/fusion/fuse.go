package fusion

import "framemap/internal/snapshot"

// interactiveRoles are kept in the simplified tree even when nameless: they
// are the targets actions get dispatched to.
var interactiveRoles = map[string]bool{
	"button":           true,
	"link":             true,
	"textbox":          true,
	"searchbox":        true,
	"checkbox":         true,
	"radio":            true,
	"combobox":         true,
	"listbox":          true,
	"option":           true,
	"menuitem":         true,
	"menuitemcheckbox": true,
	"menuitemradio":    true,
	"tab":              true,
	"switch":           true,
	"slider":           true,
	"spinbutton":       true,
}

// structuralRoles carry no semantics of their own and collapse away when
// they add nothing.
var structuralRoles = map[string]bool{
	"generic":          true,
	"none":             true,
	"presentation":     true,
	"GenericContainer": true,
	"Ignored":          true,
	"InlineTextBox":    true,
}

// buildFusedTree converts the flat accessibility node list into a fused tree,
// attaching encoded identifiers and tag names from the document index.
// Ignored accessibility nodes are spliced out with their children promoted.
func buildFusedTree(axNodes []*snapshot.AXNode, idx *domIndex) *Node {
	byID := make(map[string]*snapshot.AXNode, len(axNodes))
	for _, n := range axNodes {
		byID[n.ID] = n
	}
	var root *snapshot.AXNode
	for _, n := range axNodes {
		if n.ParentID == "" || byID[n.ParentID] == nil {
			root = n
			break
		}
	}
	if root == nil {
		return nil
	}

	var convert func(raw *snapshot.AXNode) []*Node
	convert = func(raw *snapshot.AXNode) []*Node {
		var kids []*Node
		for _, cid := range raw.ChildIDs {
			if c := byID[cid]; c != nil {
				kids = append(kids, convert(c)...)
			}
		}
		if raw.Ignored {
			return kids
		}
		n := &Node{
			Role:       raw.Role,
			Name:       cleanText(raw.Name),
			Value:      cleanText(raw.Value),
			BackendID:  raw.BackendID,
			Properties: raw.Properties,
			Children:   kids,
		}
		if raw.BackendID != 0 {
			if id, ok := idx.enc[raw.BackendID]; ok {
				n.ID = id
				n.Tag = idx.tag[id]
			}
		}
		return []*Node{n}
	}

	top := convert(root)
	if len(top) == 0 {
		return nil
	}
	if len(top) == 1 {
		return top[0]
	}
	// ignored root, synthesize one
	return &Node{Role: "RootWebArea", Children: top}
}

// prune applies the redundancy rule, bottom-up. A node survives when it has
// a name, an interactive role, a surviving child, or hosts a nested frame
// (those anchor spliced subtrees). A nameless structural node with exactly
// one surviving child collapses to that child. A text leaf repeating its
// parent's name verbatim is dropped. The rule is deterministic: identical
// input trees always prune identically.
func prune(n *Node, hosts map[int64]bool) *Node {
	if n == nil {
		return nil
	}
	var kept []*Node
	for _, c := range n.Children {
		if p := prune(c, hosts); p != nil {
			if p.Role == "StaticText" && p.Name != "" && p.Name == n.Name {
				continue
			}
			kept = append(kept, p)
		}
	}
	n.Children = kept

	if hosts[n.BackendID] && n.BackendID != 0 {
		return n
	}
	if structuralRoles[n.Role] && n.Name == "" {
		if len(kept) == 1 {
			return kept[0]
		}
		if len(kept) == 0 {
			return nil
		}
		// structural node with several children: keep it for shape, name it
		// by its tag when one is known
		if n.Tag != "" {
			n.Role = n.Tag
		}
		return n
	}
	if n.Name == "" && !interactiveRoles[n.Role] && len(kept) == 0 {
		return nil
	}
	return n
}

// hostNode finds the fused node for a frame-hosting element by backend
// identity.
func hostNode(root *Node, backendID int64) *Node {
	if root == nil || backendID == 0 {
		return nil
	}
	if root.BackendID == backendID {
		return root
	}
	for _, c := range root.Children {
		if f := hostNode(c, backendID); f != nil {
			return f
		}
	}
	return nil
}
