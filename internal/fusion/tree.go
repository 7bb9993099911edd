package fusion

// Node is one fused tree node: accessibility role and name joined with the
// DOM identity they describe. Nodes with no DOM counterpart (purely
// structural accessibility nodes) carry an empty ID and zero BackendID.
type Node struct {
	ID         EncodedID
	BackendID  int64
	Role       string
	Name       string
	Value      string
	Tag        string
	Properties map[string]string
	Children   []*Node

	// FrameID is set on nodes hosting a nested browsing context.
	FrameID string
}

// IframeRef records a nested browsing context encountered during resolution.
type IframeRef struct {
	HostID  EncodedID `yaml:"host" json:"host"`
	FrameID string    `yaml:"frame" json:"frame"`
	Ordinal int       `yaml:"ordinal" json:"ordinal"`
	URL     string    `yaml:"url,omitempty" json:"url,omitempty"`
	XPath   string    `yaml:"xpath" json:"xpath"`
	// Aliased marks a same-process frame served by its ancestor's session.
	Aliased bool `yaml:"aliased" json:"aliased"`
	// Resolved is false when the subtree was omitted (see Diagnostics) or
	// recursion was disabled.
	Resolved bool `yaml:"resolved" json:"resolved"`
}

// Diagnostic explains an omitted subtree. Omissions are always explicit:
// a resolution never silently drops a frame.
type Diagnostic struct {
	FrameID string `yaml:"frame" json:"frame"`
	Stage   string `yaml:"stage" json:"stage"` // "session", "dom", "ax", "owner"
	Err     string `yaml:"error" json:"error"`
}

// ResolvedTree is the fusion output for one page: the fused node forest, the
// page-wide lookup maps, the nested frames encountered, and a simplified
// serialization for human or model consumption. Rebuilt on every resolution.
type ResolvedTree struct {
	Root       *Node
	Simplified string
	// XPathMap holds each element's path relative to its own document, so
	// the path evaluates there directly. To reach an element in a nested
	// frame, evaluate the host chain (IframeRef.XPath) frame by frame first.
	XPathMap    map[EncodedID]string
	TagMap      map[EncodedID]string
	URLMap      map[EncodedID]string
	Iframes     []IframeRef
	Diagnostics []Diagnostic
}

// Lookup finds the fused node for an encoded identifier, nil when the
// identifier is valid but not present in this tree.
func (t *ResolvedTree) Lookup(id string) (*Node, error) {
	if _, _, err := ParseEncodedID(id); err != nil {
		return nil, err
	}
	return findNode(t.Root, EncodedID(id)), nil
}

func findNode(n *Node, id EncodedID) *Node {
	if n == nil {
		return nil
	}
	if n.ID == id {
		return n
	}
	for _, c := range n.Children {
		if found := findNode(c, id); found != nil {
			return found
		}
	}
	return nil
}

// Walk visits every node depth-first, parents before children.
func (t *ResolvedTree) Walk(fn func(n *Node, depth int)) {
	var rec func(n *Node, depth int)
	rec = func(n *Node, depth int) {
		if n == nil {
			return
		}
		fn(n, depth)
		for _, c := range n.Children {
			rec(c, depth+1)
		}
	}
	rec(t.Root, 0)
}
