// Package snapshot captures raw DOM and accessibility trees from one
// browsing context. It decodes only the fields the fusion layer consumes;
// everything else in the protocol payloads is ignored on purpose, so protocol
// additions never break decoding.
package snapshot

import "strings"

// Node type constants from the DOM spec.
const (
	NodeTypeElement  = 1
	NodeTypeText     = 3
	NodeTypeComment  = 8
	NodeTypeDocument = 9
)

// DOMNode is one node of a DOM.getDocument response. Attributes arrive as a
// flat name/value pair list, kept as-is.
type DOMNode struct {
	NodeID          int64      `json:"nodeId"`
	BackendNodeID   int64      `json:"backendNodeId"`
	NodeType        int        `json:"nodeType"`
	NodeName        string     `json:"nodeName"`
	NodeValue       string     `json:"nodeValue"`
	Attributes      []string   `json:"attributes"`
	FrameID         string     `json:"frameId"`
	Children        []*DOMNode `json:"children"`
	ContentDocument *DOMNode   `json:"contentDocument"`
	ShadowRoots     []*DOMNode `json:"shadowRoots"`
	DocumentURL     string     `json:"documentURL"`
}

// Tag returns the lowercased element name.
func (n *DOMNode) Tag() string {
	return strings.ToLower(n.NodeName)
}

// Attr returns a named attribute's value, "" when absent.
func (n *DOMNode) Attr(name string) string {
	for i := 0; i+1 < len(n.Attributes); i += 2 {
		if strings.EqualFold(n.Attributes[i], name) {
			return n.Attributes[i+1]
		}
	}
	return ""
}

// IsIframe reports whether the node hosts a nested browsing context.
func (n *DOMNode) IsIframe() bool {
	if n.NodeType != NodeTypeElement {
		return false
	}
	tag := n.Tag()
	return tag == "iframe" || tag == "frame"
}
