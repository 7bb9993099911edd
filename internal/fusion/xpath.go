package fusion

import (
	"fmt"

	"framemap/internal/snapshot"
)

// iframeHost is a frame-hosting element found during a document walk, with
// its path in the owning document so callers can reach the frame boundary.
type iframeHost struct {
	node  *snapshot.DOMNode
	xpath string
}

// domIndex is the per-document product of step one of fusion: encoded
// identifiers, tag names and XPath for every element, plus the frame hosts
// in document order.
type domIndex struct {
	enc     map[int64]EncodedID
	xpath   map[EncodedID]string
	tag     map[EncodedID]string
	iframes []*iframeHost
}

// indexDocument walks one document depth-first and assigns every element an
// encoded identifier and an XPath. Paths address elements by tag with a
// 1-based index among same-tag element siblings; non-element siblings are
// not counted. Paths are relative to the element's own document, so each one
// evaluates against that document alone; crossing into a nested frame means
// evaluating the host element's path first (IframeRef.XPath carries it).
//
// The walk descends through shadow roots so their elements stay addressable
// by encoded identifier, but emits no XPath for them: XPath cannot cross a
// shadow boundary. It stops at frame-hosting elements; nested documents are
// separate browsing contexts resolved on their own.
func indexDocument(doc *snapshot.DOMNode, ordinal int) *domIndex {
	idx := &domIndex{
		enc:   make(map[int64]EncodedID),
		xpath: make(map[EncodedID]string),
		tag:   make(map[EncodedID]string),
	}
	var walk func(parentPath string, children []*snapshot.DOMNode, inShadow bool)
	walk = func(parentPath string, children []*snapshot.DOMNode, inShadow bool) {
		counts := make(map[string]int)
		for _, c := range children {
			switch c.NodeType {
			case snapshot.NodeTypeElement:
				tag := c.Tag()
				counts[tag]++
				path := fmt.Sprintf("%s/%s[%d]", parentPath, tag, counts[tag])
				id := Encode(ordinal, c.BackendNodeID)
				idx.enc[c.BackendNodeID] = id
				idx.tag[id] = tag
				if !inShadow {
					idx.xpath[id] = path
				}
				if c.IsIframe() {
					idx.iframes = append(idx.iframes, &iframeHost{node: c, xpath: path})
					continue
				}
				for _, sr := range c.ShadowRoots {
					walk(path, sr.Children, true)
				}
				walk(path, c.Children, inShadow)
			case snapshot.NodeTypeDocument:
				walk(parentPath, c.Children, inShadow)
			}
		}
	}
	walk("", doc.Children, false)
	return idx
}
