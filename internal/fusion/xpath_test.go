package fusion

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framemap/internal/snapshot"
)

func elem(backend int64, tag string, children ...*snapshot.DOMNode) *snapshot.DOMNode {
	return &snapshot.DOMNode{
		BackendNodeID: backend,
		NodeType:      snapshot.NodeTypeElement,
		NodeName:      tag,
		Children:      children,
	}
}

func textNode(v string) *snapshot.DOMNode {
	return &snapshot.DOMNode{NodeType: snapshot.NodeTypeText, NodeName: "#text", NodeValue: v}
}

func doc(children ...*snapshot.DOMNode) *snapshot.DOMNode {
	return &snapshot.DOMNode{NodeType: snapshot.NodeTypeDocument, NodeName: "#document", Children: children}
}

func TestIndexDocumentSiblingIndexing(t *testing.T) {
	d := doc(elem(1, "HTML",
		elem(2, "BODY",
			elem(3, "DIV"),
			textNode("between"),
			elem(4, "DIV"),
			elem(5, "SPAN"),
			elem(6, "DIV"),
		),
	))
	idx := indexDocument(d, 0)

	assert.Equal(t, "/html[1]", idx.xpath["0-1"])
	assert.Equal(t, "/html[1]/body[1]", idx.xpath["0-2"])
	assert.Equal(t, "/html[1]/body[1]/div[1]", idx.xpath["0-3"])
	// text siblings are not counted
	assert.Equal(t, "/html[1]/body[1]/div[2]", idx.xpath["0-4"])
	assert.Equal(t, "/html[1]/body[1]/span[1]", idx.xpath["0-5"])
	assert.Equal(t, "/html[1]/body[1]/div[3]", idx.xpath["0-6"])

	assert.Equal(t, "div", idx.tag["0-3"])
	assert.Equal(t, EncodedID("0-4"), idx.enc[4])
}

func TestIndexDocumentStopsAtIframes(t *testing.T) {
	inner := doc(elem(100, "HTML", elem(101, "BODY")))
	frame := elem(7, "IFRAME")
	frame.FrameID = "child"
	frame.ContentDocument = inner
	d := doc(elem(1, "HTML", elem(2, "BODY", frame)))

	idx := indexDocument(d, 0)

	require.Len(t, idx.iframes, 1)
	assert.Equal(t, "/html[1]/body[1]/iframe[1]", idx.iframes[0].xpath)
	// the nested document belongs to another frame
	assert.NotContains(t, idx.enc, int64(100))
	assert.Contains(t, idx.enc, int64(7))
}

// A nested document indexes relative to itself; its paths carry no trace of
// the hosting document.
func TestIndexDocumentNestedPathsAreDocumentRelative(t *testing.T) {
	d := doc(elem(1, "HTML", elem(2, "BODY", elem(3, "BUTTON"))))
	idx := indexDocument(d, 2)
	assert.Equal(t, "/html[1]/body[1]/button[1]", idx.xpath["2-3"])
}

// Every recorded path, evaluated against the document it was indexed from,
// lands on exactly the element owning the identifier.
func TestIndexDocumentPathsRoundTrip(t *testing.T) {
	d := doc(elem(1, "HTML",
		elem(2, "BODY",
			elem(3, "DIV", elem(7, "P"), elem(8, "P")),
			textNode("noise"),
			elem(4, "DIV"),
			elem(5, "SPAN", elem(9, "BUTTON")),
		),
	))
	idx := indexDocument(d, 0)
	require.NotEmpty(t, idx.xpath)

	for id, path := range idx.xpath {
		_, backend, err := ParseEncodedID(string(id))
		require.NoError(t, err)
		got := evalSteps(d, path)
		require.NotNil(t, got, "path %s resolved to nothing", path)
		assert.Equal(t, backend, got.BackendNodeID, "path %s", path)
	}
}

// evalSteps walks a /tag[n] path against a document the way the index
// records it: 1-based position among same-tag element siblings, document
// nodes transparent.
func evalSteps(root *snapshot.DOMNode, path string) *snapshot.DOMNode {
	cur := root
	for _, step := range strings.Split(strings.TrimPrefix(path, "/"), "/") {
		open := strings.IndexByte(step, '[')
		if open < 0 || !strings.HasSuffix(step, "]") {
			return nil
		}
		tag := step[:open]
		want, err := strconv.Atoi(step[open+1 : len(step)-1])
		if err != nil {
			return nil
		}
		var next *snapshot.DOMNode
		seen := 0
		for _, c := range elementChildren(cur) {
			if c.Tag() == tag {
				seen++
				if seen == want {
					next = c
					break
				}
			}
		}
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

func elementChildren(n *snapshot.DOMNode) []*snapshot.DOMNode {
	var out []*snapshot.DOMNode
	for _, c := range n.Children {
		switch c.NodeType {
		case snapshot.NodeTypeElement:
			out = append(out, c)
		case snapshot.NodeTypeDocument:
			out = append(out, elementChildren(c)...)
		}
	}
	return out
}

func TestIndexDocumentShadowRoots(t *testing.T) {
	hostChildTag := elem(20, "BUTTON")
	host := elem(10, "DIV")
	host.ShadowRoots = []*snapshot.DOMNode{
		{NodeType: snapshot.NodeTypeDocument, Children: []*snapshot.DOMNode{hostChildTag}},
	}
	d := doc(elem(1, "HTML", elem(2, "BODY", host)))

	idx := indexDocument(d, 0)

	// shadow content stays addressable by id but has no XPath
	assert.Equal(t, EncodedID("0-20"), idx.enc[20])
	assert.Equal(t, "button", idx.tag["0-20"])
	assert.NotContains(t, idx.xpath, EncodedID("0-20"))
}
