package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framemap/internal/snapshot"
)

func ax(id, role, name string, backend int64, childIDs ...string) *snapshot.AXNode {
	return &snapshot.AXNode{ID: id, Role: role, Name: name, BackendID: backend, ChildIDs: childIDs}
}

func linkParents(nodes []*snapshot.AXNode) []*snapshot.AXNode {
	byID := make(map[string]*snapshot.AXNode)
	for _, n := range nodes {
		byID[n.ID] = n
	}
	for _, n := range nodes {
		for _, c := range n.ChildIDs {
			if child := byID[c]; child != nil {
				child.ParentID = n.ID
			}
		}
	}
	return nodes
}

func simpleIndex(ordinal int, backends map[int64]string) *domIndex {
	idx := &domIndex{
		enc:   make(map[int64]EncodedID),
		xpath: make(map[EncodedID]string),
		tag:   make(map[EncodedID]string),
	}
	for b, tag := range backends {
		id := Encode(ordinal, b)
		idx.enc[b] = id
		idx.tag[id] = tag
	}
	return idx
}

func TestBuildFusedTreeAttachesIdentifiers(t *testing.T) {
	nodes := linkParents([]*snapshot.AXNode{
		ax("1", "RootWebArea", "Example", 1, "2"),
		ax("2", "button", "Submit", 7),
	})
	idx := simpleIndex(0, map[int64]string{1: "html", 7: "button"})

	root := buildFusedTree(nodes, idx)
	require.NotNil(t, root)
	assert.Equal(t, EncodedID("0-1"), root.ID)
	require.Len(t, root.Children, 1)
	btn := root.Children[0]
	assert.Equal(t, EncodedID("0-7"), btn.ID)
	assert.Equal(t, "button", btn.Role)
	assert.Equal(t, "Submit", btn.Name)
}

func TestBuildFusedTreePromotesIgnoredChildren(t *testing.T) {
	nodes := linkParents([]*snapshot.AXNode{
		ax("1", "RootWebArea", "Example", 1, "2"),
		{ID: "2", Ignored: true, ChildIDs: []string{"3"}},
		ax("3", "link", "Docs", 9),
	})
	root := buildFusedTree(nodes, simpleIndex(0, nil))
	require.NotNil(t, root)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "link", root.Children[0].Role)
}

func TestBuildFusedTreeKeepsStructuralOnlyNodes(t *testing.T) {
	nodes := linkParents([]*snapshot.AXNode{
		ax("1", "RootWebArea", "Example", 1, "2"),
		ax("2", "navigation", "Primary", 0),
	})
	root := buildFusedTree(nodes, simpleIndex(0, nil))
	require.Len(t, root.Children, 1)
	nav := root.Children[0]
	assert.Equal(t, EncodedID(""), nav.ID)
	assert.Equal(t, "Primary", nav.Name)
}

func TestPruneCollapsesStructuralChains(t *testing.T) {
	root := &Node{Role: "RootWebArea", Name: "Page", Children: []*Node{
		{Role: "generic", Children: []*Node{
			{Role: "generic", Children: []*Node{
				{Role: "button", Name: "Go", ID: "0-5"},
			}},
		}},
	}}
	p := prune(root, nil)
	require.NotNil(t, p)
	require.Len(t, p.Children, 1)
	assert.Equal(t, "button", p.Children[0].Role)
}

func TestPruneDropsEmptyAndDuplicateText(t *testing.T) {
	root := &Node{Role: "RootWebArea", Name: "Page", Children: []*Node{
		{Role: "generic"},
		{Role: "heading", Name: "Title", Children: []*Node{
			{Role: "StaticText", Name: "Title"},
		}},
		{Role: "StaticText", Name: "standalone"},
	}}
	p := prune(root, nil)
	require.NotNil(t, p)
	require.Len(t, p.Children, 2)
	assert.Equal(t, "heading", p.Children[0].Role)
	assert.Empty(t, p.Children[0].Children)
	assert.Equal(t, "standalone", p.Children[1].Name)
}

func TestPruneKeepsNamelessInteractive(t *testing.T) {
	root := &Node{Role: "RootWebArea", Name: "Page", Children: []*Node{
		{Role: "textbox", ID: "0-9"},
		{Role: "paragraph"},
	}}
	p := prune(root, nil)
	require.Len(t, p.Children, 1)
	assert.Equal(t, "textbox", p.Children[0].Role)
}

func TestPruneKeepsFrameHosts(t *testing.T) {
	root := &Node{Role: "RootWebArea", Name: "Page", Children: []*Node{
		{Role: "Iframe", BackendID: 12, ID: "0-12"},
	}}
	p := prune(root, map[int64]bool{12: true})
	require.Len(t, p.Children, 1)
	assert.Equal(t, int64(12), p.Children[0].BackendID)
}

func TestPruneNamesStructuralByTag(t *testing.T) {
	root := &Node{Role: "RootWebArea", Name: "Page", Children: []*Node{
		{Role: "generic", Tag: "nav", Children: []*Node{
			{Role: "link", Name: "Home"},
			{Role: "link", Name: "About"},
		}},
	}}
	p := prune(root, nil)
	require.Len(t, p.Children, 1)
	assert.Equal(t, "nav", p.Children[0].Role)
}

func TestSimplifyFormat(t *testing.T) {
	root := &Node{ID: "0-1", Role: "RootWebArea", Name: "Example", Children: []*Node{
		{Role: "navigation", Children: []*Node{
			{ID: "0-7", Role: "link", Name: "Docs"},
		}},
	}}
	got := Simplify(root, 120)
	want := "[0-1] RootWebArea: Example\n" +
		"  navigation\n" +
		"    [0-7] link: Docs\n"
	assert.Equal(t, want, got)
}

func TestSimplifyTruncatesNames(t *testing.T) {
	root := &Node{ID: "0-1", Role: "heading", Name: "abcdefghij"}
	got := Simplify(root, 4)
	assert.Equal(t, "[0-1] heading: abcd...\n", got)
}
