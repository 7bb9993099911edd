package fusion

import "strings"

// Simplify renders the fused tree one node per line, indented by depth:
//
//	[0-3] RootWebArea: Example Domain
//	  [0-7] button: Submit
//	  nav
//
// Nodes without an encoded identifier (structural accessibility nodes with
// no DOM counterpart) print role only, unbracketed. Names are cleaned and
// truncated to maxName runes.
func Simplify(root *Node, maxName int) string {
	var b strings.Builder
	var rec func(n *Node, depth int)
	rec = func(n *Node, depth int) {
		if n == nil {
			return
		}
		b.WriteString(strings.Repeat("  ", depth))
		if n.ID != "" {
			b.WriteString("[")
			b.WriteString(string(n.ID))
			b.WriteString("] ")
		}
		role := n.Role
		if role == "" {
			role = n.Tag
		}
		if role == "" {
			role = "node"
		}
		b.WriteString(role)
		if name := truncate(n.Name, maxName); name != "" {
			b.WriteString(": ")
			b.WriteString(name)
		}
		b.WriteByte('\n')
		for _, c := range n.Children {
			rec(c, depth+1)
		}
	}
	rec(root, 0)
	return b.String()
}
