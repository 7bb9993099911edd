package snapshot

import (
	"encoding/json"
	"strconv"
)

// AXNode is one node of the accessibility tree, flattened to the fields the
// fusion layer reads. Property values are stringified: the protocol sends a
// mix of strings, booleans, numbers and structured idref values, and the
// consumers only ever compare or print them.
type AXNode struct {
	ID          string
	Role        string
	Name        string
	Description string
	Value       string
	Ignored     bool
	Properties  map[string]string
	ParentID    string
	ChildIDs    []string
	BackendID   int64
}

// axValue decodes the protocol's AXValue envelope. Value stays raw: some
// property types (notably relationship values) carry objects where a scalar
// is expected, and a typed decode would reject the whole payload.
type axValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

func (v *axValue) String() string {
	if v == nil || len(v.Value) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(v.Value, &s); err == nil {
		return s
	}
	var b bool
	if err := json.Unmarshal(v.Value, &b); err == nil {
		return strconv.FormatBool(b)
	}
	var f float64
	if err := json.Unmarshal(v.Value, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	// structured value, keep the raw JSON
	return string(v.Value)
}

type axRawProperty struct {
	Name  string   `json:"name"`
	Value *axValue `json:"value"`
}

type axRawNode struct {
	NodeID           string          `json:"nodeId"`
	Ignored          bool            `json:"ignored"`
	Role             *axValue        `json:"role"`
	Name             *axValue        `json:"name"`
	Description      *axValue        `json:"description"`
	Value            *axValue        `json:"value"`
	Properties       []axRawProperty `json:"properties"`
	ParentID         string          `json:"parentId"`
	ChildIDs         []string        `json:"childIds"`
	BackendDOMNodeID int64           `json:"backendDOMNodeId"`
}

// axTreeResult is the Accessibility.getFullAXTree response shape.
type axTreeResult struct {
	Nodes []axRawNode `json:"nodes"`
}

func (r *axTreeResult) flatten() []*AXNode {
	out := make([]*AXNode, 0, len(r.Nodes))
	for i := range r.Nodes {
		raw := &r.Nodes[i]
		n := &AXNode{
			ID:          raw.NodeID,
			Role:        raw.Role.String(),
			Name:        raw.Name.String(),
			Description: raw.Description.String(),
			Value:       raw.Value.String(),
			Ignored:     raw.Ignored,
			ParentID:    raw.ParentID,
			ChildIDs:    raw.ChildIDs,
			BackendID:   raw.BackendDOMNodeID,
		}
		if len(raw.Properties) > 0 {
			n.Properties = make(map[string]string, len(raw.Properties))
			for _, p := range raw.Properties {
				n.Properties[p.Name] = p.Value.String()
			}
		}
		out = append(out, n)
	}
	return out
}
