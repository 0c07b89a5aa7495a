// Package canvas models JSON Canvas documents as produced from sketches.
package canvas

import "encoding/json"

type NodeColor string

const (
	ColorRed    NodeColor = "1"
	ColorOrange NodeColor = "2"
	ColorYellow NodeColor = "3"
	ColorGreen  NodeColor = "4"
	ColorBlue   NodeColor = "5"
	ColorPurple NodeColor = "6"
)

// Node is one canvas node. Properties without a field of their own, such as
// a group label or the path of a file node, live in Extra and are written
// back unchanged.
type Node struct {
	ID     string    `json:"id"`
	Type   string    `json:"type"`
	Text   *string   `json:"text,omitempty"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Width  float64   `json:"width"`
	Height float64   `json:"height"`
	Color  NodeColor `json:"color,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Edge connects two nodes. Extra carries properties like fromEnd, toEnd and
// color.
type Edge struct {
	ID       string `json:"id"`
	FromNode string `json:"fromNode"`
	FromSide string `json:"fromSide"`
	ToNode   string `json:"toNode"`
	ToSide   string `json:"toSide"`
	Label    string `json:"label,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var (
	nodeFields = []string{"id", "type", "text", "x", "y", "width", "height", "color"}
	edgeFields = []string{"id", "fromNode", "fromSide", "toNode", "toSide", "label"}
)

func (n *Node) UnmarshalJSON(data []byte) error {
	type plain Node
	if err := json.Unmarshal(data, (*plain)(n)); err != nil {
		return err
	}
	extra, err := unknownFields(data, nodeFields)
	if err != nil {
		return err
	}
	n.Extra = extra
	return nil
}

func (n Node) MarshalJSON() ([]byte, error) {
	type plain Node
	return withExtra(plain(n), n.Extra)
}

func (e *Edge) UnmarshalJSON(data []byte) error {
	type plain Edge
	if err := json.Unmarshal(data, (*plain)(e)); err != nil {
		return err
	}
	extra, err := unknownFields(data, edgeFields)
	if err != nil {
		return err
	}
	e.Extra = extra
	return nil
}

func (e Edge) MarshalJSON() ([]byte, error) {
	type plain Edge
	return withExtra(plain(e), e.Extra)
}

func unknownFields(data []byte, known []string) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// withExtra encodes v and adds every extra property that v does not set
// itself.
func withExtra(v any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		if _, ok := merged[k]; !ok {
			merged[k] = raw
		}
	}
	return json.Marshal(merged)
}

type Canvas struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Validate reports edges that point at node ids missing from the canvas.
// An empty result means every edge is connected.
func (c *Canvas) Validate() []string {
	ids := make(map[string]bool, len(c.Nodes))
	for _, n := range c.Nodes {
		ids[n.ID] = true
	}

	var problems []string
	for _, e := range c.Edges {
		if !ids[e.FromNode] {
			problems = append(problems, "edge "+e.ID+" starts at unknown node "+e.FromNode)
		}
		if !ids[e.ToNode] {
			problems = append(problems, "edge "+e.ID+" ends at unknown node "+e.ToNode)
		}
	}
	return problems
}
