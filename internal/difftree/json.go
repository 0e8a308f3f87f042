package difftree

import (
	"encoding/json"
	"io"
)

// jsonNode is the wire shape of one diff-tree level. Every level, the root
// included, carries the same four keys: the two per-side contexts, the
// records found at this level, and the deeper descents. The arrays are
// always present, empty rather than null.
type jsonNode struct {
	Left     Context     `json:"left"`
	Right    Context     `json:"right"`
	Diffs    []jsonDiff  `json:"diffs"`
	Children []*jsonNode `json:"children"`
}

// jsonDiff is one record on the wire: the side, the node's full hash, an
// optional description (null when absent), and a compact object describing
// the node itself.
type jsonDiff struct {
	Side        string      `json:"side"`
	Hash        string      `json:"hash"`
	Description *string     `json:"description"`
	Node        jsonCILNode `json:"node"`
}

// jsonCILNode is the per-record node object: always flavor and line, plus
// the node's declared name and canonical one-line rendering where they
// exist. Per-flavor field breakdowns are the business of a full AST
// writer, which sits outside this tool.
type jsonCILNode struct {
	Flavor string `json:"flavor"`
	Line   uint32 `json:"line"`
	Name   string `json:"name,omitempty"`
	Text   string `json:"text,omitempty"`
}

func toJSONNode(n *Node) *jsonNode {
	jn := &jsonNode{
		Left:     n.Left,
		Right:    n.Right,
		Diffs:    []jsonDiff{},
		Children: []*jsonNode{},
	}
	for _, rec := range n.Records {
		var desc *string
		if rec.Desc != "" {
			d := rec.Desc
			desc = &d
		}
		jn.Diffs = append(jn.Diffs, jsonDiff{
			Side:        rec.Side.Name(),
			Hash:        rec.Hash,
			Description: desc,
			Node: jsonCILNode{
				Flavor: rec.Flavor,
				Line:   rec.Line,
				Name:   rec.Name,
				Text:   rec.Text,
			},
		})
	}
	for _, c := range n.Children {
		jn.Children = append(jn.Children, toJSONNode(c))
	}
	return jn
}

// PrintJSON writes the tree as one top-level JSON object, pretty-printed
// with a two-space indent when pretty is true and compact otherwise.
func PrintJSON(w io.Writer, root *Node, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(toJSONNode(root))
}
