// Package astjson decodes the JSON representation of a parsed policy tree
// that this tool's command line accepts in place of a real CIL parser
// (parsing CIL text is out of scope here; a JSON-AST file or pipe is the
// supported substitute). One JSON object per node:
//
//	{"flavor": "block", "line": 12, "data": {"name": "foo"}, "children": [...]}
//
// "data" is flavor-specific (see the cilast package) and omitted entirely
// for flavors that carry none (root, src_info, condtrue, condfalse).
package astjson

import (
	"encoding/json"
	"fmt"
	"io"

	"cildiff/internal/cilast"
)

// node implements cilast.Node over a tree decoded from JSON, using the
// same singly-linked sibling shape as cilast.Node itself.
type node struct {
	flavor cilast.Flavor
	data   any
	line   uint32
	first  *node
	next   *node
}

func (n *node) Flavor() cilast.Flavor { return n.flavor }
func (n *node) Data() any             { return n.data }
func (n *node) Line() uint32          { return n.line }

func (n *node) FirstChild() cilast.Node {
	if n.first == nil {
		return nil
	}
	return n.first
}

func (n *node) NextSibling() cilast.Node {
	if n.next == nil {
		return nil
	}
	return n.next
}

// rawNode is the wire shape decoded straight off json.Unmarshal.
type rawNode struct {
	Flavor   string          `json:"flavor"`
	Line     uint32          `json:"line"`
	Data     json.RawMessage `json:"data"`
	Children []rawNode       `json:"children"`
}

// Decode reads one JSON-encoded node tree from r and returns its root as a
// cilast.Node, or a decode/validation error.
func Decode(r io.Reader) (cilast.Node, error) {
	var raw rawNode
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("astjson: %w", err)
	}
	root, err := build(raw)
	if err != nil {
		return nil, err
	}
	if err := Validate(root); err != nil {
		return nil, err
	}
	return root, nil
}

func build(raw rawNode) (*node, error) {
	flavor, ok := cilast.ParseFlavor(raw.Flavor)
	if !ok {
		return nil, fmt.Errorf("astjson: unknown flavor %q at line %d", raw.Flavor, raw.Line)
	}
	data, err := decodeData(flavor, raw.Data)
	if err != nil {
		return nil, fmt.Errorf("astjson: flavor %s at line %d: %w", raw.Flavor, raw.Line, err)
	}
	n := &node{flavor: flavor, data: data, line: raw.Line}
	var children []*node
	for _, rc := range raw.Children {
		child, err := build(rc)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	if len(children) > 0 {
		n.first = children[0]
		for i := 0; i+1 < len(children); i++ {
			children[i].next = children[i+1]
		}
	}
	return n, nil
}

func decodeData(flavor cilast.Flavor, raw json.RawMessage) (any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	switch flavor {
	case cilast.FlavorBlock, cilast.FlavorMacro, cilast.FlavorOptional, cilast.FlavorIn,
		cilast.FlavorClass, cilast.FlavorCommon, cilast.FlavorMapClass, cilast.FlavorPerm,
		cilast.FlavorType, cilast.FlavorTypeAttribute, cilast.FlavorRole, cilast.FlavorRoleAttribute,
		cilast.FlavorUser, cilast.FlavorSensitivity, cilast.FlavorCategory,
		cilast.FlavorBoolean, cilast.FlavorTunable:
		var d cilast.NamedData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return &d, nil

	case cilast.FlavorTypeAlias, cilast.FlavorSensitivityAlias, cilast.FlavorCategoryAlias:
		var d cilast.AliasData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return &d, nil

	case cilast.FlavorClassOrder, cilast.FlavorSensitivityOrder, cilast.FlavorCategoryOrder:
		var d cilast.OrderedListData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return &d, nil

	case cilast.FlavorLevel:
		var d cilast.LevelData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return &d, nil

	case cilast.FlavorLevelRange:
		var d cilast.LevelRangeData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return &d, nil

	case cilast.FlavorContext:
		var d cilast.ContextData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return &d, nil

	case cilast.FlavorAVRule:
		var d cilast.AVRuleData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return &d, nil

	case cilast.FlavorTypeTransition:
		var d cilast.TypeTransitionData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return &d, nil

	case cilast.FlavorConstrain, cilast.FlavorMLSConstrain:
		var d cilast.ConstrainData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return &d, nil

	case cilast.FlavorBooleanIf, cilast.FlavorTunableIf:
		var d cilast.Expr
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return &d, nil

	case cilast.FlavorString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return s, nil

	default:
		// Root, source-info, condtrue, condfalse: no data expected.
		return nil, nil
	}
}
