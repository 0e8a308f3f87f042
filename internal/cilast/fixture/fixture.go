// Package fixture builds in-memory cilast.Node trees for tests, without
// going through the JSON decoder.
package fixture

import "cildiff/internal/cilast"

// N is a fixture AST node: a flavor, a data payload, and a singly-linked
// list of children built once at construction time.
type N struct {
	flavor cilast.Flavor
	data   any
	line   uint32
	first  *N
	next   *N
}

func (n *N) Flavor() cilast.Flavor { return n.flavor }
func (n *N) Data() any             { return n.data }

func (n *N) FirstChild() cilast.Node {
	if n.first == nil {
		return nil
	}
	return n.first
}

func (n *N) NextSibling() cilast.Node {
	if n.next == nil {
		return nil
	}
	return n.next
}

func (n *N) Line() uint32 { return n.line }

// link chains children into a sibling list and hangs them off n.
func link(n *N, children []*N) {
	if len(children) == 0 {
		return
	}
	n.first = children[0]
	for i := 0; i+1 < len(children); i++ {
		children[i].next = children[i+1]
	}
}

// Node builds a node of flavor carrying data, with children in order.
func Node(flavor cilast.Flavor, data any, children ...*N) *N {
	n := &N{flavor: flavor, data: data}
	link(n, children)
	return n
}

// At sets n's source line and returns n, for chaining onto a constructor.
func (n *N) At(line uint32) *N {
	n.line = line
	return n
}

// Root builds a FlavorRoot node.
func Root(children ...*N) *N { return Node(cilast.FlavorRoot, nil, children...) }

// SourceInfo builds a FlavorSourceInfo node.
func SourceInfo(children ...*N) *N { return Node(cilast.FlavorSourceInfo, nil, children...) }

// Named builds any NamedData-carrying node (block, macro, optional, in,
// class, common, map_class, perm, type, role, user, sensitivity, category,
// boolean, tunable, typeattribute, roleattribute).
func Named(flavor cilast.Flavor, name string, children ...*N) *N {
	return Node(flavor, &cilast.NamedData{Name: name}, children...)
}

// Alias builds a typealias/sensitivityalias/categoryalias node.
func Alias(flavor cilast.Flavor, alias, actual string) *N {
	return Node(flavor, &cilast.AliasData{Alias: alias, Actual: actual})
}

// OrderedList builds a classorder/sensitivityorder/categoryorder node.
func OrderedList(flavor cilast.Flavor, unordered bool, items ...string) *N {
	return Node(flavor, &cilast.OrderedListData{Items: items, Unordered: unordered})
}

// Level builds a named FlavorLevel node.
func Level(sens string, categories ...string) *N {
	return Node(cilast.FlavorLevel, &cilast.LevelData{Sens: sens, Categories: categories})
}

// LevelRef builds a by-name level reference.
func LevelRef(name string) cilast.LevelRef { return cilast.LevelRef{Name: name} }

// AnonLevel builds an inline level reference.
func AnonLevel(sens string, categories ...string) cilast.LevelRef {
	return cilast.LevelRef{Anon: &cilast.LevelData{Sens: sens, Categories: categories}}
}

// LevelRange builds a named FlavorLevelRange node.
func LevelRange(low, high cilast.LevelRef) *N {
	return Node(cilast.FlavorLevelRange, &cilast.LevelRangeData{Low: low, High: high})
}

// LevelRangeRef builds a by-name levelrange reference.
func LevelRangeRef(name string) cilast.LevelRangeRef { return cilast.LevelRangeRef{Name: name} }

// AnonLevelRange builds an inline levelrange reference.
func AnonLevelRange(low, high cilast.LevelRef) cilast.LevelRangeRef {
	return cilast.LevelRangeRef{Anon: &cilast.LevelRangeData{Low: low, High: high}}
}

// Context builds a FlavorContext node.
func Context(user, role, typ string, rng cilast.LevelRangeRef) *N {
	return Node(cilast.FlavorContext, &cilast.ContextData{User: user, Role: role, Type: typ, Range: rng})
}

// ClassPerms builds one classperms entry (not a node by itself - it is
// nested inside AVRule/Constrain).
func ClassPerms(class string, perms ...string) cilast.ClassPermsData {
	return cilast.ClassPermsData{Class: class, Perms: perms}
}

// AVRule builds a FlavorAVRule node.
func AVRule(kind cilast.AVRuleKind, src, tgt string, cps ...cilast.ClassPermsData) *N {
	return Node(cilast.FlavorAVRule, &cilast.AVRuleData{RuleKind: kind, Src: src, Tgt: tgt, ClassPerms: cps})
}

// TypeTransition builds a FlavorTypeTransition node.
func TypeTransition(src, tgt, objClass, resultType, fileName string) *N {
	return Node(cilast.FlavorTypeTransition, &cilast.TypeTransitionData{
		Src: src, Tgt: tgt, ObjClass: objClass, ResultType: resultType, FileName: fileName,
	})
}

// Str builds an expression operand that is a bare name.
func Str(s string) cilast.ExprItem { return cilast.ExprItem{Kind: cilast.ExprItemString, Str: s} }

// SubExpr builds an expression operand that is a nested expression.
func SubExpr(e *cilast.Expr) cilast.ExprItem {
	return cilast.ExprItem{Kind: cilast.ExprItemSubExpr, Sub: e}
}

// ConsOperand builds a constraint-operand-constant expression operand.
func ConsOperand(v int32) cilast.ExprItem {
	return cilast.ExprItem{Kind: cilast.ExprItemConsOperand, ConsOperand: v}
}

// Expr builds an expression with a leading operator.
func Expr(op cilast.ExprOp, items ...cilast.ExprItem) *cilast.Expr {
	return &cilast.Expr{Op: op, HasOp: true, Items: items}
}

// BareExpr builds an operator-less expression (a lone boolean name used
// directly as a condition, or a standalone operand list).
func BareExpr(items ...cilast.ExprItem) *cilast.Expr {
	return &cilast.Expr{Items: items}
}

// Constrain builds a constrain/mlsconstrain node.
func Constrain(flavor cilast.Flavor, expr *cilast.Expr, cps ...cilast.ClassPermsData) *N {
	return Node(flavor, &cilast.ConstrainData{ClassPerms: cps, Expr: expr})
}

// String builds a FlavorString leaf carrying a bare string payload (used
// inside expressions and lists where the comparison engine expects one).
func String(s string) *N { return Node(cilast.FlavorString, s) }

// BooleanIf builds a booleanif/tunableif node from its guard expression
// and true/false branch statements (either branch list may be nil to
// signal a wholly absent branch; pass an empty, non-nil slice for a
// present-but-empty branch).
func BooleanIf(flavor cilast.Flavor, cond *cilast.Expr, trueStmts, falseStmts []*N) *N {
	var children []*N
	if falseStmts != nil {
		children = append(children, Node(cilast.FlavorCondFalse, nil, falseStmts...))
	}
	if trueStmts != nil {
		children = append(children, Node(cilast.FlavorCondTrue, nil, trueStmts...))
	}
	return Node(flavor, cond, children...)
}
