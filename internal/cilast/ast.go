// Package cilast defines the read-only AST contract the comparison engine
// consumes. The engine never constructs or mutates this tree itself; an
// external CIL parser (out of scope here, per the surrounding tool) is
// expected to build one Node tree per policy input and hand the root to
// cmp.BuildComparisonRoot.
package cilast

// Flavor tags the kind of CIL construct a Node represents. The set is
// closed: the cmp package's data hashers and friends dispatch on it through lookup tables,
// falling back to a default rule for any flavor they do not specialize.
type Flavor int

const (
	FlavorUnknown Flavor = iota

	// Structural / container flavors.
	FlavorRoot       // the top of one parsed policy
	FlavorSourceInfo // per-source-file grouping beneath root
	FlavorBlock      // named, uniquely-declared sub-container
	FlavorMacro      // named, uniquely-declared parametrized container
	FlavorOptional   // named container whose contents may be unsatisfied
	FlavorIn         // re-opens a named block, not necessarily unique

	// Conditional containers.
	FlavorBooleanIf
	FlavorTunableIf
	FlavorCondTrue  // wraps the true-branch statements of a conditional
	FlavorCondFalse // wraps the false-branch statements of a conditional

	// Class-like declarations; their permissions are children of flavor
	// FlavorPerm.
	FlavorClass
	FlavorCommon
	FlavorMapClass
	FlavorPerm

	// Ordered declarations.
	FlavorClassOrder
	FlavorSensitivityOrder
	FlavorCategoryOrder

	// Simple named declarations.
	FlavorType
	FlavorTypeAlias
	FlavorTypeAttribute
	FlavorRole
	FlavorRoleAttribute
	FlavorUser
	FlavorSensitivity
	FlavorSensitivityAlias
	FlavorCategory
	FlavorCategoryAlias
	FlavorBoolean
	FlavorTunable

	// Composite declarations.
	FlavorLevel
	FlavorLevelRange
	FlavorContext

	// Rules.
	FlavorAVRule
	FlavorTypeTransition
	FlavorConstrain
	FlavorMLSConstrain

	// Leaves used inside nested/anonymous payloads and expressions.
	FlavorString
	FlavorConsOperand

	flavorCount
)

var flavorNames = [flavorCount]string{
	FlavorUnknown:          "unknown",
	FlavorRoot:             "root",
	FlavorSourceInfo:       "src_info",
	FlavorBlock:            "block",
	FlavorMacro:            "macro",
	FlavorOptional:         "optional",
	FlavorIn:               "in",
	FlavorBooleanIf:        "booleanif",
	FlavorTunableIf:        "tunableif",
	FlavorCondTrue:         "condtrue",
	FlavorCondFalse:        "condfalse",
	FlavorClass:            "class",
	FlavorCommon:           "common",
	FlavorMapClass:         "map_class",
	FlavorPerm:             "perm",
	FlavorClassOrder:       "classorder",
	FlavorSensitivityOrder: "sensitivityorder",
	FlavorCategoryOrder:    "categoryorder",
	FlavorType:             "type",
	FlavorTypeAlias:        "typealias",
	FlavorTypeAttribute:    "typeattribute",
	FlavorRole:             "role",
	FlavorRoleAttribute:    "roleattribute",
	FlavorUser:             "user",
	FlavorSensitivity:      "sensitivity",
	FlavorSensitivityAlias: "sensitivityalias",
	FlavorCategory:         "category",
	FlavorCategoryAlias:    "categoryalias",
	FlavorBoolean:          "boolean",
	FlavorTunable:          "tunable",
	FlavorLevel:            "level",
	FlavorLevelRange:       "levelrange",
	FlavorContext:          "context",
	FlavorAVRule:           "avrule",
	FlavorTypeTransition:   "typetransition",
	FlavorConstrain:        "constrain",
	FlavorMLSConstrain:     "mlsconstrain",
	FlavorString:           "string",
	FlavorConsOperand:      "cons_operand",
}

// String returns the lowercase CIL-ish keyword for f, or "unknown" for an
// out-of-range value. It is also the name written into JSON node output.
func (f Flavor) String() string {
	if f >= 0 && int(f) < len(flavorNames) && flavorNames[f] != "" {
		return flavorNames[f]
	}
	return "unknown"
}

// ParseFlavor looks up the Flavor whose String() is name, for adapters that
// read flavors back out of a textual or JSON representation.
func ParseFlavor(name string) (Flavor, bool) {
	for f, n := range flavorNames {
		if n == name {
			return Flavor(f), true
		}
	}
	return FlavorUnknown, false
}

// AllFlavors returns every named flavor except FlavorUnknown, in
// declaration order.
func AllFlavors() []Flavor {
	out := make([]Flavor, 0, flavorCount-1)
	for f := FlavorUnknown + 1; f < flavorCount; f++ {
		out = append(out, f)
	}
	return out
}

// Node is the read-only view over one AST node that the comparison engine
// operates on. Implementations own nothing the engine touches; the engine
// never calls a mutator. FirstChild/NextSibling form the same singly-linked
// sibling-list shape the original parser AST uses.
type Node interface {
	Flavor() Flavor
	// Data returns the flavor-specific payload described in the per-flavor
	// types below (NamedData, AVRuleData, ...). Flavors the engine does not
	// specialize may return nil.
	Data() any
	FirstChild() Node
	NextSibling() Node
	Line() uint32
}

// NamedData is the payload of any simple named declaration (type, role,
// user, sensitivity, category, boolean/tunable, and the Name field of
// block/macro/optional/in containers).
type NamedData struct {
	Name string
}

// AliasData is the payload of an alias-to-actual declaration (typealias,
// sensitivityalias, categoryalias): the alias name plus the name it
// resolves to.
type AliasData struct {
	Alias  string
	Actual string
}

// OrderedListData is the payload of an order statement (classorder,
// sensitivityorder, categoryorder). Unordered is true only for order
// statements the CIL grammar explicitly allows to be written in any
// sequence; false preserves the writer's given order as significant.
type OrderedListData struct {
	Items     []string
	Unordered bool
}

// ClassPermsData names a class together with the permissions granted on it.
// It appears only nested inside AVRuleData/ConstrainData; there is no
// standalone classperms node flavor.
type ClassPermsData struct {
	Class string
	Perms []string
}

// Class, Common, and MapClass declarations carry no payload of their own
// beyond NamedData; their permissions are children of flavor FlavorPerm,
// each itself carrying NamedData.

// LevelData is the payload of a level declaration or an inline anonymous
// level: a sensitivity name plus the (unordered) set of category names
// associated with it.
type LevelData struct {
	Sens       string
	Categories []string
}

// LevelRef refers to a level either by name (Name != "") or inline
// (Anon != nil); exactly one should be set.
type LevelRef struct {
	Name string
	Anon *LevelData
}

// LevelRangeData is the payload of a levelrange declaration or an inline
// anonymous levelrange.
type LevelRangeData struct {
	Low  LevelRef
	High LevelRef
}

// LevelRangeRef refers to a levelrange either by name or inline.
type LevelRangeRef struct {
	Name string
	Anon *LevelRangeData
}

// ContextData is the payload of a context declaration or an inline
// anonymous context.
type ContextData struct {
	User  string
	Role  string
	Type  string
	Range LevelRangeRef
}

// AVRuleKind enumerates the access-vector rule kinds.
type AVRuleKind int32

const (
	AVRuleAllow AVRuleKind = iota
	AVRuleAuditAllow
	AVRuleDontAudit
	AVRuleNeverAllow
)

// AVRuleData is the payload of an access-vector rule statement.
type AVRuleData struct {
	RuleKind   AVRuleKind
	Src        string
	Tgt        string
	ClassPerms []ClassPermsData
}

// TypeTransitionData is the payload of a type_transition-style rule.
type TypeTransitionData struct {
	Src        string
	Tgt        string
	ObjClass   string
	ResultType string
	FileName   string // optional, "" when not a file-name transition
}

// ConstrainData is the payload of a constrain/mlsconstrain statement: the
// classperms it restricts plus the boolean expression that must hold.
type ConstrainData struct {
	ClassPerms []ClassPermsData
	Expr       *Expr
}

// ExprOp enumerates the operators an Expr's head item may carry.
type ExprOp int32

const (
	ExprOpNone ExprOp = iota
	ExprOpAnd
	ExprOpOr
	ExprOpNot
	ExprOpXor
	ExprOpEq
	ExprOpNeq
	ExprOpCondDom
	ExprOpCondDomBy
	ExprOpCondIncomp
)

// ExprItemKind discriminates the variants an ExprItem may hold.
type ExprItemKind int

const (
	ExprItemString ExprItemKind = iota
	ExprItemSubExpr
	ExprItemConsOperand
)

// ExprItem is one operand of an Expr: a bare string (a boolean/tunable
// name, typically), a nested sub-expression, or a constraint operand
// constant (e.g. CONS_U1, CONS_T2 in the source grammar, represented here
// as an opaque int32).
type ExprItem struct {
	Kind        ExprItemKind
	Str         string
	Sub         *Expr
	ConsOperand int32
}

// Expr is a Boolean-style expression tree: an optional leading operator
// followed by its operands. HasOp is false for a bare single-operand
// expression (e.g. a lone boolean name used as a condition).
type Expr struct {
	Op    ExprOp
	HasOp bool
	Items []ExprItem
}
