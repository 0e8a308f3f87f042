package cmp

import (
	"testing"

	"cildiff/internal/cilast"
	"cildiff/internal/cilast/fixture"
)

func TestFlavorTagSeparatesSameNamedDeclarations(t *testing.T) {
	typ := hashData(fixture.Named(cilast.FlavorType, "same_name"))
	role := hashData(fixture.Named(cilast.FlavorRole, "same_name"))
	if typ.full == role.full {
		t.Fatalf("type and role with the same name must not collide")
	}
}

func TestDefaultHasherCoversUnspecializedFlavors(t *testing.T) {
	a := hashData(fixture.Node(cilast.FlavorCondTrue, nil))
	b := hashData(fixture.Node(cilast.FlavorCondTrue, nil))
	if a.full != b.full || a.partial != a.full {
		t.Fatalf("default hasher must be deterministic with partial == full")
	}
}

func TestAVRulePartialHashIgnoresClassPerms(t *testing.T) {
	read := hashData(fixture.AVRule(cilast.AVRuleAllow, "a_t", "b_t",
		fixture.ClassPerms("file", "read")))
	write := hashData(fixture.AVRule(cilast.AVRuleAllow, "a_t", "b_t",
		fixture.ClassPerms("file", "write")))
	if read.partial != write.partial {
		t.Fatalf("same (kind, src, tgt) rules must share a partial hash")
	}
	if read.full == write.full {
		t.Fatalf("different classperms must yield different full hashes")
	}
}

func TestAVRuleKindContributesToPartialHash(t *testing.T) {
	al := hashData(fixture.AVRule(cilast.AVRuleAllow, "a_t", "b_t",
		fixture.ClassPerms("file", "read")))
	da := hashData(fixture.AVRule(cilast.AVRuleDontAudit, "a_t", "b_t",
		fixture.ClassPerms("file", "read")))
	if al.partial == da.partial {
		t.Fatalf("allow and dontaudit between the same pair must not merge")
	}
}

func TestAVRuleClassPermsOrderIsIrrelevant(t *testing.T) {
	a := hashData(fixture.AVRule(cilast.AVRuleAllow, "a_t", "b_t",
		fixture.ClassPerms("file", "read"), fixture.ClassPerms("dir", "search")))
	b := hashData(fixture.AVRule(cilast.AVRuleAllow, "a_t", "b_t",
		fixture.ClassPerms("dir", "search"), fixture.ClassPerms("file", "read")))
	if a.full != b.full {
		t.Fatalf("classperms entry order must not change the full hash")
	}
}

func TestTypeTransitionPartialSnapshotBeforeResult(t *testing.T) {
	a := hashData(fixture.TypeTransition("a_t", "b_t", "process", "x_t", ""))
	b := hashData(fixture.TypeTransition("a_t", "b_t", "process", "y_t", ""))
	if a.partial != b.partial {
		t.Fatalf("transitions on the same (src, tgt, class) must share a partial hash")
	}
	if a.full == b.full {
		t.Fatalf("differing result types must yield different full hashes")
	}
}

func TestAliasPartialSnapshotAfterAliasName(t *testing.T) {
	a := hashData(fixture.Alias(cilast.FlavorTypeAlias, "short", "long_one"))
	b := hashData(fixture.Alias(cilast.FlavorTypeAlias, "short", "long_two"))
	if a.partial != b.partial {
		t.Fatalf("redeclared alias must share a partial hash")
	}
	if a.full == b.full {
		t.Fatalf("differing targets must yield different full hashes")
	}
}

func TestOrderedListOrderMattersUnlessUnordered(t *testing.T) {
	ordered1 := hashData(fixture.OrderedList(cilast.FlavorClassOrder, false, "a", "b"))
	ordered2 := hashData(fixture.OrderedList(cilast.FlavorClassOrder, false, "b", "a"))
	if ordered1.full == ordered2.full {
		t.Fatalf("ordered list items must be position-sensitive")
	}

	unordered1 := hashData(fixture.OrderedList(cilast.FlavorClassOrder, true, "a", "b"))
	unordered2 := hashData(fixture.OrderedList(cilast.FlavorClassOrder, true, "b", "a"))
	if unordered1.full != unordered2.full {
		t.Fatalf("unordered list items must be sorted before hashing")
	}
}

func TestLevelCategoriesAreUnordered(t *testing.T) {
	a := hashData(fixture.Level("s0", "c0", "c1"))
	b := hashData(fixture.Level("s0", "c1", "c0"))
	if a.full != b.full {
		t.Fatalf("level category order must not change the hash")
	}
	c := hashData(fixture.Level("s1", "c0", "c1"))
	if a.full == c.full {
		t.Fatalf("differing sensitivity must change the hash")
	}
}

func TestContextNamedAndAnonRangeDiffer(t *testing.T) {
	named := hashData(fixture.Context("u", "r", "t", fixture.LevelRangeRef("low_high")))
	anon := hashData(fixture.Context("u", "r", "t",
		fixture.AnonLevelRange(fixture.LevelRef("low"), fixture.LevelRef("high"))))
	if named.full == anon.full {
		t.Fatalf("named and inline ranges must hash differently")
	}
}

func TestAnonymousLevelsWithEqualFieldsCollide(t *testing.T) {
	a := hashData(fixture.Context("u", "r", "t",
		fixture.AnonLevelRange(fixture.AnonLevel("s0", "c0"), fixture.AnonLevel("s0", "c0"))))
	b := hashData(fixture.Context("u", "r", "t",
		fixture.AnonLevelRange(fixture.AnonLevel("s0", "c0"), fixture.AnonLevel("s0", "c0"))))
	if a.full != b.full {
		t.Fatalf("two syntactically distinct but equal anonymous levels must collide")
	}
}

func TestExprOperandOrderIsCanonicalized(t *testing.T) {
	a := hashExpr(fixture.Expr(cilast.ExprOpAnd, fixture.Str("b1"), fixture.Str("b2")))
	b := hashExpr(fixture.Expr(cilast.ExprOpAnd, fixture.Str("b2"), fixture.Str("b1")))
	if a != b {
		t.Fatalf("operand order must not change an expression's hash")
	}
}

func TestExprOperatorContributes(t *testing.T) {
	and := hashExpr(fixture.Expr(cilast.ExprOpAnd, fixture.Str("b1"), fixture.Str("b2")))
	or := hashExpr(fixture.Expr(cilast.ExprOpOr, fixture.Str("b1"), fixture.Str("b2")))
	if and == or {
		t.Fatalf("the operator must contribute to the expression hash")
	}
}

func TestExprNestingIsNotFlattened(t *testing.T) {
	flat := hashExpr(fixture.Expr(cilast.ExprOpAnd,
		fixture.Str("a"), fixture.Str("b"), fixture.Str("c")))
	nested := hashExpr(fixture.Expr(cilast.ExprOpAnd,
		fixture.Str("a"),
		fixture.SubExpr(fixture.Expr(cilast.ExprOpAnd, fixture.Str("b"), fixture.Str("c")))))
	if flat == nested {
		t.Fatalf("nested sub-expressions must not hash equal to a flattened operand list")
	}
}

func TestConstrainPartialSnapshotBeforeExpr(t *testing.T) {
	cps := fixture.ClassPerms("file", "read")
	a := hashData(fixture.Constrain(cilast.FlavorConstrain,
		fixture.Expr(cilast.ExprOpEq, fixture.ConsOperand(1), fixture.Str("x")), cps))
	b := hashData(fixture.Constrain(cilast.FlavorConstrain,
		fixture.Expr(cilast.ExprOpEq, fixture.ConsOperand(1), fixture.Str("y")), cps))
	if a.partial != b.partial {
		t.Fatalf("constraints over the same classperms must share a partial hash")
	}
	if a.full == b.full {
		t.Fatalf("differing expressions must yield different full hashes")
	}
}

func TestEmptySetSentinelIsStable(t *testing.T) {
	if emptySetHash() != emptySetHash() {
		t.Fatalf("the empty-set sentinel must be stable")
	}
	one := hashStringMultiset([]string{"x"})
	if one == emptySetHash() {
		t.Fatalf("a one-element multiset must not collide with the empty sentinel")
	}
}

func TestStringMultisetDeduplicates(t *testing.T) {
	a := hashStringMultiset([]string{"read", "read", "write"})
	b := hashStringMultiset([]string{"write", "read"})
	if a != b {
		t.Fatalf("duplicate strings must collapse before hashing")
	}
}
