package cmp

import (
	"testing"

	"cildiff/internal/cilast"
	"cildiff/internal/cilast/fixture"
	"cildiff/internal/difftree"
)

func allow(src, tgt, class string, perms ...string) *fixture.N {
	return fixture.AVRule(cilast.AVRuleAllow, src, tgt, fixture.ClassPerms(class, perms...))
}

func TestBuildIsDeterministic(t *testing.T) {
	build := func() *Node {
		ast := fixture.Root(
			fixture.Named(cilast.FlavorType, "foo_t"),
			allow("foo_t", "bar_t", "file", "read", "write"),
		)
		return BuildComparisonRoot(ast)
	}
	a, b := build(), build()
	if a.Full != b.Full {
		t.Fatalf("BuildComparisonRoot was not deterministic: %x != %x", a.Full, b.Full)
	}
}

func TestCompareIdenticalTreesIsEmpty(t *testing.T) {
	ast := fixture.Root(
		fixture.Named(cilast.FlavorBlock, "b1",
			fixture.Named(cilast.FlavorType, "foo_t"),
			allow("foo_t", "foo_t", "file", "read"),
		),
	)
	left := BuildComparisonRoot(ast)
	right := BuildComparisonRoot(ast)
	tree := CompareRoots(left, right)
	if !tree.Empty() {
		t.Fatalf("comparing a tree against itself produced diffs: count=%d", tree.Count())
	}
}

func TestAVRuleAdditionIsReportedWhole(t *testing.T) {
	leftAST := fixture.Root(
		fixture.Named(cilast.FlavorType, "foo_t"),
	)
	rightAST := fixture.Root(
		fixture.Named(cilast.FlavorType, "foo_t"),
		allow("foo_t", "foo_t", "file", "read"),
	)
	tree := CompareRoots(BuildComparisonRoot(leftAST), BuildComparisonRoot(rightAST))
	if tree.Count() != 1 {
		t.Fatalf("expected exactly one diff record, got %d", tree.Count())
	}
	rec := tree.Records[0]
	if rec.Side != difftree.RIGHT {
		t.Fatalf("expected an addition (RIGHT side), got %v", rec.Side)
	}
	if rec.Flavor != "avrule" {
		t.Fatalf("expected avrule record, got %q", rec.Flavor)
	}
}

func TestAVRuleRemovalIsReportedWhole(t *testing.T) {
	leftAST := fixture.Root(allow("foo_t", "foo_t", "file", "read"))
	rightAST := fixture.Root()
	tree := CompareRoots(BuildComparisonRoot(leftAST), BuildComparisonRoot(rightAST))
	if tree.Count() != 1 {
		t.Fatalf("expected exactly one diff record, got %d", tree.Count())
	}
	if tree.Records[0].Side != difftree.LEFT {
		t.Fatalf("expected a deletion (LEFT side), got %v", tree.Records[0].Side)
	}
}

func TestDuplicateAVRulesCollapseSilently(t *testing.T) {
	ast := fixture.Root(
		allow("foo_t", "foo_t", "file", "read"),
		allow("foo_t", "foo_t", "file", "read"), // benign duplicate
	)
	root := BuildComparisonRoot(ast)
	// There should be exactly one subset with exactly one member, not two.
	total := 0
	for _, subset := range root.children.subsets {
		total += subset.Len()
	}
	if total != 1 {
		t.Fatalf("expected duplicate avrule to collapse to 1 member, got %d", total)
	}
}

func TestBlockContentChangeRecurses(t *testing.T) {
	leftAST := fixture.Root(
		fixture.Named(cilast.FlavorBlock, "b1", allow("foo_t", "foo_t", "file", "read")),
	)
	rightAST := fixture.Root(
		fixture.Named(cilast.FlavorBlock, "b1", allow("foo_t", "foo_t", "file", "write")),
	)
	tree := CompareRoots(BuildComparisonRoot(leftAST), BuildComparisonRoot(rightAST))
	if len(tree.Children) != 1 {
		t.Fatalf("expected single-child recursion to open one diff-tree child, got %d", len(tree.Children))
	}
	child := tree.Children[0]
	if child.Count() != 2 {
		t.Fatalf("expected one deletion and one addition inside the block, got %d", child.Count())
	}
}

func TestDistinctBlockNamesAreWholeAdditionsAndDeletions(t *testing.T) {
	leftAST := fixture.Root(fixture.Named(cilast.FlavorBlock, "old_block"))
	rightAST := fixture.Root(fixture.Named(cilast.FlavorBlock, "new_block"))
	tree := CompareRoots(BuildComparisonRoot(leftAST), BuildComparisonRoot(rightAST))
	if tree.Count() != 2 {
		t.Fatalf("expected a whole deletion and a whole addition, got %d records", tree.Count())
	}
}

func TestRootSingleChildJumpAddsNoExtraLevel(t *testing.T) {
	leftAST := fixture.Root(fixture.SourceInfo(fixture.Named(cilast.FlavorType, "foo_t")))
	rightAST := fixture.Root(fixture.SourceInfo(
		fixture.Named(cilast.FlavorType, "foo_t"),
		fixture.Named(cilast.FlavorType, "bar_t"),
	))
	tree := CompareRoots(BuildComparisonRoot(leftAST), BuildComparisonRoot(rightAST))
	if len(tree.Children) != 0 {
		t.Fatalf("source-info should jump transparently, got %d diff-tree children", len(tree.Children))
	}
	if tree.Count() != 1 {
		t.Fatalf("expected exactly one addition, got %d", tree.Count())
	}
}

func TestSimilarityMatchingPairsClosestInBlocks(t *testing.T) {
	// Two "in" reopenings of the same block name, each with mostly
	// overlapping content: similarity matching should pair each left
	// member with its closest right counterpart rather than reporting
	// both sides whole.
	leftAST := fixture.Root(
		fixture.Named(cilast.FlavorIn, "shared",
			allow("a_t", "a_t", "file", "read"),
			allow("a_t", "a_t", "file", "write"),
		),
		fixture.Named(cilast.FlavorIn, "shared",
			allow("b_t", "b_t", "file", "read"),
		),
	)
	rightAST := fixture.Root(
		fixture.Named(cilast.FlavorIn, "shared",
			allow("a_t", "a_t", "file", "read"),
			allow("a_t", "a_t", "file", "write"),
			allow("a_t", "a_t", "file", "execute"),
		),
		fixture.Named(cilast.FlavorIn, "shared",
			allow("b_t", "b_t", "file", "read"),
		),
	)
	tree := CompareRoots(BuildComparisonRoot(leftAST), BuildComparisonRoot(rightAST))
	if tree.Count() != 1 {
		t.Fatalf("expected exactly one addition from similarity-matched pairing, got %d", tree.Count())
	}
	recs := allRecords(tree)
	if recs[0].Side != difftree.RIGHT {
		t.Fatalf("expected the sole diff to be an addition, got %v", recs[0].Side)
	}
}

func allRecords(n *difftree.Node) []difftree.Record {
	recs := append([]difftree.Record(nil), n.Records...)
	for _, c := range n.Children {
		recs = append(recs, allRecords(c)...)
	}
	return recs
}

func TestBooleanIfBranchesDiffIndependently(t *testing.T) {
	cond := fixture.BareExpr(fixture.Str("my_bool"))
	leftAST := fixture.Root(
		fixture.BooleanIf(cilast.FlavorBooleanIf, cond,
			[]*fixture.N{allow("a_t", "a_t", "file", "read")},
			[]*fixture.N{allow("b_t", "b_t", "file", "read")},
		),
	)
	rightAST := fixture.Root(
		fixture.BooleanIf(cilast.FlavorBooleanIf, cond,
			[]*fixture.N{allow("a_t", "a_t", "file", "write")}, // true-branch changed
			[]*fixture.N{allow("b_t", "b_t", "file", "read")},  // false-branch unchanged
		),
	)
	tree := CompareRoots(BuildComparisonRoot(leftAST), BuildComparisonRoot(rightAST))
	if len(tree.Records) != 0 {
		t.Fatalf("booleanif is a container: diffs belong to its branch children, got %d direct records", len(tree.Records))
	}
	if len(tree.Children) != 1 {
		t.Fatalf("expected exactly one diff-tree child for the booleanif, got %d", len(tree.Children))
	}
	var trueCount, falseCount int
	for _, c := range tree.Children[0].Children {
		switch c.Left.Flavor {
		case "condtrue":
			trueCount = c.Count()
		case "condfalse":
			falseCount = c.Count()
		}
	}
	if trueCount != 2 {
		t.Fatalf("expected true-branch to carry 2 records (del+add), got %d", trueCount)
	}
	if falseCount != 0 {
		t.Fatalf("expected false-branch untouched, got %d records", falseCount)
	}
}
