package cmp

import (
	"encoding/hex"
	"sort"

	"cildiff/internal/cilast"
	"cildiff/internal/cmphash"
	"cildiff/internal/difftree"
	"cildiff/internal/render"
)

// subsetStrategy is one of the four per-flavor comparison strategies:
// how to turn a pair of same-partial-hash Subsets (either side may be
// nil) into diff-tree records, and how to score their similarity.
type subsetStrategy struct {
	compare func(left, right *Subset, diffNode *difftree.Node)
	sim     func(left, right *Subset) Similarity
}

var defaultStrategy = subsetStrategy{compare: defaultSubsetCompare, sim: defaultSubsetSim}
var singleChildStrategy = subsetStrategy{compare: singleChildSubsetCompare, sim: singleChildSubsetSim}
var singleChildJumpStrategy = subsetStrategy{compare: singleChildJumpSubsetCompare, sim: singleChildSubsetSim}
var similarityStrategy = subsetStrategy{compare: similaritySubsetCompare, sim: defaultSubsetSim}

// strategyFor maps a flavor to its subset comparator, defaulting to the
// content-addressed bag diff for every flavor the other three don't name.
var strategyFor map[cilast.Flavor]subsetStrategy

func init() {
	strategyFor = map[cilast.Flavor]subsetStrategy{
		cilast.FlavorRoot:       singleChildJumpStrategy,
		cilast.FlavorSourceInfo: singleChildJumpStrategy,

		cilast.FlavorBlock:    singleChildStrategy,
		cilast.FlavorMacro:    singleChildStrategy,
		cilast.FlavorClass:    singleChildStrategy,
		cilast.FlavorCommon:   singleChildStrategy,
		cilast.FlavorMapClass: singleChildStrategy,

		cilast.FlavorOptional:  similarityStrategy,
		cilast.FlavorIn:        similarityStrategy,
		cilast.FlavorBooleanIf: similarityStrategy,
		cilast.FlavorTunableIf: similarityStrategy,
	}
}

func strategyForFlavor(f cilast.Flavor) subsetStrategy {
	if s, ok := strategyFor[f]; ok {
		return s
	}
	return defaultStrategy
}

func subsetFlavor(left, right *Subset) cilast.Flavor {
	if left != nil {
		return left.Flavor
	}
	return right.Flavor
}

// CompareSubsets dispatches one partial-hash-matched pair of Subsets (one
// side possibly nil) to its flavor's strategy. Equal full hashes mean
// equal content, so in that case there is nothing further to report.
func CompareSubsets(left, right *Subset, diffNode *difftree.Node) {
	if left != nil && right != nil && left.Full == right.Full {
		return
	}
	strategyForFlavor(subsetFlavor(left, right)).compare(left, right, diffNode)
}

// SimSubsets dispatches the same pair to its flavor's similarity scorer.
func SimSubsets(left, right *Subset) Similarity {
	if left == nil && right == nil {
		return Similarity{}
	}
	if left != nil && right != nil && left.Full == right.Full {
		return Similarity{Common: left.Len()}
	}
	return strategyForFlavor(subsetFlavor(left, right)).sim(left, right)
}

// nodeLabel extracts the flavor/name/line a diff record is built from.
func nodeLabel(n *Node) (flavor, name string, line uint32) {
	flavor = n.AST.Flavor().String()
	line = n.AST.Line()
	switch d := n.AST.Data().(type) {
	case *cilast.NamedData:
		if d != nil {
			name = d.Name
		}
	case *cilast.AliasData:
		if d != nil {
			name = d.Alias
		}
	}
	return flavor, name, line
}

// reportWhole records node entirely as an addition or deletion, with no
// attempt to recurse into it - used whenever one side of a comparison is
// entirely missing a member the other side has. desc optionally carries a
// rendered quick-look patch against the other side's counterpart.
func reportWhole(diffNode *difftree.Node, side difftree.Side, node *Node, desc string) {
	flavor, name, line := nodeLabel(node)
	diffNode.AppendDiff(difftree.Record{
		Side:   side,
		Flavor: flavor,
		Name:   name,
		Line:   line,
		Hash:   hex.EncodeToString(node.Full.Bytes()),
		Text:   renderText(node),
		Desc:   desc,
	})
}

// defaultSubsetCompare is a content-addressed bag diff: no
// merge-by-position, no recursion - a member is either present by full
// hash on both sides (in which case it is, by definition, identical) or it
// is reported whole on whichever side has it. The one embellishment: a
// subset with exactly one changed member per side is the same construct
// rewritten (they already share a partial hash), so the deletion record
// carries a unified patch between the two textual renderings.
func defaultSubsetCompare(left, right *Subset, diffNode *difftree.Node) {
	ul, ur := uniqueMembers(left, right), uniqueMembers(right, left)
	if len(ul) == 1 && len(ur) == 1 {
		patch := render.Unified("left", "right", renderText(ul[0])+"\n", renderText(ur[0])+"\n")
		reportWhole(diffNode, difftree.LEFT, ul[0], patch)
		reportWhole(diffNode, difftree.RIGHT, ur[0], "")
		return
	}
	for _, m := range ul {
		reportWhole(diffNode, difftree.LEFT, m, "")
	}
	for _, m := range ur {
		reportWhole(diffNode, difftree.RIGHT, m, "")
	}
}

// uniqueMembers returns the members of a whose full hash has no counterpart
// in b, in a's deterministic member order.
func uniqueMembers(a, b *Subset) []*Node {
	var out []*Node
	for _, m := range sortedMembersOf(a) {
		if b.lookup(m.Full) == nil {
			out = append(out, m)
		}
	}
	return out
}

func defaultSubsetSim(left, right *Subset) Similarity {
	var common int
	for _, m := range sortedMembersOf(left) {
		if right.lookup(m.Full) != nil {
			common++
		}
	}
	return Similarity{Common: common, Left: lenOf(left) - common, Right: lenOf(right) - common}
}

func sortedMembersOf(s *Subset) []*Node {
	if s == nil {
		return nil
	}
	return s.sortedMembers()
}

func lenOf(s *Subset) int {
	if s == nil {
		return 0
	}
	return s.Len()
}

// singleChildSubsetCompare handles a flavor whose subsets hold at most one
// member (an invariant of the source grammar for uniquely-declared
// containers): a one-sided subset is reported whole; a two-sided subset
// with differing content recurses into the two members under a new
// diff-tree child carrying both members' contexts.
func singleChildSubsetCompare(left, right *Subset, diffNode *difftree.Node) {
	l, r := soleMember(left), soleMember(right)
	switch {
	case l == nil && r == nil:
		return
	case l == nil:
		reportWhole(diffNode, difftree.RIGHT, r, "")
	case r == nil:
		reportWhole(diffNode, difftree.LEFT, l, "")
	default:
		child := diffNode.AppendChild(diffContext(l), diffContext(r))
		Compare(l, r, child)
	}
}

// singleChildJumpSubsetCompare is identical except it never opens a new
// diff-tree level: the recursion's records are folded straight into the
// caller's own section. Used for the transparent root/source-info wrappers.
func singleChildJumpSubsetCompare(left, right *Subset, diffNode *difftree.Node) {
	l, r := soleMember(left), soleMember(right)
	switch {
	case l == nil && r == nil:
		return
	case l == nil:
		reportWhole(diffNode, difftree.RIGHT, r, "")
	case r == nil:
		reportWhole(diffNode, difftree.LEFT, l, "")
	default:
		Compare(l, r, diffNode)
	}
}

func singleChildSubsetSim(left, right *Subset) Similarity {
	l, r := soleMember(left), soleMember(right)
	return Sim(l, r)
}

func soleMember(s *Subset) *Node {
	if s == nil || s.Len() == 0 {
		return nil
	}
	return s.sortedMembers()[0]
}

// simTriple is one candidate pairing considered by similarity matching.
type simTriple struct {
	left, right *Node
	sim         Similarity
}

// similaritySubsetCompare implements greedy similarity matching
// for flavors that may legally have more than one
// same-partial-hash member per side (optional/in reopen by name;
// booleanif/tunableif may repeat the same guard). Members identical by
// full hash are settled first and need no pairing; if either side has no
// remaining unique members, the rest is a plain bag diff. Otherwise every
// unique left/right pair is scored, pairs are tried in descending
// similarity-rate order, and each member is matched at most once; leftover
// members on either side are reported whole.
func similaritySubsetCompare(left, right *Subset, diffNode *difftree.Node) {
	lm, rm := uniqueMembers(left, right), uniqueMembers(right, left)
	if len(lm) == 0 || len(rm) == 0 {
		for _, l := range lm {
			reportWhole(diffNode, difftree.LEFT, l, "")
		}
		for _, r := range rm {
			reportWhole(diffNode, difftree.RIGHT, r, "")
		}
		return
	}

	triples := make([]simTriple, 0, len(lm)*len(rm))
	for _, l := range lm {
		for _, r := range rm {
			triples = append(triples, simTriple{left: l, right: r, sim: Sim(l, r)})
		}
	}
	sort.SliceStable(triples, func(i, j int) bool {
		return triples[i].sim.Rate() > triples[j].sim.Rate()
	})

	matchedLeft := make(map[cmphash.Hash]bool, len(lm))
	matchedRight := make(map[cmphash.Hash]bool, len(rm))
	for _, t := range triples {
		if matchedLeft[t.left.Full] || matchedRight[t.right.Full] {
			continue
		}
		matchedLeft[t.left.Full] = true
		matchedRight[t.right.Full] = true
		child := diffNode.AppendChild(diffContext(t.left), diffContext(t.right))
		Compare(t.left, t.right, child)
	}
	for _, l := range lm {
		if !matchedLeft[l.Full] {
			reportWhole(diffNode, difftree.LEFT, l, "")
		}
	}
	for _, r := range rm {
		if !matchedRight[r.Full] {
			reportWhole(diffNode, difftree.RIGHT, r, "")
		}
	}
}
