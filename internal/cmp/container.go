package cmp

import (
	"encoding/hex"

	"cildiff/internal/cilast"
	"cildiff/internal/cmphash"
	"cildiff/internal/difftree"
)

// initContainer builds a node's own data hash and its child Set, then
// folds the two into Full: partial_hash is the data hasher's
// partial (so siblings merge on name/flavor alone); full_hash is a fresh
// digest over (data-full-hash, children-set-full-hash), so two
// same-named containers with different bodies never collide.
func initContainer(n *Node) {
	data := hashData(n.AST)
	n.children = buildSet(n.AST.FirstChild())
	n.Partial = data.partial
	state := cmphash.Begin("")
	state.Update(data.full.Bytes())
	state.Update(n.children.Full.Bytes())
	n.Full = state.Finish()
}

// condEmptySentinel marks a wholly absent conditional branch, distinct
// from a present-but-empty branch (whose Set.Full is the ordinary
// empty-set sentinel).
func condEmptySentinel() cmphash.Hash {
	return cmphash.One([]byte("<cond::empty>"))
}

// initConditional builds a booleanif/tunableif node: its own guard
// expression hash, plus the two branch wrapper nodes (found among its AST
// children, each a CondFalse/CondTrue whose own children are the branch's
// statements). Full folds the guard hash with both branch hashes in a
// fixed false-then-true order, using condEmptySentinel for any branch the
// AST omits entirely.
func initConditional(n *Node) {
	data := hashData(n.AST)
	n.Partial = data.partial

	branches := &condBranches{}
	for child := n.AST.FirstChild(); child != nil; child = child.NextSibling() {
		switch child.Flavor() {
		case cilast.FlavorCondFalse:
			branches.falseNode = NewNode(child)
		case cilast.FlavorCondTrue:
			branches.trueNode = NewNode(child)
		}
	}
	n.branches = branches

	state := cmphash.Begin("")
	state.Update(data.full.Bytes())
	state.UpdateString("<cond::false>")
	state.Update(branchFullHash(branches.falseNode).Bytes())
	state.UpdateString("<cond::true>")
	state.Update(branchFullHash(branches.trueNode).Bytes())
	n.Full = state.Finish()
}

func branchFullHash(n *Node) cmphash.Hash {
	if n == nil {
		return condEmptySentinel()
	}
	return n.Full
}

// emptySet is the zero-member Set used in place of a nil children/branch
// Set: an absent branch has exactly the same (lack of) content as a
// present-but-empty one, so comparison and similarity scoring treat them
// identically even though their full hashes differ.
func emptySet() *Set {
	return &Set{Full: emptySetHash(), subsets: map[cmphash.Hash]*Subset{}}
}

func childrenOf(n *Node) *Set {
	if n == nil || n.children == nil {
		return emptySet()
	}
	return n.children
}

func branchNode(n *Node, trueBranch bool) *Node {
	if n == nil || n.branches == nil {
		return nil
	}
	if trueBranch {
		return n.branches.trueNode
	}
	return n.branches.falseNode
}

func branchOf(n *Node, trueBranch bool) *Set {
	return childrenOf(branchNode(n, trueBranch))
}

// branchContext summarizes one side's branch for the diff-tree level a
// conditional comparison opens. An absent branch borrows the conditional's
// own line and carries the absent-branch sentinel hash, so both sides of
// the level always have a printable context.
func branchContext(n *Node, trueBranch bool) difftree.Context {
	if b := branchNode(n, trueBranch); b != nil {
		return diffContext(b)
	}
	flavor := cilast.FlavorCondFalse
	if trueBranch {
		flavor = cilast.FlavorCondTrue
	}
	var line uint32
	if n != nil {
		line = n.AST.Line()
	}
	return difftree.Context{
		Flavor: flavor.String(),
		Line:   line,
		Hash:   hex.EncodeToString(condEmptySentinel().Bytes()),
	}
}

// compareContainer recurses the comparison into left/right's child sets.
// Callers only invoke this once both sides are known to be present with
// differing full hashes; a wholly one-sided container is reported whole
// by the subset comparator instead.
func compareContainer(left, right *Node, diffNode *difftree.Node) {
	CompareSets(childrenOf(left), childrenOf(right), diffNode)
}

func simContainer(left, right *Node) Similarity {
	return SimSets(childrenOf(left), childrenOf(right))
}

// compareConditional recurses into each branch independently, under its
// own diff-tree child, so a false-branch-only change never gets attributed
// to the true branch or vice versa.
func compareConditional(left, right *Node, diffNode *difftree.Node) {
	falseChild := diffNode.AppendChild(branchContext(left, false), branchContext(right, false))
	CompareSets(branchOf(left, false), branchOf(right, false), falseChild)
	trueChild := diffNode.AppendChild(branchContext(left, true), branchContext(right, true))
	CompareSets(branchOf(left, true), branchOf(right, true), trueChild)
}

func simConditional(left, right *Node) Similarity {
	var total Similarity
	total.Add(SimSets(branchOf(left, false), branchOf(right, false)))
	total.Add(SimSets(branchOf(left, true), branchOf(right, true)))
	return total
}
