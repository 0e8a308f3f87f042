// Package cmp's engine.go is the external entry point: build a
// comparison node from a parsed AST root, then compare two such roots into
// a diff tree. Everything below this point in the package is reachable
// only through these two calls.
package cmp

import (
	"encoding/hex"

	"cildiff/internal/cilast"
	"cildiff/internal/difftree"
)

// BuildComparisonRoot hashes every node in ast's tree, bottom-up, into one
// Node graph. It does no comparison; it is meant to be called once per
// input and the result reused if the same input is compared against more
// than one other side.
func BuildComparisonRoot(ast cilast.Node) *Node {
	return NewNode(ast)
}

// CompareRoots compares two previously built comparison roots and returns
// the diff tree describing every place they differ. left/right must not be
// nil; comparing a genuinely missing input is the caller's responsibility
// to refuse before reaching here, since a missing policy isn't a diff, it's
// a usage error.
func CompareRoots(left, right *Node) *difftree.Node {
	root := difftree.NewRoot(diffContext(left), diffContext(right))
	Compare(left, right, root)
	return root
}

// FullHashHex returns n's full hash as a lowercase hex string.
func FullHashHex(n *Node) string {
	return hex.EncodeToString(n.Full.Bytes())
}

// diffContext is the per-side summary a diff-tree level keeps for one of
// the two nodes being descended into.
func diffContext(n *Node) difftree.Context {
	return difftree.Context{
		Flavor: n.AST.Flavor().String(),
		Line:   n.AST.Line(),
		Hash:   FullHashHex(n),
	}
}
