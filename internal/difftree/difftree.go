// Package difftree holds the hierarchical result of one comparison run: a
// tree of nodes, one per container pair the comparison engine descended
// into, each carrying the diff records found at that level plus the child
// nodes of deeper descents. Every tree node keeps a small per-side context
// (construct kind, source line, full hash) for both inputs, so the report
// writers can name the ancestry of any record without reaching back into
// the comparison structures. The package has no knowledge of cilast or
// cmp; the comparison engine builds the tree up as it walks.
package difftree

import (
	"fmt"
	"io"
	"strings"
)

// Side identifies which input a diff record came from. LEFT is present in
// the left input and absent from the right (a deletion, reading the right
// input as "new"); RIGHT is present in the right input and absent from the
// left (an addition).
type Side int

const (
	LEFT Side = iota
	RIGHT
)

// String names the side the way the plain-text report prints it.
func (s Side) String() string {
	if s == RIGHT {
		return "Addition"
	}
	return "Deletion"
}

// Name is the wire name the JSON report uses for the side.
func (s Side) Name() string {
	if s == RIGHT {
		return "RIGHT"
	}
	return "LEFT"
}

// marker is the patch-style glyph line printed before a record's node
// rendering.
func (s Side) marker() string {
	if s == RIGHT {
		return "+++"
	}
	return "---"
}

// Context describes one side's node at one diff-tree level: its construct
// kind, its source line, and its full hash in lowercase hex. The plain-text
// report prints contexts as the ancestry of each record; the JSON report
// carries them as each tree node's "left"/"right" objects.
type Context struct {
	Flavor string `json:"flavor"`
	Line   uint32 `json:"line"`
	Hash   string `json:"hash"`
}

// Record is one leaf difference: a node present on only one side. Hash is
// the node's full hash in lowercase hex; Text is its canonical one-line
// rendering; Desc optionally carries extra detail, e.g. a rendered text
// patch against the other side's counterpart of a changed rule.
type Record struct {
	Side   Side
	Flavor string
	Name   string
	Line   uint32
	Hash   string
	Text   string
	Desc   string
}

// Node is one level of the diff tree. Parent links let the report writers
// walk a record's ancestry from its node up to the root.
type Node struct {
	Parent   *Node
	Left     Context
	Right    Context
	Children []*Node
	Records  []Record
}

// NewRoot creates the tree's top node from the two inputs' root contexts.
func NewRoot(left, right Context) *Node {
	return &Node{Left: left, Right: right}
}

// AppendChild creates and links a new child level under n for a descent
// into the given pair of nodes.
func (n *Node) AppendChild(left, right Context) *Node {
	child := &Node{Parent: n, Left: left, Right: right}
	n.Children = append(n.Children, child)
	return child
}

// AppendDiff records one leaf difference against n.
func (n *Node) AppendDiff(rec Record) {
	n.Records = append(n.Records, rec)
}

// Empty reports whether n and everything beneath it carries no records at
// all, meaning the two inputs are identical under canonicalization.
func (n *Node) Empty() bool {
	if len(n.Records) > 0 {
		return false
	}
	for _, c := range n.Children {
		if !c.Empty() {
			return false
		}
	}
	return true
}

// Count returns the total number of diff records in the tree.
func (n *Node) Count() int {
	total := len(n.Records)
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

// printer wraps an io.Writer with a sticky error so the record formatting
// below reads as plain prints.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// Print renders the tree as the plain-text report: depth-first, children
// before records at every level. Each record is a self-contained comment
// block naming the side, any description, the node's hash, the ancestry of
// the record on both sides, and finally the node's canonical rendering
// between a patch marker and a closing separator.
func Print(w io.Writer, root *Node) error {
	p := &printer{w: w}
	printNode(p, root)
	return p.err
}

func printNode(p *printer, n *Node) {
	for _, child := range n.Children {
		printNode(p, child)
	}
	for i := range n.Records {
		printRecord(p, n, &n.Records[i])
	}
}

func printRecord(p *printer, parent *Node, rec *Record) {
	p.printf("; %s found\n", rec.Side)
	if rec.Desc != "" {
		for i, line := range strings.Split(rec.Desc, "\n") {
			if i == 0 {
				p.printf("; Description: %s\n", line)
			} else if line != "" {
				p.printf(";   %s\n", line)
			}
		}
	}
	if rec.Hash != "" {
		p.printf("; Hash: %s\n", rec.Hash)
	}
	p.printf("; Left context:\n")
	printContext(p, parent, LEFT)
	p.printf("; Right context:\n")
	printContext(p, parent, RIGHT)
	p.printf("; %s\n", rec.Side.marker())
	if rec.Text != "" {
		p.printf("%s\n", rec.Text)
	}
	p.printf("; ===\n")
}

// printContext walks from the root down to n (recursion prints the
// outermost ancestor first), naming each level's construct kind and
// source line on the requested side.
func printContext(p *printer, n *Node, side Side) {
	if n.Parent != nil {
		printContext(p, n.Parent, side)
	}
	ctx := n.Left
	if side == RIGHT {
		ctx = n.Right
	}
	p.printf("; \t%s node on line %d\n", ctx.Flavor, ctx.Line)
}
