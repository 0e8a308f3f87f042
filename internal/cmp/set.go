package cmp

import (
	"cildiff/internal/cilast"
	"cildiff/internal/cmphash"
	"cildiff/internal/difftree"
)

// Subset groups comparison nodes that share one partial hash: the members
// that are merge-eligible with each other across sides. Membership is
// keyed by full hash; inserting a duplicate full hash is a silent no-op
// since identical statements are a benign redundancy, not a conflict.
type Subset struct {
	Flavor  cilast.Flavor
	Full    cmphash.Hash
	members map[cmphash.Hash]*Node
}

func newSubset(flavor cilast.Flavor) *Subset {
	return &Subset{Flavor: flavor, members: make(map[cmphash.Hash]*Node)}
}

// add inserts node, deduplicating on full hash.
func (s *Subset) add(node *Node) {
	if _, dup := s.members[node.Full]; dup {
		return
	}
	s.members[node.Full] = node
}

// finalize computes the subset's full hash from its members' full hashes;
// no flavor currently overrides this rule.
func (s *Subset) finalize() {
	hs := make([]cmphash.Hash, 0, len(s.members))
	for h := range s.members {
		hs = append(hs, h)
	}
	s.Full = combineSortedUnique(hs)
}

// Len reports the number of distinct members.
func (s *Subset) Len() int { return len(s.members) }

// sortedMembers returns the subset's members ordered by full hash, giving
// every traversal over a subset a deterministic order.
func (s *Subset) sortedMembers() []*Node {
	hs := make([]cmphash.Hash, 0, len(s.members))
	for h := range s.members {
		hs = append(hs, h)
	}
	cmphash.SortHashes(hs)
	out := make([]*Node, len(hs))
	for i, h := range hs {
		out[i] = s.members[h]
	}
	return out
}

func (s *Subset) lookup(full cmphash.Hash) *Node {
	if s == nil {
		return nil
	}
	return s.members[full]
}

// Set is the ordered-or-unordered multiset of direct children of one
// container, partitioned first by partial hash (into Subsets) and then by
// full hash within each Subset.
type Set struct {
	Full    cmphash.Hash
	subsets map[cmphash.Hash]*Subset
}

// buildSet constructs a Set from the linked list of AST children beginning
// at head (nil for an empty container).
func buildSet(head cilast.Node) *Set {
	set := &Set{subsets: make(map[cmphash.Hash]*Subset)}
	if head == nil {
		set.Full = emptySetHash()
		return set
	}
	for child := head; child != nil; child = child.NextSibling() {
		node := NewNode(child)
		subset, ok := set.subsets[node.Partial]
		if !ok {
			subset = newSubset(child.Flavor())
			set.subsets[node.Partial] = subset
		}
		subset.add(node)
	}
	hs := make([]cmphash.Hash, 0, len(set.subsets))
	for _, subset := range set.subsets {
		subset.finalize()
		hs = append(hs, subset.Full)
	}
	set.Full = combineSortedUnique(hs)
	return set
}

func (s *Set) lookup(partial cmphash.Hash) *Subset {
	if s == nil {
		return nil
	}
	return s.subsets[partial]
}

// sortedPartials returns the Set's partial-hash keys in ascending order,
// giving CompareSets/SimSets a deterministic traversal.
func (s *Set) sortedPartials() []cmphash.Hash {
	hs := make([]cmphash.Hash, 0, len(s.subsets))
	for h := range s.subsets {
		hs = append(hs, h)
	}
	cmphash.SortHashes(hs)
	return hs
}

// CompareSets compares two child sets: if both set hashes are equal,
// nothing differs. Otherwise every left subset is paired with its
// same-partial-hash right counterpart (absent or not) and handed to the
// subset comparator; right subsets whose partial hash has no left
// counterpart are then handled the same way from the right side only.
func CompareSets(left, right *Set, diffNode *difftree.Node) {
	if eqHash(left, right) {
		return
	}
	for _, partial := range sortedPartialsOf(left) {
		CompareSubsets(left.subsets[partial], right.lookup(partial), diffNode)
	}
	for _, partial := range sortedPartialsOf(right) {
		if left.lookup(partial) != nil {
			continue
		}
		CompareSubsets(nil, right.subsets[partial], diffNode)
	}
}

// SimSets totals the similarity of every subset pair, one-sided wherever
// the other side has no subset at that partial hash.
func SimSets(left, right *Set) Similarity {
	var total Similarity
	for _, partial := range sortedPartialsOf(left) {
		total.Add(SimSubsets(left.subsets[partial], right.lookup(partial)))
	}
	for _, partial := range sortedPartialsOf(right) {
		if left.lookup(partial) != nil {
			continue
		}
		total.Add(SimSubsets(nil, right.subsets[partial]))
	}
	return total
}

func sortedPartialsOf(s *Set) []cmphash.Hash {
	if s == nil {
		return nil
	}
	return s.sortedPartials()
}

func eqHash(left, right *Set) bool {
	return cmphash.Compare(fullOf(left), fullOf(right)) == 0
}

func fullOf(s *Set) cmphash.Hash {
	if s == nil {
		return cmphash.Hash{}
	}
	return s.Full
}
