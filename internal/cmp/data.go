package cmp

import (
	"fmt"
	"sort"

	"cildiff/internal/cilast"
	"cildiff/internal/cmphash"
)

// dataHashes is what a per-flavor data hasher produces for one node's own
// immediate fields, before any children are considered.
type dataHashes struct {
	full    cmphash.Hash
	partial cmphash.Hash
}

// hashData runs the data hasher for n's flavor over n's own data payload.
// It never looks at children; callers that need child contributions (the
// container and conditional-container node initializers) fold the result
// together with a child set's hash themselves.
func hashData(n cilast.Node) dataHashes {
	if fn, ok := dataHashers[n.Flavor()]; ok {
		return fn(n)
	}
	return defaultDataHasher(n)
}

// defaultDataHasher absorbs only the flavor tag. For flavors with no
// meaningful merge grouping, no snapshot is taken and partial_hash ==
// full_hash; it covers every flavor this package does not specialize
// below.
func defaultDataHasher(n cilast.Node) dataHashes {
	state := cmphash.Begin(n.Flavor().String())
	h := state.Finish()
	return dataHashes{full: h, partial: h}
}

// namedDataHasher absorbs NamedData.Name with no snapshot: used for every
// simple named declaration and as the own-data contribution of every
// generic container (block, macro, optional, in, class, common, map_class).
func namedDataHasher(n cilast.Node) dataHashes {
	state := cmphash.Begin(n.Flavor().String())
	nd, _ := n.Data().(*cilast.NamedData)
	if nd != nil {
		state.UpdateString(nd.Name)
	} else {
		state.UpdateString("")
	}
	h := state.Finish()
	return dataHashes{full: h, partial: h}
}

// aliasDataHasher absorbs an alias declaration's two names. The snapshot is
// taken after the alias name so that, in principle, alias redeclarations
// that only change the resolved target are mergeable as siblings sharing a
// partial hash; the full hash still distinguishes them.
func aliasDataHasher(n cilast.Node) dataHashes {
	state := cmphash.Begin(n.Flavor().String())
	ad := mustData[*cilast.AliasData](n)
	state.UpdateString(ad.Alias)
	partial := state.Copy().Finish()
	state.UpdateString(ad.Actual)
	return dataHashes{full: state.Finish(), partial: partial}
}

func orderedListDataHasher(n cilast.Node) dataHashes {
	state := cmphash.Begin(n.Flavor().String())
	od := mustData[*cilast.OrderedListData](n)
	items := od.Items
	if od.Unordered {
		items = append([]string(nil), items...)
		sort.Strings(items)
	}
	for _, it := range items {
		state.UpdateString(it)
	}
	h := state.Finish()
	return dataHashes{full: h, partial: h}
}

func levelDataHasher(n cilast.Node) dataHashes {
	ld := mustData[*cilast.LevelData](n)
	h := hashLevelData(ld)
	return dataHashes{full: h, partial: h}
}

// hashLevelData absorbs a level's sensitivity and its unordered set of
// categories; used both for the top-level FlavorLevel data hasher and for
// folding an inline anonymous level into a context/levelrange.
func hashLevelData(ld *cilast.LevelData) cmphash.Hash {
	state := cmphash.Begin("level")
	state.UpdateString(ld.Sens)
	state.Update(hashStringMultiset(ld.Categories).Bytes())
	return state.Finish()
}

func levelRangeDataHasher(n cilast.Node) dataHashes {
	lrd := mustData[*cilast.LevelRangeData](n)
	h := hashLevelRangeData(lrd)
	return dataHashes{full: h, partial: h}
}

func hashLevelRangeData(lrd *cilast.LevelRangeData) cmphash.Hash {
	state := cmphash.Begin("levelrange")
	state.Update(hashLevelRef(lrd.Low).Bytes())
	state.Update(hashLevelRef(lrd.High).Bytes())
	return state.Finish()
}

// hashLevelRef absorbs a level reference: a named reference hashes as the
// referring string (the named target is compared independently elsewhere
// in the tree); an inline anonymous level hashes via hashLevelData under
// the anonymous sentinel.
func hashLevelRef(ref cilast.LevelRef) cmphash.Hash {
	state := cmphash.Begin("")
	if ref.Anon != nil {
		state.UpdateString("<anonymous::level>")
		state.Update(hashLevelData(ref.Anon).Bytes())
	} else {
		state.UpdateString(ref.Name)
	}
	return state.Finish()
}

func hashLevelRangeRef(ref cilast.LevelRangeRef) cmphash.Hash {
	state := cmphash.Begin("")
	if ref.Anon != nil {
		state.UpdateString("<anonymous::levelrange>")
		state.Update(hashLevelRangeData(ref.Anon).Bytes())
	} else {
		state.UpdateString(ref.Name)
	}
	return state.Finish()
}

func contextDataHasher(n cilast.Node) dataHashes {
	cd := mustData[*cilast.ContextData](n)
	h := hashContextData(cd)
	return dataHashes{full: h, partial: h}
}

func hashContextData(cd *cilast.ContextData) cmphash.Hash {
	state := cmphash.Begin("context")
	state.UpdateString(cd.User)
	state.UpdateString(cd.Role)
	state.UpdateString(cd.Type)
	state.Update(hashLevelRangeRef(cd.Range).Bytes())
	return state.Finish()
}

func avruleDataHasher(n cilast.Node) dataHashes {
	state := cmphash.Begin(n.Flavor().String())
	ad := mustData[*cilast.AVRuleData](n)
	state.Update(int32Bytes(int32(ad.RuleKind)))
	state.UpdateString(ad.Src)
	state.UpdateString(ad.Tgt)
	partial := state.Copy().Finish()
	state.Update(hashClassPermsSet(ad.ClassPerms).Bytes())
	return dataHashes{full: state.Finish(), partial: partial}
}

func typeTransitionDataHasher(n cilast.Node) dataHashes {
	state := cmphash.Begin(n.Flavor().String())
	td := mustData[*cilast.TypeTransitionData](n)
	state.UpdateString(td.Src)
	state.UpdateString(td.Tgt)
	state.UpdateString(td.ObjClass)
	partial := state.Copy().Finish()
	state.UpdateString(td.ResultType)
	state.UpdateString(td.FileName)
	return dataHashes{full: state.Finish(), partial: partial}
}

func constrainDataHasher(n cilast.Node) dataHashes {
	state := cmphash.Begin(n.Flavor().String())
	cd := mustData[*cilast.ConstrainData](n)
	state.Update(hashClassPermsSet(cd.ClassPerms).Bytes())
	partial := state.Copy().Finish()
	state.Update(hashExpr(cd.Expr).Bytes())
	return dataHashes{full: state.Finish(), partial: partial}
}

// condDataHasher absorbs a conditional container's own guard expression
// (booleanif/tunableif); the two branch sets are folded in separately by
// initConditional, since they are not part of the data payload proper.
func condDataHasher(n cilast.Node) dataHashes {
	state := cmphash.Begin(n.Flavor().String())
	expr := mustData[*cilast.Expr](n)
	state.Update(hashExpr(expr).Bytes())
	h := state.Finish()
	return dataHashes{full: h, partial: h}
}

func stringDataHasher(n cilast.Node) dataHashes {
	state := cmphash.Begin("")
	s, _ := n.Data().(string)
	state.UpdateString(s)
	h := state.Finish()
	return dataHashes{full: h, partial: h}
}

// hashClassPermsSet absorbs a nested, order-insensitive list of classperms
// entries (e.g. an avrule's class/permission pairs) the way a generic
// child Set would: each entry's own full hash, sorted, then combined.
// classperms is not itself a container-like flavor, so it does not get a
// real child Set, just this direct equivalent.
func hashClassPermsSet(cps []cilast.ClassPermsData) cmphash.Hash {
	if len(cps) == 0 {
		return emptySetHash()
	}
	hs := make([]cmphash.Hash, len(cps))
	for i, cp := range cps {
		hs[i] = hashClassPerms(cp)
	}
	return combineSortedUnique(hs)
}

func hashClassPerms(cp cilast.ClassPermsData) cmphash.Hash {
	state := cmphash.Begin("classperms")
	state.UpdateString(cp.Class)
	state.Update(hashStringMultiset(cp.Perms).Bytes())
	return state.Finish()
}

// hashStringMultiset absorbs an unordered, deduplicated collection of
// strings the way a generic child Set of single-string leaves would: each
// string hashes to its own full hash (no merge grouping for strings), then
// the unique hashes are sorted and combined. Duplicate strings collapse
// silently, mirroring how duplicate set members are deduplicated.
func hashStringMultiset(strs []string) cmphash.Hash {
	if len(strs) == 0 {
		return emptySetHash()
	}
	seen := make(map[cmphash.Hash]struct{}, len(strs))
	hs := make([]cmphash.Hash, 0, len(strs))
	for _, s := range strs {
		st := cmphash.Begin("")
		st.UpdateString(s)
		h := st.Finish()
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		hs = append(hs, h)
	}
	return combineSortedUnique(hs)
}

// combineSortedUnique is the Set-level combination rule: sort the
// member hashes and digest their concatenation, with the single-member
// case returning that member's hash verbatim.
func combineSortedUnique(hs []cmphash.Hash) cmphash.Hash {
	if len(hs) == 1 {
		return hs[0]
	}
	cp := append([]cmphash.Hash(nil), hs...)
	cmphash.SortHashes(cp)
	return cmphash.HashAll(cp)
}

// emptySetHash is the well-known sentinel for an empty set.
func emptySetHash() cmphash.Hash {
	return cmphash.One([]byte("<empty-set>"))
}

func mustData[T any](n cilast.Node) T {
	d, ok := n.Data().(T)
	if !ok {
		panic(fmt.Sprintf("cmp: node of flavor %s carries data of unexpected type %T", n.Flavor(), n.Data()))
	}
	return d
}

var dataHashers = map[cilast.Flavor]func(cilast.Node) dataHashes{
	cilast.FlavorBlock:         namedDataHasher,
	cilast.FlavorMacro:         namedDataHasher,
	cilast.FlavorOptional:      namedDataHasher,
	cilast.FlavorIn:            namedDataHasher,
	cilast.FlavorClass:         namedDataHasher,
	cilast.FlavorCommon:        namedDataHasher,
	cilast.FlavorMapClass:      namedDataHasher,
	cilast.FlavorPerm:          namedDataHasher,
	cilast.FlavorType:          namedDataHasher,
	cilast.FlavorTypeAttribute: namedDataHasher,
	cilast.FlavorRole:          namedDataHasher,
	cilast.FlavorRoleAttribute: namedDataHasher,
	cilast.FlavorUser:          namedDataHasher,
	cilast.FlavorSensitivity:   namedDataHasher,
	cilast.FlavorCategory:      namedDataHasher,
	cilast.FlavorBoolean:       namedDataHasher,
	cilast.FlavorTunable:       namedDataHasher,

	cilast.FlavorTypeAlias:        aliasDataHasher,
	cilast.FlavorSensitivityAlias: aliasDataHasher,
	cilast.FlavorCategoryAlias:    aliasDataHasher,

	cilast.FlavorClassOrder:       orderedListDataHasher,
	cilast.FlavorSensitivityOrder: orderedListDataHasher,
	cilast.FlavorCategoryOrder:    orderedListDataHasher,

	cilast.FlavorLevel:      levelDataHasher,
	cilast.FlavorLevelRange: levelRangeDataHasher,
	cilast.FlavorContext:    contextDataHasher,

	cilast.FlavorAVRule:         avruleDataHasher,
	cilast.FlavorTypeTransition: typeTransitionDataHasher,
	cilast.FlavorConstrain:      constrainDataHasher,
	cilast.FlavorMLSConstrain:   constrainDataHasher,

	cilast.FlavorString: stringDataHasher,

	cilast.FlavorBooleanIf: condDataHasher,
	cilast.FlavorTunableIf: condDataHasher,

	// Root and source-info carry no data of their own: the default
	// hasher (flavor tag only) is exactly right for them.
}
