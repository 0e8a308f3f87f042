package cmp

import (
	"encoding/binary"

	"cildiff/internal/cilast"
	"cildiff/internal/cmphash"
)

// hashExpr absorbs a Boolean-style expression tree: the operator (if any)
// is absorbed first, then every operand is hashed independently and the
// operand hashes are sorted before folding them in. Sorting makes
// semantically-equal expressions collide regardless of operand order, at
// the cost of also canonicalizing operands of non-commutative operators.
func hashExpr(e *cilast.Expr) cmphash.Hash {
	state := cmphash.Begin("<expr>")
	if e == nil {
		return state.Finish()
	}
	if e.HasOp {
		state.UpdateString("<expr_op>")
		state.Update(int32Bytes(int32(e.Op)))
	}
	childHashes := make([]cmphash.Hash, 0, len(e.Items))
	for _, item := range e.Items {
		childHashes = append(childHashes, hashExprItem(item))
	}
	cmphash.SortHashes(childHashes)
	for _, h := range childHashes {
		state.Update(h.Bytes())
	}
	return state.Finish()
}

func hashExprItem(item cilast.ExprItem) cmphash.Hash {
	switch item.Kind {
	case cilast.ExprItemString:
		st := cmphash.Begin("")
		st.UpdateString(item.Str)
		return st.Finish()
	case cilast.ExprItemSubExpr:
		return hashExpr(item.Sub)
	case cilast.ExprItemConsOperand:
		return cmphash.One(int32Bytes(item.ConsOperand))
	default:
		// An unknown item kind means the decoder's AST contract is
		// broken, not the input policy.
		panic("cmp: invalid expression item kind")
	}
}

func int32Bytes(v int32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(v))
	return b
}
