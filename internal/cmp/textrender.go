package cmp

import (
	"fmt"
	"strings"

	"cildiff/internal/cilast"
)

// renderText produces a short canonical textual form of a leaf node's data,
// for the unified-diff "quick look" render.Unified attaches to a changed
// pair that defaultSubsetCompare recognizes as the same rule reopened with
// different content (same partial hash, differing full hash, exactly one
// candidate on each side).
func renderText(n *Node) string {
	switch d := n.AST.Data().(type) {
	case *cilast.AVRuleData:
		return fmt.Sprintf("%s %s %s : %s", avruleKindName(d.RuleKind), d.Src, d.Tgt, renderClassPerms(d.ClassPerms))
	case *cilast.TypeTransitionData:
		if d.FileName != "" {
			return fmt.Sprintf("typetransition %s %s : %s %s %q", d.Src, d.Tgt, d.ObjClass, d.ResultType, d.FileName)
		}
		return fmt.Sprintf("typetransition %s %s : %s %s", d.Src, d.Tgt, d.ObjClass, d.ResultType)
	case *cilast.ConstrainData:
		return fmt.Sprintf("%s : %s", renderClassPerms(d.ClassPerms), renderExpr(d.Expr))
	case *cilast.ContextData:
		return fmt.Sprintf("%s %s %s %s", d.User, d.Role, d.Type, renderLevelRangeRef(d.Range))
	case *cilast.NamedData:
		if d != nil {
			return d.Name
		}
	case *cilast.AliasData:
		if d != nil {
			return fmt.Sprintf("%s -> %s", d.Alias, d.Actual)
		}
	case string:
		return d
	}
	return n.AST.Flavor().String()
}

func avruleKindName(k cilast.AVRuleKind) string {
	switch k {
	case cilast.AVRuleAllow:
		return "allow"
	case cilast.AVRuleAuditAllow:
		return "auditallow"
	case cilast.AVRuleDontAudit:
		return "dontaudit"
	case cilast.AVRuleNeverAllow:
		return "neverallow"
	default:
		return "avrule"
	}
}

func renderClassPerms(cps []cilast.ClassPermsData) string {
	parts := make([]string, 0, len(cps))
	for _, cp := range cps {
		parts = append(parts, fmt.Sprintf("%s (%s)", cp.Class, strings.Join(cp.Perms, " ")))
	}
	return strings.Join(parts, ", ")
}

func renderExpr(e *cilast.Expr) string {
	if e == nil {
		return ""
	}
	parts := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		switch item.Kind {
		case cilast.ExprItemString:
			parts = append(parts, item.Str)
		case cilast.ExprItemSubExpr:
			parts = append(parts, "("+renderExpr(item.Sub)+")")
		case cilast.ExprItemConsOperand:
			parts = append(parts, fmt.Sprintf("cons(%d)", item.ConsOperand))
		}
	}
	return strings.Join(parts, " ")
}

func renderLevelRangeRef(r cilast.LevelRangeRef) string {
	if r.Name != "" {
		return r.Name
	}
	if r.Anon != nil {
		return fmt.Sprintf("%s-%s", renderLevelRef(r.Anon.Low), renderLevelRef(r.Anon.High))
	}
	return ""
}

func renderLevelRef(r cilast.LevelRef) string {
	if r.Name != "" {
		return r.Name
	}
	if r.Anon != nil {
		return fmt.Sprintf("%s:%s", r.Anon.Sens, strings.Join(r.Anon.Categories, ","))
	}
	return ""
}
