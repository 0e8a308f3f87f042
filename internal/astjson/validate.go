package astjson

import (
	"errors"
	"fmt"
	"strings"

	"cildiff/internal/cilast"
)

// Validate walks a decoded tree and aggregates every structural problem it
// finds into a single error, rather than failing on the first one, so a
// malformed input reports all of its issues in one pass.
func Validate(root cilast.Node) error {
	var errs errlist
	walk(root, &errs)
	return errs.err()
}

func walk(n cilast.Node, errs *errlist) {
	if n == nil {
		return
	}
	checkNode(n, errs)
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		walk(c, errs)
	}
}

func checkNode(n cilast.Node, errs *errlist) {
	flavor := n.Flavor()
	prefix := fmt.Sprintf("%s (line %d)", flavor, n.Line())

	switch flavor {
	case cilast.FlavorBlock, cilast.FlavorMacro, cilast.FlavorOptional, cilast.FlavorIn,
		cilast.FlavorClass, cilast.FlavorCommon, cilast.FlavorMapClass, cilast.FlavorPerm,
		cilast.FlavorType, cilast.FlavorTypeAttribute, cilast.FlavorRole, cilast.FlavorRoleAttribute,
		cilast.FlavorUser, cilast.FlavorSensitivity, cilast.FlavorCategory,
		cilast.FlavorBoolean, cilast.FlavorTunable:
		d, ok := n.Data().(*cilast.NamedData)
		if !ok || d == nil {
			errs.add("%s: missing name data", prefix)
		} else if strings.TrimSpace(d.Name) == "" {
			errs.add("%s: name must be non-empty", prefix)
		}

	case cilast.FlavorTypeAlias, cilast.FlavorSensitivityAlias, cilast.FlavorCategoryAlias:
		d, ok := n.Data().(*cilast.AliasData)
		if !ok || d == nil {
			errs.add("%s: missing alias data", prefix)
		} else {
			if strings.TrimSpace(d.Alias) == "" {
				errs.add("%s: alias must be non-empty", prefix)
			}
			if strings.TrimSpace(d.Actual) == "" {
				errs.add("%s: actual must be non-empty", prefix)
			}
		}

	case cilast.FlavorAVRule:
		d, ok := n.Data().(*cilast.AVRuleData)
		if !ok || d == nil {
			errs.add("%s: missing avrule data", prefix)
		} else if d.RuleKind < cilast.AVRuleAllow || d.RuleKind > cilast.AVRuleNeverAllow {
			errs.add("%s: rule kind %d out of range", prefix, d.RuleKind)
		}

	case cilast.FlavorConstrain, cilast.FlavorMLSConstrain:
		d, ok := n.Data().(*cilast.ConstrainData)
		if !ok || d == nil {
			errs.add("%s: missing constrain data", prefix)
		} else if d.Expr == nil {
			errs.add("%s: missing expression", prefix)
		}

	case cilast.FlavorBooleanIf, cilast.FlavorTunableIf:
		d, ok := n.Data().(*cilast.Expr)
		if !ok || d == nil {
			errs.add("%s: missing guard expression", prefix)
		}
		seenTrue, seenFalse := 0, 0
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch c.Flavor() {
			case cilast.FlavorCondTrue:
				seenTrue++
			case cilast.FlavorCondFalse:
				seenFalse++
			default:
				errs.add("%s: unexpected child flavor %s", prefix, c.Flavor())
			}
		}
		if seenTrue > 1 {
			errs.add("%s: more than one true-branch", prefix)
		}
		if seenFalse > 1 {
			errs.add("%s: more than one false-branch", prefix)
		}

	case cilast.FlavorString:
		if _, ok := n.Data().(string); !ok {
			errs.add("%s: missing string data", prefix)
		}
	}
}

// errlist aggregates multiple validation issues into a single error.
type errlist struct {
	msgs []string
}

func (e *errlist) add(format string, args ...any) {
	e.msgs = append(e.msgs, fmt.Sprintf(format, args...))
}

func (e *errlist) err() error {
	if len(e.msgs) == 0 {
		return nil
	}
	return errors.New("astjson: " + strings.Join(e.msgs, "\n"))
}
