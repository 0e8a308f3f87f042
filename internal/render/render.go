// Package render turns a changed leaf value into a human-readable unified
// diff: the "quick look" patch the comparison engine attaches to the
// deletion record of a statement rewritten with different content.
package render

import (
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"

	"cildiff/internal/textutil"
)

// Options controls patch generation. The zero value is usable.
type Options struct {
	// Context is the number of context lines kept around each hunk. 0
	// defaults to 2, appropriate for the short multi-line values this
	// package renders (a handful of expression operands, not whole files).
	Context int
}

// Unified produces a classic unified patch between a and b, labeled aName/
// bName. Both inputs are normalized to LF line endings first so that a
// difference in source line-ending convention alone never shows up as a
// spurious diff.
func Unified(aName, bName, a, b string) string {
	return UnifiedOpt(aName, bName, a, b, Options{})
}

func UnifiedOpt(aName, bName, a, b string, opt Options) string {
	ctx := opt.Context
	if ctx <= 0 {
		ctx = 2
	}
	na := string(textutil.NormalizeUTF8LF([]byte(a)))
	nb := string(textutil.NormalizeUTF8LF([]byte(b)))
	u := difflib.UnifiedDiff{
		A:        splitKeepNL(na),
		B:        splitKeepNL(nb),
		FromFile: aName,
		ToFile:   bName,
		Context:  ctx,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil || s == "" {
		return ""
	}
	return s
}

func splitKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.SplitAfter(s, "\n")
}
