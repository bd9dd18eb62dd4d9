package contentdiff

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// IsMateriallyDifferent reports whether two raw page captures differ
// in content. The comparison is a sequence ratio over lines, anything
// short of a line-for-line identical document counts as different.
//
// Known limitation: a page whose only change is an embedded generation
// timestamp still registers as different.
func IsMateriallyDifferent(old, new string) bool {
	matcher := difflib.NewMatcher(
		strings.Split(old, "\n"),
		strings.Split(new, "\n"),
	)
	return matcher.Ratio() != 1.0
}
