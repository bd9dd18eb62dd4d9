package namematch

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// catalog names come as "First M Last", external sources spell the
// same person as "Last, First", with or without middle initials,
// diacritics, hyphenation or minor typos. no single rule covers all
// of that, so Matches escalates through three tiers, trading
// precision for recall as exact token matching fails.

const (
	tokenSimilarityThreshold = 0.95
	wholeSimilarityThreshold = 0.97
)

var nonWordRegex = regexp.MustCompile(`\W+`)
var whitespaceRegex = regexp.MustCompile(`\s+`)

var diacriticsRemover = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Normalize rewrites "Last, First [Middle]" to "First [Middle] Last",
// collapses whitespace and lowercases.
func Normalize(name string) string {
	if comma := strings.Index(name, ","); comma >= 0 {
		last := name[:comma]
		first := name[comma+1:]
		name = first + " " + last
	}
	name = strings.ToLower(strings.TrimSpace(name))
	name = whitespaceRegex.ReplaceAllString(name, " ")
	folded, _, err := transform.String(diacriticsRemover, name)
	if err == nil {
		name = folded
	}
	return name
}

// tokens of length <= 1 are middle initials, they carry no signal
func tokenize(normalized string) []string {
	var out []string
	for _, t := range nonWordRegex.Split(normalized, -1) {
		if len(t) <= 1 {
			continue
		}
		out = append(out, t)
	}
	return out
}

func enoughShared(shared, aLen, bLen int) bool {
	if shared >= 2 {
		return true
	}
	return shared == 1 && (aLen == 1 || bLen == 1)
}

func sharedExact(a, b []string) int {
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	shared := 0
	for _, t := range b {
		if _, ok := set[t]; ok {
			shared++
			delete(set, t)
		}
	}
	return shared
}

func sharedFuzzy(a, b []string) int {
	used := make(map[int]struct{})
	shared := 0
	for _, left := range a {
		for i, right := range b {
			if _, taken := used[i]; taken {
				continue
			}
			if matchr.JaroWinkler(left, right, false) >= tokenSimilarityThreshold {
				used[i] = struct{}{}
				shared++
				break
			}
		}
	}
	return shared
}

// Matches reports whether a and b plausibly name the same person
// despite formatting noise. Symmetric in intent.
func Matches(a, b string) bool {
	na := Normalize(a)
	nb := Normalize(b)
	if na == "" || nb == "" {
		return false
	}

	ta := tokenize(na)
	tb := tokenize(nb)

	if enoughShared(sharedExact(ta, tb), len(ta), len(tb)) {
		return true
	}
	if enoughShared(sharedFuzzy(ta, tb), len(ta), len(tb)) {
		return true
	}
	return matchr.JaroWinkler(na, nb, false) >= wholeSimilarityThreshold
}
