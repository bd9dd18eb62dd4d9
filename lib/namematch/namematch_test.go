package namematch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatches(t *testing.T) {
	testCases := []struct {
		a, b  string
		match bool
	}{
		// comma form vs catalog form
		{"Zhi Li", "Li, Zhi", true},
		{"Gail E Kaiser", "Kaiser, Gail", true},
		// middle initials carry no signal
		{"Dragomir R. Radev", "Dragomir Radev", true},
		// hyphenation variants
		{"Hee Jin Kim", "Hee-Jin Kim", true},
		// diacritics
		{"Renée Fleming", "Renee Fleming", true},
		// near-identical spelling, tier 3
		{"Katherine Phillips", "Katharine Phillips", true},
		// different people with one shared surname-ish token
		{"Zhi Li", "Ying, Zhiliang", false},
		{"John Smith", "Jane Doe", false},
		{"", "Jane Doe", false},
	}

	for _, tc := range testCases {
		require.Equal(t, tc.match, Matches(tc.a, tc.b),
			"Matches(%q, %q)", tc.a, tc.b)
		require.Equal(t, tc.match, Matches(tc.b, tc.a),
			"Matches(%q, %q)", tc.b, tc.a)
	}
}

func TestNormalize(t *testing.T) {
	require.Equal(t, "zhi li", Normalize("Li,  Zhi"))
	require.Equal(t, "gail e kaiser", Normalize("Gail   E Kaiser"))
	require.Equal(t, "renee fleming", Normalize("Renée Fleming"))
}
