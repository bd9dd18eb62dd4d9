package instructors

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Nil(t, loaded)

	profiles := []Profile{
		{
			Name:        "Gail E Kaiser",
			Departments: []string{"COMS"},
			Classes: []ClassRef{
				{Term: "2021-Fall", CourseCode: "COMS E6156"},
				{Term: "2021-Fall", CourseCode: "COMS W4156"},
			},
			CulpaLink:         "http://culpa.info/professors/777",
			CulpaNugget:       "gold",
			CulpaReviewsCount: 2,
			CulpaReviews: []Review{
				{Text: "great course", PublishDate: "2019-05-01", AgreeCount: 3},
			},
			Scholar: &ScholarFields{ScholarID: "abc123", HIndex: 40},
		},
		{
			Name:        "Someone Else",
			Departments: []string{"PHYS"},
			Classes:     []ClassRef{{Term: "2021-Fall", CourseCode: "PHYS UN1201"}},
		},
	}
	require.NoError(t, store.Write(profiles))

	loaded, err = store.Load()
	require.NoError(t, err)
	diff := cmp.Diff(profiles, loaded)
	require.Empty(t, diff)
}

func TestStoreCsvEncoding(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	require.NoError(t, store.Write([]Profile{{
		Name:        "Gail E Kaiser",
		Departments: []string{"COMS", "EECS"},
		Classes: []ClassRef{
			{Term: "2021-Fall", CourseCode: "COMS W4156"},
		},
		CulpaNugget:       "gold",
		CulpaReviewsCount: 12,
		CulpaReviews: []Review{
			{Text: "raw payload stays out of the flat encoding"},
		},
	}}))

	raw, err := os.ReadFile(filepath.Join(dir, "instructors", "instructors.csv"))
	require.NoError(t, err)
	text := string(raw)

	require.True(t, strings.HasPrefix(text,
		"name,departments,classes,culpa_link,culpa_nugget,culpa_reviews_count,wikipedia_link\n"))
	// multi-valued cells are newline-joined inside a quoted field
	require.Contains(t, text, "\"COMS\nEECS\"")
	require.Contains(t, text, "2021-Fall COMS W4156")
	require.NotContains(t, text, "raw payload")
}
