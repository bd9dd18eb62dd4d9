package enrich

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"cucatalog-backend/lib/testutil"
	"cucatalog-backend/services/catalog"
	"cucatalog-backend/services/instructors"
	"cucatalog-backend/services/instructors/checklog"

	"github.com/stretchr/testify/require"
)

func TestAffiliationMatch(t *testing.T) {
	cases := []struct {
		name   string
		author Author
		want   bool
	}{
		{"institution affiliation", Author{Affiliation: "Columbia University"}, true},
		{"lowercase affiliation", Author{Affiliation: "professor, columbia university"}, true},
		{"false positive institution", Author{Affiliation: "University of British Columbia"}, false},
		{"university email domain", Author{Affiliation: "CS Department", EmailDomain: "@cs.columbia.edu"}, true},
		{"affiliate college email domain", Author{EmailDomain: "@barnard.edu"}, true},
		{"unrelated", Author{Affiliation: "MIT", EmailDomain: "@mit.edu"}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, affiliationMatch(c.author))
		})
	}
}

type fakeAuthorSource struct {
	results map[string][]Author
	filled  map[string]Author
}

func (f fakeAuthorSource) SearchAuthors(ctx context.Context, name string) ([]Author, error) {
	return f.results[name], nil
}

func (f fakeAuthorSource) FillAuthor(ctx context.Context, scholarID string) (Author, error) {
	return f.filled[scholarID], nil
}

func scholarSetup(t *testing.T) (*instructors.Index, *checklog.Log) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/enrich",
		DbSchema: checklog.Schema,
	})
	t.Cleanup(cleanup)

	idx := instructors.NewIndex()
	term := catalog.Term{Year: 2021, Semester: catalog.SemesterFall}
	require.NoError(t, idx.RecordClass(term, catalog.ClassRecord{
		CourseCode:     "COMS W4156",
		DepartmentCode: "COMS",
		Instructor:     "Gail E Kaiser",
	}))
	return idx, checklog.New(res.DB)
}

func TestScholarAcceptsOnAffiliation(t *testing.T) {
	idx, log := scholarSetup(t)

	source := fakeAuthorSource{
		results: map[string][]Author{
			"Gail E Kaiser": {{
				Name:        "Gail Kaiser",
				Affiliation: "Columbia University",
				ScholarID:   "abc123",
			}},
		},
		filled: map[string]Author{
			"abc123": {
				Name:        "Gail Kaiser",
				Affiliation: "Columbia University",
				ScholarID:   "abc123",
				Interests:   []string{"software engineering"},
				HIndex:      40,
			},
		},
	}

	e := NewScholarEnricher(source, t.TempDir())
	require.NoError(t, e.Run(context.Background(), idx, log))

	p, ok := idx.Get("Gail E Kaiser")
	require.True(t, ok)
	require.NotNil(t, p.Scholar)
	require.Equal(t, "abc123", p.Scholar.ScholarID)
	require.Equal(t, 40, p.Scholar.HIndex)
}

func TestScholarQueuesUnsureMatch(t *testing.T) {
	idx, log := scholarSetup(t)

	source := fakeAuthorSource{
		results: map[string][]Author{
			"Gail E Kaiser": {{
				Name:        "Gail Kaiser",
				Affiliation: "University of British Columbia",
				ScholarID:   "zzz999",
			}},
		},
	}

	dir := t.TempDir()
	e := NewScholarEnricher(source, dir)
	require.NoError(t, e.Run(context.Background(), idx, log))

	// not attached, only queued for manual review
	p, _ := idx.Get("Gail E Kaiser")
	require.Nil(t, p.Scholar)

	f, err := os.Open(filepath.Join(dir, "unsure.json"))
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	require.True(t, scanner.Scan())
	var entry struct {
		Instructor string `json:"instructor"`
		Result     Author `json:"result"`
	}
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
	require.Equal(t, "Gail E Kaiser", entry.Instructor)
	require.Equal(t, "zzz999", entry.Result.ScholarID)
	require.False(t, scanner.Scan())
}

func TestScholarSkipsRecentlyChecked(t *testing.T) {
	idx, log := scholarSetup(t)
	ctx := context.Background()

	require.NoError(t, log.Touch(ctx, "Gail E Kaiser", checklog.FieldScholarSearch))

	e := NewScholarEnricher(fakeAuthorSource{}, t.TempDir())
	require.NoError(t, e.Run(ctx, idx, log))

	_, err := os.Stat(e.unsurePath)
	require.True(t, os.IsNotExist(err))
}
