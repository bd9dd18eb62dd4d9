package crawler

import (
	"testing"

	"cucatalog-backend/services/catalog"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParseDepartmentURL(t *testing.T) {
	code, term, err := ParseDepartmentURL(
		"http://www.columbia.edu/cu/bulletin/uwb/sel/COMS_Fall2021.html")
	require.NoError(t, err)
	require.Equal(t, "COMS", code)
	require.Equal(t, catalog.Term{Year: 2021, Semester: catalog.SemesterFall}, term)

	_, _, err = ParseDepartmentURL(
		"http://www.columbia.edu/cu/bulletin/uwb/sel/departments.html")
	require.Error(t, err)
}

func TestClassIDFromURL(t *testing.T) {
	require.Equal(t, "W4156-20213-001", ClassIDFromURL(
		"http://www.columbia.edu/cu/bulletin/uwb/subj/COMS/W4156-20213-001/"))
}

const classPage = `
<html><body>
<table>
<tr><td class="title">Advanced Software Engineering</td></tr>
<tr><td>Call Number</td><td>10072</td></tr>
<tr><td>Day &amp; Time Location</td><td>TR 10:10am-11:25am 451 Computer Science Building</td></tr>
<tr><td>Points</td><td>3</td></tr>
<tr><td>Type</td><td>LECTURE</td></tr>
<tr><td>Method of Instruction</td><td>In-Person</td></tr>
<tr><td>Course Description</td><td>Software lifecycle using frameworks, libraries and services.</td></tr>
<tr><td>Department</td><td>Computer Science</td></tr>
<tr><td>Enrollment</td><td>34 students (100 max) as of 2021-06-12</td></tr>
<tr><td>Instructor</td><td>Gail E Kaiser</td></tr>
<tr><td>Open To</td><td>SEAS, CC, Barnard</td></tr>
<tr><td>Prerequisites</td><td>COMS W3134 or COMS W3136 and COMS W3157.</td></tr>
<tr><td>Campus</td><td>Morningside</td></tr>
<tr><td>Section key</td><td>20213COMS4156W001</td></tr>
</table>
</body></html>`

func TestParseClassPage(t *testing.T) {
	doc := mustDoc(t, classPage)

	link := "http://www.columbia.edu/cu/bulletin/uwb/subj/COMS/W4156-20213-001/"
	parsed, err := ParseClassPage(doc, "COMS", "W4156-20213-001", link)
	require.NoError(t, err)

	want := catalog.ClassRecord{
		CallNumber:         10072,
		CourseCode:         "COMS W4156",
		ClassID:            "W4156-20213-001",
		SectionKey:         "20213COMS4156W001",
		CourseTitle:        "Advanced Software Engineering",
		CourseDescr:        "Software lifecycle using frameworks, libraries and services.",
		ScheduledDays:      "TR",
		ScheduledTimeStart: "10:10am",
		ScheduledTimeEnd:   "11:25am",
		Location:           "451 Computer Science Building",
		Points:             "3",
		Type:               "LECTURE",
		Campus:             "Morningside",
		Method:             "In-Person",
		Link:               link,
		Department:         "Computer Science",
		DepartmentCode:     "COMS",
		Instructor:         "Gail E Kaiser",
		OpenTo:             []string{"SEAS", "CC", "Barnard"},
		Prerequisites: [][]string{
			{"COMS W3134", "COMS W3136"},
			{"COMS W3157"},
		},
	}
	diff := cmp.Diff(want, parsed.Record)
	require.Empty(t, diff)
	require.Equal(t, catalog.EnrollmentObservation{Current: 34, Max: 100}, parsed.Observed)
	require.NoError(t, parsed.Record.Validate())
}

func TestParseClassPageMissingCallNumber(t *testing.T) {
	doc := mustDoc(t, `<html><body><table>
		<tr><td>Points</td><td>3</td></tr>
	</table></body></html>`)

	_, err := ParseClassPage(doc, "COMS", "W4156-20213-001", "")
	require.Error(t, err)
}

func TestParseClassPageUnstructuredSchedule(t *testing.T) {
	doc := mustDoc(t, `<html><body><table>
		<tr><td>Call Number</td><td>12345</td></tr>
		<tr><td>Day &amp; Time Location</td><td>To be announced</td></tr>
	</table></body></html>`)

	parsed, err := ParseClassPage(doc, "PHYS", "UN1201-20213-001", "")
	require.NoError(t, err)
	require.Empty(t, parsed.Record.ScheduledDays)
	require.Equal(t, "To be announced", parsed.Record.Location)
}
