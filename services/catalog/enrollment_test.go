package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestMergeSeriesAccumulates(t *testing.T) {
	term := Term{Year: 2021, Semester: SemesterSummer}

	existing := EnrollmentSeries{
		"2021-06-15": {Current: 9, Max: 15},
	}
	incoming := EnrollmentSeries{
		"2021-06-12": {Current: 10, Max: 15},
	}

	merged := MergeSeries(existing, incoming, term)
	expected := EnrollmentSeries{
		"2021-06-12": {Current: 10, Max: 15},
		"2021-06-15": {Current: 9, Max: 15},
	}
	if diff := cmp.Diff(expected, merged); diff != "" {
		t.Fatal(diff)
	}
}

func TestMergeSeriesCollisionNewWins(t *testing.T) {
	term := Term{Year: 2021, Semester: SemesterSummer}

	existing := EnrollmentSeries{
		"2021-06-12": {Current: 5, Max: 15},
		"2021-06-10": {Current: 4, Max: 15},
	}
	incoming := EnrollmentSeries{
		"2021-06-12": {Current: 7, Max: 20},
	}

	merged := MergeSeries(existing, incoming, term)
	require.Len(t, merged, 2)
	require.Equal(t, EnrollmentObservation{Current: 7, Max: 20}, merged["2021-06-12"])
	require.Equal(t, EnrollmentObservation{Current: 4, Max: 15}, merged["2021-06-10"])
}

func TestMergeSeriesPrunesAfterTermEnd(t *testing.T) {
	term := Term{Year: 2021, Semester: SemesterSpring} // ends May 20

	existing := EnrollmentSeries{
		"2021-05-19": {Current: 10, Max: 20},
		"2021-05-25": {Current: 11, Max: 20},
	}
	merged := MergeSeries(existing, nil, term)
	require.Len(t, merged, 1)
	require.Contains(t, merged, "2021-05-19")
}

func TestMergeSeriesRetentionFloor(t *testing.T) {
	term := Term{Year: 2021, Semester: SemesterSpring}

	// a late add: every reading is post-term
	existing := EnrollmentSeries{
		"2021-05-25": {Current: 3, Max: 10},
		"2021-06-01": {Current: 5, Max: 10},
	}
	merged := MergeSeries(existing, nil, term)
	require.Len(t, merged, 1)
	require.Equal(t, EnrollmentObservation{Current: 3, Max: 10}, merged["2021-05-25"])
}

func TestMergeSeriesEmpty(t *testing.T) {
	term := Term{Year: 2021, Semester: SemesterFall}
	require.Nil(t, MergeSeries(nil, nil, term))
}

func TestMergeEnrollmentKeepsAbsentSections(t *testing.T) {
	term := Term{Year: 2021, Semester: SemesterFall}

	prior := []EnrollmentRow{
		{
			CallNumber: 10072,
			CourseCode: "COMS W4156",
			Enrollment: EnrollmentSeries{"2021-09-10": {Current: 5, Max: 20}},
		},
	}
	records := []ClassRecord{
		{
			CallNumber: 11567,
			CourseCode: "COMS W3157",
			ClassID:    "20213-11567-001",
			Enrollment: EnrollmentSeries{"2021-09-12": {Current: 40, Max: 120}},
		},
	}

	rows := MergeEnrollment(term, records, prior)
	require.Len(t, rows, 2)
	// sorted by (course_code, call_number)
	require.Equal(t, "COMS W3157", rows[0].CourseCode)
	require.Equal(t, 10072, rows[1].CallNumber)
	require.Contains(t, rows[1].Enrollment, "2021-09-10")
}

func TestMergeEnrollmentIdempotent(t *testing.T) {
	term := Term{Year: 2021, Semester: SemesterFall}
	records := []ClassRecord{
		{
			CallNumber: 10072,
			CourseCode: "COMS W4156",
			Enrollment: EnrollmentSeries{"2021-09-10": {Current: 5, Max: 20}},
		},
	}

	first := MergeEnrollment(term, records, nil)
	second := MergeEnrollment(term, records, first)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatal(diff)
	}
}
