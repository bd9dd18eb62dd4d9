package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func rec(dept, courseCode, title string, call int) ClassRecord {
	return ClassRecord{
		CallNumber:     call,
		CourseCode:     courseCode,
		CourseTitle:    title,
		DepartmentCode: dept,
	}
}

func TestMergeTermPreservesVanishedDepartments(t *testing.T) {
	prior := []ClassRecord{
		rec("COMS", "COMS W3157", "Advanced Programming", 10072),
		rec("PHYS", "PHYS C1401", "Mechanics", 20011),
	}
	// this crawl only saw COMS
	fresh := []ClassRecord{
		rec("COMS", "COMS W3157", "Advanced Programming", 10072),
		rec("COMS", "COMS W4156", "Software Engineering", 10111),
	}

	merged := MergeTerm(fresh, prior)
	require.Len(t, merged, 3)

	departments := make(map[string]int)
	for _, r := range merged {
		departments[r.DepartmentCode]++
	}
	require.Equal(t, 2, departments["COMS"])
	require.Equal(t, 1, departments["PHYS"])
}

func TestMergeTermDepartmentReplacedAsUnit(t *testing.T) {
	prior := []ClassRecord{
		rec("COMS", "COMS W3157", "Advanced Programming", 10072),
		rec("COMS", "COMS W4156", "Software Engineering", 10111),
	}
	// the crawl saw COMS again, but only one section survived
	fresh := []ClassRecord{
		rec("COMS", "COMS W3157", "Advanced Programming", 10072),
	}

	merged := MergeTerm(fresh, prior)
	require.Len(t, merged, 1)
	require.Equal(t, 10072, merged[0].CallNumber)
}

func TestMergeTermSortAndNormalize(t *testing.T) {
	a := rec("COMS", "COMS W4156", "Software Engineering", 10111)
	a.OpenTo = []string{"GSAS", "CC", "GSAS", "SEAS"}
	a.Prerequisites = [][]string{
		{"COMS W3157", "COMS W3137"},
		{"COMS W3137", "COMS W3157"},
		{"COMS W3203"},
	}
	b := rec("COMS", "COMS W3157", "Advanced Programming", 10072)

	merged := MergeTerm([]ClassRecord{a, b}, nil)
	require.Equal(t, "COMS W3157", merged[0].CourseCode)

	require.Equal(t, []string{"CC", "GSAS", "SEAS"}, merged[1].OpenTo)
	require.Equal(t, [][]string{
		{"COMS W3137", "COMS W3157"},
		{"COMS W3203"},
	}, merged[1].Prerequisites)
}

func TestMergeTermIdempotent(t *testing.T) {
	prior := []ClassRecord{
		rec("PHYS", "PHYS C1401", "Mechanics", 20011),
	}
	fresh := []ClassRecord{
		rec("COMS", "COMS W3157", "Advanced Programming", 10072),
	}

	first := MergeTerm(fresh, prior)
	second := MergeTerm(fresh, first)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatal(diff)
	}
}
