package reconcile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"cucatalog-backend/lib/testutil"
	"cucatalog-backend/services/catalog"
	"cucatalog-backend/services/instructors"

	"github.com/stretchr/testify/require"
)

var fall2021 = catalog.Term{Year: 2021, Semester: catalog.SemesterFall}

func kaiserClass(date string, cur, max int) catalog.ClassRecord {
	return catalog.ClassRecord{
		CallNumber:     10072,
		CourseCode:     "COMS W4156",
		ClassID:        "W4156-20213-001",
		CourseTitle:    "Advanced Software Engineering",
		DepartmentCode: "COMS",
		Department:     "Computer Science",
		Instructor:     "Gail E Kaiser",
		Enrollment: catalog.EnrollmentSeries{
			date: {Current: cur, Max: max},
		},
	}
}

func TestTwoRunScenario(t *testing.T) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{Name: "services/reconcile"})
	defer cleanup()
	ctx := context.Background()

	catalogStore := catalog.NewStore(res.DataDir)
	instructorStore := instructors.NewStore(res.DataDir)

	// run 1
	run, err := NewRun(catalogStore, instructorStore)
	require.NoError(t, err)
	require.NoError(t, run.Record(ctx, fall2021, kaiserClass("2021-05-20", 5, 20)))
	run.Index().EnrichExact("Gail E Kaiser", instructors.Enrichment{
		CulpaLink: "http://culpa.info/professors/777",
	})
	require.NoError(t, run.Close(ctx))

	// run 2, same term, new enrollment observation, no instructor change
	run, err = NewRun(catalogStore, instructorStore)
	require.NoError(t, err)
	require.NoError(t, run.Record(ctx, fall2021, kaiserClass("2021-05-22", 7, 20)))
	require.NoError(t, run.Close(ctx))

	records, err := catalogStore.LoadTerm(fall2021)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, 10072, records[0].CallNumber)
	// review-site link from run 1 survived onto run 2's output
	require.Equal(t, "http://culpa.info/professors/777", records[0].InstructorCulpaLink)

	rows, err := catalogStore.LoadEnrollment(fall2021)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, catalog.EnrollmentSeries{
		"2021-05-20": {Current: 5, Max: 20},
		"2021-05-22": {Current: 7, Max: 20},
	}, rows[0].Enrollment)

	profiles, err := instructorStore.Load()
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	require.Equal(t, "Gail E Kaiser", profiles[0].Name)
	require.Equal(t, []instructors.ClassRef{
		{Term: "2021-Fall", CourseCode: "COMS W4156"},
	}, profiles[0].Classes)
}

func TestInvalidRecordDroppedWithoutFailingRun(t *testing.T) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{Name: "services/reconcile"})
	defer cleanup()
	ctx := context.Background()

	catalogStore := catalog.NewStore(res.DataDir)
	instructorStore := instructors.NewStore(res.DataDir)

	run, err := NewRun(catalogStore, instructorStore)
	require.NoError(t, err)

	require.NoError(t, run.Record(ctx, fall2021, catalog.ClassRecord{
		// no call number, no course code
		DepartmentCode: "COMS",
	}))
	require.NoError(t, run.Record(ctx, fall2021, kaiserClass("2021-05-20", 5, 20)))
	require.NoError(t, run.Close(ctx))

	records, err := catalogStore.LoadTerm(fall2021)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestDepartmentPreservationAcrossRuns(t *testing.T) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{Name: "services/reconcile"})
	defer cleanup()
	ctx := context.Background()

	catalogStore := catalog.NewStore(res.DataDir)
	instructorStore := instructors.NewStore(res.DataDir)

	run, err := NewRun(catalogStore, instructorStore)
	require.NoError(t, err)
	require.NoError(t, run.Record(ctx, fall2021, kaiserClass("2021-05-20", 5, 20)))
	require.NoError(t, run.Record(ctx, fall2021, catalog.ClassRecord{
		CallNumber:     11000,
		CourseCode:     "PHYS UN1201",
		ClassID:        "UN1201-20213-001",
		DepartmentCode: "PHYS",
	}))
	require.NoError(t, run.Close(ctx))

	// second crawl only reaches COMS
	run, err = NewRun(catalogStore, instructorStore)
	require.NoError(t, err)
	require.NoError(t, run.Record(ctx, fall2021, kaiserClass("2021-05-22", 7, 20)))
	require.NoError(t, run.Close(ctx))

	records, err := catalogStore.LoadTerm(fall2021)
	require.NoError(t, err)

	var departments []string
	for _, rec := range records {
		departments = append(departments, rec.DepartmentCode)
	}
	require.ElementsMatch(t, []string{"COMS", "PHYS"}, departments)
}

func TestRunWithoutRecordsWritesNoTermFiles(t *testing.T) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{Name: "services/reconcile"})
	defer cleanup()
	ctx := context.Background()

	catalogStore := catalog.NewStore(res.DataDir)
	instructorStore := instructors.NewStore(res.DataDir)

	run, err := NewRun(catalogStore, instructorStore)
	require.NoError(t, err)
	require.NoError(t, run.Close(ctx))

	_, err = os.Stat(filepath.Join(res.DataDir, "classes"))
	require.True(t, os.IsNotExist(err))
}
