package catalog

import (
	"sort"
	"time"

	"cucatalog-backend/lib/timezone"
)

const dateLayout = "2006-01-02"

// MergeSeries folds a run's fresh observations into a previously
// persisted series. On a date collision the fresh value wins, every
// other historical entry is retained. Observations dated strictly
// after the term's nominal end are pruned, except that pruning never
// empties a series: the earliest-known observation is kept as a floor
// so a section always retains at least one reading (a late add may
// have all its readings post-term). A nil result means the section
// has no observations at all and its row should not be persisted.
func MergeSeries(existing, incoming EnrollmentSeries, term Term) EnrollmentSeries {
	union := make(EnrollmentSeries, len(existing)+len(incoming))
	for date, obs := range existing {
		union[date] = obs
	}
	for date, obs := range incoming {
		union[date] = obs
	}
	if len(union) == 0 {
		return nil
	}

	end := term.End()
	pruned := make(EnrollmentSeries, len(union))
	for date, obs := range union {
		if afterTermEnd(date, end) {
			continue
		}
		pruned[date] = obs
	}

	if len(pruned) == 0 {
		earliest := earliestDate(union)
		pruned[earliest] = union[earliest]
	}
	return pruned
}

func afterTermEnd(date string, end time.Time) bool {
	t, err := time.ParseInLocation(dateLayout, date, timezone.Location)
	if err != nil {
		// unparseable dates never made it past scraping, keep them
		// rather than silently losing data
		return false
	}
	return t.After(end)
}

func earliestDate(series EnrollmentSeries) string {
	var earliest string
	for date := range series {
		if earliest == "" || date < earliest {
			earliest = date
		}
	}
	return earliest
}

// MergeEnrollment produces the term's enrollment file rows from this
// run's records and the previously persisted rows. Sections absent
// from the new crawl keep their history.
func MergeEnrollment(term Term, records []ClassRecord, prior []EnrollmentRow) []EnrollmentRow {
	priorByCall := make(map[int]EnrollmentRow, len(prior))
	for _, row := range prior {
		priorByCall[row.CallNumber] = row
	}

	seen := make(map[int]bool)
	var out []EnrollmentRow
	add := func(call int, courseCode string, incoming EnrollmentSeries) {
		if seen[call] {
			return
		}
		seen[call] = true
		merged := MergeSeries(priorByCall[call].Enrollment, incoming, term)
		if len(merged) == 0 {
			return
		}
		out = append(out, EnrollmentRow{
			CallNumber: call,
			CourseCode: courseCode,
			Enrollment: merged,
		})
	}

	for _, rec := range records {
		add(rec.CallNumber, rec.CourseCode, rec.Enrollment)
	}
	for _, row := range prior {
		add(row.CallNumber, row.CourseCode, nil)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CourseCode != out[j].CourseCode {
			return out[i].CourseCode < out[j].CourseCode
		}
		return out[i].CallNumber < out[j].CallNumber
	})
	return out
}
