package catalog

import (
	"fmt"
	"regexp"
)

// Post-run sanity checks over an exported term. These guard against a
// source markup change silently degrading the extraction, they do not
// prove the extraction correct.

var (
	courseCodeRegex = regexp.MustCompile(`^[\w_]{4} (\w{1,3}\d{2,4}|\dX+)\w?_?$`)
	classIDRegex    = regexp.MustCompile(`^[\w\d]{5}-\d{5}-[\w\d]{3}$`)
	timeRegex       = regexp.MustCompile(`^\d{1,2}:\d{2}(am|pm)$`)
	daysRegex       = regexp.MustCompile(`^[MTWRFSU]{1,7}$`)
	pointsRegex     = regexp.MustCompile(`^\d{1,2}(\.\d)?(-\d{1,2}(\.\d)?)?$`)
)

// Verify returns a description of every record field that does not
// look like catalog data.
func Verify(records []ClassRecord) []string {
	var issues []string
	report := func(r ClassRecord, format string, args ...any) {
		prefix := fmt.Sprintf("call=%d course=%q: ", r.CallNumber, r.CourseCode)
		issues = append(issues, prefix+fmt.Sprintf(format, args...))
	}

	for _, r := range records {
		if err := r.Validate(); err != nil {
			issues = append(issues, err.Error())
			continue
		}
		if !courseCodeRegex.MatchString(r.CourseCode) {
			report(r, "unexpected course code shape")
		}
		if r.CourseTitle == "" {
			report(r, "empty course title")
		}
		if r.ClassID != "" && !classIDRegex.MatchString(r.ClassID) {
			report(r, "unexpected class id %q", r.ClassID)
		}
		if r.ScheduledDays != "" && !daysRegex.MatchString(r.ScheduledDays) {
			report(r, "unexpected scheduled days %q", r.ScheduledDays)
		}
		if r.ScheduledTimeStart != "" && !timeRegex.MatchString(r.ScheduledTimeStart) {
			report(r, "unexpected start time %q", r.ScheduledTimeStart)
		}
		if r.ScheduledTimeEnd != "" && !timeRegex.MatchString(r.ScheduledTimeEnd) {
			report(r, "unexpected end time %q", r.ScheduledTimeEnd)
		}
		if r.Points != "" && !pointsRegex.MatchString(r.Points) {
			report(r, "unexpected points %q", r.Points)
		}
		switch r.InstructorCulpaNugget {
		case "", "gold", "silver":
		default:
			report(r, "unexpected nugget %q", r.InstructorCulpaNugget)
		}
	}
	return issues
}
