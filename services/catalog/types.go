package catalog

import "fmt"

// EnrollmentObservation is one reading of a section's enrollment
// counters on a given day.
type EnrollmentObservation struct {
	Current int `json:"cur"`
	Max     int `json:"max"`
}

// EnrollmentSeries maps an ISO date ("2006-01-02") to the observation
// taken that day.
type EnrollmentSeries map[string]EnrollmentObservation

// ClassRecord is one section of one course in one term, as extracted
// from a class listing page. Records are immutable within a run and
// superseded each run by a freshly parsed instance with the same call
// number.
type ClassRecord struct {
	CallNumber int    `json:"call_number"`
	CourseCode string `json:"course_code"`
	ClassID    string `json:"class_id"`
	SectionKey string `json:"section_key"`

	CourseTitle        string `json:"course_title"`
	CourseDescr        string `json:"course_descr"`
	ScheduledDays      string `json:"scheduled_days"`
	ScheduledTimeStart string `json:"scheduled_time_start"`
	ScheduledTimeEnd   string `json:"scheduled_time_end"`
	Location           string `json:"location"`
	Points             string `json:"points"`
	Type               string `json:"type"`
	Campus             string `json:"campus"`
	Method             string `json:"method"`
	Link               string `json:"link"`

	Department     string `json:"department"`
	DepartmentCode string `json:"department_code"`

	// free-text instructor name, empty when the listing names nobody
	Instructor string `json:"instructor"`

	OpenTo []string `json:"open_to"`
	// conjunction of disjunction-groups of course codes
	Prerequisites [][]string `json:"prerequisites"`

	// enrichment columns, filled from instructor profiles when a run
	// closes, never live
	InstructorCulpaLink         string `json:"instructor_culpa_link,omitempty"`
	InstructorCulpaNugget       string `json:"instructor_culpa_nugget,omitempty"`
	InstructorCulpaReviewsCount int    `json:"instructor_culpa_reviews_count,omitempty"`
	InstructorWikipediaLink     string `json:"instructor_wikipedia_link,omitempty"`

	// scrape-time observation, persisted in the per-term enrollment
	// file rather than the class export
	Enrollment EnrollmentSeries `json:"-"`
}

// Validate checks the fields every downstream consumer keys on.
// Descriptive fields may legitimately be empty mid-semester.
func (r ClassRecord) Validate() error {
	if r.CallNumber <= 0 {
		return fmt.Errorf("class record %q: missing call number", r.ClassID)
	}
	if r.CourseCode == "" {
		return fmt.Errorf("class record call=%d: missing course code", r.CallNumber)
	}
	if r.DepartmentCode == "" {
		return fmt.Errorf("class record call=%d: missing department code", r.CallNumber)
	}
	return nil
}

// EnrollmentRow is one section's accumulated enrollment time series,
// keyed by call number.
type EnrollmentRow struct {
	CallNumber int              `json:"call_number"`
	CourseCode string           `json:"course_code"`
	Enrollment EnrollmentSeries `json:"enrollment"`
}
