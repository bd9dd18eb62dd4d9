package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cucatalog-backend/lib/timezone"
)

// Term is one academic semester instance, e.g. 2021 Fall.
type Term struct {
	Year     int
	Semester string
}

const (
	SemesterSpring = "Spring"
	SemesterSummer = "Summer"
	SemesterFall   = "Fall"
)

func (t Term) String() string {
	return fmt.Sprintf("%d-%s", t.Year, t.Semester)
}

// ParseTerm parses the unified "2021-Fall" form.
func ParseTerm(s string) (Term, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return Term{}, fmt.Errorf("malformed term %q", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Term{}, fmt.Errorf("malformed term year %q", s)
	}
	semester, err := normalizeSemester(parts[1])
	if err != nil {
		return Term{}, err
	}
	return Term{Year: year, Semester: semester}, nil
}

var termURLRegex = regexp.MustCompile(`(?i)([a-z]+)(\d{4})`)

// ParseTermURL converts the term form used in catalog URLs
// ("Fall2019", "SPRING2020") to a Term.
func ParseTermURL(s string) (Term, error) {
	m := termURLRegex.FindStringSubmatch(s)
	if m == nil {
		return Term{}, fmt.Errorf("malformed term url fragment %q", s)
	}
	semester, err := normalizeSemester(m[1])
	if err != nil {
		return Term{}, err
	}
	year, err := strconv.Atoi(m[2])
	if err != nil {
		return Term{}, err
	}
	return Term{Year: year, Semester: semester}, nil
}

func normalizeSemester(s string) (string, error) {
	switch strings.ToLower(s) {
	case "spring":
		return SemesterSpring, nil
	case "summer":
		return SemesterSummer, nil
	case "fall":
		return SemesterFall, nil
	}
	return "", fmt.Errorf("unknown semester %q", s)
}

// End is the term's nominal end date. Enrollment observations after
// this date belong to a later term's activity and are pruned.
func (t Term) End() time.Time {
	switch t.Semester {
	case SemesterSpring:
		return time.Date(t.Year, time.May, 20, 0, 0, 0, 0, timezone.Location)
	case SemesterSummer:
		return time.Date(t.Year, time.August, 20, 0, 0, 0, 0, timezone.Location)
	default:
		return time.Date(t.Year, time.December, 26, 0, 0, 0, 0, timezone.Location)
	}
}
