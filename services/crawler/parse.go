package crawler

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"cucatalog-backend/services/catalog"

	"github.com/PuerkitoBio/goquery"
)

// ParseDepartmentURL extracts the department code and term from a
// listing link, e.g. ".../sel/COMS_Fall2021.html" -> ("COMS",
// 2021-Fall).
func ParseDepartmentURL(link string) (string, catalog.Term, error) {
	parsed, err := url.Parse(link)
	if err != nil {
		return "", catalog.Term{}, err
	}

	segments := strings.Split(parsed.Path, "/")
	filename := segments[len(segments)-1]
	filename = strings.TrimSuffix(filename, ".html")

	parts := strings.SplitN(filename, "_", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", catalog.Term{}, fmt.Errorf("department filename %q: want CODE_TERM", filename)
	}

	term, err := catalog.ParseTermURL(parts[1])
	if err != nil {
		return "", catalog.Term{}, err
	}
	return parts[0], term, nil
}

// ClassIDFromURL extracts the class id segment from a class page
// link, e.g. ".../subj/COMS/W4156-20213-001/" -> "W4156-20213-001".
func ClassIDFromURL(link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	return segments[len(segments)-1]
}

// ParsedClass is one class page's extracted fields plus today's
// enrollment observation, which lives in its own ledger rather than
// on the record.
type ParsedClass struct {
	Record   catalog.ClassRecord
	Observed catalog.EnrollmentObservation
}

var (
	enrollmentRegex = regexp.MustCompile(`(\d+) students? \((\d+) max`)
	scheduleRegex   = regexp.MustCompile(`^([MTWRFSU]{1,7}) (\d{1,2}:\d{2}[ap]m)-(\d{1,2}:\d{2}[ap]m)(?: (.*))?$`)
)

// ParseClassPage reads the label/value table of a class page. Labels
// the page does not carry stay zero-valued; only the call number is
// required.
func ParseClassPage(doc *goquery.Document, departmentCode, classID, link string) (ParsedClass, error) {
	fields := map[string]string{}
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		label := strings.TrimSpace(cells.First().Text())
		value := strings.TrimSpace(cells.Eq(1).Text())
		if label != "" && value != "" {
			fields[label] = value
		}
	})

	rec := catalog.ClassRecord{
		ClassID:        classID,
		CourseCode:     courseCodeFor(departmentCode, classID),
		CourseTitle:    doc.Find("td.title, b.title").First().Text(),
		CourseDescr:    fields["Course Description"],
		SectionKey:     fields["Section key"],
		Points:         fields["Points"],
		Type:           fields["Type"],
		Campus:         fields["Campus"],
		Method:         fields["Method of Instruction"],
		Department:     fields["Department"],
		DepartmentCode: departmentCode,
		Instructor:     fields["Instructor"],
		Link:           link,
	}
	rec.CourseTitle = strings.TrimSpace(rec.CourseTitle)

	callNumber, err := strconv.Atoi(fields["Call Number"])
	if err != nil {
		return ParsedClass{}, fmt.Errorf("class %s: call number %q", classID, fields["Call Number"])
	}
	rec.CallNumber = callNumber

	if schedule, ok := fields["Day & Time Location"]; ok {
		m := scheduleRegex.FindStringSubmatch(schedule)
		if m != nil {
			rec.ScheduledDays = m[1]
			rec.ScheduledTimeStart = m[2]
			rec.ScheduledTimeEnd = m[3]
			rec.Location = m[4]
		} else {
			rec.Location = schedule
		}
	}

	if openTo, ok := fields["Open To"]; ok {
		for _, group := range strings.Split(openTo, ",") {
			group = strings.TrimSpace(group)
			if group != "" {
				rec.OpenTo = append(rec.OpenTo, group)
			}
		}
	}

	if prereqs, ok := fields["Prerequisites"]; ok {
		rec.Prerequisites = parsePrerequisites(prereqs)
	}

	var observed catalog.EnrollmentObservation
	if enrollment, ok := fields["Enrollment"]; ok {
		m := enrollmentRegex.FindStringSubmatch(enrollment)
		if m != nil {
			observed.Current, _ = strconv.Atoi(m[1])
			observed.Max, _ = strconv.Atoi(m[2])
		}
	}

	return ParsedClass{Record: rec, Observed: observed}, nil
}

func courseCodeFor(departmentCode, classID string) string {
	course, _, _ := strings.Cut(classID, "-")
	if course == "" {
		return ""
	}
	return departmentCode + " " + course
}

// parsePrerequisites splits a requirement sentence into conjunction
// groups of alternatives: "A or B and C" -> [[A B] [C]].
func parsePrerequisites(text string) [][]string {
	var groups [][]string
	for _, group := range strings.Split(text, " and ") {
		var alternatives []string
		for _, alt := range strings.Split(group, " or ") {
			alt = strings.TrimSpace(strings.Trim(strings.TrimSpace(alt), "."))
			if alt != "" {
				alternatives = append(alternatives, alt)
			}
		}
		if len(alternatives) > 0 {
			groups = append(groups, alternatives)
		}
	}
	return groups
}
