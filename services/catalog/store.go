package catalog

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"cucatalog-backend/lib/osutil"
)

// Store persists per-term class listings under a data directory.
// Every term is exported twice from the same sorted, normalized
// records: a json-lines encoding that keeps nested fields, and a flat
// csv for tools that cannot read nested structures. Enrollment series
// change daily and live in their own file per term, excluded from the
// class export.
type Store struct {
	dir string
}

func NewStore(dir string) Store {
	return Store{dir: dir}
}

func (s Store) termBase(term Term) string {
	return filepath.Join(s.dir, "classes", term.String())
}

// ListTerms returns every term with a persisted class file, sorted by
// the term's string form.
func (s Store) ListTerms() ([]Term, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, "classes"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var terms []Term
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".enrollment.json") {
			continue
		}
		term, err := ParseTerm(strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		return terms[i].String() < terms[j].String()
	})
	return terms, nil
}

// LoadTerm reads the persisted records for a term. A term that was
// never persisted is empty prior state, not an error.
func (s Store) LoadTerm(term Term) ([]ClassRecord, error) {
	f, err := os.Open(s.termBase(term) + ".json")
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []ClassRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec ClassRecord
		err := json.Unmarshal(line, &rec)
		if err != nil {
			return nil, fmt.Errorf("term file %s: %w", term, err)
		}
		out = append(out, rec)
	}
	return out, scanner.Err()
}

// LoadEnrollment reads the persisted enrollment rows for a term.
func (s Store) LoadEnrollment(term Term) ([]EnrollmentRow, error) {
	f, err := os.Open(s.termBase(term) + ".enrollment.json")
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []EnrollmentRow
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var row EnrollmentRow
		err := json.Unmarshal(line, &row)
		if err != nil {
			return nil, fmt.Errorf("enrollment file %s: %w", term, err)
		}
		out = append(out, row)
	}
	return out, scanner.Err()
}

// WriteTerm persists both encodings of a term's records. Writes are
// temp-file-and-rename so an aborted run cannot leave a partial file.
func (s Store) WriteTerm(term Term, records []ClassRecord) error {
	var jsonOut bytes.Buffer
	for _, rec := range records {
		line, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		jsonOut.Write(line)
		jsonOut.WriteByte('\n')
	}
	err := osutil.WriteFileAtomic(s.termBase(term)+".json", jsonOut.Bytes())
	if err != nil {
		return err
	}

	csvOut, err := encodeTermCsv(records)
	if err != nil {
		return err
	}
	return osutil.WriteFileAtomic(s.termBase(term)+".csv", csvOut)
}

// WriteEnrollment persists a term's enrollment rows.
func (s Store) WriteEnrollment(term Term, rows []EnrollmentRow) error {
	var out bytes.Buffer
	for _, row := range rows {
		line, err := json.Marshal(row)
		if err != nil {
			return err
		}
		out.Write(line)
		out.WriteByte('\n')
	}
	return osutil.WriteFileAtomic(s.termBase(term)+".enrollment.json", out.Bytes())
}

var csvColumns = []string{
	"course_code",
	"course_title",
	"call_number",
	"class_id",
	"section_key",
	"course_descr",
	"scheduled_days",
	"scheduled_time_start",
	"scheduled_time_end",
	"location",
	"points",
	"type",
	"campus",
	"method",
	"link",
	"department",
	"department_code",
	"instructor",
	"open_to",
	"prerequisites",
	"instructor_culpa_link",
	"instructor_culpa_nugget",
	"instructor_culpa_reviews_count",
	"instructor_wikipedia_link",
}

func encodeTermCsv(records []ClassRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	err := w.Write(csvColumns)
	if err != nil {
		return nil, err
	}

	for _, r := range records {
		groups := make([]string, len(r.Prerequisites))
		for i, g := range r.Prerequisites {
			groups[i] = strings.Join(g, " ")
		}

		err := w.Write([]string{
			r.CourseCode,
			r.CourseTitle,
			strconv.Itoa(r.CallNumber),
			r.ClassID,
			r.SectionKey,
			r.CourseDescr,
			r.ScheduledDays,
			r.ScheduledTimeStart,
			r.ScheduledTimeEnd,
			r.Location,
			r.Points,
			r.Type,
			r.Campus,
			r.Method,
			r.Link,
			r.Department,
			r.DepartmentCode,
			r.Instructor,
			strings.Join(r.OpenTo, "\n"),
			strings.Join(groups, "\n"),
			r.InstructorCulpaLink,
			r.InstructorCulpaNugget,
			strconv.Itoa(r.InstructorCulpaReviewsCount),
			r.InstructorWikipediaLink,
		})
		if err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
