package instructors

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cucatalog-backend/lib/osutil"
)

// Store persists the instructor directory: one record per instructor
// name, sorted by name, exported in both encodings. Raw review
// payloads and the citation block are only carried by the structured
// encoding.
type Store struct {
	dir string
}

func NewStore(dir string) Store {
	return Store{dir: dir}
}

func (s Store) base() string {
	return filepath.Join(s.dir, "instructors", "instructors")
}

// Load reads the persisted directory. A missing file is first-run
// empty state.
func (s Store) Load() ([]Profile, error) {
	f, err := os.Open(s.base() + ".json")
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []Profile
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var p Profile
		err := json.Unmarshal(line, &p)
		if err != nil {
			return nil, fmt.Errorf("instructors file: %w", err)
		}
		out = append(out, p)
	}
	return out, scanner.Err()
}

// Write persists profiles in both encodings atomically. Profiles are
// expected sorted by name (Index.Close guarantees it).
func (s Store) Write(profiles []Profile) error {
	var jsonOut bytes.Buffer
	for _, p := range profiles {
		line, err := json.Marshal(p)
		if err != nil {
			return err
		}
		jsonOut.Write(line)
		jsonOut.WriteByte('\n')
	}
	err := osutil.WriteFileAtomic(s.base()+".json", jsonOut.Bytes())
	if err != nil {
		return err
	}

	csvOut, err := encodeCsv(profiles)
	if err != nil {
		return err
	}
	return osutil.WriteFileAtomic(s.base()+".csv", csvOut)
}

var csvColumns = []string{
	"name",
	"departments",
	"classes",
	"culpa_link",
	"culpa_nugget",
	"culpa_reviews_count",
	"wikipedia_link",
}

func encodeCsv(profiles []Profile) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	err := w.Write(csvColumns)
	if err != nil {
		return nil, err
	}

	for _, p := range profiles {
		classes := make([]string, len(p.Classes))
		for i, c := range p.Classes {
			classes[i] = c.Term + " " + c.CourseCode
		}

		err := w.Write([]string{
			p.Name,
			strings.Join(p.Departments, "\n"),
			strings.Join(classes, "\n"),
			p.CulpaLink,
			p.CulpaNugget,
			strconv.Itoa(p.CulpaReviewsCount),
			p.WikipediaLink,
		})
		if err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
