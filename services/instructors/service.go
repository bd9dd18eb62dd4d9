package instructors

import (
	"fmt"
	"log/slog"
	"sort"

	"cucatalog-backend/lib/namematch"
	"cucatalog-backend/services/catalog"

	"dario.cat/mergo"
)

// Index owns every instructor profile for the dataset. Class records
// hold the instructor name as a denormalized back-reference only;
// enrichment fields flow one way, profile to class, when the run
// closes.
type Index struct {
	profiles map[string]*Profile
	closed   bool
}

func NewIndex() *Index {
	return &Index{profiles: map[string]*Profile{}}
}

// LoadIndex rebuilds an index from previously persisted profiles.
func LoadIndex(profiles []Profile) *Index {
	idx := NewIndex()
	for i := range profiles {
		p := profiles[i]
		idx.profiles[p.Name] = &p
	}
	return idx
}

// RecordClass registers the record's instructor as teaching this
// class. A record without an instructor name is accepted and simply
// not linked to any profile.
func (x *Index) RecordClass(term catalog.Term, rec catalog.ClassRecord) error {
	if x.closed {
		return fmt.Errorf("index already closed")
	}
	if rec.Instructor == "" {
		return nil
	}

	profile, ok := x.profiles[rec.Instructor]
	if !ok {
		profile = &Profile{Name: rec.Instructor}
		x.profiles[rec.Instructor] = profile
	}

	if !contains(profile.Departments, rec.DepartmentCode) {
		profile.Departments = append(profile.Departments, rec.DepartmentCode)
	}

	ref := ClassRef{Term: term.String(), CourseCode: rec.CourseCode}
	for _, existing := range profile.Classes {
		if existing == ref {
			return nil
		}
	}
	profile.Classes = append(profile.Classes, ref)
	return nil
}

// Get returns a copy of a profile by exact name.
func (x *Index) Get(name string) (Profile, bool) {
	p, ok := x.profiles[name]
	if !ok {
		return Profile{}, false
	}
	return *p, true
}

// Names returns every known instructor name, sorted.
func (x *Index) Names() []string {
	names := make([]string, 0, len(x.profiles))
	for name := range x.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EnrichExact attaches fields by exact display-name lookup. Used by
// the review-site pass, whose search step already resolved the name.
// An unresolvable fact is dropped with a warning, never guessed.
func (x *Index) EnrichExact(name string, update Enrichment) bool {
	profile, ok := x.profiles[name]
	if !ok {
		slog.Warn("enrichment fact does not match any instructor, dropping",
			"pass", "exact", "name", name)
		return false
	}
	x.apply(profile, update)
	return true
}

// EnrichWithDepartments attaches fields by exact name, additionally
// requiring a department overlap. This guards against two different
// people sharing a name in different departments; the name is already
// an exact catalog name at this stage, so the department set is the
// discriminator.
func (x *Index) EnrichWithDepartments(name string, departments []string, update Enrichment) bool {
	profile, ok := x.profiles[name]
	if !ok {
		slog.Warn("enrichment fact does not match any instructor, dropping",
			"pass", "department", "name", name)
		return false
	}
	if !overlaps(profile.Departments, departments) {
		slog.Warn("enrichment fact matches name but not departments, dropping",
			"pass", "department", "name", name,
			"profile_departments", profile.Departments,
			"fact_departments", departments)
		return false
	}
	x.apply(profile, update)
	return true
}

// EnrichFuzzy attaches fields to the profile whose name fuzzily
// matches the external spelling. More than one plausible profile is
// logged and the first match in sorted-name order is taken; this is
// an accepted approximation, there is no ground truth to do better.
func (x *Index) EnrichFuzzy(externalName string, update Enrichment) (string, bool) {
	var matched []string
	for _, name := range x.Names() {
		if namematch.Matches(name, externalName) {
			matched = append(matched, name)
		}
	}
	if len(matched) == 0 {
		slog.Warn("enrichment fact does not match any instructor, dropping",
			"pass", "fuzzy", "name", externalName)
		return "", false
	}
	if len(matched) > 1 {
		slog.Warn("enrichment fact matches more than one instructor, taking first",
			"pass", "fuzzy", "name", externalName, "candidates", matched)
	}
	x.apply(x.profiles[matched[0]], update)
	return matched[0], true
}

func (x *Index) apply(profile *Profile, update Enrichment) {
	overlay := Profile{
		CulpaLink:         update.CulpaLink,
		CulpaNugget:       update.CulpaNugget,
		CulpaReviewsCount: update.CulpaReviewsCount,
		CulpaReviews:      update.CulpaReviews,
		WikipediaLink:     update.WikipediaLink,
		Scholar:           update.Scholar,
	}
	// zero-valued overlay fields leave the profile untouched
	err := mergo.Merge(profile, overlay, mergo.WithOverride)
	if err != nil {
		slog.Error("failed to apply enrichment overlay",
			"name", profile.Name, "err", err)
	}
}

// Close finalizes the index. Enrichment fields accumulated on each
// profile are copied onto that instructor's class records in the
// given term buffers, then every profile is returned sorted by name.
// Close is the terminal call of a run.
func (x *Index) Close(buffers ...[]catalog.ClassRecord) []Profile {
	x.closed = true

	for _, records := range buffers {
		for i := range records {
			profile, ok := x.profiles[records[i].Instructor]
			if !ok {
				continue
			}
			records[i].InstructorCulpaLink = profile.CulpaLink
			records[i].InstructorCulpaNugget = profile.CulpaNugget
			records[i].InstructorCulpaReviewsCount = profile.CulpaReviewsCount
			records[i].InstructorWikipediaLink = profile.WikipediaLink
		}
	}

	out := make([]Profile, 0, len(x.profiles))
	for _, name := range x.Names() {
		p := *x.profiles[name]
		sort.Strings(p.Departments)
		sort.Slice(p.Classes, func(i, j int) bool {
			if p.Classes[i].Term != p.Classes[j].Term {
				return p.Classes[i].Term < p.Classes[j].Term
			}
			return p.Classes[i].CourseCode < p.Classes[j].CourseCode
		})
		out = append(out, p)
	}
	return out
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func overlaps(a, b []string) bool {
	for _, v := range a {
		if contains(b, v) {
			return true
		}
	}
	return false
}
