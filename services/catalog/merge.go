package catalog

import (
	"sort"
	"strings"
)

// MergeTerm combines a term's freshly scraped records with the
// previously persisted ones. Departments present in the prior file
// but absent from this crawl are preserved wholesale: a department
// vanishing from the source site must not erase its historical
// listings. Preservation is all-or-nothing per department, there is
// no partial-department merging.
//
// The output is fully normalized and sorted so that merging the same
// input twice yields byte-identical files.
func MergeTerm(newRecords, prior []ClassRecord) []ClassRecord {
	crawledDepartments := make(map[string]bool)
	for _, rec := range newRecords {
		crawledDepartments[rec.DepartmentCode] = true
	}

	merged := make([]ClassRecord, 0, len(newRecords)+len(prior))
	merged = append(merged, newRecords...)
	for _, rec := range prior {
		if !crawledDepartments[rec.DepartmentCode] {
			merged = append(merged, rec)
		}
	}

	for i := range merged {
		merged[i].OpenTo = normalizeList(merged[i].OpenTo)
		merged[i].Prerequisites = normalizeGroups(merged[i].Prerequisites)
	}

	sort.Slice(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.CourseCode != b.CourseCode {
			return a.CourseCode < b.CourseCode
		}
		if a.CourseTitle != b.CourseTitle {
			return a.CourseTitle < b.CourseTitle
		}
		return a.CallNumber < b.CallNumber
	})
	return merged
}

func normalizeList(values []string) []string {
	if values == nil {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func normalizeGroups(groups [][]string) [][]string {
	if groups == nil {
		return nil
	}
	out := make([][]string, 0, len(groups))
	seen := make(map[string]bool, len(groups))
	for _, g := range groups {
		norm := normalizeList(g)
		if len(norm) == 0 {
			continue
		}
		key := strings.Join(norm, " ")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, norm)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Join(out[i], " ") < strings.Join(out[j], " ")
	})
	return out
}
