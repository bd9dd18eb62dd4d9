package enrich

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cucatalog-backend/lib/namematch"
	"cucatalog-backend/services/instructors"
	"cucatalog-backend/services/instructors/checklog"

	"go.opentelemetry.io/otel/codes"
)

const (
	scholarCheckMinDays = 30
	scholarCheckMaxDays = 90
)

// Author is one search result from the citation index.
type Author struct {
	Name         string         `json:"name"`
	Affiliation  string         `json:"affiliation"`
	EmailDomain  string         `json:"email_domain"`
	ScholarID    string         `json:"scholar_id"`
	Interests    []string       `json:"interests,omitempty"`
	CitedBy      int            `json:"citedby,omitempty"`
	CitedBy5y    int            `json:"citedby5y,omitempty"`
	HIndex       int            `json:"hindex,omitempty"`
	HIndex5y     int            `json:"hindex5y,omitempty"`
	I10Index     int            `json:"i10index,omitempty"`
	I10Index5y   int            `json:"i10index5y,omitempty"`
	CitesPerYear map[string]int `json:"cites_per_year,omitempty"`
}

// AuthorSource abstracts the citation-index client. SearchAuthors
// returns candidate summaries; FillAuthor loads the index and count
// sections for an accepted candidate.
type AuthorSource interface {
	SearchAuthors(ctx context.Context, name string) ([]Author, error)
	FillAuthor(ctx context.Context, scholarID string) (Author, error)
}

// ScholarEnricher resolves instructors against the citation index.
// A candidate is accepted only on the affiliation heuristic; a
// candidate that merely matches by name is queued for manual review,
// never auto-merged.
type ScholarEnricher struct {
	source     AuthorSource
	unsurePath string
}

func NewScholarEnricher(source AuthorSource, dataDir string) ScholarEnricher {
	return ScholarEnricher{
		source:     source,
		unsurePath: filepath.Join(dataDir, "unsure.json"),
	}
}

// affiliationMatch is the acceptance heuristic. The affiliation
// string must name the institution ("British Columbia" is the
// notorious false positive), or the listed email domain must belong
// to the university or its affiliate college.
func affiliationMatch(a Author) bool {
	aff := strings.ToLower(a.Affiliation)
	if strings.Contains(aff, "columbia") && !strings.Contains(aff, "british") {
		return true
	}
	domain := strings.ToLower(a.EmailDomain)
	return strings.Contains(domain, "columbia") || strings.Contains(domain, "barnard")
}

// Run searches or refreshes every instructor due for a check.
func (e ScholarEnricher) Run(ctx context.Context, idx *instructors.Index, log *checklog.Log) error {
	ctx, span := tracer.Start(ctx, "scholar.Run")
	defer span.End()

	for _, name := range idx.Names() {
		due, err := log.Due(ctx, name, checklog.FieldScholarSearch, scholarCheckMinDays, scholarCheckMaxDays)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		if !due {
			continue
		}

		profile, _ := idx.Get(name)
		if profile.Scholar != nil {
			err = e.refresh(ctx, idx, log, name, profile.Scholar.ScholarID)
		} else {
			err = e.searchOne(ctx, idx, log, name)
		}
		if err != nil {
			slog.WarnContext(ctx, "citation index pass failed, skipping instructor",
				"name", name, "err", err)
		}

		err = log.Touch(ctx, name, checklog.FieldScholarSearch)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}
	return nil
}

func (e ScholarEnricher) refresh(ctx context.Context, idx *instructors.Index, log *checklog.Log, name, scholarID string) error {
	due, err := log.Due(ctx, name, checklog.FieldScholarUpdate, scholarCheckMinDays, scholarCheckMaxDays)
	if err != nil {
		return err
	}
	if !due {
		return nil
	}

	full, err := e.source.FillAuthor(ctx, scholarID)
	if err != nil {
		return err
	}
	e.attach(ctx, idx, name, full)
	return log.Touch(ctx, name, checklog.FieldScholarUpdate)
}

func (e ScholarEnricher) searchOne(ctx context.Context, idx *instructors.Index, log *checklog.Log, name string) error {
	authors, err := e.source.SearchAuthors(ctx, name)
	if err != nil {
		return err
	}

	for _, author := range authors {
		if affiliationMatch(author) {
			full, err := e.source.FillAuthor(ctx, author.ScholarID)
			if err != nil {
				return err
			}
			e.attach(ctx, idx, name, full)
			return log.Touch(ctx, name, checklog.FieldScholarUpdate)
		}
		if namematch.Matches(name, author.Name) {
			slog.InfoContext(ctx, "possible citation index match, queueing for review",
				"name", name, "scholar_id", author.ScholarID)
			err := e.queueUnsure(name, author)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// attach resolves the author back to a catalog profile by name. The
// author's listed spelling can differ from the catalog's, so this is
// the fuzzy pass.
func (e ScholarEnricher) attach(ctx context.Context, idx *instructors.Index, searchedName string, author Author) {
	fields := &instructors.ScholarFields{
		ScholarID:    author.ScholarID,
		Interests:    author.Interests,
		CitedBy:      author.CitedBy,
		CitedBy5y:    author.CitedBy5y,
		HIndex:       author.HIndex,
		HIndex5y:     author.HIndex5y,
		I10Index:     author.I10Index,
		I10Index5y:   author.I10Index5y,
		CitesPerYear: author.CitesPerYear,
	}

	matched, ok := idx.EnrichFuzzy(author.Name, instructors.Enrichment{Scholar: fields})
	if ok && matched != searchedName {
		slog.WarnContext(ctx, "citation index author resolved to a different instructor than searched",
			"searched", searchedName, "resolved", matched, "author", author.Name)
	}
}

// queueUnsure appends the candidate to the manual review queue, one
// JSON object per line.
func (e ScholarEnricher) queueUnsure(name string, author Author) error {
	err := os.MkdirAll(filepath.Dir(e.unsurePath), 0o755)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(e.unsurePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	line, err := json.Marshal(map[string]any{
		"instructor": name,
		"result":     author,
	})
	if err != nil {
		return err
	}
	_, err = f.Write(append(line, '\n'))
	return err
}
