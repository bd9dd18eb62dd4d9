package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"cucatalog-backend/lib/htmlutil"
	"cucatalog-backend/lib/telemetry"
	"cucatalog-backend/services/instructors"
	"cucatalog-backend/services/instructors/checklog"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

const (
	wikiSearchMinDays = 15
	wikiSearchMaxDays = 45
)

// WikiEnricher searches the encyclopedia for instructor articles and
// attaches accepted links to profiles. Candidates go through the
// two-stage relevance gate before anything is attached.
type WikiEnricher struct {
	client     *resty.Client
	searchClf  SearchClassifier
	articleClf ArticleClassifier

	// swapped out in tests
	fetchExtract func(ctx context.Context, title string) (string, error)
}

func NewWikiEnricher(searchClf SearchClassifier, articleClf ArticleClassifier) *WikiEnricher {
	client := resty.New().SetBaseURL("https://en.wikipedia.org")
	telemetry.InstrumentResty(client, "cucatalog.services.enrich.wiki")

	e := &WikiEnricher{
		client:     client,
		searchClf:  searchClf,
		articleClf: articleClf,
	}
	e.fetchExtract = e.fetchExtractRemote
	return e
}

type wikiSearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

type wikiSearchResponse struct {
	Query struct {
		Search []wikiSearchResult `json:"search"`
	} `json:"query"`
}

type wikiExtractResponse struct {
	Query struct {
		Pages map[string]struct {
			Title   string `json:"title"`
			Extract string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
}

// Run searches every instructor that has no encyclopedia link yet and
// is due for a re-check. Accepted articles are attached under the
// department-overlap guard.
func (e *WikiEnricher) Run(ctx context.Context, idx *instructors.Index, log *checklog.Log) error {
	ctx, span := tracer.Start(ctx, "wiki.Run")
	defer span.End()

	for _, name := range idx.Names() {
		profile, _ := idx.Get(name)
		if profile.WikipediaLink != "" {
			continue
		}
		due, err := log.Due(ctx, name, checklog.FieldWikipediaSearch, wikiSearchMinDays, wikiSearchMaxDays)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		if !due {
			continue
		}
		err = log.Touch(ctx, name, checklog.FieldWikipediaSearch)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}

		// snapshot the departments the search is issued under; the
		// attach below compares this snapshot against the profile's
		// state at attach time, so the overlap guard can reject a
		// profile reshaped in between
		departments := append([]string(nil), profile.Departments...)

		results, err := e.search(ctx, name)
		if err != nil {
			slog.WarnContext(ctx, "encyclopedia search failed, skipping instructor",
				"name", name, "err", err)
			continue
		}

		title, ok, err := e.pick(ctx, name, departments, results)
		if err != nil {
			slog.WarnContext(ctx, "candidate selection failed, skipping instructor",
				"name", name, "err", err)
			continue
		}
		if !ok {
			continue
		}

		if !attachArticle(idx, name, departments, title) {
			slog.WarnContext(ctx, "article rejected, profile departments changed since search",
				"name", name, "title", title)
		}
	}
	return nil
}

// attachArticle attaches an accepted article under the department
// overlap guard. departments must be the set captured when the search
// was issued, not the profile's current set.
func attachArticle(idx *instructors.Index, name string, departments []string, title string) bool {
	link := "https://en.wikipedia.org/wiki/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	return idx.EnrichWithDepartments(name, departments, instructors.Enrichment{
		WikipediaLink: link,
	})
}

func (e *WikiEnricher) search(ctx context.Context, name string) ([]wikiSearchResult, error) {
	res, err := e.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"action":   "query",
			"list":     "search",
			"utf8":     "",
			"format":   "json",
			"srsearch": "Columbia University intitle:" + name,
		}).
		Get("/w/api.php")
	if err != nil {
		return nil, err
	}

	var parsed wikiSearchResponse
	err = json.Unmarshal(res.Body(), &parsed)
	if err != nil {
		return nil, fmt.Errorf("search response: %w", err)
	}
	return parsed.Query.Search, nil
}

// pick walks candidates in search-rank order. RELEVANT accepts
// immediately; POSSIBLY_RELEVANT fetches the full article and asks
// the second-stage classifier; IRRELEVANT moves on.
func (e *WikiEnricher) pick(ctx context.Context, name string, departments []string, results []wikiSearchResult) (string, bool, error) {
	deptContext := strings.Join(departments, "; ")

	for _, result := range results {
		scores, err := e.searchClf.Predict(SearchSample{
			Name:        name,
			Departments: deptContext,
			Title:       result.Title,
			Snippet:     htmlutil.StripTags(result.Snippet),
		})
		if err != nil {
			return "", false, err
		}

		switch SearchPolicy(scores) {
		case LabelRelevant:
			return result.Title, true, nil

		case LabelPossiblyRelevant:
			text, err := e.fetchExtract(ctx, result.Title)
			if err != nil {
				return "", false, err
			}
			label, err := e.articleClf.Predict(ArticleSample{
				Name:  name,
				Title: result.Title,
				Text:  text,
			})
			if err != nil {
				return "", false, err
			}
			if label == LabelRelevant {
				return result.Title, true, nil
			}
		}
	}
	return "", false, nil
}

func (e *WikiEnricher) fetchExtractRemote(ctx context.Context, title string) (string, error) {
	res, err := e.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"action":      "query",
			"format":      "json",
			"prop":        "extracts",
			"exlimit":     "max",
			"explaintext": "",
			"redirects":   "",
			"titles":      title,
		}).
		Get("/w/api.php")
	if err != nil {
		return "", err
	}

	var parsed wikiExtractResponse
	err = json.Unmarshal(res.Body(), &parsed)
	if err != nil {
		return "", fmt.Errorf("extract response: %w", err)
	}
	for _, page := range parsed.Query.Pages {
		return page.Extract, nil
	}
	return "", fmt.Errorf("no pages in extract response for %q", title)
}
