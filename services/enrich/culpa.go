package enrich

import (
	"bytes"
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"cucatalog-backend/lib/namematch"
	"cucatalog-backend/lib/telemetry"
	"cucatalog-backend/services/instructors"
	"cucatalog-backend/services/instructors/checklog"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"
)

const (
	culpaSite           = "http://culpa.info"
	culpaCheckMinDays   = 3
	culpaCheckMaxDays   = 7
	culpaPubDateLayout  = "January 2, 2006"
	culpaPubDateEncoded = "2006-01-02"
)

// CulpaEnricher resolves instructors against the review site: search
// finds a profile link for instructors that have none, and linked
// profiles are periodically re-fetched for the nugget, review count
// and raw reviews.
type CulpaEnricher struct {
	client *resty.Client
}

func NewCulpaEnricher() CulpaEnricher {
	client := resty.New().SetBaseURL(culpaSite)
	telemetry.InstrumentResty(client, "cucatalog.services.enrich.culpa")
	return CulpaEnricher{client: client}
}

// Run performs both passes over the index. Attachment is by exact
// catalog name: the search step already resolved the name, so nothing
// fuzzy happens at attach time.
func (e CulpaEnricher) Run(ctx context.Context, idx *instructors.Index, log *checklog.Log) error {
	ctx, span := tracer.Start(ctx, "culpa.Run")
	defer span.End()

	for _, name := range idx.Names() {
		profile, _ := idx.Get(name)

		if profile.CulpaLink == "" {
			due, err := log.Due(ctx, name, checklog.FieldCulpaSearch, culpaCheckMinDays, culpaCheckMaxDays)
			if err != nil {
				return err
			}
			if !due {
				continue
			}
			err = log.Touch(ctx, name, checklog.FieldCulpaSearch)
			if err != nil {
				return err
			}

			link, ok, err := e.search(ctx, name)
			if err != nil {
				slog.WarnContext(ctx, "review site search failed, skipping instructor",
					"name", name, "err", err)
				continue
			}
			if !ok {
				continue
			}
			profile.CulpaLink = link
		} else {
			due, err := log.Due(ctx, name, checklog.FieldCulpaProfile, culpaCheckMinDays, culpaCheckMaxDays)
			if err != nil {
				return err
			}
			if !due {
				continue
			}
		}

		err := log.Touch(ctx, name, checklog.FieldCulpaProfile)
		if err != nil {
			return err
		}
		update, err := e.fetchProfile(ctx, profile.CulpaLink)
		if err != nil {
			slog.WarnContext(ctx, "review site profile fetch failed, skipping instructor",
				"name", name, "link", profile.CulpaLink, "err", err)
			continue
		}
		idx.EnrichExact(name, update)
	}
	return nil
}

// search queries the review site for the instructor's profile link.
// When the full name finds nothing and the name carries an initial,
// it retries once with initials dropped ("Ismail C Noyan" → "Ismail
// Noyan"); the attach name stays the catalog spelling either way.
func (e CulpaEnricher) search(ctx context.Context, name string) (string, bool, error) {
	link, ok, err := e.searchOnce(ctx, name, name)
	if err != nil || ok {
		return link, ok, err
	}

	words := strings.Fields(name)
	var kept []string
	for _, w := range words {
		if len(w) > 1 {
			kept = append(kept, w)
		}
	}
	if len(kept) == len(words) {
		return "", false, nil
	}
	return e.searchOnce(ctx, strings.Join(kept, " "), name)
}

func (e CulpaEnricher) searchOnce(ctx context.Context, query, catalogName string) (string, bool, error) {
	res, err := e.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"utf8":   "✓",
			"search": query,
			"commit": "Search",
		}).
		Get("/search")
	if err != nil {
		return "", false, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return "", false, err
	}
	href, ok := findSearchMatch(doc, catalogName)
	if !ok {
		return "", false, nil
	}
	return culpaSite + href, true, nil
}

// findSearchMatch picks the professors section out of the search
// results and keeps only rows whose name matches the catalog name.
func findSearchMatch(doc *goquery.Document, catalogName string) (string, bool) {
	var matched []string
	doc.Find(".search_results .box").Each(func(_ int, box *goquery.Selection) {
		section := strings.TrimSpace(box.Find("th").First().Text())
		if !strings.EqualFold(section, "professors") {
			return
		}
		box.Find("tr td:first-child a").Each(func(_ int, a *goquery.Selection) {
			found := strings.TrimSpace(a.Text())
			href, hasHref := a.Attr("href")
			if !hasHref || found == "" {
				return
			}
			if namematch.Matches(catalogName, found) {
				matched = append(matched, href)
			}
		})
	})

	if len(matched) == 0 {
		return "", false
	}
	if len(matched) > 1 {
		slog.Warn("more than one review site result matches instructor, taking first",
			"name", catalogName, "count", len(matched))
	}
	return matched[0], true
}

func (e CulpaEnricher) fetchProfile(ctx context.Context, link string) (instructors.Enrichment, error) {
	res, err := e.client.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		return instructors.Enrichment{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return instructors.Enrichment{}, err
	}

	nugget, reviews := ParseCulpaProfile(doc)
	return instructors.Enrichment{
		CulpaLink:         link,
		CulpaNugget:       nugget,
		CulpaReviewsCount: len(reviews),
		CulpaReviews:      reviews,
	}, nil
}

// ParseCulpaProfile extracts the nugget award and every review from a
// profile page.
func ParseCulpaProfile(doc *goquery.Document) (nugget string, reviews []instructors.Review) {
	doc.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := p.Text()
		if !strings.Contains(text, "This professor has earned") {
			return true
		}
		upper := strings.ToUpper(text)
		if strings.Contains(upper, "GOLD") {
			nugget = "gold"
		} else if strings.Contains(upper, "SILVER") {
			nugget = "silver"
		}
		return false
	})

	doc.Find("div.card div.card-body").Each(func(_ int, card *goquery.Selection) {
		reviews = append(reviews, parseReview(card))
	})
	return nugget, reviews
}

func parseReview(card *goquery.Selection) instructors.Review {
	var courses []instructors.ReviewCourse
	card.Find(`li a[href*="/course"]`).Each(func(_ int, a *goquery.Selection) {
		title := strings.TrimSpace(a.Text())
		if title != "" {
			// the profile page links course titles only, codes
			// are resolved against the catalog downstream
			courses = append(courses, instructors.ReviewCourse{Title: title})
		}
	})

	lines := textLines(card.Find(".review_content"))
	text := lines
	workload := ""
	for i, line := range lines {
		if line == "Workload:" {
			text = lines[:i]
			workload = strings.Join(lines[i+1:], "\n")
			break
		}
	}

	pubDate := ""
	raw := strings.TrimSpace(card.Find("p.date").First().Text())
	parsed, err := time.Parse(culpaPubDateLayout, raw)
	if err == nil {
		pubDate = parsed.Format(culpaPubDateEncoded)
	}

	return instructors.Review{
		Text:          strings.Join(text, "\n"),
		Workload:      workload,
		Courses:       courses,
		PublishDate:   pubDate,
		AgreeCount:    counterValue(card, "agree"),
		DisagreeCount: counterValue(card, "disagree"),
		FunnyCount:    counterValue(card, "funny"),
	}
}

// counterValue reads the numeric value of a vote counter input,
// tolerating junk like "12 votes".
func counterValue(card *goquery.Selection, name string) int {
	value := card.Find("input." + name).First().AttrOr("value", "")
	var digits strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	return n
}

// textLines collects every text node under the selection, trimmed,
// empties dropped, in document order.
func textLines(sel *goquery.Selection) []string {
	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			line := strings.TrimSpace(n.Data)
			if line != "" {
				lines = append(lines, line)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return lines
}
