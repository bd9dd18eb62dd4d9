package crawler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"cucatalog-backend/lib/htmlutil"
	"cucatalog-backend/lib/telemetry"
	"cucatalog-backend/lib/timezone"
	"cucatalog-backend/services/catalog"
	"cucatalog-backend/services/snapshots"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("cucatalog.services.crawler")

const defaultListURL = "http://www.columbia.edu/cu/bulletin/uwb/sel/departments.html"

const (
	departmentPathPrefix = "/cu/bulletin/uwb/sel/"
	classPathPrefix      = "/cu/bulletin/uwb/subj/"
)

// Crawler walks the bulletin: the department index page links one
// listing page per (department, term), and each listing links its
// class pages. Every fetched page is archived through the snapshot
// store before parsing.
type Crawler struct {
	client  *resty.Client
	snaps   snapshots.Store
	listURL string

	now func() time.Time
}

func New(snaps snapshots.Store, listURL string) *Crawler {
	if listURL == "" {
		listURL = defaultListURL
	}
	client := resty.New()
	telemetry.InstrumentResty(client, "cucatalog.services.crawler")
	return &Crawler{
		client:  client,
		snaps:   snaps,
		listURL: listURL,
		now:     timezone.Now,
	}
}

// Result is one term's worth of freshly crawled records.
type Result struct {
	Term    catalog.Term
	Records []catalog.ClassRecord
}

// Crawl fetches the full catalog and returns parsed records grouped
// by term, terms sorted by their string form. A department page that
// fails to fetch or parse is logged and skipped, the rest of the
// crawl continues.
func (c *Crawler) Crawl(ctx context.Context) ([]Result, error) {
	ctx, span := tracer.Start(ctx, "Crawl")
	defer span.End()

	body, err := c.fetch(ctx, c.listURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("department index: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("department index: %w", err)
	}

	byTerm := map[string]*Result{}
	for _, anchor := range htmlutil.GetAnchors(doc.Find("a")) {
		if !strings.HasPrefix(anchor.Href, departmentPathPrefix) {
			continue
		}
		link, err := c.absolute(anchor.Href)
		if err != nil {
			slog.WarnContext(ctx, "bad department link, skipping", "href", anchor.Href, "err", err)
			continue
		}

		term, records, err := c.crawlDepartment(ctx, link)
		if err != nil {
			slog.WarnContext(ctx, "failed to crawl department, skipping",
				"link", link, "err", err)
			continue
		}

		result, ok := byTerm[term.String()]
		if !ok {
			result = &Result{Term: term}
			byTerm[term.String()] = result
		}
		result.Records = append(result.Records, records...)
	}

	keys := make([]string, 0, len(byTerm))
	for key := range byTerm {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]Result, 0, len(keys))
	for _, key := range keys {
		out = append(out, *byTerm[key])
	}
	return out, nil
}

func (c *Crawler) crawlDepartment(ctx context.Context, link string) (catalog.Term, []catalog.ClassRecord, error) {
	ctx, span := tracer.Start(ctx, "crawlDepartment")
	defer span.End()

	departmentCode, term, err := ParseDepartmentURL(link)
	if err != nil {
		return catalog.Term{}, nil, err
	}

	body, err := c.fetch(ctx, link)
	if err != nil {
		return catalog.Term{}, nil, err
	}

	_, err = c.snaps.Put(ctx, snapshots.Key{
		Term:           term,
		DepartmentCode: departmentCode,
	}, string(body))
	if err != nil {
		return catalog.Term{}, nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		return catalog.Term{}, nil, err
	}

	var records []catalog.ClassRecord
	for _, anchor := range htmlutil.GetAnchors(doc.Find("a")) {
		if !strings.HasPrefix(anchor.Href, classPathPrefix) {
			continue
		}
		classLink, err := c.absolute(anchor.Href)
		if err != nil {
			slog.WarnContext(ctx, "bad class link, skipping", "href", anchor.Href, "err", err)
			continue
		}

		rec, err := c.crawlClass(ctx, classLink, departmentCode, term)
		if err != nil {
			slog.WarnContext(ctx, "failed to crawl class, skipping",
				"link", classLink, "err", err)
			continue
		}
		records = append(records, rec)
	}
	return term, records, nil
}

func (c *Crawler) crawlClass(ctx context.Context, link, departmentCode string, term catalog.Term) (catalog.ClassRecord, error) {
	classID := ClassIDFromURL(link)

	body, err := c.fetch(ctx, link)
	if err != nil {
		return catalog.ClassRecord{}, err
	}

	_, err = c.snaps.Put(ctx, snapshots.Key{
		Term:           term,
		DepartmentCode: departmentCode,
		ClassID:        classID,
	}, string(body))
	if err != nil {
		return catalog.ClassRecord{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		return catalog.ClassRecord{}, err
	}

	parsed, err := ParseClassPage(doc, departmentCode, classID, link)
	if err != nil {
		return catalog.ClassRecord{}, err
	}

	rec := parsed.Record
	rec.Enrollment = catalog.EnrollmentSeries{
		c.now().Format("2006-01-02"): parsed.Observed,
	}
	return rec, nil
}

func (c *Crawler) fetch(ctx context.Context, link string) ([]byte, error) {
	res, err := c.client.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		return nil, err
	}
	if res.StatusCode() != 200 {
		return nil, fmt.Errorf("GET %s: status %d", link, res.StatusCode())
	}
	return res.Body(), nil
}

func (c *Crawler) absolute(href string) (string, error) {
	base, err := url.Parse(c.listURL)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}
