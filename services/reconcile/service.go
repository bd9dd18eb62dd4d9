package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"cucatalog-backend/lib/telemetry"
	"cucatalog-backend/services/catalog"
	"cucatalog-backend/services/instructors"

	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("cucatalog.services.reconcile")

// Run is one reconciliation cycle over the dataset. Records stream in
// through Record, enrichment passes work against Index, and Close
// merges everything against the persisted state and writes the new
// artifacts. A Run is the single writer of the dataset; it is not
// safe for concurrent use and is discarded after Close.
type Run struct {
	catalogStore    catalog.Store
	instructorStore instructors.Store

	index   *instructors.Index
	byTerm  map[string][]catalog.ClassRecord
	terms   map[string]catalog.Term
	dropped int
}

// NewRun loads the persisted instructor directory so enrichment
// accumulated in earlier cycles survives this one.
func NewRun(catalogStore catalog.Store, instructorStore instructors.Store) (*Run, error) {
	profiles, err := instructorStore.Load()
	if err != nil {
		return nil, fmt.Errorf("load instructor directory: %w", err)
	}
	return &Run{
		catalogStore:    catalogStore,
		instructorStore: instructorStore,
		index:           instructors.LoadIndex(profiles),
		byTerm:          map[string][]catalog.ClassRecord{},
		terms:           map[string]catalog.Term{},
	}, nil
}

// Index exposes the instructor index for enrichment passes running
// between the crawl and Close.
func (r *Run) Index() *instructors.Index {
	return r.index
}

// Record streams one freshly crawled class into the run. Records
// failing structural validation are dropped with a warning rather
// than poisoning the batch.
func (r *Run) Record(ctx context.Context, term catalog.Term, rec catalog.ClassRecord) error {
	err := rec.Validate()
	if err != nil {
		slog.WarnContext(ctx, "dropping invalid class record",
			"term", term.String(), "class_id", rec.ClassID, "err", err)
		r.dropped++
		return nil
	}

	err = r.index.RecordClass(term, rec)
	if err != nil {
		return err
	}

	key := term.String()
	r.terms[key] = term
	r.byTerm[key] = append(r.byTerm[key], rec)
	return nil
}

// Close merges every touched term against its persisted state and
// writes term files, enrollment files and the instructor directory.
// All merging happens before the first write, so a failure partway
// through merging leaves the persisted dataset untouched.
func (r *Run) Close(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Close")
	defer span.End()

	fail := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	keys := make([]string, 0, len(r.byTerm))
	for key := range r.byTerm {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	// enrichment columns propagate onto the buffered records before
	// they are merged into term files
	buffers := make([][]catalog.ClassRecord, 0, len(keys))
	for _, key := range keys {
		buffers = append(buffers, r.byTerm[key])
	}
	profiles := r.index.Close(buffers...)

	type termOutput struct {
		term       catalog.Term
		records    []catalog.ClassRecord
		enrollment []catalog.EnrollmentRow
	}
	outputs := make([]termOutput, 0, len(keys))

	for _, key := range keys {
		term := r.terms[key]

		prior, err := r.catalogStore.LoadTerm(term)
		if err != nil {
			return fail(fmt.Errorf("load term %s: %w", key, err))
		}
		priorEnrollment, err := r.catalogStore.LoadEnrollment(term)
		if err != nil {
			return fail(fmt.Errorf("load enrollment %s: %w", key, err))
		}

		outputs = append(outputs, termOutput{
			term:       term,
			records:    catalog.MergeTerm(r.byTerm[key], prior),
			enrollment: catalog.MergeEnrollment(term, r.byTerm[key], priorEnrollment),
		})
	}

	for _, out := range outputs {
		err := r.catalogStore.WriteTerm(out.term, out.records)
		if err != nil {
			return fail(fmt.Errorf("write term %s: %w", out.term, err))
		}
		err = r.catalogStore.WriteEnrollment(out.term, out.enrollment)
		if err != nil {
			return fail(fmt.Errorf("write enrollment %s: %w", out.term, err))
		}
		slog.InfoContext(ctx, "wrote term",
			"term", out.term.String(),
			"classes", len(out.records),
			"enrollment_rows", len(out.enrollment))
	}

	err := r.instructorStore.Write(profiles)
	if err != nil {
		return fail(fmt.Errorf("write instructor directory: %w", err))
	}

	slog.InfoContext(ctx, "reconciliation run complete",
		"terms", len(outputs),
		"instructors", len(profiles),
		"dropped_records", r.dropped)
	return nil
}
