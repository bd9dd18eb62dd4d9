package snapshots

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"cucatalog-backend/lib/contentdiff"
	"cucatalog-backend/lib/osutil"
	"cucatalog-backend/lib/telemetry"
	"cucatalog-backend/services/catalog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("cucatalog.services.snapshots")

// Store archives raw fetched documents, one timestamped file per
// capture, keyed by (term, department[, class]). The newest file for
// a key is the comparison baseline: a freshly fetched page is only
// written when it is materially different from that baseline, so
// daily re-fetches of static pages do not grow the archive.
type Store struct {
	dir string
	now func() time.Time
}

func NewStore(dir string) Store {
	return Store{dir: dir, now: time.Now}
}

// Key identifies one archived document stream.
type Key struct {
	Term           catalog.Term
	DepartmentCode string
	// empty for a department listing page
	ClassID string
}

func (k Key) dir(root string) string {
	if k.ClassID == "" {
		return filepath.Join(root, k.Term.String(), k.DepartmentCode)
	}
	return filepath.Join(root, k.Term.String(), k.DepartmentCode, k.ClassID)
}

func (k Key) describe() string {
	if k.ClassID == "" {
		return fmt.Sprintf("%s-%s", k.Term, k.DepartmentCode)
	}
	return fmt.Sprintf("%s-%s-%s", k.Term, k.DepartmentCode, k.ClassID)
}

const timestampLayout = "2006-01-02_15:04_UTC"

// Put archives content under key unless it matches the latest
// archived capture. Reports whether a new file was written.
func (s Store) Put(ctx context.Context, key Key, content string) (bool, error) {
	ctx, span := tracer.Start(ctx, "Put")
	defer span.End()
	span.SetAttributes(attribute.String("key", key.describe()))

	dir := key.dir(s.dir)

	last, err := s.latestFile(dir)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}
	if last != "" {
		previous, err := os.ReadFile(last)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return false, err
		}
		if !contentdiff.IsMateriallyDifferent(string(previous), content) {
			slog.InfoContext(ctx, "listing has the same content, skipping store",
				"key", key.describe())
			return false, nil
		}
	}

	name := s.now().UTC().Format(timestampLayout) + ".html"
	err = osutil.WriteFileAtomic(filepath.Join(dir, name), []byte(content))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}
	return true, nil
}

// Latest returns the newest archived capture for key, or "" when the
// key has never been stored.
func (s Store) Latest(key Key) (string, error) {
	last, err := s.latestFile(key.dir(s.dir))
	if err != nil || last == "" {
		return "", err
	}
	content, err := os.ReadFile(last)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// timestamps sort lexicographically, the alphabetically last file is
// the newest capture
func (s Store) latestFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return "", nil
	}
	sort.Strings(files)
	return filepath.Join(dir, files[len(files)-1]), nil
}
