package checklog

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"cucatalog-backend/lib/timezone"

	"github.com/mazen160/go-random"

	_ "embed"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

// Open opens (or creates) the check log database at path and applies
// the schema. A fresh dataset has no internal directory yet, so the
// parent directory is created as well.
func Open(path string) (*sql.DB, error) {
	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(Schema)
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Known check fields, one per enrichment pass action.
const (
	FieldCulpaSearch     = "last_culpa_search"
	FieldCulpaProfile    = "last_culpa_profile"
	FieldWikipediaSearch = "last_wikipedia_search"
	FieldScholarSearch   = "gscholar_last_search"
	FieldScholarUpdate   = "gscholar_last_update"
)

// Log records when each instructor was last visited by each
// enrichment pass, so passes do not hammer external sources
// re-checking the same person every run.
type Log struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Log {
	return &Log{db: db, now: timezone.Now}
}

// Touch marks the instructor as checked now.
func (l *Log) Touch(ctx context.Context, name, field string) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO instructor_check (name, field, last_checked)
		VALUES (?, ?, ?)
		ON CONFLICT (name, field) DO UPDATE SET last_checked = excluded.last_checked
	`, name, field, l.now().Unix())
	return err
}

// Due reports whether the instructor is due for a re-check. The
// re-check interval is randomized between minDays and maxDays so a
// backlog of instructors checked on the same day does not come due
// as a thundering herd. A name never checked is always due.
func (l *Log) Due(ctx context.Context, name, field string, minDays, maxDays int) (bool, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT last_checked FROM instructor_check
		WHERE name = ? AND field = ?
	`, name, field)

	var lastChecked int64
	err := row.Scan(&lastChecked)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, err
	}

	days, err := random.IntRange(minDays, maxDays+1)
	if err != nil {
		return false, err
	}
	threshold := l.now().AddDate(0, 0, -days)
	return time.Unix(lastChecked, 0).Before(threshold), nil
}
