package importer

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Source is the bookkeeping row of one reference year: where its archive is
// downloaded from, what the last import produced and what the last
// availability check found.
type Source struct {
	AdapterID   string
	Year        int
	Description string
	SourceURL   string
	License     string
	UpdatedAt   int64

	// Nil until the year has been imported.
	ImportedAt   *int64
	ImportedRows *int

	// Nil until the first check.
	LastCheck  *int64
	LastStatus *int
	LastError  *string
	// Last-Modified of the archive, unix seconds.
	RemoteModified *int64
	// Backing file found in schools_dir, nil when there was none.
	LocalFile *string
	Stale     bool
}

// Source states reported by State.
const (
	StateUnchecked   = "unchecked"
	StateMissing     = "missing"
	StateUnreachable = "unreachable"
	StateStale       = "stale"
	StateOK          = "ok"
)

// State summarizes the last check. A missing backing file wins over an
// unreachable archive since it is what breaks resolution for the year.
func (s Source) State() string {
	switch {
	case s.LastCheck == nil:
		return StateUnchecked
	case s.LocalFile == nil:
		return StateMissing
	case s.LastStatus == nil || !reachable(*s.LastStatus):
		return StateUnreachable
	case s.Stale:
		return StateStale
	default:
		return StateOK
	}
}

func reachable(status int) bool { return status >= 200 && status < 400 }

// SourceDB stores one Source per registered adapter in SQLite.
type SourceDB struct {
	db *sql.DB
}

const sourcesSchema = `CREATE TABLE IF NOT EXISTS reference_sources (
	adapter_id      TEXT PRIMARY KEY,
	year            INTEGER NOT NULL,
	description     TEXT NOT NULL,
	source_url      TEXT NOT NULL,
	license         TEXT NOT NULL DEFAULT '',
	updated_at      INTEGER NOT NULL,
	imported_at     INTEGER,
	imported_rows   INTEGER,
	last_check      INTEGER,
	last_status     INTEGER,
	last_error      TEXT,
	remote_modified INTEGER,
	local_file      TEXT,
	stale           INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_reference_sources_year ON reference_sources(year);`

// OpenSourceDB opens or creates the sources database at path.
func OpenSourceDB(path string) (*SourceDB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sources db: %w", err)
	}
	if _, err := db.Exec(sourcesSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create reference_sources: %w", err)
	}
	return &SourceDB{db: db}, nil
}

func (s *SourceDB) Close() error {
	return s.db.Close()
}

// Seed adds a row for every adapter not yet known. Known rows keep their URL
// so that "sources set-url" overrides survive restarts.
func (s *SourceDB) Seed(adapters []Adapter) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("seed sources: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, a := range adapters {
		_, err := tx.Exec(`INSERT INTO reference_sources
			(adapter_id, year, description, source_url, license, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(adapter_id) DO NOTHING`,
			a.ID(), a.Year(), a.Description(), a.DefaultURL(), a.License(), now)
		if err != nil {
			return fmt.Errorf("seed %s: %w", a.ID(), err)
		}
	}
	return tx.Commit()
}

// GetURL returns the download URL of the adapter's archive.
func (s *SourceDB) GetURL(adapterID string) (string, error) {
	var url string
	err := s.db.QueryRow(`SELECT source_url FROM reference_sources WHERE adapter_id = ?`, adapterID).Scan(&url)
	if err != nil {
		return "", fmt.Errorf("source url of %s: %w", adapterID, err)
	}
	return url, nil
}

// SetURL points the adapter at a new archive URL. The previous import and
// check results no longer describe that archive and are cleared.
func (s *SourceDB) SetURL(adapterID, url string) error {
	return s.update(adapterID, "set url",
		`UPDATE reference_sources SET source_url = ?, updated_at = ?,
			last_check = NULL, last_status = NULL, last_error = NULL,
			remote_modified = NULL, stale = 0
		WHERE adapter_id = ?`,
		url, time.Now().Unix(), adapterID)
}

// RecordImport stores the row count of a successful import done at t.
func (s *SourceDB) RecordImport(adapterID string, rows int, t time.Time) error {
	return s.update(adapterID, "record import",
		`UPDATE reference_sources SET imported_at = ?, imported_rows = ?, stale = 0 WHERE adapter_id = ?`,
		t.Unix(), rows, adapterID)
}

// RecordCheck stores the outcome of an availability check.
func (s *SourceDB) RecordCheck(r CheckResult) error {
	var errMsg, local *string
	if r.Err != "" {
		errMsg = &r.Err
	}
	if r.LocalFile != "" {
		local = &r.LocalFile
	}
	var modified *int64
	if !r.LastModified.IsZero() {
		m := r.LastModified.Unix()
		modified = &m
	}
	return s.update(r.AdapterID, "record check",
		`UPDATE reference_sources SET last_check = ?, last_status = ?, last_error = ?,
			remote_modified = ?, local_file = ?, stale = ?
		WHERE adapter_id = ?`,
		time.Now().Unix(), r.Status, errMsg, modified, local, r.Stale, r.AdapterID)
}

func (s *SourceDB) update(adapterID, op, query string, args ...any) error {
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("%s for %s: %w", op, adapterID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: unknown source %q", op, adapterID)
	}
	return nil
}

// ListSources returns every source, oldest reference year first.
func (s *SourceDB) ListSources() ([]Source, error) {
	rows, err := s.db.Query(`SELECT adapter_id, year, description, source_url, license, updated_at,
		imported_at, imported_rows, last_check, last_status, last_error,
		remote_modified, local_file, stale
		FROM reference_sources ORDER BY year, adapter_id`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var out []Source
	for rows.Next() {
		var src Source
		if err := rows.Scan(&src.AdapterID, &src.Year, &src.Description, &src.SourceURL,
			&src.License, &src.UpdatedAt, &src.ImportedAt, &src.ImportedRows,
			&src.LastCheck, &src.LastStatus, &src.LastError,
			&src.RemoteModified, &src.LocalFile, &src.Stale); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		out = append(out, src)
	}
	return out, rows.Err()
}
