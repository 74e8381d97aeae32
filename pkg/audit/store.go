// CLAUDE:SUMMARY SQLite audit trail of resolution outcomes per run, queryable for unresolved names and stage counts.
package audit

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/wdtsmap/pkg/resolve"
)

// Run is a row from the runs table.
type Run struct {
	ID         string
	Label      string
	StartedAt  int64
	FinishedAt *int64
	Total      int
}

// Miss is an unresolved input, grouped by name and year.
type Miss struct {
	Input     string
	Attempted string
	Year      int
	Count     int
}

// Store manages the runs and resolutions SQLite tables.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the audit database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}

	const ddl = `
	CREATE TABLE IF NOT EXISTS runs (
		id           TEXT PRIMARY KEY,
		label        TEXT NOT NULL DEFAULT '',
		started_at   INTEGER NOT NULL,
		finished_at  INTEGER
	);
	CREATE TABLE IF NOT EXISTS resolutions (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id      TEXT NOT NULL REFERENCES runs(id),
		input       TEXT NOT NULL,
		attempted   TEXT NOT NULL,
		year        INTEGER NOT NULL,
		stage       TEXT NOT NULL,
		rule        TEXT,
		name        TEXT,
		created_at  INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS resolutions_run ON resolutions(run_id, stage);`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create audit tables: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginRun starts a run and returns its id.
func (s *Store) BeginRun(label string) (string, error) {
	id := uuid.NewString()
	if _, err := s.db.Exec(`INSERT INTO runs (id, label, started_at) VALUES (?, ?, ?)`, id, label, time.Now().Unix()); err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	return id, nil
}

// FinishRun stamps the run's end time.
func (s *Store) FinishRun(runID string) error {
	res, err := s.db.Exec(`UPDATE runs SET finished_at = ? WHERE id = ?`, time.Now().Unix(), runID)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// Record persists one outcome.
func (s *Store) Record(runID string, out resolve.Outcome) error {
	var rule, name *string
	if out.Rule != nil {
		rule = &out.Rule.Trigger
	}
	if out.Institution != nil {
		name = &out.Institution.Name
	}
	_, err := s.db.Exec(`INSERT INTO resolutions
		(run_id, input, attempted, year, stage, rule, name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, out.Input, out.Attempted, out.Year, string(out.Stage), rule, name, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("record %q: %w", out.Input, err)
	}
	return nil
}

// Observer returns a resolver hook recording every outcome under runID.
// Write failures are logged, not propagated.
func (s *Store) Observer(runID string) resolve.Observer {
	return func(out resolve.Outcome) {
		if err := s.Record(runID, out); err != nil {
			s.logger.Error("audit record failed", "run", runID, "error", err)
		}
	}
}

// NotFound lists the run's unresolved inputs, most frequent first.
func (s *Store) NotFound(runID string) ([]Miss, error) {
	rows, err := s.db.Query(`SELECT input, attempted, year, COUNT(*) AS n
		FROM resolutions WHERE run_id = ? AND stage = ?
		GROUP BY input, attempted, year
		ORDER BY n DESC, input, year`, runID, string(resolve.StageNotFound))
	if err != nil {
		return nil, fmt.Errorf("not found for %s: %w", runID, err)
	}
	defer rows.Close()

	var misses []Miss
	for rows.Next() {
		var m Miss
		if err := rows.Scan(&m.Input, &m.Attempted, &m.Year, &m.Count); err != nil {
			return nil, fmt.Errorf("scan miss: %w", err)
		}
		misses = append(misses, m)
	}
	return misses, rows.Err()
}

// Summary counts the run's outcomes by cascade stage.
func (s *Store) Summary(runID string) (map[resolve.Stage]int, error) {
	rows, err := s.db.Query(`SELECT stage, COUNT(*) FROM resolutions WHERE run_id = ? GROUP BY stage`, runID)
	if err != nil {
		return nil, fmt.Errorf("summary for %s: %w", runID, err)
	}
	defer rows.Close()

	counts := make(map[resolve.Stage]int)
	for rows.Next() {
		var stage string
		var n int
		if err := rows.Scan(&stage, &n); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		counts[resolve.Stage(stage)] = n
	}
	return counts, rows.Err()
}

// Runs returns every run, newest first.
func (s *Store) Runs() ([]Run, error) {
	rows, err := s.db.Query(`SELECT r.id, r.label, r.started_at, r.finished_at, COUNT(x.id)
		FROM runs r LEFT JOIN resolutions x ON x.run_id = r.id
		GROUP BY r.id ORDER BY r.started_at DESC, r.rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Label, &r.StartedAt, &r.FinishedAt, &r.Total); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
