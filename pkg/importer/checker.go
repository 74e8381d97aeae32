package importer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/hazyhaar/wdtsmap/pkg/schools"
)

// CheckResult is what one availability check found for a reference year.
type CheckResult struct {
	AdapterID string
	Year      int
	// HTTP status of the HEAD request, 0 on network error.
	Status int
	Err    string
	// Zero when the server sent no Last-Modified header.
	LastModified time.Time
	// Name of the backing file in schools_dir, empty when there is none.
	LocalFile string
	// The archive changed after the local file was imported.
	Stale bool
}

// Checker compares each reference year's remote archive with the backing
// file in schools_dir and records the outcome in a SourceDB.
type Checker struct {
	sources     *SourceDB
	schoolsDir  string
	currentYear int
	logger      *slog.Logger
	interval    time.Duration
	client      *http.Client
}

// NewChecker creates a Checker for the backing files of schoolsDir, located
// the way schools.Load locates them under opts.
func NewChecker(sources *SourceDB, schoolsDir string, opts schools.LoadOptions, interval time.Duration) *Checker {
	current := opts.CurrentYear
	if current == 0 {
		current = schools.DefaultCurrentYear
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		sources:     sources,
		schoolsDir:  schoolsDir,
		currentYear: current,
		logger:      logger,
		interval:    interval,
		client: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Start checks immediately, then every interval until ctx is cancelled.
func (c *Checker) Start(ctx context.Context) {
	c.CheckAll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.CheckAll(ctx)
		}
	}
}

// CheckAll checks every source, persists each result and returns them in
// year order.
func (c *Checker) CheckAll(ctx context.Context) []CheckResult {
	sources, err := c.sources.ListSources()
	if err != nil {
		c.logger.Error("source check: list sources", "error", err)
		return nil
	}

	results := make([]CheckResult, 0, len(sources))
	var unreachable, missing, stale int
	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}
		r := c.checkYear(ctx, src)
		if err := c.sources.RecordCheck(r); err != nil {
			c.logger.Error("source check: record result", "source", r.AdapterID, "error", err)
		}
		results = append(results, r)

		switch {
		case r.LocalFile == "":
			missing++
			c.logger.Warn("no backing file for reference year", "year", r.Year,
				"want", schools.BaseName(r.Year, c.currentYear)+".{gob,csv}", "dir", c.schoolsDir)
		case r.Stale:
			stale++
			c.logger.Warn("reference year older than its source", "year", r.Year,
				"file", r.LocalFile, "last_modified", r.LastModified.Format(time.RFC3339))
		}
		if !reachable(r.Status) {
			unreachable++
			c.logger.Warn("source unreachable", "source", r.AdapterID, "url", src.SourceURL,
				"status", r.Status, "error", r.Err)
		}
	}

	if len(results) > 0 {
		c.logger.Info("source check complete", "years", len(results),
			"unreachable", unreachable, "missing", missing, "stale", stale)
	}
	return results
}

func (c *Checker) checkYear(ctx context.Context, src Source) CheckResult {
	r := CheckResult{AdapterID: src.AdapterID, Year: src.Year}

	var localTime time.Time
	r.LocalFile, localTime = c.localFile(src.Year)
	// The import time beats the file mtime: copying a file refreshes neither
	// its content nor the archive it came from.
	if src.ImportedAt != nil {
		localTime = time.Unix(*src.ImportedAt, 0)
	}

	var err error
	r.Status, r.LastModified, err = c.head(ctx, src.SourceURL)
	if err != nil {
		r.Err = err.Error()
	}
	r.Stale = r.LocalFile != "" && !r.LastModified.IsZero() && r.LastModified.After(localTime)
	return r
}

// localFile returns the backing file schools.Load would read for year, gob
// first, with its modification time.
func (c *Checker) localFile(year int) (string, time.Time) {
	base := schools.BaseName(year, c.currentYear)
	for _, ext := range []string{".gob", ".csv"} {
		if fi, err := os.Stat(filepath.Join(c.schoolsDir, base+ext)); err == nil && !fi.IsDir() {
			return base + ext, fi.ModTime()
		}
	}
	return "", time.Time{}
}

// head issues a HEAD request and returns the status code and the parsed
// Last-Modified header.
func (c *Checker) head(ctx context.Context, url string) (int, time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("HEAD %s: %w", url, err)
	}
	resp.Body.Close()

	var modified time.Time
	if v := resp.Header.Get("Last-Modified"); v != "" {
		if t, err := http.ParseTime(v); err == nil {
			modified = t
		}
	}
	if !reachable(resp.StatusCode) {
		return resp.StatusCode, modified, fmt.Errorf("HEAD %s: %s", url, resp.Status)
	}
	return resp.StatusCode, modified, nil
}
