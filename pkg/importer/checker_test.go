package importer

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hazyhaar/wdtsmap/pkg/schools"
)

var archiveModified = time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)

// archiveServer answers HEAD requests the way NCES does: /ok with a
// Last-Modified header, the other paths with their status.
func archiveServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Last-Modified", archiveModified.Format(http.TimeFormat))
	})
	mux.HandleFunc("/undated", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "https://example.org/new.zip", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

// touchBackingFile creates year's backing file with ext in dir, modified at mtime.
func touchBackingFile(t *testing.T, dir string, year int, ext string, mtime time.Time) {
	t.Helper()
	path := filepath.Join(dir, schools.BaseName(year, schools.DefaultCurrentYear)+ext)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

func quietOptions() schools.LoadOptions {
	return schools.LoadOptions{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func resultsByYear(results []CheckResult) map[int]CheckResult {
	m := make(map[int]CheckResult, len(results))
	for _, r := range results {
		m[r.Year] = r
	}
	return m
}

func TestCheckAll_Status(t *testing.T) {
	ts := archiveServer(t)
	sdb := seededDB(t,
		yearAdapter{2015, ts.URL + "/ok"},
		yearAdapter{2016, ts.URL + "/moved"},
		yearAdapter{2017, ts.URL + "/broken"},
		yearAdapter{2018, ts.URL + "/nowhere"},
		yearAdapter{2019, "http://127.0.0.1:1/edge.zip"},
	)

	got := resultsByYear(NewChecker(sdb, t.TempDir(), quietOptions(), time.Hour).CheckAll(context.Background()))

	want := map[int]int{2015: 200, 2016: 301, 2017: 500, 2018: 404, 2019: 0}
	for year, status := range want {
		r := got[year]
		if r.Status != status {
			t.Errorf("%d: status = %d, want %d", year, r.Status, status)
		}
		if ok := reachable(status); ok == (r.Err != "") {
			t.Errorf("%d: err = %q with status %d", year, r.Err, r.Status)
		}
	}

	src := sourceByID(t, sdb, "test-2017")
	if src.LastStatus == nil || *src.LastStatus != 500 || src.LastError == nil {
		t.Errorf("check not persisted: %+v", src)
	}
}

func TestCheckAll_LocalFiles(t *testing.T) {
	ts := archiveServer(t)
	dir := t.TempDir()
	now := time.Now()
	touchBackingFile(t, dir, 2017, ".csv", now)
	touchBackingFile(t, dir, 2018, ".csv", now)
	touchBackingFile(t, dir, 2018, ".gob", now)
	touchBackingFile(t, dir, 2021, ".gob", now)
	// A directory with the backing file's name is not a table.
	if err := os.Mkdir(filepath.Join(dir, schools.BaseName(2019, schools.DefaultCurrentYear)+".csv"), 0o755); err != nil {
		t.Fatal(err)
	}

	sdb := seededDB(t,
		yearAdapter{2016, ts.URL + "/ok"},
		yearAdapter{2017, ts.URL + "/ok"},
		yearAdapter{2018, ts.URL + "/ok"},
		yearAdapter{2019, ts.URL + "/ok"},
		yearAdapter{2021, ts.URL + "/ok"},
	)
	got := resultsByYear(NewChecker(sdb, dir, quietOptions(), time.Hour).CheckAll(context.Background()))

	want := map[int]string{
		2016: "",
		2017: "Postsecondary_School_Locations_2017-18.csv",
		2018: "Postsecondary_School_Locations_2018-19.gob",
		2019: "",
		2021: "EDGE_GEOCODE_POSTSECONDARYSCH_CURRENT.gob",
	}
	for year, file := range want {
		if got[year].LocalFile != file {
			t.Errorf("%d: local file = %q, want %q", year, got[year].LocalFile, file)
		}
	}

	if s := sourceByID(t, sdb, "test-2016").State(); s != StateMissing {
		t.Errorf("2016 state = %s, want %s", s, StateMissing)
	}
	if s := sourceByID(t, sdb, "test-2018").State(); s != StateOK {
		t.Errorf("2018 state = %s, want %s", s, StateOK)
	}
}

func TestCheckAll_CurrentYearOption(t *testing.T) {
	ts := archiveServer(t)
	dir := t.TempDir()
	touchBackingFile(t, dir, 2021, ".gob", time.Now())

	sdb := seededDB(t, yearAdapter{2021, ts.URL + "/ok"})
	opts := quietOptions()
	opts.CurrentYear = 2022
	results := NewChecker(sdb, dir, opts, time.Hour).CheckAll(context.Background())

	// With 2022 as the current year, 2021 has a year-encoded file name.
	if len(results) != 1 || results[0].LocalFile != "" {
		t.Errorf("results = %+v, want 2021 missing", results)
	}
}

func TestCheckAll_Stale(t *testing.T) {
	ts := archiveServer(t)
	dir := t.TempDir()
	before := archiveModified.Add(-30 * 24 * time.Hour)
	after := archiveModified.Add(24 * time.Hour)
	touchBackingFile(t, dir, 2016, ".gob", before)
	touchBackingFile(t, dir, 2017, ".gob", after)
	touchBackingFile(t, dir, 2018, ".gob", before)
	touchBackingFile(t, dir, 2019, ".gob", before)

	sdb := seededDB(t,
		yearAdapter{2016, ts.URL + "/ok"},
		yearAdapter{2017, ts.URL + "/ok"},
		yearAdapter{2018, ts.URL + "/ok"},
		yearAdapter{2019, ts.URL + "/undated"},
	)
	// 2018's file is old on disk but was imported after the archive changed.
	if err := sdb.RecordImport("test-2018", 100, after); err != nil {
		t.Fatal(err)
	}

	got := resultsByYear(NewChecker(sdb, dir, quietOptions(), time.Hour).CheckAll(context.Background()))

	want := map[int]bool{2016: true, 2017: false, 2018: false, 2019: false}
	for year, stale := range want {
		if got[year].Stale != stale {
			t.Errorf("%d: stale = %v, want %v", year, got[year].Stale, stale)
		}
	}
	if !got[2016].LastModified.Equal(archiveModified) {
		t.Errorf("last modified = %v, want %v", got[2016].LastModified, archiveModified)
	}
	if !got[2019].LastModified.IsZero() {
		t.Errorf("undated archive has last modified %v", got[2019].LastModified)
	}

	if s := sourceByID(t, sdb, "test-2016").State(); s != StateStale {
		t.Errorf("2016 state = %s, want %s", s, StateStale)
	}
}

func TestCheckAll_NoSources(t *testing.T) {
	sdb := seededDB(t)
	if got := NewChecker(sdb, t.TempDir(), quietOptions(), time.Hour).CheckAll(context.Background()); len(got) != 0 {
		t.Errorf("results = %v, want none", got)
	}
}

func TestCheckAll_Cancelled(t *testing.T) {
	ts := archiveServer(t)
	sdb := seededDB(t, yearAdapter{2018, ts.URL + "/ok"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := NewChecker(sdb, t.TempDir(), quietOptions(), time.Hour).CheckAll(ctx); len(got) != 0 {
		t.Errorf("results = %v, want none after cancellation", got)
	}
	if src := sourceByID(t, sdb, "test-2018"); src.LastCheck != nil {
		t.Error("cancelled check should not be recorded")
	}
}
