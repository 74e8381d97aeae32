package importer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/hazyhaar/wdtsmap/pkg/schools"
)

func TestEdgeAdapters_Registered(t *testing.T) {
	for y := schools.MinYear; y <= schools.DefaultCurrentYear; y++ {
		a, err := ForYear(y)
		if err != nil {
			t.Errorf("ForYear(%d): %v", y, err)
			continue
		}
		if a.Year() != y {
			t.Errorf("ForYear(%d).Year() = %d", y, a.Year())
		}
	}
	if _, err := ForYear(2014); err == nil {
		t.Error("expected no adapter for 2014")
	}

	a, err := Get("edge-2018")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := a.DefaultURL(); got != "https://nces.ed.gov/programs/edge/data/EDGE_GEOCODE_POSTSECONDARYSCH_1819.zip" {
		t.Errorf("DefaultURL = %q", got)
	}
}

func TestEdgeAdapter_Import(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "edge.zip")
	writeZip(t, archive, map[string]string{
		"EDGE_GEOCODE_POSTSECONDARYSCH_1819/EDGE_GEOCODE_POSTSECONDARYSCH_1819.csv": "UNITID,NAME,CITY,STATE,LAT,LON\n" +
			"1,Harvard University,Cambridge,MA,42.37,-71.12\n" +
			"2,Ohio State University-Main Campus,Columbus,OH,40.00,-83.01\n",
		"EDGE_GEOCODE_POSTSECONDARYSCH_1819/layout.pdf": "%PDF",
	})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, archive)
	}))
	defer ts.Close()

	dir := t.TempDir()
	a, _ := Get("edge-2018")
	n, err := a.Import(context.Background(), ts.URL, dir, schools.LoadOptions{})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 2 {
		t.Errorf("imported rows = %d, want 2", n)
	}

	for _, ext := range []string{".csv", ".gob"} {
		if _, err := os.Stat(filepath.Join(dir, "Postsecondary_School_Locations_2018-19"+ext)); err != nil {
			t.Errorf("missing %s output: %v", ext, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "_download_2018")); !os.IsNotExist(err) {
		t.Error("download directory not cleaned up")
	}

	table, err := schools.Load(dir, 2018, schools.LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if row, ok := table.Lookup("Ohio State University-Main Campus"); !ok || row.Region != "OH" {
		t.Errorf("lookup = %+v, %v", row, ok)
	}
}

func TestEdgeAdapter_CurrentYearFile(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "edge.zip")
	writeZip(t, archive, map[string]string{"current.csv": "NAME,CITY,STATE,LAT,LON\nMIT,Cambridge,MA,42.36,-71.09\n"})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, archive)
	}))
	defer ts.Close()

	dir := t.TempDir()
	a, _ := Get("edge-2021")
	if _, err := a.Import(context.Background(), ts.URL, dir, schools.LoadOptions{CurrentYear: 2021}); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "EDGE_GEOCODE_POSTSECONDARYSCH_CURRENT.gob")); err != nil {
		t.Errorf("missing current-year gob: %v", err)
	}
}

func TestEdgeAdapter_Import_MissingColumns(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "edge.zip")
	writeZip(t, archive, map[string]string{"table.csv": "UNITID,CITY\n1,Nowhere\n"})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, archive)
	}))
	defer ts.Close()

	dir := t.TempDir()
	a, _ := Get("edge-2019")
	if _, err := a.Import(context.Background(), ts.URL, dir, schools.LoadOptions{}); err == nil {
		t.Fatal("expected validation error")
	}
	if _, err := os.Stat(filepath.Join(dir, "Postsecondary_School_Locations_2019-20.csv")); !os.IsNotExist(err) {
		t.Error("invalid csv left behind")
	}
}

func TestEdgeAdapter_Import_NoUsableRows(t *testing.T) {
	tests := []struct {
		name  string
		table string
	}{
		{"header only", "NAME,CITY,STATE,LAT,LON\n"},
		{"no coordinates", "NAME,CITY,STATE,LAT,LON\nA College,Town,KS,,\nB College,Town,KS,n/a,n/a\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			archive := filepath.Join(t.TempDir(), "edge.zip")
			writeZip(t, archive, map[string]string{"table.csv": tt.table})
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.ServeFile(w, r, archive)
			}))
			defer ts.Close()

			dir := t.TempDir()
			a, _ := Get("edge-2017")
			n, err := a.Import(context.Background(), ts.URL, dir, schools.LoadOptions{})
			if !errors.Is(err, schools.ErrEmptyTable) {
				t.Fatalf("Import err = %v, want ErrEmptyTable", err)
			}
			if n != 0 {
				t.Errorf("imported rows = %d, want 0", n)
			}
			for _, ext := range []string{".csv", ".gob"} {
				if _, err := os.Stat(filepath.Join(dir, "Postsecondary_School_Locations_2017-18"+ext)); !os.IsNotExist(err) {
					t.Errorf("%s written for an empty table", ext)
				}
			}
			if _, err := schools.Load(dir, 2017, schools.LoadOptions{}); !errors.Is(err, schools.ErrMissingBackingFile) {
				t.Errorf("Load after failed import = %v, want ErrMissingBackingFile", err)
			}
		})
	}
}
