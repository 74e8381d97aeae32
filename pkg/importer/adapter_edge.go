// CLAUDE:SUMMARY Import adapters for NCES EDGE postsecondary school location archives, one per reference year.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/wdtsmap/pkg/schools"
)

// EDGE publishes one archive per academic year.
const (
	edgeFirstYear = schools.MinYear
	edgeLastYear  = schools.DefaultCurrentYear
	edgeURL       = "https://nces.ed.gov/programs/edge/data/EDGE_GEOCODE_POSTSECONDARYSCH_%02d%02d.zip"
)

func init() {
	for y := edgeFirstYear; y <= edgeLastYear; y++ {
		Register(&edgeAdapter{year: y})
	}
}

type edgeAdapter struct {
	year int
}

func (a *edgeAdapter) ID() string { return fmt.Sprintf("edge-%d", a.year) }
func (a *edgeAdapter) Year() int { return a.year }
func (a *edgeAdapter) License() string { return "Public Domain" }

func (a *edgeAdapter) Description() string {
	return fmt.Sprintf("NCES EDGE postsecondary school locations %d-%02d", a.year, (a.year+1)%100)
}

func (a *edgeAdapter) DefaultURL() string {
	return fmt.Sprintf(edgeURL, a.year%100, (a.year+1)%100)
}

func (a *edgeAdapter) Import(ctx context.Context, sourceURL, schoolsDir string, opts schools.LoadOptions) (int, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dlDir := filepath.Join(schoolsDir, fmt.Sprintf("_download_%d", a.year))
	if err := ensureDir(dlDir); err != nil {
		return 0, err
	}
	defer os.RemoveAll(dlDir)

	zipPath := filepath.Join(dlDir, "edge.zip")
	logger.Info("downloading reference locations", "year", a.year, "url", sourceURL)
	if err := downloadFile(ctx, sourceURL, zipPath); err != nil {
		return 0, fmt.Errorf("download: %w", err)
	}

	files, err := unzipFile(zipPath, dlDir)
	if err != nil {
		return 0, fmt.Errorf("unzip: %w", err)
	}
	member, err := pickTable(files)
	if err != nil {
		return 0, err
	}

	current := opts.CurrentYear
	if current == 0 {
		current = schools.DefaultCurrentYear
	}
	base := filepath.Join(schoolsDir, schools.BaseName(a.year, current))
	if err := toCSV(member, base+".csv"); err != nil {
		return 0, fmt.Errorf("convert %s: %w", filepath.Base(member), err)
	}

	// An archive without usable rows must not leave a file behind: Load
	// would otherwise prefer it over a later, valid import.
	f, err := os.Open(base + ".csv")
	if err != nil {
		return 0, err
	}
	rows, err := schools.ReadCSV(f, a.year, schools.LoadOptions{Logger: logger})
	f.Close()
	if err != nil {
		os.Remove(base + ".csv")
		return 0, fmt.Errorf("validate %s.csv: %w", base, err)
	}

	if err := schools.SaveGob(rows, base+".gob"); err != nil {
		os.Remove(base + ".gob")
		return 0, fmt.Errorf("save gob: %w", err)
	}
	logger.Info("reference locations imported", "year", a.year, "rows", len(rows), "file", base+".csv")
	return len(rows), nil
}

// pickTable returns the delimited-text member of an EDGE archive, preferring
// .csv over .txt.
func pickTable(files []string) (string, error) {
	var txt string
	for _, f := range files {
		switch strings.ToLower(filepath.Ext(f)) {
		case ".csv":
			return f, nil
		case ".txt":
			if txt == "" {
				txt = f
			}
		}
	}
	if txt != "" {
		return txt, nil
	}
	return "", fmt.Errorf("no .csv or .txt table in archive (%d files)", len(files))
}
