package schools

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// LoadOptions controls how a year's backing file is located and decoded.
type LoadOptions struct {
	// CurrentYear is served by the CURRENT file. Zero means DefaultCurrentYear.
	CurrentYear int
	// Encoding of the CSV file (e.g. "windows-1252"). Empty means UTF-8.
	Encoding string
	Logger   *slog.Logger
}

func (o LoadOptions) currentYear() int {
	if o.CurrentYear == 0 {
		return DefaultCurrentYear
	}
	return o.CurrentYear
}

func (o LoadOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// Load reads the reference table for year from dir. A gob cache takes priority
// over the CSV export of the same base name.
func Load(dir string, year int, opts LoadOptions) (*Table, error) {
	if err := CheckYear(year); err != nil {
		return nil, err
	}

	base := filepath.Join(dir, BaseName(year, opts.currentYear()))

	gobPath := base + ".gob"
	if _, err := os.Stat(gobPath); err == nil {
		rows, err := LoadGob(gobPath)
		if err != nil {
			return nil, fmt.Errorf("schools %d: %w", year, err)
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("schools %d: %s: %w", year, gobPath, ErrEmptyTable)
		}
		return NewTable(year, rows), nil
	}

	csvPath := base + ".csv"
	f, err := os.Open(csvPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("schools %d: %s: %w", year, csvPath, ErrMissingBackingFile)
		}
		return nil, fmt.Errorf("schools %d: %w", year, err)
	}
	defer f.Close()

	rows, err := ReadCSV(f, year, opts)
	if err != nil {
		return nil, fmt.Errorf("schools %d: %s: %w", year, csvPath, err)
	}
	return NewTable(year, rows), nil
}

// LoadAugmented loads the year's table and appends the supplementary list.
func LoadAugmented(dir string, year int, opts LoadOptions) (*Table, error) {
	t, err := Load(dir, year, opts)
	if err != nil {
		return nil, err
	}
	return Augment(t, Supplementary()), nil
}

// ReadCSV decodes a location table whose header uses the year's column names.
// A table yielding no usable row is reported as ErrEmptyTable.
func ReadCSV(src io.Reader, year int, opts LoadOptions) ([]Row, error) {
	var reader io.Reader = src
	if enc := opts.Encoding; enc != "" && !isUTF8(enc) {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return nil, fmt.Errorf("unsupported encoding %q: %w", enc, err)
		}
		reader = transform.NewReader(src, e.NewDecoder())
	}

	r := csv.NewReader(reader)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		// Strip a UTF-8 BOM left by spreadsheet exports.
		h = strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")
		colIdx[strings.ToUpper(h)] = i
	}

	cols := ColumnsFor(year)
	required := []string{cols.Name, cols.Latitude, cols.Longitude}
	for _, c := range required {
		if _, ok := colIdx[c]; !ok {
			return nil, fmt.Errorf("column %q not found in header %v", c, header)
		}
	}
	nameCol, latCol, lonCol := colIdx[cols.Name], colIdx[cols.Latitude], colIdx[cols.Longitude]
	cityCol, hasCity := colIdx[cols.City]
	regionCol, hasRegion := colIdx[cols.Region]

	field := func(record []string, i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	var rows []Row
	var records, skipped int
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		records++

		name := field(record, nameCol)
		if name == "" {
			continue
		}
		lat, latErr := strconv.ParseFloat(field(record, latCol), 64)
		lon, lonErr := strconv.ParseFloat(field(record, lonCol), 64)
		if latErr != nil || lonErr != nil {
			skipped++
			continue
		}

		row := Row{Name: name, Latitude: lat, Longitude: lon}
		if hasCity {
			row.City = field(record, cityCol)
		}
		if hasRegion {
			row.Region = field(record, regionCol)
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w in %d records", ErrEmptyTable, records)
	}
	if skipped > 0 {
		opts.logger().Warn("rows without usable coordinates skipped", "year", year, "skipped", skipped)
	}
	return rows, nil
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
