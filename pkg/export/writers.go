package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/hazyhaar/wdtsmap/pkg/participant"
)

// Formats lists the supported output formats.
var Formats = []string{"jsonl", "parquet", "geojson"}

// WriteJSONL writes one JSON record per line.
func WriteJSONL(w io.Writer, people []participant.Participant) error {
	enc := json.NewEncoder(w)
	for _, r := range Flatten(people) {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode %s %s: %w", r.FirstName, r.LastName, err)
		}
	}
	return nil
}

// WriteParquet writes the records as a single Parquet file.
func WriteParquet(w io.Writer, people []participant.Participant) error {
	pw := parquet.NewGenericWriter[Record](w)
	if _, err := pw.Write(Flatten(people)); err != nil {
		pw.Close()
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

// ReadParquet reads records written by WriteParquet.
func ReadParquet(r io.ReaderAt, size int64) ([]Record, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	reader := parquet.NewGenericReader[Record](pf)
	defer reader.Close()

	var records []Record
	batch := make([]Record, 128)
	for {
		n, err := reader.Read(batch)
		records = append(records, batch[:n]...)
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, fmt.Errorf("read parquet: %w", err)
		}
	}
}

// WriteFile writes people to path in format (see Formats). lines only
// affects GeoJSON output.
func WriteFile(path, format string, people []participant.Participant, lines bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(format) {
	case "jsonl":
		err = WriteJSONL(f, people)
	case "parquet":
		err = WriteParquet(f, people)
	case "geojson":
		err = WriteGeoJSON(f, people, lines)
	default:
		err = fmt.Errorf("unsupported format %q (supported: %s)", format, strings.Join(Formats, ", "))
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
