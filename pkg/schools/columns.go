// CLAUDE:SUMMARY Year-dependent source column names and backing file naming for the NCES postsecondary location tables.
package schools

import (
	"errors"
	"fmt"
)

// MinYear is the earliest year with reference location data.
const MinYear = 2015

// DefaultCurrentYear is the year served by the EDGE "CURRENT" file rather than a
// year-encoded archive.
const DefaultCurrentYear = 2021

var (
	// ErrUnsupportedYear is returned for years before MinYear.
	ErrUnsupportedYear = errors.New("unsupported year")
	// ErrMissingBackingFile is returned when no table file exists for a year.
	ErrMissingBackingFile = errors.New("missing backing file")
	// ErrEmptyTable is returned when a backing file holds no row with usable
	// coordinates.
	ErrEmptyTable = errors.New("no rows with usable coordinates")
)

// Columns names the source columns holding each semantic field.
type Columns struct {
	Name      string
	City      string
	Region    string
	Latitude  string
	Longitude string
}

// ColumnsFor returns the column names used by the year's source file.
// Name is INSTNM before 2017 and NAME afterwards; the 2015 release alone uses
// STABBR, LAT1516 and LON1516.
func ColumnsFor(year int) Columns {
	c := Columns{
		Name:      "NAME",
		City:      "CITY",
		Region:    "STATE",
		Latitude:  "LAT",
		Longitude: "LON",
	}
	if year < 2017 {
		c.Name = "INSTNM"
	}
	if year == 2015 {
		c.Region = "STABBR"
		c.Latitude = "LAT1516"
		c.Longitude = "LON1516"
	}
	return c
}

// CheckYear reports ErrUnsupportedYear for years without reference data.
func CheckYear(year int) error {
	if year < MinYear {
		return fmt.Errorf("year %d: %w (reference locations start in %d)", year, ErrUnsupportedYear, MinYear)
	}
	return nil
}

// BaseName returns the file name, without extension, of the year's table.
// 2018 -> Postsecondary_School_Locations_2018-19.
func BaseName(year, currentYear int) string {
	if year == currentYear {
		return "EDGE_GEOCODE_POSTSECONDARYSCH_CURRENT"
	}
	return fmt.Sprintf("Postsecondary_School_Locations_%d-%02d", year, year-1999)
}
