// CLAUDE:SUMMARY Flat participant record shared by the JSONL and Parquet writers, plus dated output file naming.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hazyhaar/wdtsmap/pkg/participant"
)

// Record is one participant flattened to columns. Institution columns are
// nil when the home institution was not resolved.
type Record struct {
	Program              string   `json:"program" parquet:"program"`
	Job                  string   `json:"job" parquet:"job"`
	FirstName            string   `json:"first_name" parquet:"first_name"`
	LastName             string   `json:"last_name" parquet:"last_name"`
	RawInstitution       string   `json:"raw_institution" parquet:"raw_institution"`
	Institution          *string  `json:"institution,omitempty" parquet:"institution,optional"`
	InstitutionCity      *string  `json:"institution_city,omitempty" parquet:"institution_city,optional"`
	InstitutionState     *string  `json:"institution_state,omitempty" parquet:"institution_state,optional"`
	InstitutionLatitude  *float64 `json:"institution_latitude,omitempty" parquet:"institution_latitude,optional"`
	InstitutionLongitude *float64 `json:"institution_longitude,omitempty" parquet:"institution_longitude,optional"`
	LabKey               string   `json:"lab_key" parquet:"lab_key"`
	LabName              string   `json:"lab_name" parquet:"lab_name"`
	LabLocation          string   `json:"lab_location" parquet:"lab_location"`
	LabLatitude          float64  `json:"lab_latitude" parquet:"lab_latitude"`
	LabLongitude         float64  `json:"lab_longitude" parquet:"lab_longitude"`
	Topic                string   `json:"topic,omitempty" parquet:"topic"`
	Year                 int32    `json:"year" parquet:"year"`
}

// Flatten converts participants to records, keeping order.
func Flatten(people []participant.Participant) []Record {
	out := make([]Record, 0, len(people))
	for _, p := range people {
		r := Record{
			Program:        p.Program,
			Job:            string(p.Job),
			FirstName:      p.FirstName,
			LastName:       p.LastName,
			RawInstitution: p.RawInstitution,
			Topic:          p.Topic,
			Year:           int32(p.Year),
		}
		if inst := p.Institution; inst != nil {
			r.Institution = &inst.Name
			r.InstitutionCity = &inst.City
			r.InstitutionState = &inst.State
			r.InstitutionLatitude = &inst.Latitude
			r.InstitutionLongitude = &inst.Longitude
		}
		if l := p.Lab; l != nil {
			r.LabKey = l.Key
			r.LabName = l.Name
			r.LabLocation = l.Location()
			r.LabLatitude = l.Latitude
			r.LabLongitude = l.Longitude
		}
		out = append(out, r)
	}
	return out
}

// FormattedFilename returns dir/YYYY_MM_DD_name_vN.ext with the lowest
// version N not already taken.
func FormattedFilename(dir, name, ext string, now time.Time) string {
	base := filepath.Join(dir, now.Format("2006_01_02")+"_"+name)
	for i := 0; ; i++ {
		path := fmt.Sprintf("%s_v%d.%s", base, i, ext)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
	}
}
