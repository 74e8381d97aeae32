package export

import (
	"encoding/json"
	"io"

	"github.com/hazyhaar/wdtsmap/pkg/participant"
)

// FeatureCollection is a GeoJSON document.
type FeatureCollection struct {
	Type       string         `json:"type"`
	Features   []Feature      `json:"features"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Feature is a GeoJSON feature.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry is a Point ([lon, lat]) or a LineString ([[lon, lat], ...]).
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

func point(lat, lon float64) Geometry {
	return Geometry{Type: "Point", Coordinates: []float64{lon, lat}}
}

// institutionKey identifies one institution point. Same-named schools from
// different years or states keep their own point.
type institutionKey struct {
	name     string
	lat, lon float64
}

// GeoJSON builds point features for every home institution and laboratory
// and, when lines is set, one LineString per participant linking the two.
// Institutions are de-duplicated on name and coordinates together.
// Unresolved participants have no location and are only counted.
func GeoJSON(people []participant.Participant, lines bool) FeatureCollection {
	fc := FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}
	seenInst := map[institutionKey]bool{}
	seenLab := map[string]bool{}
	unresolved := 0

	for _, p := range people {
		if p.Lab != nil && !seenLab[p.Lab.Key] {
			seenLab[p.Lab.Key] = true
			fc.Features = append(fc.Features, Feature{
				Type:     "Feature",
				Geometry: point(p.Lab.Latitude, p.Lab.Longitude),
				Properties: map[string]any{
					"kind":     "laboratory",
					"key":      p.Lab.Key,
					"name":     p.Lab.Name,
					"location": p.Lab.Location(),
				},
			})
		}
		inst := p.Institution
		if inst == nil {
			unresolved++
			continue
		}
		if k := (institutionKey{inst.Name, inst.Latitude, inst.Longitude}); !seenInst[k] {
			seenInst[k] = true
			fc.Features = append(fc.Features, Feature{
				Type:     "Feature",
				Geometry: point(inst.Latitude, inst.Longitude),
				Properties: map[string]any{
					"kind":  "institution",
					"name":  inst.Name,
					"city":  inst.City,
					"state": inst.State,
				},
			})
		}
	}

	if lines {
		for _, p := range people {
			if p.Institution == nil || p.Lab == nil {
				continue
			}
			style := "solid"
			if p.Job == participant.Student {
				style = "dashed"
			}
			fc.Features = append(fc.Features, Feature{
				Type: "Feature",
				Geometry: Geometry{Type: "LineString", Coordinates: [][]float64{
					{p.Institution.Longitude, p.Institution.Latitude},
					{p.Lab.Longitude, p.Lab.Latitude},
				}},
				Properties: map[string]any{
					"kind":        "participation",
					"participant": p.Name(),
					"program":     p.Program,
					"job":         string(p.Job),
					"year":        p.Year,
					"institution": p.Institution.Name,
					"lab":         p.Lab.Key,
					"style":       style,
				},
			})
		}
	}

	fc.Properties = map[string]any{
		"participants": len(people),
		"unresolved":   unresolved,
		"institutions": len(seenInst),
		"laboratories": len(seenLab),
	}
	return fc
}

// WriteGeoJSON encodes GeoJSON(people, lines) to w.
func WriteGeoJSON(w io.Writer, people []participant.Participant, lines bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(GeoJSON(people, lines))
}
