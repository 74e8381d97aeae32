package resolve

import (
	"fmt"

	"github.com/hazyhaar/wdtsmap/pkg/schools"
)

// Institution is a resolved home institution. It is only built from a
// reference row, so every field is populated.
type Institution struct {
	Name      string  `json:"name"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewInstitution builds the record for a matched row.
func NewInstitution(row schools.Row) *Institution {
	return &Institution{
		Name:      row.Name,
		City:      row.City,
		State:     row.Region,
		Latitude:  row.Latitude,
		Longitude: row.Longitude,
	}
}

func (i *Institution) String() string {
	return fmt.Sprintf("Institution(%s)", i.Name)
}
