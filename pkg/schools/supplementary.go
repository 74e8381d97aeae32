// CLAUDE:SUMMARY Embedded list of institutions absent from the NCES tables (mostly foreign universities).
package schools

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed supplementary.yaml
var supplementaryYAML []byte

// Supplementary returns the curated institutions appended to every table.
func Supplementary() []Row {
	rows, err := parseSupplementary(supplementaryYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded supplementary.yaml: %v", err))
	}
	return rows
}

func parseSupplementary(data []byte) ([]Row, error) {
	var doc struct {
		Institutions []Row `yaml:"institutions"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	for i, r := range doc.Institutions {
		if r.Name == "" {
			return nil, fmt.Errorf("institution %d: missing name", i)
		}
	}
	return doc.Institutions, nil
}
