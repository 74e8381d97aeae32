package layout

import (
	"fmt"
	"strings"

	"github.com/hazyhaar/wdtsmap/pkg/participant"
)

// Strategy parses one report layout into participant fields. Rows that do not
// fit the layout are returned as MalformedRow and never abort the parse.
type Strategy interface {
	Name() string
	Parse(doc *Document, year int, filter []string) ([]participant.Fields, []MalformedRow)
}

// MalformedRow is a table row that could not be mapped onto the layout.
type MalformedRow struct {
	Page   int      `json:"page"`
	Cells  []string `json:"cells"`
	Reason string   `json:"reason"`
}

func (m MalformedRow) String() string {
	return fmt.Sprintf("page %d: %s: %q", m.Page+1, m.Reason, m.Cells)
}

// parenthesized returns the text between the first '(' and the last ')'.
func parenthesized(s string) (string, bool) {
	i := strings.Index(s, "(")
	j := strings.LastIndex(s, ")")
	if i < 0 || j <= i {
		return "", false
	}
	return s[i+1 : j], true
}

// splitFullName splits "First Middle Last" at the last word.
func splitFullName(s string) (first, last string) {
	words := strings.Fields(s)
	if len(words) == 0 {
		return "", ""
	}
	return strings.Join(words[:len(words)-1], " "), words[len(words)-1]
}

// labKey derives a laboratory key from a lined-table lab cell. Sandia sites
// are told apart by the participant's institution.
func labKey(cell, institution string) string {
	if strings.Contains(cell, "General Atomics") {
		return "General_Atomics_DIII_D"
	}
	key, ok := parenthesized(cell)
	if !ok {
		if i := strings.Index(cell, "("); i > 0 {
			cell = cell[:i]
		}
		key = strings.ReplaceAll(strings.TrimSpace(cell), " ", "_")
	}
	if strings.Contains(key, "SNL") || strings.Contains(key, "Sandia") {
		if strings.Contains(institution, "California") || strings.Contains(institution, "Mills") {
			key += "_CA"
		} else {
			key += "_NM"
		}
	}
	if strings.Contains(key, "General_Atomics") {
		key = "General_Atomics_DIII_D"
	}
	// Narrow columns cut the facility abbreviation short.
	if key == "TJNA" {
		key = "TJNAF"
	}
	return key
}

func titleProgram(title string) string {
	if p, ok := parenthesized(title); ok {
		return p
	}
	return title
}
