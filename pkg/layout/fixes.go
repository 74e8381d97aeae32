package layout

import "strings"

// mergedNames are participant names known to run into the institution cell.
var mergedNames = []struct {
	year int
	name string
}{
	{2021, "Ouango, Boinzemwende Jarmila Roxane"},
}

// FixKnownIssues repairs rows that text extraction is known to get wrong for
// program-name tables. Rows are copied, never modified in place.
func FixKnownIssues(rows [][]string, year int) [][]string {
	out := make([][]string, len(rows))
	for i, cells := range rows {
		cells = append([]string(nil), cells...)
		cells = splitMergedName(cells, year)
		cells = splitJeffersonLabTopic(cells)
		out[i] = cells
	}
	return out
}

func splitMergedName(cells []string, year int) []string {
	if len(cells) < 2 {
		return cells
	}
	for _, m := range mergedNames {
		if m.year != year {
			continue
		}
		rest, ok := strings.CutPrefix(cells[1], m.name)
		if !ok || rest == "" {
			continue
		}
		fixed := append([]string{cells[0], m.name, strings.TrimSpace(rest)}, cells[2:]...)
		return fixed
	}
	return cells
}

// splitJeffersonLabTopic separates the topic from a Jefferson Lab cell when
// the long facility name pushed both into one column.
func splitJeffersonLabTopic(cells []string) []string {
	if len(cells) != 4 || !strings.Contains(cells[3], "Thomas Jefferson National") {
		return cells
	}
	i := strings.Index(cells[3], "(TJNA")
	if i < 0 {
		return cells
	}
	rest := cells[3][i+len("(TJNA"):]
	rest = strings.TrimPrefix(rest, "F")
	rest = strings.TrimPrefix(rest, ")")
	return append(cells[:3:3], strings.TrimSpace(cells[3][:i])+" (TJNAF)", strings.TrimSpace(rest))
}
