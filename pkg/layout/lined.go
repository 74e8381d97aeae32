package layout

import (
	"strings"

	"github.com/hazyhaar/wdtsmap/pkg/participant"
)

// LinedNameInstLabTerm parses ruled tables with the columns name,
// institution, laboratory, term. The header row names the job. Used for
// VFP, SULI and CCI reports before 2020.
type LinedNameInstLabTerm struct{}

func (LinedNameInstLabTerm) Name() string { return "lines/name-institution-lab-term" }

func (LinedNameInstLabTerm) Parse(doc *Document, year int, _ []string) ([]participant.Fields, []MalformedRow) {
	var out []participant.Fields
	var bad []MalformedRow
	var program string
	job := participant.Unknown
	for ip, page := range doc.Pages {
		table := page.Table()
		if len(table) == 0 {
			continue
		}
		if ip == 0 {
			program = titleProgram(page.Title())
			job = headerJob(table[0])
			table = table[1:]
		} else if len(table[0]) > 0 && strings.Contains(strings.ToUpper(table[0][0]), "PARTICIPANT") {
			table = table[1:]
		}

		for _, cells := range table {
			if blank(cells) {
				continue
			}
			if len(cells) < 3 {
				bad = append(bad, MalformedRow{Page: ip, Cells: cells, Reason: "want name, institution and laboratory"})
				continue
			}
			first, last := splitFullName(cells[0])
			out = append(out, participant.Fields{
				Program:     program,
				Job:         job,
				FirstName:   first,
				LastName:    last,
				Institution: cells[1],
				Lab:         labKey(cells[2], cells[1]),
				Year:        year,
			})
		}
	}
	return out, bad
}

// headerJob reads the job from a header such as "FACULTY NAME"; a
// "... PARTICIPANT" header means students.
func headerJob(header []string) participant.Job {
	if len(header) == 0 {
		return participant.Unknown
	}
	words := strings.Fields(header[0])
	if len(words) < 2 {
		return participant.Unknown
	}
	if strings.EqualFold(words[1], "Participant") {
		return participant.Student
	}
	return participant.ParseJob(words[1])
}

func blank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

// LinedNameInstLabArea parses ruled SCGSR award tables with the columns
// name, institution, laboratory, research area.
type LinedNameInstLabArea struct{}

func (LinedNameInstLabArea) Name() string { return "lines/name-institution-lab-area" }

func (LinedNameInstLabArea) Parse(doc *Document, year int, _ []string) ([]participant.Fields, []MalformedRow) {
	var out []participant.Fields
	var bad []MalformedRow
	var program string
	job := participant.Faculty
	for ip, page := range doc.Pages {
		table := page.Table()
		if ip == 0 {
			title := page.Title()
			program = titleProgram(title)
			if strings.Contains(title, "Student") {
				job = participant.Student
			}
			if len(table) > 0 {
				table = table[1:]
			}
		}

		for _, cells := range table {
			if blank(cells) {
				continue
			}
			if len(cells) < 4 {
				bad = append(bad, MalformedRow{Page: ip, Cells: cells, Reason: "want name, institution, laboratory and area"})
				continue
			}
			first, last := splitFullName(cells[0])
			out = append(out, participant.Fields{
				Program:     program,
				Job:         job,
				FirstName:   first,
				LastName:    last,
				Institution: cells[1],
				Lab:         labKey(cells[2], cells[1]),
				Topic:       cells[3],
				Year:        year,
			})
		}
	}
	return out, bad
}
