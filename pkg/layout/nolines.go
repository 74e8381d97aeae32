package layout

import (
	"strings"

	"github.com/hazyhaar/wdtsmap/pkg/participant"
)

// headerLines is the number of title lines above the first row of a
// program-name table.
const headerLines = 3

// NoLinesProgramNameInstLab parses unruled tables with the columns
// "PROGRAM [JOB]", "Last, First", institution, "Laboratory (KEY)", topic.
// Used for the combined SULI/CCI/VFP report of 2021.
type NoLinesProgramNameInstLab struct{}

func (NoLinesProgramNameInstLab) Name() string { return "no-lines/program-name-institution-lab-topic" }

func (NoLinesProgramNameInstLab) Parse(doc *Document, year int, filter []string) ([]participant.Fields, []MalformedRow) {
	var out []participant.Fields
	var bad []MalformedRow
	for ip, page := range doc.Pages {
		rows := page.Rows()
		if ip == 0 {
			rows = rows[min(headerLines, len(rows)):]
		}
		rows = FixKnownIssues(rows, year)
		for _, cells := range rows {
			if len(cells) == 0 || !matchesFilter(cells[0], filter) {
				continue
			}
			if len(cells) != 5 {
				bad = append(bad, MalformedRow{Page: ip, Cells: cells, Reason: "want 5 columns"})
				continue
			}
			last, first, ok := strings.Cut(cells[1], ",")
			if !ok {
				bad = append(bad, MalformedRow{Page: ip, Cells: cells, Reason: "name is not \"Last, First\""})
				continue
			}
			program, job := programJob(cells[0])
			out = append(out, participant.Fields{
				Program:     program,
				Job:         job,
				FirstName:   strings.TrimSpace(first),
				LastName:    strings.TrimSpace(last),
				Institution: cells[2],
				Lab:         programLabKey(cells[3]),
				Topic:       cells[4],
				Year:        year,
			})
		}
	}
	return out, bad
}

// programJob reads "VFP Faculty" style cells. SULI and CCI participants
// without a job are students.
func programJob(cell string) (string, participant.Job) {
	program, job, ok := strings.Cut(cell, " ")
	if ok {
		return program, participant.ParseJob(job)
	}
	if strings.Contains(cell, string(SULI)) || strings.Contains(cell, string(CCI)) {
		return cell, participant.Student
	}
	return cell, participant.Unknown
}

func programLabKey(cell string) string {
	if strings.Contains(cell, "General Atomics") {
		return "GA_DIII_D"
	}
	key, ok := parenthesized(cell)
	if !ok {
		key = cell
	}
	return strings.ReplaceAll(key, " ", "_")
}

func matchesFilter(cell string, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, f := range filter {
		if strings.Contains(cell, f) {
			return true
		}
	}
	return false
}

// NoLinesTermLastFirstInstLab parses unruled tables with the columns term,
// last name, first name, institution, laboratory. The program and job come
// from the report title. Used for 2020 reports.
type NoLinesTermLastFirstInstLab struct{}

func (NoLinesTermLastFirstInstLab) Name() string { return "no-lines/term-last-first-institution-lab" }

func (NoLinesTermLastFirstInstLab) Parse(doc *Document, year int, _ []string) ([]participant.Fields, []MalformedRow) {
	var out []participant.Fields
	var bad []MalformedRow
	var program string
	job := participant.Unknown
	for ip, page := range doc.Pages {
		if ip == 0 {
			title := page.Title()
			program = titleProgram(title)
			if strings.Contains(title, "Participants") {
				job = participant.Student
			} else if words := strings.Fields(title); len(words) > 0 {
				job = participant.ParseJob(words[len(words)-1])
			}
		}

		// Titles and page numbers are single cells.
		var rows [][]string
		for _, cells := range page.Rows() {
			if len(cells) > 1 {
				rows = append(rows, cells)
			}
		}
		if len(rows) > 0 && strings.Contains(rows[0][0], "Term") {
			rows = rows[1:]
		}

		for _, cells := range rows {
			if len(cells) != 5 {
				bad = append(bad, MalformedRow{Page: ip, Cells: cells, Reason: "want 5 columns"})
				continue
			}
			lab := strings.NewReplacer(" / ", "_", " ", "_", "-", "_").Replace(cells[4])
			out = append(out, participant.Fields{
				Program:     program,
				Job:         job,
				FirstName:   cells[2],
				LastName:    cells[1],
				Institution: cells[3],
				Lab:         lab,
				Year:        year,
			})
		}
	}
	return out, bad
}
