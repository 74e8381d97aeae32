package layout

import (
	"strings"
	"testing"

	"github.com/hazyhaar/wdtsmap/pkg/participant"
)

// nb joins cells the way unruled 2021 reports are extracted: spaces inside a
// cell are non-breaking, cells are separated by one space.
func nb(cells ...string) string {
	for i, c := range cells {
		cells[i] = strings.ReplaceAll(c, " ", "\u00a0")
	}
	return strings.Join(cells, " ")
}

func mustParse(t *testing.T, text string) *Document {
	t.Helper()
	doc, err := ParseText(strings.NewReader(text))
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	return doc
}

func programNameReport(t *testing.T) *Document {
	return mustParse(t, strings.Join([]string{
		"WDTS Summer 2021 Participants",
		"SULI, CCI and VFP",
		"Program Participant Institution Laboratory Topic",
		nb("VFP Faculty", "Smith, Jane", "Harvard University", "Argonne National Laboratory (ANL)", "High Energy Physics"),
		nb("SULI", "Doe, John", "Ohio State University", "Oak Ridge National Laboratory (ORNL)", "Biology"),
		nb("CCI", "Roe, Ann", "Mesa Community College", "General Atomics DIII-D", "Fusion"),
		nb("VFP Faculty", "Short, Row", "Nowhere"),
	}, "\n"))
}

func TestNoLinesProgramNameInstLab(t *testing.T) {
	people, bad := NoLinesProgramNameInstLab{}.Parse(programNameReport(t), 2021, nil)
	if len(people) != 3 {
		t.Fatalf("people = %d, want 3: %+v", len(people), people)
	}
	if len(bad) != 1 || bad[0].Reason != "want 5 columns" {
		t.Errorf("malformed = %+v", bad)
	}

	want := []participant.Fields{
		{Program: "VFP", Job: participant.Faculty, FirstName: "Jane", LastName: "Smith", Institution: "Harvard University", Lab: "ANL", Topic: "High Energy Physics", Year: 2021},
		{Program: "SULI", Job: participant.Student, FirstName: "John", LastName: "Doe", Institution: "Ohio State University", Lab: "ORNL", Topic: "Biology", Year: 2021},
		{Program: "CCI", Job: participant.Student, FirstName: "Ann", LastName: "Roe", Institution: "Mesa Community College", Lab: "GA_DIII_D", Topic: "Fusion", Year: 2021},
	}
	for i := range want {
		if people[i] != want[i] {
			t.Errorf("[%d] = %+v, want %+v", i, people[i], want[i])
		}
	}
}

func TestNoLinesProgramNameInstLab_Filter(t *testing.T) {
	people, bad := NoLinesProgramNameInstLab{}.Parse(programNameReport(t), 2021, []string{"VFP"})
	if len(people) != 1 || people[0].LastName != "Smith" {
		t.Errorf("people = %+v", people)
	}
	if len(bad) != 1 {
		t.Errorf("malformed = %d, want 1", len(bad))
	}
}

func TestNoLinesTermLastFirstInstLab(t *testing.T) {
	doc := mustParse(t, strings.Join([]string{
		"Visiting Faculty Program (VFP) Faculty",
		"Term          Last Name     First Name     Institution              Host Lab",
		"Summer 2020   Smith         Jane           Harvard University       Argonne National Laboratory",
		"Summer 2020   Doe           John           Mills College            Sandia National Laboratories / CA",
		"1",
		"\fSummer 2020   Roe   Ann   Fermi Tech   Fermi National Accelerator Laboratory",
		"Summer 2020   Broken   Row",
	}, "\n"))

	people, bad := NoLinesTermLastFirstInstLab{}.Parse(doc, 2020, nil)
	if len(people) != 3 {
		t.Fatalf("people = %d, want 3: %+v", len(people), people)
	}
	if len(bad) != 1 {
		t.Errorf("malformed = %+v", bad)
	}
	p := people[0]
	if p.Program != "VFP" || p.Job != participant.Faculty || p.LastName != "Smith" || p.FirstName != "Jane" {
		t.Errorf("first = %+v", p)
	}
	if p.Lab != "Argonne_National_Laboratory" {
		t.Errorf("lab = %q", p.Lab)
	}
	if people[1].Lab != "Sandia_National_Laboratories_CA" {
		t.Errorf("lab = %q", people[1].Lab)
	}
	if people[2].LastName != "Roe" || people[2].Year != 2020 {
		t.Errorf("page 2 row = %+v", people[2])
	}
}

func TestNoLinesTermLastFirstInstLab_StudentTitle(t *testing.T) {
	doc := mustParse(t, "Science Undergraduate Laboratory Internships (SULI) Participants\n"+
		"Summer 2020   Doe   John   Ohio State University   Oak Ridge National Laboratory\n")
	people, _ := NoLinesTermLastFirstInstLab{}.Parse(doc, 2020, nil)
	if len(people) != 1 || people[0].Job != participant.Student || people[0].Program != "SULI" {
		t.Errorf("people = %+v", people)
	}
}

func TestLinedNameInstLabTerm(t *testing.T) {
	doc := mustParse(t, strings.Join([]string{
		"Science Undergraduate Laboratory Internships (SULI)",
		"| SULI PARTICIPANT | HOME INSTITUTION | HOST LAB | TERM |",
		"| Jane Q Smith | Harvard University | Argonne National Laboratory (ANL) | Summer |",
		"| John Doe | Mills College | Sandia National Laboratories (SNL) | Fall |",
		"| | | | |",
		"\f| SULI PARTICIPANT | HOME INSTITUTION | HOST LAB | TERM |",
		"| Ann Roe | University of New Mexico | Sandia National Laboratories | Spring |",
		"| Pat Poe | Old Dominion University | Thomas Jefferson National Accelerator Facility (TJNA | Summer |",
		"| Broken |",
	}, "\n"))

	people, bad := LinedNameInstLabTerm{}.Parse(doc, 2018, nil)
	if len(people) != 4 {
		t.Fatalf("people = %d, want 4: %+v", len(people), people)
	}
	if len(bad) != 1 {
		t.Errorf("malformed = %+v", bad)
	}

	tests := []struct {
		first, last, lab string
	}{
		{"Jane Q", "Smith", "ANL"},
		{"John", "Doe", "SNL_CA"},
		{"Ann", "Roe", "Sandia_National_Laboratories_NM"},
		{"Pat", "Poe", "Thomas_Jefferson_National_Accelerator_Facility"},
	}
	for i, tt := range tests {
		p := people[i]
		if p.FirstName != tt.first || p.LastName != tt.last || p.Lab != tt.lab {
			t.Errorf("[%d] = %+v, want %s %s @ %s", i, p, tt.first, tt.last, tt.lab)
		}
		if p.Program != "SULI" || p.Job != participant.Student {
			t.Errorf("[%d] program/job = %s/%s", i, p.Program, p.Job)
		}
	}
}

func TestLinedNameInstLabTerm_FacultyHeader(t *testing.T) {
	doc := mustParse(t, "Visiting Faculty Program (VFP)\n| VFP FACULTY | INSTITUTION | LAB | TERM |\n| Jane Smith | MIT | Brookhaven National Laboratory (BNL) | Summer |\n")
	people, _ := LinedNameInstLabTerm{}.Parse(doc, 2017, nil)
	if len(people) != 1 || people[0].Job != participant.Faculty || people[0].Lab != "BNL" {
		t.Errorf("people = %+v", people)
	}
}

func TestLinedNameInstLabArea(t *testing.T) {
	doc := mustParse(t, strings.Join([]string{
		"Office of Science Graduate Student Research (SCGSR) Program",
		"| Name | Institution | Host Lab | Research Area |",
		"| Jane Smith | University of California, Berkeley | Sandia National Laboratories (SNL) | High Energy Physics |",
		"| John Doe | MIT | General Atomics (DIII-D) | Fusion Energy Sciences |",
		"| Ann Roe | Yale University | Brookhaven National Laboratory |",
	}, "\n"))

	people, bad := LinedNameInstLabArea{}.Parse(doc, 2016, nil)
	if len(people) != 2 {
		t.Fatalf("people = %d, want 2: %+v", len(people), people)
	}
	if len(bad) != 1 {
		t.Errorf("malformed = %+v", bad)
	}
	if people[0].Lab != "SNL_CA" || people[0].Topic != "High Energy Physics" || people[0].Job != participant.Student {
		t.Errorf("[0] = %+v", people[0])
	}
	if people[1].Lab != "General_Atomics_DIII_D" || people[1].Program != "SCGSR" {
		t.Errorf("[1] = %+v", people[1])
	}
}

func TestLabKey(t *testing.T) {
	tests := []struct {
		cell, inst, want string
	}{
		{"Argonne National Laboratory (ANL)", "", "ANL"},
		{"Oak Ridge National Laboratory", "", "Oak_Ridge_National_Laboratory"},
		{"Sandia National Laboratories (SNL)", "University of California, Davis", "SNL_CA"},
		{"Sandia National Laboratories (SNL)", "University of New Mexico", "SNL_NM"},
		{"General Atomics", "", "General_Atomics_DIII_D"},
		{"Jefferson Lab (TJNA)", "", "TJNAF"},
		{"Idaho National Laboratory (", "", "Idaho_National_Laboratory"},
	}
	for _, tt := range tests {
		if got := labKey(tt.cell, tt.inst); got != tt.want {
			t.Errorf("labKey(%q, %q) = %q, want %q", tt.cell, tt.inst, got, tt.want)
		}
	}
}
