package layout

import (
	"errors"
	"testing"

	"github.com/hazyhaar/wdtsmap/pkg/schools"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		program Program
		year    int
		want    string
	}{
		{VFP, 2021, NoLinesProgramNameInstLab{}.Name()},
		{SULI, 2020, NoLinesTermLastFirstInstLab{}.Name()},
		{CCI, 2016, LinedNameInstLabTerm{}.Name()},
		{SULI, 2014, LinedNameInstLabTerm{}.Name()},
		{SCGSR, 2021, LinedNameInstLabArea{}.Name()},
		{SCGSR, 2014, LinedNameInstLabArea{}.Name()},
	}
	for _, tt := range tests {
		s, err := r.Lookup(tt.program, tt.year)
		if err != nil {
			t.Errorf("Lookup(%s, %d): %v", tt.program, tt.year, err)
			continue
		}
		if s.Name() != tt.want {
			t.Errorf("Lookup(%s, %d) = %s, want %s", tt.program, tt.year, s.Name(), tt.want)
		}
	}

	for _, k := range []Key{{VFP, 2014}, {VFP, 2022}, {SCGSR, 2013}} {
		if _, err := r.Lookup(k.Program, k.Year); !errors.Is(err, ErrNoStrategy) {
			t.Errorf("Lookup(%s, %d) err = %v, want ErrNoStrategy", k.Program, k.Year, err)
		}
	}

	if got := len(r.Keys()); got != 31 {
		t.Errorf("keys = %d, want 31", got)
	}
}

func TestRegistryValidate(t *testing.T) {
	r := DefaultRegistry()

	if err := r.Validate([]Input{{Path: "a.pdf", Program: VFP, Year: 2021}, {Path: "b.pdf", Program: SCGSR, Year: 2015}}); err != nil {
		t.Errorf("Validate: %v", err)
	}

	err := r.Validate([]Input{
		{Path: "ok.pdf", Program: VFP, Year: 2019},
		{Path: "old.pdf", Program: SULI, Year: 2014},
		{Path: "future.pdf", Program: VFP, Year: 2030},
	})
	if !errors.Is(err, schools.ErrUnsupportedYear) {
		t.Errorf("err = %v, want ErrUnsupportedYear", err)
	}
	if !errors.Is(err, ErrNoStrategy) {
		t.Errorf("err = %v, want ErrNoStrategy", err)
	}

	if err := r.Validate(nil); err == nil {
		t.Error("expected error for no inputs")
	}
}

func TestParseProgram(t *testing.T) {
	if p, err := ParseProgram("scgsr"); err != nil || p != SCGSR {
		t.Errorf("ParseProgram(scgsr) = %s, %v", p, err)
	}
	if _, err := ParseProgram("REU"); err == nil {
		t.Error("expected error for unknown program")
	}
}
