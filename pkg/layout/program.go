package layout

import (
	"fmt"
	"strings"
)

// Program is a WDTS program whose participant reports can be parsed.
type Program string

const (
	VFP   Program = "VFP"
	SULI  Program = "SULI"
	CCI   Program = "CCI"
	SCGSR Program = "SCGSR"
)

// Programs lists every known program.
var Programs = []Program{VFP, SULI, CCI, SCGSR}

// ParseProgram accepts a program abbreviation in any case.
func ParseProgram(s string) (Program, error) {
	for _, p := range Programs {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown program %q", s)
}
