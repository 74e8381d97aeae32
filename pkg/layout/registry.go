// CLAUDE:SUMMARY Explicit (program, year) -> layout strategy table, validated before any report is parsed.
package layout

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hazyhaar/wdtsmap/pkg/schools"
)

// ErrNoStrategy is returned for a (program, year) pair with no known layout.
var ErrNoStrategy = errors.New("no layout strategy")

// Key identifies the layout of one program's report for one year.
type Key struct {
	Program Program
	Year    int
}

// Input is one report to scrape.
type Input struct {
	Path    string  `yaml:"path" json:"path"`
	Program Program `yaml:"program" json:"program"`
	Year    int     `yaml:"year" json:"year"`
}

// Registry maps (program, year) pairs to strategies.
type Registry struct {
	strategies map[Key]Strategy
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[Key]Strategy)}
}

// DefaultRegistry returns the layouts of the published WDTS reports.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, p := range []Program{VFP, SULI, CCI} {
		r.Register(p, 2021, NoLinesProgramNameInstLab{})
		r.Register(p, 2020, NoLinesTermLastFirstInstLab{})
		for y := 2015; y <= 2019; y++ {
			r.Register(p, y, LinedNameInstLabTerm{})
		}
	}
	r.Register(SULI, 2014, LinedNameInstLabTerm{})
	r.Register(CCI, 2014, LinedNameInstLabTerm{})
	for y := 2014; y <= 2021; y++ {
		r.Register(SCGSR, y, LinedNameInstLabArea{})
	}
	return r
}

// Register sets the strategy for a program and year.
func (r *Registry) Register(p Program, year int, s Strategy) {
	r.strategies[Key{p, year}] = s
}

// Lookup returns the strategy for a program and year.
func (r *Registry) Lookup(p Program, year int) (Strategy, error) {
	s, ok := r.strategies[Key{p, year}]
	if !ok {
		return nil, fmt.Errorf("%w for %s %d", ErrNoStrategy, p, year)
	}
	return s, nil
}

// Keys returns the registered pairs ordered by program then year.
func (r *Registry) Keys() []Key {
	keys := make([]Key, 0, len(r.strategies))
	for k := range r.strategies {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Program != keys[j].Program {
			return keys[i].Program < keys[j].Program
		}
		return keys[i].Year < keys[j].Year
	})
	return keys
}

// Validate checks every input before any work starts: the year must have a
// reference table and the (program, year) pair a strategy. All problems are
// reported together.
func (r *Registry) Validate(inputs []Input) error {
	if len(inputs) == 0 {
		return errors.New("no input reports")
	}
	var errs []error
	for _, in := range inputs {
		if err := schools.CheckYear(in.Year); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", in.Path, err))
			continue
		}
		if _, err := r.Lookup(in.Program, in.Year); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", in.Path, err))
		}
	}
	return errors.Join(errs...)
}
