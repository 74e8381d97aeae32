package api

import (
	"fmt"
	"sync/atomic"

	"github.com/hazyhaar/wdtsmap/pkg/lab"
	"github.com/hazyhaar/wdtsmap/pkg/resolve"
	"github.com/hazyhaar/wdtsmap/pkg/schools"
)

// Service is the state shared by the HTTP and MCP transports. The catalog
// can be swapped at runtime; each swap starts a new session, so tables are
// reloaded from disk on next use.
type Service struct {
	resolver    *resolve.Resolver
	labs        *lab.Registry
	metrics     *Metrics
	currentYear int
	catalog     atomic.Pointer[schools.Catalog]
}

// NewService wires a resolver, a catalog and the laboratory registry.
// metrics may be nil. currentYear is the default year of a query.
func NewService(r *resolve.Resolver, cat *schools.Catalog, labs *lab.Registry, metrics *Metrics, currentYear int) *Service {
	if currentYear == 0 {
		currentYear = schools.DefaultCurrentYear
	}
	s := &Service{
		resolver:    r,
		labs:        labs,
		metrics:     metrics,
		currentYear: currentYear,
	}
	s.catalog.Store(cat)
	return s
}

// Catalog returns the catalog of the current session.
func (s *Service) Catalog() *schools.Catalog {
	return s.catalog.Load()
}

// Swap installs a fresh catalog.
func (s *Service) Swap(cat *schools.Catalog) {
	s.catalog.Store(cat)
	if s.metrics != nil {
		s.metrics.TableRows.Reset()
	}
}

// CurrentYear is the year used when a query does not name one.
func (s *Service) CurrentYear() int {
	return s.currentYear
}

// Resolve resolves one raw name against the table of year. A zero year
// means the current year. NotFound is reported in the outcome; errors are
// only returned when the table cannot be obtained.
func (s *Service) Resolve(name string, year int) (resolve.Outcome, error) {
	if year == 0 {
		year = s.currentYear
	}
	t, err := s.Catalog().Table(year)
	if err != nil {
		return resolve.Outcome{}, fmt.Errorf("reference table %d: %w", year, err)
	}
	out := s.resolver.Resolve(t, name, year)
	if s.metrics != nil {
		s.metrics.SetTableRows(year, t.Len())
		s.metrics.Observe(out)
	}
	return out, nil
}

// Years lists the supported years and the ones loaded in this session.
func (s *Service) Years() (supported, loaded []int) {
	for y := schools.MinYear; y <= s.currentYear; y++ {
		supported = append(supported, y)
	}
	return supported, s.Catalog().Years()
}
