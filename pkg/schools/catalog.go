package schools

import (
	"sort"
	"sync"
)

// Catalog memoizes augmented tables by year for one processing session.
// A new session gets a new Catalog, so tables are reloaded and re-augmented.
type Catalog struct {
	mu     sync.Mutex
	dir    string
	opts   LoadOptions
	tables map[int]*Table
	loads  int
}

// NewCatalog creates an empty catalog reading backing files from dir.
func NewCatalog(dir string, opts LoadOptions) *Catalog {
	return &Catalog{
		dir:    dir,
		opts:   opts,
		tables: make(map[int]*Table),
	}
}

// Table returns the augmented table for year, loading it on first use.
// Load failures are not cached.
func (c *Catalog) Table(year int) (*Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.tables[year]; ok {
		return t, nil
	}
	t, err := LoadAugmented(c.dir, year, c.opts)
	if err != nil {
		return nil, err
	}
	c.loads++
	c.opts.logger().Info("reference table loaded", "year", year, "rows", t.Len())
	c.tables[year] = t
	return t, nil
}

// Years returns the loaded years in ascending order.
func (c *Catalog) Years() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	years := make([]int, 0, len(c.tables))
	for y := range c.tables {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Loads returns how many backing files have been read.
func (c *Catalog) Loads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loads
}

// Dir returns the directory holding the backing files.
func (c *Catalog) Dir() string {
	return c.dir
}
