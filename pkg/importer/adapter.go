package importer

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hazyhaar/wdtsmap/pkg/schools"
)

// Adapter downloads one year's reference locations and writes the backing
// files the schools package loads.
type Adapter interface {
	// ID returns the unique identifier of this adapter (e.g. "edge-2018").
	ID() string
	// Year returns the reference year the adapter produces.
	Year() int
	// Description returns a human-readable description.
	Description() string
	// DefaultURL returns the default source URL used for seeding the database.
	DefaultURL() string
	// License returns the license of the source data.
	License() string
	// Import downloads the source from sourceURL and writes <base>.csv and
	// <base>.gob into schoolsDir, base being the year's file name. It returns
	// the number of rows written.
	Import(ctx context.Context, sourceURL, schoolsDir string, opts schools.LoadOptions) (int, error)
}

var (
	registryMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// Register adds an adapter to the global registry.
func Register(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()
	adapters[a.ID()] = a
}

// Get returns a registered adapter by ID, or an error if not found.
func Get(id string) (Adapter, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := adapters[id]
	if !ok {
		return nil, fmt.Errorf("unknown import source: %q", id)
	}
	return a, nil
}

// ForYear returns the adapter producing year's table.
func ForYear(year int) (Adapter, error) {
	for _, a := range All() {
		if a.Year() == year {
			return a, nil
		}
	}
	return nil, fmt.Errorf("no import source for year %d", year)
}

// All returns all registered adapters sorted by ID.
func All() []Adapter {
	registryMu.RLock()
	defer registryMu.RUnlock()
	result := make([]Adapter, 0, len(adapters))
	for _, a := range adapters {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })
	return result
}
