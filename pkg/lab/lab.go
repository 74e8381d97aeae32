// CLAUDE:SUMMARY DOE laboratory registry: canonical keys, alias keys, and fixed locations loaded from embedded YAML.
package lab

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed labs.yaml
var defaultLabsYAML []byte

// ErrUnknownLaboratory is returned when a key names no laboratory.
var ErrUnknownLaboratory = errors.New("unknown laboratory")

// Laboratory is an immutable host laboratory record.
type Laboratory struct {
	Key          string   `yaml:"key" json:"key"`
	Name         string   `yaml:"name" json:"name"`
	Abbreviation string   `yaml:"abbreviation" json:"abbreviation"`
	City         string   `yaml:"city" json:"city"`
	State        string   `yaml:"state" json:"state"`
	Latitude     float64  `yaml:"latitude" json:"latitude"`
	Longitude    float64  `yaml:"longitude" json:"longitude"`
	Aliases      []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
}

// Location returns "City, ST".
func (l *Laboratory) Location() string {
	return fmt.Sprintf("%s, %s", l.City, l.State)
}

func (l *Laboratory) String() string {
	return fmt.Sprintf("%s (%s)", l.Name, l.Abbreviation)
}

// Registry maps canonical and alias keys to laboratories.
type Registry struct {
	labs    map[string]*Laboratory
	aliases map[string]string
	keys    []string
}

type labFile struct {
	Laboratories []*Laboratory `yaml:"laboratories"`
}

// Default returns the registry of built-in laboratories.
func Default() *Registry {
	r, err := Parse(defaultLabsYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded labs.yaml: %v", err))
	}
	return r
}

// Parse builds a registry from a laboratories YAML document. Keys and aliases
// must be unique across the whole document.
func Parse(data []byte) (*Registry, error) {
	var f labFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	r := &Registry{
		labs:    make(map[string]*Laboratory, len(f.Laboratories)),
		aliases: make(map[string]string),
	}
	for _, l := range f.Laboratories {
		if l.Key == "" || l.Name == "" {
			return nil, fmt.Errorf("laboratory %q: key and name required", l.Key)
		}
		if r.known(l.Key) {
			return nil, fmt.Errorf("duplicate laboratory key %q", l.Key)
		}
		r.labs[l.Key] = l
		r.keys = append(r.keys, l.Key)
	}
	for _, l := range f.Laboratories {
		for _, a := range l.Aliases {
			if r.known(a) {
				return nil, fmt.Errorf("laboratory %s: duplicate alias %q", l.Key, a)
			}
			r.aliases[a] = l.Key
		}
	}
	sort.Strings(r.keys)
	return r, nil
}

func (r *Registry) known(key string) bool {
	_, lab := r.labs[key]
	_, alias := r.aliases[key]
	return lab || alias
}

// Lookup resolves a canonical or alias key.
func (r *Registry) Lookup(key string) (*Laboratory, error) {
	if l, ok := r.labs[key]; ok {
		return l, nil
	}
	if canon, ok := r.aliases[key]; ok {
		return r.labs[canon], nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownLaboratory, key)
}

// Keys returns the canonical keys, sorted.
func (r *Registry) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Names returns every accepted key, canonical and alias.
func (r *Registry) Names() []string {
	out := r.Keys()
	for a := range r.aliases {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// All returns the laboratories ordered by canonical key.
func (r *Registry) All() []*Laboratory {
	out := make([]*Laboratory, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, r.labs[k])
	}
	return out
}
