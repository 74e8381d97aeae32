package resolve

import (
	"log/slog"

	"github.com/hazyhaar/wdtsmap/pkg/schools"
)

// Table is the exact-name lookup the cascade runs against.
type Table interface {
	Lookup(name string) (schools.Row, bool)
}

// Stage names the cascade step that produced an outcome.
type Stage string

const (
	StageExact    Stage = "exact"
	StageAlias    Stage = "alias"
	StageRule     Stage = "rule"
	StageNotFound Stage = "not_found"
)

// Outcome is the result of one resolution. NotFound is an outcome, not an
// error: Institution is nil and Attempted holds the last name looked up.
type Outcome struct {
	Institution *Institution `json:"institution,omitempty"`
	Input       string       `json:"input"`
	Attempted   string       `json:"attempted"`
	Year        int          `json:"year"`
	Stage       Stage        `json:"stage"`
	Rule        *Rule        `json:"rule,omitempty"`
}

// Found reports whether the cascade matched a row.
func (o Outcome) Found() bool {
	return o.Institution != nil
}

// Observer is notified of every outcome (audit trail, metrics).
type Observer func(Outcome)

// Resolver runs the cascade with injected alias and rule tables. It holds no
// mutable state and may be shared.
type Resolver struct {
	aliases   map[string]string
	rules     []Rule
	logger    *slog.Logger
	verbose   bool
	observers []Observer
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for not-found warnings.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// WithVerbose makes unresolved names log a warning. Otherwise they are only
// visible to observers.
func WithVerbose(v bool) Option {
	return func(r *Resolver) { r.verbose = v }
}

// WithObserver registers fn to receive every outcome.
func WithObserver(fn Observer) Option {
	return func(r *Resolver) { r.observers = append(r.observers, fn) }
}

// New creates a Resolver over cfg's tables.
func New(cfg Config, opts ...Option) *Resolver {
	r := &Resolver{
		aliases: cfg.Aliases,
		rules:   cfg.Rules,
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve looks raw up in t: exact name, then the alias substitute, then the
// first rule triggered by the (possibly aliased) name. At most one rule is
// applied, and a failed rule ends the cascade.
func (r *Resolver) Resolve(t Table, raw string, year int) Outcome {
	out := r.resolve(t, raw, year)
	if out.Found() {
		r.logger.Debug("institution resolved", "input", raw, "name", out.Institution.Name, "stage", out.Stage, "year", year)
	} else if r.verbose {
		r.logger.Warn("institution not found", "name", out.Attempted, "input", raw, "year", year)
	}
	for _, fn := range r.observers {
		fn(out)
	}
	return out
}

func (r *Resolver) resolve(t Table, raw string, year int) Outcome {
	name := Normalize(raw)
	out := Outcome{Input: raw, Attempted: name, Year: year, Stage: StageNotFound}

	if row, ok := t.Lookup(name); ok {
		return found(out, row, StageExact)
	}

	if alias, ok := r.aliases[name]; ok {
		name = alias
		out.Attempted = name
		if row, ok := t.Lookup(name); ok {
			return found(out, row, StageAlias)
		}
	}

	rule, ok := firstMatch(r.rules, name)
	if !ok {
		return out
	}
	out.Rule = rule
	out.Attempted = rule.Apply(name)
	if row, ok := t.Lookup(out.Attempted); ok {
		return found(out, row, StageRule)
	}
	return out
}

func found(out Outcome, row schools.Row, stage Stage) Outcome {
	out.Institution = NewInstitution(row)
	out.Stage = stage
	return out
}

// Aliases returns the number of alias entries.
func (r *Resolver) Aliases() int {
	return len(r.aliases)
}

// Rules returns a copy of the rule table in priority order.
func (r *Resolver) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}
