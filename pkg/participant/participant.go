// CLAUDE:SUMMARY Participant records: raw layout fields combined with a resolved institution and host laboratory.
package participant

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/hazyhaar/wdtsmap/pkg/lab"
	"github.com/hazyhaar/wdtsmap/pkg/resolve"
	"github.com/hazyhaar/wdtsmap/pkg/schools"
)

// ErrNoTopics is returned by FilterByTopic when no topic keywords are given.
var ErrNoTopics = errors.New("topic filter needs at least one keyword")

// DefaultTopics are the research-topic keywords kept by the topic filter.
var DefaultTopics = []string{"HEP", "High Energy Physics"}

// Fields is one participant row as extracted from a report, before any
// resolution. Lab holds a laboratory key (canonical or alias).
type Fields struct {
	Program     string `json:"program"`
	Job         Job    `json:"job"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Institution string `json:"institution"`
	Lab         string `json:"lab"`
	Topic       string `json:"topic,omitempty"`
	Year        int    `json:"year"`
}

// Participant is a fully assembled record. Institution is nil when the home
// institution could not be resolved.
type Participant struct {
	Program        string               `json:"program"`
	Job            Job                  `json:"job"`
	FirstName      string               `json:"first_name"`
	LastName       string               `json:"last_name"`
	RawInstitution string               `json:"raw_institution"`
	Institution    *resolve.Institution `json:"institution,omitempty"`
	Lab            *lab.Laboratory      `json:"lab"`
	Topic          string               `json:"topic,omitempty"`
	Year           int                  `json:"year"`
}

// Name returns "Last, First".
func (p Participant) Name() string {
	return fmt.Sprintf("%s, %s", p.LastName, p.FirstName)
}

func (p Participant) String() string {
	inst := "<unresolved " + p.RawInstitution + ">"
	if p.Institution != nil {
		inst = p.Institution.Name
	}
	return fmt.Sprintf("%s | %s | %s | %s | %s | %s | %d", p.Program, p.Job, p.Name(), inst, p.Lab, p.Topic, p.Year)
}

// Tables supplies the reference table for a year.
type Tables interface {
	Table(year int) (*schools.Table, error)
}

// Assembler turns extracted fields into participants.
type Assembler struct {
	Resolver *resolve.Resolver
	Tables   Tables
	Labs     *lab.Registry
	Logger   *slog.Logger
}

func (a *Assembler) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// Assemble resolves the home institution and host laboratory of f. An
// unresolved institution is not an error; an unknown laboratory or an
// unloadable reference table is.
func (a *Assembler) Assemble(f Fields) (Participant, error) {
	l, err := a.Labs.Lookup(f.Lab)
	if err != nil {
		return Participant{}, err
	}
	t, err := a.Tables.Table(f.Year)
	if err != nil {
		return Participant{}, fmt.Errorf("reference table %d: %w", f.Year, err)
	}
	out := a.Resolver.Resolve(t, f.Institution, f.Year)

	return Participant{
		Program:        f.Program,
		Job:            f.Job,
		FirstName:      f.FirstName,
		LastName:       f.LastName,
		RawInstitution: f.Institution,
		Institution:    out.Institution,
		Lab:            l,
		Topic:          f.Topic,
		Year:           f.Year,
	}, nil
}

// AssembleAll assembles every row, skipping rows whose laboratory is unknown.
// Other errors abort.
func (a *Assembler) AssembleAll(rows []Fields) ([]Participant, error) {
	people := make([]Participant, 0, len(rows))
	for _, f := range rows {
		p, err := a.Assemble(f)
		if errors.Is(err, lab.ErrUnknownLaboratory) {
			a.logger().Warn("row skipped", "participant", f.LastName+", "+f.FirstName, "lab", f.Lab, "error", err)
			continue
		}
		if err != nil {
			return people, err
		}
		people = append(people, p)
	}
	return people, nil
}

// SortByJob orders people by job name, keeping the input order within a job.
func SortByJob(people []Participant) {
	sort.SliceStable(people, func(i, j int) bool { return people[i].Job < people[j].Job })
}

// FilterByTopic keeps people whose topic contains any of topics. Unless
// strict, people with no recorded topic are kept as well.
func FilterByTopic(people []Participant, strict bool, topics []string) ([]Participant, error) {
	if len(topics) == 0 {
		return nil, ErrNoTopics
	}
	var out []Participant
	for _, p := range people {
		if (!strict && p.Topic == "") || containsAny(p.Topic, topics) {
			out = append(out, p)
		}
	}
	return out, nil
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
