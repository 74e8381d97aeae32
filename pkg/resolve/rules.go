// CLAUDE:SUMMARY Rewrite rules (literal, replace, prefix+replace, double replace) tried after exact and alias lookups.
package resolve

import (
	"fmt"
	"strings"
)

// RuleKind selects how a rule rewrites a name.
type RuleKind string

const (
	// KindLiteral substitutes Name for the whole input.
	KindLiteral RuleKind = "literal"
	// KindReplace replaces Find with Replace.
	KindReplace RuleKind = "replace"
	// KindPrefixReplace prepends Prefix to the result of replacing Find with Replace.
	KindPrefixReplace RuleKind = "prefix_replace"
	// KindDoubleReplace replaces Find with Replace, then ThenFind with ThenReplace.
	KindDoubleReplace RuleKind = "double_replace"
)

// Rule is one entry of the ordered rewrite table.
type Rule struct {
	Trigger     string   `yaml:"trigger" json:"trigger"`
	Kind        RuleKind `yaml:"kind" json:"kind"`
	Name        string   `yaml:"name,omitempty" json:"name,omitempty"`
	Prefix      string   `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Find        string   `yaml:"find,omitempty" json:"find,omitempty"`
	Replace     string   `yaml:"replace,omitempty" json:"replace,omitempty"`
	ThenFind    string   `yaml:"then_find,omitempty" json:"then_find,omitempty"`
	ThenReplace string   `yaml:"then_replace,omitempty" json:"then_replace,omitempty"`
}

// Matches reports whether the rule's trigger occurs in name.
func (r Rule) Matches(name string) bool {
	return strings.Contains(name, r.Trigger)
}

// Apply rewrites name according to the rule's kind. Replacements apply to
// every occurrence.
func (r Rule) Apply(name string) string {
	switch r.Kind {
	case KindLiteral:
		return r.Name
	case KindReplace:
		return strings.ReplaceAll(name, r.Find, r.Replace)
	case KindPrefixReplace:
		return r.Prefix + strings.ReplaceAll(name, r.Find, r.Replace)
	case KindDoubleReplace:
		return strings.ReplaceAll(strings.ReplaceAll(name, r.Find, r.Replace), r.ThenFind, r.ThenReplace)
	}
	return name
}

// Validate checks that the rule carries exactly the fields its kind uses.
func (r Rule) Validate() error {
	if r.Trigger == "" {
		return fmt.Errorf("empty trigger")
	}
	switch r.Kind {
	case KindLiteral:
		if r.Name == "" {
			return fmt.Errorf("trigger %q: literal rule needs name", r.Trigger)
		}
		if r.Find != "" || r.Prefix != "" || r.ThenFind != "" {
			return fmt.Errorf("trigger %q: literal rule takes only name", r.Trigger)
		}
	case KindReplace, KindPrefixReplace, KindDoubleReplace:
		if r.Find == "" {
			return fmt.Errorf("trigger %q: %s rule needs find", r.Trigger, r.Kind)
		}
		if r.Name != "" {
			return fmt.Errorf("trigger %q: %s rule does not take name", r.Trigger, r.Kind)
		}
		if r.Kind == KindPrefixReplace && r.Prefix == "" {
			return fmt.Errorf("trigger %q: prefix_replace rule needs prefix", r.Trigger)
		}
		if r.Kind != KindPrefixReplace && r.Prefix != "" {
			return fmt.Errorf("trigger %q: %s rule does not take prefix", r.Trigger, r.Kind)
		}
		if r.Kind == KindDoubleReplace && r.ThenFind == "" {
			return fmt.Errorf("trigger %q: double_replace rule needs then_find", r.Trigger)
		}
		if r.Kind != KindDoubleReplace && (r.ThenFind != "" || r.ThenReplace != "") {
			return fmt.Errorf("trigger %q: %s rule does not take then_find", r.Trigger, r.Kind)
		}
	default:
		return fmt.Errorf("trigger %q: unknown rule kind %q", r.Trigger, r.Kind)
	}
	return nil
}

// firstMatch returns the first rule, in table order, triggered by name.
func firstMatch(rules []Rule, name string) (*Rule, bool) {
	for i := range rules {
		if rules[i].Matches(name) {
			return &rules[i], true
		}
	}
	return nil, false
}
