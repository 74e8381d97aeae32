// CLAUDE:SUMMARY Alias and rewrite-rule tables loaded from YAML, with embedded defaults.
package resolve

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/aliases.yaml
var defaultAliasesYAML []byte

//go:embed defaults/rules.yaml
var defaultRulesYAML []byte

// Config holds the resolution tables. It is treated as read-only once handed
// to a Resolver.
type Config struct {
	Aliases map[string]string
	Rules   []Rule
}

type aliasFile struct {
	Aliases map[string]string `yaml:"aliases"`
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// DefaultConfig returns the embedded alias and rule tables.
func DefaultConfig() Config {
	aliases, err := ParseAliases(defaultAliasesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded aliases.yaml: %v", err))
	}
	rules, err := ParseRules(defaultRulesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded rules.yaml: %v", err))
	}
	return Config{Aliases: aliases, Rules: rules}
}

// LoadConfig reads the alias and rule tables. An empty path selects the
// embedded default for that table.
func LoadConfig(aliasesPath, rulesPath string) (Config, error) {
	cfg := DefaultConfig()

	if aliasesPath != "" {
		data, err := os.ReadFile(aliasesPath)
		if err != nil {
			return Config{}, fmt.Errorf("read aliases %s: %w", aliasesPath, err)
		}
		aliases, err := ParseAliases(data)
		if err != nil {
			return Config{}, fmt.Errorf("parse aliases %s: %w", aliasesPath, err)
		}
		cfg.Aliases = aliases
	}

	if rulesPath != "" {
		data, err := os.ReadFile(rulesPath)
		if err != nil {
			return Config{}, fmt.Errorf("read rules %s: %w", rulesPath, err)
		}
		rules, err := ParseRules(data)
		if err != nil {
			return Config{}, fmt.Errorf("parse rules %s: %w", rulesPath, err)
		}
		cfg.Rules = rules
	}
	return cfg, nil
}

// ParseAliases decodes an aliases document. Duplicate keys are rejected by the
// YAML decoder.
func ParseAliases(data []byte) (map[string]string, error) {
	var f aliasFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	for k, v := range f.Aliases {
		if k == "" || v == "" {
			return nil, fmt.Errorf("alias %q -> %q: empty name", k, v)
		}
	}
	if f.Aliases == nil {
		f.Aliases = map[string]string{}
	}
	return f.Aliases, nil
}

// ParseRules decodes and validates an ordered rules document.
func ParseRules(data []byte) ([]Rule, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	for i, r := range f.Rules {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
	}
	return f.Rules, nil
}
