package resolve

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.Aliases) < 150 {
		t.Errorf("aliases = %d, want the full curated table", len(cfg.Aliases))
	}
	if got := cfg.Aliases["The Ohio State University Main Campus"]; got != "Ohio State University-Main Campus" {
		t.Errorf("Ohio State alias = %q", got)
	}
	if len(cfg.Rules) != 29 {
		t.Fatalf("rules = %d, want 29", len(cfg.Rules))
	}
	if cfg.Rules[0].Trigger != "/City University of New York" {
		t.Errorf("first rule = %q", cfg.Rules[0].Trigger)
	}
	if cfg.Rules[len(cfg.Rules)-1].Trigger != " - " {
		t.Errorf("last rule = %q, want the generic dash rule", cfg.Rules[len(cfg.Rules)-1].Trigger)
	}
}

func TestDefaultRules_SpecificBeforeGeneric(t *testing.T) {
	rules := DefaultConfig().Rules
	pos := make(map[string]int, len(rules))
	for i, r := range rules {
		pos[r.Trigger] = i
	}
	ordered := [][2]string{
		{"/City University of New York", "City University of New York"},
		{"-City University of New York", "City University of New York"},
		{"St. John Fisher College", "St. "},
		{"A&M", " - "},
		{"Main Campus", " - "},
	}
	for _, pair := range ordered {
		if pos[pair[0]] >= pos[pair[1]] {
			t.Errorf("rule %q (%d) must precede %q (%d)", pair[0], pos[pair[0]], pair[1], pos[pair[1]])
		}
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	dir := t.TempDir()
	aliases := filepath.Join(dir, "aliases.yaml")
	rules := filepath.Join(dir, "rules.yaml")
	os.WriteFile(aliases, []byte("aliases:\n  \"Old Name\": \"New Name\"\n"), 0o644)
	os.WriteFile(rules, []byte(`rules:
  - trigger: "Coll."
    kind: replace
    find: "Coll."
    replace: "College"
`), 0o644)

	cfg, err := LoadConfig(aliases, rules)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.Aliases) != 1 || cfg.Aliases["Old Name"] != "New Name" {
		t.Errorf("aliases = %v", cfg.Aliases)
	}
	if len(cfg.Rules) != 1 || cfg.Rules[0].Replace != "College" {
		t.Errorf("rules = %+v", cfg.Rules)
	}

	// Empty paths fall back to the embedded tables.
	cfg, err = LoadConfig("", rules)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.Aliases) < 150 || len(cfg.Rules) != 1 {
		t.Errorf("aliases = %d, rules = %d", len(cfg.Aliases), len(cfg.Rules))
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml"), ""); err == nil {
		t.Error("expected error for missing aliases file")
	}

	bad := filepath.Join(dir, "bad-rules.yaml")
	os.WriteFile(bad, []byte("rules:\n  - trigger: x\n    kind: literal\n"), 0o644)
	if _, err := LoadConfig("", bad); err == nil {
		t.Error("expected validation error for literal rule without name")
	}

	dup := filepath.Join(dir, "dup-aliases.yaml")
	os.WriteFile(dup, []byte("aliases:\n  \"A\": \"B\"\n  \"A\": \"C\"\n"), 0o644)
	if _, err := LoadConfig(dup, ""); err == nil {
		t.Error("expected error for duplicate alias keys")
	}

	empty := filepath.Join(dir, "empty-alias.yaml")
	os.WriteFile(empty, []byte("aliases:\n  \"A\": \"\"\n"), 0o644)
	if _, err := LoadConfig(empty, ""); err == nil {
		t.Error("expected error for empty alias value")
	}
}
