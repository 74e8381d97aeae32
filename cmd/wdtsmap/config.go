package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/wdtsmap/pkg/layout"
	"github.com/hazyhaar/wdtsmap/pkg/participant"
	"github.com/hazyhaar/wdtsmap/pkg/schools"
)

type config struct {
	Addr        string `yaml:"addr"`
	SchoolsDir  string `yaml:"schools_dir"`
	CurrentYear int    `yaml:"current_year"`
	Encoding    string `yaml:"encoding"`
	// Aliases, Rules and Labs override the embedded tables when set.
	Aliases   string `yaml:"aliases"`
	Rules     string `yaml:"rules"`
	Labs      string `yaml:"labs"`
	AuditDB   string `yaml:"audit_db"`
	SourcesDB string `yaml:"sources_db"`
	OutputDir string `yaml:"output_dir"`

	Inputs        []layout.Input `yaml:"inputs"`
	Formats       []string       `yaml:"formats"`
	NoLines       bool           `yaml:"no_lines"`
	FilterByTopic bool           `yaml:"filter_by_topic"`
	StrictFilter  bool           `yaml:"strict_filtering"`
	Topics        []string       `yaml:"topics"`
}

func defaultConfig() config {
	return config{
		Addr:        ":8430",
		SchoolsDir:  "schools",
		CurrentYear: schools.DefaultCurrentYear,
		AuditDB:     "wdtsmap.db",
		SourcesDB:   "schools/sources.db",
		OutputDir:   ".",
		Formats:     []string{"geojson"},
		Topics:      participant.DefaultTopics,
	}
}

// loadConfig reads path over the defaults. A missing file is not an error.
func loadConfig(path string, logger *slog.Logger) (config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("no config file, using defaults", "path", path)
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c config) loadOptions(logger *slog.Logger) schools.LoadOptions {
	return schools.LoadOptions{
		CurrentYear: c.CurrentYear,
		Encoding:    c.Encoding,
		Logger:      logger,
	}
}
