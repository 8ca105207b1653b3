// Package config loads the shared pipeline configuration. Every knob has a
// sane default; a YAML file fills in deployment specifics and each binary's
// flags override individual values on top.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "120s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full set of recognized pipeline options.
type Config struct {
	StagingDir      string   `yaml:"staging_dir"`
	CorpusDir       string   `yaml:"corpus_dir"`
	HarvestInterval Duration `yaml:"harvest_interval"` // sleep between harvest sweeps
	WatchStaging    bool     `yaml:"watch_staging"`    // wake the harvester on staging activity

	Workers       int      `yaml:"workers"`        // 0 = logical cores - 1
	WorkerCommand string   `yaml:"worker_command"` // self-play simulator binary
	WorkerArgs    []string `yaml:"worker_args"`

	ConverterBin    string `yaml:"converter"`        // notation converter binary
	ConverterFormat string `yaml:"converter_format"` // target encoding identifier

	Rulesets      []string `yaml:"rulesets"`       // allow-list for archive ingestion
	TruncateLines int      `yaml:"truncate_lines"` // nonmate derivation, trailing move lines dropped
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		StagingDir:      "./data/staging",
		CorpusDir:       "./data/corpus",
		HarvestInterval: Duration(2 * time.Minute),
		ConverterFormat: "5dpgn",
		TruncateLines:   4,
	}
}

// Load returns the defaults overlaid with the YAML file at path. An empty
// path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
