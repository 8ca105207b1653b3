package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.HarvestInterval.Std() != 2*time.Minute {
		t.Errorf("default harvest interval = %v, want 2m", cfg.HarvestInterval.Std())
	}
	if cfg.TruncateLines != 4 {
		t.Errorf("default truncate lines = %d, want 4", cfg.TruncateLines)
	}
	if cfg.ConverterFormat != "5dpgn" {
		t.Errorf("default converter format = %q, want 5dpgn", cfg.ConverterFormat)
	}
	if cfg.Workers != 0 {
		t.Errorf("default workers = %d, want 0 (auto)", cfg.Workers)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus5d.yaml")
	data := `
staging_dir: /srv/staging
corpus_dir: /srv/corpus
harvest_interval: 30s
watch_staging: true
workers: 6
worker_command: /usr/local/bin/selfplay
worker_args: ["-depth", "3"]
converter: /usr/local/bin/5dconv
rulesets: [standard, princess, defended_pawn]
truncate_lines: 6
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.StagingDir != "/srv/staging" || cfg.CorpusDir != "/srv/corpus" {
		t.Errorf("roots = (%q, %q), want file values", cfg.StagingDir, cfg.CorpusDir)
	}
	if cfg.HarvestInterval.Std() != 30*time.Second {
		t.Errorf("interval = %v, want 30s", cfg.HarvestInterval.Std())
	}
	if !cfg.WatchStaging {
		t.Error("watch_staging not applied")
	}
	if cfg.Workers != 6 {
		t.Errorf("workers = %d, want 6", cfg.Workers)
	}
	if len(cfg.Rulesets) != 3 || cfg.Rulesets[1] != "princess" {
		t.Errorf("rulesets = %v, want the file's three", cfg.Rulesets)
	}
	if cfg.TruncateLines != 6 {
		t.Errorf("truncate_lines = %d, want 6", cfg.TruncateLines)
	}

	// Unset keys keep their defaults.
	if cfg.ConverterFormat != "5dpgn" {
		t.Errorf("converter_format = %q, want default 5dpgn", cfg.ConverterFormat)
	}
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	def := Default()
	if cfg.StagingDir != def.StagingDir || cfg.CorpusDir != def.CorpusDir ||
		cfg.HarvestInterval != def.HarvestInterval || cfg.TruncateLines != def.TruncateLines {
		t.Errorf("Load(\"\") = %+v, want defaults %+v", cfg, def)
	}
}

func TestLoad_BadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("harvest_interval: soonish\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted an unparseable duration")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load of a missing file succeeded")
	}
}
