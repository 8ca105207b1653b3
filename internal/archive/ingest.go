// Package archive bulk-loads a historical game dump into the corpus. The
// dump is organized by outcome only; each record's ruleset comes from its
// header tags and is checked against an allow-list. Every accepted record
// yields two corpus entries: the full game in the checkmate partition and a
// pre-terminal truncation in the nonmate partition, both routed through the
// same convert + canonicalize path the harvester uses.
package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"corpus5d/internal/canonical"
	"corpus5d/internal/corpus"
	"corpus5d/internal/record"
)

// Partition names gained by the corpus root when populated from an archive.
const (
	PartitionCheckmate = "checkmate"
	PartitionNonmate   = "nonmate"
)

// Config configures a batch ingest run.
type Config struct {
	ArchiveDir    string         // Dump root, organized as <outcome>/<sequence>.<ext>[.zst]
	ScratchDir    string         // Working area for record copies; temp dir if empty
	Rulesets      []string       // Ruleset allow-list (normalized or raw tag values)
	TruncateLines int            // Move-text lines dropped for the nonmate class, default 4
	Logger        zerolog.Logger // Logger
}

// Stats summarizes a batch run.
type Stats struct {
	Scanned   int // archive files seen
	Skipped   int // ruleset tag not in the allow-list
	Checkmate int // entries written to the checkmate partition
	Nonmate   int // entries written to the nonmate partition
	Dropped   int // records or truncations with no move text to commit
	Errors    int // records that failed and were skipped
}

// Ingestor is the one-shot batch counterpart to the harvester.
type Ingestor struct {
	cfg       Config
	allow     map[string]bool
	checkmate *canonical.Canonicalizer
	nonmate   *canonical.Canonicalizer
	log       zerolog.Logger
}

// NewIngestor creates a batch ingestor writing into the checkmate and
// nonmate partitions of store.
func NewIngestor(cfg Config, conv canonical.MoveConverter, store *corpus.Store) (*Ingestor, error) {
	if cfg.ArchiveDir == "" {
		return nil, errors.New("archive: dump directory required")
	}
	if len(cfg.Rulesets) == 0 {
		return nil, errors.New("archive: ruleset allow-list required")
	}
	if cfg.TruncateLines == 0 {
		cfg.TruncateLines = 4
	}

	allow := make(map[string]bool, len(cfg.Rulesets))
	for _, r := range cfg.Rulesets {
		allow[record.NormalizeRuleset(r)] = true
	}

	return &Ingestor{
		cfg:       cfg,
		allow:     allow,
		checkmate: canonical.New(conv, store.Partition(PartitionCheckmate)),
		nonmate:   canonical.New(conv, store.Partition(PartitionNonmate)),
		log:       cfg.Logger,
	}, nil
}

// Run processes the whole dump, continue-on-error, and returns the run's
// stats. The returned error is only non-nil when the run itself could not
// proceed (unreadable dump, no scratch space); per-record failures are
// reported through Stats.Errors.
func (i *Ingestor) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	scratch := i.cfg.ScratchDir
	if scratch == "" {
		dir, err := os.MkdirTemp("", "corpus5d-archive-")
		if err != nil {
			return stats, fmt.Errorf("create scratch dir: %w", err)
		}
		defer os.RemoveAll(dir)
		scratch = dir
	} else if err := os.MkdirAll(scratch, 0755); err != nil {
		return stats, fmt.Errorf("create scratch dir: %w", err)
	}

	entries, err := os.ReadDir(i.cfg.ArchiveDir)
	if err != nil {
		return stats, fmt.Errorf("open archive dir: %w", err)
	}

	startTime := time.Now()
	lastLog := time.Now()

	for _, outcomeDir := range entries {
		if !outcomeDir.IsDir() {
			continue
		}
		dirPath := filepath.Join(i.cfg.ArchiveDir, outcomeDir.Name())
		files, err := os.ReadDir(dirPath)
		if err != nil {
			i.log.Error().Err(err).Str("dir", dirPath).Msg("read outcome dir failed")
			stats.Errors++
			continue
		}

		for _, f := range files {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			if f.IsDir() || strings.HasPrefix(f.Name(), ".") {
				continue
			}

			stats.Scanned++
			i.processRecord(ctx, filepath.Join(dirPath, f.Name()), scratch, &stats)

			if time.Since(lastLog) > 10*time.Second {
				i.log.Info().
					Int("scanned", stats.Scanned).
					Int("skipped", stats.Skipped).
					Int("checkmate", stats.Checkmate).
					Int("nonmate", stats.Nonmate).
					Int("errors", stats.Errors).
					Float64("files_per_sec", float64(stats.Scanned)/time.Since(startTime).Seconds()).
					Msg("ingest progress")
				lastLog = time.Now()
			}
		}
	}

	return stats, nil
}

// processRecord ingests one archive file into both partitions.
func (i *Ingestor) processRecord(ctx context.Context, path, scratch string, stats *Stats) {
	outcome, seq, ext, err := record.ParseArchiveKey(i.cfg.ArchiveDir, path)
	if err != nil {
		stats.Errors++
		i.log.Warn().Err(err).Str("file", path).Msg("bad archive path, skipping")
		return
	}

	data, err := record.ReadFile(path)
	if err != nil {
		stats.Errors++
		i.log.Warn().Err(err).Str("file", path).Msg("read archive record failed")
		return
	}

	rec := record.Parse(data)
	ruleset, ok := rec.RulesetTag()
	if !ok {
		stats.Errors++
		i.log.Warn().Str("file", path).Msg("archive record has no Board tag, skipping")
		return
	}
	if !i.allow[ruleset] {
		// Unsupported variant: never staged, never an error.
		stats.Skipped++
		i.log.Debug().Str("file", path).Str("ruleset", ruleset).Msg("ruleset not allow-listed")
		return
	}

	key := record.PathKey{Ruleset: ruleset, Outcome: outcome, Seq: seq, Ext: ext}

	// Checkmate class: the record verbatim, through the shared pipeline.
	full := filepath.Join(scratch, fmt.Sprintf("chk-%s-%s-%d%s", ruleset, outcome, seq, ext))
	if err := os.WriteFile(full, data, 0644); err != nil {
		stats.Errors++
		i.log.Warn().Err(err).Str("file", path).Msg("stage checkmate copy failed")
		return
	}
	defer os.Remove(full)

	switch _, err := i.checkmate.Commit(ctx, full, key); {
	case errors.Is(err, canonical.ErrEmptyRecord):
		stats.Dropped++
		return // nothing to truncate either
	case err != nil:
		stats.Errors++
		i.log.Warn().Err(err).Str("file", path).Msg("checkmate ingest failed")
	default:
		stats.Checkmate++
	}

	// Nonmate class: drop the terminal plies to get a search seed.
	truncated, ok := rec.TruncateMoves(i.cfg.TruncateLines)
	if !ok {
		// Too short to survive truncation; no usable seed in this game.
		stats.Dropped++
		i.log.Debug().Str("file", path).Msg("record too short for nonmate derivation")
		return
	}

	pre := filepath.Join(scratch, fmt.Sprintf("non-%s-%s-%d%s", ruleset, outcome, seq, ext))
	if err := os.WriteFile(pre, truncated.Render(), 0644); err != nil {
		stats.Errors++
		i.log.Warn().Err(err).Str("file", path).Msg("stage nonmate copy failed")
		return
	}
	defer os.Remove(pre)

	switch _, err := i.nonmate.Commit(ctx, pre, key); {
	case errors.Is(err, canonical.ErrEmptyRecord):
		stats.Dropped++
	case err != nil:
		stats.Errors++
		i.log.Warn().Err(err).Str("file", path).Msg("nonmate ingest failed")
	default:
		stats.Nonmate++
	}
}
