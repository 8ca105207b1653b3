// Package harvest runs the control loop that moves staged self-play records
// into the corpus. Each cycle enumerates the staging tree, drives every
// record through convert + canonicalize + store, and deletes a staging file
// only after its corpus write is confirmed. Failures are per-record: a bad
// file is logged and left in place for the next cycle.
package harvest

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"corpus5d/internal/canonical"
	"corpus5d/internal/record"
)

// Config configures the harvester.
type Config struct {
	StagingDir    string         // Staging tree produced by the self-play workers
	Interval      time.Duration  // Sleep between sweeps, default 2m
	Watch         bool           // Wake early on staging activity (fsnotify)
	WatchDebounce time.Duration  // Quiet period before a watch wake-up, default 2s
	Logger        zerolog.Logger // Logger
}

// Stats summarizes one sweep of the staging tree.
type Stats struct {
	Scanned   int // record files seen
	Committed int // written to the corpus and removed from staging
	Dropped   int // empty records removed with nothing to commit
	Failed    int // left in staging for retry
}

// Harvester periodically sweeps the staging area.
type Harvester struct {
	cfg   Config
	canon *canonical.Canonicalizer
	log   zerolog.Logger
}

// New creates a harvester. The staging directory is created if absent so a
// fresh deployment starts clean.
func New(cfg Config, canon *canonical.Canonicalizer) (*Harvester, error) {
	if cfg.Interval == 0 {
		cfg.Interval = 2 * time.Minute
	}
	if cfg.WatchDebounce == 0 {
		cfg.WatchDebounce = 2 * time.Second
	}
	if err := os.MkdirAll(cfg.StagingDir, 0755); err != nil {
		return nil, err
	}
	return &Harvester{cfg: cfg, canon: canon, log: cfg.Logger}, nil
}

// Run sweeps until the context is cancelled. The loop itself never fails;
// the only exit is external shutdown.
func (h *Harvester) Run(ctx context.Context) error {
	h.log.Info().
		Str("staging_dir", h.cfg.StagingDir).
		Dur("interval", h.cfg.Interval).
		Bool("watch", h.cfg.Watch).
		Msg("harvester started")

	wake := make(chan struct{}, 1)
	if h.cfg.Watch {
		go h.watchStaging(ctx, wake)
	}

	ticker := time.NewTicker(h.cfg.Interval)
	defer ticker.Stop()

	for {
		stats := h.Sweep(ctx)
		if stats.Scanned > 0 {
			h.log.Info().
				Int("scanned", stats.Scanned).
				Int("committed", stats.Committed).
				Int("dropped", stats.Dropped).
				Int("failed", stats.Failed).
				Msg("sweep complete")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-wake:
		}
	}
}

// Sweep processes every staged record once, continue-on-error. It stops
// early between records if the context is cancelled; anything unprocessed is
// picked up by the next sweep.
func (h *Harvester) Sweep(ctx context.Context) Stats {
	var stats Stats

	err := filepath.WalkDir(h.cfg.StagingDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			h.log.Warn().Err(err).Str("path", path).Msg("staging scan error")
			return nil
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") || strings.HasSuffix(d.Name(), ".tmp") {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		stats.Scanned++
		h.processFile(ctx, path, &stats)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		h.log.Warn().Err(err).Msg("staging sweep aborted")
	}

	return stats
}

// processFile runs one staged record through the commit protocol:
// parse path key, convert + canonicalize + corpus write, then delete the
// staging file. Deletion happens strictly after the corpus write so a crash
// mid-cycle loses nothing; reprocessing is idempotent.
func (h *Harvester) processFile(ctx context.Context, path string, stats *Stats) {
	key, err := record.ParsePathKey(h.cfg.StagingDir, path)
	if err != nil {
		stats.Failed++
		h.log.Warn().Err(err).Str("file", path).Msg("bad staging path, leaving for retry")
		return
	}

	dest, err := h.canon.Commit(ctx, path, key)
	switch {
	case errors.Is(err, canonical.ErrEmptyRecord):
		// No moves recorded: nothing to commit, and nothing to retry.
		if rmErr := os.Remove(path); rmErr != nil {
			h.log.Warn().Err(rmErr).Str("file", path).Msg("remove empty record failed")
		}
		stats.Dropped++
		return
	case err != nil:
		stats.Failed++
		h.log.Warn().Err(err).Str("file", path).Msg("record failed, leaving for retry")
		return
	}

	if err := os.Remove(path); err != nil {
		// The entry is committed; a leftover staging file just reconverges
		// to the same corpus path next sweep.
		h.log.Warn().Err(err).Str("file", path).Msg("remove staged record failed")
	}
	stats.Committed++
	h.log.Debug().Str("file", path).Str("entry", dest).Msg("record committed")
}
