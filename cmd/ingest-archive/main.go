package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"corpus5d/internal/archive"
	"corpus5d/internal/config"
	"corpus5d/internal/convert"
	"corpus5d/internal/corpus"
	"corpus5d/internal/logx"
)

func main() {
	var (
		configPath = flag.String("config", os.Getenv("CORPUS5D_CONFIG"), "YAML config file")

		archiveDir = flag.String("archive", "", "archive dump root, organized by outcome")
		corpusDir  = flag.String("corpus", "", "corpus root (overrides config)")
		scratchDir = flag.String("scratch", "", "working area for record copies (default: temp dir)")

		rulesets = flag.String("rulesets", "", "comma-separated ruleset allow-list (overrides config)")
		truncate = flag.Int("truncate-lines", 0, "move-text lines dropped for the nonmate class (overrides config)")

		converterBin = flag.String("converter", "", "notation converter binary (overrides config)")
		format       = flag.String("format", "", "converter target encoding (overrides config)")
	)
	flag.Parse()

	logger := logx.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Str("config", *configPath).Msg("load config")
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "corpus":
			cfg.CorpusDir = *corpusDir
		case "rulesets":
			cfg.Rulesets = strings.Split(*rulesets, ",")
		case "truncate-lines":
			cfg.TruncateLines = *truncate
		case "converter":
			cfg.ConverterBin = *converterBin
		case "format":
			cfg.ConverterFormat = *format
		}
	})

	if *archiveDir == "" {
		fmt.Fprintln(os.Stderr, "Usage: ingest-archive --archive <dump-dir> [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if cfg.ConverterBin == "" {
		logger.Fatal().Msg("notation converter binary required (-converter or config)")
	}

	logger.Info().
		Str("archive", *archiveDir).
		Str("corpus", cfg.CorpusDir).
		Strs("rulesets", cfg.Rulesets).
		Int("truncate_lines", cfg.TruncateLines).
		Msg("starting archive ingest")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := os.MkdirAll(cfg.CorpusDir, 0755); err != nil {
		logger.Fatal().Err(err).Str("corpus", cfg.CorpusDir).Msg("open corpus root")
	}

	conv := convert.New(cfg.ConverterBin, cfg.ConverterFormat)
	store := corpus.NewStore(cfg.CorpusDir)

	ingestor, err := archive.NewIngestor(archive.Config{
		ArchiveDir:    *archiveDir,
		ScratchDir:    *scratchDir,
		Rulesets:      cfg.Rulesets,
		TruncateLines: cfg.TruncateLines,
		Logger:        logger,
	}, conv, store)
	if err != nil {
		logger.Fatal().Err(err).Msg("start archive ingest")
	}

	startTime := time.Now()
	stats, err := ingestor.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("archive ingest aborted")
		os.Exit(1)
	}

	logger.Info().
		Int("scanned", stats.Scanned).
		Int("skipped", stats.Skipped).
		Int("checkmate", stats.Checkmate).
		Int("nonmate", stats.Nonmate).
		Int("dropped", stats.Dropped).
		Int("errors", stats.Errors).
		Dur("elapsed", time.Since(startTime)).
		Msg("archive ingest complete")

	// Per-record failures don't abort the run, but the exit code reports them.
	if stats.Errors > 0 {
		os.Exit(1)
	}
}
