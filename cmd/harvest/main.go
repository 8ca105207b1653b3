package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"corpus5d/internal/canonical"
	"corpus5d/internal/config"
	"corpus5d/internal/convert"
	"corpus5d/internal/corpus"
	"corpus5d/internal/harvest"
	"corpus5d/internal/logx"
	"corpus5d/internal/selfplay"
)

func main() {
	var (
		configPath = flag.String("config", os.Getenv("CORPUS5D_CONFIG"), "YAML config file")

		stagingDir = flag.String("staging", "", "staging root (overrides config)")
		corpusDir  = flag.String("corpus", "", "corpus root (overrides config)")
		interval   = flag.Duration("interval", 0, "sleep between harvest sweeps (overrides config)")
		watch      = flag.Bool("watch", false, "wake the harvester on staging activity")

		workerCmd  = flag.String("worker-cmd", "", "self-play simulator binary (empty = harvest only)")
		workerArgs = flag.String("worker-args", "", "extra simulator arguments, space separated")
		workers    = flag.Int("workers", 0, "simulator processes (0 = logical cores - 1)")

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
		case "staging":
			cfg.StagingDir = *stagingDir
		case "corpus":
			cfg.CorpusDir = *corpusDir
		case "interval":
			cfg.HarvestInterval = config.Duration(*interval)
		case "watch":
			cfg.WatchStaging = *watch
		case "worker-cmd":
			cfg.WorkerCommand = *workerCmd
		case "worker-args":
			cfg.WorkerArgs = strings.Fields(*workerArgs)
		case "workers":
			cfg.Workers = *workers
		case "converter":
			cfg.ConverterBin = *converterBin
		case "format":
			cfg.ConverterFormat = *format
		}
	})

	if cfg.ConverterBin == "" {
		logger.Fatal().Msg("notation converter binary required (-converter or config)")
	}

	logger.Info().
		Str("staging", cfg.StagingDir).
		Str("corpus", cfg.CorpusDir).
		Dur("interval", cfg.HarvestInterval.Std()).
		Str("converter", cfg.ConverterBin).
		Msg("starting harvest daemon")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := os.MkdirAll(cfg.CorpusDir, 0755); err != nil {
		logger.Fatal().Err(err).Str("corpus", cfg.CorpusDir).Msg("open corpus root")
	}

	conv := convert.New(cfg.ConverterBin, cfg.ConverterFormat)
	store := corpus.NewStore(cfg.CorpusDir)
	canon := canonical.New(conv, store)

	harvester, err := harvest.New(harvest.Config{
		StagingDir: cfg.StagingDir,
		Interval:   cfg.HarvestInterval.Std(),
		Watch:      cfg.WatchStaging,
		Logger:     logger,
	}, canon)
	if err != nil {
		logger.Fatal().Err(err).Msg("open staging area")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return harvester.Run(ctx)
	})

	if cfg.WorkerCommand != "" {
		pool, err := selfplay.NewPool(selfplay.Config{
			Command:        cfg.WorkerCommand,
			Args:           cfg.WorkerArgs,
			StagingDir:     cfg.StagingDir,
			Workers:        cfg.Workers,
			RestartBackoff: 5 * time.Second,
			Logger:         logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("start worker pool")
		}
		g.Go(func() error {
			return pool.Run(ctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("harvest daemon failed")
		os.Exit(1)
	}
	logger.Info().Msg("harvest daemon stopped")
}
