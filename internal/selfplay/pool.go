// Package selfplay supervises the external self-play simulator processes
// that feed the staging area. Workers share nothing but the filesystem: each
// one gets a distinct worker ID and namespaces its staging filenames with it,
// so no coordination beyond unique names is needed. Shutdown is coarse:
// cancelling the pool's context kills every child outright.
package selfplay

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Config configures the worker pool.
type Config struct {
	Command        string         // Simulator binary
	Args           []string       // Extra arguments passed to every worker
	StagingDir     string         // Staging root handed to workers via env
	Workers        int            // 0 = logical cores - 1 (one core reserved for the harvester)
	RestartBackoff time.Duration  // Delay before relaunching an exited worker, default 5s
	Logger         zerolog.Logger // Logger
}

// NumWorkers resolves the configured degree of parallelism.
func (c Config) NumWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	n := runtime.NumCPU() - 1
	if n < 1 {
		n = 1
	}
	return n
}

// Pool owns a collection of simulator child processes.
type Pool struct {
	cfg Config
	log zerolog.Logger
}

// NewPool creates a worker pool.
func NewPool(cfg Config) (*Pool, error) {
	if cfg.Command == "" {
		return nil, errors.New("selfplay: simulator command required")
	}
	if cfg.RestartBackoff == 0 {
		cfg.RestartBackoff = 5 * time.Second
	}
	if err := os.MkdirAll(cfg.StagingDir, 0755); err != nil {
		return nil, err
	}
	return &Pool{cfg: cfg, log: cfg.Logger}, nil
}

// Run launches the workers and blocks until the context is cancelled. A
// worker that exits on its own is relaunched after a backoff so the pool
// stays at full strength for the life of the daemon.
func (p *Pool) Run(ctx context.Context) error {
	n := p.cfg.NumWorkers()
	p.log.Info().
		Str("command", p.cfg.Command).
		Str("staging_dir", p.cfg.StagingDir).
		Int("workers", n).
		Msg("worker pool started")

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		workerID := i
		g.Go(func() error {
			return p.runWorker(ctx, workerID)
		})
	}
	err := g.Wait()

	p.log.Info().Msg("worker pool stopped")
	return err
}

// runWorker keeps one simulator slot occupied until shutdown.
func (p *Pool) runWorker(ctx context.Context, workerID int) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		cmd := exec.CommandContext(ctx, p.cfg.Command, p.cfg.Args...)
		cmd.Env = append(os.Environ(),
			"CORPUS5D_STAGING="+p.cfg.StagingDir,
			fmt.Sprintf("CORPUS5D_WORKER=%d", workerID),
		)
		cmd.Stderr = os.Stderr

		p.log.Info().Int("worker", workerID).Msg("launching simulator")
		err := cmd.Run()

		if ctxErr := ctx.Err(); ctxErr != nil {
			// Killed by shutdown; in-flight work is abandoned on purpose.
			return ctxErr
		}

		p.log.Warn().Err(err).Int("worker", workerID).Msg("simulator exited, relaunching")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.cfg.RestartBackoff):
		}
	}
}
