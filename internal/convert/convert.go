// Package convert wraps the external move-notation converter. The converter
// is an opaque tool: given a record file and a target encoding it prints the
// canonical move text on stdout and exits non-zero on malformed input. The
// pipeline trusts that output byte-for-byte; the content hash is computed
// over it with no further normalization.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNoOutput reports a converter run that exited cleanly but produced no
// canonical text. Treated the same as a converter failure.
var ErrNoOutput = errors.New("converter produced no output")

type runner interface {
	run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// Converter invokes the notation converter binary.
type Converter struct {
	bin    string
	format string
	run    runner
}

// New returns a Converter that shells out to bin with the given target
// encoding identifier.
func New(bin, format string) *Converter {
	return &Converter{bin: bin, format: format, run: execRunner{}}
}

// Canonical converts the record at path to its canonical move-text form.
// The returned string is the converter's stdout, untouched.
func (c *Converter) Canonical(ctx context.Context, path string) (string, error) {
	out, err := c.run.run(ctx, c.bin, "-t", c.format, path)
	if err != nil {
		return "", fmt.Errorf("convert %s: %w", path, err)
	}
	if len(bytes.TrimSpace(out)) == 0 {
		return "", fmt.Errorf("convert %s: %w", path, ErrNoOutput)
	}
	return string(out), nil
}
