// Package build runs the compiler driver over a working copy and turns its
// output into structured build results for the repair loop.
package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/patchwright/patchwright/pkg/config"
	"github.com/patchwright/patchwright/pkg/models"
)

// CompilerDriver compiles a working copy and reports the structured result.
// A failed compilation is a result, not an error; errors are reserved for
// being unable to run the compiler at all.
type CompilerDriver interface {
	Build(ctx context.Context, dir string) (*models.BuildResult, error)
}

// ExecDriver invokes the configured build command as a subprocess.
type ExecDriver struct {
	cfg    config.BuildConfig
	logger *slog.Logger
}

// NewExecDriver creates the subprocess compiler driver.
func NewExecDriver(cfg config.BuildConfig, logger *slog.Logger) *ExecDriver {
	return &ExecDriver{
		cfg:    cfg,
		logger: logger.With("service", "build"),
	}
}

// Build runs the compiler in dir. Success is the process exiting zero.
func (d *ExecDriver) Build(ctx context.Context, dir string) (*models.BuildResult, error) {
	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, d.cfg.Command, d.cfg.Args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	duration := time.Since(start)

	result := &models.BuildResult{
		Success:    err == nil,
		DurationMS: duration.Milliseconds(),
		RawLog:     string(out),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			// The compiler did not run at all.
			return nil, fmt.Errorf("failed to run %s: %w", d.cfg.Command, err)
		}
		result.Errors = ParseErrors(result.RawLog)
	}

	d.logger.InfoContext(ctx, "build finished",
		"op", "build",
		"dir", dir,
		"success", result.Success,
		"errors", len(result.Errors),
		"latency_ms", result.DurationMS)
	return result, nil
}
