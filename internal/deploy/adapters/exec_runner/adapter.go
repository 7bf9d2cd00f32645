// Package execrunner executes external tools as discrete argument vectors.
package execrunner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/matthiasmetzen/helm/internal/deploy/domain"
	"github.com/matthiasmetzen/helm/internal/deploy/ports"
)

// Adapter implements ports.RunnerPort on top of os/exec. Commands never
// pass through a shell; args reach the kernel exactly as given.
type Adapter struct {
	logger *slog.Logger
}

// New creates a new process runner.
func New(logger *slog.Logger) *Adapter {
	return &Adapter{logger: logger}
}

// Run executes name with args and blocks until the process exits. Stderr
// is always captured for diagnostics; stdout goes to opts.Stdout when set,
// the console otherwise. With IgnoreExitCode a non-zero exit is logged and
// reported through the exit code alone.
func (a *Adapter) Run(ctx context.Context, name string, args []string, opts ports.RunOptions) (int, error) {
	a.logger.Info("running command", "binary", name, "args", redactArgs(args))

	cmd := exec.CommandContext(ctx, name, args...)

	if opts.Stdout != nil {
		cmd.Stdout = opts.Stdout
	} else {
		cmd.Stdout = os.Stdout
	}

	var stderr bytes.Buffer
	cmd.Stderr = io.MultiWriter(&stderr, os.Stderr)

	if len(opts.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range opts.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	if opts.IgnoreExitCode {
		a.logger.Warn("command failed, ignoring",
			"binary", name,
			"exitCode", exitCode,
			"stderr", tail(stderr.String()),
		)
		return exitCode, nil
	}

	return exitCode, &domain.ToolInvocationError{
		Binary:   name,
		Args:     redactArgs(args),
		ExitCode: exitCode,
		Cause:    fmt.Errorf("%w: %s", err, tail(stderr.String())),
	}
}

const maxStderrTail = 2048

// tail trims captured stderr to a diagnosable size.
func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStderrTail {
		return "..." + s[len(s)-maxStderrTail:]
	}
	return s
}

// redactArgs masks credential-bearing flags before they reach logs or
// error messages.
func redactArgs(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		if strings.HasPrefix(arg, "--password=") {
			out[i] = "--password=***"
			continue
		}
		out[i] = arg
	}
	return out
}
