package ports

import (
	"context"
	"io"

	"github.com/matthiasmetzen/helm/internal/deploy/domain"
)

// RunOptions configures a single external tool invocation.
type RunOptions struct {
	// IgnoreExitCode downgrades a non-zero exit to a logged event. Used
	// for best-effort work like canary pre-deletion.
	IgnoreExitCode bool

	// Stdout, when set, receives the process's standard output.
	Stdout io.Writer

	// Env entries are appended to the inherited environment.
	Env map[string]string
}

// RunnerPort abstracts external process execution. Implementations must
// pass args as discrete argument vectors, never through a shell — chart
// names, values, and file paths are attacker-influenced.
type RunnerPort interface {
	Run(ctx context.Context, name string, args []string, opts RunOptions) (exitCode int, err error)
}

// HelmPort abstracts the package-manager invocations the pipeline issues,
// separated from orchestration so command shapes stay independently
// testable.
type HelmPort interface {
	// SetupRepo registers the configured chart repository and refreshes
	// the repo index. A no-op when no repo is configured.
	SetupRepo(ctx context.Context, cfg *domain.Config) error

	// InstallPlugins installs each declared plugin in order, cleaning up
	// residual clone directories as it goes. The first hard install
	// failure aborts the rest.
	InstallPlugins(ctx context.Context, cfg *domain.Config) error

	// Upgrade runs the idempotent install/upgrade of the primary release.
	Upgrade(ctx context.Context, cfg *domain.Config) error

	// Delete removes the named release. With ignoreFailure the result is
	// logged and swallowed.
	Delete(ctx context.Context, cfg *domain.Config, release string, ignoreFailure bool) error
}

// NotifierPort abstracts the deployment-tracking service. Implementations
// are fire-and-forget from the pipeline's perspective: the orchestrator
// logs notify errors and moves on.
type NotifierPort interface {
	Notify(ctx context.Context, status domain.Status, description string) error
}

// DiffPort abstracts textual diff computation for dry-run previews.
type DiffPort interface {
	ComputeDiff(fromName, toName string, from, to []byte) string
}
