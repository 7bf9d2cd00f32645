// Package helmcli implements ports.HelmPort by shelling out to the helm
// CLI through the process runner.
package helmcli

import (
	"bytes"
	"context"
	"log/slog"
	"os"

	"github.com/matthiasmetzen/helm/internal/deploy/domain"
	"github.com/matthiasmetzen/helm/internal/deploy/ports"
)

// Adapter drives repo registration, plugin installation, and release
// upgrade/delete against whichever tool variant the config selects.
type Adapter struct {
	runner          ports.RunnerPort
	differ          ports.DiffPort
	logger          *slog.Logger
	pluginCacheRoot string
}

// New creates a helm CLI adapter. pluginCacheRoot is the directory the
// plugin installer leaves residual clones under.
func New(runner ports.RunnerPort, differ ports.DiffPort, logger *slog.Logger, pluginCacheRoot string) *Adapter {
	return &Adapter{
		runner:          runner,
		differ:          differ,
		logger:          logger,
		pluginCacheRoot: pluginCacheRoot,
	}
}

// SetupRepo registers the configured chart repository and refreshes the
// repo index. A no-op when no repo is configured.
func (a *Adapter) SetupRepo(ctx context.Context, cfg *domain.Config) error {
	if cfg.Repo == "" {
		return nil
	}

	args, err := domain.RepoAddArgs(cfg)
	if err != nil {
		return err
	}

	if _, err := a.runner.Run(ctx, cfg.Tool.Binary(), args, ports.RunOptions{}); err != nil {
		return err
	}

	// The index refresh follows unconditionally; a stale index makes the
	// just-added repo invisible to chart lookups.
	_, err = a.runner.Run(ctx, cfg.Tool.Binary(), domain.RepoUpdateArgs(), ports.RunOptions{})
	return err
}

// InstallPlugins installs each declared plugin in order. The first hard
// install failure aborts the remaining list; residual clone directories
// are removed best-effort after every attempt.
func (a *Adapter) InstallPlugins(ctx context.Context, cfg *domain.Config) error {
	for _, p := range cfg.Plugins {
		if p.URL == "" {
			// The resolver already filters these; kept non-fatal here in
			// case a caller constructs the config by hand.
			a.logger.Error("skipping plugin without url", "plugin", p)
			continue
		}

		a.logger.Info("installing plugin", "url", p.URL, "version", p.Version)
		_, err := a.runner.Run(ctx, cfg.Tool.Binary(), domain.PluginInstallArgs(p), ports.RunOptions{})
		a.cleanupResidualDir(p.URL)
		if err != nil {
			return &domain.PluginInstallError{URL: p.URL, Cause: err}
		}
	}
	return nil
}

// cleanupResidualDir removes the stray clone directory the installer
// leaves under the shared plugin cache. On a shared cache volume these
// accumulate across runs and break subsequent installs of the same
// plugin. Never fatal.
func (a *Adapter) cleanupResidualDir(url string) {
	dir := domain.PluginCacheDir(a.pluginCacheRoot, url)

	if _, err := os.Stat(dir); err == nil {
		a.logger.Debug("residual plugin directory present", "dir", dir)
	}
	if err := os.RemoveAll(dir); err != nil {
		a.logger.Warn("failed to remove residual plugin directory", "dir", dir, "error", err)
	}
}

// Upgrade runs the idempotent install/upgrade of the primary release. In
// dry-run mode the proposed manifest is captured and diffed against the
// live one instead of streaming to the console.
func (a *Adapter) Upgrade(ctx context.Context, cfg *domain.Config) error {
	args := domain.UpgradeArgs(cfg)

	if cfg.DryRun {
		return a.dryRunPreview(ctx, cfg, args)
	}

	_, err := a.runner.Run(ctx, cfg.Tool.Binary(), args, ports.RunOptions{})
	return err
}

// Delete removes the named release. With ignoreFailure a non-zero exit is
// logged by the runner and swallowed.
func (a *Adapter) Delete(ctx context.Context, cfg *domain.Config, release string, ignoreFailure bool) error {
	args := domain.DeleteArgs(cfg.Tool, cfg.Namespace, release)
	_, err := a.runner.Run(ctx, cfg.Tool.Binary(), args, ports.RunOptions{
		IgnoreExitCode: ignoreFailure,
	})
	return err
}

// dryRunPreview captures the dry-run upgrade output, fetches the live
// manifest best-effort, and logs a unified diff of the two. Purely
// presentational; the upgrade exit code still decides the outcome.
func (a *Adapter) dryRunPreview(ctx context.Context, cfg *domain.Config, args []string) error {
	var proposed bytes.Buffer
	if _, err := a.runner.Run(ctx, cfg.Tool.Binary(), args, ports.RunOptions{
		Stdout: &proposed,
	}); err != nil {
		return err
	}

	var current bytes.Buffer
	manifestArgs := domain.ManifestArgs(cfg.Tool, cfg.Namespace, cfg.Release())
	// The release may not exist yet; an empty current manifest is fine.
	_, _ = a.runner.Run(ctx, cfg.Tool.Binary(), manifestArgs, ports.RunOptions{
		IgnoreExitCode: true,
		Stdout:         &current,
	})

	diff := a.differ.ComputeDiff(
		cfg.Release()+" (deployed)",
		cfg.Release()+" (proposed)",
		current.Bytes(),
		proposed.Bytes(),
	)
	if diff == "" {
		a.logger.Info("dry run produced no manifest changes", "release", cfg.Release())
		return nil
	}

	a.logger.Info("dry run manifest preview", "release", cfg.Release())
	os.Stdout.WriteString(diff + "\n")
	return nil
}
