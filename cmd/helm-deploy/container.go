package main

import (
	"context"
	"fmt"
	"log/slog"

	eventin "github.com/matthiasmetzen/helm/internal/deploy/adapters/event_in"
	execrunner "github.com/matthiasmetzen/helm/internal/deploy/adapters/exec_runner"
	githubout "github.com/matthiasmetzen/helm/internal/deploy/adapters/github_out"
	helmcli "github.com/matthiasmetzen/helm/internal/deploy/adapters/helm_cli"
	linediff "github.com/matthiasmetzen/helm/internal/deploy/adapters/line_diff"
	"github.com/matthiasmetzen/helm/internal/deploy/adapters/resolver"
	"github.com/matthiasmetzen/helm/internal/deploy/app"
	"github.com/matthiasmetzen/helm/internal/deploy/domain"
	"github.com/matthiasmetzen/helm/internal/deploy/ports"
	"github.com/matthiasmetzen/helm/internal/platform/config"
	ghclient "github.com/matthiasmetzen/helm/internal/platform/github"
	"github.com/matthiasmetzen/helm/internal/platform/kubeenv"
	"github.com/matthiasmetzen/helm/internal/platform/telemetry"
)

// Container holds all application dependencies.
type Container struct {
	Config        config.Config
	Logger        *slog.Logger
	DeployConfig  *domain.Config
	DeployService ports.DeployUseCase

	telemetry *telemetry.Telemetry
}

// NewContainer builds and wires all dependencies: it prepares the helm
// environment, loads the deployment event, resolves the effective deployment
// configuration, and assembles the pipeline around it.
func NewContainer(
	ctx context.Context,
	cfg config.Config,
	params map[string]string,
	token string,
	log *slog.Logger,
) (*Container, error) {
	tel, err := telemetry.New(ctx, cfg.OTelEnabled)
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	pluginCacheRoot, err := kubeenv.Prepare(cfg.HelmHome, cfg.KubeconfigFile, log)
	if err != nil {
		return nil, fmt.Errorf("preparing helm environment: %w", err)
	}

	deployment, err := eventin.ReadEventFile(cfg.EventPath, log)
	if err != nil {
		return nil, fmt.Errorf("loading deployment event: %w", err)
	}

	deployCfg, err := resolver.New(params, deployment, log).Resolve()
	if err != nil {
		return nil, fmt.Errorf("resolving inputs: %w", err)
	}

	notifier, err := newNotifier(cfg, deployment, token, log)
	if err != nil {
		return nil, err
	}

	runner := execrunner.New(log)
	helm := helmcli.New(runner, linediff.New(), log, pluginCacheRoot)
	service := app.NewDeployService(helm, notifier, log, tel.Tracer, tel.Meter)

	return &Container{
		Config:        cfg,
		Logger:        log,
		DeployConfig:  deployCfg,
		DeployService: service,
		telemetry:     tel,
	}, nil
}

// Shutdown flushes telemetry.
func (c *Container) Shutdown(ctx context.Context) {
	if err := c.telemetry.Shutdown(ctx); err != nil {
		c.Logger.Warn("telemetry shutdown failed", "error", err)
	}
}

// newNotifier selects the status reporting path: GitHub App credentials win
// over a token, and without either (or without a deployment to report
// against) status updates are skipped entirely.
func newNotifier(
	cfg config.Config,
	deployment *domain.DeploymentContext,
	token string,
	log *slog.Logger,
) (ports.NotifierPort, error) {
	if deployment == nil || (token == "" && !cfg.HasAppAuth()) {
		return &githubout.NoopNotifier{Logger: log}, nil
	}

	if cfg.HasAppAuth() {
		client, err := ghclient.NewAppClient(cfg.GitHubAppID, cfg.GitHubInstallationID, cfg.GitHubPrivateKey)
		if err != nil {
			return nil, fmt.Errorf("creating github client: %w", err)
		}
		return githubout.New(client, deployment, log), nil
	}

	return githubout.New(ghclient.NewTokenClient(token), deployment, log), nil
}
