// Package app orchestrates the deployment pipeline: repo setup, plugin
// setup, then deploy or remove, with status notifications around the run.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/matthiasmetzen/helm/internal/deploy/domain"
	"github.com/matthiasmetzen/helm/internal/deploy/ports"
)

// State labels a pipeline stage. Stages run strictly in order and the
// first hard failure ends the run.
type State string

const (
	StatePending     State = "pending"
	StateRepoSetup   State = "repo-setup"
	StatePluginSetup State = "plugin-setup"
	StateDeploying   State = "deploying"
	StateSuccess     State = "success"
	StateFailure     State = "failure"
)

// DeployService implements ports.DeployUseCase. It sequences the helm
// invocations and keeps the tracking service informed; notification
// failures never alter the pipeline outcome.
type DeployService struct {
	helm     ports.HelmPort
	notifier ports.NotifierPort
	logger   *slog.Logger
	tracer   trace.Tracer
	runs     metric.Int64Counter
}

// NewDeployService creates a DeployService wired with all driven ports.
func NewDeployService(
	helm ports.HelmPort,
	notifier ports.NotifierPort,
	logger *slog.Logger,
	tracer trace.Tracer,
	meter metric.Meter,
) *DeployService {
	runs, err := meter.Int64Counter("deploy.runs",
		metric.WithDescription("Deployment pipeline runs by outcome"))
	if err != nil {
		// Instrument creation only fails on malformed names; fall back to
		// an unregistered counter rather than refusing to deploy.
		logger.Warn("failed to create runs counter", "error", err)
	}

	return &DeployService{
		helm:     helm,
		notifier: notifier,
		logger:   logger,
		tracer:   tracer,
		runs:     runs,
	}
}

// Execute runs the pipeline for a resolved configuration.
func (s *DeployService) Execute(ctx context.Context, cfg *domain.Config) error {
	ctx, span := s.tracer.Start(ctx, "deploy.execute", trace.WithAttributes(
		attribute.String("release", cfg.Release()),
		attribute.String("namespace", cfg.Namespace),
		attribute.String("track", cfg.Track),
	))
	defer span.End()

	s.logger.Info("starting deployment",
		"release", cfg.Release(),
		"namespace", cfg.Namespace,
		"chart", domain.ChartRef(cfg.Chart),
		"track", cfg.Track,
		"dryRun", cfg.DryRun,
	)
	s.notify(ctx, domain.StatusPending, "deployment started")

	if err := s.runStage(ctx, StateRepoSetup, func(ctx context.Context) error {
		return s.helm.SetupRepo(ctx, cfg)
	}); err != nil {
		return s.fail(ctx, span, err)
	}

	if err := s.runStage(ctx, StatePluginSetup, func(ctx context.Context) error {
		return s.helm.InstallPlugins(ctx, cfg)
	}); err != nil {
		return s.fail(ctx, span, err)
	}

	if err := s.runStage(ctx, StateDeploying, func(ctx context.Context) error {
		return s.deploy(ctx, cfg)
	}); err != nil {
		return s.fail(ctx, span, err)
	}

	s.count(ctx, StateSuccess)
	s.notify(ctx, domain.StatusSuccess, "deployment succeeded")
	s.logger.Info("deployment succeeded", "release", cfg.Release())
	return nil
}

// deploy performs the terminal stage: optional canary pre-cleanup, then
// either removal of the primary release or the upgrade.
func (s *DeployService) deploy(ctx context.Context, cfg *domain.Config) error {
	if cfg.RemoveCanary {
		canary := domain.ReleaseName(cfg.App, domain.TrackCanary)
		s.logger.Info("removing canary release", "release", canary)
		if err := s.helm.Delete(ctx, cfg, canary, true); err != nil {
			// Delete with ignoreFailure never returns invocation errors;
			// anything else is still fatal.
			return err
		}
	}

	if cfg.IsRemoval() {
		return s.helm.Delete(ctx, cfg, cfg.Release(), false)
	}
	return s.helm.Upgrade(ctx, cfg)
}

// runStage wraps a stage in a span and fails it with a stage-tagged error.
func (s *DeployService) runStage(ctx context.Context, state State, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "deploy."+string(state))
	defer span.End()

	s.logger.Debug("entering stage", "stage", state)
	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%s: %w", state, err)
	}
	return nil
}

// fail emits the failure notification exactly once and surfaces the
// original error verbatim.
func (s *DeployService) fail(ctx context.Context, span trace.Span, err error) error {
	s.count(ctx, StateFailure)
	span.SetStatus(codes.Error, err.Error())

	s.logger.Error("deployment failed", "error", err)
	s.notify(ctx, domain.StatusFailure, err.Error())
	return err
}

func (s *DeployService) count(ctx context.Context, outcome State) {
	if s.runs == nil {
		return
	}
	s.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(outcome))))
}

// notify reports a lifecycle state to the tracking service, downgrading
// any reporter failure to a warning.
func (s *DeployService) notify(ctx context.Context, status domain.Status, description string) {
	if err := s.notifier.Notify(ctx, status, description); err != nil {
		s.logger.Warn("status notification failed",
			"status", status,
			"error", err,
		)
	}
}
