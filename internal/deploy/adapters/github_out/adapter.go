// Package githubout reports deployment lifecycle states through the
// GitHub Deployments API.
package githubout

import (
	"context"
	"fmt"
	"log/slog"

	gogithub "github.com/google/go-github/v68/github"

	"github.com/matthiasmetzen/helm/internal/deploy/domain"
)

// GitHub rejects deployment status descriptions over 140 characters.
const maxDescriptionLen = 140

// Adapter implements ports.NotifierPort by creating deployment statuses
// on the deployment that triggered this run.
type Adapter struct {
	client     *gogithub.Client
	deployment *domain.DeploymentContext
	logger     *slog.Logger
}

// New creates a GitHub deployment status notifier.
func New(client *gogithub.Client, deployment *domain.DeploymentContext, logger *slog.Logger) *Adapter {
	return &Adapter{client: client, deployment: deployment, logger: logger}
}

// Notify posts a deployment status. The caller treats failures as
// warnings; this adapter only reports them.
func (a *Adapter) Notify(ctx context.Context, status domain.Status, description string) error {
	req := &gogithub.DeploymentStatusRequest{
		State:       gogithub.Ptr(status.String()),
		Description: gogithub.Ptr(truncate(description)),
	}
	if a.deployment.Environment != "" {
		req.Environment = gogithub.Ptr(a.deployment.Environment)
	}

	_, _, err := a.client.Repositories.CreateDeploymentStatus(
		ctx,
		a.deployment.Owner,
		a.deployment.Repo,
		a.deployment.ID,
		req,
	)
	if err != nil {
		return fmt.Errorf("creating deployment status %q: %w", status, err)
	}

	a.logger.Debug("deployment status posted",
		"status", status,
		"deployment", a.deployment.ID,
	)
	return nil
}

func truncate(s string) string {
	if len(s) > maxDescriptionLen {
		return s[:maxDescriptionLen-3] + "..."
	}
	return s
}

// NoopNotifier satisfies ports.NotifierPort when status reporting is not
// configured: no token, or the run was not triggered by a deployment
// event. Skipping is not an error.
type NoopNotifier struct {
	Logger *slog.Logger
}

// Notify logs and drops the notification.
func (n *NoopNotifier) Notify(_ context.Context, status domain.Status, _ string) error {
	if n.Logger != nil {
		n.Logger.Debug("status reporting disabled, skipping", "status", status)
	}
	return nil
}
