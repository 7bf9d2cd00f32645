// Package eventin reads the GitHub deployment event file that CI runners
// place on disk and turns it into a DeploymentContext.
package eventin

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	gogithub "github.com/google/go-github/v68/github"

	"github.com/matthiasmetzen/helm/internal/deploy/domain"
)

// ReadEventFile loads a deployment event from path. An empty path or an
// event that carries no deployment object yields (nil, nil) so the caller
// can fall back to explicit parameters alone. An unreadable or corrupt
// file is an error: a present event must never be silently ignored.
func ReadEventFile(path string, logger *slog.Logger) (*domain.DeploymentContext, error) {
	if path == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read event file %s: %w", path, err)
	}

	return parseEvent(raw, logger)
}

func parseEvent(raw []byte, logger *slog.Logger) (*domain.DeploymentContext, error) {
	var event gogithub.DeploymentEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("parse event: %w", err)
	}
	if event.Deployment == nil {
		return nil, nil
	}

	// Decode a second time into loose maps: the deployment object carries
	// arbitrary tool inputs beyond the typed fields go-github knows about.
	var loose struct {
		Deployment map[string]any `json:"deployment"`
	}
	if err := json.Unmarshal(raw, &loose); err != nil {
		return nil, fmt.Errorf("parse event: %w", err)
	}

	dep := &domain.DeploymentContext{
		Owner:       event.GetRepo().GetOwner().GetLogin(),
		Repo:        event.GetRepo().GetName(),
		ID:          event.GetDeployment().GetID(),
		Environment: event.GetDeployment().GetEnvironment(),
		Fields:      loose.Deployment,
		Payload:     payloadMap(loose.Deployment["payload"], logger),
	}

	logger.Info("loaded deployment event",
		"owner", dep.Owner,
		"repo", dep.Repo,
		"deployment", dep.ID,
		"environment", dep.Environment,
	)

	return dep, nil
}

// payloadMap normalizes the deployment payload, which GitHub may deliver
// either as a nested object or as a JSON-encoded string.
func payloadMap(v any, logger *slog.Logger) map[string]any {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]any:
		return t
	case string:
		if t == "" {
			return nil
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(t), &m); err != nil {
			logger.Warn("payload string is not a JSON object, ignoring", "error", err)
			return nil
		}
		return m
	default:
		logger.Warn("payload has unexpected shape, ignoring", "type", fmt.Sprintf("%T", v))
		return nil
	}
}
