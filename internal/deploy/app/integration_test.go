package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	noopmetric "go.opentelemetry.io/otel/metric/noop"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	eventin "github.com/matthiasmetzen/helm/internal/deploy/adapters/event_in"
	helmcli "github.com/matthiasmetzen/helm/internal/deploy/adapters/helm_cli"
	linediff "github.com/matthiasmetzen/helm/internal/deploy/adapters/line_diff"
	"github.com/matthiasmetzen/helm/internal/deploy/adapters/resolver"
	"github.com/matthiasmetzen/helm/internal/deploy/domain"
	"github.com/matthiasmetzen/helm/internal/deploy/ports"
)

// scriptedRunner records every invocation instead of executing it.
type scriptedRunner struct {
	invocations [][]string
}

func (r *scriptedRunner) Run(_ context.Context, name string, args []string, _ ports.RunOptions) (int, error) {
	r.invocations = append(r.invocations, append([]string{name}, args...))
	return 0, nil
}

type recordingNotifier struct {
	statuses []domain.Status
}

func (n *recordingNotifier) Notify(_ context.Context, status domain.Status, _ string) error {
	n.statuses = append(n.statuses, status)
	return nil
}

// TestIntegration_EventDrivenDeploy runs the whole pipeline with real
// adapters around a scripted runner: event file in, helm invocations out.
func TestIntegration_EventDrivenDeploy(t *testing.T) {
	log := slog.New(slog.DiscardHandler)

	eventPath := filepath.Join(t.TempDir(), "event.json")
	event := `{
		"deployment": {
			"id": 42,
			"environment": "production",
			"task": "deploy",
			"payload": {
				"track": "canary",
				"version": "1.4.2",
				"remove_canary": true,
				"plugins": "[{\"url\":\"https://x/y\",\"version\":\"1.2\"}]"
			}
		},
		"repository": {"name": "shop", "owner": {"login": "acme"}}
	}`
	if err := os.WriteFile(eventPath, []byte(event), 0o600); err != nil {
		t.Fatal(err)
	}

	deployment, err := eventin.ReadEventFile(eventPath, log)
	if err != nil {
		t.Fatalf("reading event: %v", err)
	}

	params := map[string]string{
		"release":    "my-app",
		"namespace":  "prod",
		"chart":      "stable/app",
		"repo":       "https://charts.example.com",
		"repo-alias": "example",
		"version":    "0.0.1", // payload version must win
	}
	cfg, err := resolver.New(params, deployment, log).Resolve()
	if err != nil {
		t.Fatalf("resolving inputs: %v", err)
	}

	runner := &scriptedRunner{}
	notifier := &recordingNotifier{}
	helm := helmcli.New(runner, linediff.New(), log, filepath.Join(t.TempDir(), "plugins"))
	service := NewDeployService(helm, notifier, log,
		nooptrace.NewTracerProvider().Tracer("test"),
		noopmetric.NewMeterProvider().Meter("test"),
	)

	if err := service.Execute(context.Background(), cfg); err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	want := [][]string{
		{"helm3", "repo", "add", "example", "https://charts.example.com"},
		{"helm3", "repo", "update"},
		{"helm3", "plugin", "install", "https://x/y", "--version", "1.2"},
		{"helm3", "delete", "-n", "prod", "my-app-canary"},
		{
			"helm3", "upgrade", "my-app-canary", "stable/app",
			"--install", "--wait", "--namespace=prod",
			"--set", "app.name=my-app",
			"--set", "app.version=1.4.2",
			"--set", "service.enabled=false", "--set", "ingress.enabled=false",
			"--atomic",
		},
	}
	if !reflect.DeepEqual(runner.invocations, want) {
		t.Errorf("invocations:\n got %v\nwant %v", runner.invocations, want)
	}

	wantStatuses := []domain.Status{domain.StatusPending, domain.StatusSuccess}
	if !reflect.DeepEqual(notifier.statuses, wantStatuses) {
		t.Errorf("statuses = %v, want %v", notifier.statuses, wantStatuses)
	}
}

// TestIntegration_RemoveTask exercises the removal branch end to end.
func TestIntegration_RemoveTask(t *testing.T) {
	log := slog.New(slog.DiscardHandler)

	params := map[string]string{
		"release":   "my-app",
		"namespace": "prod",
		"chart":     "app",
		"task":      "remove",
		"helm":      "helm",
	}
	cfg, err := resolver.New(params, nil, log).Resolve()
	if err != nil {
		t.Fatalf("resolving inputs: %v", err)
	}

	runner := &scriptedRunner{}
	notifier := &recordingNotifier{}
	helm := helmcli.New(runner, linediff.New(), log, t.TempDir())
	service := NewDeployService(helm, notifier, log,
		nooptrace.NewTracerProvider().Tracer("test"),
		noopmetric.NewMeterProvider().Meter("test"),
	)

	if err := service.Execute(context.Background(), cfg); err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	want := [][]string{
		{"helm", "delete", "--purge", "my-app"},
	}
	if !reflect.DeepEqual(runner.invocations, want) {
		t.Errorf("invocations:\n got %v\nwant %v", runner.invocations, want)
	}
}
