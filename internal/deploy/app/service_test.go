package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	noopmetric "go.opentelemetry.io/otel/metric/noop"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/matthiasmetzen/helm/internal/deploy/domain"
)

// Mock adapters for testing

type mockHelm struct {
	calls []string

	repoErr    error
	pluginErr  error
	upgradeErr error
	deleteErr  error
}

func (m *mockHelm) SetupRepo(_ context.Context, _ *domain.Config) error {
	m.calls = append(m.calls, "repo")
	return m.repoErr
}

func (m *mockHelm) InstallPlugins(_ context.Context, _ *domain.Config) error {
	m.calls = append(m.calls, "plugins")
	return m.pluginErr
}

func (m *mockHelm) Upgrade(_ context.Context, cfg *domain.Config) error {
	m.calls = append(m.calls, "upgrade:"+cfg.Release())
	return m.upgradeErr
}

func (m *mockHelm) Delete(_ context.Context, _ *domain.Config, release string, ignoreFailure bool) error {
	m.calls = append(m.calls, fmt.Sprintf("delete:%s:%v", release, ignoreFailure))
	if ignoreFailure {
		return nil
	}
	return m.deleteErr
}

type mockNotifier struct {
	statuses []domain.Status
	err      error
}

func (m *mockNotifier) Notify(_ context.Context, status domain.Status, _ string) error {
	m.statuses = append(m.statuses, status)
	return m.err
}

func newTestService(helm *mockHelm, notifier *mockNotifier) *DeployService {
	return NewDeployService(
		helm,
		notifier,
		slog.New(slog.DiscardHandler),
		nooptrace.NewTracerProvider().Tracer("test"),
		noopmetric.NewMeterProvider().Meter("test"),
	)
}

func baseConfig() *domain.Config {
	return &domain.Config{
		Track:     domain.TrackStable,
		App:       "my-app",
		Namespace: "prod",
		Chart:     "app",
		Tool:      domain.ToolHelm3,
		Atomic:    true,
	}
}

func TestExecuteSuccess(t *testing.T) {
	helm := &mockHelm{}
	notifier := &mockNotifier{}
	svc := newTestService(helm, notifier)

	if err := svc.Execute(context.Background(), baseConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantCalls := []string{"repo", "plugins", "upgrade:my-app"}
	assertCalls(t, helm.calls, wantCalls)

	wantStatuses := []domain.Status{domain.StatusPending, domain.StatusSuccess}
	assertStatuses(t, notifier.statuses, wantStatuses)
}

func TestExecuteRemoveTask(t *testing.T) {
	helm := &mockHelm{}
	notifier := &mockNotifier{}
	svc := newTestService(helm, notifier)

	cfg := baseConfig()
	cfg.Task = domain.TaskRemove

	if err := svc.Execute(context.Background(), cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertCalls(t, helm.calls, []string{"repo", "plugins", "delete:my-app:false"})
}

func TestExecuteRemoveCanaryBeforeUpgrade(t *testing.T) {
	helm := &mockHelm{}
	notifier := &mockNotifier{}
	svc := newTestService(helm, notifier)

	cfg := baseConfig()
	cfg.RemoveCanary = true

	if err := svc.Execute(context.Background(), cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertCalls(t, helm.calls, []string{"repo", "plugins", "delete:my-app-canary:true", "upgrade:my-app"})
}

func TestExecutePluginFailureAbortsDeploy(t *testing.T) {
	helm := &mockHelm{pluginErr: &domain.PluginInstallError{
		URL:   "https://x/y",
		Cause: errors.New("exit 1"),
	}}
	notifier := &mockNotifier{}
	svc := newTestService(helm, notifier)

	err := svc.Execute(context.Background(), baseConfig())
	if err == nil {
		t.Fatal("expected error")
	}

	var pluginErr *domain.PluginInstallError
	if !errors.As(err, &pluginErr) {
		t.Errorf("expected PluginInstallError, got %v", err)
	}

	// No deploy or delete may follow a plugin failure.
	assertCalls(t, helm.calls, []string{"repo", "plugins"})

	// Exactly one failure notification.
	assertStatuses(t, notifier.statuses, []domain.Status{domain.StatusPending, domain.StatusFailure})
}

func TestExecuteRepoFailure(t *testing.T) {
	helm := &mockHelm{repoErr: &domain.MissingRepoAliasError{Repo: "https://x"}}
	notifier := &mockNotifier{}
	svc := newTestService(helm, notifier)

	if err := svc.Execute(context.Background(), baseConfig()); err == nil {
		t.Fatal("expected error")
	}

	assertCalls(t, helm.calls, []string{"repo"})
	assertStatuses(t, notifier.statuses, []domain.Status{domain.StatusPending, domain.StatusFailure})
}

func TestExecuteDeleteFailureIsTerminal(t *testing.T) {
	helm := &mockHelm{deleteErr: errors.New("exit 1")}
	notifier := &mockNotifier{}
	svc := newTestService(helm, notifier)

	cfg := baseConfig()
	cfg.Task = domain.TaskRemove

	if err := svc.Execute(context.Background(), cfg); err == nil {
		t.Fatal("expected error")
	}
	assertStatuses(t, notifier.statuses, []domain.Status{domain.StatusPending, domain.StatusFailure})
}

func TestExecuteNotifierFailureIsNonFatal(t *testing.T) {
	helm := &mockHelm{}
	notifier := &mockNotifier{err: errors.New("api unreachable")}
	svc := newTestService(helm, notifier)

	if err := svc.Execute(context.Background(), baseConfig()); err != nil {
		t.Fatalf("notifier failure must not fail the run: %v", err)
	}
	assertCalls(t, helm.calls, []string{"repo", "plugins", "upgrade:my-app"})
}

func assertCalls(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("calls = %v, want %v", got, want)
		}
	}
}

func assertStatuses(t *testing.T, got, want []domain.Status) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("statuses = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("statuses = %v, want %v", got, want)
		}
	}
}
