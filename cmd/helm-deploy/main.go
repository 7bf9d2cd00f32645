// Package main provides the helm-deploy CLI for running a single helm
// deployment driven by explicit parameters and an optional deployment event.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/matthiasmetzen/helm/internal/platform/config"
	"github.com/matthiasmetzen/helm/internal/platform/logger"
)

// inputNames are the tool's deployment inputs, in their external hyphenated
// form. Each becomes a string flag sourced from the matching INPUT_* env var
// so the tool drops straight into a CI step.
var inputNames = []string{
	"track",
	"release",
	"namespace",
	"chart",
	"chart-version",
	"version",
	"task",
	"timeout",
	"values",
	"value-files",
	"plugins",
	"remove-canary",
	"dry-run",
	"atomic",
	"helm",
	"repo",
	"repo-alias",
	"repo-username",
	"repo-password",
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cli.Command {
	flags := make([]cli.Flag, 0, len(inputNames)+1)
	for _, name := range inputNames {
		flags = append(flags, &cli.StringFlag{
			Name:    name,
			Sources: cli.EnvVars(envName(name)),
		})
	}
	flags = append(flags, &cli.StringFlag{
		Name:    "token",
		Usage:   "GitHub token for deployment status reporting",
		Sources: cli.EnvVars("INPUT_TOKEN", "GITHUB_TOKEN"),
	})

	return &cli.Command{
		Name:  "helm-deploy",
		Usage: "Run a helm deployment from CI inputs and a deployment event",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, cmd)
		},
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.LogLevel)

	params := make(map[string]string, len(inputNames))
	for _, name := range inputNames {
		if v := cmd.String(name); v != "" {
			params[name] = v
		}
	}

	container, err := NewContainer(ctx, cfg, params, cmd.String("token"), log)
	if err != nil {
		return fmt.Errorf("building container: %w", err)
	}
	defer container.Shutdown(ctx)

	return container.DeployService.Execute(ctx, container.DeployConfig)
}

// envName maps a hyphenated input name to its workflow environment variable,
// e.g. "chart-version" to INPUT_CHART_VERSION.
func envName(input string) string {
	out := make([]byte, 0, len(input)+6)
	out = append(out, "INPUT_"...)
	for i := 0; i < len(input); i++ {
		c := input[i]
		switch {
		case c == '-':
			out = append(out, '_')
		case c >= 'a' && c <= 'z':
			out = append(out, c-'a'+'A')
		default:
			out = append(out, c)
		}
	}
	return string(out)
}
