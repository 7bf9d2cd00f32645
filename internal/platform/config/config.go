// Package config provides application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// DefaultHelmHome is where helm state lives when HELM_HOME is unset.
const DefaultHelmHome = "/root/.helm"

// Config holds the application configuration loaded from environment variables.
// Everything is optional: the tool can run against explicit parameters alone,
// with no event file, no kubeconfig blob, and no GitHub credentials.
type Config struct {
	EventPath      string // GITHUB_EVENT_PATH, deployment event file written by the runner
	KubeconfigFile string // KUBECONFIG_FILE, literal kubeconfig contents to write out
	HelmHome       string // HELM_HOME, root directory for helm state and plugin cache
	LogLevel       string

	// GitHub App auth (optional, all-or-nothing; token auth is the default path)
	GitHubAppID          int64
	GitHubInstallationID int64
	GitHubPrivateKey     string // PEM file contents

	// OpenTelemetry (optional)
	OTelEnabled bool // OTEL_ENABLED feature flag
}

// Load reads configuration from environment variables and applies defaults
// for HelmHome and LogLevel.
func Load() (Config, error) {
	cfg := Config{
		HelmHome: DefaultHelmHome,
		LogLevel: "info",
	}

	cfg.EventPath = os.Getenv("GITHUB_EVENT_PATH")
	cfg.KubeconfigFile = os.Getenv("KUBECONFIG_FILE")

	if v := os.Getenv("HELM_HOME"); v != "" {
		cfg.HelmHome = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if err := loadAppAuth(&cfg); err != nil {
		return Config{}, err
	}

	cfg.OTelEnabled = os.Getenv("OTEL_ENABLED") == "true"

	return cfg, nil
}

// HasAppAuth reports whether GitHub App credentials were fully supplied.
func (c Config) HasAppAuth() bool {
	return c.GitHubAppID != 0 && c.GitHubInstallationID != 0 && c.GitHubPrivateKey != ""
}

func loadAppAuth(cfg *Config) error {
	appID := os.Getenv("GITHUB_APP_ID")
	installID := os.Getenv("GITHUB_INSTALLATION_ID")
	cfg.GitHubPrivateKey = os.Getenv("GITHUB_PRIVATE_KEY")

	if appID == "" && installID == "" && cfg.GitHubPrivateKey == "" {
		return nil
	}
	if appID == "" || installID == "" || cfg.GitHubPrivateKey == "" {
		return fmt.Errorf("GITHUB_APP_ID, GITHUB_INSTALLATION_ID and GITHUB_PRIVATE_KEY must be set together")
	}

	var err error
	if cfg.GitHubAppID, err = strconv.ParseInt(appID, 10, 64); err != nil {
		return fmt.Errorf("invalid GITHUB_APP_ID %q: %w", appID, err)
	}
	if cfg.GitHubInstallationID, err = strconv.ParseInt(installID, 10, 64); err != nil {
		return fmt.Errorf("invalid GITHUB_INSTALLATION_ID %q: %w", installID, err)
	}

	return nil
}
