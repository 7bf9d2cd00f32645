package domain

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// DeleteArgs builds the argument vector that removes a release. Deletion
// semantics changed between helm major versions: v3 scopes the delete to a
// namespace, v2 needs --purge to actually drop the release record.
func DeleteArgs(tool Tool, namespace, release string) []string {
	if tool == ToolHelm2 {
		return []string{"delete", "--purge", release}
	}
	return []string{"delete", "-n", namespace, release}
}

// UpgradeArgs builds the argument vector for an idempotent install/upgrade
// of the configured release. Optional flags are appended in a fixed order
// and only when the corresponding value is present; an unset optional must
// never surface as an empty flag.
func UpgradeArgs(cfg *Config) []string {
	args := []string{
		"upgrade", cfg.Release(), ChartRef(cfg.Chart),
		"--install", "--wait",
		"--namespace=" + cfg.Namespace,
	}

	if cfg.DryRun {
		args = append(args, "--dry-run")
	}
	if cfg.App != "" {
		args = append(args, "--set", "app.name="+cfg.App)
	}
	if cfg.Version != "" {
		args = append(args, "--set", "app.version="+cfg.Version)
	}
	if cfg.ChartVersion != "" {
		args = append(args, "--version="+cfg.ChartVersion)
	}
	if cfg.Timeout != "" {
		args = append(args, "--timeout="+cfg.Timeout)
	}
	for _, f := range cfg.ValueFiles {
		args = append(args, "-f", f)
	}
	for _, v := range cfg.Values {
		args = append(args, "--set", v.Key+"="+formatScalar(v.Value))
	}
	if cfg.Track == TrackCanary {
		// Canary releases ride the stable release's service and ingress;
		// exposing them directly would split traffic outside the rollout.
		args = append(args, "--set", "service.enabled=false", "--set", "ingress.enabled=false")
	}
	if cfg.Atomic {
		args = append(args, "--atomic")
	}

	return args
}

// RepoAddArgs builds the argument vector registering the configured chart
// repository. A repo without an alias is a hard configuration error: later
// chart lookups have no name to reference it by.
func RepoAddArgs(cfg *Config) ([]string, error) {
	if cfg.RepoAlias == "" {
		return nil, &MissingRepoAliasError{Repo: cfg.Repo}
	}

	args := []string{"repo", "add", cfg.RepoAlias, cfg.Repo}
	if cfg.RepoUsername != "" {
		args = append(args, "--username="+cfg.RepoUsername)
	}
	if cfg.RepoPassword != "" {
		args = append(args, "--password="+cfg.RepoPassword)
	}
	return args, nil
}

// RepoUpdateArgs builds the repository index refresh that follows every
// successful repo add.
func RepoUpdateArgs() []string {
	return []string{"repo", "update"}
}

// ManifestArgs builds the argument vector fetching the live manifest of a
// release, used for dry-run previews.
func ManifestArgs(tool Tool, namespace, release string) []string {
	if tool == ToolHelm2 {
		return []string{"get", "manifest", release}
	}
	return []string{"get", "manifest", "-n", namespace, release}
}

// PluginInstallArgs builds the argument vector installing a single plugin.
func PluginInstallArgs(p PluginSpec) []string {
	args := []string{"plugin", "install", p.URL}
	if p.Version != "" {
		args = append(args, "--version", p.Version)
	}
	return args
}

var pluginSlugPattern = regexp.MustCompile(`[:/]+`)

// PluginCacheDir computes the residual clone directory the plugin installer
// leaves behind for a plugin URL, rooted under the shared plugin cache.
// The slug mirrors the installer's own naming: colons and slash runs
// collapse to single dashes.
func PluginCacheDir(cacheRoot, url string) string {
	slug := strings.TrimSpace(url)
	slug = strings.TrimRight(slug, "/")
	slug = pluginSlugPattern.ReplaceAllString(slug, "-")
	return filepath.Join(cacheRoot, slug)
}

// formatScalar renders a decoded YAML scalar the way helm expects it on the
// command line. %v keeps integers unquoted (1 → "1") and passes strings
// through verbatim.
func formatScalar(v any) string {
	return fmt.Sprintf("%v", v)
}
