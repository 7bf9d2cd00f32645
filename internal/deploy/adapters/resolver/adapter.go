// Package resolver turns heterogeneous, loosely typed inputs into the
// immutable deployment configuration. Each named input resolves through a
// three-tier precedence: deployment payload field, deployment field, then
// the explicit parameter.
package resolver

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/matthiasmetzen/helm/internal/deploy/domain"
)

// Resolver resolves named inputs against the explicit parameter set and
// an optional deployment context.
type Resolver struct {
	params     map[string]string // keyed by external (hyphenated) name
	deployment *domain.DeploymentContext
	logger     *slog.Logger
}

// New creates a resolver. deployment may be nil when the run was not
// triggered by a deployment event.
func New(params map[string]string, deployment *domain.DeploymentContext, logger *slog.Logger) *Resolver {
	return &Resolver{
		params:     params,
		deployment: deployment,
		logger:     logger,
	}
}

// Resolve builds the full configuration. It fails fast on missing
// required inputs and invalid tool variants; malformed optional inputs
// degrade with a logged warning instead.
func (r *Resolver) Resolve() (*domain.Config, error) {
	cfg := &domain.Config{
		Track: r.str("track", domain.TrackStable),
		Tool:  domain.Tool(r.str("helm", string(domain.ToolHelm3))),

		ChartVersion: r.str("chart_version", ""),
		Version:      r.str("version", ""),
		Task:         r.str("task", ""),
		Timeout:      r.str("timeout", ""),

		Repo:         r.str("repo", ""),
		RepoAlias:    r.str("repo_alias", ""),
		RepoUsername: r.str("repo_username", ""),
		RepoPassword: r.str("repo_password", ""),

		RemoveCanary: r.boolean("remove_canary", false),
		DryRun:       r.boolean("dry_run", false),
		Atomic:       r.boolean("atomic", true),

		Values:     decodeValues(r.lookup("values"), r.logger),
		ValueFiles: decodeStringList("value_files", r.lookup("value_files"), r.logger),
		Plugins:    decodePlugins(r.lookup("plugins"), r.logger),
	}

	var err error
	if cfg.App, err = r.required("release"); err != nil {
		return nil, err
	}
	if cfg.Namespace, err = r.required("namespace"); err != nil {
		return nil, err
	}
	if cfg.Chart, err = r.required("chart"); err != nil {
		return nil, err
	}

	if !cfg.Tool.IsValid() {
		return nil, fmt.Errorf("unsupported tool variant %q", cfg.Tool)
	}

	return cfg, nil
}

// lookup resolves a named input: payload field, then deployment field,
// then the explicit parameter under its external hyphenated name.
func (r *Resolver) lookup(name string) any {
	if v, ok := r.deployment.Lookup(name); ok {
		return v
	}
	if v, ok := r.params[externalName(name)]; ok && v != "" {
		return v
	}
	return nil
}

// required resolves a string input that must be non-empty.
func (r *Resolver) required(name string) (string, error) {
	v := r.str(name, "")
	if v == "" {
		return "", domain.NewMissingRequiredInputError(name)
	}
	return v, nil
}

// str resolves a scalar input as a string, falling back to def.
func (r *Resolver) str(name, def string) string {
	v := r.lookup(name)
	if v == nil {
		return def
	}
	return stringify(v)
}

// boolean resolves a flag-like input. Only an explicit, parseable value
// overrides the default; anything unparseable is logged and ignored so a
// typo never silently flips destructive behavior.
func (r *Resolver) boolean(name string, def bool) bool {
	v := r.lookup(name)
	if v == nil {
		return def
	}
	switch t := v.(type) {
	case bool:
		return t
	default:
		b, err := strconv.ParseBool(stringify(v))
		if err != nil {
			r.logger.Warn("ignoring unparseable boolean input",
				"input", name,
				"value", v,
			)
			return def
		}
		return b
	}
}

// externalName maps an internal input name to its external lookup form.
func externalName(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
