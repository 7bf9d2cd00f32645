// Package domain holds the deployment model: resolved configuration,
// release naming, and helm command synthesis. Everything here is pure —
// no I/O, no process execution.
package domain

// Tool identifies the helm major-version variant being driven. The value
// doubles as the binary name invoked by the runner.
type Tool string

const (
	// ToolHelm3 is the current helm CLI (namespace-scoped deletes).
	ToolHelm3 Tool = "helm3"
	// ToolHelm2 is the legacy helm CLI (tiller-era, --purge deletes).
	ToolHelm2 Tool = "helm"
)

// IsValid reports whether the tool variant is one of the supported values.
func (t Tool) IsValid() bool {
	return t == ToolHelm3 || t == ToolHelm2
}

// Binary returns the executable name for the variant.
func (t Tool) Binary() string {
	return string(t)
}

// TrackStable is the default release track. Releases on the stable track
// keep the bare app name.
const TrackStable = "stable"

// TrackCanary marks a traffic-isolated parallel release. Canary upgrades
// disable the chart's service and ingress so traffic keeps flowing through
// the stable release.
const TrackCanary = "canary"

// TaskRemove requests deletion of the primary release instead of an upgrade.
const TaskRemove = "remove"

// PluginSpec identifies an installable helm plugin.
type PluginSpec struct {
	URL     string `yaml:"url" json:"url"`
	Version string `yaml:"version,omitempty" json:"version,omitempty"`
}

// SetValue is a single --set entry. Values are kept as an ordered list
// rather than a map so flags are emitted in the input's mapping order.
type SetValue struct {
	Key   string
	Value any
}

// Config is the fully resolved deployment configuration. It is built once
// per run by the input resolver and never mutated afterwards.
type Config struct {
	Track     string // release track, TrackStable by default
	App       string // app (release) name before track suffixing
	Namespace string
	Chart     string // chart input as given; use ChartRef for the effective ref

	ChartVersion string
	Version      string // app version tag, surfaced as --set app.version
	Task         string // TaskRemove triggers deletion
	Timeout      string // passed through to the tool verbatim

	Values     []SetValue
	ValueFiles []string
	Plugins    []PluginSpec

	RemoveCanary bool
	DryRun       bool
	Atomic       bool // defaults to true unless explicitly set false

	Tool Tool

	Repo         string
	RepoAlias    string
	RepoUsername string
	RepoPassword string
}

// Release returns the effective, track-suffixed release name.
func (c *Config) Release() string {
	return ReleaseName(c.App, c.Track)
}

// IsRemoval reports whether this run deletes the primary release.
func (c *Config) IsRemoval() bool {
	return c.Task == TaskRemove
}
