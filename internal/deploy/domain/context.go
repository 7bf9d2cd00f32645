package domain

// DeploymentContext is the read-only deployment object delivered by a
// webhook event. Besides the typed header used for status reporting, it
// keeps two loose lookup maps: the deployment's own top-level fields and
// the nested payload object. Either map may override a named input.
type DeploymentContext struct {
	Owner       string
	Repo        string
	ID          int64
	Environment string

	Fields  map[string]any // top-level deployment fields
	Payload map[string]any // nested payload sub-object
}

// Lookup resolves a named value with payload fields taking precedence over
// top-level deployment fields. Empty and absent values are both misses so
// a blank payload field never shadows a real one underneath.
func (d *DeploymentContext) Lookup(name string) (any, bool) {
	if d == nil {
		return nil, false
	}
	if v, ok := d.Payload[name]; ok && truthy(v) {
		return v, true
	}
	if v, ok := d.Fields[name]; ok && truthy(v) {
		return v, true
	}
	return nil, false
}

// truthy reports whether a loosely typed field carries a usable value.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	default:
		return true
	}
}
