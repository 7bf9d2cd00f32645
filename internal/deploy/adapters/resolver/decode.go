package resolver

import (
	"encoding/json"
	"log/slog"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/matthiasmetzen/helm/internal/deploy/domain"
)

// decodeValues normalizes the values input into an ordered key/value
// list. String inputs get a structured parse with document order
// preserved; a string that is not a mapping carries no --set entries.
// Already-structured mappings (from a JSON payload) lose their original
// order in transit, so their keys are sorted for determinism.
func decodeValues(v any, logger *slog.Logger) []domain.SetValue {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return decodeValuesString(t, logger)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out := make([]domain.SetValue, 0, len(t))
		for _, k := range keys {
			out = append(out, domain.SetValue{Key: k, Value: t[k]})
		}
		return out
	default:
		logger.Warn("values input is not a mapping, ignoring", "value", v)
		return nil
	}
}

// decodeValuesString parses a string-encoded values mapping. YAML is a
// superset of JSON, so both '{"a":1}' and 'a: 1' forms decode; the
// yaml.Node walk keeps the mapping order for flag emission.
func decodeValuesString(s string, logger *slog.Logger) []domain.SetValue {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(s), &node); err != nil || len(node.Content) == 0 {
		logger.Warn("values input failed to parse, treating as opaque", "error", err)
		return nil
	}

	doc := node.Content[0]
	if doc.Kind != yaml.MappingNode {
		logger.Warn("values input is not a mapping, ignoring")
		return nil
	}

	out := make([]domain.SetValue, 0, len(doc.Content)/2)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		var val any
		if err := doc.Content[i+1].Decode(&val); err != nil {
			logger.Warn("skipping undecodable value entry", "key", doc.Content[i].Value, "error", err)
			continue
		}
		out = append(out, domain.SetValue{Key: doc.Content[i].Value, Value: val})
	}
	return out
}

// decodePlugins normalizes the plugins input into a PluginSpec list.
// String inputs get a strict JSON parse; a string that is not valid JSON
// is the single-plugin shorthand and wraps into a one-element list.
// Entries without a usable url are dropped with a warning, never fatally.
func decodePlugins(v any, logger *slog.Logger) []domain.PluginSpec {
	entries := sequence("plugins", v, logger)

	out := make([]domain.PluginSpec, 0, len(entries))
	for _, e := range entries {
		switch t := e.(type) {
		case string:
			if t == "" {
				logger.Warn("dropping plugin entry with empty url")
				continue
			}
			out = append(out, domain.PluginSpec{URL: t})
		case map[string]any:
			spec := domain.PluginSpec{}
			if u, ok := t["url"]; ok {
				spec.URL = stringify(u)
			}
			if spec.URL == "" {
				logger.Warn("dropping plugin entry without url", "entry", t)
				continue
			}
			if ver, ok := t["version"]; ok {
				spec.Version = stringify(ver)
			}
			out = append(out, spec)
		default:
			logger.Warn("dropping unrecognized plugin entry", "entry", e)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// decodeStringList normalizes a sequence-of-paths input, with the same
// string handling as plugins: strict JSON parse, single-element fallback.
func decodeStringList(name string, v any, logger *slog.Logger) []string {
	entries := sequence(name, v, logger)

	out := make([]string, 0, len(entries))
	for _, e := range entries {
		s := stringify(e)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// sequence coerces a loosely typed input into a slice of entries. A
// non-sequence parse result normalizes to empty rather than erroring.
func sequence(name string, v any, logger *slog.Logger) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	case string:
		var parsed any
		if err := json.Unmarshal([]byte(t), &parsed); err != nil {
			// Not structured: the whole string is a single entry.
			return []any{t}
		}
		if arr, ok := parsed.([]any); ok {
			return arr
		}
		logger.Warn("structured input is not a sequence, ignoring", "input", name)
		return nil
	default:
		logger.Warn("input is not a sequence, ignoring", "input", name, "value", v)
		return nil
	}
}
