package helm

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Values represents helm chart values as a map.
type Values map[string]any

// Merge combines multiple Values maps with later maps taking precedence.
// Nested maps are merged recursively; every other value is replaced.
// The inputs are never modified.
func Merge(valueMaps ...Values) Values {
	result := make(Values)
	for _, m := range valueMaps {
		deepMerge(result, m)
	}
	return result
}

func deepMerge(dst, src map[string]any) {
	for k, v := range src {
		srcMap, srcIsMap := asMap(v)
		if !srcIsMap {
			dst[k] = v
			continue
		}
		dstMap, dstIsMap := asMap(dst[k])
		merged := make(map[string]any, len(dstMap)+len(srcMap))
		if dstIsMap {
			deepMerge(merged, dstMap)
		}
		deepMerge(merged, srcMap)
		dst[k] = merged
	}
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case Values:
		return m, true
	case map[string]any:
		return m, true
	default:
		return nil, false
	}
}

// Set assigns value at a dotted path such as "git.url", creating
// intermediate maps as needed.
func (v Values) Set(path string, value any) {
	keys := strings.Split(path, ".")
	cur := map[string]any(v)
	for _, k := range keys[:len(keys)-1] {
		next, ok := asMap(cur[k])
		if !ok {
			next = make(map[string]any)
			cur[k] = next
		}
		cur = next
	}
	cur[keys[len(keys)-1]] = value
}

// Get returns the value at a dotted path.
func (v Values) Get(path string) (any, bool) {
	var cur any = map[string]any(v)
	for _, k := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[k]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// ToYAML converts values to YAML bytes.
func (v Values) ToYAML() ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode values to YAML: %w", err)
	}

	return buf.Bytes(), nil
}

// FromYAML parses YAML bytes into Values.
func FromYAML(data []byte) (Values, error) {
	var values Values
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse YAML values: %w", err)
	}
	return values, nil
}
