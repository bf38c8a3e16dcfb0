package cfn

import (
	"fmt"
	"sort"

	"sigs.k8s.io/yaml"
)

// Template is a synthesized CloudFormation template.
type Template struct {
	Description string              `json:"Description,omitempty"`
	Resources   map[string]Resource `json:"Resources"`
	Outputs     map[string]Output   `json:"Outputs,omitempty"`

	// raw keeps the document as synthesized, including sections not modeled above.
	raw []byte
}

// Resource is a single declared resource.
type Resource struct {
	Type       string         `json:"Type"`
	Properties map[string]any `json:"Properties,omitempty"`
	DependsOn  any            `json:"DependsOn,omitempty"`
}

// Output is a template output, optionally exported across stacks.
type Output struct {
	Description string  `json:"Description,omitempty"`
	Value       any     `json:"Value"`
	Export      *Export `json:"Export,omitempty"`
}

// Export names an output for cross-stack references.
type Export struct {
	Name any `json:"Name"`
}

// Parse reads a template in JSON or YAML form.
func Parse(data []byte) (*Template, error) {
	raw, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	t := &Template{raw: raw}
	if err := yaml.Unmarshal(raw, t); err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	if t.Resources == nil {
		return nil, fmt.Errorf("template declares no resources")
	}
	return t, nil
}

// Resource returns the resource declared under logicalID.
func (t *Template) Resource(logicalID string) (Resource, bool) {
	r, ok := t.Resources[logicalID]
	return r, ok
}

// Types counts declared resources by type.
func (t *Template) Types() map[string]int {
	counts := make(map[string]int)
	for _, r := range t.Resources {
		counts[r.Type]++
	}
	return counts
}

// OfType returns the logical IDs of all resources of the given type, sorted.
func (t *Template) OfType(resourceType string) []string {
	var ids []string
	for id, r := range t.Resources {
		if r.Type == resourceType {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Render serializes the template to YAML.
func (t *Template) Render() ([]byte, error) {
	out, err := yaml.JSONToYAML(t.raw)
	if err != nil {
		return nil, fmt.Errorf("failed to render template: %w", err)
	}
	return out, nil
}
