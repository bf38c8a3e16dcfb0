package orchestration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"sigs.k8s.io/yaml"

	"github.com/imamik/mreks/internal/cfn"
)

// ManifestFile lists the stacks of a written assembly.
const ManifestFile = "manifest.json"

// StackEntry describes one stack in the assembly manifest.
type StackEntry struct {
	Name      string   `json:"name"`
	Region    string   `json:"region"`
	Template  string   `json:"template,omitempty"`
	Resources int      `json:"resources,omitempty"`
	DependsOn []string `json:"dependsOn,omitempty"`
}

// Manifest is the content of manifest.json.
type Manifest struct {
	Project string       `json:"project"`
	Account string       `json:"account"`
	Regions []string     `json:"regions"`
	Stacks  []StackEntry `json:"stacks"`
}

// Manifest summarizes the assembly's stacks and their dependencies.
func (a *Assembly) Manifest(project string) Manifest {
	m := Manifest{Project: project}
	var clusterStacks []string

	for _, region := range a.Regions.All() {
		cl := a.Cluster(region)
		m.Regions = append(m.Regions, region.Name)
		m.Account = cl.Handle.Account
		clusterStacks = append(clusterStacks, cl.StackName)
		m.Stacks = append(m.Stacks, StackEntry{
			Name:      cl.StackName,
			Region:    region.Name,
			Template:  templateFile(cl.StackName),
			Resources: len(cl.Template.Resources),
		})
	}

	for _, region := range a.Regions.All() {
		b := a.Workloads[region.Name]
		m.Stacks = append(m.Stacks, StackEntry{
			Name:      b.StackName,
			Region:    region.Name,
			DependsOn: []string{a.Cluster(region).StackName},
		})
	}

	if a.Release != nil {
		m.Stacks = append(m.Stacks, StackEntry{
			Name:      a.Release.StackName,
			Region:    a.Regions.Primary.Name,
			Template:  templateFile(a.Release.StackName),
			Resources: len(a.Release.Template.Resources),
			DependsOn: clusterStacks,
		})
	}
	return m
}

func templateFile(stack string) string {
	return stack + ".template.yaml"
}

// Write writes the assembly below dir and returns the written paths relative
// to dir, sorted.
func (a *Assembly) Write(dir, project string) ([]string, error) {
	files := make(map[string][]byte)

	addTemplate := func(stack string, t *cfn.Template) error {
		out, err := t.Render()
		if err != nil {
			return fmt.Errorf("%s: %w", stack, err)
		}
		files[templateFile(stack)] = out
		return nil
	}

	for _, region := range a.Regions.All() {
		cl := a.Cluster(region)
		if cl == nil {
			return nil, fmt.Errorf("assembly has no cluster stack for %s", region.Name)
		}
		if err := addTemplate(cl.StackName, cl.Template); err != nil {
			return nil, err
		}

		releases, err := yaml.Marshal(cl.Addons)
		if err != nil {
			return nil, fmt.Errorf("failed to render add-ons for %s: %w", region.Name, err)
		}
		files[filepath.Join(region.Name, "addons.yaml")] = releases
		files[filepath.Join(region.Name, "aws-node.yaml")] = cl.AWSNodePatch

		b := a.Workloads[region.Name]
		bundle, err := b.Render()
		if err != nil {
			return nil, err
		}
		files[filepath.Join(region.Name, "workloads.yaml")] = bundle
		files[filepath.Join(region.Name, "manifests.yaml")] = b.Manifests.Concat()
	}

	if a.Release != nil {
		if err := addTemplate(a.Release.StackName, a.Release.Template); err != nil {
			return nil, err
		}
	}

	manifest, err := json.MarshalIndent(a.Manifest(project), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", ManifestFile, err)
	}
	files[ManifestFile] = append(manifest, '\n')

	written := make([]string, 0, len(files))
	for name, data := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, name)
	}
	sort.Strings(written)
	return written, nil
}
