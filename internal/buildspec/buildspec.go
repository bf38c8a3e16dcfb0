// Package buildspec models CodeBuild build specifications and provides the
// two specs the release pipeline runs: the image build and the cluster deploy.
package buildspec

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Version is the buildspec format version.
const Version = "0.2"

// SourceVersionVar holds the resolved commit of the source stage.
const SourceVersionVar = "CODEBUILD_RESOLVED_SOURCE_VERSION"

// Spec is a CodeBuild buildspec.
type Spec struct {
	Version string `yaml:"version"`
	Env     Env    `yaml:"env,omitempty"`
	Phases  Phases `yaml:"phases"`
}

// Env declares build environment variables.
type Env struct {
	Variables map[string]string `yaml:"variables,omitempty"`
}

// Phases holds the build phases. CodeBuild runs them in field order.
type Phases struct {
	Install   *Phase `yaml:"install,omitempty"`
	PreBuild  *Phase `yaml:"pre_build,omitempty"`
	Build     *Phase `yaml:"build,omitempty"`
	PostBuild *Phase `yaml:"post_build,omitempty"`
}

// Phase is a list of shell commands.
type Phase struct {
	Commands []string `yaml:"commands"`
}

func phase(commands ...string) *Phase {
	return &Phase{Commands: commands}
}

// Commands flattens all phases into one ordered command list.
func (s Spec) Commands() []string {
	var out []string
	for _, p := range []*Phase{s.Phases.Install, s.Phases.PreBuild, s.Phases.Build, s.Phases.PostBuild} {
		if p != nil {
			out = append(out, p.Commands...)
		}
	}
	return out
}

// Validate checks the spec has a version and at least one command.
func (s Spec) Validate() error {
	if s.Version == "" {
		return fmt.Errorf("buildspec has no version")
	}
	if len(s.Commands()) == 0 {
		return fmt.Errorf("buildspec has no commands")
	}
	return nil
}

// Render serializes the spec to YAML.
func (s Spec) Render() (string, error) {
	out, err := yaml.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to render buildspec: %w", err)
	}
	return string(out), nil
}

// Object returns the spec as a generic document, the shape construct
// libraries take for inline buildspecs.
func (s Spec) Object() (map[string]any, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	out, err := s.Render()
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := yaml.Unmarshal([]byte(out), &obj); err != nil {
		return nil, fmt.Errorf("failed to convert buildspec: %w", err)
	}
	return obj, nil
}

// parse reads a buildspec from YAML.
func parse(data []byte) (Spec, error) {
	var s Spec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Spec{}, fmt.Errorf("failed to parse buildspec: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Spec{}, err
	}
	return s, nil
}
