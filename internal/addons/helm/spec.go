package helm

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// ChartSpec locates a chart in a repository.
type ChartSpec struct {
	Repository string `yaml:"repository" json:"repository"`
	Name       string `yaml:"chart" json:"chart"`
	// Version is empty for the latest published version.
	Version string `yaml:"version,omitempty" json:"version,omitempty"`
}

func (s ChartSpec) String() string {
	if s.Version == "" {
		return fmt.Sprintf("%s/%s", s.Repository, s.Name)
	}
	return fmt.Sprintf("%s/%s@%s", s.Repository, s.Name, s.Version)
}

// Validate checks that the spec can be resolved.
func (s ChartSpec) Validate() error {
	if s.Repository == "" {
		return fmt.Errorf("chart %q has no repository", s.Name)
	}
	if s.Name == "" {
		return fmt.Errorf("chart in %s has no name", s.Repository)
	}
	if s.Version != "" {
		if _, err := semver.NewVersion(s.Version); err != nil {
			return fmt.Errorf("chart %s version %q: %w", s.Name, s.Version, err)
		}
	}
	return nil
}

// WithVersion returns a copy of s pinned to version. An empty version keeps s unchanged.
func (s ChartSpec) WithVersion(version string) ChartSpec {
	if version != "" {
		s.Version = version
	}
	return s
}

// WithRepository returns a copy of s served from repository. An empty
// repository keeps s unchanged.
func (s ChartSpec) WithRepository(repository string) ChartSpec {
	if repository != "" {
		s.Repository = repository
	}
	return s
}

// Chart registry keys.
const (
	ChartLoadBalancerController = "aws-load-balancer-controller"
	ChartClusterAutoscaler      = "cluster-autoscaler"
	ChartCloudWatchMetrics      = "aws-cloudwatch-metrics"
	ChartTigeraOperator         = "tigera-operator"
	ChartPrometheus             = "prometheus"
	ChartFlux                   = "flux"
)

// DefaultChartSpecs contains the chart specification of every managed add-on.
var DefaultChartSpecs = map[string]ChartSpec{
	ChartLoadBalancerController: {
		Repository: "https://aws.github.io/eks-charts",
		Name:       "aws-load-balancer-controller",
		Version:    "1.13.3",
	},
	ChartClusterAutoscaler: {
		Repository: "https://kubernetes.github.io/autoscaler",
		Name:       "cluster-autoscaler",
		Version:    "9.50.1",
	},
	ChartCloudWatchMetrics: {
		Repository: "https://aws.github.io/eks-charts",
		Name:       "aws-cloudwatch-metrics",
		Version:    "0.0.11",
	},
	ChartTigeraOperator: {
		Repository: "https://docs.tigera.io/calico/charts",
		Name:       "tigera-operator",
		Version:    "v3.30.2",
	},
	ChartPrometheus: {
		Repository: "https://prometheus-community.github.io/helm-charts",
		Name:       "prometheus",
		Version:    "14.6.0",
	},
	ChartFlux: {
		Repository: "https://charts.fluxcd.io",
		Name:       "flux",
	},
}

// GetChartSpec returns the registered spec for name.
func GetChartSpec(name string) (ChartSpec, error) {
	spec, ok := DefaultChartSpecs[name]
	if !ok {
		return ChartSpec{}, fmt.Errorf("unknown chart %q", name)
	}
	return spec, nil
}
