package config

// Config is the full configuration of a two-region deployment.
type Config struct {
	// Project tags every declared resource.
	Project string `yaml:"project"`

	// AccountID is the 12-digit AWS account. When empty it is resolved from
	// the caller identity before synthesis.
	AccountID string `yaml:"accountId"`

	Regions   RegionsConfig   `yaml:"regions"`
	Cluster   ClusterConfig   `yaml:"cluster"`
	Network   NetworkConfig   `yaml:"network"`
	Manifests ManifestsConfig `yaml:"manifests"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Flux      FluxConfig      `yaml:"flux"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
}

// RegionsConfig names the primary and secondary regions.
type RegionsConfig struct {
	Primary   string `yaml:"primary"`
	Secondary string `yaml:"secondary"`
}

// ClusterConfig configures the EKS cluster declared in each region.
type ClusterConfig struct {
	Name              string `yaml:"name"`
	KubernetesVersion string `yaml:"kubernetesVersion"`

	// DefaultCapacity is the size of the on-demand node group created with
	// the cluster. An explicit zero disables it.
	DefaultCapacity     *int   `yaml:"defaultCapacity"`
	DefaultInstanceType string `yaml:"defaultInstanceType"`

	Workers WorkerPool `yaml:"workers"`
}

// WorkerPool configures the interchangeable-shape worker node group.
type WorkerPool struct {
	MinSize       int      `yaml:"minSize"`
	MaxSize       int      `yaml:"maxSize"`
	DesiredSize   int      `yaml:"desiredSize"`
	InstanceTypes []string `yaml:"instanceTypes"`
	CapacityType  string   `yaml:"capacityType"`
}

// Capacity types accepted by managed node groups.
const (
	CapacitySpot     = "SPOT"
	CapacityOnDemand = "ON_DEMAND"
)

// NetworkConfig configures the per-region VPC.
type NetworkConfig struct {
	CIDR   string `yaml:"cidr"`
	MaxAZs int    `yaml:"maxAzs"`

	// NATGateways defaults to one per availability zone.
	NATGateways int `yaml:"natGateways"`

	// Zones pins the availability zones of a region. Regions without an
	// entry use <region>a, <region>b and so on.
	Zones map[string][]string `yaml:"zones,omitempty"`
}

// ZonesFor returns the first MaxAZs availability zones of region.
func (n NetworkConfig) ZonesFor(region string) []string {
	if zones, ok := n.Zones[region]; ok && len(zones) >= n.MaxAZs {
		return zones[:n.MaxAZs]
	}
	zones := make([]string, n.MaxAZs)
	for i := range zones {
		zones[i] = region + string(rune('a'+i))
	}
	return zones
}

// ManifestsConfig locates the workload manifest directories.
// Region-specific manifests live in <root>/yaml-<region>.
type ManifestsConfig struct {
	Root      string `yaml:"root"`
	CommonDir string `yaml:"commonDir"`
}

// PipelineConfig configures the release pipeline.
type PipelineConfig struct {
	// RepositoryName is suffixed with the primary region to name the source repository.
	RepositoryName      string `yaml:"repositoryName"`
	ImageRepositoryName string `yaml:"imageRepositoryName"`

	// DeploymentName and ContainerName identify the container whose image the
	// deploy stages replace.
	DeploymentName string `yaml:"deploymentName"`
	ContainerName  string `yaml:"containerName"`

	// ManifestsPath is the manifest directory inside the source repository.
	ManifestsPath string `yaml:"manifestsPath"`
}

// FluxConfig configures the continuous-reconciliation add-on.
type FluxConfig struct {
	GitURL          string `yaml:"gitURL"`
	ChartRepository string `yaml:"chartRepository"`
	ChartVersion    string `yaml:"chartVersion"`
}

// ArtifactsConfig configures where synthesized templates are uploaded.
// An empty bucket disables upload.
type ArtifactsConfig struct {
	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"`
	Endpoint string `yaml:"endpoint"`
}

// DefaultNodeCount returns the size of the default node group.
func (c ClusterConfig) DefaultNodeCount() int {
	if c.DefaultCapacity == nil {
		return DefaultCapacity
	}
	return *c.DefaultCapacity
}

// HasAccount reports whether the account ID is known.
func (c *Config) HasAccount() bool {
	return c.AccountID != ""
}

// UploadEnabled reports whether synthesized output is uploaded.
func (c *Config) UploadEnabled() bool {
	return c.Artifacts.Bucket != ""
}

// RegionManifestDir returns the directory name holding manifests for region.
func RegionManifestDir(region string) string {
	return "yaml-" + region
}
