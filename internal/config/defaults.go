package config

// Default values. They reproduce the reference two-region layout.
const (
	DefaultPrimaryRegion     = "us-west-2"
	DefaultSecondaryRegion   = "us-east-2"
	DefaultProject           = "multi-region-eks"
	DefaultClusterName       = "bootcampDemo"
	DefaultKubernetesVersion = "1.32"
	DefaultCapacity          = 2
	DefaultWorkerMinSize     = 2
	DefaultWorkerMaxSize     = 6
	DefaultInstanceType      = "m5.large"
	DefaultVPCCIDR           = "10.0.0.0/16"
	DefaultMaxAZs            = 3
	DefaultRepositoryName    = "pyBootCamp"
	DefaultImageRepository   = "ecr-for-bootcamp-py"
	DefaultDeploymentName    = "flask-app"
	DefaultContainerName     = "flask"
	DefaultManifestsPath     = "k8s"
	DefaultManifestsRoot     = "."
	DefaultCommonDir         = "yaml-common"
	DefaultFluxGitURL        = "git@github.com:org/repo"
	DefaultFluxRepository    = "https://charts.fluxcd.io"
	DefaultArtifactsPrefix   = "mreks"
)

// DefaultWorkerInstanceTypes are the two interchangeable spot shapes.
var DefaultWorkerInstanceTypes = []string{"m5.large", "m5a.large"}

// Default returns a configuration populated with every default.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills zero values. Explicit values are never overwritten.
func (c *Config) applyDefaults() {
	if c.Project == "" {
		c.Project = DefaultProject
	}
	if c.Regions.Primary == "" {
		c.Regions.Primary = DefaultPrimaryRegion
	}
	if c.Regions.Secondary == "" {
		c.Regions.Secondary = DefaultSecondaryRegion
	}

	cl := &c.Cluster
	if cl.Name == "" {
		cl.Name = DefaultClusterName
	}
	if cl.KubernetesVersion == "" {
		cl.KubernetesVersion = DefaultKubernetesVersion
	}
	if cl.DefaultInstanceType == "" {
		cl.DefaultInstanceType = DefaultInstanceType
	}
	if cl.DefaultCapacity == nil {
		n := DefaultCapacity
		cl.DefaultCapacity = &n
	}
	w := &cl.Workers
	if w.MinSize == 0 {
		w.MinSize = DefaultWorkerMinSize
	}
	if w.MaxSize == 0 {
		w.MaxSize = max(DefaultWorkerMaxSize, w.MinSize)
	}
	if w.DesiredSize == 0 {
		w.DesiredSize = w.MinSize
	}
	if len(w.InstanceTypes) == 0 {
		w.InstanceTypes = append([]string(nil), DefaultWorkerInstanceTypes...)
	}
	if w.CapacityType == "" {
		w.CapacityType = CapacitySpot
	}

	n := &c.Network
	if n.CIDR == "" {
		n.CIDR = DefaultVPCCIDR
	}
	if n.MaxAZs == 0 {
		n.MaxAZs = DefaultMaxAZs
	}
	if n.NATGateways == 0 {
		n.NATGateways = n.MaxAZs
	}

	if c.Manifests.Root == "" {
		c.Manifests.Root = DefaultManifestsRoot
	}
	if c.Manifests.CommonDir == "" {
		c.Manifests.CommonDir = DefaultCommonDir
	}

	p := &c.Pipeline
	if p.RepositoryName == "" {
		p.RepositoryName = DefaultRepositoryName
	}
	if p.ImageRepositoryName == "" {
		p.ImageRepositoryName = DefaultImageRepository
	}
	if p.DeploymentName == "" {
		p.DeploymentName = DefaultDeploymentName
	}
	if p.ContainerName == "" {
		p.ContainerName = DefaultContainerName
	}
	if p.ManifestsPath == "" {
		p.ManifestsPath = DefaultManifestsPath
	}

	if c.Flux.GitURL == "" {
		c.Flux.GitURL = DefaultFluxGitURL
	}
	if c.Flux.ChartRepository == "" {
		c.Flux.ChartRepository = DefaultFluxRepository
	}

	if c.Artifacts.Prefix == "" {
		c.Artifacts.Prefix = DefaultArtifactsPrefix
	}
}
