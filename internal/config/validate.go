package config

import (
	"errors"
	"fmt"
	"maps"
	"net"
	"regexp"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/imamik/mreks/internal/topology"
)

var (
	accountRegex     = regexp.MustCompile(`^[0-9]{12}$`)
	clusterNameRegex = regexp.MustCompile(`^[0-9A-Za-z][A-Za-z0-9\-_]{0,99}$`)
	projectRegex     = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)
)

// MaxProjectLength bounds the project name. Derived IAM role names shorten
// longer prefixes on their own, the pipeline name ("<project>-dep") does not.
const MaxProjectLength = 64

// knownRegions lists the commercial AWS regions offering EKS.
var knownRegions = []string{
	"af-south-1",
	"ap-east-1",
	"ap-northeast-1", "ap-northeast-2", "ap-northeast-3",
	"ap-south-1", "ap-south-2",
	"ap-southeast-1", "ap-southeast-2", "ap-southeast-3", "ap-southeast-4",
	"ca-central-1", "ca-west-1",
	"eu-central-1", "eu-central-2",
	"eu-north-1",
	"eu-south-1", "eu-south-2",
	"eu-west-1", "eu-west-2", "eu-west-3",
	"il-central-1",
	"me-central-1", "me-south-1",
	"sa-east-1",
	"us-east-1", "us-east-2",
	"us-west-1", "us-west-2",
}

// IsKnownRegion reports whether region is a known AWS region.
func IsKnownRegion(region string) bool {
	return slices.Contains(knownRegions, region)
}

// Validate checks the configuration and reports every problem found.
// An empty account ID is accepted; see [Config.RequireAccount].
func (c *Config) Validate() error {
	var errs []error

	switch {
	case c.Project == "":
		errs = append(errs, errors.New("project is required"))
	case len(c.Project) > MaxProjectLength:
		errs = append(errs, fmt.Errorf("project %q is longer than %d characters", c.Project, MaxProjectLength))
	case !projectRegex.MatchString(c.Project):
		errs = append(errs, fmt.Errorf("project %q must start with an alphanumeric character and contain only alphanumerics, '-' or '_'", c.Project))
	}

	if c.AccountID != "" && !accountRegex.MatchString(c.AccountID) {
		errs = append(errs, fmt.Errorf("accountId %q must be 12 digits", c.AccountID))
	}

	if !IsKnownRegion(c.Regions.Primary) {
		errs = append(errs, fmt.Errorf("regions.primary %q is not a known AWS region", c.Regions.Primary))
	}
	if !IsKnownRegion(c.Regions.Secondary) {
		errs = append(errs, fmt.Errorf("regions.secondary %q is not a known AWS region", c.Regions.Secondary))
	}
	if c.Regions.Primary != "" && c.Regions.Primary == c.Regions.Secondary {
		errs = append(errs, topology.ErrSameRegion)
	}

	errs = append(errs, c.Cluster.validate()...)
	errs = append(errs, c.Network.validate(c.Regions)...)

	if c.Pipeline.RepositoryName == "" {
		errs = append(errs, errors.New("pipeline.repositoryName is required"))
	}
	if c.Pipeline.ImageRepositoryName == "" {
		errs = append(errs, errors.New("pipeline.imageRepositoryName is required"))
	}

	if c.Flux.GitURL == "" {
		errs = append(errs, errors.New("flux.gitURL is required"))
	}
	if c.Flux.ChartVersion != "" {
		if _, err := semver.NewVersion(c.Flux.ChartVersion); err != nil {
			errs = append(errs, fmt.Errorf("flux.chartVersion %q: %w", c.Flux.ChartVersion, err))
		}
	}

	return errors.Join(errs...)
}

func (c ClusterConfig) validate() []error {
	var errs []error

	if !clusterNameRegex.MatchString(c.Name) {
		errs = append(errs, fmt.Errorf("cluster.name %q must start with an alphanumeric character and contain only alphanumerics, '-' or '_'", c.Name))
	}
	if _, err := semver.NewVersion(c.KubernetesVersion); err != nil {
		errs = append(errs, fmt.Errorf("cluster.kubernetesVersion %q: %w", c.KubernetesVersion, err))
	}
	if c.DefaultNodeCount() < 0 {
		errs = append(errs, errors.New("cluster.defaultCapacity must not be negative"))
	}

	w := c.Workers
	if w.MinSize < 1 {
		errs = append(errs, errors.New("cluster.workers.minSize must be at least 1"))
	}
	if w.MaxSize < w.MinSize {
		errs = append(errs, fmt.Errorf("cluster.workers.maxSize (%d) must be >= minSize (%d)", w.MaxSize, w.MinSize))
	}
	if w.DesiredSize < w.MinSize || w.DesiredSize > w.MaxSize {
		errs = append(errs, fmt.Errorf("cluster.workers.desiredSize (%d) must be between minSize and maxSize", w.DesiredSize))
	}
	if len(w.InstanceTypes) == 0 {
		errs = append(errs, errors.New("cluster.workers.instanceTypes must list at least one instance type"))
	}
	if w.CapacityType != CapacitySpot && w.CapacityType != CapacityOnDemand {
		errs = append(errs, fmt.Errorf("cluster.workers.capacityType must be %s or %s", CapacitySpot, CapacityOnDemand))
	}

	return errs
}

func (n NetworkConfig) validate(regions RegionsConfig) []error {
	var errs []error

	_, ipnet, err := net.ParseCIDR(n.CIDR)
	if err != nil {
		errs = append(errs, fmt.Errorf("network.cidr %q is invalid: %w", n.CIDR, err))
	} else if ones, _ := ipnet.Mask.Size(); ones > 20 {
		errs = append(errs, fmt.Errorf("network.cidr %q is too small, need /20 or larger", n.CIDR))
	}
	if n.MaxAZs < 2 || n.MaxAZs > 3 {
		errs = append(errs, errors.New("network.maxAzs must be 2 or 3"))
	}
	if n.NATGateways < 1 || n.NATGateways > n.MaxAZs {
		errs = append(errs, errors.New("network.natGateways must be between 1 and maxAzs"))
	}

	for _, region := range slices.Sorted(maps.Keys(n.Zones)) {
		zones := n.Zones[region]
		if region != regions.Primary && region != regions.Secondary {
			errs = append(errs, fmt.Errorf("network.zones.%s: region is not configured", region))
			continue
		}
		if len(zones) < n.MaxAZs {
			errs = append(errs, fmt.Errorf("network.zones.%s lists %d zones, maxAzs needs %d", region, len(zones), n.MaxAZs))
		}
		for _, z := range zones {
			if !strings.HasPrefix(z, region) {
				errs = append(errs, fmt.Errorf("network.zones.%s: zone %q is not in the region", region, z))
			}
		}
	}

	return errs
}

// RequireAccount returns an error unless a valid account ID is set.
func (c *Config) RequireAccount() error {
	if c.AccountID == "" {
		return fmt.Errorf("account ID is not set: configure accountId or %s", EnvAccount)
	}
	if !accountRegex.MatchString(c.AccountID) {
		return fmt.Errorf("accountId %q must be 12 digits", c.AccountID)
	}
	return nil
}

// Topology binds the configured regions to their roles.
func (c *Config) Topology() (topology.Regions, error) {
	return topology.NewRegions(c.Regions.Primary, c.Regions.Secondary)
}
