package aws

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	ekstypes "github.com/aws/aws-sdk-go-v2/service/eks/types"
	"golang.org/x/sync/errgroup"
)

// EKSAPI is the EKS subset used by the inspector.
type EKSAPI interface {
	DescribeCluster(ctx context.Context, in *eks.DescribeClusterInput, optFns ...func(*eks.Options)) (*eks.DescribeClusterOutput, error)
}

// EC2API is the EC2 subset used by preflight checks.
type EC2API interface {
	DescribeAvailabilityZones(ctx context.Context, in *ec2.DescribeAvailabilityZonesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeAvailabilityZonesOutput, error)
	DescribeInstanceTypeOfferings(ctx context.Context, in *ec2.DescribeInstanceTypeOfferingsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstanceTypeOfferingsOutput, error)
}

// ClusterState is the lifecycle state of an EKS cluster.
type ClusterState string

const (
	StateProvisioning ClusterState = "Provisioning"
	StateRunning      ClusterState = "Running"
	StateReconciling  ClusterState = "Reconciling"
	StateDeleting     ClusterState = "Deleting"
	StateError        ClusterState = "Error"
	StateNotFound     ClusterState = "NotFound"
	StateUnknown      ClusterState = "Unknown"
)

// ClusterStatus describes one cluster.
type ClusterStatus struct {
	Region   string
	Name     string
	State    ClusterState
	Raw      string
	Version  string
	Endpoint string
}

// Inspector reads cluster and region state. Calls are routed to the region
// passed to each method.
type Inspector struct {
	eks EKSAPI
	ec2 EC2API
}

// NewInspector creates an inspector from SDK configuration.
func NewInspector(cfg aws.Config) *Inspector {
	return &Inspector{eks: eks.NewFromConfig(cfg), ec2: ec2.NewFromConfig(cfg)}
}

// NewInspectorFromClients creates an inspector from existing clients.
func NewInspectorFromClients(eksAPI EKSAPI, ec2API EC2API) *Inspector {
	return &Inspector{eks: eksAPI, ec2: ec2API}
}

// ClusterStatus describes the cluster name in region.
func (i *Inspector) ClusterStatus(ctx context.Context, region, name string) (ClusterStatus, error) {
	status := ClusterStatus{Region: region, Name: name}

	out, err := i.eks.DescribeCluster(ctx, &eks.DescribeClusterInput{Name: aws.String(name)},
		func(o *eks.Options) { o.Region = region })
	if err != nil {
		var notFound *ekstypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			status.State = StateNotFound
			return status, nil
		}
		return status, fmt.Errorf("failed to describe cluster %s in %s: %w", name, region, err)
	}
	if out.Cluster == nil {
		status.State = StateUnknown
		return status, nil
	}

	status.Raw = string(out.Cluster.Status)
	status.State = convertClusterStatus(out.Cluster.Status)
	status.Version = aws.ToString(out.Cluster.Version)
	status.Endpoint = aws.ToString(out.Cluster.Endpoint)
	return status, nil
}

func convertClusterStatus(s ekstypes.ClusterStatus) ClusterState {
	switch s {
	case ekstypes.ClusterStatusCreating, ekstypes.ClusterStatusPending:
		return StateProvisioning
	case ekstypes.ClusterStatusActive:
		return StateRunning
	case ekstypes.ClusterStatusUpdating:
		return StateReconciling
	case ekstypes.ClusterStatusDeleting:
		return StateDeleting
	case ekstypes.ClusterStatusFailed, "CREATE_FAILED", "DELETE_FAILED":
		return StateError
	default:
		return StateUnknown
	}
}

// Finding is the result of one preflight check.
type Finding struct {
	Region string
	Check  string
	OK     bool
	Detail string
}

// Preflight check names.
const (
	CheckAvailabilityZones = "availability-zones"
	CheckInstanceTypes     = "instance-types"
)

// Preflight checks that region has at least maxAZs available zones and
// offers every instance type.
func (i *Inspector) Preflight(ctx context.Context, region string, instanceTypes []string, maxAZs int) ([]Finding, error) {
	inRegion := func(o *ec2.Options) { o.Region = region }

	azs, err := i.ec2.DescribeAvailabilityZones(ctx, &ec2.DescribeAvailabilityZonesInput{
		Filters: []ec2types.Filter{{Name: aws.String("state"), Values: []string{"available"}}},
	}, inRegion)
	if err != nil {
		return nil, fmt.Errorf("failed to describe availability zones in %s: %w", region, err)
	}
	zones := len(azs.AvailabilityZones)
	findings := []Finding{{
		Region: region,
		Check:  CheckAvailabilityZones,
		OK:     zones >= maxAZs,
		Detail: fmt.Sprintf("%d available, %d required", zones, maxAZs),
	}}

	offered, err := i.offeredInstanceTypes(ctx, instanceTypes, inRegion)
	if err != nil {
		return nil, fmt.Errorf("failed to describe instance type offerings in %s: %w", region, err)
	}
	var missing []string
	for _, t := range instanceTypes {
		if !slices.Contains(offered, t) {
			missing = append(missing, t)
		}
	}
	f := Finding{Region: region, Check: CheckInstanceTypes, OK: len(missing) == 0, Detail: "all offered"}
	if len(missing) > 0 {
		f.Detail = fmt.Sprintf("not offered: %v", missing)
	}
	return append(findings, f), nil
}

func (i *Inspector) offeredInstanceTypes(ctx context.Context, instanceTypes []string, optFns ...func(*ec2.Options)) ([]string, error) {
	if len(instanceTypes) == 0 {
		return nil, nil
	}

	in := &ec2.DescribeInstanceTypeOfferingsInput{
		LocationType: ec2types.LocationTypeRegion,
		Filters:      []ec2types.Filter{{Name: aws.String("instance-type"), Values: instanceTypes}},
	}
	var offered []string
	for {
		out, err := i.ec2.DescribeInstanceTypeOfferings(ctx, in, optFns...)
		if err != nil {
			return nil, err
		}
		for _, o := range out.InstanceTypeOfferings {
			offered = append(offered, string(o.InstanceType))
		}
		if aws.ToString(out.NextToken) == "" {
			return offered, nil
		}
		in.NextToken = out.NextToken
	}
}

// PreflightRegions runs Preflight for every region concurrently. Findings
// are returned grouped in region order.
func (i *Inspector) PreflightRegions(ctx context.Context, regions, instanceTypes []string, maxAZs int) ([]Finding, error) {
	results := make([][]Finding, len(regions))
	g, ctx := errgroup.WithContext(ctx)
	for idx, region := range regions {
		g.Go(func() error {
			f, err := i.Preflight(ctx, region, instanceTypes, maxAZs)
			results[idx] = f
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slices.Concat(results...), nil
}

// Passed reports whether every finding is OK.
func Passed(findings []Finding) bool {
	for _, f := range findings {
		if !f.OK {
			return false
		}
	}
	return true
}
