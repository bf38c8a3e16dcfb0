package aws

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	ekstypes "github.com/aws/aws-sdk-go-v2/service/eks/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// regionOf applies the per-call options to find the target region.
func regionOf[O any](optFns []func(*O), get func(*O) string) string {
	var o O
	for _, fn := range optFns {
		fn(&o)
	}
	return get(&o)
}

type fakeEKS struct {
	clusters map[string]ekstypes.Cluster // keyed by region/name
	err      error
}

func (f *fakeEKS) DescribeCluster(_ context.Context, in *eks.DescribeClusterInput, optFns ...func(*eks.Options)) (*eks.DescribeClusterOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	region := regionOf(optFns, func(o *eks.Options) string { return o.Region })
	c, ok := f.clusters[region+"/"+aws.ToString(in.Name)]
	if !ok {
		return nil, &ekstypes.ResourceNotFoundException{Message: aws.String("No cluster found")}
	}
	return &eks.DescribeClusterOutput{Cluster: &c}, nil
}

type fakeEC2 struct {
	mu      sync.Mutex
	zones   map[string]int
	offered map[string][]string
	pages   int
	regions []string
}

func (f *fakeEC2) DescribeAvailabilityZones(_ context.Context, _ *ec2.DescribeAvailabilityZonesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeAvailabilityZonesOutput, error) {
	region := regionOf(optFns, func(o *ec2.Options) string { return o.Region })
	f.mu.Lock()
	f.regions = append(f.regions, region)
	f.mu.Unlock()

	n, ok := f.zones[region]
	if !ok {
		return nil, errors.New("unknown region")
	}
	out := &ec2.DescribeAvailabilityZonesOutput{}
	for range n {
		out.AvailabilityZones = append(out.AvailabilityZones, ec2types.AvailabilityZone{State: ec2types.AvailabilityZoneStateAvailable})
	}
	return out, nil
}

func (f *fakeEC2) DescribeInstanceTypeOfferings(_ context.Context, in *ec2.DescribeInstanceTypeOfferingsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstanceTypeOfferingsOutput, error) {
	region := regionOf(optFns, func(o *ec2.Options) string { return o.Region })
	offered := f.offered[region]

	// One offering per page exercises pagination.
	start := 0
	if in.NextToken != nil {
		for i, t := range offered {
			if t == *in.NextToken {
				start = i
			}
		}
	}
	f.mu.Lock()
	f.pages++
	f.mu.Unlock()

	out := &ec2.DescribeInstanceTypeOfferingsOutput{}
	if start < len(offered) {
		out.InstanceTypeOfferings = []ec2types.InstanceTypeOffering{{InstanceType: ec2types.InstanceType(offered[start])}}
	}
	if start+1 < len(offered) {
		out.NextToken = aws.String(offered[start+1])
	}
	return out, nil
}

func TestInspector_ClusterStatus(t *testing.T) {
	t.Parallel()

	api := &fakeEKS{clusters: map[string]ekstypes.Cluster{
		"us-west-2/demo-us-west-2": {Status: ekstypes.ClusterStatusActive, Version: aws.String("1.32"), Endpoint: aws.String("https://abc.eks.amazonaws.com")},
		"us-east-2/demo-us-east-2": {Status: ekstypes.ClusterStatusCreating},
	}}
	in := NewInspectorFromClients(api, nil)

	st, err := in.ClusterStatus(context.Background(), "us-west-2", "demo-us-west-2")
	require.NoError(t, err)
	assert.Equal(t, StateRunning, st.State)
	assert.Equal(t, "ACTIVE", st.Raw)
	assert.Equal(t, "1.32", st.Version)

	st, err = in.ClusterStatus(context.Background(), "us-east-2", "demo-us-east-2")
	require.NoError(t, err)
	assert.Equal(t, StateProvisioning, st.State)

	st, err = in.ClusterStatus(context.Background(), "us-east-2", "demo-us-west-2")
	require.NoError(t, err)
	assert.Equal(t, StateNotFound, st.State)
}

func TestInspector_ClusterStatusError(t *testing.T) {
	t.Parallel()
	in := NewInspectorFromClients(&fakeEKS{err: errors.New("expired token")}, nil)

	_, err := in.ClusterStatus(context.Background(), "us-west-2", "demo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to describe cluster demo in us-west-2")
}

func TestConvertClusterStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  ekstypes.ClusterStatus
		want ClusterState
	}{
		{ekstypes.ClusterStatusCreating, StateProvisioning},
		{ekstypes.ClusterStatusActive, StateRunning},
		{ekstypes.ClusterStatusUpdating, StateReconciling},
		{ekstypes.ClusterStatusDeleting, StateDeleting},
		{ekstypes.ClusterStatusFailed, StateError},
		{"CREATE_FAILED", StateError},
		{"DELETE_FAILED", StateError},
		{"SOMETHING_NEW", StateUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, convertClusterStatus(tt.raw), string(tt.raw))
	}
}

func TestInspector_Preflight(t *testing.T) {
	t.Parallel()

	api := &fakeEC2{
		zones: map[string]int{"us-west-2": 4, "us-east-2": 2},
		offered: map[string][]string{
			"us-west-2": {"m5.large", "m5a.large"},
			"us-east-2": {"m5.large"},
		},
	}
	in := NewInspectorFromClients(nil, api)

	findings, err := in.Preflight(context.Background(), "us-west-2", []string{"m5.large", "m5a.large"}, 3)
	require.NoError(t, err)
	assert.True(t, Passed(findings))
	assert.Len(t, findings, 2)
	assert.Equal(t, 2, api.pages, "second page must be requested")

	findings, err = in.Preflight(context.Background(), "us-east-2", []string{"m5.large", "m5a.large"}, 3)
	require.NoError(t, err)
	assert.False(t, Passed(findings))
	assert.Equal(t, CheckAvailabilityZones, findings[0].Check)
	assert.False(t, findings[0].OK)
	assert.Equal(t, "2 available, 3 required", findings[0].Detail)
	assert.False(t, findings[1].OK)
	assert.Contains(t, findings[1].Detail, "m5a.large")
}

func TestInspector_PreflightRegions(t *testing.T) {
	t.Parallel()

	api := &fakeEC2{
		zones:   map[string]int{"us-west-2": 3, "us-east-2": 3},
		offered: map[string][]string{"us-west-2": {"m5.large"}, "us-east-2": {"m5.large"}},
	}
	in := NewInspectorFromClients(nil, api)

	findings, err := in.PreflightRegions(context.Background(), []string{"us-west-2", "us-east-2"}, []string{"m5.large"}, 3)
	require.NoError(t, err)
	require.Len(t, findings, 4)
	assert.Equal(t, "us-west-2", findings[0].Region)
	assert.Equal(t, "us-east-2", findings[2].Region)
	assert.True(t, Passed(findings))
	assert.ElementsMatch(t, []string{"us-west-2", "us-east-2"}, api.regions)

	_, err = in.PreflightRegions(context.Background(), []string{"us-west-2", "eu-nowhere-1"}, nil, 3)
	assert.Error(t, err)
}
