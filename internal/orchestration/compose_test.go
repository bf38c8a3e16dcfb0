package orchestration

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/mreks/internal/config"
	"github.com/imamik/mreks/internal/pipeline"
	"github.com/imamik/mreks/internal/provisioning/workload"
	"github.com/imamik/mreks/internal/topology"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{"yaml-common", "yaml-us-west-2", "yaml-us-east-2"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, dir, "cm.yaml"), []byte("kind: ConfigMap\n"), 0o644))
	}

	cfg := config.Default()
	cfg.AccountID = "123456789012"
	cfg.Manifests.Root = root
	return cfg
}

func TestPlan_Order(t *testing.T) {
	t.Parallel()
	p, err := NewComposer(testConfig(t), logr.Discard()).Plan()
	require.NoError(t, err)

	levels, err := p.Order()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"cluster/us-east-2", "cluster/us-west-2"},
		{"release", "workloads/us-east-2", "workloads/us-west-2"},
	}, levels)

	rel, ok := p.Node(ReleaseNode)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"cluster/us-west-2", "cluster/us-east-2"}, rel.DependsOn)
}

func TestCompose_TwoRegionScenario(t *testing.T) {
	t.Parallel()
	a, err := NewComposer(testConfig(t), logr.Discard()).Compose(context.Background())
	require.NoError(t, err)

	require.Len(t, a.Clusters, 2)
	primary := a.Cluster(a.Regions.Primary)
	secondary := a.Cluster(a.Regions.Secondary)

	assert.Equal(t, "us-west-2", primary.Handle.Region.Name)
	assert.Equal(t, "first-region role", primary.DeployIdentity.Label())
	assert.Equal(t, "second-region role", secondary.DeployIdentity.Label())

	require.NotNil(t, a.Release)
	assert.Equal(t, pipeline.Stages(), a.Release.Stages)
	assert.Equal(t, primary.DeployIdentity.Identity().RoleARN, a.Release.PrimaryDeploy.RoleARN)
	assert.Equal(t, secondary.DeployIdentity.Identity().RoleARN, a.Release.SecondaryDeploy.RoleARN)
	assert.Equal(t, primary.Handle.Name, a.Release.PrimaryDeploy.ClusterName)
	assert.Equal(t, secondary.Handle.Region.Name, a.Release.SecondaryDeploy.Region)
}

func TestCompose_LongProjectName(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	cfg.Project = "payments-platform-multi-region-release-" + strings.Repeat("x", 16)
	require.NoError(t, cfg.Validate())

	a, err := NewComposer(cfg, logr.Discard()).Compose(context.Background())
	require.NoError(t, err)

	primary := a.Cluster(a.Regions.Primary)
	secondary := a.Cluster(a.Regions.Secondary)
	assert.NotEqual(t, primary.Handle.AdminRoleARN, secondary.Handle.AdminRoleARN)
	assert.NotEqual(t, primary.DeployIdentity.Identity().RoleARN, secondary.DeployIdentity.Identity().RoleARN)
	assert.NotEqual(t, a.Release.PrimaryDeploy.RoleARN, a.Release.SecondaryDeploy.RoleARN)
}

func TestCompose_WorkloadsCommonFirst(t *testing.T) {
	t.Parallel()
	a, err := NewComposer(testConfig(t), logr.Discard()).Compose(context.Background())
	require.NoError(t, err)

	for _, region := range a.Regions.All() {
		b := a.Workloads[region.Name]
		assert.Equal(t, "ContainerStack-"+region.Name, b.StackName)
		require.Equal(t, 2, b.Manifests.Len())
		assert.Equal(t, "yaml-common", b.Manifests.Manifests[0].Dir)
		assert.Equal(t, "yaml-"+region.Name, b.Manifests.Manifests[1].Dir)
	}
}

func TestCompose_MissingCommonManifests(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	cfg.Manifests.Root = t.TempDir()

	_, err := NewComposer(cfg, logr.Discard()).Compose(context.Background())
	require.ErrorIs(t, err, workload.ErrManifestDir)
}

func TestCompose_MissingAccount(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	cfg.AccountID = ""

	_, err := NewComposer(cfg, logr.Discard()).Compose(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plan level 0")
}

func TestCompose_SameRegions(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	cfg.Regions.Secondary = cfg.Regions.Primary

	_, err := NewComposer(cfg, logr.Discard()).Compose(context.Background())
	require.ErrorIs(t, err, topology.ErrSameRegion)
}

func TestCompose_Cancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewComposer(testConfig(t), logr.Discard()).Compose(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestAssembly_Write(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	a, err := NewComposer(cfg, logr.Discard()).Compose(context.Background())
	require.NoError(t, err)

	dir := t.TempDir()
	written, err := a.Write(dir, cfg.Project)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"CicdStack.template.yaml",
		"ClusterStack-us-east-2.template.yaml",
		"ClusterStack-us-west-2.template.yaml",
		"manifest.json",
		"us-east-2/addons.yaml",
		"us-east-2/aws-node.yaml",
		"us-east-2/manifests.yaml",
		"us-east-2/workloads.yaml",
		"us-west-2/addons.yaml",
		"us-west-2/aws-node.yaml",
		"us-west-2/manifests.yaml",
		"us-west-2/workloads.yaml",
	}, written)

	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	require.NoError(t, err)
	var m Manifest
	require.NoError(t, json.Unmarshal(data, &m))

	assert.Equal(t, []string{"us-west-2", "us-east-2"}, m.Regions)
	require.Len(t, m.Stacks, 5)
	cicd := m.Stacks[4]
	assert.Equal(t, "CicdStack", cicd.Name)
	assert.Equal(t, []string{"ClusterStack-us-west-2", "ClusterStack-us-east-2"}, cicd.DependsOn)
	assert.Equal(t, []string{"ClusterStack-us-east-2"}, m.Stacks[3].DependsOn)
}

func TestComposeRelease_IgnoresManifests(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	cfg.Manifests.Root = filepath.Join(t.TempDir(), "missing")

	rel, err := NewComposer(cfg, logr.Discard()).ComposeRelease(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "CicdStack", rel.StackName)
	assert.Equal(t, "us-west-2", rel.PrimaryDeploy.Region)
	assert.Equal(t, "us-east-2", rel.SecondaryDeploy.Region)
}
