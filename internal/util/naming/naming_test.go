package naming

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamingFunctions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{name: "ClusterStack", got: ClusterStack("us-west-2"), expected: "ClusterStack-us-west-2"},
		{name: "ContainerStack", got: ContainerStack("us-east-2"), expected: "ContainerStack-us-east-2"},
		{name: "CicdStack", got: CicdStack(), expected: "CicdStack"},
		{name: "AdminRole", got: AdminRole("bootcamp", "us-west-2"), expected: "bootcamp-eks-admin-us-west-2"},
		{name: "DeployRole", got: DeployRole("bootcamp", "us-east-2"), expected: "bootcamp-deploy-us-east-2"},
		{name: "SourceRepository", got: SourceRepository("pyBootCamp", "us-west-2"), expected: "pyBootCamp-us-west-2"},
		{name: "NodeGroup", got: NodeGroup("bootcampDemo", "spot-ng"), expected: "bootcampDemo-spot-ng"},
		{name: "DeployProject", got: DeployProject("bootcamp", "us-east-2"), expected: "bootcamp-deploy-to-us-east-2"},
		{name: "RoleARN", got: RoleARN("123456789012", "r"), expected: "arn:aws:iam::123456789012:role/r"},
		{name: "ClusterARN", got: ClusterARN("123456789012", "us-west-2", "c"), expected: "arn:aws:eks:us-west-2:123456789012:cluster/c"},
		{
			name:     "ImageRepositoryURI",
			got:      ImageRepositoryURI("123456789012", "us-west-2", "app"),
			expected: "123456789012.dkr.ecr.us-west-2.amazonaws.com/app",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}

func TestLogicalID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "SpotNgNodegroup", LogicalID("spot-ng", "nodegroup"))
	assert.Equal(t, "PrivateSubnet1", LogicalID("PrivateSubnet", "1"))
	assert.Equal(t, "UsWest2", LogicalID("us-west-2"))
	assert.Equal(t, "", LogicalID("--"))
}

func TestDeployRole_Truncated(t *testing.T) {
	t.Parallel()

	name := DeployRole(strings.Repeat("p", 70), "us-west-2")
	assert.LessOrEqual(t, len(name), MaxRoleNameLength)
	assert.True(t, strings.HasSuffix(name, "-deploy-us-west-2"), name)
}

func TestRoleNames_UniqueAcrossRegionsForLongProjects(t *testing.T) {
	t.Parallel()

	projects := []string{
		"payments-platform-multi-region-release-" + strings.Repeat("x", 16),
		"payments-platform-multi-region-release-" + strings.Repeat("x", 17),
		strings.Repeat("p", 64),
		"short",
	}
	regions := []string{"us-west-2", "us-east-2", "ap-southeast-4"}

	seen := map[string]string{}
	for _, project := range projects {
		for _, region := range regions {
			for _, name := range []string{AdminRole(project, region), DeployRole(project, region)} {
				assert.LessOrEqual(t, len(name), MaxRoleNameLength, name)
				assert.Contains(t, name, region)
				if prev, ok := seen[name]; ok {
					t.Errorf("%s is produced by both %s and %s/%s", name, prev, project, region)
				}
				seen[name] = project + "/" + region
			}
		}
	}
}

func TestRoleName_LongProjectKeepsReadablePrefix(t *testing.T) {
	t.Parallel()

	project := "payments-platform-multi-region-release-" + strings.Repeat("x", 16)
	name := AdminRole(project, "us-west-2")

	assert.Len(t, name, MaxRoleNameLength)
	assert.True(t, strings.HasPrefix(name, "payments-platform-multi-region-"), name)
	assert.True(t, strings.HasSuffix(name, "-eks-admin-us-west-2"), name)
	assert.Equal(t, name, AdminRole(project, "us-west-2"))
}
