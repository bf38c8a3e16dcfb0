package buildspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTarget() DeployTarget {
	return DeployTarget{
		Region:             "us-east-2",
		ClusterName:        "bootcampDemo",
		RoleARN:            "arn:aws:iam::123456789012:role/deploy",
		ImageRepositoryURI: "123456789012.dkr.ecr.us-west-2.amazonaws.com/ecr-for-bootcamp-py",
		DeploymentName:     "flask-app",
		ContainerName:      "flask",
		ManifestsPath:      "k8s",
	}
}

func TestImageBuild(t *testing.T) {
	t.Parallel()
	s := ImageBuild("123456789012.dkr.ecr.us-west-2.amazonaws.com/app", "us-west-2")

	require.NoError(t, s.Validate())
	cmds := s.Commands()
	require.Len(t, cmds, 5)
	assert.Contains(t, cmds[0], "docker login")
	assert.Contains(t, cmds[0], "${REPOSITORY_URI%%/*}")
	assert.Equal(t, "docker build -t $REPOSITORY_URI:${CODEBUILD_RESOLVED_SOURCE_VERSION:-latest} .", cmds[1])
	assert.Equal(t, "docker push $REPOSITORY_URI:latest", cmds[4])
	assert.Equal(t, "us-west-2", s.Env.Variables[VarTargetRegion])
}

func TestClusterDeploy(t *testing.T) {
	t.Parallel()
	s := ClusterDeploy(testTarget())

	require.NoError(t, s.Validate())
	cmds := s.Commands()
	require.Len(t, cmds, 4)
	assert.Equal(t, "aws eks update-kubeconfig --name $CLUSTER_NAME --region $TARGET_REGION --role-arn $DEPLOY_ROLE_ARN", cmds[0])
	assert.Equal(t, "kubectl apply -f $MANIFESTS_PATH/", cmds[1])
	assert.Contains(t, cmds[2], "kubectl set image deployment/$DEPLOYMENT_NAME $CONTAINER_NAME=")
	assert.Equal(t, "arn:aws:iam::123456789012:role/deploy", s.Env.Variables[VarRoleARN])
}

func TestDeployTarget_Validate(t *testing.T) {
	t.Parallel()
	require.NoError(t, testTarget().Validate())

	missing := testTarget()
	missing.RoleARN = ""
	err := missing.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "role ARN")
}

func TestDeployTarget_Validate_ReportsFirstMissingField(t *testing.T) {
	t.Parallel()

	empty := DeployTarget{}
	for range 20 {
		err := empty.Validate()
		require.Error(t, err)
		assert.Equal(t, "deploy target has no region", err.Error())
	}

	partial := testTarget()
	partial.ContainerName = ""
	partial.ManifestsPath = ""
	partial.ClusterName = ""
	for range 20 {
		assert.EqualError(t, partial.Validate(), "deploy target has no cluster name")
	}
}

func TestSpec_Object(t *testing.T) {
	t.Parallel()

	obj, err := ImageBuild("123456789012.dkr.ecr.us-west-2.amazonaws.com/app", "us-west-2").Object()
	require.NoError(t, err)
	assert.Equal(t, "0.2", obj["version"])

	phases, ok := obj["phases"].(map[string]any)
	require.True(t, ok)
	post := phases["post_build"].(map[string]any)["commands"].([]any)
	assert.Equal(t, "docker push $REPOSITORY_URI:latest", post[1])

	_, err = Spec{Version: Version}.Object()
	assert.Error(t, err)
}

func TestRenderParseRoundTrip(t *testing.T) {
	t.Parallel()
	s := ClusterDeploy(testTarget())

	out, err := s.Render()
	require.NoError(t, err)
	assert.Contains(t, out, "version: \"0.2\"")
	assert.Contains(t, out, "pre_build:")

	parsed, err := parse([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, s.Commands(), parsed.Commands())
	assert.Equal(t, s.Env, parsed.Env)
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{"not yaml", "phases: ["},
		{"no version", "phases:\n  build:\n    commands: [make]\n"},
		{"no commands", "version: 0.2\nphases: {}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}
