package release

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/mreks/internal/cfn"
	"github.com/imamik/mreks/internal/config"
	"github.com/imamik/mreks/internal/pipeline"
	"github.com/imamik/mreks/internal/provisioning"
	"github.com/imamik/mreks/internal/provisioning/cluster"
	"github.com/imamik/mreks/internal/topology"
	"github.com/imamik/mreks/internal/util/naming"
)

func testInput(t *testing.T) (*config.Config, Input) {
	t.Helper()
	cfg := config.Default()
	cfg.AccountID = "123456789012"
	regions, err := cfg.Topology()
	require.NoError(t, err)

	observer := provisioning.NewLogrObserver(logr.Discard())
	var targets []Target
	for _, r := range regions.All() {
		res, err := cluster.NewProvisioner(cfg, r, cluster.WithObserver(observer)).Provision(context.Background())
		require.NoError(t, err)
		targets = append(targets, Target{Handle: res.Handle, Identity: res.DeployIdentity})
	}
	return cfg, Input{Primary: targets[0], Secondary: targets[1]}
}

func provision(t *testing.T, cfg *config.Config, in Input) *Result {
	t.Helper()
	p, err := NewProvisioner(cfg, in, WithObserver(provisioning.NewLogrObserver(logr.Discard())))
	require.NoError(t, err)
	res, err := p.Provision(context.Background())
	require.NoError(t, err)
	return res
}

func TestProvision_StageOrder(t *testing.T) {
	t.Parallel()
	cfg, in := testInput(t)
	res := provision(t, cfg, in)

	assert.Equal(t, pipeline.Stages(), res.Stages)

	pl := onlyResource(t, res.Template, "AWS::CodePipeline::Pipeline")
	assert.Equal(t, "multi-region-eks-dep", pl.Properties["Name"])

	stages := pl.Properties["Stages"].([]any)
	var names []string
	for _, s := range stages {
		names = append(names, s.(map[string]any)["Name"].(string))
	}
	assert.Equal(t, []string{
		"Source",
		"Build",
		"DeployToMainEKScluster",
		"ApproveToDeployTo2ndRegion",
		"DeployTo2ndRegionCluster",
	}, names)

	gate := firstAction(stages[3])
	assert.Equal(t, "Manual", gate["ActionTypeId"].(map[string]any)["Provider"])

	src := firstAction(stages[0])
	assert.Equal(t, "CodeCommit", src["ActionTypeId"].(map[string]any)["Provider"])
	srcConfig := src["Configuration"].(map[string]any)
	assert.Equal(t, SourceBranch, srcConfig["BranchName"])
	assert.Equal(t, false, srcConfig["PollForSourceChanges"])
}

func TestProvision_PushToMasterStartsPipeline(t *testing.T) {
	t.Parallel()
	cfg, in := testInput(t)
	res := provision(t, cfg, in)

	pipelineIDs := res.Template.OfType("AWS::CodePipeline::Pipeline")
	require.Len(t, pipelineIDs, 1)

	rule := onlyResource(t, res.Template, "AWS::Events::Rule")
	pattern := rule.Properties["EventPattern"].(map[string]any)
	assert.Equal(t, []any{"aws.codecommit"}, pattern["source"])
	detail := pattern["detail"].(map[string]any)
	assert.Equal(t, []any{"master"}, detail["referenceName"])
	assert.Contains(t, detail["event"], "referenceUpdated")

	targets := rule.Properties["Targets"].([]any)
	require.Len(t, targets, 1)
	target := targets[0].(map[string]any)
	assert.Contains(t, fmt.Sprint(target["Arn"]), pipelineIDs[0])

	roleID := target["RoleArn"].(map[string]any)["Fn::GetAtt"].([]any)[0].(string)
	role, ok := res.Template.Resource(roleID)
	require.True(t, ok)
	assert.Contains(t, fmt.Sprint(role.Properties["AssumeRolePolicyDocument"]), "events.amazonaws.com")

	var allowed bool
	for _, st := range statements(res.Template, roleID) {
		if hasAction(st, "codepipeline:StartPipelineExecution") && strings.Contains(fmt.Sprint(st["Resource"]), pipelineIDs[0]) {
			allowed = true
		}
	}
	assert.True(t, allowed, "event role may start the pipeline")
}

func TestProvision_ReferencesBothClustersAndIdentities(t *testing.T) {
	t.Parallel()
	cfg, in := testInput(t)
	res := provision(t, cfg, in)

	assert.Equal(t, "us-west-2", res.PrimaryDeploy.Region)
	assert.Equal(t, in.Primary.Identity.Identity().RoleARN, res.PrimaryDeploy.RoleARN)
	assert.Equal(t, "us-east-2", res.SecondaryDeploy.Region)
	assert.Equal(t, in.Secondary.Identity.Identity().RoleARN, res.SecondaryDeploy.RoleARN)

	assert.Equal(t, res.ImageRepositoryURI, res.PrimaryDeploy.ImageRepositoryURI)
	assert.Equal(t, res.ImageRepositoryURI, res.SecondaryDeploy.ImageRepositoryURI)
	assert.Equal(t, "123456789012.dkr.ecr.us-west-2.amazonaws.com/ecr-for-bootcamp-py", res.ImageRepositoryURI)
}

func TestProvision_SourceRepository(t *testing.T) {
	t.Parallel()
	cfg, in := testInput(t)
	res := provision(t, cfg, in)

	assert.Equal(t, "pyBootCamp-us-west-2", res.SourceRepository)
	repo := onlyResource(t, res.Template, "AWS::CodeCommit::Repository")
	assert.Equal(t, "pyBootCamp-us-west-2", repo.Properties["RepositoryName"])

	out, ok := res.Template.Outputs["CodeCommitURL"]
	require.True(t, ok)
	require.NotNil(t, out.Export)
	assert.Equal(t, "CodeCommitURL", out.Export.Name)

	bucket := onlyResource(t, res.Template, "AWS::S3::Bucket")
	assert.Contains(t, fmt.Sprint(bucket.Properties["BucketEncryption"]), "aws:kms")
	assert.Equal(t, true, bucket.Properties["PublicAccessBlockConfiguration"].(map[string]any)["BlockPublicAcls"])
}

func TestProvision_Projects(t *testing.T) {
	t.Parallel()
	cfg, in := testInput(t)
	res := provision(t, cfg, in)

	assert.Len(t, res.Template.OfType("AWS::CodeBuild::Project"), 3)

	build := projectNamed(t, res.Template, naming.BuildProject(cfg.Project, "image-build"))
	env := build.Properties["Environment"].(map[string]any)
	assert.Equal(t, true, env["PrivilegedMode"])
	assert.Equal(t, "aws/codebuild/standard:7.0", env["Image"])
	assert.Contains(t, build.Properties["Source"].(map[string]any)["BuildSpec"], "docker push")

	deploy := projectNamed(t, res.Template, naming.DeployProject(cfg.Project, "us-east-2"))
	assert.Contains(t, deploy.Properties["Source"].(map[string]any)["BuildSpec"], in.Secondary.Identity.Identity().RoleARN)
}

func TestProvision_DeployRolesAssumeOnlyTheirIdentity(t *testing.T) {
	t.Parallel()
	cfg, in := testInput(t)
	res := provision(t, cfg, in)

	for _, target := range []Target{in.Primary, in.Secondary} {
		project := projectNamed(t, res.Template, naming.DeployProject(cfg.Project, target.Handle.Region.Name))
		roleID := project.Properties["ServiceRole"].(map[string]any)["Fn::GetAtt"].([]any)[0].(string)

		var assumed []any
		for _, st := range statements(res.Template, roleID) {
			if hasAction(st, "sts:AssumeRole") {
				assumed = append(assumed, st["Resource"])
			}
		}
		assert.Equal(t, []any{target.Identity.Identity().RoleARN}, assumed, target.Handle.Region.Name)
	}
}

func TestNewProvisioner_RejectsWrongVariants(t *testing.T) {
	t.Parallel()
	cfg, in := testInput(t)

	swapped := Input{
		Primary:   Target{Handle: in.Primary.Handle, Identity: in.Secondary.Identity},
		Secondary: Target{Handle: in.Secondary.Handle, Identity: in.Primary.Identity},
	}
	_, err := NewProvisioner(cfg, swapped)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first-region role")

	missing := in
	missing.Secondary.Identity = nil
	_, err = NewProvisioner(cfg, missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no identity")
}

func TestNewProvisioner_RejectsSwappedHandles(t *testing.T) {
	t.Parallel()
	cfg, in := testInput(t)

	in.Primary.Handle, in.Secondary.Handle = in.Secondary.Handle, in.Primary.Handle
	_, err := NewProvisioner(cfg, in)
	require.Error(t, err)
}

func TestProvision_Renders(t *testing.T) {
	t.Parallel()
	cfg, in := testInput(t)

	out, err := provision(t, cfg, in).Template.Render()
	require.NoError(t, err)
	assert.Contains(t, string(out), "AWS::CodePipeline::Pipeline")
	assert.Contains(t, string(out), "DeployTo2ndRegionCluster")
	assert.Contains(t, string(out), "AWS::Events::Rule")
}

func TestProvision_StackIsInPrimaryRegion(t *testing.T) {
	t.Parallel()
	cfg, in := testInput(t)
	assert.Equal(t, topology.RolePrimary, in.Primary.Handle.Region.Role)

	res := provision(t, cfg, in)
	assert.Equal(t, "CicdStack", res.StackName)
	assert.Contains(t, res.Template.Description, "us-west-2")
}

func onlyResource(t *testing.T, tmpl *cfn.Template, resourceType string) cfn.Resource {
	t.Helper()
	ids := tmpl.OfType(resourceType)
	require.Len(t, ids, 1, resourceType)
	r, _ := tmpl.Resource(ids[0])
	return r
}

func projectNamed(t *testing.T, tmpl *cfn.Template, name string) cfn.Resource {
	t.Helper()
	for _, id := range tmpl.OfType("AWS::CodeBuild::Project") {
		r, _ := tmpl.Resource(id)
		if r.Properties["Name"] == name {
			return r
		}
	}
	require.Failf(t, "project not declared", "no project named %s", name)
	return cfn.Resource{}
}

func firstAction(stage any) map[string]any {
	return stage.(map[string]any)["Actions"].([]any)[0].(map[string]any)
}

// statements returns the policy statements attached to the role roleID.
func statements(tmpl *cfn.Template, roleID string) []map[string]any {
	var out []map[string]any
	for _, id := range tmpl.OfType("AWS::IAM::Policy") {
		policy, _ := tmpl.Resource(id)
		if !strings.Contains(fmt.Sprint(policy.Properties["Roles"]), roleID) {
			continue
		}
		doc := policy.Properties["PolicyDocument"].(map[string]any)
		for _, st := range doc["Statement"].([]any) {
			out = append(out, st.(map[string]any))
		}
	}
	return out
}

func hasAction(statement map[string]any, action string) bool {
	switch a := statement["Action"].(type) {
	case string:
		return a == action
	case []any:
		for _, v := range a {
			if v == action {
				return true
			}
		}
	}
	return false
}
