package release

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscodebuild"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscodecommit"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscodepipeline"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscodepipelineactions"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecr"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/jsii-runtime-go"

	"github.com/imamik/mreks/internal/buildspec"
	"github.com/imamik/mreks/internal/pipeline"
	"github.com/imamik/mreks/internal/provisioning"
	"github.com/imamik/mreks/internal/topology"
	"github.com/imamik/mreks/internal/util/naming"
)

const (
	sourceArtifact = "SourceOutput"
	pipelineID     = "MultiRegionEksDep"
)

func (p *Provisioner) declareSource(ctx *provisioning.Context) error {
	cfg := ctx.Config
	repoName := naming.SourceRepository(cfg.Pipeline.RepositoryName, ctx.Region.Name)

	id := naming.LogicalID(cfg.Pipeline.RepositoryName, "repository")
	if err := ctx.Declare("source", "AWS::CodeCommit::Repository", id, func() {
		p.decl.repo = awscodecommit.NewRepository(ctx.Stack, jsii.String(id), &awscodecommit.RepositoryProps{
			RepositoryName: jsii.String(repoName),
			Description:    jsii.String("Application source released to " + p.in.Primary.Handle.Name),
		})
	}); err != nil {
		return err
	}
	ctx.Output("CodeCommitURL", p.decl.repo.RepositoryCloneUrlHttp(), "CodeCommitURL")

	if err := ctx.Declare("source", "AWS::S3::Bucket", "ArtifactBucket", func() {
		p.decl.bucket = awss3.NewBucket(ctx.Stack, jsii.String("ArtifactBucket"), &awss3.BucketProps{
			Encryption:        awss3.BucketEncryption_KMS_MANAGED,
			BlockPublicAccess: awss3.BlockPublicAccess_BLOCK_ALL(),
			EnforceSSL:        jsii.Bool(true),
		})
	}); err != nil {
		return err
	}

	p.result.SourceRepository = repoName
	return nil
}

func (p *Provisioner) declareBuild(ctx *provisioning.Context) error {
	cfg := ctx.Config

	id := naming.LogicalID(cfg.Pipeline.ImageRepositoryName)
	if err := ctx.Declare("build", "AWS::ECR::Repository", id, func() {
		p.decl.registry = awsecr.NewRepository(ctx.Stack, jsii.String(id), &awsecr.RepositoryProps{
			RepositoryName:  jsii.String(cfg.Pipeline.ImageRepositoryName),
			ImageScanOnPush: jsii.Bool(true),
		})
	}); err != nil {
		return err
	}
	imageURI := naming.ImageRepositoryURI(cfg.AccountID, ctx.Region.Name, cfg.Pipeline.ImageRepositoryName)

	spec := buildspec.ImageBuild(imageURI, ctx.Region.Name)
	project, err := p.declareProject(ctx, "build", "BuildForECR", naming.BuildProject(cfg.Project, "image-build"), spec, true)
	if err != nil {
		return err
	}

	// Pull-push grant on the image repository for the build identity.
	p.decl.registry.GrantPullPush(project)
	p.decl.build = project

	ctx.Output("ImageRepositoryUri", p.decl.registry.RepositoryUri(), "")
	p.result.ImageRepositoryURI = imageURI
	p.result.ImageBuild = spec
	return nil
}

func (p *Provisioner) declareDeploy(ctx *provisioning.Context) error {
	var err error
	if p.decl.deployPrimary, p.result.PrimaryDeploy, err = p.declareDeployProject(ctx, p.in.Primary.Handle, p.primary, "DeployToMainCluster"); err != nil {
		return err
	}
	p.decl.deploySecond, p.result.SecondaryDeploy, err = p.declareDeployProject(ctx, p.in.Secondary.Handle, p.second, "DeployTo2ndCluster")
	return err
}

// declareDeployProject declares a deploy project whose role may only assume
// the target cluster's deploy identity.
func (p *Provisioner) declareDeployProject(ctx *provisioning.Context, handle topology.ClusterHandle, identity topology.DeployIdentity, id string) (awscodebuild.PipelineProject, buildspec.DeployTarget, error) {
	cfg := ctx.Config
	ident := identity.Identity()

	target := buildspec.DeployTarget{
		Region:             handle.Region.Name,
		ClusterName:        handle.Name,
		RoleARN:            ident.RoleARN,
		ImageRepositoryURI: p.result.ImageRepositoryURI,
		DeploymentName:     cfg.Pipeline.DeploymentName,
		ContainerName:      cfg.Pipeline.ContainerName,
		ManifestsPath:      cfg.Pipeline.ManifestsPath,
	}
	if err := target.Validate(); err != nil {
		return nil, target, fmt.Errorf("%s: %w", identity.Label(), err)
	}

	spec := buildspec.ClusterDeploy(target)
	project, err := p.declareProject(ctx, "deploy", id, naming.DeployProject(cfg.Project, handle.Region.Name), spec, false)
	if err != nil {
		return nil, target, err
	}

	project.AddToRolePolicy(awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
		Actions:   jsii.Strings("sts:AssumeRole"),
		Resources: jsii.Strings(ident.RoleARN),
	}))
	project.AddToRolePolicy(awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
		Actions:   jsii.Strings("eks:DescribeCluster"),
		Resources: jsii.Strings(handle.ARN),
	}))
	awscdk.Tags_Of(project.Role()).Add(jsii.String("deploy-identity"), jsii.String(identity.Label()), nil)
	return project, target, nil
}

func (p *Provisioner) declareProject(ctx *provisioning.Context, phase, id, name string, spec buildspec.Spec, privileged bool) (awscodebuild.PipelineProject, error) {
	obj, err := spec.Object()
	if err != nil {
		return nil, err
	}

	var project awscodebuild.PipelineProject
	err = ctx.Declare(phase, "AWS::CodeBuild::Project", id, func() {
		project = awscodebuild.NewPipelineProject(ctx.Stack, jsii.String(id), &awscodebuild.PipelineProjectProps{
			ProjectName: jsii.String(name),
			BuildSpec:   awscodebuild.BuildSpec_FromObjectToYaml(&obj),
			Environment: &awscodebuild.BuildEnvironment{
				BuildImage:  awscodebuild.LinuxBuildImage_STANDARD_7_0(),
				ComputeType: awscodebuild.ComputeType_SMALL,
				Privileged:  jsii.Bool(privileged),
			},
		})
	})
	return project, err
}

func (p *Provisioner) declarePipeline(ctx *provisioning.Context) error {
	cfg := ctx.Config
	source := awscodepipeline.Artifact_Artifact(jsii.String(sourceArtifact))

	stages := make([]*awscodepipeline.StageProps, 0, len(pipeline.Stages()))
	for _, kind := range pipeline.Stages() {
		action, err := p.action(kind, source)
		if err != nil {
			return err
		}
		stages = append(stages, &awscodepipeline.StageProps{
			StageName: jsii.String(kind.StageName()),
			Actions:   &[]awscodepipeline.IAction{action},
		})
	}

	if err := ctx.Declare("pipeline", "AWS::CodePipeline::Pipeline", pipelineID, func() {
		awscodepipeline.NewPipeline(ctx.Stack, jsii.String(pipelineID), &awscodepipeline.PipelineProps{
			PipelineName:   jsii.String(cfg.Project + "-dep"),
			ArtifactBucket: p.decl.bucket,
			Stages:         &stages,
		})
	}); err != nil {
		return err
	}

	p.result.Stages = pipeline.Stages()
	return nil
}

func (p *Provisioner) action(kind pipeline.StageKind, source awscodepipeline.Artifact) (awscodepipeline.IAction, error) {
	codeBuild := func(project awscodebuild.IProject) awscodepipeline.IAction {
		return awscodepipelineactions.NewCodeBuildAction(&awscodepipelineactions.CodeBuildActionProps{
			ActionName: jsii.String(kind.ActionName()),
			Project:    project,
			Input:      source,
		})
	}

	switch kind {
	case pipeline.StageSource:
		// Pushes to the branch start the pipeline through a repository event rule.
		return awscodepipelineactions.NewCodeCommitSourceAction(&awscodepipelineactions.CodeCommitSourceActionProps{
			ActionName: jsii.String(kind.ActionName()),
			Repository: p.decl.repo,
			Branch:     jsii.String(SourceBranch),
			Output:     source,
			Trigger:    awscodepipelineactions.CodeCommitTrigger_EVENTS,
		}), nil
	case pipeline.StageBuild:
		return codeBuild(p.decl.build), nil
	case pipeline.StageDeployPrimary:
		return codeBuild(p.decl.deployPrimary), nil
	case pipeline.StageApproveGate:
		return awscodepipelineactions.NewManualApprovalAction(&awscodepipelineactions.ManualApprovalActionProps{
			ActionName: jsii.String(kind.ActionName()),
		}), nil
	case pipeline.StageDeploySecondary:
		return codeBuild(p.decl.deploySecond), nil
	}
	return nil, fmt.Errorf("no action for stage %s", kind)
}
