package buildspec

import "fmt"

// Environment variable names read by the specs below.
const (
	VarRepositoryURI  = "REPOSITORY_URI"
	VarTargetRegion   = "TARGET_REGION"
	VarClusterName    = "CLUSTER_NAME"
	VarRoleARN        = "DEPLOY_ROLE_ARN"
	VarDeploymentName = "DEPLOYMENT_NAME"
	VarContainerName  = "CONTAINER_NAME"
	VarManifestsPath  = "MANIFESTS_PATH"
)

// imageTag expands to the resolved source version, or "latest" outside a
// pipeline run.
var imageTag = fmt.Sprintf("${%s:-latest}", SourceVersionVar)

// ImageBuild builds the container image from the source root and pushes it
// to repositoryURI, tagged with the source version and "latest".
func ImageBuild(repositoryURI, region string) Spec {
	return Spec{
		Version: Version,
		Env: Env{Variables: map[string]string{
			VarRepositoryURI: repositoryURI,
			VarTargetRegion:  region,
		}},
		Phases: Phases{
			PreBuild: phase(
				fmt.Sprintf("aws ecr get-login-password --region $%s | docker login --username AWS --password-stdin ${%s%%%%/*}", VarTargetRegion, VarRepositoryURI),
			),
			Build: phase(
				fmt.Sprintf("docker build -t $%s:%s .", VarRepositoryURI, imageTag),
				fmt.Sprintf("docker tag $%s:%s $%s:latest", VarRepositoryURI, imageTag, VarRepositoryURI),
			),
			PostBuild: phase(
				fmt.Sprintf("docker push $%s:%s", VarRepositoryURI, imageTag),
				fmt.Sprintf("docker push $%s:latest", VarRepositoryURI),
			),
		},
	}
}

// DeployTarget parameterizes a cluster deploy.
type DeployTarget struct {
	Region             string
	ClusterName        string
	RoleARN            string
	ImageRepositoryURI string
	DeploymentName     string
	ContainerName      string
	ManifestsPath      string
}

// Validate checks every field is set. The first missing field, in
// declaration order, is reported.
func (t DeployTarget) Validate() error {
	fields := []struct {
		name, value string
	}{
		{"region", t.Region},
		{"cluster name", t.ClusterName},
		{"role ARN", t.RoleARN},
		{"image repository", t.ImageRepositoryURI},
		{"deployment name", t.DeploymentName},
		{"container name", t.ContainerName},
		{"manifests path", t.ManifestsPath},
	}
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("deploy target has no %s", f.name)
		}
	}
	return nil
}

// ClusterDeploy assumes the target's deploy role, applies the repository's
// manifests and rolls the deployment to the freshly built image.
func ClusterDeploy(t DeployTarget) Spec {
	return Spec{
		Version: Version,
		Env: Env{Variables: map[string]string{
			VarTargetRegion:   t.Region,
			VarClusterName:    t.ClusterName,
			VarRoleARN:        t.RoleARN,
			VarRepositoryURI:  t.ImageRepositoryURI,
			VarDeploymentName: t.DeploymentName,
			VarContainerName:  t.ContainerName,
			VarManifestsPath:  t.ManifestsPath,
		}},
		Phases: Phases{
			PreBuild: phase(
				fmt.Sprintf("aws eks update-kubeconfig --name $%s --region $%s --role-arn $%s", VarClusterName, VarTargetRegion, VarRoleARN),
			),
			Build: phase(
				fmt.Sprintf("kubectl apply -f $%s/", VarManifestsPath),
				fmt.Sprintf("kubectl set image deployment/$%s $%s=$%s:%s", VarDeploymentName, VarContainerName, VarRepositoryURI, imageTag),
			),
			PostBuild: phase(
				fmt.Sprintf("kubectl rollout status deployment/$%s --timeout=300s", VarDeploymentName),
			),
		},
	}
}
