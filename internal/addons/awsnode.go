package addons

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"
)

// RoleARNAnnotation binds a service account to an IAM role.
const RoleARNAnnotation = "eks.amazonaws.com/role-arn"

// AWSNodePatch returns the apply manifest annotating the aws-node service
// account with roleARN. Applied with Server-Side Apply it only owns the
// annotation, leaving the rest of the service account untouched.
func AWSNodePatch(roleARN string) ([]byte, error) {
	if roleARN == "" {
		return nil, fmt.Errorf("aws-node patch requires a role ARN")
	}

	sa := corev1.ServiceAccount{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "ServiceAccount"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      "aws-node",
			Namespace: "kube-system",
			Annotations: map[string]string{
				RoleARNAnnotation: roleARN,
			},
		},
	}

	out, err := yaml.Marshal(sa)
	if err != nil {
		return nil, fmt.Errorf("failed to render aws-node patch: %w", err)
	}
	return out, nil
}
