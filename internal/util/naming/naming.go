package naming

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"
)

// MaxRoleNameLength is the IAM limit on role names.
const MaxRoleNameLength = 64

func ClusterStack(region string) string {
	return fmt.Sprintf("ClusterStack-%s", region)
}

func ContainerStack(region string) string {
	return fmt.Sprintf("ContainerStack-%s", region)
}

func CicdStack() string {
	return "CicdStack"
}

func AdminRole(project, region string) string {
	return roleName(project, "eks-admin-"+region)
}

func DeployRole(project, region string) string {
	return roleName(project, "deploy-"+region)
}

func SourceRepository(name, region string) string {
	return fmt.Sprintf("%s-%s", name, region)
}

func NodeGroup(cluster, pool string) string {
	return fmt.Sprintf("%s-%s", cluster, pool)
}

func BuildProject(project, purpose string) string {
	return fmt.Sprintf("%s-%s", project, purpose)
}

func DeployProject(project, region string) string {
	return fmt.Sprintf("%s-deploy-to-%s", project, region)
}

// RoleARN returns the ARN of an IAM role in the given account.
func RoleARN(account, roleName string) string {
	return fmt.Sprintf("arn:aws:iam::%s:role/%s", account, roleName)
}

// ClusterARN returns the ARN of an EKS cluster.
func ClusterARN(account, region, cluster string) string {
	return fmt.Sprintf("arn:aws:eks:%s:%s:cluster/%s", region, account, cluster)
}

// ImageRepositoryURI returns the registry URI of an ECR repository.
func ImageRepositoryURI(account, region, repository string) string {
	return fmt.Sprintf("%s.dkr.ecr.%s.amazonaws.com/%s", account, region, repository)
}

// LogicalID builds a CloudFormation logical ID from free-form parts.
// Non-alphanumeric characters are dropped and each word is capitalized,
// so LogicalID("spot-ng", "nodegroup") yields "SpotNgNodegroup".
func LogicalID(parts ...string) string {
	var b strings.Builder
	for _, part := range parts {
		upper := true
		for _, r := range part {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				upper = true
				continue
			}
			if r > unicode.MaxASCII {
				continue
			}
			if upper {
				b.WriteRune(unicode.ToUpper(r))
				upper = false
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// roleName joins project and suffix. When the result exceeds the IAM limit
// the project is cut and followed by a short hash of the full project name;
// the suffix always survives intact.
func roleName(project, suffix string) string {
	name := project + "-" + suffix
	if len(name) <= MaxRoleNameLength {
		return name
	}

	sum := sha256.Sum256([]byte(project))
	hash := hex.EncodeToString(sum[:])[:hashLength]

	keep := max(MaxRoleNameLength-len(suffix)-len(hash)-2, 0)
	prefix := strings.TrimRight(project[:min(keep, len(project))], "-_")
	if prefix == "" {
		return truncate(hash+"-"+suffix, MaxRoleNameLength)
	}
	return prefix + "-" + hash + "-" + suffix
}

const hashLength = 8

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimRight(s[:n], "-")
}
