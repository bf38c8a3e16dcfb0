package pipeline

import "fmt"

// StageKind is one step of the release sequence.
type StageKind int

// Stages in execution order.
const (
	StageSource StageKind = iota + 1
	StageBuild
	StageDeployPrimary
	StageApproveGate
	StageDeploySecondary
)

// Stages returns every stage in the only order they may run.
func Stages() []StageKind {
	return []StageKind{StageSource, StageBuild, StageDeployPrimary, StageApproveGate, StageDeploySecondary}
}

func (k StageKind) String() string {
	switch k {
	case StageSource:
		return "Source"
	case StageBuild:
		return "Build"
	case StageDeployPrimary:
		return "DeployPrimary"
	case StageApproveGate:
		return "ApproveGate"
	case StageDeploySecondary:
		return "DeploySecondary"
	default:
		return fmt.Sprintf("StageKind(%d)", int(k))
	}
}

// StageName returns the name of the stage in the declared CodePipeline.
func (k StageKind) StageName() string {
	switch k {
	case StageSource:
		return "Source"
	case StageBuild:
		return "Build"
	case StageDeployPrimary:
		return "DeployToMainEKScluster"
	case StageApproveGate:
		return "ApproveToDeployTo2ndRegion"
	case StageDeploySecondary:
		return "DeployTo2ndRegionCluster"
	default:
		return ""
	}
}

// ActionName returns the name of the stage's single action.
func (k StageKind) ActionName() string {
	switch k {
	case StageSource:
		return "CatchSourcefromCode"
	case StageBuild:
		return "BuildAndPushtoECR"
	default:
		return k.StageName()
	}
}

// ParseStageKind accepts either the short or the pipeline stage name.
func ParseStageKind(s string) (StageKind, error) {
	for _, k := range Stages() {
		if s == k.String() || s == k.StageName() {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q", s)
}
