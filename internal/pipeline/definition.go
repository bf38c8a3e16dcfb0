package pipeline

import (
	"errors"
	"fmt"
)

// DeployTarget is a deploy stage bound to its region.
type DeployTarget struct {
	Region string
	// Label names the deploy identity, e.g. "first-region role".
	Label  string
	Action Action
}

// Definition is a release pipeline. Its stage order is fixed at construction.
type Definition struct {
	name      string
	source    Action
	build     Action
	primary   DeployTarget
	secondary DeployTarget
}

// NewDefinition creates a pipeline running source, build, the primary deploy,
// the approval gate and the secondary deploy, in that order.
func NewDefinition(name string, source, build Action, primary, secondary DeployTarget) (*Definition, error) {
	var errs []error
	if name == "" {
		errs = append(errs, errors.New("pipeline name is required"))
	}
	if source == nil {
		errs = append(errs, errors.New("source action is required"))
	}
	if build == nil {
		errs = append(errs, errors.New("build action is required"))
	}
	if primary.Action == nil || secondary.Action == nil {
		errs = append(errs, errors.New("both deploy actions are required"))
	}
	if primary.Region != "" && primary.Region == secondary.Region {
		errs = append(errs, fmt.Errorf("both deploy stages target %s", primary.Region))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid pipeline definition: %w", err)
	}

	return &Definition{name: name, source: source, build: build, primary: primary, secondary: secondary}, nil
}

// Name returns the pipeline name.
func (d *Definition) Name() string { return d.name }

// Stages returns the stage order.
func (d *Definition) Stages() []StageKind { return Stages() }

// Target returns the deploy target of a deploy stage.
func (d *Definition) Target(kind StageKind) (DeployTarget, bool) {
	switch kind {
	case StageDeployPrimary:
		return d.primary, true
	case StageDeploySecondary:
		return d.secondary, true
	default:
		return DeployTarget{}, false
	}
}

func (d *Definition) action(kind StageKind) Action {
	switch kind {
	case StageSource:
		return d.source
	case StageBuild:
		return d.build
	case StageDeployPrimary:
		return d.primary.Action
	case StageDeploySecondary:
		return d.secondary.Action
	default:
		return nil
	}
}
