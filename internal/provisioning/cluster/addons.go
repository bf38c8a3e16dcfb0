package cluster

import (
	"fmt"

	"github.com/imamik/mreks/internal/addons"
	"github.com/imamik/mreks/internal/provisioning"
)

// ReleaseResourceType labels add-on releases in observer events. Releases are
// installed through Helm, not declared in the template.
const ReleaseResourceType = "Helm::Release"

type addonsPhase struct{}

func (p *addonsPhase) Name() string { return "addons" }

func (p *addonsPhase) Provision(ctx *provisioning.Context) error {
	handle := ctx.State.Handle
	if handle == nil {
		return fmt.Errorf("cluster handle not declared")
	}

	releases := addons.ForCluster(*handle)
	for _, r := range releases {
		if err := r.Validate(); err != nil {
			provisioning.LogResourceFailed(ctx.Observer, p.Name(), ReleaseResourceType, r.Name, err)
			return err
		}
		provisioning.LogResourceDeclared(ctx.Observer, p.Name(), ReleaseResourceType, r.Namespace+"/"+r.Name)
	}

	patch, err := addons.AWSNodePatch(handle.AdminRoleARN)
	if err != nil {
		return err
	}

	ctx.State.Addons = releases
	ctx.State.AWSNodePatch = patch
	return nil
}
