package topology

import "fmt"

// Identity is an IAM role scoped to operate against one region's cluster.
type Identity struct {
	RoleName  string
	RoleARN   string
	Region    string
	LogicalID string
}

// DeployIdentity is a tagged variant: either a [PrimaryIdentity] or a
// [SecondaryIdentity]. The variant is chosen once, from the region's role,
// when the identity is created.
type DeployIdentity interface {
	Role() Role
	Label() string
	Identity() Identity

	deployIdentity()
}

// PrimaryIdentity is the deploy identity of the primary region's cluster.
type PrimaryIdentity struct {
	id Identity
}

// SecondaryIdentity is the deploy identity of the secondary region's cluster.
type SecondaryIdentity struct {
	id Identity
}

func (PrimaryIdentity) Role() Role           { return RolePrimary }
func (PrimaryIdentity) Label() string        { return RolePrimary.Label() }
func (p PrimaryIdentity) Identity() Identity { return p.id }
func (PrimaryIdentity) deployIdentity()      {}

func (SecondaryIdentity) Role() Role           { return RoleSecondary }
func (SecondaryIdentity) Label() string        { return RoleSecondary.Label() }
func (s SecondaryIdentity) Identity() Identity { return s.id }
func (SecondaryIdentity) deployIdentity()      {}

// NewDeployIdentity wraps id in the variant matching the region's role.
func NewDeployIdentity(region Region, id Identity) (DeployIdentity, error) {
	switch region.Role {
	case RolePrimary:
		return PrimaryIdentity{id: id}, nil
	case RoleSecondary:
		return SecondaryIdentity{id: id}, nil
	default:
		return nil, fmt.Errorf("region %s has no role", region.Name)
	}
}
