package topology

import (
	"errors"
	"fmt"
)

// ErrSameRegion is returned when the primary and secondary regions are identical.
var ErrSameRegion = errors.New("primary and secondary regions must differ")

// Role designates a region as primary or secondary.
type Role int

const (
	// RolePrimary is the region that receives releases first.
	RolePrimary Role = iota + 1
	// RoleSecondary is the region that receives releases after approval.
	RoleSecondary
)

// String returns the short role name.
func (r Role) String() string {
	switch r {
	case RolePrimary:
		return "primary"
	case RoleSecondary:
		return "secondary"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Label returns the name under which a deploy identity of this role is exposed.
func (r Role) Label() string {
	switch r {
	case RolePrimary:
		return "first-region role"
	case RoleSecondary:
		return "second-region role"
	default:
		return ""
	}
}

// Region is an AWS region bound to its role in the deployment.
type Region struct {
	Name string
	Role Role
}

// IsPrimary reports whether the region is the primary one.
func (r Region) IsPrimary() bool {
	return r.Role == RolePrimary
}

func (r Region) String() string {
	return fmt.Sprintf("%s (%s)", r.Name, r.Role)
}

// Regions holds the two regions of a deployment.
type Regions struct {
	Primary   Region
	Secondary Region
}

// NewRegions binds the two region names to their roles.
func NewRegions(primary, secondary string) (Regions, error) {
	if primary == "" {
		return Regions{}, errors.New("primary region is required")
	}
	if secondary == "" {
		return Regions{}, errors.New("secondary region is required")
	}
	if primary == secondary {
		return Regions{}, fmt.Errorf("%w: both are %s", ErrSameRegion, primary)
	}

	return Regions{
		Primary:   Region{Name: primary, Role: RolePrimary},
		Secondary: Region{Name: secondary, Role: RoleSecondary},
	}, nil
}

// All returns the regions in release order: primary first.
func (r Regions) All() []Region {
	return []Region{r.Primary, r.Secondary}
}

// Lookup returns the region with the given name.
func (r Regions) Lookup(name string) (Region, bool) {
	for _, region := range r.All() {
		if region.Name == name {
			return region, true
		}
	}
	return Region{}, false
}
