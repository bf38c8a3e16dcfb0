package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegions(t *testing.T) {
	t.Parallel()

	regions, err := NewRegions("us-west-2", "us-east-2")
	require.NoError(t, err)

	assert.Equal(t, Region{Name: "us-west-2", Role: RolePrimary}, regions.Primary)
	assert.Equal(t, Region{Name: "us-east-2", Role: RoleSecondary}, regions.Secondary)

	primaries := 0
	for _, r := range regions.All() {
		if r.IsPrimary() {
			primaries++
		}
	}
	assert.Equal(t, 1, primaries, "exactly one region must be primary")
}

func TestNewRegions_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		primary   string
		secondary string
		want      string
	}{
		{name: "missing primary", secondary: "us-east-2", want: "primary region is required"},
		{name: "missing secondary", primary: "us-west-2", want: "secondary region is required"},
		{name: "same region", primary: "us-west-2", secondary: "us-west-2", want: "must differ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewRegions(tt.primary, tt.secondary)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := NewRegions("eu-west-1", "eu-west-1")
	assert.ErrorIs(t, err, ErrSameRegion)
}

func TestRegions_Lookup(t *testing.T) {
	t.Parallel()
	regions, err := NewRegions("us-west-2", "us-east-2")
	require.NoError(t, err)

	r, ok := regions.Lookup("us-east-2")
	require.True(t, ok)
	assert.Equal(t, RoleSecondary, r.Role)

	_, ok = regions.Lookup("eu-central-1")
	assert.False(t, ok)
}

func TestNewDeployIdentity_VariantFollowsRole(t *testing.T) {
	t.Parallel()
	regions, err := NewRegions("us-west-2", "us-east-2")
	require.NoError(t, err)

	first, err := NewDeployIdentity(regions.Primary, Identity{RoleName: "a"})
	require.NoError(t, err)
	second, err := NewDeployIdentity(regions.Secondary, Identity{RoleName: "b"})
	require.NoError(t, err)

	assert.IsType(t, PrimaryIdentity{}, first)
	assert.Equal(t, "first-region role", first.Label())
	assert.Equal(t, "a", first.Identity().RoleName)

	assert.IsType(t, SecondaryIdentity{}, second)
	assert.Equal(t, "second-region role", second.Label())
	assert.Equal(t, RoleSecondary, second.Role())
}

func TestNewDeployIdentity_NoRole(t *testing.T) {
	t.Parallel()
	_, err := NewDeployIdentity(Region{Name: "us-west-2"}, Identity{})
	require.Error(t, err)
}

func TestRole_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "primary", RolePrimary.String())
	assert.Equal(t, "secondary", RoleSecondary.String())
	assert.Equal(t, "Role(0)", Role(0).String())
	assert.Empty(t, Role(0).Label())
}
