package access_test

import (
	"encoding/json"
	"testing"

	"github.com/georgemunganga/pulse-backend/internal/modules/access"
	"github.com/georgemunganga/pulse-backend/pkg/errutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_ExactPermissionSets(t *testing.T) {
	tests := []struct {
		role  access.Role
		title string
		want  []access.Permission
	}{
		{
			role:  access.RoleOwner,
			title: "Owner",
			want: []access.Permission{
				access.PermAddProduct,
				access.PermAddMember,
				access.PermRemoveProduct,
				access.PermDeleteStore,
				access.PermRemoveMember,
				access.PermUpdateProduct,
				access.PermUpdateStore,
				access.PermUpdateInventory,
			},
		},
		{
			role:  access.RoleAdmin,
			title: "Admin",
			want: []access.Permission{
				access.PermAddProduct,
				access.PermAddManagerOnly,
				access.PermRemoveProduct,
				access.PermUpdateProduct,
				access.PermUpdateInventory,
				access.PermRemoveMember,
			},
		},
		{
			role:  access.RoleManager,
			title: "Manager",
			want:  []access.Permission{access.PermUpdateInventory},
		},
	}

	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			p := access.Policy(tt.role)
			assert.Equal(t, tt.role, p.ID)
			assert.Equal(t, tt.title, p.Title)
			assert.ElementsMatch(t, tt.want, p.Permissions.List())
			assert.Equal(t, len(tt.want), p.Permissions.Len())
		})
	}
}

func TestPolicy_AdminExclusions(t *testing.T) {
	admin := access.Policy(access.RoleAdmin).Permissions
	assert.False(t, admin.Has(access.PermAddMember))
	assert.False(t, admin.Has(access.PermDeleteStore))
	assert.False(t, admin.Has(access.PermUpdateStore))
}

func TestPolicy_ManagerExclusions(t *testing.T) {
	manager := access.Policy(access.RoleManager).Permissions
	for _, p := range access.AllPermissions() {
		if p == access.PermUpdateInventory {
			continue
		}
		assert.False(t, manager.Has(p), "manager should not hold %s", p)
	}
}

func TestPolicy_OwnerHasNoRestrictions(t *testing.T) {
	owner := access.Policy(access.RoleOwner)
	assert.Empty(t, owner.RestrictionsDescription)
	assert.NotNil(t, owner.RestrictionsDescription)
	assert.Len(t, owner.PermissionsDescription, 4)
}

func TestPolicy_DescriptionsAreCopies(t *testing.T) {
	first := access.Policy(access.RoleManager)
	first.PermissionsDescription[0] = "tampered"

	second := access.Policy(access.RoleManager)
	assert.Equal(t, "Can update the inventories for the products in the store.", second.PermissionsDescription[0])
}

func TestPolicy_UnknownRoleGrantsNothing(t *testing.T) {
	p := access.Policy(access.Role(42))
	assert.Equal(t, 0, p.Permissions.Len())
	assert.False(t, p.Permissions.Has(access.PermUpdateInventory))
	assert.False(t, access.Grants(access.Role(42), access.PermUpdateInventory))
}

func TestPolicies_Order(t *testing.T) {
	all := access.Policies()
	require.Len(t, all, 3)
	assert.Equal(t, access.RoleOwner, all[0].ID)
	assert.Equal(t, access.RoleAdmin, all[1].ID)
	assert.Equal(t, access.RoleManager, all[2].ID)
}

func TestGrants_AndSemantics(t *testing.T) {
	assert.True(t, access.Grants(access.RoleAdmin, access.PermAddProduct, access.PermUpdateInventory))
	assert.False(t, access.Grants(access.RoleAdmin, access.PermAddProduct, access.PermDeleteStore))
	assert.True(t, access.Grants(access.RoleManager))
}

func TestPermissionSet_JSON(t *testing.T) {
	set := access.NewPermissionSet(access.PermUpdateStore, access.PermAddMember, access.PermAddMember)
	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.JSONEq(t, `["ADD_MEMBER","UPDATE_STORE"]`, string(data))
}

func TestPermissionSet_ZeroValue(t *testing.T) {
	var set access.PermissionSet
	assert.False(t, set.Has(access.PermAddMember))
	assert.True(t, set.HasAll())
	assert.Empty(t, set.List())
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want access.Role
	}{
		{"owner", access.RoleOwner},
		{"Admin", access.RoleAdmin},
		{" manager ", access.RoleManager},
	}
	for _, tt := range tests {
		got, err := access.ParseRole(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := access.ParseRole("cashier")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, access.CodeInvalidRole)
}

func TestRole_JSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(access.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, `"admin"`, string(data))

	var r access.Role
	require.NoError(t, json.Unmarshal([]byte(`"manager"`), &r))
	assert.Equal(t, access.RoleManager, r)

	assert.Error(t, json.Unmarshal([]byte(`"root"`), &r))
}

func TestRole_String(t *testing.T) {
	assert.Equal(t, "owner", access.RoleOwner.String())
	assert.Equal(t, "unknown", access.Role(-1).String())
	assert.False(t, access.Role(3).Valid())
}
