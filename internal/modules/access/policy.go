// Package access holds the static role policy table: which permissions each
// store role grants, plus the human-readable descriptions shown when a role
// is picked for a new team member.
package access

// RolePolicy describes what a role may do. The description lists are for
// display only and take no part in enforcement.
type RolePolicy struct {
	ID                      Role          `json:"id"`
	Title                   string        `json:"title"`
	Permissions             PermissionSet `json:"permissions"`
	PermissionsDescription  []string      `json:"permissions_description"`
	RestrictionsDescription []string      `json:"restrictions_description"`
}

// policies is built once at init and never mutated.
var policies = map[Role]RolePolicy{
	RoleOwner: {
		ID:    RoleOwner,
		Title: "Owner",
		Permissions: NewPermissionSet(
			PermAddProduct,
			PermAddMember,
			PermRemoveProduct,
			PermDeleteStore,
			PermRemoveMember,
			PermUpdateProduct,
			PermUpdateStore,
			PermUpdateInventory,
		),
		PermissionsDescription: []string{
			"Can update role of a member",
			"Can add more team members as they like",
			"Can add/update products",
			"Can delete store",
		},
		RestrictionsDescription: []string{},
	},
	RoleAdmin: {
		ID:    RoleAdmin,
		Title: "Admin",
		Permissions: NewPermissionSet(
			PermAddProduct,
			PermAddManagerOnly,
			PermRemoveProduct,
			PermUpdateProduct,
			PermUpdateInventory,
			PermRemoveMember,
		),
		PermissionsDescription: []string{
			"Can add more team members (managers only)",
			"Can add more products to the store",
			"Can update the products in the store",
		},
		RestrictionsDescription: []string{
			"Can't remove owners or other members from the store",
			"Can't delete store",
		},
	},
	RoleManager: {
		ID:          RoleManager,
		Title:       "Manager",
		Permissions: NewPermissionSet(PermUpdateInventory),
		PermissionsDescription: []string{
			"Can update the inventories for the products in the store.",
		},
		RestrictionsDescription: []string{
			"Can't add more products",
			"Can't add/remove other members from the store",
			"Can't delete store",
		},
	},
}

// Policy returns the policy for role. A value outside the three known roles
// gets a policy with an empty permission set, so it can never grant anything.
func Policy(role Role) RolePolicy {
	p, ok := policies[role]
	if !ok {
		return RolePolicy{
			ID:                      role,
			Title:                   role.String(),
			PermissionsDescription:  []string{},
			RestrictionsDescription: []string{},
		}
	}
	// The permission set is immutable; the description slices are not.
	p.PermissionsDescription = cloneStrings(p.PermissionsDescription)
	p.RestrictionsDescription = cloneStrings(p.RestrictionsDescription)
	return p
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// Policies returns every role's policy in precedence order.
func Policies() []RolePolicy {
	out := make([]RolePolicy, 0, len(policies))
	for _, r := range Roles() {
		out = append(out, Policy(r))
	}
	return out
}

// Grants reports whether role holds every one of perms.
func Grants(role Role, perms ...Permission) bool {
	return policies[role].Permissions.HasAll(perms...)
}
