package access

import (
	"encoding/json"
	"sort"
)

// Permission is an opaque capability identifier. Enforcement only ever
// checks set membership; the names carry no meaning of their own.
type Permission string

const (
	PermAddMember       Permission = "ADD_MEMBER"
	PermAddManagerOnly  Permission = "ADD_MANAGER_ONLY"
	PermRemoveMember    Permission = "REMOVE_MEMBER"
	PermAddProduct      Permission = "ADD_PRODUCT"
	PermRemoveProduct   Permission = "REMOVE_PRODUCT"
	PermUpdateProduct   Permission = "UPDATE_PRODUCT"
	PermUpdateInventory Permission = "UPDATE_INVENTORY"
	PermUpdateStore     Permission = "UPDATE_STORE"
	PermDeleteStore     Permission = "DELETE_STORE"
)

// AllPermissions returns every permission identifier known to the policy table.
func AllPermissions() []Permission {
	return []Permission{
		PermAddMember,
		PermAddManagerOnly,
		PermRemoveMember,
		PermAddProduct,
		PermRemoveProduct,
		PermUpdateProduct,
		PermUpdateInventory,
		PermUpdateStore,
		PermDeleteStore,
	}
}

// PermissionSet is an immutable set of permissions.
// The zero value is the empty set.
type PermissionSet struct {
	items map[Permission]struct{}
}

// NewPermissionSet builds a set from the given permissions. Duplicates collapse.
func NewPermissionSet(perms ...Permission) PermissionSet {
	items := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		items[p] = struct{}{}
	}
	return PermissionSet{items: items}
}

// Has reports whether p is in the set.
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s.items[p]
	return ok
}

// HasAll reports whether every one of perms is in the set.
// It is vacuously true for an empty argument list.
func (s PermissionSet) HasAll(perms ...Permission) bool {
	for _, p := range perms {
		if !s.Has(p) {
			return false
		}
	}
	return true
}

// Len returns the number of permissions in the set.
func (s PermissionSet) Len() int {
	return len(s.items)
}

// List returns the permissions sorted by identifier.
func (s PermissionSet) List() []Permission {
	out := make([]Permission, 0, len(s.items))
	for p := range s.items {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s PermissionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}
