package access

import (
	"encoding/json"
	"strings"

	"github.com/samber/oops"
)

// Role is a member's standing within a single store. It is never stored on
// the member record; it is derived from the store's owner id and role lists.
type Role int

const (
	RoleOwner Role = iota
	RoleAdmin
	RoleManager
)

// CodeInvalidRole is returned when a role string does not name a known role.
const CodeInvalidRole = "INVALID_ROLE"

var roleNames = [...]string{
	RoleOwner:   "owner",
	RoleAdmin:   "admin",
	RoleManager: "manager",
}

// Roles lists every role in precedence order.
func Roles() []Role {
	return []Role{RoleOwner, RoleAdmin, RoleManager}
}

func (r Role) String() string {
	if !r.Valid() {
		return "unknown"
	}
	return roleNames[r]
}

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	return r >= RoleOwner && r <= RoleManager
}

// ParseRole converts a boundary string ("owner", "Admin", ...) into a Role.
func ParseRole(s string) (Role, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range roleNames {
		if n == name {
			return Role(i), nil
		}
	}
	return 0, oops.In("access").
		Code(CodeInvalidRole).
		With("role", s).
		Errorf("unknown role %q", s)
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
