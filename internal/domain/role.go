package domain

import "fmt"

// Role enumerates the mutually exclusive caller roles.
type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleNavigator Role = "navigator"
)

// Roles lists every role in declaration order.
var Roles = []Role{RoleUser, RoleAdmin, RoleNavigator}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleNavigator:
		return true
	default:
		return false
	}
}

func (r Role) String() string { return string(r) }

// ParseRole converts raw input into a Role.
func ParseRole(raw string) (Role, error) {
	role := Role(raw)
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", raw)
	}
	return role, nil
}
