package enums

import "fmt"

// Role is the closed set of actor roles recognized by the platform.
type Role string

const (
	RoleClient Role = "client"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

var validRoles = []Role{
	RoleClient,
	RoleSeller,
	RoleAdmin,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// CanManagePlatform reports whether the role may run admin operations.
func (r Role) CanManagePlatform() bool {
	return r == RoleAdmin
}

// CanListBooks reports whether the role may own catalog listings.
func (r Role) CanListBooks() bool {
	return r == RoleSeller || r == RoleAdmin
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
