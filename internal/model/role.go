package model

import "fmt"

// Role selects which experience a caller gets
type Role string

const (
	RoleMember     Role = "member"
	RoleBarOwner   Role = "bar_owner"
	RoleBrandOwner Role = "brand_owner"
)

// ParseRole validates a role name
func ParseRole(raw string) (Role, error) {
	switch r := Role(raw); r {
	case RoleMember, RoleBarOwner, RoleBrandOwner:
		return r, nil
	case "":
		return RoleMember, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}
