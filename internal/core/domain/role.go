package domain

import "fmt"

// Role is a user's privilege level. Values are persisted as small integers and
// ordered by privilege: Guest < User < Admin.
type Role uint8

const (
	RoleGuest Role = 0
	RoleUser  Role = 1
	RoleAdmin Role = 2
)

// RoleFromInt decodes a persisted role column. Unknown values are rejected,
// never clamped to the nearest valid role.
func RoleFromInt(v int64) (Role, error) {
	switch v {
	case 0:
		return RoleGuest, nil
	case 1:
		return RoleUser, nil
	case 2:
		return RoleAdmin, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidRole, v)
	}
}

func (r Role) String() string {
	switch r {
	case RoleGuest:
		return "guest"
	case RoleUser:
		return "user"
	case RoleAdmin:
		return "admin"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// AtLeast reports whether r grants at least the privileges of other.
func (r Role) AtLeast(other Role) bool {
	return r >= other
}
