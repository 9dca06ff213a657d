package domain

import (
	"errors"
	"strings"
)

// Role is a user's position in the totally ordered permission hierarchy.
type Role string

// Roles, lowest to highest.
const (
	RoleReadOnly Role = "readonly"
	RoleEditor   Role = "editor"
	RoleAdmin    Role = "admin"
)

// ErrInvalidRole is returned when a role string is not part of the hierarchy.
var ErrInvalidRole = errors.New("invalid role")

// roleRanks orders the hierarchy. Roles absent from the map have no rank.
var roleRanks = map[Role]int{
	RoleReadOnly: 0,
	RoleEditor:   1,
	RoleAdmin:    2,
}

// Roles returns every role in ascending order.
func Roles() []Role {
	return []Role{RoleReadOnly, RoleEditor, RoleAdmin}
}

// TopRole is the role that satisfies every minimum requirement.
func TopRole() Role {
	return RoleAdmin
}

// Rank returns the role's position in the hierarchy and whether the role is known.
func (r Role) Rank() (int, bool) {
	rank, ok := roleRanks[r]
	return rank, ok
}

// Valid reports whether r is part of the hierarchy.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// ParseRole converts a case-insensitive string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}
