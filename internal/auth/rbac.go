package auth

import "strings"

type Role string

const RoleAdmin Role = "admin"

// NormalizeRole returns the known role named by role, or "" for anything else.
func NormalizeRole(role string) Role {
	if strings.EqualFold(strings.TrimSpace(role), string(RoleAdmin)) {
		return RoleAdmin
	}
	return Role("")
}

func IsAdmin(role string) bool {
	return NormalizeRole(role) == RoleAdmin
}
