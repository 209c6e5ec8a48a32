package models

import (
	"fmt"
	"strings"
)

// Role is the fixed set of actor roles the workflow core understands. Spelling
// variants from older user records are normalized here and nowhere else.
type Role string

const (
	RoleClient       Role = "client"
	RolePhotographer Role = "photographer"
	RoleEditor       Role = "editor"
	RoleRep          Role = "rep"
	RoleAdmin        Role = "admin"
	RoleSuperAdmin   Role = "superadmin"
)

func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "client", "customer":
		return RoleClient, nil
	case "photographer":
		return RolePhotographer, nil
	case "editor":
		return RoleEditor, nil
	case "rep", "representative":
		return RoleRep, nil
	case "admin":
		return RoleAdmin, nil
	case "superadmin", "super_admin", "super-admin":
		return RoleSuperAdmin, nil
	}
	return "", fmt.Errorf("unrecognized role %q", s)
}

func (r Role) String() string { return string(r) }

// IsAdmin reports whether the role carries administrative privileges.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}
