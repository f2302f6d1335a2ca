package enums

import (
	"fmt"
	"strings"
)

// Role is the authorization role carried in access tokens.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleAtendente Role = "atendente"
	RoleCliente   Role = "cliente"
)

var validRoles = []Role{
	RoleAdmin,
	RoleAtendente,
	RoleCliente,
}

// Legacy role labels found in usuarios_admin rows. All of them map to the
// admin role; the data was never normalized at the source.
var adminRoleLabels = map[string]struct{}{
	"admin":         {},
	"administrador": {},
	"super_admin":   {},
	"superadmin":    {},
	"administrator": {},
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

// IsStaff reports whether the role grants access to the admin panel.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleAtendente
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

// NormalizeAdminRole maps a stored usuarios_admin role label onto a Role,
// case-insensitively. Unknown labels resolve to no role.
func NormalizeAdminRole(label string) (Role, bool) {
	normalized := strings.ToLower(strings.TrimSpace(label))
	if _, ok := adminRoleLabels[normalized]; ok {
		return RoleAdmin, true
	}
	if normalized == string(RoleAtendente) {
		return RoleAtendente, true
	}
	return "", false
}
