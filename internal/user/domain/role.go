package domain

import "fmt"

// Role is the access role of a user account.
type Role string

const (
	RoleCitizen         Role = "CITIZEN"
	RoleAgentRDV        Role = "AGENT_RDV"
	RoleAgentConsulaire Role = "AGENT_CONSULAIRE"
	RoleVigile          Role = "VIGILE"
	RoleAdmin           Role = "ADMIN"
	RoleSuperAdmin      Role = "SUPERADMIN"
)

// IsStaff reports whether the role belongs to an embassy employee. Staff accounts
// are never deactivated for lacking a consular card. VIGILE is deliberately absent.
func (r Role) IsStaff() bool {
	switch r {
	case RoleAdmin, RoleSuperAdmin, RoleAgentRDV, RoleAgentConsulaire:
		return true
	default:
		return false
	}
}

// ParseRole validates a role name. An empty name selects RoleCitizen.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case "":
		return RoleCitizen, nil
	case RoleCitizen, RoleAgentRDV, RoleAgentConsulaire, RoleVigile, RoleAdmin, RoleSuperAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}
