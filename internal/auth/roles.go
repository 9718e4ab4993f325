package auth

import "github.com/monterra-as/installer-api/internal/domain"

// Capability names an operation class. Handlers check capabilities through
// UserContext.Can instead of comparing role strings; ownership checks on top
// of a capability live in the service layer.
type Capability string

const (
	CapUserManage Capability = "users:manage"

	CapCatalogWrite Capability = "catalog:write"

	CapQuoteCreate  Capability = "quotes:create"
	CapQuoteViewAll Capability = "quotes:view_all"

	CapContractCreate  Capability = "contracts:create"
	CapContractLink    Capability = "contracts:link"
	CapContractDelete  Capability = "contracts:delete"
	CapContractViewAll Capability = "contracts:view_all"

	CapProjectCreate  Capability = "projects:create"
	CapProjectAssign  Capability = "projects:assign"
	CapProjectDelete  Capability = "projects:delete"
	CapProjectViewAll Capability = "projects:view_all"

	CapIncidentCreate  Capability = "incidents:create"
	CapIncidentResolve Capability = "incidents:resolve"

	CapPriceProposal Capability = "projects:propose_price"
	CapPriceResolve  Capability = "projects:resolve_price"
)

// rolePermissions is the single source of authorization decisions.
// Admin roles get every capability via the wildcard handling in RoleCan.
var rolePermissions = map[domain.Role][]Capability{
	domain.RoleVendor: {
		CapQuoteCreate,
		CapContractCreate,
		CapContractLink,
		CapProjectCreate,
		CapProjectDelete,
		CapIncidentCreate,
	},
	domain.RolePurchasing: {
		CapCatalogWrite,
	},
	domain.RoleInstaller: {
		CapIncidentCreate,
		CapPriceProposal,
	},
}

// RoleCan reports whether a role grants a capability
func RoleCan(role domain.Role, capability Capability) bool {
	if role.IsAdmin() {
		return true
	}
	for _, c := range rolePermissions[role] {
		if c == capability {
			return true
		}
	}
	return false
}
