package auth_test

import (
	"testing"

	"github.com/monterra-as/installer-api/internal/auth"
	"github.com/monterra-as/installer-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRoleCan_AdminWildcard(t *testing.T) {
	capabilities := []auth.Capability{
		auth.CapUserManage,
		auth.CapCatalogWrite,
		auth.CapQuoteCreate,
		auth.CapContractCreate,
		auth.CapContractLink,
		auth.CapContractDelete,
		auth.CapProjectCreate,
		auth.CapProjectAssign,
		auth.CapProjectDelete,
		auth.CapIncidentCreate,
		auth.CapIncidentResolve,
		auth.CapPriceProposal,
		auth.CapPriceResolve,
	}

	for _, capability := range capabilities {
		assert.True(t, auth.RoleCan(domain.RoleAdmin, capability), "admin should have %s", capability)
		assert.True(t, auth.RoleCan(domain.RoleSuperAdmin, capability), "super_admin should have %s", capability)
	}
}

func TestRoleCan_Vendor(t *testing.T) {
	assert.True(t, auth.RoleCan(domain.RoleVendor, auth.CapQuoteCreate))
	assert.True(t, auth.RoleCan(domain.RoleVendor, auth.CapContractCreate))
	assert.True(t, auth.RoleCan(domain.RoleVendor, auth.CapContractLink))
	assert.True(t, auth.RoleCan(domain.RoleVendor, auth.CapProjectCreate))
	assert.True(t, auth.RoleCan(domain.RoleVendor, auth.CapIncidentCreate))

	assert.False(t, auth.RoleCan(domain.RoleVendor, auth.CapUserManage))
	assert.False(t, auth.RoleCan(domain.RoleVendor, auth.CapCatalogWrite))
	assert.False(t, auth.RoleCan(domain.RoleVendor, auth.CapProjectAssign))
	assert.False(t, auth.RoleCan(domain.RoleVendor, auth.CapPriceResolve))
}

func TestRoleCan_Purchasing(t *testing.T) {
	assert.True(t, auth.RoleCan(domain.RolePurchasing, auth.CapCatalogWrite))

	assert.False(t, auth.RoleCan(domain.RolePurchasing, auth.CapQuoteCreate))
	assert.False(t, auth.RoleCan(domain.RolePurchasing, auth.CapUserManage))
}

func TestRoleCan_Installer(t *testing.T) {
	assert.True(t, auth.RoleCan(domain.RoleInstaller, auth.CapIncidentCreate))
	assert.True(t, auth.RoleCan(domain.RoleInstaller, auth.CapPriceProposal))

	assert.False(t, auth.RoleCan(domain.RoleInstaller, auth.CapQuoteCreate))
	assert.False(t, auth.RoleCan(domain.RoleInstaller, auth.CapProjectAssign))
	assert.False(t, auth.RoleCan(domain.RoleInstaller, auth.CapPriceResolve))
}

func TestRoleCan_UnknownRole(t *testing.T) {
	assert.False(t, auth.RoleCan(domain.Role("bogus"), auth.CapQuoteCreate))
}

func TestUserContext_Can(t *testing.T) {
	vendor := &auth.UserContext{Role: domain.RoleVendor}
	assert.True(t, vendor.Can(auth.CapQuoteCreate))
	assert.False(t, vendor.Can(auth.CapUserManage))
	assert.False(t, vendor.IsAdmin())

	admin := &auth.UserContext{Role: domain.RoleSuperAdmin}
	assert.True(t, admin.Can(auth.CapUserManage))
	assert.True(t, admin.IsAdmin())
}
