package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	id "garita/pkg/domain"
)

func TestParseRole(t *testing.T) {
	for _, s := range []string{"guardia", "admin", "superadmin"} {
		r, ok := id.ParseRole(s)
		assert.True(t, ok, s)
		assert.Equal(t, id.Role(s), r)
	}

	_, ok := id.ParseRole("visitante")
	assert.False(t, ok)
}

func TestRoleCapabilities(t *testing.T) {
	assert.True(t, id.RoleGuard.Can(id.CapRegisterAccess))
	assert.False(t, id.RoleGuard.Can(id.CapOverrideEvent))
	assert.False(t, id.RoleGuard.Can(id.CapBulkImport))
	assert.False(t, id.RoleGuard.Can(id.CapManageRegistry))

	assert.True(t, id.RoleAdmin.Can(id.CapOverrideEvent))
	assert.True(t, id.RoleAdmin.Can(id.CapBulkImport))
	assert.True(t, id.RoleSuperAdmin.Can(id.CapManageRegistry))

	assert.False(t, id.Role("").Can(id.CapRegisterAccess))
}
