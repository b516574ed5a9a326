package authority

import (
	"strings"

	"github.com/fundwit/go-commons/types"
)

const (
	TenantRoleManager = "manager"
	TenantRoleEditor  = "editor"
	TenantRoleViewer  = "viewer"

	SystemAdminPermission = "system:admin"
)

type Permissions []string

func (c Permissions) HasRole(role string) bool {
	for _, v := range c {
		if strings.EqualFold(v, role) {
			return true
		}
	}
	return false
}

func (c Permissions) HasGlobalViewRole() bool {
	for _, v := range c {
		if strings.HasPrefix(strings.ToLower(v), "system:") {
			return true
		}
	}
	return false
}

func (c Permissions) HasRolePrefix(prefix string) bool {
	for _, v := range c {
		if strings.HasPrefix(strings.ToLower(v), strings.ToLower(prefix)) {
			return true
		}
	}
	return false
}

func (c Permissions) HasTenantViewPerm(tenantId types.ID) bool {
	return c.HasGlobalViewRole() || c.HasRoleSuffix("_"+tenantId.String())
}

func (c Permissions) HasRoleSuffix(suffix string) bool {
	for _, v := range c {
		if strings.HasSuffix(strings.ToLower(v), strings.ToLower(suffix)) {
			return true
		}
	}
	return false
}

type TenantRole struct {
	TenantID types.ID `json:"tenantId"`
	Role     string   `json:"role"`
}

type TenantRoles []TenantRole

func (c TenantRoles) HasTenant(tenantId types.ID) bool {
	for _, v := range c {
		if v.TenantID == tenantId {
			return true
		}
	}
	return false
}
