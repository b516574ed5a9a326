package session_test

import (
	"flowdeck/authority"
	"flowdeck/session"
	"testing"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func TestVisibleTenants(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should return empty slice when perms is empty", func(t *testing.T) {
		s := session.Session{}
		Expect(s.VisibleTenants()).To(Equal([]types.ID{}))
	})

	t.Run("should parse tenant ids from perms", func(t *testing.T) {
		s := session.Session{Perms: authority.Permissions{
			"manager_100", "viewer_200", "system:admin", "bad_perm", "orphan",
		}}
		Expect(s.VisibleTenants()).To(Equal([]types.ID{types.ID(100), types.ID(200)}))
	})
}

func TestSessionClone(t *testing.T) {
	RegisterTestingT(t)

	t.Run("clone should not share underlying perms", func(t *testing.T) {
		s := session.Session{Token: "t1", Perms: authority.Permissions{"manager_100"},
			TenantRoles: authority.TenantRoles{{TenantID: 100, Role: authority.TenantRoleManager}}}
		c := s.Clone()
		c.Perms[0] = "viewer_300"
		Expect(s.Perms[0]).To(Equal("manager_100"))
		Expect(c.Token).To(Equal("t1"))
		Expect(c.TenantRoles.HasTenant(types.ID(100))).To(BeTrue())
	})
}
