package testinfra

import (
	"context"
	"flowdeck/authority"
	"flowdeck/session"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// BuildSession builds a session carrying the given permissions. Tenant
// roles are derived from "role_tenantId" shaped perms the same way the
// auth filter does it.
func BuildSession(uid types.ID, perms ...string) *session.Session {
	tenantRoles := authority.TenantRoles{}
	for _, perm := range perms {
		idx := strings.Index(perm, "_")
		if idx > 0 {
			role := perm[0:idx]
			tenantId, err := types.ParseID(perm[idx+1:])
			if err != nil {
				continue
			}
			tenantRoles = append(tenantRoles, authority.TenantRole{TenantID: tenantId, Role: role})
		}
	}

	return &session.Session{
		Context:     context.Background(),
		Identity:    session.Identity{ID: uid},
		Perms:       perms,
		TenantRoles: tenantRoles,
	}
}

// ExecuteRequest drives one request through the engine and returns the
// response status, body and headers.
func ExecuteRequest(req *http.Request, engine *gin.Engine) (int, string, http.Header) {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	resp := w.Result()
	defer resp.Body.Close()

	bodyBytes, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", resp.Header
	}
	return resp.StatusCode, string(bodyBytes), resp.Header
}
