package application

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
)

func verifiedIdentity() *entity.Identity {
	now := time.Now()
	return &entity.Identity{ID: "u1", Email: "ada@example.com", EmailConfirmedAt: &now}
}

func TestEvaluate(t *testing.T) {
	org := &entity.Organization{ID: "org-1", Name: "Acme"}
	tests := []struct {
		name  string
		state *entity.SessionState
		want  GuardState
	}{
		{"nil state", nil, GuardAnonymous},
		{"loading", &entity.SessionState{Loading: true}, GuardLoading},
		{"loading wins over identity", &entity.SessionState{Loading: true, Identity: verifiedIdentity(), Organization: org}, GuardLoading},
		{"anonymous", entity.Anonymous(), GuardAnonymous},
		{"unverified without org", &entity.SessionState{Identity: &entity.Identity{ID: "u1"}}, GuardUnverified},
		{"unverified with org", &entity.SessionState{Identity: &entity.Identity{ID: "u1"}, Organization: org}, GuardUnverified},
		{"verified without org", &entity.SessionState{Identity: verifiedIdentity()}, GuardNoOrg},
		{"admitted", &entity.SessionState{Identity: verifiedIdentity(), Organization: org}, GuardAdmitted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.state))
		})
	}
}

func TestGuardRedirect(t *testing.T) {
	assert.Equal(t, "/login", GuardAnonymous.Redirect())
	assert.Equal(t, "/onboarding", GuardNoOrg.Redirect())
	assert.Equal(t, "/dashboard", GuardAdmitted.Redirect())
	assert.Empty(t, GuardUnverified.Redirect())
	assert.Empty(t, GuardLoading.Redirect())
}

func TestAdmit(t *testing.T) {
	tests := []struct {
		got      GuardState
		want     GuardState
		status   int
		code     string
		redirect string
	}{
		{GuardLoading, GuardAdmitted, http.StatusServiceUnavailable, "session_loading", ""},
		{GuardAnonymous, GuardAdmitted, http.StatusUnauthorized, "unauthorized", "/login"},
		{GuardUnverified, GuardAdmitted, http.StatusForbidden, "email_not_verified", ""},
		{GuardNoOrg, GuardAdmitted, http.StatusForbidden, "organization_required", "/onboarding"},
		{GuardAdmitted, GuardNoOrg, http.StatusConflict, "organization_exists", "/dashboard"},
		{GuardUnverified, GuardNoOrg, http.StatusForbidden, "email_not_verified", ""},
	}
	for _, tt := range tests {
		t.Run(string(tt.got)+"->"+string(tt.want), func(t *testing.T) {
			d, ok := Admit(tt.got, tt.want)
			assert.False(t, ok)
			assert.Equal(t, tt.status, d.Status)
			assert.Equal(t, tt.code, d.Code)
			assert.Equal(t, tt.redirect, d.Redirect)
		})
	}

	_, ok := Admit(GuardAdmitted, GuardAdmitted)
	assert.True(t, ok)
	_, ok = Admit(GuardNoOrg, GuardNoOrg)
	assert.True(t, ok)
}

func TestResolutionDenial(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"dangling membership", fmt.Errorf("%w: org-gone", ErrOrganizationMissing), http.StatusNotFound, "organization_not_found"},
		{"several memberships", ErrMultipleMemberships, http.StatusConflict, "multiple_memberships"},
		{"backend down", errors.New("connection refused"), http.StatusInternalServerError, "session_resolution_failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ResolutionDenial(tt.err)
			assert.Equal(t, tt.status, d.Status)
			assert.Equal(t, tt.code, d.Code)
			assert.Empty(t, d.Redirect)
		})
	}

	d := ResolutionDenial(ErrOrganizationMissing)
	assert.Equal(t, OrganizationUnverifiedMessage, d.Message)
}
