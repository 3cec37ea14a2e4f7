package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/Codeveil-Studio/QResolve-app/internal/application"
	handlers "github.com/Codeveil-Studio/QResolve-app/internal/interface/http"
	"github.com/Codeveil-Studio/QResolve-app/internal/interface/middleware"
)

// SessionModule routes:
// GET /api/session for any caller, POST /api/onboarding/organization for NO_ORG only
type SessionModule struct {
	Session    *handlers.SessionHandler
	Onboarding *handlers.OnboardingHandler
	Resolve    gin.HandlerFunc
}

func NewSessionModule(s *handlers.SessionHandler, o *handlers.OnboardingHandler, resolve gin.HandlerFunc) *SessionModule {
	return &SessionModule{Session: s, Onboarding: o, Resolve: resolve}
}

func (m *SessionModule) Register(rg *gin.RouterGroup) {
	rg.GET("/session", m.Resolve, m.Session.Get)
	rg.POST("/onboarding/organization", m.Resolve, middleware.RequireState(application.GuardNoOrg), m.Onboarding.CreateOrganization)
}
