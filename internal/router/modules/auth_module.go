package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Codeveil-Studio/QResolve-app/internal/container"
	handlers "github.com/Codeveil-Studio/QResolve-app/internal/interface/http"
	"github.com/Codeveil-Studio/QResolve-app/internal/interface/middleware"
)

// AuthModule routes:
// Public: POST /api/auth/signup, /auth/login, /auth/refresh, /auth/verify/confirm
// Session: POST /api/auth/logout, /auth/verify/init
type AuthModule struct {
	Handler *handlers.AuthHandler
	Session gin.HandlerFunc
}

func NewAuthModule(h *handlers.AuthHandler, session gin.HandlerFunc) *AuthModule {
	return &AuthModule{Handler: h, Session: session}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	signupLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	refreshLimiter := middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIPAndPath(), nil)
	verifyConfirmLimiter := middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/auth/signup", signupLimiter, m.Handler.SignUp)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
	rg.POST("/auth/refresh", refreshLimiter, m.Handler.Refresh)
	rg.POST("/auth/verify/confirm", verifyConfirmLimiter, m.Handler.VerifyConfirm)

	auth := rg.Group("/auth")
	auth.Use(m.Session, middleware.RequireSession())
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.POST("/verify/init", middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByUserID(), nil), m.Handler.VerifyInit)
	}
}
