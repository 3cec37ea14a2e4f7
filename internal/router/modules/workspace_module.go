package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Codeveil-Studio/QResolve-app/internal/application"
	"github.com/Codeveil-Studio/QResolve-app/internal/container"
	handlers "github.com/Codeveil-Studio/QResolve-app/internal/interface/http"
	"github.com/Codeveil-Studio/QResolve-app/internal/interface/middleware"
)

type WorkspaceHandlers struct {
	Assets    *handlers.AssetHandler
	Issues    *handlers.IssueHandler
	Dashboard *handlers.DashboardHandler
	Settings  *handlers.SettingsHandler
}

// WorkspaceModule holds every tenant route; only ADMITTED sessions get in.
type WorkspaceModule struct {
	H       WorkspaceHandlers
	Session gin.HandlerFunc
}

func NewWorkspaceModule(h WorkspaceHandlers, session gin.HandlerFunc) *WorkspaceModule {
	return &WorkspaceModule{H: h, Session: session}
}

func (m *WorkspaceModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	ws := rg.Group("/")
	ws.Use(
		m.Session,
		middleware.RequireState(application.GuardAdmitted),
		middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByUserID(), nil),
	)

	ws.GET("/dashboard/stats", m.H.Dashboard.Stats)
	ws.GET("/dashboard/stream", m.H.Dashboard.Stream)
	ws.GET("/reports/summary", m.H.Dashboard.Summary)

	ws.GET("/assets", m.H.Assets.List)
	ws.POST("/assets", m.H.Assets.Create)
	ws.GET("/assets/search", m.H.Assets.Search)
	ws.GET("/assets/:id", m.H.Assets.Get)
	ws.PATCH("/assets/:id", m.H.Assets.Update)
	ws.PUT("/assets/:id", m.H.Assets.Update)
	ws.DELETE("/assets/:id", m.H.Assets.Delete)
	ws.GET("/assets/:id/issues", m.H.Assets.Issues)
	ws.GET("/assets/:id/qr", m.H.Assets.QRCode)
	ws.POST("/assets/:id/qr", m.H.Assets.PublishQRCode)

	ws.GET("/issues", m.H.Issues.List)
	ws.POST("/issues", m.H.Issues.Create)
	ws.GET("/issues/:id", m.H.Issues.Get)
	ws.PATCH("/issues/:id/status", m.H.Issues.UpdateStatus)
	ws.DELETE("/issues/:id", m.H.Issues.Delete)

	ws.GET("/settings", m.H.Settings.Get)
	ws.PUT("/settings/profile", m.H.Settings.UpdateProfile)
	ws.PUT("/settings/organization", m.H.Settings.UpdateOrganization)
}
