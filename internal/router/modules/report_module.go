package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Codeveil-Studio/QResolve-app/internal/container"
	handlers "github.com/Codeveil-Studio/QResolve-app/internal/interface/http"
	"github.com/Codeveil-Studio/QResolve-app/internal/interface/middleware"
)

// ReportModule serves the public QR landing endpoints without a session.
type ReportModule struct {
	Handler *handlers.ReportHandler
	Limit   int
	Window  time.Duration
}

func NewReportModule(h *handlers.ReportHandler, limit int, window time.Duration) *ReportModule {
	return &ReportModule{Handler: h, Limit: limit, Window: window}
}

func (m *ReportModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	viewLimiter := middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByIPAndPath(), nil)
	submitLimiter := middleware.RateLimit(rdb, m.Limit, m.Window, middleware.KeyByIPAndPath(), nil)

	rg.GET("/public/report/:assetId", viewLimiter, m.Handler.Show)
	rg.POST("/public/report/:assetId", submitLimiter, m.Handler.Submit)
}
