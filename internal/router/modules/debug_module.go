package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Codeveil-Studio/QResolve-app/internal/container"
	"github.com/Codeveil-Studio/QResolve-app/internal/interface/middleware"
)

// DebugModule exposes expvar (event bus counters, memstats) to private
// networks only. Mounted when DEBUG_METRICS_ENABLED is set.
type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), nil)
	rg.GET("/debug/vars", middleware.PrivateOnly(), rl, gin.WrapH(expvar.Handler()))
}
