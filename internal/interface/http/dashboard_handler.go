package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Codeveil-Studio/QResolve-app/internal/application"
	"github.com/Codeveil-Studio/QResolve-app/pkg/response"
)

const defaultPingInterval = 25 * time.Second

type DashboardHandler struct {
	Svc          *application.DashboardService
	Logger       *logrus.Logger
	PingInterval time.Duration
}

func NewDashboardHandler(svc *application.DashboardService, logger *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{Svc: svc, Logger: logger, PingInterval: defaultPingInterval}
}

// Stats GET /api/dashboard/stats
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.Svc.Stats(c.Request.Context(), orgID(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, stats, "dashboard stats", nil)
}

// Summary GET /api/reports/summary
func (h *DashboardHandler) Summary(c *gin.Context) {
	sum, err := h.Svc.Summary(c.Request.Context(), orgID(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, sum, "reports summary", nil)
}

// Stream GET /api/dashboard/stream pushes tenant change events as SSE.
func (h *DashboardHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()
	org := orgID(c)
	sub, err := h.Svc.Subscribe(ctx, org)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	defer sub.Close()

	interval := h.PingInterval
	if interval <= 0 {
		interval = defaultPingInterval
	}
	ping := time.NewTicker(interval)
	defer ping.Stop()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case evt, ok := <-sub.Events():
			if !ok {
				return false
			}
			c.SSEvent("change", evt)
			return true
		case <-ping.C:
			_, err := io.WriteString(w, ": ping\n\n")
			return err == nil
		}
	})
	if h.Logger != nil {
		h.Logger.WithField("org_id", org).Debug("change stream closed")
	}
}
