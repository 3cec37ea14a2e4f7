package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Codeveil-Studio/QResolve-app/internal/application"
	repo "github.com/Codeveil-Studio/QResolve-app/internal/domain/repository"
	"github.com/Codeveil-Studio/QResolve-app/internal/interface/middleware"
	"github.com/Codeveil-Studio/QResolve-app/pkg/response"
)

type SettingsHandler struct {
	Svc    *application.SettingsService
	Logger *logrus.Logger
}

func NewSettingsHandler(svc *application.SettingsService, logger *logrus.Logger) *SettingsHandler {
	return &SettingsHandler{Svc: svc, Logger: logger}
}

type profileRequest struct {
	FullName string `json:"full_name" binding:"required,max=120"`
}

type organizationRequest struct {
	Name string `json:"name" binding:"required,min=2,max=120"`
}

// Get GET /api/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	st := middleware.StateFrom(c)
	sub, err := h.Svc.Subscription(c.Request.Context(), st.OrgID())
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"profile":      st.Profile,
		"organization": st.Organization,
		"membership":   st.Membership,
		"subscription": sub,
	}, "settings", nil)
}

// UpdateProfile PUT /api/settings/profile
func (h *SettingsHandler) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	p, err := h.Svc.UpdateProfile(c.Request.Context(), middleware.StateFrom(c), req.FullName)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "profile updated", nil)
}

// UpdateOrganization PUT /api/settings/organization
func (h *SettingsHandler) UpdateOrganization(c *gin.Context) {
	var req organizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	org, err := h.Svc.UpdateOrganization(c.Request.Context(), middleware.StateFrom(c), req.Name)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, org, "organization updated", nil)
}
