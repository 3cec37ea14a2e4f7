package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Codeveil-Studio/QResolve-app/internal/application"
	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
	"github.com/Codeveil-Studio/QResolve-app/internal/interface/middleware"
	"github.com/Codeveil-Studio/QResolve-app/pkg/response"
)

// OrganizationCreator is implemented by *application.BootstrapService.
type OrganizationCreator interface {
	CreateOrganization(ctx context.Context, st *entity.SessionState, name string) (*entity.Organization, error)
}

type OnboardingHandler struct {
	Svc    OrganizationCreator
	Logger *logrus.Logger
}

func NewOnboardingHandler(svc OrganizationCreator, logger *logrus.Logger) *OnboardingHandler {
	return &OnboardingHandler{Svc: svc, Logger: logger}
}

type createOrganizationRequest struct {
	Name string `json:"name" binding:"required,min=2,max=120"`
}

// CreateOrganization POST /api/onboarding/organization
func (h *OnboardingHandler) CreateOrganization(c *gin.Context) {
	var req createOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	org, err := h.Svc.CreateOrganization(c.Request.Context(), middleware.StateFrom(c), req.Name)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"organization": org, "redirect": application.GuardAdmitted.Redirect()}, "organization created", nil)
}
