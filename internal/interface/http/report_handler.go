package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Codeveil-Studio/QResolve-app/internal/application"
	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
	"github.com/Codeveil-Studio/QResolve-app/pkg/response"
)

const assetUnverifiedMessage = "Could not verify asset details. Please scan the code again or try refreshing."

// ReportUseCase is implemented by *application.ReportService.
type ReportUseCase interface {
	Load(ctx context.Context, assetID string, hints application.ReportHints) (*application.ReportPage, error)
	Submit(ctx context.Context, assetID string, in application.ReportInput) (*entity.Issue, error)
}

// ReportHandler serves the unauthenticated page behind a scanned QR code.
type ReportHandler struct {
	Svc    ReportUseCase
	Logger *logrus.Logger
}

func NewReportHandler(svc ReportUseCase, logger *logrus.Logger) *ReportHandler {
	return &ReportHandler{Svc: svc, Logger: logger}
}

type submitReportRequest struct {
	Title         string               `json:"title" binding:"required,max=200"`
	Description   string               `json:"description" binding:"max=5000"`
	Priority      entity.IssuePriority `json:"priority" binding:"omitempty,issue_priority"`
	ReporterName  string               `json:"reporter_name" binding:"max=120"`
	ReporterEmail string               `json:"reporter_email" binding:"omitempty,email"`
}

// Show GET /api/public/report/:assetId?name=&location=&orgId=
func (h *ReportHandler) Show(c *gin.Context) {
	hints := application.NewReportHints(c.Query("name"), c.Query("location"), c.Query("orgId"))
	page, err := h.Svc.Load(c.Request.Context(), c.Param("assetId"), hints)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, page, "asset verified", nil)
}

// Submit POST /api/public/report/:assetId
func (h *ReportHandler) Submit(c *gin.Context) {
	var req submitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	issue, err := h.Svc.Submit(c.Request.Context(), c.Param("assetId"), application.ReportInput{
		Title:         req.Title,
		Description:   req.Description,
		Priority:      req.Priority,
		ReporterName:  req.ReporterName,
		ReporterEmail: req.ReporterEmail,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"id":         issue.ID,
		"status":     issue.Status,
		"priority":   issue.Priority,
		"created_at": issue.CreatedAt,
	}, "issue reported", nil)
}

func (h *ReportHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, application.ErrAssetNotFound) {
		response.Error(c, http.StatusNotFound, assetUnverifiedMessage, response.ErrorBody{Code: "asset_not_found"})
		return
	}
	writeError(c, h.Logger, err)
}
