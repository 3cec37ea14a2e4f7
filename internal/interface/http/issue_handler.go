package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Codeveil-Studio/QResolve-app/internal/application"
	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
	"github.com/Codeveil-Studio/QResolve-app/internal/interface/middleware"
	"github.com/Codeveil-Studio/QResolve-app/pkg/response"
)

type IssueHandler struct {
	Svc    *application.IssueService
	Logger *logrus.Logger
}

func NewIssueHandler(svc *application.IssueService, logger *logrus.Logger) *IssueHandler {
	return &IssueHandler{Svc: svc, Logger: logger}
}

type issueRequest struct {
	Title       string               `json:"title" binding:"required,max=200"`
	Description *string              `json:"description" binding:"omitempty,max=5000"`
	Priority    entity.IssuePriority `json:"priority" binding:"omitempty,issue_priority"`
	AssetID     *string              `json:"asset_id" binding:"omitempty,uuid"`
	AssignedTo  *string              `json:"assigned_to" binding:"omitempty,uuid"`
}

type statusRequest struct {
	Status entity.IssueStatus `json:"status" binding:"required,issue_status"`
}

// List GET /api/issues?status=&priority=&asset_id=&limit=
func (h *IssueHandler) List(c *gin.Context) {
	f := entity.IssueFilter{
		Status:   entity.IssueStatus(c.Query("status")),
		Priority: entity.IssuePriority(c.Query("priority")),
		AssetID:  c.Query("asset_id"),
	}
	if f.Status != "" && !f.Status.Valid() {
		invalidField(c, "status", "unknown issue status")
		return
	}
	if f.Priority != "" && !f.Priority.Valid() {
		invalidField(c, "priority", "unknown issue priority")
		return
	}
	if f.AssetID != "" {
		if _, err := uuid.Parse(f.AssetID); err != nil {
			invalidField(c, "asset_id", "must be a uuid")
			return
		}
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			invalidField(c, "limit", "limit must be a positive number")
			return
		}
		f.Limit = n
	}
	issues, err := h.Svc.List(c.Request.Context(), orgID(c), f)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	if issues == nil {
		issues = []entity.Issue{}
	}
	response.Success(c, http.StatusOK, issues, "issues", map[string]any{"count": len(issues)})
}

// Create POST /api/issues
func (h *IssueHandler) Create(c *gin.Context) {
	var req issueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	issue, err := h.Svc.Create(c.Request.Context(), middleware.StateFrom(c), application.IssueInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		AssetID:     req.AssetID,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, issue, "issue created", nil)
}

// Get GET /api/issues/:id
func (h *IssueHandler) Get(c *gin.Context) {
	issue, err := h.Svc.Get(c.Request.Context(), orgID(c), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, issue, "issue", nil)
}

// UpdateStatus PATCH /api/issues/:id/status
func (h *IssueHandler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	issue, err := h.Svc.UpdateStatus(c.Request.Context(), orgID(c), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, issue, "issue updated", nil)
}

// Delete DELETE /api/issues/:id
func (h *IssueHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), orgID(c), c.Param("id")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, "issue deleted", nil)
}
