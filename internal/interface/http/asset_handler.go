package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Codeveil-Studio/QResolve-app/internal/application"
	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
	"github.com/Codeveil-Studio/QResolve-app/internal/interface/middleware"
	"github.com/Codeveil-Studio/QResolve-app/pkg/response"
)

const defaultSearchSize = 20

type AssetHandler struct {
	Svc    *application.AssetService
	Logger *logrus.Logger
}

func NewAssetHandler(svc *application.AssetService, logger *logrus.Logger) *AssetHandler {
	return &AssetHandler{Svc: svc, Logger: logger}
}

type assetRequest struct {
	Name         *string             `json:"name" binding:"omitempty,max=200"`
	Description  *string             `json:"description" binding:"omitempty,max=2000"`
	Type         *string             `json:"type" binding:"omitempty,max=100"`
	Location     *string             `json:"location" binding:"omitempty,max=200"`
	Status       *entity.AssetStatus `json:"status" binding:"omitempty,asset_status"`
	SerialNumber *string             `json:"serial_number" binding:"omitempty,max=100"`
	PurchaseDate *string             `json:"purchase_date" binding:"omitempty,datetime=2006-01-02"`
	PurchaseCost *float64            `json:"purchase_cost" binding:"omitempty,gte=0"`
}

func (r assetRequest) input() application.AssetInput {
	in := application.AssetInput{
		Name:         r.Name,
		Description:  r.Description,
		Type:         r.Type,
		Location:     r.Location,
		Status:       r.Status,
		SerialNumber: r.SerialNumber,
		PurchaseCost: r.PurchaseCost,
	}
	if r.PurchaseDate != nil {
		// format already checked by the datetime tag
		if d, err := time.Parse(time.DateOnly, *r.PurchaseDate); err == nil {
			in.PurchaseDate = &d
		}
	}
	return in
}

func orgID(c *gin.Context) string { return middleware.StateFrom(c).OrgID() }

// List GET /api/assets
func (h *AssetHandler) List(c *gin.Context) {
	assets, err := h.Svc.List(c.Request.Context(), orgID(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	if assets == nil {
		assets = []entity.Asset{}
	}
	response.Success(c, http.StatusOK, assets, "assets", map[string]any{"count": len(assets)})
}

// Create POST /api/assets
func (h *AssetHandler) Create(c *gin.Context) {
	var req assetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		invalidField(c, "name", "name is required")
		return
	}
	a, err := h.Svc.Create(c.Request.Context(), middleware.StateFrom(c), req.input())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, a, "asset created", nil)
}

// Get GET /api/assets/:id
func (h *AssetHandler) Get(c *gin.Context) {
	a, err := h.Svc.Get(c.Request.Context(), orgID(c), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, a, "asset", nil)
}

// Update PATCH /api/assets/:id
func (h *AssetHandler) Update(c *gin.Context) {
	var req assetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		invalidField(c, "name", "name cannot be empty")
		return
	}
	a, err := h.Svc.Update(c.Request.Context(), orgID(c), c.Param("id"), req.input())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, a, "asset updated", nil)
}

// Delete DELETE /api/assets/:id
func (h *AssetHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), orgID(c), c.Param("id")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, "asset deleted", nil)
}

// Issues GET /api/assets/:id/issues
func (h *AssetHandler) Issues(c *gin.Context) {
	issues, err := h.Svc.IssuesFor(c.Request.Context(), orgID(c), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	if issues == nil {
		issues = []entity.Issue{}
	}
	response.Success(c, http.StatusOK, issues, "asset issues", map[string]any{"count": len(issues)})
}

// Search GET /api/assets/search?q=&size=
func (h *AssetHandler) Search(c *gin.Context) {
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defaultSearchSize)))
	if err != nil || size <= 0 || size > 100 {
		size = defaultSearchSize
	}
	hits, err := h.Svc.Search(c.Request.Context(), orgID(c), c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}

// QRCode GET /api/assets/:id/qr renders the report-link PNG.
func (h *AssetHandler) QRCode(c *gin.Context) {
	png, err := h.Svc.QRCode(c.Request.Context(), orgID(c), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, "image/png", png)
}

// PublishQRCode POST /api/assets/:id/qr uploads the PNG and stores its URL.
func (h *AssetHandler) PublishQRCode(c *gin.Context) {
	a, err := h.Svc.PublishQRCode(c.Request.Context(), orgID(c), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, a, "qr code published", nil)
}
