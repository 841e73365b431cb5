package tiers

import (
	"net/http"

	"github.com/anoixa/tierbed/api/common"
	tiersrepo "github.com/anoixa/tierbed/database/repo/tiers"
	tiersSvc "github.com/anoixa/tierbed/internal/tiers"
	"github.com/gin-gonic/gin"
)

// Handler 层级管理处理器，路由层已限制为特权账号
type Handler struct {
	catalog *tiersSvc.Service
	repo    *tiersrepo.Repository
}

// NewHandler 创建层级管理处理器
func NewHandler(catalog *tiersSvc.Service, repo *tiersrepo.Repository) *Handler {
	return &Handler{catalog: catalog, repo: repo}
}

type createTierRequest struct {
	Name               string `json:"name" binding:"required"`
	AllowsThumbnails   *bool  `json:"allows_thumbnails"`
	AllowsOriginalSize bool   `json:"allows_original_size"`
	AllowsExpiringLink bool   `json:"allows_expiring_link"`
}

type addSizeRequest struct {
	Height int `json:"height" binding:"required"`
}

// ListTiers 列出所有层级及其尺寸策略
// GET /api/v1/tiers
func (h *Handler) ListTiers(c *gin.Context) {
	list, err := h.catalog.ListTiers()
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to list tiers")
		return
	}
	common.RespondSuccess(c, list)
}

// CreateTier 创建层级
// POST /api/v1/tiers
func (h *Handler) CreateTier(c *gin.Context) {
	var req createTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Tier name is required")
		return
	}

	// 缩略图默认开启，与模型默认值一致
	allowsThumbnails := true
	if req.AllowsThumbnails != nil {
		allowsThumbnails = *req.AllowsThumbnails
	}

	tier, err := h.catalog.CreateTier(req.Name, allowsThumbnails, req.AllowsOriginalSize, req.AllowsExpiringLink)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondCreated(c, tier)
}

// AddThumbnailSize 为层级添加尺寸策略
// POST /api/v1/tiers/:name/sizes
func (h *Handler) AddThumbnailSize(c *gin.Context) {
	tier, err := h.repo.GetTierByName(c.Param("name"))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	var req addSizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "A positive height is required")
		return
	}

	size, err := h.catalog.AddThumbnailSize(c.Request.Context(), tier.ID, req.Height)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondCreated(c, size)
}
