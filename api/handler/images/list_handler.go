package images

import (
	"net/http"

	"github.com/anoixa/tierbed/api/common"
	"github.com/anoixa/tierbed/api/middleware"
	"github.com/anoixa/tierbed/internal/policy"
	"github.com/gin-gonic/gin"
)

// ListImages 获取当前用户的图片列表
// GET /api/v1/images?page=1&page_size=20
func (h *Handler) ListImages(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	page, pageSize := parsePagination(c)
	images, total, err := h.repo.ListImagesByUser(user.ID, page, pageSize)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to list images")
		return
	}

	subject := policy.SubjectFromUser(user)
	views := make([]imageView, 0, len(images))
	for _, img := range images {
		views = append(views, h.shapeImage(subject, img))
	}

	common.RespondSuccess(c, gin.H{
		"list":      views,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
