package thumbnails

import (
	"net/http"
	"strconv"

	"github.com/anoixa/tierbed/api/common"
	"github.com/gin-gonic/gin"
)

// ListThumbnails 获取当前用户的缩略图列表
// GET /api/v1/thumbnails?page=1&page_size=20
func (h *Handler) ListThumbnails(c *gin.Context) {
	user, ok := requireViewer(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	list, total, err := h.thumbRepo.ListThumbnailsByUser(user.ID, page, pageSize)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to list thumbnails")
		return
	}

	views := make([]thumbnailView, 0, len(list))
	for _, t := range list {
		views = append(views, h.shapeThumbnail(t))
	}

	common.RespondSuccess(c, gin.H{
		"list":      views,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
