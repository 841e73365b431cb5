package thumbnails

import (
	"github.com/anoixa/tierbed/api/common"
	"github.com/gin-gonic/gin"
)

// GetThumbnail 获取单个缩略图的元数据
// GET /api/v1/thumbnails/:identifier
func (h *Handler) GetThumbnail(c *gin.Context) {
	user, ok := requireViewer(c)
	if !ok {
		return
	}

	thumbnail, err := h.thumbRepo.GetThumbnailByIdentifierAndUser(c.Param("identifier"), user.ID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccess(c, h.shapeThumbnail(thumbnail))
}
