package thumbnails

import (
	"net/http"

	"github.com/anoixa/tierbed/api/common"
	"github.com/gin-gonic/gin"
)

// DeleteThumbnail 删除单个缩略图记录和文件
// DELETE /api/v1/thumbnails/:identifier
func (h *Handler) DeleteThumbnail(c *gin.Context) {
	user, ok := requireViewer(c)
	if !ok {
		return
	}

	thumbnail, err := h.thumbRepo.GetThumbnailByIdentifierAndUser(c.Param("identifier"), user.ID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	if err := h.deleteService.DeleteThumbnail(c.Request.Context(), thumbnail); err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to delete thumbnail")
		return
	}

	common.RespondSuccessMessage(c, "Thumbnail deleted", nil)
}
