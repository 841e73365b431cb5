package images

import (
	"net/http"

	"github.com/anoixa/tierbed/api/common"
	"github.com/anoixa/tierbed/api/middleware"
	"github.com/gin-gonic/gin"
)

// DeleteImage 删除图片，级联删除其缩略图记录和文件
// DELETE /api/v1/images/:identifier
func (h *Handler) DeleteImage(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	identifier := c.Param("identifier")
	img, err := h.repo.GetImageByIdentifierAndUser(identifier, user.ID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	if err := h.deleteService.DeleteImage(c.Request.Context(), img); err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to delete image")
		return
	}

	common.RespondSuccessMessage(c, "Image deleted", nil)
}
