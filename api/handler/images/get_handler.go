package images

import (
	"net/http"

	"github.com/anoixa/tierbed/api/common"
	"github.com/anoixa/tierbed/api/middleware"
	"github.com/anoixa/tierbed/internal/policy"
	"github.com/gin-gonic/gin"
)

// GetImage 获取单张图片的元数据
// GET /api/v1/images/:identifier
func (h *Handler) GetImage(c *gin.Context) {
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

	subject := policy.SubjectFromUser(user)
	common.RespondSuccess(c, h.shapeImage(subject, img))
}
