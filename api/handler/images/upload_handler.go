package images

import (
	"net/http"

	"github.com/anoixa/tierbed/api/common"
	"github.com/anoixa/tierbed/api/middleware"
	"github.com/anoixa/tierbed/internal/policy"
	"github.com/gin-gonic/gin"
)

// UploadImage 处理单图片上传
// POST /api/v1/images (multipart, 字段名 "image")
func (h *Handler) UploadImage(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "An image file is required under the 'image' key")
		return
	}

	img, err := h.uploadService.Upload(c.Request.Context(), user, fileHeader)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	subject := policy.SubjectFromUser(user)
	common.RespondCreated(c, h.shapeImage(subject, img))
}
