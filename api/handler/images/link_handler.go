package images

import (
	"net/http"
	"strconv"

	"github.com/anoixa/tierbed/api/common"
	"github.com/anoixa/tierbed/api/middleware"
	"github.com/anoixa/tierbed/internal/policy"
	"github.com/gin-gonic/gin"
)

// MintExpiringLink 为原图签发带过期时间的分享链接
// GET /api/v1/images/:identifier/link?time=<seconds>
// 能力检查在资源查找之前，避免用 403/404 区别探测资源存在性
func (h *Handler) MintExpiringLink(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	subject := policy.SubjectFromUser(user)
	if !subject.CanMintExpiringLink() {
		common.RespondError(c, http.StatusForbidden, "Tier does not allow expiring links")
		return
	}

	identifier := c.Param("identifier")
	img, err := h.repo.GetImageByIdentifierAndUser(identifier, user.ID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	ttl, err := strconv.Atoi(c.Query("time"))
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Query parameter 'time' must be an integer number of seconds")
		return
	}

	token, err := h.codec.Encode(h.blobURL(img.StoragePath), ttl)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccess(c, gin.H{
		"url":                h.codec.BuildURL(h.baseURL, token),
		"expires_in_seconds": ttl,
	})
}
