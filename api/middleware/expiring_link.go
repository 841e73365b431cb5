package middleware

import (
	"net/http"

	"github.com/anoixa/tierbed/api/common"
	"github.com/anoixa/tierbed/internal/link"
	"github.com/gin-gonic/gin"
)

// ExpiringLink 拦截带 exp=1 标记的 GET 请求，把路径段当作编码 token 解码
// 并 302 到真实资源。缺少标记的请求原样放行，路径按字面量处理。
// 解码失败和已过期统一 404，不区分原因
func ExpiringLink(codec *link.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || c.Query(link.ExpMarker) != "1" {
			c.Next()
			return
		}

		target, err := codec.Decode(c.Request.URL.Path)
		if err != nil {
			common.RespondError(c, http.StatusNotFound, "Invalid or expired link")
			c.Abort()
			return
		}

		c.Redirect(http.StatusFound, target)
		c.Abort()
	}
}
