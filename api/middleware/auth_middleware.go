package middleware

import (
	"net/http"
	"strings"

	"github.com/anoixa/tierbed/api/common"
	"github.com/anoixa/tierbed/database/models"
	"github.com/anoixa/tierbed/database/repo/accounts"
	"github.com/anoixa/tierbed/internal/auth"
	"github.com/gin-gonic/gin"
)

// ContextUserKey 上下文中完整用户对象的键
const ContextUserKey = "current_user"

// JWTAuth 解析 Bearer token 并加载用户（含 tier）到上下文
func JWTAuth(jwtService *auth.JWTService, accountsRepo *accounts.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			common.RespondError(c, http.StatusUnauthorized, "No Authorization request header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			common.RespondError(c, http.StatusUnauthorized, "Authorization header must be 'Bearer <token>'")
			c.Abort()
			return
		}

		claims, err := jwtService.ParseToken(parts[1])
		if err != nil {
			common.RespondError(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}
		if tokenType, _ := claims["type"].(string); tokenType != auth.TokenTypeAccess {
			common.RespondError(c, http.StatusUnauthorized, "Token is not an access token")
			c.Abort()
			return
		}

		userID, err := auth.UserIDFromClaims(claims)
		if err != nil {
			common.RespondError(c, http.StatusUnauthorized, err.Error())
			c.Abort()
			return
		}

		// 每次请求加载用户，tier 的能力变化立即生效
		user, err := accountsRepo.GetUserByID(userID)
		if err != nil || !user.IsActive {
			common.RespondError(c, http.StatusUnauthorized, "Unknown or disabled account")
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser 从上下文取出认证用户
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

// RequirePrivileged 仅放行 staff/superuser
func RequirePrivileged() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || !user.IsPrivileged() {
			common.RespondError(c, http.StatusForbidden, "Privileged account required")
			c.Abort()
			return
		}
		c.Next()
	}
}
