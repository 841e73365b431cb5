package auth

import (
	"net/http"

	"github.com/anoixa/tierbed/api/common"
	authSvc "github.com/anoixa/tierbed/internal/auth"
	"github.com/gin-gonic/gin"
)

// Handler 认证处理器
type Handler struct {
	loginService *authSvc.LoginService
}

// NewHandler 创建新的认证处理器
func NewHandler(loginService *authSvc.LoginService) *Handler {
	return &Handler{loginService: loginService}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LoginHandlerFunc 处理登录请求
// POST /api/auth/login
func (h *Handler) LoginHandlerFunc(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, pair, err := h.loginService.Login(req.Username, req.Password)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccess(c, gin.H{
		"token_type":    "Bearer",
		"access_token":  pair.AccessToken,
		"expires_at":    pair.AccessTokenExpiry.Unix(),
		"refresh_token": pair.RefreshToken,
		"username":      user.Username,
	})
}

// RefreshTokenHandlerFunc 用刷新令牌换发新令牌对
// POST /api/auth/refresh
func (h *Handler) RefreshTokenHandlerFunc(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "refresh_token is required")
		return
	}

	pair, err := h.loginService.Refresh(req.RefreshToken)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccess(c, gin.H{
		"token_type":    "Bearer",
		"access_token":  pair.AccessToken,
		"expires_at":    pair.AccessTokenExpiry.Unix(),
		"refresh_token": pair.RefreshToken,
	})
}
