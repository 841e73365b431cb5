package core

import (
	"net/http"
	"time"

	"github.com/anoixa/tierbed/api/middleware"
	"github.com/anoixa/tierbed/cache"
	"github.com/anoixa/tierbed/config"
	"github.com/anoixa/tierbed/database/repo/accounts"
	imagesrepo "github.com/anoixa/tierbed/database/repo/images"
	tiersrepo "github.com/anoixa/tierbed/database/repo/tiers"
	"github.com/anoixa/tierbed/internal/auth"
	"github.com/anoixa/tierbed/internal/dashboard"
	imageSvc "github.com/anoixa/tierbed/internal/image"
	"github.com/anoixa/tierbed/internal/link"
	tiersSvc "github.com/anoixa/tierbed/internal/tiers"
	"github.com/anoixa/tierbed/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ServerDependencies 服务器依赖项
type ServerDependencies struct {
	DB             *gorm.DB
	StorageFactory *storage.Factory
	CacheProvider  cache.Provider

	AccountsRepo *accounts.Repository
	ImagesRepo   *imagesrepo.Repository
	ThumbRepo    *imagesrepo.ThumbnailRepository
	TiersRepo    *tiersrepo.Repository

	JWTService       *auth.JWTService
	LoginService     *auth.LoginService
	Catalog          *tiersSvc.Service
	UploadService    *imageSvc.UploadService
	DeleteService    *imageSvc.DeleteService
	DashboardService *dashboard.Service
	LinkCodec        *link.Codec

	Config *config.Config
}

// 启动gin
func setupRouter(deps *ServerDependencies) (*gin.Engine, func()) {
	cfg := deps.Config

	// 仅在开发版本时启用 gin 日志
	if config.CommitHash != "n/a" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if config.CommitHash == "n/a" {
		router.Use(gin.Logger())
	}
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.BaseURL()},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.SetTrustedProxies(nil)

	// 限制上传文件大小
	router.MaxMultipartMemory = int64(cfg.UploadMaxSizeMB) << 20

	// 过期链接解析在路由匹配之前，带 exp=1 标记的 GET 都走这里
	router.Use(middleware.ExpiringLink(deps.LinkCodec))

	// 速率限制
	authRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitAuthRPS, cfg.RateLimitAuthBurst, cfg.RateLimitExpireTime)
	apiRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitAPIRPS, cfg.RateLimitAPIBurst, cfg.RateLimitExpireTime)
	cleanup := func() {
		authRateLimiter.StopCleanup()
		apiRateLimiter.StopCleanup()
	}

	registerRoutes(router, deps, authRateLimiter, apiRateLimiter)

	return router, cleanup
}

// StartServer 创建 http.Server
func StartServer(deps *ServerDependencies) (*http.Server, func()) {
	cfg := deps.Config
	router, clean := setupRouter(deps)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return srv, clean
}
