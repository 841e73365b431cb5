package core

import (
	"net/http"
	"time"

	"github.com/anoixa/tierbed/api/common"
	handlerAuth "github.com/anoixa/tierbed/api/handler/auth"
	handlerDashboard "github.com/anoixa/tierbed/api/handler/dashboard"
	handlerImages "github.com/anoixa/tierbed/api/handler/images"
	handlerThumbnails "github.com/anoixa/tierbed/api/handler/thumbnails"
	handlerTiers "github.com/anoixa/tierbed/api/handler/tiers"
	"github.com/anoixa/tierbed/api/middleware"
	"github.com/anoixa/tierbed/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var startTime = time.Now()

// registerRoutes 注册所有路由
func registerRoutes(router *gin.Engine, deps *ServerDependencies, authRateLimiter, apiRateLimiter *middleware.IPRateLimiter) {
	baseURL := deps.Config.BaseURL()

	imageHandler := handlerImages.NewHandler(
		deps.ImagesRepo,
		deps.UploadService,
		deps.DeleteService,
		deps.LinkCodec,
		deps.StorageFactory.GetDefault(),
		baseURL,
	)
	thumbnailHandler := handlerThumbnails.NewHandler(deps.ThumbRepo, deps.DeleteService, baseURL)
	tierHandler := handlerTiers.NewHandler(deps.Catalog, deps.TiersRepo)
	dashboardHandler := handlerDashboard.NewHandler(deps.DashboardService)
	loginHandler := handlerAuth.NewHandler(deps.LoginService)
	authRequired := middleware.JWTAuth(deps.JWTService, deps.AccountsRepo)

	// 基础路由
	router.GET("/health", func(c *gin.Context) {
		health := gin.H{
			"status":  "ok",
			"uptime":  time.Since(startTime).Round(time.Second).String(),
			"version": config.Version,
			"checks": gin.H{
				"database": checkDatabaseHealth(deps.DB),
				"cache":    checkCacheHealth(deps.CacheProvider),
				"storage":  checkStorageHealth(deps.StorageFactory),
			},
		}
		httpStatus := http.StatusOK
		for _, checkResult := range health["checks"].(gin.H) {
			if result, ok := checkResult.(string); ok && result != "ok" {
				httpStatus = http.StatusServiceUnavailable
				break
			}
		}
		c.JSON(httpStatus, health)
	})
	router.GET("/version", func(c *gin.Context) {
		common.RespondSuccess(c, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 公共文件访问，路径是字面量，exp=1 的编码链接已被中间件拦截
	publicGroup := router.Group("/images")
	publicGroup.Use(apiRateLimiter.Middleware())
	{
		publicGroup.GET("/*blobpath", imageHandler.ServeOriginal)
	}
	thumbnailGroup := router.Group("/thumbnails")
	thumbnailGroup.Use(apiRateLimiter.Middleware())
	{
		thumbnailGroup.GET("/*blobpath", imageHandler.ServeThumbnail)
	}

	apiGroup := router.Group("/api")
	apiGroup.Use(func(c *gin.Context) { // 所有API禁止缓存
		c.Header("Cache-Control", "no-store")
		c.Next()
	})
	{
		authGroup := apiGroup.Group("/auth")
		authGroup.Use(authRateLimiter.Middleware())
		{
			authGroup.POST("/login", loginHandler.LoginHandlerFunc)          // POST /api/auth/login
			authGroup.POST("/refresh", loginHandler.RefreshTokenHandlerFunc) // POST /api/auth/refresh
		}

		v1 := apiGroup.Group("/v1")
		v1.Use(apiRateLimiter.Middleware())
		v1.Use(authRequired)
		{
			imagesGroup := v1.Group("/images")
			{
				imagesGroup.POST("", imageHandler.UploadImage)                         // POST /api/v1/images
				imagesGroup.GET("", imageHandler.ListImages)                           // GET /api/v1/images
				imagesGroup.GET("/:identifier", imageHandler.GetImage)                 // GET /api/v1/images/{identifier}
				imagesGroup.DELETE("/:identifier", imageHandler.DeleteImage)           // DELETE /api/v1/images/{identifier}
				imagesGroup.GET("/:identifier/link", imageHandler.MintExpiringLink)    // GET /api/v1/images/{identifier}/link?time=S
			}

			thumbnailsGroup := v1.Group("/thumbnails")
			{
				thumbnailsGroup.GET("", thumbnailHandler.ListThumbnails)               // GET /api/v1/thumbnails
				thumbnailsGroup.GET("/:identifier", thumbnailHandler.GetThumbnail)     // GET /api/v1/thumbnails/{identifier}
				thumbnailsGroup.DELETE("/:identifier", thumbnailHandler.DeleteThumbnail) // DELETE /api/v1/thumbnails/{identifier}
			}

			// 层级管理，仅特权账号
			tiersGroup := v1.Group("/tiers")
			tiersGroup.Use(middleware.RequirePrivileged())
			{
				tiersGroup.GET("", tierHandler.ListTiers)                     // GET /api/v1/tiers
				tiersGroup.POST("", tierHandler.CreateTier)                   // POST /api/v1/tiers
				tiersGroup.POST("/:name/sizes", tierHandler.AddThumbnailSize) // POST /api/v1/tiers/{name}/sizes
			}

			// 统计，仅特权账号
			dashboardGroup := v1.Group("/dashboard")
			dashboardGroup.Use(middleware.RequirePrivileged())
			{
				dashboardGroup.GET("/stats", dashboardHandler.GetStats)            // GET /api/v1/dashboard/stats
				dashboardGroup.POST("/stats/refresh", dashboardHandler.RefreshStats) // POST /api/v1/dashboard/stats/refresh
			}
		}
	}
}
