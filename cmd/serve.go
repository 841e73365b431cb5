package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anoixa/tierbed/api/core"
	"github.com/anoixa/tierbed/cache"
	"github.com/anoixa/tierbed/config"
	"github.com/anoixa/tierbed/database"
	"github.com/anoixa/tierbed/database/repo/accounts"
	imagesrepo "github.com/anoixa/tierbed/database/repo/images"
	tiersrepo "github.com/anoixa/tierbed/database/repo/tiers"
	"github.com/anoixa/tierbed/internal/auth"
	"github.com/anoixa/tierbed/internal/dashboard"
	imageSvc "github.com/anoixa/tierbed/internal/image"
	"github.com/anoixa/tierbed/internal/link"
	tiersSvc "github.com/anoixa/tierbed/internal/tiers"
	"github.com/anoixa/tierbed/storage"
	"github.com/anoixa/tierbed/utils/generator"
	"github.com/spf13/cobra"
)

var serveSeed bool

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start API server",
	Run: func(cmd *cobra.Command, args []string) {
		RunServer()
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveSeed, "seed", false, "seed default tiers and admin user before serving")
	rootCmd.AddCommand(serveCmd)
}

func RunServer() {
	config.InitConfig()
	cfg := config.Get()

	if err := os.MkdirAll("./data", os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to auto migrate database: %v", err)
	}

	accountsRepo := accounts.NewRepository(db)
	imagesRepo := imagesrepo.NewRepository(db)
	thumbRepo := imagesrepo.NewThumbnailRepository(db)
	tiersRepo := tiersrepo.NewRepository(db)

	storageFactory, err := storage.NewFactory(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	cacheProvider, err := cache.NewProvider(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}

	jwtService, err := auth.NewJWTService(cfg.JwtSecret, cfg.JwtExpiresIn, cfg.JwtRefreshExpiresIn)
	if err != nil {
		log.Fatalf("Failed to initialize JWT: %v", err)
	}
	loginService := auth.NewLoginService(accountsRepo, jwtService)

	pathGen := generator.NewPathGenerator()
	catalog := tiersSvc.NewService(tiersRepo, cacheProvider, cfg.CacheTierTTL)
	thumbnailGenerator := imageSvc.NewGenerator(thumbRepo, catalog, storageFactory.GetDefault(), pathGen)
	uploadService := imageSvc.NewUploadService(imagesRepo, storageFactory.GetDefault(), thumbnailGenerator, pathGen, cfg.UploadMaxSizeMB)
	deleteService := imageSvc.NewDeleteService(imagesRepo, thumbRepo, storageFactory.GetDefault())
	dashboardService := dashboard.NewService(accountsRepo, tiersRepo, imagesRepo, thumbRepo, cacheProvider)

	if serveSeed {
		if err := SeedDefaults(accountsRepo, tiersRepo); err != nil {
			log.Fatalf("Failed to seed defaults: %v", err)
		}
	} else if password, err := accountsRepo.CreateDefaultAdminUser(); err != nil {
		log.Printf("[Warning] Failed to ensure default admin user: %v", err)
	} else if password != "" {
		log.Printf("[Accounts] Default admin password: %s", password)
	}

	deps := &core.ServerDependencies{
		DB:               db,
		StorageFactory:   storageFactory,
		CacheProvider:    cacheProvider,
		AccountsRepo:     accountsRepo,
		ImagesRepo:       imagesRepo,
		ThumbRepo:        thumbRepo,
		TiersRepo:        tiersRepo,
		JWTService:       jwtService,
		LoginService:     loginService,
		Catalog:          catalog,
		UploadService:    uploadService,
		DeleteService:    deleteService,
		DashboardService: dashboardService,
		LinkCodec:        link.NewCodec(),
		Config:           cfg,
	}

	// 启动gin
	server, cleanup := core.StartServer(deps)
	go func() {
		log.Printf("Server started on %s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// 处理退出signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if cleanup != nil {
		cleanup()
	}

	if err := cacheProvider.Close(); err != nil {
		log.Printf("Error closing cache: %v", err)
	}

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited successfully")
}
