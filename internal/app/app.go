package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fitshop_backend/database"
	"fitshop_backend/internal/auth"
	"fitshop_backend/internal/config"
	"fitshop_backend/internal/handlers"
	"fitshop_backend/internal/imageprocessor"
	"fitshop_backend/internal/locker"
	"fitshop_backend/internal/logger"
	"fitshop_backend/internal/middleware"
	"fitshop_backend/internal/repositories"
	"fitshop_backend/internal/routes"
	"fitshop_backend/internal/services"
	"fitshop_backend/internal/services/payment"
	"fitshop_backend/internal/storage"
	"fitshop_backend/internal/validator"
	"fitshop_backend/internal/workers"
	"fitshop_backend/pkg/apperrors"
)

const shutdownTimeout = 15 * time.Second

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	apperrors.SetDebug(cfg.Server.Env != "production")
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	gormDB, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	defer sqlDB.Close()
	if err = sqlDB.PingContext(ctx); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("Migration failed", "error", err)
	}
	logger.Info("Database connected")

	cartLocker, closeLocker, err := initializeLocker(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize cart locker", "error", err)
	}
	defer closeLocker()

	ginRouter, container, err := SetupRouter(ctx, cfg, gormDB, cartLocker)
	if err != nil {
		logger.Fatal("Failed to set up router", "error", err)
	}

	if err := container.AuthService.EnsureAdmin(ctx, gormDB, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	workers.NewOrphanSweepWorker(
		gormDB,
		container.Storage,
		container.ImageStore,
		repositories.NewPictureRepository(),
		cfg.Workers.OrphanSweepInterval,
		cfg.Workers.OrphanGracePeriod,
	).Start(ctx)
	logger.Info("Workers started")

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              address,
		Handler:           ginRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "address", address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}

// SetupRouter builds storage, services and handlers and returns the ready engine.
func SetupRouter(ctx context.Context, cfg *config.Config, gormDB *gorm.DB, cartLocker locker.Locker) (*gin.Engine, *services.ServiceContainer, error) {
	storageInstance, err := storage.NewStorage(ctx, storage.Config{
		Type:            cfg.Storage.Type,
		BasePath:        cfg.Storage.BasePath,
		BaseURL:         cfg.Storage.BaseURL,
		Bucket:          cfg.Storage.Bucket,
		Region:          cfg.Storage.Region,
		AccessKey:       cfg.Storage.AccessKey,
		SecretKey:       cfg.Storage.SecretKey,
		Endpoint:        cfg.Storage.Endpoint,
		UseSSL:          cfg.Storage.UseSSL,
		CredentialsFile: cfg.Storage.CredentialsFile,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("initialize storage: %w", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.TTL)

	// 1. Services
	serviceContainer := initializeServices(cfg, storageInstance, cartLocker, jwtManager)

	// 2. Handlers
	appHandlers := initializeHandlers(cfg, serviceContainer)

	// 3. Gin
	ginRouter := initializeGinRouter(cfg, gormDB)

	// 4. Routes
	routes.RegisterRoutes(ginRouter, appHandlers, middleware.AuthMiddleware(jwtManager))

	return ginRouter, serviceContainer, nil
}

func initializeLocker(ctx context.Context, cfg *config.Config) (locker.Locker, func(), error) {
	switch cfg.Cart.LockBackend {
	case "redis":
		client, err := locker.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Cart locker initialized", "backend", "redis", "addr", cfg.Redis.Addr)
		return locker.NewRedisLocker(client, cfg.Cart.LockTTL), func() { client.Close() }, nil
	case "memory", "":
		logger.Info("Cart locker initialized", "backend", "memory")
		return locker.NewMemoryLocker(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported cart lock backend: %s", cfg.Cart.LockBackend)
	}
}

func initializeServices(cfg *config.Config, storageInstance storage.Storage, cartLocker locker.Locker, jwtManager *auth.JWTManager) *services.ServiceContainer {
	imageStore := imageprocessor.NewStore(storageInstance, imageprocessor.Configuration{
		ThumbnailWidth:  cfg.Media.ThumbnailWidth,
		ThumbnailHeight: cfg.Media.ThumbnailHeight,
		MaxWidth:        cfg.Media.MaxWidth,
		StoragePrefix:   cfg.Media.StoragePrefix,
		Quality:         cfg.Media.Quality,
		StagingDir:      cfg.Media.StagingDir,
		DeleteWorkers:   cfg.Media.DeleteWorkers,
		MaxPixels:       cfg.Media.MaxPixels,
	})

	robokassa := payment.NewRobokassaService(payment.RobokassaConfig{
		MerchantLogin: cfg.Robokassa.MerchantLogin,
		Password1:     cfg.Robokassa.Password1,
		Password2:     cfg.Robokassa.Password2,
		BaseURL:       cfg.Robokassa.BaseURL,
		Currency:      cfg.Robokassa.Currency,
		IsTest:        cfg.Robokassa.IsTest,
	})

	// --- Repositories ---
	userRepo := repositories.NewUserRepository()
	productRepo := repositories.NewProductRepository()
	orderRepo := repositories.NewOrderRepository()
	pictureRepo := repositories.NewPictureRepository()
	videoRepo := repositories.NewVideoRepository()
	mediaAssetRepo := repositories.NewMediaAssetRepository()
	discountRepo := repositories.NewDiscountRepository()
	paymentRepo := repositories.NewPaymentRepository()

	// --- Services ---
	pictureService := services.NewPictureService(imageStore, pictureRepo)
	authService := services.NewAuthService(userRepo, pictureService, jwtManager)
	productService := services.NewProductService(productRepo, pictureService)
	orderService := services.NewOrderService(
		orderRepo,
		productRepo,
		discountRepo,
		paymentRepo,
		userRepo,
		cartLocker,
		robokassa,
		cfg.Cart.CreateRetries,
	)
	discountService := services.NewDiscountService(discountRepo)
	mediaAssetService := services.NewMediaAssetService(mediaAssetRepo, videoRepo, pictureService)

	return &services.ServiceContainer{
		AuthService:       authService,
		PictureService:    pictureService,
		ProductService:    productService,
		OrderService:      orderService,
		DiscountService:   discountService,
		MediaAssetService: mediaAssetService,
		Storage:           storageInstance,
		ImageStore:        imageStore,
	}
}

func initializeHandlers(cfg *config.Config, services *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator, cfg.Media.MaxUploadSize)

	return &handlers.AppHandlers{
		AuthHandler:       handlers.NewAuthHandler(baseHandler, services.AuthService),
		ProfileHandler:    handlers.NewProfileHandler(baseHandler, services.AuthService),
		ProductHandler:    handlers.NewProductHandler(baseHandler, services.ProductService),
		OrderHandler:      handlers.NewOrderHandler(baseHandler, services.OrderService),
		DiscountHandler:   handlers.NewDiscountHandler(baseHandler, services.DiscountService),
		MediaAssetHandler: handlers.NewMediaAssetHandler(baseHandler, services.MediaAssetService),
		PaymentHandler:    handlers.NewPaymentHandler(baseHandler, services.OrderService),
		FileHandler:       handlers.NewFileHandler(baseHandler, services.Storage),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.CORSOrigins))
	router.Use(middleware.DBMiddleware(db))
	if cfg.Media.MaxUploadSize > 0 {
		router.MaxMultipartMemory = cfg.Media.MaxUploadSize
	}
	return router
}
